package route

import (
	"github.com/SeakMengs/DossierFlow/internal/controller"
	"github.com/SeakMengs/DossierFlow/internal/middleware"
	"github.com/SeakMengs/DossierFlow/pkg/dossier"
	"github.com/gin-gonic/gin"
)

func V1_Admin(r *gin.RouterGroup, pc *controller.ProcedureController, middleware *middleware.Middleware) {
	v1 := r.Group("/v1/admin/procedures")
	v1.Use(middleware.AuthMiddleware, middleware.RequireRole(dossier.ActorAdministrateur))
	{
		v1.POST("", pc.CreateProcedure)
		v1.GET("", pc.ListProcedures)
		v1.GET("/:procedureId", pc.GetProcedure)
		v1.POST("/:procedureId/publish", pc.Publish)
		v1.POST("/:procedureId/archive", pc.Archive)
		v1.POST("/:procedureId/clone", pc.Clone)
		v1.POST("/:procedureId/types_de_champ/:index/move_down", pc.MoveTypeDeChampDown)
		v1.POST("/:procedureId/types_de_piece_justificative/:index/move_down", pc.MoveTypeDePieceJustificativeDown)
		v1.PUT("/:procedureId/gestionnaires/:gestionnaireId", pc.ChangeAssignment)
	}
}
