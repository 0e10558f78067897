package route

import (
	"github.com/SeakMengs/DossierFlow/internal/controller"
	"github.com/SeakMengs/DossierFlow/internal/middleware"
	"github.com/SeakMengs/DossierFlow/pkg/dossier"
	"github.com/gin-gonic/gin"
)

func V1_Dossiers(r *gin.RouterGroup, dc *controller.DossierController, cc *controller.CommentaireController, middleware *middleware.Middleware) {
	v1 := r.Group("/v1")
	v1.Use(middleware.AuthMiddleware, middleware.RequireRole(dossier.ActorUser))
	{
		v1.POST("/procedures/:procedureId/dossiers", dc.CreateDossier)
		v1.GET("/me/dossiers", dc.ListOwnDossiers)

		v1.GET("/dossiers/:dossierId/recapitulatif", dc.GetRecapitulatif)
		v1.POST("/dossiers/:dossierId/recapitulatif/initiate", dc.Initiate)
		v1.POST("/dossiers/:dossierId/recapitulatif/submit", dc.Submit)
		v1.PATCH("/dossiers/:dossierId/champs", dc.UpdateChamps)
		v1.PATCH("/dossiers/:dossierId/individual", dc.UpdateIndividual)
		v1.POST("/dossiers/:dossierId/pieces_justificatives/:typeId", dc.UploadPieceJustificative)
		v1.POST("/dossiers/:dossierId/cerfa", dc.UploadCerfa)
		v1.PUT("/dossiers/:dossierId/entreprise", dc.SetEntreprise)
		v1.DELETE("/dossiers/:dossierId/entreprise", dc.ResetEntreprise)
		v1.DELETE("/dossiers/:dossierId", dc.DestroyDossier)

		v1.GET("/dossiers/:dossierId/commentaires", cc.ListCommentaires)
		v1.POST("/dossiers/:dossierId/commentaires", cc.AddCommentaire)
		v1.POST("/dossiers/:dossierId/invites", cc.Invite)
	}
}
