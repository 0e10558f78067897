package route

import (
	"github.com/SeakMengs/DossierFlow/internal/controller"
	"github.com/SeakMengs/DossierFlow/internal/middleware"
	"github.com/SeakMengs/DossierFlow/pkg/dossier"
	"github.com/gin-gonic/gin"
)

func V1_Backoffice(r *gin.RouterGroup, bc *controller.BackofficeController, cc *controller.CommentaireController, middleware *middleware.Middleware) {
	v1 := r.Group("/v1/backoffice")
	v1.Use(middleware.AuthMiddleware, middleware.RequireRole(dossier.ActorGestionnaire))
	{
		v1.GET("/procedures", bc.ListProcedures)
		v1.GET("/procedures/:procedureId/dossiers", bc.ListDossiers)
		v1.GET("/procedures/:procedureId/columns", bc.Columns)
		v1.GET("/procedures/:procedureId/preferences", bc.GetPreferences)
		v1.PUT("/procedures/:procedureId/preferences", bc.ReplacePreferences)
		v1.GET("/procedures/:procedureId/download", bc.Download)

		v1.GET("/dossiers/search", bc.Search)
		v1.GET("/dossiers/:dossierId", bc.GetDossier)
		v1.POST("/dossiers/:dossierId/valid", bc.Act(dossier.ActionValid))
		v1.POST("/dossiers/:dossierId/receive", bc.Act(dossier.ActionReceive))
		v1.POST("/dossiers/:dossierId/close", bc.Act(dossier.ActionClose))
		v1.POST("/dossiers/:dossierId/refuse", bc.Decide(dossier.DecisionRefuse))
		v1.POST("/dossiers/:dossierId/without_continuation", bc.Decide(dossier.DecisionWithoutContinuation))
		v1.POST("/dossiers/:dossierId/archive", bc.Archive)
		v1.PUT("/dossiers/:dossierId/follow", bc.ToggleFollow)

		v1.GET("/dossiers/:dossierId/commentaires", cc.ListCommentaires)
		v1.POST("/dossiers/:dossierId/commentaires", cc.AddCommentaire)
		v1.POST("/dossiers/:dossierId/invites", cc.Invite)
	}
}
