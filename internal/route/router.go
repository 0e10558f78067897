package route

import (
	"github.com/SeakMengs/DossierFlow/internal/controller"
	"github.com/SeakMengs/DossierFlow/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Register mounts every api group on r.
func Register(r *gin.Engine, c *controller.Controller, m *middleware.Middleware) {
	r.GET("/", c.Index.Index)

	rApi := r.Group("/api")

	V1_Auth(rApi, c.Auth)
	V1_Dossiers(rApi, c.Dossier, c.Commentaire, m)
	V1_Backoffice(rApi, c.Backoffice, c.Commentaire, m)
	V1_Admin(rApi, c.Procedure, m)
}
