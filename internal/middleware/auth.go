package middleware

import (
	"errors"
	"net/http"

	"github.com/SeakMengs/DossierFlow/internal/auth"
	"github.com/SeakMengs/DossierFlow/internal/constant"
	"github.com/SeakMengs/DossierFlow/internal/util"
	"github.com/SeakMengs/DossierFlow/pkg/dossier"
	"github.com/gin-gonic/gin"
)

func (m Middleware) AuthMiddleware(ctx *gin.Context) {
	token, err := util.ReadBearerToken(ctx)
	if err != nil {
		m.app.Logger.Debugf("Failed to read token: %v", err)
		util.ResponseFailed(ctx, http.StatusUnauthorized, "", util.GenerateErrorMessages(err, "unauthorized"), nil)
		return
	}

	claim, err := m.app.JWTService.VerifyJwtToken(token)
	if err != nil {
		m.app.Logger.Debugf("Failed to verify token: %v", err)
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Invalid token", util.GenerateErrorMessages(err, "unauthorized"), nil)
		return
	}

	if claim.Type != constant.JWT_TYPE_ACCESS {
		m.app.Logger.Debugf("Invalid token type: %s", claim.Type)
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Invalid access token type", util.GenerateErrorMessages(errors.New("invalid access token type"), "unauthorized"), nil)
		return
	}

	ctx.Set(constant.CTX_AUTH_USER, claim.User)
	ctx.Next()
}

// RequireRole lets the request through only for the given actor roles. It
// must run after AuthMiddleware.
func (m Middleware) RequireRole(roles ...dossier.ActorRole) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, ok := auth.GetAuthUser(ctx)
		if !ok {
			util.ResponseFailed(ctx, http.StatusUnauthorized, "", util.GenerateErrorMessages(errors.New("user not found in context"), "unauthorized"), nil)
			return
		}

		if !util.HasRole(user.Role, roles) {
			m.app.Logger.Debugf("Role %s refused, expected one of %v", user.Role, roles)
			util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(dossier.ErrAccessDenied, "role"), nil)
			return
		}

		ctx.Next()
	}
}
