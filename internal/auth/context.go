package auth

import (
	"github.com/SeakMengs/DossierFlow/internal/constant"
	"github.com/gin-gonic/gin"
)

// GetAuthUser returns the payload the auth middleware stored on the request.
func GetAuthUser(ctx *gin.Context) (JWTPayload, bool) {
	v, exists := ctx.Get(constant.CTX_AUTH_USER)
	if !exists {
		return JWTPayload{}, false
	}
	user, ok := v.(JWTPayload)
	return user, ok
}
