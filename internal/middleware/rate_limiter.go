package middleware

import (
	"fmt"
	"math"
	"net/http"

	"github.com/SeakMengs/DossierFlow/internal/util"
	"github.com/gin-gonic/gin"
)

// RateLimiterMiddleware counts requests per client ip.
func (m Middleware) RateLimiterMiddleware(ctx *gin.Context) {
	if m.rateLimiter == nil || !m.rateLimiter.Enabled() {
		ctx.Next()
		return
	}

	allowed, retryAfter := m.rateLimiter.Allow(ctx.ClientIP())
	if !allowed {
		ctx.Header("Retry-After", fmt.Sprintf("%d", int(math.Ceil(retryAfter.Seconds()))))
		util.ResponseFailed(ctx, http.StatusTooManyRequests, "Too many requests", util.GenerateErrorMessages(fmt.Errorf("rate limit exceeded, retry after %s", retryAfter), "rateLimit"), nil)
		return
	}

	ctx.Next()
}
