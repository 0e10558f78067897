package util

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	SchemeBearer  = "Bearer"
	SchemeRefresh = "Refresh"
)

// ReadAuthorizationHeader splits the Authorization header into its scheme,
// upper cased, and its credentials.
func ReadAuthorizationHeader(ctx *gin.Context) (string, string, error) {
	header := strings.TrimSpace(ctx.GetHeader("Authorization"))
	if header == "" {
		return "", "", errors.New("no authorization header specified")
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok {
		return "", "", errors.New("wrong authorization header format")
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", "", errors.New("token is empty")
	}

	return strings.ToUpper(scheme), token, nil
}

func readToken(ctx *gin.Context, scheme string) (string, error) {
	got, token, err := ReadAuthorizationHeader(ctx)
	if err != nil {
		return "", err
	}
	if !strings.EqualFold(got, scheme) {
		return "", fmt.Errorf("invalid token type; expected '%s'", scheme)
	}
	return token, nil
}

// ReadBearerToken returns the access token of an "Authorization: Bearer" header.
func ReadBearerToken(ctx *gin.Context) (string, error) {
	return readToken(ctx, SchemeBearer)
}

// ReadRefreshToken returns the token of an "Authorization: Refresh" header.
func ReadRefreshToken(ctx *gin.Context) (string, error) {
	return readToken(ctx, SchemeRefresh)
}
