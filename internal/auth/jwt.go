package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/SeakMengs/DossierFlow/internal/config"
	"github.com/SeakMengs/DossierFlow/internal/constant"
	"github.com/SeakMengs/DossierFlow/internal/util"
	"github.com/SeakMengs/DossierFlow/pkg/dossier"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type JWT struct {
	logger     *zap.SugaredLogger
	jwtSecret  string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

type JWTInterface interface {
	GenerateRefreshAndAccessToken(payload JWTPayload) (*string, *string, error)
	VerifyJwtToken(token string) (*JWTClaims, error)
}

func NewJwt(cfg config.AuthConfig, logger *zap.SugaredLogger) *JWT {
	// For unit test
	if logger == nil {
		logger = util.NewTestLogger()
	}

	accessTTL, refreshTTL := cfg.AccessTokenTTL, cfg.RefreshTokenTTL
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}

	return &JWT{
		jwtSecret:  cfg.JWT_SECRET,
		logger:     logger,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// JWTPayload identifies the caller. Role tells which of the user, gestionnaire
// or administrateur tables ID points into.
type JWTPayload struct {
	ID    string            `json:"id"`
	Email string            `json:"email"`
	Role  dossier.ActorRole `json:"role"`
}

func (p JWTPayload) ToActor() dossier.Actor {
	return dossier.Actor{ID: p.ID, Email: p.Email, Role: p.Role}
}

type JWTClaims struct {
	User JWTPayload `json:"user"`
	Type string     `json:"type"`
	jwt.RegisteredClaims
}

func (j JWT) sign(payload JWTPayload, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		User: payload,
		Type: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   payload.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(j.jwtSecret))
}

// Return refreshToken, accessToken, error
func (j JWT) GenerateRefreshAndAccessToken(payload JWTPayload) (*string, *string, error) {
	j.logger.Debugf("Generate refresh and access token with payload: %v", payload)

	if !payload.Role.Valid() {
		return nil, nil, fmt.Errorf("%w: %q", dossier.ErrInvalidRole, payload.Role)
	}

	refreshToken, err := j.sign(payload, constant.JWT_TYPE_REFRESH, j.refreshTTL)
	if err != nil {
		return nil, nil, err
	}

	accessToken, err := j.sign(payload, constant.JWT_TYPE_ACCESS, j.accessTTL)
	if err != nil {
		return nil, nil, err
	}

	return &refreshToken, &accessToken, nil
}

func (j JWT) VerifyJwtToken(token string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	parsedToken, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(j.jwtSecret), nil
	})
	if err != nil {
		j.logger.Debugf("Failed to verify jwt token. Error: %v", err)
		return nil, err
	}

	if !parsedToken.Valid {
		j.logger.Debug("Jwt token is not valid")
		return nil, errors.New("jwt token is not valid")
	}

	if claims.User.ID == "" || !claims.User.Role.Valid() {
		return nil, errors.New("invalid token: user field is missing or malformed")
	}

	return claims, nil
}
