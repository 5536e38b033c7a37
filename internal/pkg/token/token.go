// Package token verifies and, for wiring and tests, mints the HS256 bearer
// tokens the auth collaborator issues. The service itself has no login flow.
package token

import (
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/sitecrew-app/sitecrew-backend-go/internal/domain/worker"
)

type Service interface {
	GenerateAccessToken(workerID string, siteID string, role worker.Role) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type tokenService struct {
	secretKey                 string
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
}

func NewService(secretKey string, accessTokenExpirationTime string) Service {
	return &tokenService{
		secretKey:                 secretKey,
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (s *tokenService) JWTAuth() *jwtauth.JWTAuth {
	return s.tokenAuth
}

func (s *tokenService) GenerateAccessToken(workerID string, siteID string, role worker.Role) (string, int64, error) {
	expDuration, err := time.ParseDuration(s.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt := time.Now().Add(expDuration).Unix()

	_, tokenString, err := s.tokenAuth.Encode(map[string]interface{}{
		"worker_id": workerID,
		"site_id":   siteID,
		"role":      string(role),
		"type":      "access",
		"exp":       expiresAt,
	})
	return tokenString, expiresAt, err
}
