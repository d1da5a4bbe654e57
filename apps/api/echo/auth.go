package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/Zimbwa03/Global-Intercessors-sub006/core"
)

const (
	tokenContextKey = "userToken"
	tokenAudience   = "Global Intercessors"
)

// Claims are the authorization claims of a JWT issued by the identity provider.
type Claims struct {
	jwt.StandardClaims
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

// Identity returns the caller the claims describe.
func (c Claims) Identity() core.Identity {
	return core.Identity{UserID: c.Subject, Email: c.Email, Roles: c.Roles}
}

func jwtConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    tokenContextKey,
		Claims:        new(Claims),
	}
}

// NewClaims returns the claims of id. A zero ttl issues a token that never expires.
func NewClaims(id core.Identity, conf *core.Config, ttl time.Duration) *Claims {
	now := time.Now()
	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:   conf.AppName,
			Subject:  id.UserID,
			Audience: tokenAudience,
			IssuedAt: now.Unix(),
		},
		Email: id.Email,
		Roles: id.Roles,
	}
	if ttl > 0 {
		claims.ExpiresAt = now.Add(ttl).Unix()
	}
	return claims
}

// GenerateToken signs the claims with the shared secret key.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(middleware.AlgorithmHS256), claims)
	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(tokenContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextIdentity(ctx echo.Context) (core.Identity, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return core.Identity{}, err
	}
	if claims.Subject == "" {
		return core.Identity{}, errUnauthorized
	}
	return claims.Identity(), nil
}
