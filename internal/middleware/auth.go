package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/jengzang/reallocation-screener/pkg/response"
)

// ErrForbidden is returned when a valid token lacks an admin role
var ErrForbidden = errors.New("insufficient privileges")

const actorKey = "actor"

// AdminClaims is the token payload accepted by the admin endpoints
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Authorizer validates HS256 bearer tokens against a shared secret
type Authorizer struct {
	secret []byte
	roles  []string
}

// NewAuthorizer creates an authorizer accepting the given roles
func NewAuthorizer(secret string, roles []string) *Authorizer {
	return &Authorizer{secret: []byte(secret), roles: roles}
}

// Verify parses a token and checks its role claim
func (a *Authorizer) Verify(token string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !slices.Contains(a.roles, claims.Role) {
		return claims, ErrForbidden
	}
	return claims, nil
}

// Sign issues a token for subject with role; used by the CLI and tests
func (a *Authorizer) Sign(claims AdminClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// RequireAdmin rejects requests without a bearer token carrying an admin role
func RequireAdmin(auth *Authorizer, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			response.Error(c, http.StatusUnauthorized, "missing bearer token")
			c.Abort()
			return
		}

		claims, err := auth.Verify(token)
		switch {
		case errors.Is(err, ErrForbidden):
			logger.Warn("admin access denied",
				zap.String("subject", claims.Subject),
				zap.String("role", claims.Role),
			)
			response.Error(c, http.StatusForbidden, ErrForbidden.Error())
			c.Abort()
			return
		case err != nil:
			response.Error(c, http.StatusUnauthorized, "invalid token")
			c.Abort()
			return
		}

		c.Set(actorKey, claims.Subject)
		c.Next()
	}
}

// GetActor returns the subject of the verified admin token
func GetActor(c *gin.Context) string {
	return c.GetString(actorKey)
}
