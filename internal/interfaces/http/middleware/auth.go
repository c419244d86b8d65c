package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainerrors "wrapchain.backend/internal/domain/errors"
	"wrapchain.backend/internal/interfaces/http/response"
	"wrapchain.backend/pkg/jwt"
	"wrapchain.backend/pkg/logger"
)

const (
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// PrincipalKey is the gin context key of the authenticated caller
	PrincipalKey = "principal"
)

// AuthMiddleware authenticates the caller from a bearer access token. The
// principal becomes the caller of every operation behind it.
func AuthMiddleware(jwtService *jwt.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthorizationHeader)
		if authHeader == "" {
			reject(c, "authorization header is required")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			reject(c, "invalid authorization format, use: Bearer <token>")
			return
		}

		claims, err := jwtService.ValidateToken(strings.TrimPrefix(authHeader, BearerPrefix), jwt.TokenTypeAccess)
		if err != nil {
			if errors.Is(err, jwt.ErrExpiredToken) {
				reject(c, "token has expired")
				return
			}
			reject(c, "invalid token")
			return
		}

		principal := claims.PrincipalAddress()
		c.Set(PrincipalKey, principal)
		ctx := context.WithValue(c.Request.Context(), logger.PrincipalKey, principal.Hex())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func reject(c *gin.Context, message string) {
	logger.Debug(c.Request.Context(), "request not authenticated",
		zap.String("path", c.Request.URL.Path),
		zap.String("reason", message),
	)
	response.Error(c, domainerrors.Unauthenticated(message))
	c.Abort()
}

// GetPrincipal returns the authenticated caller
func GetPrincipal(c *gin.Context) (common.Address, bool) {
	v, exists := c.Get(PrincipalKey)
	if !exists {
		return common.Address{}, false
	}
	principal, ok := v.(common.Address)
	return principal, ok
}
