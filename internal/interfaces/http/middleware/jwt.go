package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bondledger/backend/internal/infrastructure/auth"
	"github.com/bondledger/backend/internal/infrastructure/logger"
	"github.com/bondledger/backend/internal/interfaces/http/dto"
)

// Gin context keys for authenticated request data
const (
	ContextKeyActorID = "jwt_actor_id"
	ContextKeyClaims  = "jwt_claims"
)

// JWTMiddlewareConfig configures the JWT authentication middleware
type JWTMiddlewareConfig struct {
	JWTService *auth.JWTService
	SkipPaths  []string
}

// JWTAuthMiddleware creates a JWT authentication middleware with default config
func JWTAuthMiddleware(jwtService *auth.JWTService) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/health",
			"/ready",
		},
	})
}

// JWTAuthMiddlewareWithConfig creates a JWT authentication middleware.
// It validates the Bearer token, then places the actor ID in both the
// gin context and the request context for downstream handlers and logs.
func JWTAuthMiddlewareWithConfig(config JWTMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, path := range config.SkipPaths {
			if c.Request.URL.Path == path || strings.HasPrefix(c.Request.URL.Path, path+"/") {
				c.Next()
				return
			}
		}

		tokenString, err := extractBearerToken(c)
		if err != nil {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, err.Error())
			return
		}

		claims, err := config.JWTService.ValidateToken(tokenString)
		if err != nil {
			handleAuthError(c, err)
			return
		}

		c.Set(ContextKeyActorID, claims.ActorID)
		c.Set(ContextKeyClaims, claims)

		reqCtx := c.Request.Context()
		ctx, _ := logger.WithActorID(reqCtx, logger.FromContext(reqCtx), claims.ActorID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// extractBearerToken pulls the token out of the Authorization header
func extractBearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", errors.New("authorization header is required")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("authorization header must be in format: Bearer <token>")
	}

	if parts[1] == "" {
		return "", errors.New("token cannot be empty")
	}

	return parts[1], nil
}

// handleAuthError maps token validation errors to responses
func handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		abortUnauthorized(c, "TOKEN_EXPIRED", "Token has expired")
	case errors.Is(err, auth.ErrTokenNotYetValid):
		abortUnauthorized(c, "TOKEN_NOT_YET_VALID", "Token is not yet valid")
	case errors.Is(err, auth.ErrMissingActorID):
		abortUnauthorized(c, dto.ErrCodeUnauthorized, "Token is missing actor identity")
	default:
		abortUnauthorized(c, dto.ErrCodeUnauthorized, "Invalid token")
	}
}

func abortUnauthorized(c *gin.Context, code, message string) {
	requestID := c.GetString("X-Request-ID")
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, message, requestID))
}

// GetJWTActorID returns the authenticated actor ID from the gin context
func GetJWTActorID(c *gin.Context) string {
	return c.GetString(ContextKeyActorID)
}

// GetJWTClaims returns the full claims from the gin context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(ContextKeyClaims); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}
