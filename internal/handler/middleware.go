package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/artfeed/backend/internal/logutil"
	"github.com/artfeed/backend/internal/service"
)

const authSubjectKey = "auth_subject"

// SessionVerifier is what the auth middleware needs from the auth service.
type SessionVerifier interface {
	VerifySession(header string) (string, error)
}

// AuthMiddleware verifies the bearer token and stores the verified login
// in the request context. Failures short-circuit with 401.
func AuthMiddleware(auth SessionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		subject, err := auth.VerifySession(c.GetHeader("Authorization"))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": authErrorMessage(err)})
			c.Abort()
			return
		}

		c.Set(authSubjectKey, subject)
		c.Next()
	}
}

func authErrorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrMalformedHeader):
		return "malformed authorization header"
	case errors.Is(err, service.ErrExpiredToken):
		return "token expired"
	default:
		return "invalid token"
	}
}

// AuthSubject returns the login bound by AuthMiddleware, or "" when the
// route is not guarded.
func AuthSubject(c *gin.Context) string {
	if value, ok := c.Get(authSubjectKey); ok {
		if subject, ok := value.(string); ok {
			return subject
		}
	}
	return ""
}

// RequestLogger attaches a request-scoped logger to the context and logs
// one line per request.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqLogger := logger.With().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Logger()
		c.Request = c.Request.WithContext(logutil.WithLogger(c.Request.Context(), reqLogger))

		c.Next()

		reqLogger.Info().
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

func CORSMiddleware(allowedOrigins []string, allowCredentials bool) gin.HandlerFunc {
	allowAll := false
	originMap := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		if trimmed == "*" {
			allowAll = true
			continue
		}
		originMap[trimmed] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			_, ok := originMap[origin]
			if ok || allowAll {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
				if allowCredentials {
					c.Header("Access-Control-Allow-Credentials", "true")
				}
				c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
				c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
