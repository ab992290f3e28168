package devserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"patientcall/internal/models"
	"patientcall/internal/security"
)

const requestIDHeader = "X-Request-Id"

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		event := log.Info()
		if status >= 500 {
			event = log.Error()
		} else if status >= 400 {
			event = log.Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("request_id", c.Writer.Header().Get(requestIDHeader)).
			Msg("http request")
	}
}

func recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Interface("error", r).
					Str("request_id", c.Writer.Header().Get(requestIDHeader)).
					Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"message": "internal server error",
				})
			}
		}()
		c.Next()
	}
}

const currentUserKey = "current_user"

// auth validates the bearer token and loads the acting user.
func (s *Server) auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			failAbort(c, http.StatusUnauthorized, "missing token")
			return
		}

		claims, err := security.ParseAccessToken(strings.TrimPrefix(header, "Bearer "), s.cfg.JWTSecret)
		if err != nil {
			failAbort(c, http.StatusUnauthorized, "invalid token")
			return
		}

		user, err := s.store.GetUser(claims.UserID)
		if err != nil {
			failAbort(c, http.StatusUnauthorized, "user not found")
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

func requireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		failAbort(c, http.StatusForbidden, "insufficient role")
	}
}

func currentUser(c *gin.Context) models.User {
	value, _ := c.Get(currentUserKey)
	user, _ := value.(models.User)
	return user
}
