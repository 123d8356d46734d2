package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go/types"

	"github.com/PaoComPlanta/rota-da-festa/internal/helpers"
	"github.com/PaoComPlanta/rota-da-festa/internal/models"
	"github.com/PaoComPlanta/rota-da-festa/internal/services"
)

const (
	SessionKey = "session"
	UserKey    = "user"
)

// RequestID middleware adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// StructuredLogger provides structured logging middleware
func StructuredLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}
		requestID, _ := c.Get("request_id")

		logger.Info("HTTP Request",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}

// ErrorHandler maps errors attached with c.Error to a response. Known
// service errors keep their meaning; anything else is a 500.
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		requestID, _ := c.Get("request_id")

		status, message := classify(err)
		if status >= http.StatusInternalServerError {
			logger.Error("Request error",
				"request_id", requestID,
				"error", err.Error(),
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
			)
		}
		if c.Writer.Written() {
			return
		}
		resp := models.ErrorResponse(message)
		resp.RequestID = requestIDString(requestID)
		c.JSON(status, resp)
	}
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrEventNotFound):
		return http.StatusNotFound, "Event not found"
	case errors.Is(err, services.ErrEventsNotLoaded):
		return http.StatusServiceUnavailable, "Events are still loading"
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, services.ErrUnknownPreset):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func requestIDString(v any) string {
	s, _ := v.(string)
	return s
}

// Session gives every browser a stable anonymous id kept in a cookie. Local
// favourites and the chosen location hang off it.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := c.Cookie(helpers.SessionCookie)
		if err != nil || uuid.Validate(session) != nil {
			session = uuid.New().String()
			helpers.SetSessionCookie(c, session)
		}
		c.Set(SessionKey, session)
		c.Next()
	}
}

// TokenRefresher exchanges a refresh token for a new session.
type TokenRefresher interface {
	RefreshToken(ctx context.Context, refreshToken string) (*types.TokenResponse, error)
}

// OptionalAuth identifies the caller from the access_token cookie when one
// is present, refreshing it once if it has expired. Anonymous requests pass
// through untouched.
func OptionalAuth(validator *helpers.TokenValidator, refresher TokenRefresher, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if validator == nil {
			c.Next()
			return
		}

		token, _ := c.Cookie(helpers.AccessTokenCookie)
		var claims *helpers.CustomClaims
		var err error
		if token != "" {
			claims, err = validator.ValidateToken(token)
		}

		if token == "" || err != nil {
			refreshToken, refreshErr := c.Cookie(helpers.RefreshTokenCookie)
			if refreshErr != nil || refreshToken == "" || refresher == nil {
				c.Next()
				return
			}

			tokenRes, refreshErr := refresher.RefreshToken(c.Request.Context(), refreshToken)
			if refreshErr != nil || tokenRes == nil || tokenRes.AccessToken == "" {
				logger.Info("Token refresh failed", "error", refreshErr)
				helpers.ClearAuthCookies(c)
				c.Next()
				return
			}
			logger.Info("Token refreshed successfully",
				"user_id", tokenRes.User.ID,
				"expires_in", tokenRes.ExpiresIn,
			)
			helpers.SetAuthCookies(c, tokenRes)

			token = tokenRes.AccessToken
			claims, err = validator.ValidateToken(token)
			if err != nil {
				logger.Warn("Refreshed token validation failed", "error", err)
				c.Next()
				return
			}
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			logger.Warn("Invalid user ID in token", "user_id", claims.Subject, "error", err)
			c.Next()
			return
		}

		user := &helpers.EnhancedClaims{
			CustomClaims: claims,
			Role:         claims.Role,
			UserID:       userID,
			Email:        claims.Email,
			AccessToken:  token,
		}
		user.Role = user.GetSafeRole()
		logger.Debug("Authenticated request", "user_id", userID, "role", user.Role)

		c.Set(UserKey, user)
		c.Next()
	}
}

// CurrentSession returns the id set by Session.
func CurrentSession(c *gin.Context) string {
	return c.GetString(SessionKey)
}

// CurrentUser returns the claims set by OptionalAuth, or nil.
func CurrentUser(c *gin.Context) *helpers.EnhancedClaims {
	v, ok := c.Get(UserKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*helpers.EnhancedClaims)
	return claims
}
