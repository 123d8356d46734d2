package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PaoComPlanta/rota-da-festa/internal/helpers"
	"github.com/PaoComPlanta/rota-da-festa/internal/middleware"
	"github.com/PaoComPlanta/rota-da-festa/internal/models"
	"github.com/PaoComPlanta/rota-da-festa/internal/services"
)

// Login signs in with Supabase, stores the tokens in cookies and merges the
// user's saved favourites into this session.
func Login(a *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email    string `json:"email" binding:"required,email"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid request payload"))
			return
		}

		tokenRes, favourites, err := a.Login(c.Request.Context(), middleware.CurrentSession(c), req.Email, req.Password)
		if err != nil {
			c.Error(err)
			return
		}

		helpers.SetAuthCookies(c, tokenRes)

		// Return user info but not tokens
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{
			"user":       tokenRes.User,
			"favourites": favourites,
		}, "Logged in"))
	}
}

// Logout clears the auth cookies. The session and its local favourites stay.
func Logout() gin.HandlerFunc {
	return func(c *gin.Context) {
		helpers.ClearAuthCookies(c)
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Logged out successfully"))
	}
}
