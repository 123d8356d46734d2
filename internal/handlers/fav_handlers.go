package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PaoComPlanta/rota-da-festa/internal/middleware"
	"github.com/PaoComPlanta/rota-da-festa/internal/models"
	"github.com/PaoComPlanta/rota-da-festa/internal/services"
)

func GetFavourites(f *services.FavouriteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ids := f.List(middleware.CurrentSession(c))
		c.JSON(http.StatusOK, models.ListResponse(ids, len(ids)))
	}
}

// ToggleFavourite answers from local state immediately. Signed-in users
// also get the change mirrored remotely in the background.
func ToggleFavourite(f *services.FavouriteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseEventID(c)
		if !ok {
			return
		}

		var identity *services.Identity
		if claims := middleware.CurrentUser(c); claims != nil {
			identity = &services.Identity{UserID: claims.UserID, AccessToken: claims.AccessToken}
		}

		added, ids, err := f.Toggle(c.Request.Context(), middleware.CurrentSession(c), eventID, identity)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		message := "Removed from favourites"
		if added {
			message = "Added to favourites"
		}
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{
			"event_id":     eventID,
			"is_favourite": added,
			"favourites":   ids,
		}, message))
	}
}
