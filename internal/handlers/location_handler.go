package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PaoComPlanta/rota-da-festa/internal/middleware"
	"github.com/PaoComPlanta/rota-da-festa/internal/models"
	"github.com/PaoComPlanta/rota-da-festa/internal/services"
)

func ListLocations(ls *services.LocationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		presets := ls.Presets()
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{
			"presets": presets,
			"default": ls.DefaultKey(),
			"current": ls.Current(middleware.CurrentSession(c)),
		}, ""))
	}
}

func ChooseLocation(ls *services.LocationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var choice services.LocationChoice
		if err := c.ShouldBindJSON(&choice); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid request payload"))
			return
		}
		if choice.Preset == "" && choice.Coordinates == nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("preset or coordinates required"))
			return
		}

		ref, err := ls.Choose(middleware.CurrentSession(c), choice)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{
			"reference": ref,
			"current":   ls.Current(middleware.CurrentSession(c)),
		}, "Location updated"))
	}
}
