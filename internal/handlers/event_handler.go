package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/PaoComPlanta/rota-da-festa/internal/discovery"
	"github.com/PaoComPlanta/rota-da-festa/internal/helpers"
	"github.com/PaoComPlanta/rota-da-festa/internal/middleware"
	"github.com/PaoComPlanta/rota-da-festa/internal/models"
	"github.com/PaoComPlanta/rota-da-festa/internal/services"
)

type eventQuery struct {
	Search string `form:"q"`
	Type   string `form:"type"`
	Age    string `form:"age"`
	Lat    string `form:"lat"`
	Lng    string `form:"lng"`
	Preset string `form:"preset"`
}

// reference picks the location distances are measured from: explicit
// coordinates, then an explicit preset, then the session's saved choice.
func reference(c *gin.Context, q eventQuery, locations *services.LocationService) (*models.Coordinates, error) {
	if q.Lat != "" || q.Lng != "" {
		if q.Lat == "" || q.Lng == "" {
			return nil, errors.New("lat and lng must be given together")
		}
		pos, err := models.ParseCoordinates(q.Lat + "," + q.Lng)
		if err != nil {
			return nil, err
		}
		return &pos, nil
	}
	if q.Preset != "" {
		return locations.Resolve(q.Preset)
	}
	return locations.Reference(middleware.CurrentSession(c)), nil
}

func parseQuery(c *gin.Context, locations *services.LocationService) (discovery.Query, error) {
	var q eventQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return discovery.Query{}, err
	}
	ref, err := reference(c, q, locations)
	if err != nil {
		return discovery.Query{}, err
	}
	return discovery.Query{
		Search:    strings.TrimSpace(q.Search),
		Kind:      discovery.ParseKindFilter(q.Type),
		Age:       discovery.ParseAgeFilter(q.Age),
		Reference: ref,
	}, nil
}

func parseEventID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(helpers.StringTrim(c.Param("id")), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid event ID"))
		return 0, false
	}
	return id, true
}

func ListEvents(es *services.EventService, ls *services.LocationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := parseQuery(c, ls)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		events, err := es.List(q)
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusOK, models.ListResponse(events, len(events)))
	}
}

func EventMarkers(es *services.EventService, ls *services.LocationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := parseQuery(c, ls)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		markers, err := es.Markers(q)
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusOK, models.ListResponse(markers, len(markers)))
	}
}

func GetEvent(es *services.EventService, ls *services.LocationService, now func() time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseEventID(c)
		if !ok {
			return
		}
		var q eventQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		ref, err := reference(c, q, ls)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		detail, err := es.Detail(c.Request.Context(), id, services.Viewer{
			Session:   middleware.CurrentSession(c),
			Reference: ref,
			Now:       now(),
		})
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(detail, ""))
	}
}

func DownloadCalendar(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseEventID(c)
		if !ok {
			return
		}
		payload, err := es.Calendar(id)
		if err != nil {
			c.Error(err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+payload.Filename+`"`)
		c.Data(http.StatusOK, payload.ContentType+"; charset=utf-8", payload.Body)
	}
}
