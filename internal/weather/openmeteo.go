package weather

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/PaoComPlanta/rota-da-festa/internal/models"
)

const DefaultBaseURL = "https://api.open-meteo.com"

var ErrNoData = errors.New("weather: no forecast for date")

// Daily is one day of forecast as returned by a provider.
type Daily struct {
	TempMax float64
	TempMin float64
	Code    int
}

// Provider returns the daily forecast for a position and date.
type Provider interface {
	Daily(ctx context.Context, pos models.Coordinates, day models.CalendarDate) (Daily, error)
}

type dailyResponse struct {
	Daily struct {
		Time    []string   `json:"time"`
		TempMax []*float64 `json:"temperature_2m_max"`
		TempMin []*float64 `json:"temperature_2m_min"`
		Code    []*int     `json:"weathercode"`
	} `json:"daily"`
}

// OpenMeteo queries the Open-Meteo forecast API.
type OpenMeteo struct {
	client   *resty.Client
	timezone string
}

func NewOpenMeteo(baseURL string, timeout time.Duration, timezone string) *OpenMeteo {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timezone == "" {
		timezone = "Europe/Lisbon"
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)
	return &OpenMeteo{client: client, timezone: timezone}
}

func (o *OpenMeteo) Daily(ctx context.Context, pos models.Coordinates, day models.CalendarDate) (Daily, error) {
	date := day.String()
	resp, err := o.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"latitude":   strconv.FormatFloat(pos.Latitude, 'f', -1, 64),
			"longitude":  strconv.FormatFloat(pos.Longitude, 'f', -1, 64),
			"daily":      "temperature_2m_max,temperature_2m_min,weathercode",
			"timezone":   o.timezone,
			"start_date": date,
			"end_date":   date,
		}).
		SetResult(&dailyResponse{}).
		Get("/v1/forecast")
	if err != nil {
		return Daily{}, fmt.Errorf("open-meteo request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return Daily{}, fmt.Errorf("open-meteo: bad status %d", resp.StatusCode())
	}

	result, ok := resp.Result().(*dailyResponse)
	if !ok {
		return Daily{}, errors.New("open-meteo: failed to parse response")
	}
	d := result.Daily
	if len(d.TempMax) == 0 || len(d.TempMin) == 0 || len(d.Code) == 0 ||
		d.TempMax[0] == nil || d.TempMin[0] == nil || d.Code[0] == nil {
		return Daily{}, ErrNoData
	}
	return Daily{TempMax: *d.TempMax[0], TempMin: *d.TempMin[0], Code: *d.Code[0]}, nil
}
