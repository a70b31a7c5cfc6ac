// ABOUTME: Open-Meteo client mapping current conditions to a dashboard mood.
// ABOUTME: Watch refreshes on a ticker until the context is cancelled.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultBaseURL is the Open-Meteo forecast endpoint.
const DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"

// DefaultInterval is how often Watch refreshes.
const DefaultInterval = 10 * time.Minute

// Mood is the coarse weather state shown on the dashboard.
type Mood string

const (
	MoodSunny  Mood = "sunny"
	MoodCloudy Mood = "cloudy"
	MoodStormy Mood = "stormy"
)

// Conditions is the current weather at the configured location.
type Conditions struct {
	Temperature float64   `json:"temperature"`
	WindSpeed   float64   `json:"windspeed"`
	Code        int       `json:"weathercode"`
	IsDay       bool      `json:"is_day"`
	Mood        Mood      `json:"mood"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// Client fetches current conditions for one coordinate.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Latitude   float64
	Longitude  float64
}

// NewClient returns a client for the given coordinates.
func NewClient(lat, lon float64) *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		Latitude:   lat,
		Longitude:  lon,
	}
}

type forecastResponse struct {
	CurrentWeather struct {
		Temperature float64 `json:"temperature"`
		WindSpeed   float64 `json:"windspeed"`
		WeatherCode int     `json:"weathercode"`
		IsDay       int     `json:"is_day"`
	} `json:"current_weather"`
}

// Current performs one request for the current conditions.
func (c *Client) Current(ctx context.Context) (*Conditions, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse weather url: %w", err)
	}
	q := u.Query()
	q.Set("latitude", strconv.FormatFloat(c.Latitude, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(c.Longitude, 'f', 4, 64))
	q.Set("current_weather", "true")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build weather request: %w", err)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch weather: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch weather: unexpected status %d", resp.StatusCode)
	}

	var body forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode weather: %w", err)
	}

	cw := body.CurrentWeather
	return &Conditions{
		Temperature: cw.Temperature,
		WindSpeed:   cw.WindSpeed,
		Code:        cw.WeatherCode,
		IsDay:       cw.IsDay == 1,
		Mood:        MoodForCode(cw.WeatherCode),
		FetchedAt:   time.Now(),
	}, nil
}

// WMO weather interpretation codes.
var (
	sunnyCodes  = map[int]bool{0: true, 1: true}
	cloudyCodes = map[int]bool{2: true, 3: true, 45: true, 48: true}
)

// MoodForCode maps a WMO weather code to a mood. Anything with
// precipitation or thunder is stormy.
func MoodForCode(code int) Mood {
	switch {
	case sunnyCodes[code]:
		return MoodSunny
	case cloudyCodes[code]:
		return MoodCloudy
	default:
		return MoodStormy
	}
}

// Watch calls fn with fresh conditions now and then every interval until ctx
// is done. Fetch errors are passed to fn and do not stop the loop.
func (c *Client) Watch(ctx context.Context, interval time.Duration, fn func(*Conditions, error)) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	fn(c.Current(ctx))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(c.Current(ctx))
		}
	}
}
