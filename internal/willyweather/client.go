package willyweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/willyweather-bridge/internal/weather"
)

const (
	// DefaultBaseURL is the production API root.
	DefaultBaseURL = "https://api.willyweather.com.au/v2"

	// DefaultTimeout bounds each API call.
	DefaultTimeout = 10 * time.Second

	// UnitsParam selects the metric unit system on every data request.
	UnitsParam = "distance:km,temperature:c,amount:mm,speed:km/h,pressure:hpa,tideHeight:m,swellHeight:m"

	// searchUnitsParam is the reduced selection for station search.
	searchUnitsParam = "distance:km"
)

// Station identifies an upstream observation station.
type Station struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Region   string  `json:"region"`
	State    string  `json:"state"`
	Distance float64 `json:"distance"`
}

// Client issues requests against the WillyWeather REST API for one API key.
// Each config entry owns its own Client so entries never share connection
// state.
//
// There is no retry loop here: the poll cadence is the retry policy, and
// setup flows surface errors to the user immediately. The circuit breaker
// only isolates a misbehaving upstream from tight call loops.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

// NewClient creates a Client against the production API. A nil httpClient
// gets a default with DefaultTimeout.
func NewClient(apiKey string, httpClient *http.Client) *Client {
	return NewClientWithBaseURL(apiKey, DefaultBaseURL, httpClient)
}

// NewClientWithBaseURL creates a Client against a specific API root.
func NewClientWithBaseURL(apiKey, baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "willyweather",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpClient,
		circuit: cb,
	}
}

// CloseIdleConnections releases the client's pooled connections.
func (c *Client) CloseIdleConnections() {
	c.client.CloseIdleConnections()
}

// FetchObservational returns the current conditions block for a station.
func (c *Client) FetchObservational(ctx context.Context, stationID int) (map[string]any, error) {
	resp, err := c.doRequest(ctx, func() (*http.Request, error) {
		values := url.Values{}
		values.Set("observational", "true")
		values.Set("units", UnitsParam)

		u := fmt.Sprintf("%s/%s/locations/%d/weather.json?%s", c.baseURL, c.apiKey, stationID, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Observational map[string]any `json:"observational"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode observational response: %w", err)
	}
	return payload.Observational, nil
}

// FetchForecast returns the location block plus the requested forecast
// groups. types are upstream feature names (weather, rainfall, uv,
// sunrisesunset, tides, wind); days is 1 to 7.
func (c *Client) FetchForecast(ctx context.Context, stationID int, types []string, days int) (weather.Forecast, error) {
	resp, err := c.doRequest(ctx, func() (*http.Request, error) {
		values := url.Values{}
		values.Set("forecasts", strings.Join(types, ","))
		values.Set("days", strconv.Itoa(days))
		values.Set("units", UnitsParam)

		u := fmt.Sprintf("%s/%s/locations/%d/weather.json?%s", c.baseURL, c.apiKey, stationID, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	})
	if err != nil {
		return weather.Forecast{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Location  map[string]any                    `json:"location"`
		Forecasts map[string]*weather.ForecastGroup `json:"forecasts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Forecast{}, fmt.Errorf("failed to decode forecast response: %w", err)
	}
	return weather.Forecast{Location: payload.Location, Forecasts: payload.Forecasts}, nil
}

// FetchWarnings returns the station's current warning list.
func (c *Client) FetchWarnings(ctx context.Context, stationID int) ([]weather.Warning, error) {
	resp, err := c.doRequest(ctx, func() (*http.Request, error) {
		u := fmt.Sprintf("%s/%s/locations/%d/warnings.json", c.baseURL, c.apiKey, stationID)
		return http.NewRequest(http.MethodGet, u, nil)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload []weather.Warning
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode warnings response: %w", err)
	}
	return payload, nil
}

// SearchClosest finds the station nearest to the given coordinates.
func (c *Client) SearchClosest(ctx context.Context, lat, lng float64) (Station, error) {
	resp, err := c.doRequest(ctx, func() (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
		values.Set("lng", strconv.FormatFloat(lng, 'f', -1, 64))
		values.Set("units", searchUnitsParam)

		u := fmt.Sprintf("%s/%s/search.json?%s", c.baseURL, c.apiKey, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	})
	if err != nil {
		return Station{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Location *Station `json:"location"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Station{}, fmt.Errorf("failed to decode search response: %w", err)
	}
	if payload.Location == nil || payload.Location.ID == 0 {
		return Station{}, fmt.Errorf("%w: lat=%v lng=%v", ErrNoStation, lat, lng)
	}
	return *payload.Location, nil
}

// StationName validates a station id against the API and returns its
// display name. A location block without a name falls back to
// "Station <id>".
func (c *Client) StationName(ctx context.Context, stationID int) (string, error) {
	resp, err := c.doRequest(ctx, func() (*http.Request, error) {
		values := url.Values{}
		values.Set("observational", "true")
		values.Set("units", UnitsParam)

		u := fmt.Sprintf("%s/%s/locations/%d/weather.json?%s", c.baseURL, c.apiKey, stationID, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var payload struct {
		Location struct {
			Name string `json:"name"`
		} `json:"location"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode location response: %w", err)
	}

	if payload.Location.Name == "" {
		return fmt.Sprintf("Station %d", stationID), nil
	}
	return payload.Location.Name, nil
}

// doRequest executes one API call through the circuit breaker and maps
// non-2xx statuses onto the package error taxonomy.
func (c *Client) doRequest(ctx context.Context, buildRequest func() (*http.Request, error)) (*http.Response, error) {
	req, err := buildRequest()
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req = req.WithContext(ctx)

	result, err := c.circuit.Execute(func() (interface{}, error) {
		resp, execErr := c.client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		if stErr := classifyStatus(resp); stErr != nil {
			resp.Body.Close()
			return nil, stErr
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}
		return nil, err
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return resp, nil
}

// classifyStatus maps a non-2xx response onto the error taxonomy. It does
// not close the body.
func classifyStatus(resp *http.Response) error {
	code := resp.StatusCode
	if code >= 200 && code < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrAuth, code)
	case http.StatusNotFound:
		return fmt.Errorf("%w: status %d", ErrNotFound, code)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrBadRequest, strings.TrimSpace(string(body)))
	default:
		return &StatusError{Code: code, Body: strings.TrimSpace(string(body))}
	}
}
