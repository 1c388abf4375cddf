package transit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	log "github.com/sirupsen/logrus"
)

var baseURL = "https://v6.db.transport.rest"

// ErrStationNotFound is returned when a station name has no HAFAS match.
var ErrStationNotFound = errors.New("station not found")

const (
	maxAttempts     = 3
	stationCacheTTL = 24 * time.Hour
	defaultResults  = 6
)

// retryBackoff is the pause before the next attempt.
var retryBackoff = func(attempt int) time.Duration {
	return time.Duration(attempt+1) * time.Second
}

// Client interacts with the HAFAS DB API
type Client struct {
	httpClient *http.Client
	stations   *cache.Cache
	location   *time.Location
	results    int
}

// Option configures a Client.
type Option func(*Client)

// WithProxy routes all requests through the given HTTP proxy.
func WithProxy(proxy *url.URL) Option {
	return func(c *Client) {
		if proxy == nil {
			return
		}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = http.ProxyURL(proxy)
		c.httpClient.Transport = transport
	}
}

// WithLocation sets the time zone connection times are rendered in.
func WithLocation(loc *time.Location) Option {
	return func(c *Client) {
		if loc != nil {
			c.location = loc
		}
	}
}

// WithResults sets how many journeys are requested per lookup.
func WithResults(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.results = n
		}
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		stations:   cache.New(stationCacheTTL, time.Hour),
		location:   time.Local,
		results:    defaultResults,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// getWithRetries attempts an HTTP GET request up to 3 times for 502/503/504 and transport errors
func (c *Client) getWithRetries(ctx context.Context, reqURL string) (*http.Response, error) {
	var lastErr error
	var resp *http.Response

	for attempt := 0; attempt < maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		// Public APIs often block default Go user agents
		req.Header.Set("User-Agent", "traintracker/1.0")

		resp, lastErr = c.httpClient.Do(req)

		// If request succeeded but gave a transient error code, also retry
		if lastErr == nil && (resp.StatusCode == 503 || resp.StatusCode == 504 || resp.StatusCode == 502) {
			resp.Body.Close()
			lastErr = fmt.Errorf("transient status code: %d", resp.StatusCode)
		} else if lastErr == nil {
			return resp, nil
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt < maxAttempts-1 {
			log.Warnf("[transit] request failed, retrying (attempt %d/%d): %v", attempt+1, maxAttempts, lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryBackoff(attempt)):
			}
		}
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", maxAttempts, lastErr)
}

func (c *Client) getJSON(ctx context.Context, reqURL string, what string, v any) error {
	resp, err := c.getWithRetries(ctx, reqURL)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", what, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response body: %w", what, err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode %s JSON: %w", what, err)
	}
	return nil
}

// FetchLocations searches for transit stops matching a text query
func (c *Client) FetchLocations(ctx context.Context, query string) ([]Location, error) {
	reqURL := fmt.Sprintf("%s/locations?query=%s&results=5&addresses=false&poi=false", baseURL, url.QueryEscape(query))

	var locations []Location
	if err := c.getJSON(ctx, reqURL, "locations", &locations); err != nil {
		return nil, err
	}

	// Filter down to just actual stations/stops
	var filtered []Location
	for _, l := range locations {
		if l.Type == "station" || l.Type == "stop" {
			filtered = append(filtered, l)
		}
	}

	return filtered, nil
}

// ResolveStation returns the best HAFAS match for a station name. Matches are
// cached for a day.
func (c *Client) ResolveStation(ctx context.Context, name string) (Location, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if cached, ok := c.stations.Get(key); ok {
		return cached.(Location), nil
	}

	locations, err := c.FetchLocations(ctx, name)
	if err != nil {
		return Location{}, err
	}
	if len(locations) == 0 {
		return Location{}, fmt.Errorf("%w: %q", ErrStationNotFound, name)
	}

	log.Debugf("[transit] resolved %q to %s (%s)", name, locations[0].Name, locations[0].ID)
	c.stations.SetDefault(key, locations[0])
	return locations[0], nil
}

// FindStation returns the canonical name of the best match for name.
func (c *Client) FindStation(ctx context.Context, name string) (string, error) {
	loc, err := c.ResolveStation(ctx, name)
	if err != nil {
		return "", err
	}
	return loc.Name, nil
}

// FetchJourneys plans trips from a station ID to a destination ID departing at the given time
func (c *Client) FetchJourneys(ctx context.Context, fromID, toID string, departure time.Time, results int) ([]Journey, error) {
	q := url.Values{}
	q.Set("from", fromID)
	q.Set("to", toID)
	q.Set("departure", departure.Format(time.RFC3339))
	q.Set("results", fmt.Sprint(results))
	q.Set("stopovers", "false")
	reqURL := fmt.Sprintf("%s/journeys?%s", baseURL, q.Encode())

	var journeyResp JourneyResponse
	if err := c.getJSON(ctx, reqURL, "journeys", &journeyResp); err != nil {
		return nil, err
	}
	return journeyResp.Journeys, nil
}
