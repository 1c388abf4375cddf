package calendar

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"traintracker/pkg/gatherer"

	log "github.com/sirupsen/logrus"
)

const userAgent = "traintracker/1.0 (calendar fetch)"

// Client reads iCalendar feeds from http(s) URLs or local files.
type Client struct {
	httpClient *http.Client

	// Location is used for floating times and all-day entries.
	Location *time.Location
	// CacheTTL is how long a downloaded feed is reused. Zero disables the cache.
	CacheTTL time.Duration
}

// NewClient creates a calendar client that reuses downloaded feeds for ttl.
func NewClient(ttl time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		Location:   time.Local,
		CacheTTL:   ttl,
	}
}

func isRemote(id string) bool {
	return strings.HasPrefix(id, "http://") || strings.HasPrefix(id, "https://") || strings.HasPrefix(id, "webcal://")
}

// FetchEvents returns the events of calendarID overlapping [start, start+duration).
// Calendars that cannot be read are reported as gatherer.ErrCalendarUnavailable.
func (c *Client) FetchEvents(ctx context.Context, calendarID string, start time.Time, duration time.Duration) ([]gatherer.CalendarEvent, error) {
	raw, err := c.load(ctx, calendarID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", calendarID, gatherer.ErrCalendarUnavailable, err)
	}

	events, err := Parse(bytes.NewReader(raw), c.location())
	if err != nil {
		return nil, fmt.Errorf("failed to parse calendar %s: %w", calendarID, err)
	}

	end := start.Add(duration)
	var out []gatherer.CalendarEvent
	for _, e := range events {
		if !e.Overlaps(start, end) {
			continue
		}
		out = append(out, e.CalendarEvent())
	}
	log.Debugf("[calendar] %s: %d of %d events in window", calendarID, len(out), len(events))
	return out, nil
}

func (c *Client) location() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

func (c *Client) load(ctx context.Context, id string) ([]byte, error) {
	if !isRemote(id) {
		return os.ReadFile(id)
	}

	if c.CacheTTL > 0 {
		if body, ok := readCache(id, c.CacheTTL); ok {
			log.Debugf("[calendar] using cached copy of %s", id)
			return body, nil
		}
	}

	body, err := c.download(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.CacheTTL > 0 {
		writeCache(id, body)
	}
	return body, nil
}

func (c *Client) download(ctx context.Context, id string) ([]byte, error) {
	reqURL := id
	if strings.HasPrefix(reqURL, "webcal://") {
		reqURL = "https://" + strings.TrimPrefix(reqURL, "webcal://")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/calendar")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", reqURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d when fetching %s", resp.StatusCode, reqURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read calendar body: %w", err)
	}
	return body, nil
}
