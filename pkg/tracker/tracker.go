package tracker

import (
	"context"
	"fmt"
	"time"

	"traintracker/pkg/calendar"
	"traintracker/pkg/config"
	"traintracker/pkg/gatherer"
	"traintracker/pkg/sensor"
	"traintracker/pkg/transit"
)

// CalendarCacheTTL is how long a downloaded calendar feed is reused.
const CalendarCacheTTL = 2 * time.Minute

// Tracker wires the calendar and schedule clients into a gatherer for one
// configuration.
type Tracker struct {
	Config   *config.AppConfig
	Gatherer *gatherer.Gatherer
	Transit  *transit.Client
	Calendar *calendar.Client
}

// New validates cfg and builds the clients it describes.
func New(cfg *config.AppConfig) (*Tracker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	proxy, err := cfg.ProxyURL()
	if err != nil {
		return nil, err
	}

	cal := calendar.NewClient(CalendarCacheTTL)
	cal.Location = loc

	schedule := transit.NewClient(
		transit.WithProxy(proxy),
		transit.WithLocation(loc),
		transit.WithResults(max(cfg.GathererConfig().MaxResults+1, 6)),
	)

	g := gatherer.New(cal, schedule)
	g.Location = loc

	return &Tracker{Config: cfg, Gatherer: g, Transit: schedule, Calendar: cal}, nil
}

// Collect runs one gathering pass with the tracker's configuration.
func (t *Tracker) Collect(ctx context.Context) (gatherer.Result, error) {
	result, err := t.Gatherer.Collect(ctx, t.Config.GathererConfig())
	if err != nil {
		return gatherer.Result{}, fmt.Errorf("gathering travel times: %w", err)
	}
	return result, nil
}

// Sensor returns a polling sensor for the tracker's configuration.
func (t *Tracker) Sensor() *sensor.Sensor {
	return sensor.New(t.Config.Name, t.Gatherer, t.Config.GathererConfig())
}
