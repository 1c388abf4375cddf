package sensor

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"traintracker/pkg/gatherer"

	log "github.com/sirupsen/logrus"
)

// DefaultInterval is the polling period of Run.
const DefaultInterval = 3 * time.Minute

const (
	StateOn  = "on"
	StateOff = "off"
)

// Collector runs one gathering pass.
type Collector interface {
	Collect(ctx context.Context, cfg gatherer.Config) (gatherer.Result, error)
}

// State is a point-in-time copy of a sensor.
type State struct {
	ID          string         `json:"entity_id" yaml:"entity_id"`
	Name        string         `json:"name" yaml:"name"`
	State       string         `json:"state" yaml:"state"`
	Available   bool           `json:"available" yaml:"available"`
	Attributes  map[string]any `json:"attributes" yaml:"attributes"`
	LastUpdated time.Time      `json:"last_updated" yaml:"last_updated"`
}

// Sensor tracks upcoming train travel for one home station.
type Sensor struct {
	id        string
	name      string
	collector Collector
	cfg       gatherer.Config

	// Now stamps updates.
	Now func() time.Time

	mu        sync.RWMutex
	state     string
	available bool
	attrs     map[string]any
	updated   time.Time
}

// New creates a sensor identified by the home station of cfg. An empty name becomes
// "Train Tracker <home station>".
func New(name string, collector Collector, cfg gatherer.Config) *Sensor {
	if name == "" {
		name = "Train Tracker " + cfg.Origin
	}
	return &Sensor{
		id:        cfg.Origin,
		name:      name,
		collector: collector,
		cfg:       cfg,
		Now:       time.Now,
		available: true,
		attrs: map[string]any{
			"home_station": cfg.Origin,
			"calendars":    cfg.Calendars,
		},
	}
}

func (s *Sensor) ID() string { return s.id }

func (s *Sensor) Name() string { return s.name }

// Update runs one gathering pass. On failure the sensor becomes unavailable, keeps
// its previous attributes and the error is returned.
func (s *Sensor) Update(ctx context.Context) error {
	result, err := s.collector.Collect(ctx, s.cfg)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.updated = s.Now()

	if err != nil {
		s.available = false
		log.Errorf("[sensor] error retrieving data for sensor %s: %v", s.name, err)
		return fmt.Errorf("update %s: %w", s.id, err)
	}

	s.state = StateOff
	if result.Exists() {
		s.state = StateOn
	}
	maps.Copy(s.attrs, Attributes(result))
	s.available = true
	log.Debugf("[sensor] %s is %s with %d planned travels", s.name, s.state, len(result.TravelTimes))
	return nil
}

// Snapshot returns a copy of the current state.
func (s *Sensor) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		ID:          s.id,
		Name:        s.name,
		State:       s.state,
		Available:   s.available,
		Attributes:  maps.Clone(s.attrs),
		LastUpdated: s.updated,
	}
}

// Run updates immediately and then every interval until ctx is done. notify, if set,
// receives the state after every update including failed ones.
func (s *Sensor) Run(ctx context.Context, interval time.Duration, notify func(State)) error {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		// Failures are logged by Update and retried on the next tick.
		_ = s.Update(ctx)
		if notify != nil {
			notify(s.Snapshot())
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Attributes is the attribute map published for a gathering result. Zero times are
// reported as nil.
func Attributes(r gatherer.Result) map[string]any {
	primary, next := r.Slot(0), r.Slot(1)

	text := func(v string) any {
		if !r.Exists() {
			return nil
		}
		return v
	}

	planned := make([]map[string]any, 0, len(r.TravelTimes))
	for _, trip := range r.TravelTimes {
		planned = append(planned, nilTimes(trip.Attributes()))
	}

	return map[string]any{
		"origin":             text(r.Origin()),
		"destination":        text(r.Destination()),
		"start":              timeOrNil(primary.Start),
		"end":                timeOrNil(primary.End),
		"start_time":         text(primary.StartString),
		"end_time":           text(primary.EndString),
		"time":               text(primary.Time),
		"delay":              primary.DepartureDelay,
		"arrival_delay":      primary.ArrivalDelay,
		"products":           primary.Products,
		"ontime":             primary.OnTime,
		"canceled":           primary.Canceled,
		"next_start":         timeOrNil(next.Start),
		"next_start_time":    text(next.StartString),
		"next_end":           timeOrNil(next.End),
		"next_end_time":      text(next.EndString),
		"next_time":          text(next.Time),
		"next_delay":         next.DepartureDelay,
		"next_arrival_delay": next.ArrivalDelay,
		"next_products":      next.Products,
		"next_ontime":        next.OnTime,
		"next_canceled":      next.Canceled,
		"planned_travels":    planned,
	}
}

func timeOrNil(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func nilTimes(m map[string]any) map[string]any {
	for k, v := range m {
		switch v := v.(type) {
		case time.Time:
			m[k] = timeOrNil(v)
		case []map[string]any:
			for _, inner := range v {
				nilTimes(inner)
			}
		}
	}
	return m
}
