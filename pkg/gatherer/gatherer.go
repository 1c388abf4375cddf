package gatherer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 4

// Gatherer correlates calendar travel plans with live connections.
type Gatherer struct {
	events      EventSource
	connections ConnectionSource

	// Now is the clock used for the scan window and time normalisation.
	Now func() time.Time
	// Location is the local time zone of the schedule and of floating calendar times.
	Location *time.Location
	// Concurrency bounds the number of connection lookups in flight.
	Concurrency int
}

func New(events EventSource, connections ConnectionSource) *Gatherer {
	return &Gatherer{
		events:      events,
		connections: connections,
		Now:         time.Now,
		Location:    time.Local,
		Concurrency: defaultConcurrency,
	}
}

func (g *Gatherer) normalizer() TimeNormalizer {
	return TimeNormalizer{Now: g.Now, Location: g.Location}
}

// CalendarEntries fetches the events of every configured calendar in the scan window
// starting now, sorted by start. Unavailable calendars are skipped.
func (g *Gatherer) CalendarEntries(ctx context.Context, cfg Config) ([]CalendarEntry, error) {
	loc := g.normalizer().location()
	start := g.normalizer().now()

	var entries []CalendarEntry
	for _, calendar := range cfg.Calendars {
		log.Debugf("[gatherer] checking calendar %s", calendar)

		events, err := g.events.FetchEvents(ctx, calendar, start, cfg.scanDuration())
		if errors.Is(err, ErrCalendarUnavailable) {
			log.Debugf("[gatherer] skipping calendar %s: %v", calendar, err)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to fetch events of %s: %w", calendar, err)
		}

		for _, event := range events {
			entry, err := newCalendarEntry(calendar, event, loc)
			if err != nil {
				log.Warnf("[gatherer] dropping event %q of %s: %v", event.Summary, calendar, err)
				continue
			}
			entries = append(entries, entry)
		}
	}
	log.Debugf("[gatherer] found %d calendar entries", len(entries))

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].StartAt().Before(entries[j].StartAt())
	})
	return entries, nil
}

// PlannedTravelTimes turns calendar entries into travel intents. Entries no expression
// matches, or that lack a time of day, are left out.
func (g *Gatherer) PlannedTravelTimes(ctx context.Context, cfg Config) ([]PlannedTravelTime, error) {
	exprs, err := cfg.CompileExpressions()
	if err != nil {
		return nil, err
	}
	mappings, err := cfg.compileMappings()
	if err != nil {
		return nil, err
	}

	entries, err := g.CalendarEntries(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var planned []PlannedTravelTime
	for _, entry := range entries {
		origin, destination, ok := ExtractFirst(exprs, entry.Summary, cfg.Origin)
		if !ok {
			continue
		}
		log.Debugf("[gatherer] found calendar candidate %q (%s - %s)", entry.Summary, entry.Start, entry.End)

		if !entry.HasTimeOfDay() {
			continue
		}
		planned = append(planned, PlannedTravelTime{
			Start:       entry.StartAt(),
			End:         entry.EndAt(),
			Origin:      convertStation(origin, mappings),
			Destination: convertStation(destination, mappings),
		})
	}
	return planned, nil
}

// TravelTimesOf looks up the connections of one planned trip. Connections departing
// before the planned start are dropped, the rest are ordered by departure and the
// earliest cfg.MaxResults are kept.
func (g *Gatherer) TravelTimesOf(ctx context.Context, planned PlannedTravelTime, cfg Config) (PossibleTravelTimes, error) {
	normalizer := g.normalizer()
	reference := planned.Start.In(normalizer.location())

	raw, err := g.connections.FetchConnections(ctx, planned.Origin, planned.Destination, reference)
	if err != nil {
		return PossibleTravelTimes{}, fmt.Errorf("failed to fetch connections %s -> %s: %w", planned.Origin, planned.Destination, err)
	}

	connections := make([]TravelInformation, 0, len(raw))
	for _, r := range raw {
		info, err := NewTravelInformation(planned.Start, r, normalizer)
		if err != nil {
			return PossibleTravelTimes{}, err
		}
		if info.DepartureAt().Before(planned.Start) {
			continue
		}
		connections = append(connections, info)
	}

	if cfg.RemoveSameTimeDuplicates {
		connections = DeduplicateConnections(connections)
	}
	sort.SliceStable(connections, func(i, j int) bool {
		return connections[i].DepartureAt().Before(connections[j].DepartureAt())
	})
	if limit := cfg.maxResults(); len(connections) > limit {
		connections = connections[:limit]
	}

	return PossibleTravelTimes{Planned: planned, Connections: connections}, nil
}

// Collect runs the whole pipeline. Connection lookups run concurrently but the result
// keeps the calendar order; the first failing lookup aborts the run.
func (g *Gatherer) Collect(ctx context.Context, cfg Config) (Result, error) {
	planned, err := g.PlannedTravelTimes(ctx, cfg)
	if err != nil {
		return Result{}, err
	}

	travelTimes := make([]PossibleTravelTimes, len(planned))
	eg, egCtx := errgroup.WithContext(ctx)
	if g.Concurrency > 0 {
		eg.SetLimit(g.Concurrency)
	}
	for i, p := range planned {
		eg.Go(func() error {
			possible, err := g.TravelTimesOf(egCtx, p, cfg)
			if err != nil {
				return err
			}
			travelTimes[i] = possible
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return Result{}, err
	}

	return Result{TravelTimes: travelTimes}, nil
}
