package sensor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"traintracker/pkg/gatherer"
)

type fakeCollector struct {
	mu      sync.Mutex
	results []gatherer.Result
	errs    []error
	calls   int
}

func (f *fakeCollector) Collect(_ context.Context, _ gatherer.Config) (gatherer.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	f.calls++
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	if err != nil {
		return gatherer.Result{}, err
	}
	if i < len(f.results) {
		return f.results[i], nil
	}
	return gatherer.Result{}, nil
}

func sampleResult(t *testing.T) gatherer.Result {
	t.Helper()
	start := time.Date(2022, 1, 1, 18, 14, 0, 0, time.UTC)
	planned := gatherer.PlannedTravelTime{
		Start:       start,
		End:         time.Date(2022, 1, 1, 20, 20, 0, 0, time.UTC),
		Origin:      "Hamburg Hbf",
		Destination: "Berlin Hbf",
	}
	n := gatherer.TimeNormalizer{Now: func() time.Time { return start.Add(-time.Hour) }, Location: time.UTC}
	var conns []gatherer.TravelInformation
	for _, raw := range []gatherer.RawConnection{
		{Departure: "18:14", Arrival: "20:20", Time: "2:06", Products: []string{"ICE"}, Delay: gatherer.Delay{Departure: 3}},
		{Departure: "18:20", Arrival: "21:20", Time: "3:00", Products: []string{"IC"}, Canceled: true},
	} {
		info, err := gatherer.NewTravelInformation(start, raw, n)
		if err != nil {
			t.Fatalf("failed to build connection: %v", err)
		}
		conns = append(conns, info)
	}
	return gatherer.Result{TravelTimes: []gatherer.PossibleTravelTimes{{Planned: planned, Connections: conns}}}
}

func TestSensor_Defaults(t *testing.T) {
	s := New("", &fakeCollector{}, gatherer.DefaultConfig("Hamburg Hbf", "work.ics"))

	if s.Name() != "Train Tracker Hamburg Hbf" || s.ID() != "Hamburg Hbf" {
		t.Errorf("unexpected name/id %q/%q", s.Name(), s.ID())
	}
	snap := s.Snapshot()
	if !snap.Available || snap.State != "" {
		t.Errorf("expected an available sensor without state, got %+v", snap)
	}
	if snap.Attributes["home_station"] != "Hamburg Hbf" {
		t.Errorf("unexpected attributes %+v", snap.Attributes)
	}
}

func TestSensor_UpdateOn(t *testing.T) {
	s := New("Commute", &fakeCollector{results: []gatherer.Result{sampleResult(t)}}, gatherer.DefaultConfig("Hamburg Hbf"))

	if err := s.Update(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snap := s.Snapshot()
	if snap.State != StateOn || !snap.Available {
		t.Fatalf("expected an available sensor that is on, got %+v", snap)
	}

	attrs := snap.Attributes
	checks := map[string]any{
		"origin":          "Hamburg Hbf",
		"destination":     "Berlin Hbf",
		"start_time":      "18:14",
		"end_time":        "20:20",
		"time":            "2:06",
		"delay":           3,
		"next_start_time": "18:20",
		"next_canceled":   true,
		"home_station":    "Hamburg Hbf",
	}
	for key, want := range checks {
		if attrs[key] != want {
			t.Errorf("%s = %v, want %v", key, attrs[key], want)
		}
	}
	if start, ok := attrs["start"].(time.Time); !ok || start.Hour() != 18 || start.Minute() != 14 {
		t.Errorf("unexpected start %v", attrs["start"])
	}
	if planned, ok := attrs["planned_travels"].([]map[string]any); !ok || len(planned) != 1 {
		t.Errorf("unexpected planned travels %v", attrs["planned_travels"])
	}
}

func TestSensor_UpdateOffUsesEmptyDefaults(t *testing.T) {
	s := New("", &fakeCollector{}, gatherer.DefaultConfig("Hamburg Hbf"))
	if err := s.Update(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := s.Snapshot()
	if snap.State != StateOff {
		t.Errorf("expected off, got %q", snap.State)
	}
	for _, key := range []string{"origin", "destination", "start", "end", "start_time", "next_start", "next_end_time"} {
		if snap.Attributes[key] != nil {
			t.Errorf("%s = %v, want nil", key, snap.Attributes[key])
		}
	}
	if snap.Attributes["ontime"] != true || snap.Attributes["delay"] != 0 {
		t.Errorf("unexpected defaults %+v", snap.Attributes)
	}
}

func TestSensor_FailureMarksUnavailable(t *testing.T) {
	boom := errors.New("schedule unreachable")
	collector := &fakeCollector{
		results: []gatherer.Result{sampleResult(t)},
		errs:    []error{nil, boom},
	}
	s := New("", collector, gatherer.DefaultConfig("Hamburg Hbf"))

	if err := s.Update(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Update(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected the collector error, got %v", err)
	}

	snap := s.Snapshot()
	if snap.Available {
		t.Error("expected the sensor to be unavailable")
	}
	if snap.State != StateOn || snap.Attributes["destination"] != "Berlin Hbf" {
		t.Errorf("expected previous state to be kept, got %+v", snap)
	}

	if err := s.Update(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.Snapshot().Available {
		t.Error("expected a successful update to restore availability")
	}
}

func TestSensor_Run(t *testing.T) {
	collector := &fakeCollector{errs: []error{errors.New("first fails")}}
	s := New("", collector, gatherer.DefaultConfig("Hamburg Hbf"))

	ctx, cancel := context.WithCancel(context.Background())
	var states []State
	err := s.Run(ctx, time.Millisecond, func(st State) {
		states = append(states, st)
		if len(states) == 3 {
			cancel()
		}
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(states) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(states))
	}
	if states[0].Available || !states[1].Available {
		t.Errorf("expected the loop to continue after a failure, got %+v", states)
	}
}

func TestRegistry(t *testing.T) {
	a := New("", &fakeCollector{}, gatherer.DefaultConfig("Hamburg Hbf"))
	b := New("", &fakeCollector{}, gatherer.DefaultConfig("Berlin Hbf"))
	r := NewRegistry(a, b)
	r.Add(New("Renamed", &fakeCollector{}, gatherer.DefaultConfig("Hamburg Hbf")))

	states := r.States()
	if len(states) != 2 || states[0].ID != "Hamburg Hbf" || states[1].ID != "Berlin Hbf" {
		t.Fatalf("unexpected states %+v", states)
	}
	if states[0].Name != "Renamed" {
		t.Errorf("expected the replaced sensor, got %q", states[0].Name)
	}
	if _, ok := r.State("Köln Hbf"); ok {
		t.Error("expected an unknown id to be missing")
	}
}
