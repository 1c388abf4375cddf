package sensor

import "sync"

// Registry holds the sensors served by the state API.
type Registry struct {
	mu      sync.RWMutex
	sensors map[string]*Sensor
	order   []string
}

func NewRegistry(sensors ...*Sensor) *Registry {
	r := &Registry{sensors: make(map[string]*Sensor)}
	for _, s := range sensors {
		r.Add(s)
	}
	return r
}

// Add registers s, replacing a sensor with the same id.
func (r *Registry) Add(s *Sensor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sensors[s.ID()]; !exists {
		r.order = append(r.order, s.ID())
	}
	r.sensors[s.ID()] = s
}

// Sensors returns the registered sensors in registration order.
func (r *Registry) Sensors() []*Sensor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Sensor, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.sensors[id])
	}
	return out
}

// States snapshots every sensor in registration order.
func (r *Registry) States() []State {
	sensors := r.Sensors()
	states := make([]State, 0, len(sensors))
	for _, s := range sensors {
		states = append(states, s.Snapshot())
	}
	return states
}

// State snapshots the sensor with the given id.
func (r *Registry) State(id string) (State, bool) {
	r.mu.RLock()
	s, ok := r.sensors[id]
	r.mu.RUnlock()
	if !ok {
		return State{}, false
	}
	return s.Snapshot(), true
}
