package transit

import "time"

// Location is one entry of the array returned by /locations
type Location struct {
	Type      string  `json:"type"`
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"location.latitude"`
	Longitude float64 `json:"location.longitude"`
}

// Line holds the information about the specific train or bus
type Line struct {
	Name    string `json:"name"`
	Product string `json:"productName"` // e.g. "ICE", "RE"
}

// JourneyResponse represents the object returned by /journeys
type JourneyResponse struct {
	Journeys []Journey `json:"journeys"`
}

// Price is the cheapest fare HAFAS knows for a journey
type Price struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Journey represents a start-to-finish trip, potentially with transfers
type Journey struct {
	Legs         []Leg  `json:"legs"`
	RefreshToken string `json:"refreshToken"`
	Price        *Price `json:"price,omitempty"`
}

// Leg is a single continuous part of a journey (e.g., walking, or one train ride).
// Delays are in seconds and nil when no realtime data is available.
type Leg struct {
	Origin           Location  `json:"origin"`
	Destination      Location  `json:"destination"`
	Departure        time.Time `json:"departure"`
	PlannedDeparture time.Time `json:"plannedDeparture"`
	DepartureDelay   *int      `json:"departureDelay"`
	Arrival          time.Time `json:"arrival"`
	PlannedArrival   time.Time `json:"plannedArrival"`
	ArrivalDelay     *int      `json:"arrivalDelay"`
	Line             *Line     `json:"line,omitempty"`
	Walking          bool      `json:"walking,omitempty"`
	Cancelled        bool      `json:"cancelled,omitempty"`
}

// IsRide reports whether the leg is served by a vehicle.
func (l Leg) IsRide() bool {
	return !l.Walking && l.Line != nil
}

func (l Leg) plannedDeparture() time.Time {
	if l.PlannedDeparture.IsZero() {
		return l.Departure
	}
	return l.PlannedDeparture
}

func (l Leg) plannedArrival() time.Time {
	if l.PlannedArrival.IsZero() {
		return l.Arrival
	}
	return l.PlannedArrival
}
