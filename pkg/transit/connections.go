package transit

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"traintracker/pkg/gatherer"
)

// FetchConnections resolves both station names and returns the journeys departing at
// or after at as raw connection records. It implements gatherer.ConnectionSource.
func (c *Client) FetchConnections(ctx context.Context, origin, destination string, at time.Time) ([]gatherer.RawConnection, error) {
	from, err := c.ResolveStation(ctx, origin)
	if err != nil {
		return nil, fmt.Errorf("origin: %w", err)
	}
	to, err := c.ResolveStation(ctx, destination)
	if err != nil {
		return nil, fmt.Errorf("destination: %w", err)
	}

	journeys, err := c.FetchJourneys(ctx, from.ID, to.ID, at, c.results)
	if err != nil {
		return nil, err
	}

	conns := make([]gatherer.RawConnection, 0, len(journeys))
	for _, j := range journeys {
		conn, ok := c.toConnection(j)
		if !ok {
			continue
		}
		conns = append(conns, conn)
	}
	return conns, nil
}

// toConnection flattens a journey into the record the gatherer consumes. Times are
// the planned ones; realtime deviations go into the delay fields.
func (c *Client) toConnection(j Journey) (gatherer.RawConnection, bool) {
	if len(j.Legs) == 0 {
		return gatherer.RawConnection{}, false
	}
	first, last := j.Legs[0], j.Legs[len(j.Legs)-1]

	departure := first.plannedDeparture().In(c.location)
	arrival := last.plannedArrival().In(c.location)

	var rides int
	products := []string{}
	canceled := false
	for _, leg := range j.Legs {
		if leg.Cancelled {
			canceled = true
		}
		if !leg.IsRide() {
			continue
		}
		rides++
		if leg.Line.Product != "" {
			products = append(products, leg.Line.Product)
		}
	}

	delay := gatherer.Delay{
		Departure: delayMinutes(first.DepartureDelay),
		Arrival:   delayMinutes(last.ArrivalDelay),
	}
	onTime := !canceled && delay.Departure == 0 && delay.Arrival == 0

	conn := gatherer.RawConnection{
		Departure: departure.Format("15:04"),
		Arrival:   arrival.Format("15:04"),
		Transfers: max(rides-1, 0),
		Time:      formatDuration(arrival.Sub(departure)),
		Products:  products,
		OnTime:    &onTime,
		Delay:     delay,
		Canceled:  canceled,
	}
	if j.Price != nil {
		amount := j.Price.Amount
		conn.Price = &amount
	}
	if j.RefreshToken != "" {
		conn.Details = fmt.Sprintf("%s/journeys/%s", baseURL, url.PathEscape(j.RefreshToken))
	}
	return conn, true
}

func delayMinutes(seconds *int) int {
	if seconds == nil {
		return 0
	}
	return *seconds / 60
}

// formatDuration renders d as "H:MM".
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes := int(d.Round(time.Minute) / time.Minute)
	return fmt.Sprintf("%d:%02d", minutes/60, minutes%60)
}
