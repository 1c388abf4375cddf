package gatherer

import "sort"

type timePair struct {
	departure, arrival int64
}

// DeduplicateConnections keeps one connection per departure/arrival pair. The DB
// schedule reports some services twice when they have intermediate stops, so the
// first non-canceled member of a group wins and a canceled one is only kept when the
// whole group is canceled. The result is sorted by departure.
func DeduplicateConnections(connections []TravelInformation) []TravelInformation {
	groups := make(map[timePair][]TravelInformation)
	var order []timePair

	for _, c := range connections {
		key := timePair{c.DepartureAt().UnixNano(), c.ArrivalAt().UnixNano()}
		if _, exists := groups[key]; !exists {
			order = append(order, key)
		}
		groups[key] = append(groups[key], c)
	}

	unique := make([]TravelInformation, 0, len(order))
	for _, key := range order {
		members := groups[key]
		chosen := members[0]
		for _, m := range members {
			if !m.Canceled {
				chosen = m
				break
			}
		}
		unique = append(unique, chosen)
	}

	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].DepartureAt().Before(unique[j].DepartureAt())
	})
	return unique
}
