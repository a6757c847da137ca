// Package recommendation ranks parking lots for a user heading to a destination.
package recommendation

import (
	"sort"

	"github.com/smartpark/smartpark/internal/parking"
)

// Profile defaults when a user has no history.
const (
	DefaultAvgSpending       = 20.0
	DefaultPreferredDistance = 500.0
	DefaultAvgDuration       = 2.0
	maxFrequentLots          = 3
)

// Profile summarizes a user's parking history.
type Profile struct {
	AvgSpending          float64             `json:"avgSpending"`
	PreferredDistance    float64             `json:"preferredDistance"`
	FrequentLots         []string            `json:"frequentLots"`
	AvgDuration          float64             `json:"avgDuration"`
	PreferredVehicleType parking.VehicleType `json:"preferredVehicleType"`
	TotalParkingTimes    int                 `json:"totalParkingTimes"`
}

// IsFrequent reports whether lotID is among the user's most used lots.
func (p Profile) IsFrequent(lotID string) bool {
	for _, id := range p.FrequentLots {
		if id == lotID {
			return true
		}
	}
	return false
}

// BuildProfile folds a parking history into a Profile. Records with no
// distance or duration count with the population defaults.
func BuildProfile(history []parking.HistoryRecord) Profile {
	if len(history) == 0 {
		return Profile{
			AvgSpending:          DefaultAvgSpending,
			PreferredDistance:    DefaultPreferredDistance,
			FrequentLots:         []string{},
			AvgDuration:          DefaultAvgDuration,
			PreferredVehicleType: parking.VehicleSedan,
		}
	}

	var fees, distances, durations float64
	lots := newCounter()
	vehicles := newCounter()

	for _, r := range history {
		fees += r.Fee

		if r.Distance > 0 {
			distances += r.Distance
		} else {
			distances += DefaultPreferredDistance
		}
		if r.Duration > 0 {
			durations += r.Duration
		} else {
			durations += DefaultAvgDuration
		}

		lots.add(r.LotID)
		if r.VehicleType != "" {
			vehicles.add(string(r.VehicleType))
		}
	}

	n := float64(len(history))
	preferred := parking.VehicleSedan
	if top := vehicles.top(1); len(top) > 0 {
		preferred = parking.VehicleType(top[0])
	}

	return Profile{
		AvgSpending:          fees / n,
		PreferredDistance:    distances / n,
		FrequentLots:         lots.top(maxFrequentLots),
		AvgDuration:          durations / n,
		PreferredVehicleType: preferred,
		TotalParkingTimes:    len(history),
	}
}

// counter counts keys and remembers first-seen order for ties.
type counter struct {
	order  []string
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(key string) {
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

func (c *counter) top(n int) []string {
	keys := make([]string, len(c.order))
	copy(keys, c.order)
	sort.SliceStable(keys, func(i, j int) bool {
		return c.counts[keys[i]] > c.counts[keys[j]]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}
