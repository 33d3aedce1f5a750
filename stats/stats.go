// Package stats holds the pure derived-metric formulas applied to every
// aggregate record before it is persisted.
package stats

import "math"

// Coalition codes as stored in the coal_pref columns.
const (
	neutral = 0
	allies  = 1
	axis    = 2
)

// Aircraft classes counted in sorties_cls, in tie-break order.
var AircraftClasses = []string{
	"aircraft_light",
	"aircraft_medium",
	"aircraft_heavy",
	"aircraft_transport",
	"aircraft_turret",
}

// Counters is the subset of aggregate counters the analytics depend on.
type Counters struct {
	AkTotal      int
	GkTotal      int
	Relive       int
	Ditched      int
	Crashed      int
	Shotdown     int
	SortiesTotal int
	FlightTime   int64 // seconds
}

// Analytics are the ratios stored next to the counters.
type Analytics struct {
	Kd   float64
	Kl   float64
	Ks   float64
	Khr  float64
	Gkd  float64
	Gkl  float64
	Gks  float64
	Gkhr float64
	Wl   float64
	Ce   float64
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// LostAircraft is the number of airframes written off.
func LostAircraft(ditched, crashed, shotdown int) int {
	return ditched + crashed + shotdown
}

// FlightHours converts flight time in seconds to hours.
func FlightHours(seconds int64) float64 {
	return float64(seconds) / 3600
}

func atLeastOne(v int) float64 {
	return float64(max(v, 1))
}

func hoursAtLeastOne(seconds int64) float64 {
	return math.Max(FlightHours(seconds), 1)
}

// Compute derives the analytics block from the counters.
func Compute(c Counters) Analytics {
	lost := LostAircraft(c.Ditched, c.Crashed, c.Shotdown)
	hours := hoursAtLeastOne(c.FlightTime)
	ak := float64(c.AkTotal)
	gk := float64(c.GkTotal)

	a := Analytics{
		Kd:   Round(ak/atLeastOne(c.Relive), 2),
		Kl:   Round(ak/atLeastOne(lost), 2),
		Ks:   Round(ak/atLeastOne(c.SortiesTotal), 2),
		Khr:  Round(ak/hours, 2),
		Gkd:  Round(gk/atLeastOne(c.Relive), 2),
		Gkl:  Round(gk/atLeastOne(lost), 2),
		Gks:  Round(gk/atLeastOne(c.SortiesTotal), 2),
		Gkhr: Round(gk/hours, 2),
		Wl:   Round(ak/atLeastOne(c.Shotdown), 2),
	}
	a.Ce = Round(a.Kl*a.Khr/10, 2)
	return a
}

// Accuracy returns hit percentage, or current when nothing was fired.
func Accuracy(hitBullets, usedCartridges int, current float64) float64 {
	if usedCartridges <= 0 {
		return current
	}
	return Round(float64(hitBullets)*100/float64(usedCartridges), 1)
}

// Rating is score per life times score per hour times score, scaled down.
func Rating(score int64, relive int, flightTime int64) int64 {
	s := float64(score)
	sd := s / atLeastOne(relive)
	shr := s / hoursAtLeastOne(flightTime)
	return int64(math.Floor(sd * shr * s / 1000))
}

// SquadRating is the player rating formula normalised by the squad's peak
// membership. ok is false when maxMembers is not positive.
func SquadRating(score int64, relive int, flightTime int64, maxMembers int) (rating int64, ok bool) {
	if maxMembers <= 0 {
		return 0, false
	}
	s := float64(score)
	sd := s / atLeastOne(relive)
	shr := s / hoursAtLeastOne(flightTime)
	return int64(math.Floor(sd * shr * s / 1000 / float64(maxMembers))), true
}

// StrictCoalPref picks a side only when every sortie was flown for it.
func StrictCoalPref(alliesSorties, axisSorties, total, current int) int {
	if total <= 0 {
		return current
	}
	switch {
	case math.Round(float64(alliesSorties)*100/float64(total)) == 100:
		return allies
	case math.Round(float64(axisSorties)*100/float64(total)) == 100:
		return axis
	}
	return neutral
}

// MajorityCoalPref picks a side when it holds more than 60% of sorties. The
// percentage is rounded to a whole number, half to even, before the test.
func MajorityCoalPref(alliesSorties, total, current int) int {
	if total <= 0 {
		return current
	}
	pct := math.RoundToEven(float64(alliesSorties) * 100 / float64(total))
	switch {
	case pct > 60:
		return allies
	case pct < 40:
		return axis
	}
	return neutral
}

// FavouriteClass returns the aircraft class with the most sorties. Ties go
// to the class listed first in AircraftClasses; the empty string means no
// aircraft sorties at all.
func FavouriteClass(sorties map[string]int) string {
	best, bestN := "", 0
	for _, cls := range AircraftClasses {
		if n := sorties[cls]; n > bestN {
			best, bestN = cls, n
		}
	}
	return best
}
