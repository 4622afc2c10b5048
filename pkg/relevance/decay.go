package relevance

import (
	"math"
	"time"
)

// DecayModel default parameters. 24 hours of full relevance, then a linear
// ramp spanning 3 windows (72 hours) down toward the floor.
const (
	DefaultWindowHours    = 24.0
	DefaultSpanMultiplier = 3.0
	DefaultDecayFloor     = 0.3
)

// DecayModel computes the temporal decay multiplier for an aging incident.
//
// Within the freshness window the multiplier is 1.0. Past it, relevance
// ramps down linearly and is clamped at Floor: stale incidents keep some
// doctrinal value, so decay never reaches zero.
type DecayModel struct {
	// WindowHours is the age, in hours, under which a record keeps full
	// relevance.
	WindowHours float64

	// SpanMultiplier scales the window into the ramp's denominator.
	SpanMultiplier float64

	// Floor is the minimum decay multiplier.
	Floor float64
}

// NewDecayModel returns a DecayModel with the default policy parameters.
func NewDecayModel() DecayModel {
	return DecayModel{
		WindowHours:    DefaultWindowHours,
		SpanMultiplier: DefaultSpanMultiplier,
		Floor:          DefaultDecayFloor,
	}
}

// Decay returns the decay multiplier for a record ageHours old, rounded to
// 2 decimals. Internal computation is full precision; only the returned
// value is rounded.
func (m DecayModel) Decay(ageHours float64) float64 {
	if ageHours <= m.WindowHours {
		return 1.0
	}

	decay := 1.0 - (ageHours/(m.WindowHours*m.SpanMultiplier))*0.7
	return round2(math.Max(m.Floor, decay))
}

// AgeHours returns the age of a record timestamp relative to now, in hours.
// A zero timestamp means the record's timestamp was missing or unparsable:
// the model fails soft with age 0 (which decays to 1.0), and the second
// return is false so the caller can surface a data-quality warning.
func (m DecayModel) AgeHours(recordTime, now time.Time) (float64, bool) {
	if recordTime.IsZero() {
		return 0, false
	}

	age := now.Sub(recordTime).Hours()
	if age < 0 {
		age = 0
	}
	return age, true
}
