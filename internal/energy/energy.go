// Package energy computes the thermal energy stored in the boiler from the
// current sensor temperatures. This package is pure: no I/O, no clock, no
// dependencies beyond the standard library.
package energy

import "math"

// Params are the boiler's physical parameters.
type Params struct {
	VolumeL        float64
	ReferenceTempC float64
	// Coefficient is Wh/(L·K); 1.162 for water.
	Coefficient float64
}

// State is the computed energy for one acquisition tick. Derived from the
// tick's readings, never independently mutated.
type State struct {
	AvgTempC float64
	DeltaT   float64
	KWH      float64
	// Valid is false when no sensor produced a usable temperature this
	// tick. The float fields are then NaN — an all-failed tick must never
	// present itself as 0 kWh.
	Valid bool
}

// Unknown is the state for a tick with no valid readings.
func Unknown() State {
	nan := math.NaN()
	return State{AvgTempC: nan, DeltaT: nan, KWH: nan, Valid: false}
}

// Compute derives the stored energy from the given temperatures. NaN entries
// (failed readings) are excluded from the mean; if nothing remains the
// result is Unknown. A boiler colder than the reference yields negative
// energy — the value is not clamped.
func Compute(temps []float64, p Params) State {
	var sum float64
	var n int
	for _, t := range temps {
		if math.IsNaN(t) {
			continue
		}
		sum += t
		n++
	}
	if n == 0 {
		return Unknown()
	}

	avg := sum / float64(n)
	deltaT := avg - p.ReferenceTempC
	return State{
		AvgTempC: avg,
		DeltaT:   deltaT,
		KWH:      p.VolumeL * deltaT * p.Coefficient / 1000.0,
		Valid:    true,
	}
}
