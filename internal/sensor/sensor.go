// Package sensor provides temperature acquisition with hardware abstraction.
// The real implementation reads DS18B20 sensors through the Linux 1-Wire
// sysfs interface. The simulated implementation generates deterministic
// synthetic data for development without hardware.
package sensor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// Source reads temperatures for configured sensors.
type Source interface {
	// Read returns the current temperature reading for the given sensor ID.
	// On failure it returns a *Error and a Reading whose TempC is NaN with
	// the read timestamp set, so callers can record the attempt.
	Read(ctx context.Context, id string) (Reading, error)

	// Close releases any underlying resources.
	Close() error
}

// Reading is a single temperature sample. Immutable once produced.
type Reading struct {
	ID    string
	TempC float64 // NaN when the read failed
	At    time.Time
}

// Valid reports whether the reading carries a usable temperature.
func (r Reading) Valid() bool {
	return !math.IsNaN(r.TempC)
}

// Failed builds the reading recorded for a failed read attempt. The
// temperature is NaN, never zero, so a failure can't masquerade as 0°C.
func Failed(id string, at time.Time) Reading {
	return Reading{ID: id, TempC: math.NaN(), At: at}
}

// Kind classifies a sensor read failure.
type Kind int

const (
	IoFailure Kind = iota + 1
	Timeout
	ParseFailure
)

// String returns the kind name for logs.
func (k Kind) String() string {
	switch k {
	case IoFailure:
		return "io"
	case Timeout:
		return "timeout"
	case ParseFailure:
		return "parse"
	}
	return "unknown"
}

// Error is a per-reading failure. Non-fatal: it degrades that sensor's
// contribution for the tick and nothing else.
type Error struct {
	ID   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sensor %s: %s: %v", e.ID, e.Kind, e.Err)
	}
	return fmt.Sprintf("sensor %s: %s", e.ID, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the failure kind of err, or 0 if err is not a sensor error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}
