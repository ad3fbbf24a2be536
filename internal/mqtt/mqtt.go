// Package mqtt publishes current temperatures and stored energy to the
// broker, with abstraction for testing. Publishing is best-effort: each
// message is retried with bounded backoff and then dropped — the next tick's
// values supersede it.
package mqtt

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// EnergyTopic is the subtopic carrying the total stored energy.
const EnergyTopic = "energy"

// Publisher publishes values to MQTT.
type Publisher interface {
	// PublishTemperature sends a sensor's current temperature to
	// {base_topic}/{name}. Returns a *PublishError on failure; must not
	// crash or block the acquisition loop.
	PublishTemperature(name string, tempC float64) error

	// PublishEnergy sends the total stored energy in kWh to
	// {base_topic}/energy.
	PublishEnergy(kwh float64) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// Kind classifies a publish failure.
type Kind int

const (
	Unreachable Kind = iota + 1
	Timeout
	SerializationFailure
)

// String returns the kind name for logs.
func (k Kind) String() string {
	switch k {
	case Unreachable:
		return "unreachable"
	case Timeout:
		return "timeout"
	case SerializationFailure:
		return "serialization"
	}
	return "unknown"
}

// PublishError is a per-publish failure, surfaced after retries are
// exhausted. Non-fatal to acquisition.
type PublishError struct {
	Topic string
	Kind  Kind
	Err   error
}

func (e *PublishError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("publish %s: %s: %v", e.Topic, e.Kind, e.Err)
	}
	return fmt.Sprintf("publish %s: %s", e.Topic, e.Kind)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

// Topic joins the base topic and a sensor/energy label.
func Topic(base, name string) string {
	return base + "/" + name
}

// FormatValue renders the wire payload: a bare numeric value with two
// decimal places. NaN and infinities are not representable on the wire.
func FormatValue(v float64) ([]byte, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("value %v not representable", v)
	}
	return []byte(strconv.FormatFloat(v, 'f', 2, 64)), nil
}

// RetryPolicy bounds the per-message retry loop.
type RetryPolicy struct {
	// Attempts is the total number of tries per message (first try
	// included).
	Attempts int
	// InitialDelay is the wait after the first failure, doubling each
	// retry up to MaxDelay.
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// DefaultRetryPolicy retries each message twice after the first failure.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts:     3,
		InitialDelay: 250 * time.Millisecond,
		MaxDelay:     2 * time.Second,
	}
}

// Delay returns the backoff before retry attempt n (n=1 is the first retry).
func (p RetryPolicy) Delay(n int) time.Duration {
	d := p.InitialDelay
	for i := 1; i < n; i++ {
		d *= 2
		if d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}
