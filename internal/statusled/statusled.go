// Package statusled drives an optional front-panel LED that reflects
// acquisition health: lit while at least one sensor is readable, dark when
// the whole tick failed. The real implementation uses the Linux GPIO
// character device; a fake is provided for tests.
package statusled

// Driver sets the LED state.
type Driver interface {
	// Set turns the LED on (healthy) or off.
	Set(healthy bool) error

	// Close turns the LED off and releases the GPIO line.
	Close() error
}

// DefaultPin is the BCM pin the LED is wired to on the reference build.
const DefaultPin = 17
