package statusled

// FakeDriver records LED transitions for test assertions.
type FakeDriver struct {
	// States contains every value passed to Set, in order.
	States []bool

	// SetError, if set, will be returned by Set.
	SetError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeDriver creates a FakeDriver.
func NewFakeDriver() *FakeDriver {
	return &FakeDriver{}
}

// Set records the state.
func (f *FakeDriver) Set(healthy bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.States = append(f.States, healthy)
	return nil
}

// Last returns the most recent state and whether Set was ever called.
func (f *FakeDriver) Last() (bool, bool) {
	if len(f.States) == 0 {
		return false, false
	}
	return f.States[len(f.States)-1], true
}

// Close marks the driver as closed.
func (f *FakeDriver) Close() error {
	f.Closed = true
	return nil
}
