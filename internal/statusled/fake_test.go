package statusled

import (
	"errors"
	"testing"
)

func TestFakeDriverRecordsStates(t *testing.T) {
	f := NewFakeDriver()

	if _, ok := f.Last(); ok {
		t.Error("Last reported a state before any Set")
	}

	if err := f.Set(true); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := f.Set(false); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if len(f.States) != 2 || !f.States[0] || f.States[1] {
		t.Errorf("States: got %v, want [true false]", f.States)
	}
	if last, ok := f.Last(); !ok || last {
		t.Errorf("Last: got %v,%v, want false,true", last, ok)
	}
}

func TestFakeDriverSetError(t *testing.T) {
	f := NewFakeDriver()
	f.SetError = errors.New("gpio busy")

	if err := f.Set(true); err == nil {
		t.Error("expected scripted error")
	}
	if len(f.States) != 0 {
		t.Errorf("failed Set was recorded: %v", f.States)
	}
}

func TestFakeDriverClose(t *testing.T) {
	f := NewFakeDriver()
	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !f.Closed {
		t.Error("Closed not set")
	}
}
