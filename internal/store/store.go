// Package store holds the last-known-good state of the acquisition pipeline
// behind atomic whole-snapshot swaps. The acquisition loop is the only
// writer; the web view (and any other presentation collaborator) reads
// value-type snapshots and can never alias or corrupt core state.
package store

import (
	"sync"
	"time"

	"github.com/sweeney/boilert/internal/energy"
	"github.com/sweeney/boilert/internal/history"
	"github.com/sweeney/boilert/internal/sensor"
)

// SensorState is the externally visible state of one sensor.
type SensorState struct {
	Name string
	ID   string

	// Current is the most recent read attempt. On failure its TempC is
	// NaN and At still advances, so staleness of the last good value is
	// observable by comparing timestamps.
	Current sensor.Reading

	// LastGood is the most recent valid reading. Zero value until the
	// sensor has succeeded once.
	LastGood sensor.Reading

	// History is the 24-hour trend, oldest first. Owned by the snapshot.
	History []history.Point
}

// Meta is static daemon information for display.
type Meta struct {
	StartTime time.Time
	Broker    string
	BaseTopic string
	Tick      time.Duration
	Simulated bool
}

// Snapshot is a point-in-time view of the whole pipeline.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Sensors   []SensorState
	Energy    energy.State
	UpdatedAt time.Time

	MQTTConnected bool
	Meta          Meta
	Now           time.Time
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.Meta.StartTime)
}

// Temps returns the current temperatures in sensor order (NaN for failed
// sensors), the shape the energy model consumes.
func (s Snapshot) Temps() []float64 {
	out := make([]float64, len(s.Sensors))
	for i, st := range s.Sensors {
		out[i] = st.Current.TempC
	}
	return out
}

// Store holds the current snapshot behind a mutex.
type Store struct {
	mu            sync.RWMutex
	snap          Snapshot
	mqttConnected bool
}

// New creates a Store whose initial snapshot carries the configured sensors
// and daemon metadata. Until the first tick each sensor holds a NaN reading
// with a zero timestamp — "no data yet" must not look like 0°C.
func New(meta Meta, sensors []SensorState) *Store {
	init := Snapshot{
		Sensors: append([]SensorState(nil), sensors...),
		Energy:  energy.Unknown(),
		Meta:    meta,
	}
	for i := range init.Sensors {
		init.Sensors[i].Current = sensor.Failed(init.Sensors[i].ID, time.Time{})
	}
	return &Store{snap: init}
}

// Swap atomically replaces the snapshot. Called by the acquisition loop once
// per tick with a freshly built value; readers never see a partial update.
func (s *Store) Swap(snap Snapshot) {
	s.mu.Lock()
	snap.Meta = s.snap.Meta
	s.snap = snap
	s.mu.Unlock()
}

// SetMQTTConnected records broker connectivity for display.
func (s *Store) SetMQTTConnected(connected bool) {
	s.mu.Lock()
	s.mqttConnected = connected
	s.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the pipeline state. The Now
// field is set to the current time at the moment of the call.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	snap := s.snap
	snap.Sensors = append([]SensorState(nil), s.snap.Sensors...)
	snap.MQTTConnected = s.mqttConnected
	s.mu.RUnlock()
	snap.Now = time.Now()
	return snap
}
