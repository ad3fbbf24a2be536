package store

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/boilert/internal/energy"
	"github.com/sweeney/boilert/internal/history"
	"github.com/sweeney/boilert/internal/sensor"
)

func newTestStore() *Store {
	meta := Meta{
		StartTime: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Broker:    "tcp://localhost:1883",
		BaseTopic: "boilert/sensors",
		Tick:      2 * time.Second,
	}
	return New(meta, []SensorState{
		{Name: "T1", ID: "28-000000000001"},
		{Name: "T2", ID: "28-000000000002"},
	})
}

func TestInitialSnapshot(t *testing.T) {
	s := newTestStore()
	snap := s.Snapshot()

	if len(snap.Sensors) != 2 {
		t.Fatalf("Sensors: got %d, want 2", len(snap.Sensors))
	}
	if snap.Sensors[0].Name != "T1" {
		t.Errorf("Sensors[0].Name: got %q, want T1", snap.Sensors[0].Name)
	}
	if snap.Energy.Valid {
		t.Error("initial energy must be unknown")
	}
	if snap.Sensors[0].Current.Valid() {
		t.Error("no data yet must not look like a valid reading")
	}
	if snap.MQTTConnected {
		t.Error("expected MQTTConnected=false initially")
	}
	if snap.Meta.Broker != "tcp://localhost:1883" {
		t.Errorf("Meta.Broker: got %q", snap.Meta.Broker)
	}
}

func TestSwapReplacesWholeSnapshot(t *testing.T) {
	s := newTestStore()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	s.Swap(Snapshot{
		Sensors: []SensorState{
			{Name: "T1", ID: "28-000000000001", Current: sensor.Reading{ID: "28-000000000001", TempC: 58.5, At: at}},
			{Name: "T2", ID: "28-000000000002", Current: sensor.Failed("28-000000000002", at)},
		},
		Energy:    energy.Compute([]float64{58.5}, energy.Params{VolumeL: 500, ReferenceTempC: 15, Coefficient: 1.162}),
		UpdatedAt: at,
	})

	snap := s.Snapshot()
	if snap.Sensors[0].Current.TempC != 58.5 {
		t.Errorf("T1 temp: got %v, want 58.5", snap.Sensors[0].Current.TempC)
	}
	if snap.Sensors[1].Current.Valid() {
		t.Error("T2 should carry a failed reading")
	}
	if !snap.Energy.Valid {
		t.Error("energy should be valid")
	}
	if !snap.UpdatedAt.Equal(at) {
		t.Errorf("UpdatedAt: got %v, want %v", snap.UpdatedAt, at)
	}
	// Meta survives swaps even though the loop doesn't carry it.
	if snap.Meta.BaseTopic != "boilert/sensors" {
		t.Errorf("Meta.BaseTopic lost across swap: %q", snap.Meta.BaseTopic)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	s := newTestStore()
	at := time.Now()
	s.Swap(Snapshot{
		Sensors: []SensorState{{
			Name:    "T1",
			Current: sensor.Reading{TempC: 60, At: at},
			History: []history.Point{{Bucket: history.BucketFor(at), TempC: 60}},
		}},
		UpdatedAt: at,
	})

	snap := s.Snapshot()
	snap.Sensors[0].Current.TempC = -999
	snap.Sensors[0].Name = "corrupted"

	again := s.Snapshot()
	if again.Sensors[0].Current.TempC != 60 {
		t.Error("mutating a snapshot element leaked into the store")
	}
	if again.Sensors[0].Name != "T1" {
		t.Error("mutating a snapshot element leaked into the store")
	}
}

func TestSetMQTTConnected(t *testing.T) {
	s := newTestStore()

	s.SetMQTTConnected(true)
	if !s.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=true")
	}

	// Connectivity survives a snapshot swap.
	s.Swap(Snapshot{Sensors: []SensorState{{Name: "T1"}}})
	if !s.Snapshot().MQTTConnected {
		t.Error("MQTTConnected lost across swap")
	}
}

func TestTemps(t *testing.T) {
	at := time.Now()
	snap := Snapshot{Sensors: []SensorState{
		{Current: sensor.Reading{TempC: 60, At: at}},
		{Current: sensor.Failed("x", at)},
		{Current: sensor.Reading{TempC: 58, At: at}},
	}}

	temps := snap.Temps()
	if len(temps) != 3 {
		t.Fatalf("len: got %d, want 3", len(temps))
	}
	if temps[0] != 60 || temps[2] != 58 {
		t.Errorf("temps: got %v", temps)
	}
	if !math.IsNaN(temps[1]) {
		t.Errorf("failed sensor temp: got %v, want NaN", temps[1])
	}
}

func TestUptime(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{Meta: Meta{StartTime: start}, Now: start.Add(42 * time.Minute)}
	if snap.Uptime() != 42*time.Minute {
		t.Errorf("Uptime: got %v, want 42m", snap.Uptime())
	}
}

func TestConcurrentReaders(t *testing.T) {
	s := newTestStore()
	done := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
					_ = s.Snapshot()
				}
			}
		}()
	}

	for i := 0; i < 1000; i++ {
		s.Swap(Snapshot{
			Sensors:   []SensorState{{Name: "T1", Current: sensor.Reading{TempC: float64(i)}}},
			UpdatedAt: time.Now(),
		})
	}
	close(done)
	wg.Wait()
}
