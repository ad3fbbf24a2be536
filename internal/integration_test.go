package internal

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/boilert/internal/acquire"
	"github.com/sweeney/boilert/internal/config"
	"github.com/sweeney/boilert/internal/energy"
	"github.com/sweeney/boilert/internal/mqtt"
	"github.com/sweeney/boilert/internal/sensor"
	"github.com/sweeney/boilert/internal/store"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// TestIntegrationFullFlow drives the whole pipeline on fakes: scripted
// sensors through the acquisition loop into the store and out to MQTT.
func TestIntegrationFullFlow(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ck := &clock{now: start}

	// T1: two good ticks in one bucket, a timeout at the bucket boundary,
	// then recovery. T2 stays healthy throughout.
	src := sensor.NewFakeSource(map[string][]sensor.FakeSample{
		"28-000000000001": {
			{TempC: 60},
			{TempC: 61},
			{Err: &sensor.Error{ID: "28-000000000001", Kind: sensor.Timeout}},
			{TempC: 59},
		},
		"28-000000000002": {
			{TempC: 58},
			{TempC: 58},
			{TempC: 57},
			{TempC: 57},
		},
	})
	src.Now = ck.Now

	pub := mqtt.NewFakePublisher("boilert/sensors")
	st := store.New(store.Meta{StartTime: start, BaseTopic: "boilert/sensors"}, []store.SensorState{
		{Name: "T1", ID: "28-000000000001"},
		{Name: "T2", ID: "28-000000000002"},
	})

	loop := acquire.New(acquire.Config{
		Sensors: []config.Sensor{
			{Name: "T1", ID: "28-000000000001"},
			{Name: "T2", ID: "28-000000000002"},
		},
		Source:      src,
		ReadTimeout: time.Second,
		Energy:      energy.Params{VolumeL: 500, ReferenceTempC: 15, Coefficient: 1.162},
		Store:       st,
		Publisher:   pub,
		Status:      pub,
	})

	ctx, cancel := context.WithCancel(context.Background())
	tick := make(chan time.Time)
	done := make(chan error, 1)
	go func() {
		done <- loop.Run(ctx, tick)
	}()

	// Waiting for the cumulative publish count keeps each tick fully
	// processed before the clock moves again.
	totalIs := func(n int) func() bool {
		return func() bool { return len(pub.Published()) == n }
	}

	// Tick 0: both sensors fine (T1, T2, energy).
	tick <- ck.Now()
	waitFor(t, "tick 0 publishes", totalIs(3))

	// Tick 1: 2 seconds later, same history bucket.
	ck.Advance(2 * time.Second)
	tick <- ck.Now()
	waitFor(t, "tick 1 publishes", totalIs(6))

	// Tick 2: next bucket; T1 times out, T2 keeps flowing (T2, energy).
	ck.Advance(15 * time.Minute)
	tick <- ck.Now()
	waitFor(t, "tick 2 publishes", totalIs(8))

	// Tick 3: T1 recovered.
	ck.Advance(2 * time.Second)
	tick <- ck.Now()
	waitFor(t, "tick 3 publishes", totalIs(11))

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop")
	}

	snap := st.Snapshot()

	// T1: bucket 0 holds the tick-1 value (same-bucket overwrite), bucket 1
	// holds the recovery value; the timeout never fabricated a point.
	h1 := snap.Sensors[0].History
	if len(h1) != 2 {
		t.Fatalf("T1 history: got %d points, want 2", len(h1))
	}
	if h1[0].TempC != 61 || h1[1].TempC != 59 {
		t.Errorf("T1 history: got [%v %v], want [61 59]", h1[0].TempC, h1[1].TempC)
	}

	// T2 advanced every bucket.
	h2 := snap.Sensors[1].History
	if len(h2) != 2 {
		t.Fatalf("T2 history: got %d points, want 2", len(h2))
	}

	// Energy reflects the last tick: avg(59, 57) = 58.
	if !snap.Energy.Valid {
		t.Fatal("expected valid energy")
	}
	if snap.Energy.AvgTempC != 58 {
		t.Errorf("AvgTempC: got %v, want 58", snap.Energy.AvgTempC)
	}

	// Wire format: bare numerics on {base}/{name} and {base}/energy.
	energyMsgs := pub.OnTopic("boilert/sensors/energy")
	if len(energyMsgs) != 4 {
		t.Fatalf("energy publishes: got %d, want 4", len(energyMsgs))
	}
	if _, err := strconv.ParseFloat(energyMsgs[len(energyMsgs)-1], 64); err != nil {
		t.Errorf("energy payload not numeric: %q", energyMsgs[len(energyMsgs)-1])
	}

	// T1's timeout tick published nothing for T1.
	if got := len(pub.OnTopic("boilert/sensors/T1")); got != 3 {
		t.Errorf("T1 publishes: got %d, want 3", got)
	}
}
