// Package acquire drives the acquisition cycle: read every sensor, advance
// the per-sensor history, recompute stored energy, swap the snapshot, and
// hand it to the publisher. Ticks never overlap, and publishing runs on its
// own goroutine so a slow broker cannot stall sensor polling.
package acquire

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sweeney/boilert/internal/config"
	"github.com/sweeney/boilert/internal/energy"
	"github.com/sweeney/boilert/internal/history"
	"github.com/sweeney/boilert/internal/mqtt"
	"github.com/sweeney/boilert/internal/sensor"
	"github.com/sweeney/boilert/internal/statusled"
	"github.com/sweeney/boilert/internal/store"
)

// Config wires a Loop.
type Config struct {
	Sensors     []config.Sensor
	Source      sensor.Source
	ReadTimeout time.Duration
	Energy      energy.Params
	Store       *store.Store
	Publisher   mqtt.Publisher

	// Status, if non-nil, feeds broker connectivity into the store.
	Status mqtt.ConnectionStatus

	// LED, if non-nil, reflects acquisition health after every tick.
	LED statusled.Driver
}

// Loop owns the per-sensor rings and the latest-wins publish handoff.
type Loop struct {
	cfg   Config
	rings []*history.Ring
	last  []sensor.Reading // most recent valid reading per sensor

	// out is a 1-slot channel between acquisition and publishing. A new
	// snapshot displaces an unconsumed one: best-effort, superseding.
	out chan store.Snapshot
}

// New creates a Loop with empty history rings.
func New(cfg Config) *Loop {
	rings := make([]*history.Ring, len(cfg.Sensors))
	last := make([]sensor.Reading, len(cfg.Sensors))
	for i, sc := range cfg.Sensors {
		rings[i] = history.New()
		last[i] = sensor.Failed(sc.ID, time.Time{})
	}
	return &Loop{
		cfg:   cfg,
		rings: rings,
		last:  last,
		out:   make(chan store.Snapshot, 1),
	}
}

// Run processes ticks until ctx is cancelled. The tick channel is injected
// so tests can drive the loop deterministically. Cancellation between ticks
// (or mid-publish) drops at most the current tick's publish; the store is
// only ever updated with complete snapshots.
func (l *Loop) Run(ctx context.Context, tick <-chan time.Time) error {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		l.publishLoop(ctx)
	}()
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("acquisition loop stopping")
			return nil
		case t := <-tick:
			l.tick(ctx, t)
		}
	}
}

// tick runs one acquisition cycle. Per-sensor failures degrade that sensor's
// contribution and nothing else; the cycle always completes.
func (l *Loop) tick(ctx context.Context, now time.Time) {
	states := make([]store.SensorState, len(l.cfg.Sensors))
	healthy := false

	for i, sc := range l.cfg.Sensors {
		readCtx, cancel := context.WithTimeout(ctx, l.cfg.ReadTimeout)
		r, err := l.cfg.Source.Read(readCtx, sc.ID)
		cancel()

		if err != nil {
			log.Warn().Err(err).Str("sensor", sc.Name).Msg("sensor read failed")
		} else {
			l.last[i] = r
			healthy = true
			// The ring overwrites same-bucket pushes, so pushing every
			// valid reading advances history exactly once per 15-minute
			// bucket. A sensor with no valid reading in a bucket leaves
			// its ring unadvanced.
			l.rings[i].Push(history.Point{Bucket: history.BucketFor(r.At), TempC: r.TempC})
		}

		states[i] = store.SensorState{
			Name:     sc.Name,
			ID:       sc.ID,
			Current:  r,
			LastGood: l.last[i],
			History:  l.rings[i].Snapshot(),
		}
	}

	snap := store.Snapshot{
		Sensors:   states,
		Energy:    energy.Compute(tempsOf(states), l.cfg.Energy),
		UpdatedAt: now,
	}
	l.cfg.Store.Swap(snap)

	if l.cfg.LED != nil {
		if err := l.cfg.LED.Set(healthy); err != nil {
			log.Warn().Err(err).Msg("status led update failed")
		}
	}

	l.offer(snap)
}

func tempsOf(states []store.SensorState) []float64 {
	out := make([]float64, len(states))
	for i, st := range states {
		out[i] = st.Current.TempC
	}
	return out
}

// offer hands the snapshot to the publish goroutine without blocking,
// displacing any unconsumed older snapshot.
func (l *Loop) offer(snap store.Snapshot) {
	for {
		select {
		case l.out <- snap:
			return
		default:
			select {
			case <-l.out:
			default:
			}
		}
	}
}

// publishLoop consumes snapshots and pushes them to the broker. Retry and
// backoff live inside the publisher; exhausted retries are logged and the
// snapshot is dropped — the next one supersedes it.
func (l *Loop) publishLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-l.out:
			l.publish(snap)
		}
	}
}

func (l *Loop) publish(snap store.Snapshot) {
	for _, st := range snap.Sensors {
		if !st.Current.Valid() {
			continue
		}
		if err := l.cfg.Publisher.PublishTemperature(st.Name, st.Current.TempC); err != nil {
			log.Warn().Err(err).Str("sensor", st.Name).Msg("publish failed")
		}
	}

	if snap.Energy.Valid {
		if err := l.cfg.Publisher.PublishEnergy(snap.Energy.KWH); err != nil {
			log.Warn().Err(err).Msg("energy publish failed")
		}
	} else {
		log.Debug().Msg("energy unknown this tick, skipping publish")
	}

	if l.cfg.Status != nil {
		l.cfg.Store.SetMQTTConnected(l.cfg.Status.IsConnected())
	}
}
