package sensor

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"sync"
	"time"
)

// SimSource generates synthetic temperatures for development without
// hardware: a slow sinusoid around a per-sensor base, plus a little seeded
// noise. For a fixed sensor ID the sequence of values over successive reads
// is fully deterministic, so UI and regression tests are reproducible.
// It never fails.
type SimSource struct {
	// Now supplies read timestamps; defaults to time.Now.
	Now func() time.Time

	mu     sync.Mutex
	states map[string]*simState
}

type simState struct {
	base  float64
	phase float64
	step  int
	rng   *rand.Rand
}

// Sinusoid shape: one full cycle per simPeriod reads, ±simAmplitude around
// the base.
const (
	simAmplitude = 6.0
	simPeriod    = 180
	simNoise     = 0.15
)

// NewSimSource creates a simulated source.
func NewSimSource() *SimSource {
	return &SimSource{
		Now:    time.Now,
		states: make(map[string]*simState),
	}
}

// Read returns the next value in the sensor's deterministic sequence.
func (s *SimSource) Read(_ context.Context, id string) (Reading, error) {
	s.mu.Lock()
	st, ok := s.states[id]
	if !ok {
		st = newSimState(id)
		s.states[id] = st
	}
	temp := st.next()
	s.mu.Unlock()

	return Reading{ID: id, TempC: temp, At: s.Now()}, nil
}

// Close is a no-op.
func (s *SimSource) Close() error {
	return nil
}

func newSimState(id string) *simState {
	h := fnv.New64a()
	h.Write([]byte(id))
	seed := h.Sum64()

	return &simState{
		// Base between 35°C and 65°C, spread across sensors by ID.
		base:  35.0 + float64(seed%31),
		phase: float64(seed%uint64(simPeriod)) / simPeriod,
		rng:   rand.New(rand.NewSource(int64(seed))),
	}
}

func (st *simState) next() float64 {
	angle := 2 * math.Pi * (float64(st.step)/simPeriod + st.phase)
	st.step++
	v := st.base + simAmplitude*math.Sin(angle) + st.rng.NormFloat64()*simNoise
	return math.Round(v*100) / 100
}
