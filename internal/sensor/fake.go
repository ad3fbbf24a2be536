package sensor

import (
	"context"
	"errors"
	"time"
)

// FakeSource is a test double that returns scripted readings per sensor ID.
type FakeSource struct {
	// Samples contains scripted values per sensor ID. Each Read consumes
	// the next sample; when exhausted, the last sample repeats.
	Samples map[string][]FakeSample

	// Now supplies read timestamps; defaults to time.Now.
	Now func() time.Time

	// Closed tracks if Close was called.
	Closed bool

	index map[string]int
}

// FakeSample is a single scripted reading. If Err is set, Read returns it
// along with a failed reading.
type FakeSample struct {
	TempC float64
	Err   error
}

// NewFakeSource creates a FakeSource with the given scripted samples.
func NewFakeSource(samples map[string][]FakeSample) *FakeSource {
	return &FakeSource{
		Samples: samples,
		Now:     time.Now,
		index:   make(map[string]int),
	}
}

// Read returns the next scripted sample for the sensor.
func (f *FakeSource) Read(_ context.Context, id string) (Reading, error) {
	samples := f.Samples[id]
	if len(samples) == 0 {
		return Failed(id, f.Now()), errors.New("no samples configured for " + id)
	}

	i := f.index[id]
	sample := samples[i]
	if i < len(samples)-1 {
		f.index[id] = i + 1
	}

	at := f.Now()
	if sample.Err != nil {
		return Failed(id, at), sample.Err
	}
	return Reading{ID: id, TempC: sample.TempC, At: at}, nil
}

// Close marks the source as closed.
func (f *FakeSource) Close() error {
	f.Closed = true
	return nil
}

// Reset rewinds all sensors to their first sample.
func (f *FakeSource) Reset() {
	f.index = make(map[string]int)
	f.Closed = false
}
