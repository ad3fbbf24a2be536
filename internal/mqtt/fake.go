package mqtt

import "sync"

// Message is one recorded publish.
type Message struct {
	Topic   string
	Payload string
}

// FakePublisher records published values for test assertions.
// Safe for concurrent use — the acquisition loop publishes from its own
// goroutine.
type FakePublisher struct {
	mu sync.Mutex

	// Messages contains all published messages in order.
	Messages []Message

	// TemperatureError, if set, will be returned by PublishTemperature.
	TemperatureError error

	// EnergyError, if set, will be returned by PublishEnergy.
	EnergyError error

	// Connected controls the return value of IsConnected.
	Connected bool

	// Closed tracks if Close was called.
	Closed bool

	base string
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher(baseTopic string) *FakePublisher {
	return &FakePublisher{base: baseTopic, Connected: true}
}

// PublishTemperature records the sensor value.
func (f *FakePublisher) PublishTemperature(name string, tempC float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.TemperatureError != nil {
		return f.TemperatureError
	}
	return f.record(Topic(f.base, name), tempC)
}

// PublishEnergy records the energy value.
func (f *FakePublisher) PublishEnergy(kwh float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.EnergyError != nil {
		return f.EnergyError
	}
	return f.record(Topic(f.base, EnergyTopic), kwh)
}

func (f *FakePublisher) record(topic string, v float64) error {
	payload, err := FormatValue(v)
	if err != nil {
		return &PublishError{Topic: topic, Kind: SerializationFailure, Err: err}
	}
	f.Messages = append(f.Messages, Message{Topic: topic, Payload: string(payload)})
	return nil
}

// Published returns a copy of the recorded messages.
func (f *FakePublisher) Published() []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Message(nil), f.Messages...)
}

// OnTopic returns the recorded payloads for one topic, in order.
func (f *FakePublisher) OnTopic(topic string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, m := range f.Messages {
		if m.Topic == topic {
			out = append(out, m.Payload)
		}
	}
	return out
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Connected
}

// SetErrors scripts failures for subsequent publishes.
func (f *FakePublisher) SetErrors(temp, energy error) {
	f.mu.Lock()
	f.TemperatureError = temp
	f.EnergyError = energy
	f.mu.Unlock()
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// Reset clears recorded messages and scripted errors.
func (f *FakePublisher) Reset() {
	f.mu.Lock()
	f.Messages = nil
	f.TemperatureError = nil
	f.EnergyError = nil
	f.Closed = false
	f.mu.Unlock()
}
