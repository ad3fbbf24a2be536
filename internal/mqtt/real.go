package mqtt

import (
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

const publishWait = 5 * time.Second

// RealPublisher publishes to an actual MQTT broker.
type RealPublisher struct {
	client paho.Client
	base   string
	retry  RetryPolicy

	// sleep is time.Sleep, injectable for tests.
	sleep func(time.Duration)
}

// NewRealPublisher creates a publisher connected to the given broker
// (tcp://host:port). The paho client auto-reconnects in the background;
// individual publishes while disconnected fail and are retried per policy.
func NewRealPublisher(broker, baseTopic string, retry RetryPolicy) (*RealPublisher, error) {
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("boilert").
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return &RealPublisher{
		client: client,
		base:   baseTopic,
		retry:  retry,
		sleep:  time.Sleep,
	}, nil
}

// PublishTemperature sends a sensor's temperature to {base}/{name}.
func (p *RealPublisher) PublishTemperature(name string, tempC float64) error {
	return p.publish(Topic(p.base, name), tempC)
}

// PublishEnergy sends the stored energy to {base}/energy.
func (p *RealPublisher) PublishEnergy(kwh float64) error {
	return p.publish(Topic(p.base, EnergyTopic), kwh)
}

// publish sends one value with bounded exponential retry. QoS 1
// (at-least-once), not retained — consumers want the latest value, and a
// missed one is superseded on the next tick anyway.
func (p *RealPublisher) publish(topic string, v float64) error {
	payload, err := FormatValue(v)
	if err != nil {
		return &PublishError{Topic: topic, Kind: SerializationFailure, Err: err}
	}

	return publishWithRetry(func() *PublishError {
		token := p.client.Publish(topic, 1, false, payload)
		if !token.WaitTimeout(publishWait) {
			return &PublishError{Topic: topic, Kind: Timeout, Err: fmt.Errorf("publish timed out")}
		}
		if err := token.Error(); err != nil {
			return &PublishError{Topic: topic, Kind: Unreachable, Err: err}
		}
		return nil
	}, p.retry, p.sleep)
}

// publishWithRetry runs send until it succeeds or the policy is exhausted,
// sleeping the backoff delay between attempts. Returns the last failure.
func publishWithRetry(send func() *PublishError, retry RetryPolicy, sleep func(time.Duration)) error {
	var last *PublishError
	for attempt := 1; attempt <= retry.Attempts; attempt++ {
		if attempt > 1 {
			sleep(retry.Delay(attempt - 1))
		}

		last = send()
		if last == nil {
			if attempt > 1 {
				log.Debug().Int("attempt", attempt).Msg("publish succeeded after retry")
			}
			return nil
		}
	}
	return last
}

// IsConnected reports broker connectivity.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnected()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
