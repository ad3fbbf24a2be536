// Package config loads the boilert configuration from config.toml with
// environment overrides. Configuration errors are fatal at startup; nothing
// in this package is consulted again at runtime.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Defaults applied when config.toml omits a key.
const (
	DefaultPort        = 1883
	DefaultBaseTopic   = "boilert/sensors"
	DefaultCoefficient = 1.162 // Wh/(L·K) for water
	DefaultTick        = 2 * time.Second
	DefaultReadTimeout = 3 * time.Second
)

// Sensor describes a single configured temperature sensor.
type Sensor struct {
	// Name is the display/topic label, e.g. "T1".
	Name string `mapstructure:"name"`
	// ID is the 1-Wire device ID (e.g. "28-000000000001"), or the
	// simulation seed when running with --sim.
	ID string `mapstructure:"id"`
}

// MQTT holds broker connection settings.
type MQTT struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	BaseTopic string `mapstructure:"base_topic"`
}

// Broker returns the paho broker URL for the configured endpoint.
func (m MQTT) Broker() string {
	return fmt.Sprintf("tcp://%s:%d", m.Host, m.Port)
}

// Boiler holds the physical parameters for the energy calculation.
type Boiler struct {
	VolumeL           float64 `mapstructure:"volume_l"`
	ReferenceTempC    float64 `mapstructure:"reference_temp_c"`
	EnergyCoefficient float64 `mapstructure:"energy_coefficient"`
}

// Config is the root configuration.
type Config struct {
	MQTT    MQTT     `mapstructure:"mqtt"`
	Boiler  Boiler   `mapstructure:"boiler"`
	Sensors []Sensor `mapstructure:"sensors"`

	// Tick is the acquisition interval. Independent of the 15-minute
	// history bucket width.
	Tick time.Duration `mapstructure:"tick"`
	// ReadTimeout bounds a single sensor read.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
}

// Load reads the configuration from the given file path (or "config.toml"
// in the working directory when path is empty), applying BOILERT_* env
// overrides and defaults.
func Load(path string) (Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
	}

	v.SetDefault("mqtt.port", DefaultPort)
	v.SetDefault("mqtt.base_topic", DefaultBaseTopic)
	v.SetDefault("boiler.energy_coefficient", DefaultCoefficient)
	v.SetDefault("tick", DefaultTick)
	v.SetDefault("read_timeout", DefaultReadTimeout)

	v.SetEnvPrefix("BOILERT")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the constraints that make a configuration usable.
func (c Config) Validate() error {
	if c.MQTT.Host == "" {
		return fmt.Errorf("mqtt.host is required")
	}
	if c.MQTT.Port <= 0 || c.MQTT.Port > 65535 {
		return fmt.Errorf("mqtt.port %d out of range", c.MQTT.Port)
	}
	if c.MQTT.BaseTopic == "" {
		return fmt.Errorf("mqtt.base_topic is required")
	}
	if n := len(c.Sensors); n < 1 || n > 6 {
		return fmt.Errorf("between 1 and 6 sensors required, got %d", n)
	}
	seen := make(map[string]bool, len(c.Sensors))
	for i, s := range c.Sensors {
		if s.Name == "" {
			return fmt.Errorf("sensor %d: name is required", i)
		}
		if s.ID == "" {
			return fmt.Errorf("sensor %q: id is required", s.Name)
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate sensor name %q", s.Name)
		}
		seen[s.Name] = true
	}
	if c.Boiler.VolumeL <= 0 {
		return fmt.Errorf("boiler.volume_l must be positive, got %v", c.Boiler.VolumeL)
	}
	if c.Boiler.EnergyCoefficient <= 0 {
		return fmt.Errorf("boiler.energy_coefficient must be positive, got %v", c.Boiler.EnergyCoefficient)
	}
	if c.Tick <= 0 {
		return fmt.Errorf("tick must be positive, got %v", c.Tick)
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("read_timeout must be positive, got %v", c.ReadTimeout)
	}
	return nil
}
