// Command boilert monitors boiler temperature sensors, computes stored
// energy, and publishes current values to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sweeney/boilert/internal/acquire"
	"github.com/sweeney/boilert/internal/config"
	"github.com/sweeney/boilert/internal/energy"
	"github.com/sweeney/boilert/internal/mqtt"
	"github.com/sweeney/boilert/internal/sensor"
	"github.com/sweeney/boilert/internal/statusled"
	"github.com/sweeney/boilert/internal/store"
	"github.com/sweeney/boilert/internal/web"
)

func main() {
	configPath := flag.String("config", "", "Config file path (default config.toml in the working directory)")
	sim := flag.Bool("sim", false, "Use simulated sensors instead of 1-Wire hardware")
	tick := flag.Duration("tick", 0, "Acquisition interval (overrides config)")
	ledPin := flag.Int("led-pin", 0, "BCM pin for the status LED (0 to disable)")
	httpAddr := flag.String("http", ":8080", "HTTP status address (empty to disable)")
	printOnce := flag.Bool("print-once", false, "Read all sensors once, print, and exit")
	debug := flag.Bool("debug", false, "Enable debug logging")

	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := run(*configPath, *sim, *tick, *ledPin, *httpAddr, *printOnce); err != nil {
		log.Fatal().Err(err).Msg("fatal")
	}
}

func run(configPath string, sim bool, tickOverride time.Duration, ledPin int, httpAddr string, printOnce bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if tickOverride > 0 {
		cfg.Tick = tickOverride
	}

	src, err := newSource(sim)
	if err != nil {
		return fmt.Errorf("init sensors: %w", err)
	}
	defer src.Close()

	if printOnce {
		return printReadings(src, cfg)
	}

	publisher, err := mqtt.NewRealPublisher(cfg.MQTT.Broker(), cfg.MQTT.BaseTopic, mqtt.DefaultRetryPolicy())
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	var led statusled.Driver
	if ledPin > 0 {
		realLED, err := statusled.NewRealDriver(ledPin)
		if err != nil {
			return fmt.Errorf("init status led: %w", err)
		}
		defer realLED.Close()
		led = realLED
	}

	st := store.New(store.Meta{
		StartTime: time.Now(),
		Broker:    cfg.MQTT.Broker(),
		BaseTopic: cfg.MQTT.BaseTopic,
		Tick:      cfg.Tick,
		Simulated: sim,
	}, initialStates(cfg))

	if httpAddr != "" {
		srv := web.New(httpAddr, st)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("http server error")
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Info().Str("addr", httpAddr).Msg("http status server listening")
	}

	loop := acquire.New(acquire.Config{
		Sensors:     cfg.Sensors,
		Source:      src,
		ReadTimeout: cfg.ReadTimeout,
		Energy: energy.Params{
			VolumeL:        cfg.Boiler.VolumeL,
			ReferenceTempC: cfg.Boiler.ReferenceTempC,
			Coefficient:    cfg.Boiler.EnergyCoefficient,
		},
		Store:     st,
		Publisher: publisher,
		Status:    publisher,
		LED:       led,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(cfg.Tick)
	defer ticker.Stop()

	log.Info().
		Int("sensors", len(cfg.Sensors)).
		Dur("tick", cfg.Tick).
		Str("broker", cfg.MQTT.Broker()).
		Bool("simulated", sim).
		Msg("started")

	return loop.Run(ctx, ticker.C)
}

func newSource(sim bool) (sensor.Source, error) {
	if sim {
		return sensor.NewSimSource(), nil
	}
	return sensor.NewW1Source(sensor.DefaultW1Dir)
}

func printReadings(src sensor.Source, cfg config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ReadTimeout)
	defer cancel()

	for _, sc := range cfg.Sensors {
		r, err := src.Read(ctx, sc.ID)
		if err != nil {
			fmt.Printf("%s (%s): %v\n", sc.Name, sc.ID, err)
			continue
		}
		fmt.Printf("%s (%s): %.2f °C\n", sc.Name, sc.ID, r.TempC)
	}
	return nil
}

func initialStates(cfg config.Config) []store.SensorState {
	states := make([]store.SensorState, len(cfg.Sensors))
	for i, sc := range cfg.Sensors {
		states[i] = store.SensorState{Name: sc.Name, ID: sc.ID}
	}
	return states
}
