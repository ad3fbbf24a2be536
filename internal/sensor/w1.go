package sensor

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultW1Dir is where the Linux kernel exposes 1-Wire device directories.
const DefaultW1Dir = "/sys/bus/w1/devices"

// W1Source reads DS18B20 sensors through the 1-Wire sysfs interface.
// Each read opens /<dir>/<id>/w1_slave, which blocks for the duration of the
// sensor's conversion (up to ~750ms), so reads are bounded by the caller's
// context deadline.
type W1Source struct {
	dir string
}

// NewW1Source creates a source rooted at dir (DefaultW1Dir for real
// hardware). Fails if the bus directory is not present, which on a Pi means
// the w1-gpio overlay is not loaded.
func NewW1Source(dir string) (*W1Source, error) {
	if dir == "" {
		dir = DefaultW1Dir
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, &Error{Kind: IoFailure, Err: fmt.Errorf("1-wire bus not available at %s: %w", dir, err)}
	}
	return &W1Source{dir: dir}, nil
}

// Read reads and parses the w1_slave file for the given sensor.
func (s *W1Source) Read(ctx context.Context, id string) (Reading, error) {
	now := time.Now()
	if err := ctx.Err(); err != nil {
		return Failed(id, now), &Error{ID: id, Kind: Timeout, Err: err}
	}
	path := filepath.Join(s.dir, id, "w1_slave")

	type result struct {
		data []byte
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		data, err := os.ReadFile(path)
		ch <- result{data, err}
	}()

	select {
	case <-ctx.Done():
		return Failed(id, now), &Error{ID: id, Kind: Timeout, Err: ctx.Err()}
	case res := <-ch:
		if res.err != nil {
			return Failed(id, now), &Error{ID: id, Kind: IoFailure, Err: res.err}
		}
		temp, err := ParseW1Payload(res.data)
		if err != nil {
			return Failed(id, now), &Error{ID: id, Kind: ParseFailure, Err: err}
		}
		return Reading{ID: id, TempC: temp, At: now}, nil
	}
}

// Close releases nothing; the sysfs interface holds no open handles between
// reads.
func (s *W1Source) Close() error {
	return nil
}

// ParseW1Payload extracts the temperature from a w1_slave file body:
//
//	72 01 4b 46 7f ff 0e 10 57 : crc=57 YES
//	72 01 4b 46 7f ff 0e 10 57 t=23125
//
// The first line ends in YES when the CRC check passed; the second carries
// the temperature in millidegrees Celsius. The result is rounded to two
// decimal places, matching the DS18B20's useful resolution.
func ParseW1Payload(data []byte) (float64, error) {
	content := string(data)
	lines := strings.SplitN(content, "\n", 3)
	if len(lines) < 2 {
		return 0, fmt.Errorf("short w1_slave payload")
	}
	if !strings.HasSuffix(strings.TrimSpace(lines[0]), "YES") {
		return 0, fmt.Errorf("crc check failed")
	}

	pos := strings.LastIndex(lines[1], "t=")
	if pos < 0 {
		return 0, fmt.Errorf("temperature not found in w1_slave payload")
	}
	milli, err := strconv.ParseFloat(strings.TrimSpace(lines[1][pos+2:]), 64)
	if err != nil {
		return 0, fmt.Errorf("malformed temperature: %w", err)
	}
	return math.Round(milli/10.0) / 100.0, nil
}
