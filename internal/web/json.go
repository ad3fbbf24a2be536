package web

import (
	"encoding/json"
	"time"

	"github.com/sweeney/boilert/internal/store"
)

// BoilerJSON is the top-level JSON envelope for the snapshot endpoint.
type BoilerJSON struct {
	Boiler BoilerInner `json:"boiler"`
}

// BoilerInner contains the snapshot details.
type BoilerInner struct {
	Sensors       []SensorJSON `json:"sensors"`
	Energy        *EnergyJSON  `json:"energy"` // null while unknown
	UpdatedAt     string       `json:"updated_at,omitempty"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Config        ConfigJSON   `json:"config"`
}

// SensorJSON is the JSON representation of one sensor's state.
type SensorJSON struct {
	Name string `json:"name"`
	ID   string `json:"id"`

	// TempC is null when the last read failed.
	TempC  *float64 `json:"temp_c"`
	ReadAt string   `json:"read_at,omitempty"`

	LastGoodTempC *float64 `json:"last_good_temp_c,omitempty"`
	LastGoodAt    string   `json:"last_good_at,omitempty"`

	History []HistoryJSON `json:"history"`
}

// HistoryJSON is one point of the 24-hour trend.
type HistoryJSON struct {
	Bucket string  `json:"bucket"`
	TempC  float64 `json:"temp_c"`
}

// EnergyJSON is the computed energy state.
type EnergyJSON struct {
	AvgTempC float64 `json:"avg_temp_c"`
	DeltaT   float64 `json:"delta_t"`
	KWH      float64 `json:"kwh"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
	BaseTopic string `json:"base_topic"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	TickMs    int64 `json:"tick_ms"`
	Simulated bool  `json:"simulated"`
}

func formatJSON(snap store.Snapshot) []byte {
	inner := BoilerInner{
		Sensors:       make([]SensorJSON, len(snap.Sensors)),
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.Meta.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT: MQTTStatus{
			Connected: snap.MQTTConnected,
			Broker:    snap.Meta.Broker,
			BaseTopic: snap.Meta.BaseTopic,
		},
		Config: ConfigJSON{
			TickMs:    snap.Meta.Tick.Milliseconds(),
			Simulated: snap.Meta.Simulated,
		},
	}
	if !snap.UpdatedAt.IsZero() {
		inner.UpdatedAt = snap.UpdatedAt.UTC().Format(time.RFC3339)
	}

	for i, st := range snap.Sensors {
		sj := SensorJSON{
			Name:    st.Name,
			ID:      st.ID,
			History: make([]HistoryJSON, len(st.History)),
		}
		if !st.Current.At.IsZero() {
			sj.ReadAt = st.Current.At.UTC().Format(time.RFC3339)
		}
		if st.Current.Valid() {
			v := st.Current.TempC
			sj.TempC = &v
		}
		if !st.LastGood.At.IsZero() && st.LastGood.Valid() {
			v := st.LastGood.TempC
			sj.LastGoodTempC = &v
			sj.LastGoodAt = st.LastGood.At.UTC().Format(time.RFC3339)
		}
		for j, p := range st.History {
			sj.History[j] = HistoryJSON{
				Bucket: p.Bucket.UTC().Format(time.RFC3339),
				TempC:  p.TempC,
			}
		}
		inner.Sensors[i] = sj
	}

	if snap.Energy.Valid {
		inner.Energy = &EnergyJSON{
			AvgTempC: snap.Energy.AvgTempC,
			DeltaT:   snap.Energy.DeltaT,
			KWH:      snap.Energy.KWH,
		}
	}

	data, _ := json.MarshalIndent(BoilerJSON{Boiler: inner}, "", "  ")
	return data
}
