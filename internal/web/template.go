package web

import (
	"fmt"
	"html/template"
	"io"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sweeney/boilert/internal/store"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"temp": func(v float64) string {
		if math.IsNaN(v) {
			return "—"
		}
		return fmt.Sprintf("%.2f °C", v)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>boilert</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.fail { color: red; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>boilert</h1>

<h2>Sensors</h2>
<table>
{{range .Sensors}}<tr><th>{{.Name}}</th><td{{if not .Current.Valid}} class="fail"{{end}}>{{temp .Current.TempC}}</td><td>{{len .History}} pts</td></tr>
{{end}}</table>

<h2>Energy</h2>
<table>
{{if .Energy.Valid}}<tr><th>Average</th><td>{{temp .Energy.AvgTempC}}</td></tr>
<tr><th>&Delta;T</th><td>{{printf "%.2f" .Energy.DeltaT}} K</td></tr>
<tr><th>Stored</th><td>{{printf "%.2f" .Energy.KWH}} kWh</td></tr>
{{else}}<tr><th>Stored</th><td class="fail">unknown</td></tr>
{{end}}</table>

<h2>Daemon</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Meta.Broker}}</td></tr>
<tr><th>Base topic</th><td>{{.Meta.BaseTopic}}</td></tr>
<tr><th>Tick</th><td>{{.Meta.Tick}}</td></tr>
<tr><th>Mode</th><td>{{if .Meta.Simulated}}simulated{{else}}1-wire{{end}}</td></tr>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
</table>
</body>
</html>
`

func renderHTML(w io.Writer, snap store.Snapshot) {
	if err := indexTmpl.Execute(w, snap); err != nil {
		log.Warn().Err(err).Msg("render status page")
	}
}
