package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/grow-controller/internal/logic"
	"github.com/sweeney/grow-controller/internal/status"
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
	"state": status.StateOrUnknown,
	"class": func(s logic.State) string {
		switch s {
		case logic.StateOn:
			return "on"
		case logic.StateOff:
			return "off"
		}
		return "unknown"
	},
	"clock": func(t *logic.TimeOfDay) string {
		if t == nil {
			return "-"
		}
		return t.String()
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="10">
<title>Grow Controller</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Grow Controller</h1>

<h2>Outputs</h2>
<table>
<tr><th>Lights</th><td id="lights-state" class="{{class .Controller.Lights}}">{{state .Controller.Lights}}</td></tr>
<tr><th>Fan</th><td id="fan-state" class="{{class .Controller.Fan}}">{{state .Controller.Fan}}</td></tr>
<tr><th>Mister</th><td id="mister-state" class="{{class .Controller.Mister}}">{{state .Controller.Mister}}</td></tr>
<tr><th>Ready</th><td>{{if .Ready}}yes{{else}}no{{end}}</td></tr>
</table>

<h2>Environment</h2>
<table>
{{with .Controller.LastReading}}<tr><th>Temperature</th><td id="temperature">{{printf "%.1f" .Temperature}} &deg;C</td></tr>
<tr><th>Humidity</th><td id="humidity">{{printf "%.1f" .Humidity}} %</td></tr>
{{else}}<tr><th>Reading</th><td>none yet</td></tr>{{end}}
<tr><th>Mist below</th><td>{{.Config.HumidityThreshold}} %</td></tr>
</table>

<h2>Schedule</h2>
<table>
<tr><th>Lights on / off</th><td>{{.Config.LightOn}} / {{.Config.LightOff}}</td></tr>
<tr><th>Next light change</th><td>{{clock .Controller.NextLight}}</td></tr>
<tr><th>Next fan start</th><td>{{clock .Controller.NextFanStart}}{{with .Controller.NextFanReason}} ({{.}}){{end}}</td></tr>
<tr><th>Fan stop</th><td>{{clock .Controller.NextFanStop}}</td></tr>
<tr><th>Mister stop</th><td>{{clock .Controller.NextMisterStop}}</td></tr>
<tr><th>Next log</th><td>{{clock .Controller.NextLog}}</td></tr>
<tr><th>Next humidity check</th><td>{{clock .Controller.NextCheck}}</td></tr>
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Lights ON / OFF</th><td>{{.Controller.Counts.LightsOn}} / {{.Controller.Counts.LightsOff}}</td></tr>
<tr><th>Fan ON / OFF</th><td>{{.Controller.Counts.FanOn}} / {{.Controller.Counts.FanOff}}</td></tr>
<tr><th>Mister ON / OFF</th><td>{{.Controller.Counts.MisterOn}} / {{.Controller.Counts.MisterOff}}</td></tr>
<tr><th>Readings</th><td>{{.Controller.Counts.Readings}}</td></tr>
<tr><th>Failed samples</th><td>{{.Controller.Counts.SampleFailed}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
{{if .MQTTBuffered}}<tr><th>Waiting to send</th><td>{{.MQTTBuffered}}</td></tr>{{end}}
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Poll</th><td>{{if eq .Config.PollMs 0}}busy{{else}}{{.Config.PollMs}}ms{{end}} ({{.Config.Strategy}})</td></tr>
<tr><th>Sensor</th><td>{{.Config.SensorDriver}}</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> | <a href="/metrics">metrics</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// The template needs Uptime as a field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
