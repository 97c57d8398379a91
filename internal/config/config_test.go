package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	tmp := t.TempDir()
	path := filepath.Join(tmp, "cfg.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	return path
}

func requireErrEq(t *testing.T, err error, want string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error %q, got nil", want)
	}
	if err.Error() != want {
		t.Fatalf("error=%q want %q", err.Error(), want)
	}
}

const minimal = "feeds:\n  - type: sim\n"

func TestLoad_RequiresFeed(t *testing.T) {
	path := writeTempConfig(t, "web: {}\n")
	_, err := Load(path)
	requireErrEq(t, err, "at least one feed is required")
}

func TestLoad_DefaultsApplied(t *testing.T) {
	path := writeTempConfig(t, minimal)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Feeds[0].Interval != 1*time.Second {
		t.Fatalf("sim interval=%s want 1s", cfg.Feeds[0].Interval)
	}
	if cfg.Arbiter.StaleAfter != 10*time.Second {
		t.Fatalf("stale_after=%s want 10s", cfg.Arbiter.StaleAfter)
	}
	if cfg.Arbiter.TickInterval != 1*time.Second {
		t.Fatalf("tick_interval=%s want 1s", cfg.Arbiter.TickInterval)
	}
	if !cfg.Arbiter.ClearHistory() {
		t.Fatalf("clear_history_on_switch should default to true")
	}
	if cfg.History.Retention != 1*time.Hour || cfg.History.MaxEntries != 1000 {
		t.Fatalf("history defaults=%s/%d want 1h/1000", cfg.History.Retention, cfg.History.MaxEntries)
	}
	if cfg.Presentation.Region != "international" {
		t.Fatalf("region=%q want international", cfg.Presentation.Region)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "console" {
		t.Fatalf("log defaults=%s/%s want info/console", cfg.Log.Level, cfg.Log.Format)
	}
}

func TestLoad_FeedValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{
			name: "TCPRequiresAddr",
			body: "feeds:\n  - type: tcp\n",
			want: "feeds[0]: tcp feed requires addr",
		},
		{
			name: "UDPRequiresListen",
			body: "feeds:\n  - type: udp\n",
			want: "feeds[0]: udp feed requires listen",
		},
		{
			name: "ReplayRequiresPath",
			body: "feeds:\n  - type: replay\n",
			want: "feeds[0]: replay feed requires path",
		},
		{
			name: "ReplayNegativeSpeed",
			body: "feeds:\n  - type: replay\n    path: './x.nmea'\n    speed: -1\n",
			want: "feeds[0]: replay speed must be > 0",
		},
		{
			name: "UnknownType",
			body: "feeds:\n  - type: carrier-pigeon\n",
			want: "feeds[0]: unknown feed type \"carrier-pigeon\"",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeTempConfig(t, tc.body)
			_, err := Load(path)
			requireErrEq(t, err, tc.want)
		})
	}
}

func TestLoad_SerialBaudDefault(t *testing.T) {
	path := writeTempConfig(t, "feeds:\n  - type: serial\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Feeds[0].Baud != 4800 {
		t.Fatalf("baud=%d want 4800", cfg.Feeds[0].Baud)
	}
}

func TestLoad_ReplaySpeedDefaultsToOne(t *testing.T) {
	path := writeTempConfig(t, "feeds:\n  - type: replay\n    path: './x.nmea'\n    speed: 0\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Feeds[0].Speed != 1 {
		t.Fatalf("speed=%v want 1", cfg.Feeds[0].Speed)
	}
}

func TestLoad_PriorityPathsValidated(t *testing.T) {
	path := writeTempConfig(t, minimal+"arbiter:\n  priorities:\n    depth:\n      - 'not-a-path'\n")
	_, err := Load(path)
	if err == nil {
		t.Fatalf("expected error for malformed priority path")
	}

	path = writeTempConfig(t, minimal+"arbiter:\n  priorities:\n    depth: []\n")
	_, err = Load(path)
	requireErrEq(t, err, "arbiter.priorities.depth: empty candidate list")
}

func TestLoad_Candidates(t *testing.T) {
	path := writeTempConfig(t, minimal+"arbiter:\n  priorities:\n    depth:\n      - 'depth.0.depth'\n      - 'depth.1.depth'\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	cands, err := cfg.Arbiter.Candidates()
	if err != nil {
		t.Fatalf("Candidates() error: %v", err)
	}
	if len(cands["depth"]) != 2 {
		t.Fatalf("candidates=%d want 2", len(cands["depth"]))
	}
	if got := cands["depth"][0].Path().String(); got != "depth.0.depth" {
		t.Fatalf("first candidate=%q want depth.0.depth", got)
	}
}

func TestLoad_ClearHistoryExplicitFalse(t *testing.T) {
	path := writeTempConfig(t, minimal+"arbiter:\n  clear_history_on_switch: false\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Arbiter.ClearHistory() {
		t.Fatalf("clear_history_on_switch should honor explicit false")
	}
}

func TestLoad_AlarmOverrideParsed(t *testing.T) {
	body := minimal +
		"alarms:\n  overrides:\n    'tank.0.fuel.level':\n      low_warning: 30\n      low_alarm: 15\n"
	path := writeTempConfig(t, body)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	th := cfg.Alarms.Overrides["tank.0.fuel.level"]
	if th.LowWarning == nil || *th.LowWarning != 30 {
		t.Fatalf("low_warning not parsed: %+v", th)
	}
	if th.LowAlarm == nil || *th.LowAlarm != 15 {
		t.Fatalf("low_alarm not parsed: %+v", th)
	}
}

func TestLoad_AlarmOverrideBadPath(t *testing.T) {
	body := minimal + "alarms:\n  overrides:\n    'nonsense':\n      low_warning: 30\n"
	path := writeTempConfig(t, body)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for malformed override path")
	}
}

func TestLoad_MQTTValidation(t *testing.T) {
	path := writeTempConfig(t, minimal+"mqtt:\n  enable: true\n")
	_, err := Load(path)
	requireErrEq(t, err, "mqtt.broker is required when mqtt.enable is true")

	path = writeTempConfig(t, minimal+"mqtt:\n  enable: true\n  broker: 'tcp://localhost:1883'\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.MQTT.ClientID != "pelorus" || cfg.MQTT.TopicPrefix != "pelorus" {
		t.Fatalf("mqtt defaults=%q/%q want pelorus/pelorus", cfg.MQTT.ClientID, cfg.MQTT.TopicPrefix)
	}
}

func TestLoad_WebListenDefault(t *testing.T) {
	path := writeTempConfig(t, minimal+"web:\n  enable: true\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Web.Listen != ":8080" {
		t.Fatalf("listen=%q want :8080", cfg.Web.Listen)
	}
}

func TestLoad_LogFormatValidated(t *testing.T) {
	path := writeTempConfig(t, minimal+"log:\n  format: xml\n")
	_, err := Load(path)
	requireErrEq(t, err, "log.format must be json or console")
}
