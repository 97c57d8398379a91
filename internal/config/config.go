package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"pelorus/internal/alarm"
	"pelorus/internal/arbiter"
	"pelorus/internal/sensor"
)

type Config struct {
	Feeds        []FeedConfig       `yaml:"feeds"`
	Arbiter      ArbiterConfig      `yaml:"arbiter"`
	History      HistoryConfig      `yaml:"history"`
	Presentation PresentationConfig `yaml:"presentation"`
	Alarms       AlarmsConfig       `yaml:"alarms"`
	MQTT         MQTTConfig         `yaml:"mqtt"`
	Web          WebConfig          `yaml:"web"`
	Log          LogConfig          `yaml:"log"`
}

type FeedConfig struct {
	Type string `yaml:"type"` // tcp, udp, serial, replay, sim

	// tcp
	Addr string `yaml:"addr"`
	// udp
	Listen string `yaml:"listen"`
	// serial
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`
	// replay
	Path  string  `yaml:"path"`
	Speed float64 `yaml:"speed"`
	Loop  bool    `yaml:"loop"`
	// sim
	Interval time.Duration `yaml:"interval"`
}

type ArbiterConfig struct {
	StaleAfter           time.Duration       `yaml:"stale_after"`
	TickInterval         time.Duration       `yaml:"tick_interval"`
	ClearHistoryOnSwitch *bool               `yaml:"clear_history_on_switch"`
	Priorities           map[string][]string `yaml:"priorities"`
}

type HistoryConfig struct {
	Retention  time.Duration `yaml:"retention"`
	MaxEntries int           `yaml:"max_entries"`
}

type PresentationConfig struct {
	Region     string            `yaml:"region"`
	Selections map[string]string `yaml:"selections"`
}

type AlarmsConfig struct {
	// Overrides replaces the built-in threshold for one sensor metric,
	// keyed by full path ("tank.0.fuel.level").
	Overrides map[string]alarm.Threshold `yaml:"overrides"`
}

type MQTTConfig struct {
	Enable      bool   `yaml:"enable"`
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"client_id"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	TopicPrefix string `yaml:"topic_prefix"`
	QoS         byte   `yaml:"qos"`
}

type WebConfig struct {
	Enable bool   `yaml:"enable"`
	Listen string `yaml:"listen"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}

	if len(cfg.Feeds) == 0 {
		return Config{}, fmt.Errorf("at least one feed is required")
	}
	for i, f := range cfg.Feeds {
		switch f.Type {
		case "tcp":
			if f.Addr == "" {
				return Config{}, fmt.Errorf("feeds[%d]: tcp feed requires addr", i)
			}
		case "udp":
			if f.Listen == "" {
				return Config{}, fmt.Errorf("feeds[%d]: udp feed requires listen", i)
			}
		case "serial":
			if f.Baud == 0 {
				cfg.Feeds[i].Baud = 4800
			}
		case "replay":
			if f.Path == "" {
				return Config{}, fmt.Errorf("feeds[%d]: replay feed requires path", i)
			}
			if f.Speed == 0 {
				cfg.Feeds[i].Speed = 1
			}
			if f.Speed < 0 {
				return Config{}, fmt.Errorf("feeds[%d]: replay speed must be > 0", i)
			}
		case "sim":
			if f.Interval <= 0 {
				cfg.Feeds[i].Interval = 1 * time.Second
			}
		default:
			return Config{}, fmt.Errorf("feeds[%d]: unknown feed type %q", i, f.Type)
		}
	}

	if cfg.Arbiter.StaleAfter <= 0 {
		cfg.Arbiter.StaleAfter = arbiter.DefaultStaleAfter
	}
	if cfg.Arbiter.TickInterval <= 0 {
		cfg.Arbiter.TickInterval = 1 * time.Second
	}
	for name, paths := range cfg.Arbiter.Priorities {
		if len(paths) == 0 {
			return Config{}, fmt.Errorf("arbiter.priorities.%s: empty candidate list", name)
		}
		for _, p := range paths {
			if _, err := sensor.ParsePath(p); err != nil {
				return Config{}, fmt.Errorf("arbiter.priorities.%s: %w", name, err)
			}
		}
	}

	if cfg.History.Retention <= 0 {
		cfg.History.Retention = 1 * time.Hour
	}
	if cfg.History.MaxEntries <= 0 {
		cfg.History.MaxEntries = 1000
	}

	if cfg.Presentation.Region == "" {
		cfg.Presentation.Region = "international"
	}
	switch cfg.Presentation.Region {
	case "eu", "us", "uk", "international":
	default:
		return Config{}, fmt.Errorf("presentation.region must be eu, us, uk or international")
	}

	for path := range cfg.Alarms.Overrides {
		if _, err := sensor.ParsePath(path); err != nil {
			return Config{}, fmt.Errorf("alarms.overrides: %w", err)
		}
	}

	if cfg.MQTT.Enable {
		if cfg.MQTT.Broker == "" {
			return Config{}, fmt.Errorf("mqtt.broker is required when mqtt.enable is true")
		}
		if cfg.MQTT.ClientID == "" {
			cfg.MQTT.ClientID = "pelorus"
		}
		if cfg.MQTT.TopicPrefix == "" {
			cfg.MQTT.TopicPrefix = "pelorus"
		}
		if cfg.MQTT.QoS > 2 {
			return Config{}, fmt.Errorf("mqtt.qos must be 0, 1 or 2")
		}
	}

	if cfg.Web.Enable && cfg.Web.Listen == "" {
		cfg.Web.Listen = ":8080"
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	switch cfg.Log.Format {
	case "json", "console":
	default:
		return Config{}, fmt.Errorf("log.format must be json or console")
	}

	return cfg, nil
}

// Candidates converts the string priority lists into arbiter candidates.
// Call after Load; Load already validated the paths.
func (c ArbiterConfig) Candidates() (map[string][]arbiter.Candidate, error) {
	out := make(map[string][]arbiter.Candidate, len(c.Priorities))
	for name, paths := range c.Priorities {
		list := make([]arbiter.Candidate, 0, len(paths))
		for _, p := range paths {
			sp, err := sensor.ParsePath(p)
			if err != nil {
				return nil, fmt.Errorf("priorities.%s: %w", name, err)
			}
			list = append(list, arbiter.Candidate{ID: sp.ID(), Key: sp.Key})
		}
		out[name] = list
	}
	return out, nil
}

// ClearHistory applies the default (true) when the YAML key is absent.
func (c ArbiterConfig) ClearHistory() bool {
	if c.ClearHistoryOnSwitch == nil {
		return true
	}
	return *c.ClearHistoryOnSwitch
}
