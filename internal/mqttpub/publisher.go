// Package mqttpub mirrors every published metric onto an MQTT broker so
// cockpit displays and home-automation bridges can consume the feed
// without talking to the web API.
package mqttpub

import (
	"encoding/json"
	"fmt"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"pelorus/internal/config"
	"pelorus/internal/pipeline"
)

type Publisher struct {
	client mqtt.Client
	prefix string
	qos    byte
	log    *zap.Logger

	sub *pipeline.Subscription
}

// New connects to the broker. The connection auto-reconnects; publishes
// during an outage are dropped with a log line rather than queued.
func New(cfg config.MQTTConfig, log *zap.Logger) (*Publisher, error) {
	if log == nil {
		log = zap.NewNop()
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", cfg.Broker, token.Error())
	}
	log.Info("mqtt connected", zap.String("broker", cfg.Broker), zap.String("prefix", cfg.TopicPrefix))

	return &Publisher{
		client: client,
		prefix: strings.TrimSuffix(cfg.TopicPrefix, "/"),
		qos:    cfg.QoS,
		log:    log,
	}, nil
}

// Attach taps the pipeline firehose. Values are retained so a display
// connecting mid-session immediately sees the last known state.
func (p *Publisher) Attach(pl *pipeline.Pipeline) {
	p.sub = pl.Tap(func(mv pipeline.MetricValue) {
		p.publish(mv)
	})
}

func (p *Publisher) publish(mv pipeline.MetricValue) {
	payload, err := json.Marshal(mv)
	if err != nil {
		return
	}
	topic := p.prefix + "/" + strings.ReplaceAll(mv.Path, ".", "/")
	token := p.client.Publish(topic, p.qos, true, payload)
	token.Wait()
	if token.Error() != nil {
		p.log.Warn("mqtt publish failed", zap.String("topic", topic), zap.Error(token.Error()))
	}
}

func (p *Publisher) Close() {
	if p.sub != nil {
		p.sub.Close()
	}
	p.client.Disconnect(250)
}
