// Package mqttpub publishes decoded sensor readings to an MQTT broker, one
// retained JSON message per device.
package mqttpub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/mlsorensen/gotherm"
)

// Options configures the publisher connection.
type Options struct {
	// BrokerURL is a paho broker URL, e.g. "tcp://localhost:1883".
	BrokerURL string
	// ClientID identifies this publisher to the broker.
	ClientID string
	// TopicPrefix is prepended to the per-device topic. Defaults to
	// "gotherm".
	TopicPrefix string
	// QoS for published messages. Defaults to 0.
	QoS byte
}

// Publisher is a gotherm.Sink that forwards each Reading to MQTT.
type Publisher struct {
	client mqtt.Client
	opts   Options
	log    *slog.Logger
}

var _ gotherm.Sink = (*Publisher)(nil)

// payload is the wire representation of a Reading. Absent fields are omitted
// rather than sent as zeroes.
type payload struct {
	Format      gotherm.Format `json:"format"`
	Temperature *float64       `json:"temperature_c,omitempty"`
	Humidity    *float64       `json:"humidity_pct,omitempty"`
	Battery     *uint8         `json:"battery_pct,omitempty"`
	VoltageMV   *uint16        `json:"battery_mv,omitempty"`
	RSSI        int16          `json:"rssi_dbm"`
	Time        time.Time      `json:"time"`
}

// New creates a Publisher and connects it to the broker. A nil logger falls
// back to slog.Default().
func New(opts Options, logger *slog.Logger) (*Publisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.TopicPrefix == "" {
		opts.TopicPrefix = "gotherm"
	}

	clientOpts := mqtt.NewClientOptions()
	clientOpts.AddBroker(opts.BrokerURL)
	clientOpts.SetClientID(opts.ClientID)
	clientOpts.SetCleanSession(true)
	clientOpts.SetAutoReconnect(true)
	clientOpts.SetConnectRetry(true)
	clientOpts.SetConnectRetryInterval(5 * time.Second)
	clientOpts.SetMaxReconnectInterval(60 * time.Second)
	clientOpts.SetKeepAlive(30 * time.Second)
	clientOpts.SetPingTimeout(10 * time.Second)
	clientOpts.SetOnConnectHandler(func(_ mqtt.Client) {
		logger.Info("mqtt connected", "broker", opts.BrokerURL)
	})
	clientOpts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("mqtt connection lost", "error", err)
	})

	p := &Publisher{
		client: mqtt.NewClient(clientOpts),
		opts:   opts,
		log:    logger,
	}

	token := p.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect timeout for %s", opts.BrokerURL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	return p, nil
}

// Publish sends the Reading to <prefix>/<address> as a retained message so a
// late subscriber immediately sees each device's latest state.
func (p *Publisher) Publish(ctx context.Context, r gotherm.Reading) error {
	body, err := json.Marshal(payload{
		Format:      r.Format,
		Temperature: r.Temperature,
		Humidity:    r.Humidity,
		Battery:     r.Battery,
		VoltageMV:   r.VoltageMV,
		RSSI:        r.RSSI,
		Time:        r.Time,
	})
	if err != nil {
		return fmt.Errorf("marshal reading: %w", err)
	}

	topic := Topic(p.opts.TopicPrefix, r.Address)
	token := p.client.Publish(topic, p.opts.QoS, true, body)

	const poll = 200 * time.Millisecond
	for !token.WaitTimeout(poll) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

// Close disconnects from the broker, allowing in-flight messages a short
// grace period.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
	p.log.Info("mqtt publisher disconnected")
}

// Topic builds the per-device topic. Colons in the address are replaced so
// the address stays a single topic level on brokers with strict topic rules.
func Topic(prefix, address string) string {
	addr := strings.ToLower(strings.ReplaceAll(address, ":", ""))
	return prefix + "/" + addr
}
