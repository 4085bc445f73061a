package telemetry

import (
	"time"

	"codeberg.org/mutker/producflow/internal/errors"
)

const (
	defaultInterval    = 30 * time.Second
	defaultTopicPrefix = "producflow/sensors"
	defaultClientID    = "producflow"
	defaultQoS         = 1
)

type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string
	QoS      int
}

// Enabled reports whether a broker is configured.
func (c MQTTConfig) Enabled() bool {
	return c.Broker != ""
}

type Config struct {
	Simulate bool
	Interval time.Duration
	MQTT     MQTTConfig
}

func DefaultConfig() Config {
	return Config{
		Simulate: false, // Disabled by default
		Interval: defaultInterval,
		MQTT: MQTTConfig{
			ClientID: defaultClientID,
			Topic:    defaultTopicPrefix,
			QoS:      defaultQoS,
		},
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	if c.Simulate && c.Interval <= 0 {
		return errFactory.WithData(ErrInvalidInterval, c.Interval.String())
	}
	if c.MQTT.Enabled() {
		if c.MQTT.Topic == "" {
			return errFactory.WithMessage(ErrInvalidConfig, "mqtt topic prefix must not be empty")
		}
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			return errFactory.WithData(ErrInvalidConfig, struct {
				Field string
				Value int
			}{
				Field: "mqtt.qos",
				Value: c.MQTT.QoS,
			})
		}
	}
	return nil
}
