package telemetry

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"codeberg.org/mutker/producflow/internal/domain"
	"codeberg.org/mutker/producflow/internal/errors"
	"codeberg.org/mutker/producflow/internal/logger"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	connectTimeout    = 10 * time.Second
	retryInterval     = 15 * time.Second
	handleTimeout     = 5 * time.Second
	disconnectQuiesce = 250
)

// Subscriber ingests readings published on <prefix>/<equipment_id>/<sensor_type>.
type Subscriber struct {
	cfg       MQTTConfig
	collector Collector
	logger    logger.Logger
	newClient func(*mqtt.ClientOptions) mqtt.Client
	timeout   time.Duration
}

// NewSubscriber returns a Runner that consumes the configured broker. It is
// a no-op when no broker is configured.
func NewSubscriber(cfg MQTTConfig, collector Collector, log logger.Logger) Runner {
	if !cfg.Enabled() {
		log.Debug().Msg("MQTT broker not configured, using no-op subscriber")
		return noopRunner{}
	}
	return &Subscriber{
		cfg:       cfg,
		collector: collector,
		logger:    log,
		newClient: mqtt.NewClient,
		timeout:   connectTimeout,
	}
}

func (s *Subscriber) filter() string {
	return strings.TrimSuffix(s.cfg.Topic, "/") + "/+/+"
}

// Run consumes the broker until ctx is done. An unreachable broker does not
// stop the service: the client keeps retrying in the background and
// subscribes once connected.
func (s *Subscriber) Run(ctx context.Context) error {
	errFactory := errors.New()

	opts := mqtt.NewClientOptions()
	opts.AddBroker(s.cfg.Broker)
	opts.SetClientID(s.cfg.ClientID)
	opts.SetUsername(s.cfg.Username)
	opts.SetPassword(s.cfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(retryInterval)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		s.logger.Warn().Err(err).Msg("MQTT connection lost")
	})
	// Resubscribe after every (re)connect; the session is not persistent.
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		if err := s.subscribe(c); err != nil {
			s.logger.Error().Err(err).Str("topic", s.filter()).Msg("MQTT subscribe failed")
			return
		}
		s.logger.Info().Str("topic", s.filter()).Msg("Subscribed to sensor topic")
	})

	client := s.newClient(opts)
	token := client.Connect()
	switch {
	case !token.WaitTimeout(s.timeout):
		s.logger.Warn().
			Err(errFactory.WithData(ErrBrokerConnect, s.cfg.Broker)).
			Dur("retry", retryInterval).
			Msg("MQTT broker unreachable, retrying in background")
	case token.Error() != nil:
		s.logger.Warn().
			Err(errFactory.Wrap(ErrBrokerConnect, token.Error())).
			Str("broker", s.cfg.Broker).
			Msg("MQTT connect failed, retrying in background")
	default:
		s.logger.Info().Str("broker", s.cfg.Broker).Msg("Connected to MQTT broker")
	}

	<-ctx.Done()

	client.Unsubscribe(s.filter()).WaitTimeout(time.Second)
	client.Disconnect(disconnectQuiesce)
	s.logger.Info().Msg("MQTT subscriber stopped")

	return nil
}

// subscribe registers the sensor topic filter on c. A subscription that is
// not acknowledged within the timeout is an error.
func (s *Subscriber) subscribe(c mqtt.Client) error {
	errFactory := errors.New()

	token := c.Subscribe(s.filter(), byte(s.cfg.QoS), s.handle)
	if !token.WaitTimeout(s.timeout) {
		return errFactory.WithData(ErrBrokerSubscribe, s.filter())
	}
	if err := token.Error(); err != nil {
		return errFactory.Wrap(ErrBrokerSubscribe, err)
	}
	return nil
}

func (s *Subscriber) handle(_ mqtt.Client, msg mqtt.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	if _, err := s.ingest(ctx, msg.Topic(), msg.Payload()); err != nil {
		var appErr errors.Error
		if errors.As(err, &appErr) {
			s.logger.ErrorWithContext(appErr, "telemetry", "mqtt_ingest").Str("topic", msg.Topic()).Send()
			return
		}
		s.logger.Error().Err(err).Str("topic", msg.Topic()).Msg("Failed to ingest MQTT reading")
	}
}

func (s *Subscriber) ingest(ctx context.Context, topic string, payload []byte) (domain.SensorReading, error) {
	equipmentID, sensorType, err := parseTopic(s.cfg.Topic, topic)
	if err != nil {
		return domain.SensorReading{}, err
	}

	in, err := parsePayload(payload)
	if err != nil {
		return domain.SensorReading{}, err
	}
	in.SensorType = sensorType

	return s.collector.Record(ctx, equipmentID, in)
}

// parseTopic splits <prefix>/<equipment_id>/<sensor_type>.
func parseTopic(prefix, topic string) (int64, domain.SensorType, error) {
	errFactory := errors.New()

	rest, ok := strings.CutPrefix(topic, strings.TrimSuffix(prefix, "/")+"/")
	if !ok {
		return 0, "", errFactory.WithData(ErrInvalidTopic, topic)
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 2 {
		return 0, "", errFactory.WithData(ErrInvalidTopic, topic)
	}

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, "", errFactory.WithData(ErrInvalidTopic, topic)
	}
	return id, domain.SensorType(parts[1]), nil
}

type payload struct {
	Value     *float64   `json:"value"`
	Unit      string     `json:"unit"`
	Timestamp *time.Time `json:"timestamp"`
}

// parsePayload accepts either a JSON object or a bare number.
func parsePayload(raw []byte) (domain.SensorReadingCreate, error) {
	errFactory := errors.New()

	text := strings.TrimSpace(string(raw))
	if v, err := strconv.ParseFloat(text, 64); err == nil {
		return domain.SensorReadingCreate{Value: &v}, nil
	}

	var p payload
	if err := json.Unmarshal([]byte(text), &p); err != nil {
		return domain.SensorReadingCreate{}, errFactory.Wrap(ErrInvalidPayload, err)
	}
	if p.Value == nil {
		return domain.SensorReadingCreate{}, errFactory.WithMessage(ErrInvalidPayload, "payload has no value")
	}
	return domain.SensorReadingCreate{Value: p.Value, Unit: p.Unit, Timestamp: p.Timestamp}, nil
}
