package kafka

import (
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	kctl "github.com/jbvmio/kafka"
	"github.com/pkg/errors"
)

const (
	// Scheme is the URL scheme of a Kafka output.
	Scheme = `kafka`

	defaultTimeout = 15 * time.Second
)

// OutputConfig contains configuration details when using the Kafka Output.
type OutputConfig struct {
	Brokers []string      `yaml:"brokers" json:"brokers"`
	Topic   string        `yaml:"topic" json:"topic"`
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// ParseURL reads an OutputConfig from a URL of the form
// kafka://BROKER[,BROKER...]/TOPIC[?timeout=DURATION].
func ParseURL(u *url.URL) (OutputConfig, error) {
	var c OutputConfig
	if u == nil || u.Scheme != Scheme {
		return c, errors.Errorf("not a %s url", Scheme)
	}
	brokers, err := splitBrokers(u.Host)
	if err != nil {
		return c, err
	}
	c.Brokers = brokers
	c.Topic = strings.Trim(u.Path, "/")
	if c.Topic == "" || strings.Contains(c.Topic, "/") {
		return c, errors.Errorf("invalid topic %q", c.Topic)
	}
	c.Timeout = defaultTimeout
	if t := u.Query().Get("timeout"); t != "" {
		d, err := time.ParseDuration(t)
		if err != nil || d <= 0 {
			return c, errors.Errorf("invalid timeout %q", t)
		}
		c.Timeout = d
	}
	return c, nil
}

// CreateOutput connects to the brokers and validates the topic.
func (c *OutputConfig) CreateOutput() (*Output, error) {
	hn, err := os.Hostname()
	if err != nil {
		hn = "undiscovered-host"
	}
	conf := kctl.GetConf(hn + `-` + uuid.New().String()[:8])
	conf.Version = useKafkaVersion
	client, err := kctl.NewCustomClient(conf, c.Brokers...)
	if err != nil {
		return nil, errors.Wrap(err, "kafka could not create client")
	}
	if !topicExists(client, c.Topic) {
		client.Close()
		return nil, errors.Errorf("kafka could not validate output topic %s", c.Topic)
	}
	p, err := client.NewProducer()
	if err != nil {
		client.Close()
		return nil, errors.Wrap(err, "kafka could not create producer")
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Output{
		client:   client,
		producer: p,
		topic:    c.Topic,
		timeout:  timeout,
	}, nil
}

// Output produces every Write as a single message to a Kafka topic,
// waiting for the broker to acknowledge it.
type Output struct {
	client   *kctl.KClient
	producer *kctl.Producer
	topic    string
	timeout  time.Duration
	failed   bool
	closed   bool
}

// Write sends b as one message.
func (out *Output) Write(b []byte) (int, error) {
	switch {
	case out.closed:
		return 0, errors.New("kafka output closed")
	case out.failed:
		return 0, errors.Errorf("kafka output for topic %s failed on a previous write", out.topic)
	}
	if len(b) == 0 {
		return 0, nil
	}
	value := make([]byte, len(b))
	copy(value, b)
	timer := time.NewTimer(out.timeout)
	defer timer.Stop()
	select {
	case out.producer.Input() <- &kctl.Message{Topic: out.topic, Value: value}:
	case <-timer.C:
		out.failed = true
		return 0, errors.Errorf("timed out sending to topic %s", out.topic)
	}
	select {
	case e := <-out.producer.Errors():
		return 0, errors.Wrapf(e.Err, "producer for topic %s", out.topic)
	case <-out.producer.Successes():
		return len(b), nil
	case <-timer.C:
		// The late ack would be read by the next Write, so the Output is unusable.
		out.failed = true
		return 0, errors.Errorf("timed out waiting for topic %s", out.topic)
	}
}

// Close closes the producer, then the client. It is safe to call more than once.
// Closing the producer drains any results left behind by a timed out Write.
func (out *Output) Close() error {
	if out.closed {
		return nil
	}
	out.closed = true
	return closeInOrder(out.producer.Close, out.client.Close)
}

// closeInOrder calls every closer in turn and returns the first error.
func closeInOrder(closers ...func() error) error {
	var err error
	for _, c := range closers {
		if cerr := c(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
