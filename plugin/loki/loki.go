package loki

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cortexproject/cortex/pkg/util"
	"github.com/cortexproject/cortex/pkg/util/flagext"
	"github.com/go-kit/kit/log"
	lclient "github.com/grafana/loki/pkg/promtail/client"
	"github.com/pkg/errors"
	"github.com/prometheus/common/model"
)

// URL schemes of a Loki output. lokis selects https.
const (
	Scheme       = `loki`
	SecureScheme = `lokis`
)

// Query parameters which tune the client instead of adding a label.
const (
	paramBatchSize  = `batch_size`
	paramBatchWait  = `batch_wait`
	paramTimeout    = `timeout`
	paramMaxRetries = `max_retries`
)

// OutputConfig contains configuration details when using the Loki Output.
type OutputConfig struct {
	URL        string            `yaml:"url" json:"url"`
	Labels     map[string]string `yaml:"labels" json:"labels"`
	MaxBackoff time.Duration     `yaml:"maxBackoff" json:"maxBackoff"`
	MaxRetries int               `yaml:"maxRetries" json:"maxRetries"`
	MinBackoff time.Duration     `yaml:"minBackoff" json:"minBackoff"`
	BatchSize  int               `yaml:"batchSize" json:"batchSize"`
	BatchWait  time.Duration     `yaml:"batchWait" json:"batchWait"`
	Timeout    time.Duration     `yaml:"timeout" json:"timeout"`
}

// ParseURL reads an OutputConfig from a URL of the form
// loki://HOST:PORT/PATH?LABEL=VALUE&batch_wait=1s. Without labels, job=bitpipe is used.
func ParseURL(u *url.URL) (OutputConfig, error) {
	var c OutputConfig
	if u == nil || (u.Scheme != Scheme && u.Scheme != SecureScheme) {
		return c, errors.Errorf("not a %s url", Scheme)
	}
	if u.Host == "" {
		return c, errors.New("missing loki host")
	}
	scheme := "http"
	if u.Scheme == SecureScheme {
		scheme = "https"
	}
	c.URL = (&url.URL{Scheme: scheme, Host: u.Host, Path: u.Path}).String()
	c.Labels = make(map[string]string)
	for k, v := range u.Query() {
		val := strings.Join(v, ",")
		var err error
		switch k {
		case paramBatchSize:
			c.BatchSize, err = strconv.Atoi(val)
		case paramMaxRetries:
			c.MaxRetries, err = strconv.Atoi(val)
		case paramBatchWait:
			c.BatchWait, err = time.ParseDuration(val)
		case paramTimeout:
			c.Timeout, err = time.ParseDuration(val)
		default:
			if !model.LabelName(k).IsValid() {
				return c, errors.Errorf("invalid label name %q", k)
			}
			c.Labels[k] = val
		}
		if err != nil {
			return c, errors.Wrapf(err, "invalid %s", k)
		}
	}
	if len(c.Labels) < 1 {
		c.Labels["job"] = "bitpipe"
	}
	c.defaults()
	return c, nil
}

func (c *OutputConfig) defaults() {
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 1 * time.Minute
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.MinBackoff <= 0 {
		c.MinBackoff = 5 * time.Second
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 100 * 2048
	}
	if c.BatchWait <= 0 {
		c.BatchWait = 5 * time.Second
	}
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
}

// CreateOutput creates a promtail client based on the Config.
func (c *OutputConfig) CreateOutput() (*Output, error) {
	U, err := url.Parse(c.URL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid loki url")
	}
	c.defaults()
	cfg := lclient.Config{
		URL: flagext.URLValue{URL: U},
		BackoffConfig: util.BackoffConfig{
			MaxBackoff: c.MaxBackoff,
			MaxRetries: c.MaxRetries,
			MinBackoff: c.MinBackoff,
		},
		BatchSize: c.BatchSize,
		BatchWait: c.BatchWait,
		Timeout:   c.Timeout,
	}
	C, err := lclient.New(cfg, log.NewNopLogger())
	if err != nil {
		return nil, errors.Wrap(err, "could not create loki client")
	}
	return &Output{
		loki:   C,
		labels: createLabelSet(c.Labels),
	}, nil
}

// Output sends every Write as one log entry to Loki.
type Output struct {
	loki   lclient.Client
	labels model.LabelSet
	closed bool
}

// Write queues b as an entry stamped with the current time.
func (out *Output) Write(b []byte) (int, error) {
	if out.closed {
		return 0, errors.New("loki output closed")
	}
	if len(b) == 0 {
		return 0, nil
	}
	if err := out.loki.Handle(out.labels, time.Now(), string(b)); err != nil {
		return 0, errors.Wrap(err, "error sending to loki")
	}
	return len(b), nil
}

// Close stops the client, sending any pending batch.
func (out *Output) Close() error {
	if out.closed {
		return nil
	}
	out.closed = true
	out.loki.Stop()
	return nil
}

func createLabelSet(tags map[string]string) model.LabelSet {
	labelSet := make(model.LabelSet, len(tags))
	for k, v := range tags {
		labelSet[model.LabelName(k)] = model.LabelValue(v)
	}
	return labelSet
}
