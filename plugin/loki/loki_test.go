package loki

import (
	"net/url"
	"testing"
	"time"

	"github.com/prometheus/common/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURL(t *testing.T) {
	u, err := url.Parse("loki://localhost:3100/loki/api/v1/push?app=bitpipe&env=test&batch_wait=1s&batch_size=10")
	require.NoError(t, err)
	c, err := ParseURL(u)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3100/loki/api/v1/push", c.URL)
	assert.Equal(t, map[string]string{"app": "bitpipe", "env": "test"}, c.Labels)
	assert.Equal(t, time.Second, c.BatchWait)
	assert.Equal(t, 10, c.BatchSize)
	assert.Equal(t, 3, c.MaxRetries)
	assert.Equal(t, 5*time.Second, c.Timeout)
}

func TestParseURLDefaults(t *testing.T) {
	u, err := url.Parse("lokis://logs.example.com/loki/api/v1/push")
	require.NoError(t, err)
	c, err := ParseURL(u)
	require.NoError(t, err)
	assert.Equal(t, "https://logs.example.com/loki/api/v1/push", c.URL)
	assert.Equal(t, map[string]string{"job": "bitpipe"}, c.Labels)
}

func TestParseURLErrors(t *testing.T) {
	for _, raw := range []string{
		"http://localhost:3100/push",
		"loki:///push",
		"loki://localhost:3100/push?timeout=later",
		"loki://localhost:3100/push?bad-label=x",
	} {
		u, err := url.Parse(raw)
		require.NoError(t, err)
		_, err = ParseURL(u)
		assert.Error(t, err, raw)
	}
}

func TestCreateLabelSet(t *testing.T) {
	ls := createLabelSet(map[string]string{"job": "bitpipe"})
	assert.Equal(t, model.LabelSet{"job": "bitpipe"}, ls)
	assert.NoError(t, ls.Validate())
}
