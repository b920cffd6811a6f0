package osio

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"testing/iotest"

	"github.com/jbvmio/bitpipe/config"
	"github.com/jbvmio/bitpipe/fault"
	"github.com/jbvmio/bitpipe/pipeline"
	"github.com/jbvmio/bitpipe/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

type shortWriter struct{}

func (shortWriter) Write(p []byte) (int, error) { return len(p) / 2, nil }

// recordWriter records every Write separately.
type recordWriter struct {
	writes [][]byte
}

func (w *recordWriter) Write(p []byte) (int, error) {
	b := make([]byte, len(p))
	copy(b, p)
	w.writes = append(w.writes, b)
	return len(p), nil
}

func TestBuffer(t *testing.T) {
	_, err := NewBuffer(0)
	assert.True(t, fault.Is(err, fault.InvalidArgument))

	b, err := NewBuffer(3)
	require.NoError(t, err)
	var out bytes.Buffer
	b.UseWriter(&out)
	assert.Equal(t, 3, b.Cap())
	assert.False(t, b.IsFull())

	for i := byte(1); i <= 3; i++ {
		assert.True(t, b.Add(i))
	}
	assert.True(t, b.IsFull())
	assert.False(t, b.Add(4), "a full buffer rejects bytes")
	assert.Equal(t, 3, b.Len())

	require.NoError(t, b.Flush())
	assert.Equal(t, []byte{1, 2, 3}, out.Bytes())
	assert.Equal(t, 0, b.Len())
	assert.False(t, b.IsFull())
	assert.True(t, b.Add(4))

	out.Reset()
	require.NoError(t, b.Flush())
	require.NoError(t, b.Flush(), "an empty flush is a no-op")
	assert.Equal(t, []byte{4}, out.Bytes())
}

func TestBufferFlushFailures(t *testing.T) {
	tests := []struct {
		name string
		w    io.Writer
		kind fault.Kind
	}{
		{name: "write error", w: failWriter{}, kind: fault.Write},
		{name: "short write", w: shortWriter{}, kind: fault.Write},
		{name: "no writer", kind: fault.InvalidOutput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBuffer(2)
			require.NoError(t, err)
			if tt.w != nil {
				b.UseWriter(tt.w)
			}
			b.Add(7)
			err = b.Flush()
			assert.True(t, fault.Is(err, tt.kind), "got %v", err)
			assert.Equal(t, 1, b.Len(), "bytes are kept on failure")
		})
	}
}

func TestReaderConfig(t *testing.T) {
	tests := []struct {
		name string
		m    config.Mapping
		kind fault.Kind
	}{
		{name: "zero chunk size", m: config.Mapping{TokenChunkSize: {"0"}, TokenTypes: {"BYTE"}}, kind: fault.ConfigSemantic},
		{name: "missing types", m: config.Mapping{TokenChunkSize: {"4"}}, kind: fault.ConfigSemantic},
		{name: "unknown type", m: config.Mapping{TokenChunkSize: {"4"}, TokenTypes: {"LONG"}}, kind: fault.ConfigSemantic},
		{name: "unknown token", m: config.Mapping{TokenChunkSize: {"4"}, TokenTypes: {"BYTE"}, "speed": {"1"}}, kind: fault.ConfigGrammar},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader("reader", plugin.Deps{})
			err := r.Configure(tt.m)
			assert.True(t, fault.Is(err, tt.kind), "got %v", err)
		})
	}

	var c ReaderConfig
	require.NoError(t, c.Configure(config.Mapping{TokenChunkSize: {"4"}, TokenTypes: {"short", "BYTE"}}))
	assert.Equal(t, 4, c.ChunkSize)
	assert.Equal(t, []string{"SHORT", "BYTE"}, c.Types)
	assert.Contains(t, c.String(), "chunk_size: 4")
}

func newChain(t *testing.T, in []byte, chunk, buffer string, out *recordWriter) (*pipeline.Pipeline, *Writer) {
	r := NewReader("reader", plugin.Deps{})
	require.NoError(t, r.Configure(config.Mapping{TokenChunkSize: {chunk}, TokenTypes: {"BYTE"}}))
	require.NoError(t, r.(*Reader).SetInput(bytes.NewReader(in)))
	w := NewWriter("writer", plugin.Deps{})
	require.NoError(t, w.Configure(config.Mapping{TokenBufferSize: {buffer}, TokenTypes: {"BYTE"}}))
	require.NoError(t, w.(*Writer).SetOutput(out))

	p := pipeline.NewPipeline(nil)
	p.AddStages(r, w)
	require.NoError(t, p.Link())
	return &p, w.(*Writer)
}

func TestReaderWriter(t *testing.T) {
	in := []byte{1, 2, 3, 4, 5, 6, 7}
	out := &recordWriter{}
	p, w := newChain(t, in, "3", "4", out)
	require.NoError(t, p.Run())

	assert.Equal(t, [][]byte{{1, 2, 3, 4}, {5, 6, 7}}, out.writes)
	assert.Equal(t, pipeline.StateDone, p.Source().State())
	assert.Equal(t, pipeline.StateDone, w.State())
	assert.Equal(t, 0, w.Buffer().Len())
}

func TestReaderWriterEmptyInput(t *testing.T) {
	out := &recordWriter{}
	p, w := newChain(t, nil, "3", "4", out)
	require.NoError(t, p.Run())
	assert.Empty(t, out.writes)
	assert.Equal(t, pipeline.StateDone, w.State())
}

func TestReaderErrors(t *testing.T) {
	r := NewReader("reader", plugin.Deps{}).(*Reader)
	require.NoError(t, r.Configure(config.Mapping{TokenChunkSize: {"2"}, TokenTypes: {"BYTE"}}))
	assert.True(t, fault.Is(r.SetInput(nil), fault.InvalidInput))
	assert.True(t, fault.Is(r.Execute(), fault.InvalidInput))

	w := NewWriter("writer", plugin.Deps{}).(*Writer)
	require.NoError(t, w.Configure(config.Mapping{TokenBufferSize: {"2"}, TokenTypes: {"BYTE"}}))
	require.NoError(t, w.SetOutput(&recordWriter{}))
	require.NoError(t, r.SetInput(iotest.TimeoutReader(bytes.NewReader([]byte{1, 2, 3, 4}))))
	p := pipeline.NewPipeline(nil)
	p.AddStages(r, w)
	require.NoError(t, p.Link())
	err := p.Run()
	assert.True(t, fault.Is(err, fault.Read), "got %v", err)
}

func TestWriterErrors(t *testing.T) {
	w := NewWriter("writer", plugin.Deps{}).(*Writer)
	assert.True(t, fault.Is(w.SetOutput(&recordWriter{}), fault.Construction))
	require.NoError(t, w.Configure(config.Mapping{TokenBufferSize: {"2"}, TokenTypes: {"BYTE"}}))
	assert.True(t, fault.Is(w.SetOutput(nil), fault.InvalidOutput))

	r := NewReader("reader", plugin.Deps{}).(*Reader)
	require.NoError(t, r.Configure(config.Mapping{TokenChunkSize: {"4"}, TokenTypes: {"BYTE"}}))
	require.NoError(t, r.SetInput(bytes.NewReader([]byte{1, 2, 3, 4})))
	require.NoError(t, w.SetOutput(failWriter{}))
	p := pipeline.NewPipeline(nil)
	p.AddStages(r, w)
	require.NoError(t, p.Link())
	err := p.Run()
	assert.True(t, fault.Is(err, fault.Write), "got %v", err)
}
