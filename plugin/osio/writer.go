package osio

import (
	"io"

	"github.com/jbvmio/bitpipe/config"
	"github.com/jbvmio/bitpipe/fault"
	"github.com/jbvmio/bitpipe/pipeline"
	"github.com/jbvmio/bitpipe/plugin"
)

// WriterConfig contains configuration details when using the Writer Sink.
type WriterConfig struct {
	BufferSize int      `yaml:"buffer_size" json:"buffer_size"`
	Types      []string `yaml:"types" json:"types"`
	types      []pipeline.TypeID
}

// Configure attempts to configure the Config based on the details entered.
func (c *WriterConfig) Configure(m config.Mapping) error {
	if err := m.Only(TokenBufferSize, TokenTypes); err != nil {
		return err
	}
	size, err := m.PositiveInt(TokenBufferSize)
	if err != nil {
		return err
	}
	types, err := parseTypes(m)
	if err != nil {
		return err
	}
	c.BufferSize, c.types, c.Types = size, types, typeNames(types)
	return nil
}

func (c WriterConfig) String() string {
	return dump(c)
}

// Writer buffers incoming chunks and writes them to its output whenever the
// buffer fills up, and once more at the end of the stream.
type Writer struct {
	pipeline.Node
	cfg WriterConfig
	buf *Buffer
}

// NewWriter returns an unconfigured Writer.
func NewWriter(name string, deps plugin.Deps) pipeline.Stage {
	return &Writer{
		Node: pipeline.NewNode(name, deps.Log, deps.Metrics),
	}
}

// Configure implements pipeline.Stage.
func (w *Writer) Configure(m config.Mapping) error {
	if err := w.cfg.Configure(m); err != nil {
		return fault.Of(err).Wrapf(err, "%s", w.Name())
	}
	buf, err := NewBuffer(w.cfg.BufferSize)
	if err != nil {
		return err
	}
	w.buf = buf
	w.UseTypes(w.cfg.types)
	w.Logger().Debugf("configured:\n%s", w.cfg)
	return nil
}

// SetOutput sets the output endpoint.
func (w *Writer) SetOutput(out io.Writer) error {
	switch {
	case out == nil:
		return fault.InvalidOutput.Errorf("%s: nil output", w.Name())
	case w.buf == nil:
		return fault.Construction.Errorf("%s: output set before configuration", w.Name())
	}
	w.buf.UseWriter(out)
	w.Logger().Infof("output set")
	return nil
}

// SetProducer implements pipeline.Stage.
func (w *Writer) SetProducer(p pipeline.Producer) error {
	return w.AcceptProducer(p)
}

// SetConsumer implements pipeline.Stage. A Writer has no consumer.
func (w *Writer) SetConsumer(c pipeline.Consumer) error {
	return w.RejectConsumer(c)
}

// Buffer returns the output Buffer.
func (w *Writer) Buffer() *Buffer {
	return w.buf
}

// Execute buffers the current chunk byte by byte, flushing whenever the buffer is full.
// At the end of the stream the remainder is flushed.
func (w *Writer) Execute() error {
	data, err := w.Pull()
	if err != nil {
		return err
	}
	if data == nil {
		w.Logger().Infof("end of stream, flushing %d byte(s)", w.buf.Len())
		w.SetState(pipeline.StateDone)
		return w.flush()
	}
	w.SetState(pipeline.StateActive)
	w.Metrics().Chunk(w.Name(), len(data))
	for _, b := range data {
		if w.buf.Add(b) {
			continue
		}
		if err := w.flush(); err != nil {
			return err
		}
		w.buf.Add(b)
	}
	return nil
}

func (w *Writer) flush() error {
	n := w.buf.Len()
	if err := w.buf.Flush(); err != nil {
		w.Logger().Errorf("could not write output: %v", err)
		return fault.Of(err).Wrapf(err, "%s", w.Name())
	}
	if n > 0 {
		w.Metrics().Flush(w.Name())
		w.Logger().Debugf("flushed %d byte(s)", n)
	}
	return nil
}
