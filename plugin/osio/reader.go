package osio

import (
	"io"

	"github.com/jbvmio/bitpipe/config"
	"github.com/jbvmio/bitpipe/fault"
	"github.com/jbvmio/bitpipe/pipeline"
	"github.com/jbvmio/bitpipe/plugin"
	"gopkg.in/yaml.v2"
)

// Config tokens shared by the osio Stages.
const (
	TokenChunkSize  = `chunk_size`
	TokenBufferSize = `buffer_size`
	TokenTypes      = `types`
)

// ReaderConfig contains configuration details when using the Reader Source.
type ReaderConfig struct {
	ChunkSize int      `yaml:"chunk_size" json:"chunk_size"`
	Types     []string `yaml:"types" json:"types"`
	types     []pipeline.TypeID
}

// Configure attempts to configure the Config based on the details entered.
func (c *ReaderConfig) Configure(m config.Mapping) error {
	if err := m.Only(TokenChunkSize, TokenTypes); err != nil {
		return err
	}
	size, err := m.PositiveInt(TokenChunkSize)
	if err != nil {
		return err
	}
	types, err := parseTypes(m)
	if err != nil {
		return err
	}
	c.ChunkSize, c.types, c.Types = size, types, typeNames(types)
	return nil
}

func (c ReaderConfig) String() string {
	return dump(c)
}

// Reader reads fixed size chunks from its input and pushes them downstream.
type Reader struct {
	pipeline.Node
	cfg ReaderConfig
	in  io.Reader
}

// NewReader returns an unconfigured Reader.
func NewReader(name string, deps plugin.Deps) pipeline.Stage {
	return &Reader{
		Node: pipeline.NewNode(name, deps.Log, deps.Metrics),
	}
}

// Configure implements pipeline.Stage.
func (r *Reader) Configure(m config.Mapping) error {
	if err := r.cfg.Configure(m); err != nil {
		return fault.Of(err).Wrapf(err, "%s", r.Name())
	}
	r.UseTypes(r.cfg.types)
	r.Logger().Debugf("configured:\n%s", r.cfg)
	return nil
}

// SetInput sets the input endpoint.
func (r *Reader) SetInput(in io.Reader) error {
	if in == nil {
		return fault.InvalidInput.Errorf("%s: nil input", r.Name())
	}
	r.in = in
	r.Logger().Infof("input set")
	return nil
}

// SetProducer implements pipeline.Stage. A Reader has no producer.
func (r *Reader) SetProducer(p pipeline.Producer) error {
	return r.RejectProducer(p)
}

// SetConsumer implements pipeline.Stage.
func (r *Reader) SetConsumer(c pipeline.Consumer) error {
	return r.AcceptConsumer(c)
}

// Execute reads the input chunk by chunk, executing the consumer for each one,
// and finally signals the end of the stream. A short final chunk is passed on as is.
func (r *Reader) Execute() error {
	if r.in == nil {
		return fault.InvalidInput.Errorf("%s: no input set", r.Name())
	}
	var chunks int
	for {
		buf := make([]byte, r.cfg.ChunkSize)
		n, err := io.ReadFull(r.in, buf)
		switch err {
		case nil:
		case io.ErrUnexpectedEOF:
			r.Logger().Debugf("short chunk of %d byte(s)", n)
		case io.EOF:
			r.Logger().Infof("all data read in %d chunk(s)", chunks)
			r.SetState(pipeline.StateDone)
			return r.Emit(nil)
		default:
			return fault.Read.Wrapf(err, "%s: could not read input", r.Name())
		}
		chunks++
		r.SetState(pipeline.StateActive)
		if err := r.Emit(buf[:n]); err != nil {
			return err
		}
	}
}

func parseTypes(m config.Mapping) ([]pipeline.TypeID, error) {
	vals, err := m.Bounded(TokenTypes, pipeline.MaxTypes)
	if err != nil {
		return nil, err
	}
	return pipeline.ParseTypes(vals)
}

// dump renders a config for debug logs.
func dump(cfg interface{}) string {
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err.Error()
	}
	return string(b)
}

func typeNames(types []pipeline.TypeID) []string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return names
}
