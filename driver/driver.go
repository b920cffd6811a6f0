package driver

import (
	"github.com/jbvmio/bitpipe/pipeline"
	"github.com/jbvmio/bitpipe/plugin"
)

// Process transforms a chunk in place.
type Process func(chunk []byte)

// Driver is a Transform which runs a Process over every chunk before
// passing it on to its consumer.
type Driver struct {
	pipeline.Node
	process Process
}

// New returns a Driver without a Process.
func New(name string, deps plugin.Deps) Driver {
	return Driver{
		Node: pipeline.NewNode(name, deps.Log, deps.Metrics),
	}
}

// UseProcess sets the Process run for every chunk.
func (d *Driver) UseProcess(p Process) {
	d.process = p
}

// SetProducer implements pipeline.Stage.
func (d *Driver) SetProducer(p pipeline.Producer) error {
	return d.AcceptProducer(p)
}

// SetConsumer implements pipeline.Stage.
func (d *Driver) SetConsumer(c pipeline.Consumer) error {
	return d.AcceptConsumer(c)
}

// Execute pulls the current chunk, processes it and executes the consumer.
// The end of the stream is passed on unchanged.
func (d *Driver) Execute() error {
	data, err := d.Pull()
	if err != nil {
		return err
	}
	if data == nil {
		d.SetState(pipeline.StateDone)
		return d.Emit(nil)
	}
	d.SetState(pipeline.StateActive)
	if d.process != nil {
		d.process(data)
	}
	return d.Emit(data)
}
