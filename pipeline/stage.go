package pipeline

import (
	"io"

	"github.com/jbvmio/bitpipe/config"
)

// State is the execution state of a Stage.
type State int

// Available States:
const (
	StateIdle State = iota
	StateActive
	StateDone
)

var stateStrings = [...]string{
	`idle`,
	`active`,
	`done`,
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateStrings) {
		return `unknown`
	}
	return stateStrings[s]
}

// Stage is an element of a Pipeline.
type Stage interface {
	// Name returns the identifier the Stage was created under.
	Name() string
	// Configure applies the Stage's own config. It is called once, before wiring.
	Configure(config.Mapping) error
	// SetProducer wires the upstream Stage, nil for a Source.
	SetProducer(Producer) error
	// SetConsumer wires the downstream Stage, nil for a Sink.
	SetConsumer(Consumer) error
	// State returns the current execution state.
	State() State
}

// Producer hands chunks to a downstream Stage.
type Producer interface {
	// OutputTypes returns the supported TypeIDs in order of preference.
	OutputTypes() []TypeID
	// Mediator returns a Mediator packaging the current chunk as t.
	Mediator(t TypeID) *Mediator
}

// Consumer processes the chunk currently exposed by its producer.
type Consumer interface {
	// InputTypes returns the supported TypeIDs.
	InputTypes() []TypeID
	// Execute processes one chunk and pushes the result downstream,
	// returning only once every downstream Stage is finished with it.
	Execute() error
}

// Source reads chunks from the input endpoint and drives the Pipeline.
type Source interface {
	Stage
	Producer
	// Execute reads until the input is exhausted, pushing every chunk downstream,
	// and then signals the end of the stream.
	Execute() error
	SetInput(io.Reader) error
}

// Transform modifies every chunk passing through it.
type Transform interface {
	Stage
	Producer
	Consumer
}

// Sink writes chunks to the output endpoint.
type Sink interface {
	Stage
	Consumer
	SetOutput(io.Writer) error
}
