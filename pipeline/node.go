package pipeline

import (
	"github.com/jbvmio/bitpipe/fault"
	"github.com/jbvmio/bitpipe/log"
	"github.com/jbvmio/bitpipe/metric"
)

// Node implements the wiring shared by every Stage.
// Stage implementations embed it and add Configure and Execute.
type Node struct {
	name     string
	types    []TypeID
	state    State
	producer *Mediator
	inType   TypeID
	consumer Consumer
	outType  TypeID
	chunk    []byte
	l        log.Logger
	m        *metric.Metrics
}

// NewNode returns a new Node.
func NewNode(name string, l log.Logger, m *metric.Metrics) Node {
	return Node{
		name: name,
		l:    log.OrNoop(l).With("stage", name),
		m:    m,
	}
}

// Name returns the Stage name.
func (n *Node) Name() string {
	return n.name
}

// Logger returns the Stage scoped Logger.
func (n *Node) Logger() log.Logger {
	return n.l
}

// Metrics returns the shared Metrics, which may be nil.
func (n *Node) Metrics() *metric.Metrics {
	return n.m
}

// State returns the current execution state.
func (n *Node) State() State {
	return n.state
}

// SetState moves the Node to s.
func (n *Node) SetState(s State) {
	if n.state != s {
		n.l.Debugf("%s -> %s", n.state, s)
	}
	n.state = s
}

// UseTypes sets the supported TypeIDs, in order of preference.
func (n *Node) UseTypes(types []TypeID) {
	n.types = append([]TypeID(nil), types...)
}

// InputTypes returns the TypeIDs accepted from a producer.
func (n *Node) InputTypes() []TypeID {
	return n.types
}

// OutputTypes implements Producer.
func (n *Node) OutputTypes() []TypeID {
	return n.types
}

// InputType returns the TypeID negotiated with the producer.
func (n *Node) InputType() TypeID {
	return n.inType
}

// OutputType returns the TypeID negotiated with the consumer.
func (n *Node) OutputType() TypeID {
	return n.outType
}

// Mediator implements Producer.
func (n *Node) Mediator(t TypeID) *Mediator {
	n.outType = t
	n.l.Debugf("exposing chunks as %s", t)
	return NewMediator(t, n.current)
}

func (n *Node) current() []byte {
	return n.chunk
}

// AcceptProducer wires p and negotiates the exchange type with it.
func (n *Node) AcceptProducer(p Producer) error {
	if p == nil {
		return fault.Construction.Errorf("%s requires a producer", n.name)
	}
	if len(n.types) < 1 {
		return fault.Construction.Errorf("%s has no supported types, was it configured?", n.name)
	}
	t, err := Negotiate(p.OutputTypes(), n.types)
	if err != nil {
		return fault.Construction.Wrapf(err, "%s", n.name)
	}
	n.inType = t
	n.producer = p.Mediator(t)
	n.l.Infof("producer set, exchanging %s", t)
	return nil
}

// RejectProducer fails unless p is nil.
func (n *Node) RejectProducer(p Producer) error {
	if p != nil {
		return fault.Construction.Errorf("%s cannot have a producer", n.name)
	}
	return nil
}

// AcceptConsumer wires c.
func (n *Node) AcceptConsumer(c Consumer) error {
	if c == nil {
		return fault.Construction.Errorf("%s requires a consumer", n.name)
	}
	n.consumer = c
	n.l.Infof("consumer set")
	return nil
}

// RejectConsumer fails unless c is nil.
func (n *Node) RejectConsumer(c Consumer) error {
	if c != nil {
		return fault.Construction.Errorf("%s cannot have a consumer", n.name)
	}
	return nil
}

// Pull returns the producer's current chunk, or nil at the end of the stream.
func (n *Node) Pull() ([]byte, error) {
	if n.producer == nil {
		return nil, fault.Construction.Errorf("%s has no producer", n.name)
	}
	p, err := n.producer.Data()
	if err != nil {
		return nil, err
	}
	if p != nil && p.Type() != n.inType {
		return nil, fault.Construction.Errorf("%s expected %s, received %s", n.name, n.inType, p.Type())
	}
	return Unpack(p)
}

// Emit exposes chunk to the consumer and executes it.
// A nil chunk signals the end of the stream.
func (n *Node) Emit(chunk []byte) error {
	if n.consumer == nil {
		return fault.Construction.Errorf("%s has no consumer", n.name)
	}
	n.chunk = chunk
	if chunk != nil {
		n.m.Chunk(n.name, len(chunk))
	}
	return n.consumer.Execute()
}
