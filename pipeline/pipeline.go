package pipeline

import (
	"github.com/jbvmio/bitpipe/fault"
	"github.com/jbvmio/bitpipe/log"
)

// Pipeline is a linear chain of Stages: one Source, zero or more Transforms, one Sink.
type Pipeline struct {
	Stages []Stage
	source Source
	sink   Sink
	linked bool
	ran    bool
	l      log.Logger
}

// NewPipeline returns a new Pipeline.
func NewPipeline(l log.Logger) Pipeline {
	return Pipeline{
		l: log.OrNoop(l),
	}
}

// AddStages appends 1 or more Stages to the Pipeline.
func (p *Pipeline) AddStages(stages ...Stage) {
	p.l.Debugf("adding %d stage(s)", len(stages))
	p.Stages = append(p.Stages, stages...)
}

// Link wires every Stage to its neighbours, negotiating the exchange type of each edge.
// Every Stage must already be configured.
func (p *Pipeline) Link() error {
	if p.linked {
		return fault.Construction.New("pipeline already linked")
	}
	if len(p.Stages) < 2 {
		return fault.Construction.Errorf("pipeline needs a source and a sink, got %d stage(s)", len(p.Stages))
	}
	last := len(p.Stages) - 1
	for i, s := range p.Stages {
		var producer Producer
		if i > 0 {
			prev, ok := p.Stages[i-1].(Producer)
			if !ok {
				return fault.Construction.Errorf("%s cannot produce for %s", p.Stages[i-1].Name(), s.Name())
			}
			producer = prev
		}
		if err := s.SetProducer(producer); err != nil {
			return err
		}
		var consumer Consumer
		if i < last {
			next, ok := p.Stages[i+1].(Consumer)
			if !ok {
				return fault.Construction.Errorf("%s cannot consume from %s", p.Stages[i+1].Name(), s.Name())
			}
			consumer = next
		}
		if err := s.SetConsumer(consumer); err != nil {
			return err
		}
		p.l.Debugf("linked stage %d: %s", i, s.Name())
	}
	src, ok := p.Stages[0].(Source)
	if !ok {
		return fault.Construction.Errorf("%s is not a source", p.Stages[0].Name())
	}
	sink, ok := p.Stages[last].(Sink)
	if !ok {
		return fault.Construction.Errorf("%s is not a sink", p.Stages[last].Name())
	}
	p.source, p.sink = src, sink
	p.linked = true
	p.l.Infof("linked %d stage(s)", len(p.Stages))
	return nil
}

// Source returns the head of a linked Pipeline.
func (p *Pipeline) Source() Source {
	return p.source
}

// Sink returns the tail of a linked Pipeline.
func (p *Pipeline) Sink() Sink {
	return p.sink
}

// Run drives the Pipeline until its Source is exhausted or a Stage fails.
// A Pipeline runs at most once.
func (p *Pipeline) Run() error {
	switch {
	case !p.linked:
		return fault.Construction.New("pipeline is not linked")
	case p.ran:
		return fault.InvalidArgument.New("pipeline already ran")
	}
	p.ran = true
	p.l.Infof("running %d stage(s)", len(p.Stages))
	if err := p.source.Execute(); err != nil {
		p.l.Errorf("pipeline failed: %v", err)
		return err
	}
	p.l.Infof("pipeline completed")
	return nil
}
