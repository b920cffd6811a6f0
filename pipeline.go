package bitpipe

import (
	"io"

	"github.com/google/uuid"
	"github.com/jbvmio/bitpipe/config"
	"github.com/jbvmio/bitpipe/fault"
	"github.com/jbvmio/bitpipe/internal/plugins"
	"github.com/jbvmio/bitpipe/log"
	"github.com/jbvmio/bitpipe/metric"
	"github.com/jbvmio/bitpipe/pipeline"
	"github.com/jbvmio/bitpipe/plugin"
	"github.com/jbvmio/bitpipe/plugin/endpoint"
)

// Option configures NewPipeline.
type Option func(*options)

type options struct {
	l       log.Logger
	reg     *plugin.Registry
	load    config.Loader
	openIn  endpoint.Opener
	openOut endpoint.Creator
	m       *metric.Metrics
}

// WithLogger sets the Logger handed to the Pipeline and every Stage.
func WithLogger(l log.Logger) Option {
	return func(o *options) { o.l = l }
}

// WithRegistry sets the Registry Stage identifiers are resolved against.
func WithRegistry(reg *plugin.Registry) Option {
	return func(o *options) { o.reg = reg }
}

// WithConfigLoader sets the loader used for Stage sub-configs.
func WithConfigLoader(load config.Loader) Option {
	return func(o *options) { o.load = load }
}

// WithInputOpener sets how the input endpoint is opened.
func WithInputOpener(open endpoint.Opener) Option {
	return func(o *options) { o.openIn = open }
}

// WithOutputOpener sets how the output endpoint is opened.
func WithOutputOpener(open endpoint.Creator) Option {
	return func(o *options) { o.openOut = open }
}

// WithMetrics sets the Metrics recorded by every Stage.
func WithMetrics(m *metric.Metrics) Option {
	return func(o *options) { o.m = m }
}

// Pipeline is an assembled, linked chain of Stages together with its endpoints.
type Pipeline struct {
	ID     string
	pipe   pipeline.Pipeline
	in     io.ReadCloser
	out    io.WriteCloser
	closed bool
	l      log.Logger
}

// queue holds the pending identifiers and sub-config paths of a Role.
type queue struct {
	roleTokens
	names   *config.Queue
	configs *config.Queue
}

// declared is a Stage created from the order list, waiting to be set up.
type declared struct {
	stage pipeline.Stage
	role  plugin.Role
	cfg   string
}

// NewPipeline assembles a Pipeline from m. Every Stage named in order is created,
// configured and linked to its neighbours. Endpoints opened before a failure are closed.
func NewPipeline(m config.Mapping, opts ...Option) (*Pipeline, error) {
	o := options{
		load:    config.FromFile,
		openIn:  endpoint.OpenInput,
		openOut: endpoint.OpenOutput,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.reg == nil {
		o.reg = plugins.Default()
	}
	if m == nil {
		return nil, fault.InvalidArgument.New("no pipeline config")
	}
	if !m.Has(TokenOrder) {
		return nil, fault.InvalidArgument.Errorf("missing %q", TokenOrder)
	}
	order, err := m.Values(TokenOrder)
	if err != nil {
		return nil, err
	}
	id := uuid.New().String()
	l := log.OrNoop(o.l).With("pipeline", id)
	p := &Pipeline{
		ID:   id,
		pipe: pipeline.NewPipeline(l),
		l:    l,
	}
	queues := make([]queue, len(roles))
	for i, r := range roles {
		queues[i] = queue{
			roleTokens: r,
			names:      m.Queue(r.name),
			configs:    m.Queue(r.config),
		}
	}

	stages := make([]declared, 0, len(order))
	for i, ident := range order {
		q, err := match(ident, queues)
		if err != nil {
			return nil, fault.Construction.Wrapf(err, "%s entry %d", TokenOrder, i)
		}
		name, err := q.names.Next()
		if err != nil {
			return nil, fault.Construction.Wrapf(err, "%s", ident)
		}
		cfg, err := q.configs.Next()
		if err != nil {
			return nil, err
		}
		s, err := o.reg.Create(name, q.role, plugin.Deps{Log: l, Metrics: o.m})
		if err != nil {
			return nil, err
		}
		stages = append(stages, declared{stage: s, role: q.role, cfg: cfg})
	}
	for _, q := range queues {
		if rest := q.names.Remaining(); len(rest) > 0 {
			l.Warnf("%s identifiers never referenced by %s: %v", q.role, TokenOrder, rest)
		}
	}

	if err := p.setup(m, o, stages); err != nil {
		p.Close()
		return nil, err
	}
	if err := p.pipe.Link(); err != nil {
		p.Close()
		return nil, err
	}
	l.Infof("pipeline assembled with %d stage(s)", len(stages))
	return p, nil
}

// match returns the queue whose next identifier is ident. Exactly one must match.
func match(ident string, queues []queue) (*queue, error) {
	var found *queue
	for i := range queues {
		head, ok := queues[i].names.Peek()
		if !ok || head != ident {
			continue
		}
		if found != nil {
			return nil, fault.Construction.Errorf("%s is both a %s and a %s", ident, found.role, queues[i].role)
		}
		found = &queues[i]
	}
	if found == nil {
		return nil, fault.Construction.Errorf("%s does not match any pending stage", ident)
	}
	return found, nil
}

func (p *Pipeline) setup(m config.Mapping, o options, stages []declared) error {
	for _, d := range stages {
		sub, err := o.load(d.cfg)
		if err != nil {
			return err
		}
		if err := d.stage.Configure(sub); err != nil {
			return err
		}
		switch d.role {
		case plugin.RoleSource:
			if err := p.openInput(m, o.openIn, d.stage.(pipeline.Source)); err != nil {
				return err
			}
		case plugin.RoleSink:
			if err := p.openOutput(m, o.openOut, d.stage.(pipeline.Sink)); err != nil {
				return err
			}
		}
		p.pipe.AddStages(d.stage)
	}
	return nil
}

func (p *Pipeline) openInput(m config.Mapping, open endpoint.Opener, s pipeline.Source) error {
	if p.in != nil {
		return fault.Construction.Errorf("%s: pipeline already has a source", s.Name())
	}
	if !m.Has(TokenInput) {
		return fault.InvalidArgument.Errorf("%s: missing %q", s.Name(), TokenInput)
	}
	target, err := m.One(TokenInput)
	if err != nil {
		return err
	}
	in, err := open(target)
	if err != nil {
		return fault.InvalidInput.Wrapf(err, "%s", s.Name())
	}
	p.in = in
	return s.SetInput(in)
}

func (p *Pipeline) openOutput(m config.Mapping, open endpoint.Creator, s pipeline.Sink) error {
	if p.out != nil {
		return fault.Construction.Errorf("%s: pipeline already has a sink", s.Name())
	}
	if !m.Has(TokenOutput) {
		return fault.InvalidArgument.Errorf("%s: missing %q", s.Name(), TokenOutput)
	}
	target, err := m.One(TokenOutput)
	if err != nil {
		return err
	}
	out, err := open(target)
	if err != nil {
		return fault.InvalidOutput.Wrapf(err, "%s", s.Name())
	}
	p.out = out
	return s.SetOutput(out)
}

// Stages returns the linked Stages in order.
func (p *Pipeline) Stages() []pipeline.Stage {
	return p.pipe.Stages
}

// Run drives the Pipeline to the end of its input and closes both endpoints.
// A close failure is only returned when the run itself succeeded.
func (p *Pipeline) Run() error {
	err := p.pipe.Run()
	if cerr := p.Close(); err == nil {
		err = cerr
	}
	return err
}

// Close closes both endpoints. Only the first call has any effect.
func (p *Pipeline) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	var err error
	if p.in != nil {
		if cerr := p.in.Close(); cerr != nil {
			p.l.Errorf("could not close input: %v", cerr)
			err = fault.InvalidInput.Wrap(cerr, "could not close input")
		}
	}
	if p.out != nil {
		if cerr := p.out.Close(); cerr != nil {
			p.l.Errorf("could not close output: %v", cerr)
			if err == nil {
				err = fault.InvalidOutput.Wrap(cerr, "could not close output")
			}
		}
	}
	return err
}
