package plugin

import (
	"sort"
	"sync"

	"github.com/jbvmio/bitpipe/fault"
	"github.com/jbvmio/bitpipe/log"
	"github.com/jbvmio/bitpipe/metric"
	"github.com/jbvmio/bitpipe/pipeline"
)

// Role is the position a Stage can take in a Pipeline.
type Role int

// Available Roles:
const (
	RoleNone Role = iota
	RoleSource
	RoleTransform
	RoleSink
)

var roleStrings = [...]string{
	`none`,
	`source`,
	`transform`,
	`sink`,
}

func (r Role) String() string {
	if r < 0 || int(r) >= len(roleStrings) {
		return roleStrings[RoleNone]
	}
	return roleStrings[r]
}

// Check returns a Construction error if s does not implement the capabilities of r.
func (r Role) Check(s pipeline.Stage) error {
	var ok bool
	switch r {
	case RoleSource:
		_, ok = s.(pipeline.Source)
	case RoleTransform:
		_, ok = s.(pipeline.Transform)
	case RoleSink:
		_, ok = s.(pipeline.Sink)
	}
	if !ok {
		return fault.Construction.Errorf("%s cannot act as a %s", s.Name(), r)
	}
	return nil
}

// Deps are handed to every Factory.
type Deps struct {
	Log     log.Logger
	Metrics *metric.Metrics
}

// Factory creates a new, unconfigured Stage named name.
type Factory func(name string, deps Deps) pipeline.Stage

// Registration describes an available Stage implementation.
type Registration struct {
	Role        Role
	Factory     Factory
	Description string
}

// Registry maps Stage identifiers to their Registration.
type Registry struct {
	regs map[string]Registration
	lock sync.RWMutex
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		regs: make(map[string]Registration),
	}
}

// Register adds a Registration under name.
func (r *Registry) Register(name string, reg Registration) error {
	switch {
	case name == "":
		return fault.InvalidArgument.New("empty stage identifier")
	case reg.Factory == nil:
		return fault.InvalidArgument.Errorf("no factory for %s", name)
	case reg.Role == RoleNone || int(reg.Role) >= len(roleStrings):
		return fault.InvalidArgument.Errorf("invalid role for %s", name)
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	if _, there := r.regs[name]; there {
		return fault.InvalidArgument.Errorf("%s is already registered", name)
	}
	r.regs[name] = reg
	return nil
}

// Lookup returns the Registration for name.
func (r *Registry) Lookup(name string) (Registration, error) {
	r.lock.RLock()
	reg, there := r.regs[name]
	r.lock.RUnlock()
	if !there {
		return Registration{}, fault.Construction.Errorf("no stage named %s available", name)
	}
	return reg, nil
}

// Create looks up name, creates the Stage and checks it can act as role.
func (r *Registry) Create(name string, role Role, deps Deps) (pipeline.Stage, error) {
	reg, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	if reg.Role != role {
		return nil, fault.Construction.Errorf("%s is a %s, not a %s", name, reg.Role, role)
	}
	s := reg.Factory(name, deps)
	if s == nil {
		return nil, fault.Construction.Errorf("factory for %s returned no stage", name)
	}
	if err := role.Check(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Names returns the sorted registered identifiers.
func (r *Registry) Names() []string {
	r.lock.RLock()
	names := make([]string, 0, len(r.regs))
	for n := range r.regs {
		names = append(names, n)
	}
	r.lock.RUnlock()
	sort.Strings(names)
	return names
}
