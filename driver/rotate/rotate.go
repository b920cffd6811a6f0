// Package rotate implements a Transform which circularly rotates the bits of every byte.
package rotate

import (
	"strings"

	"github.com/jbvmio/bitpipe/config"
	"github.com/jbvmio/bitpipe/driver"
	"github.com/jbvmio/bitpipe/fault"
	"github.com/jbvmio/bitpipe/pipeline"
	"github.com/jbvmio/bitpipe/plugin"
	"gopkg.in/yaml.v2"
)

// Config tokens.
const (
	TokenAmount    = `amount`
	TokenDirection = `direction`
	TokenTypes     = `types`
)

// Direction of a rotation.
type Direction int

// Available Directions:
const (
	Left  Direction = -1
	Right Direction = 1
)

func (d Direction) String() string {
	if d == Left {
		return `left`
	}
	return `right`
}

// ParseDirection accepts left, right (ignoring case), -1 (left) and 1 (right).
func ParseDirection(s string) (Direction, error) {
	switch {
	case s == "-1", strings.EqualFold(s, Left.String()):
		return Left, nil
	case s == "1", strings.EqualFold(s, Right.String()):
		return Right, nil
	}
	return 0, fault.ConfigSemantic.Errorf("invalid %q value %q: expected left, right, -1 or 1", TokenDirection, s)
}

// RotateLeft rotates the bits of b left by k mod 8.
func RotateLeft(b byte, k int) byte {
	k = mod8(k)
	return b<<uint(k) | b>>uint(8-k)
}

// RotateRight rotates the bits of b right by k mod 8.
func RotateRight(b byte, k int) byte {
	k = mod8(k)
	return b>>uint(k) | b<<uint(8-k)
}

func mod8(k int) int {
	k %= 8
	if k < 0 {
		k += 8
	}
	return k
}

// Config contains configuration details when using the Rotate Transform.
type Config struct {
	Amount    int      `yaml:"amount" json:"amount"`
	Direction string   `yaml:"direction" json:"direction"`
	Types     []string `yaml:"types" json:"types"`
	direction Direction
	types     []pipeline.TypeID
}

// Configure attempts to configure the Config based on the details entered.
func (c *Config) Configure(m config.Mapping) error {
	if err := m.Only(TokenAmount, TokenDirection, TokenTypes); err != nil {
		return err
	}
	amount, err := m.PositiveInt(TokenAmount)
	if err != nil {
		return err
	}
	d, err := m.One(TokenDirection)
	if err != nil {
		return err
	}
	direction, err := ParseDirection(d)
	if err != nil {
		return err
	}
	vals, err := m.Bounded(TokenTypes, pipeline.MaxTypes)
	if err != nil {
		return err
	}
	types, err := pipeline.ParseTypes(vals)
	if err != nil {
		return err
	}
	c.Amount, c.direction, c.Direction, c.types = amount, direction, direction.String(), types
	c.Types = make([]string, len(types))
	for i, t := range types {
		c.Types[i] = t.String()
	}
	return nil
}

func (c Config) String() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err.Error()
	}
	return string(b)
}

// Rotate rotates every byte of a chunk in place.
type Rotate struct {
	driver.Driver
	cfg Config
}

// New returns an unconfigured Rotate.
func New(name string, deps plugin.Deps) pipeline.Stage {
	return &Rotate{
		Driver: driver.New(name, deps),
	}
}

// Configure implements pipeline.Stage.
func (r *Rotate) Configure(m config.Mapping) error {
	if err := r.cfg.Configure(m); err != nil {
		return fault.Of(err).Wrapf(err, "%s", r.Name())
	}
	r.UseTypes(r.cfg.types)
	r.UseProcess(r.rotate)
	r.Logger().Debugf("configured:\n%s", r.cfg)
	return nil
}

func (r *Rotate) rotate(chunk []byte) {
	fn := RotateRight
	if r.cfg.direction == Left {
		fn = RotateLeft
	}
	for i, b := range chunk {
		chunk[i] = fn(b, r.cfg.Amount)
	}
}
