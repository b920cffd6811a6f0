package drivers

import (
	"github.com/jbvmio/bitpipe/driver/rotate"
	"github.com/jbvmio/bitpipe/plugin"
)

// Rotate is the identifier of the bit rotation Transform.
const Rotate = `rotate`

// LoadProcessors registers the built in Transforms.
func LoadProcessors(reg *plugin.Registry) error {
	return reg.Register(Rotate, plugin.Registration{
		Role:        plugin.RoleTransform,
		Factory:     rotate.New,
		Description: "rotates the bits of every byte",
	})
}
