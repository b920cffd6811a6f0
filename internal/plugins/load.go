package plugins

import (
	"github.com/jbvmio/bitpipe/internal/drivers"
	"github.com/jbvmio/bitpipe/plugin"
	"github.com/jbvmio/bitpipe/plugin/osio"
)

// Identifiers of the built in Sources and Sinks.
const (
	Reader = `reader`
	Writer = `writer`
)

// LoadInputs registers the built in Sources.
func LoadInputs(reg *plugin.Registry) error {
	return reg.Register(Reader, plugin.Registration{
		Role:        plugin.RoleSource,
		Factory:     osio.NewReader,
		Description: "reads fixed size chunks from the input",
	})
}

// LoadOutputs registers the built in Sinks.
func LoadOutputs(reg *plugin.Registry) error {
	return reg.Register(Writer, plugin.Registration{
		Role:        plugin.RoleSink,
		Factory:     osio.NewWriter,
		Description: "buffers chunks and writes them to the output",
	})
}

// Default returns a Registry holding every built in Stage.
func Default() *plugin.Registry {
	reg := plugin.NewRegistry()
	for _, load := range []func(*plugin.Registry) error{LoadInputs, drivers.LoadProcessors, LoadOutputs} {
		if err := load(reg); err != nil {
			panic(err)
		}
	}
	return reg
}
