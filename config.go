package bitpipe

import (
	"github.com/jbvmio/bitpipe/config"
	"github.com/jbvmio/bitpipe/plugin"
)

// Pipeline config tokens.
const (
	TokenOrder           = `order`
	TokenSourceName      = `source_name`
	TokenTransformName   = `transform_name`
	TokenSinkName        = `sink_name`
	TokenSourceConfig    = `source_config`
	TokenTransformConfig = `transform_config`
	TokenSinkConfig      = `sink_config`
	TokenInput           = `input`
	TokenOutput          = `output`
)

// roleTokens pairs a Role with the tokens holding its identifiers and sub-config paths.
type roleTokens struct {
	role   plugin.Role
	name   string
	config string
}

var roles = [...]roleTokens{
	{role: plugin.RoleSource, name: TokenSourceName, config: TokenSourceConfig},
	{role: plugin.RoleTransform, name: TokenTransformName, config: TokenTransformConfig},
	{role: plugin.RoleSink, name: TokenSinkName, config: TokenSinkConfig},
}

// ConfigFromFile loads and returns a pipeline config from a local file.
func ConfigFromFile(path string) (config.Mapping, error) {
	m, err := config.FromFile(path)
	if err != nil {
		return nil, err
	}
	return m, m.Only(
		TokenOrder,
		TokenSourceName, TokenTransformName, TokenSinkName,
		TokenSourceConfig, TokenTransformConfig, TokenSinkConfig,
		TokenInput, TokenOutput,
	)
}
