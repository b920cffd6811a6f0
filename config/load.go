package config

import (
	"bufio"
	"bytes"
	"io/ioutil"
	"path/filepath"
	"strings"

	"github.com/jbvmio/bitpipe/fault"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

const (
	delimiter = `=`
	comment   = `#`
)

// Loader produces a Mapping from a path.
type Loader func(path string) (Mapping, error)

// FromFile loads a Mapping from a local file.
// The format is chosen by extension: .yaml/.yml, .json, anything else is token-line text.
func FromFile(path string) (Mapping, error) {
	if path == "" {
		return nil, fault.InvalidArgument.New("empty config path")
	}
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fault.ConfigGrammar.Wrapf(err, "could not read config %s", path)
	}
	var m Mapping
	switch strings.ToLower(filepath.Ext(path)) {
	case `.yaml`, `.yml`:
		m, err = ParseYAML(b)
	case `.json`:
		m, err = ParseJSON(b)
	default:
		m, err = ParseText(b)
	}
	if err != nil {
		return nil, withPath(err, path)
	}
	return m, nil
}

func withPath(err error, path string) error {
	return fault.Of(err).Wrapf(err, "config %s", path)
}

// ParseText parses token-line text: one `NAME = value value ...` per line.
func ParseText(b []byte) (Mapping, error) {
	m := make(Mapping)
	s := bufio.NewScanner(bytes.NewReader(b))
	var n int
	for s.Scan() {
		n++
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, comment) {
			continue
		}
		i := strings.Index(line, delimiter)
		if i < 0 {
			return nil, fault.ConfigGrammar.Errorf("line %d: missing %q", n, delimiter)
		}
		name := strings.TrimSpace(line[:i])
		switch {
		case name == "" || strings.ContainsAny(name, " \t"):
			return nil, fault.ConfigGrammar.Errorf("line %d: invalid token name %q", n, name)
		case m.Has(name):
			return nil, fault.ConfigGrammar.Errorf("line %d: duplicate token %q", n, name)
		}
		vals := strings.Fields(line[i+1:])
		if len(vals) < 1 {
			return nil, fault.ConfigSemantic.Errorf("line %d: no values for %q", n, name)
		}
		m[name] = vals
	}
	if err := s.Err(); err != nil {
		return nil, fault.ConfigGrammar.Wrap(err, "could not scan config")
	}
	return m, nil
}

// ParseYAML parses a YAML mapping of scalars or sequences of scalars.
func ParseYAML(b []byte) (Mapping, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fault.ConfigGrammar.Wrap(err, "invalid yaml")
	}
	if len(doc.Content) < 1 {
		return Mapping{}, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fault.ConfigGrammar.Errorf("line %d: expected a mapping of tokens", root.Line)
	}
	m := make(Mapping, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		k, v := root.Content[i], root.Content[i+1]
		if k.Kind != yaml.ScalarNode || k.Value == "" {
			return nil, fault.ConfigGrammar.Errorf("line %d: invalid token name", k.Line)
		}
		if m.Has(k.Value) {
			return nil, fault.ConfigGrammar.Errorf("line %d: duplicate token %q", k.Line, k.Value)
		}
		var vals []string
		switch v.Kind {
		case yaml.ScalarNode:
			if v.Tag != `!!null` {
				vals = strings.Fields(v.Value)
			}
		case yaml.SequenceNode:
			for _, item := range v.Content {
				if item.Kind != yaml.ScalarNode {
					return nil, fault.ConfigGrammar.Errorf("line %d: %q values must be scalars", item.Line, k.Value)
				}
				vals = append(vals, item.Value)
			}
		default:
			return nil, fault.ConfigGrammar.Errorf("line %d: %q must be a scalar or a list", v.Line, k.Value)
		}
		if len(vals) < 1 {
			return nil, fault.ConfigSemantic.Errorf("line %d: no values for %q", k.Line, k.Value)
		}
		m[k.Value] = vals
	}
	return m, nil
}

// ParseJSON parses a JSON object of strings, numbers or arrays of them.
func ParseJSON(b []byte) (Mapping, error) {
	if !gjson.ValidBytes(b) {
		return nil, fault.ConfigGrammar.New("invalid json")
	}
	r := gjson.ParseBytes(b)
	if !r.IsObject() {
		return nil, fault.ConfigGrammar.New("expected a json object of tokens")
	}
	m := make(Mapping)
	var err error
	r.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		if name == "" {
			err = fault.ConfigGrammar.New("empty token name")
			return false
		}
		if m.Has(name) {
			err = fault.ConfigGrammar.Errorf("duplicate token %q", name)
			return false
		}
		var vals []string
		switch {
		case value.IsArray():
			for _, item := range value.Array() {
				v, ok := jsonScalar(item)
				if !ok {
					err = fault.ConfigGrammar.Errorf("%q values must be strings or numbers", name)
					return false
				}
				vals = append(vals, v)
			}
		default:
			v, ok := jsonScalar(value)
			if !ok {
				err = fault.ConfigGrammar.Errorf("%q must be a string, a number or a list", name)
				return false
			}
			vals = strings.Fields(v)
		}
		if len(vals) < 1 {
			err = fault.ConfigSemantic.Errorf("no values for %q", name)
			return false
		}
		m[name] = vals
		return true
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func jsonScalar(r gjson.Result) (string, bool) {
	switch r.Type {
	case gjson.String:
		return r.String(), true
	case gjson.Number:
		return r.Raw, true
	case gjson.True, gjson.False:
		return r.String(), true
	default:
		return "", false
	}
}
