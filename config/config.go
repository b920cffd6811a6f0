// Package config holds the Mapping every configurable bitpipe component is built from
// and the loaders that produce one from a file.
package config

import (
	"sort"
	"strconv"
	"strings"

	"github.com/jbvmio/bitpipe/fault"
)

// Mapping maps a token name to its ordered values.
type Mapping map[string][]string

// Has returns true if the token is present.
func (m Mapping) Has(token string) bool {
	_, there := m[token]
	return there
}

// Values returns a copy of the values for token.
// Returns a ConfigSemantic error if the token is missing or has no values.
func (m Mapping) Values(token string) ([]string, error) {
	vals, there := m[token]
	switch {
	case !there:
		return nil, fault.ConfigSemantic.Errorf("missing %q", token)
	case len(vals) < 1:
		return nil, fault.ConfigSemantic.Errorf("no values for %q", token)
	}
	tmp := make([]string, len(vals))
	copy(tmp, vals)
	return tmp, nil
}

// One returns the single value for token.
func (m Mapping) One(token string) (string, error) {
	vals, err := m.Values(token)
	if err != nil {
		return "", err
	}
	if len(vals) != 1 {
		return "", fault.ConfigSemantic.Errorf("wrong amount of %q values: want 1, got %d", token, len(vals))
	}
	return vals[0], nil
}

// Int returns the single value for token as an integer.
func (m Mapping) Int(token string) (int, error) {
	v, err := m.One(token)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fault.ConfigSemantic.Errorf("invalid %q value %q: not an integer", token, v)
	}
	return n, nil
}

// PositiveInt returns the single value for token as an integer >= 1.
func (m Mapping) PositiveInt(token string) (int, error) {
	n, err := m.Int(token)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fault.ConfigSemantic.Errorf("invalid %q value %d: must be at least 1", token, n)
	}
	return n, nil
}

// Bounded returns between 1 and max values for token.
func (m Mapping) Bounded(token string, max int) ([]string, error) {
	vals, err := m.Values(token)
	if err != nil {
		return nil, err
	}
	if len(vals) > max {
		return nil, fault.ConfigSemantic.Errorf("wrong amount of %q values: want at most %d, got %d", token, max, len(vals))
	}
	return vals, nil
}

// Only returns a ConfigGrammar error naming the first token not in allowed.
func (m Mapping) Only(allowed ...string) error {
	ok := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		ok[a] = true
	}
	for _, k := range m.Tokens() {
		if !ok[k] {
			return fault.ConfigGrammar.Errorf("invalid token %q, expected one of: %s", k, strings.Join(allowed, ", "))
		}
	}
	return nil
}

// Tokens returns the sorted token names.
func (m Mapping) Tokens() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Queue returns a consumable view of the values for token.
// A missing token yields an empty Queue.
func (m Mapping) Queue(token string) *Queue {
	vals := m[token]
	tmp := make([]string, len(vals))
	copy(tmp, vals)
	return &Queue{token: token, vals: tmp}
}

// Queue hands out the values of a single token in order.
type Queue struct {
	token string
	vals  []string
}

// Peek returns the next value without consuming it.
func (q *Queue) Peek() (string, bool) {
	if len(q.vals) < 1 {
		return "", false
	}
	return q.vals[0], true
}

// Next consumes and returns the next value.
// Returns a ConfigSemantic error if the Queue is exhausted.
func (q *Queue) Next() (string, error) {
	v, ok := q.Peek()
	if !ok {
		return "", fault.ConfigSemantic.Errorf("wrong amount of %q values", q.token)
	}
	q.vals = q.vals[1:]
	return v, nil
}

// Remaining returns the values not yet consumed.
func (q *Queue) Remaining() []string {
	return q.vals
}
