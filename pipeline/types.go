package pipeline

import (
	"strings"

	"github.com/jbvmio/bitpipe/fault"
)

// TypeID identifies how a chunk is packaged when handed from a producer to its consumer.
type TypeID int

// Available TypeIDs:
const (
	TypeNone TypeID = iota
	TypeByte
	TypeShort
	TypeChar
)

var typeStrings = [...]string{
	`NONE`,
	`BYTE`,
	`SHORT`,
	`CHAR`,
}

func (t TypeID) String() string {
	if t < 0 || int(t) >= len(typeStrings) {
		return typeStrings[TypeNone]
	}
	return typeStrings[t]
}

// MaxTypes is the number of valid TypeIDs a stage may declare.
const MaxTypes = len(typeStrings) - 1

// ParseType returns the TypeID named by s, ignoring case.
func ParseType(s string) (TypeID, error) {
	for i := TypeByte; int(i) < len(typeStrings); i++ {
		if strings.EqualFold(s, typeStrings[i]) {
			return i, nil
		}
	}
	return TypeNone, fault.ConfigSemantic.Errorf("unknown type %q", s)
}

// ParseTypes parses an ordered, duplicate free list of TypeIDs.
func ParseTypes(vals []string) ([]TypeID, error) {
	if len(vals) < 1 || len(vals) > MaxTypes {
		return nil, fault.ConfigSemantic.Errorf("wrong amount of types: want 1 to %d, got %d", MaxTypes, len(vals))
	}
	types := make([]TypeID, 0, len(vals))
	seen := make(map[TypeID]bool, len(vals))
	for _, v := range vals {
		t, err := ParseType(v)
		if err != nil {
			return nil, err
		}
		if seen[t] {
			return nil, fault.ConfigSemantic.Errorf("duplicate type %s", t)
		}
		seen[t] = true
		types = append(types, t)
	}
	return types, nil
}

// Negotiate returns the first producer type the consumer also supports.
// The producer's order expresses its preference, so the result is deterministic.
func Negotiate(producer, consumer []TypeID) (TypeID, error) {
	accepted := make(map[TypeID]bool, len(consumer))
	for _, t := range consumer {
		accepted[t] = true
	}
	for _, t := range producer {
		if accepted[t] {
			return t, nil
		}
	}
	return TypeNone, fault.Construction.Errorf("no common type between producer %v and consumer %v", producer, consumer)
}
