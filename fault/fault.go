// Package fault classifies the errors returned while assembling and running a pipeline.
//
// Every error produced by bitpipe carries exactly one Kind. None of them are
// recoverable: the first one encountered aborts construction or execution.
package fault

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind identifies the class of a failure.
type Kind int

// Available Kinds:
const (
	Unknown Kind = iota
	InvalidArgument
	ConfigGrammar
	ConfigSemantic
	Construction
	InvalidInput
	InvalidOutput
	Read
	Write
)

var kindStrings = [...]string{
	`unknown`,
	`invalid argument`,
	`config grammar error`,
	`config semantic error`,
	`construction error`,
	`invalid input stream`,
	`invalid output stream`,
	`read error`,
	`write error`,
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindStrings) {
		return kindStrings[Unknown]
	}
	return kindStrings[k]
}

// New returns an error of Kind k with the given message.
func (k Kind) New(msg string) error {
	return &Error{Kind: k, err: errors.New(msg)}
}

// Errorf returns an error of Kind k with a formatted message.
func (k Kind) Errorf(format string, args ...interface{}) error {
	return &Error{Kind: k, err: errors.Errorf(format, args...)}
}

// Wrap annotates err with msg and classifies it as Kind k.
// Returns nil if err is nil.
func (k Kind) Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: k, err: errors.Wrap(err, msg)}
}

// Wrapf annotates err with a formatted message and classifies it as Kind k.
// Returns nil if err is nil.
func (k Kind) Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: k, err: errors.Wrapf(err, format, args...)}
}

// Error is a classified error.
type Error struct {
	Kind Kind
	err  error
}

func (e *Error) Error() string {
	return e.err.Error()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.err
}

// Format prints the stack recorded by pkg/errors with %+v.
func (e *Error) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "%s: %+v", e.Kind, e.err)
		return
	}
	fmt.Fprint(s, e.Error())
}

// Of returns the Kind of the outermost classified error in err's chain,
// or Unknown if there is none.
func Of(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// Is reports whether err is classified as Kind k.
func Is(err error, k Kind) bool {
	return err != nil && Of(err) == k
}
