package endpoint

import (
	"io"
	"io/ioutil"
	"net/url"
	"os"
	"strings"

	"github.com/jbvmio/bitpipe/fault"
	"github.com/jbvmio/bitpipe/plugin/kafka"
	"github.com/jbvmio/bitpipe/plugin/loki"
)

// TypeID are used to assign IDs to available endpoints.
type TypeID int

// Available endpoint types:
const (
	TypeNone TypeID = iota
	TypeInputFile
	TypeInputStd
	TypeInputTail
	TypeOutputFile
	TypeOutputStd
	TypeOutputKafka
	TypeOutputLoki
)

var idStrings = [...]string{
	`none`,
	`FileInput`,
	`StdInput`,
	`TailInput`,
	`FileOutput`,
	`StdOutput`,
	`KafkaOutput`,
	`LokiOutput`,
}

func (id TypeID) String() string {
	if id < 0 || int(id) >= len(idStrings) {
		return idStrings[TypeNone]
	}
	return idStrings[id]
}

// Recognized endpoint prefixes.
const (
	std         = `-`
	tailPrefix  = `tail:`
	kafkaScheme = `kafka`
	lokiScheme  = `loki`
	lokisScheme = `lokis`
)

// Opener opens an input endpoint.
type Opener func(target string) (io.ReadCloser, error)

// Creator opens an output endpoint.
type Creator func(target string) (io.WriteCloser, error)

// InputType returns the TypeID of the input endpoint described by target.
func InputType(target string) TypeID {
	switch {
	case target == "":
		return TypeNone
	case target == std:
		return TypeInputStd
	case strings.HasPrefix(target, tailPrefix):
		return TypeInputTail
	default:
		return TypeInputFile
	}
}

// OutputType returns the TypeID of the output endpoint described by target.
func OutputType(target string) TypeID {
	switch {
	case target == "":
		return TypeNone
	case target == std:
		return TypeOutputStd
	}
	if u, err := url.Parse(target); err == nil {
		switch u.Scheme {
		case kafkaScheme:
			return TypeOutputKafka
		case lokiScheme, lokisScheme:
			return TypeOutputLoki
		}
	}
	return TypeOutputFile
}

// OpenInput opens the input endpoint described by target. "-" is standard input,
// "tail:PATH" reads the lines of PATH and anything else names a local file.
func OpenInput(target string) (io.ReadCloser, error) {
	switch InputType(target) {
	case TypeInputStd:
		return ioutil.NopCloser(os.Stdin), nil
	case TypeInputTail:
		return openTail(strings.TrimPrefix(target, tailPrefix))
	case TypeInputFile:
		f, err := os.Open(target)
		if err != nil {
			return nil, fault.InvalidInput.Wrapf(err, "could not open input %s", target)
		}
		return f, nil
	default:
		return nil, fault.InvalidArgument.New("missing input")
	}
}

// OpenOutput opens the output endpoint described by target. "-" is standard output,
// kafka://BROKER[,BROKER]/TOPIC produces one message per write and
// loki://HOST:PORT/PATH?LABEL=VALUE sends one entry per write (lokis:// for https).
// Anything else names a local file, which is truncated.
func OpenOutput(target string) (io.WriteCloser, error) {
	switch OutputType(target) {
	case TypeOutputStd:
		return nopWriteCloser{os.Stdout}, nil
	case TypeOutputKafka:
		u, _ := url.Parse(target)
		c, err := kafka.ParseURL(u)
		if err != nil {
			return nil, fault.InvalidOutput.Wrap(err, "invalid kafka output")
		}
		out, err := c.CreateOutput()
		if err != nil {
			return nil, fault.InvalidOutput.Wrap(err, "could not open kafka output")
		}
		return out, nil
	case TypeOutputLoki:
		u, _ := url.Parse(target)
		c, err := loki.ParseURL(u)
		if err != nil {
			return nil, fault.InvalidOutput.Wrap(err, "invalid loki output")
		}
		out, err := c.CreateOutput()
		if err != nil {
			return nil, fault.InvalidOutput.Wrap(err, "could not open loki output")
		}
		return out, nil
	case TypeOutputFile:
		f, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fault.InvalidOutput.Wrapf(err, "could not open output %s", target)
		}
		return f, nil
	default:
		return nil, fault.InvalidArgument.New("missing output")
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
