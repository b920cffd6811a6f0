package pipeline

import (
	"errors"
	"io"
	"testing"

	"github.com/jbvmio/bitpipe/config"
	"github.com/jbvmio/bitpipe/fault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testSource struct {
	Node
	data []byte
	size int
}

func newTestSource(data []byte, size int, types ...TypeID) *testSource {
	s := &testSource{Node: NewNode("src", nil, nil), data: data, size: size}
	s.UseTypes(types)
	return s
}

func (s *testSource) Configure(config.Mapping) error { return nil }
func (s *testSource) SetInput(io.Reader) error       { return nil }
func (s *testSource) SetProducer(p Producer) error   { return s.RejectProducer(p) }
func (s *testSource) SetConsumer(c Consumer) error   { return s.AcceptConsumer(c) }

func (s *testSource) Execute() error {
	for len(s.data) > 0 {
		n := s.size
		if n > len(s.data) {
			n = len(s.data)
		}
		s.SetState(StateActive)
		if err := s.Emit(s.data[:n]); err != nil {
			return err
		}
		s.data = s.data[n:]
	}
	s.SetState(StateDone)
	return s.Emit(nil)
}

type testIncrement struct {
	Node
}

func newTestIncrement(types ...TypeID) *testIncrement {
	t := &testIncrement{Node: NewNode("inc", nil, nil)}
	t.UseTypes(types)
	return t
}

func (t *testIncrement) Configure(config.Mapping) error { return nil }
func (t *testIncrement) SetProducer(p Producer) error   { return t.AcceptProducer(p) }
func (t *testIncrement) SetConsumer(c Consumer) error   { return t.AcceptConsumer(c) }

func (t *testIncrement) Execute() error {
	b, err := t.Pull()
	if err != nil {
		return err
	}
	if b == nil {
		t.SetState(StateDone)
	} else {
		t.SetState(StateActive)
	}
	for i := range b {
		b[i]++
	}
	return t.Emit(b)
}

type testSink struct {
	Node
	out    []byte
	chunks int
	eos    int
	fail   error
}

func newTestSink(types ...TypeID) *testSink {
	s := &testSink{Node: NewNode("sink", nil, nil)}
	s.UseTypes(types)
	return s
}

func (s *testSink) Configure(config.Mapping) error { return nil }
func (s *testSink) SetOutput(io.Writer) error      { return nil }
func (s *testSink) SetProducer(p Producer) error   { return s.AcceptProducer(p) }
func (s *testSink) SetConsumer(c Consumer) error   { return s.RejectConsumer(c) }

func (s *testSink) Execute() error {
	b, err := s.Pull()
	if err != nil {
		return err
	}
	if b == nil {
		s.eos++
		s.SetState(StateDone)
		return nil
	}
	if s.fail != nil {
		return s.fail
	}
	s.SetState(StateActive)
	s.chunks++
	s.out = append(s.out, b...)
	return nil
}

func TestNegotiate(t *testing.T) {
	got, err := Negotiate([]TypeID{TypeByte, TypeShort}, []TypeID{TypeShort, TypeChar})
	require.NoError(t, err)
	assert.Equal(t, TypeShort, got)

	got, err = Negotiate([]TypeID{TypeChar, TypeByte}, []TypeID{TypeByte, TypeChar})
	require.NoError(t, err)
	assert.Equal(t, TypeChar, got, "producer preference wins")

	for i := 0; i < 10; i++ {
		again, _ := Negotiate([]TypeID{TypeChar, TypeByte}, []TypeID{TypeByte, TypeChar})
		assert.Equal(t, got, again)
	}

	_, err = Negotiate([]TypeID{TypeByte}, []TypeID{TypeChar})
	assert.True(t, fault.Is(err, fault.Construction))
}

func TestParseTypes(t *testing.T) {
	types, err := ParseTypes([]string{"char", "BYTE", "Short"})
	require.NoError(t, err)
	assert.Equal(t, []TypeID{TypeChar, TypeByte, TypeShort}, types)
	assert.Equal(t, "SHORT", TypeShort.String())
	assert.Equal(t, "NONE", TypeID(42).String())

	for _, vals := range [][]string{
		nil,
		{"BYTE", "SHORT", "CHAR", "BYTE"},
		{"WORD"},
		{"NONE"},
		{"BYTE", "byte"},
	} {
		_, err := ParseTypes(vals)
		assert.True(t, fault.Is(err, fault.ConfigSemantic), "%v", vals)
	}
}

func TestPackUnpack(t *testing.T) {
	chunk := []byte{0x00, 0x01, 0x7f, 0x80, 0xff}
	for _, typ := range []TypeID{TypeByte, TypeShort, TypeChar} {
		t.Run(typ.String(), func(t *testing.T) {
			p, err := Pack(typ, chunk)
			require.NoError(t, err)
			assert.Equal(t, typ, p.Type())
			assert.Equal(t, len(chunk), p.Len())
			b, err := Unpack(p)
			require.NoError(t, err)
			assert.Equal(t, chunk, b)
		})
	}

	p, _ := Pack(TypeShort, []byte{0xff, 0x7f})
	assert.Equal(t, ShortPayload{-1, 127}, p)
	p, _ = Pack(TypeChar, []byte{0xff})
	assert.Equal(t, CharPayload{0xff}, p)

	p, err := Pack(TypeByte, nil)
	require.NoError(t, err)
	assert.Nil(t, p)
	b, err := Unpack(nil)
	require.NoError(t, err)
	assert.Nil(t, b)

	p, err = Pack(TypeByte, []byte{})
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 0, p.Len())

	_, err = Pack(TypeNone, chunk)
	assert.True(t, fault.Is(err, fault.Construction))
}

func TestMediatorDoesNotAlias(t *testing.T) {
	chunk := []byte{1, 2, 3}
	m := NewMediator(TypeByte, func() []byte { return chunk })
	p, err := m.Data()
	require.NoError(t, err)
	p.(BytePayload)[0] = 9
	assert.Equal(t, byte(1), chunk[0])
	assert.Equal(t, TypeByte, m.Type())
}

func TestLinkAndRun(t *testing.T) {
	src := newTestSource([]byte{1, 2, 3, 4, 5}, 2, TypeChar, TypeByte)
	inc := newTestIncrement(TypeShort, TypeByte)
	sink := newTestSink(TypeShort, TypeByte)

	p := NewPipeline(nil)
	p.AddStages(src, inc, sink)
	assert.True(t, fault.Is(p.Run(), fault.Construction), "run before link")

	require.NoError(t, p.Link())
	assert.Equal(t, TypeByte, src.OutputType())
	assert.Equal(t, TypeByte, inc.InputType())
	assert.Equal(t, TypeShort, inc.OutputType())
	assert.Equal(t, TypeShort, sink.InputType())
	assert.Equal(t, Source(src), p.Source())
	assert.Equal(t, Sink(sink), p.Sink())
	assert.True(t, fault.Is(p.Link(), fault.Construction), "link twice")

	require.NoError(t, p.Run())
	assert.Equal(t, []byte{2, 3, 4, 5, 6}, sink.out)
	assert.Equal(t, 3, sink.chunks)
	assert.Equal(t, 1, sink.eos)
	for _, s := range p.Stages {
		assert.Equal(t, StateDone, s.State(), s.Name())
	}

	assert.True(t, fault.Is(p.Run(), fault.InvalidArgument), "run twice")
}

func TestRunEmptyInput(t *testing.T) {
	src := newTestSource(nil, 4, TypeByte)
	sink := newTestSink(TypeByte)
	p := NewPipeline(nil)
	p.AddStages(src, sink)
	require.NoError(t, p.Link())
	require.NoError(t, p.Run())
	assert.Empty(t, sink.out)
	assert.Equal(t, 0, sink.chunks)
	assert.Equal(t, 1, sink.eos)
}

func TestRunStopsOnFailure(t *testing.T) {
	boom := fault.Write.New("disk full")
	src := newTestSource([]byte{1, 2, 3, 4}, 1, TypeByte)
	sink := newTestSink(TypeByte)
	sink.fail = boom
	p := NewPipeline(nil)
	p.AddStages(src, sink)
	require.NoError(t, p.Link())
	err := p.Run()
	assert.True(t, errors.Is(err, boom))
	assert.Equal(t, []byte{1, 2, 3, 4}, src.data, "source must stop after the first failure")
	assert.Equal(t, 0, sink.eos)
}

func TestLinkFailures(t *testing.T) {
	tests := []struct {
		name   string
		stages func() []Stage
	}{
		{"empty", func() []Stage { return nil }},
		{"source only", func() []Stage { return []Stage{newTestSource(nil, 1, TypeByte)} }},
		{"transform first", func() []Stage {
			return []Stage{newTestIncrement(TypeByte), newTestSink(TypeByte)}
		}},
		{"transform last", func() []Stage {
			return []Stage{newTestSource(nil, 1, TypeByte), newTestIncrement(TypeByte)}
		}},
		{"sink in the middle", func() []Stage {
			return []Stage{newTestSource(nil, 1, TypeByte), newTestSink(TypeByte), newTestSink(TypeByte)}
		}},
		{"source in the middle", func() []Stage {
			return []Stage{newTestSource(nil, 1, TypeByte), newTestSource(nil, 1, TypeByte), newTestSink(TypeByte)}
		}},
		{"disjoint types", func() []Stage {
			return []Stage{newTestSource(nil, 1, TypeByte), newTestSink(TypeChar)}
		}},
		{"unconfigured consumer", func() []Stage {
			return []Stage{newTestSource(nil, 1, TypeByte), newTestSink()}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPipeline(nil)
			p.AddStages(tt.stages()...)
			err := p.Link()
			require.Error(t, err)
			assert.Equal(t, fault.Construction, fault.Of(err))
		})
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "active", StateActive.String())
	assert.Equal(t, "done", StateDone.String())
	assert.Equal(t, "unknown", State(7).String())
}
