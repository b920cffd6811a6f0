package endpoint

import (
	"bytes"
	"io"

	"github.com/jbvmio/bitpipe/fault"
	"github.com/nxadm/tail"
)

// tailInput reads a file line by line through tail, without following it.
// Every line is terminated by a newline.
type tailInput struct {
	t   *tail.Tail
	buf bytes.Buffer
}

func openTail(path string) (io.ReadCloser, error) {
	if path == "" {
		return nil, fault.InvalidArgument.New("missing tail input path")
	}
	t, err := tail.TailFile(path, tail.Config{
		Follow:    false,
		MustExist: true,
		Logger:    tail.DiscardingLogger,
		Location:  &tail.SeekInfo{Whence: io.SeekStart},
	})
	if err != nil {
		return nil, fault.InvalidInput.Wrapf(err, "could not tail %s", path)
	}
	return &tailInput{t: t}, nil
}

func (in *tailInput) Read(p []byte) (int, error) {
	for in.buf.Len() == 0 {
		line, ok := <-in.t.Lines
		if !ok {
			if err := in.t.Wait(); err != nil {
				return 0, err
			}
			return 0, io.EOF
		}
		if line.Err != nil {
			return 0, line.Err
		}
		in.buf.WriteString(line.Text)
		in.buf.WriteByte('\n')
	}
	return in.buf.Read(p)
}

func (in *tailInput) Close() error {
	err := in.t.Stop()
	in.t.Cleanup()
	return err
}
