package render

import (
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// ErrSink matches every error returned because the sink failed.
var ErrSink = errors.New("render: sink write failed")

// SinkError reports a failed sink write. Written counts the bytes the sink
// accepted during the pass before it failed.
type SinkError struct {
	Written int64
	Err     error
}

func (e *SinkError) Error() string {
	return "render: sink write failed after " + strconv.FormatInt(e.Written, 10) + " bytes: " + e.Err.Error()
}

func (e *SinkError) Unwrap() error { return e.Err }

func (e *SinkError) Is(target error) bool { return target == ErrSink }

const chunkSize = 512

// sink counts accepted bytes and turns short writes into errors.
type sink struct {
	w io.Writer
	n int64
}

func (s *sink) write(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	n, err := s.w.Write(p)
	if n > 0 {
		s.n += int64(n)
	}
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return &SinkError{Written: s.n, Err: err}
	}
	return nil
}
