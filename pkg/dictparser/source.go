package dictparser

import (
	"bufio"
	"io"
)

// ByteSource is the input a Parser consumes. Both methods return io.EOF at
// the end of input. Any other error is treated as a failure of the source.
type ByteSource interface {
	// PeekByte returns the next byte without consuming it.
	PeekByte() (byte, error)

	// ReadByte consumes and returns the next byte.
	ReadByte() (byte, error)
}

type readerSource struct {
	r *bufio.Reader
}

var _ ByteSource = readerSource{}

func (s readerSource) PeekByte() (byte, error) {
	b, err := s.r.Peek(1)
	if len(b) == 0 {
		if err == nil {
			err = io.EOF
		}
		return 0, err
	}
	return b[0], nil
}

func (s readerSource) ReadByte() (byte, error) {
	return s.r.ReadByte()
}

// NewSource adapts r to a ByteSource. A reader that already implements
// ByteSource is returned unchanged, a *bufio.Reader is used without an
// additional buffer.
func NewSource(r io.Reader) ByteSource {
	switch v := r.(type) {
	case ByteSource:
		return v
	case *bufio.Reader:
		return readerSource{r: v}
	}
	return readerSource{r: bufio.NewReader(r)}
}
