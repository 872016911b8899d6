package dictparser

import (
	"bufio"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSource_PeekDoesNotConsume(t *testing.T) {
	src := NewSource(strings.NewReader("ab"))

	c, err := src.PeekByte()
	require.NoError(t, err)
	require.Equal(t, byte('a'), c)

	c, err = src.PeekByte()
	require.NoError(t, err)
	require.Equal(t, byte('a'), c)

	c, err = src.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte('a'), c)

	c, err = src.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte('b'), c)

	_, err = src.PeekByte()
	require.ErrorIs(t, err, io.EOF)
	_, err = src.ReadByte()
	require.ErrorIs(t, err, io.EOF)
}

func TestNewSource_ReusesBufioReader(t *testing.T) {
	br := bufio.NewReader(strings.NewReader("{a:b;}rest"))
	p := New(NewSource(br))

	props, err := collect(p)
	require.NoError(t, err)
	require.Len(t, props, 1)

	// Nothing beyond the closing brace was consumed from the shared reader.
	rest, err := io.ReadAll(br)
	require.NoError(t, err)
	require.Equal(t, "rest", string(rest))
}

type peekReader struct {
	*strings.Reader
}

func (r peekReader) PeekByte() (byte, error) {
	c, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	_ = r.UnreadByte()
	return c, nil
}

func TestNewSource_PassesThroughByteSource(t *testing.T) {
	pr := peekReader{strings.NewReader("{a:b;}")}
	src := NewSource(pr)
	require.Equal(t, pr, src)

	props, err := collect(New(src))
	require.NoError(t, err)
	require.Equal(t, []Property{{Name: []byte("a"), Value: []byte("b")}}, props)
}

func collect(p *Parser) ([]Property, error) {
	var props []Property
	for prop, err := range p.All() {
		if err != nil {
			return props, err
		}
		props = append(props, prop)
	}
	return props, nil
}
