package dictparser

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"math"
)

// Parser reads properties from a single dictionary, one per call to Next.
type Parser struct {
	src          ByteSource
	state        State
	offset       int64
	err          error
	maxValueSize uint64
	discard      bool // set while skipping, names and values are not stored
}

// Option configures a Parser.
type Option func(*Parser)

// WithMaxValueSize rejects binary properties that declare more than n bytes.
// The check happens before any value byte is read.
func WithMaxValueSize(n uint64) Option {
	return func(p *Parser) {
		p.maxValueSize = n
	}
}

// New returns a Parser reading from src. The parser owns src for its whole
// lifetime.
func New(src ByteSource, opts ...Option) *Parser {
	p := &Parser{
		src:          src,
		state:        StateStart,
		maxValueSize: math.MaxUint64,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewFromReader returns a Parser reading from r. See NewSource.
func NewFromReader(r io.Reader, opts ...Option) *Parser {
	return New(NewSource(r), opts...)
}

// State returns the current parser state.
func (p *Parser) State() State {
	return p.state
}

// Offset returns the number of bytes consumed from the source.
func (p *Parser) Offset() int64 {
	return p.offset
}

// Next returns the next property of the dictionary.
//
// It returns io.EOF once the closing '}' has been consumed, and on every call
// after that. Grammar violations are returned as *ParseError. After any error
// other than io.EOF the parser is unusable and Next keeps returning that error.
func (p *Parser) Next() (Property, error) {
	if p.err != nil {
		return Property{}, p.err
	}
	prop, err := p.next()
	if err != nil && err != io.EOF {
		p.err = err
	}
	return prop, err
}

// All iterates over the remaining properties. Iteration stops after the
// closing '}' or after yielding the first error.
func (p *Parser) All() iter.Seq2[Property, error] {
	return func(yield func(Property, error) bool) {
		for {
			prop, err := p.Next()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(Property{}, err)
				return
			}
			if !yield(prop, nil) {
				return
			}
		}
	}
}

// Skip consumes the rest of the dictionary, validating but discarding the
// remaining properties.
func (p *Parser) Skip() error {
	p.discard = true
	defer func() { p.discard = false }()
	for {
		_, err := p.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Parse reads a complete dictionary from r.
func Parse(r io.Reader, opts ...Option) ([]Property, error) {
	var props []Property
	for prop, err := range NewFromReader(r, opts...).All() {
		if err != nil {
			return props, err
		}
		props = append(props, prop)
	}
	return props, nil
}

func (p *Parser) next() (Property, error) {
	if p.state == StateEnd {
		return Property{}, io.EOF
	}
	if p.state == StateStart || p.state == StateAtOpenCurly {
		if err := p.matchOpenCurly(); err != nil {
			return Property{}, err
		}
	}
	if p.state == StateAtNameStart {
		if err := p.matchNameStart(); err != nil {
			return Property{}, err
		}
		if p.state == StateEnd {
			return Property{}, io.EOF
		}
	}
	if p.state != StateReadingName {
		return Property{}, fmt.Errorf("dictparser: invalid state %s", p.state)
	}

	name, err := p.readName()
	if err != nil {
		return Property{}, err
	}

	var value []byte
	switch p.state {
	case StateReadingSimpleValue:
		value, err = p.readSimpleValue()
	case StateReadingBinarySize:
		value, err = p.readBinaryValue()
	}
	if err != nil {
		return Property{}, err
	}

	// Look at what follows right away, so a dictionary missing its closing
	// brace fails on the call that read its last property.
	if err := p.matchNameStart(); err != nil {
		return Property{}, err
	}
	return Property{Name: name, Value: value}, nil
}

func (p *Parser) matchOpenCurly() error {
	p.state = StateAtOpenCurly
	c, err := p.peek(MissingOpenBrace)
	if err != nil {
		return err
	}
	if c != '{' {
		return p.fail(MissingOpenBrace)
	}
	if err := p.skip(MissingOpenBrace); err != nil {
		return err
	}
	p.state = StateAtNameStart
	return nil
}

func (p *Parser) matchNameStart() error {
	c, err := p.peek(MissingClosingBrace)
	if err != nil {
		return err
	}
	switch c {
	case '}':
		if err := p.skip(MissingClosingBrace); err != nil {
			return err
		}
		p.state = StateEnd
	case '(', ':':
		return p.fail(EmptyName)
	default:
		p.state = StateReadingName
	}
	return nil
}

func (p *Parser) readName() ([]byte, error) {
	var name []byte
	for {
		c, err := p.read(UnexpectedEOFInName)
		if err != nil {
			return nil, err
		}
		switch c {
		case ':':
			p.state = StateReadingSimpleValue
			return name, nil
		case '(':
			p.state = StateReadingBinarySize
			return name, nil
		}
		if !p.discard {
			name = append(name, c)
		}
	}
}

func (p *Parser) readSimpleValue() ([]byte, error) {
	value := []byte{}
	for {
		c, err := p.read(UnexpectedEOFInSimpleValue)
		if err != nil {
			return nil, err
		}
		if c == ';' {
			p.state = StateAtNameStart
			return value, nil
		}
		if !p.discard {
			value = append(value, c)
		}
	}
}

func (p *Parser) readBinaryValue() ([]byte, error) {
	size, err := p.readBinarySize()
	if err != nil {
		return nil, err
	}
	if err := p.matchByte(':', UnexpectedEOFInNameSeparator, MissingNameSeparator); err != nil {
		return nil, err
	}
	p.state = StateReadingBinaryData
	value, err := p.readBinaryData(size)
	if err != nil {
		return nil, err
	}
	if err := p.matchByte(';', UnexpectedEOFInBinarySeparator, MissingBinarySeparator); err != nil {
		return nil, err
	}
	p.state = StateAtNameStart
	return value, nil
}

func (p *Parser) readBinarySize() (uint64, error) {
	var size uint64
	digits := 0
	for {
		c, err := p.read(UnexpectedEOFInSize)
		if err != nil {
			return 0, err
		}
		if c == ')' {
			break
		}
		if c < '0' || c > '9' {
			return 0, p.failConsumed(SizeMustBeDigits)
		}
		d := uint64(c - '0')
		if size > (math.MaxUint64-d)/10 {
			return 0, p.failConsumed(SizeOverflow)
		}
		size = size*10 + d
		digits++
	}
	if digits == 0 {
		return 0, p.failConsumed(SizeMustBeDigits)
	}
	if size > p.maxValueSize {
		return 0, p.failConsumed(SizeOverflow)
	}
	return size, nil
}

// readBinaryData counts exactly size bytes. Delimiters inside them are data.
func (p *Parser) readBinaryData(size uint64) ([]byte, error) {
	var value []byte
	if !p.discard {
		value = make([]byte, 0, min(size, 4096))
	}
	for i := uint64(0); i < size; i++ {
		c, err := p.read(UnexpectedEOFInBinaryValue)
		if err != nil {
			return nil, err
		}
		if !p.discard {
			value = append(value, c)
		}
	}
	return value, nil
}

// matchByte consumes want, failing with onEOF at end of input and with
// onMismatch on any other byte.
func (p *Parser) matchByte(want byte, onEOF, onMismatch ErrorKind) error {
	c, err := p.peek(onEOF)
	if err != nil {
		return err
	}
	if c != want {
		return p.fail(onMismatch)
	}
	return p.skip(onEOF)
}

func (p *Parser) peek(onEOF ErrorKind) (byte, error) {
	c, err := p.src.PeekByte()
	if err != nil {
		return 0, p.sourceError(err, onEOF)
	}
	return c, nil
}

func (p *Parser) read(onEOF ErrorKind) (byte, error) {
	c, err := p.src.ReadByte()
	if err != nil {
		return 0, p.sourceError(err, onEOF)
	}
	p.offset++
	return c, nil
}

// skip consumes a byte that was just peeked.
func (p *Parser) skip(onEOF ErrorKind) error {
	_, err := p.read(onEOF)
	return err
}

func (p *Parser) sourceError(err error, onEOF ErrorKind) error {
	if errors.Is(err, io.EOF) {
		return p.fail(onEOF)
	}
	return fmt.Errorf("dictparser: reading source at offset %d: %w", p.offset, err)
}

// fail reports a violation at the next unread byte, or at the end of input.
func (p *Parser) fail(kind ErrorKind) error {
	return &ParseError{Kind: kind, State: p.state, Offset: p.offset}
}

// failConsumed reports a violation at the byte that was just read.
func (p *Parser) failConsumed(kind ErrorKind) error {
	return &ParseError{Kind: kind, State: p.state, Offset: p.offset - 1}
}
