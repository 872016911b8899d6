package dictparser

import "fmt"

// ErrorKind identifies which part of the grammar was violated.
type ErrorKind int

const (
	MissingOpenBrace ErrorKind = iota + 1
	MissingClosingBrace
	EmptyName
	UnexpectedEOFInName
	UnexpectedEOFInSimpleValue
	SizeMustBeDigits
	UnexpectedEOFInSize
	MissingNameSeparator
	UnexpectedEOFInNameSeparator
	UnexpectedEOFInBinaryValue
	MissingBinarySeparator
	UnexpectedEOFInBinarySeparator
	SizeOverflow
)

var errorKinds = map[ErrorKind]struct {
	name   string
	reason string
}{
	MissingOpenBrace:               {"MissingOpenBrace", "missing initial '{'"},
	MissingClosingBrace:            {"MissingClosingBrace", "missing dict separator '}'"},
	EmptyName:                      {"EmptyName", "missing name"},
	UnexpectedEOFInName:            {"UnexpectedEOFInName", "unexpected EOF when reading property name"},
	UnexpectedEOFInSimpleValue:     {"UnexpectedEOFInSimpleValue", "unexpected EOF when reading simple property value"},
	SizeMustBeDigits:               {"SizeMustBeDigits", "size must be digits"},
	UnexpectedEOFInSize:            {"UnexpectedEOFInSize", "unexpected EOF when reading binary size"},
	MissingNameSeparator:           {"MissingNameSeparator", "missing name separator ':'"},
	UnexpectedEOFInNameSeparator:   {"UnexpectedEOFInNameSeparator", "unexpected EOF when reading binary value separator ':'"},
	UnexpectedEOFInBinaryValue:     {"UnexpectedEOFInBinaryValue", "unexpected EOF when reading binary property value"},
	MissingBinarySeparator:         {"MissingBinarySeparator", "missing binary property separator ';'"},
	UnexpectedEOFInBinarySeparator: {"UnexpectedEOFInBinarySeparator", "unexpected EOF when reading binary property separator ';'"},
	SizeOverflow:                   {"SizeOverflow", "binary size out of range"},
}

// Reason returns the fixed human-readable message for the kind.
func (k ErrorKind) Reason() string {
	if e, ok := errorKinds[k]; ok {
		return e.reason
	}
	return fmt.Sprintf("unknown parse error %d", int(k))
}

func (k ErrorKind) String() string {
	if e, ok := errorKinds[k]; ok {
		return e.name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// ParseError reports a grammar violation. Error returns exactly the reason of
// Kind, so callers may compare messages verbatim.
type ParseError struct {
	Kind  ErrorKind
	State State // state in which the violation was detected

	// Offset is the zero-based position of the byte that violated the
	// grammar. When the input ended early it is the length of the input.
	Offset int64
}

func (e *ParseError) Error() string {
	return e.Kind.Reason()
}

// Is reports whether target is a *ParseError of the same kind. This lets the
// Err* sentinels match errors carrying any state and offset.
func (e *ParseError) Is(target error) bool {
	t, ok := target.(*ParseError)
	return ok && t.Kind == e.Kind
}

// Sentinels for use with errors.Is.
var (
	ErrMissingOpenBrace               = &ParseError{Kind: MissingOpenBrace}
	ErrMissingClosingBrace            = &ParseError{Kind: MissingClosingBrace}
	ErrEmptyName                      = &ParseError{Kind: EmptyName}
	ErrUnexpectedEOFInName            = &ParseError{Kind: UnexpectedEOFInName}
	ErrUnexpectedEOFInSimpleValue     = &ParseError{Kind: UnexpectedEOFInSimpleValue}
	ErrSizeMustBeDigits               = &ParseError{Kind: SizeMustBeDigits}
	ErrUnexpectedEOFInSize            = &ParseError{Kind: UnexpectedEOFInSize}
	ErrMissingNameSeparator           = &ParseError{Kind: MissingNameSeparator}
	ErrUnexpectedEOFInNameSeparator   = &ParseError{Kind: UnexpectedEOFInNameSeparator}
	ErrUnexpectedEOFInBinaryValue     = &ParseError{Kind: UnexpectedEOFInBinaryValue}
	ErrMissingBinarySeparator         = &ParseError{Kind: MissingBinarySeparator}
	ErrUnexpectedEOFInBinarySeparator = &ParseError{Kind: UnexpectedEOFInBinarySeparator}
	ErrSizeOverflow                   = &ParseError{Kind: SizeOverflow}
)
