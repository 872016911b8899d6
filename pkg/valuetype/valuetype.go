package valuetype

import (
	"unicode"
	"unicode/utf8"
)

// Type represents the detected type of a property value
type Type string

const (
	TypeEmpty  Type = "empty"
	TypeText   Type = "text"
	TypeBinary Type = "binary"
)

// nonPrintableThreshold is the share of control bytes above which a value is
// considered binary.
const nonPrintableThreshold = 0.3

// Detect classifies a value as empty, text or binary.
func Detect(value []byte) Type {
	t, _ := DetectWithReason(value)
	return t
}

// DetectWithReason is like Detect but also returns why the type was chosen.
func DetectWithReason(value []byte) (Type, string) {
	if len(value) == 0 {
		return TypeEmpty, "zero bytes"
	}

	nonPrintable := 0
	for i := 0; i < len(value); {
		r, size := utf8.DecodeRune(value[i:])
		if r == utf8.RuneError && size == 1 {
			return TypeBinary, "invalid UTF-8 sequence"
		}
		// Null bytes are a definitive indicator of binary data
		if r == 0 {
			return TypeBinary, "null byte"
		}
		// Common whitespace and ESC (used by ANSI sequences) count as text
		if r != '\t' && r != '\n' && r != '\r' && r != 0x1B && !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			nonPrintable++
		}
		i += size
	}

	if float64(nonPrintable) > float64(len(value))*nonPrintableThreshold {
		return TypeBinary, "high proportion of non-printable characters"
	}
	return TypeText, "printable UTF-8"
}

// IsBinary reports whether value should not be shown as text.
func IsBinary(value []byte) bool {
	return Detect(value) == TypeBinary
}
