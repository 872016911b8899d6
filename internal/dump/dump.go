// Package dump formats parsed dictionary properties for display.
package dump

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"dictparser/pkg/dictparser"
	"dictparser/pkg/markdown"
	"dictparser/pkg/valuetype"
)

// Format selects the output representation.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatHTML Format = "html"
)

// ParseFormat validates a format name given on the command line.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatText, FormatJSON, FormatHTML:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q (want text, json or html)", s)
}

// Options tune the text format.
type Options struct {
	// Raw writes values unmodified instead of quoting them.
	Raw bool

	// HexLimit caps the number of bytes shown for binary values. Zero means
	// DefaultHexLimit.
	HexLimit int
}

const DefaultHexLimit = 32

// Property is the JSON shape of a dictionary property.
type Property struct {
	Name         string         `json:"name"`
	NameEncoding string         `json:"name_encoding,omitempty"`
	Value        string         `json:"value"`
	Encoding     string         `json:"encoding,omitempty"`
	Type         valuetype.Type `json:"type"`
	Size         int            `json:"size"`
}

// NewProperty converts p to its JSON shape. Binary values and names that are
// not valid UTF-8 are base64 encoded.
func NewProperty(p dictparser.Property) Property {
	out := Property{
		Name: string(p.Name),
		Type: valuetype.Detect(p.Value),
		Size: len(p.Value),
	}
	if !utf8.Valid(p.Name) {
		out.Name = base64.StdEncoding.EncodeToString(p.Name)
		out.NameEncoding = "base64"
	}
	if out.Type == valuetype.TypeBinary {
		out.Value = base64.StdEncoding.EncodeToString(p.Value)
		out.Encoding = "base64"
	} else {
		out.Value = string(p.Value)
	}
	return out
}

// NewProperties converts a slice of properties, keeping their order. The
// result is never nil so it encodes as an empty JSON array.
func NewProperties(props []dictparser.Property) []Property {
	out := make([]Property, 0, len(props))
	for _, p := range props {
		out = append(out, NewProperty(p))
	}
	return out
}

// Write formats props to w.
func Write(w io.Writer, props []dictparser.Property, format Format, opts Options) error {
	switch format {
	case FormatText:
		return writeText(w, props, opts)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(NewProperties(props))
	case FormatHTML:
		_, err := io.WriteString(w, HTML(props, opts))
		return err
	}
	return fmt.Errorf("unknown format %q", format)
}

// HTML renders props as a sanitized HTML table.
func HTML(props []dictparser.Property, opts Options) string {
	rows := make([][]string, 0, len(props))
	for _, p := range props {
		t := valuetype.Detect(p.Value)
		rows = append(rows, []string{
			displayName(p.Name),
			displayValue(p.Value, t, opts),
			string(t),
			strconv.Itoa(len(p.Value)),
		})
	}
	return markdown.RenderToHTML(markdown.Table([]string{"name", "value", "type", "size"}, rows))
}

func writeText(w io.Writer, props []dictparser.Property, opts Options) error {
	for _, p := range props {
		var err error
		if opts.Raw {
			_, err = fmt.Fprintf(w, "%s=%s\n", p.Name, p.Value)
		} else {
			_, err = fmt.Fprintf(w, "%s = %s\n", displayName(p.Name), displayValue(p.Value, valuetype.Detect(p.Value), opts))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// displayName quotes names that would not read back unambiguously as the
// left-hand side of "name = value" on a single line.
func displayName(name []byte) string {
	s := string(name)
	if !strconv.CanBackquote(s) || strings.ContainsAny(s, " \t=\"") {
		return strconv.Quote(s)
	}
	return s
}

func displayValue(value []byte, t valuetype.Type, opts Options) string {
	if t != valuetype.TypeBinary {
		return strconv.Quote(string(value))
	}
	limit := opts.HexLimit
	if limit <= 0 {
		limit = DefaultHexLimit
	}
	shown := value
	suffix := ""
	if len(shown) > limit {
		shown = shown[:limit]
		suffix = " ..."
	}
	return fmt.Sprintf("<%d bytes binary: %s%s>", len(value), hex.EncodeToString(shown), suffix)
}
