package dump

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"dictparser/pkg/dictparser"
	"dictparser/pkg/valuetype"
)

func sampleProperties(t *testing.T) []dictparser.Property {
	t.Helper()
	props, err := dictparser.Parse(strings.NewReader("{s1:hello world;b1(4):\x00\x01;\xff;empty:;}"))
	require.NoError(t, err)
	require.Len(t, props, 3)
	return props
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"text", "json", "html"} {
		f, err := ParseFormat(name)
		require.NoError(t, err)
		require.Equal(t, Format(name), f)
	}

	_, err := ParseFormat("yaml")
	require.Error(t, err)
	require.Contains(t, err.Error(), "yaml")
}

func TestWrite_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleProperties(t), FormatText, Options{}))

	want := "s1 = \"hello world\"\n" +
		"b1 = <4 bytes binary: 00013bff>\n" +
		"empty = \"\"\n"
	require.Equal(t, want, buf.String())
}

func TestWrite_TextRaw(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleProperties(t), FormatText, Options{Raw: true}))

	require.Equal(t, "s1=hello world\nb1=\x00\x01;\xff\nempty=\n", buf.String())
}

func TestWrite_TextHexLimit(t *testing.T) {
	props := []dictparser.Property{{Name: []byte("b"), Value: []byte{0, 1, 2, 3, 4, 5}}}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, props, FormatText, Options{HexLimit: 2}))
	require.Equal(t, "b = <6 bytes binary: 0001 ...>\n", buf.String())
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleProperties(t), FormatJSON, Options{}))

	var got []Property
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Equal(t, []Property{
		{Name: "s1", Value: "hello world", Type: valuetype.TypeText, Size: 11},
		{Name: "b1", Value: "AAE7/w==", Encoding: "base64", Type: valuetype.TypeBinary, Size: 4},
		{Name: "empty", Value: "", Type: valuetype.TypeEmpty, Size: 0},
	}, got)
}

func TestWrite_JSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, nil, FormatJSON, Options{}))
	require.Equal(t, "[]\n", buf.String())
}

func TestNewProperty_BinaryName(t *testing.T) {
	p := NewProperty(dictparser.Property{Name: []byte{0xff, 0xfe}, Value: []byte("v")})
	require.Equal(t, "base64", p.NameEncoding)
	require.Equal(t, "//4=", p.Name)
	require.Equal(t, "v", p.Value)
}

func TestWrite_HTML(t *testing.T) {
	props := append(sampleProperties(t), dictparser.Property{
		Name:  []byte("evil"),
		Value: []byte("<script>alert(1)</script>"),
	})

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, props, FormatHTML, Options{}))

	out := buf.String()
	require.Contains(t, out, "<table>")
	require.Contains(t, out, "hello world")
	require.Contains(t, out, "4 bytes binary")
	require.NotContains(t, out, "<script>")
}

func TestWrite_UnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, nil, Format("xml"), Options{})
	require.Error(t, err)
}

func TestWrite_TextQuotesAmbiguousNames(t *testing.T) {
	props, err := dictparser.Parse(strings.NewReader("{a = \"x\"\nb:v;plain:1;}"))
	require.NoError(t, err)
	require.Len(t, props, 2)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, props, FormatText, Options{}))

	require.Equal(t, "\"a = \\\"x\\\"\\nb\" = \"v\"\nplain = \"1\"\n", buf.String())
	require.Len(t, strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n"), 2)
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "greeting", want: "greeting"},
		{name: "unicode", input: "grüße", want: "grüße"},
		{name: "space", input: "two words", want: `"two words"`},
		{name: "tab", input: "a\tb", want: `"a\tb"`},
		{name: "equals", input: "k=v", want: `"k=v"`},
		{name: "double quote", input: `"q"`, want: `"\"q\""`},
		{name: "newline", input: "a\nb", want: `"a\nb"`},
		{name: "invalid utf-8", input: "\xff\xfe", want: `"\xff\xfe"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, displayName([]byte(tt.input)))
		})
	}
}

func TestWrite_HTMLKeepsInvalidUTF8Names(t *testing.T) {
	props := []dictparser.Property{{Name: []byte{0xff, 'n'}, Value: []byte("v")}}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, props, FormatHTML, Options{}))

	out := buf.String()
	require.Contains(t, out, `\xffn`)
	require.NotContains(t, out, "\uFFFD")
}
