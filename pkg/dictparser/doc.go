// Package dictparser implements a streaming parser for NeXT/OpenStep-style
// textual dictionaries.
//
// # Dictionary Format
//
// A dictionary is a brace-delimited sequence of properties. Each property is
// either simple or binary:
//
//	{name:value;name(length):rawbytes;}
//
// # Grammar
//
//	dict         := '{' property* '}'
//	property     := name (':' simple_value ';' | '(' digits ')' ':' raw_bytes ';')
//	name         := any byte except '(' and ':'    (at least one byte)
//	simple_value := any byte except ';'
//	digits       := '0'..'9', at least one
//	raw_bytes    := exactly <digits> arbitrary bytes
//
// # Simple Properties
//
// A simple value ends at the first ';' and therefore can not contain one.
//
//	{greeting:hello world;}
//
// # Binary Properties
//
// A binary property carries an explicit byte count. The value is read by
// counting exactly that many bytes, so it may contain ';', ':', '}', NUL bytes
// or any other data without escaping:
//
//	{blob(5):a;b:c;}
//
// yields the property ("blob", "a;b:c").
//
// # Usage
//
//	p := dictparser.NewFromReader(r)
//	for {
//		prop, err := p.Next()
//		if err == io.EOF {
//			break
//		}
//		if err != nil {
//			return err
//		}
//		fmt.Printf("%s = %q\n", prop.Name, prop.Value)
//	}
//
// Names and values are opaque byte slices. Repeated names are returned as
// independent properties in textual order.
//
// # Errors
//
// Grammar violations are reported as *ParseError. The message of a ParseError
// is one of a fixed set of reasons (see ErrorKind) and never contains a line
// or column. Parsing stops at the first violation; there is no recovery.
//
// A Parser is not safe for concurrent use.
package dictparser
