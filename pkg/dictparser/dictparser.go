package dictparser

import "fmt"

// Property is a single name/value pair of a dictionary.
type Property struct {
	Name  []byte
	Value []byte
}

func (p Property) String() string {
	return fmt.Sprintf("%q=%q", p.Name, p.Value)
}

// State is the position of a Parser within the dictionary grammar.
type State int

const (
	StateStart State = iota
	StateAtOpenCurly
	StateAtNameStart
	StateReadingName
	StateReadingSimpleValue
	StateReadingBinarySize
	StateReadingBinaryData
	StateEnd
)

var stateNames = [...]string{
	StateStart:              "start",
	StateAtOpenCurly:        "at-open-curly",
	StateAtNameStart:        "at-name-start",
	StateReadingName:        "reading-name",
	StateReadingSimpleValue: "reading-simple-value",
	StateReadingBinarySize:  "reading-binary-size",
	StateReadingBinaryData:  "reading-binary-data",
	StateEnd:                "end",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}
