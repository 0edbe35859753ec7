package bytecode

import "fmt"

// Span is the source range an instruction was generated from.
type Span struct {
	Start  int `json:"start"`  // byte offset, inclusive
	End    int `json:"end"`    // byte offset, exclusive
	Line   int `json:"line"`   // 1-based line of Start
	Column int `json:"column"` // 1-based column of Start
}

// String returns a formatted string representation of the location.
func (s Span) String() string {
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// IsZero returns true if the span has not been set.
func (s Span) IsZero() bool {
	return s == Span{}
}

// SourceMap holds one span per instruction, indexed by program counter.
type SourceMap []Span

// At returns the span for pc, if recorded.
func (m SourceMap) At(pc int) (Span, bool) {
	if pc < 0 || pc >= len(m) || m[pc].IsZero() {
		return Span{}, false
	}
	return m[pc], true
}
