// Package markup parses the raw text of an outline block into typed parts:
// literal text, cloze deletions, math, code, and block commands.
package markup

// Part is one typed fragment of a parsed block.
type Part interface {
	part()
}

// Text is literal content. It is escaped when rendered.
type Text struct {
	Content string
}

// Cloze is a deletion. Parts never contain another Cloze.
type Cloze struct {
	Parts []Part
	Hint  string
	// Number is the resolved cloze number. Explicit reports whether it was
	// written in the source ({2:text}) rather than assigned in order.
	Number   int
	Explicit bool
}

// Math is a LaTeX payload without its $$ delimiters.
type Math struct {
	Content string
}

// CodeBlock is the verbatim payload of a ``` fence.
type CodeBlock struct {
	Content string
}

// CodeInline is the verbatim payload of a `code` span.
type CodeInline struct {
	Content string
}

// ColonCommand is a child block of the form "name:: content".
type ColonCommand struct {
	Command string
	Content string
}

// CurlyCommand is a {{...}} directive such as {{[[TODO]]}}.
type CurlyCommand struct {
	Content string
}

func (Text) part()         {}
func (Cloze) part()        {}
func (Math) part()         {}
func (CodeBlock) part()    {}
func (CodeInline) part()   {}
func (ColonCommand) part() {}
func (CurlyCommand) part() {}
