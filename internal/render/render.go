// Package render turns parsed block parts into the HTML stored in note fields.
package render

import (
	"fmt"
	"strings"

	"github.com/starford/roamdeck/internal/markup"
)

// CurlyPolicy controls what happens to {{...}} directives.
type CurlyPolicy string

const (
	CurlyDrop CurlyPolicy = "drop"
	CurlyKeep CurlyPolicy = "keep"
)

// DefaultApp is the tool named in the source attribution sentence.
const DefaultApp = "Roam"

// Rendered is the formatted output for one block.
type Rendered struct {
	Body   string
	Source string
	Clozes int
}

// IsCard reports whether the block should become a flashcard: it needs a
// non-blank body with at least one deletion.
func (r Rendered) IsCard() bool {
	return r.Clozes > 0 && strings.TrimSpace(r.Body) != ""
}

// Formatter renders parts. It is stateless and safe for concurrent use.
type Formatter struct {
	app   string
	curly CurlyPolicy
}

// NewFormatter creates a Formatter. An empty app falls back to DefaultApp.
func NewFormatter(app string, curly CurlyPolicy) *Formatter {
	if app == "" {
		app = DefaultApp
	}
	if curly == "" {
		curly = CurlyDrop
	}
	return &Formatter{app: app, curly: curly}
}

// Format renders parts into a body and collects the source command, if any,
// into the source field together with the page attribution.
func (f *Formatter) Format(parts []markup.Part, pageTitle string) Rendered {
	var out Rendered
	var body strings.Builder
	source := ""
	hasSource := false

	for _, p := range parts {
		switch v := p.(type) {
		case markup.Cloze:
			out.Clozes++
			f.writeCloze(&body, v)
		case markup.ColonCommand:
			if v.Command == markup.CommandSource && !hasSource {
				source, hasSource = v.Content, true
			}
		default:
			f.writePart(&body, p)
		}
	}

	out.Body = body.String()
	out.Source = f.source(source, hasSource, pageTitle)
	return out
}

// Attribution is the sentence naming the page a note came from.
func (f *Formatter) Attribution(pageTitle string) string {
	return fmt.Sprintf("Note from %s page %s.", Escape(f.app), Escape("'"+pageTitle+"'"))
}

func (f *Formatter) source(content string, hasSource bool, pageTitle string) string {
	var lines []string
	if hasSource && content != "" {
		lines = append(lines, Escape(content))
	}
	if pageTitle != "" {
		lines = append(lines, f.Attribution(pageTitle))
	}
	return strings.Join(lines, "<br>")
}

func (f *Formatter) writeCloze(b *strings.Builder, c markup.Cloze) {
	var inner strings.Builder
	for _, p := range c.Parts {
		f.writePart(&inner, p)
	}
	if c.Hint != "" {
		inner.WriteString("::")
		inner.WriteString(Escape(c.Hint))
	}
	fmt.Fprintf(b, "{{c%d::%s}}", c.Number, guardCloze(inner.String()))
}

// guardCloze keeps a deletion's content from closing it early: no "}}" may
// appear inside, and the content may not end in "}".
func guardCloze(s string) string {
	for strings.Contains(s, "}}") {
		s = strings.ReplaceAll(s, "}}", "} }")
	}
	if strings.HasSuffix(s, "}") {
		s += " "
	}
	return s
}

func (f *Formatter) writePart(b *strings.Builder, p markup.Part) {
	switch v := p.(type) {
	case markup.Text:
		b.WriteString(Escape(v.Content))
	case markup.Math:
		b.WriteString(`\(`)
		b.WriteString(v.Content)
		b.WriteString(`\)`)
	case markup.CodeBlock:
		writeCode(b, v.Content)
	case markup.CodeInline:
		writeCode(b, v.Content)
	case markup.CurlyCommand:
		if f.curly == CurlyKeep {
			b.WriteString(Escape("{{" + v.Content + "}}"))
		}
	}
}

func writeCode(b *strings.Builder, content string) {
	b.WriteString("<code>")
	b.WriteString(Escape(content))
	b.WriteString("</code>")
}
