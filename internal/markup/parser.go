package markup

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	fence   = "```"
	tick    = '`'
	dollars = "$$"
	hintSep = "::"
)

var (
	explicitRe = regexp.MustCompile(`^c?([0-9]+):`)
	nativeRe   = regexp.MustCompile(`^c([0-9]+)::`)
)

// Parse splits raw block text into parts. It never fails: an unterminated
// delimiter and everything after it is kept as literal text.
func Parse(raw string) []Part {
	p := &parser{}
	return p.parse(raw, false)
}

type parser struct {
	// last auto-assigned cloze number in this block
	auto int
}

func (p *parser) parse(s string, inCloze bool) []Part {
	var out []Part
	var text strings.Builder

	flush := func() {
		if text.Len() > 0 {
			out = append(out, Text{Content: text.String()})
			text.Reset()
		}
	}

	for i := 0; i < len(s); {
		if end, ok := inertEnd(s, i); ok {
			flush()
			out = append(out, inert(s, i, end))
			i = end
			continue
		} else if end < 0 {
			text.WriteString(s[i:])
			break
		}

		if s[i] == '{' && !inCloze {
			end := matchBrace(s, i)
			if end < 0 {
				text.WriteString(s[i:])
				break
			}
			if part, ok := p.brace(s[i+1 : end]); ok {
				flush()
				out = append(out, part)
			} else {
				text.WriteString(s[i : end+1])
			}
			i = end + 1
			continue
		}

		if inCloze && strings.HasPrefix(s[i:], "{{") {
			if end, ok := curlyEnd(s, i); ok {
				flush()
				out = append(out, CurlyCommand{Content: s[i+2 : end-1]})
				i = end + 1
				continue
			}
		}

		text.WriteByte(s[i])
		i++
	}
	flush()

	return out
}

// inertEnd reports whether an inert span (code or math) opens at i. When it
// does, end is the index just past its closer. When the opener is never
// closed, end is -1. Otherwise end is 0 and ok is false.
func inertEnd(s string, i int) (end int, ok bool) {
	var open, closer string
	switch {
	case strings.HasPrefix(s[i:], fence):
		open, closer = fence, fence
	case s[i] == tick:
		open, closer = string(tick), string(tick)
	case strings.HasPrefix(s[i:], dollars):
		open, closer = dollars, dollars
	default:
		return 0, false
	}
	start := i + len(open)
	idx := strings.Index(s[start:], closer)
	if idx < 0 {
		return -1, false
	}
	return start + idx + len(closer), true
}

// inert builds the part for the inert span s[i:end].
func inert(s string, i, end int) Part {
	switch {
	case strings.HasPrefix(s[i:], fence):
		return CodeBlock{Content: s[i+len(fence) : end-len(fence)]}
	case s[i] == tick:
		return CodeInline{Content: s[i+1 : end-1]}
	default:
		return Math{Content: s[i+len(dollars) : end-len(dollars)]}
	}
}

// matchBrace returns the index of the brace closing the one at open, or -1.
// Braces inside code and math spans do not count.
func matchBrace(s string, open int) int {
	depth := 0
	for j := open; j < len(s); {
		if end, ok := inertEnd(s, j); ok {
			j = end
			continue
		}
		switch s[j] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return j
			}
		}
		j++
	}
	return -1
}

// curlyEnd reports whether a non-blank {{...}} directive opens at i and
// returns the index of its last closing brace.
func curlyEnd(s string, i int) (int, bool) {
	end := matchBrace(s, i)
	if end < 0 || matchBrace(s, i+1) != end-1 {
		return 0, false
	}
	if strings.TrimSpace(s[i+2:end-1]) == "" {
		return 0, false
	}
	return end, true
}

// brace interprets the content of a matched {...} span.
func (p *parser) brace(content string) (Part, bool) {
	if strings.TrimSpace(content) == "" {
		return nil, false
	}

	// {{...}} is a directive, unless it is already a native c<N>:: cloze.
	if len(content) >= 2 && content[0] == '{' && matchBrace(content, 0) == len(content)-1 {
		inner := content[1 : len(content)-1]
		if m := nativeRe.FindStringSubmatch(inner); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				return p.cloze(inner[len(m[0]):], n, true), true
			}
		}
		return CurlyCommand{Content: inner}, true
	}

	if n, rest, ok := explicitNumber(content); ok {
		return p.cloze(rest, n, true), true
	}
	p.auto++
	return p.cloze(content, p.auto, false), true
}

func (p *parser) cloze(content string, number int, explicit bool) Cloze {
	answer, hint := splitHint(content)
	return Cloze{
		Parts:    p.parse(answer, true),
		Hint:     hint,
		Number:   number,
		Explicit: explicit,
	}
}

// explicitNumber recognizes a leading "2:" or "c2:" cloze number. A number
// followed by "::" is an answer with a hint, not an explicit number.
func explicitNumber(content string) (int, string, bool) {
	m := explicitRe.FindStringSubmatch(content)
	if m == nil {
		return 0, content, false
	}
	rest := content[len(m[0]):]
	if strings.HasPrefix(rest, ":") {
		return 0, content, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 0, content, false
	}
	return n, rest, true
}

// splitHint cuts content at the first "::" that is outside code, math and
// nested braces.
func splitHint(content string) (answer, hint string) {
	for i := 0; i < len(content); {
		if end, ok := inertEnd(content, i); ok {
			i = end
			continue
		}
		if content[i] == '{' {
			if end := matchBrace(content, i); end > 0 {
				i = end + 1
				continue
			}
		}
		if strings.HasPrefix(content[i:], hintSep) {
			return content[:i], content[i+len(hintSep):]
		}
		i++
	}
	return content, ""
}
