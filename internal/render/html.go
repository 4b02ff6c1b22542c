package render

import "strings"

const nbsp = "&nbsp;"

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
)

// Escape makes s safe to embed in a note field. Inside a run of spaces,
// every space after the first becomes a non-breaking space.
func Escape(s string) string {
	s = htmlEscaper.Replace(s)
	if !strings.Contains(s, "  ") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 16)
	run := 0
	for i := 0; i < len(s); i++ {
		if s[i] != ' ' {
			run = 0
			b.WriteByte(s[i])
			continue
		}
		run++
		if run == 1 {
			b.WriteByte(' ')
		} else {
			b.WriteString(nbsp)
		}
	}
	return b.String()
}
