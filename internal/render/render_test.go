package render

import (
	"testing"

	"github.com/starford/roamdeck/internal/markup"
)

func TestEscape(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{`<a href="x">'&'</a>`, "&lt;a href=&quot;x&quot;&gt;&#x27;&amp;&#x27;&lt;/a&gt;"},
		{"a b", "a b"},
		{"a  b", "a &nbsp;b"},
		{"a    b  ", "a &nbsp;&nbsp;&nbsp;b &nbsp;"},
	}
	for _, tt := range tests {
		if got := Escape(tt.in); got != tt.want {
			t.Errorf("Escape(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormat_ClozeWithSourceCommand(t *testing.T) {
	f := NewFormatter("", CurlyDrop)
	parts := append(markup.Parse("{cloze} text"), markup.ColonCommand{Command: "source", Content: "reference"})

	r := f.Format(parts, "title")
	if r.Body != "{{c1::cloze}} text" {
		t.Errorf("body = %q", r.Body)
	}
	if want := "reference<br>Note from Roam page &#x27;title&#x27;."; r.Source != want {
		t.Errorf("source = %q, want %q", r.Source, want)
	}
	if !r.IsCard() {
		t.Error("expected a card")
	}
}

func TestFormat_AttributionWithoutSourceCommand(t *testing.T) {
	f := NewFormatter("Roam", CurlyDrop)
	r := f.Format(markup.Parse("{a}"), "title")
	if want := "Note from Roam page &#x27;title&#x27;."; r.Source != want {
		t.Errorf("source = %q, want %q", r.Source, want)
	}
}

func TestFormat_SourceWithoutPageTitle(t *testing.T) {
	f := NewFormatter("Roam", CurlyDrop)
	parts := []markup.Part{markup.Text{Content: "x"}, markup.ColonCommand{Command: "source", Content: "a & b"}}
	r := f.Format(parts, "")
	if r.Source != "a &amp; b" {
		t.Errorf("source = %q", r.Source)
	}

	r = f.Format([]markup.Part{markup.Text{Content: "x"}}, "")
	if r.Source != "" {
		t.Errorf("source = %q, want empty", r.Source)
	}
}

func TestFormat_HTMLEscaping(t *testing.T) {
	f := NewFormatter("Roam", CurlyDrop)
	parts := append(markup.Parse("{<cloze> } &  text "), markup.ColonCommand{Command: "source", Content: "source  &"})

	r := f.Format(parts, " &  title ")
	if want := "{{c1::&lt;cloze&gt; }} &amp; &nbsp;text "; r.Body != want {
		t.Errorf("body = %q, want %q", r.Body, want)
	}
	if want := "source &nbsp;&amp;<br>Note from Roam page &#x27; &amp; &nbsp;title &#x27;."; r.Source != want {
		t.Errorf("source = %q, want %q", r.Source, want)
	}
}

func TestFormat_CodeAndMath(t *testing.T) {
	f := NewFormatter("Roam", CurlyDrop)

	r := f.Format(markup.Parse("`code` and {`code` in cloze}"), "")
	if want := "<code>code</code> and {{c1::<code>code</code> in cloze}}"; r.Body != want {
		t.Errorf("body = %q, want %q", r.Body, want)
	}

	r = f.Format(markup.Parse(`$$\textrm{outside cloze}$$ and {inside $$\textrm{cloze}$$}`), "")
	if want := `\(\textrm{outside cloze}\) and {{c1::inside \(\textrm{cloze}\)}}`; r.Body != want {
		t.Errorf("body = %q, want %q", r.Body, want)
	}

	r = f.Format(markup.Parse("{$$x^{a^{b}}$$}"), "")
	if want := `{{c1::\(x^{a^{b} }\)}}`; r.Body != want {
		t.Errorf("body = %q, want %q", r.Body, want)
	}
}

func TestFormat_CodeBlockOnlyIsNotACard(t *testing.T) {
	f := NewFormatter("Roam", CurlyDrop)
	r := f.Format(markup.Parse("```{not cloze}```"), "title")
	if r.Body != "<code>{not cloze}</code>" {
		t.Errorf("body = %q", r.Body)
	}
	if r.IsCard() {
		t.Error("code-only block must not become a card")
	}
}

func TestFormat_HintAndExplicitNumber(t *testing.T) {
	f := NewFormatter("Roam", CurlyDrop)
	r := f.Format(markup.Parse("{a::<b>} {3:c}"), "")
	if want := "{{c1::a::&lt;b&gt;}} {{c3::c}}"; r.Body != want {
		t.Errorf("body = %q, want %q", r.Body, want)
	}
	if r.Clozes != 2 {
		t.Errorf("clozes = %d, want 2", r.Clozes)
	}
}

func TestFormat_CurlyPolicy(t *testing.T) {
	parts := markup.Parse("{{[[TODO]]}} {task}")

	r := NewFormatter("Roam", CurlyDrop).Format(parts, "")
	if r.Body != " {{c1::task}}" {
		t.Errorf("drop body = %q", r.Body)
	}

	r = NewFormatter("Roam", CurlyKeep).Format(parts, "")
	if r.Body != "{{[[TODO]]}} {{c1::task}}" {
		t.Errorf("keep body = %q", r.Body)
	}
}

func TestFormat_CustomApp(t *testing.T) {
	f := NewFormatter("Logseq", CurlyDrop)
	if got := f.Attribution("p"); got != "Note from Logseq page &#x27;p&#x27;." {
		t.Errorf("attribution = %q", got)
	}
}

func TestFormat_CurlyCommandInsideCloze(t *testing.T) {
	parts := markup.Parse("{x {{[[TODO]]}} y}")

	r := NewFormatter("Roam", CurlyDrop).Format(parts, "")
	if want := "{{c1::x  y}}"; r.Body != want {
		t.Errorf("drop body = %q, want %q", r.Body, want)
	}

	r = NewFormatter("Roam", CurlyKeep).Format(parts, "")
	if want := "{{c1::x {{[[TODO]]} } y}}"; r.Body != want {
		t.Errorf("keep body = %q, want %q", r.Body, want)
	}
}

func TestFormat_ClosingBracesInsideClozeAreSplit(t *testing.T) {
	f := NewFormatter("Roam", CurlyDrop)
	tests := []struct {
		in, want string
	}{
		{"{a `}}` b}", "{{c1::a <code>} }</code> b}}"},
		{"{a ```x}}}``` b}", "{{c1::a <code>x} } }</code> b}}"},
		{"{a {b}}", "{{c1::a {b} }}"},
		{"{a {{b} c}}", "{{c1::a {{b} c} }}"},
		{"{a `}`}", "{{c1::a <code>}</code>}}"},
		{"{{a}}", ""},
	}
	for _, tt := range tests {
		if got := f.Format(markup.Parse(tt.in), "").Body; got != tt.want {
			t.Errorf("Format(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
