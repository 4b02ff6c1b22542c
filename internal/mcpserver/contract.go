package mcpserver

// MarkupContract describes the block markup roamdeck turns into cloze cards.
// LLM consumers should follow it when drafting blocks meant to become cards.
const MarkupContract = `# Roamdeck Block Markup

A block becomes a card when its text holds at least one deletion and its
body is not blank. Plain blocks are ignored.

## Deletions

| Markup | Stored as |
|---|---|
| ` + "`{answer}`" + ` | ` + "`{{c1::answer}}`" + `, numbered 1, 2, 3... in block order |
| ` + "`{answer::hint}`" + ` | ` + "`{{c1::answer::hint}}`" + ` |
| ` + "`{2:answer}`" + ` or ` + "`{c2:answer}`" + ` | ` + "`{{c2::answer}}`" + `, explicit number |
| ` + "`{{c3::answer}}`" + ` | kept as deletion 3 |

Explicit numbers do not advance the automatic counter. Empty braces ` + "`{}`" + `
are literal text. A brace that is never closed is literal text up to the end
of the block.

## Inert spans

Inline code, fenced code and ` + "`$$math$$`" + ` are never parsed for deletions.
They may appear inside a deletion. Code is stored in ` + "`<code>`" + ` and math as
` + "`\\(...\\)`" + `.

## Directives

` + "`{{[[TODO]]}}`" + ` and other double-brace directives are dropped by default.
The server may be configured to keep them as text.

## Source

A child block of the form ` + "`source:: where this came from`" + ` fills the
source field. A ` + "`source::`" + ` block at the top of a page applies to every card
on that page unless a closer one overrides it. The source field always ends
with a sentence naming the page.

## Example

` + "```" + `
- The {mitochondria} is the {powerhouse::role} of the cell
    - source:: Biology 101, ch. 3
` + "```" + `

produces the text ` + "`The {{c1::mitochondria}} is the {{c2::powerhouse::role}} of the cell`" + `.
`
