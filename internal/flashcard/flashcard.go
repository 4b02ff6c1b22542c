// Package flashcard walks exported pages and assembles one card per block
// that contains a cloze deletion.
package flashcard

import (
	"strconv"
	"time"

	"github.com/starford/roamdeck/internal/markup"
	"github.com/starford/roamdeck/internal/models"
	"github.com/starford/roamdeck/internal/render"
)

// Assemble maps a rendered block onto the card record. Text and RoamText
// start out identical; a later difference means the card was edited by hand.
func Assemble(r render.Rendered, block models.Block, page models.Page, graph string) models.Card {
	return models.Card{
		Text:         r.Body,
		RoamText:     r.Body,
		Source:       r.Source,
		Graph:        graph,
		PageTitle:    page.Title,
		PageID:       page.UID,
		BlockID:      block.UID,
		BlockCreated: Timestamp(block.Created),
		BlockUpdated: Timestamp(block.Updated),
	}
}

// Timestamp formats t as epoch milliseconds, or "" for the zero time.
func Timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return strconv.FormatInt(t.UnixMilli(), 10)
}

// Builder turns page trees into cards.
type Builder struct {
	formatter *render.Formatter
	graph     string
}

// NewBuilder creates a Builder for the named graph.
func NewBuilder(formatter *render.Formatter, graph string) *Builder {
	return &Builder{formatter: formatter, graph: graph}
}

// Cards returns the cards of every page, in document order.
func (b *Builder) Cards(pages []models.Page) []models.Card {
	var out []models.Card
	for _, p := range pages {
		out = append(out, b.PageCards(p)...)
	}
	return out
}

// PageCards returns the cards of one page. Top-level source blocks act as
// page attributes and are inherited by every block of the page. Other
// top-level "name:: value" blocks are ordinary blocks.
func (b *Builder) PageCards(page models.Page) []models.Card {
	attrs, blocks := pageAttributes(page.Blocks)
	var out []models.Card
	for _, blk := range blocks {
		out = b.walk(out, page, blk, attrs)
	}
	return out
}

// Block formats a single block with the commands that apply to it.
func (b *Builder) Block(block models.Block, cmds []markup.ColonCommand, pageTitle string) render.Rendered {
	parts := markup.Parse(block.Text)
	for _, c := range cmds {
		parts = append(parts, c)
	}
	return b.formatter.Format(parts, pageTitle)
}

func pageAttributes(blocks []models.Block) ([]markup.ColonCommand, []models.Block) {
	var attrs []markup.ColonCommand
	var rest []models.Block
	for _, blk := range blocks {
		if cmd, ok := markup.ParseCommand(blk.Text); ok && cmd.Command == markup.CommandSource {
			attrs = append(attrs, cmd)
			continue
		}
		rest = append(rest, blk)
	}
	return attrs, rest
}

func (b *Builder) walk(out []models.Card, page models.Page, block models.Block, inherited []markup.ColonCommand) []models.Card {
	own, children := markup.SplitCommands(block.Children)
	cmds := mergeCommands(inherited, own)

	if r := b.Block(block, cmds, page.Title); r.IsCard() {
		out = append(out, Assemble(r, block, page, b.graph))
	}
	for _, child := range children {
		out = b.walk(out, page, child, cmds)
	}
	return out
}

// mergeCommands lets a block's own commands override inherited ones with the
// same name. Own commands come first so they win in the formatter.
func mergeCommands(inherited, own []markup.ColonCommand) []markup.ColonCommand {
	if len(inherited) == 0 {
		return own
	}
	if len(own) == 0 {
		return inherited
	}
	seen := make(map[string]struct{}, len(own))
	merged := make([]markup.ColonCommand, 0, len(own)+len(inherited))
	for _, c := range own {
		seen[c.Command] = struct{}{}
		merged = append(merged, c)
	}
	for _, c := range inherited {
		if _, ok := seen[c.Command]; !ok {
			merged = append(merged, c)
		}
	}
	return merged
}
