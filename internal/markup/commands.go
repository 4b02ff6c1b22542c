package markup

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/starford/roamdeck/internal/models"
)

// CommandSource names the colon command that fills the source field.
const CommandSource = "source"

var commandRe = regexp.MustCompile(`(?s)^([A-Za-z][A-Za-z0-9_-]*)::\s*(.*)$`)

// ParseCommand reports whether the whole of raw is a "name:: content" command.
func ParseCommand(raw string) (ColonCommand, bool) {
	m := commandRe.FindStringSubmatch(raw)
	if m == nil {
		return ColonCommand{}, false
	}
	return ColonCommand{
		Command: strings.ToLower(m[1]),
		Content: strings.TrimRightFunc(m[2], unicode.IsSpace),
	}, true
}

// SplitCommands separates command blocks from ordinary blocks, keeping the
// order of each group. Command blocks are consumed: their own children are
// not visited.
func SplitCommands(blocks []models.Block) ([]ColonCommand, []models.Block) {
	var cmds []ColonCommand
	var rest []models.Block
	for _, b := range blocks {
		if cmd, ok := ParseCommand(b.Text); ok {
			cmds = append(cmds, cmd)
			continue
		}
		rest = append(rest, b)
	}
	return cmds, rest
}
