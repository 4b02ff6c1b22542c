package reconcile

import "github.com/starford/roamdeck/internal/models"

// FieldMap names the note field each card field is written to. An empty name
// means the card field is not written.
type FieldMap struct {
	Text         string
	RoamText     string
	Source       string
	Graph        string
	PageTitle    string
	PageID       string
	BlockID      string
	BlockCreated string
	BlockUpdated string
}

type fieldValue struct {
	name  string
	value string
}

// tracked lists every mapped field except Text, which has its own rule.
func (m FieldMap) tracked(c models.Card) []fieldValue {
	all := []fieldValue{
		{m.RoamText, c.RoamText},
		{m.Source, c.Source},
		{m.Graph, c.Graph},
		{m.PageTitle, c.PageTitle},
		{m.PageID, c.PageID},
		{m.BlockID, c.BlockID},
		{m.BlockCreated, c.BlockCreated},
		{m.BlockUpdated, c.BlockUpdated},
	}
	out := all[:0]
	for _, fv := range all {
		if fv.name != "" {
			out = append(out, fv)
		}
	}
	return out
}

// Values returns the note fields for a new note.
func (m FieldMap) Values(c models.Card) map[string]string {
	out := make(map[string]string, 9)
	if m.Text != "" {
		out[m.Text] = c.Text
	}
	for _, fv := range m.tracked(c) {
		out[fv.name] = fv.value
	}
	return out
}

// Names returns the mapped field names.
func (m FieldMap) Names() []string {
	var names []string
	for _, n := range []string{
		m.Text, m.RoamText, m.Source, m.Graph, m.PageTitle,
		m.PageID, m.BlockID, m.BlockCreated, m.BlockUpdated,
	} {
		if n != "" {
			names = append(names, n)
		}
	}
	return names
}

// Card reads a card back from stored note fields.
func (m FieldMap) Card(n *models.Note) models.Card {
	get := func(name string) string {
		if name == "" {
			return ""
		}
		return n.Field(name)
	}
	return models.Card{
		Text:         get(m.Text),
		RoamText:     get(m.RoamText),
		Source:       get(m.Source),
		Graph:        get(m.Graph),
		PageTitle:    get(m.PageTitle),
		PageID:       get(m.PageID),
		BlockID:      get(m.BlockID),
		BlockCreated: get(m.BlockCreated),
		BlockUpdated: get(m.BlockUpdated),
	}
}
