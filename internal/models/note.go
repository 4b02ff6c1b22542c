// Package models defines the domain types for roamdeck.
package models

import "time"

// Page is one page of an outline export.
type Page struct {
	UID    string
	Title  string
	Blocks []Block
}

// Block is an outline node. Children are owned by their parent.
type Block struct {
	UID      string
	Text     string
	Children []Block
	Created  time.Time
	Updated  time.Time
}

// Card is the flashcard record produced for one block. Every field is a
// plain string; absence is the empty string.
type Card struct {
	Text         string `json:"text"`
	RoamText     string `json:"roam_text"`
	Source       string `json:"source"`
	Graph        string `json:"graph"`
	PageTitle    string `json:"page_title"`
	PageID       string `json:"page_id"`
	BlockID      string `json:"block_id"`
	BlockCreated string `json:"block_created"`
	BlockUpdated string `json:"block_updated"`
}

// NoteModel is a note type: a name and its ordered field names.
type NoteModel struct {
	ID     int64    `json:"id"`
	Name   string   `json:"name"`
	Fields []string `json:"fields"`
}

// Note is a stored note. Fields are keyed by field name.
type Note struct {
	ID        int64             `json:"id"`
	GUID      string            `json:"guid"`
	ModelID   int64             `json:"model_id"`
	DeckID    int64             `json:"deck_id"`
	Fields    map[string]string `json:"fields"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Field returns the stored value of name, or "" when the note has none.
func (n *Note) Field(name string) string {
	if n.Fields == nil {
		return ""
	}
	return n.Fields[name]
}

// ExportMetadata describes one export file in the inbox.
type ExportMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
