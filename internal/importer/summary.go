package importer

import (
	"strconv"
	"strings"
)

// Summary counts the outcome of one import run.
type Summary struct {
	AddedOrUpdated int `json:"added_or_updated"`
	Unchanged      int `json:"unchanged"`
	// Created is the subset of AddedOrUpdated that were new notes.
	Created int `json:"created"`
}

// Total is the number of cards seen.
func (s Summary) Total() int { return s.AddedOrUpdated + s.Unchanged }

// String renders the user-facing result line.
func (s Summary) String() string {
	if s.Total() == 0 {
		return "No notes found."
	}
	var parts []string
	if s.AddedOrUpdated > 0 {
		parts = append(parts, strconv.Itoa(s.AddedOrUpdated)+" notes added or updated")
	}
	if s.Unchanged > 0 {
		parts = append(parts, strconv.Itoa(s.Unchanged)+" notes were imported before and were not imported again")
	}
	return strings.Join(parts, ", ") + "."
}
