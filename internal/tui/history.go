package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/billmal071/libgenfic/internal/db"
)

type historyEntry struct {
	pos int
	h   *db.SearchHistory
}

func (e historyEntry) index() int          { return e.pos }
func (e historyEntry) heading() string     { return e.h.Query }
func (e historyEntry) FilterValue() string { return e.h.Query }

func (e historyEntry) details() []string {
	line := fmt.Sprintf("%d results", e.h.ResultCount)
	if f := e.h.Filters.String(); f != "" {
		line += " | " + f
	}
	return []string{line + " | " + e.h.CreatedAt.Format("2006-01-02 15:04")}
}

// PickHistory lets the user re-run a previous search; nil means cancelled
func PickHistory(history []*db.SearchHistory) (*db.SearchHistory, error) {
	if len(history) == 0 {
		return nil, ErrNothingToPick
	}
	items := make([]list.Item, len(history))
	for i, h := range history {
		items[i] = historyEntry{pos: i, h: h}
	}
	i, err := runPicker(newPicker(items, "Search History", 2, true, "↑/↓: navigate • enter: select • /: filter • q: cancel"))
	if err != nil || i < 0 {
		return nil, err
	}
	return history[i], nil
}
