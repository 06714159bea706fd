package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"

	"github.com/billmal071/libgenfic/internal/libgen"
)

type bookEntry struct {
	pos  int
	book *libgen.Book
}

func (b bookEntry) index() int          { return b.pos }
func (b bookEntry) heading() string     { return b.book.Title }
func (b bookEntry) FilterValue() string { return b.book.Title + " " + b.book.Author() }

func (b bookEntry) details() []string {
	parts := []string{b.book.Author()}
	if b.book.Series != "" {
		parts = append(parts, b.book.Series)
	}
	if b.book.Language != "" {
		parts = append(parts, b.book.Language)
	}
	return []string{strings.Join(parts, " | "), fileSummary(b.book)}
}

func fileSummary(book *libgen.Book) string {
	if !book.HasMirrors() {
		return "no mirrors"
	}
	m := book.Mirrors[0]
	s := strings.TrimSpace(strings.ToUpper(m.Format) + " " + m.Size + " " + m.Unit)
	if n := len(book.Mirrors); n > 1 {
		s += fmt.Sprintf(" | %d mirrors", n)
	}
	return s
}

func newBookPicker(books []*libgen.Book, title string) pickerModel {
	items := make([]list.Item, len(books))
	for i, b := range books {
		items[i] = bookEntry{pos: i, book: b}
	}
	return newPicker(items, title, 3, true, "↑/↓: navigate • enter: select • /: filter • q/esc: cancel")
}

// PickBook shows the results and returns the chosen book, or nil if cancelled
func PickBook(books []*libgen.Book, title string) (*libgen.Book, error) {
	if len(books) == 0 {
		return nil, ErrNothingToPick
	}
	i, err := runPicker(newBookPicker(books, title))
	if err != nil || i < 0 {
		return nil, err
	}
	return books[i], nil
}

// BookCard renders a book's metadata in a bordered box
func BookCard(book *libgen.Book, detailURL string) string {
	rows := [][2]string{
		{"Author", book.Author()},
		{"Series", book.Series},
		{"Language", book.Language},
		{"MD5", book.ContentID},
		{"Page", detailURL},
	}

	lines := []string{TitleStyle.UnsetMarginBottom().Render(book.Title)}
	for _, r := range rows {
		if r[1] == "" {
			continue
		}
		lines = append(lines, DimStyle.Render(fmt.Sprintf("%-9s", r[0]))+" "+r[1])
	}
	for _, m := range book.Mirrors {
		lines = append(lines, FormatStyle.Render(fmt.Sprintf("%-9s", strings.ToUpper(m.Format)))+" "+m.Size+" "+m.Unit+"  "+m.URL)
	}
	return BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
