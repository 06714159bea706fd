package db

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"
)

// SearchHistory represents a saved search query
type SearchHistory struct {
	ID          int64
	Query       string
	ResultCount int
	Filters     SearchFilters
	CreatedAt   time.Time
}

// SearchFilters stores the filters used in a search
type SearchFilters struct {
	Criteria string `json:"criteria,omitempty"`
	Language string `json:"language,omitempty"`
	Format   string `json:"format,omitempty"`
	Mirror   string `json:"mirror,omitempty"`
}

// String renders the non-empty filters as key=value pairs
func (f SearchFilters) String() string {
	var parts []string
	for _, kv := range [][2]string{
		{"criteria", f.Criteria},
		{"language", f.Language},
		{"format", f.Format},
		{"mirror", f.Mirror},
	} {
		if kv[1] != "" {
			parts = append(parts, kv[0]+"="+kv[1])
		}
	}
	return strings.Join(parts, ", ")
}

// AddSearchHistory adds a search to history
func AddSearchHistory(query string, resultCount int, filters SearchFilters) error {
	filtersJSON, err := json.Marshal(filters)
	if err != nil {
		filtersJSON = []byte("{}")
	}

	_, err = database.Exec(`
		INSERT INTO search_history (query, result_count, filters)
		VALUES (?, ?, ?)`,
		query, resultCount, string(filtersJSON),
	)
	return err
}

// GetSearchHistory retrieves recent searches, newest first
func GetSearchHistory(limit int) ([]*SearchHistory, error) {
	return querySearchHistory(`
		SELECT id, query, result_count, filters, created_at
		FROM search_history
		ORDER BY id DESC
		LIMIT ?`, limit)
}

// GetUniqueSearchHistory retrieves the latest entry of each distinct query
func GetUniqueSearchHistory(limit int) ([]*SearchHistory, error) {
	return querySearchHistory(`
		SELECT id, query, result_count, filters, created_at
		FROM search_history
		WHERE id IN (SELECT MAX(id) FROM search_history GROUP BY query)
		ORDER BY id DESC
		LIMIT ?`, limit)
}

func querySearchHistory(query string, limit int) ([]*SearchHistory, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := database.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []*SearchHistory
	for rows.Next() {
		h := &SearchHistory{}
		var filtersJSON sql.NullString
		if err := rows.Scan(&h.ID, &h.Query, &h.ResultCount, &filtersJSON, &h.CreatedAt); err != nil {
			return nil, err
		}
		if filtersJSON.String != "" {
			json.Unmarshal([]byte(filtersJSON.String), &h.Filters)
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

// ClearSearchHistory removes all search history
func ClearSearchHistory() error {
	_, err := database.Exec(`DELETE FROM search_history`)
	return err
}

// DeleteSearchHistoryOlderThan removes history older than the given duration
func DeleteSearchHistoryOlderThan(d time.Duration) error {
	cutoff := time.Now().UTC().Add(-d).Format("2006-01-02 15:04:05")
	_, err := database.Exec(`DELETE FROM search_history WHERE created_at < ?`, cutoff)
	return err
}
