package db

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) {
	t.Helper()
	if err := Init(filepath.Join(t.TempDir(), "nested", "test.db")); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { Close() })
}

func TestSearchHistory(t *testing.T) {
	openTestDB(t)

	filters := SearchFilters{Criteria: "title", Language: "English", Format: "epub"}
	for _, q := range []string{"dune", "hyperion", "dune"} {
		if err := AddSearchHistory(q, 3, filters); err != nil {
			t.Fatalf("AddSearchHistory: %v", err)
		}
	}

	all, err := GetSearchHistory(10)
	if err != nil {
		t.Fatalf("GetSearchHistory: %v", err)
	}
	if len(all) != 3 || all[0].Query != "dune" || all[1].Query != "hyperion" {
		t.Fatalf("unexpected history %+v", all)
	}
	if all[0].Filters != filters {
		t.Fatalf("filters = %+v", all[0].Filters)
	}

	unique, err := GetUniqueSearchHistory(10)
	if err != nil {
		t.Fatalf("GetUniqueSearchHistory: %v", err)
	}
	if len(unique) != 2 {
		t.Fatalf("expected 2 unique searches, got %d", len(unique))
	}

	if err := ClearSearchHistory(); err != nil {
		t.Fatalf("ClearSearchHistory: %v", err)
	}
	all, _ = GetSearchHistory(10)
	if len(all) != 0 {
		t.Fatalf("history not cleared: %+v", all)
	}
}

func TestDeleteSearchHistoryOlderThan(t *testing.T) {
	openTestDB(t)

	if _, err := DB().Exec(`INSERT INTO search_history (query, result_count, filters, created_at)
		VALUES ('old', 1, '{}', '2001-01-01 00:00:00')`); err != nil {
		t.Fatal(err)
	}
	if err := AddSearchHistory("new", 1, SearchFilters{}); err != nil {
		t.Fatal(err)
	}

	if err := DeleteSearchHistoryOlderThan(24 * time.Hour); err != nil {
		t.Fatalf("DeleteSearchHistoryOlderThan: %v", err)
	}

	left, err := GetSearchHistory(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 1 || left[0].Query != "new" {
		t.Fatalf("unexpected history %+v", left)
	}
}

func TestSearchFiltersString(t *testing.T) {
	f := SearchFilters{Language: "English", Format: "epub"}
	if got := f.String(); got != "language=English, format=epub" {
		t.Fatalf("String() = %q", got)
	}
	if got := (SearchFilters{}).String(); got != "" {
		t.Fatalf("empty String() = %q", got)
	}
}

func TestDownloads(t *testing.T) {
	openTestDB(t)

	if d, err := GetLatestDownload("ABC"); err != nil || d != nil {
		t.Fatalf("expected no record, got %+v, %v", d, err)
	}

	d := &Download{MD5Hash: "ABC", Title: "Dune", Authors: "Frank Herbert", Format: "EPUB", MirrorURL: "http://library.lol/fiction/ABC"}
	if err := CreateDownload(d); err != nil {
		t.Fatalf("CreateDownload: %v", err)
	}
	if d.ID == 0 || d.Status != StatusPending {
		t.Fatalf("unexpected record %+v", d)
	}

	if err := UpdateStatus(d.ID, StatusFailed, "timeout"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	got, err := GetLatestDownload("ABC")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusFailed || got.ErrorMessage != "timeout" {
		t.Fatalf("unexpected record %+v", got)
	}

	if err := MarkCompleted(d.ID, "http://download.example/dune.epub", "/books/Dune.epub", true); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}
	got, _ = GetLatestDownload("ABC")
	if got.Status != StatusCompleted || !got.Verified || got.FilePath != "/books/Dune.epub" || got.ErrorMessage != "" {
		t.Fatalf("unexpected record %+v", got)
	}

	completed, err := ListDownloads(StatusCompleted, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(completed) != 1 || completed[0].Title != "Dune" {
		t.Fatalf("ListDownloads = %+v", completed)
	}
	failed, _ := ListDownloads(StatusFailed, 0)
	if len(failed) != 0 {
		t.Fatalf("expected no failed downloads, got %+v", failed)
	}
}
