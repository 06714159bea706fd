package store

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/billmal071/libgenfic/internal/libgen"
)

type fakeClient struct {
	results  *libgen.SearchResults
	err      error
	lastReq  libgen.SearchRequest
	deadline bool
	direct   map[string]string
}

func (f *fakeClient) Search(ctx context.Context, req libgen.SearchRequest) (*libgen.SearchResults, error) {
	f.lastReq = req
	_, f.deadline = ctx.Deadline()
	return f.results, f.err
}

func (f *fakeClient) DetailURL(id string) string {
	return "http://libgen.rs/fiction/" + id
}

func (f *fakeClient) DownloadURL(_ context.Context, idOrURL string) (string, error) {
	if link, ok := f.direct[idOrURL]; ok {
		return link, nil
	}
	return "", libgen.ErrNoDownloadAvailable
}

func book(title, id string, mirrors ...libgen.Mirror) *libgen.Book {
	return &libgen.Book{
		Title:     title,
		Authors:   []string{"Frank Herbert"},
		Language:  "English",
		ContentID: id,
		Mirrors:   mirrors,
	}
}

var epubMirror = libgen.Mirror{URL: "http://library.lol/fiction/A", Format: "EPUB", Size: "2.1", Unit: "MB"}

func TestSearchNormalizesResults(t *testing.T) {
	client := &fakeClient{results: &libgen.SearchResults{
		Books: []*libgen.Book{
			book("Dune", "A", epubMirror, libgen.Mirror{URL: "http://other/A", Format: "EPUB"}),
			book("No Mirrors", "B"),
		},
		Total: 2,
	}}
	s := New(client, Options{Request: libgen.NewSearchRequest("")})

	results, err := s.Search(context.Background(), "dune", 10, time.Minute)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected books without mirrors to be skipped, got %d results", len(results))
	}

	r := results[0]
	if r.Title != "Dune" || r.Author != "Frank Herbert" || r.Formats != "EPUB" {
		t.Fatalf("unexpected result %+v", r)
	}
	if r.DRM != DRMUnlocked {
		t.Fatalf("DRM = %v", r.DRM)
	}
	if len(r.Downloads) != 1 || r.Downloads["epub"] != epubMirror.URL {
		t.Fatalf("downloads = %v", r.Downloads)
	}
	if r.DetailURL != "http://libgen.rs/fiction/A" {
		t.Fatalf("detail url = %q", r.DetailURL)
	}
	if client.lastReq.Query != "dune" || client.lastReq.Language != libgen.DefaultLanguage {
		t.Fatalf("request = %+v", client.lastReq)
	}
	if !client.deadline {
		t.Fatal("expected the search context to carry the timeout")
	}
}

func TestSearchTruncatesToMaxResults(t *testing.T) {
	var books []*libgen.Book
	for _, id := range []string{"A", "B", "C", "D"} {
		books = append(books, book("Title "+id, id, epubMirror))
	}
	s := New(&fakeClient{results: &libgen.SearchResults{Books: books, Total: len(books)}}, Options{})

	results, err := s.Search(context.Background(), "x", 2, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 || results[0].ContentID != "A" || results[1].ContentID != "B" {
		t.Fatalf("unexpected results %+v", results)
	}
}

func TestSearchDecoratesTitles(t *testing.T) {
	s := New(&fakeClient{results: &libgen.SearchResults{Books: []*libgen.Book{book("Dune", "A", epubMirror)}}}, Options{Decorate: true})

	results, err := s.Search(context.Background(), "dune", 0, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got := results[0].Title; got != "Dune [English] (2.1 MB)" {
		t.Fatalf("title = %q", got)
	}
}

func TestSearchPropagatesFetchErrors(t *testing.T) {
	want := &libgen.FetchError{URL: "http://libgen.rs/fiction/?q=x", Err: errors.New("timeout")}
	s := New(&fakeClient{err: want}, Options{})

	_, err := s.Search(context.Background(), "x", 5, time.Second)
	var ferr *libgen.FetchError
	if !errors.As(err, &ferr) {
		t.Fatalf("expected *libgen.FetchError, got %v", err)
	}
}

func TestResolveDownloads(t *testing.T) {
	client := &fakeClient{
		results: &libgen.SearchResults{Books: []*libgen.Book{book("Dune", "A", epubMirror)}},
		direct:  map[string]string{epubMirror.URL: "http://download.example/dune.epub"},
	}
	s := New(client, Options{})

	results, err := s.Search(context.Background(), "dune", 1, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	r := results[0]
	if err := s.ResolveDownloads(context.Background(), r); err != nil {
		t.Fatalf("ResolveDownloads: %v", err)
	}
	if r.Downloads["epub"] != "http://download.example/dune.epub" {
		t.Fatalf("downloads = %v", r.Downloads)
	}
	if r.Mirror() != epubMirror {
		t.Fatalf("mirror = %+v", r.Mirror())
	}
}

func TestResolveDownloadsFailureKeepsMirror(t *testing.T) {
	client := &fakeClient{results: &libgen.SearchResults{Books: []*libgen.Book{book("Dune", "A", epubMirror)}}}
	s := New(client, Options{})

	results, _ := s.Search(context.Background(), "dune", 1, 0)
	r := results[0]
	err := s.ResolveDownloads(context.Background(), r)
	if !errors.Is(err, libgen.ErrNoDownloadAvailable) {
		t.Fatalf("expected ErrNoDownloadAvailable, got %v", err)
	}
	if r.Downloads["epub"] != epubMirror.URL {
		t.Fatalf("downloads changed on failure: %v", r.Downloads)
	}
}

func TestDRMStatusString(t *testing.T) {
	if DRMUnlocked.String() != "unlocked" || DRMLocked.String() != "locked" || DRMUnknown.String() != "unknown" {
		t.Fatal("unexpected DRM status names")
	}
}

func TestSearchTimeoutBoundsSlowMirror(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-time.After(3 * time.Second):
		}
		w.Write([]byte("<html><body><table><tbody></tbody></table></body></html>"))
	}))
	defer srv.Close()
	defer close(release)

	client, err := libgen.NewClient(libgen.WithMirror(srv.URL))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	start := time.Now()
	_, err = New(client, Options{}).Search(context.Background(), "dune", 10, 200*time.Millisecond)
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("Search returned after %v, timeout ignored", elapsed)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		var fe *libgen.FetchError
		if !errors.As(err, &fe) {
			t.Fatalf("expected a timeout error, got %v", err)
		}
	}
}
