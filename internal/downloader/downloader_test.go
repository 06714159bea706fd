package downloader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{MaxAttempts: attempts, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2}
}

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCategory
	}{
		{"rate limited", &StatusError{StatusCode: http.StatusTooManyRequests}, ErrorRateLimited},
		{"not found", &StatusError{StatusCode: http.StatusNotFound}, ErrorNonRetryable},
		{"bad gateway", fmt.Errorf("wrapped: %w", &StatusError{StatusCode: http.StatusBadGateway}), ErrorRetryable},
		{"html page", ErrHTMLContent, ErrorNonRetryable},
		{"reset", errors.New("read tcp: connection reset by peer"), ErrorRetryable},
		{"unexpected eof", errors.New("unexpected EOF"), ErrorRetryable},
		{"unknown", errors.New("disk full"), ErrorNonRetryable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CategorizeError(tt.err); got != tt.want {
				t.Errorf("CategorizeError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 5, BaseDelay: 100 * time.Millisecond, MaxDelay: time.Second, Multiplier: 2}

	if got := CalculateBackoff(0, cfg); got != cfg.BaseDelay {
		t.Fatalf("attempt 0 = %v, want %v", got, cfg.BaseDelay)
	}
	for attempt, want := range map[int]time.Duration{1: 200 * time.Millisecond, 2: 400 * time.Millisecond, 10: time.Second} {
		got := CalculateBackoff(attempt, cfg)
		lo, hi := time.Duration(float64(want)*0.75), time.Duration(float64(want)*1.25)
		if got < lo || got > hi {
			t.Errorf("attempt %d = %v, want within [%v, %v]", attempt, got, lo, hi)
		}
	}
}

func TestRetryOperation(t *testing.T) {
	calls := 0
	err := RetryOperation(context.Background(), fastRetry(3), func(int) error {
		calls++
		if calls < 3 {
			return &StatusError{StatusCode: http.StatusServiceUnavailable}
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Fatalf("err = %v after %d calls", err, calls)
	}

	calls = 0
	err = RetryOperation(context.Background(), fastRetry(3), func(int) error {
		calls++
		return &StatusError{StatusCode: http.StatusNotFound}
	})
	if calls != 1 || err == nil {
		t.Fatalf("non-retryable error retried: %d calls, err %v", calls, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := RetryOperation(ctx, fastRetry(3), func(int) error { return nil }); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDownload(t *testing.T) {
	payload := bytes.Repeat([]byte("dune"), 1024)
	var hits int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/epub+zip")
		w.Header().Set("Content-Disposition", `attachment; filename="Frank Herbert - Dune.epub"`)
		w.Write(payload)
	}))
	defer srv.Close()

	var progress bytes.Buffer
	d := New(Options{Retry: fastRetry(3), Progress: &progress})
	dir := t.TempDir()

	got, err := d.Download(context.Background(), srv.URL+"/get.php?md5=abc", dir, "abc.epub")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if want := filepath.Join(dir, "Frank Herbert - Dune.epub"); got != want {
		t.Fatalf("path = %q, want %q", got, want)
	}
	data, err := os.ReadFile(got)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, payload) {
		t.Fatalf("written %d bytes, want %d", len(data), len(payload))
	}
	if _, err := os.Stat(got + ".part"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
	if progress.Len() == 0 {
		t.Fatalf("expected progress output")
	}
}

func TestDownloadRejectsHTML(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/octet-stream")
		fmt.Fprint(w, "<!DOCTYPE html><html><body>captcha</body></html>")
	}))
	defer srv.Close()

	d := New(Options{Retry: fastRetry(3)})
	_, err := d.Download(context.Background(), srv.URL, t.TempDir(), "x.epub")
	if !errors.Is(err, ErrHTMLContent) {
		t.Fatalf("expected ErrHTMLContent, got %v", err)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("html response fetched %d times", n)
	}
}

func TestDownloadFallbackName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("%PDF-1.4"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	got, err := New(Options{}).Download(context.Background(), srv.URL+"/get.php", dir, "Dune: Messiah.pdf")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if want := filepath.Join(dir, "Dune_ Messiah.pdf"); got != want {
		t.Fatalf("path = %q, want %q", got, want)
	}
}

func TestVerifyChecksum(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.txt")
	if err := os.WriteFile(path, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := VerifyChecksum(path, " 5D41402ABC4B2A76B9719D911017C592 "); err != nil {
		t.Fatalf("VerifyChecksum: %v", err)
	}

	err := VerifyChecksum(path, "00000000000000000000000000000000")
	var ce *ChecksumError
	if !errors.As(err, &ce) || ce.Actual != "5d41402abc4b2a76b9719d911017c592" {
		t.Fatalf("expected ChecksumError, got %v", err)
	}

	if err := VerifyChecksum(filepath.Join(t.TempDir(), "missing"), "abc"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestSanitizeFilename(t *testing.T) {
	if got := SanitizeFilename(` a/b\c:d*e?"<>|.epub `); got != "a_b_c_d_e_____.epub" {
		t.Fatalf("SanitizeFilename = %q", got)
	}
	if got := SanitizeFilename(".."); got != "" {
		t.Fatalf("SanitizeFilename(..) = %q", got)
	}
}
