package downloader

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// FileMD5 returns the lower-case hex MD5 digest of the file at path
func FileMD5(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", fmt.Errorf("failed to calculate checksum: %w", err)
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

// ChecksumError reports a digest mismatch
type ChecksumError struct {
	Path     string
	Expected string
	Actual   string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s: expected %s, got %s", e.Path, e.Expected, e.Actual)
}

// VerifyChecksum compares the file's MD5 with the catalog content id, which
// is the file's MD5 in hex. Case and surrounding space are ignored.
func VerifyChecksum(path, md5Hex string) error {
	if path == "" {
		return fmt.Errorf("file path is empty")
	}
	expected := strings.ToLower(strings.TrimSpace(md5Hex))
	if expected == "" {
		return fmt.Errorf("expected checksum is empty")
	}

	actual, err := FileMD5(path)
	if err != nil {
		return err
	}
	if actual != expected {
		return &ChecksumError{Path: path, Expected: expected, Actual: actual}
	}
	return nil
}
