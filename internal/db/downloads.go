package db

import (
	"database/sql"
	"time"
)

// DownloadStatus represents the state of a download
type DownloadStatus string

const (
	StatusPending     DownloadStatus = "pending"
	StatusDownloading DownloadStatus = "downloading"
	StatusCompleted   DownloadStatus = "completed"
	StatusFailed      DownloadStatus = "failed"
)

// Download represents a download record
type Download struct {
	ID           int64
	MD5Hash      string
	Title        string
	Authors      string
	Format       string
	MirrorURL    string
	DownloadURL  string
	FilePath     string
	Status       DownloadStatus
	ErrorMessage string
	Verified     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateDownload creates a new download record
func CreateDownload(d *Download) error {
	if d.Status == "" {
		d.Status = StatusPending
	}
	result, err := database.Exec(`
		INSERT INTO downloads (md5_hash, title, authors, format, mirror_url, download_url, file_path, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.MD5Hash, d.Title, d.Authors, d.Format, d.MirrorURL, d.DownloadURL, d.FilePath, d.Status,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	d.ID = id
	return nil
}

// UpdateStatus updates the status of a download
func UpdateStatus(id int64, status DownloadStatus, errMsg string) error {
	_, err := database.Exec(`
		UPDATE downloads SET status = ?, error_message = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, status, errMsg, id)
	return err
}

// MarkCompleted marks a download as completed
func MarkCompleted(id int64, downloadURL, filePath string, verified bool) error {
	_, err := database.Exec(`
		UPDATE downloads
		SET status = ?, download_url = ?, file_path = ?, verified = ?, error_message = NULL,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, StatusCompleted, downloadURL, filePath, verified, id)
	return err
}

// GetLatestDownload returns the most recent record for a content id, or nil
func GetLatestDownload(md5Hash string) (*Download, error) {
	row := database.QueryRow(`
		SELECT id, md5_hash, title, authors, format, mirror_url, download_url, file_path,
		       status, error_message, verified, created_at, updated_at
		FROM downloads WHERE md5_hash = ? ORDER BY id DESC LIMIT 1`, md5Hash)

	d, err := scanDownload(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return d, err
}

// ListDownloads lists downloads, newest first. An empty status lists all.
func ListDownloads(status DownloadStatus, limit int) ([]*Download, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, md5_hash, title, authors, format, mirror_url, download_url, file_path,
		       status, error_message, verified, created_at, updated_at
		FROM downloads`
	var args []interface{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := database.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var downloads []*Download
	for rows.Next() {
		d, err := scanDownload(rows)
		if err != nil {
			return nil, err
		}
		downloads = append(downloads, d)
	}
	return downloads, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanDownload(s scanner) (*Download, error) {
	d := &Download{}
	var authors, format, mirrorURL, downloadURL, filePath, errMsg sql.NullString
	err := s.Scan(
		&d.ID, &d.MD5Hash, &d.Title, &authors, &format, &mirrorURL, &downloadURL, &filePath,
		&d.Status, &errMsg, &d.Verified, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.Authors = authors.String
	d.Format = format.String
	d.MirrorURL = mirrorURL.String
	d.DownloadURL = downloadURL.String
	d.FilePath = filePath.String
	d.ErrorMessage = errMsg.String
	return d, nil
}
