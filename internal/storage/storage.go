// Package storage uploads generated artifacts to the CDN, the shared drive or
// the local filesystem.
package storage

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// Request describes one file to upload.
type Request struct {
	LocalPath   string
	RemotePath  string
	ContentType string
	Description string
}

// Result describes where an uploaded file can be reached.
type Result struct {
	RemotePath  string
	DownloadURL string
	ViewURL     string
	FileID      string
	FileName    string
	// Zone is the storage zone, bucket or folder that received the file.
	Zone string
}

// Uploader transfers a local file to a remote service. Implementations never
// retry; the caller decides whether a failure is fatal.
type Uploader interface {
	Name() string
	Upload(ctx context.Context, req Request) (*Result, error)
	// Check lists configuration problems that would make Upload fail.
	Check(ctx context.Context) []string
}

// UploadError reports a rejected or impossible upload.
type UploadError struct {
	Service    string
	StatusCode int
	Body       string
	Err        error
}

func (e *UploadError) Error() string {
	switch {
	case e.StatusCode != 0:
		body := strings.TrimSpace(e.Body)
		if len(body) > 512 {
			body = body[:512] + "..."
		}
		return fmt.Sprintf("storage: %s upload failed: status %d: %s", e.Service, e.StatusCode, body)
	case e.Err != nil:
		return fmt.Sprintf("storage: %s upload failed: %v", e.Service, e.Err)
	default:
		return fmt.Sprintf("storage: %s upload failed", e.Service)
	}
}

func (e *UploadError) Unwrap() error { return e.Err }

// ContentTypeFor guesses a MIME type from the file extension.
func ContentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	}
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// openLocal opens the artifact for reading, wrapping failures as UploadError.
func openLocal(service, path string) (*os.File, os.FileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, &UploadError{Service: service, Err: fmt.Errorf("file not found: %s", path)}
		}
		return nil, nil, &UploadError{Service: service, Err: err}
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, &UploadError{Service: service, Err: err}
	}
	if info.IsDir() {
		f.Close()
		return nil, nil, &UploadError{Service: service, Err: fmt.Errorf("%s is a directory", path)}
	}
	return f, info, nil
}

func cleanRemotePath(p string) string {
	return strings.TrimLeft(strings.ReplaceAll(strings.TrimSpace(p), "\\", "/"), "/")
}
