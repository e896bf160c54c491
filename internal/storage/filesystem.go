package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FileStore copies artifacts into a local directory. It stands in for the CDN
// in development, where links resolve through baseURL.
type FileStore struct {
	basePath string
	baseURL  string
}

// NewFileStore initializes a FileStore rooted at basePath.
func NewFileStore(basePath, baseURL string) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	return &FileStore{basePath: basePath, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *FileStore) Name() string { return "local" }

// Upload copies the local file under the sanitized remote key.
func (s *FileStore) Upload(ctx context.Context, req Request) (*Result, error) {
	if s == nil {
		return nil, &UploadError{Service: "local", Err: errors.New("no store configured")}
	}
	if err := ctx.Err(); err != nil {
		return nil, &UploadError{Service: s.Name(), Err: err}
	}
	cleanKey, err := sanitizeKey(req.RemotePath)
	if err != nil {
		return nil, &UploadError{Service: s.Name(), Err: err}
	}
	src, _, err := openLocal(s.Name(), req.LocalPath)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	fullPath := filepath.Join(s.basePath, filepath.FromSlash(cleanKey))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return nil, &UploadError{Service: s.Name(), Err: fmt.Errorf("ensure directory: %w", err)}
	}
	dst, err := os.Create(fullPath)
	if err != nil {
		return nil, &UploadError{Service: s.Name(), Err: err}
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return nil, &UploadError{Service: s.Name(), Err: fmt.Errorf("copy file: %w", err)}
	}
	if err := dst.Close(); err != nil {
		return nil, &UploadError{Service: s.Name(), Err: err}
	}

	link := fullPath
	if s.baseURL != "" {
		link = s.baseURL + "/" + escapePath(cleanKey)
	}
	return &Result{RemotePath: cleanKey, DownloadURL: link, Zone: s.basePath}, nil
}

func (s *FileStore) Check(context.Context) []string {
	info, err := os.Stat(s.basePath)
	if err != nil || !info.IsDir() {
		return []string{fmt.Sprintf("storage path %s is not a directory", s.basePath)}
	}
	return nil
}

// sanitizeKey normalizes a key and prevents escaping the storage root.
func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("storage: key is required")
	}
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimPrefix(key, "./")
	key = strings.TrimLeft(key, "/")
	cleaned := filepath.ToSlash(filepath.Clean(key))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", errors.New("storage: invalid key")
	}
	return cleaned, nil
}
