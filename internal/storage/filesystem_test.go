package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/redmarwoest/cp-automation-script/internal/infra"
)

func TestFileStoreUploadCopiesArtifact(t *testing.T) {
	root := t.TempDir()
	store, err := NewFileStore(root, "http://localhost:8080/files/")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	local := writeArtifact(t, "green.png", "png-bytes")
	res, err := store.Upload(context.Background(), Request{LocalPath: local, RemotePath: "/mockups/q9/photoshop/green.png"})
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if res.RemotePath != "mockups/q9/photoshop/green.png" {
		t.Fatalf("RemotePath = %q", res.RemotePath)
	}
	if res.DownloadURL != "http://localhost:8080/files/mockups/q9/photoshop/green.png" {
		t.Fatalf("DownloadURL = %q", res.DownloadURL)
	}
	data, err := os.ReadFile(filepath.Join(root, "mockups", "q9", "photoshop", "green.png"))
	if err != nil {
		t.Fatalf("read copy: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Fatalf("copied data = %q", data)
	}
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	for _, key := range []string{"../escape.pdf", "a/../../escape.pdf", "", ".."} {
		_, err := store.Upload(context.Background(), Request{LocalPath: writeArtifact(t, "a.pdf", "x"), RemotePath: key})
		var upErr *UploadError
		if !errors.As(err, &upErr) {
			t.Fatalf("key %q: expected UploadError, got %v", key, err)
		}
	}
}

func TestSanitizeKey(t *testing.T) {
	cases := map[string]string{
		"posters/a.pdf":     "posters/a.pdf",
		"/posters//a.pdf":   "posters/a.pdf",
		`posters\b.pdf`:     "posters/b.pdf",
		"./x/./y/../z.png":  "x/z.png",
		"  spaced/key.pdf ": "spaced/key.pdf",
	}
	for in, want := range cases {
		got, err := sanitizeKey(in)
		if err != nil {
			t.Fatalf("sanitizeKey(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("sanitizeKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestS3PublicURL(t *testing.T) {
	up := NewS3Uploader(S3Options{PublicBaseURL: "https://cdn.example.com/prints/"})
	if got := up.PublicURL("/mockups/q1/illustrator/white.pdf"); got != "https://cdn.example.com/prints/mockups/q1/illustrator/white.pdf" {
		t.Fatalf("PublicURL = %q", got)
	}
	if got := NewS3Uploader(S3Options{}).PublicURL("a.pdf"); got != "" {
		t.Fatalf("PublicURL without base = %q", got)
	}
}

func TestS3UploadRequiresConfiguration(t *testing.T) {
	up := NewS3Uploader(S3Options{Endpoint: "s3.example.com", AccessKey: "a", SecretKey: "s"})
	_, err := up.Upload(context.Background(), Request{LocalPath: writeArtifact(t, "a.pdf", "x"), RemotePath: "a.pdf"})
	var cfgErr *infra.ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Key != "S3_BUCKET" {
		t.Fatalf("expected S3_BUCKET ConfigError, got %v", err)
	}
	if issues := up.Check(context.Background()); len(issues) != 1 {
		t.Fatalf("expected one issue, got %v", issues)
	}
}

func TestContentTypeFor(t *testing.T) {
	cases := map[string]string{
		"a.pdf":   "application/pdf",
		"b.PNG":   "image/png",
		"c.bin42": "application/octet-stream",
	}
	for in, want := range cases {
		if got := ContentTypeFor(in); got != want {
			t.Fatalf("ContentTypeFor(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewCDNSelectsProvider(t *testing.T) {
	cfg := &infra.Config{CDNProvider: "bunny"}
	up, err := NewCDN(cfg, nil)
	if err != nil || up.Name() != "bunnycdn" {
		t.Fatalf("bunny: %v %v", up, err)
	}
	cfg.CDNProvider = "s3"
	if up, _ = NewCDN(cfg, nil); up.Name() != "s3" {
		t.Fatalf("s3 provider = %s", up.Name())
	}
	cfg.CDNProvider = "local"
	cfg.StoragePath = t.TempDir()
	if up, _ = NewCDN(cfg, nil); up.Name() != "local" {
		t.Fatalf("local provider = %s", up.Name())
	}
	cfg.CDNProvider = "ftp"
	if _, err := NewCDN(cfg, nil); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}

func TestNewDriveDisabled(t *testing.T) {
	if up := NewDrive(&infra.Config{}, nil); up != nil {
		t.Fatalf("expected nil uploader when drive is disabled")
	}
	cfg := &infra.Config{Drive: infra.DriveConfig{Enabled: true}}
	if up := NewDrive(cfg, nil); up == nil || up.Name() != "google-drive" {
		t.Fatalf("expected drive uploader")
	}
}
