package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/redmarwoest/cp-automation-script/internal/infra"
)

func writeArtifact(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	return path
}

type capturedPut struct {
	method      string
	path        string
	accessKey   string
	contentType string
	body        string
}

func bunnyServer(t *testing.T, status int, got *capturedPut) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		*got = capturedPut{
			method:      r.Method,
			path:        r.URL.EscapedPath(),
			accessKey:   r.Header.Get("AccessKey"),
			contentType: r.Header.Get("Content-Type"),
			body:        string(body),
		}
		w.WriteHeader(status)
		if status >= 300 {
			_, _ = w.Write([]byte(`{"HttpCode":401,"Message":"Unauthorized"}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestBunnyUploadWithPullZone(t *testing.T) {
	var got capturedPut
	srv := bunnyServer(t, http.StatusCreated, &got)
	up := NewBunnyUploader(BunnyOptions{
		Zone:        "prints",
		AccessKey:   "secret",
		PullZoneURL: "https://prints.b-cdn.net/",
		Endpoint:    srv.URL,
		HTTPClient:  srv.Client(),
	})

	local := writeArtifact(t, "white.pdf", "%PDF-1.4")
	res, err := up.Upload(context.Background(), Request{LocalPath: local, RemotePath: "/mockups/q1/illustrator/white.pdf"})
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if got.method != http.MethodPut {
		t.Fatalf("method = %s", got.method)
	}
	if got.path != "/prints/mockups/q1/illustrator/white.pdf" {
		t.Fatalf("path = %s", got.path)
	}
	if got.accessKey != "secret" {
		t.Fatalf("AccessKey header = %q", got.accessKey)
	}
	if got.contentType != "application/pdf" {
		t.Fatalf("Content-Type = %q", got.contentType)
	}
	if got.body != "%PDF-1.4" {
		t.Fatalf("body = %q", got.body)
	}
	if res.DownloadURL != "https://prints.b-cdn.net/mockups/q1/illustrator/white.pdf" {
		t.Fatalf("DownloadURL = %q", res.DownloadURL)
	}
	if res.RemotePath != "mockups/q1/illustrator/white.pdf" || res.Zone != "prints" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestBunnyUploadFallsBackToStorageURL(t *testing.T) {
	var got capturedPut
	srv := bunnyServer(t, http.StatusCreated, &got)
	up := NewBunnyUploader(BunnyOptions{Zone: "prints", AccessKey: "secret", Endpoint: srv.URL, HTTPClient: srv.Client()})

	local := writeArtifact(t, "navy.png", "png")
	res, err := up.Upload(context.Background(), Request{LocalPath: local, RemotePath: "mockups/q1/photoshop/navy.png", ContentType: "image/png"})
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if got.contentType != "image/png" {
		t.Fatalf("Content-Type = %q", got.contentType)
	}
	if res.DownloadURL != "https://storage.bunnycdn.com/prints/mockups/q1/photoshop/navy.png" {
		t.Fatalf("DownloadURL = %q", res.DownloadURL)
	}
}

func TestBunnyUploadRejected(t *testing.T) {
	var got capturedPut
	srv := bunnyServer(t, http.StatusUnauthorized, &got)
	up := NewBunnyUploader(BunnyOptions{Zone: "prints", AccessKey: "wrong", Endpoint: srv.URL, HTTPClient: srv.Client()})

	_, err := up.Upload(context.Background(), Request{LocalPath: writeArtifact(t, "a.pdf", "x"), RemotePath: "a.pdf"})
	var upErr *UploadError
	if !errors.As(err, &upErr) {
		t.Fatalf("expected UploadError, got %v", err)
	}
	if upErr.StatusCode != http.StatusUnauthorized || upErr.Service != "bunnycdn" {
		t.Fatalf("unexpected error: %+v", upErr)
	}
	if upErr.Body == "" {
		t.Fatalf("error body should be kept")
	}
}

func TestBunnyUploadRequiresConfiguration(t *testing.T) {
	up := NewBunnyUploader(BunnyOptions{AccessKey: "secret"})
	_, err := up.Upload(context.Background(), Request{LocalPath: "/nonexistent", RemotePath: "a.pdf"})
	var cfgErr *infra.ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Key != "BUNNYCDN_STORAGE_ZONE_NAME" {
		t.Fatalf("expected zone ConfigError, got %v", err)
	}

	if issues := NewBunnyUploader(BunnyOptions{}).Check(context.Background()); len(issues) != 2 {
		t.Fatalf("expected two issues, got %v", issues)
	}
}

func TestBunnyUploadMissingFile(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	defer srv.Close()
	up := NewBunnyUploader(BunnyOptions{Zone: "z", AccessKey: "k", Endpoint: srv.URL, HTTPClient: srv.Client()})

	_, err := up.Upload(context.Background(), Request{LocalPath: filepath.Join(t.TempDir(), "missing.pdf"), RemotePath: "a.pdf"})
	var upErr *UploadError
	if !errors.As(err, &upErr) {
		t.Fatalf("expected UploadError, got %v", err)
	}
	if called {
		t.Fatalf("no request should be sent for a missing file")
	}
}
