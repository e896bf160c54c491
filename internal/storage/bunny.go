package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/redmarwoest/cp-automation-script/internal/infra"
)

// BunnyOptions configures the BunnyCDN storage uploader.
type BunnyOptions struct {
	StorageHost string
	Zone        string
	AccessKey   string
	PullZoneURL string
	// Endpoint overrides "https://<StorageHost>".
	Endpoint   string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// BunnyUploader PUTs files into a BunnyCDN storage zone.
type BunnyUploader struct {
	host       string
	zone       string
	accessKey  string
	pullZone   string
	endpoint   string
	httpClient *http.Client
	logger     *infra.Logger
}

// NewBunnyUploader applies defaults to opts. Missing credentials are reported
// on Upload, not here.
func NewBunnyUploader(opts BunnyOptions) *BunnyUploader {
	host := strings.TrimSpace(opts.StorageHost)
	if host == "" {
		host = "storage.bunnycdn.com"
	}
	endpoint := strings.TrimRight(strings.TrimSpace(opts.Endpoint), "/")
	if endpoint == "" {
		endpoint = "https://" + host
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Minute}
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	return &BunnyUploader{
		host:       host,
		zone:       strings.TrimSpace(opts.Zone),
		accessKey:  strings.TrimSpace(opts.AccessKey),
		pullZone:   strings.TrimRight(strings.TrimSpace(opts.PullZoneURL), "/"),
		endpoint:   endpoint,
		httpClient: httpClient,
		logger:     logger,
	}
}

func (b *BunnyUploader) Name() string { return "bunnycdn" }

func (b *BunnyUploader) Upload(ctx context.Context, req Request) (*Result, error) {
	if err := infra.RequireValue("BUNNYCDN_STORAGE_ZONE_NAME", b.zone); err != nil {
		return nil, &UploadError{Service: b.Name(), Err: err}
	}
	if err := infra.RequireValue("BUNNYCDN_STORAGE_ACCESS_KEY", b.accessKey); err != nil {
		return nil, &UploadError{Service: b.Name(), Err: err}
	}
	remote := cleanRemotePath(req.RemotePath)
	if remote == "" {
		return nil, &UploadError{Service: b.Name(), Err: fmt.Errorf("remote path is required")}
	}

	f, info, err := openLocal(b.Name(), req.LocalPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	contentType := req.ContentType
	if contentType == "" {
		contentType = ContentTypeFor(req.LocalPath)
	}

	target := b.endpoint + "/" + url.PathEscape(b.zone) + "/" + escapePath(remote)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, target, f)
	if err != nil {
		return nil, &UploadError{Service: b.Name(), Err: err}
	}
	httpReq.ContentLength = info.Size()
	httpReq.Header.Set("AccessKey", b.accessKey)
	httpReq.Header.Set("Content-Type", contentType)

	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return nil, &UploadError{Service: b.Name(), Err: err}
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UploadError{Service: b.Name(), StatusCode: resp.StatusCode, Body: string(body)}
	}

	link := b.storageURL(remote)
	if b.pullZone != "" {
		link = b.pullZone + "/" + escapePath(remote)
	}
	b.logger.Info().
		Str("path", remote).
		Str("link", link).
		Int64("bytes", info.Size()).
		Msg("storage: uploaded to bunnycdn")
	return &Result{RemotePath: remote, DownloadURL: link, Zone: b.zone}, nil
}

func (b *BunnyUploader) storageURL(remote string) string {
	return "https://" + b.host + "/" + url.PathEscape(b.zone) + "/" + escapePath(remote)
}

func (b *BunnyUploader) Check(context.Context) []string {
	var issues []string
	if b.zone == "" {
		issues = append(issues, "BUNNYCDN_STORAGE_ZONE_NAME is not set")
	}
	if b.accessKey == "" {
		issues = append(issues, "BUNNYCDN_STORAGE_ACCESS_KEY is not set")
	}
	if b.pullZone == "" {
		b.logger.Warn().Msg("storage: BUNNYCDN_PULL_ZONE_URL not set, links point at the storage host")
	}
	return issues
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
