package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"sync"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/redmarwoest/cp-automation-script/internal/infra"
)

// DriveOptions configures the Google Drive uploader.
type DriveOptions struct {
	FolderID        string
	CredentialsFile string
	// ShareWith, when set, receives reader access to every uploaded file.
	ShareWith string
	// NewService overrides how the Drive client is built.
	NewService func(ctx context.Context) (*drive.Service, error)
	Logger     *infra.Logger
}

// DriveUploader stores files on Google Drive with a service account.
type DriveUploader struct {
	folderID        string
	credentialsFile string
	shareWith       string
	newService      func(ctx context.Context) (*drive.Service, error)
	logger          *infra.Logger

	mu  sync.Mutex
	svc *drive.Service
}

// NewDriveUploader applies defaults to opts. The Drive client is created on
// first use.
func NewDriveUploader(opts DriveOptions) *DriveUploader {
	d := &DriveUploader{
		folderID:        strings.TrimSpace(opts.FolderID),
		credentialsFile: strings.TrimSpace(opts.CredentialsFile),
		shareWith:       strings.TrimSpace(opts.ShareWith),
		newService:      opts.NewService,
		logger:          opts.Logger,
	}
	if d.logger == nil {
		d.logger = infra.DiscardLogger()
	}
	if d.newService == nil {
		d.newService = d.serviceFromCredentials
	}
	return d
}

func (d *DriveUploader) Name() string { return "google-drive" }

func (d *DriveUploader) serviceFromCredentials(ctx context.Context) (*drive.Service, error) {
	if err := infra.RequireValue("GOOGLE_SERVICE_ACCOUNT_PATH", d.credentialsFile); err != nil {
		return nil, err
	}
	if _, err := os.Stat(d.credentialsFile); err != nil {
		return nil, &infra.ConfigError{Key: "GOOGLE_SERVICE_ACCOUNT_PATH", Reason: fmt.Sprintf("points at a missing file: %s", d.credentialsFile)}
	}
	return drive.NewService(ctx,
		option.WithCredentialsFile(d.credentialsFile),
		option.WithScopes(drive.DriveScope),
	)
}

func (d *DriveUploader) service(ctx context.Context) (*drive.Service, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.svc != nil {
		return d.svc, nil
	}
	svc, err := d.newService(ctx)
	if err != nil {
		return nil, err
	}
	d.svc = svc
	return svc, nil
}

// Upload creates a new Drive file. RemotePath is used as the file name.
func (d *DriveUploader) Upload(ctx context.Context, req Request) (*Result, error) {
	f, _, err := openLocal(d.Name(), req.LocalPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	svc, err := d.service(ctx)
	if err != nil {
		return nil, &UploadError{Service: d.Name(), Err: err}
	}

	name := path.Base(cleanRemotePath(req.RemotePath))
	if name == "" || name == "." {
		name = path.Base(req.LocalPath)
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = ContentTypeFor(req.LocalPath)
	}

	meta := &drive.File{Name: name, Description: req.Description}
	if d.folderID != "" {
		meta.Parents = []string{d.folderID}
	}
	call := svc.Files.Create(meta).
		Media(f, googleapi.ContentType(contentType)).
		Fields("id", "name", "webViewLink", "webContentLink").
		Context(ctx)
	if d.folderID != "" {
		call = call.SupportsAllDrives(true)
	}

	created, err := call.Do()
	if err != nil {
		return nil, d.wrap(err)
	}
	d.logger.Info().
		Str("file_id", created.Id).
		Str("name", created.Name).
		Msg("storage: uploaded to google drive")

	if d.shareWith != "" {
		if err := d.Share(ctx, created.Id, d.shareWith); err != nil {
			d.logger.Warn().Err(err).Str("file_id", created.Id).Msg("storage: drive share failed")
		}
	}

	return &Result{
		RemotePath:  name,
		DownloadURL: created.WebContentLink,
		ViewURL:     created.WebViewLink,
		FileID:      created.Id,
		FileName:    created.Name,
		Zone:        d.folderID,
	}, nil
}

// Share grants reader access on a file to one user.
func (d *DriveUploader) Share(ctx context.Context, fileID, email string) error {
	svc, err := d.service(ctx)
	if err != nil {
		return &UploadError{Service: d.Name(), Err: err}
	}
	call := svc.Permissions.Create(fileID, &drive.Permission{
		Role:         "reader",
		Type:         "user",
		EmailAddress: email,
	}).Context(ctx)
	if d.folderID != "" {
		call = call.SupportsAllDrives(true)
	}
	if _, err := call.Do(); err != nil {
		return d.wrap(err)
	}
	d.logger.Info().Str("file_id", fileID).Str("email", email).Msg("storage: drive file shared")
	return nil
}

func (d *DriveUploader) wrap(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if strings.Contains(strings.ToLower(apiErr.Message), "storage quota") {
			d.logger.Warn().Msg("storage: service accounts have no drive quota; set GOOGLE_DRIVE_FOLDER_ID to a shared drive folder")
		}
		return &UploadError{Service: d.Name(), StatusCode: apiErr.Code, Body: apiErr.Message, Err: err}
	}
	return &UploadError{Service: d.Name(), Err: err}
}

// Check validates the service-account file and calls the Drive API once.
func (d *DriveUploader) Check(ctx context.Context) []string {
	var issues []string
	if d.credentialsFile != "" {
		raw, err := os.ReadFile(d.credentialsFile)
		if err != nil {
			return append(issues, fmt.Sprintf("service account file not readable: %s", d.credentialsFile))
		}
		var creds struct {
			ClientEmail string `json:"client_email"`
			PrivateKey  string `json:"private_key"`
		}
		if err := json.Unmarshal(raw, &creds); err != nil || creds.ClientEmail == "" || creds.PrivateKey == "" {
			return append(issues, "service account file is not a valid key (client_email and private_key are required)")
		}
	}
	svc, err := d.service(ctx)
	if err != nil {
		return append(issues, err.Error())
	}
	if _, err := svc.About.Get().Fields("user").Context(ctx).Do(); err != nil {
		issues = append(issues, fmt.Sprintf("drive api not reachable: %v", err))
	}
	if d.folderID == "" {
		d.logger.Warn().Msg("storage: GOOGLE_DRIVE_FOLDER_ID not set, uploads go to the service account root")
	}
	return issues
}
