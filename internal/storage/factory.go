package storage

import (
	"fmt"

	"github.com/redmarwoest/cp-automation-script/internal/infra"
)

// NewCDN builds the uploader selected by CDN_PROVIDER.
func NewCDN(cfg *infra.Config, logger *infra.Logger) (Uploader, error) {
	switch cfg.CDNProvider {
	case "", "bunny":
		return NewBunnyUploader(BunnyOptions{
			StorageHost: cfg.Bunny.StorageHost,
			Zone:        cfg.Bunny.ZoneName,
			AccessKey:   cfg.Bunny.AccessKey,
			PullZoneURL: cfg.Bunny.PullZoneURL,
			Logger:      logger,
		}), nil
	case "s3":
		return NewS3Uploader(S3Options{
			Endpoint:      cfg.S3.Endpoint,
			AccessKey:     cfg.S3.AccessKey,
			SecretKey:     cfg.S3.SecretKey,
			Bucket:        cfg.S3.Bucket,
			Region:        cfg.S3.Region,
			UseSSL:        cfg.S3.UseSSL,
			PublicBaseURL: cfg.S3.PublicBaseURL,
			PresignTTL:    cfg.S3.PresignTTL,
			Logger:        logger,
		}), nil
	case "local":
		return NewFileStore(cfg.StoragePath, cfg.StorageBaseURL)
	default:
		return nil, &infra.ConfigError{Key: "CDN_PROVIDER", Reason: fmt.Sprintf("has unsupported value %q", cfg.CDNProvider)}
	}
}

// NewDrive builds the Drive uploader, or returns nil when Drive uploads are
// disabled.
func NewDrive(cfg *infra.Config, logger *infra.Logger) Uploader {
	if !cfg.Drive.Enabled {
		return nil
	}
	return NewDriveUploader(DriveOptions{
		FolderID:        cfg.Drive.FolderID,
		CredentialsFile: cfg.Drive.ServiceAccountPath,
		ShareWith:       cfg.Drive.ShareWith,
		Logger:          logger,
	})
}
