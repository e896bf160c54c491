package infra

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultQueueURL     = "https://course-prints-store.vercel.app"
	defaultPollInterval = 30 * time.Second
)

// ConfigError reports a required configuration value that is missing at the
// point where it is needed.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("config: %s %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("config: %s is required", e.Key)
}

// RequireValue returns a *ConfigError when value is blank.
func RequireValue(key, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ConfigError{Key: key}
	}
	return nil
}

// Config represents worker configuration loaded from environment variables.
type Config struct {
	AppEnv   string
	LogLevel string

	PosterQueueURL string
	MockupQueueURL string
	PollInterval   time.Duration
	// MaxRetries is read for parity with existing deployments; nothing retries.
	MaxRetries   int
	QueueTimeout time.Duration
	StartupProbe bool

	TemplateDir       string
	MockupTemplateDir string
	ExportDir         string
	WorkDir           string
	PDFPreset         string

	OsascriptPath  string
	IllustratorApp string
	PhotoshopAppID string
	ScriptTimeout  time.Duration
	VariantSettle  time.Duration

	CDNProvider string
	Bunny       BunnyConfig
	S3          S3Config
	Drive       DriveConfig

	StoragePath    string
	StorageBaseURL string

	DatabaseURL string
	StatusAddr  string

	// StatusOrigins lists browser origins allowed to read the status API.
	StatusOrigins []string
}

// BunnyConfig holds the BunnyCDN storage zone credentials.
type BunnyConfig struct {
	StorageHost string
	ZoneName    string
	AccessKey   string
	PullZoneURL string
}

// S3Config holds the S3-compatible bucket settings used when CDN_PROVIDER=s3.
type S3Config struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	Region        string
	UseSSL        bool
	PublicBaseURL string
	PresignTTL    time.Duration
}

// DriveConfig holds the Google Drive service-account settings.
type DriveConfig struct {
	Enabled            bool
	FolderID           string
	ServiceAccountPath string
	ShareWith          string
}

// LoadConfig loads optional env files, then reads configuration from
// environment variables and applies defaults where needed. Missing env files
// are ignored.
func LoadConfig(envFiles ...string) (*Config, error) {
	for _, file := range envFiles {
		if strings.TrimSpace(file) == "" {
			continue
		}
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", file, err)
		}
	}

	home, _ := os.UserHomeDir()
	posterQueue := getEnv("POSTER_QUEUE_URL", getEnv("API_URL", defaultQueueURL))
	storagePath := absPath(getEnv("STORAGE_PATH", "./storage"))

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "production"),
		LogLevel:       os.Getenv("LOG_LEVEL"),
		PosterQueueURL: strings.TrimRight(posterQueue, "/"),
		MockupQueueURL: strings.TrimRight(getEnv("MOCKUP_QUEUE_URL", posterQueue), "/"),
		PollInterval:   getEnvDuration("POLL_INTERVAL", defaultPollInterval),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		QueueTimeout:   getEnvDuration("QUEUE_TIMEOUT", 30*time.Second),
		StartupProbe:   getEnvBool("STARTUP_PROBE", true),

		TemplateDir:       getEnv("TEMPLATE_DIR", filepath.Join(home, "Documents")),
		MockupTemplateDir: getEnv("MOCKUP_TEMPLATE_DIR", filepath.Join(home, "course-prints", "templates")),
		ExportDir:         getEnv("EXPORT_DIR", filepath.Join(home, "course-prints", "exports")),
		WorkDir:           getEnv("WORK_DIR", filepath.Join(os.TempDir(), "cp-automation")),
		PDFPreset:         getEnv("PDF_PRESET", "[High Quality Print]"),

		OsascriptPath:  getEnv("OSASCRIPT_PATH", "/usr/bin/osascript"),
		IllustratorApp: getEnv("ILLUSTRATOR_APP", "Adobe Illustrator"),
		PhotoshopAppID: getEnv("PHOTOSHOP_APP_ID", "com.adobe.Photoshop"),
		ScriptTimeout:  getEnvDuration("SCRIPT_TIMEOUT", 10*time.Minute),
		VariantSettle:  getEnvDuration("VARIANT_SETTLE_DELAY", time.Second),

		CDNProvider: strings.ToLower(getEnv("CDN_PROVIDER", "bunny")),
		Bunny: BunnyConfig{
			StorageHost: getEnv("BUNNYCDN_STORAGE_HOST", "storage.bunnycdn.com"),
			ZoneName:    os.Getenv("BUNNYCDN_STORAGE_ZONE_NAME"),
			AccessKey:   os.Getenv("BUNNYCDN_STORAGE_ACCESS_KEY"),
			PullZoneURL: strings.TrimRight(os.Getenv("BUNNYCDN_PULL_ZONE_URL"), "/"),
		},
		S3: S3Config{
			Endpoint:      os.Getenv("S3_ENDPOINT"),
			AccessKey:     os.Getenv("S3_ACCESS_KEY"),
			SecretKey:     os.Getenv("S3_SECRET_KEY"),
			Bucket:        os.Getenv("S3_BUCKET"),
			Region:        os.Getenv("S3_REGION"),
			UseSSL:        getEnvBool("S3_USE_SSL", true),
			PublicBaseURL: strings.TrimRight(os.Getenv("S3_PUBLIC_BASE_URL"), "/"),
			PresignTTL:    getEnvDuration("S3_PRESIGN_TTL", 7*24*time.Hour),
		},
		Drive: DriveConfig{
			Enabled:            getEnvBool("GOOGLE_DRIVE_ENABLED", true),
			FolderID:           os.Getenv("GOOGLE_DRIVE_FOLDER_ID"),
			ServiceAccountPath: getEnv("GOOGLE_SERVICE_ACCOUNT_PATH", "./service-account-key.json"),
			ShareWith:          os.Getenv("GOOGLE_DRIVE_SHARE_WITH"),
		},

		StoragePath:    storagePath,
		StorageBaseURL: strings.TrimRight(getEnv("STORAGE_BASE_URL", "file://"+filepath.ToSlash(storagePath)), "/"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		StatusAddr:  os.Getenv("STATUS_ADDR"),

		StatusOrigins: getEnvList("STATUS_ALLOWED_ORIGINS"),
	}

	if cfg.PollInterval <= 0 {
		return nil, &ConfigError{Key: "POLL_INTERVAL", Reason: "must be positive"}
	}
	switch cfg.CDNProvider {
	case "bunny", "s3", "local":
	default:
		return nil, &ConfigError{Key: "CDN_PROVIDER", Reason: fmt.Sprintf("has unsupported value %q", cfg.CDNProvider)}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.TrimRight(part, "/"))
		}
	}
	return out
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("45s") and bare integers, which
// are read as milliseconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return fallback
}

func absPath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
