package config

import (
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type MediaProvider string

const (
	MediaProviderLocal MediaProvider = "local" // Files kept on disk and served under /media
	MediaProviderGCS   MediaProvider = "gcs"   // Google Cloud Storage bucket
)

type (
	Config struct {
		HTTP
		Global
		Database
		Auth
		Media
		Tasks
		Recount
		Metrics
		Demo
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path          string
		MaxTxAttempts int           // Attempts before a busy/locked transaction surfaces ErrTransient
		BusyTimeout   time.Duration // How long SQLite waits on a locked database per attempt
		LogLevel      string        // silent, error, warn, info
	}
	Auth struct {
		JWTSecret       string
		TokenExpiry     time.Duration
		BcryptCost      int
		SessionLifetime time.Duration
		SecureCookies   bool   // Set to false for local dev without HTTPS
		CSRFSecret      string // Auto-generated if empty
		AdminIDs        []uint // Users allowed to trigger recounts over HTTP
	}
	Media struct {
		MaxUploadBytes     int64 // Cap on a whole multipart request body
		Provider           MediaProvider
		LocalDir           string
		PublicBaseURL      string // Prefix for URLs of locally stored media
		GCSBucket          string
		GCSCredentialsFile string
	}
	Tasks struct {
		Enabled              bool
		Workers              int
		ReleaseAfter         time.Duration
		CleanupInterval      time.Duration
		AuditRetentionDays   int    // Audit events older than this are purged
		AuditCleanupSchedule string // Cron format for the audit purge; empty disables it
	}
	Recount struct {
		Enabled   bool
		Schedule  string // Cron format: "30 3 * * *" = daily at 03:30
		ReportDir string // Full JSON reports of each pass; empty disables archiving
	}
	Metrics struct {
		Enabled bool
	}
	Demo struct {
		Enabled bool // Read-only mode: every write except login/logout gets 403
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 4000)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)

	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("db_max_tx_attempts", 5)
	v.SetDefault("db_busy_timeout", "5s")
	v.SetDefault("db_log_level", "warn")

	// Auth defaults
	v.SetDefault("auth_jwt_secret", "")          // Auto-generated if empty, tokens then die with the process
	v.SetDefault("auth_token_expiry", "720h")    // 30 days
	v.SetDefault("auth_bcrypt_cost", 10)         // bcrypt cost factor
	v.SetDefault("auth_session_lifetime", "24h") // Cookie session duration
	v.SetDefault("auth_secure_cookies", true)    // HTTPS-only cookies
	v.SetDefault("auth_csrf_secret", "")
	v.SetDefault("auth_admin_ids", "") // Comma-separated user ids, e.g. "1,7"

	// Media defaults
	v.SetDefault("media_max_upload_bytes", 32<<20)
	v.SetDefault("media_provider", string(MediaProviderLocal))
	v.SetDefault("media_local_dir", DefaultMediaDir)
	v.SetDefault("media_public_base_url", "http://localhost:4000/media")
	v.SetDefault("media_gcs_bucket", "")
	v.SetDefault("media_gcs_credentials_file", "")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("audit_retention_days", 90)
	v.SetDefault("audit_cleanup_schedule", "0 4 * * *")

	v.SetDefault("recount_enabled", true)
	v.SetDefault("recount_schedule", "30 3 * * *")
	v.SetDefault("recount_report_dir", DefaultRecountReportDir)

	v.SetDefault("metrics_enabled", true)
	v.SetDefault("demo_mode", false)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path:          v.GetString("DATABASE_PATH"),
			MaxTxAttempts: v.GetInt("DB_MAX_TX_ATTEMPTS"),
			BusyTimeout:   v.GetDuration("DB_BUSY_TIMEOUT"),
			LogLevel:      v.GetString("DB_LOG_LEVEL"),
		},
		Auth: Auth{
			JWTSecret:       v.GetString("AUTH_JWT_SECRET"),
			TokenExpiry:     v.GetDuration("AUTH_TOKEN_EXPIRY"),
			BcryptCost:      v.GetInt("AUTH_BCRYPT_COST"),
			SessionLifetime: v.GetDuration("AUTH_SESSION_LIFETIME"),
			SecureCookies:   v.GetBool("AUTH_SECURE_COOKIES"),
			CSRFSecret:      v.GetString("AUTH_CSRF_SECRET"),
			AdminIDs:        parseIDList(v.GetString("AUTH_ADMIN_IDS")),
		},
		Media: Media{
			MaxUploadBytes:     v.GetInt64("MEDIA_MAX_UPLOAD_BYTES"),
			Provider:           MediaProvider(v.GetString("MEDIA_PROVIDER")),
			LocalDir:           v.GetString("MEDIA_LOCAL_DIR"),
			PublicBaseURL:      v.GetString("MEDIA_PUBLIC_BASE_URL"),
			GCSBucket:          v.GetString("MEDIA_GCS_BUCKET"),
			GCSCredentialsFile: v.GetString("MEDIA_GCS_CREDENTIALS_FILE"),
		},
		Tasks: Tasks{
			Enabled:              v.GetBool("TASKS_ENABLED"),
			Workers:              v.GetInt("TASK_WORKERS"),
			ReleaseAfter:         v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:      v.GetDuration("TASK_CLEANUP_INTERVAL"),
			AuditRetentionDays:   v.GetInt("AUDIT_RETENTION_DAYS"),
			AuditCleanupSchedule: v.GetString("AUDIT_CLEANUP_SCHEDULE"),
		},
		Recount: Recount{
			Enabled:   v.GetBool("RECOUNT_ENABLED"),
			Schedule:  v.GetString("RECOUNT_SCHEDULE"),
			ReportDir: v.GetString("RECOUNT_REPORT_DIR"),
		},
		Metrics: Metrics{
			Enabled: v.GetBool("METRICS_ENABLED"),
		},
		Demo: Demo{
			Enabled: v.GetBool("DEMO_MODE"),
		},
	}
}

// parseIDList reads a comma-separated id list. Entries that are not positive
// integers are skipped with a warning.
func parseIDList(raw string) []uint {
	var ids []uint
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil || id == 0 {
			log.Printf("Ignoring invalid id %q in id list", part)
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids
}
