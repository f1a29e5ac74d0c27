package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Library
		UI
		OpenLibrary
		Covers
		Audit
		Backup
		Security
		Logging
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
		ReadOnly                 bool
	}
	Library struct {
		Path string // JSON file holding the whole collection
	}
	UI struct {
		TemplatesPath string // Empty means the embedded templates
	}
	OpenLibrary struct {
		BaseURL string
		Timeout time.Duration
		RPS     float64 // Outbound requests per second, 0 disables pacing
	}
	Covers struct {
		Dir string
	}
	Audit struct {
		Dir string
	}
	Backup struct {
		Enabled  bool
		Schedule string // Cron format: "0 3 * * *" = daily at 03:00
		Dir      string
		Keep     int
	}
	Security struct {
		SessionLifetime time.Duration
		SecureCookies   bool   // Set to false for local dev without HTTPS
		CSRFSecret      string // Generated at startup if empty
	}
	Logging struct {
		File       string // Empty logs to stderr only
		MaxSizeMB  int
		MaxBackups int
	}
)

// LoadEnvFile copies variables from a dotenv file into the process
// environment. Variables already set win; a missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("read_only", false)
	v.SetDefault("library_path", DefaultLibraryPath)
	v.SetDefault("templates_path", "")

	// Catalog defaults
	v.SetDefault("openlibrary_base_url", DefaultOpenLibraryBaseURL)
	v.SetDefault("openlibrary_timeout", "6s")
	v.SetDefault("openlibrary_rps", 5)

	v.SetDefault("covers_dir", "./covers")
	v.SetDefault("audit_dir", "./audit")

	// Backup defaults
	v.SetDefault("backup_enabled", false)
	v.SetDefault("backup_schedule", "0 3 * * *") // Daily at 03:00
	v.SetDefault("backup_dir", "./backups")
	v.SetDefault("backup_keep", 7)

	// Session and CSRF defaults
	v.SetDefault("session_lifetime", "24h")
	v.SetDefault("secure_cookies", false)
	v.SetDefault("csrf_secret", "") // Auto-generated if empty

	v.SetDefault("log_file", "")
	v.SetDefault("log_max_size_mb", 10)
	v.SetDefault("log_max_backups", 3)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
			ReadOnly:                 v.GetBool("READ_ONLY"),
		},
		Library: Library{
			Path: v.GetString("LIBRARY_PATH"),
		},
		UI: UI{
			TemplatesPath: v.GetString("TEMPLATES_PATH"),
		},
		OpenLibrary: OpenLibrary{
			BaseURL: v.GetString("OPENLIBRARY_BASE_URL"),
			Timeout: v.GetDuration("OPENLIBRARY_TIMEOUT"),
			RPS:     v.GetFloat64("OPENLIBRARY_RPS"),
		},
		Covers: Covers{
			Dir: v.GetString("COVERS_DIR"),
		},
		Audit: Audit{
			Dir: v.GetString("AUDIT_DIR"),
		},
		Backup: Backup{
			Enabled:  v.GetBool("BACKUP_ENABLED"),
			Schedule: v.GetString("BACKUP_SCHEDULE"),
			Dir:      v.GetString("BACKUP_DIR"),
			Keep:     v.GetInt("BACKUP_KEEP"),
		},
		Security: Security{
			SessionLifetime: v.GetDuration("SESSION_LIFETIME"),
			SecureCookies:   v.GetBool("SECURE_COOKIES"),
			CSRFSecret:      v.GetString("CSRF_SECRET"),
		},
		Logging: Logging{
			File:       v.GetString("LOG_FILE"),
			MaxSizeMB:  v.GetInt("LOG_MAX_SIZE_MB"),
			MaxBackups: v.GetInt("LOG_MAX_BACKUPS"),
		},
	}
}
