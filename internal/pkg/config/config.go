package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Upload   UploadConfig
	Import   ImportConfig
	Media    MediaConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Worker   WorkerConfig
	Cleanup  CleanupConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port      string
	Host      string
	BodyLimit int // bytes
	Locale    string
}

type UploadConfig struct {
	TempDir      string
	UploadsDir   string
	MaxChunkSize int64 // bytes
	LogEvery     int
}

type ImportConfig struct {
	WorkDir          string
	BatchSize        int
	MaxAttempts      int
	RetryDelay       time.Duration
	JobTimeout       time.Duration
	LogEveryBatches  int
	DeleteSourceFile bool
}

type MediaConfig struct {
	Thumbnails       bool
	ThumbnailSize    int
	ThumbnailQuality int
}

type StorageConfig struct {
	Driver   string // local | s3
	BasePath string
	Bucket   string
	Region   string
}

type DatabaseConfig struct {
	Host          string
	Port          string
	User          string
	Password      string
	DBName        string
	SSLMode       string
	AutoMigration bool
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		d.Host, d.User, d.Password, d.DBName, d.Port, d.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Queue    string
}

func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

type WorkerConfig struct {
	Concurrency int
	Embedded    bool // server runs its own worker pool
}

type CleanupConfig struct {
	Spec   string
	MaxAge time.Duration
}

type LogConfig struct {
	Mode string
}

func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:      getEnv("SERVER_PORT", "3000"),
			Host:      getEnv("SERVER_HOST", "localhost"),
			BodyLimit: getEnvAsInt("SERVER_BODY_LIMIT", 64*1024*1024),
			Locale:    getEnv("SERVER_LOCALE", "en"),
		},
		Upload: UploadConfig{
			TempDir:      getEnv("UPLOAD_TEMP_DIR", "temp_uploads"),
			UploadsDir:   getEnv("UPLOAD_DIR", "uploads"),
			MaxChunkSize: getEnvAsInt64("UPLOAD_MAX_CHUNK_SIZE", 32*1024*1024), // 32MB
			LogEvery:     getEnvAsInt("UPLOAD_LOG_EVERY", 10),
		},
		Import: ImportConfig{
			WorkDir:          getEnv("IMPORT_WORK_DIR", os.TempDir()),
			BatchSize:        getEnvAsInt("IMPORT_BATCH_SIZE", 500),
			MaxAttempts:      getEnvAsInt("IMPORT_MAX_ATTEMPTS", 3),
			RetryDelay:       getEnvAsDuration("IMPORT_RETRY_DELAY", 60*time.Second),
			JobTimeout:       getEnvAsDuration("IMPORT_JOB_TIMEOUT", 6*time.Hour),
			LogEveryBatches:  getEnvAsInt("IMPORT_LOG_EVERY_BATCHES", 1),
			DeleteSourceFile: getEnvAsBool("IMPORT_DELETE_SOURCE", true),
		},
		Media: MediaConfig{
			Thumbnails:       getEnvAsBool("MEDIA_THUMBNAILS", true),
			ThumbnailSize:    getEnvAsInt("MEDIA_THUMBNAIL_SIZE", 320),
			ThumbnailQuality: getEnvAsInt("MEDIA_THUMBNAIL_QUALITY", 80),
		},
		Storage: StorageConfig{
			Driver:   getEnv("STORAGE_DRIVER", "local"),
			BasePath: getEnv("STORAGE_BASE_PATH", "storage"),
			Bucket:   getEnv("S3_BUCKET", ""),
			Region:   getEnv("AWS_REGION", "eu-central-1"),
		},
		Database: DatabaseConfig{
			Host:          getEnv("DB_HOST", "localhost"),
			Port:          getEnv("DB_PORT", "5432"),
			User:          getEnv("DB_USER", "postgres"),
			Password:      getEnv("DB_PASSWORD", ""),
			DBName:        getEnv("DB_NAME", "chat_importer"),
			SSLMode:       getEnv("DB_SSLMODE", "disable"),
			AutoMigration: getEnvAsBool("RUN_AUTO_MIGRATION", false),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Queue:    getEnv("REDIS_QUEUE", "import_jobs"),
		},
		Worker: WorkerConfig{
			Concurrency: getEnvAsInt("WORKER_CONCURRENCY", 2),
			Embedded:    getEnvAsBool("WORKER_EMBEDDED", false),
		},
		Cleanup: CleanupConfig{
			Spec:   getEnv("CLEANUP_CRON", "0 */5 * * * *"),
			MaxAge: getEnvAsDuration("CLEANUP_MAX_AGE", 24*time.Hour),
		},
		Log: LogConfig{
			Mode: getEnv("LOG_MODE", "development"),
		},
	}
}

// EnsureDirs resolves relative working directories against the project root
// and creates them.
func (c *Config) EnsureDirs() error {
	root, err := findProjectRoot()
	if err != nil {
		return err
	}
	for _, dir := range []*string{&c.Upload.TempDir, &c.Upload.UploadsDir, &c.Import.WorkDir, &c.Storage.BasePath} {
		if !filepath.IsAbs(*dir) {
			*dir = filepath.Join(root, *dir)
		}
		if err := os.MkdirAll(*dir, 0755); err != nil {
			return fmt.Errorf("create dir %s: %w", *dir, err)
		}
	}
	return nil
}

func findProjectRoot() (string, error) {
	current, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(current, "go.mod")); err == nil {
			return current, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			// go.mod bulunamadı, çalışma dizinini kullan
			return os.Getwd()
		}
		current = parent
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
