package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Object storage providers.
const (
	ProviderGCS = "gcs"
	ProviderS3  = "s3"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database      DatabaseConfig
	Redis         RedisConfig
	CORS          CORSConfig
	Log           LogConfig
	Catalog       CatalogConfig
	ObjectStorage ObjectStorageConfig
	Identity      IdentityConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	AutoMigrate  bool
}

// URL renders the connection settings as a postgres:// URL.
func (c DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CatalogConfig governs the optional Redis cache in front of catalog listings.
type CatalogConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// ObjectStorageConfig locates uploaded images in the bucket store.
// Roots use the "/<bucket>/<prefix>" notation.
type ObjectStorageConfig struct {
	Provider           string
	PublicSearchPaths  []string
	PrivateObjectDir   string
	UploadURLTTL       time.Duration
	DownloadCacheTTL   time.Duration
	S3Region           string
	S3Endpoint         string
	GCSCredentialsFile string
}

// Validate reports missing object roots. Callers treat a failure as fatal.
func (c ObjectStorageConfig) Validate() error {
	if len(c.PublicSearchPaths) == 0 {
		return errors.New("PUBLIC_OBJECT_SEARCH_PATHS not set: provide comma-separated /<bucket>/<prefix> roots")
	}
	if c.PrivateObjectDir == "" {
		return errors.New("PRIVATE_OBJECT_DIR not set: provide a /<bucket>/<prefix> root for uploads")
	}
	switch c.Provider {
	case ProviderGCS, ProviderS3:
	default:
		return fmt.Errorf("unsupported OBJECT_STORAGE_PROVIDER %q", c.Provider)
	}
	return nil
}

// IdentityConfig names the trusted upstream header carrying the caller identity.
type IdentityConfig struct {
	Header string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Catalog = CatalogConfig{
		CacheEnabled: v.GetBool("ENABLE_CATALOG_CACHE"),
		CacheTTL:     parseDuration(v.GetString("CATALOG_CACHE_TTL"), 5*time.Minute),
	}

	cfg.ObjectStorage = ObjectStorageConfig{
		Provider:           strings.ToLower(v.GetString("OBJECT_STORAGE_PROVIDER")),
		PublicSearchPaths:  uniqueStrings(splitAndTrim(v.GetString("PUBLIC_OBJECT_SEARCH_PATHS"))),
		PrivateObjectDir:   strings.TrimSpace(v.GetString("PRIVATE_OBJECT_DIR")),
		UploadURLTTL:       parseDuration(v.GetString("OBJECT_UPLOAD_URL_TTL"), 900*time.Second),
		DownloadCacheTTL:   parseDuration(v.GetString("OBJECT_DOWNLOAD_CACHE_TTL"), 3600*time.Second),
		S3Region:           v.GetString("S3_REGION"),
		S3Endpoint:         v.GetString("S3_ENDPOINT"),
		GCSCredentialsFile: v.GetString("GCS_CREDENTIALS_FILE"),
	}

	cfg.Identity = IdentityConfig{Header: v.GetString("IDENTITY_HEADER")}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 5000)
	v.SetDefault("API_PREFIX", "/api")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "guitarvault")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_CATALOG_CACHE", false)
	v.SetDefault("CATALOG_CACHE_TTL", "5m")

	v.SetDefault("OBJECT_STORAGE_PROVIDER", ProviderGCS)
	v.SetDefault("PUBLIC_OBJECT_SEARCH_PATHS", "")
	v.SetDefault("PRIVATE_OBJECT_DIR", "")
	v.SetDefault("OBJECT_UPLOAD_URL_TTL", "900s")
	v.SetDefault("OBJECT_DOWNLOAD_CACHE_TTL", "3600s")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("GCS_CREDENTIALS_FILE", "")

	v.SetDefault("IDENTITY_HEADER", "")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

func uniqueStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, value := range values {
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		result = append(result, value)
	}
	return result
}
