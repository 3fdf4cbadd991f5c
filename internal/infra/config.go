package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents backend configuration loaded from environment variables.
type Config struct {
	AppEnv                string
	Port                  string
	DatabaseURL           string
	StorageDriver         string
	StoragePath           string
	S3Bucket              string
	S3Prefix              string
	AWSRegion             string
	StylesDir             string
	GeminiAPIKey          string
	GeminiModel           string
	GeoIPDBPath           string
	DefaultLocale         string
	UploadLimitPerHour    int
	SynthesisLimitPerHour int
	CORSOrigins           []string
	SynthesisTimeout      time.Duration
	HTTPReadTimeout       time.Duration
	HTTPWriteTimeout      time.Duration
	HTTPIdleTimeout       time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:                getEnv("APP_ENV", "development"),
		Port:                  getEnv("PORT", "8000"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		StorageDriver:         strings.ToLower(getEnv("STORAGE_DRIVER", "fs")),
		StoragePath:           getEnv("STORAGE_PATH", "uploads"),
		S3Bucket:              os.Getenv("S3_BUCKET"),
		S3Prefix:              strings.Trim(os.Getenv("S3_PREFIX"), "/"),
		AWSRegion:             getEnv("AWS_REGION", "ap-northeast-2"),
		StylesDir:             getEnv("STYLES_DIR", "assets/styles"),
		GeminiAPIKey:          os.Getenv("GEMINI_API_KEY"),
		GeminiModel:           strings.TrimSpace(os.Getenv("GEMINI_MODEL")),
		GeoIPDBPath:           os.Getenv("GEOIP_DB_PATH"),
		DefaultLocale:         getEnv("DEFAULT_LOCALE", "ko"),
		UploadLimitPerHour:    getEnvInt("UPLOAD_LIMIT_PER_HOUR", 20),
		SynthesisLimitPerHour: getEnvInt("SYNTHESIS_LIMIT_PER_HOUR", 0),
		CORSOrigins:           splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		SynthesisTimeout:      time.Second * time.Duration(getEnvInt("SYNTHESIS_TIMEOUT_SECONDS", 60)),
		HTTPReadTimeout:       time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:      time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 90)),
		HTTPIdleTimeout:       time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	switch cfg.StorageDriver {
	case "fs":
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("S3_BUCKET is required when STORAGE_DRIVER=s3")
		}
	default:
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	return cfg, nil
}

// ClientConfig configures the operator-side workflow engine. RequestTimeout
// bounds every backend call except synthesis, which only SynthesisTimeout
// bounds.
type ClientConfig struct {
	AppEnv                string
	APIBaseURL            string
	AssetBaseURL          string
	APIToken              string
	SynthesisTimeout      time.Duration
	RequestTimeout        time.Duration
	ForeignOriginalPolicy string
}

// LoadClientConfig reads the workflow engine settings. The asset base URL
// defaults to the API base URL, which is where the backend serves /images/.
func LoadClientConfig() (*ClientConfig, error) {
	cfg := &ClientConfig{
		AppEnv:                getEnv("APP_ENV", "development"),
		APIBaseURL:            strings.TrimRight(getEnv("HAIRFIT_API_URL", "http://127.0.0.1:8000"), "/"),
		AssetBaseURL:          strings.TrimRight(os.Getenv("HAIRFIT_ASSET_BASE_URL"), "/"),
		APIToken:              strings.TrimSpace(os.Getenv("HAIRFIT_API_TOKEN")),
		SynthesisTimeout:      time.Second * time.Duration(getEnvInt("SYNTHESIS_TIMEOUT_SECONDS", 60)),
		RequestTimeout:        time.Second * time.Duration(getEnvInt("HTTP_CLIENT_TIMEOUT_SECONDS", 30)),
		ForeignOriginalPolicy: strings.ToLower(getEnv("FOREIGN_ORIGINAL_POLICY", "reject")),
	}
	if cfg.AssetBaseURL == "" {
		cfg.AssetBaseURL = cfg.APIBaseURL
	}
	switch cfg.ForeignOriginalPolicy {
	case "reject", "keep":
	default:
		return nil, fmt.Errorf("unsupported FOREIGN_ORIGINAL_POLICY %q", cfg.ForeignOriginalPolicy)
	}
	if cfg.SynthesisTimeout <= 0 {
		return nil, fmt.Errorf("SYNTHESIS_TIMEOUT_SECONDS must be positive")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}
