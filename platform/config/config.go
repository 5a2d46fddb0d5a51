// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// AuthServiceConfig provides settings needed by the auth service.
type AuthServiceConfig interface {
	JWTConfig
	GetJWTRefreshSecret() string
	GetAccessTokenTTL() time.Duration
	GetRefreshTokenTTL() time.Duration
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// SchedulerConfig provides settings for the asynq background job system.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetCallSyncCron() string
	GetCRMRefreshCron() string
}

// StorageConfig provides settings for MinIO S3-compatible storage.
type StorageConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	GetMinioBucketChecklistPhotos() string
	GetMinioBucketCallRecordings() string
	IsMinIOEnabled() bool
}

// MailConfig provides settings for SMTP email sending.
type MailConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
	IsEmailEnabled() bool
}

// IntegrationsConfig provides settings for the provider integrations module.
type IntegrationsConfig interface {
	GetIntegrationSecretKey() []byte
}

// CallSyncConfig provides settings for the RingCentral call-log sync.
type CallSyncConfig interface {
	GetRingCentralBaseURL() string
	GetSyncMaxPages() int
	GetSyncPageSize() int
	GetDefaultLookbackHours() int
}

// CRMConfig provides settings for the HouseCall Pro client.
type CRMConfig interface {
	GetHousecallBaseURL() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                        string
	HTTPAddr                   string
	DatabaseURL                string
	JWTAccessSecret            string
	JWTRefreshSecret           string
	AccessTokenTTL             time.Duration
	RefreshTokenTTL            time.Duration
	CORSAllowAll               bool
	CORSOrigins                []string
	CORSAllowCreds             bool
	IntegrationSecretKey       []byte
	RedisURL                   string
	RedisTLSInsecure           bool
	AsynqQueueName             string
	AsynqConcurrency           int
	CallSyncCron               string
	CRMRefreshCron             string
	MinIOEndpoint              string
	MinIOAccessKey             string
	MinIOSecretKey             string
	MinIOUseSSL                bool
	MinIOMaxFileSize           int64
	MinioBucketChecklistPhotos string
	MinioBucketCallRecordings  string
	SMTPHost                   string
	SMTPPort                   int
	SMTPUsername               string
	SMTPPassword               string
	EmailEnabled               bool
	EmailFromName              string
	EmailFromAddress           string
	RingCentralBaseURL         string
	HousecallBaseURL           string
	SyncMaxPages               int
	SyncPageSize               int
	DefaultLookbackHours       int
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// AuthServiceConfig implementation
func (c *Config) GetJWTRefreshSecret() string       { return c.JWTRefreshSecret }
func (c *Config) GetAccessTokenTTL() time.Duration  { return c.AccessTokenTTL }
func (c *Config) GetRefreshTokenTTL() time.Duration { return c.RefreshTokenTTL }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string        { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool  { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string  { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int   { return c.AsynqConcurrency }
func (c *Config) GetCallSyncCron() string    { return c.CallSyncCron }
func (c *Config) GetCRMRefreshCron() string  { return c.CRMRefreshCron }

// StorageConfig implementation
func (c *Config) GetMinIOEndpoint() string   { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string  { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string  { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool       { return c.MinIOUseSSL }
func (c *Config) GetMinIOMaxFileSize() int64 { return c.MinIOMaxFileSize }
func (c *Config) GetMinioBucketChecklistPhotos() string {
	return c.MinioBucketChecklistPhotos
}
func (c *Config) GetMinioBucketCallRecordings() string {
	return c.MinioBucketCallRecordings
}
func (c *Config) IsMinIOEnabled() bool { return c.MinIOEndpoint != "" }

// MailConfig implementation
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string    { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }
func (c *Config) IsEmailEnabled() bool        { return c.EmailEnabled && c.SMTPHost != "" }

// IntegrationsConfig implementation
func (c *Config) GetIntegrationSecretKey() []byte { return c.IntegrationSecretKey }

// CallSyncConfig implementation
func (c *Config) GetRingCentralBaseURL() string { return c.RingCentralBaseURL }
func (c *Config) GetSyncMaxPages() int          { return c.SyncMaxPages }
func (c *Config) GetSyncPageSize() int          { return c.SyncPageSize }
func (c *Config) GetDefaultLookbackHours() int  { return c.DefaultLookbackHours }

// CRMConfig implementation
func (c *Config) GetHousecallBaseURL() string { return c.HousecallBaseURL }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	secretKey, err := hex.DecodeString(getEnv("INTEGRATION_SECRET_KEY", ""))
	if err != nil {
		return nil, fmt.Errorf("INTEGRATION_SECRET_KEY must be hex-encoded: %w", err)
	}

	cfg := &Config{
		Env:                        getEnv("APP_ENV", "development"),
		HTTPAddr:                   getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:                getEnv("DATABASE_URL", ""),
		JWTAccessSecret:            getEnv("JWT_ACCESS_SECRET", ""),
		JWTRefreshSecret:           getEnv("JWT_REFRESH_SECRET", ""),
		AccessTokenTTL:             mustDuration(getEnv("JWT_ACCESS_TTL", "15m")),
		RefreshTokenTTL:            mustDuration(getEnv("JWT_REFRESH_TTL", "720h")),
		CORSAllowAll:               corsAllowAll,
		CORSOrigins:                corsOrigins,
		CORSAllowCreds:             strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		IntegrationSecretKey:       secretKey,
		RedisURL:                   getEnv("REDIS_URL", ""),
		RedisTLSInsecure:           strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:             getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:           mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
		CallSyncCron:               getEnv("CALL_SYNC_CRON", "*/30 * * * *"),
		CRMRefreshCron:             getEnv("CRM_REFRESH_CRON", "15 */6 * * *"),
		MinIOEndpoint:              getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:             getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:             getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:                strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinIOMaxFileSize:           mustInt64(getEnv("MINIO_MAX_FILE_SIZE", "52428800")),
		MinioBucketChecklistPhotos: getEnv("MINIO_BUCKET_CHECKLIST_PHOTOS", "checklist-photos"),
		MinioBucketCallRecordings:  getEnv("MINIO_BUCKET_CALL_RECORDINGS", "call-recordings"),
		SMTPHost:                   getEnv("SMTP_HOST", ""),
		SMTPPort:                   mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:               getEnv("SMTP_USERNAME", ""),
		SMTPPassword:               getEnv("SMTP_PASSWORD", ""),
		EmailEnabled:               strings.EqualFold(getEnv("EMAIL_ENABLED", "true"), "true"),
		EmailFromName:              getEnv("EMAIL_FROM_NAME", "FieldOps"),
		EmailFromAddress:           getEnv("EMAIL_FROM_ADDRESS", ""),
		RingCentralBaseURL:         getEnv("RINGCENTRAL_BASE_URL", "https://platform.ringcentral.com"),
		HousecallBaseURL:           getEnv("HOUSECALL_BASE_URL", "https://api.housecallpro.com"),
		SyncMaxPages:               mustInt(getEnv("SYNC_MAX_PAGES", "20")),
		SyncPageSize:               mustInt(getEnv("SYNC_PAGE_SIZE", "250")),
		DefaultLookbackHours:       mustInt(getEnv("SYNC_DEFAULT_LOOKBACK_HOURS", "24")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" || cfg.JWTRefreshSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET are required")
	}
	if len(cfg.IntegrationSecretKey) != 0 && len(cfg.IntegrationSecretKey) != 32 {
		return nil, fmt.Errorf("INTEGRATION_SECRET_KEY must decode to 32 bytes")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
