package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// AppConfig holds environment driven configuration values.
// Sensitive data should never have defaults inside code and must be provided via env files or the environment.
type AppConfig struct {
	AppPort            string
	JWTSecret          string
	JWTExpireHours     int
	Timezone           string
	RateLimitPerMinute int
	AllowedOrigins     []string
	FrontendURL        string
	// Signup throttling per client IP; zero disables each check
	SignupCooldownSeconds int
	SignupMaxPerIPPerDay  int
	// Gin framework configuration
	GinMode string
	GinPath string
	// Database
	DBDriver    string
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	// Google OAuth
	GoogleClientID     string
	GoogleClientSecret string
	OAuthRedirectBase  string
	// Redis for token revocation, oauth state and caching; empty host disables it
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	// Generative AI
	GeminiAPIKey     string
	GeminiModel      string
	AITimeoutSeconds int
	// Kafka activity stream; no brokers disables publishing
	KafkaBrokers []string
	KafkaTopic   string
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

// envBindings maps config keys onto the environment variable names operators already use.
var envBindings = map[string]string{
	"app.port":             "APP_PORT",
	"app.jwt_secret":       "JWT_SECRET",
	"app.jwt_expire_hours": "JWT_EXPIRE_HOURS",
	"app.timezone":         "APP_TIMEZONE",
	"app.rate_limit":       "RATE_LIMIT_PER_MINUTE",
	"app.signup_cooldown":  "SIGNUP_COOLDOWN_SECONDS",
	"app.signup_daily_max": "SIGNUP_MAX_PER_IP_PER_DAY",
	"app.allowed_origins":  "CORS_ALLOWED_ORIGINS",
	"app.frontend_url":     "FRONTEND_URL",
	"gin.mode":             "GIN_MODE",
	"gin.log_path":         "GIN_PATH",
	"database.driver":      "DB_DRIVER",
	"database.uri":         "DATABASE_URI",
	"database.host":        "DB_HOST",
	"database.port":        "DB_PORT",
	"database.user":        "DB_USER",
	"database.password":    "DB_PASSWORD",
	"database.name":        "DB_NAME",
	"oauth.google_id":      "GOOGLE_CLIENT_ID",
	"oauth.google_secret":  "GOOGLE_CLIENT_SECRET",
	"oauth.redirect_base":  "OAUTH_REDIRECT_BASE_URL",
	"redis.host":           "REDIS_HOST",
	"redis.port":           "REDIS_PORT",
	"redis.db":             "REDIS_DB",
	"redis.password":       "REDIS_PASSWORD",
	"ai.gemini_api_key":    "GEMINI_API_KEY",
	"ai.model":             "GEMINI_MODEL",
	"ai.timeout_seconds":   "AI_TIMEOUT_SECONDS",
	"kafka.brokers":        "KAFKA_BROKERS",
	"kafka.topic":          "KAFKA_ACTIVITY_TOPIC",
	"log.level":            "LOG_LEVEL",
	"log.path":             "LOG_PATH",
	"log.max_size_mb":      "LOG_MAX_SIZE_MB",
	"log.max_backups":      "LOG_MAX_BACKUPS",
	"log.max_age_days":     "LOG_MAX_AGE_DAYS",
	"log.compress":         "LOG_COMPRESS",
}

// Load reads configuration with precedence .env -> config/config.json -> defaults -> environment.
// An empty path means config/config.json relative to the working directory.
func Load(path string) (AppConfig, error) {
	// .env is optional; real environment variables always win over it
	_ = godotenv.Load()

	if path == "" {
		path = filepath.Join("config", "config.json")
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	applyDefaults(v)
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// a missing file is fine, broken JSON is not
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return AppConfig{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := AppConfig{
		AppPort:               v.GetString("app.port"),
		JWTSecret:             v.GetString("app.jwt_secret"),
		JWTExpireHours:        v.GetInt("app.jwt_expire_hours"),
		Timezone:              v.GetString("app.timezone"),
		RateLimitPerMinute:    v.GetInt("app.rate_limit"),
		SignupCooldownSeconds: v.GetInt("app.signup_cooldown"),
		SignupMaxPerIPPerDay:  v.GetInt("app.signup_daily_max"),
		AllowedOrigins:        readList(v, "app.allowed_origins"),
		FrontendURL:           strings.TrimRight(v.GetString("app.frontend_url"), "/"),
		GinMode:               v.GetString("gin.mode"),
		GinPath:               v.GetString("gin.log_path"),
		DBDriver:              strings.ToLower(v.GetString("database.driver")),
		DatabaseURI:           v.GetString("database.uri"),
		DBHost:                v.GetString("database.host"),
		DBPort:                v.GetString("database.port"),
		DBUser:                v.GetString("database.user"),
		DBPassword:            v.GetString("database.password"),
		DBName:                v.GetString("database.name"),
		GoogleClientID:        v.GetString("oauth.google_id"),
		GoogleClientSecret:    v.GetString("oauth.google_secret"),
		OAuthRedirectBase:     strings.TrimRight(v.GetString("oauth.redirect_base"), "/"),
		RedisHost:             v.GetString("redis.host"),
		RedisPort:             v.GetInt("redis.port"),
		RedisDB:               v.GetInt("redis.db"),
		RedisPassword:         v.GetString("redis.password"),
		GeminiAPIKey:          v.GetString("ai.gemini_api_key"),
		GeminiModel:           v.GetString("ai.model"),
		AITimeoutSeconds:      v.GetInt("ai.timeout_seconds"),
		KafkaBrokers:          readList(v, "kafka.brokers"),
		KafkaTopic:            v.GetString("kafka.topic"),
		LogLevel:              v.GetString("log.level"),
		LogPath:               v.GetString("log.path"),
		LogMaxSizeMB:          v.GetInt("log.max_size_mb"),
		LogMaxBackups:         v.GetInt("log.max_backups"),
		LogMaxAgeDays:         v.GetInt("log.max_age_days"),
		LogCompress:           v.GetBool("log.compress"),
	}

	if cfg.JWTSecret == "" {
		return AppConfig{}, errors.New("JWT_SECRET must be set in environment variables")
	}
	if _, err := cfg.Location(); err != nil {
		return AppConfig{}, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	return cfg, nil
}

// MustLoad is Load for process boot.
func MustLoad(path string) AppConfig {
	cfg, err := Load(path)
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

// Location resolves the timezone that defines a calendar day for streaks and weekly buckets.
func (c AppConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "UTC") {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}

// TokenTTL is the lifetime of issued JWTs.
func (c AppConfig) TokenTTL() time.Duration {
	return time.Duration(c.JWTExpireHours) * time.Hour
}

// SignupCooldown is the minimum gap between signup attempts from one IP.
func (c AppConfig) SignupCooldown() time.Duration {
	return time.Duration(c.SignupCooldownSeconds) * time.Second
}

// AITimeout bounds one call to the generative AI provider.
func (c AppConfig) AITimeout() time.Duration {
	return time.Duration(c.AITimeoutSeconds) * time.Second
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(v *viper.Viper) {
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.jwt_expire_hours", 72)
	v.SetDefault("app.timezone", "UTC")
	v.SetDefault("app.rate_limit", 60)
	v.SetDefault("app.signup_cooldown", 5)
	v.SetDefault("app.signup_daily_max", 20)
	v.SetDefault("app.allowed_origins", []string{"*"})
	v.SetDefault("gin.mode", "release")
	v.SetDefault("gin.log_path", "logs/go_gin.log")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", "3306")
	v.SetDefault("database.user", "root")
	v.SetDefault("database.name", "focusdesk")
	v.SetDefault("oauth.redirect_base", "http://localhost:8080")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.timeout_seconds", 30)
	v.SetDefault("kafka.topic", "focusdesk.activity")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 7)
}

// readList accepts either a JSON array or a comma separated string (the env form).
func readList(v *viper.Viper, key string) []string {
	var raw []string
	switch t := v.Get(key).(type) {
	case string:
		raw = strings.Split(t, ",")
	default:
		raw = v.GetStringSlice(key)
	}
	items := make([]string, 0, len(raw))
	for _, item := range raw {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
