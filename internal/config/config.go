package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// AppConfig 聚合运行时配置，尽量通过环境变量注入，避免硬编码。
type AppConfig struct {
	HTTPAddr string
	DBPath   string

	RedisAddr string
	RedisDB   int

	// JWT 会话凭证：对称密钥 + 有效期
	JWTSecret string
	TokenTTL  time.Duration

	// OTP 挑战：有效期与验证次数上限
	OTPTTL         time.Duration
	OTPMaxAttempts int

	// request-otp 接口限流（按手机号滑动窗口）
	OTPRateLimit  int
	OTPRateWindow time.Duration

	// 批量导入后台队列容量
	ImportQueueSize int

	// 导入终态事件投递 Kafka（可选，默认关闭）
	EventsEnabled bool
	KafkaBrokers  []string
	KafkaTopic    string
}

// Load 读取并校验配置，缺失时使用默认值。
func Load() (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		DBPath:          getEnv("DB_PATH", "dinehub.db"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:         0,
		JWTSecret:       getEnv("JWT_SECRET", "dev-jwt-secret"),
		TokenTTL:        24 * time.Hour,
		OTPTTL:          5 * time.Minute,
		OTPMaxAttempts:  3,
		OTPRateLimit:    5,
		OTPRateWindow:   time.Minute,
		ImportQueueSize: 64,
		EventsEnabled:   getEnv("EVENTS_ENABLED", "false") == "true",
		KafkaBrokers:    splitCSV(getEnv("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:      getEnv("KAFKA_TOPIC", "dinehub-import-events"),
	}

	redisDB, err := getEnvInt("REDIS_DB", cfg.RedisDB)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	cfg.RedisDB = redisDB

	tokenTTLHour, err := getEnvInt("TOKEN_TTL_HOUR", int(cfg.TokenTTL.Hours()))
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid TOKEN_TTL_HOUR: %w", err)
	}
	if tokenTTLHour <= 0 {
		return AppConfig{}, fmt.Errorf("TOKEN_TTL_HOUR must be > 0")
	}
	cfg.TokenTTL = time.Duration(tokenTTLHour) * time.Hour

	otpTTLMin, err := getEnvInt("OTP_TTL_MIN", int(cfg.OTPTTL.Minutes()))
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid OTP_TTL_MIN: %w", err)
	}
	if otpTTLMin <= 0 {
		return AppConfig{}, fmt.Errorf("OTP_TTL_MIN must be > 0")
	}
	cfg.OTPTTL = time.Duration(otpTTLMin) * time.Minute

	maxAttempts, err := getEnvInt("OTP_MAX_ATTEMPTS", cfg.OTPMaxAttempts)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid OTP_MAX_ATTEMPTS: %w", err)
	}
	if maxAttempts <= 0 {
		return AppConfig{}, fmt.Errorf("OTP_MAX_ATTEMPTS must be > 0")
	}
	cfg.OTPMaxAttempts = maxAttempts

	rateLimit, err := getEnvInt("OTP_RATE_LIMIT", cfg.OTPRateLimit)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid OTP_RATE_LIMIT: %w", err)
	}
	if rateLimit <= 0 {
		return AppConfig{}, fmt.Errorf("OTP_RATE_LIMIT must be > 0")
	}
	cfg.OTPRateLimit = rateLimit

	rateWindowSec, err := getEnvInt("OTP_RATE_WINDOW_SEC", int(cfg.OTPRateWindow.Seconds()))
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid OTP_RATE_WINDOW_SEC: %w", err)
	}
	if rateWindowSec <= 0 {
		return AppConfig{}, fmt.Errorf("OTP_RATE_WINDOW_SEC must be > 0")
	}
	cfg.OTPRateWindow = time.Duration(rateWindowSec) * time.Second

	queueSize, err := getEnvInt("IMPORT_QUEUE_SIZE", cfg.ImportQueueSize)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid IMPORT_QUEUE_SIZE: %w", err)
	}
	if queueSize <= 0 {
		return AppConfig{}, fmt.Errorf("IMPORT_QUEUE_SIZE must be > 0")
	}
	cfg.ImportQueueSize = queueSize

	if cfg.JWTSecret == "" {
		return AppConfig{}, fmt.Errorf("JWT_SECRET must not be empty")
	}
	if cfg.EventsEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return AppConfig{}, fmt.Errorf("KAFKA_BROKERS must not be empty when EVENTS_ENABLED=true")
		}
		if cfg.KafkaTopic == "" {
			return AppConfig{}, fmt.Errorf("KAFKA_TOPIC must not be empty when EVENTS_ENABLED=true")
		}
	}

	return cfg, nil
}

// getEnv 读取字符串环境变量，若为空则返回默认值。
func getEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

// getEnvInt 读取整数环境变量，若为空则返回默认值。
func getEnvInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

// splitCSV 将逗号分隔字符串解析为字符串切片。
func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
