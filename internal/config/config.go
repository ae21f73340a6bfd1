// internal/config/config.go
// 設定模組 - 載入環境變數

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// 參數來源
const (
	ParamSourceSSM = "ssm"
	ParamSourceEnv = "env"
)

// Config 應用程式設定
type Config struct {
	// 環境
	Env   string
	Debug bool

	// 參數來源 (ssm 或 env)
	ParamSource string
	ParamPath   string

	// SendGrid (僅 env 來源使用)
	SendGridAPIKey string
	SendGridFrom   string
	DryRun         bool

	// 樣板覆寫 (空白表示使用預設樣板)
	SubjectTemplate string
	BodyTemplate    string

	// KeyDB (空白表示停用狀態快取)
	KeyDBURL       string
	KeyDBPassword  string
	KeyDBStatusTTL time.Duration
}

// Load 載入設定
func Load() *Config {
	// 嘗試載入 .env 檔案 (開發環境)
	_ = godotenv.Load()

	_, debug := os.LookupEnv("DEBUG")

	return &Config{
		// 環境
		Env:   getEnv("APP_ENV", "production"),
		Debug: debug,

		// 參數來源
		ParamSource: strings.ToLower(getEnv("PARAM_SOURCE", ParamSourceSSM)),
		ParamPath:   getEnv("PARAM_PATH", "/pathway-notify"),

		// SendGrid
		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		SendGridFrom:   getEnv("SENDGRID_FROM", ""),
		DryRun:         getEnvAsBool("DRY_RUN", false),

		// 樣板
		SubjectTemplate: getEnv("SUBJECT_TEMPLATE", ""),
		BodyTemplate:    getEnv("BODY_TEMPLATE", ""),

		// KeyDB
		KeyDBURL:       getEnv("KEYDB_URL", ""),
		KeyDBPassword:  getEnv("KEYDB_PASSWORD", ""),
		KeyDBStatusTTL: time.Duration(getEnvAsInt("KEYDB_STATUS_TTL_DAYS", 14)) * 24 * time.Hour,
	}
}

// StatusCacheEnabled 是否啟用狀態快取
func (c *Config) StatusCacheEnabled() bool {
	return c.KeyDBURL != ""
}

// getEnv 取得環境變數，若不存在則回傳預設值
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt 取得環境變數並轉換為整數
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool 取得環境變數並轉換為布林值
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}
