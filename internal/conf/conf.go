package conf

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/DevRickLin/reject-console/internal/biz/domain"
)

const (
	defaultMandrillBaseURL = "https://mandrillapp.com/api/1.0"
	defaultMandrillTimeout = 30
	defaultHistoryLimit    = 10
	defaultAPIAddr         = "127.0.0.1:9876"
)

// Config represents application configuration
type Config struct {
	// Feishu configuration (chat transport)
	Feishu FeishuConfig

	// Mandrill configuration (email provider)
	Mandrill MandrillConfig

	// Access policy configuration
	Access AccessConfig

	// Ops API configuration
	API APIConfig

	// Logging configuration
	Logging LoggingConfig

	// Scheduled reject list report
	Report ReportConfig

	// Number of send history entries merged into a single check, 0 disables
	HistoryLimit int

	// Reply texts (loaded from YAML)
	Messages *MessagesConfig
}

// FeishuConfig contains Feishu configuration
type FeishuConfig struct {
	AppID     string
	AppSecret string
}

// MandrillConfig contains Mandrill configuration
type MandrillConfig struct {
	APIKey         string
	BaseURL        string
	TimeoutSeconds int
}

// Timeout returns the HTTP timeout for provider calls
func (c MandrillConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// AccessConfig contains the allowlist configuration
type AccessConfig struct {
	AllowedGroupID string
	AllowedUserIDs []string
}

// APIConfig contains ops API configuration
type APIConfig struct {
	Addr string // empty disables the API server
}

// ReportConfig contains the scheduled report configuration
type ReportConfig struct {
	ChatID   string
	Interval time.Duration // zero disables the report
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	// Mandrill timeout
	timeoutSeconds := defaultMandrillTimeout
	if val := os.Getenv("MANDRILL_TIMEOUT_SECONDS"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			timeoutSeconds = parsed
		}
	}

	baseURL := os.Getenv("MANDRILL_BASE_URL")
	if baseURL == "" {
		baseURL = defaultMandrillBaseURL
	}

	// Send history merged into single checks
	historyLimit := defaultHistoryLimit
	if val := os.Getenv("HISTORY_LIMIT"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed >= 0 {
			historyLimit = parsed
		}
	}

	// Ops API address; set API_ADDR to an empty value to disable
	apiAddr, ok := os.LookupEnv("API_ADDR")
	if !ok {
		apiAddr = defaultAPIAddr
	}

	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "console"
	}

	// Scheduled report, e.g. REPORT_INTERVAL=24h
	var reportInterval time.Duration
	if val := os.Getenv("REPORT_INTERVAL"); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil && parsed > 0 {
			reportInterval = parsed
		}
	}

	// Load reply texts from YAML
	messagesConfig, _ := LoadMessagesConfig(os.Getenv("MESSAGES_CONFIG_PATH"))

	return &Config{
		Feishu: FeishuConfig{
			AppID:     os.Getenv("FEISHU_APP_ID"),
			AppSecret: os.Getenv("FEISHU_APP_SECRET"),
		},
		Mandrill: MandrillConfig{
			APIKey:         os.Getenv("MANDRILL_API_KEY"),
			BaseURL:        strings.TrimRight(baseURL, "/"),
			TimeoutSeconds: timeoutSeconds,
		},
		Access: AccessConfig{
			AllowedGroupID: strings.TrimSpace(os.Getenv("ALLOWED_GROUP_ID")),
			AllowedUserIDs: splitList(os.Getenv("ALLOWED_USER_IDS")),
		},
		API: APIConfig{
			Addr: apiAddr,
		},
		Logging: LoggingConfig{
			Level:  os.Getenv("LOG_LEVEL"),
			Format: logFormat,
		},
		Report: ReportConfig{
			ChatID:   strings.TrimSpace(os.Getenv("REPORT_CHAT_ID")),
			Interval: reportInterval,
		},
		HistoryLimit: historyLimit,
		Messages:     messagesConfig,
	}
}

// ToAccessPolicy converts to the domain access policy
func (c *AccessConfig) ToAccessPolicy() domain.AccessPolicy {
	return domain.NewAccessPolicy(c.AllowedGroupID, c.AllowedUserIDs)
}

// Validate validates the configuration needed by the chat bot
func (c *Config) Validate() error {
	if c.Feishu.AppID == "" || c.Feishu.AppSecret == "" {
		return &ConfigError{Field: "FEISHU_APP_ID/FEISHU_APP_SECRET", Message: "required"}
	}
	return c.ValidateProvider()
}

// ValidateProvider validates the configuration needed to reach the provider
func (c *Config) ValidateProvider() error {
	if c.Mandrill.APIKey == "" {
		return &ConfigError{Field: "MANDRILL_API_KEY", Message: "required"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}

func splitList(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
