package config

import "time"

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `json:"server"`
	Provider ProviderConfig `json:"provider"`
	Shell    ShellConfig    `json:"shell"`
	Logging  LoggingConfig  `json:"logging"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Host         string        `json:"host" validate:"required"`
	Port         int           `json:"port" validate:"min=1,max=65535"`
	ReadTimeout  time.Duration `json:"read_timeout" validate:"gt=0"`
	WriteTimeout time.Duration `json:"write_timeout" validate:"gt=0"`
	IdleTimeout  time.Duration `json:"idle_timeout" validate:"gt=0"`
	EnablePprof  bool          `json:"enable_pprof"`
}

// ProviderConfig describes the generative AI endpoint. APIKey may be empty at
// boot; requests then fail with a configuration error.
type ProviderConfig struct {
	APIKey      string        `json:"-"`
	BaseURL     string        `json:"base_url" validate:"required,url"`
	Model       string        `json:"model" validate:"required"`
	Timeout     time.Duration `json:"timeout" validate:"gt=0"`
	MaxAttempts int           `json:"max_attempts" validate:"min=1,max=5"`
}

// ShellConfig describes the offline shell cache
type ShellConfig struct {
	CacheName        string        `json:"cache_name" validate:"required"`
	Assets           []string      `json:"assets" validate:"required,min=1,dive,required"`
	TolerantInstall  bool          `json:"tolerant_install"`
	InstallTimeout   time.Duration `json:"install_timeout" validate:"gt=0"`
	InstallOnStartup bool          `json:"install_on_startup"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level       string `json:"level" validate:"oneof=DEBUG INFO WARN WARNING ERROR"`
	Format      string `json:"format" validate:"oneof=json text"`
	ServiceName string `json:"service_name"`
	Environment string `json:"environment"`
	Version     string `json:"version"`
}

// Provider defaults
const (
	DefaultBaseURL     = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel       = "gemini-2.0-flash"
	DefaultCacheName   = "medical-report-analyzer-v1"
	DefaultPort        = 8082
	DefaultMaxAttempts = 1
)

// DefaultShellAssets is the application shell precached on install
var DefaultShellAssets = []string{
	"/",
	"/index.html",
	"https://cdn.tailwindcss.com",
	"https://fonts.googleapis.com/css2?family=Inter:wght@400;500;600;700&display=swap",
	"https://cdn.jsdelivr.net/npm/marked/marked.min.js",
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         DefaultPort,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 90 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Provider: ProviderConfig{
			BaseURL:     DefaultBaseURL,
			Model:       DefaultModel,
			Timeout:     60 * time.Second,
			MaxAttempts: DefaultMaxAttempts,
		},
		Shell: ShellConfig{
			CacheName:        DefaultCacheName,
			Assets:           append([]string(nil), DefaultShellAssets...),
			InstallTimeout:   30 * time.Second,
			InstallOnStartup: true,
		},
		Logging: LoggingConfig{
			Level:       "INFO",
			Format:      "json",
			ServiceName: "report-analyzer",
			Environment: "development",
			Version:     "unknown",
		},
	}
}
