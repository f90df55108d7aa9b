package config

import (
	"fmt"
	"strings"

	"github.com/aashari/go-report-analyzer/internal/utils"
)

// Load reads .env and the process environment into a validated Config.
// The provider credential is captured here once and injected downstream.
func Load() (*Config, error) {
	if err := LoadEnvFromMultiplePaths(); err != nil {
		return nil, err
	}

	cfg := FromEnv()
	if apiErr := cfg.Validate(); apiErr != nil {
		return nil, apiErr
	}
	return cfg, nil
}

// FromEnv overlays environment variables on DefaultConfig without validating
func FromEnv() *Config {
	cfg := DefaultConfig()

	cfg.Server.Host = utils.GetEnvString("HOST", cfg.Server.Host)
	cfg.Server.Port = utils.GetEnvPort("PORT", cfg.Server.Port)
	cfg.Server.ReadTimeout = utils.GetEnvDuration("SERVER_READ_TIMEOUT", cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = utils.GetEnvDuration("SERVER_WRITE_TIMEOUT", cfg.Server.WriteTimeout)
	cfg.Server.IdleTimeout = utils.GetEnvDuration("SERVER_IDLE_TIMEOUT", cfg.Server.IdleTimeout)
	cfg.Server.EnablePprof = utils.GetEnvBool("ENABLE_PPROF", cfg.Server.EnablePprof)

	cfg.Provider.APIKey = utils.GetEnvString("GEMINI_API_KEY", "")
	cfg.Provider.BaseURL = utils.GetEnvString("GEMINI_BASE_URL", cfg.Provider.BaseURL)
	cfg.Provider.Model = utils.GetEnvString("GEMINI_MODEL", cfg.Provider.Model)
	cfg.Provider.Timeout = utils.GetEnvDuration("PROVIDER_TIMEOUT", cfg.Provider.Timeout)
	cfg.Provider.MaxAttempts = utils.GetEnvInt("PROVIDER_MAX_ATTEMPTS", cfg.Provider.MaxAttempts)

	cfg.Shell.CacheName = utils.GetEnvString("SHELL_CACHE_NAME", cfg.Shell.CacheName)
	cfg.Shell.Assets = utils.GetEnvList("SHELL_ASSETS", cfg.Shell.Assets)
	cfg.Shell.TolerantInstall = utils.GetEnvBool("SHELL_TOLERATE_PARTIAL", cfg.Shell.TolerantInstall)
	cfg.Shell.InstallTimeout = utils.GetEnvDuration("SHELL_INSTALL_TIMEOUT", cfg.Shell.InstallTimeout)
	cfg.Shell.InstallOnStartup = utils.GetEnvBool("SHELL_INSTALL_ON_STARTUP", cfg.Shell.InstallOnStartup)

	cfg.Logging.Level = strings.ToUpper(utils.GetEnvString("LOG_LEVEL", cfg.Logging.Level))
	cfg.Logging.Format = utils.GetEnvString("LOG_FORMAT", cfg.Logging.Format)
	cfg.Logging.ServiceName = utils.GetEnvString("SERVICE_NAME", cfg.Logging.ServiceName)
	cfg.Logging.Environment = utils.GetEnvString("ENVIRONMENT", cfg.Logging.Environment)
	cfg.Logging.Version = utils.GetEnvString("VERSION", cfg.Logging.Version)

	return cfg
}

// Address returns host:port for http.Server
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// HasCredential reports whether a provider API key was supplied
func (c *Config) HasCredential() bool {
	return c.Provider.APIKey != ""
}

// ToMap converts the config to a map for logging purposes, masking the key
func (c *Config) ToMap() map[string]interface{} {
	apiKey := ""
	if c.HasCredential() {
		apiKey = utils.MaskSecret(c.Provider.APIKey)
	}
	return map[string]interface{}{
		"address":              c.Address(),
		"provider_base_url":    c.Provider.BaseURL,
		"provider_model":       c.Provider.Model,
		"provider_timeout":     c.Provider.Timeout.String(),
		"provider_max_attempt": c.Provider.MaxAttempts,
		"provider_api_key":     apiKey,
		"shell_cache_name":     c.Shell.CacheName,
		"shell_assets":         c.Shell.Assets,
		"shell_tolerant":       c.Shell.TolerantInstall,
		"log_level":            c.Logging.Level,
		"environment":          c.Logging.Environment,
		"version":              c.Logging.Version,
	}
}
