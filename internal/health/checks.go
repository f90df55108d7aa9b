package health

import (
	"context"
	"time"
)

// CredentialSource reports whether the provider key is configured
type CredentialSource interface {
	HasCredential() bool
}

// ShellCacheSource exposes the shell cache state
type ShellCacheSource interface {
	Name() string
	Installed() bool
	Len() int
	LastError() string
}

// Check names reported under "services"
const (
	CheckProviderCredential = "provider_credential"
	CheckShellCache         = "shell_cache"
)

// CreateStandardHealthChecks registers the provider credential and shell cache checks.
// Neither is critical: the service still answers without them.
func CreateStandardHealthChecks(provider CredentialSource, shell ShellCacheSource) *HealthChecker {
	hc := NewHealthChecker()

	hc.RegisterCheck(&HealthCheck{
		Name:        CheckProviderCredential,
		Description: "Gemini API key configured",
		Timeout:     time.Second,
		Check: func(ctx context.Context) HealthCheckResult {
			if provider == nil || !provider.HasCredential() {
				return HealthCheckResult{Status: StatusUnhealthy, Message: "API key is not configured"}
			}
			return HealthCheckResult{Status: StatusHealthy, Message: "API key is configured"}
		},
	})

	hc.RegisterCheck(&HealthCheck{
		Name:        CheckShellCache,
		Description: "Offline shell cache installed",
		Timeout:     time.Second,
		Check: func(ctx context.Context) HealthCheckResult {
			if shell == nil {
				return HealthCheckResult{Status: StatusUnhealthy, Message: "shell cache is not configured"}
			}
			details := map[string]interface{}{
				"cache_name": shell.Name(),
				"entries":    shell.Len(),
			}
			if !shell.Installed() {
				if lastErr := shell.LastError(); lastErr != "" {
					details["last_error"] = lastErr
				}
				return HealthCheckResult{Status: StatusDegraded, Message: "shell cache is not installed", Details: details}
			}
			return HealthCheckResult{Status: StatusHealthy, Message: "shell cache is installed", Details: details}
		},
	})

	return hc
}

// ServiceState maps a check result onto the up/down vocabulary of /health
func ServiceState(result HealthCheckResult) string {
	if result.Status == StatusHealthy {
		return "up"
	}
	return "down"
}
