package utils

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

const base64KeepChars = 50

var (
	base64Regex  = regexp.MustCompile(`^[A-Za-z0-9+/]{100,}={0,2}$`)
	dataURLRegex = regexp.MustCompile(`(?i)(data:[^;]+;base64,)([A-Za-z0-9+/]{100,}={0,2})`)
)

// TruncateBase64InData walks decoded JSON data and shortens every base64
// payload so uploaded images never reach the log output in full.
func TruncateBase64InData(data interface{}) interface{} {
	switch v := data.(type) {
	case string:
		return truncateBase64String(v)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, value := range v {
			out[key] = TruncateBase64InData(value)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, value := range v {
			out[i] = TruncateBase64InData(value)
		}
		return out
	case []byte:
		return truncateBase64String(string(v))
	default:
		return data
	}
}

func truncateBase64String(s string) string {
	if base64Regex.MatchString(s) {
		return shorten(s)
	}
	return dataURLRegex.ReplaceAllStringFunc(s, func(match string) string {
		parts := dataURLRegex.FindStringSubmatch(match)
		if len(parts) != 3 {
			return match
		}
		return parts[1] + shorten(parts[2])
	})
}

func shorten(payload string) string {
	if len(payload) <= 2*base64KeepChars {
		return payload
	}
	return payload[:base64KeepChars] +
		fmt.Sprintf("...[%d chars truncated]...", len(payload)-2*base64KeepChars) +
		payload[len(payload)-base64KeepChars:]
}

// MaskURLCredential hides the value of the "key" query parameter, which is
// where the provider credential travels.
func MaskURLCredential(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	if q.Get("key") == "" {
		return rawURL
	}
	q.Set("key", MaskSecret(q.Get("key")))
	u.RawQuery = q.Encode()
	return u.String()
}

// MaskSecret keeps the first four characters of a secret
func MaskSecret(secret string) string {
	if len(secret) <= 4 {
		return "***"
	}
	return secret[:4] + strings.Repeat("*", 8)
}

var sensitiveHeaders = map[string]bool{
	"authorization":  true,
	"cookie":         true,
	"set-cookie":     true,
	"x-goog-api-key": true,
	"x-api-key":      true,
}

// SanitizeHeaders flattens headers for logging and masks credentials
func SanitizeHeaders(headers map[string][]string) map[string]string {
	out := make(map[string]string, len(headers))
	for key, values := range headers {
		value := strings.Join(values, ", ")
		if sensitiveHeaders[strings.ToLower(key)] {
			value = MaskSecret(value)
		}
		out[key] = value
	}
	return out
}
