// Package security provides input validation, log sanitization, and
// sensitive data masking.
package security

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxModelNameLength bounds model names accepted from any source.
const MaxModelNameLength = 256

// MaxURLLength bounds model URLs accepted from any source.
const MaxURLLength = 2048

// ValidationError describes a rejected input value.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ValidateModelName rejects names that are empty, oversized, not valid UTF-8,
// or carry control characters.
func ValidateModelName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return &ValidationError{Field: "modelName", Reason: "must not be empty"}
	}
	if len(trimmed) > MaxModelNameLength {
		return &ValidationError{Field: "modelName", Reason: fmt.Sprintf("exceeds %d characters", MaxModelNameLength)}
	}
	if !utf8.ValidString(trimmed) {
		return &ValidationError{Field: "modelName", Reason: "not valid UTF-8"}
	}
	for _, r := range trimmed {
		if unicode.IsControl(r) {
			return &ValidationError{Field: "modelName", Reason: "contains control characters"}
		}
	}
	return nil
}

// ValidateModelURL rejects URLs that are oversized or not http(s). An empty
// URL is allowed; the field is informational.
func ValidateModelURL(rawURL string) error {
	if rawURL == "" {
		return nil
	}
	if len(rawURL) > MaxURLLength {
		return &ValidationError{Field: "modelUrl", Reason: fmt.Sprintf("exceeds %d characters", MaxURLLength)}
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return &ValidationError{Field: "modelUrl", Reason: "not a valid URL"}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return &ValidationError{Field: "modelUrl", Reason: "scheme must be http or https"}
	}
	return nil
}

// SanitizeForLog strips control characters from a string so externally
// supplied values cannot forge log lines.
func SanitizeForLog(s string) string {
	return SanitizeForLogWithLength(s, 200)
}

// SanitizeForLogWithLength sanitizes and truncates a string for logging.
func SanitizeForLogWithLength(s string, maxLen int) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsControl(r) {
			b.WriteRune(' ')
			continue
		}
		b.WriteRune(r)
	}
	out := b.String()
	if maxLen > 0 && len(out) > maxLen {
		out = out[:maxLen] + "..."
	}
	return out
}

// sensitiveKeys are config and credential key fragments that must never be
// logged in the clear.
var sensitiveKeys = []string{
	"key", "token", "secret", "password", "credential", "auth",
}

// MaskSensitiveMap returns a copy of m with sensitive values masked.
func MaskSensitiveMap(m map[string]string) map[string]string {
	masked := make(map[string]string, len(m))
	for k, v := range m {
		if isSensitiveKey(k) && v != "" {
			masked[k] = Mask(v)
			continue
		}
		masked[k] = v
	}
	return masked
}

// Mask hides all but the last four characters of a value.
func Mask(v string) string {
	if len(v) <= 4 {
		return "****"
	}
	return "****" + v[len(v)-4:]
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, fragment := range sensitiveKeys {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}
