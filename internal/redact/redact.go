// Package redact scrubs sensitive information from strings before they reach
// logs or error responses: connection strings, credentials, tokens, emails,
// SQL fragments and filesystem paths.
package redact

import "regexp"

// pattern pairs a detector with its replacement placeholder.
type pattern struct {
	re          *regexp.Regexp
	placeholder string
}

var patterns = []pattern{
	// Database connection strings with inline credentials
	{
		regexp.MustCompile(`(?i)(postgres|postgresql|mysql)://[^@\s]+@`),
		"[REDACTED_CREDENTIAL]",
	},
	// Password assignments in messages
	{
		regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]['"]?)[^'"&\s]{3,}`),
		"[REDACTED_CREDENTIAL]",
	},
	// API keys, secrets and bearer tokens
	{
		regexp.MustCompile(`(?i)(api[_-]?key|token|secret|auth)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`),
		"[REDACTED_KEY]",
	},
	// Three-part base64url JWT tokens
	{
		regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`),
		"[REDACTED_JWT]",
	},
	// Email addresses
	{
		regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		"[REDACTED_EMAIL]",
	},
	// SQL fragments that could leak schema details
	{
		regexp.MustCompile(
			`(?i)(SELECT|INSERT|UPDATE|DELETE|CREATE|ALTER|DROP)[\s\w,*()]+(?:FROM|INTO|SET|TABLE)(?:[\s\w,*()='"]+)?`,
		),
		"[REDACTED_SQL]",
	},
	// Filesystem paths
	{
		regexp.MustCompile(`(/[\w.-]+){2,}`),
		"[REDACTED_PATH]",
	},
}

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, p := range patterns {
		result = p.re.ReplaceAllString(result, p.placeholder)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
