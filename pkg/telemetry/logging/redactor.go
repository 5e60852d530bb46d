package logging

import (
	"log/slog"
	"regexp"
	"strings"
)

// redactedValue replaces credential-shaped log values.
const redactedValue = "[REDACTED]"

// secretKeys are attribute names whose values are always masked.
var secretKeys = map[string]bool{
	"api_key":       true,
	"apikey":        true,
	"authorization": true,
	"token":         true,
	"secret":        true,
}

// secretPatterns match credential material that slips into free-form
// values: OpenAI-style keys, Anthropic-style keys, and bearer headers.
var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`sk-[A-Za-z0-9_-]{16,}`),
	regexp.MustCompile(`sk-ant-[A-Za-z0-9_-]{16,}`),
	regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._~+/-]+=*`),
}

// redactAttr is the slog ReplaceAttr hook masking secrets before they reach
// any handler output.
func redactAttr(_ []string, attr slog.Attr) slog.Attr {
	if secretKeys[strings.ToLower(attr.Key)] {
		return slog.String(attr.Key, redactedValue)
	}

	if attr.Value.Kind() == slog.KindString {
		value := attr.Value.String()
		for _, pattern := range secretPatterns {
			value = pattern.ReplaceAllString(value, redactedValue)
		}
		if value != attr.Value.String() {
			return slog.String(attr.Key, value)
		}
	}

	return attr
}
