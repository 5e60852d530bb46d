package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"nimbus-hq/callisto/pkg/providers"
)

// OutputFormat selects how command results are rendered.
type OutputFormat string

const (
	// FormatText renders human-readable plain text (default).
	FormatText OutputFormat = "text"
	// FormatJSON renders machine-readable JSON.
	FormatJSON OutputFormat = "json"
)

// ParseFormat validates a --format flag value.
func ParseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case FormatText, FormatJSON:
		return OutputFormat(s), nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected text or json)", s)
	}
}

// WriteJSON renders v as indented JSON.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteHealthSummary renders per-provider health reports, sorted by provider
// name so output is stable across runs.
func WriteHealthSummary(w io.Writer, format OutputFormat, reports map[string]providers.HealthReport) error {
	if format == FormatJSON {
		return WriteJSON(w, reports)
	}

	names := make([]string, 0, len(reports))
	for name := range reports {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		report := reports[name]
		fmt.Fprintf(w, "%-12s %-10s %5dms", name, report.Status, report.LatencyMS)
		if !report.CredentialsConfigured {
			fmt.Fprint(w, "  (no credentials)")
		}
		if report.Error != "" {
			fmt.Fprintf(w, "  %s", report.Error)
		}
		fmt.Fprintln(w)
	}
	return nil
}

// WriteCompletion renders a completion envelope. Text format prints the
// assistant content only; JSON format prints the full envelope.
func WriteCompletion(w io.Writer, format OutputFormat, env map[string]interface{}) error {
	if format == FormatJSON {
		return WriteJSON(w, env)
	}

	choices, ok := env["choices"].([]map[string]interface{})
	if !ok || len(choices) == 0 {
		return fmt.Errorf("completion envelope has no choices")
	}
	message, ok := choices[0]["message"].(map[string]interface{})
	if !ok {
		return fmt.Errorf("completion envelope has no message")
	}
	content, _ := message["content"].(string)
	fmt.Fprintln(w, content)
	return nil
}
