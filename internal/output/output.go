// Package output serializes bridgectl command results to stdout in the
// format selected by --output.
package output

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Format is the current output format, set by the root command's
// --output flag.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Current is the active output format, defaulting to YAML.
var Current Format = FormatYAML

// Print serializes v to stdout in the current output format.
func Print(v any) error {
	switch Current {
	case FormatJSON:
		return PrintJSON(v)
	case FormatYAML:
		return PrintYAML(v)
	default:
		return fmt.Errorf("unsupported output format: %s", Current)
	}
}

// PrintJSON serializes v to stdout as indented JSON.
func PrintJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// PrintYAML serializes v to stdout as YAML.
func PrintYAML(v any) error {
	enc := yaml.NewEncoder(os.Stdout)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}
	return enc.Close()
}
