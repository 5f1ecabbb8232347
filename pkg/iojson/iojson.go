// Package iojson reads JSON input and writes JSON output for CLI commands.
package iojson

import (
	"encoding/json"
	"fmt"
	"io"
)

// Encode writes v to w as indented JSON. URLs keep their '&' unescaped.
func Encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json output: %w", err)
	}
	return nil
}
