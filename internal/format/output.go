// Package format encodes CLI payloads as json, edn or human-readable text.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

type Format string

const (
	JSON Format = "json"
	EDN  Format = "edn"
	Text Format = "text"
)

// Parse maps a --format value onto a Format; empty means json.
func Parse(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return JSON, nil
	case JSON, EDN, Text:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format: %s (expected json|edn|text)", s)
	}
}

// TextRenderer is implemented by payloads that have a terminal rendering.
type TextRenderer interface {
	RenderText(w io.Writer) error
}

// Write writes v in format f. Text output uses v's TextRenderer when it
// has one and falls back to indented JSON otherwise.
func Write(w io.Writer, v any, f Format, pretty bool) error {
	switch f {
	case "", JSON:
		return WriteJSON(w, v, pretty)
	case EDN:
		return WriteEDN(w, v, pretty)
	case Text:
		if r, ok := v.(TextRenderer); ok {
			return r.RenderText(w)
		}
		return WriteJSON(w, v, true)
	default:
		return fmt.Errorf("unknown format: %s", f)
	}
}

// WriteJSON writes strict JSON followed by a newline.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
