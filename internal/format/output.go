package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

const (
	JSON = "json"
	EDN  = "edn"
)

// Check validates a --format value. Empty means JSON.
func Check(format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", JSON, EDN:
		return nil
	default:
		return fmt.Errorf("unknown format: %s (want json or edn)", format)
	}
}

// Write writes v as JSON (default) or EDN.
func Write(w io.Writer, v any, format string, pretty bool) error {
	if err := Check(format); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case EDN:
		return WriteEDN(w, v, pretty)
	default:
		return WriteJSON(w, v, pretty)
	}
}

// WriteJSON writes strict JSON, one document per call.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))
	return err
}
