// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// NoResultsMessage is the display string for an absent or empty result.
const NoResultsMessage = "The operation completed but didn't return any results."

// Format renders a tool result for display:
//   - nil, a nil pointer or an empty sequence: NoResultsMessage
//   - a sequence: elements joined with ", "
//   - a struct, map or json.RawMessage: JSON indented with 4 spaces, raw
//     JSON keeping its key order
//   - anything else: its plain string form
func Format(result any) string {
	if result == nil {
		return NoResultsMessage
	}
	if rv := reflect.ValueOf(result); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return NoResultsMessage
	}

	switch v := result.(type) {
	case string:
		return v
	case []string:
		if len(v) == 0 {
			return NoResultsMessage
		}
		return strings.Join(v, ", ")
	case json.RawMessage:
		if len(bytes.TrimSpace(v)) == 0 {
			return NoResultsMessage
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, v, "", "    "); err != nil {
			return string(v)
		}
		return buf.String()
	case fmt.Stringer:
		return v.String()
	}

	rv := reflect.ValueOf(result)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return NoResultsMessage
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Len() == 0 {
			return NoResultsMessage
		}
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = fmt.Sprint(rv.Index(i).Interface())
		}
		return strings.Join(parts, ", ")
	case reflect.Map, reflect.Struct:
		if s, err := prettyJSON(rv.Interface()); err == nil {
			return s
		}
	}
	return fmt.Sprint(rv.Interface())
}

func prettyJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
