package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"unicode"
	"unicode/utf8"
)

// CanonicalKey lower-cases the leading capital run of a JSON key so that the PascalCase and
// camelCase spellings the backend mixes across endpoints collapse into one:
// "IdPersona" -> "idPersona", "ID" -> "id", "URLArchivo" -> "urlArchivo".
func CanonicalKey(key string) string {
	runes := []rune(key)
	upper := 0
	for upper < len(runes) && unicode.IsUpper(runes[upper]) {
		upper++
	}
	if upper == 0 {
		return key
	}
	if upper > 1 && upper < len(runes) {
		// the last capital starts the next word
		upper--
	}
	for i := 0; i < upper; i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}

func isCanonical(key string) bool {
	r, _ := utf8.DecodeRuneInString(key)
	return !unicode.IsUpper(r)
}

// NormalizeKeys rewrites every object key in a decoded JSON tree to its canonical form.
// When both spellings are present the one already in canonical form wins.
func NormalizeKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if isCanonical(k) {
				out[k] = NormalizeKeys(val)
			}
		}
		for k, val := range t {
			if isCanonical(k) {
				continue
			}
			ck := CanonicalKey(k)
			if _, exists := out[ck]; !exists {
				out[ck] = NormalizeKeys(val)
			}
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = NormalizeKeys(val)
		}
		return out
	default:
		return v
	}
}

// aliasID copies the generic "id" key into idKey on top-level objects (or on each element
// of a top-level array) when idKey is absent.
func aliasID(v any, idKey string) any {
	if idKey == "" {
		return v
	}
	apply := func(m map[string]any) {
		if _, ok := m[idKey]; ok {
			return
		}
		if id, ok := m["id"]; ok {
			m[idKey] = id
		}
	}
	switch t := v.(type) {
	case map[string]any:
		apply(t)
	case []any:
		for _, el := range t {
			if m, ok := el.(map[string]any); ok {
				apply(m)
			}
		}
	}
	return v
}

// Decode parses a response body through the canonical decoding layer into dst.
func Decode(data []byte, dst any, idKey string) error {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	normalized, err := json.Marshal(aliasID(NormalizeKeys(raw), idKey))
	if err != nil {
		return fmt.Errorf("re-encode normalized response: %w", err)
	}
	// Numbers stay json.Number so untyped records written back keep their exact digits.
	dec = json.NewDecoder(bytes.NewReader(normalized))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode normalized response: %w", err)
	}
	return nil
}
