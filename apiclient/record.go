package apiclient

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Record is an untyped entity as returned by the backend. It is used where the caller must
// carry forward every field the API returned, including ones no model declares.
type Record map[string]any

// IDCandidates lists the keys tried, in order, for the id of an entity: id, Id, id<Entity>,
// Id<Entity>.
func IDCandidates(entity string) []string {
	candidates := []string{"id", "Id"}
	if entity == "" {
		return candidates
	}
	title := strings.ToUpper(entity[:1]) + entity[1:]
	return append(candidates, "id"+title, "Id"+title)
}

// Lookup returns the first non-nil value among keys.
func (r Record) Lookup(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// Int returns the first key holding a positive integer.
func (r Record) Int(keys ...string) (int, bool) {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || v == nil {
			continue
		}
		if n, ok := toInt(v); ok && n > 0 {
			return n, true
		}
	}
	return 0, false
}

func (r Record) String(keys ...string) string {
	v, ok := r.Lookup(keys...)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// ID resolves the entity id using IDCandidates.
func (r Record) ID(entity string) (int, bool) {
	return r.Int(IDCandidates(entity)...)
}

// Set writes value under key, replacing any other casing of the same key so the record
// never carries two spellings of one field.
func (r Record) Set(key string, value any) {
	canonical := CanonicalKey(key)
	for k := range r {
		if k != key && CanonicalKey(k) == canonical {
			delete(r, k)
		}
	}
	r[key] = value
}

func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		if t != float64(int(t)) {
			return 0, false
		}
		return int(t), true
	case json.Number:
		n, err := strconv.Atoi(t.String())
		return n, err == nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		return n, err == nil
	default:
		return 0, false
	}
}
