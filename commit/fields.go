package commit

import (
	"fmt"
	"reflect"
)

// Strip returns record without the self-hash field of kind.
//
// The input is never modified: for kinds with a hash field a shallow copy of
// the top-level object is returned as a map[string]any, whatever string-keyed
// map type record is. Raw records are returned unchanged.
// Stripping is idempotent.
func Strip(record any, kind Kind) (any, error) {
	field, err := fieldFor(kind)
	if err != nil {
		return nil, err
	}
	if field == "" {
		return record, nil
	}
	m, ok := mapping(record)
	if !ok {
		return nil, fmt.Errorf("%w for kind %s (got %T)", ErrNotMapping, kind, record)
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if k == field {
			continue
		}
		out[k] = v
	}
	return out, nil
}

// WithHash returns a shallow copy of record with the kind's hash field set to
// rendered.
func WithHash(record any, kind Kind, rendered string) (map[string]any, error) {
	field, err := fieldFor(kind)
	if err != nil {
		return nil, err
	}
	if field == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoHashField, kind)
	}
	m, ok := mapping(record)
	if !ok {
		return nil, fmt.Errorf("%w for kind %s (got %T)", ErrNotMapping, kind, record)
	}
	out := make(map[string]any, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	out[field] = rendered
	return out, nil
}

func fieldFor(kind Kind) (string, error) {
	field, ok := hashFields[kind]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownKind, string(kind))
	}
	return field, nil
}

// mapping views record as a map[string]any. Other string-keyed map types are
// copied into one.
func mapping(record any) (map[string]any, bool) {
	if m, ok := record.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(record)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	m := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		m[iter.Key().String()] = iter.Value().Interface()
	}
	return m, true
}
