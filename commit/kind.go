package commit

import (
	"fmt"
	"sort"
)

// Kind selects which self-hash field a record carries.
type Kind string

const (
	Claim    Kind = "claim"
	Intent   Kind = "intent"
	Snapshot Kind = "snapshot"
	Raw      Kind = "raw"
)

// hashFields is the complete kind table. Raw maps to no field.
var hashFields = map[Kind]string{
	Claim:    "claimHash",
	Intent:   "intentHash",
	Snapshot: "snapshotHash",
	Raw:      "",
}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if _, ok := hashFields[k]; !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownKind, s)
	}
	return k, nil
}

// Kinds returns every known kind, sorted.
func Kinds() []Kind {
	out := make([]Kind, 0, len(hashFields))
	for k := range hashFields {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// HashField returns the self-hash field name for k, or "" for raw and unknown kinds.
func (k Kind) HashField() string { return hashFields[k] }

func (k Kind) String() string { return string(k) }
