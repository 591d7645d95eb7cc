package storage

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsIntegrity(t *testing.T) {
	for _, err := range []error{ErrCIDMismatch, ErrImmutable, fmt.Errorf("replica b: %w", ErrImmutable)} {
		if !IsIntegrity(err) {
			t.Fatalf("expected %v to be an integrity error", err)
		}
	}
	for _, err := range []error{nil, ErrNotFound, ErrInvalidCID, errors.New("disk full")} {
		if IsIntegrity(err) {
			t.Fatalf("%v is not an integrity error", err)
		}
	}
}
