package types

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateIDPresent(t *testing.T) {
	if err := ValidateIDPresent("o1", "orderId"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := ValidateIDPresent("", "orderId")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if !strings.Contains(err.Error(), "orderId") {
		t.Fatalf("field name missing from error: %v", err)
	}
}
