package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorCodeSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("update task: %w", ErrInvalidStatus)
	code := ErrorCode(err)
	if code != "invalid_status" {
		t.Fatalf("code = %q", code)
	}
	if !errors.Is(ErrorForCode(code), ErrInvalidStatus) {
		t.Fatal("code did not map back to ErrInvalidStatus")
	}
	if ErrorCode(errors.New("boom")) != "" {
		t.Fatal("unknown errors must have no code")
	}
	if ErrorForCode("nope") != nil {
		t.Fatal("unknown code must map to nil")
	}
}
