package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestParseError(t *testing.T) {
	err := NewParseError("Ctrl+Foo", "Foo", "unknown key")
	if err.Error() != `parse "Ctrl+Foo": unknown key "Foo"` {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, ErrParse) {
		t.Error("ParseError should match ErrParse")
	}
	if errors.Is(err, ErrValidation) {
		t.Error("ParseError should not match ErrValidation")
	}

	whole := NewParseError("", "", "empty specification")
	if whole.Error() != `parse "": empty specification` {
		t.Errorf("Error() = %q", whole.Error())
	}
}

func TestValidationErrorWrapped(t *testing.T) {
	err := fmt.Errorf("bind: %w", NewValidationError("Function", "unknown function", "NotARealAction"))
	if !errors.Is(err, ErrValidation) {
		t.Error("wrapped ValidationError should match ErrValidation")
	}

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatal("errors.As should find ValidationError")
	}
	if ve.Field != "Function" {
		t.Errorf("Field = %q, want Function", ve.Field)
	}
	if ve.Error() != "Function: unknown function (value: NotARealAction)" {
		t.Errorf("Error() = %q", ve.Error())
	}
}

func TestWarning(t *testing.T) {
	w := &Warning{Subject: "Ctrl+r", Message: "already bound"}
	if !errors.Is(w, ErrNoOp) {
		t.Error("Warning should match ErrNoOp")
	}
	if w.Error() != "Ctrl+r: already bound" {
		t.Errorf("Error() = %q", w.Error())
	}
}
