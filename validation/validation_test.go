package validation

import (
	"math"
	"regexp"
	"strings"
	"testing"

	"github.com/kbukum/blockflow/errors"
)

func TestValidatorRequired(t *testing.T) {
	v := New()
	v.Required("type", "normalize")
	if v.HasErrors() {
		t.Error("expected no errors for valid input")
	}

	v2 := New()
	v2.Required("type", "")
	if !v2.HasErrors() {
		t.Error("expected error for empty required field")
	}

	v3 := New()
	v3.Required("type", "   ")
	if !v3.HasErrors() {
		t.Error("expected error for whitespace-only required field")
	}
}

func TestValidatorMaxLength(t *testing.T) {
	v := New()
	v.MaxLength("ws", "short", 10)
	if v.HasErrors() {
		t.Error("expected no error for string within max length")
	}

	v2 := New()
	v2.MaxLength("ws", "this is too long", 5)
	if !v2.HasErrors() {
		t.Error("expected error for string exceeding max length")
	}
}

func TestValidatorPattern(t *testing.T) {
	upper := regexp.MustCompile(`^[A-Z]+$`)

	v := New()
	v.Pattern("code", "ABC", upper)
	if v.HasErrors() {
		t.Error("expected no error for matching pattern")
	}

	v2 := New()
	v2.Pattern("code", "abc", upper)
	if !v2.HasErrors() {
		t.Error("expected error for non-matching pattern")
	}

	v3 := New()
	v3.Pattern("code", "", upper)
	if v3.HasErrors() {
		t.Error("expected no error for empty value with pattern")
	}
}

func TestValidatorOneOf(t *testing.T) {
	v := New()
	v.OneOf("stage", "training", []string{"preprocessing", "training"})
	if v.HasErrors() {
		t.Error("expected no error for valid oneOf value")
	}

	v2 := New()
	v2.OneOf("stage", "deploy", []string{"preprocessing", "training"})
	if !v2.HasErrors() {
		t.Error("expected error for invalid oneOf value")
	}
}

func TestValidatorFinite(t *testing.T) {
	v := New()
	v.Finite("x", 12.5).Finite("y", -3)
	if v.HasErrors() {
		t.Errorf("expected no errors, got %v", v.Errors())
	}

	v2 := New()
	v2.Finite("x", math.NaN()).Finite("y", math.Inf(1))
	if len(v2.Errors()) != 2 {
		t.Errorf("expected 2 errors, got %d", len(v2.Errors()))
	}
}

func TestValidatorCustom(t *testing.T) {
	v := New()
	v.Custom(false, "to", "must differ from from")
	if !v.HasErrors() {
		t.Fatal("expected error for false condition")
	}
	if v.Errors()[0].Message != "must differ from from" {
		t.Errorf("unexpected message %q", v.Errors()[0].Message)
	}
}

func TestValidatorValidate(t *testing.T) {
	if appErr := New().Required("type", "normalize").Validate(); appErr != nil {
		t.Error("expected nil for valid input")
	}

	appErr := New().Required("from", "").Required("to", "").Validate()
	if appErr == nil {
		t.Fatal("expected error")
	}
	if appErr.Code != errors.ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", appErr.Code)
	}
	if !strings.Contains(appErr.Message, "from") || !strings.Contains(appErr.Message, "to") {
		t.Errorf("expected both fields in message, got %q", appErr.Message)
	}
	if _, ok := appErr.Details["fields"]; !ok {
		t.Error("expected fields detail")
	}
}

func TestIdentifier(t *testing.T) {
	tests := []struct {
		value string
		ok    bool
	}{
		{"default", true},
		{"team-a.v2", true},
		{"", false},
		{"-leading", false},
		{"has space", false},
		{strings.Repeat("a", 65), false},
	}
	for _, tt := range tests {
		err := Identifier("workspace", tt.value)
		if (err == nil) != tt.ok {
			t.Errorf("Identifier(%q) error = %v, want ok=%v", tt.value, err, tt.ok)
		}
	}
}

func TestStructValidate(t *testing.T) {
	type split struct {
		TestRatio float64 `json:"test_ratio" validate:"gt=0,lt=1"`
		Method    string  `json:"method" validate:"required,oneof=random stratified"`
	}

	if err := Validate(&split{TestRatio: 0.2, Method: "random"}); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}

	err := Validate(&split{TestRatio: 1.5, Method: "other"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "test_ratio: must be less than 1") {
		t.Errorf("expected test_ratio message, got %q", msg)
	}
	if !strings.Contains(msg, "method: must be one of") {
		t.Errorf("expected method message, got %q", msg)
	}
}

func TestStructValidateNested(t *testing.T) {
	type item struct {
		ID string `json:"id" validate:"required"`
	}
	type list struct {
		Items []item `json:"items" validate:"dive"`
	}

	err := Validate(list{Items: []item{{ID: "a"}, {}}})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "items[1].id") {
		t.Errorf("expected nested path, got %q", err.Error())
	}
}

func TestToSnakeCase(t *testing.T) {
	if got := toSnakeCase("MaxInstances"); got != "max_instances" {
		t.Errorf("got %q", got)
	}
}
