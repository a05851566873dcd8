package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestIsTypeThroughWrapping(t *testing.T) {
	base := ConfigNotFound("office", "class_q")
	wrapped := fmt.Errorf("calculate: %w", base)

	if !IsType(wrapped, TypeConfigNotFound) {
		t.Error("IsType lost the type through fmt wrapping")
	}
	if TypeOf(wrapped) != TypeConfigNotFound {
		t.Errorf("TypeOf = %s", TypeOf(wrapped))
	}
	if TypeOf(stderrors.New("plain")) != TypeInternal {
		t.Error("foreign error not reported as internal")
	}
	if !base.HasType(TypeConfigNotFound) || base.HasType(TypeInput) {
		t.Error("HasType does not match the error's own type")
	}
	if stderrors.Is(wrapped, New(TypeConfigNotFound, "other")) {
		t.Error("distinct errors of one type compare equal under errors.Is")
	}
	if base.Context["subtype"] != "class_q" {
		t.Errorf("context = %v", base.Context)
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		err  *Error
		want string
	}{
		{Input("square footage must be positive"), "[INPUT_ERROR] square footage must be positive"},
		{ScenarioBuild("default", stderrors.New("no tiles")), `[SCENARIO_BUILD_ERROR] failed to build scenarios for tile profile "default": no tiles`},
		{UnsupportedQuantityRule("per_moon", "lights", "warehouse_v1"), `unsupported quantity rule "per_moon"`},
	}
	for _, tt := range tests {
		if !strings.Contains(tt.err.Error(), tt.want) {
			t.Errorf("Error() = %q, want it to contain %q", tt.err.Error(), tt.want)
		}
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("disk")
	err := Config("cannot read catalog", cause)
	if !stderrors.Is(err, cause) {
		t.Error("cause not reachable with errors.Is")
	}
}
