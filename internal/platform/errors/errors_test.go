package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	cause := stderrors.New("disk full")
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"message only", New(CodeConflict, "race exists"), "race exists"},
		{"with cause", Wrap(CodeNotFound, "load race", cause), "load race: disk full"},
		{"cause only", Wrap(CodeUnknown, "", cause), "disk full"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Fatalf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetCodeThroughWrapping(t *testing.T) {
	base := stderrors.New("no rows")
	err := fmt.Errorf("replay: %w", Wrap(CodeNotFound, "race abc", base))

	if got := GetCode(err); got != CodeNotFound {
		t.Fatalf("GetCode() = %s, want %s", got, CodeNotFound)
	}
	if !stderrors.Is(err, base) {
		t.Fatal("expected cause in chain")
	}
	if !stderrors.Is(err, New(CodeNotFound, "")) {
		t.Fatal("expected code match")
	}
	if got := GetCode(base); got != CodeUnknown {
		t.Fatalf("GetCode(plain) = %s, want %s", got, CodeUnknown)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeInvalidCard, 2},
		{CodeInvalidConfig, 2},
		{CodeNotFound, 3},
		{CodeReplayMismatch, 4},
		{CodeConflict, 1},
		{CodeUnknown, 1},
	}
	for _, tt := range tests {
		if got := tt.code.ExitCode(); got != tt.want {
			t.Fatalf("%s.ExitCode() = %d, want %d", tt.code, got, tt.want)
		}
	}
}
