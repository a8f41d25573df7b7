// SPDX-License-Identifier: MPL-2.0

package execrun

import (
	"errors"
	"testing"
)

func TestExitCodeIsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		code ExitCode
		want bool
	}{
		{"zero", 0, true},
		{"one", 1, true},
		{"max", 255, true},
		{"negative", -1, false},
		{"too large", 256, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, errs := tt.code.IsValid()
			if got != tt.want {
				t.Errorf("IsValid() = %v, want %v", got, tt.want)
			}
			if !tt.want {
				if len(errs) != 1 {
					t.Fatalf("expected 1 validation error, got %d", len(errs))
				}
				if !errors.Is(errs[0], ErrInvalidExitCode) {
					t.Errorf("validation error should wrap ErrInvalidExitCode, got %v", errs[0])
				}
			}
		})
	}
}

func TestExitCodeIsSuccess(t *testing.T) {
	t.Parallel()

	if !ExitCode(0).IsSuccess() {
		t.Error("exit code 0 should be success")
	}
	if ExitCode(1).IsSuccess() {
		t.Error("exit code 1 should not be success")
	}
}

func TestResultSucceeded(t *testing.T) {
	t.Parallel()

	if !NewSuccessResult().Succeeded() {
		t.Error("success result should report Succeeded")
	}
	if NewExitCodeResult(2).Succeeded() {
		t.Error("non-zero exit should not report Succeeded")
	}
	if NewErrorResult(0, errors.New("boom")).Succeeded() {
		t.Error("result with error should not report Succeeded")
	}
}
