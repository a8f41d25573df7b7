// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name: "operation only",
			err: &ActionableError{
				Operation: "locate uv binary",
			},
			expected: "failed to locate uv binary",
		},
		{
			name: "operation with resource",
			err: &ActionableError{
				Operation: "locate uv binary",
				Resource:  "./uv.exe",
			},
			expected: "failed to locate uv binary: ./uv.exe",
		},
		{
			name: "operation with cause",
			err: &ActionableError{
				Operation: "install dependencies",
				Cause:     errors.New("exit status 1"),
			},
			expected: "failed to install dependencies: exit status 1",
		},
		{
			name: "full context",
			err: &ActionableError{
				Operation: "launch application",
				Resource:  "gui.py",
				Cause:     errors.New("file not found"),
			},
			expected: "failed to launch application: gui.py: file not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := &ActionableError{
		Operation: "test",
		Cause:     cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap() should return the cause error")
	}

	errNoCause := &ActionableError{Operation: "test"}
	if errNoCause.Unwrap() != nil {
		t.Error("Unwrap() should return nil when no cause")
	}
}

func TestActionableError_ErrorsIs(t *testing.T) {
	cause := errors.New("specific error")
	wrapped := &ActionableError{
		Operation: "test",
		Cause:     cause,
	}

	if !errors.Is(wrapped, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestActionableError_Format(t *testing.T) {
	tests := []struct {
		name     string
		err      *ActionableError
		verbose  bool
		contains []string
		excludes []string
	}{
		{
			name: "suggestions rendered as bullets",
			err: &ActionableError{
				Operation:   "create Python environment",
				Suggestions: []string{"Delete .venv and retry", "Check disk space"},
			},
			contains: []string{"• Delete .venv and retry", "• Check disk space"},
		},
		{
			name: "verbose includes error chain",
			err: &ActionableError{
				Operation: "install dependencies",
				Cause:     errors.New("network unreachable"),
			},
			verbose:  true,
			contains: []string{"Error chain:", "1. network unreachable"},
		},
		{
			name: "non-verbose omits error chain header",
			err: &ActionableError{
				Operation: "install dependencies",
				Cause:     errors.New("network unreachable"),
			},
			verbose:  false,
			excludes: []string{"Error chain:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Format(tt.verbose)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("Format() missing %q in:\n%s", want, got)
				}
			}
			for _, notWant := range tt.excludes {
				if strings.Contains(got, notWant) {
					t.Errorf("Format() should not contain %q in:\n%s", notWant, got)
				}
			}
		})
	}
}

func TestErrorContext_Builder(t *testing.T) {
	cause := errors.New("exit status 2")

	err := NewErrorContext().
		WithOperation("create Python environment").
		WithResource(".venv").
		WithSuggestion("Delete .venv and re-run").
		WithIssue(VenvCreateFailedId).
		Wrap(cause).
		Build()

	if err == nil {
		t.Fatal("Build() returned nil with operation set")
	}
	if err.Operation != "create Python environment" {
		t.Errorf("Operation = %q", err.Operation)
	}
	if err.Resource != ".venv" {
		t.Errorf("Resource = %q", err.Resource)
	}
	if len(err.Suggestions) != 1 {
		t.Errorf("Suggestions = %v, want 1 entry", err.Suggestions)
	}
	if err.IssueId != VenvCreateFailedId {
		t.Errorf("IssueId = %d, want %d", err.IssueId, VenvCreateFailedId)
	}
	if !errors.Is(err, cause) {
		t.Error("built error should wrap the cause")
	}
}

func TestErrorContext_BuildRequiresOperation(t *testing.T) {
	if NewErrorContext().WithResource("x").Build() != nil {
		t.Error("Build() without operation should return nil")
	}
	if NewErrorContext().WithResource("x").BuildError() != nil {
		t.Error("BuildError() without operation should return nil error")
	}
}

func TestActionableError_Card(t *testing.T) {
	withCard := &ActionableError{Operation: "x", IssueId: UvNotFoundId}
	if withCard.Card() == nil {
		t.Error("Card() should resolve the linked issue")
	}

	withoutCard := &ActionableError{Operation: "x"}
	if withoutCard.Card() != nil {
		t.Error("Card() should be nil when no issue id is set")
	}
}

func TestWrapWithOperation(t *testing.T) {
	if WrapWithOperation(nil, "anything") != nil {
		t.Error("wrapping nil should return nil")
	}

	cause := errors.New("boom")
	err := WrapWithOperation(cause, "rename legacy config")
	if err == nil {
		t.Fatal("expected non-nil wrap")
	}
	if !errors.Is(err, cause) {
		t.Error("wrap should preserve the cause")
	}
}
