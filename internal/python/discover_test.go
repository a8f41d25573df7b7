// SPDX-License-Identifier: MPL-2.0

package python

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/lihrs/aifm-launcher/internal/execrun"
)

// swapLookPath replaces the PATH lookup seam for the duration of a test.
// Tests using it must not run in parallel.
func swapLookPath(t *testing.T, fn func(string) (string, error)) {
	t.Helper()
	orig := lookPath
	lookPath = fn
	t.Cleanup(func() { lookPath = orig })
}

func TestFindPrefersPython(t *testing.T) {
	swapLookPath(t, func(name string) (string, error) {
		switch name {
		case "python":
			return "/usr/bin/python", nil
		case "python3":
			return "/usr/bin/python3", nil
		}
		return "", fmt.Errorf("not found: %s", name)
	})

	path, err := Find()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "/usr/bin/python" {
		t.Errorf("path = %q, want the plain python name first", path)
	}
}

func TestFindFallsBackToPython3(t *testing.T) {
	swapLookPath(t, func(name string) (string, error) {
		if name == "python3" {
			return "/usr/local/bin/python3", nil
		}
		return "", fmt.Errorf("not found: %s", name)
	})

	path, err := Find()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "/usr/local/bin/python3" {
		t.Errorf("path = %q", path)
	}
}

func TestFindReportsMiss(t *testing.T) {
	swapLookPath(t, func(name string) (string, error) {
		return "", fmt.Errorf("not found: %s", name)
	})

	_, err := Find()
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestQueryVersion(t *testing.T) {
	t.Parallel()

	fake := execrun.NewFake()
	fake.Stub("python", &execrun.Result{Output: "Python 3.11.2\n"})

	v, err := QueryVersion(context.Background(), fake, "python")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != (Version{3, 11, 2}) {
		t.Errorf("version = %v", v)
	}

	calls := fake.CallsFor("python")
	if len(calls) != 1 {
		t.Fatalf("recorded %d invocations, want exactly one", len(calls))
	}
	if len(calls[0].Args) != 1 || calls[0].Args[0] != "--version" {
		t.Errorf("args = %v, want [--version]", calls[0].Args)
	}
	if !calls[0].Captured {
		t.Error("version probe should capture output")
	}
}

func TestQueryVersionStderrFallback(t *testing.T) {
	t.Parallel()

	fake := execrun.NewFake()
	fake.Stub("python", &execrun.Result{ErrOutput: "Python 2.7.18\n"})

	v, err := QueryVersion(context.Background(), fake, "python")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != (Version{2, 7, 18}) {
		t.Errorf("version = %v", v)
	}
}

func TestQueryVersionRunError(t *testing.T) {
	t.Parallel()

	fake := execrun.NewFake()
	fake.Stub("python", execrun.NewErrorResult(-1, errors.New("exec format error")))

	if _, err := QueryVersion(context.Background(), fake, "python"); err == nil {
		t.Fatal("expected error when the probe cannot run")
	}
}

func TestQueryVersionNonZeroExit(t *testing.T) {
	t.Parallel()

	fake := execrun.NewFake()
	fake.Stub("python", execrun.NewExitCodeResult(9009))

	if _, err := QueryVersion(context.Background(), fake, "python"); err == nil {
		t.Fatal("expected error on non-zero exit")
	}
}

func TestQueryVersionUnparseableOutput(t *testing.T) {
	t.Parallel()

	fake := execrun.NewFake()
	fake.Stub("python", &execrun.Result{Output: "Python 3.13.0rc1\n"})

	_, err := QueryVersion(context.Background(), fake, "python")
	if !errors.Is(err, ErrUnparseableVersion) {
		t.Errorf("err = %v, want ErrUnparseableVersion in the chain", err)
	}
}
