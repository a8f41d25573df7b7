// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/lihrs/aifm-launcher/internal/config"
	"github.com/lihrs/aifm-launcher/internal/execrun"
	"github.com/lihrs/aifm-launcher/internal/issue"
	"github.com/lihrs/aifm-launcher/internal/python"
	"github.com/lihrs/aifm-launcher/internal/testutil"
	"github.com/lihrs/aifm-launcher/internal/workspace"
)

// newTestProvisioner builds a Provisioner over a temp workspace with a
// fake uv binary already in place.
func newTestProvisioner(t *testing.T, fake *execrun.Fake) (*Provisioner, *workspace.Workspace) {
	t.Helper()

	dir := t.TempDir()
	uvName := "uv"
	if runtime.GOOS == "windows" {
		uvName = "uv.exe"
	}
	testutil.MustWriteFile(t, filepath.Join(dir, uvName), []byte("#!/bin/sh\n"), 0o755)

	ws, err := workspace.New(dir)
	if err != nil {
		t.Fatalf("workspace: %v", err)
	}
	return New(fake, ws, config.DefaultConfig().Provision), ws
}

func TestUvPathResolvesBundledBinary(t *testing.T) {
	t.Parallel()

	p, ws := newTestProvisioner(t, execrun.NewFake())

	path, err := p.UvPath()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Dir(path) != ws.Dir {
		t.Errorf("uv resolved to %q, want inside the workspace", path)
	}
}

func TestUvPathMissingIsActionable(t *testing.T) {
	t.Parallel()

	ws, err := workspace.New(t.TempDir())
	if err != nil {
		t.Fatalf("workspace: %v", err)
	}
	p := New(execrun.NewFake(), ws, config.DefaultConfig().Provision)

	_, err = p.UvPath()
	if err == nil {
		t.Fatal("expected error for missing uv")
	}
	if !errors.Is(err, ErrUvNotFound) {
		t.Errorf("error chain should include ErrUvNotFound, got %v", err)
	}

	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("expected ActionableError, got %T", err)
	}
	if ae.IssueId != issue.UvNotFoundId {
		t.Errorf("IssueId = %d, want UvNotFoundId", ae.IssueId)
	}
}

func TestUvPathConfiguredOverride(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	override := filepath.Join(dir, "tools", "uv-custom")
	testutil.MustMkdirAll(t, filepath.Dir(override), 0o755)
	testutil.MustWriteFile(t, override, []byte("x"), 0o755)

	ws, err := workspace.New(dir)
	if err != nil {
		t.Fatalf("workspace: %v", err)
	}
	cfg := config.DefaultConfig().Provision
	cfg.UvPath = override
	p := New(execrun.NewFake(), ws, cfg)

	path, err := p.UvPath()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != override {
		t.Errorf("path = %q, want the override", path)
	}
}

func TestEnsureVenvCreates(t *testing.T) {
	t.Parallel()

	fake := execrun.NewFake()
	p, ws := newTestProvisioner(t, fake)

	created, err := p.EnsureVenv(context.Background(), python.Floor{Major: 3, Minor: 11})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Error("EnsureVenv should report creation")
	}

	calls := fake.CallsFor("uv")
	if len(calls) != 1 {
		t.Fatalf("recorded %d uv invocations, want 1", len(calls))
	}
	wantArgs := []string{"venv", ".venv", "--python", "3.11"}
	if len(calls[0].Args) != len(wantArgs) {
		t.Fatalf("args = %v, want %v", calls[0].Args, wantArgs)
	}
	for i, a := range wantArgs {
		if calls[0].Args[i] != a {
			t.Fatalf("args = %v, want %v", calls[0].Args, wantArgs)
		}
	}
	if calls[0].Dir != ws.Dir {
		t.Errorf("uv ran in %q, want the workspace", calls[0].Dir)
	}
	if calls[0].Env["UV_LINK_MODE"] != "copy" {
		t.Errorf("UV_LINK_MODE = %q, want copy", calls[0].Env["UV_LINK_MODE"])
	}
}

func TestEnsureVenvSkipsExisting(t *testing.T) {
	t.Parallel()

	fake := execrun.NewFake()
	p, ws := newTestProvisioner(t, fake)
	testutil.MustMkdirAll(t, filepath.Join(ws.Dir, ".venv"), 0o755)

	created, err := p.EnsureVenv(context.Background(), python.Floor{Major: 3, Minor: 11})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Error("existing venv must not be recreated")
	}
	if n := len(fake.Calls()); n != 0 {
		t.Errorf("recorded %d invocations, want none for an existing venv", n)
	}
}

func TestEnsureVenvFailureIsActionable(t *testing.T) {
	t.Parallel()

	fake := execrun.NewFake()
	fake.Stub("uv", execrun.NewExitCodeResult(2))
	p, _ := newTestProvisioner(t, fake)

	_, err := p.EnsureVenv(context.Background(), python.Floor{Major: 3, Minor: 10})
	if err == nil {
		t.Fatal("expected error on uv failure")
	}

	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("expected ActionableError, got %T", err)
	}
	if ae.IssueId != issue.VenvCreateFailedId {
		t.Errorf("IssueId = %d, want VenvCreateFailedId", ae.IssueId)
	}
}

func TestInstallRequirements(t *testing.T) {
	t.Parallel()

	fake := execrun.NewFake()
	p, ws := newTestProvisioner(t, fake)
	testutil.MustWriteFile(t, filepath.Join(ws.Dir, "requirements.txt"), []byte("pandas\n"), 0o644)

	if err := p.InstallRequirements(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	calls := fake.CallsFor("uv")
	if len(calls) != 1 {
		t.Fatalf("recorded %d uv invocations, want 1", len(calls))
	}
	wantArgs := []string{"pip", "install", "-r", "requirements.txt"}
	for i, a := range wantArgs {
		if calls[0].Args[i] != a {
			t.Fatalf("args = %v, want %v", calls[0].Args, wantArgs)
		}
	}
	if calls[0].Env["UV_LINK_MODE"] != "copy" {
		t.Errorf("UV_LINK_MODE = %q, want it on every uv invocation", calls[0].Env["UV_LINK_MODE"])
	}
}

func TestInstallRequirementsMissingManifest(t *testing.T) {
	t.Parallel()

	fake := execrun.NewFake()
	p, _ := newTestProvisioner(t, fake)

	err := p.InstallRequirements(context.Background())
	if err == nil {
		t.Fatal("expected error for missing requirements.txt")
	}
	if !errors.Is(err, ErrRequirementsNotFound) {
		t.Errorf("error chain should include ErrRequirementsNotFound, got %v", err)
	}
	if n := len(fake.Calls()); n != 0 {
		t.Errorf("recorded %d invocations, want none before the manifest check", n)
	}

	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("expected ActionableError, got %T", err)
	}
	if ae.IssueId != issue.RequirementsNotFoundId {
		t.Errorf("IssueId = %d, want RequirementsNotFoundId", ae.IssueId)
	}
}

func TestInstallRequirementsFailureIsActionable(t *testing.T) {
	t.Parallel()

	fake := execrun.NewFake()
	fake.Stub("uv", execrun.NewExitCodeResult(1))
	p, ws := newTestProvisioner(t, fake)
	testutil.MustWriteFile(t, filepath.Join(ws.Dir, "requirements.txt"), []byte("pandas\n"), 0o644)

	err := p.InstallRequirements(context.Background())
	if err == nil {
		t.Fatal("expected error on install failure")
	}

	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("expected ActionableError, got %T", err)
	}
	if ae.IssueId != issue.InstallFailedId {
		t.Errorf("IssueId = %d, want InstallFailedId", ae.IssueId)
	}
}
