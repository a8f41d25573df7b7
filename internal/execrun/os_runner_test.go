// SPDX-License-Identifier: MPL-2.0

package execrun

import (
	"context"
	"strings"
	"testing"
)

func TestBuildCmdSetsDirAndArgs(t *testing.T) {
	t.Parallel()

	r := NewOSRunner()
	inv := &Invocation{
		Path: "uv",
		Args: []string{"pip", "install", "-r", "requirements.txt"},
		Dir:  "/some/workdir",
	}

	cmd := r.buildCmd(context.Background(), inv)

	if cmd.Dir != "/some/workdir" {
		t.Errorf("cmd.Dir = %q, want %q", cmd.Dir, "/some/workdir")
	}
	if len(cmd.Args) != 5 {
		t.Fatalf("cmd.Args = %v, want 5 elements", cmd.Args)
	}
	if cmd.Args[1] != "pip" || cmd.Args[4] != "requirements.txt" {
		t.Errorf("unexpected args: %v", cmd.Args)
	}
}

func TestBuildCmdMergesEnv(t *testing.T) {
	t.Parallel()

	r := NewOSRunner()
	inv := &Invocation{
		Path: "uv",
		Env:  map[string]string{"UV_LINK_MODE": "copy"},
	}

	cmd := r.buildCmd(context.Background(), inv)

	if cmd.Env == nil {
		t.Fatal("expected explicit environment when Env entries are set")
	}
	found := false
	for _, kv := range cmd.Env {
		if kv == "UV_LINK_MODE=copy" {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("UV_LINK_MODE=copy not found in cmd.Env")
	}
}

func TestBuildCmdInheritsEnvByDefault(t *testing.T) {
	t.Parallel()

	r := NewOSRunner()
	cmd := r.buildCmd(context.Background(), &Invocation{Path: "uv"})

	// nil Env makes os/exec inherit the parent environment.
	if cmd.Env != nil {
		t.Errorf("expected nil cmd.Env for inherit, got %d entries", len(cmd.Env))
	}
}

func TestEnvToSliceIsSorted(t *testing.T) {
	t.Parallel()

	got := envToSlice(map[string]string{
		"ZZZ": "1",
		"AAA": "2",
		"MMM": "3",
	})

	want := []string{"AAA=2", "MMM=3", "ZZZ=1"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("envToSlice = %v, want %v", got, want)
	}
}
