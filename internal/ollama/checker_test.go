// SPDX-License-Identifier: MPL-2.0

package ollama

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lihrs/aifm-launcher/internal/config"
	"github.com/lihrs/aifm-launcher/internal/execrun"
	"github.com/lihrs/aifm-launcher/internal/issue"
)

const llamaTags = `{"models":[
	{"name":"llama3:8b","modified_at":"2025-05-01T10:00:00Z","size":4661224676}
]}`

// newServiceServer answers /api/tags only while up is set, mimicking a
// service that takes time to come online.
func newServiceServer(t *testing.T, up *atomic.Bool, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !up.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// newTestChecker wires a Checker to the given server and fake runner,
// with fast polling and a resolvable executable.
func newTestChecker(t *testing.T, srv *httptest.Server, fake *execrun.Fake) *Checker {
	t.Helper()
	cfg := config.OllamaConfig{
		Enabled:      true,
		Model:        "qwen3:4b",
		ServeTimeout: 500 * time.Millisecond,
	}
	c := NewChecker(NewClient(WithBaseURL(srv.URL)), fake, cfg)
	c.Locate = func() (string, error) { return "/opt/ollama/ollama", nil }
	c.ProcessRunning = func(context.Context) bool { return false }
	c.PollInterval = 5 * time.Millisecond
	return c
}

func TestCheckServiceAlreadyUp(t *testing.T) {
	t.Parallel()

	up := &atomic.Bool{}
	up.Store(true)
	fake := execrun.NewFake()
	c := newTestChecker(t, newServiceServer(t, up, qwenTags), fake)

	out, err := c.Check(context.Background())
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !out.ServiceWasUp {
		t.Error("ServiceWasUp = false, want true")
	}
	if out.Started {
		t.Error("Started = true, want false")
	}
	if out.ModelPulled {
		t.Error("ModelPulled = true, want false")
	}
	if out.ExePath != "/opt/ollama/ollama" {
		t.Errorf("ExePath = %q, want %q", out.ExePath, "/opt/ollama/ollama")
	}
	if out.Model != "qwen3:4b" {
		t.Errorf("Model = %q, want %q", out.Model, "qwen3:4b")
	}
	if calls := fake.Calls(); len(calls) != 0 {
		t.Errorf("runner saw %d invocations, want 0: %+v", len(calls), calls)
	}
}

func TestCheckStartsService(t *testing.T) {
	t.Parallel()

	up := &atomic.Bool{}
	fake := execrun.NewFake()
	fake.Script = func(inv *execrun.Invocation, _ bool) *execrun.Result {
		if len(inv.Args) > 0 && inv.Args[0] == "serve" {
			up.Store(true)
		}
		return execrun.NewSuccessResult()
	}
	c := newTestChecker(t, newServiceServer(t, up, qwenTags), fake)

	out, err := c.Check(context.Background())
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if out.ServiceWasUp {
		t.Error("ServiceWasUp = true, want false")
	}
	if !out.Started {
		t.Error("Started = false, want true")
	}

	calls := fake.Calls()
	if len(calls) != 1 {
		t.Fatalf("runner saw %d invocations, want 1: %+v", len(calls), calls)
	}
	if len(calls[0].Args) != 1 || calls[0].Args[0] != "serve" {
		t.Errorf("Args = %v, want [serve]", calls[0].Args)
	}
	if !calls[0].Detached {
		t.Error("serve was not detached from the launcher")
	}
}

func TestCheckWaitsForRunningProcess(t *testing.T) {
	t.Parallel()

	// The API starts answering on the third probe, as if another process
	// is mid-initialization.
	var probes atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if probes.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(qwenTags))
	}))
	t.Cleanup(srv.Close)

	fake := execrun.NewFake()
	c := newTestChecker(t, srv, fake)
	c.ProcessRunning = func(context.Context) bool { return true }

	out, err := c.Check(context.Background())
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if out.Started {
		t.Error("Started = true, want false for a service owned by another process")
	}
	if out.ServiceWasUp {
		t.Error("ServiceWasUp = true, want false when the first probe failed")
	}
	if calls := fake.Calls(); len(calls) != 0 {
		t.Errorf("runner saw %d invocations, want 0: %+v", len(calls), calls)
	}
}

func TestCheckNotInstalled(t *testing.T) {
	t.Parallel()

	up := &atomic.Bool{}
	fake := execrun.NewFake()
	c := newTestChecker(t, newServiceServer(t, up, qwenTags), fake)
	c.Locate = func() (string, error) { return "", ErrNotInstalled }

	_, err := c.Check(context.Background())
	if err == nil {
		t.Fatal("Check() error = nil, want not-installed error")
	}
	if !errors.Is(err, ErrNotInstalled) {
		t.Errorf("error chain does not include ErrNotInstalled: %v", err)
	}
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("expected ActionableError, got %T", err)
	}
	if ae.IssueId != issue.OllamaNotInstalledId {
		t.Errorf("IssueId = %d, want OllamaNotInstalledId", ae.IssueId)
	}
	if calls := fake.Calls(); len(calls) != 0 {
		t.Errorf("runner saw %d invocations, want 0: %+v", len(calls), calls)
	}
}

func TestCheckServeTimeout(t *testing.T) {
	t.Parallel()

	up := &atomic.Bool{}
	fake := execrun.NewFake()
	srv := newServiceServer(t, up, qwenTags)

	cfg := config.OllamaConfig{
		Enabled:      true,
		Model:        "qwen3:4b",
		ServeTimeout: 60 * time.Millisecond,
	}
	c := NewChecker(NewClient(WithBaseURL(srv.URL)), fake, cfg)
	c.Locate = func() (string, error) { return "/opt/ollama/ollama", nil }
	c.ProcessRunning = func(context.Context) bool { return false }
	c.PollInterval = 10 * time.Millisecond

	_, err := c.Check(context.Background())
	if err == nil {
		t.Fatal("Check() error = nil, want readiness timeout")
	}
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("expected ActionableError, got %T", err)
	}
	if ae.IssueId != issue.OllamaNotReadyId {
		t.Errorf("IssueId = %d, want OllamaNotReadyId", ae.IssueId)
	}
	if calls := fake.CallsFor("/opt/ollama/ollama"); len(calls) != 1 {
		t.Errorf("runner saw %d invocations, want the serve attempt", len(calls))
	}
}

func TestCheckServeStartFailure(t *testing.T) {
	t.Parallel()

	up := &atomic.Bool{}
	fake := execrun.NewFake()
	fake.Script = func(inv *execrun.Invocation, _ bool) *execrun.Result {
		return execrun.NewErrorResult(-1, errors.New("spawn failed"))
	}
	c := newTestChecker(t, newServiceServer(t, up, qwenTags), fake)

	_, err := c.Check(context.Background())
	if err == nil {
		t.Fatal("Check() error = nil, want spawn error")
	}
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("expected ActionableError, got %T", err)
	}
	if ae.IssueId != issue.OllamaNotReadyId {
		t.Errorf("IssueId = %d, want OllamaNotReadyId", ae.IssueId)
	}
}

func TestCheckPullsMissingModel(t *testing.T) {
	t.Parallel()

	up := &atomic.Bool{}
	up.Store(true)
	fake := execrun.NewFake()
	c := newTestChecker(t, newServiceServer(t, up, llamaTags), fake)

	out, err := c.Check(context.Background())
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !out.ModelPulled {
		t.Error("ModelPulled = false, want true")
	}

	calls := fake.Calls()
	if len(calls) != 1 {
		t.Fatalf("runner saw %d invocations, want 1: %+v", len(calls), calls)
	}
	if len(calls[0].Args) != 2 || calls[0].Args[0] != "pull" || calls[0].Args[1] != "qwen3:4b" {
		t.Errorf("Args = %v, want [pull qwen3:4b]", calls[0].Args)
	}
	if calls[0].Detached {
		t.Error("pull ran detached, want foreground with live progress")
	}
	if calls[0].Captured {
		t.Error("pull output was captured, want inherited stdio")
	}
}

func TestCheckPullFailure(t *testing.T) {
	t.Parallel()

	up := &atomic.Bool{}
	up.Store(true)
	fake := execrun.NewFake()
	fake.Stub("ollama", execrun.NewExitCodeResult(1))
	c := newTestChecker(t, newServiceServer(t, up, llamaTags), fake)

	out, err := c.Check(context.Background())
	if err == nil {
		t.Fatal("Check() error = nil, want pull failure")
	}
	if out.ModelPulled {
		t.Error("ModelPulled = true, want false after a failed pull")
	}
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("expected ActionableError, got %T", err)
	}
	if ae.IssueId != issue.OllamaNotReadyId {
		t.Errorf("IssueId = %d, want OllamaNotReadyId", ae.IssueId)
	}
}
