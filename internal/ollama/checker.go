// SPDX-License-Identifier: MPL-2.0

package ollama

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/lihrs/aifm-launcher/internal/config"
	"github.com/lihrs/aifm-launcher/internal/execrun"
	"github.com/lihrs/aifm-launcher/internal/issue"
)

// defaultPollInterval is the cadence of readiness probes while waiting
// for the service to come up.
const defaultPollInterval = 2 * time.Second

// errServiceNotReady drives the readiness retry loop.
var errServiceNotReady = errors.New("ollama service not ready")

type (
	// Outcome reports how readiness was achieved, for step logging.
	Outcome struct {
		// ExePath is the resolved ollama executable.
		ExePath string
		// ServiceWasUp is true when the API answered before any action.
		ServiceWasUp bool
		// Started is true when this run launched `ollama serve`.
		Started bool
		// ModelPulled is true when the model had to be downloaded.
		ModelPulled bool
		// Model is the model identifier that was ensured.
		Model string
	}

	// Checker drives the readiness sequence: executable, service, model.
	// The exported fields are seams with working defaults.
	Checker struct {
		client *Client
		runner execrun.Runner
		cfg    config.OllamaConfig

		// Locate finds the ollama executable.
		Locate func() (string, error)
		// ProcessRunning reports a live service process.
		ProcessRunning func(ctx context.Context) bool
		// PollInterval is the wait between readiness probes.
		PollInterval time.Duration
		// Stdout/Stderr receive `ollama pull` progress. Nil discards it.
		Stdout io.Writer
		Stderr io.Writer
	}
)

// NewChecker creates a Checker over the given client and runner.
func NewChecker(client *Client, runner execrun.Runner, cfg config.OllamaConfig) *Checker {
	return &Checker{
		client:         client,
		runner:         runner,
		cfg:            cfg,
		Locate:         Locate,
		ProcessRunning: ServiceProcessRunning,
		PollInterval:   defaultPollInterval,
	}
}

// Check runs the full readiness sequence and reports the outcome:
//
//  1. Resolve the executable; a machine without one gets the install
//     card and nothing else happens.
//  2. Bring the service up. An answering API wins immediately; a live
//     process with a silent API is given time to finish initializing;
//     otherwise `ollama serve` is started detached and polled until
//     ready or the serve timeout elapses.
//  3. Ensure the model, pulling it when no installed model satisfies
//     the requested name.
func (c *Checker) Check(ctx context.Context) (*Outcome, error) {
	outcome := &Outcome{Model: c.cfg.Model}

	exe, err := c.Locate()
	if err != nil {
		return outcome, issue.NewErrorContext().
			WithOperation("locate ollama").
			WithSuggestion("Install Ollama from https://ollama.com/download").
			WithSuggestion("Or add an existing install to PATH and run again").
			WithIssue(issue.OllamaNotInstalledId).
			Wrap(err).
			BuildError()
	}
	outcome.ExePath = exe

	if c.client.Ping(ctx) {
		outcome.ServiceWasUp = true
	} else {
		started, err := c.bringUp(ctx, exe)
		if err != nil {
			return outcome, err
		}
		outcome.Started = started
	}

	pulled, err := c.ensureModel(ctx, exe)
	if err != nil {
		return outcome, err
	}
	outcome.ModelPulled = pulled

	return outcome, nil
}

// bringUp gets the service answering: waits out a live process that is
// still initializing, or starts `ollama serve` detached and polls.
// Reports whether a serve was launched.
func (c *Checker) bringUp(ctx context.Context, exe string) (bool, error) {
	if c.ProcessRunning(ctx) {
		// Already running, API not up yet. Waiting beats starting a
		// second server that would lose the port bind.
		if err := c.waitForService(ctx); err != nil {
			return false, c.notReady(err)
		}
		return false, nil
	}

	res := c.runner.Run(ctx, &execrun.Invocation{
		Path:       exe,
		Args:       []string{"serve"},
		Detach:     true,
		HideWindow: true,
	})
	if res.Error != nil {
		return false, c.notReady(fmt.Errorf("starting ollama serve: %w", res.Error))
	}

	if err := c.waitForService(ctx); err != nil {
		return true, c.notReady(err)
	}
	return true, nil
}

// waitForService polls the API at a constant cadence until it answers
// or the serve timeout elapses.
func (c *Checker) waitForService(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.PollInterval
	b.MaxInterval = c.PollInterval
	b.Multiplier = 1
	b.RandomizationFactor = 0
	b.MaxElapsedTime = c.cfg.ServeTimeout

	operation := func() error {
		if c.client.Ping(ctx) {
			return nil
		}
		return errServiceNotReady
	}

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return fmt.Errorf("service did not answer within %s: %w", c.cfg.ServeTimeout, err)
	}
	return nil
}

// ensureModel checks the installed models and pulls the configured one
// when nothing satisfies it. Reports whether a pull happened.
func (c *Checker) ensureModel(ctx context.Context, exe string) (bool, error) {
	ok, err := c.client.HasModel(ctx, c.cfg.Model)
	if err != nil {
		return false, c.notReady(err)
	}
	if ok {
		return false, nil
	}

	// Inherited stdio: ollama's own progress output is the progress UI.
	res := c.runner.Run(ctx, &execrun.Invocation{
		Path:   exe,
		Args:   []string{"pull", c.cfg.Model},
		Stdout: c.Stdout,
		Stderr: c.Stderr,
	})
	if !res.Succeeded() {
		err := res.Error
		if err == nil {
			err = fmt.Errorf("ollama pull exited with code %s", res.ExitCode)
		}
		return false, issue.NewErrorContext().
			WithOperation("pull model").
			WithResource(c.cfg.Model).
			WithSuggestion("Check the network connection and the model name").
			WithSuggestion(fmt.Sprintf("Try manually: ollama pull %s", c.cfg.Model)).
			WithIssue(issue.OllamaNotReadyId).
			Wrap(err).
			BuildError()
	}
	return true, nil
}

// notReady wraps a failure in the readiness card.
func (c *Checker) notReady(err error) error {
	return issue.NewErrorContext().
		WithOperation("reach ollama service").
		WithResource(c.client.BaseURL()).
		WithSuggestion("Check whether port 11434 is blocked or already in use").
		WithSuggestion("Try manually: ollama serve").
		WithIssue(issue.OllamaNotReadyId).
		Wrap(err).
		BuildError()
}
