// SPDX-License-Identifier: MPL-2.0

package update

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/lihrs/aifm-launcher/internal/config"
	"github.com/lihrs/aifm-launcher/internal/execrun"
	"github.com/lihrs/aifm-launcher/internal/issue"
	"github.com/lihrs/aifm-launcher/internal/platform"
	"github.com/lihrs/aifm-launcher/internal/workspace"
)

const (
	// manifestTimeout bounds the version manifest fetch; a slow check
	// must not hold up the launch.
	manifestTimeout = 10 * time.Second

	// maxManifestBytes bounds the manifest read; version manifests are a
	// few lines of INI.
	maxManifestBytes = 1 << 20

	// installerName is the filename the Windows installer is saved under
	// in the temp directory.
	installerName = "aifm-master-update.exe"

	userAgent = "aifm-launcher-updater/1.0"
)

// ErrNoAsset indicates the manifest has no download for this platform.
var ErrNoAsset = errors.New("manifest has no asset for this platform")

type (
	// UpdateCheck holds the result of comparing the installed version
	// against the published manifest.
	UpdateCheck struct {
		CurrentVersion  string
		RemoteVersion   string
		UpdateAvailable bool
		// Manifest is the parsed remote manifest, for a following Apply.
		Manifest *Manifest
		// Message is a human-readable status line.
		Message string
	}

	// ApplyResult reports what applying an update did.
	ApplyResult struct {
		// ExitRequired is set when a detached installer now owns the
		// upgrade and the launcher must exit to unlock its files.
		ExitRequired bool
		// InstallerPath is the downloaded installer, when one was used.
		InstallerPath string
		// FilesReplaced counts the files an archive extraction wrote.
		FilesReplaced int
	}

	// Updater compares the installed version against the published
	// manifest and applies newer releases per platform. The exported
	// fields are seams with working defaults.
	Updater struct {
		runner     execrun.Runner
		ws         *workspace.Workspace
		cfg        config.UpdateConfig
		httpClient *http.Client

		// GOOS selects the apply strategy.
		GOOS string
		// TempDir receives downloaded assets.
		TempDir string
	}

	// UpdaterOption configures an Updater during construction.
	UpdaterOption func(*Updater)
)

// WithHTTPClient overrides the HTTP client used for manifest and asset
// downloads.
func WithHTTPClient(c *http.Client) UpdaterOption {
	return func(u *Updater) {
		u.httpClient = c
	}
}

// NewUpdater creates an Updater over the given runner and working
// directory.
func NewUpdater(runner execrun.Runner, ws *workspace.Workspace, cfg config.UpdateConfig, opts ...UpdaterOption) *Updater {
	u := &Updater{
		runner:  runner,
		ws:      ws,
		cfg:     cfg,
		GOOS:    runtime.GOOS,
		TempDir: os.TempDir(),
	}
	for _, opt := range opts {
		opt(u)
	}
	if u.httpClient == nil {
		// No overall client timeout: asset downloads are bounded by the
		// caller's context, not a fixed budget.
		u.httpClient = &http.Client{}
	}
	return u
}

// Check fetches the manifest and compares versions. A version that does
// not parse as semver on either side reports no update; a manifest that
// cannot be fetched or read at all is an error for the caller to weigh.
func (u *Updater) Check(ctx context.Context) (*UpdateCheck, error) {
	ctx, cancel := context.WithTimeout(ctx, manifestTimeout)
	defer cancel()

	data, err := u.fetch(ctx, u.cfg.ManifestURL)
	if err != nil {
		return nil, fmt.Errorf("fetching version manifest: %w", err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, err
	}

	check := &UpdateCheck{
		CurrentVersion: u.cfg.AppVersion,
		RemoteVersion:  m.Version,
		Manifest:       m,
	}
	if !updateAvailable(u.cfg.AppVersion, m.Version) {
		check.Message = fmt.Sprintf("Version %s is up to date.", u.cfg.AppVersion)
		return check, nil
	}
	check.UpdateAvailable = true
	check.Message = fmt.Sprintf("Update available: %s -> %s", u.cfg.AppVersion, m.Version)
	return check, nil
}

// Apply installs the release the manifest describes. On Windows the
// installer runs detached and the result demands a launcher exit;
// elsewhere the archive is extracted over the application directory.
func (u *Updater) Apply(ctx context.Context, m *Manifest) (*ApplyResult, error) {
	if m == nil {
		return nil, errors.New("manifest must not be nil")
	}
	if u.GOOS == platform.Windows {
		return u.applyWindows(ctx, m)
	}
	return u.applyUnix(ctx, m)
}

func (u *Updater) applyWindows(ctx context.Context, m *Manifest) (*ApplyResult, error) {
	if m.ExeURL == "" {
		return nil, u.failed(fmt.Errorf("%w: no installer URL", ErrNoAsset))
	}

	dest := filepath.Join(u.TempDir, installerName)
	if err := u.download(ctx, m.ExeURL, dest); err != nil {
		return nil, u.failed(err)
	}
	if m.SHA256 != "" {
		if err := verifyChecksum(dest, m.SHA256); err != nil {
			return nil, u.failed(err)
		}
	}

	// Detached: the installer outlives the launcher, which must exit so
	// the installer can replace its files.
	res := u.runner.Run(ctx, &execrun.Invocation{Path: dest, Detach: true})
	if res.Error != nil {
		return nil, u.failed(fmt.Errorf("starting installer: %w", res.Error))
	}
	return &ApplyResult{ExitRequired: true, InstallerPath: dest}, nil
}

func (u *Updater) applyUnix(ctx context.Context, m *Manifest) (_ *ApplyResult, err error) {
	if m.GzURL == "" {
		return nil, u.failed(fmt.Errorf("%w: no archive URL", ErrNoAsset))
	}

	tmp, err := os.CreateTemp(u.TempDir, "aifm-update-*.tar.gz")
	if err != nil {
		return nil, u.failed(fmt.Errorf("creating temp file: %w", err))
	}
	archivePath := tmp.Name()
	if err := tmp.Close(); err != nil {
		return nil, u.failed(fmt.Errorf("closing temp file: %w", err))
	}
	defer func() { _ = os.Remove(archivePath) }()

	if err := u.download(ctx, m.GzURL, archivePath); err != nil {
		return nil, u.failed(err)
	}
	if m.SHA256 != "" {
		if err := verifyChecksum(archivePath, m.SHA256); err != nil {
			return nil, u.failed(err)
		}
	}

	replaced, err := extractOverwrite(archivePath, u.ws.Dir)
	if err != nil {
		return nil, u.failed(err)
	}
	return &ApplyResult{FilesReplaced: replaced}, nil
}

// fetch GETs a small document and returns its body.
func (u *Updater) fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := u.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }() // read-only response body

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxManifestBytes))
}

// download streams an asset to dest.
func (u *Updater) download(ctx context.Context, url, dest string) (err error) {
	resp, err := u.get(ctx, url)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }() // read-only response body

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("downloading %s: unexpected status %d", url, resp.StatusCode)
	}

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o755)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if _, err := io.Copy(out, resp.Body); err != nil {
		// Best-effort removal of the partially written asset.
		_ = os.Remove(dest)
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	return nil
}

func (u *Updater) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	return u.httpClient.Do(req)
}

// failed wraps an apply error in the update-failed card.
func (u *Updater) failed(err error) error {
	return issue.NewErrorContext().
		WithOperation("apply update").
		WithResource(u.cfg.ManifestURL).
		WithSuggestion("Re-run later: aifm-launcher update").
		WithSuggestion("Or download the release manually from the project page").
		WithIssue(issue.UpdateFailedId).
		Wrap(err).
		BuildError()
}
