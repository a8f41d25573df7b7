// SPDX-License-Identifier: EPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	UvNotFoundId Id = iota + 1
	VenvCreateFailedId
	RequirementsNotFoundId
	InstallFailedId
	LegacyConfigRenameFailedId
	EntrypointNotFoundId
	OllamaNotInstalledId
	OllamaNotReadyId
	PathPermissionDeniedId
	ConfigLoadFailedId
	AlreadyRunningId
	UpdateFailedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // documentation links shown under "See also"
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	uvNotFoundIssue = &Issue{
		id: UvNotFoundId,
		mdMsg: `
# uv not found!

The bundled 'uv' binary is missing from the application directory.
uv creates the Python environment and installs the app's dependencies.

## Things you can try:
- Verify you extracted the full application package; 'uv.exe' ships
  next to the launcher
- Download uv manually and place it in the application directory:
~~~
https://docs.astral.sh/uv/getting-started/installation/
~~~

- Or point the launcher at an existing uv install:
~~~
$ aifm-launcher config init
# then set provision.uv_path in aifm-launcher.toml
~~~`,
		extLinks: []HttpLink{"https://docs.astral.sh/uv/"},
	}

	venvCreateFailedIssue = &Issue{
		id: VenvCreateFailedId,
		mdMsg: `
# Failed to create the Python environment!

'uv venv' exited with an error, so no usable environment exists.

## Common causes:
- No Python of the required version is installed and uv could not
  download one (offline, proxy, or firewall)
- The .venv directory is partially created or locked by another process
- Insufficient disk space

## Things you can try:
- Delete the broken environment and re-run the launcher:
~~~
$ rmdir /s /q .venv     (Windows)
$ rm -rf .venv          (macOS/Linux)
~~~

- Install a matching Python from https://www.python.org/downloads/
- Re-run with verbose output for the full uv error:
~~~
$ aifm-launcher --verbose
~~~`,
	}

	requirementsNotFoundIssue = &Issue{
		id: RequirementsNotFoundId,
		mdMsg: `
# requirements.txt not found!

The dependency manifest must sit in the application directory; without
it the launcher cannot install the app's Python packages.

## Things you can try:
- Run the launcher from the application directory (the folder that
  contains gui.py and requirements.txt)
- Or point it there explicitly:
~~~
$ aifm-launcher --dir C:\path\to\AI-Fund-Master
~~~

- If the file is genuinely missing, re-extract the application package`,
	}

	installFailedIssue = &Issue{
		id: InstallFailedId,
		mdMsg: `
# Dependency installation failed!

'uv pip install -r requirements.txt' exited with an error. The
environment exists but is incomplete, so the app was not started.

## Common causes:
- No network connectivity to the package index
- A pinned package has no build for your Python version or platform
- A compiler toolchain is missing for a source-only package

## Things you can try:
- Check your network/proxy settings and re-run the launcher
  (installation is resumable; finished packages are cached)
- Re-run with verbose output to see which package failed:
~~~
$ aifm-launcher --verbose
~~~`,
	}

	legacyConfigRenameFailedIssue = &Issue{
		id: LegacyConfigRenameFailedId,
		mdMsg: `
# Could not retire pyproject.toml!

A leftover pyproject.toml would make uv treat the application directory
as a Python project and override the provisioned environment, so the
launcher renames it to pyproject-old.toml. That rename failed.

## Common causes:
- The file is open in an editor or locked by another process
- The directory is read-only for your user

## Things you can try:
- Close programs that may hold the file open and re-run
- Rename it manually, then re-run:
~~~
$ ren pyproject.toml pyproject-old.toml     (Windows)
$ mv pyproject.toml pyproject-old.toml      (macOS/Linux)
~~~`,
	}

	entrypointNotFoundIssue = &Issue{
		id: EntrypointNotFoundId,
		mdMsg: `
# Application entry point not found!

The GUI script for the selected profile is missing from the
application directory.

## Entry points per profile:
- **default**: gui.py
- **pyqt5**:   gui-pyqt5.py

## Things you can try:
- Run the launcher from the application directory, or pass --dir
- Check the active profile:
~~~
$ aifm-launcher config show
~~~

- Switch profiles if you installed the PyQt5 edition:
~~~
$ aifm-launcher --profile pyqt5
~~~`,
	}

	ollamaNotInstalledIssue = &Issue{
		id: OllamaNotInstalledId,
		mdMsg: `
# Ollama is not installed

The app uses a local Ollama service for AI analysis. The launcher
looked on PATH and in the usual install locations but found nothing.
The app still starts without it; AI features will be unavailable.

## Things you can try:
- Install Ollama from the official site:
~~~
https://ollama.com/download
~~~

- After installing, re-run the launcher; it registers Ollama on your
  PATH and pulls the default model automatically
- If Ollama is installed somewhere unusual, add it to PATH yourself`,
		extLinks: []HttpLink{"https://ollama.com/download"},
	}

	ollamaNotReadyIssue = &Issue{
		id: OllamaNotReadyId,
		mdMsg: `
# Ollama service is not ready

Ollama is installed but the service did not answer, or the required
model could not be pulled.

## Things you can try:
- Start the service manually and watch for errors:
~~~
$ ollama serve
~~~

- Pull the model yourself to see download progress:
~~~
$ ollama pull qwen3:4b
~~~

- If the service listens on a non-default address, set OLLAMA_HOST
  (and OLLAMA_PORT) or ollama.base_url in aifm-launcher.toml`,
	}

	pathPermissionDeniedIssue = &Issue{
		id: PathPermissionDeniedId,
		mdMsg: `
# Could not update your PATH

Writing the per-user PATH entry was denied. This does not stop the
app; it only means 'ollama' will not resolve in new terminals until
the entry exists.

## Things you can try:
- Re-run the launcher as administrator once so it can write the
  registry entry
- Or add the Ollama directory to PATH manually:
  Settings > System > About > Advanced system settings >
  Environment Variables > Path`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the aifm-launcher configuration file.

## Configuration file locations:
- Application directory: ./aifm-launcher.toml
- Windows: %APPDATA%\aifm-launcher\aifm-launcher.toml
- macOS: ~/Library/Application Support/aifm-launcher/aifm-launcher.toml
- Linux: ~/.config/aifm-launcher/aifm-launcher.toml

## Things you can try:
- Create a fresh default configuration:
~~~
$ aifm-launcher config init
~~~

- Check the TOML syntax of your edits
- Remove the config file to fall back to defaults`,
	}

	alreadyRunningIssue = &Issue{
		id: AlreadyRunningId,
		mdMsg: `
# Another launcher is already running

A live launcher process holds the instance lock, so this one exits to
avoid provisioning the same directory twice.

## Things you can try:
- Switch to the already-running window
- If no launcher window exists, the previous run may still be
  installing dependencies; give it a moment
- To run anyway (automation, tests):
~~~
$ aifm-launcher --no-lock
~~~`,
	}

	updateFailedIssue = &Issue{
		id: UpdateFailedId,
		mdMsg: `
# Application update failed

The update could not be downloaded or applied. Your current
installation is unchanged.

## Common causes:
- No network connectivity to the release server
- The release manifest is malformed or missing the platform asset
- The download did not match its published checksum

## Things you can try:
- Re-run the update later:
~~~
$ aifm-launcher update
~~~

- Download the release manually from the project page and extract it
  over the application directory`,
	}

	issues = map[Id]*Issue{
		uvNotFoundIssue.Id():               uvNotFoundIssue,
		venvCreateFailedIssue.Id():         venvCreateFailedIssue,
		requirementsNotFoundIssue.Id():     requirementsNotFoundIssue,
		installFailedIssue.Id():            installFailedIssue,
		legacyConfigRenameFailedIssue.Id(): legacyConfigRenameFailedIssue,
		entrypointNotFoundIssue.Id():       entrypointNotFoundIssue,
		ollamaNotInstalledIssue.Id():       ollamaNotInstalledIssue,
		ollamaNotReadyIssue.Id():           ollamaNotReadyIssue,
		pathPermissionDeniedIssue.Id():     pathPermissionDeniedIssue,
		configLoadFailedIssue.Id():         configLoadFailedIssue,
		alreadyRunningIssue.Id():           alreadyRunningIssue,
		updateFailedIssue.Id():             updateFailedIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
