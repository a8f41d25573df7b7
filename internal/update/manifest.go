// SPDX-License-Identifier: MPL-2.0

package update

import (
	"errors"
	"fmt"

	"gopkg.in/ini.v1"
)

const (
	// manifestSection is the section the manifest is expected to carry.
	manifestSection = "AI-Fund-Master"
	// legacyManifestSection is the section name older manifests used.
	legacyManifestSection = "AI-Stock-Master"
)

// ErrManifestInvalid indicates the version manifest could not be
// interpreted.
var ErrManifestInvalid = errors.New("invalid version manifest")

// Manifest is the published release description: the remote version and
// the per-platform asset URLs. SHA256 is optional; when present it is
// the hex digest of the platform asset.
type Manifest struct {
	Version string
	ExeURL  string
	GzURL   string
	SHA256  string
}

// ParseManifest reads an INI manifest. The expected section is tried
// first, then the legacy name, then the first section present — older
// manifests were published under varying headers and the keys are what
// matters. A manifest without a version is unusable.
func ParseManifest(data []byte) (*Manifest, error) {
	f, err := ini.Load(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManifestInvalid, err)
	}

	sec := pickSection(f)
	if sec == nil {
		return nil, fmt.Errorf("%w: no sections", ErrManifestInvalid)
	}

	m := &Manifest{
		Version: sec.Key("version").String(),
		ExeURL:  sec.Key("exe").String(),
		GzURL:   sec.Key("gz").String(),
		SHA256:  sec.Key("sha256").String(),
	}
	if m.Version == "" {
		return nil, fmt.Errorf("%w: missing version", ErrManifestInvalid)
	}
	return m, nil
}

func pickSection(f *ini.File) *ini.Section {
	for _, name := range []string{manifestSection, legacyManifestSection} {
		if sec, err := f.GetSection(name); err == nil {
			return sec
		}
	}
	for _, sec := range f.Sections() {
		if sec.Name() != ini.DefaultSection {
			return sec
		}
	}
	return nil
}
