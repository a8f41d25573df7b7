// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"
)

func TestProfileIsValid(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		want    bool
	}{
		{"default profile", ProfileDefault, true},
		{"pyqt5 profile", ProfilePyQt5, true},
		{"unknown profile", Profile("qt6"), false},
		{"empty profile", Profile(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errs := tt.profile.IsValid()
			if got != tt.want {
				t.Errorf("IsValid() = %v, want %v", got, tt.want)
			}
			if !tt.want {
				if len(errs) != 1 {
					t.Fatalf("expected 1 error, got %d", len(errs))
				}
				if !errors.Is(errs[0], ErrInvalidProfile) {
					t.Errorf("error should wrap ErrInvalidProfile, got %v", errs[0])
				}
			}
		})
	}
}

func TestProfileSpec(t *testing.T) {
	tests := []struct {
		profile    Profile
		wantMinor  int
		wantScript string
	}{
		{ProfileDefault, 11, "gui.py"},
		{ProfilePyQt5, 10, "gui-pyqt5.py"},
	}

	for _, tt := range tests {
		t.Run(string(tt.profile), func(t *testing.T) {
			spec := tt.profile.Spec()
			if spec.PythonMajor != 3 {
				t.Errorf("PythonMajor = %d, want 3", spec.PythonMajor)
			}
			if spec.PythonMinor != tt.wantMinor {
				t.Errorf("PythonMinor = %d, want %d", spec.PythonMinor, tt.wantMinor)
			}
			if spec.Entrypoint != tt.wantScript {
				t.Errorf("Entrypoint = %q, want %q", spec.Entrypoint, tt.wantScript)
			}
		})
	}
}

func TestProfileSpecUnknownFallsBackToDefault(t *testing.T) {
	spec := Profile("bogus").Spec()
	if spec.Entrypoint != "gui.py" {
		t.Errorf("unknown profile spec = %+v, want the default profile's", spec)
	}
}

func TestLinkModeIsValid(t *testing.T) {
	for _, m := range []LinkMode{LinkModeCopy, LinkModeClone, LinkModeHardlink, LinkModeSymlink} {
		if ok, _ := m.IsValid(); !ok {
			t.Errorf("LinkMode %q should be valid", m)
		}
	}

	ok, errs := LinkMode("reflink").IsValid()
	if ok {
		t.Error("unknown link mode should be invalid")
	}
	if len(errs) != 1 || !errors.Is(errs[0], ErrInvalidLinkMode) {
		t.Errorf("expected InvalidLinkModeError wrapping ErrInvalidLinkMode, got %v", errs)
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if ok, errs := cfg.IsValid(); !ok {
		t.Fatalf("DefaultConfig() must validate, got %v", errs)
	}

	if cfg.Profile != ProfileDefault {
		t.Errorf("default profile = %q", cfg.Profile)
	}
	if cfg.Provision.VenvDir != ".venv" {
		t.Errorf("default venv dir = %q", cfg.Provision.VenvDir)
	}
	if cfg.Ollama.Model != "qwen3:4b" {
		t.Errorf("default model = %q", cfg.Ollama.Model)
	}
	if cfg.Ollama.Required {
		t.Error("readiness must not gate the launch by default")
	}
	if !cfg.UI.Pause {
		t.Error("pause-on-exit should default to on")
	}
}

func TestConfigIsValidCollectsFieldErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Profile = "qt6"
	cfg.Provision.LinkMode = "reflink"
	cfg.Provision.VenvDir = "   "

	ok, errs := cfg.IsValid()
	if ok {
		t.Fatal("config with three bad fields should be invalid")
	}
	if len(errs) != 1 {
		t.Fatalf("expected a single wrapping error, got %d", len(errs))
	}

	var invalid *InvalidConfigError
	if !errors.As(errs[0], &invalid) {
		t.Fatalf("expected *InvalidConfigError, got %T", errs[0])
	}
	if len(invalid.FieldErrors) != 3 {
		t.Errorf("FieldErrors = %d, want 3: %v", len(invalid.FieldErrors), invalid.FieldErrors)
	}
	if !errors.Is(errs[0], ErrInvalidConfig) {
		t.Error("wrapping error should match ErrInvalidConfig")
	}
}

func TestConfigIsValidIgnoresModelWhenOllamaDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Ollama.Enabled = false
	cfg.Ollama.Model = ""

	if ok, errs := cfg.IsValid(); !ok {
		t.Errorf("model is irrelevant when the ollama steps are disabled, got %v", errs)
	}
}
