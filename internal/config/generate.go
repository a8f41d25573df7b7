// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// generatedHeader is prepended to every generated config file.
const generatedHeader = `# aifm-launcher configuration.
# Every key is optional; missing keys fall back to the built-in defaults.
# Environment overrides use the AIFM_ prefix, e.g. AIFM_OLLAMA_MODEL.

`

type (
	// tomlDocument mirrors Config with durations rendered as strings so
	// the generated file round-trips through the duration parsing used
	// on load.
	tomlDocument struct {
		Profile   string            `toml:"profile"`
		UI        UIConfig          `toml:"ui"`
		Provision ProvisionConfig   `toml:"provision"`
		Ollama    tomlOllamaSection `toml:"ollama"`
		Update    UpdateConfig      `toml:"update"`
	}

	// tomlOllamaSection is OllamaConfig with ServeTimeout as a duration string.
	tomlOllamaSection struct {
		Enabled      bool   `toml:"enabled"`
		Required     bool   `toml:"required"`
		Model        string `toml:"model"`
		BaseURL      string `toml:"base_url"`
		ServeTimeout string `toml:"serve_timeout"`
	}
)

// GenerateTOML renders cfg as a commented TOML document.
func GenerateTOML(cfg *Config) (string, error) {
	doc := tomlDocument{
		Profile:   string(cfg.Profile),
		UI:        cfg.UI,
		Provision: cfg.Provision,
		Ollama: tomlOllamaSection{
			Enabled:      cfg.Ollama.Enabled,
			Required:     cfg.Ollama.Required,
			Model:        cfg.Ollama.Model,
			BaseURL:      cfg.Ollama.BaseURL,
			ServeTimeout: cfg.Ollama.ServeTimeout.String(),
		},
		Update: cfg.Update,
	}

	var sb strings.Builder
	sb.WriteString(generatedHeader)

	data, err := toml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to render config: %w", err)
	}
	sb.Write(data)

	return sb.String(), nil
}

// CreateDefaultConfig writes the default configuration file into dir
// (the working directory when dir is empty) and returns the written
// path. An existing file is left untouched.
func CreateDefaultConfig(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}

	cfgPath := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)

	// Check if file already exists
	if _, err := os.Stat(cfgPath); err == nil {
		return cfgPath, nil
	}

	content, err := GenerateTOML(DefaultConfig())
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return cfgPath, nil
}
