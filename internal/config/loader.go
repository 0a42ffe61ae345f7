package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidCollaboratorNames lists known implementation names per collaborator
// kind. Used by [Validate] to warn about unrecognised names.
var ValidCollaboratorNames = map[string][]string{
	"speech":       {"whisperx", "whisper-native"},
	"phonemes":     {"wav2vec"},
	"g2p":          {"espeak"},
	"articulatory": {"panphon"},
}

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if tls := cfg.Server.TLS; tls != nil {
		if tls.CertFile == "" || tls.KeyFile == "" {
			errs = append(errs, errors.New("server.tls requires both cert_file and key_file"))
		}
	}

	// Collaborator name validation — warn for unknown names.
	validateCollaboratorName("speech", cfg.Collaborators.Speech.Name)
	validateCollaboratorName("phonemes", cfg.Collaborators.Phonemes.Name)
	validateCollaboratorName("g2p", cfg.Collaborators.G2P.Name)
	validateCollaboratorName("articulatory", cfg.Collaborators.Articulatory.Name)

	// The three mandatory collaborators.
	if cfg.Collaborators.Speech.Name == "" {
		errs = append(errs, errors.New("collaborators.speech.name is required"))
	}
	if cfg.Collaborators.Phonemes.Name == "" {
		errs = append(errs, errors.New("collaborators.phonemes.name is required"))
	}
	if cfg.Collaborators.G2P.Name == "" {
		errs = append(errs, errors.New("collaborators.g2p.name is required"))
	}

	// Name ↔ endpoint cross-validation.
	if cfg.Collaborators.Speech.Name == "whisper-native" && cfg.Collaborators.Speech.ModelPath == "" {
		errs = append(errs, errors.New("collaborators.speech.model_path is required when name is whisper-native"))
	}
	if cfg.Collaborators.Speech.Name == "whisperx" && cfg.Collaborators.Speech.BaseURL == "" {
		errs = append(errs, errors.New("collaborators.speech.base_url is required when name is whisperx"))
	}
	if cfg.Collaborators.Phonemes.Name != "" && cfg.Collaborators.Phonemes.BaseURL == "" {
		errs = append(errs, errors.New("collaborators.phonemes.base_url is required"))
	}
	if cfg.Collaborators.G2P.Name != "" && cfg.Collaborators.G2P.BaseURL == "" {
		errs = append(errs, errors.New("collaborators.g2p.base_url is required"))
	}
	if cfg.Collaborators.Articulatory.Name != "" && cfg.Collaborators.Articulatory.BaseURL == "" {
		errs = append(errs, errors.New("collaborators.articulatory.base_url is required when articulatory is configured"))
	}

	// Engine
	if cfg.Engine.MaxConcurrent < 0 {
		errs = append(errs, fmt.Errorf("engine.max_concurrent %d must not be negative", cfg.Engine.MaxConcurrent))
	}
	if cfg.Engine.DefaultAccent != "" && !cfg.Engine.DefaultAccent.IsValid() {
		errs = append(errs, fmt.Errorf("engine.default_accent %q is invalid; valid values: us, uk", cfg.Engine.DefaultAccent))
	}

	// Optional layers.
	if cfg.Collaborators.Articulatory.Name == "" {
		slog.Warn("collaborators.articulatory is not configured; similarity scoring falls back to built-in feature comparison")
	}
	if cfg.Database.PostgresDSN == "" {
		slog.Warn("database.postgres_dsn is empty; assessment history will not be persisted")
	}

	return errors.Join(errs...)
}

// validateCollaboratorName logs a warning if name is non-empty and not found
// in the [ValidCollaboratorNames] list for the given kind.
func validateCollaboratorName(kind, name string) {
	if name == "" {
		return
	}
	known, ok := ValidCollaboratorNames[kind]
	if !ok {
		return
	}
	if slices.Contains(known, name) {
		return
	}
	slog.Warn("unknown collaborator name; may be a typo or a third-party implementation",
		"kind", kind,
		"name", name,
		"known", known,
	)
}
