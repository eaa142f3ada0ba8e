// Package config loads the service configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cancerscope/inference"
	"cancerscope/locale"
	"cancerscope/ml"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Http      HTTPConfig      `yaml:"http"`
	Log       LogConfig       `yaml:"log"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
	UI        UIConfig        `yaml:"ui"`
}

type HTTPConfig struct {
	Port           int           `yaml:"port"`
	Timeout        time.Duration `yaml:"timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes"`
}

type LogConfig struct {
	Level  string        `yaml:"level"`
	Format string        `yaml:"format"`
	File   LogFileConfig `yaml:"file"`
}

type LogFileConfig struct {
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

type ArtifactsConfig struct {
	Scaler         string `yaml:"scaler"`
	RandomForest   string `yaml:"random_forest"`
	SVM            string `yaml:"svm"`
	VotingEnsemble string `yaml:"voting_ensemble"`
}

type UIConfig struct {
	DefaultValue *float64 `yaml:"default_value"`
	Language     string   `yaml:"language"`
}

var validLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

// Default returns the configuration used for keys missing from the file.
func Default() *Config {
	defaultValue := ml.DefaultFeatureValue
	return &Config{
		Http: HTTPConfig{
			Port:           8080,
			Timeout:        30 * time.Second,
			AllowedOrigins: []string{"*"},
			MaxBodyBytes:   1 << 20,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
			File: LogFileConfig{
				MaxSizeMB:  100,
				MaxBackups: 3,
				MaxAgeDays: 28,
			},
		},
		Artifacts: ArtifactsConfig{
			Scaler:         "artifacts/scaler.json",
			RandomForest:   "artifacts/random_forest.json",
			SVM:            "artifacts/svm.json",
			VotingEnsemble: "artifacts/voting.json",
		},
		UI: UIConfig{
			DefaultValue: &defaultValue,
			Language:     "en",
		},
	}
}

// Load reads path over the defaults, resolves relative artifact and log paths
// against the directory holding the file, and validates the result.
func Load(path string) (*Config, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	config, err := Parse(payload)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	config.resolvePaths(filepath.Dir(path))
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return config, nil
}

// Parse decodes YAML over the defaults without validating.
func Parse(payload []byte) (*Config, error) {
	config := Default()
	if err := yaml.UnmarshalStrict(payload, config); err != nil {
		return nil, err
	}
	if config.UI.DefaultValue == nil {
		defaultValue := ml.DefaultFeatureValue
		config.UI.DefaultValue = &defaultValue
	}
	return config, nil
}

func (c *Config) resolvePaths(dir string) {
	resolve := func(p *string) {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
	resolve(&c.Artifacts.Scaler)
	resolve(&c.Artifacts.RandomForest)
	resolve(&c.Artifacts.SVM)
	resolve(&c.Artifacts.VotingEnsemble)
	resolve(&c.Log.File.Path)
}

func (c *Config) Validate() error {
	var errs []error
	if c.Http.Port <= 0 || c.Http.Port > 65535 {
		errs = append(errs, fmt.Errorf("http.port %d out of range", c.Http.Port))
	}
	if c.Http.Timeout <= 0 {
		errs = append(errs, errors.New("http.timeout must be positive"))
	}
	if c.Http.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("http.max_body_bytes must be positive"))
	}
	if !validLevels[c.Log.Level] {
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format %q must be console or json", c.Log.Format))
	}
	for _, artifact := range []struct{ key, path string }{
		{"artifacts.scaler", c.Artifacts.Scaler},
		{"artifacts.random_forest", c.Artifacts.RandomForest},
		{"artifacts.svm", c.Artifacts.SVM},
		{"artifacts.voting_ensemble", c.Artifacts.VotingEnsemble},
	} {
		if artifact.path == "" {
			errs = append(errs, fmt.Errorf("%s is required", artifact.key))
		}
	}
	if _, ok := locale.Parse(c.UI.Language); !ok {
		errs = append(errs, fmt.Errorf("ui.language %q is not supported", c.UI.Language))
	}
	return errors.Join(errs...)
}

// Paths converts the artifact section for inference.Load.
func (a ArtifactsConfig) Paths() inference.Paths {
	return inference.Paths{
		Scaler:         a.Scaler,
		RandomForest:   a.RandomForest,
		SVM:            a.SVM,
		VotingEnsemble: a.VotingEnsemble,
	}
}
