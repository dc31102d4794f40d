/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package config loads the user configuration: a YAML file in the user scope,
// merged over built-in defaults, with environment variables applied last as
// read-only overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EditorConfig tunes the interaction engine.
type EditorConfig struct {
	HistoryCapacity      int     `yaml:"history_capacity"`
	SnapThreshold        float64 `yaml:"snap_threshold"`
	AngleStep            float64 `yaml:"angle_step"`
	CardinalTolerance    float64 `yaml:"cardinal_tolerance"`
	HandleTolerance      float64 `yaml:"handle_tolerance"`
	RotateHandleDistance float64 `yaml:"rotate_handle_distance"`
	RotateHandleRadius   float64 `yaml:"rotate_handle_radius"`
	MinLayerSize         float64 `yaml:"min_layer_size"`
	// SkipHiddenLayers excludes invisible layers from hit-testing.
	SkipHiddenLayers bool `yaml:"skip_hidden_layers"`
}

type PageConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type StorageConfig struct {
	// Path of the sqlite project store; empty means the per-user data dir.
	Path string `yaml:"path"`
	// QuotaBytes caps the total size of stored project documents (0 = unlimited).
	QuotaBytes int64 `yaml:"quota_bytes"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// AppConfig is the user-editable configuration persisted as YAML.
// config_version: bump when the structure changes in a backward-incompatible way.
type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Editor        EditorConfig  `yaml:"editor"`
	Page          PageConfig    `yaml:"page"`
	Storage       StorageConfig `yaml:"storage"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Editor: EditorConfig{
			HistoryCapacity:      400,
			SnapThreshold:        8,
			AngleStep:            15,
			CardinalTolerance:    4,
			HandleTolerance:      10,
			RotateHandleDistance: 36,
			RotateHandleRadius:   12,
			MinLayerSize:         20,
		},
		Page:    PageConfig{Width: 900, Height: 1600},
		Storage: StorageConfig{QuotaBytes: 5 * 1024 * 1024},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvConfigFile      = "PGC_CONFIG"
	EnvHistoryCapacity = "PGC_HISTORY_CAPACITY"
	EnvSnapThreshold   = "PGC_SNAP_THRESHOLD"
	EnvSkipHidden      = "PGC_SKIP_HIDDEN_LAYERS"
	EnvPageWidth       = "PGC_PAGE_WIDTH"
	EnvPageHeight      = "PGC_PAGE_HEIGHT"
	EnvStoragePath     = "PGC_STORAGE_PATH"
	EnvStorageQuota    = "PGC_STORAGE_QUOTA_BYTES"
	EnvLogLevel        = "PGC_LOG_LEVEL"
	EnvLogFormat       = "PGC_LOG_FORMAT"
	EnvLogSource       = "PGC_LOG_SOURCE"
	EnvLogFile         = "PGC_LOG_FILE"
)

// overrides mirrors the env-overridable fields; nil means "not set".
type overrides struct {
	HistoryCapacity *int     `envconfig:"PGC_HISTORY_CAPACITY"`
	SnapThreshold   *float64 `envconfig:"PGC_SNAP_THRESHOLD"`
	SkipHidden      *bool    `envconfig:"PGC_SKIP_HIDDEN_LAYERS"`
	PageWidth       *float64 `envconfig:"PGC_PAGE_WIDTH"`
	PageHeight      *float64 `envconfig:"PGC_PAGE_HEIGHT"`
	StoragePath     *string  `envconfig:"PGC_STORAGE_PATH"`
	StorageQuota    *int64   `envconfig:"PGC_STORAGE_QUOTA_BYTES"`
	LogLevel        *string  `envconfig:"PGC_LOG_LEVEL"`
	LogFormat       *string  `envconfig:"PGC_LOG_FORMAT"`
	LogSource       *bool    `envconfig:"PGC_LOG_SOURCE"`
	LogFile         *string  `envconfig:"PGC_LOG_FILE"`
}

// BaseDir returns the per-user directory holding config and data files.
func BaseDir() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "PageComposer")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "PageComposer")
	default:
		if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
			base = filepath.Join(x, "pagecomposer")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "pagecomposer")
		}
	}
	if strings.TrimSpace(base) == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return base, nil
}

// ConfigPath returns the config file path; PGC_CONFIG wins when set.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigFile)); p != "" {
		return p, nil
	}
	base, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults and merges
// environment overrides. A missing file is not an error; a malformed one is.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	case !errors.Is(err, os.ErrNotExist):
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	if err := applyEnvOverrides(&cfg); err != nil {
		return cfg, err
	}
	if cfg.Storage.Path == "" {
		if base, err := BaseDir(); err == nil {
			cfg.Storage.Path = filepath.Join(base, "projects.sqlite")
		}
	}
	return cfg, nil
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	e, se := &dst.Editor, src.Editor
	if se.HistoryCapacity > 0 {
		e.HistoryCapacity = se.HistoryCapacity
	}
	setPositive(&e.SnapThreshold, se.SnapThreshold)
	setPositive(&e.AngleStep, se.AngleStep)
	setPositive(&e.CardinalTolerance, se.CardinalTolerance)
	setPositive(&e.HandleTolerance, se.HandleTolerance)
	setPositive(&e.RotateHandleDistance, se.RotateHandleDistance)
	setPositive(&e.RotateHandleRadius, se.RotateHandleRadius)
	setPositive(&e.MinLayerSize, se.MinLayerSize)
	// booleans: copy directly so user preferences persist
	e.SkipHiddenLayers = se.SkipHiddenLayers

	setPositive(&dst.Page.Width, src.Page.Width)
	setPositive(&dst.Page.Height, src.Page.Height)

	if p := strings.TrimSpace(src.Storage.Path); p != "" {
		dst.Storage.Path = p
	}
	if src.Storage.QuotaBytes != 0 {
		dst.Storage.QuotaBytes = src.Storage.QuotaBytes
	}

	if v := strings.TrimSpace(src.Logging.Level); v != "" {
		dst.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(src.Logging.Format); v != "" {
		dst.Logging.Format = strings.ToLower(v)
	}
	dst.Logging.Source = src.Logging.Source
	if v := strings.TrimSpace(src.Logging.File); v != "" {
		dst.Logging.File = v
	}
}

func setPositive(dst *float64, v float64) {
	if v > 0 {
		*dst = v
	}
}

func applyEnvOverrides(cfg *AppConfig) error {
	var o overrides
	if err := envconfig.Process("", &o); err != nil {
		return fmt.Errorf("env overrides: %w", err)
	}
	if o.HistoryCapacity != nil && *o.HistoryCapacity > 0 {
		cfg.Editor.HistoryCapacity = *o.HistoryCapacity
	}
	if o.SnapThreshold != nil {
		setPositive(&cfg.Editor.SnapThreshold, *o.SnapThreshold)
	}
	if o.SkipHidden != nil {
		cfg.Editor.SkipHiddenLayers = *o.SkipHidden
	}
	if o.PageWidth != nil {
		setPositive(&cfg.Page.Width, *o.PageWidth)
	}
	if o.PageHeight != nil {
		setPositive(&cfg.Page.Height, *o.PageHeight)
	}
	if o.StoragePath != nil && *o.StoragePath != "" {
		cfg.Storage.Path = *o.StoragePath
	}
	if o.StorageQuota != nil {
		cfg.Storage.QuotaBytes = *o.StorageQuota
	}
	if o.LogLevel != nil && *o.LogLevel != "" {
		cfg.Logging.Level = strings.ToLower(*o.LogLevel)
	}
	if o.LogFormat != nil && *o.LogFormat != "" {
		cfg.Logging.Format = strings.ToLower(*o.LogFormat)
	}
	if o.LogSource != nil {
		cfg.Logging.Source = *o.LogSource
	}
	if o.LogFile != nil && *o.LogFile != "" {
		cfg.Logging.File = *o.LogFile
	}
	return nil
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	names := map[string]string{
		"editor.history_capacity":   EnvHistoryCapacity,
		"editor.snap_threshold":     EnvSnapThreshold,
		"editor.skip_hidden_layers": EnvSkipHidden,
		"page.width":                EnvPageWidth,
		"page.height":               EnvPageHeight,
		"storage.path":              EnvStoragePath,
		"storage.quota_bytes":       EnvStorageQuota,
		"logging.level":             EnvLogLevel,
		"logging.format":            EnvLogFormat,
		"logging.source":            EnvLogSource,
		"logging.file":              EnvLogFile,
	}
	if name, ok := names[key]; ok && os.Getenv(name) != "" {
		return name, true
	}
	return "", false
}
