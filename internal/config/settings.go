package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/handiism/mal-image-downloader/internal/http"
	"github.com/handiism/mal-image-downloader/internal/model"
)

// ErrUnsupportedFormat is returned for settings files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported settings format")

// Settings holds all configuration options.
type Settings struct {
	// Download settings
	OutputDir             string  `json:"output_dir" toml:"output_dir" yaml:"output_dir"`
	MaxConcurrentDownload int     `json:"max_concurrent_downloads" toml:"max_concurrent_downloads" yaml:"max_concurrent_downloads"`
	DownloadMaxRetries    int     `json:"download_max_retries" toml:"download_max_retries" yaml:"download_max_retries"`
	DownloadRetryCooldown float64 `json:"download_retry_cooldown" toml:"download_retry_cooldown" yaml:"download_retry_cooldown"`
	DownloadRetryExponent float64 `json:"download_retry_exponent" toml:"download_retry_exponent" yaml:"download_retry_exponent"`
	RequestTimeoutSeconds int     `json:"request_timeout_seconds" toml:"request_timeout_seconds" yaml:"request_timeout_seconds"`
	UserAgent             string  `json:"user_agent" toml:"user_agent" yaml:"user_agent"`

	// File naming
	TitleMaxLength int `json:"title_max_length" toml:"title_max_length" yaml:"title_max_length"`

	// Cover art settings
	ConvertCoverArtToJPG bool `json:"convert_cover_art_to_jpg" toml:"convert_cover_art_to_jpg" yaml:"convert_cover_art_to_jpg"`
	CoverArtResize       bool `json:"cover_art_resize" toml:"cover_art_resize" yaml:"cover_art_resize"`
	CoverArtMaxSize      int  `json:"cover_art_max_size" toml:"cover_art_max_size" yaml:"cover_art_max_size"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		OutputDir:             "MAL_Images",
		MaxConcurrentDownload: 1,
		DownloadMaxRetries:    5,
		DownloadRetryCooldown: 1.0,
		DownloadRetryExponent: 2.0,
		RequestTimeoutSeconds: int(http.DefaultTimeout / time.Second),
		UserAgent:             http.DefaultUserAgent,

		TitleMaxLength: model.DefaultTitleLength,

		ConvertCoverArtToJPG: false,
		CoverArtResize:       false,
		CoverArtMaxSize:      1000,
	}
}

// Load reads settings from a JSON, TOML or YAML file.
//
// A missing file is not an error: defaults are returned instead.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, fmt.Errorf("reading settings: %w", err)
	}

	settings := DefaultSettings()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, settings)
	case ".toml":
		_, err = toml.Decode(string(data), settings)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, settings)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing settings %s: %w", path, err)
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return settings, nil
}

// Save writes settings to a file, in the format given by its extension.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var data []byte
	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		data, err = json.MarshalIndent(s, "", "  ")
	case ".toml":
		var buf bytes.Buffer
		err = toml.NewEncoder(&buf).Encode(s)
		data = buf.Bytes()
	case ".yaml", ".yml":
		data, err = yaml.Marshal(s)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks that numeric settings are usable.
func (s *Settings) Validate() error {
	var errs []error
	if s.OutputDir == "" {
		errs = append(errs, errors.New("output_dir must not be empty"))
	}
	if s.DownloadMaxRetries < 1 {
		errs = append(errs, fmt.Errorf("download_max_retries must be at least 1, got %d", s.DownloadMaxRetries))
	}
	if s.MaxConcurrentDownload < 1 {
		errs = append(errs, fmt.Errorf("max_concurrent_downloads must be at least 1, got %d", s.MaxConcurrentDownload))
	}
	if s.RequestTimeoutSeconds < 1 {
		errs = append(errs, fmt.Errorf("request_timeout_seconds must be at least 1, got %d", s.RequestTimeoutSeconds))
	}
	if s.DownloadRetryCooldown < 0 || s.DownloadRetryExponent < 0 {
		errs = append(errs, errors.New("retry cooldown and exponent must not be negative"))
	}
	if s.CoverArtResize && s.CoverArtMaxSize < 1 {
		errs = append(errs, fmt.Errorf("cover_art_max_size must be at least 1, got %d", s.CoverArtMaxSize))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid settings: %w", errors.Join(errs...))
	}
	return nil
}

// RequestTimeout returns the per-request timeout as a duration.
func (s *Settings) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}

// RetryDelay returns how long to wait after the given 0-indexed failed attempt:
// cooldown * exponent^attempt seconds.
func (s *Settings) RetryDelay(attempt int) time.Duration {
	cooldown := s.DownloadRetryCooldown * math.Pow(s.DownloadRetryExponent, float64(attempt))
	return time.Duration(cooldown * float64(time.Second))
}
