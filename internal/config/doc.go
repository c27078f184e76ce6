// Package config provides configuration management for mal-image-downloader.
//
// This package handles:
//   - Default configuration values matching the downloader's fixed behavior
//   - Loading and saving settings from JSON, TOML or YAML files
//   - Validation of numeric limits
//
// # Default Settings
//
//	settings := config.DefaultSettings()
//	// Downloads to ./MAL_Images
//	// 5 attempts per image, waiting 1s, 2s, 4s, 8s between them
//	// One download at a time
//
// # Loading from File
//
// The format is picked from the file extension (.json, .toml, .yaml, .yml):
//
//	settings, err := config.Load("mal-images.toml")
//	if err != nil {
//	    // A missing file yields defaults, not an error
//	}
//
// Keys absent from the file keep their default values.
package config
