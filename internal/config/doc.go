// Package config provides configuration management for osu-beatmap-downloader.
//
// This package handles:
//   - Loading and saving settings from JSON or TOML files
//   - Default configuration values
//   - Loading login credentials from JSON or dotenv files
//   - Building the slog logger
//
// # Default Settings
//
//	settings := config.DefaultSettings()
//	// Talks to https://osu.ppy.sh
//	// Waits 1 second between downloads
//	// 60 second timeout per request
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/config.toml")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// # Credentials
//
//	creds, err := config.LoadCredentials("login.json")
//
// # Logging
//
//	logger, err := (&config.Logger{Level: "debug"}).Configure()
//
// Passwords and API keys are redacted from log output.
package config
