package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	ioutils "github.com/handiism/osu-beatmap-downloader/internal/io"
)

// DefaultBaseURL is the osu! website.
const DefaultBaseURL = "https://osu.ppy.sh"

// Settings holds all configuration options.
type Settings struct {
	// Site settings
	BaseURL   string `json:"base_url" toml:"base_url"`
	UserAgent string `json:"user_agent" toml:"user_agent"`

	// Download settings
	DownloadsPath  string  `json:"downloads_path" toml:"downloads_path"`   // empty: list file name without extension
	RequestDelay   float64 `json:"request_delay" toml:"request_delay"`     // seconds between downloads
	RequestTimeout float64 `json:"request_timeout" toml:"request_timeout"` // seconds per request

	// Input settings
	UseRawIDs     bool `json:"use_raw_ids" toml:"use_raw_ids"`         // lines are beatmapset IDs
	UseBeatmapIDs bool `json:"use_beatmap_ids" toml:"use_beatmap_ids"` // lines are beatmap IDs, looked up first

	// File naming
	StrictFileNames bool `json:"strict_file_names" toml:"strict_file_names"` // also replace '-'
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		BaseURL:        DefaultBaseURL,
		UserAgent:      "osu-beatmap-downloader",
		DownloadsPath:  "",
		RequestDelay:   1.0,
		RequestTimeout: 60,

		UseRawIDs:       false,
		UseBeatmapIDs:   false,
		StrictFileNames: false,
	}
}

// Load reads settings from a JSON or TOML file, chosen by extension.
//
// Values missing from the file keep their defaults. A missing file yields
// the defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if isTOML(path) {
		err = toml.Unmarshal(data, settings)
	} else {
		err = json.Unmarshal(data, settings)
	}
	if err != nil {
		return nil, err
	}

	return settings, nil
}

// Save writes settings to a JSON or TOML file, chosen by extension.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	if isTOML(path) {
		data, err = toml.Marshal(s)
	} else {
		data, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Delay returns RequestDelay as a duration. Negative values are treated as zero.
func (s *Settings) Delay() time.Duration {
	return seconds(s.RequestDelay)
}

// Timeout returns RequestTimeout as a duration. Negative values are treated as zero.
func (s *Settings) Timeout() time.Duration {
	return seconds(s.RequestTimeout)
}

// DestinationDir returns where downloads of the given list file go.
func (s *Settings) DestinationDir(listPath string) string {
	if s.DownloadsPath != "" {
		return s.DownloadsPath
	}
	return ioutils.DestinationDir(listPath)
}

func seconds(v float64) time.Duration {
	if v <= 0 {
		return 0
	}
	return time.Duration(v * float64(time.Second))
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
