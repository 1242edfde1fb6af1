package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/m-mizutani/goerr/v2"

	"github.com/handiism/osu-beatmap-downloader/internal/model"
)

// Environment keys read from dotenv credential files.
const (
	EnvUsername = "OSU_USERNAME"
	EnvPassword = "OSU_PASSWORD"
	EnvAPIKey   = "OSU_API_KEY"
)

// LoadCredentials reads login credentials from a file.
//
// Files ending in ".env" are read as dotenv files using the OSU_USERNAME,
// OSU_PASSWORD and OSU_API_KEY keys. Anything else is read as JSON:
//
//	{"username": "...", "password": "...", "api_key": "..."}
func LoadCredentials(path string) (*model.Credentials, error) {
	if isDotenv(path) {
		env, err := godotenv.Read(path)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read credentials", goerr.V("path", path))
		}
		return &model.Credentials{
			Username: env[EnvUsername],
			Password: env[EnvPassword],
			APIKey:   env[EnvAPIKey],
		}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read credentials", goerr.V("path", path))
	}

	var creds model.Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, goerr.Wrap(err, "failed to parse credentials", goerr.V("path", path))
	}
	return &creds, nil
}

func isDotenv(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	return base == ".env" || strings.HasSuffix(base, ".env")
}
