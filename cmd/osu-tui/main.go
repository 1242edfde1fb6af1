package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/handiism/osu-beatmap-downloader/internal/config"
	"github.com/handiism/osu-beatmap-downloader/internal/tui"
)

func main() {
	var (
		configFlag = flag.String("config", "", "Path to config file (.json or .toml)")
		credsFlag  = flag.String("creds", "credentials.json", "Path to credentials file (.json or .env)")
	)
	flag.Parse()

	// The alternate screen owns the terminal; only errors are logged.
	logger, err := (&config.Logger{Level: "error"}).Configure()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	settings := config.DefaultSettings()
	if *configFlag != "" {
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	creds, err := config.LoadCredentials(*credsFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading credentials: %v\n", err)
		os.Exit(1)
	}

	if err := tui.Run(settings, creds); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
