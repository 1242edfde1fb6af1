package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/handiism/osu-beatmap-downloader/internal/config"
	"github.com/handiism/osu-beatmap-downloader/internal/download"
	ioutils "github.com/handiism/osu-beatmap-downloader/internal/io"
	"github.com/handiism/osu-beatmap-downloader/internal/model"
	"github.com/handiism/osu-beatmap-downloader/internal/osu"
)

func main() {
	// Command line flags
	var (
		rawFlag      = flag.Bool("raw", false, "Treat every line as a beatmap set ID instead of a link")
		beatmapFlag  = flag.Bool("beatmap-ids", false, "Treat every line as a beatmap ID and look up its set (needs an API key)")
		delayFlag    = flag.Float64("delay", -1, "Seconds to wait between downloads (overrides config)")
		outputFlag   = flag.String("output", "", "Output directory (default: list file name without extension)")
		configFlag   = flag.String("config", "", "Path to config file (.json or .toml)")
		apiKeyFlag   = flag.String("api-key", "", "Legacy API key (overrides the credentials file)")
		strictFlag   = flag.Bool("strict", false, "Also replace '-' in file names")
		verboseFlag  = flag.Bool("verbose", false, "Show verbose output")
		dryRunFlag   = flag.Bool("dry-run", false, "Resolve references without signing in or downloading")
		logLevelFlag = flag.String("log-level", "warn", "Log level (debug, info, warn, error)")
		logJSONFlag  = flag.Bool("log-json", false, "Output logs in JSON format")
	)

	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Println("osu! Beatmap Downloader - Download many beatmap sets at once")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  osu-dl [options] <credentials file> <list file>")
		fmt.Println()
		fmt.Println("The credentials file is JSON ({\"username\", \"password\", \"api_key\"})")
		fmt.Println("or a .env file with OSU_USERNAME, OSU_PASSWORD and OSU_API_KEY.")
		fmt.Println()
		fmt.Println("For interactive mode, use: osu-tui")
		fmt.Println()
		flag.PrintDefaults()
		os.Exit(1)
	}
	credsPath, listPath := flag.Arg(0), flag.Arg(1)

	logger, err := (&config.Logger{Level: *logLevelFlag, JSON: *logJSONFlag}).Configure()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logger: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	// Load config
	settings := config.DefaultSettings()
	if *configFlag != "" {
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// Apply flags
	if *rawFlag {
		settings.UseRawIDs = true
	}
	if *beatmapFlag {
		settings.UseBeatmapIDs = true
	}
	if *delayFlag >= 0 {
		settings.RequestDelay = *delayFlag
	}
	if *outputFlag != "" {
		settings.DownloadsPath = *outputFlag
	}
	if *strictFlag {
		settings.StrictFileNames = true
	}

	creds, err := config.LoadCredentials(credsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading credentials: %v\n", err)
		os.Exit(1)
	}
	if *apiKeyFlag != "" {
		creds.APIKey = *apiKeyFlag
	}

	lines, err := ioutils.ReadLines(listPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading list: %v\n", err)
		os.Exit(1)
	}

	// Handle interrupts
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	manager, err := download.NewManager(settings, creds, func(event download.ProgressEvent) {
		if event.Level == download.LevelVerbose && !*verboseFlag {
			return
		}
		fmt.Println(prefix(event.Level) + event.Message)
	}, download.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("osu! Beatmap Downloader")
	fmt.Println("----------------------------------------")
	fmt.Println()

	if *dryRunFlag {
		ids, unresolved, err := manager.Resolve(ctx, lines)
		if err != nil {
			fmt.Println("\nCancelled.")
			os.Exit(130)
		}
		fmt.Printf("\n[Dry run - %d beatmap set(s) resolved, %d skipped]\n", len(ids), len(unresolved))
		for _, id := range ids {
			fmt.Println(id)
		}
		return
	}

	report, err := manager.Run(ctx, lines, settings.DestinationDir(listPath))
	if err != nil {
		switch {
		case ctx.Err() != nil:
			fmt.Println("\nDownload cancelled.")
			os.Exit(130)
		case errors.Is(err, osu.ErrAuth):
			fmt.Fprintf(os.Stderr, "Could not sign in: %v\n", err)
		default:
			fmt.Fprintf(os.Stderr, "Error during download: %v\n", err)
		}
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("----------------------------------------")
	fmt.Printf("Complete! Saved %d, skipped %d (%.2f MB)\n",
		report.Saved(), report.Skipped(), float64(report.Bytes())/1024/1024)
	for _, r := range report.Results {
		if r.Status != model.StatusSaved {
			fmt.Println("  - " + r.String())
		}
	}
}

func prefix(level download.ProgressLevel) string {
	switch level {
	case download.LevelError:
		return "[error] "
	case download.LevelWarning:
		return "[warn]  "
	case download.LevelSuccess:
		return "[ok]    "
	case download.LevelInfo:
		return "[info]  "
	default:
		return "        "
	}
}
