package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/handiism/osu-beatmap-downloader/internal/config"
	httpclient "github.com/handiism/osu-beatmap-downloader/internal/http"
	ioutils "github.com/handiism/osu-beatmap-downloader/internal/io"
	"github.com/handiism/osu-beatmap-downloader/internal/model"
	"github.com/handiism/osu-beatmap-downloader/internal/osu"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a download progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger for protocol details. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// Manager coordinates a batch: login, reference resolution and sequential
// downloads.
type Manager struct {
	settings *config.Settings
	creds    *model.Credentials
	client   *httpclient.Client
	resolver *osu.Resolver
	logger   *slog.Logger
	sanitize func(string) string
	sleep    func(context.Context, time.Duration) error

	totalItems     int32
	processedItems int32
	savedItems     int32
	receivedBytes  int64

	onProgress func(ProgressEvent)
}

// NewManager creates a new download Manager.
//
// A fresh HTTP client (and so a fresh cookie jar) is created for every
// Manager; one Manager runs one batch.
func NewManager(settings *config.Settings, creds *model.Credentials, onProgress func(ProgressEvent), opts ...Option) (*Manager, error) {
	client, err := httpclient.NewClient(
		httpclient.WithTimeout(settings.Timeout()),
		httpclient.WithUserAgent(settings.UserAgent),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create HTTP client")
	}

	if creds == nil {
		creds = &model.Credentials{}
	}

	sanitize := ioutils.SanitizeFileName
	if settings.StrictFileNames {
		sanitize = ioutils.SanitizeFileNameStrict
	}

	m := &Manager{
		settings:   settings,
		creds:      creds,
		client:     client,
		logger:     slog.Default(),
		sanitize:   sanitize,
		sleep:      sleepContext,
		onProgress: onProgress,
	}
	for _, opt := range opts {
		opt(m)
	}

	var lookup osu.BeatmapsetLookup
	if creds.APIKey != "" {
		lookup = osu.NewLegacyAPI(client, settings.BaseURL, creds.APIKey)
	}
	m.resolver = osu.NewResolver(lookup, inputMode(settings))

	return m, nil
}

// inputMode picks the resolver mode. Beatmap IDs win over beatmapset IDs
// when both are set.
func inputMode(settings *config.Settings) osu.Mode {
	switch {
	case settings.UseBeatmapIDs:
		return osu.ModeBeatmapID
	case settings.UseRawIDs:
		return osu.ModeBeatmapsetID
	default:
		return osu.ModeURL
	}
}

// Run authenticates, resolves every line and downloads the resolved
// beatmapsets into destDir.
//
// Only authentication failures and cancellation are returned as errors;
// every other problem becomes a Result in the report. Unresolved lines come
// first in the report, followed by one result per resolved ID in input order.
func (m *Manager) Run(ctx context.Context, lines []string, destDir string) (*model.Report, error) {
	report := &model.Report{}

	session, err := m.Authenticate(ctx)
	if err != nil {
		return report, err
	}

	ids, unresolved, err := m.Resolve(ctx, lines)
	report.Add(unresolved...)
	if err != nil {
		return report, err
	}

	if len(ids) == 0 {
		m.progress(ProgressEvent{Message: "Nothing to download", Level: LevelWarning})
		return report, nil
	}

	if err := ioutils.EnsureDir(destDir); err != nil {
		return report, goerr.Wrap(err, "failed to create destination directory", goerr.V("path", destDir))
	}

	results, err := m.Download(ctx, session, ids, destDir)
	report.Add(results...)
	if err != nil {
		return report, err
	}

	m.progress(ProgressEvent{
		Message: fmt.Sprintf("Finished: %d saved, %d skipped", report.Saved(), report.Skipped()),
		Level:   LevelSuccess,
	})
	return report, nil
}

// Authenticate logs in with the manager's credentials.
func (m *Manager) Authenticate(ctx context.Context) (*osu.Session, error) {
	m.progress(ProgressEvent{Message: fmt.Sprintf("Signing in as %s", m.creds.Username), Level: LevelInfo})

	auth := osu.NewAuthenticator(m.client, m.settings.BaseURL, m.logger)
	session, err := auth.Authenticate(ctx, m.creds)
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Sign in failed: %v", err), Level: LevelError})
		return nil, err
	}

	m.progress(ProgressEvent{Message: "Signed in", Level: LevelVerbose})
	return session, nil
}

// Resolve turns input lines into beatmapset IDs, preserving order and
// duplicates.
//
// Every line that cannot be resolved, blank lines included, is returned as
// an unresolved result and reported as a warning. The error is non-nil only
// if ctx is cancelled.
func (m *Manager) Resolve(ctx context.Context, lines []string) ([]string, []model.Result, error) {
	var (
		ids        []string
		unresolved []model.Result
	)

	for _, line := range lines {
		if err := ctx.Err(); err != nil {
			return ids, unresolved, err
		}

		id, err := m.resolver.Resolve(ctx, line)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ids, unresolved, ctxErr
			}
			m.logger.Debug("unresolved reference", slog.String("line", line), slog.Any("error", err))
			unresolved = append(unresolved, model.UnresolvedResult(line, err))
			m.progress(ProgressEvent{Message: fmt.Sprintf("Skipping %q: %s", line, unresolvedReason(line, err)), Level: LevelWarning})
			continue
		}

		m.progress(ProgressEvent{Message: fmt.Sprintf("Resolved %s -> %s", strings.TrimSpace(line), id), Level: LevelVerbose})
		ids = append(ids, id)
	}

	return ids, unresolved, nil
}

// Download fetches every beatmapset strictly one after another, waiting the
// configured delay between requests.
//
// Each ID yields exactly one result. The error is non-nil only if ctx is
// cancelled; the results gathered so far, including the item in flight, are
// returned with it.
func (m *Manager) Download(ctx context.Context, session *osu.Session, ids []string, destDir string) ([]model.Result, error) {
	results := make([]model.Result, 0, len(ids))
	atomic.StoreInt32(&m.totalItems, int32(len(ids)))
	delay := m.settings.Delay()

	for i, id := range ids {
		if i > 0 {
			if err := m.sleep(ctx, delay); err != nil {
				return results, err
			}
		}

		result := m.downloadOne(ctx, session, id, destDir)
		results = append(results, result)
		atomic.AddInt32(&m.processedItems, 1)
		m.reportResult(i+1, len(ids), result)

		if err := ctx.Err(); err != nil {
			return results, err
		}
	}

	return results, nil
}

// GetProgress returns current batch progress.
func (m *Manager) GetProgress() (processed, total, saved int32, received int64) {
	return atomic.LoadInt32(&m.processedItems), atomic.LoadInt32(&m.totalItems),
		atomic.LoadInt32(&m.savedItems), atomic.LoadInt64(&m.receivedBytes)
}

func (m *Manager) downloadOne(ctx context.Context, session *osu.Session, id, destDir string) model.Result {
	m.logger.Debug("requesting beatmapset", slog.String("id", id), slog.String("url", session.DownloadURL(id)))

	resp, err := session.OpenBeatmapset(ctx, id)
	if err != nil {
		return model.FailedResult(id, goerr.Wrap(err, "download request failed", goerr.V("id", id)))
	}
	defer resp.Body.Close()

	name, ok := osu.FileNameFromDisposition(resp.Header.Get("Content-Disposition"))
	if !ok {
		m.logger.Debug("no file offered", slog.String("id", id), slog.Int("status", resp.StatusCode))
		return model.NotFoundResult(id)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return model.FailedResult(id, goerr.New("unexpected response status",
			goerr.V("id", id), goerr.V("status", resp.StatusCode)))
	}

	path := filepath.Join(destDir, m.fileName(name, id))
	n, err := httpclient.SaveBody(resp.Body, path, resp.ContentLength, nil)
	if err != nil {
		return model.FailedResult(id, goerr.Wrap(err, "failed to save package", goerr.V("path", path)))
	}

	atomic.AddInt32(&m.savedItems, 1)
	atomic.AddInt64(&m.receivedBytes, n)
	return model.SavedResult(id, path, n)
}

// fileName sanitizes the server-suggested name. Names that would point at
// the directory itself fall back to the beatmapset ID.
func (m *Manager) fileName(suggested, id string) string {
	name := m.sanitize(suggested)
	switch strings.TrimSpace(name) {
	case "", ".", "..":
		return id + ".osz"
	}
	return name
}

func (m *Manager) reportResult(n, total int, result model.Result) {
	counter := fmt.Sprintf("(%d/%d)", n, total)
	switch result.Status {
	case model.StatusSaved:
		m.progress(ProgressEvent{Message: fmt.Sprintf("%s %s", counter, filepath.Base(result.Path)), Level: LevelSuccess})
	case model.StatusNotFound:
		m.progress(ProgressEvent{Message: fmt.Sprintf("%s Beatmap set %s not found", counter, result.ID), Level: LevelWarning})
	default:
		m.progress(ProgressEvent{Message: fmt.Sprintf("%s Beatmap set %s failed: %v", counter, result.ID, result.Err), Level: LevelError})
	}
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}

func unresolvedReason(line string, err error) string {
	switch {
	case strings.TrimSpace(line) == "":
		return "empty line"
	case errors.Is(err, osu.ErrLookupEmpty):
		return "beatmap not found"
	case errors.Is(err, osu.ErrUnresolved):
		return "not a beatmap link"
	default:
		return err.Error()
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
