package download

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/handiism/osu-beatmap-downloader/internal/config"
	"github.com/handiism/osu-beatmap-downloader/internal/model"
	"github.com/handiism/osu-beatmap-downloader/internal/osu"
	"github.com/handiism/osu-beatmap-downloader/internal/osu/osutest"
)

type harness struct {
	server  *osutest.Server
	manager *Manager
	sleeps  []time.Duration
	events  []ProgressEvent
	destDir string
}

func newHarness(t *testing.T, configure func(*config.Settings)) *harness {
	t.Helper()

	h := &harness{
		server:  osutest.NewServer(),
		destDir: filepath.Join(t.TempDir(), "maps"),
	}
	t.Cleanup(h.server.Close)

	settings := config.DefaultSettings()
	settings.BaseURL = h.server.URL
	settings.RequestDelay = 3
	if configure != nil {
		configure(settings)
	}

	creds := &model.Credentials{
		Username: h.server.Username,
		Password: h.server.Password,
		APIKey:   h.server.APIKey,
	}

	m, err := NewManager(settings, creds, func(e ProgressEvent) {
		h.events = append(h.events, e)
	})
	gt.NoError(t, err)

	m.sleep = func(ctx context.Context, d time.Duration) error {
		h.sleeps = append(h.sleeps, d)
		return ctx.Err()
	}
	h.manager = m
	return h
}

func (h *harness) session(t *testing.T) *osu.Session {
	t.Helper()
	session, err := h.manager.Authenticate(context.Background())
	gt.NoError(t, err)
	return session
}

func TestManager_EndToEnd(t *testing.T) {
	h := newHarness(t, nil)
	h.server.Beatmaps["999"] = "42"
	h.server.Packages["12345"] = osutest.Package{
		FileName: "Artist - Title (Mapper) [Normal].osz",
		Body:     []byte("first package"),
	}
	h.server.Packages["555"] = osutest.Package{Body: []byte("<html>unavailable</html>")}
	h.server.Packages["42"] = osutest.Package{
		FileName: "Artist/Title.osz",
		Body:     []byte("second package"),
	}

	lines := []string{
		"https://osu.ppy.sh/beatmapsets/12345#osu/67890",
		"https://osu.ppy.sh/s/555",
		"https://osu.ppy.sh/b/999",
		"not a valid reference",
	}

	report, err := h.manager.Run(context.Background(), lines, h.destDir)
	gt.NoError(t, err)

	gt.Equal(t, h.server.Downloads(), []string{"12345", "555", "42"})
	gt.Number(t, h.server.Lookups()).Equal(1)
	gt.Number(t, len(report.Results)).Equal(4)

	unresolved := report.Results[0]
	gt.Equal(t, unresolved.Status, model.StatusUnresolved)
	gt.Equal(t, unresolved.Line, "not a valid reference")
	gt.True(t, errors.Is(unresolved.Err, osu.ErrUnresolved))

	first := report.Results[1]
	gt.Equal(t, first.Status, model.StatusSaved)
	gt.Equal(t, first.Path, filepath.Join(h.destDir, "Artist - Title (Mapper) [Normal].osz"))
	gt.Equal(t, first.Bytes, int64(len("first package")))

	gt.Equal(t, report.Results[2], model.NotFoundResult("555"))

	third := report.Results[3]
	gt.Equal(t, third.Status, model.StatusSaved)
	gt.Equal(t, third.Path, filepath.Join(h.destDir, "Artist_Title.osz"))

	data, err := os.ReadFile(third.Path)
	gt.NoError(t, err)
	gt.Equal(t, string(data), "second package")

	entries, err := os.ReadDir(h.destDir)
	gt.NoError(t, err)
	gt.Number(t, len(entries)).Equal(2)

	gt.Number(t, report.Saved()).Equal(2)
	gt.Number(t, report.Skipped()).Equal(2)

	// Referer must point at the beatmapset page
	gt.Equal(t, h.server.Referer("12345"), h.server.URL+"/beatmapsets/12345")
}

func TestManager_PartialFailure(t *testing.T) {
	h := newHarness(t, nil)
	ids := []string{"1", "2", "3", "4", "5"}
	for _, id := range []string{"1", "3", "5"} {
		h.server.Packages[id] = osutest.Package{FileName: id + ".osz", Body: []byte(id)}
	}
	h.server.Packages["4"] = osutest.Package{Body: []byte("removed")}

	gt.NoError(t, os.MkdirAll(h.destDir, 0755))
	results, err := h.manager.Download(context.Background(), h.session(t), ids, h.destDir)
	gt.NoError(t, err)

	gt.Number(t, len(results)).Equal(len(ids))
	wantStatus := []model.Status{
		model.StatusSaved, model.StatusNotFound, model.StatusSaved, model.StatusNotFound, model.StatusSaved,
	}
	for i, r := range results {
		gt.Equal(t, r.ID, ids[i])
		gt.Equal(t, r.Status, wantStatus[i])
	}

	processed, total, saved, received := h.manager.GetProgress()
	gt.Number(t, processed).Equal(int32(5))
	gt.Number(t, total).Equal(int32(5))
	gt.Number(t, saved).Equal(int32(3))
	gt.Number(t, received).Equal(int64(3))
}

func TestManager_DelayBetweenItemsOnly(t *testing.T) {
	h := newHarness(t, nil)
	ids := []string{"10", "11", "10"}
	h.server.Packages["10"] = osutest.Package{FileName: "ten.osz", Body: []byte("x")}

	gt.NoError(t, os.MkdirAll(h.destDir, 0755))
	results, err := h.manager.Download(context.Background(), h.session(t), ids, h.destDir)
	gt.NoError(t, err)

	gt.Number(t, len(results)).Equal(3)
	gt.Equal(t, h.sleeps, []time.Duration{3 * time.Second, 3 * time.Second})
	// duplicates are downloaded again, not deduplicated
	gt.Equal(t, h.server.Downloads(), []string{"10", "11", "10"})
}

func TestManager_ErrorStatusWithDisposition(t *testing.T) {
	h := newHarness(t, nil)
	h.server.Packages["7"] = osutest.Package{FileName: "7.osz", Body: []byte("error page"), Status: 500}

	gt.NoError(t, os.MkdirAll(h.destDir, 0755))
	results, err := h.manager.Download(context.Background(), h.session(t), []string{"7"}, h.destDir)
	gt.NoError(t, err)

	gt.Equal(t, results[0].Status, model.StatusFailed)
	_, statErr := os.Stat(filepath.Join(h.destDir, "7.osz"))
	gt.True(t, os.IsNotExist(statErr))
}

func TestManager_WriteFailureContinues(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("directory permissions differ on windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}

	h := newHarness(t, nil)
	h.server.Packages["1"] = osutest.Package{FileName: "one.osz", Body: []byte("1")}
	h.server.Packages["2"] = osutest.Package{FileName: "two.osz", Body: []byte("2")}

	gt.NoError(t, os.MkdirAll(h.destDir, 0555))
	t.Cleanup(func() { os.Chmod(h.destDir, 0755) })

	results, err := h.manager.Download(context.Background(), h.session(t), []string{"1", "2"}, h.destDir)
	gt.NoError(t, err)
	gt.Number(t, len(results)).Equal(2)
	gt.Equal(t, results[0].Status, model.StatusFailed)
	gt.Equal(t, results[1].Status, model.StatusFailed)
}

func TestManager_MissingDestinationDirFailsItem(t *testing.T) {
	h := newHarness(t, nil)
	h.server.Packages["1"] = osutest.Package{FileName: "one.osz", Body: []byte("1")}

	results, err := h.manager.Download(context.Background(), h.session(t), []string{"1"}, filepath.Join(h.destDir, "missing"))
	gt.NoError(t, err)
	gt.Equal(t, results[0].Status, model.StatusFailed)
	gt.Value(t, results[0].Err).NotNil()
}

func TestManager_AuthFailureAbortsBatch(t *testing.T) {
	h := newHarness(t, nil)
	h.manager.creds.Password = "wrong"

	report, err := h.manager.Run(context.Background(), []string{"https://osu.ppy.sh/s/1"}, h.destDir)
	gt.True(t, errors.Is(err, osu.ErrAuth))
	gt.Number(t, len(report.Results)).Equal(0)
	gt.Number(t, len(h.server.Downloads())).Equal(0)

	_, statErr := os.Stat(h.destDir)
	gt.True(t, os.IsNotExist(statErr))
}

func TestManager_RawIDs(t *testing.T) {
	h := newHarness(t, func(s *config.Settings) {
		s.UseRawIDs = true
		s.StrictFileNames = true
	})
	h.server.Packages["100"] = osutest.Package{FileName: "100 Artist - Title.osz", Body: []byte("raw")}

	report, err := h.manager.Run(context.Background(), []string{"100", "", "  "}, h.destDir)
	gt.NoError(t, err)
	gt.Number(t, len(report.Results)).Equal(3)

	gt.Equal(t, report.Results[0].Status, model.StatusUnresolved)
	gt.Equal(t, report.Results[0].Line, "")
	gt.True(t, errors.Is(report.Results[0].Err, osu.ErrUnresolved))
	gt.Equal(t, report.Results[1].Status, model.StatusUnresolved)
	gt.Equal(t, report.Results[1].Line, "  ")

	gt.Equal(t, report.Results[2].Path, filepath.Join(h.destDir, "100 Artist _ Title.osz"))
	gt.Number(t, h.server.Lookups()).Equal(0)
}

func TestManager_BlankLinesInURLMode(t *testing.T) {
	h := newHarness(t, nil)

	ids, unresolved, err := h.manager.Resolve(context.Background(), []string{"https://osu.ppy.sh/s/1", "", "   "})
	gt.NoError(t, err)
	gt.Equal(t, ids, []string{"1"})
	gt.Number(t, len(unresolved)).Equal(2)

	var warnings int
	for _, e := range h.events {
		if e.Level == LevelWarning {
			warnings++
		}
	}
	gt.Number(t, warnings).Equal(2)
}

func TestManager_BeatmapIDs(t *testing.T) {
	h := newHarness(t, func(s *config.Settings) {
		s.UseBeatmapIDs = true
	})
	h.server.Beatmaps["999"] = "42"
	h.server.Packages["42"] = osutest.Package{FileName: "42 Artist - Title.osz", Body: []byte("set")}

	report, err := h.manager.Run(context.Background(), []string{"999", " 404 ", ""}, h.destDir)
	gt.NoError(t, err)
	gt.Number(t, len(report.Results)).Equal(3)
	gt.Number(t, h.server.Lookups()).Equal(2)
	gt.Equal(t, h.server.Downloads(), []string{"42"})

	gt.True(t, errors.Is(report.Results[0].Err, osu.ErrLookupEmpty))
	gt.True(t, errors.Is(report.Results[1].Err, osu.ErrUnresolved))
	gt.Equal(t, report.Results[2].Status, model.StatusSaved)
	gt.Equal(t, report.Results[2].ID, "42")
}

func TestManager_BeatmapIDsWithoutAPIKey(t *testing.T) {
	h := newHarness(t, func(s *config.Settings) {
		s.UseBeatmapIDs = true
	})
	h.manager.resolver = osu.NewResolver(nil, osu.ModeBeatmapID)

	ids, unresolved, err := h.manager.Resolve(context.Background(), []string{"999"})
	gt.NoError(t, err)
	gt.Number(t, len(ids)).Equal(0)
	gt.True(t, errors.Is(unresolved[0].Err, osu.ErrUnresolved))
	gt.Number(t, h.server.Lookups()).Equal(0)
}

func TestManager_ResolveLookupEmpty(t *testing.T) {
	h := newHarness(t, nil)

	ids, unresolved, err := h.manager.Resolve(context.Background(), []string{
		"https://osu.ppy.sh/b/404",
		"https://osu.ppy.sh/s/1",
		"https://osu.ppy.sh/s/1",
	})
	gt.NoError(t, err)
	gt.Equal(t, ids, []string{"1", "1"})
	gt.Number(t, len(unresolved)).Equal(1)
	gt.True(t, errors.Is(unresolved[0].Err, osu.ErrLookupEmpty))

	var warnings int
	for _, e := range h.events {
		if e.Level == LevelWarning {
			warnings++
		}
	}
	gt.Number(t, warnings).Equal(1)
}

func TestManager_CancelledBetweenItems(t *testing.T) {
	h := newHarness(t, nil)
	h.server.Packages["1"] = osutest.Package{FileName: "one.osz", Body: []byte("1")}
	h.server.Packages["2"] = osutest.Package{FileName: "two.osz", Body: []byte("2")}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.manager.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	gt.NoError(t, os.MkdirAll(h.destDir, 0755))
	results, err := h.manager.Download(ctx, h.session(t), []string{"1", "2"}, h.destDir)
	gt.True(t, errors.Is(err, context.Canceled))
	gt.Number(t, len(results)).Equal(1)
	gt.Equal(t, h.server.Downloads(), []string{"1"})
}

func TestManager_CancelledAfterSaveKeepsResult(t *testing.T) {
	h := newHarness(t, nil)
	h.server.Packages["1"] = osutest.Package{FileName: "one.osz", Body: []byte("1")}
	h.server.Packages["2"] = osutest.Package{FileName: "two.osz", Body: []byte("2")}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.manager.onProgress = func(e ProgressEvent) {
		if e.Level == LevelSuccess {
			cancel()
		}
	}

	gt.NoError(t, os.MkdirAll(h.destDir, 0755))
	results, err := h.manager.Download(ctx, h.session(t), []string{"1", "2"}, h.destDir)
	gt.True(t, errors.Is(err, context.Canceled))
	gt.Number(t, len(results)).Equal(1)
	gt.Equal(t, results[0].Status, model.StatusSaved)

	_, _, saved, _ := h.manager.GetProgress()
	gt.Number(t, saved).Equal(1)
	gt.Equal(t, h.server.Downloads(), []string{"1"})
}

func TestManager_FileName(t *testing.T) {
	h := newHarness(t, nil)
	tests := []struct {
		suggested string
		want      string
	}{
		{"a:b.osz", "a_b.osz"},
		{"..", "9.osz"},
		{".", "9.osz"},
		{"  ", "9.osz"},
		{"../escape.osz", ".._escape.osz"},
	}

	for _, tt := range tests {
		t.Run(tt.suggested, func(t *testing.T) {
			gt.Equal(t, h.manager.fileName(tt.suggested, "9"), tt.want)
		})
	}
}

func TestSleepContext(t *testing.T) {
	gt.NoError(t, sleepContext(context.Background(), 0))
	gt.NoError(t, sleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	gt.True(t, errors.Is(sleepContext(ctx, time.Hour), context.Canceled))
}
