package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/m-mizutani/gt"

	"github.com/handiism/osu-beatmap-downloader/internal/config"
	"github.com/handiism/osu-beatmap-downloader/internal/download"
	"github.com/handiism/osu-beatmap-downloader/internal/model"
	"github.com/handiism/osu-beatmap-downloader/internal/osu"
)

func newTestModel() Model {
	return NewModel(config.DefaultSettings(), &model.Credentials{Username: "player"})
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModel_TogglesOptions(t *testing.T) {
	m := newTestModel()
	gt.True(t, !m.rawIDs)

	m = update(m, tea.KeyMsg{Type: tea.KeyCtrlR})
	m = update(m, tea.KeyMsg{Type: tea.KeyCtrlB})
	m = update(m, tea.KeyMsg{Type: tea.KeyCtrlS})
	m = update(m, tea.KeyMsg{Type: tea.KeyCtrlV})

	gt.True(t, m.rawIDs)
	gt.True(t, m.beatmapIDs)
	gt.True(t, m.strict)
	gt.True(t, m.verbose)
	gt.True(t, strings.Contains(m.View(), "[×] Lines are raw beatmap set IDs"))
}

func TestModel_FiltersVerboseEvents(t *testing.T) {
	m := newTestModel()

	m = update(m, ProgressMsg{Event: download.ProgressEvent{Message: "Resolved 1 -> 1", Level: download.LevelVerbose}})
	gt.Equal(t, len(m.logs), 0)

	m = update(m, ProgressMsg{Event: download.ProgressEvent{Message: "(1/1) 1 Artist - Title.osz", Level: download.LevelSuccess}})
	gt.Equal(t, len(m.logs), 1)
}

func TestModel_KeepsLastLogs(t *testing.T) {
	m := newTestModel()
	for i := 0; i < maxLogs+5; i++ {
		m = update(m, ProgressMsg{Event: download.ProgressEvent{Message: "line", Level: download.LevelInfo}})
	}
	gt.Equal(t, len(m.logs), maxLogs)
}

func TestModel_RunDone(t *testing.T) {
	report := &model.Report{}
	report.Add(model.SavedResult("1", "/tmp/1.osz", 2048), model.NotFoundResult("2"))

	m := update(newTestModel(), RunDoneMsg{Report: report})
	gt.Equal(t, m.state, StateComplete)
	gt.True(t, strings.Contains(m.View(), "Saved: 1"))
	gt.True(t, strings.Contains(m.View(), "Skipped: 1"))
}

func TestModel_RunDoneAuthFailure(t *testing.T) {
	err := errors.Join(osu.ErrAuth, errors.New("status 403"))
	m := update(newTestModel(), RunDoneMsg{Report: &model.Report{}, Err: err})

	gt.Equal(t, m.state, StateError)
	gt.True(t, strings.Contains(m.View(), "could not sign in"))
}

func TestModel_StartWithMissingList(t *testing.T) {
	m := newTestModel()
	m.textInput.SetValue("/does/not/exist.txt")

	m = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	gt.Equal(t, m.state, StateError)
	gt.True(t, strings.Contains(m.View(), "reading list"))

	m = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	gt.Equal(t, m.state, StateInput)
	gt.Equal(t, m.textInput.Value(), "")
}
