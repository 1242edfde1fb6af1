// Package tui provides a Bubble Tea terminal user interface for osu-beatmap-downloader.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/osu-beatmap-downloader/internal/config"
	"github.com/handiism/osu-beatmap-downloader/internal/download"
	ioutils "github.com/handiism/osu-beatmap-downloader/internal/io"
	"github.com/handiism/osu-beatmap-downloader/internal/model"
	"github.com/handiism/osu-beatmap-downloader/internal/osu"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF66AA")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)
)

const maxLogs = 10

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateRunning
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	creds     *model.Credentials
	logs      []LogEntry
	report    *model.Report
	err       error

	// Run context
	ctx    context.Context
	cancel context.CancelFunc
	events chan download.ProgressEvent

	manager *download.Manager

	processed int32
	total     int32
	saved     int32
	received  int64

	// Options
	rawIDs     bool
	beatmapIDs bool
	strict     bool
	verbose    bool

	width  int
	height int
}

// NewModel creates a new TUI model.
func NewModel(settings *config.Settings, creds *model.Credentials) Model {
	ti := textinput.New()
	ti.Placeholder = "path/to/maps.txt"
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF66AA"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:      StateInput,
		textInput:  ti,
		spinner:    sp,
		progress:   prog,
		settings:   settings,
		creds:      creds,
		logs:       make([]LogEntry, 0),
		ctx:        ctx,
		cancel:     cancel,
		rawIDs:     settings.UseRawIDs,
		beatmapIDs: settings.UseBeatmapIDs,
		strict:     settings.StrictFileNames,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ProgressMsg is sent for every event the manager reports.
	ProgressMsg struct {
		Event download.ProgressEvent
	}

	// RunDoneMsg is sent when the batch finishes.
	RunDoneMsg struct {
		Report *model.Report
		Err    error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateRunning {
				m.cancel()
			}

		case "enter":
			if m.state == StateInput && strings.TrimSpace(m.textInput.Value()) != "" {
				return m.start()
			}

		case "ctrl+r":
			if m.state == StateInput {
				m.rawIDs = !m.rawIDs
			}

		case "ctrl+b":
			if m.state == StateInput {
				m.beatmapIDs = !m.beatmapIDs
			}

		case "ctrl+s":
			if m.state == StateInput {
				m.strict = !m.strict
			}

		case "ctrl+v":
			if m.state == StateInput {
				m.verbose = !m.verbose
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "n":
			if m.state == StateComplete || m.state == StateError {
				return m.reset(), textinput.Blink
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		cmds = append(cmds, waitForEvent(m.events))
		// Filter verbose messages if not in verbose mode
		if msg.Event.Level == download.LevelVerbose && !m.verbose {
			break
		}
		m.logs = append(m.logs, LogEntry{
			Message: msg.Event.Message,
			Level:   msg.Event.Level,
		})
		if len(m.logs) > maxLogs {
			m.logs = m.logs[len(m.logs)-maxLogs:]
		}

	case RunDoneMsg:
		m.report = msg.Report
		m.updateCounters()
		switch {
		case m.ctx.Err() != nil:
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		case errors.Is(msg.Err, osu.ErrAuth):
			m.state = StateError
			m.err = fmt.Errorf("could not sign in: %w", msg.Err)
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			m.state = StateComplete
		}

	case TickMsg:
		if m.state == StateRunning {
			m.updateCounters()
			var percent float64
			if m.total > 0 {
				percent = float64(m.processed) / float64(m.total)
			}
			cmds = append(cmds, m.progress.SetPercent(percent), tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	// Update text input
	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// start reads the list file and launches the batch in the background.
func (m Model) start() (tea.Model, tea.Cmd) {
	listPath := strings.TrimSpace(m.textInput.Value())

	lines, err := ioutils.ReadLines(listPath)
	if err != nil {
		m.state = StateError
		m.err = fmt.Errorf("reading list: %w", err)
		return m, nil
	}

	settings := *m.settings
	settings.UseRawIDs = m.rawIDs
	settings.UseBeatmapIDs = m.beatmapIDs
	settings.StrictFileNames = m.strict

	ctx := m.ctx
	events := make(chan download.ProgressEvent, 64)
	manager, err := download.NewManager(&settings, m.creds, func(event download.ProgressEvent) {
		select {
		case events <- event:
		case <-ctx.Done():
		}
	})
	if err != nil {
		m.state = StateError
		m.err = err
		return m, nil
	}

	m.events = events
	m.manager = manager
	m.state = StateRunning
	destDir := settings.DestinationDir(listPath)

	run := func() tea.Msg {
		report, err := manager.Run(ctx, lines, destDir)
		close(events)
		return RunDoneMsg{Report: report, Err: err}
	}

	return m, tea.Batch(run, waitForEvent(events), tickProgress(), m.spinner.Tick)
}

func (m Model) reset() Model {
	m.state = StateInput
	m.logs = nil
	m.report = nil
	m.err = nil
	m.manager = nil
	m.events = nil
	m.processed, m.total, m.saved, m.received = 0, 0, 0, 0
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.textInput.SetValue("")
	m.textInput.Focus()
	return m
}

func (m *Model) updateCounters() {
	if m.manager != nil {
		m.processed, m.total, m.saved, m.received = m.manager.GetProgress()
	}
}

// waitForEvent returns a command that delivers the next manager event.
func waitForEvent(events <-chan download.ProgressEvent) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return ProgressMsg{Event: event}
	}
}

// tickProgress returns a command to tick progress updates.
func tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("osu! Beatmap Downloader"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Download many beatmap sets at once"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateRunning:
		b.WriteString(m.viewRunning())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Enter the path of a beatmap list file:"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Lines are raw beatmap set IDs (ctrl+r)\n", checkbox(m.rawIDs)))
	b.WriteString(fmt.Sprintf("  %s Lines are beatmap IDs (ctrl+b)\n", checkbox(m.beatmapIDs)))
	b.WriteString(fmt.Sprintf("  %s Replace '-' in file names (ctrl+s)\n", checkbox(m.strict)))
	b.WriteString(fmt.Sprintf("  %s Verbose output (ctrl+v)\n", checkbox(m.verbose)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Signed in as: %s | Delay: %.1fs", m.creds.Username, m.settings.RequestDelay)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewRunning() string {
	var b strings.Builder

	if m.total == 0 {
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(subtitleStyle.Render("Signing in and resolving links..."))
		b.WriteString("\n\n")
	} else {
		b.WriteString(m.progress.ViewAs(float64(m.processed) / float64(m.total)))
		b.WriteString("\n")
		b.WriteString(infoStyle.Render(fmt.Sprintf(
			"Beatmap sets: %d/%d | Saved: %d | Downloaded: %.2f MB",
			m.processed,
			m.total,
			m.saved,
			float64(m.received)/1024/1024,
		)))
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	saved, skipped := 0, 0
	var size int64
	if m.report != nil {
		saved, skipped, size = m.report.Saved(), m.report.Skipped(), m.report.Bytes()
	}

	box := boxStyle.Render(fmt.Sprintf(
		"Download Complete!\n\n"+
			"Saved: %d\n"+
			"Skipped: %d\n"+
			"Size: %.2f MB",
		saved,
		skipped,
		float64(size)/1024/1024,
	))
	b.WriteString(box)
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case download.LevelError:
			style = errorStyle
			prefix = "✗"
		case download.LevelWarning:
			style = warningStyle
			prefix = "!"
		case download.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case download.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • ctrl+r: raw IDs • ctrl+b: beatmap IDs • ctrl+s: strict names • ctrl+v: verbose • esc: quit"
	case StateRunning:
		return "esc: cancel"
	case StateComplete, StateError:
		return "n: new list • q: quit"
	}
	return ""
}

func checkbox(on bool) string {
	if on {
		return "[×]"
	}
	return "[ ]"
}

// Run starts the TUI application.
func Run(settings *config.Settings, creds *model.Credentials) error {
	p := tea.NewProgram(NewModel(settings, creds), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
