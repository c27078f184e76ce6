// Package tui provides a Bubble Tea terminal user interface for mal-image-downloader.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/mal-image-downloader/internal/config"
	"github.com/handiism/mal-image-downloader/internal/download"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#2E51A2")).
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
	StateInitializing
	StateDownloading
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// logBuffer collects progress events from the download goroutine.
type logBuffer struct {
	mu      sync.Mutex
	entries []LogEntry
}

func (b *logBuffer) add(event download.ProgressEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, LogEntry{Message: event.Message, Level: event.Level})
	if len(b.entries) > maxLogs*4 {
		b.entries = b.entries[len(b.entries)-maxLogs*4:]
	}
}

func (b *logBuffer) snapshot() []LogEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]LogEntry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	logs      *logBuffer
	found     string
	summary   *download.Summary
	err       error

	// Download context
	ctx    context.Context
	cancel context.CancelFunc

	manager *download.Manager
	// run identifies the current download; messages from earlier runs are dropped.
	run int

	// Download progress
	processed int32
	total     int32
	succeeded int32
	received  int64

	// Options
	convertJPG bool
	verbose    bool

	width  int
	height int
}

// NewModel creates a new TUI model.
func NewModel(settings *config.Settings) Model {
	ti := textinput.New()
	ti.Placeholder = "animelist_1700000000_-_1234567.xml"
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#2E51A2"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		settings:  settings,
		logs:      &logBuffer{},
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// InitDoneMsg is sent when the export has been parsed.
	InitDoneMsg struct {
		Run     int
		Found   string
		Manager *download.Manager
		Err     error
	}

	// DownloadDoneMsg is sent when every entry has been processed.
	DownloadDoneMsg struct {
		Run     int
		Summary *download.Summary
		Err     error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct {
		Run int
	}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-20, 20), 80)
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
			if m.state == StateDownloading || m.state == StateInitializing {
				m.cancel()
				m.state = StateError
				m.err = fmt.Errorf("cancelled by user")
			}

		case "enter":
			if m.state == StateInput && strings.TrimSpace(m.textInput.Value()) != "" {
				m.state = StateInitializing
				return m, tea.Batch(m.initializeDownload(), m.spinner.Tick)
			}

		case "ctrl+t":
			if m.state == StateInput {
				m.convertJPG = !m.convertJPG
			}

		case "ctrl+o":
			if m.state == StateInput {
				m.verbose = !m.verbose
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				m.state = StateInput
				m.logs = &logBuffer{}
				m.found = ""
				m.summary = nil
				m.err = nil
				m.processed, m.total, m.succeeded, m.received = 0, 0, 0, 0
				m.manager = nil
				m.run++
				m.ctx, m.cancel = context.WithCancel(context.Background())
				m.textInput.SetValue("")
				return m, m.textInput.Focus()
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case InitDoneMsg:
		if msg.Run != m.run {
			return m, nil
		}
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.found = msg.Found
			m.manager = msg.Manager
			m.state = StateDownloading
			cmds = append(cmds, m.startDownload(), m.tickProgress())
		}

	case DownloadDoneMsg:
		if msg.Run != m.run {
			return m, nil
		}
		m.summary = msg.Summary
		m.pollProgress()
		if m.ctx.Err() != nil {
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		} else if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.state = StateComplete
		}

	case TickMsg:
		if msg.Run == m.run && m.manager != nil && m.state == StateDownloading {
			m.pollProgress()

			var percent float64
			if m.total > 0 {
				percent = float64(m.processed) / float64(m.total)
			}
			cmds = append(cmds, m.progress.SetPercent(percent), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) pollProgress() {
	if m.manager == nil {
		return
	}
	m.processed, m.total, m.succeeded, m.received = m.manager.GetProgress()
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	run := m.run
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{Run: run}
	})
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("MyAnimeList XML Image Downloader"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Download cover images from a MyAnimeList export"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateInitializing:
		b.WriteString(m.viewInitializing())
	case StateDownloading:
		b.WriteString(m.viewDownloading())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Enter export file path:"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	convertCheck := "[ ]"
	if m.convertJPG {
		convertCheck = "[x]"
	}
	verboseCheck := "[ ]"
	if m.verbose {
		verboseCheck = "[x]"
	}

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Convert covers to JPEG (ctrl+t)\n", convertCheck))
	b.WriteString(fmt.Sprintf("  %s Verbose output (ctrl+o)\n", verboseCheck))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Output directory: %s", m.settings.OutputDir)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewInitializing() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Reading export..."))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewDownloading() string {
	var b strings.Builder

	b.WriteString(successStyle.Render(m.found))
	b.WriteString("\n\n")

	var percent float64
	if m.total > 0 {
		percent = float64(m.processed) / float64(m.total)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf(
		"Entries: %d/%d | Downloaded: %d | %.2f MB",
		m.processed,
		m.total,
		m.succeeded,
		float64(m.received)/1024/1024,
	)))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	s := m.summary
	if s == nil {
		s = &download.Summary{}
	}

	return boxStyle.Render(fmt.Sprintf(
		"Done!\n\n"+
			"%s\n"+
			"Failed: %d\n"+
			"Skipped (no image): %d\n"+
			"Saved to: %s",
		s.String(),
		s.Failed,
		s.Skipped,
		m.settings.OutputDir,
	))
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	var visible []LogEntry
	for _, log := range m.logs.snapshot() {
		if log.Level == download.LevelVerbose && !m.verbose {
			continue
		}
		visible = append(visible, log)
	}
	if len(visible) > maxLogs {
		visible = visible[len(visible)-maxLogs:]
	}

	for _, log := range visible {
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
		return "enter: start • ctrl+t: convert to JPEG • ctrl+o: verbose • esc: quit"
	case StateInitializing, StateDownloading:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new download • q: quit"
	}
	return ""
}

// initializeDownload parses the export and creates the manager.
func (m *Model) initializeDownload() tea.Cmd {
	path := strings.TrimSpace(m.textInput.Value())
	settings := *m.settings
	settings.ConvertCoverArtToJPG = settings.ConvertCoverArtToJPG || m.convertJPG
	logs := m.logs
	ctx := m.ctx
	run := m.run

	return func() tea.Msg {
		// slog output would corrupt the alternate screen.
		logger := slog.New(slog.DiscardHandler)
		manager := download.NewManager(&settings, logger, logs.add)

		if err := manager.Initialize(ctx, path); err != nil {
			return InitDoneMsg{Run: run, Err: err}
		}

		return InitDoneMsg{
			Run:     run,
			Found:   fmt.Sprintf("Found %d %s entries", len(manager.Entries()), manager.ContentType()),
			Manager: manager,
		}
	}
}

// startDownload runs the manager in the background.
func (m *Model) startDownload() tea.Cmd {
	manager := m.manager
	ctx := m.ctx
	run := m.run

	return func() tea.Msg {
		if manager == nil {
			return DownloadDoneMsg{Run: run, Err: fmt.Errorf("no manager")}
		}

		summary, err := manager.Run(ctx)
		return DownloadDoneMsg{Run: run, Summary: summary, Err: err}
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings) error {
	p := tea.NewProgram(NewModel(settings), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
