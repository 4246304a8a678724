package tui

import (
	"fmt"
	"os"
	"strings"

	"offload/internal/app"
	"offload/internal/domain"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Phase represents the current state of the TUI
type Phase int

const (
	PhaseScanning Phase = iota
	PhaseRunning
	PhaseCancelling
	PhaseDone
)

// Messages for the TUI
type (
	ScanProgressMsg struct {
		Current int
		Total   int
	}
	ProgressMsg struct {
		Progress app.Progress
	}
	// DoneMsg carries the finished run. Err is set when the run ended early,
	// the result still holds every file accounted for so far.
	DoneMsg struct {
		Result app.Result
		Err    error
	}
	updatesClosedMsg struct{}
)

// Config for the TUI
type Config struct {
	Source      string
	Destination string
	Files       int
	Bytes       int64
	DryRun      bool
	Mode        domain.TransferMode

	// Updates is drained for progress snapshots until it is closed.
	Updates <-chan app.Progress
	// Cancel asks the running engine to stop after the current file.
	Cancel func()
}

// Model is the main TUI model
type Model struct {
	config      Config
	Phase       Phase
	Last        app.Progress
	scanCurrent int
	scanTotal   int
	Result      app.Result
	Err         error
	spinner     spinner.Model
	progress    progress.Model
	width       int
}

// NewModel creates a new TUI model
func NewModel(cfg Config) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	p := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(50),
		progress.WithoutPercentage(),
	)

	return Model{
		config:   cfg,
		Phase:    PhaseScanning,
		spinner:  s,
		progress: p,
		width:    80,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForUpdate(m.config.Updates))
}

func waitForUpdate(ch <-chan app.Progress) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		pr, ok := <-ch
		if !ok {
			return updatesClosedMsg{}
		}
		return ProgressMsg{Progress: pr}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = min(msg.Width-20, 60)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			switch m.Phase {
			case PhaseScanning, PhaseRunning:
				m.Phase = PhaseCancelling
				if m.config.Cancel != nil {
					m.config.Cancel()
				}
				return m, nil
			case PhaseDone:
				return m, tea.Quit
			}
		case "enter":
			if m.Phase == PhaseDone {
				return m, tea.Quit
			}
		}

	case ScanProgressMsg:
		m.scanCurrent = msg.Current
		m.scanTotal = msg.Total
		return m, nil

	case ProgressMsg:
		if m.Phase == PhaseScanning {
			m.Phase = PhaseRunning
		}
		m.Last = msg.Progress
		cmds := []tea.Cmd{waitForUpdate(m.config.Updates)}
		cmds = append(cmds, m.progress.SetPercent(msg.Progress.Percentage/100))
		return m, tea.Batch(cmds...)

	case updatesClosedMsg:
		return m, nil

	case DoneMsg:
		m.Phase = PhaseDone
		m.Result = msg.Result
		m.Err = msg.Err
		return m, m.progress.SetPercent(1)

	case spinner.TickMsg:
		if m.Phase != PhaseDone {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd
	}

	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	switch m.Phase {
	case PhaseScanning:
		b.WriteString(m.renderScanning())
	case PhaseRunning, PhaseCancelling:
		b.WriteString(m.renderRunning())
	case PhaseDone:
		b.WriteString(m.renderDone())
		if m.Err != nil && !m.Result.Aborted {
			b.WriteString("\n")
			b.WriteString(m.renderError())
		}
	}

	b.WriteString("\n")
	b.WriteString(m.renderHelp())

	return b.String()
}

func (m Model) renderHeader() string {
	title := titleStyle.Render(fmt.Sprintf("%s Offload", iconCard))

	verb := "Copying"
	if m.config.Mode == domain.ModeMove {
		verb = "Moving"
	}
	subtitle := fmt.Sprintf("%s %d files (%s)", verb, m.config.Files, domain.HumanSize(m.config.Bytes))
	if m.config.DryRun {
		subtitle += ", dry run"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		subtitleStyle.Render(subtitle),
		"",
		dimStyle.Render(fmt.Sprintf("%s Source:      %s", iconFolder, shortenPath(m.config.Source))),
		dimStyle.Render(fmt.Sprintf("%s Destination: %s", iconFolder, shortenPath(m.config.Destination))),
	)
}

func (m Model) renderScanning() string {
	if m.scanTotal == 0 {
		return fmt.Sprintf("  %s Reading metadata...", m.spinner.View())
	}
	percent := float64(m.scanCurrent) / float64(m.scanTotal)
	return fmt.Sprintf("  %s Reading metadata...\n\n  %s\n  %s %s\n",
		m.spinner.View(),
		m.progress.ViewAs(percent),
		countStyle.Render(fmt.Sprintf("%d/%d", m.scanCurrent, m.scanTotal)),
		dimStyle.Render(fmt.Sprintf("(%.0f%%)", percent*100)),
	)
}

func (m Model) renderRunning() string {
	var b strings.Builder

	action := m.Last.Action
	if action == "" {
		action = "Starting"
	}
	if m.Phase == PhaseCancelling {
		action = warningStyle.Render("Cancelling after the current file...")
	}

	b.WriteString(fmt.Sprintf("  %s %s\n\n", m.spinner.View(), action))
	b.WriteString(fmt.Sprintf("  %s\n", m.progress.ViewAs(m.Last.Percentage/100)))

	eta := "unknown"
	if m.Last.RemainingKnown {
		eta = domain.DescribeDuration(m.Last.Remaining)
	}
	b.WriteString(fmt.Sprintf("  %s %s\n",
		countStyle.Render(fmt.Sprintf("%d/%d files", m.Last.Current, m.Last.Total)),
		dimStyle.Render(fmt.Sprintf("(%.0f%%, remaining: %s)", m.Last.Percentage, eta)),
	))

	if m.Last.File != "" {
		b.WriteString(fmt.Sprintf("\n  %s %s\n", iconArrow, fileNameStyle.Render(m.Last.File)))
	}

	return b.String()
}

func (m Model) renderDone() string {
	var b strings.Builder
	res := m.Result

	b.WriteString(sectionStyle.Render("Offload Complete"))
	b.WriteString("\n\n")

	switch {
	case res.Aborted:
		b.WriteString(fmt.Sprintf("  %s %s\n\n", errorStyle.Render(iconError), errorStyle.Render("Destination is no longer reachable")))
	case res.Cancelled:
		b.WriteString(fmt.Sprintf("  %s %s\n\n", warningStyle.Render(iconWarning), warningStyle.Render("Offload was cancelled")))
	case res.OK():
		b.WriteString(fmt.Sprintf("  %s %s\n\n", successStyle.Render(iconSuccess), successStyle.Render("All files are safely offloaded")))
	default:
		b.WriteString(fmt.Sprintf("  %s %s\n\n", errorStyle.Render(iconError), errorStyle.Render("Some files failed")))
	}

	for _, status := range domain.Statuses {
		b.WriteString(fmt.Sprintf("  %s  %s\n",
			statLabelStyle.Render(string(status)+":"),
			statusStyle(status).Render(fmt.Sprintf("%d", res.Counts[status])),
		))
	}
	b.WriteString(fmt.Sprintf("  %s  %s\n", statLabelStyle.Render("Transferred:"), statValueStyle.Render(domain.HumanSize(res.Bytes))))
	b.WriteString(fmt.Sprintf("  %s  %s\n", statLabelStyle.Render("Time:"), statValueStyle.Render(domain.DescribeDuration(res.Elapsed))))
	if res.Report.CSV != "" {
		b.WriteString(fmt.Sprintf("  %s  %s\n", statLabelStyle.Render("Report:"), dimStyle.Render(shortenPath(res.Report.CSV))))
	}

	return b.String()
}

func (m Model) renderError() string {
	icon := errorStyle.Render(iconError)
	msg := errorStyle.Render(fmt.Sprintf("Error: %s", m.Err.Error()))

	return highlightBoxStyle.
		BorderForeground(errorColor).
		Render(fmt.Sprintf("%s %s", icon, msg))
}

func (m Model) renderHelp() string {
	var help string
	switch m.Phase {
	case PhaseScanning, PhaseRunning:
		help = "Press q to cancel"
	case PhaseCancelling:
		help = "Finishing the current file... Please wait"
	case PhaseDone:
		help = "Press Enter to exit"
	}
	return helpStyle.Render(help)
}

func statusStyle(s domain.Status) lipgloss.Style {
	switch s {
	case domain.StatusSuccessful:
		return successStyle
	case domain.StatusSkipped:
		return skippedStyle
	case domain.StatusFailed:
		return errorStyle
	default:
		return warningStyle
	}
}

// shortenPath replaces the home directory prefix with ~ for display
func shortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if strings.HasPrefix(path, home) {
		return "~" + path[len(home):]
	}
	return path
}
