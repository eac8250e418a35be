package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"

	"github.com/raphaelgruber/picoscreen/internal/models"
)

// Theme holds the color scheme for status output.
type Theme struct {
	Status  lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Status:  lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
}

// Style functions for dynamic theming
func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// pollFunc runs stage B once.
type pollFunc func(ctx context.Context) (models.PollOutput, error)

// tickMsg triggers the next poll.
type tickMsg time.Time

// pollMsg carries the result of one poll.
type pollMsg struct {
	out models.PollOutput
	err error
}

// waitModel is the bubbletea model that re-polls until all jobs complete.
type waitModel struct {
	ctx      context.Context
	poll     pollFunc
	interval time.Duration
	ids      models.JobIDs
	out      *models.PollOutput
	polls    int
	progress progress.Model
	theme    Theme
	done     bool
	quitting bool
	err      error
}

func newWaitModel(ctx context.Context, poll pollFunc, ids models.JobIDs, interval time.Duration) waitModel {
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)

	return waitModel{
		ctx:      ctx,
		poll:     poll,
		interval: interval,
		ids:      ids,
		progress: prog,
		theme:    defaultTheme,
	}
}

// Init polls immediately.
func (m waitModel) Init() tea.Cmd {
	return tea.Batch(
		m.fetch(),
		m.progress.Init(),
	)
}

// Update handles messages and returns the updated model.
func (m waitModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}

	case tickMsg:
		return m, m.fetch()

	case pollMsg:
		m.polls++
		if msg.err != nil {
			m.err = msg.err
			m.done = true
			return m, tea.Quit
		}

		m.out = &msg.out
		if m.out.Status == models.JobStatusCompleted {
			m.done = true
			return m, tea.Quit
		}
		return m, tickCmd(m.interval)

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the progress display.
func (m waitModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

// completedJobs counts the jobs that reached COMPLETED.
func completedJobs(out *models.PollOutput) int {
	if out == nil {
		return 0
	}
	n := 0
	for _, t := range models.JobTypes {
		if out.Statuses[t] == models.JobStatusCompleted {
			n++
		}
	}
	return n
}

func (m waitModel) renderContent() string {
	if m.done {
		return m.finalView()
	}
	if m.out == nil {
		return "Describing jobs...\n"
	}

	n := completedJobs(m.out)
	pct := float64(n) / float64(len(models.JobTypes))

	status := m.theme.statusStyle().Render(fmt.Sprintf("[%s]", m.out.Status))
	bar := m.progress.ViewAs(pct)
	counts := fmt.Sprintf("%d/%d jobs", n, len(models.JobTypes))

	var jobs []string
	for _, t := range models.JobTypes {
		jobs = append(jobs, fmt.Sprintf("%s=%s", t, m.out.Statuses[t]))
	}

	hint := m.theme.hintStyle().Render(fmt.Sprintf("Polled %d times, every %s. Press Ctrl+C to stop waiting", m.polls, m.interval))
	return fmt.Sprintf("%s %s %s\n  %s\n%s\n", status, bar, counts, strings.Join(jobs, "  "), hint)
}

func (m waitModel) finalView() string {
	if m.quitting {
		msg := fmt.Sprintf("\nJobs keep running (%s).\nRe-run 'picoscreen poll' or 'picoscreen wait' to check again.\n", m.ids)
		return m.theme.hintStyle().Render(msg)
	}
	if m.err != nil {
		return m.theme.errorStyle().Render(fmt.Sprintf("\n✗ %s\n", m.err))
	}
	return m.theme.completedStyle().Render("✓ All jobs completed\n")
}

// fetch runs one poll in a command to avoid blocking Update().
func (m waitModel) fetch() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, time.Minute)
		defer cancel()

		out, err := m.poll(ctx)
		return pollMsg{out: out, err: err}
	}
}

// tickCmd returns a command that sends a tick after the poll interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// runWaitProgress runs the interactive wait UI on stderr.
// Returns the final poll output, or nil if the user stopped waiting.
func runWaitProgress(ctx context.Context, poll pollFunc, ids models.JobIDs, interval time.Duration) (*models.PollOutput, error) {
	p := tea.NewProgram(newWaitModel(ctx, poll, ids, interval), tea.WithOutput(os.Stderr))

	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("progress UI error: %w", err)
	}

	m, ok := finalModel.(waitModel)
	if !ok || m.quitting {
		return nil, nil
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.out, nil
}
