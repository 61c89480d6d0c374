package ui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/altin/gh-actions-cost/internal/api"
	"github.com/altin/gh-actions-cost/internal/fetch"
)

var tierLabels = map[fetch.Tier]string{
	fetch.TierRepos: "Repositories",
	fetch.TierRuns:  "Workflow runs",
	fetch.TierJobs:  "Jobs",
}

type tierState struct {
	completed int
	total     int
	started   bool
}

// Model renders fetch progress: a running repository count, then a
// progress bar per fan-out tier.
type Model struct {
	spinner   spinner.Model
	bar       progress.Model
	tiers     map[fetch.Tier]*tierState
	order     []fetch.Tier
	limitNote string
	err       error
	done      bool
}

func NewModel() Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = StyleInfo
	return Model{
		spinner: sp,
		bar:     progress.New(progress.WithDefaultGradient()),
		tiers: map[fetch.Tier]*tierState{
			fetch.TierRepos: {},
			fetch.TierRuns:  {},
			fetch.TierJobs:  {},
		},
		order: []fetch.Tier{fetch.TierRepos, fetch.TierRuns, fetch.TierJobs},
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ProgressMsg:
		st := m.tiers[msg.Tier]
		st.started = true
		if msg.Completed > st.completed {
			st.completed = msg.Completed
		}
		st.total = msg.Total
		m.limitNote = ""
		return m, nil
	case RateLimitMsg:
		m.limitNote = fmt.Sprintf("%s rate limit, waiting %s", msg.Kind, msg.Wait.Round(time.Second))
		return m, nil
	case DoneMsg:
		m.err = msg.Err
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.err = fmt.Errorf("interrupted")
			m.done = true
			return m, tea.Quit
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	for _, tier := range m.order {
		st := m.tiers[tier]
		label := tierLabels[tier]
		if !st.started {
			fmt.Fprintf(&b, "  %s\n", StyleMuted.Render(label))
			continue
		}
		if tier == fetch.TierRepos {
			fmt.Fprintf(&b, "%s %s: %d\n", m.spinner.View(), StyleTier.Render(label), st.completed)
			continue
		}
		pct := 0.0
		if st.total > 0 {
			pct = float64(st.completed) / float64(st.total)
		}
		fmt.Fprintf(&b, "%s %s %s %d/%d\n", m.spinner.View(), StyleTier.Render(label), m.bar.ViewAs(pct), st.completed, st.total)
	}
	if m.limitNote != "" {
		fmt.Fprintf(&b, "  %s\n", StyleWarning.Render(m.limitNote))
	}
	return b.String()
}

// Runner owns the bubbletea program for one fetch invocation. Its callback
// methods are safe to hand to worker goroutines.
type Runner struct {
	program *tea.Program
}

func NewRunner() *Runner {
	return &Runner{program: tea.NewProgram(NewModel(), tea.WithOutput(os.Stderr))}
}

func (r *Runner) OnProgress(tier fetch.Tier, completed, total int) {
	r.program.Send(ProgressMsg{Tier: tier, Completed: completed, Total: total})
}

func (r *Runner) OnRateLimitWait(kind api.LimitKind, wait time.Duration) {
	r.program.Send(RateLimitMsg{Kind: kind.String(), Wait: wait})
}

// Run executes fn in the background while the display owns the terminal
// and returns fn's error once both finish.
func (r *Runner) Run(fn func() error) error {
	errCh := make(chan error, 1)
	go func() {
		err := fn()
		errCh <- err
		r.program.Send(DoneMsg{Err: err})
	}()
	final, err := r.program.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(Model); ok && m.err != nil && m.err.Error() == "interrupted" {
		return m.err
	}
	return <-errCh
}
