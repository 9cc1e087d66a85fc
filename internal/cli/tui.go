package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/matzehuels/pixelsort/pkg/core/sorter"
	"github.com/matzehuels/pixelsort/pkg/pipeline"
)

const progressBarWidth = 32

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// =============================================================================
// Messages
// =============================================================================

type phaseMsg sorter.Phase

type lineMsg struct{ done, total int }

type resultMsg struct {
	res *pipeline.Result
	err error
}

// programObserver forwards sort progress into a running bubbletea program.
type programObserver struct {
	p *tea.Program
}

func (o programObserver) OnPhase(p sorter.Phase) { o.p.Send(phaseMsg(p)) }
func (o programObserver) OnLine(done, total int) { o.p.Send(lineMsg{done, total}) }

// =============================================================================
// SortProgressModel - live progress for one pipeline run
// =============================================================================

// SortProgressModel renders the stage of a pipeline run and, while lines are
// being sorted, a progress bar.
type SortProgressModel struct {
	Name   string
	Phase  sorter.Phase
	Done   int
	Total  int
	Result *pipeline.Result
	Err    error

	start  time.Time
	cancel context.CancelFunc
}

// NewSortProgressModel creates a model for sorting the named input. cancel
// is called when the user interrupts.
func NewSortProgressModel(name string, cancel context.CancelFunc) SortProgressModel {
	return SortProgressModel{Name: name, start: time.Now(), cancel: cancel}
}

func (m SortProgressModel) Init() tea.Cmd {
	return nil
}

func (m SortProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if m.cancel != nil {
				m.cancel()
			}
			m.Err = context.Canceled
			return m, tea.Quit
		}
	case phaseMsg:
		m.Phase = sorter.Phase(msg)
	case lineMsg:
		m.Done, m.Total = msg.done, msg.total
	case resultMsg:
		m.Result, m.Err = msg.res, msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m SortProgressModel) View() string {
	if m.Result != nil || m.Err != nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(styleIconSpinner.Render(iconInfo) + " " + m.stage() + " " + StyleValue.Render(m.Name))
	if m.Total > 0 {
		b.WriteString("\n  " + renderBar(m.Done, m.Total, progressBarWidth))
		b.WriteString(StyleDim.Render(fmt.Sprintf(" %d/%d lines", m.Done, m.Total)))
	}
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %s", time.Since(m.start).Round(100*time.Millisecond))))
	b.WriteString("\n")
	return b.String()
}

func (m SortProgressModel) stage() string {
	switch m.Phase {
	case sorter.PhaseIdle:
		return "Decoding"
	case sorter.PhasePlanning, sorter.PhaseDispatched, sorter.PhaseCollecting:
		return "Sorting"
	case sorter.PhaseDone:
		return "Encoding"
	}
	return "Failing"
}

// executor runs one pipeline pass; *pipeline.Runner satisfies it.
type executor interface {
	Execute(ctx context.Context, opts pipeline.Options) (*pipeline.Result, error)
}

// runWithProgress executes the pipeline while a bubbletea program draws its
// progress on w. A pass cannot be stopped once started, so after an interrupt
// it still waits for Execute to return; the caller may close the runner's
// cache as soon as this returns.
func runWithProgress(ctx context.Context, w io.Writer, exec executor, name string, opts pipeline.Options, progOpts ...tea.ProgramOption) (*pipeline.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	progOpts = append([]tea.ProgramOption{tea.WithOutput(w), tea.WithContext(ctx)}, progOpts...)
	p := tea.NewProgram(NewSortProgressModel(name, cancel), progOpts...)
	opts.Sort.Observer = programObserver{p: p}

	executed := make(chan struct{})
	go func() {
		defer close(executed)
		res, err := exec.Execute(ctx, opts)
		p.Send(resultMsg{res: res, err: err})
	}()

	final, err := p.Run()
	interrupted := ctx.Err()
	cancel()
	<-executed

	if err != nil {
		if interrupted != nil {
			return nil, interrupted
		}
		return nil, fmt.Errorf("progress display: %w", err)
	}
	m := final.(SortProgressModel)
	return m.Result, m.Err
}
