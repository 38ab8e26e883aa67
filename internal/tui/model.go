// Package tui renders probe results for the terminal: a Bubble Tea spinner
// while a probe is running, and a glamour-rendered Markdown report afterwards.
package tui

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/0x6d61/connected/pkg/schema"
)

// RunFunc はスピナー表示中に実行される処理。
type RunFunc func(ctx context.Context) (schema.Output, error)

// doneMsg は RunFunc の完了を通知する Bubble Tea メッセージ。
type doneMsg struct {
	out schema.Output
	err error
}

// Model は 1 回のプローブ実行を表示する Bubble Tea モデル。
type Model struct {
	spinner spinner.Model
	label   string
	run     RunFunc

	ctx    context.Context
	cancel context.CancelFunc

	now     func() time.Time
	started time.Time
	elapsed time.Duration

	done bool
	out  schema.Output
	err  error
}

// NewModel は label を表示しながら run を実行する Model を作る。
// ctrl+c で ctx がキャンセルされ、run の戻りを待って終了する。
func NewModel(ctx context.Context, label string, run RunFunc) Model {
	ctx, cancel := context.WithCancel(ctx)
	s := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle))
	return Model{
		spinner: s,
		label:   label,
		run:     run,
		ctx:     ctx,
		cancel:  cancel,
		now:     time.Now,
		started: time.Now(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.runCmd())
}

func (m Model) runCmd() tea.Cmd {
	ctx, run := m.ctx, m.run
	return func() tea.Msg {
		out, err := run(ctx)
		return doneMsg{out: out, err: err}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		m.done = true
		m.out, m.err = msg.out, msg.err
		m.elapsed = m.now().Sub(m.started)
		m.cancel()
		return m, tea.Quit

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.cancel()
		}
		return m, nil

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model. 完了後は何も描画しない（結果は呼び出し側が出力する）。
func (m Model) View() string {
	if m.done {
		return ""
	}
	status := m.label
	if m.ctx.Err() != nil {
		status += mutedStyle.Render("  cancelling...")
	}
	return m.spinner.View() + " " + status + "\n"
}

// Result は完了後の結果と所要時間を返す。
func (m Model) Result() (schema.Output, time.Duration, error) {
	return m.out, m.elapsed, m.err
}

// Run は stderr にスピナーを表示しながら run を実行し、その結果を返す。
func Run(ctx context.Context, label string, run RunFunc, opts ...tea.ProgramOption) (schema.Output, time.Duration, error) {
	m := NewModel(ctx, label, run)
	opts = append([]tea.ProgramOption{tea.WithOutput(os.Stderr)}, opts...)
	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		return nil, 0, fmt.Errorf("tui: run program: %w", err)
	}
	fm, ok := final.(Model)
	if !ok {
		return nil, 0, fmt.Errorf("tui: unexpected model %T", final)
	}
	return fm.Result()
}
