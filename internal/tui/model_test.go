package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/0x6d61/connected/pkg/schema"
)

func TestModel_InitStartsSpinnerAndRun(t *testing.T) {
	m := NewModel(context.Background(), "dns example.com", func(context.Context) (schema.Output, error) {
		return &schema.DnsOutput{}, nil
	})
	if cmd := m.Init(); cmd == nil {
		t.Fatal("Init should return spinner tick and run commands")
	}
}

func TestModel_RunCmdDeliversResult(t *testing.T) {
	want := &schema.FetchOutput{Status: 204}
	m := NewModel(context.Background(), "fetch", func(context.Context) (schema.Output, error) {
		return want, nil
	})

	msg := m.runCmd()()
	done, ok := msg.(doneMsg)
	if !ok {
		t.Fatalf("expected doneMsg, got %T", msg)
	}
	if done.out != want || done.err != nil {
		t.Errorf("unexpected doneMsg %+v", done)
	}
}

func TestModel_DoneQuits(t *testing.T) {
	m := NewModel(context.Background(), "ping", nil)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.started = base
	m.now = func() time.Time { return base.Add(2 * time.Second) }

	runErr := errors.New("boom")
	next, cmd := m.Update(doneMsg{err: runErr})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("done should quit the program")
	}

	fm := next.(Model)
	out, elapsed, err := fm.Result()
	if out != nil || !errors.Is(err, runErr) {
		t.Errorf("unexpected result %v, %v", out, err)
	}
	if elapsed != 2*time.Second {
		t.Errorf("elapsed = %s, want 2s", elapsed)
	}
	if fm.View() != "" {
		t.Errorf("finished model should render nothing, got %q", fm.View())
	}
}

func TestModel_CtrlCCancelsContext(t *testing.T) {
	m := NewModel(context.Background(), "traceroute example.com", nil)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd != nil {
		t.Error("ctrl+c should wait for the run to return instead of quitting")
	}
	fm := next.(Model)
	if fm.ctx.Err() == nil {
		t.Error("ctrl+c should cancel the run context")
	}
	if !strings.Contains(stripANSI(fm.View()), "cancelling") {
		t.Errorf("view should show cancellation, got %q", fm.View())
	}
}

func TestModel_ViewShowsLabel(t *testing.T) {
	m := NewModel(context.Background(), "whois example.com", nil)
	if !strings.Contains(stripANSI(m.View()), "whois example.com") {
		t.Errorf("view should contain label, got %q", m.View())
	}
}

func TestModel_TickIgnoredAfterDone(t *testing.T) {
	m := NewModel(context.Background(), "tls", nil)
	next, _ := m.Update(doneMsg{out: &schema.TlsCertificateOutput{}})

	_, cmd := next.Update(spinner.TickMsg{})
	if cmd != nil {
		t.Error("spinner should stop ticking after completion")
	}
}
