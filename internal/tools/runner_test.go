package tools_test

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"

	"github.com/0x6d61/connected/internal/tools"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires POSIX utilities")
	}
}

func newRunner(defs ...*tools.ToolDef) (*tools.Runner, *tools.LogStore) {
	reg := tools.NewRegistry()
	for _, d := range defs {
		reg.Register(d)
	}
	store := tools.NewLogStore()
	return tools.NewRunner(reg, store), store
}

func TestRunner_Execute_CapturesStdout(t *testing.T) {
	skipOnWindows(t)
	runner, store := newRunner(&tools.ToolDef{Name: "echo", Binary: "echo", TimeoutSec: 5, ArgsTemplate: "{host!}"})

	raw, err := runner.Execute(context.Background(), "echo", map[string]any{"host": "hello connected"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := raw.StdoutText(); got != "hello connected\n" {
		t.Errorf("stdout: got %q", got)
	}
	if raw.ExitCode == nil || *raw.ExitCode != 0 {
		t.Errorf("exit code: got %v, want 0", raw.ExitCode)
	}
	if raw.Signal != nil {
		t.Errorf("signal: got %q, want nil", *raw.Signal)
	}

	runs := store.ForTarget("hello connected")
	if len(runs) != 1 {
		t.Fatalf("ForTarget: got %d runs, want 1", len(runs))
	}
	if runs[0].Tool != "echo" {
		t.Errorf("Tool: got %q, want echo", runs[0].Tool)
	}
	text, ok := store.FullText(runs[0].ID)
	if !ok || !strings.Contains(text, "hello connected") {
		t.Errorf("FullText: got %q", text)
	}
}

func TestRunner_Execute_NonZeroExitIsNotError(t *testing.T) {
	skipOnWindows(t)
	runner, _ := newRunner(&tools.ToolDef{Name: "false", Binary: "false", TimeoutSec: 5})

	raw, err := runner.Execute(context.Background(), "false", nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if raw.ExitCode == nil || *raw.ExitCode == 0 {
		t.Errorf("exit code: got %v, want non-zero", raw.ExitCode)
	}
	if raw.Succeeded() {
		t.Error("Succeeded() should be false")
	}
}

func TestRunner_Execute_TimeoutRecordsSignal(t *testing.T) {
	skipOnWindows(t)
	runner, _ := newRunner(&tools.ToolDef{Name: "sleep", Binary: "sleep", TimeoutSec: 1, ArgsTemplate: "{sec!}"})

	raw, err := runner.Execute(context.Background(), "sleep", map[string]any{"sec": 10})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if raw.Signal == nil || *raw.Signal != "SIGKILL" {
		t.Errorf("signal: got %v, want SIGKILL", raw.Signal)
	}
	if raw.ExitCode != nil {
		t.Errorf("exit code: got %d, want nil", *raw.ExitCode)
	}
}

func TestRunner_Execute_UnknownTool(t *testing.T) {
	runner, _ := newRunner()
	_, err := runner.Execute(context.Background(), "nope", nil)
	if !errors.Is(err, tools.ErrUnknownTool) {
		t.Errorf("got %v, want ErrUnknownTool", err)
	}
}

func TestRunner_Execute_InvalidBinary_ReturnsError(t *testing.T) {
	runner, _ := newRunner(&tools.ToolDef{Name: "missing", Binary: "this_tool_does_not_exist_xyz", TimeoutSec: 5})
	if _, err := runner.Execute(context.Background(), "missing", nil); err == nil {
		t.Error("expected error for nonexistent binary, got nil")
	}
}

func TestRunner_Execute_PathTraversal_ReturnsError(t *testing.T) {
	runner, _ := newRunner(&tools.ToolDef{Name: "evil", Binary: "../../bin/sh", TimeoutSec: 5})
	if _, err := runner.Execute(context.Background(), "evil", nil); err == nil {
		t.Error("path traversal binary should return error")
	}
}

func TestRunner_Execute_MissingRequiredArg(t *testing.T) {
	skipOnWindows(t)
	runner, store := newRunner(&tools.ToolDef{Name: "echo", Binary: "echo", ArgsTemplate: "{host!}"})
	if _, err := runner.Execute(context.Background(), "echo", nil); err == nil {
		t.Error("expected error for missing required argument")
	}
	if _, ok := store.Latest(); ok {
		t.Error("nothing should be recorded when the command never ran")
	}
}
