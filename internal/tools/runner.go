package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/0x6d61/connected/pkg/schema"
)

// defaultTimeout は ToolDef.TimeoutSec 未設定時の上限。
const defaultTimeout = 300 * time.Second

// Runner は Registry の定義に従ってサブプロセスを実行する Executor。
type Runner struct {
	registry *Registry
	store    *LogStore
	now      func() time.Time
}

// NewRunner は Runner を返す。store が nil なら実行記録は残さない。
func NewRunner(registry *Registry, store *LogStore) *Runner {
	return &Runner{registry: registry, store: store, now: time.Now}
}

var _ Executor = (*Runner)(nil)

// Execute は name のツールを args で実行し、終了を待って RawOutput を返す。
// ctx の期限と ToolDef のタイムアウトのうち早い方で打ち切られる。
func (r *Runner) Execute(ctx context.Context, name string, args map[string]any) (*schema.RawOutput, error) {
	def, ok := r.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}

	absPath, err := resolveBinary(def.Binary)
	if err != nil {
		return nil, fmt.Errorf("tools: %s: %w", name, err)
	}
	argv, err := BuildCLIArgs(def.ArgsTemplate, args)
	if err != nil {
		return nil, fmt.Errorf("tools: %s: %w", name, err)
	}

	timeout := defaultTimeout
	if def.TimeoutSec > 0 {
		timeout = time.Duration(def.TimeoutSec) * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	startedAt := r.now()

	// absPath は resolveBinary で PATH 上の絶対パスに限定済み。シェルは経由しない。
	cmd := exec.CommandContext(ctx, absPath, argv...) // nosemgrep: go.lang.security.audit.dangerous-exec-command.dangerous-exec-command
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	var exitErr *exec.ExitError
	if runErr != nil && !errors.As(runErr, &exitErr) {
		return nil, fmt.Errorf("tools: %s: failed to start: %w", name, runErr)
	}

	raw := &schema.RawOutput{
		Stdout: schema.Ptr(stdout.String()),
		Stderr: schema.Ptr(stderr.String()),
	}
	if ps := cmd.ProcessState; ps != nil {
		if sig := signalName(ps); sig != "" {
			raw.Signal = schema.Ptr(sig)
		} else {
			raw.ExitCode = schema.Ptr(ps.ExitCode())
		}
	}

	if r.store != nil {
		r.store.Save(&Run{
			ID:         NewRunID(),
			Tool:       def.Name,
			Target:     runTarget(args),
			Args:       argv,
			Raw:        raw,
			StartedAt:  startedAt,
			FinishedAt: r.now(),
		})
	}
	return raw, nil
}

// runTarget は args から記録用の対象名を取り出す。
func runTarget(args map[string]any) string {
	for _, k := range []string{"host", "domain", "url"} {
		if s, ok := args[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// resolveBinary は binary 名を PATH から絶対パスに解決する。
// パス区切り文字を含む名前は拒否する。
func resolveBinary(name string) (string, error) {
	if strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("binary name must not contain path separators: %q", name)
	}
	if strings.TrimSpace(name) == "" {
		return "", errors.New("binary name must not be empty")
	}
	absPath, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("binary %q not found in PATH: %w", name, err)
	}
	if !filepath.IsAbs(absPath) {
		return "", fmt.Errorf("resolved path is not absolute: %q", absPath)
	}
	return absPath, nil
}
