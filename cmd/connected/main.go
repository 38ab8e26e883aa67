package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/0x6d61/connected/internal/config"
	"github.com/0x6d61/connected/internal/destination"
	"github.com/0x6d61/connected/internal/history"
	"github.com/0x6d61/connected/internal/probe"
	"github.com/0x6d61/connected/internal/tools"
	"github.com/0x6d61/connected/internal/tui"
	"github.com/0x6d61/connected/pkg/schema"
)

// 終了コード
const (
	exitOK      = 0
	exitFailed  = 1
	exitUsage   = 2
	exitRefused = 3
)

const usageText = `connected: network diagnostics

Usage:
  connected [flags] <command> [command flags] <target>

Commands:
  dns <domain>          [-types A,AAAA,MX,...]
  dnstrace <domain>     [-timeout ms]
  fetch <url>           [-X method] [-H "Name: value"] [-d body] [-timeout ms]
  httptrace <url>       [-timeout ms]
  ping <host>           [-c count] [-timeout ms]
  portcheck <host> <port>
  traceroute <host>     [-m max_hops] [-q queries] [-w wait] [-timeout ms]
  tls <host> [port]
  whois <host>
  tools                 登録済みの外部ツール定義を一覧表示
  agents validate <file>

Flags:
`

const usageFooter = `
Environment:
  COLUMNS   レポートの表示幅 (default: 100)
  .env      設定ファイルと同じディレクトリ・カレントディレクトリの .env を読み込み、${VAR} 展開に使う

Examples:
  connected ping -c 3 example.com
  connected -json dns -types A,MX example.com
  connected tls example.com 8443
`

func main() {
	// グレースフルシャットダウン
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// app は 1 回の CLI 実行で共有するコンポーネント。
type app struct {
	cfg      *config.AppConfig
	registry *tools.Registry
	store    *tools.LogStore
	history  *history.Store
	prober   *probe.Prober
	logger   *slog.Logger
}

// result は 1 回のプローブ実行結果。
type result struct {
	out     schema.Output
	elapsed time.Duration
	err     error
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("connected", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		configPath = fs.String("config", config.DefaultPath, "設定ファイルのパス")
		jsonOut    = fs.Bool("json", false, "toolType 付きの JSON で出力する")
		transcript = fs.Bool("transcript", false, "実行した外部コマンドの全出力を stderr に表示する")
		plain      = fs.Bool("plain", false, "端末でもスピナーと装飾を使わない")
		historyDir = fs.String("history", "", "レポートを対象ごとの Markdown に追記するディレクトリ（設定の history.dir より優先）")
	)
	fs.Usage = func() {
		fmt.Fprint(stderr, usageText)
		fs.PrintDefaults()
		fmt.Fprint(stderr, usageFooter)
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return exitUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, "設定エラー:", err)
		return exitFailed
	}

	if *historyDir != "" {
		cfg.History.Dir = *historyDir
	}

	rich := !*jsonOut && !*plain && isTerminal(stdout) && isTerminal(stderr)

	// スピナー表示中のログは終了後にまとめて出力する
	var logBuf bytes.Buffer
	logOut := stderr
	if rich {
		logOut = &logBuf
	}
	a, err := newApp(cfg, logOut)
	if err != nil {
		fmt.Fprintln(stderr, "初期化エラー:", err)
		return exitFailed
	}

	switch rest[0] {
	case "agents":
		return a.agents(rest[1:], stdout, stderr)
	case "tools":
		a.listTools(stdout)
		return exitOK
	}

	in, err := parseInput(rest[0], rest[1:], stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		if errors.Is(err, errUsage) {
			fs.Usage()
			return exitUsage
		}
		return exitFailed
	}

	res := a.probe(ctx, in, rich)
	stderr.Write(logBuf.Bytes())
	if *transcript {
		a.writeTranscript(stderr)
	}

	if res.err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", in.Kind(), res.err)
		var rej *destination.RejectionError
		if errors.As(res.err, &rej) || errors.Is(res.err, probe.ErrInvalidInput) {
			return exitRefused
		}
		return exitFailed
	}

	if *jsonOut {
		err = writeJSON(stdout, res.out)
	} else {
		err = a.writeReport(stdout, in, res.out, res, rich)
	}
	if err != nil {
		fmt.Fprintln(stderr, "出力エラー:", err)
		return exitFailed
	}
	if err := a.recordHistory(in, res); err != nil {
		// 履歴の保存失敗は結果に影響させない
		a.logger.Warn("history record failed", slog.Any("err", err))
	}

	if tui.Classify(res.out) == tui.StatusFailed {
		return exitFailed
	}
	return exitOK
}

// newApp は設定からレジストリ・ランナー・Prober を組み立てる。
func newApp(cfg *config.AppConfig, logOut io.Writer) (*app, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))

	// --- Tools ---
	registry := tools.NewDefaultRegistry()
	if err := registry.LoadDir(cfg.ToolsDir); err != nil {
		return nil, fmt.Errorf("ツールロードエラー: %w", err)
	}
	store := tools.NewLogStore()
	runner := tools.NewRunner(registry, store)

	// --- Prober ---
	validator := destination.NewValidator(cfg.DestinationPolicy())
	prober := probe.NewProber(runner, validator)
	prober.Resolver = cfg.DNS.Resolver
	prober.DefaultTimeoutMs = cfg.Timeouts.DefaultMs
	prober.IncludeTracerouteRaw = cfg.Traceroute.IncludeRaw
	prober.Logger = logger

	a := &app{
		cfg:      cfg,
		registry: registry,
		store:    store,
		prober:   prober,
		logger:   logger,
	}
	if cfg.History.Dir != "" {
		a.history = history.NewStore(cfg.History.Dir)
	}
	return a, nil
}

// probe は in を実行する。rich なら実行中スピナーを表示する。
func (a *app) probe(ctx context.Context, in schema.Input, rich bool) result {
	if rich {
		label := string(in.Kind()) + " " + inputTarget(in)
		out, elapsed, err := tui.Run(ctx, label, func(ctx context.Context) (schema.Output, error) {
			return a.prober.Run(ctx, in)
		})
		return result{out: out, elapsed: elapsed, err: err}
	}
	start := time.Now()
	out, err := a.prober.Run(ctx, in)
	return result{out: out, elapsed: time.Since(start), err: err}
}

// listTools は登録済みの ToolDef を表形式で書き出す。
func (a *app) listTools(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tBINARY\tTIMEOUT\tARGS")
	for _, def := range a.registry.All() {
		timeout := "-"
		if def.TimeoutSec > 0 {
			timeout = fmt.Sprintf("%ds", def.TimeoutSec)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", def.Name, def.Binary, timeout, def.ArgsTemplate)
	}
	tw.Flush()
}
