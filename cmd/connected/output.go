package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"

	"github.com/0x6d61/connected/internal/history"
	"github.com/0x6d61/connected/internal/tools"
	"github.com/0x6d61/connected/internal/tui"
	"github.com/0x6d61/connected/pkg/schema"
)

// defaultWidth は COLUMNS が無いときのレンダリング幅。
const defaultWidth = 100

// kindTools は外部バイナリを使う ToolKind と、その ToolDef 名の対応。
var kindTools = map[schema.ToolKind]string{
	schema.ToolPing:       tools.ToolPing,
	schema.ToolTraceroute: tools.ToolTraceroute,
	schema.ToolPortCheck:  tools.ToolNmap,
	schema.ToolWhois:      tools.ToolWhois,
	schema.ToolDnsTrace:   tools.ToolDig,
	schema.ToolHttpTrace:  tools.ToolCurl,
}

// isTerminal は w が端末に接続されているかを返す。
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func termWidth() int {
	if n, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && n > 0 {
		return n
	}
	return defaultWidth
}

// inputTarget は表示用の対象（host / domain / url）を返す。
func inputTarget(in schema.Input) string {
	switch v := in.(type) {
	case *schema.DnsInput:
		return v.Domain
	case *schema.DnsTraceInput:
		return v.Domain
	case *schema.FetchInput:
		return v.URL
	case *schema.HttpTraceInput:
		return v.URL
	case *schema.PingInput:
		return v.Host
	case *schema.PortCheckInput:
		return v.Host + ":" + strconv.Itoa(v.Port)
	case *schema.TracerouteInput:
		return v.Host
	case *schema.TlsCertificateInput:
		return v.Host + ":" + strconv.Itoa(v.Port)
	case *schema.WhoisInput:
		return v.Host
	}
	return ""
}

// writeJSON は toolType 付きの Output をインデントして書き出す。
func writeJSON(w io.Writer, out schema.Output) error {
	data, err := schema.MarshalOutput(out)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return fmt.Errorf("indent output: %w", err)
	}
	buf.WriteByte('\n')
	_, err = w.Write(buf.Bytes())
	return err
}

// truncateConfig は Output 種別に対応する ToolDef の出力設定を返す。
func (a *app) truncateConfig(kind schema.ToolKind) tools.TruncateConfig {
	if name, ok := kindTools[kind]; ok {
		if def, ok := a.registry.Get(name); ok {
			return def.Output.ToTruncateConfig()
		}
	}
	return tools.DefaultTruncateConfig
}

// report は in / out の Markdown レポートを返す。
func (a *app) report(in schema.Input, out schema.Output) string {
	return tui.Report(out, tui.ReportOptions{
		Title:    string(in.Kind()) + " " + inputTarget(in),
		Truncate: a.truncateConfig(in.Kind()),
	})
}

// writeReport は Markdown レポートと 1 行サマリーを書き出す。
// rich が true なら glamour でレンダリングする。
func (a *app) writeReport(w io.Writer, in schema.Input, out schema.Output, res result, rich bool) error {
	target := inputTarget(in)
	md := a.report(in, out)

	width := 0
	if rich {
		width = termWidth()
		md = tui.RenderMarkdown(md, width)
	}
	summary := tui.Summary(in.Kind(), target, tui.Classify(out), res.elapsed, width)
	_, err := fmt.Fprintf(w, "%s\n%s\n", md, summary)
	return err
}

// writeTranscript は直近に実行したコマンドの全出力を書き出す。
func (a *app) writeTranscript(w io.Writer) {
	run, ok := a.store.Latest()
	if !ok {
		return
	}
	if text, ok := a.store.FullText(run.ID); ok {
		fmt.Fprintln(w, text)
	}
}

// recordHistory は履歴が有効なら結果を対象ホストのファイルに追記する。
func (a *app) recordHistory(in schema.Input, res result) error {
	if a.history == nil {
		return nil
	}
	return a.history.Record(historyKey(in), history.Entry{
		Kind:   in.Kind(),
		Target: inputTarget(in),
		Status: string(tui.Classify(res.out)),
		Report: a.report(in, res.out),
	})
}

// historyKey は履歴ファイル名に使うホスト部を返す。URL はホスト名、host:port はホストのみ。
func historyKey(in schema.Input) string {
	switch v := in.(type) {
	case *schema.FetchInput:
		return urlHost(v.URL)
	case *schema.HttpTraceInput:
		return urlHost(v.URL)
	case *schema.PortCheckInput:
		return v.Host
	case *schema.TlsCertificateInput:
		return v.Host
	}
	return inputTarget(in)
}

func urlHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	return u.Hostname()
}
