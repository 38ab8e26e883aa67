package tui

import (
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/0x6d61/connected/pkg/schema"
)

// Status は結果の要約ステータス。
type Status string

const (
	StatusOK      Status = "OK"
	StatusPartial Status = "PARTIAL"
	StatusFailed  Status = "FAILED"
)

// Classify は Output を OK / PARTIAL / FAILED に分類する。
func Classify(out schema.Output) Status {
	switch o := out.(type) {
	case *schema.DnsOutput:
		switch {
		case len(o.Errs) == 0:
			return StatusOK
		case hasDnsRecords(o):
			return StatusPartial
		}
		return StatusFailed
	case *schema.DnsTraceOutput:
		return rawStatus(&o.RawOutput)
	case *schema.HttpTraceOutput:
		return rawStatus(&o.RawOutput)
	case *schema.FetchOutput:
		switch {
		case o.Error != "":
			return StatusFailed
		case o.Status >= 400:
			return StatusPartial
		}
		return StatusOK
	case *schema.PingOutput:
		switch {
		case o.Parsed == nil || !o.Parsed.Success:
			return StatusFailed
		case len(o.Parsed.Timeouts) > 0:
			return StatusPartial
		}
		return StatusOK
	case *schema.PortCheckOutput:
		switch {
		case o.Parsed == nil || o.Parsed.Error != nil || o.Parsed.Port == nil:
			return StatusFailed
		case o.Parsed.Port.State != schema.PortOpen:
			return StatusPartial
		}
		return StatusOK
	case *schema.TracerouteOutput:
		switch {
		case o.Parsed == nil:
			return StatusFailed
		case !o.Parsed.Success:
			return StatusPartial
		}
		return StatusOK
	case *schema.TlsCertificateOutput:
		switch {
		case o.Error != "":
			return StatusFailed
		case o.IsValidHostname != nil && !*o.IsValidHostname:
			return StatusPartial
		}
		return StatusOK
	case *schema.WhoisOutput:
		switch {
		case o.Parsed == nil || o.Parsed.Error != "":
			return StatusFailed
		case !o.Parsed.Matched:
			return StatusPartial
		}
		return StatusOK
	}
	return StatusFailed
}

func hasDnsRecords(o *schema.DnsOutput) bool {
	return len(o.A)+len(o.AAAA)+len(o.CNAME)+len(o.MX)+len(o.TXT)+
		len(o.NS)+len(o.PTR)+len(o.SRV) > 0 || o.SOA != nil
}

func rawStatus(raw *schema.RawOutput) Status {
	if raw.Succeeded() {
		return StatusOK
	}
	return StatusFailed
}

// Summary は 1 行のステータス表示を返す。
// Format: ✓ OK  ping  example.com  (1.2s)
// width > 0 の場合は表示幅で切り詰める（全角文字を 2 幅として数える）。
func Summary(kind schema.ToolKind, target string, status Status, elapsed time.Duration, width int) string {
	icon, style := "✓", statusOKStyle
	switch status {
	case StatusPartial:
		icon, style = "!", statusPartialStyle
	case StatusFailed:
		icon, style = "✗", statusFailedStyle
	}

	dur := "(" + formatDuration(elapsed) + ")"
	if width > 0 {
		// ステータス・種別・時間を除いた残りをターゲットに割り当てる
		fixed := runewidth.StringWidth(icon+" "+string(status)) + 2 +
			runewidth.StringWidth(string(kind)) + 2 + 2 + runewidth.StringWidth(dur)
		target = truncateVisual(target, width-fixed)
	}

	parts := []string{
		style.Render(icon + " " + string(status)),
		toolNameStyle.Render(string(kind)),
	}
	if target != "" {
		parts = append(parts, targetStyle.Render(target))
	}
	parts = append(parts, mutedStyle.Render(dur))
	return strings.Join(parts, "  ")
}

// truncateVisual は表示幅 maxW に収まるよう文字列を切り詰め、末尾に "…" を付ける。
func truncateVisual(s string, maxW int) string {
	if maxW <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxW {
		return s
	}
	if maxW == 1 {
		return "…"
	}
	w := 0
	var sb strings.Builder
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if w+rw > maxW-1 {
			break
		}
		sb.WriteRune(r)
		w += rw
	}
	return sb.String() + "…"
}
