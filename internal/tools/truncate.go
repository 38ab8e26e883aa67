package tools

import (
	"fmt"
	"strings"
)

// TruncateConfig は先頭・末尾に残す行数。
type TruncateConfig struct {
	HeadLines int
	TailLines int
}

// DefaultTruncateConfig は ToolDef に出力設定が無いときの既定値。
var DefaultTruncateConfig = TruncateConfig{HeadLines: 50, TailLines: 30}

// Truncate は先頭 HeadLines 行と末尾 TailLines 行を残し、間を省略マーカーに置き換える。
// 総行数が HeadLines+TailLines 以下なら全行をそのまま返す。
func Truncate(lines []string, cfg TruncateConfig) string {
	total := len(lines)
	if total == 0 {
		return ""
	}
	head, tail := max(cfg.HeadLines, 0), max(cfg.TailLines, 0)
	if head+tail >= total {
		return strings.Join(lines, "\n")
	}

	var sb strings.Builder
	for _, l := range lines[:head] {
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "\n--- %d行省略 ---\n\n", total-head-tail)
	sb.WriteString(strings.Join(lines[total-tail:], "\n"))
	return sb.String()
}

// TruncateText は改行区切りのテキストに Truncate を適用する。
func TruncateText(text string, cfg TruncateConfig) string {
	text = strings.TrimRight(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if text == "" {
		return ""
	}
	return Truncate(strings.Split(text, "\n"), cfg)
}
