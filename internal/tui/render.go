package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/glamour"
)

// RenderMarkdown は glamour を使って Markdown をターミナル用にレンダリングする。
// ダークスタイルを明示指定する。WithAutoStyle() は非 TTY 環境で plain にフォールバックするため使用しない。
// レンダリングに失敗した場合は元の Markdown をそのまま返す。
func RenderMarkdown(text string, width int) string {
	out, err := renderMarkdown(text, width)
	if err != nil {
		return text
	}
	return out
}

// glamour の dark スタイルは左右マージンを追加するため、width を縮小して渡す。
func renderMarkdown(text string, width int) (string, error) {
	// glamour dark スタイルのマージン分を差し引く（左2+右2=4）
	wrapWidth := width - 4
	if wrapWidth < 20 {
		wrapWidth = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(wrapWidth),
	)
	if err != nil {
		return "", err
	}
	out, err := r.Render(text)
	if err != nil {
		return "", err
	}
	return out, nil
}

// formatDuration は表示用の時間フォーマットを返す (例: "850ms", "12s", "1m23s")。
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) - m*60
	return fmt.Sprintf("%dm%ds", m, s)
}
