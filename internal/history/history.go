// Package history はプローブ結果の Markdown レポートを
// 対象ホストごとのファイルに追記して残す。
package history

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/0x6d61/connected/pkg/schema"
)

// Entry は 1 回のプローブ結果。
type Entry struct {
	Kind   schema.ToolKind
	Target string
	Status string
	// Report は tui.Report が生成した Markdown。先頭の "# " 見出しは Entry の見出しに置き換わる。
	Report string
	At     time.Time
}

// Store は履歴ファイルの読み書きを管理する。
type Store struct {
	dir string // 履歴ファイルを保存するディレクトリ
	now func() time.Time
}

// NewStore は指定ディレクトリを使う Store を返す。
// ディレクトリが存在しない場合は Record 時に自動作成する。
func NewStore(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

// Record は e を host に対応するファイルに追記する。
// ファイルが存在しない場合は新規作成してヘッダーを書く。
func (s *Store) Record(host string, e Entry) error {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("history: mkdir: %w", err)
	}

	path := s.path(host)

	isNew := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		isNew = true
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("history: open file: %w", err)
	}
	defer f.Close()

	if isNew {
		header := fmt.Sprintf("# connected history: %s\n\nCreated: %s\n\n", host, s.now().Format("2006-01-02 15:04:05"))
		if _, err := f.WriteString(header); err != nil {
			return fmt.Errorf("history: write header: %w", err)
		}
	}

	if e.At.IsZero() {
		e.At = s.now()
	}
	if _, err := f.WriteString(formatEntry(e)); err != nil {
		return fmt.Errorf("history: write entry: %w", err)
	}
	return nil
}

// Read は host の履歴ファイル全文を返す。ファイルが存在しない場合は空文字列。
func (s *Store) Read(host string) string {
	data, err := os.ReadFile(s.path(host))
	if err != nil {
		return ""
	}
	return string(data)
}

func (s *Store) path(host string) string {
	return filepath.Join(s.dir, sanitizeFilename(host)+".md")
}

// formatEntry は Entry を Markdown の節に変換する。
// Format:
//
//	## 2024-01-02 15:04:05 Ping example.com [OK]
//	<report（見出しを 1 段下げたもの）>
func formatEntry(e Entry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s %s", e.At.Format("2006-01-02 15:04:05"), e.Kind)
	if e.Target != "" {
		sb.WriteString(" " + e.Target)
	}
	if e.Status != "" {
		fmt.Fprintf(&sb, " [%s]", e.Status)
	}
	sb.WriteString("\n\n")
	if body := demoteHeadings(e.Report); body != "" {
		sb.WriteString(body)
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// demoteHeadings は先頭の "# " 見出しを除き、残りの見出しを 1 段下げる。
// コードブロック内の行は変更しない。
func demoteHeadings(md string) string {
	var out []string
	inFence := false
	first := true
	sc := bufio.NewScanner(strings.NewReader(md))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "```"):
			inFence = !inFence
		case inFence:
		case first && strings.HasPrefix(line, "# "):
			first = false
			continue
		case strings.HasPrefix(line, "#"):
			line = "#" + line
		}
		if strings.TrimSpace(line) != "" {
			first = false
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// sanitizeFilename はホスト名をファイル名として安全な形式に変換する。
// IP アドレスとドメイン名はそのまま使用できる。
// セキュリティ: パストラバーサルを防ぐため / と \ を除去する。
func sanitizeFilename(host string) string {
	host = strings.ReplaceAll(host, "/", "_")
	host = strings.ReplaceAll(host, "\\", "_")
	host = strings.ReplaceAll(host, "..", "_")
	host = strings.ReplaceAll(host, ":", "_")
	if host == "" {
		host = "unknown"
	}
	return host
}
