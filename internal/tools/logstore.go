package tools

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/0x6d61/connected/pkg/schema"
)

// Run は 1 回のツール実行の記録。
type Run struct {
	ID         string
	Tool       string
	Target     string
	Args       []string
	Raw        *schema.RawOutput
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration は実行時間を返す。
func (r *Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// NewRunID は実行記録用の一意 ID を返す。
func NewRunID() string {
	return uuid.NewString()
}

// LogStore はツール実行の生出力をメモリに保持する。並行利用可。
type LogStore struct {
	mu   sync.RWMutex
	runs map[string]*Run
}

// NewLogStore は空の LogStore を返す。
func NewLogStore() *LogStore {
	return &LogStore{runs: make(map[string]*Run)}
}

// Save は Run を保存する。
func (s *LogStore) Save(r *Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[r.ID] = r
}

// Get は ID で Run を取得する。
func (s *LogStore) Get(id string) (*Run, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.runs[id]
	return r, ok
}

// ForTarget は target の Run を新しい順で返す。
func (s *LogStore) ForTarget(target string) []*Run {
	s.mu.RLock()
	var out []*Run
	for _, r := range s.runs {
		if r.Target == target {
			out = append(out, r)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out
}

// Latest は最後に開始した Run を返す。
func (s *LogStore) Latest() (*Run, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *Run
	for _, r := range s.runs {
		if latest == nil || r.StartedAt.After(latest.StartedAt) {
			latest = r
		}
	}
	return latest, latest != nil
}

// FullText は Run の生出力全文を見出し付きで返す。
func (s *LogStore) FullText(id string) (string, bool) {
	r, ok := s.Get(id)
	if !ok {
		return "", false
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== %s %s (ID: %s) ===\n", r.Tool, strings.Join(r.Args, " "), r.ID)
	sb.WriteString(r.Raw.StdoutText())
	if stderr := r.Raw.StderrText(); stderr != "" {
		sb.WriteString("--- stderr ---\n")
		sb.WriteString(stderr)
	}
	return sb.String(), true
}
