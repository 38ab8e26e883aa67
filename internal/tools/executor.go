package tools

import (
	"context"

	"github.com/0x6d61/connected/pkg/schema"
)

// Executor は名前付きツールを実行して生出力を返す。
// 非ゼロ終了やシグナル終了はエラーではなく RawOutput に記録される。
// エラーになるのはツールが解決できない、または起動できなかった場合のみ。
type Executor interface {
	Execute(ctx context.Context, name string, args map[string]any) (*schema.RawOutput, error)
}
