package probe_test

import (
	"context"
	"net/netip"
	"sync"
	"time"

	"github.com/0x6d61/connected/internal/destination"
	"github.com/0x6d61/connected/internal/probe"
	"github.com/0x6d61/connected/pkg/schema"
)

type call struct {
	name string
	args map[string]any
	// budget は呼び出し時点での ctx の残り時間。期限が無ければ 0。
	budget time.Duration
}

// fakeExecutor は呼び出しを記録し、ツール名ごとの固定出力を返す。
type fakeExecutor struct {
	mu      sync.Mutex
	calls   []call
	outputs map[string]*schema.RawOutput
	err     error
}

func (f *fakeExecutor) Execute(ctx context.Context, name string, args map[string]any) (*schema.RawOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := call{name: name, args: args}
	if deadline, ok := ctx.Deadline(); ok {
		c.budget = time.Until(deadline)
	}
	f.calls = append(f.calls, c)
	if f.err != nil {
		return nil, f.err
	}
	if raw, ok := f.outputs[name]; ok {
		return raw, nil
	}
	return &schema.RawOutput{ExitCode: schema.Ptr(0), Stdout: schema.Ptr(""), Stderr: schema.Ptr("")}, nil
}

func (f *fakeExecutor) lastCall() call {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return call{}
	}
	return f.calls[len(f.calls)-1]
}

func rawStdout(stdout string) *schema.RawOutput {
	return &schema.RawOutput{ExitCode: schema.Ptr(0), Stdout: schema.Ptr(stdout), Stderr: schema.Ptr("")}
}

func newProber(exec *fakeExecutor) *probe.Prober {
	return probe.NewProber(exec, destination.NewValidator(destination.DefaultPolicy()))
}

// loopbackProber は httptest サーバーに届くよう、ループバックを許可した Prober を返す。
func loopbackProber() *probe.Prober {
	return probe.NewProber(&fakeExecutor{}, destination.NewValidator(destination.Policy{}))
}

// policyBlocking は prefixes だけを拒否するポリシー。
func policyBlocking(prefixes ...string) destination.Policy {
	var p destination.Policy
	for _, s := range prefixes {
		p.BlockedPrefixes = append(p.BlockedPrefixes, netip.MustParsePrefix(s))
	}
	return p
}
