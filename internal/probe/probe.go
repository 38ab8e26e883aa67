// Package probe runs the network diagnostic tools described by a schema.Input.
//
// Every host, port and URL is authorized by a destination.Validator before
// anything is sent on the network. Binary-backed tools (ping, traceroute,
// nmap, whois, dig, curl) go through a tools.Executor; Dns, Fetch and
// TlsCertificate are implemented in-process.
package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/0x6d61/connected/internal/destination"
	"github.com/0x6d61/connected/internal/tools"
	"github.com/0x6d61/connected/pkg/schema"
)

// ErrUnknownTool is returned by Run for an Input whose kind has no implementation.
var ErrUnknownTool = errors.New("probe: unknown tool")

// ErrInvalidInput is returned when an Input field is malformed (not a destination rejection).
var ErrInvalidInput = errors.New("probe: invalid input")

// DefaultResolver は Dns ツールが問い合わせるリゾルバ。
const DefaultResolver = "1.1.1.1:53"

// Prober runs tools. Construct with [NewProber]; the exported fields may be
// replaced before the first call to Run.
type Prober struct {
	// Exec runs the external binaries.
	Exec tools.Executor

	// Validator authorizes every destination.
	Validator *destination.Validator

	// Resolver is the host:port the Dns tool queries.
	Resolver string

	// DefaultTimeoutMs is used when an Input leaves timeoutMs unset. Zero means schema.DefaultTimeoutMs.
	DefaultTimeoutMs int

	// IncludeTracerouteRaw copies stdout/stderr into the parsed traceroute result.
	IncludeTracerouteRaw bool

	// Logger receives probeStart / probeDone events.
	Logger SLogger

	// TimeNow returns the current time.
	TimeNow func() time.Time
}

// NewProber returns a Prober with the default resolver, a discarding logger and time.Now.
func NewProber(exec tools.Executor, validator *destination.Validator) *Prober {
	return &Prober{
		Exec:      exec,
		Validator: validator,
		Resolver:  DefaultResolver,
		Logger:    DefaultSLogger(),
		TimeNow:   time.Now,
	}
}

// Run validates in, executes the matching tool and returns its Output.
// The returned Output always has the same Kind as in.
//
// Run returns an error only when the input is rejected, the kind is unknown
// or the external binary could not be started. Failures observed while the
// tool ran (non-zero exit, HTTP errors, handshake errors) are reported inside
// the Output.
func (p *Prober) Run(ctx context.Context, in schema.Input) (schema.Output, error) {
	target, err := p.target(in)
	if err != nil {
		return nil, err
	}

	t0 := p.TimeNow()
	p.Logger.Info(
		"probeStart",
		slog.String("tool", string(in.Kind())),
		slog.String("target", target),
	)

	var out schema.Output
	switch v := in.(type) {
	case *schema.DnsInput:
		out, err = p.lookupDNS(ctx, v, target)
	case *schema.DnsTraceInput:
		out, err = p.dnsTrace(ctx, v, target)
	case *schema.FetchInput:
		out, err = p.fetch(ctx, v)
	case *schema.HttpTraceInput:
		out, err = p.httpTrace(ctx, v, target)
	case *schema.PingInput:
		out, err = p.ping(ctx, v, target)
	case *schema.PortCheckInput:
		out, err = p.portCheck(ctx, v, target)
	case *schema.TracerouteInput:
		out, err = p.traceroute(ctx, v, target)
	case *schema.TlsCertificateInput:
		out, err = p.tlsCertificate(ctx, v, target)
	case *schema.WhoisInput:
		out, err = p.whois(ctx, v, target)
	default:
		err = fmt.Errorf("%w: %T", ErrUnknownTool, in)
	}

	p.Logger.Info(
		"probeDone",
		slog.String("tool", string(in.Kind())),
		slog.String("target", target),
		slog.Duration("duration", p.TimeNow().Sub(t0)),
		slog.Any("err", err),
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// execute runs a registered binary with a clamped timeout.
func (p *Prober) execute(ctx context.Context, timeoutMs int, name string, args map[string]any) (*schema.RawOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout(timeoutMs))
	defer cancel()

	raw, err := p.Exec.Execute(ctx, name, args)
	if err != nil {
		p.Logger.Warn("executeFailed", slog.String("tool", name), slog.Any("err", err))
		return nil, err
	}
	p.Logger.Debug(
		"executeDone",
		slog.String("tool", name),
		slog.Any("exitCode", raw.ExitCode),
		slog.Any("signal", raw.Signal),
	)
	return raw, nil
}

// timeout は入力の timeoutMs（未指定なら DefaultTimeoutMs）を許容範囲に収める。
func (p *Prober) timeout(timeoutMs int) time.Duration {
	if timeoutMs <= 0 {
		timeoutMs = p.DefaultTimeoutMs
	}
	return schema.ClampTimeout(timeoutMs)
}
