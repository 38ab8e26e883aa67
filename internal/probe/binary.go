package probe

import (
	"context"
	"net/netip"
	"strconv"
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/0x6d61/connected/internal/destination"
	"github.com/0x6d61/connected/internal/parser"
	"github.com/0x6d61/connected/internal/tools"
	"github.com/0x6d61/connected/pkg/schema"
)

// DefaultPingCount は PingInput.Count 未指定時の送信回数。
const DefaultPingCount = 4

// httpTraceFormat は curl -w に渡すタイミング出力の書式（秒単位）。
const httpTraceFormat = "dns: %{time_namelookup}\n" +
	"connect: %{time_connect}\n" +
	"tls: %{time_appconnect}\n" +
	"ttfb: %{time_starttransfer}\n" +
	"total: %{time_total}\n" +
	"status: %{http_code}\n"

func (p *Prober) ping(ctx context.Context, in *schema.PingInput, host string) (*schema.PingOutput, error) {
	count := in.Count
	if count == 0 {
		count = DefaultPingCount
	}
	raw, err := p.execute(ctx, in.TimeoutMs, tools.ToolPing, map[string]any{
		"host":  host,
		"count": count,
	})
	if err != nil {
		return nil, err
	}
	return &schema.PingOutput{Raw: *raw, Parsed: parser.ParsePing(host, raw)}, nil
}

func (p *Prober) traceroute(ctx context.Context, in *schema.TracerouteInput, host string) (*schema.TracerouteOutput, error) {
	args := map[string]any{"host": host}
	if in.MaxHops > 0 {
		args["max_hops"] = in.MaxHops
	}
	if in.QueryCount > 0 {
		args["queries"] = in.QueryCount
	}
	if in.WaitTime > 0 {
		args["wait"] = in.WaitTime
	}
	raw, err := p.execute(ctx, in.TimeoutMs, tools.ToolTraceroute, args)
	if err != nil {
		return nil, err
	}
	return &schema.TracerouteOutput{Raw: *raw, Parsed: parser.ParseTraceroute(raw, p.IncludeTracerouteRaw)}, nil
}

func (p *Prober) portCheck(ctx context.Context, in *schema.PortCheckInput, host string) (*schema.PortCheckOutput, error) {
	port, err := destination.Port(in.Port)
	if err != nil {
		return nil, err
	}
	portText := strconv.Itoa(port)
	raw, err := p.execute(ctx, in.TimeoutMs, tools.ToolNmap, map[string]any{
		"host": host,
		"port": portText,
	})
	if err != nil {
		return nil, err
	}
	return &schema.PortCheckOutput{Raw: *raw, Parsed: parser.ParsePortScan(raw, host, portText)}, nil
}

func (p *Prober) whois(ctx context.Context, in *schema.WhoisInput, host string) (*schema.WhoisOutput, error) {
	raw, err := p.execute(ctx, in.TimeoutMs, tools.ToolWhois, map[string]any{
		"host": whoisQuery(host),
	})
	if err != nil {
		return nil, err
	}
	return &schema.WhoisOutput{Raw: *raw, Parsed: parser.ParseWhois(raw)}, nil
}

// whoisQuery はサブドメインを登録ドメイン（eTLD+1）に縮める。
// IP アドレスと、縮められないもの（TLD そのものなど）はそのまま返す。
func whoisQuery(host string) string {
	if _, err := netip.ParseAddr(host); err == nil {
		return host
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(strings.ToLower(host))
	if err != nil {
		return host
	}
	return domain
}

func (p *Prober) dnsTrace(ctx context.Context, in *schema.DnsTraceInput, domain string) (*schema.DnsTraceOutput, error) {
	raw, err := p.execute(ctx, in.TimeoutMs, tools.ToolDig, map[string]any{"domain": domain})
	if err != nil {
		return nil, err
	}
	return &schema.DnsTraceOutput{RawOutput: *raw}, nil
}

func (p *Prober) httpTrace(ctx context.Context, in *schema.HttpTraceInput, target string) (*schema.HttpTraceOutput, error) {
	raw, err := p.execute(ctx, in.TimeoutMs, tools.ToolCurl, map[string]any{
		"url":    target,
		"format": []string{httpTraceFormat},
	})
	if err != nil {
		return nil, err
	}
	return &schema.HttpTraceOutput{RawOutput: *raw}, nil
}
