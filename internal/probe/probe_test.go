package probe_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0x6d61/connected/internal/destination"
	"github.com/0x6d61/connected/internal/probe"
	"github.com/0x6d61/connected/internal/tools"
	"github.com/0x6d61/connected/pkg/schema"
)

const pingOutput = `PING example.com (93.184.216.34): 56 data bytes
64 bytes from 93.184.216.34: icmp_seq=0 ttl=56 time=11.632 ms

--- example.com ping statistics ---
1 packets transmitted, 1 packets received, 0.0% packet loss
round-trip min/avg/max/stddev = 11.632/11.632/11.632/0.000 ms
`

func TestRun_Ping(t *testing.T) {
	exec := &fakeExecutor{outputs: map[string]*schema.RawOutput{tools.ToolPing: rawStdout(pingOutput)}}
	p := newProber(exec)

	out, err := p.Run(context.Background(), &schema.PingInput{Host: "example.com:443"})
	require.NoError(t, err)

	got, ok := out.(*schema.PingOutput)
	require.True(t, ok, "got %T", out)
	assert.Equal(t, schema.ToolPing, got.Kind())
	require.NotNil(t, got.Parsed)
	assert.True(t, got.Parsed.Success)
	assert.Equal(t, "93.184.216.34", got.Parsed.ResolvedIP)
	assert.Equal(t, pingOutput, got.Raw.StdoutText())

	c := exec.lastCall()
	assert.Equal(t, tools.ToolPing, c.name)
	assert.Equal(t, map[string]any{"host": "example.com", "count": probe.DefaultPingCount}, c.args)
}

func TestRun_PingCount(t *testing.T) {
	exec := &fakeExecutor{}
	_, err := newProber(exec).Run(context.Background(), &schema.PingInput{Host: "8.8.8.8", Count: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, exec.lastCall().args["count"])
}

func TestRun_RejectsBeforeExecuting(t *testing.T) {
	cases := []struct {
		name string
		in   schema.Input
		want error
	}{
		{"private ping", &schema.PingInput{Host: "10.0.0.1"}, destination.ErrPrivateAddress},
		{"localhost traceroute", &schema.TracerouteInput{Host: "localhost"}, destination.ErrBlockedName},
		{"internal tld whois", &schema.WhoisInput{Host: "db.internal"}, destination.ErrBlockedTLD},
		{"port out of range", &schema.PortCheckInput{Host: "example.com", Port: 70000}, destination.ErrPortOutOfRange},
		{"bad domain", &schema.DnsTraceInput{Domain: "bad_domain.com"}, destination.ErrInvalidDomain},
		{"loopback url", &schema.HttpTraceInput{URL: "http://127.0.0.1/"}, destination.ErrPrivateAddress},
		{"file scheme", &schema.FetchInput{URL: "file:///etc/passwd"}, probe.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			exec := &fakeExecutor{}
			out, err := newProber(exec).Run(context.Background(), tc.in)
			assert.ErrorIs(t, err, tc.want)
			assert.Nil(t, out)
			assert.Empty(t, exec.calls)
		})
	}
}

func TestRun_Traceroute(t *testing.T) {
	exec := &fakeExecutor{outputs: map[string]*schema.RawOutput{
		tools.ToolTraceroute: {
			ExitCode: schema.Ptr(0),
			Stdout:   schema.Ptr(" 1  8.8.8.8  1.000 ms\n"),
			Stderr:   schema.Ptr("traceroute to 8.8.8.8 (8.8.8.8), 64 hops max, 52 byte packets\n"),
		},
	}}
	p := newProber(exec)
	p.IncludeTracerouteRaw = true

	out, err := p.Run(context.Background(), &schema.TracerouteInput{Host: "8.8.8.8", MaxHops: 20})
	require.NoError(t, err)

	got := out.(*schema.TracerouteOutput)
	require.NotNil(t, got.Parsed)
	assert.Equal(t, 64, got.Parsed.Destination.MaxHops)
	assert.Len(t, got.Parsed.Hops, 1)
	assert.NotNil(t, got.Parsed.RawOutput)

	assert.Equal(t, map[string]any{"host": "8.8.8.8", "max_hops": 20}, exec.lastCall().args)
}

func TestRun_PortCheck(t *testing.T) {
	nmap := "Starting Nmap 7.94 ( https://nmap.org ) at 2025-01-10 12:00 UTC\n" +
		"Nmap scan report for example.com (93.184.216.34)\n" +
		"443/tcp open https\n" +
		"Nmap done: 1 IP address (1 host up) scanned in 0.20 seconds\n"
	exec := &fakeExecutor{outputs: map[string]*schema.RawOutput{tools.ToolNmap: rawStdout(nmap)}}

	out, err := newProber(exec).Run(context.Background(), &schema.PortCheckInput{Host: "example.com", Port: 443})
	require.NoError(t, err)

	got := out.(*schema.PortCheckOutput)
	require.NotNil(t, got.Parsed)
	require.NotNil(t, got.Parsed.Port)
	assert.Equal(t, schema.PortOpen, got.Parsed.Port.State)
	assert.Equal(t, map[string]any{"host": "example.com", "port": "443"}, exec.lastCall().args)
}

func TestRun_WhoisQueriesRegistrableDomain(t *testing.T) {
	cases := map[string]string{
		"www.example.co.uk": "example.co.uk",
		"a.b.Example.COM":   "example.com",
		"8.8.8.8":           "8.8.8.8",
		"com":               "com",
	}
	for host, want := range cases {
		exec := &fakeExecutor{}
		_, err := newProber(exec).Run(context.Background(), &schema.WhoisInput{Host: host})
		require.NoError(t, err, host)
		assert.Equal(t, want, exec.lastCall().args["host"], host)
	}
}

func TestRun_RawTools(t *testing.T) {
	exec := &fakeExecutor{outputs: map[string]*schema.RawOutput{
		tools.ToolDig:  rawStdout("; <<>> DiG 9.18 <<>> +trace example.com\n"),
		tools.ToolCurl: rawStdout("dns: 0.01\ntotal: 0.20\n"),
	}}
	p := newProber(exec)

	out, err := p.Run(context.Background(), &schema.DnsTraceInput{Domain: "example.com"})
	require.NoError(t, err)
	assert.Contains(t, out.(*schema.DnsTraceOutput).StdoutText(), "DiG")
	assert.Equal(t, map[string]any{"domain": "example.com"}, exec.lastCall().args)

	out, err = p.Run(context.Background(), &schema.HttpTraceInput{URL: "https://example.com/path"})
	require.NoError(t, err)
	assert.Contains(t, out.(*schema.HttpTraceOutput).StdoutText(), "total")
	c := exec.lastCall()
	assert.Equal(t, tools.ToolCurl, c.name)
	assert.Equal(t, "https://example.com/path", c.args["url"])
	assert.IsType(t, []string{}, c.args["format"])
}

func TestRun_RawToolsTimeout(t *testing.T) {
	exec := &fakeExecutor{}
	p := newProber(exec)

	_, err := p.Run(context.Background(), &schema.DnsTraceInput{Domain: "example.com", TimeoutMs: 2000})
	require.NoError(t, err)
	assert.LessOrEqual(t, exec.lastCall().budget, 2*time.Second)
	assert.Greater(t, exec.lastCall().budget, time.Second)

	_, err = p.Run(context.Background(), &schema.HttpTraceInput{URL: "https://example.com", TimeoutMs: 1500})
	require.NoError(t, err)
	assert.LessOrEqual(t, exec.lastCall().budget, 1500*time.Millisecond)

	_, err = p.Run(context.Background(), &schema.HttpTraceInput{URL: "https://example.com"})
	require.NoError(t, err)
	assert.Greater(t, exec.lastCall().budget, 20*time.Second)
}

func TestRun_OutputKindMatchesInput(t *testing.T) {
	inputs := []schema.Input{
		&schema.DnsTraceInput{Domain: "example.com"},
		&schema.HttpTraceInput{URL: "https://example.com"},
		&schema.PingInput{Host: "example.com"},
		&schema.PortCheckInput{Host: "example.com", Port: 22},
		&schema.TracerouteInput{Host: "example.com"},
		&schema.WhoisInput{Host: "example.com"},
	}
	p := newProber(&fakeExecutor{})
	for _, in := range inputs {
		out, err := p.Run(context.Background(), in)
		require.NoError(t, err, in.Kind())
		assert.Equal(t, in.Kind(), out.Kind())
	}
}

func TestRun_ExecutorError(t *testing.T) {
	boom := errors.New("binary missing")
	_, err := newProber(&fakeExecutor{err: boom}).Run(context.Background(), &schema.PingInput{Host: "example.com"})
	assert.ErrorIs(t, err, boom)
}

func TestRun_NilInput(t *testing.T) {
	_, err := newProber(&fakeExecutor{}).Run(context.Background(), nil)
	assert.ErrorIs(t, err, probe.ErrUnknownTool)
}

func TestRun_Logs(t *testing.T) {
	var buf bytes.Buffer
	p := newProber(&fakeExecutor{})
	p.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := p.Run(context.Background(), &schema.PingInput{Host: "example.com"})
	require.NoError(t, err)

	logs := buf.String()
	assert.Contains(t, logs, "msg=probeStart")
	assert.Contains(t, logs, "msg=probeDone")
	assert.Contains(t, logs, "tool=Ping")
	assert.Contains(t, logs, "target=example.com")
}
