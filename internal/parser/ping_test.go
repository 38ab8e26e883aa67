package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0x6d61/connected/internal/parser"
	"github.com/0x6d61/connected/pkg/schema"
)

func rawOutput(exit int, stdout, stderr string) *schema.RawOutput {
	return &schema.RawOutput{
		ExitCode: schema.Ptr(exit),
		Stdout:   schema.Ptr(stdout),
		Stderr:   schema.Ptr(stderr),
	}
}

const pingDarwin = `PING example.com (93.184.216.34): 56 data bytes
64 bytes from 93.184.216.34: icmp_seq=0 ttl=56 time=11.632 ms
64 bytes from 93.184.216.34: icmp_seq=1 ttl=56 time=12.014 ms
64 bytes from 93.184.216.34: icmp_seq=2 ttl=56 time=11.870 ms
64 bytes from 93.184.216.34: icmp_seq=3 ttl=56 time=13.201 ms

--- example.com ping statistics ---
4 packets transmitted, 4 packets received, 0.0% packet loss
round-trip min/avg/max/stddev = 11.632/12.179/13.201/0.610 ms
`

func TestParsePing_Darwin(t *testing.T) {
	got := parser.ParsePing("example.com", rawOutput(0, pingDarwin, ""))
	require.NotNil(t, got)

	assert.Equal(t, schema.ToolPing, got.ToolType)
	assert.Equal(t, "example.com", got.Target)
	assert.Equal(t, "93.184.216.34", got.ResolvedIP)
	assert.True(t, got.Success)
	require.Len(t, got.Responses, 4)
	assert.Equal(t, schema.PingResponse{Seq: 0, TTL: 56, TimeMs: 11.632}, got.Responses[0])
	assert.Equal(t, 3, got.Responses[3].Seq)
	assert.Empty(t, got.Timeouts)
	require.NotNil(t, got.Transmitted)
	assert.Equal(t, 4, *got.Transmitted)
	assert.Equal(t, 4, *got.Received)
	assert.Equal(t, 0.0, *got.LossPercent)
	assert.Equal(t, &schema.PingRTT{Min: 11.632, Avg: 12.179, Max: 13.201, Stddev: 0.610}, got.RTT)
}

const pingLinux = `PING example.com (93.184.216.34) 56(84) bytes of data.
64 bytes from 93.184.216.34 (93.184.216.34): icmp_seq=1 ttl=56 time=11.6 ms
64 bytes from 93.184.216.34 (93.184.216.34): icmp_seq=2 ttl=56 time=11.9 ms

--- example.com ping statistics ---
3 packets transmitted, 2 received, 33.3333% packet loss, time 2003ms
rtt min/avg/max/mdev = 11.600/11.750/11.900/0.150 ms
`

func TestParsePing_Linux(t *testing.T) {
	got := parser.ParsePing("example.com", rawOutput(1, pingLinux, ""))
	require.NotNil(t, got)

	assert.True(t, got.Success)
	assert.Len(t, got.Responses, 2)
	assert.Equal(t, 3, *got.Transmitted)
	assert.Equal(t, 2, *got.Received)
	assert.InDelta(t, 33.3333, *got.LossPercent, 1e-9)
	require.NotNil(t, got.RTT)
	assert.Equal(t, 0.150, got.RTT.Stddev)
}

func TestParsePing_TimeoutsAndTotalLoss(t *testing.T) {
	out := `PING 203.0.113.10 (203.0.113.10): 56 data bytes
Request timeout for icmp_seq 0
Request timeout for icmp_seq 1

--- 203.0.113.10 ping statistics ---
2 packets transmitted, 0 packets received, 100.0% packet loss
`
	got := parser.ParsePing("203.0.113.10", rawOutput(2, out, ""))
	require.NotNil(t, got)

	assert.False(t, got.Success)
	assert.Equal(t, []int{0, 1}, got.Timeouts)
	assert.Empty(t, got.Responses)
	assert.Equal(t, 100.0, *got.LossPercent)
	assert.Nil(t, got.RTT)
}

// 統計行が無くても応答があれば成功とみなす。
func TestParsePing_ResponsesWithoutSummary(t *testing.T) {
	out := "Reply from 93.184.216.34: bytes=32 time=12ms TTL=56\n"
	got := parser.ParsePing("example.com", rawOutput(0, out, ""))
	require.NotNil(t, got)

	assert.True(t, got.Success)
	require.Len(t, got.Responses, 1)
	assert.Equal(t, schema.PingResponse{Seq: -1, TTL: -1, TimeMs: 12}, got.Responses[0])
	assert.Nil(t, got.Transmitted)
	assert.Equal(t, "example.com", got.Target, "target falls back to the argument without a PING header")
}

// 逆引き名付きの応答行（icmp_req 形式）もフォールバックで拾う。
func TestParsePing_FallbackWithHostnameReply(t *testing.T) {
	out := "PING mail.host (1.2.3.4) 56(84) bytes of data.\n" +
		"64 bytes from mail.host (1.2.3.4): icmp_req=1 ttl=57 time=8.41 ms\n" +
		"64 bytes from 1.2.3.4: icmp_req=2 ttl=57 time=9.02 ms\n"
	got := parser.ParsePing("mail.host", rawOutput(0, out, ""))
	require.NotNil(t, got)

	require.Len(t, got.Responses, 2)
	assert.Equal(t, schema.PingResponse{Seq: -1, TTL: -1, TimeMs: 8.41}, got.Responses[0])
	assert.Equal(t, schema.PingResponse{Seq: -1, TTL: -1, TimeMs: 9.02}, got.Responses[1])
	assert.True(t, got.Success)
}

func TestParsePing_CannotResolveStopsEarly(t *testing.T) {
	out := "ping: cannot resolve nosuchhost.example: Unknown host\n64 bytes from 1.2.3.4: icmp_seq=0 ttl=1 time=1.0 ms\n"
	got := parser.ParsePing("nosuchhost.example", rawOutput(68, out, ""))
	require.NotNil(t, got)

	assert.False(t, got.Success)
	assert.Equal(t, "ping: cannot resolve nosuchhost.example: Unknown host", got.Error)
	assert.Empty(t, got.Responses, "lines after the failure are not parsed")
}

func TestParsePing_LinuxUnknownHost(t *testing.T) {
	out := "ping: nosuchhost.example: Name or service not known\n"
	got := parser.ParsePing("nosuchhost.example", rawOutput(2, out, ""))
	require.NotNil(t, got)

	assert.False(t, got.Success)
	assert.Equal(t, "ping: nosuchhost.example: Name or service not known", got.Error)
}

func TestParsePing_OnlyFirstHeaderCounts(t *testing.T) {
	out := "PING first.example (198.51.100.1): 56 data bytes\nPING second.example (198.51.100.2): 56 data bytes\n"
	got := parser.ParsePing("x", rawOutput(0, out, ""))
	require.NotNil(t, got)

	assert.Equal(t, "first.example", got.Target)
	assert.Equal(t, "198.51.100.1", got.ResolvedIP)
}

func TestParsePing_NoStdout(t *testing.T) {
	assert.Nil(t, parser.ParsePing("example.com", &schema.RawOutput{ExitCode: schema.Ptr(1)}))
	assert.Nil(t, parser.ParsePing("example.com", rawOutput(1, "", "ping: permission denied")))
	assert.Nil(t, parser.ParsePing("example.com", nil))
}

func TestParsePing_Deterministic(t *testing.T) {
	raw := rawOutput(0, pingDarwin, "")
	assert.Equal(t, parser.ParsePing("example.com", raw), parser.ParsePing("example.com", raw))
}
