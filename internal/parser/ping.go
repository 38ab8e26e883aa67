package parser

import (
	"regexp"
	"strings"

	"github.com/0x6d61/connected/pkg/schema"
)

var (
	pingHeaderRe  = regexp.MustCompile(`^PING\s+(\S+)\s+\(([\d.:a-fA-F]+)\)`)
	pingReplyRe   = regexp.MustCompile(`icmp_seq=(\d+)\s+ttl=(\d+)\s+time=([\d.]+)\s*ms`)
	pingTimeRe    = regexp.MustCompile(`time=([\d.]+)\s*ms`)
	pingTimeoutRe = regexp.MustCompile(`Request timeout for icmp_seq (\d+)`)
	pingStatsRe   = regexp.MustCompile(`^(\d+)\s+packets transmitted,\s+(\d+)\s+(?:packets )?received,\s+([\d.]+)% packet loss`)
	pingRTTRe     = regexp.MustCompile(`(?:round-trip|rtt).*=\s*([\d.]+)/([\d.]+)/([\d.]+)/([\d.]+)\s*ms`)
	pingNoResolve = regexp.MustCompile(`^ping: cannot resolve.*`)
	pingUnknownRe = regexp.MustCompile(`^ping: .*(?:Name or service not known|unknown host|Temporary failure in name resolution).*`)
)

type pingState struct {
	result     schema.PingResult
	seenHeader bool
}

// pingRules は BSD/macOS の書式を先に、Linux 固有の書式を後ろに並べる。
var pingRules = []rule[pingState]{
	{
		name:  "header",
		match: matchPrefix("PING ", pingHeaderRe),
		apply: func(s *pingState, m []string) bool {
			if s.seenHeader {
				return false
			}
			s.seenHeader = true
			if m != nil {
				s.result.Target = m[1]
				s.result.ResolvedIP = m[2]
			}
			return false
		},
	},
	{
		name:  "reply",
		match: matchRegexp(pingReplyRe),
		apply: func(s *pingState, m []string) bool {
			s.result.Responses = append(s.result.Responses, schema.PingResponse{
				Seq:    atoi(m[1]),
				TTL:    atoi(m[2]),
				TimeMs: atof(m[3]),
			})
			return false
		},
	},
	{
		name: "reply-fallback",
		match: func(line string) ([]string, bool) {
			if !strings.Contains(line, "from") || !strings.Contains(line, "time=") {
				return nil, false
			}
			m := pingTimeRe.FindStringSubmatch(line)
			return m, m != nil
		},
		apply: func(s *pingState, m []string) bool {
			s.result.Responses = append(s.result.Responses, schema.PingResponse{
				Seq:    -1,
				TTL:    -1,
				TimeMs: atof(m[1]),
			})
			return false
		},
	},
	{
		name:  "timeout",
		match: matchRegexp(pingTimeoutRe),
		apply: func(s *pingState, m []string) bool {
			s.result.Timeouts = append(s.result.Timeouts, atoi(m[1]))
			return false
		},
	},
	{
		name:  "summary",
		match: matchRegexp(pingStatsRe),
		apply: func(s *pingState, m []string) bool {
			received := atoi(m[2])
			s.result.Transmitted = schema.Ptr(atoi(m[1]))
			s.result.Received = schema.Ptr(received)
			s.result.LossPercent = schema.Ptr(atof(m[3]))
			s.result.Success = received > 0
			return false
		},
	},
	{
		name:  "rtt",
		match: matchRegexp(pingRTTRe),
		apply: func(s *pingState, m []string) bool {
			s.result.RTT = &schema.PingRTT{
				Min:    atof(m[1]),
				Avg:    atof(m[2]),
				Max:    atof(m[3]),
				Stddev: atof(m[4]),
			}
			return false
		},
	},
	{
		name:  "cannot-resolve",
		match: matchRegexp(pingNoResolve),
		apply: resolveFailure,
	},
	{
		name:  "unknown-host",
		match: matchRegexp(pingUnknownRe),
		apply: resolveFailure,
	},
}

func resolveFailure(s *pingState, m []string) bool {
	s.result.Success = false
	s.result.Error = strings.TrimSpace(m[0])
	return true
}

// ParsePing converts a ping transcript into a PingResult. It returns nil when no stdout was captured.
//
// target は PING ヘッダ行が無い場合の表示名として使う。
func ParsePing(target string, raw *schema.RawOutput) *schema.PingResult {
	if raw == nil || !hasText(raw.Stdout) {
		return nil
	}

	s := &pingState{result: schema.PingResult{
		ToolType:  schema.ToolPing,
		Target:    target,
		Responses: []schema.PingResponse{},
		Timeouts:  []int{},
	}}
	lines := strings.Split(*raw.Stdout, "\n")
	for i := range lines {
		lines[i] = strings.TrimSuffix(lines[i], "\r")
	}
	applyRules(s, lines, pingRules)

	if s.result.Error == "" && len(s.result.Responses) > 0 && s.result.Transmitted == nil {
		s.result.Success = true
	}
	return &s.result
}
