package parser

import (
	"regexp"
	"strings"

	"github.com/0x6d61/connected/pkg/schema"
)

// 宛先情報が stderr に無い場合の traceroute 既定値。
const (
	defaultMaxHops    = 30
	defaultPacketSize = 40
)

var (
	traceHeaderRe = regexp.MustCompile(`traceroute to ([^ ]+) \(([^)]+)\), (\d+) hops max, (\d+) byte packets`)

	hopDNSRe            = regexp.MustCompile(`^\s*(\d+)\s+(\S+)\s+\(([^)]+)\)(?:\s+([\d.]+)\s+ms)?(?:\s+([\d.]+)\s+ms)?(?:\s+([\d.]+)\s+ms)?$`)
	hopStandardRe       = regexp.MustCompile(`^\s*(\d+)\s+(\S+)\s+([\d.]+)\s+ms\s+([\d.]+)\s+ms\s+([\d.]+)\s+ms`)
	hopPartialRe        = regexp.MustCompile(`^\s*(\d+)\s+(\S+)\s+([\d.]+)\s+ms\s+([\d.]+)\s+ms$`)
	hopSingleRe         = regexp.MustCompile(`^\s*(\d+)\s+(\S+)\s+([\d.]+)\s+ms$`)
	hopTimeoutRe        = regexp.MustCompile(`^\s*(\d+)\s+(\*\s*)+$`)
	hopPartialTimeoutRe = regexp.MustCompile(`^\s*(\d+)\s+(\S+)\s+([\d.]+)\s+ms\s+\*\s+\*$`)
	hopContinuationRe   = regexp.MustCompile(`^\s+(\S+)\s+([\d.]+)\s+ms`)
	hopTimeOnlyRe       = regexp.MustCompile(`^\s+((?:[\d.]+\s+ms\s*)+)$`)
	hopTimeTokenRe      = regexp.MustCompile(`([\d.]+)\s+ms`)
)

// traceState tracks the hops emitted so far and the number of the most recent numbered hop.
type traceState struct {
	hops    []schema.TracerouteHop
	current int
	hasHop  bool
}

func (s *traceState) numbered(h schema.TracerouteHop) {
	s.hops = append(s.hops, h)
	s.current = h.Number
	s.hasHop = true
}

// ipHop は番号付きで IP と時間列を持つ形式（standard / partial / single / partial-timeout）を扱う。
func ipHop(timeGroups ...int) func(*traceState, []string) bool {
	return func(s *traceState, m []string) bool {
		times := make([]string, 0, len(timeGroups))
		for _, g := range timeGroups {
			times = append(times, m[g])
		}
		s.numbered(schema.TracerouteHop{Number: atoi(m[1]), IP: m[2], Times: times})
		return false
	}
}

// traceRules の順序は優先度そのもの。DNS 名付きの行を最初に試す。
var traceRules = []rule[traceState]{
	{
		name:  "dns",
		match: matchRegexp(hopDNSRe),
		apply: func(s *traceState, m []string) bool {
			times := []string{}
			for _, t := range m[4:7] {
				if t != "" {
					times = append(times, t)
				}
			}
			s.numbered(schema.TracerouteHop{Number: atoi(m[1]), Hostname: m[2], IP: m[3], Times: times})
			return false
		},
	},
	{name: "standard", match: matchRegexp(hopStandardRe), apply: ipHop(3, 4, 5)},
	{name: "partial", match: matchRegexp(hopPartialRe), apply: ipHop(3, 4)},
	{name: "single", match: matchRegexp(hopSingleRe), apply: ipHop(3)},
	{
		name:  "timeout",
		match: matchRegexp(hopTimeoutRe),
		apply: func(s *traceState, m []string) bool {
			fields := strings.Fields(m[0])
			times := make([]string, 0, len(fields)-1)
			for range fields[1:] {
				times = append(times, "*")
			}
			s.numbered(schema.TracerouteHop{Number: atoi(m[1]), Times: times, IsTimeout: true})
			return false
		},
	},
	{name: "partial-timeout", match: matchRegexp(hopPartialTimeoutRe), apply: ipHop(3)},
	{
		// 同じホップで別アドレスから応答があった行。直前のホップ番号を引き継ぐ。
		name:  "continuation-ip",
		match: matchRegexp(hopContinuationRe),
		apply: func(s *traceState, m []string) bool {
			if !s.hasHop {
				return false
			}
			s.hops = append(s.hops, schema.TracerouteHop{
				Number:         s.current,
				IP:             m[1],
				Times:          []string{m[2]},
				IsContinuation: true,
			})
			return false
		},
	},
	{
		name:  "continuation-time",
		match: matchRegexp(hopTimeOnlyRe),
		apply: func(s *traceState, m []string) bool {
			if len(s.hops) == 0 {
				return false
			}
			last := &s.hops[len(s.hops)-1]
			for _, t := range hopTimeTokenRe.FindAllStringSubmatch(m[1], -1) {
				last.Times = append(last.Times, t[1])
			}
			return false
		},
	},
}

// ParseTraceroute converts a traceroute transcript into a TracerouteResult. It never returns nil;
// Success reflects a zero exit status. includeRaw copies stdout and stderr into the result
// when both were captured.
func ParseTraceroute(raw *schema.RawOutput, includeRaw bool) *schema.TracerouteResult {
	result := &schema.TracerouteResult{
		ToolType: schema.ToolTraceroute,
		Success:  raw.Succeeded(),
		Destination: schema.TracerouteDestination{
			MaxHops:    defaultMaxHops,
			PacketSize: defaultPacketSize,
		},
		Hops: []schema.TracerouteHop{},
	}
	if raw == nil {
		return result
	}

	if includeRaw && raw.Stdout != nil && raw.Stderr != nil {
		result.RawOutput = &schema.TracerouteRaw{Stdout: *raw.Stdout, Stderr: *raw.Stderr}
	}

	if m := traceHeaderRe.FindStringSubmatch(raw.StderrText()); m != nil {
		result.Destination = schema.TracerouteDestination{
			Domain:     m[1],
			IP:         m[2],
			MaxHops:    atoi(m[3]),
			PacketSize: atoi(m[4]),
		}
	}

	if stdout := strings.TrimSpace(raw.StdoutText()); stdout != "" {
		lines := strings.Split(stdout, "\n")
		for i := range lines {
			lines[i] = strings.TrimSuffix(lines[i], "\r")
		}
		s := &traceState{}
		applyRules(s, lines, traceRules)
		if s.hops != nil {
			result.Hops = s.hops
		}
	}
	return result
}
