package parser

import (
	"regexp"
	"strings"

	"github.com/0x6d61/connected/pkg/schema"
)

var (
	nmapVersionRe    = regexp.MustCompile(`Nmap (\d+\.\d+)`)
	nmapResolveRe    = regexp.MustCompile(`Failed to resolve "(.+)"\.`)
	nmapReportRe     = regexp.MustCompile(`for (.+) \((.+)\)`)
	nmapOtherAddrsRe = regexp.MustCompile(`Other addresses for .+ \(not scanned\): (.+)`)
	nmapLatencyRe    = regexp.MustCompile(`(\d+\.\d+)s latency`)
	nmapPortLineRe   = regexp.MustCompile(`^\d+/tcp`)
	nmapElapsedRe    = regexp.MustCompile(`(\d+\.\d+) seconds`)
	nmapDoneRe       = regexp.MustCompile(`Nmap done: (\d+) IP address(?:es)? \((\d+) host(?:s)? up\)`)
)

type scanState struct {
	result schema.PortScanResult
	host   string
	port   string
}

var scanRules = []rule[scanState]{
	{
		name:  "version",
		match: matchPrefix("Starting Nmap", nmapVersionRe),
		apply: func(s *scanState, m []string) bool {
			if m != nil {
				s.result.NmapVersion = m[1]
			}
			return false
		},
	},
	{
		name:  "resolve-failure",
		match: matchPrefix("Failed to resolve", nmapResolveRe),
		apply: func(s *scanState, m []string) bool {
			if m != nil {
				s.result.Error = &schema.PortScanError{Message: "Failed to resolve host.", Host: m[1]}
			}
			return false
		},
	},
	{
		name:  "host-down",
		match: matchPrefix("Note: Host seems down", nil),
		apply: func(s *scanState, _ []string) bool {
			s.result.Error = &schema.PortScanError{Message: "Host is down.", Host: s.host}
			return false
		},
	},
	{
		name:  "scan-report",
		match: matchPrefix("Nmap scan report", nmapReportRe),
		apply: func(s *scanState, m []string) bool {
			if m != nil {
				s.result.HostName = m[1]
				s.result.HostIPAddress = m[2]
			}
			return false
		},
	},
	{
		name:  "other-addresses",
		match: matchPrefix("Other addresses for", nmapOtherAddrsRe),
		apply: func(s *scanState, m []string) bool {
			if m != nil {
				s.result.AdditionalIPs = strings.Split(m[1], " ")
			}
			return false
		},
	},
	{
		name:  "host-up",
		match: matchPrefix("Host is up", nmapLatencyRe),
		apply: func(s *scanState, m []string) bool {
			if m != nil {
				s.result.Latency = m[1] + "s"
			}
			return false
		},
	},
	{
		// 他のポートの行は捨てる。数字部分の文字列一致で判定する。
		name: "port",
		match: func(line string) ([]string, bool) {
			if !nmapPortLineRe.MatchString(line) {
				return nil, false
			}
			return strings.Fields(line), true
		},
		apply: func(s *scanState, fields []string) bool {
			number, protocol, _ := strings.Cut(fields[0], "/")
			if number != s.port {
				return false
			}
			p := &schema.ScannedPort{Number: atoi(number), Protocol: protocol}
			if len(fields) > 1 {
				p.State = schema.PortState(fields[1])
			}
			if len(fields) > 2 {
				p.Service = fields[2]
			}
			s.result.Port = p
			return false
		},
	},
	{
		name:  "done",
		match: matchPrefix("Nmap done", nil),
		apply: func(s *scanState, m []string) bool {
			line := m[0]
			if t := nmapElapsedRe.FindStringSubmatch(line); t != nil {
				s.result.ScanTime = t[1] + " seconds"
			}
			if st := nmapDoneRe.FindStringSubmatch(line); st != nil {
				s.result.AddressesScanned = atoi(st[1])
				s.result.HostsUp = atoi(st[2])
			}
			return false
		},
	},
}

// ParsePortScan converts an nmap transcript for a single port into a PortScanResult.
// It returns nil when no stdout was captured. Only the port line whose number equals
// port is kept.
func ParsePortScan(raw *schema.RawOutput, host, port string) *schema.PortScanResult {
	if raw == nil || !hasText(raw.Stdout) {
		return nil
	}

	s := &scanState{
		result: schema.PortScanResult{
			ToolType:    schema.ToolPortCheck,
			NmapVersion: "unknown",
			ScanTime:    "0ms",
		},
		host: host,
		port: port,
	}
	lines := strings.Split(*raw.Stdout, "\n")
	for i := range lines {
		lines[i] = strings.TrimSuffix(lines[i], "\r")
	}
	applyRules(s, lines, scanRules)
	return &s.result
}
