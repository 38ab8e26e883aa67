// Package destination decides whether a host or port may be targeted by a diagnostic tool.
//
// 判定は文字列と CIDR の計算のみで行い、名前解決などのネットワーク I/O は一切しない。
package destination

import (
	"net/netip"
	"slices"
	"strings"
)

// Policy is the immutable data a Validator checks against.
type Policy struct {
	// BlockedNames はホスト名そのものとして拒否する名前（大文字小文字を区別しない）。
	BlockedNames []string
	// BlockedTLDs は内部用途の TLD。2 ラベル以上のホストの末尾ラベルと比較する。
	BlockedTLDs []string
	// BlockedPrefixes はプライベート・予約済みの IPv4/IPv6 範囲。
	BlockedPrefixes []netip.Prefix
	// DenyPatterns は追加で拒否するホスト名の正規表現。
	DenyPatterns []string
}

var defaultBlockedTLDs = []string{
	"localhost",
	"internal",
	"test",
	"onion",
	"local",
	"home",
	"corp",
	"lan",
	"private",
	"intranet",
}

var defaultBlockedPrefixes = []string{
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"127.0.0.0/8",
	"224.0.0.0/4", // multicast
	"240.0.0.0/4", // reserved
	"::1/128",
	"fc00::/7",  // unique local
	"fe80::/10", // link-local
	"ff00::/8",  // multicast
}

// DefaultPolicy returns the built-in blocked names, TLDs and address ranges.
func DefaultPolicy() Policy {
	p := Policy{
		BlockedNames: []string{"localhost"},
		BlockedTLDs:  slices.Clone(defaultBlockedTLDs),
	}
	for _, s := range defaultBlockedPrefixes {
		p.BlockedPrefixes = append(p.BlockedPrefixes, netip.MustParsePrefix(s))
	}
	return p
}

// WithExtraTLDs は TLD を追加した Policy のコピーを返す。
func (p Policy) WithExtraTLDs(tlds ...string) Policy {
	out := p.clone()
	for _, t := range tlds {
		t = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(t)), ".")
		if t != "" && !slices.Contains(out.BlockedTLDs, t) {
			out.BlockedTLDs = append(out.BlockedTLDs, t)
		}
	}
	return out
}

// WithDenyPatterns は正規表現を追加した Policy のコピーを返す。
func (p Policy) WithDenyPatterns(patterns ...string) Policy {
	out := p.clone()
	out.DenyPatterns = append(out.DenyPatterns, patterns...)
	return out
}

func (p Policy) clone() Policy {
	return Policy{
		BlockedNames:    slices.Clone(p.BlockedNames),
		BlockedTLDs:     slices.Clone(p.BlockedTLDs),
		BlockedPrefixes: slices.Clone(p.BlockedPrefixes),
		DenyPatterns:    slices.Clone(p.DenyPatterns),
	}
}
