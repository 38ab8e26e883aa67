package destination

import (
	"net/netip"
	"strconv"
	"strings"
)

// parseIP は host を IP リテラルとして解釈する。
// 標準表記に加え、inet_aton 互換の IPv4 表記（"2130706433", "127.1", "0x7f.0.0.1", "0177.0.0.1"）も受け付ける。
// これらは ping 等の CLI ツールがそのまま解釈するため、範囲チェックを回避させないためのもの。
func parseIP(host string) (netip.Addr, bool) {
	if addr, err := netip.ParseAddr(host); err == nil {
		return addr, true
	}
	return parseLegacyIPv4(host)
}

func parseLegacyIPv4(s string) (netip.Addr, bool) {
	parts := strings.Split(s, ".")
	if len(parts) == 0 || len(parts) > 4 {
		return netip.Addr{}, false
	}
	vals := make([]uint64, len(parts))
	for i, p := range parts {
		v, ok := parseLegacyPart(p)
		if !ok {
			return netip.Addr{}, false
		}
		vals[i] = v
	}

	// 最後の要素が残りのバイトをまとめて表す。
	last := len(vals) - 1
	for _, v := range vals[:last] {
		if v > 0xff {
			return netip.Addr{}, false
		}
	}
	if vals[last] > uint64(0xffffffff)>>(8*last) {
		return netip.Addr{}, false
	}

	var n uint32
	for i, v := range vals[:last] {
		n |= uint32(v) << (24 - 8*i)
	}
	n |= uint32(vals[last])
	return netip.AddrFrom4([4]byte{byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)}), true
}

func parseLegacyPart(p string) (uint64, bool) {
	if p == "" {
		return 0, false
	}
	base := 10
	digits := p
	switch {
	case strings.HasPrefix(p, "0x") || strings.HasPrefix(p, "0X"):
		base, digits = 16, p[2:]
	case len(p) > 1 && p[0] == '0':
		base, digits = 8, p[1:]
	}
	if digits == "" {
		return 0, false
	}
	v, err := strconv.ParseUint(digits, base, 32)
	if err != nil {
		return 0, false
	}
	return v, true
}
