package destination

import (
	"net/netip"
	"regexp"
	"strings"
)

// Family is the address family of an authorized host.
type Family string

const (
	FamilyIPv4   Family = "ipv4"
	FamilyIPv6   Family = "ipv6"
	FamilyDomain Family = "domain"
)

// Host is a destination that passed every check. It is never returned together with an error.
type Host struct {
	Host   string `json:"host"`
	Family Family `json:"type"`
}

const (
	maxDomainLength = 253
	maxLabelLength  = 63
)

var domainPattern = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9-]{0,61}[A-Za-z0-9])?(?:\.[A-Za-z0-9](?:[A-Za-z0-9-]{0,61}[A-Za-z0-9])?)*$`)

// Validator classifies host strings against a Policy.
// 生成後は読み取り専用なので複数 goroutine から共有してよい。
type Validator struct {
	names    map[string]struct{}
	tlds     map[string]struct{}
	prefixes []netip.Prefix
	deny     *DenyList
}

// NewValidator は policy のテーブルを取り込んだ Validator を返す。
func NewValidator(policy Policy) *Validator {
	v := &Validator{
		names:    make(map[string]struct{}, len(policy.BlockedNames)),
		tlds:     make(map[string]struct{}, len(policy.BlockedTLDs)),
		prefixes: append([]netip.Prefix(nil), policy.BlockedPrefixes...),
		deny:     NewDenyList(policy.DenyPatterns),
	}
	for _, n := range policy.BlockedNames {
		v.names[strings.ToLower(n)] = struct{}{}
	}
	for _, t := range policy.BlockedTLDs {
		v.tlds[strings.ToLower(t)] = struct{}{}
	}
	return v
}

// Resolve strips brackets and any port from hostSpec and authorizes the remaining host.
//
// 判定順: ブロック名 → ブロック TLD → IP リテラル（範囲チェック）→ ドメイン構文 → 拒否パターン。
func (v *Validator) Resolve(hostSpec string) (Host, error) {
	host := stripPort(hostSpec)

	if _, ok := v.names[strings.ToLower(host)]; ok {
		return Host{}, reject(ErrBlockedName, hostSpec)
	}

	labels := strings.Split(host, ".")
	if len(labels) > 1 {
		if _, ok := v.tlds[strings.ToLower(labels[len(labels)-1])]; ok {
			return Host{}, reject(ErrBlockedTLD, hostSpec)
		}
	}

	if addr, ok := parseIP(host); ok {
		if !v.AllowAddr(addr) {
			return Host{}, reject(ErrPrivateAddress, host)
		}
		family := FamilyIPv6
		if addr.Is4() {
			family = FamilyIPv4
			host = addr.String() // "127.1" などの省略表記を正規化
		}
		if err := v.checkDeny(host); err != nil {
			return Host{}, err
		}
		return Host{Host: host, Family: family}, nil
	}

	if len(host) > maxDomainLength {
		return Host{}, reject(ErrDomainTooLong, host)
	}
	for _, l := range labels {
		if len(l) > maxLabelLength {
			return Host{}, reject(ErrLabelTooLong, host)
		}
	}
	if !domainPattern.MatchString(host) {
		return Host{}, reject(ErrInvalidDomain, host)
	}
	if err := v.checkDeny(host); err != nil {
		return Host{}, err
	}
	return Host{Host: host, Family: FamilyDomain}, nil
}

// AllowAddr reports whether addr lies outside every blocked prefix.
// IPv4-mapped IPv6 addresses are checked as IPv4.
func (v *Validator) AllowAddr(addr netip.Addr) bool {
	addr = addr.WithZone("").Unmap()
	for _, p := range v.prefixes {
		if p.Contains(addr) {
			return false
		}
	}
	return true
}

func (v *Validator) checkDeny(host string) error {
	if v.deny.Match(strings.ToLower(host)) {
		return reject(ErrBlockedPattern, host)
	}
	return nil
}

// stripPort は "[v6]:port" / "host:port" からホスト部分だけを取り出す。
// コロンが 2 つ以上あり "::" を含む場合は括弧なし IPv6 とみなしてそのまま返す。
func stripPort(hostSpec string) string {
	if strings.HasPrefix(hostSpec, "[") {
		if end := strings.Index(hostSpec, "]"); end != -1 {
			return hostSpec[1:end]
		}
		return hostSpec
	}
	parts := strings.Split(hostSpec, ":")
	if len(parts) == 1 {
		return hostSpec
	}
	if len(parts) > 2 && strings.Contains(hostSpec, "::") {
		return hostSpec
	}
	return parts[0]
}
