// Package schema defines the shared JSON types exchanged between the tool runners, the CLI and agent definitions.
package schema

import "time"

// ToolKind is the discriminator carried by every tool Input and Output.
type ToolKind string

const (
	// ToolDns はレコード種別ごとの DNS 問い合わせ。
	ToolDns ToolKind = "Dns"
	// ToolDnsTrace は dig +trace による委任経路の追跡。
	ToolDnsTrace ToolKind = "DnsTrace"
	// ToolFetch は HTTP リクエストを送りレスポンスを返す。
	ToolFetch ToolKind = "Fetch"
	// ToolHttpTrace は curl の -w タイミング出力を返す。
	ToolHttpTrace ToolKind = "HttpTrace"
	// ToolPing は ICMP echo。
	ToolPing ToolKind = "Ping"
	// ToolPortCheck は nmap による単一ポートの状態確認。
	ToolPortCheck ToolKind = "PortCheck"
	// ToolTraceroute は経路上のホップ一覧を返す。
	ToolTraceroute ToolKind = "Traceroute"
	// ToolTlsCertificate は TLS ハンドシェイクで得た証明書の要約を返す。
	ToolTlsCertificate ToolKind = "TlsCertificate"
	// ToolWhois はレジストリ・レジストラの WHOIS 情報。
	ToolWhois ToolKind = "Whois"
)

// AllKinds lists every ToolKind in declaration order.
var AllKinds = []ToolKind{
	ToolDns,
	ToolDnsTrace,
	ToolFetch,
	ToolHttpTrace,
	ToolPing,
	ToolPortCheck,
	ToolTraceroute,
	ToolTlsCertificate,
	ToolWhois,
}

// Valid は k が既知の ToolKind かどうかを返す。
func (k ToolKind) Valid() bool {
	for _, v := range AllKinds {
		if v == k {
			return true
		}
	}
	return false
}

// タイムアウトの既定値と許容範囲（ミリ秒）。
const (
	DefaultTimeoutMs = 30000
	MinTimeoutMs     = 1000
	MaxTimeoutMs     = 60000
)

// ClampTimeout は timeoutMs を [MinTimeoutMs, MaxTimeoutMs] に収めた Duration を返す。
// 0 以下は DefaultTimeoutMs として扱う。
func ClampTimeout(timeoutMs int) time.Duration {
	switch {
	case timeoutMs <= 0:
		timeoutMs = DefaultTimeoutMs
	case timeoutMs < MinTimeoutMs:
		timeoutMs = MinTimeoutMs
	case timeoutMs > MaxTimeoutMs:
		timeoutMs = MaxTimeoutMs
	}
	return time.Duration(timeoutMs) * time.Millisecond
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
