package schema

// Input is the closed set of tool inputs. Only the types in this package implement it.
type Input interface {
	Kind() ToolKind
	isInput()
}

// DnsInput queries the given record types for Domain.
type DnsInput struct {
	Domain string          `json:"domain" yaml:"domain"`
	Types  []DnsRecordType `json:"types,omitempty" yaml:"types,omitempty"`
}

// DnsTraceInput traces the delegation path of Domain.
type DnsTraceInput struct {
	Domain    string `json:"domain" yaml:"domain"`
	TimeoutMs int    `json:"timeoutMs,omitempty" yaml:"timeoutMs,omitempty"`
}

// FetchInput describes a single HTTP request.
type FetchInput struct {
	URL       string            `json:"url" yaml:"url"`
	Method    string            `json:"method,omitempty" yaml:"method,omitempty"`
	Headers   map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body      string            `json:"body,omitempty" yaml:"body,omitempty"`
	TimeoutMs int               `json:"timeoutMs,omitempty" yaml:"timeoutMs,omitempty"`
}

// HttpTraceInput は curl のタイミング計測対象 URL。
type HttpTraceInput struct {
	URL       string `json:"url" yaml:"url"`
	TimeoutMs int    `json:"timeoutMs,omitempty" yaml:"timeoutMs,omitempty"`
}

// PingInput: Count が 0 のときは既定の 4 回。
type PingInput struct {
	Host      string `json:"host" yaml:"host"`
	Count     int    `json:"count,omitempty" yaml:"count,omitempty"`
	TimeoutMs int    `json:"timeoutMs,omitempty" yaml:"timeoutMs,omitempty"`
}

// PortCheckInput checks the state of one TCP port.
type PortCheckInput struct {
	Host      string `json:"host" yaml:"host"`
	Port      int    `json:"port" yaml:"port"`
	TimeoutMs int    `json:"timeoutMs,omitempty" yaml:"timeoutMs,omitempty"`
}

type TracerouteInput struct {
	Host       string `json:"host" yaml:"host"`
	MaxHops    int    `json:"maxHops,omitempty" yaml:"maxHops,omitempty"`
	QueryCount int    `json:"queryCount,omitempty" yaml:"queryCount,omitempty"`
	WaitTime   int    `json:"waitTime,omitempty" yaml:"waitTime,omitempty"`
	TimeoutMs  int    `json:"timeoutMs,omitempty" yaml:"timeoutMs,omitempty"`
}

// TlsCertificateInput は証明書を取得する接続先。
type TlsCertificateInput struct {
	Host      string `json:"host" yaml:"host"`
	Port      int    `json:"port" yaml:"port"`
	TimeoutMs int    `json:"timeoutMs,omitempty" yaml:"timeoutMs,omitempty"`
}

type WhoisInput struct {
	Host      string `json:"host" yaml:"host"`
	TimeoutMs int    `json:"timeoutMs,omitempty" yaml:"timeoutMs,omitempty"`
}

func (*DnsInput) Kind() ToolKind            { return ToolDns }
func (*DnsTraceInput) Kind() ToolKind       { return ToolDnsTrace }
func (*FetchInput) Kind() ToolKind          { return ToolFetch }
func (*HttpTraceInput) Kind() ToolKind      { return ToolHttpTrace }
func (*PingInput) Kind() ToolKind           { return ToolPing }
func (*PortCheckInput) Kind() ToolKind      { return ToolPortCheck }
func (*TracerouteInput) Kind() ToolKind     { return ToolTraceroute }
func (*TlsCertificateInput) Kind() ToolKind { return ToolTlsCertificate }
func (*WhoisInput) Kind() ToolKind          { return ToolWhois }

func (*DnsInput) isInput()            {}
func (*DnsTraceInput) isInput()       {}
func (*FetchInput) isInput()          {}
func (*HttpTraceInput) isInput()      {}
func (*PingInput) isInput()           {}
func (*PortCheckInput) isInput()      {}
func (*TracerouteInput) isInput()     {}
func (*TlsCertificateInput) isInput() {}
func (*WhoisInput) isInput()          {}

// NewInput は kind に対応する空の Input を返す。未知の kind は nil。
func NewInput(kind ToolKind) Input {
	switch kind {
	case ToolDns:
		return &DnsInput{}
	case ToolDnsTrace:
		return &DnsTraceInput{}
	case ToolFetch:
		return &FetchInput{}
	case ToolHttpTrace:
		return &HttpTraceInput{}
	case ToolPing:
		return &PingInput{}
	case ToolPortCheck:
		return &PortCheckInput{}
	case ToolTraceroute:
		return &TracerouteInput{}
	case ToolTlsCertificate:
		return &TlsCertificateInput{}
	case ToolWhois:
		return &WhoisInput{}
	}
	return nil
}
