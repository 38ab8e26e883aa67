package schema

// Output is the closed set of tool outputs. An Output's Kind always equals the Kind of the Input that produced it.
type Output interface {
	Kind() ToolKind
	isOutput()
}

// DnsRecordType は問い合わせ可能なレコード種別。
// SPF は TXT に含まれ、ANY は信頼できないため扱わない。
type DnsRecordType string

const (
	DnsA     DnsRecordType = "A"
	DnsAAAA  DnsRecordType = "AAAA"
	DnsCNAME DnsRecordType = "CNAME"
	DnsMX    DnsRecordType = "MX"
	DnsTXT   DnsRecordType = "TXT"
	DnsNS    DnsRecordType = "NS"
	DnsPTR   DnsRecordType = "PTR"
	DnsSRV   DnsRecordType = "SRV"
	DnsSOA   DnsRecordType = "SOA"
)

// DefaultDnsTypes は Types 未指定時に問い合わせる種別。
var DefaultDnsTypes = []DnsRecordType{DnsA, DnsAAAA, DnsCNAME, DnsMX, DnsTXT, DnsNS, DnsSOA}

// Valid reports whether t is a supported record type.
func (t DnsRecordType) Valid() bool {
	switch t {
	case DnsA, DnsAAAA, DnsCNAME, DnsMX, DnsTXT, DnsNS, DnsPTR, DnsSRV, DnsSOA:
		return true
	}
	return false
}

// DnsOutput holds the answers per record type. Errors is keyed by the record type that failed.
type DnsOutput struct {
	A     []string                 `json:"A,omitempty"`
	AAAA  []string                 `json:"AAAA,omitempty"`
	CNAME []string                 `json:"CNAME,omitempty"`
	MX    []DnsMXRecord            `json:"MX,omitempty"`
	TXT   [][]string               `json:"TXT,omitempty"`
	NS    []string                 `json:"NS,omitempty"`
	PTR   []string                 `json:"PTR,omitempty"`
	SRV   []DnsSRVRecord           `json:"SRV,omitempty"`
	SOA   *DnsSOARecord            `json:"SOA,omitempty"`
	Errs  map[DnsRecordType]string `json:"errors,omitempty"`
}

type DnsMXRecord struct {
	Exchange string `json:"exchange"`
	Priority int    `json:"priority"`
}

type DnsSRVRecord struct {
	Priority int    `json:"priority"`
	Weight   int    `json:"weight"`
	Port     int    `json:"port"`
	Name     string `json:"name"`
}

type DnsSOARecord struct {
	NSName     string `json:"nsname"`
	Hostmaster string `json:"hostmaster"`
	Serial     uint32 `json:"serial"`
	Refresh    uint32 `json:"refresh"`
	Retry      uint32 `json:"retry"`
	Expire     uint32 `json:"expire"`
	MinTTL     uint32 `json:"minttl"`
}

// DnsTraceOutput は dig +trace の生出力。
type DnsTraceOutput struct {
	RawOutput
}

// FetchOutput is the response of a FetchInput request.
type FetchOutput struct {
	Status     int               `json:"status"`
	StatusText string            `json:"statusText,omitempty"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body,omitempty"`
	Redirects  []FetchRedirect   `json:"redirects,omitempty"`
	DurationMs int64             `json:"durationMs"`
	Error      string            `json:"error,omitempty"`
}

// FetchRedirect は追跡したリダイレクト 1 件（遷移元 URL とそのステータス）。
type FetchRedirect struct {
	URL    string `json:"url"`
	Status int    `json:"status"`
}

// HttpTraceOutput は curl -w の生出力。
type HttpTraceOutput struct {
	RawOutput
}

// PingOutput carries the captured transcript and its parsed form. Parsed is nil when nothing was captured.
type PingOutput struct {
	Raw    RawOutput   `json:"raw"`
	Parsed *PingResult `json:"parsed,omitempty"`
}

type PortCheckOutput struct {
	Raw    RawOutput       `json:"raw"`
	Parsed *PortScanResult `json:"parsed,omitempty"`
}

type TracerouteOutput struct {
	Raw    RawOutput         `json:"raw"`
	Parsed *TracerouteResult `json:"parsed"`
}

// TlsCertificateOutput summarises the peer leaf certificate.
type TlsCertificateOutput struct {
	ValidFrom       string   `json:"validFrom,omitempty"`
	ValidTo         string   `json:"validTo,omitempty"`
	Subject         string   `json:"subject,omitempty"`
	Issuer          string   `json:"issuer,omitempty"`
	SubjectAltNames []string `json:"subjectAltNames,omitempty"`
	IsValidHostname *bool    `json:"isValidHostname,omitempty"`
	Error           string   `json:"error,omitempty"`
}

type WhoisOutput struct {
	Raw    RawOutput    `json:"raw"`
	Parsed *WhoisResult `json:"parsed,omitempty"`
}

func (*DnsOutput) Kind() ToolKind            { return ToolDns }
func (*DnsTraceOutput) Kind() ToolKind       { return ToolDnsTrace }
func (*FetchOutput) Kind() ToolKind          { return ToolFetch }
func (*HttpTraceOutput) Kind() ToolKind      { return ToolHttpTrace }
func (*PingOutput) Kind() ToolKind           { return ToolPing }
func (*PortCheckOutput) Kind() ToolKind      { return ToolPortCheck }
func (*TracerouteOutput) Kind() ToolKind     { return ToolTraceroute }
func (*TlsCertificateOutput) Kind() ToolKind { return ToolTlsCertificate }
func (*WhoisOutput) Kind() ToolKind          { return ToolWhois }

func (*DnsOutput) isOutput()            {}
func (*DnsTraceOutput) isOutput()       {}
func (*FetchOutput) isOutput()          {}
func (*HttpTraceOutput) isOutput()      {}
func (*PingOutput) isOutput()           {}
func (*PortCheckOutput) isOutput()      {}
func (*TracerouteOutput) isOutput()     {}
func (*TlsCertificateOutput) isOutput() {}
func (*WhoisOutput) isOutput()          {}

// NewOutput は kind に対応する空の Output を返す。未知の kind は nil。
func NewOutput(kind ToolKind) Output {
	switch kind {
	case ToolDns:
		return &DnsOutput{}
	case ToolDnsTrace:
		return &DnsTraceOutput{}
	case ToolFetch:
		return &FetchOutput{}
	case ToolHttpTrace:
		return &HttpTraceOutput{}
	case ToolPing:
		return &PingOutput{}
	case ToolPortCheck:
		return &PortCheckOutput{}
	case ToolTraceroute:
		return &TracerouteOutput{}
	case ToolTlsCertificate:
		return &TlsCertificateOutput{}
	case ToolWhois:
		return &WhoisOutput{}
	}
	return nil
}
