package schema

// PingResult is the structured form of a ping transcript.
type PingResult struct {
	ToolType    ToolKind       `json:"toolType"`
	Target      string         `json:"target"`
	ResolvedIP  string         `json:"resolvedIp,omitempty"`
	Success     bool           `json:"success"`
	Error       string         `json:"error,omitempty"`
	Responses   []PingResponse `json:"responses"`
	Timeouts    []int          `json:"timeouts"`
	Transmitted *int           `json:"transmitted,omitempty"`
	Received    *int           `json:"received,omitempty"`
	LossPercent *float64       `json:"lossPercent,omitempty"`
	RTT         *PingRTT       `json:"rtt,omitempty"`
}

// PingResponse は 1 つの echo reply。Seq / TTL が不明な場合は -1。
type PingResponse struct {
	Seq    int     `json:"seq"`
	TTL    int     `json:"ttl"`
	TimeMs float64 `json:"timeMs"`
}

type PingRTT struct {
	Min    float64 `json:"min"`
	Avg    float64 `json:"avg"`
	Max    float64 `json:"max"`
	Stddev float64 `json:"stddev"`
}

// TracerouteResult is the ordered hop list of a traceroute transcript.
type TracerouteResult struct {
	ToolType    ToolKind              `json:"toolType"`
	Success     bool                  `json:"success"`
	Destination TracerouteDestination `json:"destination"`
	Hops        []TracerouteHop       `json:"hops"`
	RawOutput   *TracerouteRaw        `json:"rawOutput,omitempty"`
}

// TracerouteDestination は stderr のヘッダ行から得る宛先情報。
type TracerouteDestination struct {
	Domain     string `json:"domain"`
	IP         string `json:"ip"`
	MaxHops    int    `json:"maxHops"`
	PacketSize int    `json:"packetSize"`
}

// TracerouteHop is one probe response. Times are kept as the transcript's text tokens ("*" for a lost probe).
type TracerouteHop struct {
	Number         int      `json:"number"`
	IP             string   `json:"ip,omitempty"`
	Times          []string `json:"times"`
	Hostname       string   `json:"hostname,omitempty"`
	IsContinuation bool     `json:"isContinuation,omitempty"`
	IsTimeout      bool     `json:"isTimeout,omitempty"`
}

type TracerouteRaw struct {
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
}

// PortState is the state column of an nmap port line.
type PortState string

const (
	PortOpen           PortState = "open"
	PortClosed         PortState = "closed"
	PortFiltered       PortState = "filtered"
	PortUnfiltered     PortState = "unfiltered"
	PortOpenFiltered   PortState = "open|filtered"
	PortClosedFiltered PortState = "closed|filtered"
)

// PortScanResult is the structured form of a single-port nmap transcript.
type PortScanResult struct {
	ToolType         ToolKind       `json:"toolType"`
	NmapVersion      string         `json:"nmapVersion"`
	Port             *ScannedPort   `json:"port,omitempty"`
	Error            *PortScanError `json:"error,omitempty"`
	HostName         string         `json:"hostName,omitempty"`
	HostIPAddress    string         `json:"hostIpAddress,omitempty"`
	AdditionalIPs    []string       `json:"additionalIps,omitempty"`
	Latency          string         `json:"latency,omitempty"`
	AddressesScanned int            `json:"addressesScanned"`
	HostsUp          int            `json:"hostsUp"`
	ScanTime         string         `json:"scanTime"`
}

type ScannedPort struct {
	Number   int       `json:"number"`
	State    PortState `json:"state"`
	Protocol string    `json:"protocol"`
	Service  string    `json:"service,omitempty"`
}

type PortScanError struct {
	Message string `json:"message,omitempty"`
	Port    string `json:"port,omitempty"`
	Host    string `json:"host,omitempty"`
}

// WhoisResult splits a WHOIS transcript into the registry (TLD) block and the registrar (domain) block.
type WhoisResult struct {
	ToolType      ToolKind       `json:"toolType"`
	Matched       bool           `json:"matched"`
	NoMatchDomain string         `json:"noMatchDomain,omitempty"`
	LastUpdate    string         `json:"lastUpdate,omitempty"`
	Error         string         `json:"error,omitempty"`
	TLD           *WhoisTLD      `json:"tld,omitempty"`
	Domain        *WhoisDomain   `json:"domain,omitempty"`
	Contacts      *WhoisContacts `json:"contacts,omitempty"`
}

// WhoisTLD はレジストリ（IANA 等）側のブロック。
type WhoisTLD struct {
	Refer                 string            `json:"refer"`
	TLD                   string            `json:"tld"`
	RegistryOrganization  string            `json:"registryOrganization"`
	RegistryAddresses     []string          `json:"registryAddresses"`
	AdministrativeContact *WhoisContact     `json:"administrativeContact,omitempty"`
	TechnicalContact      *WhoisContact     `json:"technicalContact,omitempty"`
	NameServers           []WhoisNameServer `json:"nameServers"`
	DsRdata               string            `json:"dsRdata"`
	WhoisServer           string            `json:"whoisServer"`
	Status                string            `json:"status"`
	Remarks               string            `json:"remarks,omitempty"`
	Created               string            `json:"created"`
	Changed               string            `json:"changed"`
	Source                string            `json:"source"`
}

// WhoisDomain はレジストラ側のブロック。
type WhoisDomain struct {
	DomainName           string   `json:"domainName"`
	RegistryDomainID     string   `json:"registryDomainId,omitempty"`
	RegistrarWhoisServer string   `json:"registrarWhoisServer,omitempty"`
	RegistrarURL         string   `json:"registrarUrl,omitempty"`
	UpdatedDate          string   `json:"updatedDate,omitempty"`
	CreationDate         string   `json:"creationDate,omitempty"`
	RegistryExpiryDate   string   `json:"registryExpiryDate,omitempty"`
	Registrar            string   `json:"registrar"`
	RegistrarIanaID      string   `json:"registrarIanaId,omitempty"`
	AbuseContactEmail    string   `json:"abuseContactEmail,omitempty"`
	AbuseContactPhone    string   `json:"abuseContactPhone,omitempty"`
	Statuses             []string `json:"statuses"`
	NameServers          []string `json:"nameServers"`
	Dnssec               string   `json:"dnssec,omitempty"`
	IcannComplaintURL    string   `json:"icannComplaintUrl,omitempty"`
}

// WhoisContact is a contact block of the registry section.
type WhoisContact struct {
	Name         string   `json:"name"`
	Organization string   `json:"organization"`
	Addresses    []string `json:"addresses"`
	Phone        string   `json:"phone,omitempty"`
	FaxNo        string   `json:"faxNo,omitempty"`
	Email        string   `json:"email,omitempty"`
}

type WhoisNameServer struct {
	Host string `json:"host"`
	IPv4 string `json:"ipv4,omitempty"`
	IPv6 string `json:"ipv6,omitempty"`
}

type WhoisContacts struct {
	Registrant     *WhoisRegistrarContact `json:"registrant,omitempty"`
	Administrative *WhoisRegistrarContact `json:"administrative,omitempty"`
	Technical      *WhoisRegistrarContact `json:"technical,omitempty"`
}

// WhoisRegistrarContact is a registrant/admin/tech contact of the registrar section.
type WhoisRegistrarContact struct {
	Organization  string `json:"organization,omitempty"`
	StateProvince string `json:"stateProvince,omitempty"`
	Country       string `json:"country,omitempty"`
	Email         string `json:"email,omitempty"`
}
