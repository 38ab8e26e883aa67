package parser_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0x6d61/connected/internal/parser"
	"github.com/0x6d61/connected/pkg/schema"
)

const whoisExample = `% IANA WHOIS server
% for more information on IANA, visit http://www.iana.org
% This query returned 1 object

refer:        whois.verisign-grs.com

domain:       COM

organisation: VeriSign Global Registry Services
address:      12061 Bluemont Way
address:      Reston VA 20190
address:      United States of America (the)

contact:      administrative
name:         Registry Customer Service
organisation: VeriSign Global Registry Services
address:      12061 Bluemont Way
address:      Reston VA 20190
phone:        +1 703 925-6999
fax-no:       +1 703 948 3978
e-mail:       info@verisign-grs.com

contact:      technical
name:         Registry Customer Service
organisation: VeriSign Global Registry Services
e-mail:       info@verisign-grs.com

nserver:      A.GTLD-SERVERS.NET 192.5.6.30 2001:503:a83e:0:0:0:2:30
whois:        whois.verisign-grs.com
status:       ACTIVE
created:      1985-01-01
changed:      2023-12-07
source:       IANA

# whois.verisign-grs.com

   Domain Name: EXAMPLE.COM
   Registry Domain ID: 2336799_DOMAIN_COM-VRSN
   Registrar WHOIS Server: whois.iana.org
>>> Last update of whois database: 2025-01-10T12:00:00Z <<<

# whois.iana.org

Domain Name: example.com
Registry Domain ID: 2336799_DOMAIN_COM-VRSN
Registrar WHOIS Server: whois.iana.org
Registrar URL: http://res-dom.iana.org
Updated Date: 2024-08-14T07:01:34Z
Creation Date: 1995-08-14T04:00:00Z
Registrar Registration Expiration Date: 2025-08-13T04:00:00Z
Registrar: RESERVED-Internet Assigned Numbers Authority
Registrar IANA ID: 376
Registrar Abuse Contact Email: abuse@iana.org
Registrar Abuse Contact Phone: +1.3103015800
Domain Status: clientDeleteProhibited https://icann.org/epp#clientDeleteProhibited
Domain Status: clientTransferProhibited https://icann.org/epp#clientTransferProhibited
Registrant Organization: Internet Assigned Numbers Authority
Registrant State/Province: CA
Registrant Country: US
Registrant Email: registrant@iana.org
Admin Name: Admin Contact
Tech Email: tech@iana.org
Name Server: A.IANA-SERVERS.NET
Name Server: B.IANA-SERVERS.NET
DNSSEC: signedDelegation
URL of the ICANN Whois Inaccuracy Complaint Form: https://www.icann.org/wicf/
NOTICE: The expiration date displayed in this record is the date the registrar's
sponsorship of the domain name registration in the registry is currently set to expire.
`

func TestParseWhois_Sections(t *testing.T) {
	got := parser.ParseWhois(rawOutput(0, whoisExample, ""))
	require.NotNil(t, got)

	assert.Equal(t, schema.ToolWhois, got.ToolType)
	assert.True(t, got.Matched)
	assert.Equal(t, "2025-01-10T12:00:00Z", got.LastUpdate)

	require.NotNil(t, got.TLD)
	tld := got.TLD
	assert.Equal(t, "whois.verisign-grs.com", tld.Refer)
	assert.Equal(t, "COM", tld.TLD)
	assert.Equal(t, "VeriSign Global Registry Services", tld.RegistryOrganization)
	assert.Equal(t, []string{"12061 Bluemont Way", "Reston VA 20190", "United States of America (the)"}, tld.RegistryAddresses)

	assert.Equal(t, &schema.WhoisContact{
		Name:         "Registry Customer Service",
		Organization: "VeriSign Global Registry Services",
		Addresses:    []string{"12061 Bluemont Way", "Reston VA 20190"},
		Phone:        "+1 703 925-6999",
		FaxNo:        "+1 703 948 3978",
		Email:        "info@verisign-grs.com",
	}, tld.AdministrativeContact)
	require.NotNil(t, tld.TechnicalContact)
	assert.Equal(t, "info@verisign-grs.com", tld.TechnicalContact.Email)
	assert.Empty(t, tld.TechnicalContact.Addresses)

	require.NotNil(t, got.Domain)
	dom := got.Domain
	assert.Equal(t, "2336799_DOMAIN_COM-VRSN", dom.RegistryDomainID)
	assert.Equal(t, "whois.iana.org", dom.RegistrarWhoisServer)
	assert.Equal(t, "http://res-dom.iana.org", dom.RegistrarURL)
	assert.Equal(t, "2024-08-14T07:01:34Z", dom.UpdatedDate)
	assert.Equal(t, "1995-08-14T04:00:00Z", dom.CreationDate)
	assert.Equal(t, "2025-08-13T04:00:00Z", dom.RegistryExpiryDate)
	assert.Equal(t, "RESERVED-Internet Assigned Numbers Authority", dom.Registrar)
	assert.Equal(t, "376", dom.RegistrarIanaID)
	assert.Equal(t, "abuse@iana.org", dom.AbuseContactEmail)
	assert.Equal(t, "+1.3103015800", dom.AbuseContactPhone)
	assert.Len(t, dom.Statuses, 2)
	assert.Equal(t, []string{"A.IANA-SERVERS.NET", "B.IANA-SERVERS.NET"}, dom.NameServers)
	assert.Equal(t, "signedDelegation", dom.Dnssec)
	assert.Equal(t, "https://www.icann.org/wicf/", dom.IcannComplaintURL)
	assert.Empty(t, dom.DomainName, "the second Domain Name header is not part of either section")

	require.NotNil(t, got.Contacts)
	assert.Equal(t, &schema.WhoisRegistrarContact{
		Organization:  "Internet Assigned Numbers Authority",
		StateProvince: "CA",
		Country:       "US",
		Email:         "registrant@iana.org",
	}, got.Contacts.Registrant)
	assert.Equal(t, &schema.WhoisRegistrarContact{}, got.Contacts.Administrative, "unknown sub-fields still create the contact")
	assert.Equal(t, &schema.WhoisRegistrarContact{Email: "tech@iana.org"}, got.Contacts.Technical)
}

// 連絡先の後に並ぶ nserver / whois / status などはレジストリ部の項目になる。
func TestParseWhois_RegistryFieldsAfterContacts(t *testing.T) {
	got := parser.ParseWhois(rawOutput(0, whoisExample, ""))
	require.NotNil(t, got.TLD)

	tld := got.TLD
	assert.Equal(t, []schema.WhoisNameServer{
		{Host: "A.GTLD-SERVERS.NET", IPv4: "192.5.6.30", IPv6: "2001:503:a83e:0:0:0:2:30"},
	}, tld.NameServers)
	assert.Equal(t, "whois.verisign-grs.com", tld.WhoisServer)
	assert.Equal(t, "ACTIVE", tld.Status)
	assert.Equal(t, "1985-01-01", tld.Created)
	assert.Equal(t, "2023-12-07", tld.Changed)
	assert.Equal(t, "IANA", tld.Source)
	assert.Equal(t, "VeriSign Global Registry Services", tld.RegistryOrganization)
}

// 連絡先キーは次の contact: 行かセクション末尾まで直前の連絡先に入り続ける。
func TestParseWhois_ContactCapturePersists(t *testing.T) {
	out := strings.Join([]string{
		"refer: whois.nic.example",
		"organisation: Example Registry",
		"contact: technical",
		"name: NOC",
		"status: ACTIVE",
		"organisation: Example Registry Ops",
		"address: 1 Example Street",
		"source: IANA",
	}, "\n")

	got := parser.ParseWhois(rawOutput(0, out, ""))
	require.NotNil(t, got.TLD)

	tld := got.TLD
	assert.Equal(t, "Example Registry", tld.RegistryOrganization)
	assert.Empty(t, tld.RegistryAddresses)
	assert.Equal(t, "ACTIVE", tld.Status)
	assert.Equal(t, "IANA", tld.Source)
	assert.Equal(t, &schema.WhoisContact{
		Name:         "NOC",
		Organization: "Example Registry Ops",
		Addresses:    []string{"1 Example Street"},
	}, tld.TechnicalContact)
	assert.Nil(t, tld.AdministrativeContact)
}

// 2 つ目の "Domain Name:" 行があれば、他に "domain name" を含む行が無くてもレジストラ部を読む。
func TestParseWhois_RegistrarSectionWithoutNotice(t *testing.T) {
	out := strings.Join([]string{
		"refer: whois.verisign-grs.com",
		"Domain Name: EXAMPLE.COM",
		"Registrar: A",
		"Domain Name: example.com",
		"Registrar: RESERVED-IANA",
		"Registrar URL: http://res-dom.iana.org",
		"Name Server: A.IANA-SERVERS.NET",
	}, "\n")

	got := parser.ParseWhois(rawOutput(0, out, ""))
	require.NotNil(t, got.Domain)
	assert.Equal(t, "RESERVED-IANA", got.Domain.Registrar)
	assert.Equal(t, "http://res-dom.iana.org", got.Domain.RegistrarURL)
	assert.Equal(t, []string{"A.IANA-SERVERS.NET"}, got.Domain.NameServers)
	assert.Empty(t, got.Domain.DomainName)
	assert.NotNil(t, got.Contacts)
}

func TestParseWhois_RegistryFieldsBeforeContacts(t *testing.T) {
	out := strings.Join([]string{
		"refer: whois.nic.example",
		"domain: EXAMPLE",
		"nserver: A.NIC.EXAMPLE 192.0.2.53 2001:db8::53",
		"nserver: B.NIC.EXAMPLE",
		"ds-rdata: 12345 8 2 ABCDEF",
		"whois: whois.nic.example",
		"status: ACTIVE",
		"remarks: Registration information: http://nic.example",
		"created: 2014-01-01",
		"changed: 2024-02-02",
		"source: IANA",
		"contact:",
		"organization: ignored because capture is off",
	}, "\r\n")

	got := parser.ParseWhois(rawOutput(0, out, ""))
	require.NotNil(t, got.TLD)

	tld := got.TLD
	assert.Equal(t, []schema.WhoisNameServer{
		{Host: "A.NIC.EXAMPLE", IPv4: "192.0.2.53", IPv6: "2001:db8::53"},
		{Host: "B.NIC.EXAMPLE"},
	}, tld.NameServers)
	assert.Equal(t, "12345 8 2 ABCDEF", tld.DsRdata)
	assert.Equal(t, "whois.nic.example", tld.WhoisServer)
	assert.Equal(t, "ACTIVE", tld.Status)
	assert.Equal(t, "Registration information: http://nic.example", tld.Remarks)
	assert.Equal(t, "2014-01-01", tld.Created)
	assert.Equal(t, "2024-02-02", tld.Changed)
	assert.Equal(t, "IANA", tld.Source)
	assert.Equal(t, "ignored because capture is off", tld.RegistryOrganization, "an empty contact value switches capture off")
	assert.Nil(t, tld.AdministrativeContact)

	assert.Nil(t, got.Domain, "a single section has no registrar block")
	assert.Nil(t, got.Contacts)
}

func TestParseWhois_NoMatch(t *testing.T) {
	out := `No match for domain "EXAMPLE.COM".
>>> Last update of whois database: 2025-01-10T12:00:00Z <<<

refer: whois.verisign-grs.com
`
	got := parser.ParseWhois(rawOutput(1, out, ""))
	require.NotNil(t, got)

	assert.False(t, got.Matched)
	assert.Equal(t, "EXAMPLE.COM", got.NoMatchDomain)
	assert.Equal(t, "2025-01-10T12:00:00Z", got.LastUpdate)
	assert.Nil(t, got.TLD)
	assert.Nil(t, got.Domain)
}

func TestParseWhois_NoMatchLowercase(t *testing.T) {
	got := parser.ParseWhois(rawOutput(0, `  no match for domain "example.com"`, ""))
	require.NotNil(t, got)
	assert.False(t, got.Matched)
	assert.Equal(t, "example.com", got.NoMatchDomain)
}

func TestParseWhois_NoRefer(t *testing.T) {
	got := parser.ParseWhois(rawOutput(0, "% nothing useful here\n", ""))
	require.NotNil(t, got)
	assert.True(t, got.Matched)
	assert.Nil(t, got.TLD)
	assert.Nil(t, got.Domain)
}

func TestParseWhois_NoStdout(t *testing.T) {
	assert.Nil(t, parser.ParseWhois(&schema.RawOutput{ExitCode: schema.Ptr(0)}))
}

func TestParseWhois_Deterministic(t *testing.T) {
	raw := rawOutput(0, whoisExample, "")
	assert.Equal(t, parser.ParseWhois(raw), parser.ParseWhois(raw))
}
