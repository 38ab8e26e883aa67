package parser

import (
	"regexp"
	"strings"

	"github.com/0x6d61/connected/pkg/schema"
)

var (
	whoisLineSplitRe  = regexp.MustCompile(`\r?\n`)
	whoisDomainHdrRe  = regexp.MustCompile(`(?i)^Domain Name:`)
	whoisNoMatchRe    = regexp.MustCompile(`(?i)^No match for domain\s+"([^"]+)"`)
	whoisLastUpdateRe = regexp.MustCompile(`(?i)^>>> Last update of whois.*?:\s*([0-9T:\-+.Z]+)`)
	whoisReferRe      = regexp.MustCompile(`(?i)refer:`)
	whoisContactKeyRe = regexp.MustCompile(`^(registrant|admin|tech)\s+(.+)$`)
)

// tldFields はレジストリ部の一般キーの対応表。
var tldFields = map[string]func(t *schema.WhoisTLD, v string){
	"refer":        func(t *schema.WhoisTLD, v string) { t.Refer = v },
	"domain":       func(t *schema.WhoisTLD, v string) { t.TLD = v },
	"organisation": func(t *schema.WhoisTLD, v string) { t.RegistryOrganization = v },
	"organization": func(t *schema.WhoisTLD, v string) { t.RegistryOrganization = v },
	"address":      func(t *schema.WhoisTLD, v string) { t.RegistryAddresses = append(t.RegistryAddresses, v) },
	"nserver":      func(t *schema.WhoisTLD, v string) { t.NameServers = append(t.NameServers, parseNameServer(v)) },
	"ds-rdata":     func(t *schema.WhoisTLD, v string) { t.DsRdata = v },
	"whois":        func(t *schema.WhoisTLD, v string) { t.WhoisServer = v },
	"status":       func(t *schema.WhoisTLD, v string) { t.Status = v },
	"remarks":      func(t *schema.WhoisTLD, v string) { t.Remarks = v },
	"created":      func(t *schema.WhoisTLD, v string) { t.Created = v },
	"changed":      func(t *schema.WhoisTLD, v string) { t.Changed = v },
	"source":       func(t *schema.WhoisTLD, v string) { t.Source = v },
}

// tldContactFields は "contact:" 行の後に続く連絡先キーの対応表。
var tldContactFields = map[string]func(c *schema.WhoisContact, v string){
	"name":         func(c *schema.WhoisContact, v string) { c.Name = v },
	"organisation": func(c *schema.WhoisContact, v string) { c.Organization = v },
	"organization": func(c *schema.WhoisContact, v string) { c.Organization = v },
	"address":      func(c *schema.WhoisContact, v string) { c.Addresses = append(c.Addresses, v) },
	"phone":        func(c *schema.WhoisContact, v string) { c.Phone = v },
	"fax-no":       func(c *schema.WhoisContact, v string) { c.FaxNo = v },
	"e-mail":       func(c *schema.WhoisContact, v string) { c.Email = v },
	"email":        func(c *schema.WhoisContact, v string) { c.Email = v },
}

// domainFields はレジストラ部のキー（小文字）の対応表。
var domainFields = map[string]func(d *schema.WhoisDomain, v string){
	"domain name":                            func(d *schema.WhoisDomain, v string) { d.DomainName = v },
	"registry domain id":                     func(d *schema.WhoisDomain, v string) { d.RegistryDomainID = v },
	"registrar whois server":                 func(d *schema.WhoisDomain, v string) { d.RegistrarWhoisServer = v },
	"registrar url":                          func(d *schema.WhoisDomain, v string) { d.RegistrarURL = v },
	"updated date":                           func(d *schema.WhoisDomain, v string) { d.UpdatedDate = v },
	"creation date":                          func(d *schema.WhoisDomain, v string) { d.CreationDate = v },
	"registry expiry date":                   func(d *schema.WhoisDomain, v string) { d.RegistryExpiryDate = v },
	"registrar registration expiration date": func(d *schema.WhoisDomain, v string) { d.RegistryExpiryDate = v },
	"registrar":                              func(d *schema.WhoisDomain, v string) { d.Registrar = v },
	"registrar iana id":                      func(d *schema.WhoisDomain, v string) { d.RegistrarIanaID = v },
	"registrar abuse contact email":          func(d *schema.WhoisDomain, v string) { d.AbuseContactEmail = v },
	"registrar abuse contact phone":          func(d *schema.WhoisDomain, v string) { d.AbuseContactPhone = v },
	"domain status":                          func(d *schema.WhoisDomain, v string) { d.Statuses = append(d.Statuses, v) },
	"name server":                            func(d *schema.WhoisDomain, v string) { d.NameServers = append(d.NameServers, v) },
	"dnssec":                                 func(d *schema.WhoisDomain, v string) { d.Dnssec = v },

	"url of the icann whois data problem reporting system": func(d *schema.WhoisDomain, v string) { d.IcannComplaintURL = v },
	"url of the icann whois inaccuracy complaint form":     func(d *schema.WhoisDomain, v string) { d.IcannComplaintURL = v },
}

// ParseWhois converts a whois transcript into a WhoisResult. It returns nil when no stdout was captured.
//
// 2 回目の "Domain Name:" 行より前がレジストリ部、以降（その行を除く）がレジストラ部。
// "No match for domain" を含む場合は Matched=false とし、詳細は抽出しない。
func ParseWhois(raw *schema.RawOutput) *schema.WhoisResult {
	if raw == nil || !hasText(raw.Stdout) {
		return nil
	}

	result := &schema.WhoisResult{ToolType: schema.ToolWhois, Matched: true}
	lines := whoisLineSplitRe.Split(*raw.Stdout, -1)
	tldLines, domainLines, hasRegistrar := splitWhoisSections(lines)

	for _, l := range lines {
		if m := whoisNoMatchRe.FindStringSubmatch(strings.TrimSpace(l)); m != nil {
			result.Matched = false
			result.NoMatchDomain = m[1]
			break
		}
	}
	for _, l := range lines {
		if m := whoisLastUpdateRe.FindStringSubmatch(strings.TrimSpace(l)); m != nil {
			result.LastUpdate = m[1]
			break
		}
	}
	if !result.Matched {
		return result
	}

	if anyMatch(tldLines, whoisReferRe) {
		result.TLD = parseTLDSection(tldLines)
	}
	if hasRegistrar {
		result.Domain, result.Contacts = parseDomainSection(domainLines)
	}
	return result
}

// splitWhoisSections は 2 回目の "Domain Name:" 行で分割する。hasRegistrar はその行が見つかったかどうか。
func splitWhoisSections(lines []string) (tld, domain []string, hasRegistrar bool) {
	seen := 0
	for _, raw := range lines {
		if whoisDomainHdrRe.MatchString(strings.TrimSpace(raw)) {
			seen++
			if seen == 2 {
				continue
			}
		}
		if seen >= 2 {
			domain = append(domain, raw)
		} else {
			tld = append(tld, raw)
		}
	}
	return tld, domain, seen >= 2
}

// parseTLDSection は "contact:" 行以降の連絡先キーを連絡先として取り込む。
// 取り込みは次の "contact:" 行かセクション末尾まで続く。連絡先キー以外は常にレジストリ部の項目になる。
func parseTLDSection(lines []string) *schema.WhoisTLD {
	tld := &schema.WhoisTLD{
		RegistryAddresses: []string{},
		NameServers:       []schema.WhoisNameServer{},
	}
	contacts := map[string]*schema.WhoisContact{}
	capture := ""

	for _, raw := range lines {
		key, value, ok := whoisKeyValue(raw)
		if !ok {
			continue
		}
		if key == "contact" {
			capture = strings.ToLower(value)
			if capture != "" {
				contacts[capture] = &schema.WhoisContact{Addresses: []string{}}
			}
			continue
		}
		if capture != "" {
			if set, ok := tldContactFields[key]; ok {
				set(contacts[capture], value)
				continue
			}
		}
		if set, ok := tldFields[key]; ok {
			set(tld, value)
		}
	}

	tld.AdministrativeContact = contacts["administrative"]
	tld.TechnicalContact = contacts["technical"]
	return tld
}

func parseDomainSection(lines []string) (*schema.WhoisDomain, *schema.WhoisContacts) {
	dom := &schema.WhoisDomain{
		Statuses:    []string{},
		NameServers: []string{},
	}
	contacts := &schema.WhoisContacts{}

	for _, raw := range lines {
		key, value, ok := whoisKeyValue(raw)
		if !ok {
			continue
		}
		if m := whoisContactKeyRe.FindStringSubmatch(key); m != nil {
			c := registrarContact(contacts, m[1])
			switch m[2] {
			case "organization":
				c.Organization = value
			case "state/province":
				c.StateProvince = value
			case "country":
				c.Country = value
			case "email":
				c.Email = value
			}
			continue
		}
		if set, ok := domainFields[key]; ok {
			set(dom, value)
		}
	}
	return dom, contacts
}

// registrarContact は kind に対応する連絡先を返す。無ければ作る。
func registrarContact(c *schema.WhoisContacts, kind string) *schema.WhoisRegistrarContact {
	slot := &c.Technical
	switch kind {
	case "registrant":
		slot = &c.Registrant
	case "admin":
		slot = &c.Administrative
	}
	if *slot == nil {
		*slot = &schema.WhoisRegistrarContact{}
	}
	return *slot
}

// whoisKeyValue は "key: value" 行を小文字キーと値に分ける。
// 空行・コメント行（%, >, #）・コロンの無い行は ok=false。値の中のコロンは保持する。
func whoisKeyValue(raw string) (key, value string, ok bool) {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "%") || strings.HasPrefix(line, ">") || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	k, v, found := strings.Cut(line, ":")
	if !found {
		return "", "", false
	}
	return strings.ToLower(strings.TrimSpace(k)), strings.TrimSpace(v), true
}

func parseNameServer(value string) schema.WhoisNameServer {
	parts := strings.Fields(value)
	if len(parts) == 0 {
		return schema.WhoisNameServer{}
	}
	ns := schema.WhoisNameServer{Host: parts[0]}
	for _, p := range parts[1:] {
		if strings.Contains(p, ":") {
			ns.IPv6 = p
		} else {
			ns.IPv4 = p
		}
	}
	return ns
}

func anyMatch(lines []string, re *regexp.Regexp) bool {
	for _, l := range lines {
		if re.MatchString(l) {
			return true
		}
	}
	return false
}
