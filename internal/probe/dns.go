package probe

import (
	"context"
	"fmt"
	"log/slog"
	"net/netip"
	"strings"

	"github.com/miekg/dns"

	"github.com/0x6d61/connected/pkg/schema"
)

// dnsQueryTypes は DnsRecordType と問い合わせ型の対応。
var dnsQueryTypes = map[schema.DnsRecordType]uint16{
	schema.DnsA:     dns.TypeA,
	schema.DnsAAAA:  dns.TypeAAAA,
	schema.DnsCNAME: dns.TypeCNAME,
	schema.DnsMX:    dns.TypeMX,
	schema.DnsTXT:   dns.TypeTXT,
	schema.DnsNS:    dns.TypeNS,
	schema.DnsPTR:   dns.TypePTR,
	schema.DnsSRV:   dns.TypeSRV,
	schema.DnsSOA:   dns.TypeSOA,
}

// lookupDNS queries each requested record type against p.Resolver. A failure for
// one type is recorded in Errs and does not stop the others.
func (p *Prober) lookupDNS(ctx context.Context, in *schema.DnsInput, domain string) (*schema.DnsOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout(0))
	defer cancel()

	types := in.Types
	if len(types) == 0 {
		types = schema.DefaultDnsTypes
	}

	out := &schema.DnsOutput{}
	client := &dns.Client{Net: "udp"}
	seen := make(map[schema.DnsRecordType]bool, len(types))
	for _, t := range types {
		if seen[t] {
			continue
		}
		seen[t] = true

		answers, err := p.dnsExchange(ctx, client, queryName(domain, t), dnsQueryTypes[t])
		if err != nil {
			if out.Errs == nil {
				out.Errs = make(map[schema.DnsRecordType]string)
			}
			out.Errs[t] = err.Error()
			continue
		}
		collectAnswers(out, answers)
	}
	return out, nil
}

// queryName は PTR 問い合わせのときだけ IP を逆引き名に変える。
func queryName(domain string, t schema.DnsRecordType) string {
	if t == schema.DnsPTR {
		if _, err := netip.ParseAddr(domain); err == nil {
			if rev, err := dns.ReverseAddr(domain); err == nil {
				return rev
			}
		}
	}
	return dns.Fqdn(domain)
}

func (p *Prober) dnsExchange(ctx context.Context, client *dns.Client, name string, qtype uint16) ([]dns.RR, error) {
	query := new(dns.Msg)
	query.SetQuestion(name, qtype)
	query.RecursionDesired = true

	p.Logger.Debug(
		"dnsQuery",
		slog.String("name", name),
		slog.String("type", dns.TypeToString[qtype]),
		slog.String("resolver", p.Resolver),
	)
	resp, _, err := client.ExchangeContext(ctx, query, p.Resolver)
	if err != nil {
		return nil, err
	}
	if resp.Truncated {
		tcp := &dns.Client{Net: "tcp"}
		if resp, _, err = tcp.ExchangeContext(ctx, query, p.Resolver); err != nil {
			return nil, err
		}
	}
	if resp.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("%s", dns.RcodeToString[resp.Rcode])
	}

	var answers []dns.RR
	for _, rr := range resp.Answer {
		if rr.Header().Rrtype == qtype {
			answers = append(answers, rr)
		}
	}
	if len(answers) == 0 {
		return nil, fmt.Errorf("no %s records", dns.TypeToString[qtype])
	}
	return answers, nil
}

func collectAnswers(out *schema.DnsOutput, answers []dns.RR) {
	for _, rr := range answers {
		switch r := rr.(type) {
		case *dns.A:
			out.A = append(out.A, r.A.String())
		case *dns.AAAA:
			out.AAAA = append(out.AAAA, r.AAAA.String())
		case *dns.CNAME:
			out.CNAME = append(out.CNAME, trimDot(r.Target))
		case *dns.MX:
			out.MX = append(out.MX, schema.DnsMXRecord{Exchange: trimDot(r.Mx), Priority: int(r.Preference)})
		case *dns.TXT:
			out.TXT = append(out.TXT, append([]string(nil), r.Txt...))
		case *dns.NS:
			out.NS = append(out.NS, trimDot(r.Ns))
		case *dns.PTR:
			out.PTR = append(out.PTR, trimDot(r.Ptr))
		case *dns.SRV:
			out.SRV = append(out.SRV, schema.DnsSRVRecord{
				Priority: int(r.Priority),
				Weight:   int(r.Weight),
				Port:     int(r.Port),
				Name:     trimDot(r.Target),
			})
		case *dns.SOA:
			if out.SOA == nil {
				out.SOA = &schema.DnsSOARecord{
					NSName:     trimDot(r.Ns),
					Hostmaster: trimDot(r.Mbox),
					Serial:     r.Serial,
					Refresh:    r.Refresh,
					Retry:      r.Retry,
					Expire:     r.Expire,
					MinTTL:     r.Minttl,
				}
			}
		}
	}
}

func trimDot(name string) string {
	return strings.TrimSuffix(name, ".")
}
