package tui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/0x6d61/connected/internal/tools"
	"github.com/0x6d61/connected/pkg/schema"
)

// ReportOptions はレポート生成の設定。
type ReportOptions struct {
	// Title は見出しに使う文字列（例: "ping example.com"）。空なら種別名。
	Title string
	// Truncate は生出力を埋め込む際の切り詰め設定。ゼロ値なら tools.DefaultTruncateConfig。
	Truncate tools.TruncateConfig
}

// Report は Output を Markdown に変換する。
// 構造化結果があればそれを表で示し、生出力は末尾に切り詰めて添える。
func Report(out schema.Output, opts ReportOptions) string {
	if out == nil {
		return ""
	}
	if opts.Truncate.HeadLines == 0 && opts.Truncate.TailLines == 0 {
		opts.Truncate = tools.DefaultTruncateConfig
	}
	title := opts.Title
	if title == "" {
		title = string(out.Kind())
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)

	switch o := out.(type) {
	case *schema.DnsOutput:
		writeDns(&sb, o)
	case *schema.DnsTraceOutput:
		writeRaw(&sb, &o.RawOutput, opts.Truncate)
	case *schema.FetchOutput:
		writeFetch(&sb, o, opts.Truncate)
	case *schema.HttpTraceOutput:
		writeRaw(&sb, &o.RawOutput, opts.Truncate)
	case *schema.PingOutput:
		writePing(&sb, o.Parsed)
		writeRaw(&sb, &o.Raw, opts.Truncate)
	case *schema.PortCheckOutput:
		writePortScan(&sb, o.Parsed)
		writeRaw(&sb, &o.Raw, opts.Truncate)
	case *schema.TracerouteOutput:
		writeTraceroute(&sb, o.Parsed)
		writeRaw(&sb, &o.Raw, opts.Truncate)
	case *schema.TlsCertificateOutput:
		writeTLS(&sb, o)
	case *schema.WhoisOutput:
		writeWhois(&sb, o.Parsed)
		writeRaw(&sb, &o.Raw, opts.Truncate)
	}
	return sb.String()
}

// cell は Markdown テーブルのセル用にパイプと改行をエスケープする。
func cell(s string) string {
	if s == "" {
		return "-"
	}
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

func writeTable(sb *strings.Builder, header []string, rows [][]string) {
	sb.WriteString("| " + strings.Join(header, " | ") + " |\n")
	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}
	sb.WriteString("| " + strings.Join(sep, " | ") + " |\n")
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = cell(c)
		}
		sb.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	sb.WriteString("\n")
}

func writeField(sb *strings.Builder, key, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(sb, "- **%s**: %s\n", key, value)
}

func writeRaw(sb *strings.Builder, raw *schema.RawOutput, cfg tools.TruncateConfig) {
	sb.WriteString("## Raw output\n\n")
	switch {
	case raw.Signal != nil:
		fmt.Fprintf(sb, "- **Signal**: %s\n\n", *raw.Signal)
	case raw.ExitCode != nil:
		fmt.Fprintf(sb, "- **Exit code**: %d\n\n", *raw.ExitCode)
	}
	if raw.Stdout != nil {
		if text := tools.TruncateText(*raw.Stdout, cfg); text != "" {
			fmt.Fprintf(sb, "```\n%s\n```\n\n", text)
		}
	}
	if raw.Stderr != nil {
		if text := tools.TruncateText(*raw.Stderr, cfg); text != "" {
			fmt.Fprintf(sb, "### stderr\n\n```\n%s\n```\n\n", text)
		}
	}
}

func writeDns(sb *strings.Builder, o *schema.DnsOutput) {
	var rows [][]string
	for _, v := range o.A {
		rows = append(rows, []string{"A", v})
	}
	for _, v := range o.AAAA {
		rows = append(rows, []string{"AAAA", v})
	}
	for _, v := range o.CNAME {
		rows = append(rows, []string{"CNAME", v})
	}
	for _, mx := range o.MX {
		rows = append(rows, []string{"MX", fmt.Sprintf("%d %s", mx.Priority, mx.Exchange)})
	}
	for _, txt := range o.TXT {
		rows = append(rows, []string{"TXT", strings.Join(txt, "")})
	}
	for _, v := range o.NS {
		rows = append(rows, []string{"NS", v})
	}
	for _, v := range o.PTR {
		rows = append(rows, []string{"PTR", v})
	}
	for _, srv := range o.SRV {
		rows = append(rows, []string{"SRV", fmt.Sprintf("%d %d %d %s", srv.Priority, srv.Weight, srv.Port, srv.Name)})
	}
	if soa := o.SOA; soa != nil {
		rows = append(rows, []string{"SOA", fmt.Sprintf("%s %s %d %d %d %d %d",
			soa.NSName, soa.Hostmaster, soa.Serial, soa.Refresh, soa.Retry, soa.Expire, soa.MinTTL)})
	}
	if len(rows) > 0 {
		writeTable(sb, []string{"Type", "Value"}, rows)
	}

	if len(o.Errs) > 0 {
		types := make([]string, 0, len(o.Errs))
		for t := range o.Errs {
			types = append(types, string(t))
		}
		sort.Strings(types)
		sb.WriteString("## Errors\n\n")
		for _, t := range types {
			fmt.Fprintf(sb, "- **%s**: %s\n", t, o.Errs[schema.DnsRecordType(t)])
		}
		sb.WriteString("\n")
	}
	if len(rows) == 0 && len(o.Errs) == 0 {
		sb.WriteString("No records.\n")
	}
}

func writeFetch(sb *strings.Builder, o *schema.FetchOutput, cfg tools.TruncateConfig) {
	if o.Error != "" {
		fmt.Fprintf(sb, "**Error**: %s\n\n", o.Error)
	}
	if o.Status != 0 {
		writeField(sb, "Status", strings.TrimSpace(strconv.Itoa(o.Status)+" "+o.StatusText))
	}
	writeField(sb, "Duration", fmt.Sprintf("%dms", o.DurationMs))
	sb.WriteString("\n")

	if len(o.Redirects) > 0 {
		sb.WriteString("## Redirects\n\n")
		rows := make([][]string, len(o.Redirects))
		for i, r := range o.Redirects {
			rows[i] = []string{strconv.Itoa(r.Status), r.URL}
		}
		writeTable(sb, []string{"Status", "URL"}, rows)
	}

	if len(o.Headers) > 0 {
		keys := make([]string, 0, len(o.Headers))
		for k := range o.Headers {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		rows := make([][]string, len(keys))
		for i, k := range keys {
			rows[i] = []string{k, o.Headers[k]}
		}
		sb.WriteString("## Headers\n\n")
		writeTable(sb, []string{"Name", "Value"}, rows)
	}

	if body := tools.TruncateText(o.Body, cfg); body != "" {
		fmt.Fprintf(sb, "## Body\n\n```\n%s\n```\n\n", body)
	}
}

func writePing(sb *strings.Builder, r *schema.PingResult) {
	if r == nil {
		sb.WriteString("No output.\n\n")
		return
	}
	writeField(sb, "Target", r.Target)
	writeField(sb, "Resolved IP", r.ResolvedIP)
	writeField(sb, "Success", strconv.FormatBool(r.Success))
	writeField(sb, "Error", r.Error)
	if r.Transmitted != nil && r.Received != nil {
		writeField(sb, "Packets", fmt.Sprintf("%d transmitted, %d received", *r.Transmitted, *r.Received))
	}
	if r.LossPercent != nil {
		writeField(sb, "Loss", strconv.FormatFloat(*r.LossPercent, 'f', -1, 64)+"%")
	}
	if r.RTT != nil {
		writeField(sb, "RTT min/avg/max/stddev", fmt.Sprintf("%.3f/%.3f/%.3f/%.3f ms",
			r.RTT.Min, r.RTT.Avg, r.RTT.Max, r.RTT.Stddev))
	}
	if len(r.Timeouts) > 0 {
		seqs := make([]string, len(r.Timeouts))
		for i, s := range r.Timeouts {
			seqs[i] = strconv.Itoa(s)
		}
		writeField(sb, "Timeouts", strings.Join(seqs, ", "))
	}
	sb.WriteString("\n")

	if len(r.Responses) > 0 {
		rows := make([][]string, len(r.Responses))
		for i, resp := range r.Responses {
			rows[i] = []string{orUnknown(resp.Seq), orUnknown(resp.TTL), strconv.FormatFloat(resp.TimeMs, 'f', -1, 64)}
		}
		writeTable(sb, []string{"Seq", "TTL", "Time (ms)"}, rows)
	}
}

// orUnknown は -1（不明）を "?" として表示する。
func orUnknown(n int) string {
	if n < 0 {
		return "?"
	}
	return strconv.Itoa(n)
}

func writeTraceroute(sb *strings.Builder, r *schema.TracerouteResult) {
	if r == nil {
		sb.WriteString("No output.\n\n")
		return
	}
	d := r.Destination
	writeField(sb, "Destination", strings.TrimSpace(d.Domain+" "+bracket(d.IP)))
	if d.MaxHops > 0 {
		writeField(sb, "Max hops", strconv.Itoa(d.MaxHops))
	}
	writeField(sb, "Success", strconv.FormatBool(r.Success))
	sb.WriteString("\n")

	if len(r.Hops) == 0 {
		return
	}
	rows := make([][]string, len(r.Hops))
	for i, h := range r.Hops {
		num := strconv.Itoa(h.Number)
		if h.IsContinuation {
			num = ""
		}
		rows[i] = []string{num, h.Hostname, h.IP, strings.Join(h.Times, " ")}
	}
	writeTable(sb, []string{"Hop", "Host", "IP", "Times"}, rows)
}

func bracket(s string) string {
	if s == "" {
		return ""
	}
	return "(" + s + ")"
}

func writePortScan(sb *strings.Builder, r *schema.PortScanResult) {
	if r == nil {
		sb.WriteString("No output.\n\n")
		return
	}
	if r.Error != nil {
		msg := r.Error.Message
		if r.Error.Port != "" {
			msg += " (port " + r.Error.Port + ")"
		}
		if r.Error.Host != "" {
			msg += " (host " + r.Error.Host + ")"
		}
		fmt.Fprintf(sb, "**Error**: %s\n\n", msg)
	}
	writeField(sb, "Nmap", r.NmapVersion)
	writeField(sb, "Host", strings.TrimSpace(r.HostName+" "+bracket(r.HostIPAddress)))
	if len(r.AdditionalIPs) > 0 {
		writeField(sb, "Other addresses", strings.Join(r.AdditionalIPs, ", "))
	}
	writeField(sb, "Latency", r.Latency)
	writeField(sb, "Hosts up", fmt.Sprintf("%d/%d", r.HostsUp, r.AddressesScanned))
	writeField(sb, "Scan time", r.ScanTime)
	sb.WriteString("\n")

	if p := r.Port; p != nil {
		writeTable(sb, []string{"Port", "State", "Service"}, [][]string{
			{fmt.Sprintf("%d/%s", p.Number, p.Protocol), string(p.State), p.Service},
		})
	}
}

func writeWhois(sb *strings.Builder, r *schema.WhoisResult) {
	if r == nil {
		sb.WriteString("No output.\n\n")
		return
	}
	if !r.Matched {
		fmt.Fprintf(sb, "No match for **%s**.\n\n", r.NoMatchDomain)
	}
	writeField(sb, "Error", r.Error)
	writeField(sb, "Last update", r.LastUpdate)

	if t := r.TLD; t != nil {
		sb.WriteString("\n## Registry\n\n")
		writeField(sb, "TLD", t.TLD)
		writeField(sb, "Organisation", t.RegistryOrganization)
		writeField(sb, "Whois server", t.WhoisServer)
		writeField(sb, "Refer", t.Refer)
		writeField(sb, "Status", t.Status)
		writeField(sb, "Created", t.Created)
		writeField(sb, "Changed", t.Changed)
		writeField(sb, "Source", t.Source)
		if len(t.NameServers) > 0 {
			sb.WriteString("\n")
			rows := make([][]string, len(t.NameServers))
			for i, ns := range t.NameServers {
				rows[i] = []string{ns.Host, ns.IPv4, ns.IPv6}
			}
			writeTable(sb, []string{"Name server", "IPv4", "IPv6"}, rows)
		}
	}

	if d := r.Domain; d != nil {
		sb.WriteString("\n## Registrar\n\n")
		writeField(sb, "Domain", d.DomainName)
		writeField(sb, "Registrar", d.Registrar)
		writeField(sb, "Registrar URL", d.RegistrarURL)
		writeField(sb, "Created", d.CreationDate)
		writeField(sb, "Updated", d.UpdatedDate)
		writeField(sb, "Expires", d.RegistryExpiryDate)
		writeField(sb, "Abuse contact", strings.TrimSpace(d.AbuseContactEmail+" "+d.AbuseContactPhone))
		writeField(sb, "DNSSEC", d.Dnssec)
		if len(d.Statuses) > 0 {
			writeField(sb, "Status", strings.Join(d.Statuses, ", "))
		}
		if len(d.NameServers) > 0 {
			writeField(sb, "Name servers", strings.Join(d.NameServers, ", "))
		}
	}

	if c := r.Contacts; c != nil {
		var rows [][]string
		for _, rc := range []struct {
			role string
			c    *schema.WhoisRegistrarContact
		}{
			{"Registrant", c.Registrant},
			{"Admin", c.Administrative},
			{"Tech", c.Technical},
		} {
			if rc.c == nil {
				continue
			}
			rows = append(rows, []string{rc.role, rc.c.Organization, rc.c.StateProvince, rc.c.Country, rc.c.Email})
		}
		if len(rows) > 0 {
			sb.WriteString("\n## Contacts\n\n")
			writeTable(sb, []string{"Role", "Organisation", "State", "Country", "Email"}, rows)
		}
	}
	sb.WriteString("\n")
}

func writeTLS(sb *strings.Builder, o *schema.TlsCertificateOutput) {
	if o.Error != "" {
		fmt.Fprintf(sb, "**Error**: %s\n\n", o.Error)
		return
	}
	writeField(sb, "Subject", o.Subject)
	writeField(sb, "Issuer", o.Issuer)
	writeField(sb, "Valid from", o.ValidFrom)
	writeField(sb, "Valid to", o.ValidTo)
	if o.IsValidHostname != nil {
		writeField(sb, "Hostname matches", strconv.FormatBool(*o.IsValidHostname))
	}
	if len(o.SubjectAltNames) > 0 {
		writeField(sb, "Subject alt names", strings.Join(o.SubjectAltNames, ", "))
	}
	sb.WriteString("\n")
}
