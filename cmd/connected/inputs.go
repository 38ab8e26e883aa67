package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/0x6d61/connected/pkg/schema"
)

// errUsage はサブコマンドの引数エラー。終了コード 2 で usage を表示する。
var errUsage = errors.New("usage")

// commands はサブコマンド名と ToolKind の対応。
var commands = map[string]schema.ToolKind{
	"dns":        schema.ToolDns,
	"dnstrace":   schema.ToolDnsTrace,
	"fetch":      schema.ToolFetch,
	"httptrace":  schema.ToolHttpTrace,
	"ping":       schema.ToolPing,
	"portcheck":  schema.ToolPortCheck,
	"traceroute": schema.ToolTraceroute,
	"tls":        schema.ToolTlsCertificate,
	"whois":      schema.ToolWhois,
}

// headerFlags は繰り返し指定できる -H "Name: value"。
type headerFlags map[string]string

func (h headerFlags) String() string {
	parts := make([]string, 0, len(h))
	for k, v := range h {
		parts = append(parts, k+": "+v)
	}
	return strings.Join(parts, ", ")
}

func (h headerFlags) Set(s string) error {
	name, value, ok := strings.Cut(s, ":")
	if !ok || strings.TrimSpace(name) == "" {
		return fmt.Errorf("header %q must be \"Name: value\"", s)
	}
	h[strings.TrimSpace(name)] = strings.TrimSpace(value)
	return nil
}

// parseInput はサブコマンドの引数から Input を組み立てる。
// フラグと位置引数はどの順でも指定できる。
func parseInput(cmd string, args []string, stderr io.Writer) (schema.Input, error) {
	kind, ok := commands[cmd]
	if !ok {
		return nil, fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}

	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	timeout := func() *int {
		return fs.Int("timeout", 0, "タイムアウト（ミリ秒、1000〜60000）")
	}

	var (
		in   schema.Input
		bind func(pos []string) error
	)

	switch kind {
	case schema.ToolDns:
		types := fs.String("types", "", "問い合わせるレコード種別（カンマ区切り、例: A,MX,TXT）")
		v := &schema.DnsInput{}
		in = v
		bind = func(pos []string) error {
			if err := onePositional(pos, "domain"); err != nil {
				return err
			}
			v.Domain = pos[0]
			for _, t := range strings.Split(*types, ",") {
				if t = strings.TrimSpace(t); t != "" {
					v.Types = append(v.Types, schema.DnsRecordType(strings.ToUpper(t)))
				}
			}
			return nil
		}

	case schema.ToolDnsTrace:
		ms := timeout()
		v := &schema.DnsTraceInput{}
		in = v
		bind = func(pos []string) error {
			if err := onePositional(pos, "domain"); err != nil {
				return err
			}
			v.Domain, v.TimeoutMs = pos[0], *ms
			return nil
		}

	case schema.ToolFetch:
		method := fs.String("X", "GET", "HTTP メソッド")
		body := fs.String("d", "", "リクエストボディ")
		headers := headerFlags{}
		fs.Var(headers, "H", "リクエストヘッダー \"Name: value\"（複数指定可）")
		ms := timeout()
		v := &schema.FetchInput{}
		in = v
		bind = func(pos []string) error {
			if err := onePositional(pos, "url"); err != nil {
				return err
			}
			v.URL = pos[0]
			v.Method = strings.ToUpper(*method)
			v.Body = *body
			v.TimeoutMs = *ms
			if len(headers) > 0 {
				v.Headers = headers
			}
			return nil
		}

	case schema.ToolHttpTrace:
		ms := timeout()
		v := &schema.HttpTraceInput{}
		in = v
		bind = func(pos []string) error {
			if err := onePositional(pos, "url"); err != nil {
				return err
			}
			v.URL, v.TimeoutMs = pos[0], *ms
			return nil
		}

	case schema.ToolPing:
		count := fs.Int("c", 0, "送信回数（省略時 4）")
		ms := timeout()
		v := &schema.PingInput{}
		in = v
		bind = func(pos []string) error {
			if err := onePositional(pos, "host"); err != nil {
				return err
			}
			v.Host, v.Count, v.TimeoutMs = pos[0], *count, *ms
			return nil
		}

	case schema.ToolPortCheck:
		port := fs.Int("p", 0, "ポート番号（第 2 位置引数でも可）")
		ms := timeout()
		v := &schema.PortCheckInput{}
		in = v
		bind = func(pos []string) error {
			p, err := hostAndPort(pos, *port, 0)
			if err != nil {
				return err
			}
			v.Host, v.Port, v.TimeoutMs = pos[0], p, *ms
			return nil
		}

	case schema.ToolTraceroute:
		maxHops := fs.Int("m", 0, "最大ホップ数")
		queries := fs.Int("q", 0, "ホップごとのプローブ数")
		wait := fs.Int("w", 0, "応答待ち時間（秒）")
		ms := timeout()
		v := &schema.TracerouteInput{}
		in = v
		bind = func(pos []string) error {
			if err := onePositional(pos, "host"); err != nil {
				return err
			}
			v.Host, v.MaxHops, v.QueryCount, v.WaitTime, v.TimeoutMs = pos[0], *maxHops, *queries, *wait, *ms
			return nil
		}

	case schema.ToolTlsCertificate:
		port := fs.Int("p", 0, "ポート番号（省略時 443）")
		ms := timeout()
		v := &schema.TlsCertificateInput{}
		in = v
		bind = func(pos []string) error {
			p, err := hostAndPort(pos, *port, 443)
			if err != nil {
				return err
			}
			v.Host, v.Port, v.TimeoutMs = pos[0], p, *ms
			return nil
		}

	case schema.ToolWhois:
		ms := timeout()
		v := &schema.WhoisInput{}
		in = v
		bind = func(pos []string) error {
			if err := onePositional(pos, "host"); err != nil {
				return err
			}
			v.Host, v.TimeoutMs = pos[0], *ms
			return nil
		}
	}

	pos, err := parseInterspersed(fs, args)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errUsage, cmd, err)
	}
	if err := bind(pos); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errUsage, cmd, err)
	}
	return in, nil
}

// parseInterspersed は位置引数の後ろに置かれたフラグも解釈する。
// 標準の flag パッケージは最初の位置引数で解析を止めるため、残りを繰り返し Parse する。
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var pos []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return pos, nil
		}
		pos = append(pos, rest[0])
		args = rest[1:]
	}
}

func onePositional(pos []string, name string) error {
	switch len(pos) {
	case 0:
		return fmt.Errorf("missing <%s>", name)
	case 1:
		return nil
	}
	return fmt.Errorf("unexpected arguments after <%s>: %s", name, strings.Join(pos[1:], " "))
}

// hostAndPort は "<host> [port]" と -p を突き合わせる。def が 0 ならポート必須。
func hostAndPort(pos []string, flagPort, def int) (int, error) {
	switch len(pos) {
	case 0:
		return 0, errors.New("missing <host>")
	case 1:
		switch {
		case flagPort != 0:
			return flagPort, nil
		case def != 0:
			return def, nil
		}
		return 0, errors.New("missing <port>")
	case 2:
		if flagPort != 0 {
			return 0, errors.New("port given twice")
		}
		p, err := strconv.Atoi(pos[1])
		if err != nil {
			return 0, fmt.Errorf("invalid port %q", pos[1])
		}
		return p, nil
	}
	return 0, fmt.Errorf("unexpected arguments: %s", strings.Join(pos[2:], " "))
}
