package probe

import (
	"context"
	"crypto/tls"
	"net"
	"net/netip"
	"strconv"
	"time"

	"github.com/0x6d61/connected/internal/destination"
	"github.com/0x6d61/connected/pkg/schema"
)

// tlsCertificate は TLS ハンドシェイクを行い、相手のリーフ証明書を要約する。
// 証明書チェーンは検証しない（期限切れや自己署名でも内容を返す）。
// ハンドシェイクの失敗は Output.Error に入る。
func (p *Prober) tlsCertificate(ctx context.Context, in *schema.TlsCertificateInput, host string) (*schema.TlsCertificateOutput, error) {
	port, err := destination.Port(in.Port)
	if err != nil {
		return nil, err
	}
	timeout := p.timeout(in.TimeoutMs)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cfg := &tls.Config{
		InsecureSkipVerify: true, // #nosec G402 -- 証明書の中身を報告するのが目的
	}
	if _, err := netip.ParseAddr(host); err != nil {
		cfg.ServerName = host
	}
	dialer := &tls.Dialer{NetDialer: p.newDialer(timeout), Config: cfg}

	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return &schema.TlsCertificateOutput{Error: err.Error()}, nil
	}
	defer conn.Close()

	state := conn.(*tls.Conn).ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return &schema.TlsCertificateOutput{Error: "peer sent no certificate"}, nil
	}
	leaf := state.PeerCertificates[0]

	out := &schema.TlsCertificateOutput{
		ValidFrom:       leaf.NotBefore.UTC().Format(time.RFC3339),
		ValidTo:         leaf.NotAfter.UTC().Format(time.RFC3339),
		Subject:         leaf.Subject.String(),
		Issuer:          leaf.Issuer.String(),
		IsValidHostname: schema.Ptr(leaf.VerifyHostname(host) == nil),
	}
	out.SubjectAltNames = append(out.SubjectAltNames, leaf.DNSNames...)
	for _, ip := range leaf.IPAddresses {
		out.SubjectAltNames = append(out.SubjectAltNames, ip.String())
	}
	return out, nil
}
