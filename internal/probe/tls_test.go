package probe_test

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0x6d61/connected/pkg/schema"
)

func TestRun_TlsCertificate(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	out, err := loopbackProber().Run(context.Background(), &schema.TlsCertificateInput{Host: u.Hostname(), Port: port})
	require.NoError(t, err)

	got, ok := out.(*schema.TlsCertificateOutput)
	require.True(t, ok, "got %T", out)
	assert.Empty(t, got.Error)
	assert.Contains(t, got.SubjectAltNames, "example.com")
	assert.Contains(t, got.SubjectAltNames, "127.0.0.1")
	require.NotNil(t, got.IsValidHostname)
	assert.True(t, *got.IsValidHostname)
	assert.Contains(t, got.Subject, "O=Acme Co")

	from, err := time.Parse(time.RFC3339, got.ValidFrom)
	require.NoError(t, err)
	to, err := time.Parse(time.RFC3339, got.ValidTo)
	require.NoError(t, err)
	assert.True(t, from.Before(to))
}

func TestRun_TlsCertificateHandshakeError(t *testing.T) {
	// TLS を話さないサーバー
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			_, _ = c.Write([]byte("SSH-2.0-OpenSSH_9.0\r\n"))
			_ = c.Close()
		}
	}()

	port := ln.Addr().(*net.TCPAddr).Port
	out, err := loopbackProber().Run(context.Background(), &schema.TlsCertificateInput{Host: "127.0.0.1", Port: port, TimeoutMs: 2000})
	require.NoError(t, err)

	got := out.(*schema.TlsCertificateOutput)
	assert.NotEmpty(t, got.Error)
	assert.Nil(t, got.IsValidHostname)
}
