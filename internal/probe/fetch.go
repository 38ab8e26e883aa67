package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/0x6d61/connected/pkg/schema"
)

const (
	// MaxFetchBody はレスポンスボディとして保持する最大バイト数。
	MaxFetchBody = 64 << 10

	// maxRedirects を超えるとリダイレクト追跡を打ち切ってエラーにする。
	maxRedirects = 10
)

var errTooManyRedirects = errors.New("stopped after 10 redirects")

// fetch sends a single HTTP request and follows redirects, re-validating
// every hop. Transport failures are reported in FetchOutput.Error.
func (p *Prober) fetch(ctx context.Context, in *schema.FetchInput) (*schema.FetchOutput, error) {
	timeout := p.timeout(in.TimeoutMs)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out := &schema.FetchOutput{Headers: map[string]string{}}
	client := p.httpClient(timeout, &out.Redirects)

	method := strings.ToUpper(in.Method)
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if in.Body != "" {
		body = strings.NewReader(in.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, in.URL, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	for k, v := range in.Headers {
		req.Header.Set(k, v)
	}

	t0 := p.TimeNow()
	resp, err := client.Do(req)
	if err != nil {
		out.DurationMs = p.TimeNow().Sub(t0).Milliseconds()
		out.Error = err.Error()
		return out, nil
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxFetchBody))
	out.DurationMs = p.TimeNow().Sub(t0).Milliseconds()
	if err != nil {
		out.Error = err.Error()
	}

	out.Status = resp.StatusCode
	out.StatusText = http.StatusText(resp.StatusCode)
	for k, v := range resp.Header {
		out.Headers[strings.ToLower(k)] = strings.Join(v, ", ")
	}
	out.Body = string(data)
	return out, nil
}

// httpClient は宛先検証付きの dialer を使い、プロキシを経由しない client を返す。
// 追跡したリダイレクトは redirects に追記される。
func (p *Prober) httpClient(timeout time.Duration, redirects *[]schema.FetchRedirect) *http.Client {
	transport := &http.Transport{
		DialContext:           p.newDialer(timeout).DialContext,
		ForceAttemptHTTP2:     true,
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
		MaxIdleConns:          1,
		DisableKeepAlives:     true,
	}
	return &http.Client{
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			prev := via[len(via)-1]
			status := 0
			if req.Response != nil {
				status = req.Response.StatusCode
			}
			*redirects = append(*redirects, schema.FetchRedirect{URL: prev.URL.String(), Status: status})

			if len(via) >= maxRedirects {
				return errTooManyRedirects
			}
			if _, err := p.checkURL(req.URL.String()); err != nil {
				return err
			}
			return nil
		},
	}
}
