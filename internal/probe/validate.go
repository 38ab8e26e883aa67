package probe

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/0x6d61/connected/internal/destination"
	"github.com/0x6d61/connected/pkg/schema"
)

// fetchMethods は Fetch で許可する HTTP メソッド。
var fetchMethods = map[string]struct{}{
	"GET": {}, "HEAD": {}, "POST": {}, "PUT": {}, "PATCH": {}, "DELETE": {}, "OPTIONS": {},
}

// ValidateInput checks in without running anything. It returns a
// *destination.RejectionError for a disallowed host or port, an error
// wrapping ErrInvalidInput for other malformed fields and ErrUnknownTool
// for an unsupported kind.
func (p *Prober) ValidateInput(in schema.Input) error {
	_, err := p.target(in)
	return err
}

// target は in を検証し、実行に使う正規化済みの宛先（ホスト名または URL）を返す。
func (p *Prober) target(in schema.Input) (string, error) {
	switch v := in.(type) {
	case *schema.DnsInput:
		for _, t := range v.Types {
			if !t.Valid() {
				return "", fmt.Errorf("%w: unsupported record type %q", ErrInvalidInput, t)
			}
		}
		return p.host(v.Domain)
	case *schema.DnsTraceInput:
		return p.host(v.Domain)
	case *schema.FetchInput:
		if v.Method != "" {
			if _, ok := fetchMethods[strings.ToUpper(v.Method)]; !ok {
				return "", fmt.Errorf("%w: unsupported method %q", ErrInvalidInput, v.Method)
			}
		}
		return p.checkURL(v.URL)
	case *schema.HttpTraceInput:
		return p.checkURL(v.URL)
	case *schema.PingInput:
		if v.Count < 0 {
			return "", fmt.Errorf("%w: count must not be negative", ErrInvalidInput)
		}
		return p.host(v.Host)
	case *schema.PortCheckInput:
		if _, err := destination.Port(v.Port); err != nil {
			return "", err
		}
		return p.host(v.Host)
	case *schema.TracerouteInput:
		if v.MaxHops < 0 || v.QueryCount < 0 || v.WaitTime < 0 {
			return "", fmt.Errorf("%w: traceroute options must not be negative", ErrInvalidInput)
		}
		return p.host(v.Host)
	case *schema.TlsCertificateInput:
		if _, err := destination.Port(v.Port); err != nil {
			return "", err
		}
		return p.host(v.Host)
	case *schema.WhoisInput:
		return p.host(v.Host)
	case nil:
		return "", fmt.Errorf("%w: <nil>", ErrUnknownTool)
	}
	return "", fmt.Errorf("%w: %T", ErrUnknownTool, in)
}

func (p *Prober) host(spec string) (string, error) {
	h, err := p.Validator.Resolve(strings.TrimSpace(spec))
	if err != nil {
		return "", err
	}
	return h.Host, nil
}

// checkURL は http/https の絶対 URL だけを受け付け、ホスト部を検証する。
func (p *Prober) checkURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidInput, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: url has no host", ErrInvalidInput)
	}
	if u.User != nil {
		return "", fmt.Errorf("%w: credentials in url are not allowed", ErrInvalidInput)
	}
	if _, err := p.Validator.Resolve(u.Host); err != nil {
		return "", err
	}
	return u.String(), nil
}

// ValidateAgent checks every tool of a, including its input destination,
// schedule, predicate trees and notification preference. All problems are
// reported together.
func (p *Prober) ValidateAgent(a schema.Agent) error {
	var errs []error
	if a.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if len(a.Tools) == 0 {
		errs = append(errs, errors.New("at least one tool is required"))
	}
	for i, t := range a.Tools {
		if err := p.validateAgentTool(t); err != nil {
			errs = append(errs, fmt.Errorf("tools[%d]: %w", i, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("agent %q: %w", a.Name, err)
	}
	return nil
}

func (p *Prober) validateAgentTool(t schema.AgentTool) error {
	var errs []error
	if t.Input.Input == nil {
		errs = append(errs, errors.New("input is required"))
	} else if err := p.ValidateInput(t.Input.Input); err != nil {
		errs = append(errs, fmt.Errorf("input: %w", err))
	}
	if err := t.Schedule.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("schedule: %w", err))
	}
	for _, group := range t.Predicates {
		for j, pred := range group.Predicates {
			if err := pred.Validate(); err != nil {
				errs = append(errs, fmt.Errorf("predicates %q[%d]: %w", group.Name, j, err))
			}
		}
	}
	if err := t.NotificationSettings.Preference.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("notification: %w", err))
	}
	if v := t.Validation; v != nil && (v.Attempts <= 0 || v.Threshold <= 0 || v.Threshold > v.Attempts) {
		errs = append(errs, errors.New("validation: threshold must be between 1 and attempts"))
	}
	return errors.Join(errs...)
}
