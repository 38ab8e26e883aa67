package schema

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Agent is a user-defined monitor: a set of tools run on a schedule whose
// outputs are checked by predicates to decide whether to notify.
// Only the configuration shape lives here; nothing in this module evaluates it.
type Agent struct {
	AgentID            string      `json:"agentId" yaml:"agentId"`
	Name               string      `json:"name" yaml:"name"`
	Description        string      `json:"description,omitempty" yaml:"description,omitempty"`
	CreatedByAccountID string      `json:"createdByAccountId" yaml:"createdByAccountId"`
	CreatedByProfileID string      `json:"createdByProfileId" yaml:"createdByProfileId"`
	Tools              []AgentTool `json:"tools" yaml:"tools"`
}

// AgentTool は 1 つのツール入力とそのスケジュール・判定・通知設定。
type AgentTool struct {
	Input                InputEnvelope             `json:"input" yaml:"input"`
	PathName             string                    `json:"pathName" yaml:"pathName"`
	Regions              []string                  `json:"regions,omitempty" yaml:"regions,omitempty"`
	Schedule             AgentSchedule             `json:"schedule" yaml:"schedule"`
	Predicates           []AgentToolPredicates     `json:"predicates" yaml:"predicates"`
	Validation           *AgentStateValidation     `json:"validation,omitempty" yaml:"validation,omitempty"`
	NotificationSettings AgentNotificationSettings `json:"notificationSettings" yaml:"notificationSettings"`
}

type AgentToolPredicates struct {
	Name       string           `json:"name" yaml:"name"`
	Predicates []AgentPredicate `json:"predicates" yaml:"predicates"`
}

// AgentStateValidation: Interval は ISO-8601 duration（例: PT1H）。
type AgentStateValidation struct {
	Attempts  int    `json:"attempts" yaml:"attempts"`
	Threshold int    `json:"threshold" yaml:"threshold"`
	Interval  string `json:"interval" yaml:"interval"`
}

// ScheduleKind は cron か interval。
type ScheduleKind string

const (
	ScheduleCron     ScheduleKind = "cron"
	ScheduleInterval ScheduleKind = "interval"
)

// AgentSchedule is either a cron expression (5 or 6 fields, optional IANA
// time zone) or an ISO-8601 interval with an optional anchor timestamp.
type AgentSchedule struct {
	Kind       ScheduleKind `json:"kind" yaml:"kind"`
	Expression string       `json:"expression,omitempty" yaml:"expression,omitempty"`
	TimeZone   string       `json:"timeZone,omitempty" yaml:"timeZone,omitempty"`
	Duration   string       `json:"duration,omitempty" yaml:"duration,omitempty"`
	Anchor     string       `json:"anchor,omitempty" yaml:"anchor,omitempty"`
}

// Validate は kind に応じた必須フィールドを確認する。
func (s AgentSchedule) Validate() error {
	switch s.Kind {
	case ScheduleCron:
		if s.Expression == "" {
			return errors.New("cron schedule requires expression")
		}
	case ScheduleInterval:
		if s.Duration == "" {
			return errors.New("interval schedule requires duration")
		}
	default:
		return fmt.Errorf("unknown schedule kind %q", s.Kind)
	}
	return nil
}

// AgentPredicate is one node of a predicate tree. Which fields are meaningful depends on Type:
// compare/length use Key+Op+Value, string adds Regex for "matches", includes uses Key+Value,
// and and/or/not use Conditions.
type AgentPredicate struct {
	Type       string           `json:"type" yaml:"type"`
	Key        string           `json:"key,omitempty" yaml:"key,omitempty"`
	Op         string           `json:"op,omitempty" yaml:"op,omitempty"`
	Value      *PredicateValue  `json:"value,omitempty" yaml:"value,omitempty"`
	Regex      string           `json:"regex,omitempty" yaml:"regex,omitempty"`
	Conditions []AgentPredicate `json:"conditions,omitempty" yaml:"conditions,omitempty"`
}

// PredicateValue は literal（任意の JSON 値）か reference（出力内の別キー）。
type PredicateValue struct {
	Type  string `json:"type" yaml:"type"`
	Value any    `json:"value,omitempty" yaml:"value,omitempty"`
	Key   string `json:"key,omitempty" yaml:"key,omitempty"`
}

var (
	compareOps = []string{"eq", "neq", "gt", "gte", "lt", "lte"}
	stringOps  = []string{"contains", "startsWith", "endsWith", "matches"}
)

// Validate checks the shape of the predicate tree rooted at p.
func (p AgentPredicate) Validate() error {
	switch p.Type {
	case "compare", "length":
		if err := p.requireKeyValue(); err != nil {
			return err
		}
		return requireOp(p.Type, p.Op, compareOps)
	case "string":
		if err := p.requireKeyValue(); err != nil {
			return err
		}
		return requireOp(p.Type, p.Op, stringOps)
	case "includes":
		return p.requireKeyValue()
	case "and", "or", "not":
		if len(p.Conditions) == 0 {
			return fmt.Errorf("%s predicate requires conditions", p.Type)
		}
		var errs []error
		for i, c := range p.Conditions {
			if err := c.Validate(); err != nil {
				errs = append(errs, fmt.Errorf("conditions[%d]: %w", i, err))
			}
		}
		return errors.Join(errs...)
	}
	return fmt.Errorf("unknown predicate type %q", p.Type)
}

func (p AgentPredicate) requireKeyValue() error {
	if p.Key == "" {
		return fmt.Errorf("%s predicate requires key", p.Type)
	}
	if p.Value == nil {
		return fmt.Errorf("%s predicate requires value", p.Type)
	}
	switch p.Value.Type {
	case "literal":
	case "reference":
		if p.Value.Key == "" {
			return errors.New("reference value requires key")
		}
	default:
		return fmt.Errorf("unknown value type %q", p.Value.Type)
	}
	return nil
}

func requireOp(typ, op string, allowed []string) error {
	for _, a := range allowed {
		if op == a {
			return nil
		}
	}
	return fmt.Errorf("%s predicate: unsupported op %q", typ, op)
}

// AgentNotificationSettings はどこへ・いつ通知するか。
type AgentNotificationSettings struct {
	DestinationIDs []string               `json:"destinationIds" yaml:"destinationIds"`
	Preference     NotificationPreference `json:"preference" yaml:"preference"`
}

// NotificationPreference: Kind が "window" のときのみ Count / Window を使う。
type NotificationPreference struct {
	Kind   string `json:"kind" yaml:"kind"`
	Count  int    `json:"count,omitempty" yaml:"count,omitempty"`
	Window int    `json:"window,omitempty" yaml:"window,omitempty"`
}

// Validate checks the preference kind.
func (n NotificationPreference) Validate() error {
	switch n.Kind {
	case "always", "state-change":
		return nil
	case "window":
		if n.Count <= 0 || n.Window <= 0 {
			return errors.New("window preference requires positive count and window")
		}
		return nil
	}
	return fmt.Errorf("unknown notification preference %q", n.Kind)
}

// agentsFile は YAML ファイルのトップレベル構造。
type agentsFile struct {
	Agents []Agent `yaml:"agents"`
}

// LoadAgents は path の YAML から Agent 定義を読み込む。
func LoadAgents(path string) ([]Agent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema: failed to read %s: %w", path, err)
	}
	var f agentsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("schema: failed to parse %s: %w", path, err)
	}
	return f.Agents, nil
}
