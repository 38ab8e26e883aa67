package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrUnknownKind is returned when a toolType discriminator does not name a known ToolKind.
var ErrUnknownKind = errors.New("unknown toolType")

type kindHead struct {
	ToolType ToolKind `json:"toolType" yaml:"toolType"`
}

// MarshalInput は in を "toolType" 付きの JSON オブジェクトにエンコードする。
func MarshalInput(in Input) ([]byte, error) {
	if in == nil {
		return nil, fmt.Errorf("schema: nil input")
	}
	return marshalTagged(in.Kind(), in)
}

// MarshalOutput は out を "toolType" 付きの JSON オブジェクトにエンコードする。
func MarshalOutput(out Output) ([]byte, error) {
	if out == nil {
		return nil, fmt.Errorf("schema: nil output")
	}
	return marshalTagged(out.Kind(), out)
}

// marshalTagged は v の JSON オブジェクトの先頭に toolType を差し込む。
func marshalTagged(kind ToolKind, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("schema: marshal %s: %w", kind, err)
	}
	if len(body) < 2 || body[0] != '{' {
		return nil, fmt.Errorf("schema: %s does not encode as an object", kind)
	}
	tag, _ := json.Marshal(string(kind))

	var buf bytes.Buffer
	buf.WriteString(`{"toolType":`)
	buf.Write(tag)
	if rest := bytes.TrimSpace(body[1:]); len(rest) > 0 && rest[0] != '}' {
		buf.WriteByte(',')
	}
	buf.Write(body[1:])
	return buf.Bytes(), nil
}

// DecodeInput は toolType を読んで対応する具象 Input にデコードする。
func DecodeInput(data []byte) (Input, error) {
	var head kindHead
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("schema: decode input: %w", err)
	}
	in := NewInput(head.ToolType)
	if in == nil {
		return nil, fmt.Errorf("schema: %w: %q", ErrUnknownKind, head.ToolType)
	}
	if err := json.Unmarshal(data, in); err != nil {
		return nil, fmt.Errorf("schema: decode %s input: %w", head.ToolType, err)
	}
	return in, nil
}

// DecodeOutput は toolType を読んで対応する具象 Output にデコードする。
func DecodeOutput(data []byte) (Output, error) {
	var head kindHead
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("schema: decode output: %w", err)
	}
	out := NewOutput(head.ToolType)
	if out == nil {
		return nil, fmt.Errorf("schema: %w: %q", ErrUnknownKind, head.ToolType)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("schema: decode %s output: %w", head.ToolType, err)
	}
	return out, nil
}

// InputEnvelope wraps an Input so it can sit inside JSON or YAML documents
// (agent definitions) and round-trip with its toolType tag.
type InputEnvelope struct {
	Input
}

func (e InputEnvelope) MarshalJSON() ([]byte, error) {
	return MarshalInput(e.Input)
}

func (e *InputEnvelope) UnmarshalJSON(data []byte) error {
	in, err := DecodeInput(data)
	if err != nil {
		return err
	}
	e.Input = in
	return nil
}

// UnmarshalYAML は YAML ノードの toolType で具象型を選んでデコードする。
func (e *InputEnvelope) UnmarshalYAML(node *yaml.Node) error {
	var head kindHead
	if err := node.Decode(&head); err != nil {
		return fmt.Errorf("schema: decode input: %w", err)
	}
	in := NewInput(head.ToolType)
	if in == nil {
		return fmt.Errorf("schema: line %d: %w: %q", node.Line, ErrUnknownKind, head.ToolType)
	}
	if err := node.Decode(in); err != nil {
		return fmt.Errorf("schema: decode %s input: %w", head.ToolType, err)
	}
	e.Input = in
	return nil
}
