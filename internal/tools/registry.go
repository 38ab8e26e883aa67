package tools

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownTool は登録されていないツール名を指定したときのエラー。
var ErrUnknownTool = errors.New("tools: unknown tool")

// Registry はツール名から ToolDef を引く。同名の定義は後勝ち。
type Registry struct {
	defs map[string]*ToolDef
}

// NewRegistry は空の Registry を返す。
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*ToolDef)}
}

// NewDefaultRegistry は組み込み定義を登録済みの Registry を返す。
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, d := range BuiltinDefs() {
		r.Register(d)
	}
	return r
}

// LoadDir は dir 以下の *.yaml / *.yml を読み込んで登録する。
// dir が存在しない場合は何もしない。
func (r *Registry) LoadDir(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if err := r.loadFile(path); err != nil {
			return fmt.Errorf("tools: failed to load %s: %w", path, err)
		}
		return nil
	})
}

func (r *Registry) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var def ToolDef
	if err := yaml.Unmarshal(data, &def); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	if def.Name == "" {
		return errors.New("tool definition missing 'name' field")
	}
	if def.Binary == "" {
		def.Binary = def.Name
	}
	r.defs[def.Name] = &def
	return nil
}

// Register は ToolDef を登録する。
func (r *Registry) Register(def *ToolDef) {
	r.defs[def.Name] = def
}

// Get は name の ToolDef を返す。
func (r *Registry) Get(name string) (*ToolDef, bool) {
	d, ok := r.defs[name]
	return d, ok
}

// All は登録済みの ToolDef を名前順で返す。
func (r *Registry) All() []*ToolDef {
	out := make([]*ToolDef, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
