package tools

import (
	"fmt"
	"regexp"
	"strings"
)

// placeholderRe は "{key}" と必須マーカー付きの "{key!}" にマッチする。
var placeholderRe = regexp.MustCompile(`\{(\w+)(!?)\}`)

// BuildCLIArgs は args_template と args から CLI 引数を組み立てる。
//
// テンプレートの規則:
//   - {key}  : args[key] があれば展開、無ければ直前のリテラル（"-p {port}" の "-p"）ごと除去
//   - {key!} : args[key] が無ければエラー
//   - string 値は空白で分割、[]string / []any 値は要素ごとに 1 引数
//   - template が空なら args["_args"] をそのまま返す
func BuildCLIArgs(template string, args map[string]any) ([]string, error) {
	if strings.TrimSpace(template) == "" {
		return argValues(args["_args"])
	}

	var out []string
	for _, group := range splitGroups(template) {
		expanded, keep, err := expandGroup(group, args)
		if err != nil {
			return nil, err
		}
		if keep {
			out = append(out, expanded...)
		}
	}
	return out, nil
}

// splitGroups はテンプレートをトークンのグループに分ける。
// プレースホルダー直前のリテラル 1 つは同じグループに入る。
// 例: "-m {max_hops} -n {host!}" → [[-m {max_hops}] [-n {host!}]]
func splitGroups(template string) [][]string {
	tokens := strings.Fields(template)
	var groups [][]string
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if !placeholderRe.MatchString(tok) && i+1 < len(tokens) && placeholderRe.MatchString(tokens[i+1]) {
			groups = append(groups, []string{tok, tokens[i+1]})
			i++
			continue
		}
		groups = append(groups, []string{tok})
	}
	return groups
}

// expandGroup はグループ内のプレースホルダーを展開する。
// 任意キーが無いときは keep=false。
func expandGroup(group []string, args map[string]any) (expanded []string, keep bool, err error) {
	for _, tok := range group {
		matches := placeholderRe.FindAllStringSubmatch(tok, -1)
		if len(matches) == 0 {
			expanded = append(expanded, tok)
			continue
		}

		// トークン全体が 1 つのプレースホルダーなら値を要素ごとに差し込む。
		if len(matches) == 1 && matches[0][0] == tok {
			vals, ok, err := lookup(args, matches[0][1], matches[0][2] == "!")
			if err != nil || !ok {
				return nil, false, err
			}
			expanded = append(expanded, vals...)
			continue
		}

		// "--max={n}" のような埋め込みは文字列置換。
		for _, m := range matches {
			vals, ok, err := lookup(args, m[1], m[2] == "!")
			if err != nil || !ok {
				return nil, false, err
			}
			tok = strings.ReplaceAll(tok, m[0], strings.Join(vals, ","))
		}
		expanded = append(expanded, tok)
	}
	return expanded, true, nil
}

func lookup(args map[string]any, key string, required bool) ([]string, bool, error) {
	v, ok := args[key]
	if !ok || v == nil {
		if required {
			return nil, false, fmt.Errorf("tools: required argument %q is missing", key)
		}
		return nil, false, nil
	}
	vals, err := argValues(v)
	if err != nil {
		return nil, false, fmt.Errorf("tools: argument %q: %w", key, err)
	}
	return vals, true, nil
}

// argValues は引数値を文字列スライスに変換する。
func argValues(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		return strings.Fields(val), nil
	case []string:
		return val, nil
	case []any:
		out := make([]string, 0, len(val))
		for i, e := range val {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("element[%d] is not a string: %T", i, e)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return []string{fmt.Sprint(val)}, nil
	}
}
