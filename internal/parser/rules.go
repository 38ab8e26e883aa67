// Package parser converts captured transcripts of ping, traceroute, nmap and whois into structured results.
//
// 各パーサーは「行 → ルール表（上から評価、最初に一致したものが勝つ）」の形で実装する。
// どのルールにも一致しない行は黙って捨てる。プラットフォーム固有の書式は
// 既存ルールの順序を変えずに末尾へ追加できる。
package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// rule is one line classifier. match reports whether the rule claims the line and
// returns its captures; apply folds the captures into the parse state and returns
// true to stop parsing.
type rule[S any] struct {
	name  string
	match func(line string) ([]string, bool)
	apply func(s *S, m []string) (stop bool)
}

// applyRules は lines を順に ruleset に通す。
func applyRules[S any](s *S, lines []string, ruleset []rule[S]) {
	for _, line := range lines {
		for _, r := range ruleset {
			m, ok := r.match(line)
			if !ok {
				continue
			}
			if r.apply(s, m) {
				return
			}
			break
		}
	}
}

// matchRegexp は re に一致した行を受け付ける。
func matchRegexp(re *regexp.Regexp) func(string) ([]string, bool) {
	return func(line string) ([]string, bool) {
		m := re.FindStringSubmatch(line)
		return m, m != nil
	}
}

// matchPrefix は prefix で始まる行を受け付け、re のキャプチャ（一致しなければ nil）を渡す。
// 接頭辞が一致した行は re に一致しなくても他のルールには回らない。
func matchPrefix(prefix string, re *regexp.Regexp) func(string) ([]string, bool) {
	return func(line string) ([]string, bool) {
		if !strings.HasPrefix(line, prefix) {
			return nil, false
		}
		if re == nil {
			return []string{line}, true
		}
		return re.FindStringSubmatch(line), true
	}
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func atof(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

// hasText は stdout が取得されていて空でないかを返す。
func hasText(s *string) bool {
	return s != nil && *s != ""
}
