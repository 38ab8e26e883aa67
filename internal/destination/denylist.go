package destination

import "regexp"

// DenyList は運用者が追加で拒否したいホスト名の正規表現を保持する。
type DenyList struct {
	patterns []*regexp.Regexp
}

// NewDenyList は patterns をコンパイルして DenyList を返す。
// 不正な正規表現はパニックではなくスキップする。
func NewDenyList(patterns []string) *DenyList {
	dl := &DenyList{}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			continue // 不正なパターンは無視
		}
		dl.patterns = append(dl.patterns, re)
	}
	return dl
}

// Match は host がいずれかのパターンに一致するか検査する。
func (d *DenyList) Match(host string) bool {
	if d == nil {
		return false
	}
	for _, re := range d.patterns {
		if re.MatchString(host) {
			return true
		}
	}
	return false
}

// Len returns the number of compiled patterns.
func (d *DenyList) Len() int {
	if d == nil {
		return 0
	}
	return len(d.patterns)
}
