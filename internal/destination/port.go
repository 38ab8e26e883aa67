package destination

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

const (
	MinPort = 1
	MaxPort = 65535
)

var portDigits = regexp.MustCompile(`^\d+$`)

// Port normalizes v to a port number in [MinPort, MaxPort].
// v は整数型、整数値の浮動小数点、または数字のみの文字列。
func Port(v any) (int, error) {
	var n int64
	switch p := v.(type) {
	case string:
		if !portDigits.MatchString(p) {
			return 0, reject(ErrInvalidPortFormat, p)
		}
		parsed, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			// 桁あふれは範囲外として扱う
			return 0, reject(ErrPortOutOfRange, p)
		}
		n = parsed
	case int:
		n = int64(p)
	case int32:
		n = int64(p)
	case int64:
		n = p
	case uint16:
		n = int64(p)
	case uint32:
		n = int64(p)
	case float64:
		if p != math.Trunc(p) || math.IsInf(p, 0) || math.IsNaN(p) {
			return 0, reject(ErrInvalidPortFormat, fmt.Sprint(p))
		}
		if p < MinPort || p > MaxPort {
			return 0, reject(ErrPortOutOfRange, fmt.Sprint(p))
		}
		n = int64(p)
	default:
		return 0, reject(ErrInvalidPortFormat, fmt.Sprint(v))
	}

	if n < MinPort || n > MaxPort {
		return 0, reject(ErrPortOutOfRange, strconv.FormatInt(n, 10))
	}
	return int(n), nil
}
