package destination

import (
	"errors"
	"fmt"
)

// Rejection reasons. Each is final for the given input; retrying the same value never succeeds.
var (
	ErrBlockedName       = errors.New("host name not allowed")
	ErrBlockedTLD        = errors.New("blocked top-level domain")
	ErrPrivateAddress    = errors.New("address is private or not publicly routable")
	ErrDomainTooLong     = errors.New("exceeded the maximum domain length (253 characters)")
	ErrLabelTooLong      = errors.New("one or more labels exceed the 63-character limit")
	ErrInvalidDomain     = errors.New("invalid domain")
	ErrBlockedPattern    = errors.New("host matches a deny pattern")
	ErrInvalidPortFormat = errors.New("invalid port format")
	ErrPortOutOfRange    = errors.New("port number out of range")
)

// RejectionError は拒否理由（sentinel）と入力値を保持する。
// errors.Is(err, ErrBlockedTLD) のように理由で判定できる。
type RejectionError struct {
	Reason error
	Input  string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("destination: %v: %s", e.Reason, e.Input)
}

func (e *RejectionError) Unwrap() error {
	return e.Reason
}

func reject(reason error, input string) error {
	return &RejectionError{Reason: reason, Input: input}
}
