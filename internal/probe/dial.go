package probe

import (
	"net"
	"net/netip"
	"syscall"
	"time"

	"github.com/0x6d61/connected/internal/destination"
)

// newDialer returns a dialer that refuses to connect to any address the
// Validator does not allow. Names are checked before resolution; this
// catches the resolved address, so a public name pointing at a private
// address is still refused.
func (p *Prober) newDialer(timeout time.Duration) *net.Dialer {
	return &net.Dialer{
		Timeout: timeout,
		Control: func(network, address string, _ syscall.RawConn) error {
			ap, err := netip.ParseAddrPort(address)
			if err != nil {
				return &destination.RejectionError{Reason: destination.ErrInvalidDomain, Input: address}
			}
			if !p.Validator.AllowAddr(ap.Addr()) {
				return &destination.RejectionError{Reason: destination.ErrPrivateAddress, Input: ap.Addr().String()}
			}
			return nil
		},
	}
}
