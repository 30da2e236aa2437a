package tor

import "errors"

// Errors returned while starting or checking the Tor egress.
var (
	// ErrNotRunning is returned when the daemon address is requested
	// before Start succeeded.
	ErrNotRunning = errors.New("embedded Tor daemon is not running")

	// ErrProxyNotSOCKS5 is returned when the address answers but does not
	// complete a SOCKS5 handshake.
	ErrProxyNotSOCKS5 = errors.New("proxy does not speak SOCKS5")

	// ErrProxyCannotConnect is returned when no TCP connection can be made.
	ErrProxyCannotConnect = errors.New("cannot connect to SOCKS5 proxy")

	// ErrProxyTimeout is returned when the handshake does not finish in time.
	ErrProxyTimeout = errors.New("timeout connecting to SOCKS5 proxy")

	// ErrInvalidProxyAddress is returned for addresses not in host:port form.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")
)

// ProxyStatus is the outcome of a SOCKS5 handshake check.
type ProxyStatus int

const (
	// ProxyStatusOK means the handshake and a CONNECT round trip completed.
	ProxyStatusOK ProxyStatus = iota

	// ProxyStatusWrongType means the peer answered with something other
	// than an unauthenticated SOCKS5 handshake.
	ProxyStatusWrongType

	// ProxyStatusCannotConnect means the TCP dial failed.
	ProxyStatusCannotConnect

	// ProxyStatusTimeout means the check ran out of time.
	ProxyStatusTimeout
)

// String returns a human-readable description of the status.
func (s ProxyStatus) String() string {
	switch s {
	case ProxyStatusOK:
		return "OK"
	case ProxyStatusWrongType:
		return "wrong type (not SOCKS5)"
	case ProxyStatusCannotConnect:
		return "cannot connect"
	case ProxyStatusTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Err returns the error for this status, or nil if OK.
func (s ProxyStatus) Err() error {
	switch s {
	case ProxyStatusOK:
		return nil
	case ProxyStatusWrongType:
		return ErrProxyNotSOCKS5
	case ProxyStatusCannotConnect:
		return ErrProxyCannotConnect
	case ProxyStatusTimeout:
		return ErrProxyTimeout
	default:
		return errors.New("unknown proxy status")
	}
}
