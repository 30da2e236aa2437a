package tor

import (
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"time"
)

// DefaultCheckTimeout bounds a SOCKS5 handshake check.
const DefaultCheckTimeout = 2 * time.Second

// SOCKS5 protocol constants (RFC 1928).
const (
	socks5Version       = 0x05
	socks5AuthNone      = 0x00
	socks5CmdConnect    = 0x01
	socks5AddrTypeDomID = 0x03

	// checkTargetHost is only named in the CONNECT request; whether the
	// proxy reaches it does not matter, any well-formed reply passes.
	checkTargetHost = "example.com"
	checkTargetPort = 80
)

// ValidateAddress reports whether address is a usable "host:port".
func ValidateAddress(address string) error {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return ErrInvalidProxyAddress
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return ErrInvalidProxyAddress
	}
	return nil
}

// CheckSOCKS5 performs an unauthenticated SOCKS5 handshake against address
// followed by a CONNECT request, and classifies the result.
//
// A proxy that answers the CONNECT with any SOCKS5 reply, including a
// failure code, is considered working: it parsed and processed the
// request, which is all a health check can ask of it.
func CheckSOCKS5(ctx context.Context, address string, timeout time.Duration) ProxyStatus {
	if timeout <= 0 {
		timeout = DefaultCheckTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ProxyStatusTimeout
		}
		return ProxyStatusCannotConnect
	}
	defer conn.Close()

	deadline, _ := ctx.Deadline()
	if err := conn.SetDeadline(deadline); err != nil {
		return ProxyStatusCannotConnect
	}

	if _, err := conn.Write([]byte{socks5Version, 0x01, socks5AuthNone}); err != nil {
		return ProxyStatusCannotConnect
	}

	authResp := make([]byte, 2)
	if _, err := io.ReadFull(conn, authResp); err != nil {
		return readFailure(err)
	}
	if authResp[0] != socks5Version || authResp[1] != socks5AuthNone {
		return ProxyStatusWrongType
	}

	req := []byte{socks5Version, socks5CmdConnect, 0x00, socks5AddrTypeDomID, byte(len(checkTargetHost))}
	req = append(req, checkTargetHost...)
	req = append(req, byte(checkTargetPort>>8), byte(checkTargetPort&0xFF))
	if _, err := conn.Write(req); err != nil {
		return ProxyStatusCannotConnect
	}

	// version + reply + reserved + address type
	connectResp := make([]byte, 4)
	if _, err := io.ReadFull(conn, connectResp); err != nil {
		return readFailure(err)
	}
	if connectResp[0] != socks5Version {
		return ProxyStatusWrongType
	}
	return ProxyStatusOK
}

func readFailure(err error) ProxyStatus {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ProxyStatusTimeout
	}
	return ProxyStatusWrongType
}
