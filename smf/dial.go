package smf

import (
	"context"
	"net"

	"github.com/pkg/errors"

	"github.com/smfrpc/smf-go/cmn/cos"
	"github.com/smfrpc/smf-go/cmn/debug"
)

// Connect is the public create_connection of spec.md §6: it dials
// address, tunes the resulting TCP socket, and hands it to NewConnection.
// TCP_NODELAY/SO_KEEPALIVE tuning and host:port parsing are treated as the
// small external collaborators spec.md §1 names them as — this function
// is their one caller, not a reimplementation of either.
func Connect(ctx context.Context, address string, cfg Config) (*Connection, error) {
	if cfg.Timeout < 0 {
		return nil, cos.ErrInvalidTimeout
	}
	if err := cos.ParseAddress(address); err != nil {
		return nil, err
	}

	d := net.Dialer{Timeout: cfg.Timeout}
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, errors.Wrapf(err, "smf: dial %s", address)
	}

	if tc, ok := conn.(*net.TCPConn); ok {
		debug.AssertNoErr(tc.SetNoDelay(true))
		debug.AssertNoErr(tc.SetKeepAlive(true))
	}

	return NewConnection(conn, cfg), nil
}
