// Package smf is the public SMF RPC client: the connection driver of
// spec.md §4.4 wired to the header, filter, and session packages.
// Grounded in the teacher's transport.Stream lifecycle (sendLoop/cmplLoop,
// the term struct, gc-driven cleanup in transport/sendmsg.go) adapted from
// "one goroutine owns an outbound object stream" to "one goroutine owns
// the inbound half of a full-duplex RPC connection, many callers share the
// outbound half."
package smf

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/smfrpc/smf-go/cmn/cos"
	"github.com/smfrpc/smf-go/cmn/nlog"
	"github.com/smfrpc/smf-go/filter"
	"github.com/smfrpc/smf-go/session"
)

// Config mirrors the teacher's transport.Extra: an optional-knobs struct
// passed at construction rather than a global package config.
type Config struct {
	// Out and In are the outgoing and incoming filter pipelines applied to
	// every call (spec.md §4.2). Either may be nil/empty.
	Out filter.Pipeline
	In  filter.Pipeline

	// Timeout bounds the TCP connect in Dial. Zero means "no timeout";
	// negative is rejected as ErrInvalidTimeout (spec.md §6).
	Timeout time.Duration
}

// Connection is a single full-duplex SMF session multiplexer: many
// goroutines may call Call concurrently; one background reader goroutine
// owns the receive half (spec.md §5).
type Connection struct {
	id   string
	conn net.Conn

	out filter.Pipeline
	in  filter.Pipeline
	reg *session.Registry

	writeMu sync.Mutex

	closedByUser atomic.Bool
	readerDone   chan struct{}

	causeMu sync.Mutex
	cause   error
	once    sync.Once
}

// NewConnection wraps an already-established duplex stream (conn) in the
// SMF protocol driver and starts its background reader. conn is typically
// produced by Dial, but any net.Conn works — spec.md §1 treats socket
// acquisition as an external collaborator.
func NewConnection(conn net.Conn, cfg Config) *Connection {
	c := &Connection{
		id:         uuid.NewString(),
		conn:       conn,
		out:        cfg.Out,
		in:         cfg.In,
		reg:        session.NewRegistry(),
		readerDone: make(chan struct{}),
	}
	go c.readLoop()
	return c
}

// Close cancels the reader, closes the underlying stream, and marks the
// connection closed. Idempotent; does not block (spec.md §4.4).
func (c *Connection) Close() {
	if !c.closedByUser.CompareAndSwap(false, true) {
		return
	}
	nlog.Infof("smf[%s]: close requested", c.id)
	_ = c.conn.Close()
}

// WaitClosed blocks until the reader has terminated, the underlying stream
// is closed, and every pending call has been failed (spec.md §4.4). Safe
// to call multiple times and from multiple goroutines.
func (c *Connection) WaitClosed() {
	<-c.readerDone
}

// terminate runs exactly once per connection: it captures the terminal
// cause, closes the stream (idempotent — Close may have already done
// this), and fails every still-pending call (spec.md §7, §8). A cause
// observed while the user already called Close is normalized to
// ErrConnectionClosed, per spec.md §4.4's "reader must translate
// cancellation into ConnectionClosed."
func (c *Connection) terminate(cause error) {
	c.once.Do(func() {
		if c.closedByUser.Load() {
			cause = cos.ErrConnectionClosed
		}
		c.causeMu.Lock()
		c.cause = cause
		c.causeMu.Unlock()

		_ = c.conn.Close()
		c.reg.FailAll(cause)

		if cos.IsRetriableConnErr(errors.Cause(cause)) {
			nlog.Warningf("smf[%s]: terminated: %v", c.id, cause)
		} else {
			nlog.Errorf("smf[%s]: terminated: %v", c.id, cause)
		}
	})
}

// terminalCause reports the captured cause, if the reader has already
// terminated.
func (c *Connection) terminalCause() (error, bool) {
	select {
	case <-c.readerDone:
	default:
		return nil, false
	}
	c.causeMu.Lock()
	defer c.causeMu.Unlock()
	return c.cause, true
}
