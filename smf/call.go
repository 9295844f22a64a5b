package smf

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/smfrpc/smf-go/cmn/cos"
	"github.com/smfrpc/smf-go/cmn/debug"
	"github.com/smfrpc/smf-go/filter"
	"github.com/smfrpc/smf-go/header"
)

// Call issues a request and awaits its reply (spec.md §4.4). It allocates
// a session, runs the outgoing filter pipeline, writes the frame, then
// blocks for the correlated reply — which the background reader
// dispatches by session ID, in whatever order the peer sends it (spec.md
// §8 scenario 2).
//
// Call fails synchronously with ErrConnectionClosed if the connection is
// already closed or closing, and with the terminal reader cause if the
// reader fails before the reply arrives.
func (c *Connection) Call(ctx context.Context, payload []byte, funcID uint32) ([]byte, uint32, error) {
	if cause, terminated := c.terminalCause(); terminated {
		return nil, 0, cause
	}
	if c.closedByUser.Load() {
		// Close() was called but the reader hasn't observed it yet
		// (state.Closing in spec.md §4.4's table): still fail synchronously
		// rather than let the write race the socket teardown.
		return nil, 0, cos.ErrConnectionClosed
	}

	id, pending, err := c.reg.Allocate()
	if err != nil {
		return nil, 0, err
	}

	octx := &filter.Context{
		Payload:     payload,
		Meta:        funcID,
		Session:     id,
		Compression: uint8(header.CompressionNone),
	}
	if err := c.out.Apply(octx); err != nil {
		c.reg.Cancel(id)
		return nil, 0, errors.Wrap(err, "smf: outgoing filter")
	}

	if err := c.send(octx); err != nil {
		c.reg.Cancel(id)
		return nil, 0, errors.Wrap(err, "smf: write")
	}

	select {
	case reply := <-pending.Chan():
		if reply.Err != nil {
			return nil, 0, reply.Err
		}
		if err := c.in.Apply(reply.Ctx); err != nil {
			return nil, 0, errors.Wrap(err, "smf: incoming filter")
		}
		return reply.Ctx.Payload, reply.Ctx.Meta, nil
	case <-ctx.Done():
		// The caller gave up: reclaim the session so a late reply finds
		// no pending entry instead of tripping UnknownSession and
		// poisoning the connection for everybody else (spec.md §5, §9).
		c.reg.Cancel(id)
		return nil, 0, fmt.Errorf("%w: %w", cos.ErrCancelled, ctx.Err())
	}
}

// send writes one frame: header immediately followed by payload, under a
// single lock so no other caller's frame interleaves (spec.md §5
// "Ordering guarantees"). net.Conn.Write has no userspace buffering to
// flush — TCP_NODELAY (set by Dial) is what spec.md §5's "flush must
// complete before awaiting the reply" amounts to in this transport.
func (c *Connection) send(ctx *filter.Context) error {
	hdr := header.Encode(header.Compression(ctx.Compression), ctx.Session, ctx.Meta, ctx.Payload)

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.writeLocked(hdr, ctx.Payload)
}

// writeLocked writes hdr immediately followed by payload.
// PRECONDITION: c.writeMu must be locked.
func (c *Connection) writeLocked(hdr, payload []byte) error {
	debug.AssertMutexLocked(&c.writeMu)

	if _, err := c.conn.Write(hdr); err != nil {
		return err
	}
	if len(payload) > 0 {
		if _, err := c.conn.Write(payload); err != nil {
			return err
		}
	}
	return nil
}
