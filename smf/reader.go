package smf

import (
	"io"

	"github.com/pkg/errors"

	"github.com/smfrpc/smf-go/cmn/cos"
	"github.com/smfrpc/smf-go/cmn/debug"
	"github.com/smfrpc/smf-go/cmn/nlog"
	"github.com/smfrpc/smf-go/filter"
	"github.com/smfrpc/smf-go/header"
)

// readLoop is the reader task of spec.md §4.4: decode a header, read its
// payload, verify the checksum, and dispatch to the pending caller by
// session ID. Any error is fatal and terminates the connection. This is
// the only goroutine that ever reads from c.conn, which is what lets
// session_id -> promise resolution go lock-free on the receive side
// (spec.md §4.4 "Rationale").
func (c *Connection) readLoop() {
	defer close(c.readerDone)

	hdrBuf := make([]byte, header.Size)
	for {
		if _, err := io.ReadFull(c.conn, hdrBuf); err != nil {
			c.terminate(errors.Wrap(err, "smf: read header"))
			return
		}

		h, err := header.Decode(hdrBuf)
		if err != nil {
			c.terminate(err)
			return
		}

		payload := make([]byte, h.Size)
		if _, err := io.ReadFull(c.conn, payload); err != nil {
			// Header decoded fine but the payload didn't arrive whole
			// (connection reset mid-frame): no partial-frame
			// resynchronization is attempted (spec.md §9) — the stream is
			// assumed frame-aligned and this desync is fatal.
			c.terminate(errors.Wrap(err, "smf: read payload"))
			return
		}
		debug.Assert(uint32(len(payload)) == h.Size, "smf: read payload length must equal header.size")

		if got := cos.Checksum(payload); got != h.Checksum {
			c.terminate(&cos.ErrChecksumMismatch{Want: h.Checksum, Got: got})
			return
		}

		compression := h.Compression
		if compression == header.CompressionDisabled {
			compression = header.CompressionNone
		}
		ctx := &filter.Context{
			Payload:     payload,
			Meta:        h.Meta,
			Session:     h.Session,
			Compression: uint8(compression),
		}

		if debug.ON() {
			nlog.Infof("smf[%s]: recv session=%d meta=%d size=%d compression=%d", c.id, h.Session, h.Meta, h.Size, compression)
		}

		if err := c.reg.Resolve(h.Session, ctx); err != nil {
			// UnknownSession: a fatal protocol violation (spec.md §4.4
			// step 5, §9 — the source does not reliably remove a session
			// on caller cancellation, but this driver does via
			// session.Registry.Cancel, so a late reply hitting this path
			// means the peer echoed a session we never allocated).
			c.terminate(err)
			return
		}
	}
}
