// Package session implements the session registry of spec.md §4.3: a
// wrapping session-ID allocator plus the pending-reply promise table.
// Grounded in the teacher's transport stream-session bookkeeping
// (transport/tinit.go's nextSessionID atomic counter and per-session
// hashmap), adapted from "one stream per session" to "one pending reply
// per session."
package session

import (
	"sync"

	"github.com/smfrpc/smf-go/cmn/cos"
	"github.com/smfrpc/smf-go/cmn/debug"
	"github.com/smfrpc/smf-go/filter"
)

// Reply is what a Pending resolves with: a filter-processed inbound Call
// Context (spec.md §3).
type Reply struct {
	Ctx *filter.Context
	Err error
}

// Pending is an unresolved promise keyed by session ID (spec.md §3).
type Pending struct {
	ch chan Reply
}

// Wait blocks until the session is resolved or failed.
func (p *Pending) Wait() Reply { return <-p.ch }

// Chan exposes the underlying channel so callers can select on it
// alongside a context's Done channel (spec.md §5 cancellation).
func (p *Pending) Chan() <-chan Reply { return p.ch }

// Registry owns the session-ID counter and the pending-reply table. The
// receive path is single-consumer (spec.md §5: "the reader resolves
// promise"), but the send path (Allocate) and shutdown (FailAll) can run
// concurrently with it from many caller goroutines, so the table is
// mutex-guarded rather than single-threaded the way the teacher's Python
// origin gets away with on one event loop (spec.md §9).
type Registry struct {
	mu      sync.Mutex
	counter uint16
	pending map[uint16]*Pending
}

func NewRegistry() *Registry {
	return &Registry{pending: make(map[uint16]*Pending)}
}

// Allocate assigns a fresh session ID and records a new Pending for it
// (spec.md §4.3). ID 0 is never assigned. On counter overflow, wraps to 1
// (skipping 0). If the candidate ID is already present — a full 65535-slot
// table, vanishingly rare given fast RPC turnover — allocation fails with
// ErrNoSlot; this is a linear probe of size 1 by design (spec.md §4.3).
func (r *Registry) Allocate() (uint16, *Pending, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.counter++
	if r.counter == 0 {
		r.counter = 1
	}
	id := r.counter
	debug.Assert(id != 0, "session: allocated id must never be 0")

	if _, exists := r.pending[id]; exists {
		return 0, nil, &cos.ErrNoSlot{Session: id}
	}
	p := &Pending{ch: make(chan Reply, 1)}
	r.pending[id] = p

	// No two live pending replies may share a session_id (spec.md §3):
	// expensive to check on every allocation, so it's gated behind -tags
	// debug rather than run in production.
	debug.AssertFunc(func() bool {
		seen := make(map[uint16]bool, len(r.pending))
		for sid := range r.pending {
			if seen[sid] {
				return false
			}
			seen[sid] = true
		}
		return true
	}, "session: duplicate pending session id")

	return id, p, nil
}

// Resolve removes the mapping for id and resolves its promise with ctx, or
// reports "unknown session" if id has no pending reply (spec.md §4.3,
// §4.4 step 5).
func (r *Registry) Resolve(id uint16, ctx *filter.Context) error {
	debug.Assert(ctx != nil, "session: resolve requires a non-nil reply context")

	r.mu.Lock()
	p, ok := r.pending[id]
	if ok {
		delete(r.pending, id)
	}
	r.mu.Unlock()

	if !ok {
		return &cos.ErrUnknownSession{Session: id}
	}
	p.ch <- Reply{Ctx: ctx}
	return nil
}

// Cancel removes the mapping for id without resolving anything, for a
// caller that gave up on its call (spec.md §5, §9): a late reply then finds
// no pending entry instead of tripping the UnknownSession protocol
// violation on an orphaned session.
func (r *Registry) Cancel(id uint16) {
	r.mu.Lock()
	delete(r.pending, id)
	r.mu.Unlock()
}

// FailAll removes every mapping and fails each promise with err (spec.md
// §4.3, used by the driver's shutdown path).
func (r *Registry) FailAll(err error) {
	r.mu.Lock()
	pending := r.pending
	r.pending = make(map[uint16]*Pending)
	r.mu.Unlock()

	for _, p := range pending {
		p.ch <- Reply{Err: err}
	}
}

// Len reports the number of currently pending replies, mainly for tests.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
