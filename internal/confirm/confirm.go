package confirm

import (
	"context"
	"sync/atomic"

	"github.com/voidworks/modsync/internal/domain"
)

// Kind distinguishes what a confirmation request is about
type Kind string

const (
	KindUpdate  Kind = "update"
	KindRemoval Kind = "removal"
)

// Request is one pending confirmation. It is correlated by the change's
// relative path plus a monotonic sequence number, so a surface can match
// answers to questions without relying on object identity.
type Request struct {
	Seq    uint64
	Kind   Kind
	Change domain.FileChange

	reply chan bool
}

// Answer resolves the request. Calling Answer more than once is safe;
// only the first call counts.
func (r *Request) Answer(allowed bool) {
	select {
	case r.reply <- allowed:
	default:
	}
}

// Bridge hands confirmation questions from a sync worker to the surface
// that can answer them (a terminal prompt, a UI thread). Ask blocks the
// worker until the surface answers, giving the synchronous rendezvous
// the executor expects without any busy polling.
type Bridge struct {
	seq      atomic.Uint64
	requests chan *Request
}

// NewBridge creates a bridge. buffer is the number of questions that may
// sit unanswered before Ask blocks on the send itself; 0 is fine.
func NewBridge(buffer int) *Bridge {
	return &Bridge{requests: make(chan *Request, buffer)}
}

// Requests is the surface side: receive a request, render it, call
// Answer on it.
func (b *Bridge) Requests() <-chan *Request {
	return b.requests
}

// Ask submits a question and blocks until it is answered or ctx is
// done. A cancelled context counts as "no".
func (b *Bridge) Ask(ctx context.Context, kind Kind, change domain.FileChange) bool {
	req := &Request{
		Seq:    b.seq.Add(1),
		Kind:   kind,
		Change: change,
		reply:  make(chan bool, 1),
	}

	select {
	case b.requests <- req:
	case <-ctx.Done():
		return false
	}

	select {
	case allowed := <-req.reply:
		return allowed
	case <-ctx.Done():
		return false
	}
}

// Func adapts the bridge to the executor's callback shape for one kind
func (b *Bridge) Func(ctx context.Context, kind Kind) func(domain.FileChange) bool {
	return func(change domain.FileChange) bool {
		return b.Ask(ctx, kind, change)
	}
}
