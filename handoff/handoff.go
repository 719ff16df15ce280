// Package handoff moves values between goroutines under an
// at-most-one-owner-at-a-time contract.
//
// The result package performs no synchronization of its own: a failed
// result, error and trace included, is a plain value owned by exactly one
// goroutine at any instant. This package supplies the transfer primitives
// that contract requires: a hand-off is atomic, the receiving side gains
// exclusive ownership, and the sending side's binding is dead the moment
// Send returns. A sender that touches a failure after handing it off
// violates the single-owner rule; the result package turns such use into
// a panic once the receiver propagates the failure further.
package handoff

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrClosed is returned by Recv when the channel is closed and drained.
var ErrClosed = errors.New("handoff: channel closed")

// Chan is a FIFO hand-off channel. Each value sent is received by exactly
// one goroutine.
type Chan[T any] struct {
	ch        chan T
	closeOnce sync.Once
}

// New allocates a hand-off channel with the given buffer capacity.
func New[T any](capacity int) *Chan[T] {
	return &Chan[T]{ch: make(chan T, capacity)}
}

// Send transfers ownership of v to the eventual receiver, blocking until
// the hand-off completes or ctx is done.
func (c *Chan[T]) Send(ctx context.Context, v T) error {
	select {
	case c.ch <- v:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TrySend attempts the hand-off without blocking. It reports whether
// ownership was transferred.
func (c *Chan[T]) TrySend(v T) bool {
	select {
	case c.ch <- v:
		return true
	default:
		return false
	}
}

// Recv blocks until a value is handed off, the channel is closed and
// drained (ErrClosed), or ctx is done.
func (c *Chan[T]) Recv(ctx context.Context) (T, error) {
	var zero T
	select {
	case v, ok := <-c.ch:
		if !ok {
			return zero, ErrClosed
		}
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// TryRecv attempts a receive without blocking.
func (c *Chan[T]) TryRecv() (T, bool) {
	select {
	case v, ok := <-c.ch:
		if !ok {
			var zero T
			return zero, false
		}
		return v, true
	default:
		var zero T
		return zero, false
	}
}

// Close marks the channel closed. Buffered values can still be received.
// Close is idempotent; only the sending side may call it.
func (c *Chan[T]) Close() {
	c.closeOnce.Do(func() { close(c.ch) })
}

// Cell is a one-shot hand-off point: exactly one Put and exactly one
// successful Take. A second Put, or a second Take after one succeeded,
// is a contract violation and panics.
type Cell[T any] struct {
	ch   chan T
	put  atomic.Bool
	took atomic.Bool
}

// NewCell allocates an empty cell.
func NewCell[T any]() *Cell[T] {
	return &Cell[T]{ch: make(chan T, 1)}
}

// Put stores the value for the single receiver. Never blocks.
func (c *Cell[T]) Put(v T) {
	if !c.put.CompareAndSwap(false, true) {
		panic("handoff: second Put on a Cell")
	}
	c.ch <- v
}

// Take blocks until the value is available or ctx is done. On a context
// error the cell stays takeable.
func (c *Cell[T]) Take(ctx context.Context) (T, error) {
	if !c.took.CompareAndSwap(false, true) {
		panic("handoff: second Take on a Cell")
	}
	var zero T
	select {
	case v := <-c.ch:
		return v, nil
	case <-ctx.Done():
		c.took.Store(false)
		return zero, ctx.Err()
	}
}
