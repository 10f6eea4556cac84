// Package glcontext lends secondary graphics contexts to worker
// goroutines uploading GPU resources.
//
// The pool is bounded: Acquire blocks on a condition variable until a
// context is free or the caller's context is done. Work already running
// on the main thread uses the main context and gets an immediate no-op
// lease. Releasing a context first tells its state tracker that the
// thread is letting go of it, so no cached pipeline state is trusted by
// the next holder.
package glcontext

import (
	"context"
	"errors"
	"sync"

	"github.com/dshills/scenedit/internal/gpu"
)

// ErrClosed is returned by Acquire after Close.
var ErrClosed = errors.New("glcontext: provider closed")

// Context is a secondary graphics context.
type Context struct {
	// ID is the pool slot, starting at 1. The main context has ID 0.
	ID int

	// Tracker caches pipeline state for this context.
	Tracker gpu.StateTracker
}

// MakeCurrentFunc binds c to the calling thread, or unbinds it when c
// is nil.
type MakeCurrentFunc func(c *Context) error

type mainThreadKey struct{}

// WithMainThread marks ctx as running on the main thread.
func WithMainThread(ctx context.Context) context.Context {
	return context.WithValue(ctx, mainThreadKey{}, true)
}

// OnMainThread reports whether ctx was marked by WithMainThread.
func OnMainThread(ctx context.Context) bool {
	v, _ := ctx.Value(mainThreadKey{}).(bool)
	return v
}

// Provider is a bounded pool of secondary contexts.
type Provider struct {
	mu      sync.Mutex
	cond    *sync.Cond
	free    []*Context
	size    int
	waiting int
	closed  bool

	makeCurrent MakeCurrentFunc
}

// Option configures a Provider.
type Option func(*Provider)

// WithMakeCurrent sets the hook binding contexts to worker threads.
func WithMakeCurrent(fn MakeCurrentFunc) Option {
	return func(p *Provider) {
		p.makeCurrent = fn
	}
}

// NewProvider returns a pool of size contexts. newTracker creates the
// state tracker of each context and may be nil.
func NewProvider(size int, newTracker func(id int) gpu.StateTracker, opts ...Option) *Provider {
	p := &Provider{size: size}
	p.cond = sync.NewCond(&p.mu)
	for i := 1; i <= size; i++ {
		c := &Context{ID: i}
		if newTracker != nil {
			c.Tracker = newTracker(i)
		}
		p.free = append(p.free, c)
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Lease is a borrowed context. Release must be called exactly once.
type Lease struct {
	p    *Provider
	ctx  *Context
	once sync.Once
}

// Context returns the leased context, nil for a main-thread lease.
func (l *Lease) Context() *Context {
	return l.ctx
}

// Main reports whether the lease is a main-thread no-op.
func (l *Lease) Main() bool {
	return l.ctx == nil
}

// Release returns the context to the pool.
func (l *Lease) Release() {
	if l.ctx == nil {
		return
	}
	l.once.Do(func() { l.p.release(l.ctx) })
}

// Acquire borrows a context, blocking until one is free. On the main
// thread it returns a no-op lease immediately.
func (p *Provider) Acquire(ctx context.Context) (*Lease, error) {
	if OnMainThread(ctx) {
		return &Lease{p: p}, nil
	}

	stop := context.AfterFunc(ctx, func() {
		p.mu.Lock()
		p.cond.Broadcast()
		p.mu.Unlock()
	})
	defer stop()

	p.mu.Lock()
	p.waiting++
	for len(p.free) == 0 && !p.closed && ctx.Err() == nil {
		p.cond.Wait()
	}
	p.waiting--
	if p.closed {
		p.mu.Unlock()
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		p.mu.Unlock()
		return nil, err
	}
	c := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	p.mu.Unlock()

	if p.makeCurrent != nil {
		if err := p.makeCurrent(c); err != nil {
			p.put(c)
			return nil, err
		}
	}
	return &Lease{p: p, ctx: c}, nil
}

// Do runs fn with a borrowed context.
func (p *Provider) Do(ctx context.Context, fn func(c *Context) error) error {
	l, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer l.Release()
	return fn(l.ctx)
}

func (p *Provider) release(c *Context) {
	if c.Tracker != nil {
		c.Tracker.OnThreadExit()
	}
	if p.makeCurrent != nil {
		_ = p.makeCurrent(nil)
	}
	p.put(c)
}

func (p *Provider) put(c *Context) {
	p.mu.Lock()
	p.free = append(p.free, c)
	p.cond.Signal()
	p.mu.Unlock()
}

// Size returns the pool capacity.
func (p *Provider) Size() int {
	return p.size
}

// Available returns the number of free contexts.
func (p *Provider) Available() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}

// Waiting returns the number of goroutines blocked in Acquire.
func (p *Provider) Waiting() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.waiting
}

// Close wakes every waiter with ErrClosed. Leased contexts may still be
// released.
func (p *Provider) Close() {
	p.mu.Lock()
	p.closed = true
	p.cond.Broadcast()
	p.mu.Unlock()
}
