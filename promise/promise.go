// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package promise implements a generic single-resolution future: at-most-
// once resolve or reject, with synchronous chaining (Then/Fail) and a
// blocking Wait for test and CLI callers.
package promise

import "sync"

// Promise is a single-resolution future over a value of type T. The zero
// value is not usable; construct one with New.
type Promise[T any] struct {
	mu      sync.Mutex
	settled bool
	done    chan struct{}
	value   T
	err     error
}

// New returns an unsettled Promise together with the resolve/reject
// functions that settle it. Only the first call between resolve and
// reject (and only the first call to whichever is called first) has any
// effect; later calls are silently ignored, matching the at-most-once
// contract.
func New[T any]() (p *Promise[T], resolve func(T), reject func(error)) {
	p = &Promise[T]{done: make(chan struct{})}
	return p, p.resolve, p.reject
}

// Resolved returns an already-settled Promise holding v.
func Resolved[T any](v T) *Promise[T] {
	p := &Promise[T]{done: make(chan struct{}), settled: true, value: v}
	close(p.done)
	return p
}

// Rejected returns an already-settled Promise holding err.
func Rejected[T any](err error) *Promise[T] {
	p := &Promise[T]{done: make(chan struct{}), settled: true, err: err}
	close(p.done)
	return p
}

func (p *Promise[T]) resolve(v T) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.settled {
		return
	}
	p.settled = true
	p.value = v
	close(p.done)
}

func (p *Promise[T]) reject(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.settled {
		return
	}
	p.settled = true
	p.err = err
	close(p.done)
}

// Wait blocks until p settles and returns its value or error.
func (p *Promise[T]) Wait() (T, error) {
	<-p.done
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value, p.err
}

// Settled reports whether p has already resolved or rejected, without
// blocking.
func (p *Promise[T]) Settled() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Done returns a channel that closes when p settles, for use in select
// statements alongside other readiness signals.
func (p *Promise[T]) Done() <-chan struct{} { return p.done }

// Then chains a synchronous transform onto p's fulfillment. The returned
// Promise settles with onOK's return value once p resolves, propagates
// p's rejection unchanged, or rejects if on_ok itself returns an error.
func Then[T, U any](p *Promise[T], onOK func(T) (U, error)) *Promise[U] {
	out, resolve, reject := New[U]()
	go func() {
		v, err := p.Wait()
		if err != nil {
			reject(err)
			return
		}
		u, err := onOK(v)
		if err != nil {
			reject(err)
			return
		}
		resolve(u)
	}()
	return out
}

// Fail attaches a recovery hook to p's rejection. The returned Promise
// settles with onErr's translated value if p rejects, or passes through
// p's fulfilled value unchanged.
func Fail[T any](p *Promise[T], onErr func(error) (T, error)) *Promise[T] {
	out, resolve, reject := New[T]()
	go func() {
		v, err := p.Wait()
		if err == nil {
			resolve(v)
			return
		}
		v2, err2 := onErr(err)
		if err2 != nil {
			reject(err2)
			return
		}
		resolve(v2)
	}()
	return out
}

// All resolves, once every input Promise has resolved, with a slice
// preserving input order. Inputs are awaited one by one in input order, and
// All rejects as soon as the input it is waiting on rejects, with that
// input's error; a later input's rejection is not seen until every input
// before it has resolved.
func All[T any](ps []*Promise[T]) *Promise[[]T] {
	out, resolve, reject := New[[]T]()
	go func() {
		results := make([]T, len(ps))
		for i, p := range ps {
			v, err := p.Wait()
			if err != nil {
				reject(err)
				return
			}
			results[i] = v
		}
		resolve(results)
	}()
	return out
}
