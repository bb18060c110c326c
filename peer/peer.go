// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package peer implements the two-state (Open/Closed) connection that
// correlates outstanding requests with their responses, surfaces inbound
// requests and events to caller-supplied handlers, and multiplexes all
// four frame kinds over one duplex byte stream.
package peer

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"code.hybscloud.com/iox"

	"code.hybscloud.com/peerrpc/message"
	"code.hybscloud.com/peerrpc/promise"
	"code.hybscloud.com/peerrpc/value"
)

// RequestHandler receives one inbound Request. It must eventually call
// exactly one of resolve or reject; calling both, or neither, is a program
// error (the peer guards against a double wire reply, but does not detect
// "neither").
type RequestHandler func(method string, args value.Value, resolve func(value.Value), reject func(string))

// EventHandler receives one inbound Event notification.
type EventHandler func(name string, args value.Value)

// Peer is a duplex RPC connection. The zero Peer is not usable; construct
// one with New.
//
// Grounded on jrpc2.Client's accept/deliverLocked read-pump-by-id shape and
// juju/rpc.Conn's input/loop teardown (reject every pending call when the
// read loop ends), reworked onto goroutines+mutexes instead of this
// module's single-threaded reactor model (see the concurrency notes this
// module carries forward).
type Peer struct {
	wb *WriteBuffer
	r  io.Reader

	nextID  uint64
	pending *pendingMap

	handlerMu sync.RWMutex
	onRequest RequestHandler
	onEvent   EventHandler

	mu       sync.Mutex
	closed   bool
	closeErr error

	closeOnce sync.Once
	stopDrain chan struct{}
	drainDone chan struct{}
	readDone  chan struct{}
}

// New wraps rw as a Peer and immediately starts its read pump and its
// write-drain goroutine.
func New(rw io.ReadWriter, opts ...Option) *Peer {
	o := defaultOptions
	for _, fn := range opts {
		fn(&o)
	}

	p := &Peer{
		wb:        NewWriteBuffer(rw, o.RetryDelay),
		r:         rw,
		pending:   newPendingMap(o.PendingCapacityHint),
		stopDrain: make(chan struct{}),
		drainDone: make(chan struct{}),
		readDone:  make(chan struct{}),
	}

	go func() {
		defer close(p.drainDone)
		if err := p.wb.Run(p.stopDrain); err != nil {
			p.teardown(err)
		}
	}()
	go func() {
		defer close(p.readDone)
		p.readPump()
	}()

	return p
}

// OnNewRequest installs the callback invoked for every inbound Request. It
// may be called at any time; the most recently installed handler applies
// to requests dispatched afterward.
func (p *Peer) OnNewRequest(h RequestHandler) {
	p.handlerMu.Lock()
	p.onRequest = h
	p.handlerMu.Unlock()
}

// OnNewEvent installs the callback invoked for every inbound Event.
func (p *Peer) OnNewEvent(h EventHandler) {
	p.handlerMu.Lock()
	p.onEvent = h
	p.handlerMu.Unlock()
}

// SendRequest allocates the next request id, writes a Request frame, and
// returns a promise that resolves on the matching Response, rejects on the
// matching Error, and rejects with ErrDestroyed if the peer tears down
// first.
func (p *Peer) SendRequest(method string, args value.Value) *promise.Promise[value.Value] {
	if p.isClosed() {
		return promise.Rejected[value.Value](ErrDestroyed)
	}

	id := atomic.AddUint64(&p.nextID, 1)
	pr, resolve, reject := promise.New[value.Value]()
	p.pending.register(id, func(v value.Value, err error) {
		if err != nil {
			reject(err)
			return
		}
		resolve(v)
	})

	if err := p.send(message.NewRequest(id, method, args)); err != nil {
		p.pending.deliver(id, value.Value{}, err)
	}
	return pr
}

// SendEvent writes an Event frame. There is no completion handle: this is
// fire-and-forget, except that it reports ErrClosed if the peer has
// already torn down.
func (p *Peer) SendEvent(name string, args value.Value) error {
	if p.isClosed() {
		return ErrClosed
	}
	return p.send(message.NewEvent(name, args))
}

func (p *Peer) send(m message.Message) error {
	var buf bytes.Buffer
	if err := message.Encode(&buf, m); err != nil {
		return err
	}
	return p.wb.Enqueue(buf.Bytes())
}

func (p *Peer) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Close tears the peer down: no more frames are read or written, and every
// pending outbound request is rejected with ErrDestroyed. Close blocks
// until both background goroutines have exited.
func (p *Peer) Close() error {
	p.teardown(ErrDestroyed)
	<-p.readDone
	<-p.drainDone
	return nil
}

// Done returns a channel that closes once the peer has torn down, for any
// reason: an explicit Close, a read-pump I/O or decode error, or a
// write-buffer I/O error.
func (p *Peer) Done() <-chan struct{} { return p.readDone }

// Err returns the error that caused teardown (ErrDestroyed for an explicit
// Close, or the underlying I/O / decode error for a stream failure), or
// nil if the peer is still open.
func (p *Peer) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeErr
}

// teardown is the single path from Open to Closed. It is idempotent: the
// first caller (an explicit Close, a read-pump I/O or decode error, or a
// write-buffer I/O error) wins, and every pending outbound request is
// rejected exactly once, with the teardown reason (always ErrDestroyed,
// whatever the cause; Err reports the cause). This rejection is local and
// never sent on the wire.
func (p *Peer) teardown(cause error) {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.closeErr = cause
		p.mu.Unlock()

		close(p.stopDrain)
		if c, ok := p.r.(io.Closer); ok {
			_ = c.Close()
		}
		p.pending.rejectAll(ErrDestroyed)
	})
}

func (p *Peer) readPump() {
	dec := message.NewDecoder()
	buf := make([]byte, 4096)
	for {
		n, err := p.r.Read(buf)
		if n > 0 {
			msgs, derr := dec.Feed(buf[:n])
			for _, m := range msgs {
				p.dispatch(m)
			}
			if derr != nil {
				p.teardown(derr)
				return
			}
		}
		if err != nil {
			if errors.Is(err, iox.ErrWouldBlock) || errors.Is(err, iox.ErrMore) {
				if p.isClosed() {
					return
				}
				p.wb.pace()
				continue
			}
			p.teardown(err)
			return
		}
	}
}

func (p *Peer) dispatch(m message.Message) {
	switch m.Kind {
	case message.KindResponse:
		p.pending.deliver(m.ID, m.Result, nil)

	case message.KindError:
		p.pending.deliver(m.ID, value.Value{}, errors.New(m.Error))

	case message.KindRequest:
		p.handlerMu.RLock()
		h := p.onRequest
		p.handlerMu.RUnlock()
		if h == nil {
			return
		}

		id := m.ID
		var once sync.Once
		resolve := func(v value.Value) {
			once.Do(func() {
				_ = p.send(message.NewResponse(id, v))
			})
		}
		reject := func(msg string) {
			once.Do(func() {
				_ = p.send(message.NewError(id, msg))
			})
		}
		h(m.Method, m.Args, resolve, reject)

	case message.KindEvent:
		p.handlerMu.RLock()
		h := p.onEvent
		p.handlerMu.RUnlock()
		if h != nil {
			h(m.Name, m.Args)
		}
	}
}
