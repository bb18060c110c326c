// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package peer

import (
	"errors"
	"io"
	"runtime"
	"sync"
	"time"

	"code.hybscloud.com/iox"
)

// ErrWriteBufferClosed reports that Enqueue was called after the buffer's
// stream failed or was torn down; the caller should treat this the same as
// any other write failure.
var ErrWriteBufferClosed = errors.New("peer: write buffer closed")

// WriteBuffer absorbs short and would-block writes to an underlying stream:
// Enqueue always appends and returns immediately, order-preserving across
// calls, while a background Run loop drains the queue against the real
// writer, retrying on iox.ErrWouldBlock / iox.ErrMore per retryDelay.
//
// Adapted from the teacher's internal.go writeOnce/waitOnceOnWouldBlock
// retry idiom, generalized from one length-prefixed frame to an arbitrary
// byte queue.
type WriteBuffer struct {
	w          io.Writer
	retryDelay time.Duration

	mu     sync.Mutex
	buf    []byte
	closed bool
	notify chan struct{}
}

// NewWriteBuffer wraps w. retryDelay selects the pacing policy described on
// Options.RetryDelay.
func NewWriteBuffer(w io.Writer, retryDelay time.Duration) *WriteBuffer {
	return &WriteBuffer{
		w:          w,
		retryDelay: retryDelay,
		notify:     make(chan struct{}, 1),
	}
}

// Enqueue appends p to the write queue. Sequential Enqueue calls are
// observed on the wire as the byte concatenation of their arguments, in
// call order, regardless of how much of any one call's bytes were already
// queued versus written.
func (wb *WriteBuffer) Enqueue(p []byte) error {
	wb.mu.Lock()
	if wb.closed {
		wb.mu.Unlock()
		return ErrWriteBufferClosed
	}
	wb.buf = append(wb.buf, p...)
	wb.mu.Unlock()

	select {
	case wb.notify <- struct{}{}:
	default:
	}
	return nil
}

// Run drains the queue until done is closed or the stream reports a fatal
// (non-would-block) error, in which case the queue is discarded and Run
// returns that error. Run is meant to own its own goroutine for the life of
// the Peer.
func (wb *WriteBuffer) Run(done <-chan struct{}) error {
	for {
		wb.mu.Lock()
		for len(wb.buf) == 0 && !wb.closed {
			wb.mu.Unlock()
			select {
			case <-wb.notify:
			case <-done:
				return nil
			}
			wb.mu.Lock()
		}
		if wb.closed {
			wb.mu.Unlock()
			return nil
		}
		p := wb.buf
		wb.mu.Unlock()

		if err := wb.drain(p); err != nil {
			wb.mu.Lock()
			wb.buf = nil
			wb.closed = true
			wb.mu.Unlock()
			return err
		}

		wb.mu.Lock()
		wb.buf = wb.buf[len(p):]
		wb.mu.Unlock()
	}
}

// drain writes all of p, retrying on iox.ErrWouldBlock / iox.ErrMore.
func (wb *WriteBuffer) drain(p []byte) error {
	written := 0
	for written < len(p) {
		n, err := wb.writeOnce(p[written:])
		written += n
		switch {
		case err == nil:
			continue
		case errors.Is(err, iox.ErrWouldBlock) || errors.Is(err, iox.ErrMore):
			wb.pace()
			continue
		default:
			return err
		}
	}
	return nil
}

func (wb *WriteBuffer) writeOnce(p []byte) (int, error) {
	n, err := wb.w.Write(p)
	// Guard against broken Writers that violate the io.Writer contract by
	// returning (0, nil) on a non-empty buffer.
	if len(p) != 0 && n == 0 && err == nil {
		return 0, io.ErrShortWrite
	}
	return n, err
}

func (wb *WriteBuffer) pace() {
	switch {
	case wb.retryDelay > 0:
		time.Sleep(wb.retryDelay)
	default:
		// nonblock (retryDelay <= 0): still yield the processor. This loop
		// has no external caller to hand ErrWouldBlock back to, so on a
		// genuinely non-blocking transport under sustained backpressure a
		// literal spin would hot-loop a core for as long as the peer stays
		// backed up; Gosched keeps the retry immediate without doing that.
		runtime.Gosched()
	}
}
