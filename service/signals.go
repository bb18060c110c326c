// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package service

import (
	"sync"

	"code.hybscloud.com/peerrpc/value"
)

// SignalSource is a channel-based signal emitter that a registered
// object's Handlers exposes. Each Emit call becomes one broadcast Event,
// named "{object}.{signal}", carrying the emitted arguments as a List, to
// every peer live when the service's forwarding goroutine picks it up.
type SignalSource struct {
	ch       chan []value.Value
	stop     chan struct{}
	stopOnce sync.Once
}

// NewSignalSource returns a SignalSource ready to register under a
// Handlers.Signals entry.
func NewSignalSource() *SignalSource {
	return &SignalSource{
		ch:   make(chan []value.Value),
		stop: make(chan struct{}),
	}
}

// Emit blocks until the service's forwarding goroutine accepts args, or
// until the source is unregistered (closed), whichever comes first. A
// closed source silently drops the emission: its object is no longer
// registered, so there is nowhere to broadcast to.
func (s *SignalSource) Emit(args ...value.Value) {
	select {
	case s.ch <- args:
	case <-s.stop:
	}
}

// close stops the source: its forwarding goroutine exits and any Emit
// blocked on or arriving after this point returns immediately instead of
// hanging. Safe to call more than once (RegisterObject replacing a
// binding and UnregisterObject removing it can both reach the same
// source's teardown).
func (s *SignalSource) close() {
	s.stopOnce.Do(func() { close(s.stop) })
}
