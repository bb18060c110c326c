// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package service implements the dispatcher (C5): an acceptor-driven peer
// pool that routes inbound requests by "object.method" against a registry
// of explicitly declared handler sets, and fans signal emissions out as
// broadcast events to every connected peer.
package service

import (
	"io"
	"sync"

	"code.hybscloud.com/peerrpc/peer"
	"code.hybscloud.com/peerrpc/value"
)

// Acceptor yields new duplex connections for Serve to wrap into peers.
// *net.TCPListener and friends satisfy this via AcceptFunc, e.g.
// service.AcceptFunc(func() (io.ReadWriteCloser, error) { return ln.Accept() }).
type Acceptor interface {
	Accept() (io.ReadWriteCloser, error)
}

// AcceptFunc adapts a plain function to the Acceptor interface.
type AcceptFunc func() (io.ReadWriteCloser, error)

func (f AcceptFunc) Accept() (io.ReadWriteCloser, error) { return f() }

// Service is the dispatcher: it wraps every accepted stream in a peer,
// tracks the peer in a live-set, and routes that peer's inbound requests
// through the registry.
type Service struct {
	registry *registry
	peerOpts []peer.Option

	mu     sync.Mutex
	closed bool
	peers  map[*peer.Peer]struct{}
}

// New returns an empty Service. peerOpts are applied to every peer Serve
// creates from an accepted connection.
func New(peerOpts ...peer.Option) *Service {
	return &Service{
		registry: newRegistry(),
		peerOpts: peerOpts,
		peers:    make(map[*peer.Peer]struct{}),
	}
}

// Serve accepts connections from acc until Accept returns an error; Serve
// then returns nil if the service has been closed, or that error otherwise.
// Each accepted connection is wrapped in a peer, added to the live-set, and
// wired so inbound requests route through handleRequest. Close does not
// interrupt a blocked Accept; a connection accepted after Close is closed
// right away.
func (s *Service) Serve(acc Acceptor) error {
	for {
		conn, err := acc.Accept()
		if err != nil {
			if s.isClosed() {
				return nil
			}
			return err
		}
		s.adopt(conn)
	}
}

// adopt wraps conn in a peer, wires request routing, and tracks it in the
// live-set until the peer tears down.
func (s *Service) adopt(conn io.ReadWriteCloser) *peer.Peer {
	p := peer.New(conn, s.peerOpts...)
	p.OnNewRequest(s.handleRequest)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = p.Close()
		return p
	}
	s.peers[p] = struct{}{}
	s.mu.Unlock()

	go func() {
		<-p.Done()
		s.mu.Lock()
		delete(s.peers, p)
		s.mu.Unlock()
	}()

	return p
}

func (s *Service) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// PeerCount reports how many peers are currently live.
func (s *Service) PeerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.peers)
}

// RegisterObject binds name to h, subscribing one forwarding goroutine per
// signal source h declares. Re-registering an existing name replaces the
// prior binding; requests already dispatched against the old binding still
// complete against it.
func (s *Service) RegisterObject(name string, h *Handlers) {
	sources := make([]*SignalSource, 0, len(h.Signals))
	for signalName, source := range h.Signals {
		eventName := name + "." + signalName
		sources = append(sources, source)
		go func(source *SignalSource, eventName string) {
			for {
				select {
				case args := <-source.ch:
					s.broadcastEvent(eventName, value.List(args...))
				case <-source.stop:
					return
				}
			}
		}(source, eventName)
	}

	prev := s.registry.put(name, h, func() {
		for _, source := range sources {
			source.close()
		}
	})
	if prev != nil && prev.stopSignals != nil {
		prev.stopSignals()
	}
}

// UnregisterObject removes name's binding and stops its signal broadcasts.
// Unregistering an unknown name is a no-op.
func (s *Service) UnregisterObject(name string) {
	obj := s.registry.remove(name)
	if obj != nil && obj.stopSignals != nil {
		obj.stopSignals()
	}
}

// broadcastEvent sends name/args as an Event to every currently live peer.
// Best-effort: a failed write on one peer does not stop delivery to the
// others.
func (s *Service) broadcastEvent(name string, args value.Value) {
	s.mu.Lock()
	peers := make([]*peer.Peer, 0, len(s.peers))
	for p := range s.peers {
		peers = append(peers, p)
	}
	s.mu.Unlock()

	for _, p := range peers {
		_ = p.SendEvent(name, args)
	}
}

// Close tears the service down in the order the teardown contract
// requires: stop accepting, close every live peer (which rejects their
// pending outbound requests), then drop the registry.
func (s *Service) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	peers := make([]*peer.Peer, 0, len(s.peers))
	for p := range s.peers {
		peers = append(peers, p)
	}
	s.peers = make(map[*peer.Peer]struct{})
	s.mu.Unlock()

	for _, p := range peers {
		_ = p.Close()
	}

	for _, obj := range s.registry.clear() {
		if obj.stopSignals != nil {
			obj.stopSignals()
		}
	}
	return nil
}
