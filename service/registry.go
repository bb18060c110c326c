// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package service

import "sync"

// Handlers is the full handler set registered under one name: a method
// table plus the signal sources the service should broadcast as events.
type Handlers struct {
	Methods map[string]HandlerFunc
	Signals map[string]*SignalSource
}

// RegisteredObject is one entry in the service's bijective name<->object
// index.
type RegisteredObject struct {
	Name     string
	Handlers *Handlers

	// stopSignals tears down the goroutines forwarding this object's
	// SignalSources as broadcast events. Set by Service.RegisterObject.
	stopSignals func()
}

// registry holds the service's name->object and object->name indices. An
// object may be registered under exactly one name at a time; re-
// registering a name replaces the prior binding without disturbing
// requests already dispatched against it.
type registry struct {
	mu       sync.Mutex
	byName   map[string]*RegisteredObject
	byObject map[*Handlers]string
}

func newRegistry() *registry {
	return &registry{
		byName:   make(map[string]*RegisteredObject),
		byObject: make(map[*Handlers]string),
	}
}

// put inserts or replaces the binding for name, returning the entry it
// replaced (if any) so the caller can tear down its signal subscriptions.
func (r *registry) put(name string, h *Handlers, stopSignals func()) (prev *RegisteredObject) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.byName[name]; ok {
		delete(r.byObject, old.Handlers)
		prev = old
	}
	obj := &RegisteredObject{Name: name, Handlers: h, stopSignals: stopSignals}
	r.byName[name] = obj
	r.byObject[h] = name
	return prev
}

// remove deletes name's binding from both indices. Removing an unknown
// name is a no-op (returns nil).
func (r *registry) remove(name string) *RegisteredObject {
	r.mu.Lock()
	defer r.mu.Unlock()
	obj, ok := r.byName[name]
	if !ok {
		return nil
	}
	delete(r.byName, name)
	delete(r.byObject, obj.Handlers)
	return obj
}

func (r *registry) lookup(name string) (*RegisteredObject, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	obj, ok := r.byName[name]
	return obj, ok
}

// clear empties both indices and returns every object that was registered,
// so the caller can stop their signal subscriptions.
func (r *registry) clear() []*RegisteredObject {
	r.mu.Lock()
	defer r.mu.Unlock()
	objs := make([]*RegisteredObject, 0, len(r.byName))
	for _, o := range r.byName {
		objs = append(objs, o)
	}
	r.byName = make(map[string]*RegisteredObject)
	r.byObject = make(map[*Handlers]string)
	return objs
}
