// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package peer

import (
	"sync"

	"code.hybscloud.com/peerrpc/value"
)

// settleFunc resolves (err == nil) or rejects a pending outbound request.
type settleFunc func(v value.Value, err error)

// pendingMap is a peer's outstanding-request table, keyed by request id.
// Grounded on jrpc2.Client.pending / juju/rpc.Conn.clientPending: a single
// mutex-guarded map, deliver-and-delete on a matching reply, reject-all on
// teardown.
type pendingMap struct {
	mu sync.Mutex
	m  map[uint64]settleFunc
}

func newPendingMap(capHint int) *pendingMap {
	if capHint < 0 {
		capHint = 0
	}
	return &pendingMap{m: make(map[uint64]settleFunc, capHint)}
}

func (pm *pendingMap) register(id uint64, settle settleFunc) {
	pm.mu.Lock()
	pm.m[id] = settle
	pm.mu.Unlock()
}

// deliver settles and removes the entry for id, if one exists. It reports
// whether a matching entry was found; an unmatched id (e.g. a reply for a
// request that was never sent) is not an error, just a no-op.
func (pm *pendingMap) deliver(id uint64, v value.Value, err error) bool {
	pm.mu.Lock()
	settle, ok := pm.m[id]
	if ok {
		delete(pm.m, id)
	}
	pm.mu.Unlock()
	if ok {
		settle(v, err)
	}
	return ok
}

// rejectAll empties the map, rejecting every remaining entry with err. Used
// exactly once, on peer teardown.
func (pm *pendingMap) rejectAll(err error) {
	pm.mu.Lock()
	m := pm.m
	pm.m = make(map[uint64]settleFunc)
	pm.mu.Unlock()

	for _, settle := range m {
		settle(value.Value{}, err)
	}
}
