// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package peer

import "errors"

var (
	// ErrClosed is returned by send operations that don't carry a promise
	// (SendEvent) once a peer has already transitioned to Closed.
	ErrClosed = errors.New("peer: closed")

	// ErrDestroyed is the rejection reason given to every pending outbound
	// request, and any newly attempted one, once a peer tears down.
	ErrDestroyed = errors.New("peer destroyed before response")
)
