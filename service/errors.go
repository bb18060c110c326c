// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package service

import "errors"

// ErrClosed is returned by Serve once the service has been closed.
var ErrClosed = errors.New("service: closed")

// These two are wire-visible: their Error() text is sent verbatim as the
// Error frame's message, so unlike this module's other sentinel errors
// they carry no package prefix.
var (
	ErrObjectNotFound = errors.New("RPC object not found")
	ErrMethodNotFound = errors.New("RPC method not found")
)
