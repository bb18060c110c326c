// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package peer

import "time"

// Options configures a Peer's write-drain pacing and pending-map sizing.
type Options struct {
	// RetryDelay controls how the write-drain goroutine and the read pump
	// pace retries when the underlying stream returns iox.ErrWouldBlock /
	// iox.ErrMore:
	//   - negative: nonblock, retry immediately after a cooperative yield
	//   - zero: yield (runtime.Gosched) and retry
	//   - positive: sleep for the duration and retry
	// Unlike a bare transport primitive, the drain goroutine always owns the
	// retry loop to completion; RetryDelay only changes how it waits, not
	// whether it gives up, since nothing else would resume the drain. The
	// negative case still yields (unlike a literal busy-spin) because,
	// without an external caller to hand WouldBlock back to, a genuinely
	// non-blocking transport under sustained backpressure would otherwise
	// monopolize a core for as long as the peer is backed up.
	RetryDelay time.Duration

	// PendingCapacityHint presizes the pending-response map.
	PendingCapacityHint int
}

var defaultOptions = Options{
	RetryDelay:          -1, // nonblock: immediate retry, still yielding
	PendingCapacityHint: 16,
}

type Option func(*Options)

// WithRetryDelay sets the write-drain pacing policy explicitly.
func WithRetryDelay(d time.Duration) Option {
	return func(o *Options) { o.RetryDelay = d }
}

// WithBlock selects cooperative yield-and-retry pacing.
func WithBlock() Option {
	return func(o *Options) { o.RetryDelay = 0 }
}

// WithNonblock selects immediate-retry pacing (the default).
func WithNonblock() Option {
	return func(o *Options) { o.RetryDelay = -1 }
}

// WithPendingCapacityHint presizes the pending-response map for peers that
// expect to keep roughly n requests outstanding at once.
func WithPendingCapacityHint(n int) Option {
	return func(o *Options) { o.PendingCapacityHint = n }
}
