// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package message

import (
	"bytes"
	"errors"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Decoder is an incremental parser over an append-only byte window. Bytes
// arrive via Feed in whatever chunks the transport delivers them; Feed
// returns every complete frame the accumulated window now holds. There is
// no length-prefix framing to resume from mid-message — each Feed call
// simply retries a full decode of the buffered bytes, which is cheap at
// RPC-frame scale.
//
// A decode failure other than "not enough bytes yet" is fatal: per the
// frame-codec contract a malformed frame ends the stream, so a Decoder
// does not attempt to resynchronize past it.
type Decoder struct {
	buf []byte
}

// NewDecoder returns an empty incremental decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed appends b to the decode window and returns every frame that can now
// be fully parsed. A non-nil error is always fatal: the caller must stop
// feeding this Decoder and tear down the owning stream.
func (d *Decoder) Feed(b []byte) ([]Message, error) {
	d.buf = append(d.buf, b...)

	var out []Message
	for len(d.buf) > 0 {
		r := bytes.NewReader(d.buf)
		dec := msgpack.NewDecoder(r)

		msg, err := decodeFrom(dec)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				// Window doesn't hold a complete frame yet; wait for more bytes.
				break
			}
			return out, err
		}

		consumed := len(d.buf) - r.Len()
		d.buf = d.buf[consumed:]
		out = append(out, msg)
	}
	return out, nil
}

// Buffered reports how many unparsed bytes remain in the window.
func (d *Decoder) Buffered() int { return len(d.buf) }
