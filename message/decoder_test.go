// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package message_test

import (
	"bytes"
	"errors"
	"testing"

	"code.hybscloud.com/peerrpc/message"
	"code.hybscloud.com/peerrpc/value"
)

func encodeAll(t *testing.T, msgs ...message.Message) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, m := range msgs {
		if err := message.Encode(&buf, m); err != nil {
			t.Fatalf("Encode: %v", err)
		}
	}
	return buf.Bytes()
}

func TestDecoderFeedsWholeFramesAtOnce(t *testing.T) {
	raw := encodeAll(t,
		message.NewRequest(1, "obj.method1", value.List(value.Int(1), value.Int(2))),
		message.NewEvent("obj.signal2", value.List(value.Int(42))),
	)

	dec := message.NewDecoder()
	got, err := dec.Feed(raw)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d messages, want 2", len(got))
	}
	if got[0].Kind != message.KindRequest || got[1].Kind != message.KindEvent {
		t.Fatalf("got %+v", got)
	}
	if dec.Buffered() != 0 {
		t.Fatalf("Buffered() = %d, want 0", dec.Buffered())
	}
}

func TestDecoderFeedsByteAtATime(t *testing.T) {
	raw := encodeAll(t,
		message.NewRequest(1, "obj.method1", value.List(value.Int(1), value.Int(2))),
		message.NewResponse(1, value.Int(3)),
	)

	dec := message.NewDecoder()
	var got []message.Message
	for _, b := range raw {
		msgs, err := dec.Feed([]byte{b})
		if err != nil {
			t.Fatalf("Feed: %v", err)
		}
		got = append(got, msgs...)
	}
	if len(got) != 2 {
		t.Fatalf("got %d messages, want 2", len(got))
	}
	if got[0].Method != "obj.method1" {
		t.Fatalf("got[0] = %+v", got[0])
	}
	if got[1].ID != 1 {
		t.Fatalf("got[1] = %+v", got[1])
	}
}

func TestDecoderMalformedFrameIsFatal(t *testing.T) {
	raw := encodeAll(t, message.NewEvent("x", value.Null()))
	raw[1] = 0x09 // unknown kind tag

	dec := message.NewDecoder()
	_, err := dec.Feed(raw)
	if !errors.Is(err, message.ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}
