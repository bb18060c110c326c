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

func TestEncodeDecodeRequest(t *testing.T) {
	want := message.NewRequest(1, "obj.method1", value.List(value.Int(1), value.Int(2)))

	var buf bytes.Buffer
	if err := message.Encode(&buf, want); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := message.Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Kind != message.KindRequest || got.ID != 1 || got.Method != "obj.method1" {
		t.Fatalf("got %+v", got)
	}
	// Non-negative integers decode as UInt.
	wantArgs := value.List(value.UInt(1), value.UInt(2))
	if !value.Equal(got.Args, wantArgs) {
		t.Fatalf("args mismatch: got %v want %v", got.Args, wantArgs)
	}
}

func TestEncodeDecodeResponse(t *testing.T) {
	want := message.NewResponse(7, value.Str("TEST"))

	var buf bytes.Buffer
	if err := message.Encode(&buf, want); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := message.Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Kind != message.KindResponse || got.ID != 7 {
		t.Fatalf("got %+v", got)
	}
	if s, ok := got.Result.AsStr(); !ok || s != "TEST" {
		t.Fatalf("result = %v", got.Result)
	}
}

func TestEncodeDecodeError(t *testing.T) {
	want := message.NewError(5, "RPC object not found")

	var buf bytes.Buffer
	if err := message.Encode(&buf, want); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := message.Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Kind != message.KindError || got.ID != 5 || got.Error != "RPC object not found" {
		t.Fatalf("got %+v", got)
	}
}

func TestEncodeDecodeEvent(t *testing.T) {
	want := message.NewEvent("obj.signal2", value.List(value.Int(42), value.Str("Hello World")))

	var buf bytes.Buffer
	if err := message.Encode(&buf, want); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := message.Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Kind != message.KindEvent || got.Name != "obj.signal2" {
		t.Fatalf("got %+v", got)
	}
	// Non-negative integers decode as UInt.
	wantArgs := value.List(value.UInt(42), value.Str("Hello World"))
	if !value.Equal(got.Args, wantArgs) {
		t.Fatalf("args mismatch: got %v want %v", got.Args, wantArgs)
	}
}

func TestDecodeUnknownKindTagIsMalformed(t *testing.T) {
	var buf bytes.Buffer
	_ = message.Encode(&buf, message.NewEvent("x", value.Null()))
	raw := buf.Bytes()
	raw[1] = 0x09 // overwrite the kind tag with an unknown value

	_, err := message.Decode(bytes.NewReader(raw))
	if !errors.Is(err, message.ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestDecodeWrongArityIsMalformed(t *testing.T) {
	// A Response frame (kind=2) encoded as a 2-element array is invalid: a
	// Response must carry 3 elements (kind, id, result).
	var buf bytes.Buffer
	_ = message.Encode(&buf, message.NewEvent("x", value.Null()))
	raw := buf.Bytes()
	raw[0] = 0x92 // rewrite fixarray-3 header to fixarray-2
	raw[1] = 0x02 // kind = Response

	_, err := message.Decode(bytes.NewReader(raw))
	if !errors.Is(err, message.ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}
