// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package value_test

import (
	"bytes"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"code.hybscloud.com/peerrpc/value"
)

func roundTrip(t *testing.T, v value.Value) value.Value {
	t.Helper()

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := v.EncodeMsgpack(enc); err != nil {
		t.Fatalf("EncodeMsgpack: %v", err)
	}

	var out value.Value
	dec := msgpack.NewDecoder(&buf)
	if err := out.DecodeMsgpack(dec); err != nil {
		t.Fatalf("DecodeMsgpack: %v", err)
	}
	return out
}

func TestRoundTripScalars(t *testing.T) {
	cases := []value.Value{
		value.Null(),
		value.Bool(true),
		value.Bool(false),
		value.Int(-12345),
		value.UInt(12345),
		value.Float(3.5),
		value.Str("hello"),
		value.Bin([]byte{0xde, 0xad, 0xbe, 0xef}),
	}
	for _, c := range cases {
		got := roundTrip(t, c)
		if !value.Equal(got, c) {
			t.Fatalf("round trip mismatch: got %v, want %v", got, c)
		}
	}
}

func TestRoundTripSignDecidesIntVsUInt(t *testing.T) {
	got := roundTrip(t, value.Int(42)) // encoded as a positive int64 ...
	if got.Kind() != value.KindUInt {
		t.Fatalf("positive integer must decode as UInt, got %v", got.Kind())
	}

	got = roundTrip(t, value.UInt(18446744073709551615)) // max uint64
	u, ok := got.AsUInt()
	if !ok || u != 18446744073709551615 {
		t.Fatalf("max uint64 round trip: got %v, ok=%v", u, ok)
	}

	got = roundTrip(t, value.Int(-1))
	if got.Kind() != value.KindInt {
		t.Fatalf("negative integer must decode as Int, got %v", got.Kind())
	}
}

func TestRoundTripListAndMap(t *testing.T) {
	v := value.List(
		value.Int(1),
		value.Map(
			value.Pair{Key: "name", Value: value.Str("peer")},
			value.Pair{Key: "ok", Value: value.Bool(true)},
		),
		value.List(),
	)
	// Int(1) is non-negative, so it comes back as UInt(1).
	want := value.List(
		value.UInt(1),
		value.Map(
			value.Pair{Key: "name", Value: value.Str("peer")},
			value.Pair{Key: "ok", Value: value.Bool(true)},
		),
		value.List(),
	)
	got := roundTrip(t, v)
	if !value.Equal(got, want) {
		t.Fatalf("round trip mismatch: got %v, want %v", got, want)
	}
}

func TestDecodeMapWithNonStringKeyFails(t *testing.T) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	_ = enc.EncodeMapLen(1)
	_ = enc.EncodeInt64(1) // non-string key
	_ = enc.EncodeString("x")

	var out value.Value
	dec := msgpack.NewDecoder(&buf)
	if err := out.DecodeMsgpack(dec); err == nil {
		t.Fatalf("expected decode error for non-string map key")
	}
}
