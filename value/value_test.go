// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package value_test

import (
	"testing"

	"code.hybscloud.com/peerrpc/value"
)

func TestConstructorsAndAccessors(t *testing.T) {
	if k := value.Null().Kind(); k != value.KindNull {
		t.Fatalf("Null().Kind() = %v, want KindNull", k)
	}
	if b, ok := value.Bool(true).AsBool(); !ok || !b {
		t.Fatalf("Bool(true).AsBool() = %v,%v", b, ok)
	}
	if i, ok := value.Int(-7).AsInt(); !ok || i != -7 {
		t.Fatalf("Int(-7).AsInt() = %v,%v", i, ok)
	}
	if u, ok := value.UInt(7).AsUInt(); !ok || u != 7 {
		t.Fatalf("UInt(7).AsUInt() = %v,%v", u, ok)
	}
	if f, ok := value.Float(1.5).AsFloat(); !ok || f != 1.5 {
		t.Fatalf("Float(1.5).AsFloat() = %v,%v", f, ok)
	}
	if s, ok := value.Str("hi").AsStr(); !ok || s != "hi" {
		t.Fatalf("Str(hi).AsStr() = %v,%v", s, ok)
	}
	if bs, ok := value.Bin([]byte{1, 2, 3}).AsBin(); !ok || len(bs) != 3 {
		t.Fatalf("Bin.AsBin() = %v,%v", bs, ok)
	}
}

func TestMapGet(t *testing.T) {
	m := value.Map(value.Pair{Key: "a", Value: value.Int(1)}, value.Pair{Key: "b", Value: value.Str("x")})

	v, ok := m.MapGet("b")
	if !ok {
		t.Fatalf("MapGet(b) not found")
	}
	if s, ok := v.AsStr(); !ok || s != "x" {
		t.Fatalf("MapGet(b) = %v", v)
	}
	if _, ok := m.MapGet("missing"); ok {
		t.Fatalf("MapGet(missing) unexpectedly found")
	}
}

func TestEqual(t *testing.T) {
	a := value.List(value.Int(1), value.Str("x"), value.Map(value.Pair{Key: "k", Value: value.Bool(true)}))
	b := value.List(value.Int(1), value.Str("x"), value.Map(value.Pair{Key: "k", Value: value.Bool(true)}))
	c := value.List(value.Int(1), value.Str("y"))

	if !value.Equal(a, b) {
		t.Fatalf("Equal(a,b) = false, want true")
	}
	if value.Equal(a, c) {
		t.Fatalf("Equal(a,c) = true, want false")
	}
	if value.Equal(value.Int(1), value.UInt(1)) {
		t.Fatalf("Int(1) must not equal UInt(1): kinds differ")
	}
}
