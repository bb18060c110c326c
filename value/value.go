// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package value implements the dynamic tagged-union value type carried by
// every RPC message: arguments, results, error payloads, and event data.
//
// A Value maps exactly onto MessagePack's type system: positive integers
// decode to UInt, negative integers to Int, and the remaining MessagePack
// families (bool, float, str, bin, array, map, nil) each have exactly one
// corresponding Kind. There is no separate "number" kind that blurs Int and
// UInt, and no way to construct a Value outside this set.
package value

import "fmt"

// Kind discriminates which field of a Value is populated.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindUInt
	KindFloat
	KindStr
	KindBin
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUInt:
		return "uint"
	case KindFloat:
		return "float"
	case KindStr:
		return "str"
	case KindBin:
		return "bin"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Pair is one entry of a Map value. Order is preserved on the wire; lookup
// by key is linear.
type Pair struct {
	Key   string
	Value Value
}

// Value is a dynamic, MessagePack-shaped value. The zero Value is Null.
type Value struct {
	kind Kind
	b    bool
	i    int64
	u    uint64
	f    float64
	s    string
	bin  []byte
	list []Value
	mp   []Pair
}

// Kind reports which variant this Value holds.
func (v Value) Kind() Kind { return v.kind }

func Null() Value { return Value{kind: KindNull} }

func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

func Int(i int64) Value { return Value{kind: KindInt, i: i} }

func UInt(u uint64) Value { return Value{kind: KindUInt, u: u} }

func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

func Str(s string) Value { return Value{kind: KindStr, s: s} }

func Bin(b []byte) Value {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Value{kind: KindBin, bin: cp}
}

func List(items ...Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: KindList, list: cp}
}

func Map(pairs ...Pair) Value {
	cp := make([]Pair, len(pairs))
	copy(cp, pairs)
	return Value{kind: KindMap, mp: cp}
}

// IsNull reports whether v is the Null value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the bool payload and whether v is a Bool.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsInt returns the int64 payload and whether v is an Int.
func (v Value) AsInt() (int64, bool) { return v.i, v.kind == KindInt }

// AsUInt returns the uint64 payload and whether v is a UInt.
func (v Value) AsUInt() (uint64, bool) { return v.u, v.kind == KindUInt }

// AsFloat returns the float64 payload and whether v is a Float.
func (v Value) AsFloat() (float64, bool) { return v.f, v.kind == KindFloat }

// AsStr returns the string payload and whether v is a Str.
func (v Value) AsStr() (string, bool) { return v.s, v.kind == KindStr }

// AsBin returns the byte-slice payload and whether v is a Bin.
func (v Value) AsBin() ([]byte, bool) { return v.bin, v.kind == KindBin }

// AsList returns the element slice and whether v is a List.
func (v Value) AsList() ([]Value, bool) { return v.list, v.kind == KindList }

// AsMap returns the pair slice and whether v is a Map.
func (v Value) AsMap() ([]Pair, bool) { return v.mp, v.kind == KindMap }

// MapGet looks up key in a Map value by linear scan. ok is false if v is not
// a Map or the key is absent.
func (v Value) MapGet(key string) (Value, bool) {
	if v.kind != KindMap {
		return Value{}, false
	}
	for _, p := range v.mp {
		if p.Key == key {
			return p.Value, true
		}
	}
	return Value{}, false
}

// Equal reports deep structural equality. List elements compare in order;
// Map pairs compare by key, regardless of their order.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindInt:
		return a.i == b.i
	case KindUInt:
		return a.u == b.u
	case KindFloat:
		return a.f == b.f
	case KindStr:
		return a.s == b.s
	case KindBin:
		return bytesEqual(a.bin, b.bin)
	case KindList:
		if len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if !Equal(a.list[i], b.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(a.mp) != len(b.mp) {
			return false
		}
		for _, p := range a.mp {
			bv, ok := b.MapGet(p.Key)
			if !ok || !Equal(p.Value, bv) {
				return false
			}
		}
		for _, p := range b.mp {
			if _, ok := a.MapGet(p.Key); !ok {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindUInt:
		return fmt.Sprintf("%d", v.u)
	case KindFloat:
		return fmt.Sprintf("%g", v.f)
	case KindStr:
		return v.s
	case KindBin:
		return fmt.Sprintf("bin(%d bytes)", len(v.bin))
	case KindList:
		return fmt.Sprintf("list(%d items)", len(v.list))
	case KindMap:
		return fmt.Sprintf("map(%d pairs)", len(v.mp))
	default:
		return "invalid"
	}
}
