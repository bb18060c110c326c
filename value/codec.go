// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package value

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// MessagePack leading-byte ranges, per the msgpack spec. Dispatch is done on
// these rather than a generic Decode, since the tagged union below doesn't
// map onto a single Go struct that msgpack's reflection-based path could
// populate.
const (
	mpNil     = 0xc0
	mpFalse   = 0xc2
	mpTrue    = 0xc3
	mpBin8    = 0xc4
	mpBin16   = 0xc5
	mpBin32   = 0xc6
	mpFloat32 = 0xca
	mpFloat64 = 0xcb
	mpUint8   = 0xcc
	mpUint16  = 0xcd
	mpUint32  = 0xce
	mpUint64  = 0xcf
	mpInt8    = 0xd0
	mpInt16   = 0xd1
	mpInt32   = 0xd2
	mpInt64   = 0xd3
	mpStr8    = 0xd9
	mpStr16   = 0xda
	mpStr32   = 0xdb
	mpArray16 = 0xdc
	mpArray32 = 0xdd
	mpMap16   = 0xde
	mpMap32   = 0xdf
)

func isPositiveFixint(c byte) bool { return c <= 0x7f }
func isNegativeFixint(c byte) bool { return c >= 0xe0 }
func isFixmap(c byte) bool         { return c&0xf0 == 0x80 }
func isFixarray(c byte) bool       { return c&0xf0 == 0x90 }
func isFixstr(c byte) bool         { return c&0xe0 == 0xa0 }

// EncodeMsgpack implements msgpack.CustomEncoder.
func (v Value) EncodeMsgpack(enc *msgpack.Encoder) error {
	switch v.kind {
	case KindNull:
		return enc.EncodeNil()
	case KindBool:
		return enc.EncodeBool(v.b)
	case KindInt:
		return enc.EncodeInt64(v.i)
	case KindUInt:
		return enc.EncodeUint64(v.u)
	case KindFloat:
		return enc.EncodeFloat64(v.f)
	case KindStr:
		return enc.EncodeString(v.s)
	case KindBin:
		return enc.EncodeBytes(v.bin)
	case KindList:
		if err := enc.EncodeArrayLen(len(v.list)); err != nil {
			return err
		}
		for _, e := range v.list {
			if err := e.EncodeMsgpack(enc); err != nil {
				return err
			}
		}
		return nil
	case KindMap:
		if err := enc.EncodeMapLen(len(v.mp)); err != nil {
			return err
		}
		for _, p := range v.mp {
			if err := enc.EncodeString(p.Key); err != nil {
				return err
			}
			if err := p.Value.EncodeMsgpack(enc); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("value: cannot encode value with invalid kind %d", v.kind)
	}
}

// DecodeMsgpack implements msgpack.CustomDecoder. It maps each MessagePack
// wire type onto exactly one Kind; an encoded integer's sign (not its wire
// family) decides Int versus UInt, and a map with a non-string key is a
// decode error, not a silently-dropped entry.
func (v *Value) DecodeMsgpack(dec *msgpack.Decoder) error {
	code, err := dec.PeekCode()
	if err != nil {
		return err
	}

	switch {
	case code == mpNil:
		if err := dec.DecodeNil(); err != nil {
			return err
		}
		*v = Null()
		return nil

	case code == mpFalse || code == mpTrue:
		b, err := dec.DecodeBool()
		if err != nil {
			return err
		}
		*v = Bool(b)
		return nil

	case isPositiveFixint(code) || isNegativeFixint(code) ||
		code == mpUint8 || code == mpUint16 || code == mpUint32 || code == mpUint64 ||
		code == mpInt8 || code == mpInt16 || code == mpInt32 || code == mpInt64:
		return v.decodeInt(dec, code)

	case code == mpFloat32 || code == mpFloat64:
		f, err := dec.DecodeFloat64()
		if err != nil {
			return err
		}
		*v = Float(f)
		return nil

	case isFixstr(code) || code == mpStr8 || code == mpStr16 || code == mpStr32:
		s, err := dec.DecodeString()
		if err != nil {
			return err
		}
		*v = Str(s)
		return nil

	case code == mpBin8 || code == mpBin16 || code == mpBin32:
		b, err := dec.DecodeBytes()
		if err != nil {
			return err
		}
		*v = Bin(b)
		return nil

	case isFixarray(code) || code == mpArray16 || code == mpArray32:
		return v.decodeList(dec)

	case isFixmap(code) || code == mpMap16 || code == mpMap32:
		return v.decodeMap(dec)

	default:
		return fmt.Errorf("value: unsupported messagepack type code 0x%02x", code)
	}
}

func (v *Value) decodeInt(dec *msgpack.Decoder, code byte) error {
	switch code {
	case mpUint8, mpUint16, mpUint32, mpUint64:
		u, err := dec.DecodeUint64()
		if err != nil {
			return err
		}
		*v = UInt(u)
		return nil
	}
	if isPositiveFixint(code) {
		u, err := dec.DecodeUint64()
		if err != nil {
			return err
		}
		*v = UInt(u)
		return nil
	}

	i, err := dec.DecodeInt64()
	if err != nil {
		return err
	}
	if i < 0 {
		*v = Int(i)
	} else {
		*v = UInt(uint64(i))
	}
	return nil
}

func (v *Value) decodeList(dec *msgpack.Decoder) error {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return err
	}
	items := make([]Value, n)
	for i := 0; i < n; i++ {
		if err := items[i].DecodeMsgpack(dec); err != nil {
			return err
		}
	}
	*v = Value{kind: KindList, list: items}
	return nil
}

func (v *Value) decodeMap(dec *msgpack.Decoder) error {
	n, err := dec.DecodeMapLen()
	if err != nil {
		return err
	}
	pairs := make([]Pair, n)
	for i := 0; i < n; i++ {
		key, err := dec.DecodeString()
		if err != nil {
			return fmt.Errorf("value: map key is not a string: %w", err)
		}
		var val Value
		if err := val.DecodeMsgpack(dec); err != nil {
			return err
		}
		pairs[i] = Pair{Key: key, Value: val}
	}
	*v = Value{kind: KindMap, mp: pairs}
	return nil
}
