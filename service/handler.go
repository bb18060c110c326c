// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package service

import (
	"fmt"
	"math"

	"code.hybscloud.com/peerrpc/promise"
	"code.hybscloud.com/peerrpc/value"
)

// HandlerFunc is the explicit, non-reflective per-method handler contract:
// it receives the request's normalized positional argument list and
// returns a Result. Object sets declare these directly (see §9's
// re-architect-as-explicit-registry note) rather than exposing methods for
// reflective discovery.
type HandlerFunc func(args []value.Value) Result

type resultKind uint8

const (
	resultOk resultKind = iota
	resultErr
	resultAsync
)

// Result is a handler's outcome: an immediate value, an immediate error
// message, or a promise to chain through before the wire reply is sent.
type Result struct {
	kind   resultKind
	ok     value.Value
	errMsg string
	async  *promise.Promise[value.Value]
}

// Ok produces an immediately-resolved Result.
func Ok(v value.Value) Result { return Result{kind: resultOk, ok: v} }

// Err produces an immediately-rejected Result.
func Err(message string) Result { return Result{kind: resultErr, errMsg: message} }

// Async produces a Result that settles once p does: resolve on fulfillment,
// reject with p's error's message on rejection. The dispatcher MUST NOT
// send a wire reply before p settles.
func Async(p *promise.Promise[value.Value]) Result { return Result{kind: resultAsync, async: p} }

// Bind0 adapts a zero-argument handler. Extra args (if any) are ignored,
// matching the dispatcher's arity contract.
func Bind0(fn func() Result) HandlerFunc {
	return func(args []value.Value) Result {
		return fn()
	}
}

// Bind1 adapts a one-argument typed handler, coercing args[0] to A per the
// dispatcher's numeric widen/narrow rules.
func Bind1[A any](fn func(A) Result) HandlerFunc {
	return func(args []value.Value) Result {
		if len(args) < 1 {
			return Err("insufficient arguments")
		}
		a, err := coerceTo[A](args[0])
		if err != nil {
			return Err(err.Error())
		}
		return fn(a)
	}
}

// Bind2 adapts a two-argument typed handler.
func Bind2[A, B any](fn func(A, B) Result) HandlerFunc {
	return func(args []value.Value) Result {
		if len(args) < 2 {
			return Err("insufficient arguments")
		}
		a, err := coerceTo[A](args[0])
		if err != nil {
			return Err(err.Error())
		}
		b, err := coerceTo[B](args[1])
		if err != nil {
			return Err(err.Error())
		}
		return fn(a, b)
	}
}

// Bind3 adapts a three-argument typed handler.
func Bind3[A, B, C any](fn func(A, B, C) Result) HandlerFunc {
	return func(args []value.Value) Result {
		if len(args) < 3 {
			return Err("insufficient arguments")
		}
		a, err := coerceTo[A](args[0])
		if err != nil {
			return Err(err.Error())
		}
		b, err := coerceTo[B](args[1])
		if err != nil {
			return Err(err.Error())
		}
		c, err := coerceTo[C](args[2])
		if err != nil {
			return Err(err.Error())
		}
		return fn(a, b, c)
	}
}

// coerceTo implements the dispatcher's coercion table for one declared
// parameter type T: exact kind match or value.Value passthrough, integer
// widen/narrow between Int and UInt, integer-to-float always, float-to-
// integer only when exact, and no automatic string<->bytes conversion.
//
// Hand-rolled rather than reflective: no value-conversion library in the
// pack expresses this exact rule set, and reflect.Value-based coercion is
// what the explicit-registry redesign (§9) moves away from.
func coerceTo[T any](v value.Value) (T, error) {
	var zero T
	switch p := any(&zero).(type) {
	case *value.Value:
		*p = v
		return zero, nil
	case *bool:
		b, err := coerceBool(v)
		if err != nil {
			return zero, err
		}
		*p = b
		return zero, nil
	case *int:
		i, err := coerceInt(v)
		if err != nil {
			return zero, err
		}
		*p = int(i)
		return zero, nil
	case *int64:
		i, err := coerceInt(v)
		if err != nil {
			return zero, err
		}
		*p = i
		return zero, nil
	case *uint:
		u, err := coerceUint(v)
		if err != nil {
			return zero, err
		}
		*p = uint(u)
		return zero, nil
	case *uint64:
		u, err := coerceUint(v)
		if err != nil {
			return zero, err
		}
		*p = u
		return zero, nil
	case *float32:
		f, err := coerceFloat(v)
		if err != nil {
			return zero, err
		}
		*p = float32(f)
		return zero, nil
	case *float64:
		f, err := coerceFloat(v)
		if err != nil {
			return zero, err
		}
		*p = f
		return zero, nil
	case *string:
		s, err := coerceString(v)
		if err != nil {
			return zero, err
		}
		*p = s
		return zero, nil
	default:
		return zero, fmt.Errorf("cannot convert %s to %T", v.Kind(), zero)
	}
}

func coerceBool(v value.Value) (bool, error) {
	if v.Kind() != value.KindBool {
		return false, fmt.Errorf("cannot convert %s to bool", v.Kind())
	}
	b, _ := v.AsBool()
	return b, nil
}

func coerceInt(v value.Value) (int64, error) {
	switch v.Kind() {
	case value.KindInt:
		i, _ := v.AsInt()
		return i, nil
	case value.KindUInt:
		u, _ := v.AsUInt()
		if u > math.MaxInt64 {
			return 0, fmt.Errorf("cannot convert %s to int: value out of range", v.Kind())
		}
		return int64(u), nil
	case value.KindFloat:
		f, _ := v.AsFloat()
		i := int64(f)
		if float64(i) != f {
			return 0, fmt.Errorf("cannot convert %s to int: not an exact integer", v.Kind())
		}
		return i, nil
	default:
		return 0, fmt.Errorf("cannot convert %s to int", v.Kind())
	}
}

func coerceUint(v value.Value) (uint64, error) {
	switch v.Kind() {
	case value.KindUInt:
		u, _ := v.AsUInt()
		return u, nil
	case value.KindInt:
		i, _ := v.AsInt()
		if i < 0 {
			return 0, fmt.Errorf("cannot convert %s to uint: negative value", v.Kind())
		}
		return uint64(i), nil
	case value.KindFloat:
		f, _ := v.AsFloat()
		if f < 0 {
			return 0, fmt.Errorf("cannot convert %s to uint: negative value", v.Kind())
		}
		u := uint64(f)
		if float64(u) != f {
			return 0, fmt.Errorf("cannot convert %s to uint: not an exact integer", v.Kind())
		}
		return u, nil
	default:
		return 0, fmt.Errorf("cannot convert %s to uint", v.Kind())
	}
}

func coerceFloat(v value.Value) (float64, error) {
	switch v.Kind() {
	case value.KindFloat:
		f, _ := v.AsFloat()
		return f, nil
	case value.KindInt:
		i, _ := v.AsInt()
		return float64(i), nil
	case value.KindUInt:
		u, _ := v.AsUInt()
		return float64(u), nil
	default:
		return 0, fmt.Errorf("cannot convert %s to float", v.Kind())
	}
}

func coerceString(v value.Value) (string, error) {
	if v.Kind() != value.KindStr {
		return "", fmt.Errorf("cannot convert %s to string", v.Kind())
	}
	s, _ := v.AsStr()
	return s, nil
}
