// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package message encodes and decodes the four wire frames carried by a
// peer connection, each a self-delimiting MessagePack array tagged by a
// leading kind integer.
package message

import (
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"code.hybscloud.com/peerrpc/value"
)

// Kind is the leading wire tag of a frame.
type Kind uint8

const (
	KindRequest  Kind = 1
	KindResponse Kind = 2
	KindError    Kind = 3
	KindEvent    Kind = 4
)

func (k Kind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindResponse:
		return "response"
	case KindError:
		return "error"
	case KindEvent:
		return "event"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ErrMalformed reports a frame that could not be parsed as one of the four
// known shapes: wrong array arity, an unknown kind tag, or a field of the
// wrong wire type. Per the decoder contract this is always fatal to the
// stream it was read from.
var ErrMalformed = errors.New("message: malformed frame")

// Message is one decoded (or to-be-encoded) frame. Only the fields for its
// Kind are meaningful; the rest are zero.
type Message struct {
	Kind Kind

	// Request
	Method string
	Args   value.Value
	ID     uint64

	// Response
	Result value.Value

	// Error
	Error string

	// Event
	Name string
}

func NewRequest(id uint64, method string, args value.Value) Message {
	return Message{Kind: KindRequest, ID: id, Method: method, Args: args}
}

func NewResponse(id uint64, result value.Value) Message {
	return Message{Kind: KindResponse, ID: id, Result: result}
}

func NewError(id uint64, message string) Message {
	return Message{Kind: KindError, ID: id, Error: message}
}

func NewEvent(name string, args value.Value) Message {
	return Message{Kind: KindEvent, Name: name, Args: args}
}

// Encode writes m to w as a single MessagePack array frame.
func Encode(w io.Writer, m Message) error {
	enc := msgpack.NewEncoder(w)
	return encodeTo(enc, m)
}

func encodeTo(enc *msgpack.Encoder, m Message) error {
	switch m.Kind {
	case KindRequest:
		if err := enc.EncodeArrayLen(4); err != nil {
			return err
		}
		if err := enc.EncodeUint64(uint64(KindRequest)); err != nil {
			return err
		}
		if err := enc.EncodeString(m.Method); err != nil {
			return err
		}
		if err := m.Args.EncodeMsgpack(enc); err != nil {
			return err
		}
		return enc.EncodeUint64(m.ID)

	case KindResponse:
		if err := enc.EncodeArrayLen(3); err != nil {
			return err
		}
		if err := enc.EncodeUint64(uint64(KindResponse)); err != nil {
			return err
		}
		if err := enc.EncodeUint64(m.ID); err != nil {
			return err
		}
		return m.Result.EncodeMsgpack(enc)

	case KindError:
		if err := enc.EncodeArrayLen(3); err != nil {
			return err
		}
		if err := enc.EncodeUint64(uint64(KindError)); err != nil {
			return err
		}
		if err := enc.EncodeUint64(m.ID); err != nil {
			return err
		}
		return enc.EncodeString(m.Error)

	case KindEvent:
		if err := enc.EncodeArrayLen(3); err != nil {
			return err
		}
		if err := enc.EncodeUint64(uint64(KindEvent)); err != nil {
			return err
		}
		if err := enc.EncodeString(m.Name); err != nil {
			return err
		}
		return m.Args.EncodeMsgpack(enc)

	default:
		return fmt.Errorf("%w: unknown kind %d", ErrMalformed, m.Kind)
	}
}

// decodeFrom reads exactly one frame from dec. Errors that indicate the
// byte window is merely incomplete (io.EOF / io.ErrUnexpectedEOF) are
// returned unwrapped so callers doing incremental feeding can tell them
// apart from ErrMalformed.
func decodeFrom(dec *msgpack.Decoder) (Message, error) {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return Message{}, fieldErr("frame array header", err)
	}

	tag, err := dec.DecodeUint64()
	if err != nil {
		return Message{}, fieldErr("kind tag", err)
	}

	switch Kind(tag) {
	case KindRequest:
		if n != 4 {
			return Message{}, fmt.Errorf("%w: request array has %d elements, want 4", ErrMalformed, n)
		}
		method, err := dec.DecodeString()
		if err != nil {
			return Message{}, fieldErr("request.method", err)
		}
		var args value.Value
		if err := args.DecodeMsgpack(dec); err != nil {
			return Message{}, fieldErr("request.args", err)
		}
		id, err := dec.DecodeUint64()
		if err != nil {
			return Message{}, fieldErr("request.id", err)
		}
		return NewRequest(id, method, args), nil

	case KindResponse:
		if n != 3 {
			return Message{}, fmt.Errorf("%w: response array has %d elements, want 3", ErrMalformed, n)
		}
		id, err := dec.DecodeUint64()
		if err != nil {
			return Message{}, fieldErr("response.id", err)
		}
		var result value.Value
		if err := result.DecodeMsgpack(dec); err != nil {
			return Message{}, fieldErr("response.result", err)
		}
		return NewResponse(id, result), nil

	case KindError:
		if n != 3 {
			return Message{}, fmt.Errorf("%w: error array has %d elements, want 3", ErrMalformed, n)
		}
		id, err := dec.DecodeUint64()
		if err != nil {
			return Message{}, fieldErr("error.id", err)
		}
		msg, err := dec.DecodeString()
		if err != nil {
			return Message{}, fieldErr("error.message", err)
		}
		return NewError(id, msg), nil

	case KindEvent:
		if n != 3 {
			return Message{}, fmt.Errorf("%w: event array has %d elements, want 3", ErrMalformed, n)
		}
		name, err := dec.DecodeString()
		if err != nil {
			return Message{}, fieldErr("event.name", err)
		}
		var args value.Value
		if err := args.DecodeMsgpack(dec); err != nil {
			return Message{}, fieldErr("event.args", err)
		}
		return NewEvent(name, args), nil

	default:
		return Message{}, fmt.Errorf("%w: unknown kind tag %d", ErrMalformed, tag)
	}
}

// fieldErr reports a field-level decode failure. Truncation errors
// (io.EOF / io.ErrUnexpectedEOF, meaning the byte window simply doesn't
// hold a complete frame yet) are passed through unwrapped so an incremental
// decoder can tell "need more bytes" apart from ErrMalformed; anything else
// (a genuine type mismatch) is wrapped as fatal.
func fieldErr(field string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", ErrMalformed, field, err)
}

// Decode reads exactly one frame from r.
func Decode(r io.Reader) (Message, error) {
	dec := msgpack.NewDecoder(r)
	return decodeFrom(dec)
}
