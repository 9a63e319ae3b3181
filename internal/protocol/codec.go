package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

var (
	ErrEmptyFrame  = errors.New("empty frame")
	ErrUnknownType = errors.New("unknown message type")
)

// Codec turns outbound messages into frames and inbound frames into
// validated messages.
type Codec interface {
	Name() string
	// Binary reports whether frames must be sent as binary websocket messages.
	Binary() bool
	Encode(msg any) ([]byte, error)
	Decode(data []byte) (Inbound, error)
}

var (
	JSON    Codec = jsonCodec{}
	Msgpack Codec = msgpackCodec{}
)

// CodecByName returns the codec for a ?codec= query value, defaulting to JSON.
func CodecByName(name string) Codec {
	if strings.EqualFold(name, Msgpack.Name()) {
		return Msgpack
	}
	return JSON
}

// frame is the loosely typed shape every inbound message is first decoded
// into. Field types are checked afterwards so bad values coerce instead of
// failing the whole message.
type frame struct {
	Type string `json:"type"`
	Name any    `json:"name"`
	Mode any    `json:"mode"`
	VX   any    `json:"vx"`
	VY   any    `json:"vy"`
	T    any    `json:"t"`
}

type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }
func (jsonCodec) Binary() bool { return false }

func (jsonCodec) Encode(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Decode(data []byte) (Inbound, error) {
	if len(data) == 0 {
		return Inbound{}, ErrEmptyFrame
	}
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Inbound{}, fmt.Errorf("decode json frame: %w", err)
	}
	return f.validate()
}

// msgpackCodec reuses the json struct tags so both codecs share one schema.
type msgpackCodec struct{}

func (msgpackCodec) Name() string { return "msgpack" }
func (msgpackCodec) Binary() bool { return true }

func (msgpackCodec) Encode(msg any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	enc.UseCompactInts(true)
	if err := enc.Encode(msg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (msgpackCodec) Decode(data []byte) (Inbound, error) {
	if len(data) == 0 {
		return Inbound{}, ErrEmptyFrame
	}
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	var f frame
	if err := dec.Decode(&f); err != nil {
		return Inbound{}, fmt.Errorf("decode msgpack frame: %w", err)
	}
	return f.validate()
}

func (f frame) validate() (Inbound, error) {
	switch f.Type {
	case TypeJoin:
		name, _ := f.Name.(string)
		mode, _ := f.Mode.(string)
		return Inbound{
			Type: TypeJoin,
			Join: JoinRequest{Name: strings.TrimSpace(name), Mode: ParseMode(mode)},
		}, nil
	case TypeInput:
		in := InputRequest{VX: number(f.VX), VY: number(f.VY)}
		if t, ok := numeric(f.T); ok {
			in.T, in.HasT = t, true
		}
		return Inbound{Type: TypeInput, Input: in}, nil
	default:
		return Inbound{}, fmt.Errorf("%w: %q", ErrUnknownType, f.Type)
	}
}

// number coerces anything that is not a finite number to zero.
func number(v any) float64 {
	f, _ := numeric(v)
	return f
}

func numeric(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
