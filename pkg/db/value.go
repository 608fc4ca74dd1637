package db

import (
	"fmt"
	"strconv"

	"github.com/eigerco/lmdbdown/pkg/serialization/codec"
)

// ValueKind tags the variants of Value.
type ValueKind uint8

const (
	KindText ValueKind = iota
	KindNumber
	KindBoolean
	KindBytes
)

func (k ValueKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	case KindBytes:
		return "bytes"
	default:
		return "unknown"
	}
}

// Value is a tagged union over the value types the store accepts.
type Value struct {
	kind ValueKind
	text string
	num  float64
	flag bool
	raw  []byte
}

func Text(s string) Value { return Value{kind: KindText, text: s} }
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }
func Boolean(b bool) Value { return Value{kind: KindBoolean, flag: b} }
func Bytes(p []byte) Value { return Value{kind: KindBytes, raw: p} }
func (v Value) Kind() ValueKind { return v.kind }

// Text returns the value as a string. Bytes convert directly; numbers and booleans are formatted.
func (v Value) Text() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindBytes:
		return string(v.raw)
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindBoolean:
		return strconv.FormatBool(v.flag)
	default:
		return ""
	}
}

// Bytes returns the value as raw bytes, converting text to its UTF-8 form.
func (v Value) Bytes() []byte {
	if v.kind == KindBytes {
		return v.raw
	}
	return []byte(v.Text())
}

func (v Value) Number() float64 { return v.num }
func (v Value) Bool() bool { return v.flag }

func (v Value) String() string {
	return fmt.Sprintf("%s(%s)", v.kind, v.Text())
}

// Encode selects the storage path for the variant: text and bytes go through c,
// numbers and booleans use the native representation.
func (v Value) Encode(c codec.Codec) ([]byte, error) {
	switch v.kind {
	case KindText:
		return c.EncodeText(v.text)
	case KindBytes:
		return c.EncodeBytes(v.raw)
	case KindNumber:
		return codec.EncodeNumber(v.num), nil
	case KindBoolean:
		return codec.EncodeBool(v.flag), nil
	default:
		return nil, fmt.Errorf("%w: unknown value kind %d", ErrValidation, v.kind)
	}
}

// DecodeValue narrows stored bytes to the requested kind.
func DecodeValue(b []byte, kind ValueKind, c codec.Codec) (Value, error) {
	switch kind {
	case KindNumber:
		f, err := codec.DecodeNumber(b)
		if err != nil {
			return Value{}, err
		}
		return Number(f), nil
	case KindBoolean:
		v, err := codec.DecodeBool(b)
		if err != nil {
			return Value{}, err
		}
		return Boolean(v), nil
	case KindBytes:
		s, err := c.DecodeText(b)
		if err != nil {
			return Value{}, err
		}
		return Bytes([]byte(s)), nil
	default:
		s, err := c.DecodeText(b)
		if err != nil {
			return Value{}, err
		}
		return Text(s), nil
	}
}
