package codec

import (
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

var (
	ErrInvalidUTF8 = errors.New("codec: value is not valid utf-8")
	ErrOddLength   = errors.New("codec: utf-16 value has odd length")
)

const (
	ErrEncodingText = "codec: encoding text: %w"
	ErrDecodingText = "codec: decoding text: %w"
)

// Codec converts application text to and from the engine's binary value slot.
type Codec interface {
	// EncodeText writes s in the engine's native string form, terminated by one padding unit.
	EncodeText(s string) ([]byte, error)
	// EncodeBytes writes p, read as text, without a terminator.
	EncodeBytes(p []byte) ([]byte, error)
	// DecodeText reverses both encodings.
	DecodeText(b []byte) (string, error)
}

// UTF16Codec stores text as little-endian UTF-16, two bytes per code unit.
type UTF16Codec struct{}

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// padding is the single NUL code unit appended by EncodeText.
const padding = "\x00"

func (UTF16Codec) EncodeText(s string) ([]byte, error) {
	return encode(s + padding)
}

func (UTF16Codec) EncodeBytes(p []byte) ([]byte, error) {
	return encode(string(p))
}

func (UTF16Codec) DecodeText(b []byte) (string, error) {
	if len(b)%2 != 0 {
		return "", ErrOddLength
	}
	out, err := utf16le.NewDecoder().Bytes(b)
	if err != nil {
		return "", wrap(ErrDecodingText, err)
	}
	return strings.TrimSuffix(string(out), padding), nil
}

func encode(s string) ([]byte, error) {
	if !utf8.ValidString(s) {
		return nil, ErrInvalidUTF8
	}
	out, err := utf16le.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, wrap(ErrEncodingText, err)
	}
	return out, nil
}
