package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

var ErrNativeLength = errors.New("codec: unexpected native value length")

// NumberSize is the width of a stored number.
const NumberSize = 8

// EncodeNumber returns the engine's native number form: an IEEE-754 double, little-endian.
func EncodeNumber(f float64) []byte {
	b := make([]byte, NumberSize)
	binary.LittleEndian.PutUint64(b, math.Float64bits(f))
	return b
}

func DecodeNumber(b []byte) (float64, error) {
	if len(b) != NumberSize {
		return 0, fmt.Errorf("%w: number needs %d bytes, got %d", ErrNativeLength, NumberSize, len(b))
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}

// EncodeBool returns a single byte, 1 for true.
func EncodeBool(v bool) []byte {
	if v {
		return []byte{1}
	}
	return []byte{0}
}

func DecodeBool(b []byte) (bool, error) {
	if len(b) != 1 {
		return false, fmt.Errorf("%w: boolean needs 1 byte, got %d", ErrNativeLength, len(b))
	}
	return b[0] != 0, nil
}

func wrap(format string, err error) error {
	return fmt.Errorf(format, err)
}
