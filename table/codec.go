package table

import (
	"encoding/binary"

	"github.com/wippyai/fixedkit/errors"
)

// Codec converts one element to and from its fixed-size record.
type Codec[T any] interface {
	// Size is the record length in bytes. It is stored in the file header
	// and must match on load.
	Size() int
	Encode(dst []byte, v *T) error
	Decode(src []byte, v *T) error
}

// Binary encodes fixed-size values with encoding/binary in little-endian
// order. T must be a fixed-size type: numbers, bools, arrays and structs of
// those.
type Binary[T any] struct {
	size int
}

// NewBinary returns a Binary codec for T, or an InvalidSize error when T has
// no fixed encoding.
func NewBinary[T any]() (Binary[T], error) {
	var zero T
	n := binary.Size(zero)
	if n <= 0 {
		return Binary[T]{}, errors.InvalidSize(errors.PhaseTable, "type %T has no fixed binary size", zero)
	}
	return Binary[T]{size: n}, nil
}

func (c Binary[T]) Size() int { return c.size }

func (c Binary[T]) Encode(dst []byte, v *T) error {
	if _, err := binary.Encode(dst, binary.LittleEndian, v); err != nil {
		return errors.Wrap(errors.PhaseTable, errors.KindWrite, err, "encode record")
	}
	return nil
}

func (c Binary[T]) Decode(src []byte, v *T) error {
	if _, err := binary.Decode(src, binary.LittleEndian, v); err != nil {
		return errors.Wrap(errors.PhaseTable, errors.KindRead, err, "decode record")
	}
	return nil
}
