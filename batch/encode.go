package batch

import (
	"encoding/binary"
	"math"
)

// Encoder appends the GPU byte layout of v to dst.
type Encoder[T any] func(dst []byte, v T) []byte

// AppendFloat32s appends vals as little-endian float32s.
func AppendFloat32s(dst []byte, vals ...float32) []byte {
	for _, v := range vals {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	return dst
}

// AppendUint32s appends vals as little-endian uint32s.
func AppendUint32s(dst []byte, vals ...uint32) []byte {
	for _, v := range vals {
		dst = binary.LittleEndian.AppendUint32(dst, v)
	}
	return dst
}

// AppendUint16s appends vals as little-endian uint16s.
func AppendUint16s(dst []byte, vals ...uint16) []byte {
	for _, v := range vals {
		dst = binary.LittleEndian.AppendUint16(dst, v)
	}
	return dst
}

// Pad appends n zero bytes.
func Pad(dst []byte, n int) []byte {
	for range n {
		dst = append(dst, 0)
	}
	return dst
}

// Encode appends every element of data through enc.
func Encode[T any](dst []byte, data []T, enc Encoder[T]) []byte {
	for _, v := range data {
		dst = enc(dst, v)
	}
	return dst
}
