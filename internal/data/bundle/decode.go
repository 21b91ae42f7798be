package bundle

import (
	"fmt"
	"math"
)

// float32sLE decodes a little-endian float32 array.
func float32sLE(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("%w: float32 buffer length %d is not a multiple of 4", ErrFormatMismatch, len(data))
	}
	out := make([]float32, len(data)/4)
	for i := range out {
		off := i * 4
		bits := uint32(data[off]) |
			uint32(data[off+1])<<8 |
			uint32(data[off+2])<<16 |
			uint32(data[off+3])<<24
		out[i] = math.Float32frombits(bits)
	}
	return out, nil
}

// AppendFloat32LE appends v to dst in little-endian byte order.
func AppendFloat32LE(dst []byte, v float32) []byte {
	bits := math.Float32bits(v)
	return append(dst, byte(bits), byte(bits>>8), byte(bits>>16), byte(bits>>24))
}

// Float32BytesLE encodes a float32 slice as little-endian bytes.
func Float32BytesLE(values []float32) []byte {
	out := make([]byte, 0, len(values)*4)
	for _, v := range values {
		out = AppendFloat32LE(out, v)
	}
	return out
}
