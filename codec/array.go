package codec

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/hupe1980/vizsync/vector"
)

// Array blob layout, before block compression:
// [Width uint32][Rows uint32][Rows*Width float64, little endian]
const arrayHeaderSize = 8

// MarshalArray encodes a into a compressed blob.
func MarshalArray(a vector.Array, c Compression) ([]byte, error) {
	flat := a.Flat()
	raw := make([]byte, arrayHeaderSize+8*len(flat))
	binary.LittleEndian.PutUint32(raw[0:], uint32(a.Width()))
	binary.LittleEndian.PutUint32(raw[4:], uint32(a.Len()))
	for i, f := range flat {
		binary.LittleEndian.PutUint64(raw[arrayHeaderSize+8*i:], math.Float64bits(f))
	}
	return compressBlock(raw, c)
}

// UnmarshalArray decodes a blob produced by MarshalArray.
func UnmarshalArray(blob []byte) (vector.Array, error) {
	raw, err := decompressBlock(blob)
	if err != nil {
		return vector.Array{}, err
	}
	if len(raw) < arrayHeaderSize {
		return vector.Array{}, fmt.Errorf("%w: array header truncated", ErrCorruptBlock)
	}
	width := int(binary.LittleEndian.Uint32(raw[0:]))
	rows := int(binary.LittleEndian.Uint32(raw[4:]))
	body := raw[arrayHeaderSize:]
	if len(body) != 8*rows*width {
		return vector.Array{}, fmt.Errorf("%w: %d bytes for %dx%d array", ErrCorruptBlock, len(body), rows, width)
	}

	flat := make([]float64, rows*width)
	for i := range flat {
		flat[i] = math.Float64frombits(binary.LittleEndian.Uint64(body[8*i:]))
	}
	if len(flat) == 0 {
		return vector.New(0, width), nil
	}
	return vector.FromFlat(width, flat)
}
