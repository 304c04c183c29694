package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the block compression applied to array blobs.
type Compression uint8

const (
	// CompressionNone stores blobs uncompressed.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast, good for live recording).
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses Zstandard (better ratio, good for archived recordings).
	CompressionZSTD Compression = 2
)

// ErrCorruptBlock is returned when a block header does not match its payload.
var ErrCorruptBlock = errors.New("corrupt compressed block")

// ParseCompression maps a config name to a Compression.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	default:
		return CompressionNone, fmt.Errorf("unknown compression %q", name)
	}
}

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// Block layout: [Type uint8][UncompressedSize uint32][Data...]
// Type is the compression actually applied, which is CompressionNone when
// compressing did not pay off.
const blockHeaderSize = 5

func compressBlock(data []byte, c Compression) ([]byte, error) {
	var (
		packed []byte
		err    error
	)
	switch c {
	case CompressionNone:
	case CompressionLZ4:
		packed, err = compressLZ4(data)
	case CompressionZSTD:
		enc := getZstdEncoder()
		packed = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, fmt.Errorf("unknown compression %d", c)
	}
	if err != nil {
		return nil, err
	}

	// Keep raw bytes when compression does not help.
	if len(packed) == 0 || float64(len(packed)) > float64(len(data))*0.9 {
		c = CompressionNone
		packed = data
	}

	out := make([]byte, blockHeaderSize+len(packed))
	out[0] = byte(c)
	binary.LittleEndian.PutUint32(out[1:], uint32(len(data)))
	copy(out[blockHeaderSize:], packed)
	return out, nil
}

func compressLZ4(data []byte) ([]byte, error) {
	dst := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, dst, nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil // incompressible
	}
	return dst[:n], nil
}

func decompressBlock(block []byte) ([]byte, error) {
	if len(block) < blockHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrCorruptBlock, len(block))
	}
	size := int(binary.LittleEndian.Uint32(block[1:]))
	payload := block[blockHeaderSize:]

	switch Compression(block[0]) {
	case CompressionNone:
		if len(payload) != size {
			return nil, fmt.Errorf("%w: raw size %d, header says %d", ErrCorruptBlock, len(payload), size)
		}
		return payload, nil
	case CompressionLZ4:
		out := make([]byte, size)
		n, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptBlock, err)
		}
		if n != size {
			return nil, fmt.Errorf("%w: lz4 produced %d bytes, expected %d", ErrCorruptBlock, n, size)
		}
		return out, nil
	case CompressionZSTD:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)
		out, err := dec.DecodeAll(payload, make([]byte, 0, size))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptBlock, err)
		}
		if len(out) != size {
			return nil, fmt.Errorf("%w: zstd produced %d bytes, expected %d", ErrCorruptBlock, len(out), size)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unknown compression %d", ErrCorruptBlock, block[0])
	}
}
