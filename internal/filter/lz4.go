package filter

import (
	"encoding/binary"
	"fmt"

	"github.com/pierrec/lz4/v4"

	"github.com/robert-malhotra/h5trim/internal/message"
)

// lz4DefaultBlockSize matches the registered HDF5 LZ4 filter default.
const lz4DefaultBlockSize = 1 << 30

// LZ4 implements the registered HDF5 LZ4 filter (ID 32004).
//
// Framing (all sizes big-endian): 8-byte total uncompressed size,
// 4-byte block size, then per block a 4-byte stored size followed by
// the block data. A block whose stored size equals its uncompressed
// size is kept raw.
type LZ4 struct {
	blockSize int
}

// NewLZ4 creates a new LZ4 filter.
// Client data: [0] = block size (optional)
func NewLZ4(clientData []uint32) *LZ4 {
	blockSize := lz4DefaultBlockSize
	if len(clientData) > 0 && clientData[0] > 0 {
		blockSize = int(clientData[0])
	}
	return &LZ4{blockSize: blockSize}
}

func (f *LZ4) ID() uint16 {
	return message.FilterLZ4
}

func (f *LZ4) Decode(input []byte) ([]byte, error) {
	if len(input) < 12 {
		return nil, fmt.Errorf("lz4: input too short for header")
	}

	totalSize := binary.BigEndian.Uint64(input[0:8])
	blockSize := int(binary.BigEndian.Uint32(input[8:12]))
	if blockSize <= 0 {
		return nil, fmt.Errorf("lz4: invalid block size %d", blockSize)
	}

	output := make([]byte, totalSize)
	offset := 12
	decoded := 0

	for decoded < int(totalSize) {
		if offset+4 > len(input) {
			return nil, fmt.Errorf("lz4: truncated block header")
		}
		storedSize := int(binary.BigEndian.Uint32(input[offset:]))
		offset += 4

		if offset+storedSize > len(input) {
			return nil, fmt.Errorf("lz4: truncated block data")
		}

		want := blockSize
		if remaining := int(totalSize) - decoded; remaining < want {
			want = remaining
		}

		if storedSize == want {
			// Stored raw
			copy(output[decoded:], input[offset:offset+storedSize])
		} else {
			n, err := lz4.UncompressBlock(input[offset:offset+storedSize], output[decoded:decoded+want])
			if err != nil {
				return nil, fmt.Errorf("lz4 decompress: %w", err)
			}
			if n != want {
				return nil, fmt.Errorf("lz4: block decoded to %d bytes, expected %d", n, want)
			}
		}

		offset += storedSize
		decoded += want
	}

	return output, nil
}

// Encode compresses data into the HDF5 LZ4 filter framing.
func (f *LZ4) Encode(input []byte) ([]byte, error) {
	blockSize := f.blockSize
	if blockSize > len(input) && len(input) > 0 {
		blockSize = len(input)
	}
	if blockSize <= 0 {
		blockSize = 1
	}

	output := make([]byte, 12, 12+len(input))
	binary.BigEndian.PutUint64(output[0:8], uint64(len(input)))
	binary.BigEndian.PutUint32(output[8:12], uint32(blockSize))

	scratch := make([]byte, lz4.CompressBlockBound(blockSize))
	var c lz4.Compressor

	for start := 0; start < len(input); start += blockSize {
		end := start + blockSize
		if end > len(input) {
			end = len(input)
		}
		block := input[start:end]

		n, err := c.CompressBlock(block, scratch)
		if err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}

		var hdr [4]byte
		if n == 0 || n >= len(block) {
			// Incompressible, store raw
			binary.BigEndian.PutUint32(hdr[:], uint32(len(block)))
			output = append(output, hdr[:]...)
			output = append(output, block...)
		} else {
			binary.BigEndian.PutUint32(hdr[:], uint32(n))
			output = append(output, hdr[:]...)
			output = append(output, scratch[:n]...)
		}
	}

	return output, nil
}
