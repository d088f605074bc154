package container

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
)

// Common errors.
var (
	ErrInvalidSignature = errors.New("png: invalid signature")
	ErrTruncated        = errors.New("png: truncated data")
	ErrTooLarge         = errors.New("png: chunk length exceeds format limit")
)

// ChunkHeader is the length/type prefix of a chunk.
type ChunkHeader struct {
	Length uint32 // data length, excluding header and CRC
	Type   uint32 // FourCC type tag
}

// Total returns the full on-disk size of the chunk: header, data and CRC.
func (h ChunkHeader) Total() int {
	return ChunkOverhead + int(h.Length)
}

// CheckSignature reports whether data starts with the PNG signature.
// Returns the number of bytes consumed.
func CheckSignature(data []byte) (int, error) {
	if len(data) < SignatureSize {
		return 0, ErrTruncated
	}
	if string(data[:SignatureSize]) != Signature {
		return 0, ErrInvalidSignature
	}
	return SignatureSize, nil
}

// ReadChunkHeader reads a chunk's data length and type tag from data.
func ReadChunkHeader(data []byte) (ChunkHeader, error) {
	if len(data) < ChunkHeaderSize {
		return ChunkHeader{}, ErrTruncated
	}
	h := ChunkHeader{
		Length: binary.BigEndian.Uint32(data[0:4]),
		Type:   binary.BigEndian.Uint32(data[4:8]),
	}
	if h.Length > MaxChunkLength {
		return ChunkHeader{}, ErrTooLarge
	}
	return h, nil
}

// ChunkCRC computes the CRC-32 (IEEE, reflected 0xEDB88320) over a chunk's
// type tag followed by its data, as stored in the chunk trailer.
func ChunkCRC(typ uint32, data []byte) uint32 {
	var tag [TagSize]byte
	binary.BigEndian.PutUint32(tag[:], typ)
	crc := crc32.NewIEEE()
	crc.Write(tag[:])
	crc.Write(data)
	return crc.Sum32()
}

// FourCCString returns a human-readable string for a chunk type tag.
func FourCCString(typ uint32) string {
	b := [4]byte{
		byte(typ >> 24),
		byte(typ >> 16),
		byte(typ >> 8),
		byte(typ),
	}
	return string(b[:])
}

// IsCritical reports whether the chunk type is critical (uppercase first
// letter).
func IsCritical(typ uint32) bool {
	return typ&(0x20<<24) == 0
}

// AppendChunk appends a complete chunk (length, type, data, CRC) to buf.
func AppendChunk(buf []byte, typ uint32, data []byte) []byte {
	var hdr [ChunkHeaderSize]byte
	binary.BigEndian.PutUint32(hdr[0:4], uint32(len(data)))
	binary.BigEndian.PutUint32(hdr[4:8], typ)
	buf = append(buf, hdr[:]...)
	buf = append(buf, data...)
	return binary.BigEndian.AppendUint32(buf, ChunkCRC(typ, data))
}
