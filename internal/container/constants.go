// Package container defines constants and low-level helpers for the PNG/APNG
// chunk stream: the file signature, chunk type tags, structure sizes and the
// chunk CRC.
package container

import "encoding/binary"

// FourCC creates a chunk type tag from four bytes (big-endian, as stored on
// the wire).
func FourCC(a, b, c, d byte) uint32 {
	return uint32(a)<<24 | uint32(b)<<16 | uint32(c)<<8 | uint32(d)
}

// Chunk type tags.
var (
	FourCCIHDR = FourCC('I', 'H', 'D', 'R')
	FourCCPLTE = FourCC('P', 'L', 'T', 'E')
	FourCCtRNS = FourCC('t', 'R', 'N', 'S')
	FourCCIDAT = FourCC('I', 'D', 'A', 'T')
	FourCCIEND = FourCC('I', 'E', 'N', 'D')
	FourCCacTL = FourCC('a', 'c', 'T', 'L')
	FourCCfcTL = FourCC('f', 'c', 'T', 'L')
	FourCCfdAT = FourCC('f', 'd', 'A', 'T')
)

// Signature is the fixed 8-byte header every PNG file starts with.
const Signature = "\x89PNG\r\n\x1a\n"

// Container structure sizes.
const (
	SignatureSize   = 8  // Size of the leading file signature
	TagSize         = 4  // Size of a chunk type tag (e.g. "acTL")
	LengthSize      = 4  // Size of the chunk data length field
	CRCSize         = 4  // Size of the trailing chunk CRC
	ChunkHeaderSize = 8  // Length + type
	ChunkOverhead   = 12 // Length + type + CRC
	IHDRChunkSize   = 13 // Size of IHDR data
	ACTLChunkSize   = 8  // Size of acTL data: num_frames + num_plays
	FCTLChunkSize   = 26 // Size of fcTL data
)

// Offsets inside the acTL chunk data.
const (
	ACTLNumFramesOffset = 0
	ACTLNumPlaysOffset  = 4
)

// Offsets inside the fcTL chunk data.
const (
	FCTLSequenceOffset = 0
	FCTLWidthOffset    = 4
	FCTLHeightOffset   = 8
	FCTLXOffset        = 12
	FCTLYOffset        = 16
	FCTLDelayNumOffset = 20
	FCTLDelayDenOffset = 22
	FCTLDisposeOffset  = 24
	FCTLBlendOffset    = 25
)

// Limits.
const (
	// MaxChunkLength is the largest chunk data length the PNG format allows
	// (2^31-1).
	MaxChunkLength = 1<<31 - 1

	// MaxNumPlays is the largest acTL num_plays value (same 31-bit limit).
	MaxNumPlays = 1<<31 - 1
)

// ReadBE16 reads a big-endian uint16 from data.
func ReadBE16(data []byte) uint16 {
	return binary.BigEndian.Uint16(data)
}

// ReadBE32 reads a big-endian uint32 from data.
func ReadBE32(data []byte) uint32 {
	return binary.BigEndian.Uint32(data)
}

// PutBE32 writes a big-endian uint32 to data.
func PutBE32(data []byte, v uint32) {
	binary.BigEndian.PutUint32(data, v)
}
