// Package mux reads the chunk stream of PNG/APNG files and patches the
// animation play count in place.
//
// The chunk reader walks an immutable byte slice with an explicit offset and
// bounds-checks every header, body and CRC read; truncated input ends the walk
// with ErrTruncated instead of reading past the buffer. SetLoopCount is the
// only operation that produces modified bytes, and it touches exactly the
// acTL play-count field and that chunk's CRC.
package mux

import (
	"fmt"

	"github.com/deepteams/stickerloop/internal/container"
)

// ChunkID is a FourCC chunk type tag.
type ChunkID = uint32

// Chunk type tags re-exported from the container package.
var (
	FourCCIHDR = container.FourCCIHDR
	FourCCPLTE = container.FourCCPLTE
	FourCCtRNS = container.FourCCtRNS
	FourCCIDAT = container.FourCCIDAT
	FourCCIEND = container.FourCCIEND
	FourCCacTL = container.FourCCacTL
	FourCCfcTL = container.FourCCfcTL
	FourCCfdAT = container.FourCCfdAT
)

// Errors re-exported from the container package.
var (
	ErrInvalidSignature = container.ErrInvalidSignature
	ErrTruncated        = container.ErrTruncated
)

// Chunk is one chunk of a PNG stream. Data is a sub-slice of the original
// input (zero-copy).
type Chunk struct {
	ID     ChunkID
	Offset int    // offset of the chunk's length field in the file
	Size   uint32 // data length
	Data   []byte
	CRC    uint32 // CRC stored in the chunk trailer
}

// DataOffset returns the file offset of the chunk data.
func (c Chunk) DataOffset() int { return c.Offset + container.ChunkHeaderSize }

// CRCOffset returns the file offset of the trailing CRC.
func (c Chunk) CRCOffset() int { return c.DataOffset() + int(c.Size) }

// End returns the file offset just past the chunk.
func (c Chunk) End() int { return c.CRCOffset() + container.CRCSize }

// Name returns the chunk type as text, e.g. "acTL".
func (c Chunk) Name() string { return container.FourCCString(c.ID) }

// Critical reports whether the chunk type is critical.
func (c Chunk) Critical() bool { return container.IsCritical(c.ID) }

// VerifyCRC reports whether the stored CRC matches the type and data.
func (c Chunk) VerifyCRC() bool {
	return container.ChunkCRC(c.ID, c.Data) == c.CRC
}

// ReadChunk reads the complete chunk starting at off.
func ReadChunk(data []byte, off int) (Chunk, error) {
	if off < 0 || off > len(data) {
		return Chunk{}, fmt.Errorf("%w: chunk offset %d outside %d bytes", ErrTruncated, off, len(data))
	}
	h, err := container.ReadChunkHeader(data[off:])
	if err != nil {
		return Chunk{}, fmt.Errorf("mux: chunk header at offset %d: %w", off, err)
	}
	end := off + h.Total()
	if end > len(data) {
		return Chunk{}, fmt.Errorf("%w: chunk %s at offset %d needs %d bytes, have %d",
			ErrTruncated, container.FourCCString(h.Type), off, h.Total(), len(data)-off)
	}
	dataStart := off + container.ChunkHeaderSize
	crcStart := dataStart + int(h.Length)
	return Chunk{
		ID:     h.Type,
		Offset: off,
		Size:   h.Length,
		Data:   data[dataStart:crcStart:crcStart],
		CRC:    container.ReadBE32(data[crcStart:end]),
	}, nil
}

// ChunkReader walks the chunks of a PNG file in order.
//
//	r, err := mux.NewChunkReader(data)
//	for r.Next() {
//		c := r.Chunk()
//	}
//	err = r.Err()
type ChunkReader struct {
	// StopAtIEND ends the walk after the IEND chunk. When false the reader
	// keeps going until the data is exhausted, so chunks appended after IEND
	// are still visited.
	StopAtIEND bool

	data []byte
	pos  int
	cur  Chunk
	err  error
	done bool
}

// NewChunkReader validates the file signature and returns a reader
// positioned at the first chunk. The reader walks to the end of data unless
// StopAtIEND is set.
func NewChunkReader(data []byte) (*ChunkReader, error) {
	n, err := container.CheckSignature(data)
	if err != nil {
		return nil, err
	}
	return &ChunkReader{data: data, pos: n}, nil
}

// Next advances to the next chunk. It returns false at the end of the data or
// on error, and after IEND when StopAtIEND is set.
func (r *ChunkReader) Next() bool {
	if r.done || r.err != nil || r.pos >= len(r.data) {
		return false
	}
	c, err := ReadChunk(r.data, r.pos)
	if err != nil {
		r.err = err
		return false
	}
	r.cur = c
	r.pos = c.End()
	if r.StopAtIEND && c.ID == FourCCIEND {
		r.done = true
	}
	return true
}

// Chunk returns the current chunk. Call it only after Next returned true.
func (r *ChunkReader) Chunk() Chunk { return r.cur }

// Err returns the error that stopped the walk, if any.
func (r *ChunkReader) Err() error { return r.err }

// Chunks returns every chunk up to and including IEND. On truncated input it
// returns the chunks read so far together with the error.
func Chunks(data []byte) ([]Chunk, error) {
	r, err := NewChunkReader(data)
	if err != nil {
		return nil, err
	}
	r.StopAtIEND = true
	var out []Chunk
	for r.Next() {
		out = append(out, r.Chunk())
	}
	return out, r.Err()
}
