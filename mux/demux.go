package mux

import (
	"errors"
	"fmt"
	"time"

	"github.com/deepteams/stickerloop/internal/container"
)

// Demuxer errors.
var (
	ErrMissingIHDR    = errors.New("mux: first chunk is not IHDR")
	ErrChunkNotFound  = errors.New("mux: chunk not found")
	ErrFrameOutRange  = errors.New("mux: frame index out of range")
	ErrMalformedChunk = errors.New("mux: malformed chunk")
)

// Features describes a decoded PNG/APNG header.
type Features struct {
	Width     int
	Height    int
	BitDepth  int
	ColorType int

	HasAnimation bool   // an acTL chunk is present
	NumFrames    uint32 // from acTL
	NumPlays     uint32 // from acTL; 0 means infinite
	HasPalette   bool
}

// FrameInfo is the frame control data of one animation frame.
type FrameInfo struct {
	Sequence         uint32
	Width, Height    int
	XOffset, YOffset int
	DelayNum         uint16
	DelayDen         uint16
	DisposeOp        byte
	BlendOp          byte
	DataChunks       int // IDAT or fdAT chunks following the fcTL
}

// Delay returns the frame delay. A zero denominator means 1/100 s.
func (f FrameInfo) Delay() time.Duration {
	den := time.Duration(f.DelayDen)
	if den == 0 {
		den = 100
	}
	return time.Duration(f.DelayNum) * time.Second / den
}

// Demuxer provides read-only access to the chunks of a PNG/APNG file.
type Demuxer struct {
	data     []byte
	chunks   []Chunk
	features Features
	frames   []FrameInfo
	truncErr error
}

// NewDemuxer parses the chunk stream of data. A truncated tail is not fatal:
// the chunks read so far stay available and TruncationErr reports the cause.
func NewDemuxer(data []byte) (*Demuxer, error) {
	chunks, err := Chunks(data)
	if len(chunks) == 0 {
		if err != nil {
			return nil, err
		}
		return nil, ErrMissingIHDR
	}
	d := &Demuxer{data: data, chunks: chunks, truncErr: err}
	if chunks[0].ID != FourCCIHDR {
		return nil, ErrMissingIHDR
	}
	if err := d.parse(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Demuxer) parse() error {
	ihdr := d.chunks[0]
	if ihdr.Size != container.IHDRChunkSize {
		return fmt.Errorf("%w: IHDR length %d", ErrMalformedChunk, ihdr.Size)
	}
	d.features.Width = int(container.ReadBE32(ihdr.Data[0:4]))
	d.features.Height = int(container.ReadBE32(ihdr.Data[4:8]))
	d.features.BitDepth = int(ihdr.Data[8])
	d.features.ColorType = int(ihdr.Data[9])

	var cur *FrameInfo
	for _, c := range d.chunks[1:] {
		switch c.ID {
		case FourCCPLTE:
			d.features.HasPalette = true
		case FourCCacTL:
			if d.features.HasAnimation {
				continue
			}
			if c.Size < container.ACTLChunkSize {
				return fmt.Errorf("%w: acTL length %d", ErrMalformedChunk, c.Size)
			}
			d.features.HasAnimation = true
			d.features.NumFrames = container.ReadBE32(c.Data[container.ACTLNumFramesOffset:])
			d.features.NumPlays = container.ReadBE32(c.Data[container.ACTLNumPlaysOffset:])
		case FourCCfcTL:
			if c.Size < container.FCTLChunkSize {
				return fmt.Errorf("%w: fcTL length %d", ErrMalformedChunk, c.Size)
			}
			d.frames = append(d.frames, parseFCTL(c.Data))
			cur = &d.frames[len(d.frames)-1]
		case FourCCIDAT, FourCCfdAT:
			if cur != nil {
				cur.DataChunks++
			}
		}
	}
	return nil
}

func parseFCTL(b []byte) FrameInfo {
	return FrameInfo{
		Sequence:  container.ReadBE32(b[container.FCTLSequenceOffset:]),
		Width:     int(container.ReadBE32(b[container.FCTLWidthOffset:])),
		Height:    int(container.ReadBE32(b[container.FCTLHeightOffset:])),
		XOffset:   int(container.ReadBE32(b[container.FCTLXOffset:])),
		YOffset:   int(container.ReadBE32(b[container.FCTLYOffset:])),
		DelayNum:  container.ReadBE16(b[container.FCTLDelayNumOffset:]),
		DelayDen:  container.ReadBE16(b[container.FCTLDelayDenOffset:]),
		DisposeOp: b[container.FCTLDisposeOffset],
		BlendOp:   b[container.FCTLBlendOffset],
	}
}

// GetFeatures returns the header information.
func (d *Demuxer) GetFeatures() Features { return d.features }

// NumFrames returns the number of fcTL chunks found.
func (d *Demuxer) NumFrames() int { return len(d.frames) }

// LoopCount returns the acTL play count (0 = infinite).
func (d *Demuxer) LoopCount() int { return int(d.features.NumPlays) }

// Frame returns the frame control data of frame i (0-based).
func (d *Demuxer) Frame(i int) (FrameInfo, error) {
	if i < 0 || i >= len(d.frames) {
		return FrameInfo{}, ErrFrameOutRange
	}
	return d.frames[i], nil
}

// Delays returns the delay of every frame in order.
func (d *Demuxer) Delays() []time.Duration {
	out := make([]time.Duration, len(d.frames))
	for i, f := range d.frames {
		out[i] = f.Delay()
	}
	return out
}

// TotalDuration returns the sum of all frame delays.
func (d *Demuxer) TotalDuration() time.Duration {
	var total time.Duration
	for _, f := range d.frames {
		total += f.Delay()
	}
	return total
}

// Chunks returns all parsed chunks in file order.
func (d *Demuxer) Chunks() []Chunk { return d.chunks }

// GetChunk returns the data of the first chunk with the given type.
func (d *Demuxer) GetChunk(id ChunkID) ([]byte, error) {
	for _, c := range d.chunks {
		if c.ID == id {
			return c.Data, nil
		}
	}
	return nil, ErrChunkNotFound
}

// BadCRCs returns the chunks whose stored CRC does not match.
func (d *Demuxer) BadCRCs() []Chunk {
	var bad []Chunk
	for _, c := range d.chunks {
		if !c.VerifyCRC() {
			bad = append(bad, c)
		}
	}
	return bad
}

// TruncationErr returns the error that ended the chunk walk early, or nil if
// the stream was read to IEND or to the end of the data.
func (d *Demuxer) TruncationErr() error { return d.truncErr }
