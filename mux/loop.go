package mux

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/deepteams/stickerloop/internal/container"
)

// ErrInvalidLoopCount is returned when the requested play count cannot be
// stored in an acTL chunk.
var ErrInvalidLoopCount = errors.New("mux: loop count out of range")

// PatchReport describes what SetLoopCount did.
type PatchReport struct {
	Requested     int    // play count asked for
	Found         bool   // an acTL chunk was located
	Patched       bool   // the play count and CRC were rewritten
	Offset        int    // offset of the acTL length field, -1 if not found
	PreviousPlays uint32 // play count stored before patching
	NumFrames     uint32 // acTL frame count
	Truncated     bool   // the chunk walk stopped on a truncated chunk
}

// Anomaly reports whether a finite loop count was requested but the file was
// left as it was. The result then loops forever.
func (r PatchReport) Anomaly() bool {
	return r.Requested > 0 && !r.Patched
}

// SetLoopCount returns a copy of data whose first acTL chunk plays n times.
//
// n == 0 keeps the encoder's default (infinite) and returns data unchanged
// without reading it. If no usable acTL chunk exists, data is returned with
// report.Found or report.Patched false; this is not an error. Otherwise
// exactly the 4-byte play count and the 4-byte chunk CRC differ between the
// input and the result. data itself is never modified.
func SetLoopCount(data []byte, n int) ([]byte, PatchReport, error) {
	report := PatchReport{Requested: n, Offset: -1}
	if n == 0 {
		return data, report, nil
	}
	if n < 0 || n > container.MaxNumPlays {
		return data, report, fmt.Errorf("%w: %d", ErrInvalidLoopCount, n)
	}

	r, err := NewChunkReader(data)
	if err != nil {
		if errors.Is(err, ErrTruncated) {
			err = ErrInvalidSignature
		}
		return data, report, err
	}

	for r.Next() {
		c := r.Chunk()
		if c.ID != FourCCacTL {
			continue
		}
		report.Found = true
		report.Offset = c.Offset
		if c.Size < container.ACTLChunkSize {
			return data, report, nil
		}
		report.NumFrames = container.ReadBE32(c.Data[container.ACTLNumFramesOffset:])
		report.PreviousPlays = container.ReadBE32(c.Data[container.ACTLNumPlaysOffset:])

		out := bytes.Clone(data)
		start := c.DataOffset()
		body := out[start : start+int(c.Size)]
		container.PutBE32(body[container.ACTLNumPlaysOffset:], uint32(n))
		container.PutBE32(out[c.CRCOffset():], container.ChunkCRC(c.ID, body))
		report.Patched = true
		return out, report, nil
	}
	report.Truncated = r.Err() != nil
	return data, report, nil
}
