package mux

import (
	"encoding/binary"

	"github.com/deepteams/stickerloop/internal/container"
)

// buildAPNG assembles a minimal chunk stream: IHDR, acTL, one fcTL+IDAT per
// delay, then IEND. Image data is a placeholder; only the chunk layout
// matters to this package.
func buildAPNG(w, h int, plays uint32, delaysMS ...uint16) []byte {
	buf := []byte(container.Signature)

	ihdr := make([]byte, container.IHDRChunkSize)
	binary.BigEndian.PutUint32(ihdr[0:4], uint32(w))
	binary.BigEndian.PutUint32(ihdr[4:8], uint32(h))
	ihdr[8] = 8 // bit depth
	ihdr[9] = 6 // RGBA
	buf = container.AppendChunk(buf, FourCCIHDR, ihdr)

	actl := make([]byte, container.ACTLChunkSize)
	binary.BigEndian.PutUint32(actl[0:4], uint32(len(delaysMS)))
	binary.BigEndian.PutUint32(actl[4:8], plays)
	buf = container.AppendChunk(buf, FourCCacTL, actl)

	seq := uint32(0)
	for i, d := range delaysMS {
		fctl := make([]byte, container.FCTLChunkSize)
		binary.BigEndian.PutUint32(fctl[0:4], seq)
		binary.BigEndian.PutUint32(fctl[4:8], uint32(w))
		binary.BigEndian.PutUint32(fctl[8:12], uint32(h))
		binary.BigEndian.PutUint16(fctl[20:22], d)
		binary.BigEndian.PutUint16(fctl[22:24], 1000)
		buf = container.AppendChunk(buf, FourCCfcTL, fctl)
		seq++
		if i == 0 {
			buf = container.AppendChunk(buf, FourCCIDAT, []byte{1, 2, 3, 4})
			continue
		}
		fdat := make([]byte, 8)
		binary.BigEndian.PutUint32(fdat[0:4], seq)
		buf = container.AppendChunk(buf, FourCCfdAT, fdat)
		seq++
	}
	return container.AppendChunk(buf, FourCCIEND, nil)
}

// buildPNG assembles a still PNG chunk stream with no acTL.
func buildPNG(w, h int) []byte {
	buf := []byte(container.Signature)
	ihdr := make([]byte, container.IHDRChunkSize)
	binary.BigEndian.PutUint32(ihdr[0:4], uint32(w))
	binary.BigEndian.PutUint32(ihdr[4:8], uint32(h))
	ihdr[8], ihdr[9] = 8, 6
	buf = container.AppendChunk(buf, FourCCIHDR, ihdr)
	buf = container.AppendChunk(buf, FourCCIDAT, []byte{0})
	return container.AppendChunk(buf, FourCCIEND, nil)
}

func diffCount(a, b []byte) int {
	n := 0
	for i := range a {
		if a[i] != b[i] {
			n++
		}
	}
	return n
}
