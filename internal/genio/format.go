// Package genio implements the GVF (genotype variant file) container: a
// fixed header followed by one byte per genotype call, row-major with one
// row per sample. It provides a writer, an mmap-backed reader and a batch
// cursor feeding training.
package genio

import "errors"

const (
	// MagicGVF identifies a genotype variant file.
	MagicGVF = "GVF\x00"

	// CurrentVersion of the on-disk layout.
	CurrentVersion uint16 = 1

	gvfHeaderSize = 16
)

var (
	// ErrEndOfEpoch signals that a cursor has exhausted the current pass
	// over the dataset. It is control flow, not a failure.
	ErrEndOfEpoch = errors.New("genio: end of epoch")

	// ErrCorruptFile reports a structurally invalid GVF file.
	ErrCorruptFile = errors.New("genio: corrupt or truncated file")

	// ErrVersionMismatch reports an unsupported format version.
	ErrVersionMismatch = errors.New("genio: unsupported format version")

	// ErrBadGenotype reports a genotype call outside [0, ploidy].
	ErrBadGenotype = errors.New("genio: genotype value out of range")
)

// Header describes a GVF payload.
type Header struct {
	Version  uint16
	Ploidy   uint8
	Samples  uint32
	Variants uint32
}

func decodeHeader(b []byte) (Header, error) {
	if len(b) < gvfHeaderSize {
		return Header{}, ErrCorruptFile
	}
	if string(b[:4]) != MagicGVF {
		return Header{}, ErrCorruptFile
	}
	h := Header{
		Version:  uint16(b[4]) | uint16(b[5])<<8,
		Ploidy:   b[6],
		Samples:  u32le(b, 8),
		Variants: u32le(b, 12),
	}
	if h.Version != CurrentVersion {
		return Header{}, ErrVersionMismatch
	}
	if h.Ploidy == 0 || h.Samples == 0 || h.Variants == 0 {
		return Header{}, ErrCorruptFile
	}
	return h, nil
}

func encodeHeader(h Header) []byte {
	b := make([]byte, gvfHeaderSize)
	copy(b, MagicGVF)
	b[4] = byte(h.Version)
	b[5] = byte(h.Version >> 8)
	b[6] = h.Ploidy
	putU32le(b, 8, h.Samples)
	putU32le(b, 12, h.Variants)
	return b
}

func u32le(b []byte, off int) uint32 {
	return uint32(b[off]) | uint32(b[off+1])<<8 | uint32(b[off+2])<<16 | uint32(b[off+3])<<24
}

func putU32le(b []byte, off int, v uint32) {
	b[off] = byte(v)
	b[off+1] = byte(v >> 8)
	b[off+2] = byte(v >> 16)
	b[off+3] = byte(v >> 24)
}
