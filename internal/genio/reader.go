package genio

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// File is an open GVF dataset. Data holds the genotype payload, one byte
// per call, row-major with Variants bytes per sample row.
type File struct {
	Header  Header
	Data    []byte
	raw     []byte
	mmapped bool
}

// Open maps a GVF file read-only and validates its structure, including the
// genotype payload range against the header ploidy. If mmap is
// unavailable, it falls back to ReadAt-based loading. The returned file must
// be closed to release any mapping.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size64 := stat.Size()
	if size64 < gvfHeaderSize {
		return nil, ErrCorruptFile
	}
	if size64 > int64(int(^uint(0)>>1)) {
		// cannot index this file safely as []byte on this architecture.
		return nil, ErrCorruptFile
	}
	size := int(size64)

	// Prefer mmap where available: training re-reads rows every epoch and
	// the mapping keeps that zero-copy.
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err == nil {
		gf, parseErr := parseFileData(data, true)
		if parseErr != nil {
			_ = unix.Munmap(data)
			return nil, parseErr
		}
		return gf, nil
	}

	data, err = readAllAt(f, size)
	if err != nil {
		return nil, err
	}
	return parseFileData(data, false)
}

// OpenReaderAt loads and validates a GVF from a random-access reader without
// mmap.
func OpenReaderAt(r io.ReaderAt, size int64) (*File, error) {
	if size < gvfHeaderSize || size > int64(int(^uint(0)>>1)) {
		return nil, ErrCorruptFile
	}
	data, err := readAllAt(r, int(size))
	if err != nil {
		return nil, err
	}
	return parseFileData(data, false)
}

func readAllAt(r io.ReaderAt, size int) ([]byte, error) {
	out := make([]byte, size)
	var off int64
	for off < int64(size) {
		n, err := r.ReadAt(out[off:], off)
		off += int64(n)
		if err == nil {
			continue
		}
		if err == io.EOF && off == int64(size) {
			break
		}
		return nil, err
	}
	return out, nil
}

func parseFileData(data []byte, mmapped bool) (*File, error) {
	hdr, err := decodeHeader(data)
	if err != nil {
		return nil, err
	}
	want := gvfHeaderSize + int(hdr.Samples)*int(hdr.Variants)
	if len(data) != want {
		return nil, ErrCorruptFile
	}
	for i, v := range data[gvfHeaderSize:] {
		if v > hdr.Ploidy {
			return nil, fmt.Errorf("%w: value %d at offset %d exceeds ploidy %d",
				ErrBadGenotype, v, i, hdr.Ploidy)
		}
	}
	return &File{
		Header:  hdr,
		Data:    data[gvfHeaderSize:],
		raw:     data,
		mmapped: mmapped,
	}, nil
}

// Samples returns the number of sample rows.
func (f *File) Samples() int { return int(f.Header.Samples) }

// Variants returns the number of variant columns.
func (f *File) Variants() int { return int(f.Header.Variants) }

// Ploidy returns the maximum genotype dosage.
func (f *File) Ploidy() int { return int(f.Header.Ploidy) }

// Row returns the genotype bytes of sample i as a view into the payload.
func (f *File) Row(i int) []byte {
	m := f.Variants()
	return f.Data[i*m : (i+1)*m]
}

// Close releases file resources and any mmap backing.
func (f *File) Close() error {
	if f.raw == nil {
		return nil
	}
	var err error
	if f.mmapped {
		err = unix.Munmap(f.raw)
	}
	f.raw = nil
	f.Data = nil
	f.mmapped = false
	return err
}
