package genio

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// Write serializes a GVF with the given dimensions to w. values must hold
// samples*variants genotype bytes in row-major order, each in [0, ploidy].
func Write(w io.Writer, ploidy uint8, samples, variants uint32, values []byte) error {
	if ploidy == 0 || samples == 0 || variants == 0 {
		return fmt.Errorf("genio: zero dimension (ploidy=%d samples=%d variants=%d)", ploidy, samples, variants)
	}
	if len(values) != int(samples)*int(variants) {
		return fmt.Errorf("genio: %d values for %dx%d matrix", len(values), samples, variants)
	}
	for i, v := range values {
		if v > ploidy {
			return fmt.Errorf("%w: value %d at offset %d exceeds ploidy %d", ErrBadGenotype, v, i, ploidy)
		}
	}

	hdr := encodeHeader(Header{
		Version:  CurrentVersion,
		Ploidy:   ploidy,
		Samples:  samples,
		Variants: variants,
	})
	if _, err := w.Write(hdr); err != nil {
		return err
	}
	_, err := w.Write(values)
	return err
}

// WriteFile writes a GVF to path, replacing any existing file.
func WriteFile(path string, ploidy uint8, samples, variants uint32, values []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	if err := Write(bw, ploidy, samples, variants, values); err != nil {
		_ = f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
