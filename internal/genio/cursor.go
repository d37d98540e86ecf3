package genio

import (
	"fmt"

	"github.com/genotools/genovae/internal/tensor"
)

// Cursor walks a GVF file in fixed-size batches of sample rows, converting
// genotype bytes to a float64 matrix per batch. Only full batches are
// yielded: the site encoder's input width is the batch size, so a trailing
// remainder smaller than one batch is skipped. Sequential order, no
// shuffling.
type Cursor struct {
	file  *File
	batch int
	pos   int
}

// NewCursor creates a cursor over f. The batch size must be positive and no
// larger than the sample count.
func NewCursor(f *File, batchSize int) (*Cursor, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("genio: batch size must be positive, got %d", batchSize)
	}
	if batchSize > f.Samples() {
		return nil, fmt.Errorf("genio: batch size %d exceeds sample count %d", batchSize, f.Samples())
	}
	return &Cursor{file: f, batch: batchSize}, nil
}

// Next returns the next batch as a batchSize x variants matrix, or
// ErrEndOfEpoch once fewer than batchSize rows remain. A genotype byte above
// the file's ploidy aborts with ErrBadGenotype: the batch is malformed and
// the run must not continue.
func (c *Cursor) Next() (tensor.Mat, error) {
	if c.pos+c.batch > c.file.Samples() {
		return tensor.Mat{}, ErrEndOfEpoch
	}

	m := c.file.Variants()
	ploidy := byte(c.file.Ploidy())
	out := tensor.New(c.batch, m)
	for i := 0; i < c.batch; i++ {
		src := c.file.Row(c.pos + i)
		dst := out.Row(i)
		for j, v := range src {
			if v > ploidy {
				return tensor.Mat{}, fmt.Errorf("%w: sample %d variant %d has value %d, ploidy %d",
					ErrBadGenotype, c.pos+i, j, v, ploidy)
			}
			dst[j] = float64(v)
		}
	}
	c.pos += c.batch
	return out, nil
}

// Reset rewinds the cursor to the first sample for a new epoch.
func (c *Cursor) Reset() error {
	c.pos = 0
	return nil
}
