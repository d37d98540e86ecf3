package model

import "fmt"

// Default encoder widths. The sample path widens before projecting, the
// site path narrows; both end in a linear projection of width 2*LatentDim.
var (
	DefaultSampleWidths = []int{64, 32, 128}
	DefaultSiteWidths   = []int{64, 32, 16}
)

// DefaultPloidy is the Binomial trial count for diploid genotype dosage.
const DefaultPloidy = 2

// Config fixes the model dimensions for the lifetime of a run. BatchSize is
// structural, not just a loop parameter: the site encoder consumes the
// transposed batch, so its input width equals the batch size and every batch
// must have exactly that many rows.
type Config struct {
	Variants  int
	BatchSize int
	LatentDim int
	Ploidy    int

	SampleWidths []int
	SiteWidths   []int

	// Seed drives weight initialisation.
	Seed int64
}

// WithDefaults fills unset optional fields.
func (c Config) WithDefaults() Config {
	if c.Ploidy == 0 {
		c.Ploidy = DefaultPloidy
	}
	if len(c.SampleWidths) == 0 {
		c.SampleWidths = DefaultSampleWidths
	}
	if len(c.SiteWidths) == 0 {
		c.SiteWidths = DefaultSiteWidths
	}
	return c
}

// Validate reports configuration errors. These are fatal: the model refuses
// construction rather than producing shape errors mid-training.
func (c Config) Validate() error {
	if c.Variants <= 0 {
		return fmt.Errorf("model: variant count must be positive, got %d", c.Variants)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("model: batch size must be positive, got %d", c.BatchSize)
	}
	if c.LatentDim <= 0 {
		return fmt.Errorf("model: latent dimension must be positive, got %d", c.LatentDim)
	}
	if c.Ploidy <= 0 {
		return fmt.Errorf("model: ploidy must be positive, got %d", c.Ploidy)
	}
	for _, w := range c.SampleWidths {
		if w <= 0 {
			return fmt.Errorf("model: sample path width must be positive, got %d", w)
		}
	}
	for _, w := range c.SiteWidths {
		if w <= 0 {
			return fmt.Errorf("model: site path width must be positive, got %d", w)
		}
	}
	return nil
}
