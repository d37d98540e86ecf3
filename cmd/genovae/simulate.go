package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
	exprand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/genotools/genovae/internal/genio"
)

func simulateCmd() *cli.Command {
	var (
		out      string
		samples  int64
		variants int64
		ploidy   int64
		seed     int64
		alpha    float64
		beta     float64
	)

	return &cli.Command{
		Name:  "simulate",
		Usage: "Write a synthetic genotype file for testing and demos",
		Flags: append(commonLogFlags(),
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "output .gvf path",
				Value:       "synthetic.gvf",
				Destination: &out,
			},
			&cli.Int64Flag{
				Name:        "samples",
				Aliases:     []string{"n"},
				Usage:       "number of samples",
				Value:       100,
				Destination: &samples,
			},
			&cli.Int64Flag{
				Name:        "variants",
				Aliases:     []string{"m"},
				Usage:       "number of variants",
				Value:       1000,
				Destination: &variants,
			},
			&cli.Int64Flag{
				Name:        "ploidy",
				Usage:       "maximum genotype dosage",
				Value:       2,
				Destination: &ploidy,
			},
			&cli.Int64Flag{
				Name:        "seed",
				Usage:       "random seed",
				Value:       1,
				Destination: &seed,
			},
			&cli.Float64Flag{
				Name:        "alpha",
				Usage:       "Beta prior alpha for allele frequencies",
				Value:       0.8,
				Destination: &alpha,
			},
			&cli.Float64Flag{
				Name:        "beta",
				Usage:       "Beta prior beta for allele frequencies",
				Value:       0.8,
				Destination: &beta,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := buildLogger()
			if samples <= 0 || variants <= 0 || ploidy <= 0 || ploidy > 255 {
				return fmt.Errorf("invalid dimensions: samples=%d variants=%d ploidy=%d",
					samples, variants, ploidy)
			}

			src := exprand.NewSource(uint64(seed))
			freq := distuv.Beta{Alpha: alpha, Beta: beta, Src: src}

			// Per-variant allele frequency from the Beta prior, then one
			// Binomial dosage draw per (sample, variant) cell.
			n, m := int(samples), int(variants)
			values := make([]byte, n*m)
			for j := 0; j < m; j++ {
				p := freq.Rand()
				dosage := distuv.Binomial{N: float64(ploidy), P: p, Src: src}
				for i := 0; i < n; i++ {
					values[i*m+j] = byte(dosage.Rand())
				}
			}

			if err := genio.WriteFile(out, uint8(ploidy), uint32(samples), uint32(variants), values); err != nil {
				return err
			}
			log.Info("synthetic dataset written",
				"path", out,
				"samples", samples,
				"variants", variants,
				"ploidy", ploidy,
				"seed", seed)
			return nil
		},
	}
}
