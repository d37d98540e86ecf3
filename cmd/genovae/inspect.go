package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/genotools/genovae/internal/genio"
)

func inspectCmd() *cli.Command {
	return &cli.Command{
		Name:  "inspect",
		Usage: "Print header information and genotype counts for a dataset",
		Flags: append(commonLogFlags(), commonDataFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			f, err := genio.Open(datasetPath)
			if err != nil {
				return fmt.Errorf("open %s: %w", datasetPath, err)
			}
			defer func() { _ = f.Close() }()

			fmt.Printf("file:     %s\n", datasetPath)
			fmt.Printf("version:  %d\n", f.Header.Version)
			fmt.Printf("samples:  %d\n", f.Samples())
			fmt.Printf("variants: %d\n", f.Variants())
			fmt.Printf("ploidy:   %d\n", f.Ploidy())

			counts := make([]int, f.Ploidy()+1)
			invalid := 0
			for _, v := range f.Data {
				if int(v) >= len(counts) {
					invalid++
					continue
				}
				counts[v]++
			}
			total := len(f.Data)
			fmt.Println("dosage counts:")
			for d, c := range counts {
				fmt.Printf("  %d: %10d (%.2f%%)\n", d, c, 100*float64(c)/float64(total))
			}
			if invalid > 0 {
				return fmt.Errorf("%w: %d calls above ploidy %d", genio.ErrBadGenotype, invalid, f.Ploidy())
			}
			return nil
		},
	}
}
