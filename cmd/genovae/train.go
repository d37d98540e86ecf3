package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/genotools/genovae/internal/dist"
	"github.com/genotools/genovae/internal/genio"
	"github.com/genotools/genovae/internal/logger"
	"github.com/genotools/genovae/internal/metrics"
	"github.com/genotools/genovae/internal/model"
	"github.com/genotools/genovae/internal/monitor"
	"github.com/genotools/genovae/internal/train"
)

func trainCmd() *cli.Command {
	var (
		latentDim     int64
		batchSize     int64
		epochs        int64
		seed          int64
		learnRate     float64
		metricsFile   string
		monitorAddr   string
		deterministic bool
	)

	return &cli.Command{
		Name:  "train",
		Usage: "Train the factorization model on a genotype file",
		Flags: append(append(commonDataFlags(), commonLogFlags()...),
			&cli.Int64Flag{
				Name:        "latent-dim",
				Aliases:     []string{"D"},
				Usage:       "latent dimensionality shared by U and V",
				Value:       2,
				Destination: &latentDim,
			},
			&cli.Int64Flag{
				Name:        "batch-size",
				Aliases:     []string{"b"},
				Usage:       "samples per batch (default 0 = full batch)",
				Destination: &batchSize,
			},
			&cli.Int64Flag{
				Name:        "epochs",
				Aliases:     []string{"e"},
				Usage:       "number of passes over the dataset",
				Value:       200,
				Destination: &epochs,
			},
			&cli.Int64Flag{
				Name:        "seed",
				Usage:       "seed for weight init and sampling noise",
				Value:       1,
				Destination: &seed,
			},
			&cli.Float64Flag{
				Name:        "learn-rate",
				Aliases:     []string{"lr"},
				Usage:       "Adam learning rate",
				Value:       train.DefaultLearnRate,
				Destination: &learnRate,
			},
			&cli.StringFlag{
				Name:        "metrics-file",
				Usage:       "append metrics as JSON lines to this file",
				Destination: &metricsFile,
			},
			&cli.StringFlag{
				Name:        "monitor-addr",
				Usage:       "serve live metrics on this address while training",
				Destination: &monitorAddr,
			},
			&cli.BoolFlag{
				Name:        "deterministic",
				Usage:       "use posterior means instead of sampled latents",
				Destination: &deterministic,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			applyTrainConfig(cmd, cfg, &latentDim, &batchSize, &epochs, &seed,
				&learnRate, &metricsFile, &monitorAddr)

			log := buildLogger()
			if datasetPath == "" {
				return fmt.Errorf("no dataset given, use --data")
			}

			f, err := genio.Open(datasetPath)
			if err != nil {
				return fmt.Errorf("open dataset: %w", err)
			}
			defer func() { _ = f.Close() }()

			b := int(batchSize)
			if b == 0 {
				b = f.Samples()
			}
			cursor, err := genio.NewCursor(f, b)
			if err != nil {
				return err
			}

			runID := uuid.NewString()
			log = log.With("run", runID)
			log.Info("dataset loaded",
				"path", datasetPath,
				"samples", f.Samples(),
				"variants", f.Variants(),
				"ploidy", f.Ploidy(),
				"batch_size", b)

			sinks := metrics.Multi{metrics.LogSink{Log: log}}
			if metricsFile != "" {
				mf, err := os.OpenFile(metricsFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("open metrics file: %w", err)
				}
				defer func() { _ = mf.Close() }()
				sinks = append(sinks, metrics.NewJSONLSink(mf, runID))
			}

			runCtx, cancel := context.WithCancel(logger.WithContext(ctx, log))
			defer cancel()

			if monitorAddr != "" {
				ring := metrics.NewRing(4096, runID)
				sinks = append(sinks, ring)

				e := echo.New()
				e.Use(middleware.Recover())
				monitor.NewServer(ring).Register(e)
				go func() {
					sc := echo.StartConfig{Address: monitorAddr}
					if err := sc.Start(runCtx, e); err != nil && runCtx.Err() == nil {
						log.Error("monitor server stopped", "error", err)
					}
				}()
				log.Info("monitor listening", "address", monitorAddr)
			}

			noise := dist.NewGaussianNoise(seed)
			if deterministic {
				noise = dist.Deterministic()
			}

			m, err := model.New(model.Config{
				Variants:  f.Variants(),
				BatchSize: b,
				LatentDim: int(latentDim),
				Ploidy:    f.Ploidy(),
				Seed:      seed,
			}, noise)
			if err != nil {
				return err
			}

			trainer, err := train.New(train.Config{
				Epochs:    int(epochs),
				LearnRate: learnRate,
			}, m, cursor, sinks, log)
			if err != nil {
				return err
			}

			log.Info("training started",
				"latent_dim", latentDim,
				"epochs", epochs,
				"learn_rate", learnRate,
				"deterministic", deterministic)
			return trainer.Run(runCtx)
		},
	}
}
