package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the genovae configuration file
// (~/.config/genovae/config.yaml). All numeric fields are pointers so we can
// distinguish "not set" from zero values.
type Config struct {
	LatentDim *int64   `yaml:"latent_dim"`
	BatchSize *int64   `yaml:"batch_size"`
	Epochs    *int64   `yaml:"epochs"`
	LearnRate *float64 `yaml:"learn_rate"`
	Seed      *int64   `yaml:"seed"`

	MetricsFile    string `yaml:"metrics_file"`
	MonitorAddress string `yaml:"monitor_address"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "genovae", "config.yaml")
}

// LoadConfig reads the config file. Returns a zero Config if the file does
// not exist.
func LoadConfig() (Config, error) {
	path := configPath()
	if path == "" {
		return Config{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyTrainConfig applies config file defaults to train command variables
// when the corresponding CLI flag was not explicitly set.
func applyTrainConfig(c *cli.Command, cfg Config,
	latentDim, batchSize, epochs, seed *int64, learnRate *float64,
	metricsFile, monitorAddr *string,
) {
	if cfg.LatentDim != nil && !c.IsSet("latent-dim") {
		*latentDim = *cfg.LatentDim
	}
	if cfg.BatchSize != nil && !c.IsSet("batch-size") {
		*batchSize = *cfg.BatchSize
	}
	if cfg.Epochs != nil && !c.IsSet("epochs") {
		*epochs = *cfg.Epochs
	}
	if cfg.Seed != nil && !c.IsSet("seed") {
		*seed = *cfg.Seed
	}
	if cfg.LearnRate != nil && !c.IsSet("learn-rate") && !c.IsSet("lr") {
		*learnRate = *cfg.LearnRate
	}
	if cfg.MetricsFile != "" && !c.IsSet("metrics-file") {
		*metricsFile = cfg.MetricsFile
	}
	if cfg.MonitorAddress != "" && !c.IsSet("monitor-addr") {
		*monitorAddr = cfg.MonitorAddress
	}
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}
