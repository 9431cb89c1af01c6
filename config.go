package coach

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml"
)

// Config is the optional TOML experiment file. Fields are pointers so the
// file only overrides what it names; everything else keeps its
// environment or default value.
type Config struct {
	Optimization OptimizationConfig `toml:"optimization"`
	Architecture ArchitectureConfig `toml:"architecture"`
	Dataset      DatasetConfig      `toml:"dataset"`
}

type OptimizationConfig struct {
	Epochs       *int     `toml:"epochs"`
	StartEpoch   *int     `toml:"start_epoch"`
	LearningRate *float64 `toml:"learning_rate"`
	Momentum     *float64 `toml:"momentum"`
	WeightDecay  *float64 `toml:"weight_decay"`
	Schedule     []int    `toml:"schedule"`
	Gamma        *float64 `toml:"gamma"`
}

type ArchitectureConfig struct {
	Name    *string  `toml:"name"`
	Hidden  *int     `toml:"hidden"`
	Dropout *float64 `toml:"dropout"`
}

type DatasetConfig struct {
	Classes      *int     `toml:"classes"`
	Features     *int     `toml:"features"`
	Samples      *int     `toml:"samples"`
	TestFraction *float64 `toml:"test_fraction"`
	TrainBatch   *int     `toml:"train_batch"`
	TestBatch    *int     `toml:"test_batch"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	tree, err := toml.Load(string(data))
	if err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	var cfg Config
	if err := tree.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}
