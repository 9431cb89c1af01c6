package cli

import (
	"github.com/spf13/cobra"
)

var experimentPath string

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coach [train|evaluate|profile]",
		Short: "Coach training daemon",
		Long:  `Coach runs epoch-based model training with durable checkpoints and an append-only progress ledger.`,
	}

	cmd.PersistentFlags().StringVarP(
		&experimentPath,
		"config",
		"c",
		"",
		"Path to a TOML experiment file overriding the environment",
	)

	cmd.AddCommand(NewTrainCmd())
	cmd.AddCommand(NewEvaluateCmd())
	cmd.AddCommand(NewProfileCmd())

	return cmd
}

// resolveConfig loads the environment and overlays the experiment file
// when one was given on the command line.
func resolveConfig() (envConfig, error) {
	cfg, err := loadEnvConfig()
	if err != nil {
		return envConfig{}, err
	}

	if experimentPath != "" {
		exp, err := loadExperiment(experimentPath)
		if err != nil {
			return envConfig{}, err
		}
		cfg.applyExperiment(exp)
	}

	return cfg, nil
}
