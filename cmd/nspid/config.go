package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KilimcininKorOglu/nspid/internal/config"
)

// loadConfig reads and validates the configuration file. An empty path
// yields the defaults.
func loadConfig(path string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = config.LoadConfig(path); err != nil {
			return nil, err
		}
	}

	if errs := config.ValidateConfig(cfg); len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return cfg, nil
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}

	cmd.AddCommand(newConfigPrintCmd())
	cmd.AddCommand(newConfigValidateCmd())
	return cmd
}

func newConfigPrintCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "print",
		Short: "Print the effective configuration as YAML",
		Long: `Print the effective configuration as YAML. Without --config the
defaults are printed, which makes a starting point for a new file.`,
		Example: `  nspid config print > /etc/nspid/config.yaml
  nspid config print --config /etc/nspid/config.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile)
			if err != nil {
				return err
			}
			data, err := config.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "Path to configuration file")
	return cmd
}

func newConfigValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate FILE",
		Short: "Validate a configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(args[0])
			if err != nil {
				return err
			}
			if errs := config.ValidateConfig(cfg); len(errs) > 0 {
				out := cmd.ErrOrStderr()
				fmt.Fprintln(out, "Configuration errors:")
				for _, e := range errs {
					fmt.Fprintf(out, "  - %s\n", e)
				}
				return fmt.Errorf("%d configuration errors", len(errs))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Configuration is valid")
			return nil
		},
	}
	return cmd
}
