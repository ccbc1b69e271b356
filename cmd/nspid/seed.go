package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KilimcininKorOglu/nspid/internal/directory"
)

func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Work with address book seed files",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "validate FILE",
		Short: "Check that a seed file builds an address book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := directory.LoadSeed(args[0])
			if err != nil {
				return err
			}
			store, err := seed.Build()
			if err != nil {
				return err
			}
			defer store.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "Seed is valid: %d containers, %d objects, %d templates\n",
				len(store.Hierarchy()), len(seed.Objects), len(seed.Templates))
			return nil
		},
	})

	return cmd
}
