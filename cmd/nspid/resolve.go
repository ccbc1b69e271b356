package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/KilimcininKorOglu/nspid/internal/logging"
	"github.com/KilimcininKorOglu/nspid/internal/nspi"
)

type resolveFlags struct {
	configFile  string
	containerID uint32
}

func newResolveCmd() *cobra.Command {
	flags := &resolveFlags{}

	cmd := &cobra.Command{
		Use:   "resolve NAME...",
		Short: "Resolve names against the address book offline",
		Long: `Resolve names with ambiguous name resolution against the address book
built from the configured seed file, without starting the server. Each name
prints its outcome and the matching display names.`,
		Example: `  nspid resolve --config config.yaml "Alice Smith" bob
  nspid resolve --config config.yaml --container 1 alice`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags.configFile)
			if err != nil {
				return err
			}
			cfg.Storage.Path = ""

			logger := logging.NewNop()
			store, err := openStore(cfg, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			srv, _, err := newFacade(cfg, store, logger)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tOUTCOME\tMATCHES")
			for _, name := range args {
				m, err := srv.ResolveOne(flags.containerID, name)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\t", name, outcome(m.Outcome))
				for i, mid := range m.Candidates {
					if i > 0 {
						fmt.Fprint(w, ", ")
					}
					if obj, ok := store.Object(mid); ok {
						fmt.Fprintf(w, "%s (0x%X)", obj.DisplayName(), uint32(mid))
					}
				}
				fmt.Fprintln(w)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&flags.configFile, "config", "", "Path to configuration file")
	cmd.Flags().Uint32Var(&flags.containerID, "container", nspi.GALContainerID, "Container to resolve in")
	return cmd
}

func outcome(mid nspi.MId) string {
	switch mid {
	case nspi.MIDResolved:
		return "resolved"
	case nspi.MIDAmbiguous:
		return "ambiguous"
	default:
		return "unresolved"
	}
}
