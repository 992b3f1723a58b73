package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/katungi/drizzle-orm/cli/internal/version"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// version needs no configuration
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			info := version.Get()
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, info.FullString())
			providers := make([]string, 0, len(info.Drivers))
			for p := range info.Drivers {
				providers = append(providers, p)
			}
			sort.Strings(providers)
			for _, p := range providers {
				fmt.Fprintf(w, "Driver %s: %s\n", p, info.Drivers[p])
			}
		},
	}
}
