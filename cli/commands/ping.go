package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/katungi/drizzle-orm/cli/internal/compat"
	"github.com/katungi/drizzle-orm/query/sqlgen"
)

func newPingCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check the database connection and server version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.openClient()
			if err != nil {
				return err
			}
			defer c.Close()

			ctx := cmd.Context()
			if err := c.Ping(ctx); err != nil {
				return fmt.Errorf("failed to connect: %w", err)
			}
			provider := c.Dialect().Provider()
			a.out.Success("connected to %s", provider)

			rows, err := c.Execute(ctx, sqlgen.Raw(compat.VersionQuery(provider)))
			if err != nil {
				return err
			}
			if len(rows.Values) == 0 || len(rows.Values[0]) == 0 {
				return compat.ErrUnknownVersion
			}
			raw := rows.Values[0][0]
			if b, ok := raw.([]byte); ok {
				raw = string(b)
			}
			server, err := compat.ParseServerVersion(fmt.Sprint(raw))
			if err != nil {
				return err
			}
			a.out.Info("server version %s", server)
			for _, missing := range compat.Check(provider, server) {
				a.out.Warning("%s", missing)
			}
			return nil
		},
	}
}
