package commands

import (
	"github.com/spf13/cobra"

	"github.com/katungi/drizzle-orm/query/sqlgen"
)

func newSQLCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "sql <statement> [args...]",
		Short:   "Run a raw statement; each ? binds the next argument",
		Example: `  drizzle-go sql "select * from users where name = ?" John`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.openClient()
			if err != nil {
				return err
			}
			defer c.Close()

			params := make([]interface{}, len(args)-1)
			for i, arg := range args[1:] {
				params[i] = arg
			}
			rows, err := c.Execute(cmd.Context(), sqlgen.Expr(args[0], params...))
			if err != nil {
				return err
			}
			return a.printRows(rows)
		},
	}
}
