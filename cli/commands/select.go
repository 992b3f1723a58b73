package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/katungi/drizzle-orm/query/builder"
	"github.com/katungi/drizzle-orm/query/expr"
	"github.com/katungi/drizzle-orm/query/schema"
	"github.com/katungi/drizzle-orm/query/sqlgen"
)

type selectOptions struct {
	columns []string
	where   []string
	order   []string
	limit   int
	offset  int
	dryRun  bool
}

func newSelectCommand(a *app) *cobra.Command {
	var opts selectOptions
	cmd := &cobra.Command{
		Use:   "select <table>",
		Short: "Query a table declared in the schema file",
		Example: `  drizzle-go select users --columns id,name --where name=John --order -id --limit 10
  drizzle-go select users --where cityId=null --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := a.loadSchema(nil)
			if err != nil {
				return err
			}
			t, err := a.table(s, args[0])
			if err != nil {
				return err
			}

			if opts.dryRun {
				provider := a.cfg.Provider
				if provider == "" {
					provider = string(sqlgen.PostgreSQL)
				}
				dialect, err := sqlgen.NewDialect(provider)
				if err != nil {
					return err
				}
				sel, err := buildSelect(builder.New(dialect), t, opts)
				if err != nil {
					return err
				}
				q, err := sel.ToSQL()
				if err != nil {
					return err
				}
				a.out.Code(q.SQL, q.Args)
				return nil
			}

			c, err := a.openClient()
			if err != nil {
				return err
			}
			defer c.Close()
			sel, err := buildSelect(c.QueryBuilder, t, opts)
			if err != nil {
				return err
			}
			results, err := sel.All(cmd.Context())
			if err != nil {
				return err
			}
			return a.printResults(results)
		},
	}
	f := cmd.Flags()
	f.StringSliceVarP(&opts.columns, "columns", "c", nil, "column keys to select (default all)")
	f.StringArrayVar(&opts.where, "where", nil, "key=value equality filter, repeatable; value null tests for null")
	f.StringSliceVar(&opts.order, "order", nil, "column keys to order by; prefix with - for descending")
	f.IntVar(&opts.limit, "limit", -1, "maximum number of rows")
	f.IntVar(&opts.offset, "offset", 0, "rows to skip")
	f.BoolVar(&opts.dryRun, "dry-run", false, "print the SQL instead of running it")
	return cmd
}

func buildSelect(qb *builder.QueryBuilder, t *schema.Table, opts selectOptions) (*builder.SelectBuilder, error) {
	column := func(key string) (*schema.Column, error) {
		col, ok := t.Column(key)
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s", schema.ErrUnknownColumn, t.Name(), key)
		}
		return col, nil
	}

	var sel *builder.SelectBuilder
	if len(opts.columns) == 0 {
		sel = qb.Select()
	} else {
		fields := make(builder.FieldList, 0, len(opts.columns))
		for _, key := range opts.columns {
			col, err := column(key)
			if err != nil {
				return nil, err
			}
			fields = append(fields, builder.F(key, col))
		}
		sel = qb.Select(fields)
	}
	sel = sel.From(t)

	var conds []sqlgen.Node
	for _, w := range opts.where {
		key, raw, ok := strings.Cut(w, "=")
		if !ok {
			return nil, fmt.Errorf("invalid filter %q, want key=value", w)
		}
		col, err := column(key)
		if err != nil {
			return nil, err
		}
		value, err := parseArg(col.Kind(), raw)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", key, err)
		}
		if value == nil {
			conds = append(conds, expr.IsNull(col))
		} else {
			conds = append(conds, expr.Eq(col, value))
		}
	}
	if len(conds) > 0 {
		sel = sel.Where(expr.And(conds...))
	}

	var order []sqlgen.Node
	for _, key := range opts.order {
		desc := strings.HasPrefix(key, "-")
		col, err := column(strings.TrimPrefix(key, "-"))
		if err != nil {
			return nil, err
		}
		if desc {
			order = append(order, expr.Desc(col))
		} else {
			order = append(order, expr.Asc(col))
		}
	}
	if len(order) > 0 {
		sel = sel.OrderBy(order...)
	}
	if opts.limit >= 0 {
		sel = sel.Limit(opts.limit)
	}
	if opts.offset > 0 {
		sel = sel.Offset(opts.offset)
	}
	return sel, nil
}
