package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/katungi/drizzle-orm/cli/internal/ui"
	"github.com/katungi/drizzle-orm/cli/internal/watch"
	"github.com/katungi/drizzle-orm/psl"
	"github.com/katungi/drizzle-orm/query/schema"
	"github.com/katungi/drizzle-orm/query/sqlgen"
)

var columnHeaders = []string{"key", "column", "type", "not null", "pk", "unique", "default", "references"}

func newDescribeCommand(a *app) *cobra.Command {
	var (
		markdown bool
		watching bool
	)
	cmd := &cobra.Command{
		Use:   "describe [schema]",
		Short: "Show the tables, columns and constraints of a schema file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			render := func() error {
				s, path, err := a.loadSchema(args)
				if err != nil {
					return err
				}
				if markdown {
					return a.out.Markdown(describeMarkdown(s, path))
				}
				return a.describe(s, path)
			}
			if !watching {
				return render()
			}

			path := a.cfg.SchemaPath
			if len(args) > 0 {
				path = args[0]
			}
			w, err := watch.New(path)
			if err != nil {
				return err
			}
			w.OnError = func(err error) { a.out.Error("%v", err) }
			a.out.Info("watching %s, press Ctrl+C to stop", path)
			return w.Run(cmd.Context(), render)
		},
	}
	cmd.Flags().BoolVar(&markdown, "markdown", false, "render as markdown")
	cmd.Flags().BoolVarP(&watching, "watch", "w", false, "describe again whenever the file changes")
	return cmd
}

func (a *app) describe(s *psl.Schema, path string) error {
	a.out.Header("drizzle-go", path)
	for _, e := range s.Enums {
		a.out.Info("enum %s: %s", e.Name, strings.Join(e.Values, ", "))
	}
	for _, t := range s.Tables {
		a.out.Section(t.Name())
		if err := a.out.Table(columnHeaders, columnRows(t, true)); err != nil {
			return err
		}
		for _, c := range t.Constraints() {
			fmt.Fprintf(a.out.Writer(), "  %s %s %s\n", ui.Muted.Sprint(c.Kind()), c.Name(), constraintDetail(c))
		}
	}
	a.out.Success("%d table(s)", len(s.Tables))
	return nil
}

func columnRows(t *schema.Table, marks bool) [][]string {
	flag := func(on bool) string {
		if marks {
			return ui.Check(on)
		}
		if on {
			return "yes"
		}
		return ""
	}
	rows := make([][]string, 0, len(t.Columns()))
	for _, c := range t.Columns() {
		ref := ""
		if target := c.Reference(); target != nil {
			ref = target.Table().Name() + "." + target.ColumnName()
		}
		rows = append(rows, []string{
			c.Key(),
			c.ColumnName(),
			c.SQLType(),
			flag(c.IsNotNull()),
			flag(c.IsPrimaryKey()),
			flag(c.IsUnique()),
			describeDefault(c.Default()),
			ref,
		})
	}
	return rows
}

func describeDefault(d schema.Default) string {
	switch d.Kind {
	case schema.DefaultStatic:
		if s, ok := d.Value.(string); ok {
			return fmt.Sprintf("%q", s)
		}
		return fmt.Sprint(d.Value)
	case schema.DefaultDatabase:
		return "sql: " + sqlText(d.SQL)
	case schema.DefaultApplication:
		return "generated"
	default:
		return ""
	}
}

func constraintDetail(c schema.Constraint) string {
	switch c := c.(type) {
	case schema.CheckDef:
		return "(" + sqlText(c.Expr()) + ")"
	case schema.ForeignKeyConstraint:
		return columnNames(c.Columns()) + " -> " + columnNames(c.ForeignColumns())
	default:
		return columnNames(c.Columns())
	}
}

func columnNames(cols []*schema.Column) string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.ColumnName()
	}
	return "(" + strings.Join(names, ", ") + ")"
}

// sqlText renders a standalone fragment, such as a default or a check
func sqlText(n sqlgen.Node) string {
	if n == nil {
		return ""
	}
	b := sqlgen.NewBuilder(sqlgen.Postgres, nil)
	if err := b.Render(n); err != nil {
		return err.Error()
	}
	return b.Query().SQL
}

func describeMarkdown(s *psl.Schema, path string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", path)
	for _, t := range s.Tables {
		fmt.Fprintf(&sb, "## %s\n\n", t.Name())
		sb.WriteString("| " + strings.Join(columnHeaders, " | ") + " |\n")
		sb.WriteString(strings.Repeat("| --- ", len(columnHeaders)) + "|\n")
		for _, row := range columnRows(t, false) {
			sb.WriteString("| " + strings.Join(row, " | ") + " |\n")
		}
		sb.WriteString("\n")
		for _, c := range t.Constraints() {
			fmt.Fprintf(&sb, "- **%s** `%s` %s\n", c.Kind(), c.Name(), constraintDetail(c))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
