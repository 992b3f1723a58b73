package commands

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/katungi/drizzle-orm/cli/internal/ui"
	"github.com/katungi/drizzle-orm/psl"
	"github.com/katungi/drizzle-orm/query/executor"
	"github.com/katungi/drizzle-orm/query/schema"
	"github.com/katungi/drizzle-orm/runtime/client"
)

var (
	errNoDatabaseURL = errors.New("no database URL: set DATABASE_URL or --url")
	errNoProvider    = errors.New("no provider: set --provider or provider in the config file")
	errUnknownTable  = errors.New("unknown table")
)

func (a *app) loadSchema(args []string) (*psl.Schema, string, error) {
	path := a.cfg.SchemaPath
	if len(args) > 0 {
		path = args[0]
	}
	s, err := psl.Load(a.fs, path)
	if err != nil {
		return nil, path, fmt.Errorf("failed to load schema %s: %w", path, err)
	}
	a.logger.Debug("schema loaded", "path", path, "tables", len(s.Tables))
	return s, path, nil
}

func (a *app) openClient() (*client.Client, error) {
	if a.cfg.DatabaseURL == "" {
		return nil, errNoDatabaseURL
	}
	if a.cfg.Provider == "" {
		return nil, errNoProvider
	}
	return client.Open(client.Options{
		Provider: a.cfg.Provider,
		DSN:      a.cfg.DatabaseURL,
		Logger:   a.logger,
	})
}

func (a *app) table(s *psl.Schema, name string) (*schema.Table, error) {
	t, ok := s.Table(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errUnknownTable, name)
	}
	return t, nil
}

// printRows prints positional rows as returned by the database
func (a *app) printRows(rows *executor.Rows) error {
	if rows == nil || len(rows.Columns) == 0 {
		a.out.Success("statement executed")
		return nil
	}
	cells := make([][]string, len(rows.Values))
	for i, row := range rows.Values {
		cells[i] = make([]string, len(row))
		for j, v := range row {
			cells[i][j] = ui.FormatValue(v)
		}
	}
	if err := a.out.Table(rows.Columns, cells); err != nil {
		return err
	}
	a.out.Info("%d row(s)", len(rows.Values))
	return nil
}

// printResults prints shaped rows with keys as columns
func (a *app) printResults(results []map[string]interface{}) error {
	if len(results) == 0 {
		a.out.Info("0 row(s)")
		return nil
	}
	keys := make([]string, 0, len(results[0]))
	for k := range results[0] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	cells := make([][]string, len(results))
	for i, r := range results {
		cells[i] = make([]string, len(keys))
		for j, k := range keys {
			cells[i][j] = ui.FormatValue(r[k])
		}
	}
	if err := a.out.Table(keys, cells); err != nil {
		return err
	}
	a.out.Info("%d row(s)", len(results))
	return nil
}

// parseArg converts a command line value for a column of kind
func parseArg(kind schema.DataKind, s string) (interface{}, error) {
	if s == "null" {
		return nil, nil
	}
	switch kind {
	case schema.KindInt:
		return strconv.ParseInt(s, 10, 64)
	case schema.KindFloat:
		return strconv.ParseFloat(s, 64)
	case schema.KindBool:
		return strconv.ParseBool(s)
	default:
		return s, nil
	}
}
