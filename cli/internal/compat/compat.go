// Package compat compares a database server version with the minimum
// versions of the SQL features the query compiler can emit.
package compat

import (
	"errors"
	"fmt"
	"regexp"
	"sort"

	"github.com/hashicorp/go-version"

	"github.com/katungi/drizzle-orm/query/sqlgen"
)

var ErrUnknownVersion = errors.New("cannot parse server version")

// Feature is a SQL construct with a minimum server version
type Feature string

const (
	Returning       Feature = "returning"
	OnConflict      Feature = "on conflict"
	CTE             Feature = "with"
	WindowFunctions Feature = "window functions"
	SkipLocked      Feature = "skip locked"
	NoWait          Feature = "nowait"
)

var minimums = map[sqlgen.Provider]map[Feature]string{
	sqlgen.PostgreSQL: {
		Returning:       "8.2",
		CTE:             "8.4",
		WindowFunctions: "8.4",
		OnConflict:      "9.5",
		SkipLocked:      "9.5",
		NoWait:          "8.1",
	},
	sqlgen.MySQL: {
		CTE:             "8.0",
		WindowFunctions: "8.0",
		SkipLocked:      "8.0.1",
		NoWait:          "8.0.1",
	},
	sqlgen.SQLite: {
		CTE:             "3.8.3",
		OnConflict:      "3.24.0",
		WindowFunctions: "3.25.0",
		Returning:       "3.35.0",
	},
}

// VersionQuery returns the statement reporting the server version
func VersionQuery(p sqlgen.Provider) string {
	if p == sqlgen.SQLite {
		return "select sqlite_version()"
	}
	return "select version()"
}

var versionPattern = regexp.MustCompile(`\d+(?:\.\d+)+`)

// ParseServerVersion extracts the version from strings such as
// "PostgreSQL 16.2 on x86_64-pc-linux-gnu" or "8.0.36-0ubuntu0.22.04.1".
func ParseServerVersion(raw string) (*version.Version, error) {
	match := versionPattern.FindString(raw)
	if match == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVersion, raw)
	}
	return version.NewVersion(match)
}

// Unsupported is a feature the server is too old for
type Unsupported struct {
	Feature Feature
	Minimum *version.Version
}

func (u Unsupported) String() string {
	return fmt.Sprintf("%s requires %s", u.Feature, u.Minimum)
}

// Check lists the features server does not support, sorted by feature
func Check(p sqlgen.Provider, server *version.Version) []Unsupported {
	var out []Unsupported
	for feature, min := range minimums[p] {
		minimum := version.Must(version.NewVersion(min))
		if server.LessThan(minimum) {
			out = append(out, Unsupported{Feature: feature, Minimum: minimum})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Feature < out[j].Feature })
	return out
}
