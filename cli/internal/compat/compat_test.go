package compat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katungi/drizzle-orm/query/sqlgen"
)

func TestParseServerVersion(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"PostgreSQL 16.2 on x86_64-pc-linux-gnu, compiled by gcc", "16.2.0"},
		{"8.0.36-0ubuntu0.22.04.1", "8.0.36"},
		{"3.45.1", "3.45.1"},
	}
	for _, tt := range tests {
		v, err := ParseServerVersion(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, v.String())
	}

	_, err := ParseServerVersion("unknown")
	assert.ErrorIs(t, err, ErrUnknownVersion)
}

func TestCheck(t *testing.T) {
	v, err := ParseServerVersion("3.31.1")
	require.NoError(t, err)
	missing := Check(sqlgen.SQLite, v)
	require.Len(t, missing, 1)
	assert.Equal(t, Returning, missing[0].Feature)
	assert.Equal(t, "returning requires 3.35.0", missing[0].String())

	v, err = ParseServerVersion("5.7.44")
	require.NoError(t, err)
	var features []Feature
	for _, u := range Check(sqlgen.MySQL, v) {
		features = append(features, u.Feature)
	}
	assert.Equal(t, []Feature{NoWait, SkipLocked, WindowFunctions, CTE}, features)

	v, err = ParseServerVersion("PostgreSQL 15.4")
	require.NoError(t, err)
	assert.Empty(t, Check(sqlgen.PostgreSQL, v))
}

func TestVersionQuery(t *testing.T) {
	assert.Equal(t, "select sqlite_version()", VersionQuery(sqlgen.SQLite))
	assert.Equal(t, "select version()", VersionQuery(sqlgen.MySQL))
}
