package debug

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDisabledDiscards(t *testing.T) {
	var buf bytes.Buffer
	logger := New(false, &buf, FormatText)
	logger.Debug("executing query", "sql", "select 1")
	assert.Empty(t, buf.String())
	assert.False(t, Enabled(logger))
}

func TestNewFormats(t *testing.T) {
	var text bytes.Buffer
	New(true, &text, FormatText).Debug("executing query", "sql", "select 1")
	assert.Contains(t, text.String(), `msg="executing query"`)
	assert.Contains(t, text.String(), `sql="select 1"`)

	var js bytes.Buffer
	logger := New(true, &js, ParseFormat("JSON"))
	logger.Debug("executing query", "sql", "select 1")
	assert.Contains(t, js.String(), `"sql":"select 1"`)
	assert.True(t, Enabled(logger))
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseFormat("json"))
	assert.Equal(t, FormatText, ParseFormat("pretty"))
	assert.Equal(t, FormatText, ParseFormat(""))
}
