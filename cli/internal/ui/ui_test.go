package ui

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatValue(t *testing.T) {
	color.NoColor = true
	assert.Equal(t, "null", FormatValue(nil))
	assert.Equal(t, "abc", FormatValue([]byte("abc")))
	assert.Equal(t, "42", FormatValue(int64(42)))
	assert.Equal(t, "{id: 1}", FormatValue(map[string]interface{}{"id": 1}))
	assert.Equal(t, "✓", Check(true))
	assert.Equal(t, "", Check(false))
}

func TestPrinterTable(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)
	require.NoError(t, p.Table([]string{"key", "type"}, [][]string{{"id", "serial"}, {"name", "text"}}))
	out := buf.String()
	assert.Contains(t, out, "serial")
	assert.Contains(t, out, "name")

	buf.Reset()
	p.Success("connected to %s", "sqlite")
	assert.Contains(t, buf.String(), "connected to sqlite")
}
