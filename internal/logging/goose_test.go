package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ goose.Logger = (*GooseLogger)(nil)

func TestGooseLogger_Printf(t *testing.T) {
	var buf bytes.Buffer
	gl := NewGooseLogger(zerolog.New(&buf))

	gl.Printf("OK   %s (%v)\n", "00001_kv_entries.sql", "1.2ms")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "migrate", entry["component"])
	assert.Equal(t, "OK   00001_kv_entries.sql (1.2ms)", entry["message"])
}
