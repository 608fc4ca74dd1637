package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	defer func() { Root, Store, Engine = zerolog.Nop(), zerolog.Nop(), zerolog.Nop() }()

	var buf bytes.Buffer
	Init(Options{LogLevel: zerolog.InfoLevel, Type: JSONLogger, Out: &buf})

	Store.Debug().Msg("hidden")
	Store.Info().Str("location", "/tmp/x").Msg("store opened")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "store", line["component"])
	assert.Equal(t, "store opened", line["message"])
	assert.Equal(t, "/tmp/x", line["location"])

	buf.Reset()
	Init(Options{LogLevel: zerolog.InfoLevel, Type: ConsoleLogger, Out: &buf})
	Engine.Warn().Msg("compaction stalled")
	assert.Contains(t, buf.String(), `| WARN  |`)
	assert.Contains(t, buf.String(), `message: "compaction stalled"`)
	assert.Contains(t, buf.String(), `"component": "engine" |`)
}

func TestParse(t *testing.T) {
	typ, err := ParseLoggerType("JSON")
	require.NoError(t, err)
	assert.Equal(t, JSONLogger, typ)

	_, err = ParseLoggerType("xml")
	assert.Error(t, err)

	lvl, err := ParseLogLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, lvl)
}
