package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_TagsService(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "dispatcher", slog.LevelInfo)

	logger.Info("confirmation sent", "order_id", "48213377")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "dispatcher", line["service"])
	assert.Equal(t, "48213377", line["order_id"])
	assert.Equal(t, "confirmation sent", line["msg"])
}

func TestNewWithWriter_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "worker", slog.LevelWarn)

	logger.Info("ignored")

	assert.Zero(t, buf.Len())
}

func TestTemporal_Adapts(t *testing.T) {
	var buf bytes.Buffer
	tl := Temporal(NewWithWriter(&buf, "worker", slog.LevelInfo))

	tl.Info("workflow started", "order_id", "1")

	assert.Contains(t, buf.String(), "workflow started")
}
