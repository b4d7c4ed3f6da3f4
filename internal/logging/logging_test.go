package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "debug", Format: "json"}, &buf)
	assert.Equal(t, logrus.DebugLevel, log.Level)

	log.WithField("component", "cart").Info("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["message"])
	assert.Equal(t, "info", line["severity"])
	assert.Equal(t, "cart", line["component"])
	assert.Contains(t, line, "timestamp")
}

func TestNew_BadLevelFallsBackToInfo(t *testing.T) {
	log := New(Options{Level: "loud"}, &bytes.Buffer{})
	assert.Equal(t, logrus.InfoLevel, log.Level)
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)
}
