package notify

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	var r Recorder
	_, ok := r.Last()
	assert.False(t, ok)

	r.Success("Added Milk to cart")
	r.Error("Your cart is empty")

	last, ok := r.Last()
	require.True(t, ok)
	assert.Equal(t, Notification{Level: LevelError, Message: "Your cart is empty"}, last)
	assert.Len(t, r.All(), 2)

	drained := r.Drain()
	assert.Len(t, drained, 2)
	assert.Empty(t, r.All())
}

func TestLog(t *testing.T) {
	logger, hook := test.NewNullLogger()
	n := NewLog(logger)

	n.Success("Cart cleared")
	n.Error("Insufficient stock for: Milk")

	require.Len(t, hook.AllEntries(), 2)
	assert.Equal(t, logrus.InfoLevel, hook.AllEntries()[0].Level)
	assert.Equal(t, LevelSuccess, hook.AllEntries()[0].Data["notification"])
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "Insufficient stock for: Milk", hook.LastEntry().Message)
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	n := NewWriter(&buf)
	n.Info("Cart updated with latest product information")
	n.Error("Your cart is empty")
	assert.Equal(t, "[info] Cart updated with latest product information\n[error] Your cart is empty\n", buf.String())
}
