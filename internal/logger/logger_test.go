package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Run("Should write JSON records with key values", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(&Config{Output: &buf, Level: "info", JSON: true})
		l.With("request_id", "abc").Info("post created", "id", 7)

		var rec map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
		assert.Equal(t, "post created", rec["msg"])
		assert.Equal(t, "abc", rec["request_id"])
		assert.EqualValues(t, 7, rec["id"])
	})
	t.Run("Should drop records below the configured level", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(&Config{Output: &buf, Level: "warn"})
		l.Info("ignored")
		assert.Empty(t, buf.String())
		l.Warn("kept")
		assert.Contains(t, buf.String(), "kept")
	})
	t.Run("Should default to info on an unknown level", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(&Config{Output: &buf, Level: "loud"})
		l.Debug("hidden")
		l.Info("shown")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})
}

func TestFromContext(t *testing.T) {
	t.Run("Should return the logger stored in the context", func(t *testing.T) {
		l := Discard()
		ctx := ContextWithLogger(context.Background(), l)
		assert.Same(t, l, FromContext(ctx))
	})
	t.Run("Should fall back to the default logger", func(t *testing.T) {
		assert.Same(t, GetDefault(), FromContext(context.Background()))
	})
}
