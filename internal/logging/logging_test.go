package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("JSON", func(t *testing.T) {
		var buf bytes.Buffer
		New("JSON", &buf).Info("hello", "bucket", "uploads")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "hello", entry["msg"])
		assert.Equal(t, "uploads", entry["bucket"])
	})

	t.Run("Text", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New("text", &buf)
		logger.Debug("hidden")
		logger.Info("hello")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "msg=hello")
	})
}
