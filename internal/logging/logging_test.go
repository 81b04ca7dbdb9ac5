package logging_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minitodo/internal/logging"
)

func TestNewWritesPrefixedLines(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, log.DebugLevel)
	logger.Warn("save failed", "key", "tasks")

	out := buf.String()
	assert.Contains(t, out, "todo")
	assert.Contains(t, out, "save failed")
	assert.Contains(t, out, "key=tasks")
}

func TestOpenCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "todo.log")
	logger, closeFn, err := logging.Open(logging.Options{Path: path, Level: "debug"})
	require.NoError(t, err)
	logger.Info("hello")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}

func TestOpenBadLevelFallsBackToInfo(t *testing.T) {
	logger, closeFn, err := logging.Open(logging.Options{Level: "loud"})
	require.NoError(t, err)
	defer closeFn()
	assert.Equal(t, log.InfoLevel, logger.GetLevel())
}
