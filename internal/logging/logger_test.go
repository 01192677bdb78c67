package logging

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/natefinch/lumberjack.v2"
)

func TestGetLevel(t *testing.T) {
	for in, want := range map[string]logrus.Level{
		"debug":   logrus.DebugLevel,
		"WARN":    logrus.WarnLevel,
		"warning": logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"trace":   logrus.TraceLevel,
		"":        logrus.InfoLevel,
		"loud":    logrus.InfoLevel,
	} {
		assert.Equal(t, want, GetLevel(in), "level %q", in)
	}
}

func TestSetup_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	Setup(SetupParams{Level: "debug", FormatJSON: true, Output: &buf})
	t.Cleanup(func() { Setup(SetupParams{Level: "info"}) })

	logrus.WithField("exercise", "Push-up").Debug("set completed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "set completed", entry["msg"])
	assert.Equal(t, "Push-up", entry["exercise"])
	assert.Equal(t, "debug", entry["level"])
}

func TestOutput(t *testing.T) {
	var buf bytes.Buffer
	assert.Same(t, &buf, output(SetupParams{Output: &buf, LogFileName: "ignored"}))

	dir := t.TempDir()
	w := output(SetupParams{LogFileName: filepath.Join(dir, "flowfit")})
	fileLogger, ok := w.(*lumberjack.Logger)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "flowfit.log"), fileLogger.Filename)

	_, err := fileLogger.Write([]byte("hello\n"))
	require.NoError(t, err)
	require.NoError(t, fileLogger.Close())
}
