package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/trade-analyst/src/eventmodels"
)

func TestConfigure(t *testing.T) {
	t.Run("json to a rotating file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "analyst.log")
		l := logrus.New()

		err := configure(l, eventmodels.LogConfigYAML{Level: "debug", Format: "json", File: path, MaxSizeMB: 1})
		require.NoError(t, err)

		assert.Equal(t, logrus.DebugLevel, l.GetLevel())
		assert.IsType(t, &logrus.JSONFormatter{}, l.Formatter)

		l.WithField("symbol", "NIFTY").Info("polled")

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"symbol":"NIFTY"`)
	})

	t.Run("text to stdout", func(t *testing.T) {
		l := logrus.New()

		require.NoError(t, configure(l, eventmodels.LogConfigYAML{Level: "WARN", Format: "text"}))
		assert.Equal(t, logrus.WarnLevel, l.GetLevel())
		assert.Equal(t, os.Stdout, l.Out)
	})

	t.Run("invalid settings", func(t *testing.T) {
		assert.Error(t, configure(logrus.New(), eventmodels.LogConfigYAML{Level: "loud"}))
		assert.Error(t, configure(logrus.New(), eventmodels.LogConfigYAML{Level: "info", Format: "xml"}))
	})
}
