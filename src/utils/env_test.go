package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitEnvironmentVariables(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.test"), []byte("ANALYST_TEST_KEY=from-file\n"), 0o644))

	t.Cleanup(func() { os.Unsetenv("ANALYST_TEST_KEY") })

	require.NoError(t, InitEnvironmentVariables(dir, "test"))

	value, err := GetEnv("ANALYST_TEST_KEY")
	require.NoError(t, err)
	assert.Equal(t, "from-file", value)

	assert.NoError(t, InitEnvironmentVariables(dir, "staging"))
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ANALYST_SET", "x")

	value, err := GetEnv("ANALYST_SET")
	require.NoError(t, err)
	assert.Equal(t, "x", value)

	_, err = GetEnv("ANALYST_MISSING_KEY")
	assert.Error(t, err)

	assert.Equal(t, "fallback", GetEnvOrDefault("ANALYST_MISSING_KEY", "fallback"))
}
