package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPathTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "data.db"), ExpandPath("~/data.db"))
	assert.Equal(t, home, ExpandPath("~"))
}

func TestExpandPathEnvVar(t *testing.T) {
	t.Setenv("CENTAVO_TEST_DIR", "/tmp/centavo")

	assert.Equal(t, "/tmp/centavo/data.db", ExpandPath("$CENTAVO_TEST_DIR/data.db"))
}

func TestExpandPathPassthrough(t *testing.T) {
	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, "/var/lib/centavo.db", ExpandPath("/var/lib/centavo.db"))
}
