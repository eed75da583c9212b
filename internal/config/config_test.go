package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	require.Equal(t, ":2222", cfg.Address)
	require.Equal(t, uint16(54621), cfg.ServerKey)
	require.Equal(t, uint16(45328), cfg.ClientKey)
	require.Equal(t, 1000*time.Millisecond, cfg.ReadTimeout())
	require.Equal(t, 5000*time.Millisecond, cfg.ChargingTimeout())
	require.Equal(t, 15000*time.Millisecond, cfg.AcceptTimeout())
}

func TestLoadFileMissingPathIsNotAnError(t *testing.T) {
	cfg, err := LoadFile(Default(), "")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)

	cfg, err = LoadFile(Default(), filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadFileOverridesOnlyGivenFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "robotserver.yaml")
	require.NoError(t, os.WriteFile(path, []byte("address: \":9999\"\nmax_connections: 50\n"), 0o644))

	cfg, err := LoadFile(Default(), path)
	require.NoError(t, err)
	require.Equal(t, ":9999", cfg.Address)
	require.Equal(t, 50, cfg.MaxConnections)
	require.Equal(t, uint16(54621), cfg.ServerKey) // untouched by the file
}
