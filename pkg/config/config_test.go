package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadParsesReplicationHosts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{
		"host": "0.0.0.0",
		"port": 7420,
		"database": "data/commands.log",
		"replication": { "hosts": ["10.0.0.2:7420", "10.0.0.3:7420"] }
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", c.Host)
	assert.Equal(t, 7420, c.Port)
	assert.Equal(t, "data/commands.log", c.Database)
	assert.Equal(t, []string{"10.0.0.2:7420", "10.0.0.3:7420"}, c.Replication.Hosts)
	assert.Equal(t, "0.0.0.0:7420", c.Addr())
	assert.NoError(t, c.Validate())
}

func TestValidateRejectsMissingHostOrPort(t *testing.T) {
	assert.Error(t, (&Config{Port: 7420}).Validate())
	assert.Error(t, (&Config{Host: "127.0.0.1"}).Validate())
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
