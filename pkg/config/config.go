// Package config loads the server's JSON configuration file: listen
// address, the append-log path, and the replication peer list. Grounded
// on nornicdb/pkg/config/config.go's Config/Validate shape, trading its
// environment-variable loader for the single JSON file this system's
// wire/storage contract actually specifies.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Replication holds the addresses of peer instances that receive a
// queued, asynchronously delivered copy of every accepted mutation.
type Replication struct {
	Hosts []string `json:"hosts"`
}

// Config is the on-disk shape of a server's configuration file.
type Config struct {
	Host        string      `json:"host"`
	Port        int         `json:"port"`
	Database    string      `json:"database"`
	Replication Replication `json:"replication"`
}

// Load reads and parses the JSON configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &c, nil
}

// Validate rejects a configuration that cannot be used to start a
// server: a missing listen host or a non-positive port. The database
// path and replication host list may both legitimately be empty (no
// durability, no replication).
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("config: host must not be empty")
	}
	if c.Port <= 0 {
		return fmt.Errorf("config: invalid port: %d", c.Port)
	}
	return nil
}

// Addr renders the host/port pair as a net.Listen-compatible address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
