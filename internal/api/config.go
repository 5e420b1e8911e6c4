package api

import "github.com/FocuswithJustin/stbview/core/stb/extract"

// Config holds server configuration.
type Config struct {
	Port           int
	Root           string          // when set, file names must resolve inside this directory
	CacheSize      int             // parsed documents kept in memory
	SnapshotDB     string          // SQLite snapshot store; empty disables it
	AllowedOrigins []string        // websocket origins (empty = allow all)
	MaxBodyBytes   int64           // request body limit
	Extract        extract.Options // defaults for every parse
	Version        string
}

const (
	defaultCacheSize    = 32
	defaultMaxBodyBytes = 64 << 20
)

func (c Config) withDefaults() Config {
	if c.CacheSize <= 0 {
		c.CacheSize = defaultCacheSize
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = defaultMaxBodyBytes
	}
	if c.Version == "" {
		c.Version = "dev"
	}
	return c
}
