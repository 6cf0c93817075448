package store

import (
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
)

// Config holds the configuration for the underlying BadgerDB.
type Config struct {
	// DataDir is the directory where BadgerDB will store its data.
	DataDir string

	// InMemory enables in-memory mode (useful for testing).
	InMemory bool

	// BlockCacheSize is the size of the block cache in bytes.
	BlockCacheSize int64

	// IndexCacheSize is the size of the index cache in bytes.
	IndexCacheSize int64

	// LabelCacheSize is the number of resolved type labels kept in the LRU
	// in front of the type registry.
	LabelCacheSize int

	// Compression enables ZSTD compression.
	Compression bool

	// SyncWrites enables synchronous writes. Disabled for performance, but
	// may lose recent writes on crash.
	SyncWrites bool

	// Profile specifies the resource profile ("Write-Heavy", "Safe-Serving").
	// Defaults to "Write-Heavy" if empty.
	Profile string

	// ReadOnly enables read-only mode.
	ReadOnly bool
}

// Validate checks if the configuration is valid and returns an error if not.
func (c *Config) Validate() error {
	if c.DataDir == "" && !c.InMemory {
		return fmt.Errorf("DataDir must be specified when InMemory is false")
	}
	if c.BlockCacheSize <= 0 {
		return fmt.Errorf("BlockCacheSize must be positive, got %d", c.BlockCacheSize)
	}
	if c.IndexCacheSize <= 0 {
		return fmt.Errorf("IndexCacheSize must be positive, got %d", c.IndexCacheSize)
	}
	if c.LabelCacheSize <= 0 {
		return fmt.Errorf("LabelCacheSize must be positive, got %d", c.LabelCacheSize)
	}
	return nil
}

// DefaultConfig returns a production-ready configuration.
func DefaultConfig(dataDir string) *Config {
	return &Config{
		DataDir:        dataDir,
		InMemory:       false,
		BlockCacheSize: 1 << 30,  // 1GB
		IndexCacheSize: 256 << 20, // 256MB
		LabelCacheSize: 10000,
		Compression:    true,
		SyncWrites:     false,
		Profile:        "Write-Heavy",
	}
}

// buildBadgerOptions converts Config to badger.Options based on Profile.
func buildBadgerOptions(cfg *Config) badger.Options {
	opts := badger.DefaultOptions(filepath.Join(cfg.DataDir, "badger"))

	if cfg.InMemory {
		opts = badger.DefaultOptions("")
		opts.InMemory = true
		opts.Logger = nil
		return opts
	}

	// Conflict detection is unnecessary: one writer per store, serialized by
	// the caller.
	opts.DetectConflicts = false
	opts.BloomFalsePositive = 0.01
	opts.Logger = nil // structured logging happens at this layer instead

	if cfg.ReadOnly {
		opts.ReadOnly = true
	}

	if cfg.Compression {
		opts.Compression = options.ZSTD
	} else {
		opts.Compression = options.None
	}

	switch cfg.Profile {
	case "Safe-Serving":
		// Low RAM environments: small value log, minimum compactors.
		opts.ValueLogFileSize = 64 << 20 // 64MB
		opts.NumCompactors = 2

	case "Write-Heavy":
		fallthrough
	default:
		opts.ValueLogFileSize = 1 << 30 // 1GB
		opts.NumCompactors = 4
	}

	opts.BlockCacheSize = cfg.BlockCacheSize
	opts.IndexCacheSize = cfg.IndexCacheSize
	opts.SyncWrites = cfg.SyncWrites

	return opts
}

// openBadgerDB opens a BadgerDB instance with the given configuration.
func openBadgerDB(cfg *Config) (*badger.DB, error) {
	return badger.Open(buildBadgerOptions(cfg))
}
