package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// jsonConfig is the on-disk form. Pointer fields distinguish "absent" from zero.
type jsonConfig struct {
	Store          *string `json:"store"`
	DataDir        *string `json:"data_dir"`
	DSN            *string `json:"dsn"`
	LogLevel       *string `json:"log_level"`
	MigrateOnStart *bool   `json:"migrate_on_start"`
	KDF            *struct {
		Time      uint32 `json:"time"`
		MemoryKiB uint32 `json:"memory_kib"`
		Threads   uint8  `json:"threads"`
	} `json:"kdf"`
}

// parseJSON overlays cfg with the values present in the file at path.
func parseJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	if jc.Store != nil {
		cfg.Store = *jc.Store
	}
	if jc.DataDir != nil {
		cfg.DataDir = *jc.DataDir
	}
	if jc.DSN != nil {
		cfg.DSN = *jc.DSN
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
	if jc.MigrateOnStart != nil {
		cfg.MigrateOnStart = *jc.MigrateOnStart
	}
	if jc.KDF != nil {
		cfg.KDF.Time = jc.KDF.Time
		cfg.KDF.MemoryKiB = jc.KDF.MemoryKiB
		cfg.KDF.Threads = jc.KDF.Threads
	}
	return nil
}
