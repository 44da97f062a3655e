package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

const DefaultPath = "wirectl.toml"

// Config is the resolved wirectl configuration.
type Config struct {
	Codec   CodecConfig
	Inspect InspectConfig
}

type CodecConfig struct {
	MaxPayloadBytes    uint32
	MaxStringBytes     int
	MaxBlobBytes       int
	MaxCollectionCount int
	StrictInvariants   bool
}

type InspectConfig struct {
	Addr        string
	CorsOrigins []string
}

// fileConfig mirrors wirectl.toml. Absent keys keep their defaults.
type fileConfig struct {
	Codec struct {
		MaxPayloadBytes    uint32 `toml:"max_payload_bytes"`
		MaxStringBytes     int    `toml:"max_string_bytes"`
		MaxBlobBytes       int    `toml:"max_blob_bytes"`
		MaxCollectionCount int    `toml:"max_collection_count"`
		StrictInvariants   bool   `toml:"strict_invariants"`
	} `toml:"codec"`
	Inspect struct {
		Addr        string   `toml:"addr"`
		CorsOrigins []string `toml:"cors_origins"`
	} `toml:"inspect"`
}

func DefaultConfig() Config {
	return Config{
		Codec: CodecConfig{
			MaxPayloadBytes:    64 << 10,
			MaxStringBytes:     16 << 10,
			MaxBlobBytes:       1 << 20,
			MaxCollectionCount: 10_000,
		},
		Inspect: InspectConfig{
			Addr:        "127.0.0.1:9300",
			CorsOrigins: []string{"http://localhost:3000"},
		},
	}
}

// Load reads path and overlays the keys it defines onto DefaultConfig.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config (%s): unknown key %s", path, undecoded[0])
	}

	if meta.IsDefined("codec", "max_payload_bytes") {
		cfg.Codec.MaxPayloadBytes = raw.Codec.MaxPayloadBytes
	}
	if meta.IsDefined("codec", "max_string_bytes") {
		cfg.Codec.MaxStringBytes = raw.Codec.MaxStringBytes
	}
	if meta.IsDefined("codec", "max_blob_bytes") {
		cfg.Codec.MaxBlobBytes = raw.Codec.MaxBlobBytes
	}
	if meta.IsDefined("codec", "max_collection_count") {
		cfg.Codec.MaxCollectionCount = raw.Codec.MaxCollectionCount
	}
	if meta.IsDefined("codec", "strict_invariants") {
		cfg.Codec.StrictInvariants = raw.Codec.StrictInvariants
	}
	if meta.IsDefined("inspect", "addr") {
		cfg.Inspect.Addr = strings.TrimSpace(raw.Inspect.Addr)
	}
	if meta.IsDefined("inspect", "cors_origins") {
		cfg.Inspect.CorsOrigins = raw.Inspect.CorsOrigins
	}

	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("load config (%s): %w", path, err)
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if cfg.Codec.MaxPayloadBytes == 0 {
		return fmt.Errorf("codec.max_payload_bytes must be positive")
	}
	if cfg.Codec.MaxStringBytes <= 0 {
		return fmt.Errorf("codec.max_string_bytes must be positive")
	}
	if cfg.Codec.MaxBlobBytes <= 0 {
		return fmt.Errorf("codec.max_blob_bytes must be positive")
	}
	if cfg.Codec.MaxCollectionCount <= 0 {
		return fmt.Errorf("codec.max_collection_count must be positive")
	}
	if strings.TrimSpace(cfg.Inspect.Addr) == "" {
		return fmt.Errorf("inspect.addr is required")
	}
	for i, origin := range cfg.Inspect.CorsOrigins {
		if strings.TrimSpace(origin) == "" {
			return fmt.Errorf("inspect.cors_origins[%d] is empty", i)
		}
	}
	return nil
}
