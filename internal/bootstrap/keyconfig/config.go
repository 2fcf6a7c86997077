package keyconfig

import (
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"emberchain/go-node/internal/keys"
	"emberchain/go-node/internal/keystore"
)

// Config holds the resolved key management settings for a node.
type Config struct {
	KeyDir           string
	DefaultAlgorithm keys.KeyType
	KDF              keystore.KDFParams
}

func DefaultConfig() Config {
	return Config{
		KeyDir:           "keys",
		DefaultAlgorithm: keys.Ed25519,
		KDF:              keystore.DefaultKDFParams(),
	}
}

type fileConfig struct {
	Keys keysSection `yaml:"keys"`
}

type keysSection struct {
	Dir         string  `yaml:"dir"`
	Algorithm   string  `yaml:"algorithm"`
	KDFTime     *uint32 `yaml:"kdfTime"`
	KDFMemoryKB *uint32 `yaml:"kdfMemoryKB"`
	KDFThreads  *uint8  `yaml:"kdfThreads"`
}

func LoadFromPath(configPath string) Config {
	cfg := DefaultConfig()

	candidates := make([]string, 0, 2)
	if configPath != "" {
		candidates = append(candidates, configPath)
	} else {
		candidates = append(candidates,
			"configs/config.yaml",
			"config.yaml",
		)
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		var parsed fileConfig
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			continue
		}

		merged := cfg
		Merge(&merged, parsed.Keys)
		ApplyEnvOverrides(&merged)
		return merged
	}

	ApplyEnvOverrides(&cfg)
	return cfg
}

func Merge(dst *Config, src keysSection) {
	if src.Dir != "" {
		dst.KeyDir = src.Dir
	}
	if src.Algorithm != "" {
		if kt, err := keys.ParseKeyType(src.Algorithm); err == nil {
			dst.DefaultAlgorithm = kt
		}
	}
	// Zero is not a valid argon2 parameter; an explicit zero keeps the
	// default rather than feeding a panicking derivation at seal time.
	if src.KDFTime != nil && *src.KDFTime > 0 {
		dst.KDF.Time = *src.KDFTime
	}
	if src.KDFMemoryKB != nil && *src.KDFMemoryKB > 0 {
		dst.KDF.MemoryKB = *src.KDFMemoryKB
	}
	if src.KDFThreads != nil && *src.KDFThreads > 0 {
		dst.KDF.Threads = *src.KDFThreads
	}
}

func ApplyEnvOverrides(cfg *Config) {
	if dir := strings.TrimSpace(os.Getenv("EMB_KEY_DIR")); dir != "" {
		cfg.KeyDir = dir
	}
	if algo := strings.TrimSpace(os.Getenv("EMB_KEY_ALGORITHM")); algo != "" {
		if kt, err := keys.ParseKeyType(algo); err == nil {
			cfg.DefaultAlgorithm = kt
		}
	}
	if raw := strings.TrimSpace(os.Getenv("EMB_KEY_KDF_MEMORY_KB")); raw != "" {
		if v, err := strconv.ParseUint(raw, 10, 32); err == nil && v > 0 {
			cfg.KDF.MemoryKB = uint32(v)
		}
	}
	if raw := strings.TrimSpace(os.Getenv("EMB_KEY_KDF_TIME")); raw != "" {
		if v, err := strconv.ParseUint(raw, 10, 32); err == nil && v > 0 {
			cfg.KDF.Time = uint32(v)
		}
	}
	if raw := strings.TrimSpace(os.Getenv("EMB_KEY_KDF_THREADS")); raw != "" {
		if v, err := strconv.ParseUint(raw, 10, 8); err == nil && v > 0 {
			cfg.KDF.Threads = uint8(v)
		}
	}
}
