package keyconfig

import (
	"os"
	"path/filepath"
	"testing"

	"emberchain/go-node/internal/keys"
)

func uint32Ptr(v uint32) *uint32 { return &v }

func TestMergeAppliesExplicitFields(t *testing.T) {
	dst := DefaultConfig()
	src := keysSection{
		Dir:         "/var/lib/emberchain/keys",
		Algorithm:   "secp256k1",
		KDFTime:     uint32Ptr(3),
		KDFMemoryKB: uint32Ptr(128 * 1024),
	}

	Merge(&dst, src)

	if dst.KeyDir != "/var/lib/emberchain/keys" {
		t.Fatalf("expected key dir override, got %q", dst.KeyDir)
	}
	if dst.DefaultAlgorithm != keys.Secp256k1 {
		t.Fatalf("expected secp256k1, got %s", dst.DefaultAlgorithm)
	}
	if dst.KDF.Time != 3 {
		t.Fatalf("expected kdfTime=3, got %d", dst.KDF.Time)
	}
	if dst.KDF.MemoryKB != 128*1024 {
		t.Fatalf("expected kdfMemoryKB=131072, got %d", dst.KDF.MemoryKB)
	}
}

func TestMergeDoesNotOverwriteDefaultsWhenUnset(t *testing.T) {
	dst := DefaultConfig()
	Merge(&dst, keysSection{})

	def := DefaultConfig()
	if dst.KeyDir != def.KeyDir || dst.DefaultAlgorithm != def.DefaultAlgorithm || dst.KDF != def.KDF {
		t.Fatal("unset fields must not overwrite defaults")
	}
}

func TestMergeIgnoresZeroKDFParams(t *testing.T) {
	dst := DefaultConfig()
	var zeroTime uint32
	var zeroThreads uint8
	Merge(&dst, keysSection{
		KDFTime:     &zeroTime,
		KDFMemoryKB: uint32Ptr(0),
		KDFThreads:  &zeroThreads,
	})
	if dst.KDF != DefaultConfig().KDF {
		t.Fatalf("explicit zero kdf params must keep defaults, got %+v", dst.KDF)
	}
}

func TestMergeIgnoresUnknownAlgorithm(t *testing.T) {
	dst := DefaultConfig()
	Merge(&dst, keysSection{Algorithm: "dsa"})
	if dst.DefaultAlgorithm != keys.Ed25519 {
		t.Fatalf("unknown algorithm must not change default, got %s", dst.DefaultAlgorithm)
	}
}

func TestLoadFromPathReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("keys:\n  dir: /tmp/embkeys\n  algorithm: rsa2048\n  kdfTime: 4\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := LoadFromPath(path)
	if cfg.KeyDir != "/tmp/embkeys" {
		t.Fatalf("expected key dir from file, got %q", cfg.KeyDir)
	}
	if cfg.DefaultAlgorithm != keys.Rsa2048 {
		t.Fatalf("expected rsa2048 from file, got %s", cfg.DefaultAlgorithm)
	}
	if cfg.KDF.Time != 4 {
		t.Fatalf("expected kdfTime=4 from file, got %d", cfg.KDF.Time)
	}
}

func TestLoadFromPathMissingFileUsesDefaults(t *testing.T) {
	cfg := LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml"))
	if cfg != DefaultConfig() {
		t.Fatalf("expected defaults for missing file, got %+v", cfg)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("EMB_KEY_DIR", "/env/keys")
	t.Setenv("EMB_KEY_ALGORITHM", "secp256k1")
	t.Setenv("EMB_KEY_KDF_MEMORY_KB", "32768")
	t.Setenv("EMB_KEY_KDF_THREADS", "2")

	cfg := DefaultConfig()
	ApplyEnvOverrides(&cfg)

	if cfg.KeyDir != "/env/keys" {
		t.Fatalf("expected env key dir, got %q", cfg.KeyDir)
	}
	if cfg.DefaultAlgorithm != keys.Secp256k1 {
		t.Fatalf("expected env algorithm, got %s", cfg.DefaultAlgorithm)
	}
	if cfg.KDF.MemoryKB != 32768 {
		t.Fatalf("expected env kdf memory, got %d", cfg.KDF.MemoryKB)
	}
	if cfg.KDF.Threads != 2 {
		t.Fatalf("expected env kdf threads, got %d", cfg.KDF.Threads)
	}
}

func TestApplyEnvOverridesIgnoresInvalidValues(t *testing.T) {
	t.Setenv("EMB_KEY_ALGORITHM", "dsa")
	t.Setenv("EMB_KEY_KDF_TIME", "zero")
	t.Setenv("EMB_KEY_KDF_THREADS", "0")

	cfg := DefaultConfig()
	ApplyEnvOverrides(&cfg)

	def := DefaultConfig()
	if cfg.DefaultAlgorithm != keys.Ed25519 || cfg.KDF.Time != def.KDF.Time || cfg.KDF.Threads != def.KDF.Threads {
		t.Fatal("invalid env values must not change config")
	}
}
