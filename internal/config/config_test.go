package config

import (
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.StoreBackend != "memory" {
		t.Errorf("expected default backend memory, got %s", cfg.StoreBackend)
	}
	if !cfg.IsDev() {
		t.Error("expected development mode by default")
	}
}

func TestValidate_MemoryBackend(t *testing.T) {
	cfg := &Config{Env: "development", StoreBackend: "memory"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_PostgresRequiresURL(t *testing.T) {
	cfg := &Config{Env: "development", StoreBackend: "postgres"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing DATABASE_URL")
	}
	if !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_UnknownBackend(t *testing.T) {
	cfg := &Config{Env: "development", StoreBackend: "redis"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestValidate_ProductionRequiresSigningKey(t *testing.T) {
	cfg := &Config{
		Env:          "production",
		StoreBackend: "memory",
		AdminID:      "4f5b7f53-9621-4a5e-9e0e-3c5f3f1f5db1",
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing signing key")
	}
}

func TestValidate_ProductionRequiresAdmin(t *testing.T) {
	cfg := &Config{
		Env:            "production",
		StoreBackend:   "memory",
		AuthSigningKey: strings.Repeat("ab", 32),
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing admin id")
	}
}

func TestValidate_SigningKeyTooShort(t *testing.T) {
	cfg := &Config{
		Env:            "development",
		StoreBackend:   "memory",
		AuthSigningKey: "abcd",
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for short signing key")
	}
}

func TestValidate_SigningKeyNotHex(t *testing.T) {
	cfg := &Config{
		Env:            "development",
		StoreBackend:   "memory",
		AuthSigningKey: strings.Repeat("zz", 32),
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for non-hex signing key")
	}
}

func TestAdminUUID(t *testing.T) {
	cfg := &Config{AdminID: "4f5b7f53-9621-4a5e-9e0e-3c5f3f1f5db1"}
	id, err := cfg.AdminUUID()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.String() != cfg.AdminID {
		t.Errorf("round-trip mismatch: %s", id)
	}
}

func TestAdminUUID_Invalid(t *testing.T) {
	cfg := &Config{AdminID: "not-a-uuid"}
	if _, err := cfg.AdminUUID(); err == nil {
		t.Error("expected error for invalid uuid")
	}
}

func TestSigningKeyBytes(t *testing.T) {
	cfg := &Config{AuthSigningKey: strings.Repeat("ab", 32)}
	if got := len(cfg.SigningKeyBytes()); got != 32 {
		t.Errorf("expected 32 bytes, got %d", got)
	}
	cfg = &Config{}
	if cfg.SigningKeyBytes() != nil {
		t.Error("expected nil for unset key")
	}
}
