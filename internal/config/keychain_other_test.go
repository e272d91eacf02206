//go:build !darwin

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileKeychainRoundTrip(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	if _, err := keychainGet("promptpilot", "gemini_api_key"); err == nil {
		t.Fatal("expected error before any secret is stored")
	}
	if err := keychainSet("promptpilot", "gemini_api_key", "k1"); err != nil {
		t.Fatalf("keychainSet: %v", err)
	}
	if err := keychainSet("promptpilot", "api_token", "tok"); err != nil {
		t.Fatalf("keychainSet: %v", err)
	}

	got, err := keychainGet("promptpilot", "gemini_api_key")
	if err != nil {
		t.Fatalf("keychainGet: %v", err)
	}
	if string(got) != "k1" {
		t.Errorf("secret = %q, want k1", got)
	}

	info, err := os.Stat(secretsFilePath())
	if err != nil {
		t.Fatalf("stat secrets file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("secrets file mode = %o, want 600", perm)
	}

	if err := keychainDelete("promptpilot", "gemini_api_key"); err != nil {
		t.Fatalf("keychainDelete: %v", err)
	}
	if _, err := keychainGet("promptpilot", "gemini_api_key"); err == nil {
		t.Error("deleted secret still readable")
	}
	if got, _ := keychainGet("promptpilot", "api_token"); string(got) != "tok" {
		t.Errorf("sibling secret = %q, want tok", got)
	}
	if err := keychainDelete("promptpilot", "gemini_api_key"); err == nil {
		t.Error("expected error deleting a missing secret")
	}

	entries, _ := os.ReadDir(filepath.Dir(secretsFilePath()))
	if len(entries) != 1 {
		t.Errorf("secrets dir has %d entries, want only secrets.json", len(entries))
	}
}

func TestFileBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "promptpilot", "config.json")

	b := newFileBackend(path)
	if _, ok, _ := b.GetString("log.level"); ok {
		t.Fatal("fresh backend should be empty")
	}
	if err := b.SetString("log.level", "debug"); err != nil {
		t.Fatalf("SetString: %v", err)
	}
	if err := b.SetInt("server.port", 5050); err != nil {
		t.Fatalf("SetInt: %v", err)
	}

	reloaded := newFileBackend(path)
	if v, ok, err := reloaded.GetString("log.level"); err != nil || !ok || v != "debug" {
		t.Errorf("GetString(log.level) = %q, %v, %v", v, ok, err)
	}
	if v, ok, err := reloaded.GetInt("server.port"); err != nil || !ok || v != 5050 {
		t.Errorf("GetInt(server.port) = %d, %v, %v", v, ok, err)
	}

	if err := reloaded.Delete("server.port"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := reloaded.Delete("never.set"); err != nil {
		t.Fatalf("Delete of absent key: %v", err)
	}
	if _, ok, _ := newFileBackend(path).GetInt("server.port"); ok {
		t.Error("server.port survived Delete")
	}
}

func TestFileBackend_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	b := newFileBackend(path)
	if len(b.data) != 0 {
		t.Errorf("corrupt file loaded %d keys, want 0", len(b.data))
	}
	if _, ok, err := b.GetInt("server.port"); ok || err != nil {
		t.Errorf("GetInt on corrupt file = %v, %v", ok, err)
	}
}
