//go:build darwin

package config

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

const defaultsDomain = "com.promptpilot.app"

func defaultDataDir() string {
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, "Library", "Application Support", "promptpilot")
	}
	return "promptpilot-data"
}

func apiKeyHint() string {
	return " or macOS Keychain (service: promptpilot, account: gemini_api_key)"
}

// darwinBackend keeps settings in the user defaults database under
// defaultsDomain, so `defaults read com.promptpilot.app` shows them.
type darwinBackend struct {
	domain string
}

func newPlatformBackend() ConfigBackend {
	return &darwinBackend{domain: defaultsDomain}
}

// run invokes the defaults tool against the backend's domain. missing is
// true when defaults exited 1, which it does for an absent key.
func (b *darwinBackend) run(verb, key string, extra ...string) (out string, missing bool, err error) {
	args := append([]string{verb, b.domain, key}, extra...)
	raw, err := exec.Command("defaults", args...).CombinedOutput()
	out = strings.TrimSpace(string(raw))
	if err == nil {
		return out, false, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return "", true, nil
	}
	return "", false, fmt.Errorf("defaults %s %s: %w (%s)", verb, key, err, out)
}

func (b *darwinBackend) GetString(key string) (string, bool, error) {
	s, missing, err := b.run("read", key)
	return s, !missing && err == nil, err
}

func (b *darwinBackend) GetInt(key string) (int, bool, error) {
	s, ok, err := b.GetString(key)
	if !ok || err != nil {
		return 0, ok, err
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, true, fmt.Errorf("invalid integer for %s: %w", key, err)
	}
	return i, true, nil
}

func (b *darwinBackend) SetString(key, val string) error {
	_, _, err := b.run("write", key, "-string", val)
	return err
}

func (b *darwinBackend) SetInt(key string, val int) error {
	_, _, err := b.run("write", key, "-int", strconv.Itoa(val))
	return err
}

// Delete is a no-op for keys that were never written.
func (b *darwinBackend) Delete(key string) error {
	_, _, err := b.run("delete", key)
	return err
}
