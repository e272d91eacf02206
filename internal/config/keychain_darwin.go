//go:build darwin

package config

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

// security runs the macOS keychain CLI and folds its stderr into the error.
func security(args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.Command("security", args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("security %s: %w (%s)", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

func keychainGet(service, account string) ([]byte, error) {
	out, err := security("find-generic-password", "-s", service, "-a", account, "-w")
	if err != nil {
		return nil, err
	}
	return bytes.TrimRight(out, "\n"), nil
}

func keychainSet(service, account, value string) error {
	_, err := security("add-generic-password", "-U", "-s", service, "-a", account, "-w", value)
	return err
}

func keychainDelete(service, account string) error {
	_, err := security("delete-generic-password", "-s", service, "-a", account)
	return err
}
