package main

import (
	"errors"
	"testing"

	"github.com/localrivet/leaveoff/internal/config"
)

func TestRootCmdRequiresFolder(t *testing.T) {
	t.Setenv("LEAVEOFF_STORE_DIR", "")
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config", t.TempDir() + "/missing.json"})

	err := cmd.Execute()
	if !errors.Is(err, config.ErrNoFolder) {
		t.Fatalf("expected ErrNoFolder, got %v", err)
	}
}

func TestRootCmdRejectsExtraArgs(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"a", "b"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for two positional arguments")
	}
}

func TestRootCmdRejectsUnknownBackend(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{t.TempDir(), "--backend", "redis", "--config", t.TempDir() + "/missing.json"})

	err := cmd.Execute()
	if err == nil || errors.Is(err, config.ErrNoFolder) {
		t.Fatalf("expected backend validation error, got %v", err)
	}
}
