package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Addr != ":3000" {
		t.Errorf("expected addr :3000, got %q", c.Addr)
	}
	if !c.Auth.HashPasswords {
		t.Error("expected password hashing on by default")
	}
	if c.Session.Backend != "sqlite" {
		t.Errorf("expected sqlite sessions, got %q", c.Session.Backend)
	}
	if c.Session.TTL != 12*time.Hour {
		t.Errorf("expected 12h session ttl, got %v", c.Session.TTL)
	}
	if c.Items.Category != "Other" || c.Items.Warehouse != "Main" || c.Items.Code != "NONE" {
		t.Errorf("unexpected item defaults: %+v", c.Items)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "arsenal.yaml")
	yaml := "env: dev\naddr: \":8080\"\nsession:\n  backend: memory\n  ttl: 30m\nitems:\n  default_category: Inne\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ARSENAL_ADDR", ":9090")
	t.Setenv("ARSENAL_AUTH_HASH_PASSWORDS", "false")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !c.Dev() {
		t.Error("expected dev env from file")
	}
	if c.Addr != ":9090" {
		t.Errorf("expected env to override addr, got %q", c.Addr)
	}
	if c.Auth.HashPasswords {
		t.Error("expected env to turn hashing off")
	}
	if c.Session.Backend != "memory" || c.Session.TTL != 30*time.Minute {
		t.Errorf("unexpected session config: %+v", c.Session)
	}
	if c.Items.Category != "Inne" {
		t.Errorf("expected default category Inne, got %q", c.Items.Category)
	}
	if c.Items.Code != "NONE" {
		t.Errorf("expected built-in default code, got %q", c.Items.Code)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ARSENAL_SESSION_BACKEND", "etcd")

	if _, err := Load(""); err == nil {
		t.Error("expected error for unknown session backend")
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Chdir(t.TempDir())
	if _, err := Load("does-not-exist.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}
