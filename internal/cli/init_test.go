package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitWritesConfigAndOverrides(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "bmrsgen.yaml")
	ovrPath := filepath.Join(dir, "overrides.yaml")

	err := execRoot(t, "init", "--out", cfgPath, "--overrides-out", ovrPath)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	cfg, err := os.ReadFile(cfgPath)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.Contains(string(cfg), "# bmrsgen configuration") {
		t.Errorf("config scaffold missing header")
	}

	ovr, err := os.ReadFile(ovrPath)
	if err != nil {
		t.Fatalf("read overrides: %v", err)
	}
	if !strings.Contains(string(ovr), "Required-field overrides") {
		t.Errorf("overrides scaffold missing header")
	}
}

func TestInitSkipsOverridesWhenEmptyPath(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "bmrsgen.yaml")

	if err := execRoot(t, "init", "--out", cfgPath, "--overrides-out", ""); err != nil {
		t.Fatalf("execute: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the config file, got %d entries", len(entries))
	}
}

func TestInitRefusesExistingWithoutForce(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "bmrsgen.yaml")
	if err := os.WriteFile(cfgPath, []byte("existing"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	err := execRoot(t, "init", "--out", cfgPath, "--overrides-out", "")
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}

	if err := execRoot(t, "init", "--out", cfgPath, "--overrides-out", "", "--force"); err != nil {
		t.Fatalf("execute with force: %v", err)
	}
	content, err := os.ReadFile(cfgPath)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if string(content) == "existing" {
		t.Errorf("force should overwrite the file")
	}
}
