package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type sampleConfig struct {
	MaxIterations int           `split_words:"true" default:"3"`
	Destination   string        `split_words:"true" required:"true"`
	Timeout       time.Duration `split_words:"true" default:"5s"`
}

func TestNewReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	content := "TRIPCFG_DESTINATION=Lisbon\nTRIPCFG_MAX_ITERATIONS=5\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() {
		os.Unsetenv("TRIPCFG_DESTINATION")
		os.Unsetenv("TRIPCFG_MAX_ITERATIONS")
	})

	conf, err := New[sampleConfig]("TRIPCFG", path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if conf.Destination != "Lisbon" {
		t.Fatalf("Destination = %q, want Lisbon", conf.Destination)
	}
	if conf.MaxIterations != 5 {
		t.Fatalf("MaxIterations = %d, want 5", conf.MaxIterations)
	}
	if conf.Timeout != 5*time.Second {
		t.Fatalf("Timeout = %v, want 5s", conf.Timeout)
	}
}

func TestNewEnvironmentWinsOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("TRIPENV_DESTINATION=Rome\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("TRIPENV_DESTINATION", "Oslo")

	conf, err := New[sampleConfig]("TRIPENV", path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if conf.Destination != "Oslo" {
		t.Fatalf("Destination = %q, want Oslo", conf.Destination)
	}
}

func TestNewMissingRequired(t *testing.T) {
	if _, err := New[sampleConfig]("TRIPMISSING", ""); err == nil {
		t.Fatal("expected error for missing required field")
	}
}

func TestNewMissingEnvFile(t *testing.T) {
	if _, err := New[sampleConfig]("TRIPNOFILE", filepath.Join(t.TempDir(), "absent.env")); err == nil {
		t.Fatal("expected error for missing env file")
	}
}
