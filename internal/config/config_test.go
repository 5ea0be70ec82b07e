package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("JOINRPG_USER", "importer@example.org")
	cfg, err := FromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Join.Login != "importer@example.org" || cfg.Join.ProjectID != 329 {
		t.Errorf("join = %+v", cfg.Join)
	}
	if cfg.ImportInterval != 30*time.Second || cfg.StatusAddr != ":8100" || cfg.MiceCount != 1000 {
		t.Errorf("cfg = %+v", cfg)
	}
	imp := cfg.Import
	if imp.BurstSize != 10 || imp.FetchRetries != 3 || !imp.OnlyInGame || imp.InitialNpcID != 10500 || imp.Overlap != 5*time.Minute {
		t.Errorf("import = %+v", imp)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("IMPORT_BURST_SIZE", "3")
	t.Setenv("IMPORT_ONLY_IN_GAME", "false")
	t.Setenv("JOINRPG_PROJECT_ID", "42")
	cfg, err := FromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Import.BurstSize != 3 || cfg.Import.OnlyInGame || cfg.Join.ProjectID != 42 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestFromEnvRejectsZeroInterval(t *testing.T) {
	t.Setenv("IMPORT_INTERVAL", "0s")
	if _, err := FromEnv(); err == nil {
		t.Fatal("expected error")
	}
}
