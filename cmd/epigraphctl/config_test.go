package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadStudyConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "study.json")
	content := `{
		"graph": "graph.json",
		"runs": 32,
		"t0": 0,
		"tmax": 50,
		"dt": 0.5,
		"seed": 12345,
		"workers": 4,
		"sigma": 0.15,
		"store": "sqlite",
		"db_path": "runs.db",
		"out": "out"
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := loadStudyConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.GraphPath != "graph.json" || cfg.Runs != 32 || cfg.Workers != 4 {
		t.Fatalf("config = %+v", cfg)
	}
	if cfg.Tmax == nil || *cfg.Tmax != 50 {
		t.Fatal("tmax lost")
	}
	if cfg.Seed == nil || *cfg.Seed != 12345 {
		t.Fatal("seed lost")
	}
	if cfg.Sigma == nil || *cfg.Sigma != 0.15 {
		t.Fatal("sigma lost")
	}
	if cfg.StoreKind != "sqlite" || cfg.DBPath != "runs.db" || cfg.OutDir != "out" {
		t.Fatalf("paths lost: %+v", cfg)
	}
}

func TestLoadStudyConfigIgnoresWrongTypes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "study.json")
	if err := os.WriteFile(path, []byte(`{"runs": "many", "t0": "zero"}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := loadStudyConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Runs != 0 || cfg.T0 != nil {
		t.Fatalf("config = %+v, want typed fields skipped", cfg)
	}
}

func TestLoadStudyConfigMissingFile(t *testing.T) {
	if _, err := loadStudyConfig(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("2020-10-31")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.Year != 2020 || d.Month != 10 || d.Day != 31 {
		t.Fatalf("date = %v", d)
	}
	if _, err := parseDate("2020-13-01"); err == nil {
		t.Fatal("expected error for month 13")
	}
	if _, err := parseDate("notadate"); err == nil {
		t.Fatal("expected error for malformed input")
	}
}
