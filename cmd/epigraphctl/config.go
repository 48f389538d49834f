package main

import (
	"encoding/json"
	"fmt"
	"os"
)

// studyFileConfig mirrors the study command's flags so a whole study
// can be described by one JSON file. Explicitly passed flags win over
// file values.
type studyFileConfig struct {
	GraphPath string
	Runs      int
	T0        *float64
	Tmax      *float64
	Dt        *float64
	Seed      *int64
	Workers   int
	Sigma     *float64
	StoreKind string
	DBPath    string
	OutDir    string
}

func loadStudyConfig(path string) (studyFileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return studyFileConfig{}, fmt.Errorf("config %s: %w", path, err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return studyFileConfig{}, fmt.Errorf("config %s: %w", path, err)
	}

	var cfg studyFileConfig
	if v, ok := asString(raw["graph"]); ok {
		cfg.GraphPath = v
	}
	if v, ok := asInt(raw["runs"]); ok {
		cfg.Runs = v
	}
	if v, ok := asFloat64(raw["t0"]); ok {
		cfg.T0 = &v
	}
	if v, ok := asFloat64(raw["tmax"]); ok {
		cfg.Tmax = &v
	}
	if v, ok := asFloat64(raw["dt"]); ok {
		cfg.Dt = &v
	}
	if v, ok := asInt64(raw["seed"]); ok {
		cfg.Seed = &v
	}
	if v, ok := asInt(raw["workers"]); ok {
		cfg.Workers = v
	}
	if v, ok := asFloat64(raw["sigma"]); ok {
		cfg.Sigma = &v
	}
	if v, ok := asString(raw["store"]); ok {
		cfg.StoreKind = v
	}
	if v, ok := asString(raw["db_path"]); ok {
		cfg.DBPath = v
	}
	if v, ok := asString(raw["out"]); ok {
		cfg.OutDir = v
	}
	return cfg, nil
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asFloat64(v any) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}

func asInt(v any) (int, bool) {
	f, ok := v.(float64)
	if !ok || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

func asInt64(v any) (int64, bool) {
	f, ok := v.(float64)
	if !ok || f != float64(int64(f)) {
		return 0, false
	}
	return int64(f), true
}
