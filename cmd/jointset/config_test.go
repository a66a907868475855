package main

import (
	"flag"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/TrevorS/jointset"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}

func TestLoadRunConfig(t *testing.T) {
	path := writeConfig(t, "run.json", `{
  "format": 3,
  "classes": 2.6,
  "mode": "auto",
  "algorithm": "pam",
  "metric": "angular",
  "random_seed": 42,
  "significance": 0.01
}`)

	rc, err := LoadRunConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if rc.GetFormat() != jointset.FormatTrendPlunge {
		t.Errorf("Expected format 3, got %v", rc.GetFormat())
	}

	cfg := jointset.DefaultConfig()
	if err := rc.Apply(&cfg); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if cfg.Classes != 3 {
		t.Errorf("Expected classes rounded to 3, got %d", cfg.Classes)
	}
	if cfg.Algorithm != jointset.AlgorithmPAM {
		t.Errorf("Expected algorithm pam, got %q", cfg.Algorithm)
	}
	if _, ok := cfg.Metric.(jointset.AngularMetric); !ok {
		t.Errorf("Expected AngularMetric, got %T", cfg.Metric)
	}
	if cfg.RandomSeed != 42 {
		t.Errorf("Expected random seed 42, got %d", cfg.RandomSeed)
	}
	if cfg.Significance != 0.01 {
		t.Errorf("Expected significance 0.01, got %v", cfg.Significance)
	}
}

func TestLoadRunConfigPartial(t *testing.T) {
	path := writeConfig(t, "partial.json", `{"mode": "manual", "seeds": "40/270, 80/90"}`)
	rc, err := LoadRunConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	cfg := jointset.DefaultConfig()
	if err := rc.Apply(&cfg); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if rc.GetFormat() != jointset.FormatDipDirectionDip {
		t.Errorf("Expected default format, got %v", rc.GetFormat())
	}
	if cfg.Mode != jointset.ModeManual {
		t.Errorf("Expected manual mode, got %q", cfg.Mode)
	}
	want := []jointset.Seed{{Plunge: 40, Trend: 270}, {Plunge: 80, Trend: 90}}
	if len(cfg.Seeds) != 2 || cfg.Seeds[0] != want[0] || cfg.Seeds[1] != want[1] {
		t.Errorf("Expected seeds %v, got %v", want, cfg.Seeds)
	}
	if cfg.MaxIterations != 100 {
		t.Errorf("Expected default max iterations 100, got %d", cfg.MaxIterations)
	}
}

func TestLoadRunConfigMissing(t *testing.T) {
	if _, err := LoadRunConfig("/nonexistent/path/to/run.json"); err == nil {
		t.Error("Expected error when loading missing file, got nil")
	}
}

func TestLoadRunConfigRejectsNonJSON(t *testing.T) {
	if _, err := LoadRunConfig("/some/path/run.yaml"); err == nil {
		t.Error("Expected error for non-.json extension, got nil")
	}
}

func TestLoadRunConfigRejectsLargeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "large.json")
	if err := os.WriteFile(path, make([]byte, 2*1024*1024), 0644); err != nil {
		t.Fatalf("Failed to write large file: %v", err)
	}
	if _, err := LoadRunConfig(path); err == nil {
		t.Error("Expected error for file size > 1MB, got nil")
	}
}

func TestRunConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"empty", `{}`, false},
		{"bad format", `{"format": 7}`, true},
		{"bad mode", `{"mode": "random"}`, true},
		{"bad algorithm", `{"algorithm": "kmeans"}`, true},
		{"bad metric", `{"metric": "manhattan"}`, true},
		{"bad seeds", `{"seeds": "40-270"}`, true},
		{"zero iterations", `{"max_iterations": 0}`, true},
		{"significance of one", `{"significance": 1}`, true},
		{"negative workers", `{"workers": -2}`, true},
		{"not json", `{"format": "one"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRunConfig(writeConfig(t, "run.json", tt.body))
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadRunConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRunConfigValidateRejectsNaN(t *testing.T) {
	nan := math.NaN()
	rc := &RunConfig{Significance: &nan}
	if err := rc.Validate(); err == nil {
		t.Error("Expected error for NaN significance, got nil")
	}

	fs := flag.NewFlagSet("jointset", flag.ContinueOnError)
	fs.Float64("significance", 0.05, "")
	if err := fs.Parse([]string{"-significance", "NaN"}); err != nil {
		t.Fatalf("Failed to parse flags: %v", err)
	}
	rc = &RunConfig{}
	applyFlags(fs, rc)
	if err := rc.Validate(); err == nil {
		t.Error("Expected error for -significance NaN, got nil")
	}
}
