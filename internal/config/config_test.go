package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFile)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if got := strings.Join(cfg.Variants, ","); got != "binary,bipolar,real,complex" {
		t.Errorf("Variants = %s", got)
	}
	if len(cfg.TSNE.Labels) != 22 {
		t.Errorf("expected 22 default labels, got %d", len(cfg.TSNE.Labels))
	}
	if cfg.TSNE.Seed != 42 || cfg.TSNE.Perplexity != 5 {
		t.Errorf("tsne seed/perplexity = %d/%g, want 42/5", cfg.TSNE.Seed, cfg.TSNE.Perplexity)
	}
}

func TestPathFunctions(t *testing.T) {
	cfg := Default()
	cfg.ResultsDir = "/data/RESULTS"
	cfg.AssetsDir = "/data/ASSETS"
	cfg.StateDir = "/data/.hdviz"

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"objects panel", cfg.PanelPath("binary", cfg.Pair.Panels[0]), "/data/RESULTS/hdv_binary_objects.csv"},
		{"sentences panel", cfg.PanelPath("complex", cfg.Pair.Panels[1]), "/data/RESULTS/hdv_complex_sentences.csv"},
		{"combined", cfg.CombinedPath("bipolar"), "/data/ASSETS/bipolar_hdv_combined.png"},
		{"history", cfg.HistoryPath(), "/data/.hdviz/history.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestLoad_Valid(t *testing.T) {
	path := writeTestConfig(t, `
results_dir: out/results
variants: [binary, real]
tsne:
  perplexity: 3
  labels: [en, de, fr, it]
outputs:
  - kind: pair
    dataset: binary
  - kind: heatmap
    input: out/results/hdv_real_objects.csv
    title: Real objects
  - kind: tsne
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.ResultsDir != "out/results" {
		t.Errorf("ResultsDir = %s", cfg.ResultsDir)
	}
	if cfg.AssetsDir != "ASSETS" {
		t.Errorf("AssetsDir should keep default, got %s", cfg.AssetsDir)
	}
	if len(cfg.Variants) != 2 {
		t.Errorf("expected 2 variants, got %d", len(cfg.Variants))
	}
	if cfg.TSNE.Perplexity != 3 || cfg.TSNE.Seed != 42 {
		t.Errorf("tsne perplexity/seed = %g/%d, want 3/42", cfg.TSNE.Perplexity, cfg.TSNE.Seed)
	}
	if len(cfg.TSNE.Labels) != 4 {
		t.Errorf("expected 4 labels, got %d", len(cfg.TSNE.Labels))
	}
	if len(cfg.Requests()) != 3 {
		t.Fatalf("expected 3 requests, got %d", len(cfg.Requests()))
	}
	if cfg.Requests()[1].String() != "heatmap:out/results/hdv_real_objects.csv" {
		t.Errorf("request string = %s", cfg.Requests()[1].String())
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"no variants", "variants: []\n", "variants"},
		{"empty prefix", "pair:\n  prefix: \"\"\n", "prefix"},
		{"no panels", "pair:\n  prefix: hdv\n  panels: []\n", "panels"},
		{"panel without suffix", "pair:\n  prefix: hdv\n  panels:\n    - title: x\n", "suffix"},
		{"unknown kind", "outputs:\n  - kind: histogram\n", "invalid kind"},
		{"pair without dataset", "outputs:\n  - kind: pair\n", "dataset"},
		{"heatmap without input", "outputs:\n  - kind: heatmap\n", "input"},
		{"bad yaml", "variants: [binary\n", "parsing"},
		{"bad size", "heatmap:\n  width_cm: 0\n", "width_cm"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTestConfig(t, tt.content)
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestRequests_DefaultsToPairs(t *testing.T) {
	cfg := Default()
	reqs := cfg.Requests()
	if len(reqs) != 4 {
		t.Fatalf("expected 4 requests, got %d", len(reqs))
	}
	for i, r := range reqs {
		if r.Kind != KindPair || r.Dataset != cfg.Variants[i] {
			t.Errorf("request %d = %+v", i, r)
		}
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFile)
	cfg := Default()
	cfg.Outputs = []Output{{Kind: KindPair, Dataset: "real"}}

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Outputs[0].Dataset != "real" {
		t.Errorf("outputs not preserved: %+v", loaded.Outputs)
	}
	if loaded.Heatmap.Format != "%.2f" {
		t.Errorf("heatmap format = %q", loaded.Heatmap.Format)
	}
}

func TestParams(t *testing.T) {
	cfg := Default()
	cfg.TSNE.Seed = 7
	cfg.TSNE.Init = "random"

	p := cfg.TSNE.Params()
	if p.Seed != 7 || p.Init != "random" || p.Perplexity != 5 || p.Iterations != 1000 {
		t.Errorf("Params() = %+v", p)
	}
}

func TestResolve(t *testing.T) {
	t.Setenv(EnvConfig, "")
	t.Chdir(t.TempDir())

	if got := Resolve(""); got != "" {
		t.Errorf("Resolve with nothing present = %q, want empty", got)
	}
	if got := Resolve("custom.yml"); got != "custom.yml" {
		t.Errorf("Resolve explicit = %q", got)
	}

	t.Setenv(EnvConfig, "/etc/hdviz.yml")
	if got := Resolve(""); got != "/etc/hdviz.yml" {
		t.Errorf("Resolve from env = %q", got)
	}

	t.Setenv(EnvConfig, "")
	if err := os.WriteFile(ConfigFile, []byte("variants: [real]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if got := Resolve(""); got != ConfigFile {
		t.Errorf("Resolve from cwd = %q", got)
	}
}

func TestLoadEffective_EnvOverrides(t *testing.T) {
	t.Setenv(EnvConfig, "")
	t.Chdir(t.TempDir())
	t.Setenv(EnvResultsDir, "/srv/results")
	t.Setenv(EnvAssetsDir, "/srv/assets")
	t.Setenv(EnvViewer, "feh")

	cfg, err := LoadEffective("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ResultsDir != "/srv/results" || cfg.AssetsDir != "/srv/assets" {
		t.Errorf("dirs = %s, %s", cfg.ResultsDir, cfg.AssetsDir)
	}
	if cfg.Viewer != "feh" {
		t.Errorf("Viewer = %s", cfg.Viewer)
	}
	if cfg.CombinedPath("real") != "/srv/assets/real_hdv_combined.png" {
		t.Errorf("CombinedPath = %s", cfg.CombinedPath("real"))
	}
}

func TestLoadEffective_ExplicitMissing(t *testing.T) {
	_, err := LoadEffective(filepath.Join(t.TempDir(), "missing.yml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := ExpandPath("~/plots"); got != filepath.Join(home, "plots") {
		t.Errorf("ExpandPath(~/plots) = %s", got)
	}
	if got := ExpandPath("/abs"); got != "/abs" {
		t.Errorf("ExpandPath(/abs) = %s", got)
	}
}
