package visualizer

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/hypervector/hdviz/internal/config"
	"github.com/hypervector/hdviz/internal/history"
	"github.com/hypervector/hdviz/internal/matrix"
	"github.com/hypervector/hdviz/internal/tsne"
)

// fakeViewer records the paths it was asked to open.
type fakeViewer struct {
	opened []string
	err    error
}

func (f *fakeViewer) Open(path string) error {
	f.opened = append(f.opened, path)
	return f.err
}

// memRecorder keeps recorded artifacts in memory.
type memRecorder struct {
	artifacts []history.Artifact
}

func (m *memRecorder) Record(a history.Artifact) error {
	m.artifacts = append(m.artifacts, a)
	return nil
}

// labelledCSV returns an n×n similarity CSV using the HDV writer's trailing-comma format.
func labelledCSV(labels []string) string {
	var sb strings.Builder
	sb.WriteString("," + strings.Join(labels, ",") + ",\n")
	for i, l := range labels {
		sb.WriteString(l + ",")
		for j := range labels {
			v := 1.0
			if i != j {
				v = 0.5 / float64(1+abs(i-j))
			}
			fmt.Fprintf(&sb, "%.4f,", v)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// setupWorkspace writes pair inputs for the given datasets and returns a config rooted in a temp dir.
func setupWorkspace(t *testing.T, datasets ...string) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.ResultsDir = filepath.Join(root, "RESULTS")
	cfg.AssetsDir = filepath.Join(root, "ASSETS")
	cfg.StateDir = filepath.Join(root, ".hdviz")
	cfg.TSNE.Iterations = 300

	if err := os.MkdirAll(cfg.ResultsDir, 0755); err != nil {
		t.Fatal(err)
	}
	objects := labelledCSV([]string{"cat", "dog", "car", "bus"})
	sentences := labelledCSV([]string{"s1", "s2", "s3"})
	for _, d := range datasets {
		for _, p := range cfg.Pair.Panels {
			content := objects
			if p.Suffix == "sentences" {
				content = sentences
			}
			if err := os.WriteFile(cfg.PanelPath(d, p), []byte(content), 0644); err != nil {
				t.Fatal(err)
			}
		}
	}
	return cfg
}

func randomEmbeddings(rows, cols int) *mat.Dense {
	rng := rand.New(rand.NewPCG(1, 2))
	data := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			data.Set(i, j, rng.NormFloat64())
		}
	}
	return data
}

func TestRenderSideBySidePair(t *testing.T) {
	cfg := setupWorkspace(t, "binary")
	rec := &memRecorder{}
	v := New(cfg, WithRecorder(rec), WithViewer(&fakeViewer{}))

	out, err := v.RenderSideBySidePair("binary")
	if err != nil {
		t.Fatalf("RenderSideBySidePair failed: %v", err)
	}

	want := filepath.Join(cfg.AssetsDir, "binary_hdv_combined.png")
	if out != want {
		t.Errorf("output = %s, want %s", out, want)
	}

	entries, err := os.ReadDir(cfg.AssetsDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "binary_hdv_combined.png" {
		t.Errorf("expected exactly one image in assets, got %v", entries)
	}

	if len(rec.artifacts) != 1 {
		t.Fatalf("expected 1 recorded artifact, got %d", len(rec.artifacts))
	}
	a := rec.artifacts[0]
	if a.Kind != config.KindPair || a.Output != want || len(a.Inputs) != 2 {
		t.Errorf("unexpected artifact: %+v", a)
	}
	if a.RunID != v.RunID() || a.Bytes == 0 || len(a.Digest) != 64 {
		t.Errorf("artifact metadata incomplete: %+v", a)
	}

	again, err := v.RenderSideBySidePair("binary")
	if err != nil {
		t.Fatal(err)
	}
	if again != out {
		t.Errorf("path changed between runs: %s vs %s", again, out)
	}
	entries, _ = os.ReadDir(cfg.AssetsDir)
	if len(entries) != 1 {
		t.Errorf("re-rendering should overwrite, found %d files", len(entries))
	}
}

func TestRenderSideBySidePair_MissingInput(t *testing.T) {
	cfg := setupWorkspace(t, "binary")
	v := New(cfg)

	_, err := v.RenderSideBySidePair("complex")
	if !matrix.IsParseError(err) {
		t.Fatalf("expected parse error, got %v", err)
	}
	if _, err := os.Stat(cfg.CombinedPath("complex")); !errors.Is(err, os.ErrNotExist) {
		t.Error("no image should be written when an input is missing")
	}
}

func TestRenderSideBySidePair_EmptyDataset(t *testing.T) {
	v := New(config.Default())
	if _, err := v.RenderSideBySidePair(""); err == nil {
		t.Error("expected error for empty dataset")
	}
}

func TestRenderHeatmap_Save(t *testing.T) {
	cfg := setupWorkspace(t)
	input := filepath.Join(cfg.ResultsDir, "langs.csv")
	if err := os.WriteFile(input, []byte(labelledCSV(config.LanguageCodes)), 0644); err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(cfg.AssetsDir, "langs.png")

	v := New(cfg)
	res, err := v.RenderHeatmap(input, "", output)
	if err != nil {
		t.Fatalf("RenderHeatmap failed: %v", err)
	}
	if res.Rows != 22 || res.Cols != 22 {
		t.Errorf("dims = %d×%d, want 22×22", res.Rows, res.Cols)
	}
	if res.Cells != res.Rows*res.Cols {
		t.Errorf("annotated cells = %d, want %d", res.Cells, res.Rows*res.Cols)
	}
	if res.Shown || res.Output != output {
		t.Errorf("unexpected result: %+v", res)
	}
	if _, err := os.Stat(output); err != nil {
		t.Errorf("output not written: %v", err)
	}
}

func TestRenderHeatmap_Show(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())
	cfg := setupWorkspace(t, "real")
	viewer := &fakeViewer{}
	rec := &memRecorder{}
	v := New(cfg, WithViewer(viewer), WithRecorder(rec))

	res, err := v.RenderHeatmap(cfg.PanelPath("real", cfg.Pair.Panels[0]), "Real objects", "")
	if err != nil {
		t.Fatalf("RenderHeatmap failed: %v", err)
	}
	if !res.Shown {
		t.Error("expected image to be shown")
	}
	if len(viewer.opened) != 1 || viewer.opened[0] != res.Output {
		t.Errorf("viewer opened %v, want [%s]", viewer.opened, res.Output)
	}
	if _, err := os.Stat(res.Output); err != nil {
		t.Errorf("shown image missing: %v", err)
	}
	if len(rec.artifacts) != 0 {
		t.Errorf("shown images should not be recorded, got %d", len(rec.artifacts))
	}
}

func TestRenderHeatmap_ViewerError(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())
	cfg := setupWorkspace(t, "real")
	v := New(cfg, WithViewer(&fakeViewer{err: errors.New("no display")}))

	_, err := v.RenderHeatmap(cfg.PanelPath("real", cfg.Pair.Panels[0]), "", "")
	if err == nil || !strings.Contains(err.Error(), "no display") {
		t.Errorf("expected viewer error, got %v", err)
	}
}

func TestRenderHeatmap_ParseError(t *testing.T) {
	cfg := setupWorkspace(t)
	bad := filepath.Join(cfg.ResultsDir, "bad.csv")
	if err := os.WriteFile(bad, []byte(",a,b\na,1,oops\nb,2,3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	v := New(cfg)
	_, err := v.RenderHeatmap(bad, "", filepath.Join(cfg.AssetsDir, "bad.png"))
	if !matrix.IsParseError(err) {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestProjectAndScatter_LabelMismatch(t *testing.T) {
	cfg := setupWorkspace(t)
	v := New(cfg)

	data := randomEmbeddings(22, 22)
	_, err := v.ProjectAndScatter(data, config.LanguageCodes[:20], "", filepath.Join(cfg.AssetsDir, "tsne.png"))
	if !matrix.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestProjectAndScatter_PerplexityTooLarge(t *testing.T) {
	cfg := setupWorkspace(t)
	cfg.TSNE.Perplexity = 5
	v := New(cfg)

	data := randomEmbeddings(4, 8)
	_, err := v.ProjectAndScatter(data, []string{"en", "de", "fr", "it"}, "", filepath.Join(cfg.AssetsDir, "tsne.png"))
	if !tsne.IsConfigurationError(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.AssetsDir, "tsne.png")); !errors.Is(err, os.ErrNotExist) {
		t.Error("no image should be written on configuration error")
	}
}

func TestProjectAndScatter_Deterministic(t *testing.T) {
	cfg := setupWorkspace(t)
	v := New(cfg)
	data := randomEmbeddings(22, 16)

	first, err := v.ProjectAndScatter(data, config.LanguageCodes, "", filepath.Join(cfg.AssetsDir, "a.png"))
	if err != nil {
		t.Fatalf("first projection failed: %v", err)
	}
	second, err := v.ProjectAndScatter(data, config.LanguageCodes, "", filepath.Join(cfg.AssetsDir, "b.png"))
	if err != nil {
		t.Fatalf("second projection failed: %v", err)
	}

	if !mat.Equal(first.Coordinates, second.Coordinates) {
		t.Error("same input and seed produced different coordinates")
	}
	if first.Entities != 22 {
		t.Errorf("Entities = %d, want 22", first.Entities)
	}
}

func TestProjectFile_UsesConfiguredLabels(t *testing.T) {
	cfg := setupWorkspace(t)
	cfg.TSNE.Labels = []string{"en", "de", "fr", "it", "es", "pt", "nl", "sv"}
	cfg.TSNE.Perplexity = 3
	input := filepath.Join(cfg.ResultsDir, "model.csv")

	var sb strings.Builder
	data := randomEmbeddings(8, 5)
	for i := 0; i < 8; i++ {
		row := mat.Row(nil, i, data)
		cells := make([]string, len(row))
		for j, x := range row {
			cells[j] = fmt.Sprintf("%.6f", x)
		}
		sb.WriteString(strings.Join(cells, ",") + "\n")
	}
	if err := os.WriteFile(input, []byte(sb.String()), 0644); err != nil {
		t.Fatal(err)
	}
	cfg.TSNE.Input = input

	v := New(cfg)
	res, err := v.ProjectFile("", nil, "", filepath.Join(cfg.AssetsDir, "tsne.png"))
	if err != nil {
		t.Fatalf("ProjectFile failed: %v", err)
	}
	if r, c := res.Coordinates.Dims(); r != 8 || c != 2 {
		t.Errorf("coordinates %d×%d, want 8×2", r, c)
	}
}

func TestRun_ContinuesPastFailures(t *testing.T) {
	cfg := setupWorkspace(t, "binary", "real")
	v := New(cfg)

	requests := []config.Output{
		{Kind: config.KindPair, Dataset: "binary"},
		{Kind: config.KindPair, Dataset: "complex"}, // no inputs
		{Kind: config.KindPair, Dataset: "real"},
	}
	outcomes := v.Run(requests, false)

	if len(outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(outcomes))
	}
	if Failed(outcomes) != 1 {
		t.Errorf("Failed = %d, want 1", Failed(outcomes))
	}
	if outcomes[1].OK() || !matrix.IsParseError(outcomes[1].Err) || outcomes[1].Error == "" {
		t.Errorf("second request should fail with a parse error: %+v", outcomes[1])
	}
	if !outcomes[2].OK() || outcomes[2].Output != cfg.CombinedPath("real") {
		t.Errorf("third request should succeed: %+v", outcomes[2])
	}
}

func TestRun_FailFast(t *testing.T) {
	cfg := setupWorkspace(t, "binary", "real")
	v := New(cfg)

	requests := []config.Output{
		{Kind: config.KindPair, Dataset: "complex"},
		{Kind: config.KindPair, Dataset: "binary"},
	}
	outcomes := v.Run(requests, true)

	if len(outcomes) != 1 {
		t.Fatalf("expected run to stop after first failure, got %d outcomes", len(outcomes))
	}
	if _, err := os.Stat(cfg.CombinedPath("binary")); !errors.Is(err, os.ErrNotExist) {
		t.Error("later requests should not run after a fail-fast failure")
	}
}

func TestRun_InvalidRequest(t *testing.T) {
	v := New(config.Default())
	outcomes := v.Run([]config.Output{{Kind: "histogram"}}, false)
	if len(outcomes) != 1 || outcomes[0].OK() {
		t.Fatalf("expected invalid request to fail: %+v", outcomes)
	}
	if !strings.Contains(outcomes[0].Error, "invalid kind") {
		t.Errorf("error = %q", outcomes[0].Error)
	}
}

func TestComputeSimilarity(t *testing.T) {
	cfg := setupWorkspace(t)
	input := filepath.Join(cfg.ResultsDir, "emb.csv")
	if err := os.WriteFile(input, []byte("en,1,0\nde,0,1\nfr,1,1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(cfg.ResultsDir, "sim.csv")
	rec := &memRecorder{}

	v := New(cfg, WithRecorder(rec))
	sim, err := v.ComputeSimilarity(input, matrix.Layout{Index: true}, nil, output)
	if err != nil {
		t.Fatalf("ComputeSimilarity failed: %v", err)
	}
	if strings.Join(sim.RowLabels, ",") != "en,de,fr" {
		t.Errorf("labels = %v", sim.RowLabels)
	}

	back, err := matrix.ReadLabeled(output)
	if err != nil {
		t.Fatalf("written CSV unreadable: %v", err)
	}
	if back.At(0, 0) != 1 || back.At(0, 1) != 0 {
		t.Errorf("unexpected values: %v", mat.Formatted(back.Data))
	}
	if len(rec.artifacts) != 1 || rec.artifacts[0].Kind != KindSimilarity {
		t.Errorf("expected one similarity artifact, got %+v", rec.artifacts)
	}
}

func TestComputeSimilarity_GeneratedLabels(t *testing.T) {
	cfg := setupWorkspace(t)
	input := filepath.Join(cfg.ResultsDir, "model.csv")
	if err := os.WriteFile(input, []byte("1,0\n0,1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	v := New(cfg)
	sim, err := v.ComputeSimilarity(input, matrix.Layout{}, nil, "")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(sim.ColLabels, ",") != "0,1" {
		t.Errorf("labels = %v", sim.ColLabels)
	}
}

func TestPanelTitle(t *testing.T) {
	tests := []struct {
		dataset string
		panel   config.Panel
		want    string
	}{
		{"binary", config.Panel{Suffix: "objects", Title: "Object Similarities"}, "Binary HDV – Object Similarities"},
		{"complex", config.Panel{Suffix: "sentences", Title: "Sentence Similarities"}, "Complex HDV – Sentence Similarities"},
		{"real", config.Panel{Suffix: "words"}, "Real HDV – words"},
	}
	for _, tt := range tests {
		if got := PanelTitle(tt.dataset, tt.panel); got != tt.want {
			t.Errorf("PanelTitle(%q) = %q, want %q", tt.dataset, got, tt.want)
		}
	}
}
