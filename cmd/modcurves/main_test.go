package main

import (
	"bytes"
	"context"
	"encoding/json"
	"modcurves/internal/blob"
	"modcurves/internal/ingest"
	"modcurves/pkg/domain"
	"path/filepath"
	"strings"
	"testing"
)

func intPtr(v int) *int { return &v }

const seedTraceHash = 1234567890123456789

func seedBundle() ingest.Bundle {
	return ingest.Bundle{
		Curves: []domain.CurveRecord{
			{Label: "2.6.0.a.1", Name: "X(2)", Level: 2, Index: 6, Genus: 0, Cusps: 3, RationalCusps: 3,
				ContainsNegativeOne: true, IsogenyOrbits: []domain.Orbit{{2, 1}}, Orbits: []domain.Orbit{{2, 1}}},
			{Label: "4.12.1.a.1", Level: 4, Index: 12, Genus: 1, Rank: intPtr(0), Parents: []string{"2.6.0.a.1"},
				Cusps: 4, RationalCusps: 2, Dims: []int{1}, Newforms: []string{"32.2.a.a"}, TraceHash: seedTraceHash, Simple: true,
				ContainsNegativeOne: true, IsogenyOrbits: []domain.Orbit{{4, 2}}, Orbits: []domain.Orbit{{4, 2}}},
			{Label: "8.24.1.a.1", Level: 8, Index: 24, Genus: 1, Parents: []string{"4.12.1.a.1"},
				Dims: []int{1}, Newforms: []string{"32.2.a.a"}, TraceHash: seedTraceHash, Simple: true, ContainsNegativeOne: true},
		},
		ECQ: []domain.ECRecord{
			{Label: "96.b1", LMFDBLabel: "96.b1", LMFDBIso: "96.b", Conductor: 96, Number: 1,
				Ainvs: [5]int64{0, 1, 0, -2, 0}, JInv: "21952/9", ModmImages: []string{"4.12.1.a.1"}},
		},
	}
}

type env struct {
	root string
}

func setupEnv(t *testing.T) env {
	t.Helper()
	dir := t.TempDir()
	e := env{root: filepath.Join(dir, "blobs")}
	t.Setenv("MODCURVES_STORAGE_DRIVER", "sqlite")
	t.Setenv("MODCURVES_STORAGE_SQLITE_PATH", filepath.Join(dir, "curves.db"))
	t.Setenv("MODCURVES_BLOB_DRIVER", "fs")
	t.Setenv("MODCURVES_BLOB_FS_ROOT", e.root)
	t.Setenv("MODCURVES_LOG_MODE", "production")

	bs, err := blob.NewFilesystem(e.root)
	if err != nil {
		t.Fatalf("blob store: %v", err)
	}
	var buf bytes.Buffer
	if err := ingest.Encode(&buf, seedBundle(), ingest.FormatJSON); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := bs.Put(context.Background(), "seed.json", &buf, blob.PutOptions{ContentType: "application/json"}); err != nil {
		t.Fatalf("put bundle: %v", err)
	}
	return e
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := cli(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func mustImport(t *testing.T) {
	t.Helper()
	if code, _, stderr := runCLI(t, "import", "seed.json"); code != 0 {
		t.Fatalf("import exit %d: %s", code, stderr)
	}
}

func TestImportThenShow(t *testing.T) {
	setupEnv(t)
	code, out, stderr := runCLI(t, "import", "seed.json")
	if code != 0 {
		t.Fatalf("import exit %d: %s", code, stderr)
	}
	var sum ingest.Summary
	if err := json.Unmarshal([]byte(out), &sum); err != nil || sum.Curves != 3 || sum.ECQ != 1 {
		t.Fatalf("import summary %q: %v", out, err)
	}

	code, out, stderr = runCLI(t, "show", "4.12.1.a.1")
	if code != 0 {
		t.Fatalf("show exit %d: %s", code, stderr)
	}
	var view struct {
		Summary struct {
			FullTorsion string `json:"full_torsion_field_degree"`
			Title       string `json:"title"`
		} `json:"summary"`
	}
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode show: %v\n%s", err, out)
	}
	if view.Summary.FullTorsion != "8" || view.Summary.Title != "Modular curve 4.12.1.a.1" {
		t.Fatalf("unexpected show output %+v", view.Summary)
	}
}

func TestShowAsYAMLKeepsTraceHash(t *testing.T) {
	setupEnv(t)
	mustImport(t)
	code, out, stderr := runCLI(t, "--format", "yaml", "show", "4.12.1.a.1")
	if code != 0 {
		t.Fatalf("show exit %d: %s", code, stderr)
	}
	if !strings.Contains(out, "trace_hash: 1234567890123456789") {
		t.Fatalf("trace_hash not exact:\n%s", out)
	}
}

func TestCoversAndLattice(t *testing.T) {
	setupEnv(t)
	mustImport(t)

	code, out, stderr := runCLI(t, "covers", "4.12.1.a.1")
	if code != 0 {
		t.Fatalf("covers exit %d: %s", code, stderr)
	}
	var rel struct {
		Covers    []domain.CoverRelation `json:"covers"`
		CoveredBy []domain.CoverRelation `json:"covered_by"`
		Friends   []domain.Friend        `json:"friends"`
	}
	if err := json.Unmarshal([]byte(out), &rel); err != nil {
		t.Fatalf("decode covers: %v", err)
	}
	if len(rel.Covers) != 1 || rel.Covers[0].IndexRatio != 2 || len(rel.CoveredBy) != 1 || rel.CoveredBy[0].Label != "8.24.1.a.1" {
		t.Fatalf("unexpected relations %+v", rel)
	}
	if len(rel.Friends) != 2 || rel.Friends[0].Label != "8.24.1.a.1" {
		t.Fatalf("unexpected friends %+v", rel.Friends)
	}

	code, out, _ = runCLI(t, "lattice", "--depth", "1", "8.24.1.a.1")
	if code != 0 || !strings.Contains(out, `"4.12.1.a.1"`) || strings.Contains(out, `"2.6.0.a.1"`) {
		t.Fatalf("lattice depth 1 exit %d: %s", code, out)
	}
}

func TestPointsAsYAML(t *testing.T) {
	setupEnv(t)
	mustImport(t)
	code, out, stderr := runCLI(t, "--format", "yaml", "points", "4.12.1.a.1")
	if code != 0 {
		t.Fatalf("points exit %d: %s", code, stderr)
	}
	if !strings.Contains(out, "label: 96.b1") || !strings.Contains(out, "number_field: []") {
		t.Fatalf("unexpected yaml:\n%s", out)
	}
}

func TestExportRefusesExistingKey(t *testing.T) {
	setupEnv(t)
	mustImport(t)
	if code, _, stderr := runCLI(t, "export", "snap.yaml"); code != 0 {
		t.Fatalf("export exit %d: %s", code, stderr)
	}
	code, _, stderr := runCLI(t, "export", "snap.yaml")
	if code != 1 || !strings.Contains(stderr, "already exists") {
		t.Fatalf("expected refusal, got %d %q", code, stderr)
	}
}

func TestErrorsExitNonZero(t *testing.T) {
	setupEnv(t)
	cases := [][]string{
		{"show", "9.9.0.z.9"},
		{"--format", "xml", "show", "2.6.0.a.1"},
		{"--storage-driver", "mongo", "show", "2.6.0.a.1"},
		{"import", "missing.json"},
		{"show"},
	}
	for _, args := range cases {
		if code, _, stderr := runCLI(t, args...); code != 1 || !strings.HasPrefix(stderr, "modcurves: ") {
			t.Fatalf("%v: exit %d stderr %q", args, code, stderr)
		}
	}
}
