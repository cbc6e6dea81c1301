package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/synthlab/synthlink/internal/models"
)

func sampleArtifact() *models.GenerateResult {
	return &models.GenerateResult{
		JobID: "j-1",
		SyntheticData: []map[string]any{
			{"age": 34.0, "city": "Oslo", "active": true},
			{"age": 52.5, "city": "Lima", "active": false},
		},
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("csv"); err != nil || f != FormatCSV {
		t.Errorf("csv: %v %v", f, err)
	}
	if f, err := ParseFormat("json"); err != nil || f != FormatJSON {
		t.Errorf("json: %v %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestWriteArtifactJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	artifact := sampleArtifact()

	if err := WriteArtifact(artifact, path, FormatJSON); err != nil {
		t.Fatalf("WriteArtifact: %v", err)
	}

	loaded, err := LoadArtifact(path)
	if err != nil {
		t.Fatalf("LoadArtifact: %v", err)
	}
	if loaded.JobID != "j-1" {
		t.Errorf("jobID = %q", loaded.JobID)
	}
	if len(loaded.SyntheticData) != 2 {
		t.Fatalf("expected 2 records, got %d", len(loaded.SyntheticData))
	}
	if loaded.SyntheticData[0]["city"] != "Oslo" {
		t.Errorf("record mismatch: %v", loaded.SyntheticData[0])
	}
}

func TestWriteArtifactCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	if err := WriteArtifact(sampleArtifact(), path, FormatCSV); err != nil {
		t.Fatalf("WriteArtifact: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}

	// Header is the sorted union of keys
	header := strings.Join(rows[0], ",")
	if header != "active,age,city" {
		t.Errorf("header = %q", header)
	}
	if rows[1][0] != "true" || rows[1][1] != "34" || rows[1][2] != "Oslo" {
		t.Errorf("row 1 = %v", rows[1])
	}
	if rows[2][1] != "52.5" {
		t.Errorf("fractional value = %q, want 52.5", rows[2][1])
	}
}

func TestWriteArtifactCSVRaggedRecords(t *testing.T) {
	artifact := &models.GenerateResult{
		JobID: "j-1",
		SyntheticData: []map[string]any{
			{"a": 1.0},
			{"b": "two"},
		},
	}
	path := filepath.Join(t.TempDir(), "ragged.csv")
	if err := WriteArtifact(artifact, path, FormatCSV); err != nil {
		t.Fatalf("WriteArtifact: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows[0]) != 2 {
		t.Fatalf("header = %v", rows[0])
	}
	// Missing fields export as empty cells
	if rows[1][1] != "" || rows[2][0] != "" {
		t.Errorf("missing cells not empty: %v %v", rows[1], rows[2])
	}
}

func TestWriteArtifactNil(t *testing.T) {
	if err := WriteArtifact(nil, filepath.Join(t.TempDir(), "x.json"), FormatJSON); err == nil {
		t.Error("expected error for nil artifact")
	}
}

func TestWriteArtifactLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")
	if err := WriteArtifact(sampleArtifact(), path, FormatJSON); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestLoadArtifactMissingFile(t *testing.T) {
	if _, err := LoadArtifact(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
