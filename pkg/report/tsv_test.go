package report

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"texturemeasures/internal/models"
	"texturemeasures/pkg/glcm"
)

var testCombos = []glcm.Combination{
	{Direction: glcm.Deg0, Step: 1},
	{Direction: glcm.Deg90, Step: 3},
}

func TestTSVWriterFormat(t *testing.T) {
	var buf bytes.Buffer
	w := NewTSVWriter(&buf, testCombos, glcm.ASM|glcm.Correlation)

	records := []models.Record{
		{Sample: models.Sample{Label: "Fg", X: 1, Y: 2}, Values: []float64{0.5, -1, 0.25, math.NaN()}},
		{Sample: models.Sample{Label: "Bg", X: 3, Y: 4}, Values: []float64{1, 0.125, 1e-7, 0}},
	}
	for _, rec := range records {
		if err := w.WriteRecord(rec); err != nil {
			t.Fatalf("WriteRecord failed: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	expected := "Type\tASM_0_1\tCorr_0_1\tASM_90_3\tCorr_90_3\n" +
		"Fg\t0.5\t-1\t0.25\tNaN\n" +
		"Bg\t1\t0.125\t1e-07\t0\n"
	if buf.String() != expected {
		t.Errorf("unexpected output:\n%q\nwant\n%q", buf.String(), expected)
	}
}

func TestTSVWriterRejectsWrongWidth(t *testing.T) {
	var buf bytes.Buffer
	w := NewTSVWriter(&buf, testCombos, glcm.AllFeatures)

	err := w.WriteRecord(models.Record{Sample: models.Sample{Label: "Fg"}, Values: []float64{1, 2, 3}})
	if err == nil {
		t.Fatalf("expected an error for a short record")
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected nothing written, got %q", buf.String())
	}
	if h := w.Header(); len(h) != 11 || h[0] != "Type" {
		t.Errorf("expected 11 header columns starting with Type, got %v", h)
	}
}

func TestOpenFileAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "TextureMeasures.txt")
	rec := models.Record{Sample: models.Sample{Label: "Fg"}, Values: []float64{0.5, 2}}

	for i := 0; i < 2; i++ {
		w, err := OpenFile(path, true, testCombos, glcm.ASM)
		if err != nil {
			t.Fatalf("OpenFile failed: %v", err)
		}
		if err := w.WriteRecord(rec); err != nil {
			t.Fatalf("WriteRecord failed: %v", err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	expected := "Type\tASM_0_1\tASM_90_3\n" +
		"Fg\t0.5\t2\n" +
		"\n" +
		"Fg\t0.5\t2\n" +
		"\n"
	if string(data) != expected {
		t.Errorf("unexpected file content:\n%q\nwant\n%q", string(data), expected)
	}
}

func TestOpenFileTruncate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.tsv")
	if err := os.WriteFile(path, []byte("stale content\n"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	w, err := OpenFile(path, false, testCombos, glcm.Entropy)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	if err := w.WriteRecord(models.Record{Sample: models.Sample{Label: "Bg"}, Values: []float64{0, math.Ln2}}); err != nil {
		t.Fatalf("WriteRecord failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 || lines[0] != "Type\tEnt_0_1\tEnt_90_3" {
		t.Errorf("expected a fresh header and one row, got %q", string(data))
	}
}

func TestFormatValue(t *testing.T) {
	testCases := map[float64]string{
		0:           "0",
		1:           "1",
		0.1:         "0.1",
		-1:          "-1",
		65025:       "65025",
		math.Inf(1): "+Inf",
		1.0 / 3.0:   "0.3333333333333333",
	}
	for v, expected := range testCases {
		if got := FormatValue(v); got != expected {
			t.Errorf("FormatValue(%v): expected %s, got %s", v, expected, got)
		}
	}
	if got := FormatValue(math.NaN()); got != "NaN" {
		t.Errorf("expected NaN, got %s", got)
	}
}
