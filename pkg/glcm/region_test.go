package glcm

import (
	"errors"
	"math"
	"testing"
)

// sameValue treats two NaNs as equal
func sameValue(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}

// TestMeasureRegionOrdering verifies the length of the flattened record and
// that each block of five matches an independent Build and Extract
func TestMeasureRegionOrdering(t *testing.T) {
	width, height := 21, 21
	pix := randomBuffer(width, height, 11)
	combos := DefaultCombinations()

	vals, err := MeasureRegion(pix, width, height, combos)
	if err != nil {
		t.Fatalf("MeasureRegion failed: %v", err)
	}
	if len(vals) != NumFeatures*len(combos) {
		t.Fatalf("expected %d values, got %d", NumFeatures*len(combos), len(vals))
	}

	for k, c := range combos {
		m, err := Build(pix, width, height, c.Direction, c.Step)
		if err != nil {
			t.Fatalf("Build(%s) failed: %v", c, err)
		}
		v, err := Extract(m)
		if err != nil {
			t.Fatalf("Extract(%s) failed: %v", c, err)
		}
		for i := 0; i < NumFeatures; i++ {
			if !sameValue(vals[NumFeatures*k+i], v[i]) {
				t.Errorf("%s feature %d: expected %g, got %g", c, i, v[i], vals[NumFeatures*k+i])
			}
		}
	}
}

// TestMeasureRegionSubset checks the record length for a feature subset
func TestMeasureRegionSubset(t *testing.T) {
	pix := randomBuffer(9, 9, 5)
	combos := []Combination{{Deg0, 1}, {Deg270, 2}, {Deg90, 1}}
	e := Extractor{Features: ASM | IDM}

	vals, err := e.MeasureRegion(pix, 9, 9, combos)
	if err != nil {
		t.Fatalf("MeasureRegion failed: %v", err)
	}
	if len(vals) != 2*len(combos) {
		t.Fatalf("expected %d values, got %d", 2*len(combos), len(vals))
	}

	second, err := e.Measure(pix, 9, 9, combos[1])
	if err != nil {
		t.Fatalf("Measure failed: %v", err)
	}
	if vals[2] != second[0] || vals[3] != second[1] {
		t.Errorf("expected block 1 to be %v, got %v", second, vals[2:4])
	}
}

// TestMeasureRegionAttributesFailure verifies that a degenerate combination
// is reported with its direction and step
func TestMeasureRegionAttributesFailure(t *testing.T) {
	pix := randomBuffer(5, 5, 2)
	combos := []Combination{{Deg0, 1}, {Deg90, 5}, {Deg180, 1}}

	_, err := MeasureRegion(pix, 5, 5, combos)
	if !errors.Is(err, ErrDegenerateRegion) {
		t.Fatalf("expected ErrDegenerateRegion, got %v", err)
	}

	var ce *CombinationError
	if !errors.As(err, &ce) {
		t.Fatalf("expected a *CombinationError, got %T", err)
	}
	if ce.Combination != combos[1] {
		t.Errorf("expected failing combination %s, got %s", combos[1], ce.Combination)
	}
}

// TestColumnNames verifies report column naming and ordering
func TestColumnNames(t *testing.T) {
	cols := ColumnNames(DefaultCombinations(), AllFeatures)
	if len(cols) != 40 {
		t.Fatalf("expected 40 columns, got %d", len(cols))
	}

	checks := map[int]string{
		0:  "ASM_0_1",
		1:  "Ct_0_1",
		2:  "Corr_0_1",
		3:  "IDM_0_1",
		4:  "Ent_0_1",
		5:  "ASM_0_3",
		10: "ASM_90_1",
		39: "Ent_270_3",
	}
	for i, name := range checks {
		if cols[i] != name {
			t.Errorf("column %d: expected %s, got %s", i, name, cols[i])
		}
	}

	subset := ColumnNames([]Combination{{Deg180, 2}}, Entropy|Contrast)
	if len(subset) != 2 || subset[0] != "Ct_180_2" || subset[1] != "Ent_180_2" {
		t.Errorf("expected [Ct_180_2 Ent_180_2], got %v", subset)
	}
}

// TestDefaultCombinations checks the default schedule
func TestDefaultCombinations(t *testing.T) {
	combos := DefaultCombinations()
	expected := []Combination{
		{Deg0, 1}, {Deg0, 3}, {Deg90, 1}, {Deg90, 3},
		{Deg180, 1}, {Deg180, 3}, {Deg270, 1}, {Deg270, 3},
	}
	if len(combos) != len(expected) {
		t.Fatalf("expected %d combinations, got %d", len(expected), len(combos))
	}
	for i := range expected {
		if combos[i] != expected[i] {
			t.Errorf("combination %d: expected %s, got %s", i, expected[i], combos[i])
		}
	}
}
