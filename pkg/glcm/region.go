package glcm

import "fmt"

// MeasureRegion computes all five features for each combination and returns
// them concatenated in combination order, 5*len(combos) values in total.
func MeasureRegion(pix []byte, width, height int, combos []Combination) ([]float64, error) {
	return Extractor{Features: AllFeatures}.MeasureRegion(pix, width, height, combos)
}

// MeasureRegion computes the enabled features for each combination and
// returns them concatenated in combination order. A failure is returned as
// a *CombinationError naming the combination.
func (e Extractor) MeasureRegion(pix []byte, width, height int, combos []Combination) ([]float64, error) {
	out := make([]float64, 0, e.FeatureSet().Count()*len(combos))
	for _, c := range combos {
		vals, err := e.Measure(pix, width, height, c)
		if err != nil {
			return nil, &CombinationError{Combination: c, Err: err}
		}
		out = append(out, vals...)
	}
	return out, nil
}

// Measure builds the matrix for a single combination and extracts the
// enabled features from it.
func (e Extractor) Measure(pix []byte, width, height int, c Combination) ([]float64, error) {
	m, err := Build(pix, width, height, c.Direction, c.Step)
	if err != nil {
		return nil, err
	}
	return e.Extract(m)
}

// ColumnNames returns the report column name of every value produced by
// MeasureRegion for combos and features, e.g. "ASM_0_1", "Ct_0_1".
func ColumnNames(combos []Combination, features FeatureSet) []string {
	if features&AllFeatures == 0 {
		features = AllFeatures
	}
	names := features.Names()
	cols := make([]string, 0, len(names)*len(combos))
	for _, c := range combos {
		for _, n := range names {
			cols = append(cols, fmt.Sprintf("%s_%d_%d", n, c.Direction.Degrees(), c.Step))
		}
	}
	return cols
}
