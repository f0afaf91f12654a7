package glcm

import (
	"fmt"
	"math"
	"math/bits"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// FeatureSet is a bitmask of Haralick features.
type FeatureSet uint8

const (
	ASM FeatureSet = 1 << iota
	Contrast
	Correlation
	IDM
	Entropy

	AllFeatures = ASM | Contrast | Correlation | IDM | Entropy
)

// NumFeatures is the length of a full feature vector.
const NumFeatures = 5

// featureOrder fixes the position of each feature in a vector.
var featureOrder = [NumFeatures]FeatureSet{ASM, Contrast, Correlation, IDM, Entropy}

// featureNames are the short names used in report column headers.
var featureNames = [NumFeatures]string{"ASM", "Ct", "Corr", "IDM", "Ent"}

var featureAliases = map[string]FeatureSet{
	"asm":                     ASM,
	"angularsecondmoment":     ASM,
	"ct":                      Contrast,
	"contrast":                Contrast,
	"corr":                    Correlation,
	"correlation":             Correlation,
	"idm":                     IDM,
	"inversedifferencemoment": IDM,
	"ent":                     Entropy,
	"entropy":                 Entropy,
}

// ParseFeatureSet builds a set from feature names such as "ASM", "Ct",
// "contrast" or "Entropy". Matching ignores case, spaces and underscores.
// An empty list selects all features.
func ParseFeatureSet(names []string) (FeatureSet, error) {
	if len(names) == 0 {
		return AllFeatures, nil
	}
	var set FeatureSet
	for _, name := range names {
		key := strings.ToLower(strings.NewReplacer(" ", "", "_", "", "-", "").Replace(name))
		f, ok := featureAliases[key]
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrInvalidFeature, name)
		}
		set |= f
	}
	return set, nil
}

// Has reports whether every feature in f is enabled in s.
func (s FeatureSet) Has(f FeatureSet) bool {
	return s&f == f
}

// Count returns the number of enabled features.
func (s FeatureSet) Count() int {
	return bits.OnesCount8(uint8(s & AllFeatures))
}

// Names returns the short names of the enabled features in vector order.
func (s FeatureSet) Names() []string {
	names := make([]string, 0, s.Count())
	for i, f := range featureOrder {
		if s.Has(f) {
			names = append(names, featureNames[i])
		}
	}
	return names
}

func (s FeatureSet) String() string {
	if s&AllFeatures == 0 {
		return "none"
	}
	return strings.Join(s.Names(), "|")
}

// Vector holds all five features in the order ASM, Contrast, Correlation,
// IDM, Entropy.
type Vector [NumFeatures]float64

// Select returns the enabled features of v, keeping vector order.
func (v Vector) Select(s FeatureSet) []float64 {
	out := make([]float64, 0, s.Count())
	for i, f := range featureOrder {
		if s.Has(f) {
			out = append(out, v[i])
		}
	}
	return out
}

// CorrelationPolicy decides what Correlation reports for a matrix with zero
// variance, e.g. one built from a constant-intensity region.
type CorrelationPolicy int

const (
	// CorrelationNaN reports NaN. NaN is never produced by any other feature.
	CorrelationNaN CorrelationPolicy = iota
	// CorrelationZero reports 0.
	CorrelationZero
	// CorrelationError fails the extraction with ErrSingularCorrelation.
	CorrelationError
)

var policyNames = map[string]CorrelationPolicy{
	"nan":   CorrelationNaN,
	"zero":  CorrelationZero,
	"error": CorrelationError,
}

// ParseCorrelationPolicy accepts "nan", "zero" or "error". Empty means "nan".
func ParseCorrelationPolicy(name string) (CorrelationPolicy, error) {
	if name == "" {
		return CorrelationNaN, nil
	}
	p, ok := policyNames[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("unknown correlation policy %q (must be nan, zero or error)", name)
	}
	return p, nil
}

func (p CorrelationPolicy) String() string {
	switch p {
	case CorrelationNaN:
		return "nan"
	case CorrelationZero:
		return "zero"
	case CorrelationError:
		return "error"
	}
	return fmt.Sprintf("CorrelationPolicy(%d)", int(p))
}

// Extractor computes a configurable subset of Haralick features. The zero
// value computes all five features with the CorrelationNaN policy.
type Extractor struct {
	Features    FeatureSet
	Correlation CorrelationPolicy
}

// Extract computes the five features of m with the default policy.
func Extract(m *Matrix) (Vector, error) {
	vals, err := Extractor{Features: AllFeatures}.Extract(m)
	if err != nil {
		return Vector{}, err
	}
	var v Vector
	copy(v[:], vals)
	return v, nil
}

// FeatureSet returns the features e computes.
func (e Extractor) FeatureSet() FeatureSet {
	if e.Features&AllFeatures == 0 {
		return AllFeatures
	}
	return e.Features & AllFeatures
}

// Extract returns the enabled features of m in vector order. Disabled
// features are skipped entirely.
func (e Extractor) Extract(m *Matrix) ([]float64, error) {
	set := e.FeatureSet()

	var v Vector
	if set&(ASM|Contrast|IDM|Entropy) != 0 {
		v[0], v[1], v[3], v[4] = sweep(m)
	}
	if set.Has(Correlation) {
		corr, ok := correlation(m)
		if !ok {
			switch e.Correlation {
			case CorrelationZero:
				corr = 0
			case CorrelationError:
				return nil, ErrSingularCorrelation
			default:
				corr = math.NaN()
			}
		}
		v[2] = corr
	}
	return v.Select(set), nil
}

// sweep computes ASM, Contrast, IDM and Entropy in one pass over the full
// table. Zero cells contribute nothing to Entropy.
func sweep(m *Matrix) (asm, contrast, idm, entropy float64) {
	for a := 0; a < Levels; a++ {
		for b, p := range m.Row(a) {
			d := float64(a - b)
			asm += p * p
			contrast += d * d * p
			idm += p / (1 + d*d)
			if p != 0 {
				entropy -= p * math.Log(p)
			}
		}
	}
	return asm, contrast, idm, entropy
}

// grayLevels holds 0..Levels-1 as float64 for weighted statistics.
var grayLevels = func() []float64 {
	l := make([]float64, Levels)
	for i := range l {
		l[i] = float64(i)
	}
	return l
}()

// correlation returns Σ (a-μx)(b-μy) p(a,b) / (σx σy). It reports false
// when σx σy is zero or undefined.
//
// The row and column marginals of a symmetric table coincide, so μx = μy
// and σx = σy, and the denominator is the marginal variance.
func correlation(m *Matrix) (float64, bool) {
	ones := make([]float64, Levels)
	for i := range ones {
		ones[i] = 1
	}
	var px mat.VecDense
	px.MulVec(m.Raw(), mat.NewVecDense(Levels, ones))

	mean, variance := stat.PopMeanVariance(grayLevels, px.RawVector().Data)
	if !(variance > 0) {
		return 0, false
	}

	centred := make([]float64, Levels)
	for i, g := range grayLevels {
		centred[i] = g - mean
	}
	dev := mat.NewVecDense(Levels, centred)
	cov := mat.Inner(dev, m.Raw(), dev)

	return cov / variance, true
}
