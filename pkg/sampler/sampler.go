package sampler

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"texturemeasures/internal/logger"
	"texturemeasures/internal/models"
	"texturemeasures/pkg/glcm"
	"texturemeasures/pkg/visualization"
)

// ErrInvalidParams is returned by Process for an unusable configuration.
var ErrInvalidParams = errors.New("invalid sampler parameters")

// Params holds the batch measurement parameters.
type Params struct {
	// Radius r gives a (2r+1)x(2r+1) window around each sample.
	Radius int

	// Combinations is the ordered (direction, step) schedule. Its order
	// fixes the column layout of every record.
	Combinations []glcm.Combination

	// Extractor selects the features and the singular correlation policy.
	Extractor glcm.Extractor

	// NumWorkers bounds the number of regions measured concurrently.
	// Zero or negative uses all CPUs.
	NumWorkers int

	// Boundary decides how windows crossing the image edge are handled.
	Boundary BoundaryPolicy

	// SaveIntermediaryResults writes every GLCM as an image under IntermediaryDir.
	SaveIntermediaryResults bool
	IntermediaryDir         string
}

// Sink receives finished records, e.g. a report writer.
type Sink interface {
	WriteRecord(rec models.Record) error
}

// RegionError attributes a failed measurement to its sample and, when the
// failure happened inside the GLCM engine, to the combination.
type RegionError struct {
	// Index is the position of the sample in the input list.
	Index int

	Sample models.Sample

	// Combination is nil when the window itself could not be extracted.
	Combination *glcm.Combination

	Err error
}

// Error implements the error interface.
func (e *RegionError) Error() string {
	if e.Combination != nil {
		return fmt.Sprintf("sample %d %s: %s: %v", e.Index, e.Sample, e.Combination, e.Err)
	}
	return fmt.Sprintf("sample %d %s: %v", e.Index, e.Sample, e.Err)
}

// Unwrap returns the underlying error.
func (e *RegionError) Unwrap() error {
	return e.Err
}

// Summary describes a finished batch.
type Summary struct {
	// Measured is the number of records written to the sink.
	Measured int

	// Failed is the number of samples that produced no record.
	Failed int

	// Errors holds one entry per failed sample, in input order.
	Errors []*RegionError

	Duration time.Duration
}

// Err joins the region errors, or returns nil if every sample succeeded.
func (s *Summary) Err() error {
	if len(s.Errors) == 0 {
		return nil
	}
	errs := make([]error, len(s.Errors))
	for i, e := range s.Errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}

// Sampler measures the texture of labelled sample windows.
type Sampler struct {
	params *Params
}

// NewSampler creates a new sampler with the provided parameters.
func NewSampler(params *Params) *Sampler {
	return &Sampler{params: params}
}

// Columns returns the record column names after the label.
func (s *Sampler) Columns() []string {
	return glcm.ColumnNames(s.params.Combinations, s.params.Extractor.FeatureSet())
}

func (s *Sampler) validate() error {
	p := s.params
	if p == nil {
		return fmt.Errorf("%w: nil params", ErrInvalidParams)
	}
	if p.Radius < 1 {
		return fmt.Errorf("%w: radius must be at least 1 (got %d)", ErrInvalidParams, p.Radius)
	}
	if p.Boundary != BoundaryReject && p.Boundary != BoundaryClip {
		return fmt.Errorf("%w: unknown boundary policy %d", ErrInvalidParams, int(p.Boundary))
	}
	if len(p.Combinations) == 0 {
		return fmt.Errorf("%w: no combinations", ErrInvalidParams)
	}
	for i, c := range p.Combinations {
		if !c.Direction.Valid() || c.Step <= 0 {
			return fmt.Errorf("%w: combination %d (%s) is invalid", ErrInvalidParams, i, c)
		}
	}
	if p.SaveIntermediaryResults && p.IntermediaryDir == "" {
		return fmt.Errorf("%w: intermediary directory is required", ErrInvalidParams)
	}
	return nil
}

func (s *Sampler) workers() int {
	if s.params.NumWorkers <= 0 {
		return runtime.NumCPU()
	}
	return s.params.NumWorkers
}

// Measure computes the record of a single sample.
func (s *Sampler) Measure(src PixelSource, sample models.Sample) (models.Record, error) {
	if err := s.validate(); err != nil {
		return models.Record{}, err
	}
	rec, rerr := s.measure(src, 0, sample)
	if rerr != nil {
		return models.Record{}, rerr
	}
	return rec, nil
}

// measure extracts the window of sample and runs the full schedule on it.
func (s *Sampler) measure(src PixelSource, index int, sample models.Sample) (models.Record, *RegionError) {
	p := s.params

	win, err := WindowFor(src.Bounds(), sample, p.Radius, p.Boundary)
	if err != nil {
		return models.Record{}, regionError(index, sample, err)
	}
	pix := ExtractWindow(src, win)

	var values []float64
	if p.SaveIntermediaryResults {
		values, err = s.measureAndSave(pix, win, index, sample)
	} else {
		values, err = p.Extractor.MeasureRegion(pix, win.Width, win.Height, p.Combinations)
	}
	if err != nil {
		return models.Record{}, regionError(index, sample, err)
	}

	return models.Record{Sample: sample, Values: values}, nil
}

// measureAndSave runs the schedule like glcm.Extractor.MeasureRegion and
// also writes every matrix it builds as an image.
func (s *Sampler) measureAndSave(pix []byte, win models.Window, index int, sample models.Sample) ([]float64, error) {
	p := s.params
	values := make([]float64, 0, p.Extractor.FeatureSet().Count()*len(p.Combinations))
	for _, c := range p.Combinations {
		m, err := glcm.Build(pix, win.Width, win.Height, c.Direction, c.Step)
		if err != nil {
			return nil, &glcm.CombinationError{Combination: c, Err: err}
		}
		vals, err := p.Extractor.Extract(m)
		if err != nil {
			return nil, &glcm.CombinationError{Combination: c, Err: err}
		}

		if err := s.saveIntermediaryResult(index, sample, c, m); err != nil {
			logger.WithError(err).WithField("sample", sample.String()).Warn("failed to save GLCM image")
		}

		values = append(values, vals...)
	}
	return values, nil
}

// regionError attributes err to a sample, and to a combination when err
// carries a *glcm.CombinationError.
func regionError(index int, sample models.Sample, err error) *RegionError {
	re := &RegionError{Index: index, Sample: sample, Err: err}
	var ce *glcm.CombinationError
	if errors.As(err, &ce) {
		c := ce.Combination
		re.Combination = &c
		re.Err = ce.Err
	}
	return re
}

type outcome struct {
	record models.Record
	err    *RegionError
}

// Process measures every sample and writes the records to sink in input
// order. Samples are measured concurrently; a failing sample is recorded in
// the summary and does not stop the batch. Process returns an error only for
// invalid parameters, a failing sink or a cancelled context.
func (s *Sampler) Process(ctx context.Context, src PixelSource, samples []models.Sample, sink Sink) (*Summary, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	if sink == nil {
		return nil, fmt.Errorf("%w: nil sink", ErrInvalidParams)
	}

	start := time.Now()
	results := make([]outcome, len(samples))
	total := len(samples)
	var completed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers())

	for i, sample := range samples {
		i, sample := i, sample // per-iteration copy (Go <1.22 loop semantics)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, rerr := s.measure(src, i, sample)
			results[i] = outcome{record: rec, err: rerr}

			n := completed.Add(1)
			logger.WithFields(logrus.Fields{
				"sample":   sample.String(),
				"progress": fmt.Sprintf("%.1f%%", float64(n)/float64(total)*100),
			}).Debug("measured sample")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch interrupted: %w", err)
	}

	summary := &Summary{}
	for i, res := range results {
		if res.err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, res.err)
			logger.WithError(res.err.Err).WithFields(logrus.Fields{
				"index":       i,
				"sample":      res.err.Sample.String(),
				"combination": combinationField(res.err.Combination),
			}).Warn("region measurement failed")
			continue
		}
		if err := sink.WriteRecord(res.record); err != nil {
			summary.Duration = time.Since(start)
			return summary, fmt.Errorf("failed to write record for sample %d: %w", i, err)
		}
		summary.Measured++
	}
	summary.Duration = time.Since(start)

	return summary, nil
}

func combinationField(c *glcm.Combination) string {
	if c == nil {
		return "window"
	}
	return c.String()
}

// saveIntermediaryResult writes the GLCM of one sample and combination as a
// heat map image.
func (s *Sampler) saveIntermediaryResult(index int, sample models.Sample, c glcm.Combination, m *glcm.Matrix) error {
	dir := filepath.Join(s.params.IntermediaryDir, fmt.Sprintf("%03d_%s", index, safeName(sample.Label)))
	name := fmt.Sprintf("glcm_%d_%d.png", c.Direction.Degrees(), c.Step)
	return visualization.SaveImage(visualization.MatrixImage(m), filepath.Join(dir, name))
}

// safeName keeps letters, digits, dash and underscore of a label.
func safeName(label string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, label)
	if name == "" {
		return "sample"
	}
	return name
}
