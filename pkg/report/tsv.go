// Package report writes measurement records as tab-separated tables.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	"texturemeasures/internal/models"
	"texturemeasures/pkg/glcm"
)

// TSVWriter writes one header row followed by one row per record. It is
// safe for concurrent use.
type TSVWriter struct {
	mu     sync.Mutex
	out    io.Writer
	csv    *csv.Writer
	closer io.Closer

	header      []string
	wroteHeader bool
	wroteRows   bool

	// separate ends a batch with an empty line, as appended reports expect.
	separate bool
}

// NewTSVWriter creates a writer for records measured with combos and
// features. The header is written before the first record.
func NewTSVWriter(w io.Writer, combos []glcm.Combination, features glcm.FeatureSet) *TSVWriter {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	header := append([]string{"Type"}, glcm.ColumnNames(combos, features)...)
	return &TSVWriter{out: w, csv: cw, header: header}
}

// OpenFile opens a report file. In append mode new rows are added after the
// existing content, the header is only written if the file is empty, and
// Close ends the batch with an empty separator line.
func OpenFile(path string, appendMode bool, combos []glcm.Combination, features glcm.FeatureSet) (*TSVWriter, error) {
	flags := os.O_CREATE | os.O_WRONLY
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open report file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat report file: %w", err)
	}

	t := NewTSVWriter(f, combos, features)
	t.closer = f
	t.separate = appendMode
	t.wroteHeader = info.Size() > 0
	return t, nil
}

// Header returns the column names, starting with "Type".
func (t *TSVWriter) Header() []string {
	return append([]string(nil), t.header...)
}

// WriteRecord writes the label and values of rec as one row.
func (t *TSVWriter) WriteRecord(rec models.Record) error {
	if len(rec.Values) != len(t.header)-1 {
		return fmt.Errorf("record for %s has %d values, report has %d columns",
			rec.Sample, len(rec.Values), len(t.header)-1)
	}

	row := make([]string, 0, len(t.header))
	row = append(row, rec.Sample.Label)
	for _, v := range rec.Values {
		row = append(row, FormatValue(v))
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.wroteHeader {
		if err := t.csv.Write(t.header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		t.wroteHeader = true
	}
	if err := t.csv.Write(row); err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}
	t.wroteRows = true
	return nil
}

// Flush writes buffered rows to the underlying writer.
func (t *TSVWriter) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.csv.Flush()
	return t.csv.Error()
}

// Close flushes the writer, writes the batch separator in append mode and
// closes the file opened by OpenFile.
func (t *TSVWriter) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.csv.Flush()
	err := t.csv.Error()
	if err == nil && t.separate && t.wroteRows {
		_, err = io.WriteString(t.out, "\n")
	}
	if t.closer != nil {
		if cerr := t.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// FormatValue formats a feature value with the shortest exact representation;
// NaN is written as "NaN".
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
