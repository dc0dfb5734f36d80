package report

import (
	"io"

	"github.com/nao1215/jobscan/internal/model"
)

// Writer renders search reports.
type Writer interface {
	// Write outputs one report and returns the number of bytes written.
	Write(report *model.SearchReport) (int, error)

	// WriteBatch outputs the reports of a batch run in order.
	WriteBatch(reports []*model.SearchReport) (int, error)
}

// MultiWriter writes to several Writers in turn.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to every writer and stops on the first error.
func (m *MultiWriter) Write(report *model.SearchReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteBatch outputs the batch to every writer and stops on the first error.
func (m *MultiWriter) WriteBatch(reports []*model.SearchReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteBatch(reports)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
