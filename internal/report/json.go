package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/jobscan/internal/model"
)

// JSONWriter outputs reports as JSON.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed output.
	indent bool

	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report as a JSON object.
func (w *JSONWriter) Write(report *model.SearchReport) (int, error) {
	return w.writeJSON(report)
}

// WriteBatch outputs the reports as a JSON array.
func (w *JSONWriter) WriteBatch(reports []*model.SearchReport) (int, error) {
	if reports == nil {
		reports = []*model.SearchReport{}
	}
	return w.writeJSON(reports)
}

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}

// JSONReport wraps reports with the version of the tool that produced them.
type JSONReport struct {
	Version string                `json:"version"`
	Reports []*model.SearchReport `json:"reports"`
}

// FullJSONWriter outputs reports inside a JSONReport envelope.
type FullJSONWriter struct {
	*JSONWriter

	version string
}

// NewFullJSONWriter creates a writer for versioned reports.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// Write outputs a single report in the envelope.
func (w *FullJSONWriter) Write(report *model.SearchReport) (int, error) {
	return w.WriteBatch([]*model.SearchReport{report})
}

// WriteBatch outputs the reports in the envelope.
func (w *FullJSONWriter) WriteBatch(reports []*model.SearchReport) (int, error) {
	if reports == nil {
		reports = []*model.SearchReport{}
	}
	return w.writeJSON(&JSONReport{Version: w.version, Reports: reports})
}
