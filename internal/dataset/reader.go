package dataset

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/wikifactcheck/internal/diag"
	"github.com/ppiankov/wikifactcheck/internal/model"
)

// maxLineBytes bounds a single row; context columns can be long
const maxLineBytes = 64 << 20

// MalformedRowError describes a row with the wrong number of columns
type MalformedRowError struct {
	Path   string
	Line   int
	Fields int
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("%s:%d: expected %d fields, got %d", e.Path, e.Line, model.RecordFields, e.Fields)
}

// InvalidEncodingError is returned for a row that is not UTF-8 text
type InvalidEncodingError struct {
	Path string
	Line int
}

func (e *InvalidEncodingError) Error() string {
	return fmt.Sprintf("%s:%d: invalid UTF-8", e.Path, e.Line)
}

// ReadResult holds the parsed rows of one file
type ReadResult struct {
	Path      string
	Records   []model.RawRecord
	Malformed []*MalformedRowError
	Truncated bool // Reading stopped at the line limit
}

// Skipped returns the number of rows dropped for having the wrong field count
func (r *ReadResult) Skipped() int {
	return len(r.Malformed)
}

// Reader parses delimited dataset files
type Reader struct {
	delimiter string
	sink      diag.Sink
}

// NewReader creates a reader; an empty delimiter means tab
func NewReader(delimiter string, sink diag.Sink) *Reader {
	if delimiter == "" {
		delimiter = "\t"
	}
	return &Reader{
		delimiter: delimiter,
		sink:      diag.OrNop(sink),
	}
}

// SplitPath returns the file path of a split inside dataDir
func SplitPath(dataDir, split string) string {
	return filepath.Join(dataDir, model.SplitFile(split))
}

// Read parses every data row of path. The header line is skipped.
// Rows with the wrong field count are collected in Malformed, not returned as errors.
func (r *Reader) Read(path string) (*ReadResult, error) {
	return r.ReadLimit(path, 0)
}

// ReadLimit is Read that stops before line index limit; nothing past it is
// scanned. A limit of 0 reads the whole file.
func (r *Reader) ReadLimit(path string, limit int) (*ReadResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer func() { _ = file.Close() }()

	result := &ReadResult{Path: path}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	line := -1
	for scanner.Scan() {
		line++
		if limit > 0 && line >= limit {
			result.Truncated = true
			break
		}
		if line == 0 {
			continue
		}

		raw := scanner.Bytes()
		if !utf8.Valid(raw) {
			return nil, &InvalidEncodingError{Path: path, Line: line}
		}

		text := strings.TrimSuffix(string(raw), "\r")
		fields := strings.Split(text, r.delimiter)

		record, ok := model.RecordFromFields(fields, line)
		if !ok {
			result.Malformed = append(result.Malformed, &MalformedRowError{
				Path:   path,
				Line:   line,
				Fields: len(fields),
			})
			continue
		}
		result.Records = append(result.Records, record)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}

	r.sink.Record("reader.done", map[string]any{
		"path":      path,
		"records":   len(result.Records),
		"skipped":   result.Skipped(),
		"truncated": result.Truncated,
	})

	return result, nil
}
