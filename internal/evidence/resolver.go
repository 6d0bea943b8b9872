package evidence

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/ppiankov/wikifactcheck/internal/cache"
	"github.com/ppiankov/wikifactcheck/internal/diag"
)

// ErrInvalidUTF8 marks evidence files that are not UTF-8 text
var ErrInvalidUTF8 = errors.New("invalid UTF-8")

// MissingEvidenceError is returned when an evidence file cannot be read
type MissingEvidenceError struct {
	Reference string
	Path      string
	Err       error
}

func (e *MissingEvidenceError) Error() string {
	return fmt.Sprintf("missing evidence %q (%s): %v", e.Reference, e.Path, e.Err)
}

func (e *MissingEvidenceError) Unwrap() error {
	return e.Err
}

// Resolver loads evidence text referenced by dataset rows
type Resolver struct {
	baseDir     string
	stripMarkup bool
	cache       cache.Cache
	cacheTTL    time.Duration
	sink        diag.Sink
}

// Option configures a Resolver
type Option func(*Resolver)

// WithCache memoizes resolved text per path
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(r *Resolver) {
		r.cache = c
		r.cacheTTL = ttl
	}
}

// WithMarkupStripping extracts visible text from HTML evidence before normalizing
func WithMarkupStripping(enabled bool) Option {
	return func(r *Resolver) {
		r.stripMarkup = enabled
	}
}

// WithSink sets the diagnostics sink
func WithSink(s diag.Sink) Option {
	return func(r *Resolver) {
		r.sink = s
	}
}

// NewResolver creates a resolver rooted at baseDir
func NewResolver(baseDir string, opts ...Option) *Resolver {
	r := &Resolver{
		baseDir: baseDir,
		sink:    diag.Nop{},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.sink = diag.OrNop(r.sink)
	return r
}

// Resolve reads the evidence file for reference under baseDir
func Resolve(reference, baseDir string) (string, error) {
	return NewResolver(baseDir).Resolve(reference)
}

// Resolve returns the whitespace-normalized text of the referenced file
func (r *Resolver) Resolve(reference string) (string, error) {
	path := r.Path(reference)

	var key string
	if r.cache != nil {
		key = cache.EvidenceKey(path)
		if text, found := r.cache.Get(key); found {
			return text, nil
		}
	}

	raw, err := readFile(path)
	if err != nil {
		r.sink.Record("evidence.missing", map[string]any{
			"reference": reference,
			"path":      path,
			"error":     err.Error(),
		})
		return "", &MissingEvidenceError{Reference: reference, Path: path, Err: err}
	}

	if r.stripMarkup {
		raw, err = VisibleText(raw)
		if err != nil {
			return "", fmt.Errorf("extract text from %s: %w", path, err)
		}
	}

	text := Normalize(raw)
	if r.cache != nil {
		r.cache.Set(key, text, r.cacheTTL)
	}
	return text, nil
}

// Path joins the base directory with the trimmed reference
func (r *Resolver) Path(reference string) string {
	return filepath.Join(r.baseDir, strings.TrimSpace(reference))
}

func readFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w at byte %d", ErrInvalidUTF8, invalidOffset(data))
	}
	return string(data), nil
}

func invalidOffset(data []byte) int {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return len(data)
}

// Normalize collapses every run of whitespace into a single space.
// Leading and trailing runs are kept as one space. The ASCII separators
// U+001C..U+001F count as whitespace.
func Normalize(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))

	inSpace := false
	for _, r := range s {
		if isSpace(r) {
			if !inSpace {
				buf.WriteByte(' ')
				inSpace = true
			}
			continue
		}
		inSpace = false
		buf.WriteRune(r)
	}
	return buf.String()
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}
