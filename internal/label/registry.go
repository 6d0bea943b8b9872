package label

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ppiankov/wikifactcheck/internal/model"
)

// OutputMode says how a label becomes a trainable target
type OutputMode string

const (
	Classification OutputMode = "classification"
	Regression     OutputMode = "regression"
)

var (
	// ErrDuplicateLabel is returned by Build when a name repeats
	ErrDuplicateLabel = errors.New("duplicate label")
	// ErrEmptyLabel is returned by Build for an empty name
	ErrEmptyLabel = errors.New("empty label name")
)

// UnknownLabelError is returned for a classification label outside the registry
type UnknownLabelError struct {
	Label string
	Known []string
}

func (e *UnknownLabelError) Error() string {
	return fmt.Sprintf("unknown label %q (known: %v)", e.Label, e.Known)
}

// InvalidNumericLabelError is returned when a regression label is not a number
type InvalidNumericLabelError struct {
	Label string
	Err   error
}

func (e *InvalidNumericLabelError) Error() string {
	return fmt.Sprintf("invalid numeric label %q: %v", e.Label, e.Err)
}

func (e *InvalidNumericLabelError) Unwrap() error {
	return e.Err
}

// UnsupportedOutputModeError is returned for an output mode other than classification/regression
type UnsupportedOutputModeError struct {
	Mode string
}

func (e *UnsupportedOutputModeError) Error() string {
	return fmt.Sprintf("unsupported output mode: %s (supported: classification, regression)", e.Mode)
}

// Registry is a fixed bijection between label names and class indices
type Registry struct {
	names []string
	index map[string]int
}

// Build creates a registry; each name's index is its position in names
func Build(names []string) (*Registry, error) {
	r := &Registry{
		names: make([]string, 0, len(names)),
		index: make(map[string]int, len(names)),
	}
	for i, name := range names {
		if name == "" {
			return nil, fmt.Errorf("label %d: %w", i, ErrEmptyLabel)
		}
		if _, exists := r.index[name]; exists {
			return nil, fmt.Errorf("label %q: %w", name, ErrDuplicateLabel)
		}
		r.index[name] = i
		r.names = append(r.names, name)
	}
	return r, nil
}

// Default returns the {supported: 0, refuted: 1} registry
func Default() *Registry {
	r, err := Build(model.DefaultLabels)
	if err != nil {
		panic(err)
	}
	return r
}

// Index returns the class index of name
func (r *Registry) Index(name string) (int, bool) {
	i, ok := r.index[name]
	return i, ok
}

// Name returns the label at index i
func (r *Registry) Name(i int) (string, bool) {
	if i < 0 || i >= len(r.names) {
		return "", false
	}
	return r.names[i], true
}

// Names returns the labels in index order
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Len returns the number of labels
func (r *Registry) Len() int {
	return len(r.names)
}

// ParseOutputMode validates an output mode string
func ParseOutputMode(s string) (OutputMode, error) {
	switch mode := OutputMode(s); mode {
	case Classification, Regression:
		return mode, nil
	default:
		return "", &UnsupportedOutputModeError{Mode: s}
	}
}

// Encode reduces a label to its target. An empty label yields an absent value.
func Encode(name string, r *Registry, mode OutputMode) (model.LabelValue, error) {
	if name == "" {
		return model.LabelValue{}, nil
	}

	switch mode {
	case Classification:
		i, ok := r.Index(name)
		if !ok {
			return model.LabelValue{}, &UnknownLabelError{Label: name, Known: r.Names()}
		}
		return model.ClassLabel(i), nil

	case Regression:
		v, err := strconv.ParseFloat(name, 64)
		if err != nil {
			return model.LabelValue{}, &InvalidNumericLabelError{Label: name, Err: err}
		}
		return model.RegressionLabel(v), nil

	default:
		return model.LabelValue{}, &UnsupportedOutputModeError{Mode: string(mode)}
	}
}
