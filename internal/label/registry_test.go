package label

import (
	"encoding/json"
	"errors"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ppiankov/wikifactcheck/internal/model"
)

func TestDefault(t *testing.T) {
	r := Default()

	if r.Len() != 2 {
		t.Fatalf("expected 2 labels, got %d", r.Len())
	}
	if i, ok := r.Index("supported"); !ok || i != 0 {
		t.Errorf("expected supported=0, got %d (%v)", i, ok)
	}
	if i, ok := r.Index("refuted"); !ok || i != 1 {
		t.Errorf("expected refuted=1, got %d (%v)", i, ok)
	}
	if name, ok := r.Name(1); !ok || name != "refuted" {
		t.Errorf("expected refuted at 1, got %q", name)
	}
	if _, ok := r.Name(2); ok {
		t.Error("expected no label at index 2")
	}
	if diff := cmp.Diff([]string{"supported", "refuted"}, r.Names()); diff != "" {
		t.Errorf("Names mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_Injected(t *testing.T) {
	r, err := Build([]string{"SUPPORTS", "REFUTES", "NOT ENOUGH INFO"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if i, _ := r.Index("NOT ENOUGH INFO"); i != 2 {
		t.Errorf("expected index 2, got %d", i)
	}

	// Names returns a copy
	names := r.Names()
	names[0] = "mutated"
	if name, _ := r.Name(0); name != "SUPPORTS" {
		t.Errorf("registry changed through Names(): %s", name)
	}
}

func TestBuild_Rejects(t *testing.T) {
	if _, err := Build([]string{"a", "b", "a"}); !errors.Is(err, ErrDuplicateLabel) {
		t.Errorf("expected ErrDuplicateLabel, got %v", err)
	}
	if _, err := Build([]string{"a", ""}); !errors.Is(err, ErrEmptyLabel) {
		t.Errorf("expected ErrEmptyLabel, got %v", err)
	}
}

func TestEncode_Classification(t *testing.T) {
	r := Default()

	got, err := Encode("supported", r, Classification)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if got != model.ClassLabel(0) {
		t.Errorf("expected class 0, got %v", got)
	}

	got, err = Encode("refuted", r, Classification)
	if err != nil || got.Class != 1 {
		t.Errorf("expected class 1, got %v (%v)", got, err)
	}

	_, err = Encode("bogus", r, Classification)
	var unknown *UnknownLabelError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownLabelError, got %v", err)
	}
	if unknown.Label != "bogus" {
		t.Errorf("expected label bogus, got %s", unknown.Label)
	}
}

func TestEncode_Absent(t *testing.T) {
	for _, mode := range []OutputMode{Classification, Regression, "anything"} {
		got, err := Encode("", Default(), mode)
		if err != nil {
			t.Errorf("mode %s: unexpected error %v", mode, err)
		}
		if !got.IsAbsent() {
			t.Errorf("mode %s: expected absent label, got %v", mode, got)
		}
	}
}

func TestEncode_Regression(t *testing.T) {
	got, err := Encode("0.75", Default(), Regression)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if got != model.RegressionLabel(0.75) {
		t.Errorf("expected 0.75, got %v", got)
	}

	_, err = Encode("supported", Default(), Regression)
	var invalid *InvalidNumericLabelError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidNumericLabelError, got %v", err)
	}
	if !errors.Is(err, strconv.ErrSyntax) {
		t.Errorf("expected wrapped strconv.ErrSyntax, got %v", err)
	}
}

func TestEncode_UnsupportedMode(t *testing.T) {
	_, err := Encode("supported", Default(), "ranking")
	var unsupported *UnsupportedOutputModeError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedOutputModeError, got %v", err)
	}
	if unsupported.Mode != "ranking" {
		t.Errorf("expected mode ranking, got %s", unsupported.Mode)
	}
}

func TestParseOutputMode(t *testing.T) {
	if m, err := ParseOutputMode("classification"); err != nil || m != Classification {
		t.Errorf("expected classification, got %s (%v)", m, err)
	}
	if m, err := ParseOutputMode("regression"); err != nil || m != Regression {
		t.Errorf("expected regression, got %s (%v)", m, err)
	}
	var unsupported *UnsupportedOutputModeError
	if _, err := ParseOutputMode("multilabel"); !errors.As(err, &unsupported) {
		t.Errorf("expected UnsupportedOutputModeError, got %v", err)
	}
}

func TestLabelValue_JSON(t *testing.T) {
	tests := []struct {
		value model.LabelValue
		want  string
	}{
		{model.LabelValue{}, "null"},
		{model.ClassLabel(1), "1"},
		{model.RegressionLabel(0.5), "0.5"},
	}
	for _, tt := range tests {
		data, err := json.Marshal(tt.value)
		if err != nil {
			t.Fatalf("marshal %v: %v", tt.value, err)
		}
		if string(data) != tt.want {
			t.Errorf("expected %s, got %s", tt.want, data)
		}
	}
}
