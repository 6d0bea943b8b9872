package encode

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/ppiankov/wikifactcheck/internal/diag"
	"github.com/ppiankov/wikifactcheck/internal/label"
	"github.com/ppiankov/wikifactcheck/internal/model"
)

// fakeEncoder writes [pair index+1, len(A), len(B), 0...] and records every call
type fakeEncoder struct {
	maxLength int
	noTypes   bool
	dropRow   bool
	fail      bool

	mu    sync.Mutex
	calls [][]TextPair
	sizes []int
}

func (f *fakeEncoder) MaxLength() int {
	return f.maxLength
}

func (f *fakeEncoder) EncodePairs(pairs []TextPair, maxLength int) (*BatchEncoding, error) {
	f.mu.Lock()
	f.calls = append(f.calls, pairs)
	f.sizes = append(f.sizes, maxLength)
	f.mu.Unlock()

	if f.fail {
		return nil, errors.New("tokenizer exploded")
	}

	batch := &BatchEncoding{}
	for j, p := range pairs {
		ids := make([]int, maxLength)
		mask := make([]int, maxLength)
		types := make([]int, maxLength)
		ids[0], ids[1], ids[2] = j+1, len(p.A), len(p.B)
		mask[0], mask[1], mask[2] = 1, 1, 1
		batch.InputIDs = append(batch.InputIDs, ids)
		batch.AttentionMask = append(batch.AttentionMask, mask)
		batch.TokenTypeIDs = append(batch.TokenTypeIDs, types)
	}
	if f.noTypes {
		batch.TokenTypeIDs = nil
	}
	if f.dropRow && len(batch.AttentionMask) > 0 {
		batch.AttentionMask = batch.AttentionMask[1:]
	}
	return batch, nil
}

func scenarioExamples() []model.LogicalExample {
	evidence := []string{"Sentence one", " Sentence two", ""}
	return []model.LogicalExample{
		{GUID: "train-1e", Claim: "True claim", Evidence: evidence, Label: model.LabelSupported},
		{GUID: "train-1r", Claim: "False claim", Evidence: evidence, Label: model.LabelRefuted},
	}
}

func TestFeatureEncoder_Encode(t *testing.T) {
	fake := &fakeEncoder{maxLength: 8}
	enc, err := NewFeatureEncoder(fake, Options{}, nil)
	if err != nil {
		t.Fatalf("NewFeatureEncoder failed: %v", err)
	}

	examples := scenarioExamples()
	groups, err := enc.Encode(context.Background(), examples)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	if len(groups) != len(examples) {
		t.Fatalf("expected %d groups, got %d", len(examples), len(groups))
	}

	for i, group := range groups {
		ex := examples[i]
		if group.GUID != ex.GUID {
			t.Errorf("group %d: expected guid %s, got %s", i, ex.GUID, group.GUID)
		}
		if len(group.Features) != len(ex.Evidence) {
			t.Fatalf("group %d: expected %d features, got %d", i, len(ex.Evidence), len(group.Features))
		}

		wantLabel := model.ClassLabel(i)
		for j, f := range group.Features {
			if f.Label != wantLabel {
				t.Errorf("group %d feature %d: expected label %v, got %v", i, j, wantLabel, f.Label)
			}
			// Feature j carries the j-th row of each field
			if f.InputIDs[0] != j+1 || f.InputIDs[1] != len(ex.Claim) || f.InputIDs[2] != len(ex.Evidence[j]) {
				t.Errorf("group %d feature %d: wrong slice %v", i, j, f.InputIDs[:3])
			}
			if len(f.InputIDs) != 8 || len(f.AttentionMask) != 8 || len(f.TokenTypeIDs) != 8 {
				t.Errorf("group %d feature %d: expected fixed length 8", i, j)
			}
		}
	}

	// One call per example, with every sentence of that example
	if len(fake.calls) != 2 {
		t.Fatalf("expected 2 encoder calls, got %d", len(fake.calls))
	}
	if len(fake.calls[0]) != 3 || fake.calls[0][1] != (TextPair{A: "True claim", B: " Sentence two"}) {
		t.Errorf("unexpected pairs for first example: %+v", fake.calls[0])
	}
	for _, size := range fake.sizes {
		if size != 8 {
			t.Errorf("expected max length to default to encoder's 8, got %d", size)
		}
	}
}

func TestFeatureEncoder_ExplicitMaxLength(t *testing.T) {
	fake := &fakeEncoder{maxLength: 512}
	enc, err := NewFeatureEncoder(fake, Options{MaxLength: 16}, nil)
	if err != nil {
		t.Fatalf("NewFeatureEncoder failed: %v", err)
	}
	if enc.MaxLength() != 16 {
		t.Errorf("expected max length 16, got %d", enc.MaxLength())
	}

	if _, err := enc.Encode(context.Background(), scenarioExamples()[:1]); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if fake.sizes[0] != 16 {
		t.Errorf("expected encoder to be asked for 16, got %d", fake.sizes[0])
	}
}

func TestFeatureEncoder_NoTokenTypes(t *testing.T) {
	enc, _ := NewFeatureEncoder(&fakeEncoder{maxLength: 4, noTypes: true}, Options{}, nil)

	groups, err := enc.Encode(context.Background(), scenarioExamples())
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if groups[0].Features[0].TokenTypeIDs != nil {
		t.Error("expected nil token type ids")
	}
}

func TestFeatureEncoder_EmptyEvidence(t *testing.T) {
	fake := &fakeEncoder{maxLength: 4}
	enc, _ := NewFeatureEncoder(fake, Options{}, nil)

	groups, err := enc.Encode(context.Background(), []model.LogicalExample{{GUID: "g", Claim: "c", Label: "supported"}})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if len(groups) != 1 || len(groups[0].Features) != 0 {
		t.Errorf("expected one empty group, got %+v", groups)
	}
	if len(fake.calls) != 0 {
		t.Errorf("expected no encoder calls, got %d", len(fake.calls))
	}
}

func TestFeatureEncoder_UnknownLabel(t *testing.T) {
	enc, _ := NewFeatureEncoder(&fakeEncoder{maxLength: 4}, Options{}, nil)

	examples := []model.LogicalExample{{GUID: "train-3x", Claim: "c", Evidence: []string{"s"}, Label: "bogus"}}
	_, err := enc.Encode(context.Background(), examples)

	var unknown *label.UnknownLabelError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownLabelError, got %v", err)
	}
}

func TestFeatureEncoder_Regression(t *testing.T) {
	enc, err := NewFeatureEncoder(&fakeEncoder{maxLength: 4}, Options{Mode: label.Regression}, nil)
	if err != nil {
		t.Fatalf("NewFeatureEncoder failed: %v", err)
	}

	groups, err := enc.Encode(context.Background(), []model.LogicalExample{
		{GUID: "a", Claim: "c", Evidence: []string{"s", "t"}, Label: "0.25"},
	})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	for _, f := range groups[0].Features {
		if f.Label != model.RegressionLabel(0.25) {
			t.Errorf("expected regression label 0.25, got %v", f.Label)
		}
	}

	_, err = enc.Encode(context.Background(), scenarioExamples())
	var invalid *label.InvalidNumericLabelError
	if !errors.As(err, &invalid) {
		t.Errorf("expected InvalidNumericLabelError, got %v", err)
	}
}

func TestNewFeatureEncoder_Invalid(t *testing.T) {
	var unsupported *label.UnsupportedOutputModeError
	if _, err := NewFeatureEncoder(&fakeEncoder{maxLength: 4}, Options{Mode: "ranking"}, nil); !errors.As(err, &unsupported) {
		t.Errorf("expected UnsupportedOutputModeError, got %v", err)
	}
	if _, err := NewFeatureEncoder(nil, Options{}, nil); err == nil {
		t.Error("expected error for nil encoder")
	}
	if _, err := NewFeatureEncoder(&fakeEncoder{}, Options{}, nil); err == nil {
		t.Error("expected error for zero max length")
	}
}

func TestFeatureEncoder_Misaligned(t *testing.T) {
	enc, _ := NewFeatureEncoder(&fakeEncoder{maxLength: 4, dropRow: true}, Options{}, nil)

	_, err := enc.Encode(context.Background(), scenarioExamples())
	if !errors.Is(err, ErrMisalignedEncoding) {
		t.Errorf("expected ErrMisalignedEncoding, got %v", err)
	}
}

func TestFeatureEncoder_EncoderFailure(t *testing.T) {
	enc, _ := NewFeatureEncoder(&fakeEncoder{maxLength: 4, fail: true}, Options{}, nil)

	_, err := enc.Encode(context.Background(), scenarioExamples())
	if err == nil {
		t.Fatal("expected encoder failure to propagate")
	}
}

func manyExamples(n int) []model.LogicalExample {
	examples := make([]model.LogicalExample, n)
	for i := range examples {
		evidence := make([]string, i%4+1)
		for j := range evidence {
			evidence[j] = fmt.Sprintf("sentence %d", j)
		}
		lbl := model.LabelSupported
		if i%2 == 1 {
			lbl = model.LabelRefuted
		}
		examples[i] = model.LogicalExample{
			GUID:     fmt.Sprintf("train-%d", i),
			Claim:    fmt.Sprintf("claim %d", i),
			Evidence: evidence,
			Label:    lbl,
		}
	}
	return examples
}

func TestFeatureEncoder_ParallelMatchesSequential(t *testing.T) {
	examples := manyExamples(40)

	seq, _ := NewFeatureEncoder(&fakeEncoder{maxLength: 6}, Options{}, nil)
	par, _ := NewFeatureEncoder(&fakeEncoder{maxLength: 6}, Options{Workers: 4}, nil)

	want, err := seq.Encode(context.Background(), examples)
	if err != nil {
		t.Fatalf("sequential Encode failed: %v", err)
	}
	got, err := par.Encode(context.Background(), examples)
	if err != nil {
		t.Fatalf("parallel Encode failed: %v", err)
	}

	if len(got) != len(want) {
		t.Fatalf("expected %d groups, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].GUID != want[i].GUID || len(got[i].Features) != len(want[i].Features) {
			t.Errorf("group %d differs: %s/%d vs %s/%d", i, got[i].GUID, len(got[i].Features), want[i].GUID, len(want[i].Features))
		}
	}
}

func TestFeatureEncoder_ParallelError(t *testing.T) {
	examples := manyExamples(10)
	examples[7].Label = "bogus"

	enc, _ := NewFeatureEncoder(&fakeEncoder{maxLength: 6}, Options{Workers: 3}, nil)
	_, err := enc.Encode(context.Background(), examples)

	var unknown *label.UnknownLabelError
	if !errors.As(err, &unknown) {
		t.Errorf("expected UnknownLabelError, got %v", err)
	}
}

func TestFeatureEncoder_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, workers := range []int{1, 4} {
		enc, _ := NewFeatureEncoder(&fakeEncoder{maxLength: 6}, Options{Workers: workers}, nil)
		if _, err := enc.Encode(ctx, manyExamples(5)); !errors.Is(err, context.Canceled) {
			t.Errorf("workers=%d: expected context.Canceled, got %v", workers, err)
		}
	}
}

func TestFeatureEncoder_Preview(t *testing.T) {
	rec := &diag.Recorder{}
	enc, _ := NewFeatureEncoder(&fakeEncoder{maxLength: 32}, Options{Preview: 5}, rec)

	if _, err := enc.Encode(context.Background(), manyExamples(8)); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	events := rec.Named("encode.example")
	if len(events) != 5 {
		t.Fatalf("expected 5 preview events, got %d", len(events))
	}
	if events[0].Fields["guid"] != "train-0" || events[4].Fields["guid"] != "train-4" {
		t.Errorf("unexpected preview guids: %v, %v", events[0].Fields["guid"], events[4].Fields["guid"])
	}
	if events[1].Fields["label"] != "refuted" || events[1].Fields["label_id"] != "1" {
		t.Errorf("expected refuted (1) on second example, got %v (%v)", events[1].Fields["label"], events[1].Fields["label_id"])
	}

	// Fewer examples than the preview size
	rec2 := &diag.Recorder{}
	enc2, _ := NewFeatureEncoder(&fakeEncoder{maxLength: 4}, Options{Preview: 5}, rec2)
	if _, err := enc2.Encode(context.Background(), manyExamples(2)); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if got := len(rec2.Named("encode.example")); got != 2 {
		t.Errorf("expected 2 preview events, got %d", got)
	}
}

func TestFeatureEncoder_PreviewLabelNames(t *testing.T) {
	examples := []model.LogicalExample{
		{GUID: "a", Claim: "c", Evidence: []string{"s"}},
		{GUID: "b", Claim: "c", Evidence: []string{"s"}, Label: "0.25"},
	}

	rec := &diag.Recorder{}
	enc, err := NewFeatureEncoder(&fakeEncoder{maxLength: 4}, Options{Mode: label.Regression, Preview: 2}, rec)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := enc.Encode(context.Background(), examples); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	events := rec.Named("encode.example")
	if len(events) != 2 {
		t.Fatalf("expected 2 preview events, got %d", len(events))
	}
	if events[0].Fields["label"] != "none" {
		t.Errorf("expected none for unlabeled example, got %v", events[0].Fields["label"])
	}
	if events[1].Fields["label"] != "0.25" {
		t.Errorf("expected regression target 0.25, got %v", events[1].Fields["label"])
	}
}
