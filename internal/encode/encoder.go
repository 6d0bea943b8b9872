package encode

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/ppiankov/wikifactcheck/internal/diag"
	"github.com/ppiankov/wikifactcheck/internal/label"
	"github.com/ppiankov/wikifactcheck/internal/model"
	"github.com/ppiankov/wikifactcheck/internal/worker"
)

// ErrMisalignedEncoding is returned when a TextPairEncoder's output does not
// line up with its input pairs or the requested length
var ErrMisalignedEncoding = errors.New("misaligned encoding")

// TextPair is one (claim, evidence sentence) input
type TextPair struct {
	A string
	B string
}

// BatchEncoding holds one row per input pair in every field.
// TokenTypeIDs may be nil for encoders that do not produce them.
type BatchEncoding struct {
	InputIDs      [][]int
	AttentionMask [][]int
	TokenTypeIDs  [][]int
}

// TextPairEncoder tokenizes text pairs into fixed-length rows,
// truncating and right-padding to maxLength
type TextPairEncoder interface {
	EncodePairs(pairs []TextPair, maxLength int) (*BatchEncoding, error)
	MaxLength() int
}

// Options configures a FeatureEncoder
type Options struct {
	MaxLength int              // 0 uses the encoder's MaxLength
	Labels    *label.Registry  // nil uses label.Default()
	Mode      label.OutputMode // empty means classification
	Workers   int              // >1 encodes examples in parallel
	Preview   int              // Number of leading examples logged
}

// FeatureEncoder turns logical examples into per-sentence feature groups
type FeatureEncoder struct {
	encoder   TextPairEncoder
	maxLength int
	labels    *label.Registry
	mode      label.OutputMode
	workers   int
	preview   int
	sink      diag.Sink
}

// NewFeatureEncoder creates a feature encoder
func NewFeatureEncoder(encoder TextPairEncoder, opts Options, sink diag.Sink) (*FeatureEncoder, error) {
	if encoder == nil {
		return nil, errors.New("text pair encoder is required")
	}

	mode := opts.Mode
	if mode == "" {
		mode = label.Classification
	}
	if _, err := label.ParseOutputMode(string(mode)); err != nil {
		return nil, err
	}

	labels := opts.Labels
	if labels == nil {
		labels = label.Default()
	}

	maxLength := opts.MaxLength
	if maxLength == 0 {
		maxLength = encoder.MaxLength()
	}
	if maxLength <= 0 {
		return nil, fmt.Errorf("invalid max length: %d", maxLength)
	}

	return &FeatureEncoder{
		encoder:   encoder,
		maxLength: maxLength,
		labels:    labels,
		mode:      mode,
		workers:   opts.Workers,
		preview:   opts.Preview,
		sink:      diag.OrNop(sink),
	}, nil
}

// MaxLength returns the fixed row length of every feature
func (e *FeatureEncoder) MaxLength() int {
	return e.maxLength
}

// Encode produces one FeatureGroup per example, in input order
func (e *FeatureEncoder) Encode(ctx context.Context, examples []model.LogicalExample) ([]model.FeatureGroup, error) {
	var (
		groups []model.FeatureGroup
		err    error
	)
	if e.workers > 1 && len(examples) > 1 {
		groups, err = e.encodeParallel(ctx, examples)
	} else {
		groups, err = e.encodeSequential(ctx, examples)
	}
	if err != nil {
		return nil, err
	}

	e.logPreview(examples, groups)
	return groups, nil
}

func (e *FeatureEncoder) encodeSequential(ctx context.Context, examples []model.LogicalExample) ([]model.FeatureGroup, error) {
	groups := make([]model.FeatureGroup, 0, len(examples))
	for _, ex := range examples {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		group, err := e.EncodeExample(ex)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// encodeJob encodes one example on the worker pool
type encodeJob struct {
	index   int
	example model.LogicalExample
	encoder *FeatureEncoder
}

type encodeResult struct {
	index int
	group model.FeatureGroup
	err   error
}

func (r *encodeResult) GetError() error {
	return r.err
}

func (j *encodeJob) Execute(ctx context.Context) worker.Result {
	if err := ctx.Err(); err != nil {
		return &encodeResult{index: j.index, err: err}
	}
	group, err := j.encoder.EncodeExample(j.example)
	return &encodeResult{index: j.index, group: group, err: err}
}

func (e *FeatureEncoder) encodeParallel(ctx context.Context, examples []model.LogicalExample) ([]model.FeatureGroup, error) {
	pool := worker.NewPool(ctx, e.workers)
	pool.Start()

	for i, ex := range examples {
		if !pool.Submit(&encodeJob{index: i, example: ex, encoder: e}) {
			pool.Shutdown()
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return nil, errors.New("worker pool stopped")
		}
	}
	raw := pool.Wait()

	results := make([]*encodeResult, 0, len(raw))
	for _, r := range raw {
		results = append(results, r.(*encodeResult))
	}
	sort.Slice(results, func(i, j int) bool { return results[i].index < results[j].index })

	for _, r := range results {
		if r.err != nil {
			return nil, r.err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(results) != len(examples) {
		return nil, fmt.Errorf("encoded %d of %d examples", len(results), len(examples))
	}

	groups := make([]model.FeatureGroup, len(results))
	for i, r := range results {
		groups[i] = r.group
	}
	return groups, nil
}

// EncodeExample encodes every (claim, sentence) pair of one example.
// The label is encoded once and shared by all of the example's features.
func (e *FeatureEncoder) EncodeExample(ex model.LogicalExample) (model.FeatureGroup, error) {
	target, err := label.Encode(ex.Label, e.labels, e.mode)
	if err != nil {
		return model.FeatureGroup{}, fmt.Errorf("example %s: %w", ex.GUID, err)
	}

	group := model.FeatureGroup{
		GUID:     ex.GUID,
		Features: make([]model.EncodedFeature, 0, len(ex.Evidence)),
	}
	if len(ex.Evidence) == 0 {
		return group, nil
	}

	pairs := make([]TextPair, len(ex.Evidence))
	for j, sentence := range ex.Evidence {
		pairs[j] = TextPair{A: ex.Claim, B: sentence}
	}

	batch, err := e.encoder.EncodePairs(pairs, e.maxLength)
	if err != nil {
		return model.FeatureGroup{}, fmt.Errorf("example %s: encode pairs: %w", ex.GUID, err)
	}
	if err := checkAligned(batch, len(pairs), e.maxLength); err != nil {
		return model.FeatureGroup{}, fmt.Errorf("example %s: %w", ex.GUID, err)
	}

	for j := range pairs {
		feature := model.EncodedFeature{
			InputIDs:      batch.InputIDs[j],
			AttentionMask: batch.AttentionMask[j],
			Label:         target,
		}
		if batch.TokenTypeIDs != nil {
			feature.TokenTypeIDs = batch.TokenTypeIDs[j]
		}
		group.Features = append(group.Features, feature)
	}
	return group, nil
}

func checkAligned(batch *BatchEncoding, pairs, maxLength int) error {
	if batch == nil {
		return fmt.Errorf("%w: nil batch", ErrMisalignedEncoding)
	}

	fields := map[string][][]int{
		"input_ids":      batch.InputIDs,
		"attention_mask": batch.AttentionMask,
	}
	if batch.TokenTypeIDs != nil {
		fields["token_type_ids"] = batch.TokenTypeIDs
	}

	for name, rows := range fields {
		if len(rows) != pairs {
			return fmt.Errorf("%w: %s has %d rows for %d pairs", ErrMisalignedEncoding, name, len(rows), pairs)
		}
		for j, row := range rows {
			if len(row) != maxLength {
				return fmt.Errorf("%w: %s row %d has length %d, want %d", ErrMisalignedEncoding, name, j, len(row), maxLength)
			}
		}
	}
	return nil
}

const previewTokens = 16

func (e *FeatureEncoder) logPreview(examples []model.LogicalExample, groups []model.FeatureGroup) {
	for i := 0; i < e.preview && i < len(examples); i++ {
		group := groups[i]

		shown := group.Features
		if len(shown) > 5 {
			shown = shown[:5]
		}
		ids := make([][]int, len(shown))
		for j, f := range shown {
			ids[j] = f.InputIDs
			if len(ids[j]) > previewTokens {
				ids[j] = ids[j][:previewTokens]
			}
		}

		fields := map[string]any{
			"example":  i,
			"guid":     examples[i].GUID,
			"features": len(group.Features),
			"preview":  fmt.Sprint(ids),
		}
		if len(group.Features) > 0 {
			target := group.Features[0].Label
			fields["label"] = e.labelName(target)
			fields["label_id"] = target.String()
		}
		e.sink.Record("encode.example", fields)
	}
}

// labelName maps an encoded target back to its registry name
func (e *FeatureEncoder) labelName(target model.LabelValue) string {
	if target.IsAbsent() {
		return "none"
	}
	if target.Kind == model.LabelClass {
		if name, ok := e.labels.Name(target.Class); ok {
			return name
		}
	}
	return target.String()
}
