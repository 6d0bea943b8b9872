package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/wikifactcheck/internal/cache"
	"github.com/ppiankov/wikifactcheck/internal/dataset"
	"github.com/ppiankov/wikifactcheck/internal/diag"
	"github.com/ppiankov/wikifactcheck/internal/encode"
	"github.com/ppiankov/wikifactcheck/internal/evidence"
	"github.com/ppiankov/wikifactcheck/internal/label"
	"github.com/ppiankov/wikifactcheck/internal/model"
)

// Pipeline orchestrates reading, expansion and encoding of one split
type Pipeline struct {
	reader   *dataset.Reader
	resolver *evidence.Resolver
	sink     diag.Sink
	config   *model.Config
}

// Stats counts what happened during a run
type Stats struct {
	Rows            int `json:"rows"`             // Valid rows considered
	Malformed       int `json:"malformed"`        // Rows skipped for wrong field count
	MissingEvidence int `json:"missing_evidence"` // Rows skipped for missing evidence
	Examples        int `json:"examples"`
	Features        int `json:"features"`
}

// BuildResult is the output of the dataset build path
type BuildResult struct {
	Records []model.DatasetRecord
	Stats   Stats
}

// FeatureResult is the output of the feature conversion path
type FeatureResult struct {
	Examples []model.LogicalExample
	Groups   []model.FeatureGroup
	Stats    Stats
}

// NewPipeline creates a pipeline with the given configuration
func NewPipeline(cfg *model.Config, sink diag.Sink) (*Pipeline, error) {
	switch cfg.Evidence.OnMissing {
	case model.OnMissingAbort, model.OnMissingSkip:
	default:
		return nil, fmt.Errorf("unknown evidence policy: %s (supported: abort, skip)", cfg.Evidence.OnMissing)
	}

	sink = diag.OrNop(sink)

	opts := []evidence.Option{
		evidence.WithMarkupStripping(cfg.Evidence.StripMarkup),
		evidence.WithSink(sink),
	}
	if cfg.Evidence.CacheTTL > 0 {
		opts = append(opts, evidence.WithCache(cache.NewMemoryCache(cfg.Evidence.CacheTTL, time.Minute), 0))
	}

	return &Pipeline{
		reader:   dataset.NewReader(cfg.Data.Delimiter, sink),
		resolver: evidence.NewResolver(cfg.Evidence.Dir, opts...),
		sink:     sink,
		config:   cfg,
	}, nil
}

// Examples reads path and expands each row with policy.
// Lines at or beyond rowLimit are never read; rowLimit 0 reads everything.
func (p *Pipeline) Examples(ctx context.Context, path string, policy dataset.ExpansionPolicy, rowLimit int) ([]model.LogicalExample, Stats, error) {
	var stats Stats

	read, err := p.reader.ReadLimit(path, rowLimit)
	if err != nil {
		return nil, stats, err
	}
	stats.Malformed = read.Skipped()
	if read.Truncated {
		p.sink.Record("expand.limit", map[string]any{
			"path":  path,
			"limit": rowLimit,
		})
	}

	var examples []model.LogicalExample
	for _, rec := range read.Records {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		stats.Rows++

		text, err := p.resolver.Resolve(rec.EvidenceRef)
		if err != nil {
			var missing *evidence.MissingEvidenceError
			if errors.As(err, &missing) && p.config.Evidence.OnMissing == model.OnMissingSkip {
				stats.MissingEvidence++
				p.sink.Record("evidence.skipped", map[string]any{
					"path":      path,
					"line":      rec.Line,
					"reference": missing.Reference,
				})
				continue
			}
			return nil, stats, fmt.Errorf("%s:%d: %w", path, rec.Line, err)
		}

		examples = append(examples, policy.Expand(rec, rec.Line, evidence.Segment(text))...)
	}
	stats.Examples = len(examples)

	p.sink.Record("expand.done", map[string]any{
		"path":             path,
		"policy":           policy.Name(),
		"rows":             stats.Rows,
		"examples":         stats.Examples,
		"malformed":        stats.Malformed,
		"missing_evidence": stats.MissingEvidence,
	})

	return examples, stats, nil
}

// BuildDataset emits a supported and a refuted record for every valid row of split
func (p *Pipeline) BuildDataset(ctx context.Context, split string) (*BuildResult, error) {
	path := dataset.SplitPath(p.config.Data.Dir, split)

	examples, stats, err := p.Examples(ctx, path, dataset.PairPolicy{}, 0)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", split, err)
	}

	records := make([]model.DatasetRecord, len(examples))
	for i, ex := range examples {
		records[i] = model.DatasetRecord{
			ID:       ex.ID,
			Claim:    ex.Claim,
			Context:  ex.Context,
			Evidence: strings.Join(ex.Evidence, "."),
			Label:    ex.Label,
		}
	}

	return &BuildResult{Records: records, Stats: stats}, nil
}

// ConvertFeatures expands split with the parity policy and encodes every example
func (p *Pipeline) ConvertFeatures(ctx context.Context, split string, pairEncoder encode.TextPairEncoder) (*FeatureResult, error) {
	enc := p.config.Encoding

	mode, err := label.ParseOutputMode(enc.OutputMode)
	if err != nil {
		return nil, err
	}
	labels, err := label.Build(enc.Labels)
	if err != nil {
		return nil, fmt.Errorf("build label registry: %w", err)
	}
	p.sink.Record("encode.config", map[string]any{
		"labels":      labels.Names(),
		"output_mode": string(mode),
		"max_length":  enc.MaxLength,
	})

	features, err := encode.NewFeatureEncoder(pairEncoder, encode.Options{
		MaxLength: enc.MaxLength,
		Labels:    labels,
		Mode:      mode,
		Workers:   enc.Workers,
		Preview:   enc.Preview,
	}, p.sink)
	if err != nil {
		return nil, fmt.Errorf("create feature encoder: %w", err)
	}

	path := dataset.SplitPath(p.config.Data.Dir, split)
	policy := dataset.ParityPolicy{IncludeAll: p.config.Expansion.IncludeAll}

	examples, stats, err := p.Examples(ctx, path, policy, p.config.Expansion.RowLimit)
	if err != nil {
		return nil, fmt.Errorf("convert %s: %w", split, err)
	}

	groups, err := features.Encode(ctx, examples)
	if err != nil {
		return nil, fmt.Errorf("convert %s: %w", split, err)
	}
	for _, g := range groups {
		stats.Features += len(g.Features)
	}

	return &FeatureResult{Examples: examples, Groups: groups, Stats: stats}, nil
}
