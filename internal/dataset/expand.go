package dataset

import (
	"strconv"

	"github.com/ppiankov/wikifactcheck/internal/model"
)

// ExpansionPolicy turns one raw row into labeled examples
type ExpansionPolicy interface {
	// Name identifies the policy in diagnostics
	Name() string

	// Expand builds the examples of rec; row is the row's line index
	Expand(rec model.RawRecord, row int, evidence []string) []model.LogicalExample
}

// ParityPolicy is the feature-conversion strategy. With IncludeAll every row
// yields a supported and a refuted example; without it odd rows yield only the
// supported example and even rows only the refuted one.
type ParityPolicy struct {
	IncludeAll bool
}

// Name implements ExpansionPolicy
func (p ParityPolicy) Name() string {
	return "parity"
}

// Expand implements ExpansionPolicy
func (p ParityPolicy) Expand(rec model.RawRecord, row int, evidence []string) []model.LogicalExample {
	guid := "train-" + strconv.Itoa(row)

	var examples []model.LogicalExample
	if p.IncludeAll || row%2 == 1 {
		examples = append(examples, model.LogicalExample{
			GUID:     guid + "e",
			Claim:    rec.SupportedClaim,
			Evidence: evidence,
			Label:    model.LabelSupported,
		})
	}
	if p.IncludeAll || row%2 == 0 {
		examples = append(examples, model.LogicalExample{
			GUID:     guid + "r",
			Claim:    rec.RefutedClaim,
			Evidence: evidence,
			Label:    model.LabelRefuted,
		})
	}
	return examples
}

// PairPolicy is the dataset-build strategy: always a supported and a refuted
// example, both keyed by the row's id column.
type PairPolicy struct{}

// Name implements ExpansionPolicy
func (PairPolicy) Name() string {
	return "pair"
}

// Expand implements ExpansionPolicy
func (PairPolicy) Expand(rec model.RawRecord, _ int, evidence []string) []model.LogicalExample {
	return []model.LogicalExample{
		{
			GUID:     rec.ID,
			ID:       rec.ID,
			Claim:    rec.SupportedClaim,
			Context:  rec.Context,
			Evidence: evidence,
			Label:    model.LabelSupported,
		},
		{
			GUID:     rec.ID,
			ID:       rec.ID,
			Claim:    rec.RefutedClaim,
			Context:  rec.Context,
			Evidence: evidence,
			Label:    model.LabelRefuted,
		},
	}
}
