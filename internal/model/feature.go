package model

import (
	"encoding/json"
	"strconv"
)

// LabelKind tells how a LabelValue should be read
type LabelKind int

const (
	LabelAbsent     LabelKind = iota // No label on the example
	LabelClass                       // Class index (classification)
	LabelRegression                  // Float target (regression)
)

// LabelValue is the trainable target of an example
type LabelValue struct {
	Kind  LabelKind
	Class int
	Value float64
}

// ClassLabel returns a classification target
func ClassLabel(i int) LabelValue {
	return LabelValue{Kind: LabelClass, Class: i}
}

// RegressionLabel returns a regression target
func RegressionLabel(v float64) LabelValue {
	return LabelValue{Kind: LabelRegression, Value: v}
}

// IsAbsent reports whether the example carried no label
func (l LabelValue) IsAbsent() bool {
	return l.Kind == LabelAbsent
}

func (l LabelValue) String() string {
	switch l.Kind {
	case LabelClass:
		return strconv.Itoa(l.Class)
	case LabelRegression:
		return strconv.FormatFloat(l.Value, 'g', -1, 64)
	default:
		return "none"
	}
}

// MarshalJSON renders null, an integer, or a float
func (l LabelValue) MarshalJSON() ([]byte, error) {
	switch l.Kind {
	case LabelClass:
		return json.Marshal(l.Class)
	case LabelRegression:
		return json.Marshal(l.Value)
	default:
		return []byte("null"), nil
	}
}

// EncodedFeature is the fixed-length encoding of one (claim, sentence) pair
type EncodedFeature struct {
	InputIDs      []int      `json:"input_ids"`
	AttentionMask []int      `json:"attention_mask"`
	TokenTypeIDs  []int      `json:"token_type_ids,omitempty"`
	Label         LabelValue `json:"label"`
}

// FeatureGroup holds the features of one LogicalExample in evidence order
type FeatureGroup struct {
	GUID     string           `json:"guid"`
	Features []EncodedFeature `json:"features"`
}
