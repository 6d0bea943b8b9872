package model

// RecordFields is the number of tab-separated columns in a dataset row
const RecordFields = 7

// RawRecord is one data row of a wfc_<split>.tsv file
type RawRecord struct {
	Index          string `json:"index"`
	URL            string `json:"url"`
	Context        string `json:"context"`
	ID             string `json:"id"`
	RefutedClaim   string `json:"refuted_claim"`
	SupportedClaim string `json:"supported_claim"`
	EvidenceRef    string `json:"evidence_ref"` // File name under the evidence directory

	Line int `json:"line"` // 0-based physical line in the source file (header is 0)
}

// RecordFromFields builds a RawRecord from exactly RecordFields columns
func RecordFromFields(fields []string, line int) (RawRecord, bool) {
	if len(fields) != RecordFields {
		return RawRecord{}, false
	}
	return RawRecord{
		Index:          fields[0],
		URL:            fields[1],
		Context:        fields[2],
		ID:             fields[3],
		RefutedClaim:   fields[4],
		SupportedClaim: fields[5],
		EvidenceRef:    fields[6],
		Line:           line,
	}, true
}

// Label names used by the dataset
const (
	LabelSupported = "supported"
	LabelRefuted   = "refuted"
)

// DefaultLabels is the fixed label order; index is the class id
var DefaultLabels = []string{LabelSupported, LabelRefuted}

// LogicalExample is one (claim, evidence sentences, label) instance before tokenization
type LogicalExample struct {
	GUID     string   `json:"guid"`
	ID       string   `json:"id,omitempty"`
	Claim    string   `json:"claim"`
	Context  string   `json:"context,omitempty"`
	Evidence []string `json:"evidence"`
	Label    string   `json:"label,omitempty"`
}

// DatasetRecord is the flat schema emitted by the dataset build path
type DatasetRecord struct {
	ID       string `json:"id"`
	Claim    string `json:"claim"`
	Context  string `json:"context"`
	Evidence string `json:"evidence"`
	Label    string `json:"label"`
}
