package model

// DatasetInfo is registry metadata for WikiFactCheck-English.
// It is configuration only; nothing here is fetched.
type DatasetInfo struct {
	Name        string            `yaml:"name"`
	Version     string            `yaml:"version"`
	Description string            `yaml:"description"`
	Homepage    string            `yaml:"homepage"`
	Features    []string          `yaml:"features"`
	Labels      []string          `yaml:"labels"`
	Splits      map[string]string `yaml:"splits"`
	URLs        map[string]string `yaml:"urls"`
	Citation    string            `yaml:"citation"`
}

const repoURL = "https://rawcdn.githack.com/wikifactcheck-english/wikifactcheck-english/master/"

// Info returns the dataset metadata
func Info() DatasetInfo {
	return DatasetInfo{
		Name:    "wikifactcheck-english",
		Version: "1.0.0",
		Description: "WikiFactCheck-English, a dataset of 124k+ triples consisting of a claim, " +
			"context and an evidence document extracted from English Wikipedia articles " +
			"and citations, as well as 34k+ manually written claims that are refuted by " +
			"the evidence documents.",
		Homepage: "https://github.com/wikifactcheck-english/wikifactcheck-english",
		Features: []string{"id", "claim", "context", "evidence", "label"},
		Labels:   append([]string(nil), DefaultLabels...),
		Splits: map[string]string{
			SplitTrain: SplitFile(SplitTrain),
			SplitDev:   SplitFile(SplitDev),
		},
		URLs: map[string]string{
			SplitTrain: repoURL + SplitFile(SplitTrain),
			SplitDev:   repoURL + SplitFile(SplitDev),
		},
		Citation: `@inproceedings{sathe-etal-2020-automated,
    title = "Automated Fact-Checking of Claims from {W}ikipedia",
    author = "Sathe, Aalok and Ather, Salar and Le, Tuan Manh and Perry, Nathan and Park, Joonsuk",
    booktitle = "Proceedings of the 12th Language Resources and Evaluation Conference",
    year = "2020",
    publisher = "European Language Resources Association",
    url = "https://www.aclweb.org/anthology/2020.lrec-1.849",
    pages = "6874--6882",
}`,
	}
}

// Split names
const (
	SplitTrain = "train"
	SplitDev   = "dev"
	SplitTest  = "test" // Read from the dev file
)

// SplitFile returns the conventional file name of a split
func SplitFile(split string) string {
	if split == SplitTest {
		split = SplitDev
	}
	return "wfc_" + split + ".tsv"
}

// ValidSplit reports whether split names a readable split
func ValidSplit(split string) bool {
	switch split {
	case SplitTrain, SplitDev, SplitTest:
		return true
	}
	return false
}
