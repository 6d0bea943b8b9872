package model

import "time"

// Config is the complete configuration for a wfc run
type Config struct {
	Data      DataConfig      `yaml:"data" mapstructure:"data"`
	Evidence  EvidenceConfig  `yaml:"evidence" mapstructure:"evidence"`
	Expansion ExpansionConfig `yaml:"expansion" mapstructure:"expansion"`
	Encoding  EncodingConfig  `yaml:"encoding" mapstructure:"encoding"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// DataConfig locates the tabular split files
type DataConfig struct {
	Dir       string `yaml:"dir" mapstructure:"dir"`             // Directory holding wfc_<split>.tsv
	Delimiter string `yaml:"delimiter" mapstructure:"delimiter"` // Column separator
}

// Missing-evidence policies
const (
	OnMissingAbort = "abort"
	OnMissingSkip  = "skip"
)

// EvidenceConfig controls evidence resolution
type EvidenceConfig struct {
	Dir         string        `yaml:"dir" mapstructure:"dir"`
	OnMissing   string        `yaml:"on_missing" mapstructure:"on_missing"`     // abort or skip
	StripMarkup bool          `yaml:"strip_markup" mapstructure:"strip_markup"` // Extract visible text from HTML evidence
	CacheTTL    time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`       // 0 disables the memo cache
}

// ExpansionConfig controls how rows become examples in the feature path
type ExpansionConfig struct {
	IncludeAll bool `yaml:"include_all" mapstructure:"include_all"`
	RowLimit   int  `yaml:"row_limit" mapstructure:"row_limit"` // 0 means no limit
}

// EncodingConfig controls tokenization and label encoding
type EncodingConfig struct {
	BPE        string   `yaml:"bpe" mapstructure:"bpe"`
	MaxLength  int      `yaml:"max_length" mapstructure:"max_length"`
	OutputMode string   `yaml:"output_mode" mapstructure:"output_mode"`
	Labels     []string `yaml:"labels" mapstructure:"labels"`
	Workers    int      `yaml:"workers" mapstructure:"workers"`
	Preview    int      `yaml:"preview" mapstructure:"preview"` // Examples logged after encoding
}

// OutputConfig controls where results go
type OutputConfig struct {
	Dir     string `yaml:"dir" mapstructure:"dir"`
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
}

// LogConfig controls the diagnostics logger
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // console or json
}

// DefaultConfig returns the reference settings
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Dir:       ".",
			Delimiter: "\t",
		},
		Evidence: EvidenceConfig{
			Dir:       "utf-refdata",
			OnMissing: OnMissingAbort,
			CacheTTL:  10 * time.Minute,
		},
		Expansion: ExpansionConfig{
			IncludeAll: true,
			RowLimit:   100,
		},
		Encoding: EncodingConfig{
			BPE:        "cl100k_base",
			MaxLength:  128,
			OutputMode: "classification",
			Labels:     append([]string(nil), DefaultLabels...),
			Workers:    1,
			Preview:    5,
		},
		Output: OutputConfig{
			Dir: "./wfc-out",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
