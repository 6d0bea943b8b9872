package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/wikifactcheck/internal/encode"
	"github.com/ppiankov/wikifactcheck/internal/pipeline"
)

var (
	featureFlags runFlags

	maxLength  int
	workers    int
	outputMode string
	bpe        string
	rowLimit   int
	parityOnly bool
)

// featuresCmd represents the features command
var featuresCmd = &cobra.Command{
	Use:   "features <split>",
	Short: "Encode (claim, evidence sentence) pairs into fixed-length features",
	Long: `Features expands each row into labeled examples, splits the evidence into
sentences and encodes every (claim, sentence) pair to a fixed length with a
BPE tokenizer. One feature group per example is written as JSON Lines.

By default every row yields a supported and a refuted example and only the
first 100 lines of the file are read. Use --parity to keep one example per
row (odd lines supported, even lines refuted) and --row-limit 0 to read the
whole file.

Example:
  wfc features train --max-length 256 --workers 4
  wfc features dev --output-mode regression --labels 0,1`,
	Args: splitArg,
	RunE: runFeatures,
}

func init() {
	rootCmd.AddCommand(featuresCmd)

	featureFlags.register(featuresCmd.Flags())
	featuresCmd.Flags().IntVar(&maxLength, "max-length", 0, "encoded sequence length (default from config)")
	featuresCmd.Flags().IntVar(&workers, "workers", 0, "parallel encoding workers (default from config)")
	featuresCmd.Flags().StringVar(&outputMode, "output-mode", "", "label encoding (classification, regression)")
	featuresCmd.Flags().StringVar(&bpe, "bpe", "", "tiktoken encoding name (e.g. cl100k_base)")
	featuresCmd.Flags().IntVar(&rowLimit, "row-limit", 0, "stop at this line index, 0 reads the whole file (default from config)")
	featuresCmd.Flags().BoolVar(&parityOnly, "parity", false, "one example per row chosen by line parity")
	featuresCmd.Flags().StringSlice("labels", nil, "label names in class order")
}

func runFeatures(cmd *cobra.Command, args []string) error {
	split := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	featureFlags.apply(flags, cfg)

	if flags.Changed("max-length") {
		cfg.Encoding.MaxLength = maxLength
	}
	if flags.Changed("workers") {
		cfg.Encoding.Workers = workers
	}
	if flags.Changed("output-mode") {
		cfg.Encoding.OutputMode = outputMode
	}
	if flags.Changed("bpe") {
		cfg.Encoding.BPE = bpe
	}
	if flags.Changed("row-limit") {
		cfg.Expansion.RowLimit = rowLimit
	}
	if flags.Changed("parity") {
		cfg.Expansion.IncludeAll = !parityOnly
	}
	if flags.Changed("labels") {
		labels, err := flags.GetStringSlice("labels")
		if err != nil {
			return err
		}
		cfg.Encoding.Labels = labels
	}

	ctx, cancel := featureFlags.context()
	defer cancel()

	logf(cfg, "⚙️  Loading %s encoding...\n", cfg.Encoding.BPE)
	tokenizer, err := encode.NewTiktokenTokenizer(cfg.Encoding.BPE, cfg.Encoding.MaxLength)
	if err != nil {
		return err
	}

	p, err := pipeline.NewPipeline(cfg, sink)
	if err != nil {
		return err
	}

	logf(cfg, "⚙️  Encoding %s features...\n", split)

	result, err := p.ConvertFeatures(ctx, split, tokenizer)
	if err != nil {
		return fmt.Errorf("features failed: %w", err)
	}

	out := featureFlags.output(cfg, split, "features")
	renderer := pipeline.NewRenderer()
	if err := renderer.RenderFeatures(result, out); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	if cfg.Output.Verbose {
		renderer.RenderSummary(os.Stderr, split, result.Stats)
	}
	fmt.Printf("✓ Wrote %d feature groups (%d features) to %s\n", len(result.Groups), result.Stats.Features, out)

	return nil
}
