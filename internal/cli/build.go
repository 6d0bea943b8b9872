package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/wikifactcheck/internal/pipeline"
)

var buildFlags runFlags

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build <split>",
	Short: "Emit one supported and one refuted record per row",
	Long: `Build reads wfc_<split>.tsv, resolves each row's evidence document and
writes two flat records per row (supported claim, then refuted claim) as
JSON Lines. The test split reads the dev file.

Example:
  wfc build train --data-dir ./data --evidence-dir ./utf-refdata
  wfc build dev -o dev.jsonl --on-missing skip`,
	Args: splitArg,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildFlags.register(buildCmd.Flags())
}

func runBuild(cmd *cobra.Command, args []string) error {
	split := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	buildFlags.apply(cmd.Flags(), cfg)

	ctx, cancel := buildFlags.context()
	defer cancel()

	p, err := pipeline.NewPipeline(cfg, sink)
	if err != nil {
		return err
	}

	logf(cfg, "⚙️  Building %s records...\n", split)

	result, err := p.BuildDataset(ctx, split)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	out := buildFlags.output(cfg, split, "records")
	renderer := pipeline.NewRenderer()
	if err := renderer.RenderRecords(result, out); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	if cfg.Output.Verbose {
		renderer.RenderSummary(os.Stderr, split, result.Stats)
	}
	fmt.Printf("✓ Wrote %d records to %s\n", len(result.Records), out)

	return nil
}
