package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ppiankov/wikifactcheck/internal/model"
)

// runFlags are shared by the build and features commands
type runFlags struct {
	dataDir     string
	evidenceDir string
	outPath     string
	onMissing   string
	stripMarkup bool
	timeout     time.Duration
}

func (f *runFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.dataDir, "data-dir", "", "directory holding wfc_<split>.tsv")
	fs.StringVar(&f.evidenceDir, "evidence-dir", "", "directory holding evidence documents")
	fs.StringVarP(&f.outPath, "out", "o", "", "output JSON Lines path (default: <output.dir>/<split>.<kind>.jsonl)")
	fs.StringVar(&f.onMissing, "on-missing", "", "missing evidence policy (abort, skip)")
	fs.BoolVar(&f.stripMarkup, "strip-markup", false, "extract visible text from HTML evidence")
	fs.DurationVar(&f.timeout, "timeout", 0, "overall run timeout (0 disables)")
}

// apply overrides cfg with the flags the user set explicitly
func (f *runFlags) apply(fs *pflag.FlagSet, cfg *model.Config) {
	if fs.Changed("data-dir") {
		cfg.Data.Dir = f.dataDir
	}
	if fs.Changed("evidence-dir") {
		cfg.Evidence.Dir = f.evidenceDir
	}
	if fs.Changed("on-missing") {
		cfg.Evidence.OnMissing = f.onMissing
	}
	if fs.Changed("strip-markup") {
		cfg.Evidence.StripMarkup = f.stripMarkup
	}
}

func (f *runFlags) output(cfg *model.Config, split, kind string) string {
	if f.outPath != "" {
		return f.outPath
	}
	return filepath.Join(cfg.Output.Dir, split+"."+kind+".jsonl")
}

func (f *runFlags) context() (context.Context, context.CancelFunc) {
	if f.timeout > 0 {
		return context.WithTimeout(context.Background(), f.timeout)
	}
	return context.WithCancel(context.Background())
}

// splitArg validates the positional split argument
func splitArg(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(1)(cmd, args); err != nil {
		return err
	}
	if !model.ValidSplit(args[0]) {
		return fmt.Errorf("unknown split: %s (supported: %s, %s, %s)", args[0], model.SplitTrain, model.SplitDev, model.SplitTest)
	}
	return nil
}

func logf(cfg *model.Config, format string, a ...any) {
	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, format, a...)
	}
}
