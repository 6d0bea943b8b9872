package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ppiankov/wikifactcheck/internal/diag"
	"github.com/ppiankov/wikifactcheck/internal/model"
)

const version = "1.0.0"

var (
	cfgFile   string
	verbose   bool
	logLevel  string
	logFormat string

	logger *zap.Logger
	sink   diag.Sink = diag.Nop{}
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "wfc",
	Short: "wfc - WikiFactCheck-English example builder",
	Long: `wfc turns the WikiFactCheck-English tabular files into training data.

Each row pairs a supported claim and a refuted claim with a reference to an
evidence document. wfc resolves the evidence, splits it into sentences and
either emits flat dataset records or fixed-length encoded features for a
sentence-pair classifier.`,
	SilenceErrors:      true,
	SilenceUsage:       true,
	PersistentPreRunE:  setupLogging,
	PersistentPostRunE: flushLogging,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wfc v%s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.wfc/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "diagnostics level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "diagnostics format (console, json)")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".wfc"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	bindEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig layers the config file and environment over the defaults
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	registerDefaults(cfg)
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func setupLogging(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	l, err := diag.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	logger = l.With(zap.String("run_id", uuid.NewString()), zap.String("command", cmd.Name()))
	sink = diag.NewZapSink(logger)
	return nil
}

func flushLogging(cmd *cobra.Command, args []string) error {
	if logger == nil {
		return nil
	}
	// Sync on stderr fails on some platforms; nothing to report
	_ = logger.Sync()
	return nil
}
