package cli

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/ppiankov/wikifactcheck/internal/model"
)

// bindEnv reads WFC_* variables; WFC_EVIDENCE_DIR overrides evidence.dir
func bindEnv() {
	viper.SetEnvPrefix("WFC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// registerDefaults makes every config key known to viper so that
// AutomaticEnv can resolve it during Unmarshal
func registerDefaults(cfg *model.Config) {
	viper.SetDefault("data.dir", cfg.Data.Dir)
	viper.SetDefault("data.delimiter", cfg.Data.Delimiter)
	viper.SetDefault("evidence.dir", cfg.Evidence.Dir)
	viper.SetDefault("evidence.on_missing", cfg.Evidence.OnMissing)
	viper.SetDefault("evidence.strip_markup", cfg.Evidence.StripMarkup)
	viper.SetDefault("evidence.cache_ttl", cfg.Evidence.CacheTTL)
	viper.SetDefault("expansion.include_all", cfg.Expansion.IncludeAll)
	viper.SetDefault("expansion.row_limit", cfg.Expansion.RowLimit)
	viper.SetDefault("encoding.bpe", cfg.Encoding.BPE)
	viper.SetDefault("encoding.max_length", cfg.Encoding.MaxLength)
	viper.SetDefault("encoding.output_mode", cfg.Encoding.OutputMode)
	viper.SetDefault("encoding.labels", cfg.Encoding.Labels)
	viper.SetDefault("encoding.workers", cfg.Encoding.Workers)
	viper.SetDefault("encoding.preview", cfg.Encoding.Preview)
	viper.SetDefault("output.dir", cfg.Output.Dir)
	viper.SetDefault("output.verbose", cfg.Output.Verbose)
	viper.SetDefault("log.level", cfg.Log.Level)
	viper.SetDefault("log.format", cfg.Log.Format)
}
