package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Dataset    DatasetConfig    `yaml:"dataset" mapstructure:"dataset"`
	Extract    ExtractConfig    `yaml:"extract" mapstructure:"extract"`
	Checkpoint CheckpointConfig `yaml:"checkpoint" mapstructure:"checkpoint"`
	Pipeline   PipelineConfig   `yaml:"pipeline" mapstructure:"pipeline"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// DatasetConfig locates the input and output workbooks.
type DatasetConfig struct {
	Input  string `yaml:"input" mapstructure:"input"`
	Output string `yaml:"output" mapstructure:"output"`
	Sheet  string `yaml:"sheet" mapstructure:"sheet"` // empty = first sheet
}

// ExtractConfig configures the source extractor.
type ExtractConfig struct {
	UserAgent       string `yaml:"user_agent" mapstructure:"user_agent"`
	PageTimeoutSecs int    `yaml:"page_timeout_secs" mapstructure:"page_timeout_secs"`
	APITimeoutSecs  int    `yaml:"api_timeout_secs" mapstructure:"api_timeout_secs"`
	CrossrefBaseURL string `yaml:"crossref_base_url" mapstructure:"crossref_base_url"`
}

// CheckpointConfig configures the durable progress store.
type CheckpointConfig struct {
	Backend string `yaml:"backend" mapstructure:"backend"` // "csv" or "sqlite"
	Path    string `yaml:"path" mapstructure:"path"`
}

// PipelineConfig configures the extraction loop.
type PipelineConfig struct {
	BatchSize        int     `yaml:"batch_size" mapstructure:"batch_size"`
	RateIntervalSecs float64 `yaml:"rate_interval_secs" mapstructure:"rate_interval_secs"`
}

// RateInterval returns the minimum spacing between outbound fetches.
func (p PipelineConfig) RateInterval() time.Duration {
	return time.Duration(p.RateIntervalSecs * float64(time.Second))
}

// ServerConfig configures the progress inspection server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("EXTRACT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("dataset.input", "papers.xlsx")
	v.SetDefault("dataset.output", "papers_with_abstracts.xlsx")
	v.SetDefault("dataset.sheet", "")
	v.SetDefault("extract.user_agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	v.SetDefault("extract.page_timeout_secs", 15)
	v.SetDefault("extract.api_timeout_secs", 10)
	v.SetDefault("extract.crossref_base_url", "https://api.crossref.org")
	v.SetDefault("checkpoint.backend", "csv")
	v.SetDefault("checkpoint.path", "progress_checkpoint.csv")
	v.SetDefault("pipeline.batch_size", 50)
	v.SetDefault("pipeline.rate_interval_secs", 2.0)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
