// Package config loads the command line configuration through viper.
//
// Values come, from highest to lowest precedence, from bound flags,
// CHESSINSIGHT_* environment variables, an optional config file and the
// defaults registered by SetDefaults. Nested keys use dots in files and
// underscores in the environment: evaldb.url is CHESSINSIGHT_EVALDB_URL.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/discochess/chessinsight"
	"github.com/discochess/chessinsight/evaldb"
	"github.com/discochess/chessinsight/internal/export"
	"github.com/discochess/chessinsight/internal/obslog"
	"github.com/discochess/chessinsight/internal/shard/materialshard"
)

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "CHESSINSIGHT"

// ErrInvalidConfig indicates a configuration value is out of range.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the typed configuration of the command line tools.
type Config struct {
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// Openings is an opening index file. Empty selects the bundled index.
	Openings string `mapstructure:"openings" yaml:"openings"`

	// EvalDB locates the evaluation database. An empty URL disables
	// engine scores.
	EvalDB evaldb.Source `mapstructure:"evaldb" yaml:"evaldb"`

	// Workers is the number of games analyzed concurrently.
	Workers int `mapstructure:"workers" yaml:"workers"`

	// Separator joins nested keys in exported rows.
	Separator string `mapstructure:"separator" yaml:"separator"`

	// Format is the export format when the output path does not name one.
	Format string `mapstructure:"format" yaml:"format"`

	Policy chessinsight.Policy `mapstructure:"policy" yaml:"policy"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: obslog.FormatConsole,
		EvalDB:    evaldb.Source{Strategy: materialshard.Name, Codec: "zst", Cache: 256},
		Workers:   4,
		Separator: chessinsight.DefaultSeparator,
		Format:    string(export.CSV),
		Policy:    chessinsight.DefaultPolicy(),
	}
}

// New returns a viper instance reading the environment and, when path is
// not empty, the config file at path.
func New(path string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}
	return v, nil
}

// SetDefaults registers every key with its default value. Registration also
// makes keys visible to AutomaticEnv during Unmarshal.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("openings", d.Openings)
	v.SetDefault("evaldb.url", d.EvalDB.URL)
	v.SetDefault("evaldb.shards", d.EvalDB.Shards)
	v.SetDefault("evaldb.strategy", d.EvalDB.Strategy)
	v.SetDefault("evaldb.codec", d.EvalDB.Codec)
	v.SetDefault("evaldb.cache", d.EvalDB.Cache)
	v.SetDefault("evaldb.region", d.EvalDB.Region)
	v.SetDefault("evaldb.endpoint", d.EvalDB.Endpoint)
	v.SetDefault("evaldb.prefix", d.EvalDB.Prefix)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("separator", d.Separator)
	v.SetDefault("format", d.Format)
	v.SetDefault("policy.endgame_material", d.Policy.EndgameMaterial)
	v.SetDefault("policy.piece_values.pawn", d.Policy.PieceValues.Pawn)
	v.SetDefault("policy.piece_values.knight", d.Policy.PieceValues.Knight)
	v.SetDefault("policy.piece_values.bishop", d.Policy.PieceValues.Bishop)
	v.SetDefault("policy.piece_values.rook", d.Policy.PieceValues.Rook)
	v.SetDefault("policy.piece_values.queen", d.Policy.PieceValues.Queen)
	v.SetDefault("policy.thresholds.inaccuracy", d.Policy.Thresholds.Inaccuracy)
	v.SetDefault("policy.thresholds.mistake", d.Policy.Thresholds.Mistake)
	v.SetDefault("policy.thresholds.blunder", d.Policy.Thresholds.Blunder)
	v.SetDefault("policy.min_timing_records", d.Policy.MinTimingRecords)
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first out-of-range value.
func (c Config) Validate() error {
	if _, err := obslog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %v", ErrInvalidConfig, err)
	}
	if !obslog.ValidFormat(c.LogFormat) {
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.Separator == "" {
		return fmt.Errorf("%w: empty separator", ErrInvalidConfig)
	}
	if _, err := export.ParseFormat(c.Format); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.EvalDB.Cache < 0 || c.EvalDB.Shards < 0 {
		return fmt.Errorf("%w: negative evaldb cache or shard count", ErrInvalidConfig)
	}
	if c.EvalDB.Remote() {
		if _, err := evaldb.StrategyByName(c.EvalDB.Strategy); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	if err := c.Policy.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
