// Package cli implements the sift command line: parsing query strings and
// running them over JSON, YAML or SQLite documents.
package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RootOptions holds global flags for all commands, after configuration files
// and SIFT_* environment variables have been applied.
type RootOptions struct {
	ConfigFile   string
	LogLevel     string
	Format       string // "auto" | "json" | "yaml"
	DefaultLimit uint64

	// Logger is used instead of building one from LogLevel when set.
	Logger *zap.Logger
}

// ValidFormats defines the accepted document input formats.
var ValidFormats = []string{"auto", "json", "yaml"}

// EnvPrefix is the prefix of the environment variables read as configuration.
const EnvPrefix = "SIFT"

// NewRootCommand creates the root command of the sift CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sift",
		Short: "Filter documents with URL-style query strings",
		Long: `sift parses query strings such as "name=Rasmus&pet__type=cat&$limit=10"
and evaluates them over JSON, YAML or SQLite documents.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd.Flags())
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "path to a YAML configuration file")
	cmd.PersistentFlags().String("log-level", "warn", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().String("format", "auto", "document input format (auto|json|yaml)")
	cmd.PersistentFlags().Uint64("default-limit", 0, "limit applied to queries without $limit (0 for none)")

	cmd.AddCommand(NewParseCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))

	return cmd
}

// Execute runs the root command with the process arguments and flushes the
// logger before returning.
func Execute() error {
	opts := &RootOptions{}
	defer opts.sync()
	return newRootCommand(opts).Execute()
}

// load resolves the configuration from flags, SIFT_* environment variables
// and the optional configuration file, in that order of precedence.
func (o *RootOptions) load(flags *pflag.FlagSet) error {
	v := viper.New()
	v.SetDefault("log_level", "warn")
	v.SetDefault("format", "auto")
	v.SetDefault("default_limit", 0)

	if err := bindFlags(v, flags); err != nil {
		return err
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if o.ConfigFile != "" {
		v.SetConfigFile(o.ConfigFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", o.ConfigFile, err)
		}
	}

	o.LogLevel = v.GetString("log_level")
	o.Format = strings.ToLower(v.GetString("format"))
	o.DefaultLimit = v.GetUint64("default_limit")

	if !slices.Contains(ValidFormats, o.Format) {
		return fmt.Errorf("invalid format %q: must be one of %v", o.Format, ValidFormats)
	}
	if o.Logger == nil {
		logger, err := newLogger(o.LogLevel)
		if err != nil {
			return err
		}
		o.Logger = logger
	}
	return nil
}

// bindFlags binds every flag to the viper key of the same name, with dashes
// replaced by underscores.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var err error
	flags.VisitAll(func(f *pflag.Flag) {
		if err != nil || f.Name == "config" || f.Name == "help" {
			return
		}
		err = v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
	})
	return err
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	config := zap.NewProductionConfig()
	config.Level = lvl
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.TimeKey = "timestamp"
	return config.Build()
}

// log returns the configured logger, or a no-op logger for commands run
// without the root command.
func (o *RootOptions) log() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// sync flushes buffered log entries. Syncing stderr fails on some platforms,
// so the error is dropped.
func (o *RootOptions) sync() {
	if o.Logger != nil {
		_ = o.Logger.Sync()
	}
}
