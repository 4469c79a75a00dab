package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/willojs/FARS/internal/adapter/census"
	"github.com/willojs/FARS/internal/config"
	"github.com/willojs/FARS/internal/observability"
	"github.com/willojs/FARS/internal/pipeline"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	v       *viper.Viper
	cfgFile string
	envFile string
	cfg     *config.Config
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:          "fars",
		Short:        "Summarize and map FARS traffic fatality records",
		Long:         `fars reads the yearly accident files of the US Fatality Analysis Reporting System (accident_<year>.csv.bz2), counts accidents per month, draws state maps, and can publish records to Kafka or serve them over HTTP.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (yaml, json or toml)")
	pf.StringVar(&a.envFile, "env-file", ".env", "file of FARS_* variables loaded before the environment is read")
	pf.String("data-dir", ".", "directory holding accident_<year>.csv.bz2 files")
	pf.String("log-level", "info", "log level: debug, info, warn or error")
	pf.String("log-format", "json", "log format: json or text")

	root.AddCommand(
		newSummarizeCmd(a),
		newMapCmd(a),
		newPublishCmd(a),
		newServeCmd(a),
	)
	return root
}

// flagKeys maps command-line flags to config keys. Subcommands may share a
// flag name, so only the running command's flags are bound.
var flagKeys = map[string]string{
	"data-dir":      config.KeyDataDir,
	"log-level":     config.KeyLogLevel,
	"log-format":    config.KeyLogFormat,
	"http-addr":     config.KeyHTTPAddr,
	"cache-size":    config.KeyCacheSize,
	"width":         config.KeyPlotWidth,
	"height":        config.KeyPlotHeight,
	"kafka-brokers": config.KeyKafkaBrokers,
	"kafka-topic":   config.KeyKafkaTopic,
	"kafka":         config.KeyKafkaEnabled,
}

func (a *app) bindFlags(fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := a.v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	return nil
}

func (a *app) load(cmd *cobra.Command) error {
	if err := a.bindFlags(cmd.Flags()); err != nil {
		return err
	}

	// Variables already set in the environment win over the file. A missing
	// default .env is fine; a missing --env-file is not.
	if err := godotenv.Load(a.envFile); err != nil {
		if cmd.Flags().Changed("env-file") || !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load env file: %w", err)
		}
	}
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config file: %w", err)
		}
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = observability.NewLoggerTo(cmd.ErrOrStderr(), cfg)
	if a.cfgFile != "" {
		a.logger.Debug("using config file", "path", a.v.ConfigFileUsed())
	}
	return nil
}

// service builds a pipeline for one-shot commands, with metrics kept in a
// private registry.
func (a *app) service() *pipeline.Service {
	metrics := observability.NewMetricsWith(prometheus.NewRegistry())
	return pipeline.New(a.cfg.DataDir, census.FileReader{}, a.logger, metrics)
}
