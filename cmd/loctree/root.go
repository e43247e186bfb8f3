package main

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/campusmaps/loctree/internal/campus"
)

const (
	confBuildings = "buildings"
	confLogLevel  = "log_level"
	confParallel  = "parallel"
	confFormat    = "format"
)

var conf = viper.New()

var rootCmd = &cobra.Command{
	Use:           "loctree",
	Short:         "Spatial queries over campus buildings",
	SilenceUsage:  true,
	SilenceErrors: true,
	Long: `
loctree loads a CSV file of buildings (short,long,x,y), indexes their
locations in a region quadtree and answers range, closest and nearest
queries. Results are written to stdout.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "",
		"Configuration file. Takes precedence over default values, but is "+
			"overridden by environment variables and flags.")
	flags.StringP(confBuildings, "b", "buildings.csv",
		"CSV file of buildings: short,long,x,y")
	flags.String(confLogLevel, "warn", "Log level: debug, info, warn or error")
	flags.Int(confParallel, 0,
		"Build quadrants covering at least this many buildings concurrently. 0 disables.")
	flags.String(confFormat, "json", "Output format: json or text")
	_ = conf.BindPFlags(flags)

	conf.SetEnvPrefix("LOCTREE")
	conf.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	conf.AutomaticEnv()

	rootCmd.AddCommand(regionCmd, closestCmd, nearestCmd)
}

func initConfig() error {
	if file := conf.GetString("config"); file != "" {
		conf.SetConfigFile(file)
		if err := conf.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "read config %s", file)
		}
	}
	switch f := conf.GetString(confFormat); f {
	case "json", "text":
	default:
		return errors.Errorf("unknown format %q", f)
	}
	return nil
}

func newLogger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(conf.GetString(confLogLevel))
	if err != nil {
		return nil, errors.Wrap(err, "log level")
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = level
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// loadCatalog reads the configured building file and indexes it.
func loadCatalog(log *zap.Logger) (*campus.Catalog, error) {
	path := conf.GetString(confBuildings)
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open buildings")
	}
	defer f.Close()
	buildings, err := campus.ParseBuildings(f)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	log.Debug("loaded buildings", zap.String("path", path),
		zap.Int("count", len(buildings)))
	return campus.NewCatalog(buildings,
		campus.WithLogger(log),
		campus.WithParallelBuild(conf.GetInt(confParallel)))
}
