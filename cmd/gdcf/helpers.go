package main

import (
	"io"
	"log/slog"

	"github.com/panbanda/gdcf/internal/service/analysis"
	outputSvc "github.com/panbanda/gdcf/internal/service/output"
	"github.com/panbanda/gdcf/pkg/config"
	"github.com/urfave/cli/v2"
)

// loadConfig loads the -c file, or the first config file in the working
// directory, or the defaults.
func loadConfig(c *cli.Context) (*config.Config, error) {
	res, err := loadConfigResult(c)
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

func loadConfigResult(c *cli.Context) (*config.LoadResult, error) {
	var opts []config.LoadOption
	if path := c.String("config"); path != "" {
		opts = append(opts, config.WithPath(path))
	}
	return config.LoadConfig(opts...)
}

// newLogger logs warnings by default and everything at -vvv.
func newLogger(w io.Writer, verbosity int) *slog.Logger {
	level := slog.LevelWarn
	if verbosity >= 3 {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// runOptions collects the per-run overrides from the global flags.
func runOptions(c *cli.Context) analysis.Options {
	return analysis.Options{
		TestDirs:          c.StringSlice("test-dir"),
		ExcludeDirs:       c.StringSlice("exclude-dir"),
		NoDefaultExcludes: c.Bool("no-default-excludes"),
		Gitignore:         c.Bool("gitignore"),
	}
}

// resolveFormat prefers --format over the configured output format.
func resolveFormat(c *cli.Context, cfg *config.Config) (outputSvc.Format, error) {
	if f := c.String("format"); f != "" {
		return outputSvc.ParseFormat(f)
	}
	return outputSvc.ParseFormat(cfg.Output.Format)
}

func colorEnabled(c *cli.Context, cfg *config.Config) bool {
	return cfg.Output.Color && !c.Bool("no-color")
}
