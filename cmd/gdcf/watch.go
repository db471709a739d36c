package main

import (
	"context"
	"errors"
	"time"

	"github.com/fatih/color"
	"github.com/panbanda/gdcf/internal/output"
	"github.com/panbanda/gdcf/internal/service/analysis"
	scannerSvc "github.com/panbanda/gdcf/internal/service/scanner"
	"github.com/panbanda/gdcf/pkg/watch"
	"github.com/urfave/cli/v2"
)

func watchCmd() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Re-run the scan whenever a .gd or .tscn file changes",
		ArgsUsage: "[PATH]",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "debounce",
				Value: watch.DefaultDebounce,
				Usage: "Quiet period after the last change before re-running",
			},
		},
		Action: runWatchCmd,
	}
}

func runWatchCmd(c *cli.Context) error {
	root, err := scannerSvc.ResolveRoot(c.Args().First())
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	opts := runOptions(c)
	svc := analysis.New(
		analysis.WithConfig(cfg),
		analysis.WithLogger(newLogger(c.App.ErrWriter, 0)),
	)

	rescan := func(ctx context.Context) {
		res, err := svc.Run(ctx, root, opts)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				color.New(color.FgRed).Fprintf(c.App.ErrWriter, "Error: %v\n", err)
			}
			return
		}
		if err := render(c, cfg, output.NewDeadCodeView(res.Report)); err != nil {
			color.New(color.FgRed).Fprintf(c.App.ErrWriter, "Error: %v\n", err)
		}
	}

	w, err := watch.NewWatcher(root, opts.Apply(cfg), c.Duration("debounce"))
	if err != nil {
		return err
	}
	defer w.Stop()
	w.SetOutput(c.App.Writer)
	w.SetLogger(newLogger(c.App.ErrWriter, 0))
	w.SetCallback(func([]string) { rescan(c.Context) })

	rescan(c.Context)
	start := time.Now()
	err = w.Start(c.Context)
	if errors.Is(err, context.Canceled) {
		color.New(color.FgCyan).Fprintf(c.App.Writer, "Stopped watching after %s\n", time.Since(start).Round(time.Second))
		return nil
	}
	return err
}
