package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/panbanda/gdcf/internal/output"
	"github.com/panbanda/gdcf/internal/service/analysis"
	outputSvc "github.com/panbanda/gdcf/internal/service/output"
	scannerSvc "github.com/panbanda/gdcf/internal/service/scanner"
	"github.com/panbanda/gdcf/pkg/config"
	"github.com/panbanda/gdcf/pkg/models"
	"github.com/urfave/cli/v2"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

// Exit codes.
const (
	exitClean    = 0
	exitFindings = 1
	exitRoot     = 2
)

// exitError ends the run with code. A nil err exits without a message.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func init() {
	// -v counts verbosity, so the version flag keeps only its long name.
	cli.VersionFlag = &cli.BoolFlag{
		Name:  "version",
		Usage: "print the version",
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	err := newApp(stdout, stderr).RunContext(ctx, args)
	return exitCode(err, stderr)
}

func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return exitClean
	}

	var exit *exitError
	if errors.As(err, &exit) {
		if exit.err != nil {
			color.New(color.FgRed).Fprintf(stderr, "Error: %v\n", exit.err)
		}
		return exit.code
	}

	color.New(color.FgRed).Fprintf(stderr, "Error: %v\n", err)
	var rootErr *scannerSvc.RootError
	if errors.As(err, &rootErr) {
		return exitRoot
	}
	return exitFindings
}

func newApp(stdout, stderr io.Writer) *cli.App {
	var verbosity int

	return &cli.App{
		Name:      "gdcf",
		Usage:     "Find functions that are never called in a Godot GDScript codebase",
		Version:   version,
		ArgsUsage: "[PATH]",
		Description: `gdcf scans every .gd script and .tscn scene under PATH (default: the
current directory) and reports functions with no recognized reference
(unused) and functions referenced only from test code (test-only).

Exit status is 0 when nothing is found, 1 when something is found or on
error, and 2 when PATH is missing or not a directory.

Flags must come before PATH.`,
		Writer:                 stdout,
		ErrWriter:              stderr,
		UseShortOptionHandling: true,
		HideHelpCommand:        true,
		ExitErrHandler:         func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"GDCF_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, markdown, json, toon (default from config, else text)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "No output; exit with code 1 if unused or test-only functions are found",
			},
			&cli.StringSliceFlag{
				Name:    "test-dir",
				Aliases: []string{"tests-dir"},
				Usage:   "Dir (relative to root) treated as test code; repeatable (default: tests/, test/, test_*.gd, *_test.gd)",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Verbose: -v summary, -vv list every .gd and .tscn path, -vvv log each directory traversed",
				Count:   &verbosity,
			},
			&cli.StringSliceFlag{
				Name:  "exclude-dir",
				Usage: "Directory name (or **/name) to exclude from the scan; repeatable (default: **/addons)",
			},
			&cli.BoolFlag{
				Name:  "no-default-excludes",
				Usage: "Do not exclude the configured directories (addons by default)",
			},
			&cli.BoolFlag{
				Name:  "gitignore",
				Usage: "Also skip files ignored by .gitignore",
			},
			&cli.StringFlag{
				Name:  "debug-function",
				Usage: "Show every definition and reference found for a function `NAME`",
			},
		},
		Action: func(c *cli.Context) error {
			return runScan(c, verbosity)
		},
		Commands: []*cli.Command{
			configCmd(),
			initCmd(),
			mcpCmd(),
			watchCmd(),
		},
	}
}

func runScan(c *cli.Context, verbosity int) error {
	if c.Args().Len() > 1 {
		return fmt.Errorf("expected at most one PATH, got %d", c.Args().Len())
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	quiet := c.Bool("quiet")
	stderr := c.App.ErrWriter
	logger := newLogger(stderr, verbosity)

	opts := []analysis.Option{
		analysis.WithConfig(cfg),
		analysis.WithLogger(logger),
	}
	if verbosity > 0 && !quiet {
		opts = append(opts, analysis.WithProgress(stderr))
	}

	res, err := analysis.New(opts...).Run(c.Context, c.Args().First(), runOptions(c))
	if err != nil {
		return err
	}

	if !quiet {
		if verbosity > 0 {
			printSummary(stderr, res.Scan, verbosity)
		}
		if len(res.Scan.Files) == 0 {
			color.New(color.FgYellow).Fprintf(stderr, "No .gd files found in %s\n", res.Scan.Root)
		}
	}

	if name := c.String("debug-function"); name != "" {
		if quiet {
			return nil
		}
		return render(c, cfg, output.NewExplanationView(res.Analyzer.Explain(name)))
	}

	if !quiet {
		if err := render(c, cfg, output.NewDeadCodeView(res.Report)); err != nil {
			return err
		}
	}
	if res.Report.HasFindings() {
		return &exitError{code: exitFindings}
	}
	return nil
}

func render(c *cli.Context, cfg *config.Config, data output.Renderable) error {
	format, err := resolveFormat(c, cfg)
	if err != nil {
		return err
	}
	svc, err := outputSvc.New(
		outputSvc.WithFormat(format),
		outputSvc.WithWriter(c.App.Writer),
		outputSvc.WithColor(colorEnabled(c, cfg)),
		outputSvc.WithFile(c.String("output")),
	)
	if err != nil {
		return err
	}
	defer svc.Close()
	return svc.Output(data)
}

// printSummary writes the verbose scan summary: counts at -v, every
// discovered path from -vv, every referenced name at -vvv.
func printSummary(w io.Writer, scan *models.ScanResult, verbosity int) {
	fmt.Fprintf(w, "Scanning: %s\n", scan.Root)
	if verbosity >= 2 {
		fmt.Fprintf(w, "  Recursive .gd search (case-insensitive) matched %d path(s):\n", len(scan.Files))
		for _, f := range scan.Files {
			fmt.Fprintf(w, "    %s\n", models.DisplayPath(scan.Root, f))
		}
		fmt.Fprintf(w, "  Recursive .tscn search (case-insensitive) matched %d path(s):\n", len(scan.Scenes))
		for _, f := range scan.Scenes {
			fmt.Fprintf(w, "    %s\n", models.DisplayPath(scan.Root, f))
		}
	} else {
		fmt.Fprintf(w, "  Found %d .gd file(s) and %d .tscn file(s)\n", len(scan.Files), len(scan.Scenes))
	}
	for _, s := range scan.Skipped {
		fmt.Fprintf(w, "  Skipped %s: %s\n", filepath.ToSlash(s.Path), s.Reason)
	}
	fmt.Fprintf(w, "  Total function definitions: %d\n", len(scan.Definitions))
	fmt.Fprintf(w, "  Total references: %d\n", scan.References.Total())
	if verbosity >= 3 {
		names := scan.References.Names()
		fmt.Fprintf(w, "  Referenced names (%d):\n", len(names))
		for _, name := range names {
			fmt.Fprintf(w, "    %s: %d site(s)\n", name, scan.References.Len(name))
		}
	}
}
