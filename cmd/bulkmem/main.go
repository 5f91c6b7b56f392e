// SPDX-License-Identifier: Apache-2.0
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/torokati44/binaryen/grammar"
	"github.com/torokati44/binaryen/internal/config"
	"github.com/torokati44/binaryen/internal/errors"
	"github.com/torokati44/binaryen/internal/ir"
	"github.com/torokati44/binaryen/internal/passes"
	"github.com/torokati44/binaryen/internal/wat"
	"github.com/torokati44/binaryen/repl"
)

var log = commonlog.GetLogger("bulkmem")

type options struct {
	configPath  string
	passList    string
	debug       bool
	dump        bool
	interactive bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "path to a TOML config file (default: nearest "+config.ConfigFileName+")")
	flag.StringVar(&opts.passList, "passes", "", "comma separated passes to run, overriding the config")
	flag.BoolVar(&opts.debug, "debug", false, "log every merge")
	flag.BoolVar(&opts.dump, "dump", false, "dump the optimized IR tree to stderr")
	flag.BoolVar(&opts.interactive, "i", false, "start an interactive session")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: bulkmem [flags] <file.wat>\n       bulkmem -i\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if !opts.interactive && flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, flag.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("%s", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, path string) error {
	cfg, err := loadConfig(opts, path)
	if err != nil {
		return err
	}

	verbosity := cfg.Verbosity
	if cfg.Debug {
		verbosity = max(verbosity, 2)
	}
	var logFile *string
	if cfg.LogFile != "" {
		logFile = &cfg.LogFile
	}
	commonlog.Configure(verbosity, logFile)

	passOptions := cfg.PassOptions()
	if cfg.Debug {
		passOptions.Diagnostic = func(m passes.Merge) {
			log.Debugf("%s: merged %d writes into [%d, %d) of local %d with local %d",
				m.Function, m.Count, m.Range.Begin, m.Range.End, m.Range.Base, m.Range.Value)
		}
	}

	pipeline, err := passes.NewPipelineFromNames(cfg.Passes, cfg.Workers, passOptions)
	if err != nil {
		return err
	}

	if opts.interactive {
		fmt.Println("Welcome to the bulkmem REPL! Enter one (func ...) per line.")
		return repl.Start(ctx, os.Stdin, os.Stdout, pipeline)
	}
	return optimizeFile(ctx, opts, path, pipeline)
}

// loadConfig resolves settings from -config, the nearest config file and
// the command line, in increasing priority
func loadConfig(opts options, path string) (*config.Config, error) {
	configPath := opts.configPath
	if configPath == "" && path != "" {
		configPath = config.FindConfigFile(path)
	}

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if opts.passList != "" {
		cfg.Passes = strings.Split(opts.passList, ",")
		for i := range cfg.Passes {
			cfg.Passes[i] = strings.TrimSpace(cfg.Passes[i])
		}
	}
	if opts.debug {
		cfg.Debug = true
	}
	return cfg, cfg.Validate()
}

func optimizeFile(ctx context.Context, opts options, path string, pipeline *passes.Pipeline) error {
	startTime := time.Now()

	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	module, diags, err := wat.LoadString(path, string(source))
	if err != nil {
		fmt.Print(grammar.FormatParseError(string(source), err))
		return fmt.Errorf("compilation failed after %s", formatDuration(time.Since(startTime)))
	}

	errorReporter := errors.NewErrorReporter(path, string(source))
	fmt.Print(errorReporter.FormatErrors(diags))
	if errors.HasErrors(diags) {
		return fmt.Errorf("compilation failed after %s", formatDuration(time.Since(startTime)))
	}

	stats, err := pipeline.Run(ctx, module)
	if err != nil {
		return err
	}

	fmt.Print(ir.Print(module))
	if opts.dump {
		spew.Fdump(os.Stderr, module)
	}

	merges := 0
	for _, s := range stats {
		merges += s.Merges
	}
	color.Green("Successfully processed %s in %s (%d passes, %d merges, %d stores left)",
		path, formatDuration(time.Since(startTime)), len(stats), merges, countStores(module))
	return nil
}

func countStores(module *ir.Module) int {
	n := 0
	for _, fn := range module.Functions {
		n += ir.Count(fn.Body, func(e ir.Expression) bool {
			return e.Kind() == ir.StoreKind
		})
	}
	return n
}

func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		return fmt.Sprintf("%.2fmin", d.Minutes())
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.1fms", float64(d.Nanoseconds())/1000000.0)
	case d >= time.Microsecond:
		return fmt.Sprintf("%.1fμs", float64(d.Nanoseconds())/1000.0)
	default:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
}
