package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/funvibe/cpptrans/internal/ast"
	"github.com/funvibe/cpptrans/internal/buildlog"
	"github.com/funvibe/cpptrans/internal/config"
	"github.com/funvibe/cpptrans/internal/emitter"
	"github.com/funvibe/cpptrans/internal/loader"
	"github.com/funvibe/cpptrans/internal/lowering"
	"github.com/funvibe/cpptrans/internal/output"
	"github.com/funvibe/cpptrans/internal/pipeline"
	"github.com/funvibe/cpptrans/internal/watch"
	"github.com/google/uuid"
)

const usage = `Usage:
  cpptrans [translate] [flags] <tree.yaml>   translate a source tree
  cpptrans dump [flags] <tree.yaml>          print the lowered tree
  cpptrans history [flags] [run-id]          list recorded runs

Run "cpptrans <command> -h" for the flags of a command.
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cmd := "translate"
	if len(args) > 0 {
		switch args[0] {
		case "translate", "dump", "history":
			cmd, args = args[0], args[1:]
		case "help", "-h", "--help":
			fmt.Fprint(stdout, usage)
			return 0
		}
	}
	switch cmd {
	case "dump":
		return runDump(args, stdout, stderr)
	case "history":
		return runHistory(args, stdout, stderr)
	}
	return runTranslate(args, stdout, stderr)
}

type translateFlags struct {
	config          string
	out             string
	workers         int
	allowUnresolved bool
	quiet           bool
	watch           bool
}

func runTranslate(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("translate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var f translateFlags
	fs.StringVar(&f.config, "config", "", "configuration file (default: cpptrans.yaml found upwards from the tree)")
	fs.StringVar(&f.out, "o", "", "output directory, overrides output_dir")
	fs.IntVar(&f.workers, "workers", 0, "parallel class emission, overrides emit_workers")
	fs.BoolVar(&f.allowUnresolved, "allow-unresolved", false, "degrade calls without an applicable overload to warnings")
	fs.BoolVar(&f.quiet, "quiet", false, "suppress progress logging")
	fs.BoolVar(&f.watch, "watch", false, "translate again whenever the tree file changes")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprint(stderr, usage)
		return 2
	}
	path := fs.Arg(0)
	if !loader.IsSourceTree(path) {
		fmt.Fprintf(stderr, "%s: expected one of %s\n", path, strings.Join(config.SourceTreeExtensions, ", "))
		return 2
	}

	logger := log.New(stderr, "", 0)
	if f.quiet {
		logger.SetOutput(io.Discard)
	}

	translate := func() int {
		cfg, err := loadConfig(f.config, path)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 2
		}
		if f.out != "" {
			cfg.OutputDir = f.out
		}
		if f.workers > 0 {
			cfg.EmitWorkers = f.workers
		}
		cfg.AllowUnresolvedCalls = cfg.AllowUnresolvedCalls || f.allowUnresolved

		ctx := newPipeline().Run(pipeline.NewPipelineContext(path, cfg, logger))
		printReport(stdout, ctx)
		if ctx.HasErrors() {
			return 1
		}
		return 0
	}

	if !f.watch {
		return translate()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	translate()
	logger.Printf("Watching %s", path)
	err := watch.Watch(ctx, path, watch.DefaultDebounce, func() { translate() },
		func(err error) { logger.Printf("Watch: %v", err) })
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func newPipeline() *pipeline.Pipeline {
	return pipeline.New(
		&loader.LoaderProcessor{},
		&lowering.LoweringProcessor{},
		&emitter.EmitterProcessor{},
		&output.WriterProcessor{},
		&buildlog.HistoryProcessor{},
	)
}

func loadConfig(explicit, treePath string) (*config.Config, error) {
	if explicit != "" {
		return config.LoadConfig(explicit)
	}
	return config.LoadFor(treePath)
}

func runDump(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("dump", flag.ContinueOnError)
	fs.SetOutput(stderr)
	source := fs.Bool("source", false, "print the tree as loaded, before lowering")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	ctx := pipeline.New(&loader.LoaderProcessor{}).Run(pipeline.NewPipelineContext(fs.Arg(0), nil, nil))
	if ctx.SourceTree == nil {
		for _, err := range ctx.Errors {
			fmt.Fprintln(stderr, err)
		}
		return 1
	}
	if *source {
		fmt.Fprintln(stdout, ast.Dump(ctx.SourceTree))
		return 0
	}

	ctx = (&lowering.LoweringProcessor{}).Process(ctx)
	for _, cls := range ctx.Classes {
		fmt.Fprintln(stdout, ast.Dump(cls))
	}
	for _, err := range ctx.Errors {
		fmt.Fprintln(stderr, err)
	}
	if ctx.HasErrors() {
		return 1
	}
	return 0
}

func runHistory(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "configuration file (default: cpptrans.yaml found upwards from the current directory)")
	limit := fs.Int("n", 10, "number of runs to list")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadConfig(*configPath)
	} else {
		cfg, err = config.LoadFor("cpptrans.yaml")
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	path := cfg.HistoryPath()
	if path == "" {
		fmt.Fprintln(stderr, "no history database configured")
		return 1
	}
	store, err := buildlog.Open(path)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer store.Close()

	if fs.NArg() == 1 {
		id, err := uuid.Parse(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(stderr, "invalid run id %q: %v\n", fs.Arg(0), err)
			return 2
		}
		outcomes, err := store.Outcomes(id)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		for _, o := range outcomes {
			line := fmt.Sprintf("%-20s %-8s", o.Class, o.Status)
			if o.Code != "" {
				line += " [" + o.Code + "] " + o.Message
			} else if len(o.Artifacts) > 0 {
				line += " " + strings.Join(o.Artifacts, " ")
			}
			fmt.Fprintln(stdout, line)
		}
		return 0
	}

	runs, err := store.Runs(*limit)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	for _, r := range runs {
		fmt.Fprintf(stdout, "%s  %s  %-30s %d classes, %d failed, %d errors (%s)\n",
			r.ID, r.Started.Local().Format(time.DateTime), r.File, r.Classes, r.Failed, r.Errors, r.Duration)
	}
	return 0
}
