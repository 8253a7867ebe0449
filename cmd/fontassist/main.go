package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/systemstart/font-assistant/pkg/api"
	"github.com/systemstart/font-assistant/pkg/dispatch"
	"github.com/systemstart/font-assistant/pkg/logging"
	"github.com/systemstart/font-assistant/pkg/pipeline"
	"github.com/systemstart/font-assistant/pkg/replicate"
	"github.com/systemstart/font-assistant/pkg/runner"
	"github.com/systemstart/font-assistant/pkg/sink"
	"github.com/systemstart/font-assistant/pkg/staging"
	"github.com/systemstart/font-assistant/pkg/tools"
)

var version = "dev"

const (
	_ = iota
	exitUsage
	exitDotenvError
	exitLoadConfigurationFileFailed
	exitScratchDirectoryUnusable
	exitInvalidArguments
	exitRequestRejected
	exitRunsFailed
	exitWatchFailed
	exitReplicateFailed
)

var (
	configFile  string
	toolsDir    string
	scratchDir  string
	workers     int
	copies      int
	debounce    time.Duration
	loggingType string
	logLevel    string
	showVersion bool
)

func init() {
	flag.StringVar(
		&configFile,
		"config",
		"",
		"YAML configuration file (env FONTASSIST_CONFIG)")
	flag.StringVar(
		&toolsDir,
		"tools-dir",
		"",
		"directory holding UniteTTC, AFDKO and ttfname3_zh (env FONTASSIST_TOOLS_DIR)")
	flag.StringVar(
		&scratchDir,
		"scratch-dir",
		"",
		"scratch root for staged files, purged on start (env FONTASSIST_SCRATCH_DIR)")
	flag.IntVar(
		&workers,
		"workers",
		0,
		"maximum concurrent runs (0 = configuration or number of CPUs)")
	flag.IntVar(
		&copies,
		"copies",
		replicate.DefaultCopies,
		"length of the numbered series created by replicate")
	flag.DurationVar(
		&debounce,
		"debounce",
		dispatch.DefaultDebounce,
		"quiet period before a drop zone batch is dispatched")
	flag.StringVar(
		&loggingType,
		"logging-type",
		"tint",
		"logging type: json, text or tint")
	flag.StringVar(
		&logLevel,
		"log-level",
		"info",
		"logging level: debug, info, warn, error")
	flag.BoolVar(
		&showVersion,
		"version",
		false,
		"print version and exit")

	flag.Usage = usage
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "usage: fontassist [flags] <command> [files...]\n\n")
	fmt.Fprintf(out, "commands:\n")
	fmt.Fprintf(out, "  split     split .ttc/.otc collections into their fonts\n")
	fmt.Fprintf(out, "  combine   combine .ttf or .otf fonts into one .ttc\n")
	fmt.Fprintf(out, "  extract   write each font's naming table to <name>.xml\n")
	fmt.Fprintf(out, "  apply     apply <name>.xml to each font, output in Modified/\n")
	fmt.Fprintf(out, "  tools     list the external tools and whether they were found\n")
	fmt.Fprintf(out, "  replicate rename a font to <name>001 and copy it up to -copies\n")
	fmt.Fprintf(out, "  watch     run operations on files dropped into <dir>/<operation>\n\n")
	fmt.Fprintf(out, "files may be glob patterns such as fonts/**/*.ttc\n\nflags:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Parse()

	if showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(exitUsage)
	}

	// Flags may also follow the command.
	command := flag.Arg(0)
	if err := flag.CommandLine.Parse(flag.Args()[1:]); err != nil {
		os.Exit(exitUsage)
	}
	args := flag.Args()

	if err := logging.Initialize(os.Stderr, loggingType, logLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUsage)
	}

	includeEnv()
	cfg := loadConfiguration()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "tools":
		listTools(tools.Resolve(cfg))
	case "replicate":
		runReplicate(args)
	case "watch":
		runWatch(ctx, cfg, args)
	default:
		kind, err := api.ParseKind(command)
		if err != nil {
			slog.Error("unknown command", "command", command)
			flag.Usage()
			os.Exit(exitUsage)
		}
		runOperation(ctx, cfg, kind, args)
	}
}

func includeEnv() {
	err := godotenv.Load()
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Error("failed to load .env", "error", err)
			os.Exit(exitDotenvError)
		}
		slog.Debug("no .env file found")
	} else {
		slog.Debug("using .env file")
	}

	fromEnv(&configFile, "FONTASSIST_CONFIG")
	fromEnv(&toolsDir, "FONTASSIST_TOOLS_DIR")
	fromEnv(&scratchDir, "FONTASSIST_SCRATCH_DIR")
}

func fromEnv(dst *string, key string) {
	if *dst == "" {
		*dst = os.Getenv(key)
	}
}

func loadConfiguration() *api.Config {
	cfg, err := api.LoadConfig(configFile)
	if err != nil {
		slog.Error("failed to load configuration file", "filename", configFile, "error", err)
		os.Exit(exitLoadConfigurationFileFailed)
	}

	if toolsDir != "" {
		cfg.ToolsDir = toolsDir
	}
	if scratchDir != "" {
		cfg.ScratchDir = scratchDir
	}
	if workers > 0 {
		cfg.Workers = workers
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(exitLoadConfigurationFileFailed)
	}
	return cfg
}

// newDispatcher prepares everything runs share. The scratch root must be
// usable, otherwise nothing can run.
func newDispatcher(cfg *api.Config) *dispatch.Dispatcher {
	mgr := staging.NewManager(cfg.ScratchDir)
	if err := mgr.Reset(); err != nil {
		slog.Error("scratch directory is not usable", "directory", cfg.ScratchDir, "error", err)
		os.Exit(exitScratchDirectoryUnusable)
	}

	args, err := pipeline.NewArguments(cfg.Arguments)
	if err != nil {
		slog.Error("invalid argument templates", "error", err)
		os.Exit(exitLoadConfigurationFileFailed)
	}

	set := tools.Resolve(cfg)
	for _, t := range set.All() {
		if !t.Exists {
			slog.Warn("tool not found", "tool", t.ID, "path", t.Path)
		}
	}

	env := &pipeline.Env{
		Tools:    set,
		Staging:  mgr,
		Runner:   runner.NewExec(),
		Args:     args,
		Timeouts: cfg.Timeouts,
	}
	return dispatch.New(env, cfg.Workers)
}

func runOperation(ctx context.Context, cfg *api.Config, kind api.Kind, args []string) {
	paths, err := dispatch.ExpandPaths(args)
	if err != nil {
		slog.Error("invalid file arguments", "error", err)
		os.Exit(exitInvalidArguments)
	}

	d := newDispatcher(cfg)
	reports, err := d.Dispatch(ctx, api.Request{Kind: kind, Paths: paths})
	if err != nil {
		slog.Error("request rejected", "operation", kind, "error", err)
		os.Exit(exitRequestRejected)
	}

	summary := sink.Drain(reports, sink.NewLog(nil))
	if summary.Failed > 0 {
		slog.Error("some runs failed", "succeeded", summary.Succeeded, "failed", summary.Failed)
		os.Exit(exitRunsFailed)
	}
	slog.Info("done", "runs", summary.Total())
}

func runWatch(ctx context.Context, cfg *api.Config, args []string) {
	if len(args) != 1 {
		slog.Error("watch expects exactly one directory")
		os.Exit(exitInvalidArguments)
	}

	w, err := dispatch.NewWatcher(args[0], newDispatcher(cfg), debounce)
	if err != nil {
		slog.Error("failed to watch drop zones", "directory", args[0], "error", err)
		os.Exit(exitWatchFailed)
	}

	reports := make(chan api.Report)
	done := make(chan sink.Summary)
	go func() {
		done <- sink.Drain(reports, sink.NewLog(nil))
	}()

	err = w.Run(ctx, reports)
	close(reports)
	summary := <-done

	slog.Info("stopped watching", "succeeded", summary.Succeeded, "failed", summary.Failed)
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("watch failed", "error", err)
		os.Exit(exitWatchFailed)
	}
}

func runReplicate(args []string) {
	if len(args) == 0 {
		slog.Error("replicate expects at least one font")
		os.Exit(exitInvalidArguments)
	}

	paths, err := dispatch.ExpandPaths(args)
	if err != nil {
		slog.Error("invalid file arguments", "error", err)
		os.Exit(exitInvalidArguments)
	}

	failed := false
	for _, p := range paths {
		series, err := replicate.Replicate(p, copies)
		if err != nil {
			slog.Error("replicate failed", "file", p, "error", err)
			failed = true
			continue
		}
		slog.Info("replicated", "file", p, "first", series[0], "copies", len(series))
	}
	if failed {
		os.Exit(exitReplicateFailed)
	}
}

func listTools(set tools.Set) {
	var b strings.Builder
	for _, t := range set.All() {
		b.WriteString(t.String())
		b.WriteByte('\n')
	}
	fmt.Print(b.String())
}
