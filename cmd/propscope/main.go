package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gnana997/propscope/pkg/analyzer"
	mcpserver "github.com/gnana997/propscope/pkg/mcp"
	"github.com/gnana997/propscope/pkg/mcplog"
	"github.com/gnana997/propscope/pkg/util"
	"github.com/gnana997/propscope/pkg/watch"
)

const version = "0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := loadProjectConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load project config: %v\n", err)
		os.Exit(1)
	}
	logger := util.NewLogger(loggerConfig(cfg))

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "analyze":
		err = runAnalyze(cfg, logger, args)
	case "usages":
		err = runUsages(cfg, logger, args)
	case "decls":
		err = runDecls(cfg, logger, args)
	case "missing":
		err = runMissing(cfg, logger, args)
	case "query":
		err = runQuery(cfg, logger, args)
	case "serve":
		err = runServe(cfg, logger, args)
	case "watch":
		err = runWatch(cfg, logger, args)
	case "version":
		fmt.Printf("propscope %s\n", version)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", command, err)
		os.Exit(1)
	}
}

func newAnalyzer(cfg *ProjectConfig, logger *slog.Logger) (*analyzer.Analyzer, error) {
	ac := buildAnalyzerConfig(cfg)
	ac.Logger = logger
	return analyzer.New(ac)
}

// formatFlags registers the shared output shaping flags on fs.
func formatFlags(fs *flag.FlagSet) (*string, *bool, *bool) {
	format := fs.String("format", "full", "output shape: full, file, or prop")
	columns := fs.Bool("columns", true, "include column numbers")
	locations := fs.Bool("locations", true, "include pretty path:line locations")
	return format, columns, locations
}

func shapeOptions(format string, columns, locations bool) (analyzer.FormatOptions, error) {
	f, err := analyzer.ParseFormat(format)
	if err != nil {
		return analyzer.FormatOptions{}, err
	}
	return analyzer.FormatOptions{
		Format:                f,
		IncludeColumns:        columns,
		IncludePrettyLocation: locations,
	}, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runAnalyze(cfg *ProjectConfig, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	component := fs.String("component", "", "restrict to one component name")
	prop := fs.String("prop", "", "restrict to one prop name")
	includeTypes := fs.Bool("types", true, "include prop type information")
	format, columns, locations := formatFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	opts, err := shapeOptions(*format, *columns, *locations)
	if err != nil {
		return err
	}

	a, err := newAnalyzer(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.Analyze(resolveRoot(fs.Arg(0), cfg), analyzer.AnalyzeOptions{
		Component:    *component,
		Prop:         *prop,
		IncludeTypes: *includeTypes,
	})
	if err != nil {
		return err
	}
	return printJSON(analyzer.Shape(result, opts))
}

func runUsages(cfg *ProjectConfig, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("usages", flag.ExitOnError)
	component := fs.String("component", "", "restrict to one component name")
	format, columns, locations := formatFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: propscope usages <prop> [path]")
	}
	opts, err := shapeOptions(*format, *columns, *locations)
	if err != nil {
		return err
	}

	a, err := newAnalyzer(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.FindUsages(resolveRoot(fs.Arg(1), cfg), fs.Arg(0), *component)
	if err != nil {
		return err
	}
	return printJSON(analyzer.Shape(result, opts))
}

func runDecls(cfg *ProjectConfig, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("decls", flag.ExitOnError)
	format, columns, locations := formatFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: propscope decls <component> [path]")
	}
	opts, err := shapeOptions(*format, *columns, *locations)
	if err != nil {
		return err
	}

	a, err := newAnalyzer(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.GetDeclarations(resolveRoot(fs.Arg(1), cfg), fs.Arg(0))
	if err != nil {
		return err
	}
	return printJSON(analyzer.Shape(result, opts))
}

func runMissing(cfg *ProjectConfig, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("missing", flag.ExitOnError)
	strictSpread := fs.Bool("strict-spread", false, "treat spread attributes as not supplying the prop")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("usage: propscope missing <component> <prop> [path]")
	}

	a, err := newAnalyzer(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.FindMissingProp(resolveRoot(fs.Arg(2), cfg), fs.Arg(0), fs.Arg(1), analyzer.MissingPropOptions{
		TreatSpreadAsMissing: *strictSpread,
	})
	if err != nil {
		return err
	}
	return printJSON(report)
}

func runQuery(cfg *ProjectConfig, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	criteriaJSON := fs.String("criteria", "[]", "criteria as a JSON array")
	logic := fs.String("logic", "AND", "combine criteria with AND or OR")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: propscope query <component> [path] --criteria '[...]'")
	}

	var criteria []analyzer.Criterion
	if err := json.Unmarshal([]byte(*criteriaJSON), &criteria); err != nil {
		return fmt.Errorf("invalid --criteria: %w", err)
	}

	a, err := newAnalyzer(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.Query(resolveRoot(fs.Arg(1), cfg), fs.Arg(0), criteria, analyzer.QueryOptions{
		Logic: analyzer.Logic(*logic),
	})
	if err != nil {
		return err
	}
	return printJSON(report)
}

func runServe(cfg *ProjectConfig, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	logPath := fs.String("log-file", "", "JSONL tool-call log path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	path := *logPath
	if path == "" && cfg != nil {
		path = cfg.MCPLogPath
	}
	toolLog, err := mcplog.NewLogger(path)
	if err != nil {
		return fmt.Errorf("failed to open tool log: %w", err)
	}
	if toolLog != nil {
		defer toolLog.Close()
	}

	a, err := newAnalyzer(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := mcpserver.NewServer(a, toolLog)
	return srv.ServeStdio()
}

func runWatch(cfg *ProjectConfig, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	root := resolveRoot(fs.Arg(0), cfg)

	a, err := newAnalyzer(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	w, err := watch.New(watch.DefaultOptions(), func(path string) {
		a.Invalidate(path)
		fmt.Printf("changed: %s\n", path)
	}, logger)
	if err != nil {
		return err
	}
	if err := w.Start(root); err != nil {
		return err
	}
	defer w.Stop()

	fmt.Printf("watching %s (ctrl-c to stop)\n", root)
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	return nil
}

func printUsage() {
	fmt.Println("Usage: propscope <command> [options] [args]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  analyze    Scan a source tree and report declarations and usages")
	fmt.Println("  usages     Find usage sites of a prop")
	fmt.Println("  decls      Find declarations of a component")
	fmt.Println("  missing    Report instances of a component missing a prop")
	fmt.Println("  query      Match component instances against prop criteria")
	fmt.Println("  serve      Start MCP server on stdio")
	fmt.Println("  watch      Watch for file changes and invalidate caches")
	fmt.Println("  version    Print version")
	fmt.Println("  help       Show this help message")
}
