package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"

	"github.com/ailang-mir/mlc/internal/config"
	"github.com/ailang-mir/mlc/internal/diag"
	"github.com/ailang-mir/mlc/internal/pipeline"
)

var (
	Version = "dev"
	Commit  = "unknown"

	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func main() {
	var (
		versionFlag = flag.Bool("version", false, "Print version information")
		helpFlag    = flag.Bool("help", false, "Show help")
		configFlag  = flag.String("config", "", "Path to mlc.yaml pipeline configuration")
		dumpCore    = flag.Bool("dump-core", false, "Print the desugared core tree")
		dumpTyped   = flag.Bool("dump-typed", false, "Print inferred types")
		dumpHIR     = flag.Bool("dump-hir", false, "Print the closure-converted HIR")
	)

	flag.Parse()

	if *versionFlag {
		printVersion()
		return
	}

	if *helpFlag || flag.NArg() == 0 {
		printHelp()
		return
	}

	cfg := pipeline.Config{DumpCore: *dumpCore, DumpTyped: *dumpTyped, DumpHIR: *dumpHIR}
	if *configFlag != "" {
		loaded, err := config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
			os.Exit(1)
		}
		cfg.WarningsFatal = len(loaded.FatalWarnings) > 0
	}

	command := flag.Arg(0)

	switch command {
	case "run":
		if flag.NArg() < 2 {
			fmt.Fprintf(os.Stderr, "%s: missing example name\n", red("Error"))
			fmt.Println("Usage: mlc run <example>")
			listExamples()
			os.Exit(1)
		}
		runCommand(flag.Arg(1), cfg)

	case "list":
		listExamples()

	case "repl":
		runREPL(cfg)

	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", red("Error"), command)
		printHelp()
		os.Exit(1)
	}
}

func runCommand(name string, cfg pipeline.Config) {
	ex, ok := findExample(name)
	if !ok {
		fmt.Fprintf(os.Stderr, "%s: no example named %q\n", red("Error"), name)
		listExamples()
		os.Exit(1)
	}

	result, err := runExample(ex, cfg)
	printResult(os.Stdout, ex, result, err)
	if err != nil {
		os.Exit(1)
	}
}

func printResult(out *os.File, ex example, result pipeline.Result, err error) {
	fmt.Fprintf(out, "%s %s\n", bold(ex.name), ex.description)
	fmt.Fprintf(out, "%s %s\n", cyan("correlation-id:"), result.CorrelationID)

	var stages []string
	for stage := range result.PhaseTimings {
		stages = append(stages, stage)
	}
	sort.Strings(stages)
	for _, stage := range stages {
		fmt.Fprintf(out, "  %-10s %s\n", stage, result.PhaseTimings[stage])
	}

	if result.CoreDump != "" {
		fmt.Fprintln(out, bold("-- core --"))
		fmt.Fprintln(out, result.CoreDump)
	}
	if result.TypedInfo != nil {
		var typed []string
		for e, t := range result.TypedInfo.Exprs {
			typed = append(typed, fmt.Sprintf("%s : %s", e, t))
		}
		sort.Strings(typed)
		fmt.Fprintln(out, bold("-- typed --"))
		for _, line := range typed {
			fmt.Fprintln(out, "  "+line)
		}
	}
	if result.HIRDump != "" {
		fmt.Fprintln(out, bold("-- hir --"))
		fmt.Fprintln(out, result.HIRDump)
	}

	for _, d := range result.Diagnostics {
		if d.Severity == diag.SeverityWarning {
			fmt.Fprintf(out, "%s %s\n", yellow("warning:"), d)
		} else {
			fmt.Fprintf(out, "%s %s\n", red("error:"), d)
		}
	}

	if err != nil {
		fmt.Fprintf(out, "%s %v\n", red("failed:"), err)
		return
	}

	fmt.Fprintln(out, bold("-- mir --"))
	for _, fn := range result.Functions {
		fmt.Fprintln(out, fn)
	}
	fmt.Fprintln(out, green("ok"))
}

func listExamples() {
	fmt.Println(bold("Available examples:"))
	for _, ex := range examples {
		fmt.Printf("  %-22s %s\n", cyan(ex.name), ex.description)
	}
}

func printVersion() {
	fmt.Printf("mlc %s\n", bold(Version))
	if Commit != "unknown" {
		fmt.Printf("Commit: %s\n", Commit)
	}
}

func printHelp() {
	fmt.Println(bold("mlc - middle-end pipeline driver"))
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  mlc <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Printf("  %s <example>   Run a canned example through the pipeline\n", cyan("run"))
	fmt.Printf("  %s               List canned examples\n", cyan("list"))
	fmt.Printf("  %s               Start the interactive pipeline walker\n", cyan("repl"))
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  --version       Print version information")
	fmt.Println("  --help          Show this help message")
	fmt.Println("  --config <path> Load an mlc.yaml pipeline configuration")
	fmt.Println("  --dump-core     Print the desugared core tree")
	fmt.Println("  --dump-typed    Print inferred types")
	fmt.Println("  --dump-hir      Print the closure-converted HIR")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Printf("  %s\n", cyan("mlc run literal"))
	fmt.Printf("  %s\n", cyan("mlc repl"))
}

