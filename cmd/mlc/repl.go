package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/ailang-mir/mlc/internal/pipeline"
)

var dim = color.New(color.Faint).SprintFunc()

// runREPL walks canned examples through the pipeline one stage at a time,
// adapted from internal/repl's liner-backed read loop: history file,
// single-line editing (multi-line mode switched off), and a `:`-prefixed
// command set, but driving pipeline.Run
// over a selected example instead of evaluating typed source.
func runREPL(cfg pipeline.Config) {
	line := liner.NewLiner()
	defer line.Close()

	historyFile := filepath.Join(os.TempDir(), ".mlc_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	line.SetMultiLineMode(false)

	line.SetCompleter(func(in string) (c []string) {
		if strings.HasPrefix(in, ":") {
			for _, cmd := range []string{":help", ":list", ":quit", ":dump-core", ":dump-typed", ":dump-hir"} {
				if strings.HasPrefix(cmd, in) {
					c = append(c, cmd)
				}
			}
			return
		}
		for _, ex := range examples {
			if strings.HasPrefix(ex.name, in) {
				c = append(c, ex.name)
			}
		}
		return
	})

	fmt.Println(bold("mlc"), bold(Version))
	fmt.Println(dim("Type an example name to run it, :list to see them, :help for commands, :quit to exit"))
	fmt.Println()

	for {
		input, err := line.Prompt("mlc> ")
		if err == io.EOF {
			fmt.Println(green("\nGoodbye!"))
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", red("Error:"), err)
			continue
		}
		line.AppendHistory(input)

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		switch {
		case input == ":quit" || input == ":q":
			fmt.Println(green("Goodbye!"))
			if f, err := os.Create(historyFile); err == nil {
				_, _ = line.WriteHistory(f)
				f.Close()
			}
			return
		case input == ":help":
			printREPLHelp()
		case input == ":list":
			listExamples()
		case input == ":dump-core":
			cfg.DumpCore = !cfg.DumpCore
			fmt.Printf("dump-core: %v\n", cfg.DumpCore)
		case input == ":dump-typed":
			cfg.DumpTyped = !cfg.DumpTyped
			fmt.Printf("dump-typed: %v\n", cfg.DumpTyped)
		case input == ":dump-hir":
			cfg.DumpHIR = !cfg.DumpHIR
			fmt.Printf("dump-hir: %v\n", cfg.DumpHIR)
		default:
			ex, ok := findExample(input)
			if !ok {
				fmt.Fprintf(os.Stderr, "%s no example named %q (:list to see them)\n", red("Error:"), input)
				continue
			}
			result, runErr := runExample(ex, cfg)
			printResult(os.Stdout, ex, result, runErr)
		}
	}

	if f, err := os.Create(historyFile); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
}

func printREPLHelp() {
	fmt.Println(bold("Commands:"))
	fmt.Println("  :list         list canned examples")
	fmt.Println("  :dump-core    toggle printing the desugared core tree")
	fmt.Println("  :dump-typed   toggle printing inferred types")
	fmt.Println("  :dump-hir     toggle printing the closure-converted HIR")
	fmt.Println("  :quit         exit")
	fmt.Println()
	fmt.Println("Anything else is looked up as an example name and run through the pipeline.")
}

