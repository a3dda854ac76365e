// Package pipeline wires the compiler's stages — desugarer, type
// inferencer, decision-tree compiler, HIR builder, MIR/CFG lowerer —
// into a single ordered driver over one compilation unit, matching the
// teacher's internal/pipeline's thin stage-sequencing shape: a Config
// carrying caller options, a Source, and a Result accumulating phase
// timings and diagnostics alongside the final artifacts.
package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ailang-mir/mlc/internal/coreast"
	"github.com/ailang-mir/mlc/internal/desugar"
	"github.com/ailang-mir/mlc/internal/diag"
	"github.com/ailang-mir/mlc/internal/hir"
	"github.com/ailang-mir/mlc/internal/mir"
	"github.com/ailang-mir/mlc/internal/rawast"
	"github.com/ailang-mir/mlc/internal/symbol"
	"github.com/ailang-mir/mlc/internal/typedast"
	"github.com/ailang-mir/mlc/internal/types"
)

// Config carries caller-controlled pipeline options — which intermediate
// representations get captured in Result for display, and whether any
// reported warning should be treated as fatal.
type Config struct {
	DumpCore      bool // capture the desugared core program
	DumpTyped     bool // capture the type-annotated program
	DumpHIR       bool // capture HIR vals
	WarningsFatal bool // treat any reported diag.Severity Warning as an error
}

// Source is one compilation unit: an already-parsed raw program plus an
// identifying name used only for diagnostics and the correlation ID
// (spec §6: no textual parser is implemented here, so Source always
// carries a pre-built *rawast.Program rather than source text).
type Source struct {
	Name    string
	Program *rawast.Program
}

// Result is the pipeline's full output for one compilation unit.
type Result struct {
	// CorrelationID identifies this run across diagnostics and logs —
	// stamped once per compilation unit (spec's DOMAIN STACK table).
	CorrelationID string
	Functions     []*mir.Function
	Diagnostics   []diag.Diagnostic
	PhaseTimings  map[string]time.Duration

	CoreDump  string
	TypedInfo *typedast.Info
	HIRDump   string
}

// Run drives every stage in order over src, threading one symbol.Table
// and one diag.Sink through the whole unit (spec §5's single-owner
// threading). It returns as much of Result as was computed even when a
// stage reports hard errors, so a caller can render partial diagnostics;
// Functions is only populated once every stage succeeds.
func Run(cfg Config, src Source) (Result, error) {
	result := Result{
		CorrelationID: uuid.NewString(),
		PhaseTimings:  make(map[string]time.Duration),
	}

	symbols := symbol.NewTable()
	sink := diag.NewSink()

	builtins := desugar.BuiltinSymbols(symbols)

	start := time.Now()
	d := desugar.NewDesugarer(symbols, sink)
	core := d.DesugarProgram(src.Program)
	result.PhaseTimings["desugar"] = time.Since(start)
	if sink.HasErrors() {
		result.Diagnostics = sink.All()
		return result, fmt.Errorf("pipeline[%s]: desugaring failed for %q", result.CorrelationID, src.Name)
	}
	if cfg.DumpCore {
		result.CoreDump = dumpDecls(core)
	}

	start = time.Now()
	checker := types.NewChecker(sink, builtins)
	typed := checker.CheckProgram(core)
	result.PhaseTimings["typecheck"] = time.Since(start)
	if sink.HasErrors() {
		result.Diagnostics = sink.All()
		return result, fmt.Errorf("pipeline[%s]: type checking failed for %q", result.CorrelationID, src.Name)
	}
	if cfg.DumpTyped {
		result.TypedInfo = typed.Info
	}

	start = time.Now()
	hirBuilder := hir.NewBuilder(symbols, checker.Ctors(), sink, typed.Info, builtins)
	vals := hirBuilder.Build(typed.Core)
	result.PhaseTimings["hir"] = time.Since(start)
	if sink.HasErrors() {
		result.Diagnostics = sink.All()
		return result, fmt.Errorf("pipeline[%s]: HIR construction failed for %q", result.CorrelationID, src.Name)
	}
	if cfg.DumpHIR {
		result.HIRDump = hir.Pretty(vals)
	}

	start = time.Now()
	mirBuilder := mir.NewBuilder(symbols)
	m := mirBuilder.Build(vals)
	result.PhaseTimings["mir"] = time.Since(start)

	result.Diagnostics = sink.All()
	if cfg.WarningsFatal && len(sink.Warnings()) > 0 {
		return result, fmt.Errorf("pipeline[%s]: warnings treated as fatal for %q", result.CorrelationID, src.Name)
	}

	result.Functions = m.Functions
	return result, nil
}

// dumpDecls renders a desugared program's top-level declarations one per
// line, each val/rec-val decl as "name = expr" (datatype decls by name),
// for the --dump-core CLI flag.
func dumpDecls(prog *coreast.Program) string {
	var lines []string
	for _, decl := range prog.Decls {
		switch d := decl.(type) {
		case *coreast.ValDecl:
			kw := "val"
			if d.Rec {
				kw = "val rec"
			}
			lines = append(lines, fmt.Sprintf("%s %s = %s", kw, d.Pattern, d.Expr))
		case *coreast.DatatypeDecl:
			names := make([]string, len(d.Ctors))
			for i, c := range d.Ctors {
				names[i] = c.Name
			}
			lines = append(lines, fmt.Sprintf("datatype %s = %s", d.Name, strings.Join(names, " | ")))
		default:
			lines = append(lines, fmt.Sprintf("%v", d))
		}
	}
	return strings.Join(lines, "\n")
}
