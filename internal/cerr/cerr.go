// Package cerr defines the compiler's error taxonomy (spec §7): typed
// errors and warnings for each stage, plus the internal-invariant-violation
// kind that has no recovery. Every value here implements error so it can be
// reported through a diag.Sink, and carries a short Code for the AI/tool-
// friendly structured-reporting convention the teacher's internal/errors
// package established (PAR###/MOD### etc.) — ours uses DES/TYP/WARN/INT.
package cerr

import "fmt"

// DesugarError is raised while resolving infix precedence, expanding `if`/
// `fun`/builtin-call syntax, or registering datatypes (spec §4.2).
type DesugarError struct {
	Code    string
	Message string
}

func (e *DesugarError) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

func ClauseNameMismatch(first, other string) *DesugarError {
	return &DesugarError{Code: "DES001", Message: fmt.Sprintf(
		"fun clauses must all name the same function: %q vs %q", first, other)}
}

func UnknownBuiltin(name string) *DesugarError {
	return &DesugarError{Code: "DES002", Message: fmt.Sprintf("unknown builtin %q", name)}
}

func InfixArityMismatch(op string, got int) *DesugarError {
	return &DesugarError{Code: "DES003", Message: fmt.Sprintf(
		"infix operator %q applied to %d arguments, expected 2", op, got)}
}

func UnknownOperator(op string) *DesugarError {
	return &DesugarError{Code: "DES004", Message: fmt.Sprintf("undeclared infix operator %q", op)}
}

func ClauseArityMismatch(name string, want, got int) *DesugarError {
	return &DesugarError{Code: "DES005", Message: fmt.Sprintf(
		"fun clause for %q has %d parameter(s), expected %d", name, got, want)}
}

func NonVariableRecBinding() *DesugarError {
	return &DesugarError{Code: "DES006", Message: "recursive val must bind a single variable"}
}

// TypeError is raised by the Hindley-Milner inferencer (spec §4.3).
type TypeError struct {
	Code     string
	Message  string
	Expected fmt.Stringer
	Actual   fmt.Stringer
}

func (e *TypeError) Error() string {
	if e.Expected != nil && e.Actual != nil {
		return fmt.Sprintf("%s: %s (expected %s, got %s)", e.Code, e.Message, e.Expected, e.Actual)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func Unify(expected, actual fmt.Stringer) *TypeError {
	return &TypeError{Code: "TYP001", Message: "cannot unify types", Expected: expected, Actual: actual}
}

func UnboundSymbol(name string) *TypeError {
	return &TypeError{Code: "TYP002", Message: fmt.Sprintf("unbound symbol %q", name)}
}

func ArityMismatch(want, got int) *TypeError {
	return &TypeError{Code: "TYP003", Message: fmt.Sprintf("arity mismatch: expected %d argument(s), got %d", want, got)}
}

func ConstructorArityMismatch(ctor string, wantsArg bool) *TypeError {
	if wantsArg {
		return &TypeError{Code: "TYP004", Message: fmt.Sprintf("constructor %q requires an argument", ctor)}
	}
	return &TypeError{Code: "TYP004", Message: fmt.Sprintf("constructor %q takes no argument", ctor)}
}

func DuplicateBinding(name string) *TypeError {
	return &TypeError{Code: "TYP005", Message: fmt.Sprintf("duplicate binding %q in recursive group", name)}
}

// Warning is a non-fatal diagnostic surfaced alongside a successful result
// (spec §7): NonExhaustive / RedundantArm / UnusedBinding.
type Warning struct {
	Code    string
	Message string
}

func (w *Warning) Error() string { return fmt.Sprintf("%s: %s", w.Code, w.Message) }

func NonExhaustive(missing []string) *Warning {
	return &Warning{Code: "WARN001", Message: fmt.Sprintf("non-exhaustive match, missing: %v", missing)}
}

func RedundantArm(index int) *Warning {
	return &Warning{Code: "WARN002", Message: fmt.Sprintf("redundant match arm at index %d", index)}
}

func UnusedBinding(name string) *Warning {
	return &Warning{Code: "WARN003", Message: fmt.Sprintf("unused binding %q", name)}
}

// Internal marks a violated invariant (e.g. an unresolved jump target): a
// bug in this compiler, not a user-facing condition. There is no recovery;
// callers should panic with it rather than propagate it as a normal error
// (spec §4.6, §7).
type Internal struct {
	Message string
}

func (e *Internal) Error() string { return fmt.Sprintf("internal error: %s", e.Message) }

// Panic raises an Internal error via panic, the policy spec §7 mandates
// for violated invariants ("no recovery possible — the IR would be
// inconsistent").
func Panic(format string, args ...interface{}) {
	panic(&Internal{Message: fmt.Sprintf(format, args...)})
}
