// Package symbol provides the compiler-wide symbol table.
//
// A Symbol pairs a printable name with a generation counter; equality is
// structural over both fields, so two symbols with the same printed name
// are distinct unless they share a generation (i.e. unless they came from
// the same Fresh/Intern call). The table is the one piece of mutable state
// threaded explicitly through the whole pipeline (see internal/pipeline).
package symbol

import (
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// Symbol is a name disambiguated by a generation counter.
type Symbol struct {
	Hint string
	Gen  int
}

// String renders the symbol in hint$gen form, used by every IR printer.
func (s Symbol) String() string {
	if s.Gen == 0 {
		return s.Hint
	}
	return fmt.Sprintf("%s$%d", s.Hint, s.Gen)
}

// Equal reports structural equality over both the hint and the generation.
func (s Symbol) Equal(o Symbol) bool {
	return s.Hint == o.Hint && s.Gen == o.Gen
}

// Table is the process-wide (per compilation unit) symbol generator.
//
// It is not safe for concurrent use from multiple goroutines; per §5 of the
// specification, the symbol-fresh counter has a single owner threaded
// through the pipeline by construction. A future per-function-parallel
// pipeline would need to replace the plain counter with a contention-safe
// monotonic one, without changing the total order of symbols within a
// function.
type Table struct {
	counter int
	names   map[string]Symbol // source name -> symbol, for scope-resolved interning
}

// NewTable creates an empty symbol table.
func NewTable() *Table {
	return &Table{names: make(map[string]Symbol)}
}

// Fresh allocates a symbol never handed out before, whose printed form is
// hint disambiguated by a counter. Unicode hints are NFC-normalized first
// so that lexically-equal-but-differently-encoded hints never diverge —
// the one input-boundary normalization this repo owns, since there is no
// lexer here (cf. the teacher's Normalize at the lexer boundary).
func (t *Table) Fresh(hint string) Symbol {
	t.counter++
	return Symbol{Hint: normalizeHint(hint), Gen: t.counter}
}

// Intern returns the symbol for a source-introduced name, creating one on
// first use. Two identical source names passed to the same Table instance
// produce equal symbols unless a Rebind or Restore of that name happened
// in between, modeling "refers to the same
// binding after scope resolution." Callers that need a fresh binding for a
// shadowing occurrence must call Fresh, then register it themselves via
// Rebind so that subsequent uses in the new scope resolve to it.
func (t *Table) Intern(name string) Symbol {
	name = normalizeHint(name)
	if sym, ok := t.names[name]; ok {
		return sym
	}
	t.counter++
	sym := Symbol{Hint: name, Gen: t.counter}
	t.names[name] = sym
	return sym
}

// Rebind forces subsequent Intern(name) calls to resolve to sym, used when
// entering a new lexical scope that shadows name (e.g. a lambda parameter,
// a case-arm binder). Callers must restore the previous binding (if any) on
// scope exit; Table does not maintain a scope stack itself.
func (t *Table) Rebind(name string, sym Symbol) (previous Symbol, hadPrevious bool) {
	name = normalizeHint(name)
	previous, hadPrevious = t.names[name]
	t.names[name] = sym
	return previous, hadPrevious
}

// Restore reinstates a binding previously displaced by Rebind, or removes
// it entirely if hadPrevious is false.
func (t *Table) Restore(name string, previous Symbol, hadPrevious bool) {
	name = normalizeHint(name)
	if hadPrevious {
		t.names[name] = previous
	} else {
		delete(t.names, name)
	}
}

// Lookup returns the symbol currently bound to name, if any.
func (t *Table) Lookup(name string) (Symbol, bool) {
	sym, ok := t.names[normalizeHint(name)]
	return sym, ok
}

func normalizeHint(hint string) string {
	if norm.NFC.IsNormalString(hint) {
		return hint
	}
	return norm.NFC.String(hint)
}
