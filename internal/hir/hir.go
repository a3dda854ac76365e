// Package hir is the High-level Intermediate Representation spec §4.5
// describes: the decision tree compiler's output closure-converted into
// explicit capture lists, ready for the MIR/CFG lowerer. Every nested
// lambda is lambda-lifted to a top-level binding; a use site instead
// builds a Closure value over that binding's name and its captured
// environment.
//
// Node shapes are grounded on original_source/src/hir/pp.rs: HIR is a
// list of Val bindings, each Val pairing a name with a typed Expr. Proj is
// the only structural-projection primitive (tuples only — a constructor's
// argument, when present, is bound directly by the Case pattern that
// matches it, never projected after the fact).
package hir

import (
	"fmt"
	"strings"

	"github.com/ailang-mir/mlc/internal/coreast"
	"github.com/ailang-mir/mlc/internal/symbol"
)

// Ty is an HIR-level monomorphic type, carried alongside every binding
// for the MIR lowerer's benefit (spec §4.5/§4.6).
type Ty interface {
	htyNode()
	String() string
}

type TChar struct{}
type TInt struct{}
type TReal struct{}

func (TChar) htyNode() {}
func (TInt) htyNode()  {}
func (TReal) htyNode() {}
func (TChar) String() string { return "char" }
func (TInt) String() string  { return "int" }
func (TReal) String() string { return "real" }

type TTuple struct{ Elems []Ty }

func (TTuple) htyNode() {}
func (t TTuple) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, " * ") + ")"
}

type TFun struct{ From, To Ty }

func (TFun) htyNode() {}
func (t TFun) String() string { return fmt.Sprintf("%s -> %s", t.From, t.To) }

type TDatatype struct{ Name string }

func (TDatatype) htyNode()    {}
func (t TDatatype) String() string { return t.Name }

// Val is one top-level binding: either a lambda-lifted function
// definition or an ordinary (possibly recursive) value.
type Val struct {
	Rec  bool
	Name symbol.Symbol
	Ty   Ty
	Expr Expr
}

func (v *Val) String() string {
	rec := ""
	if v.Rec {
		rec = "rec "
	}
	return fmt.Sprintf("val %s%s : %s = %s", rec, v.Name, v.Ty, v.Expr)
}

// Expr is an HIR expression.
type Expr interface {
	exprNode()
	String() string
}

// Binds is a nested non-recursive-by-construction let: each Val in Binds
// may itself be Rec, but the list as a whole is elaborated in order
// (spec §4.5's closure-conversion intermediates — pattern-match bindings
// and tuple decomposition both lower to this).
type Binds struct {
	Binds []*Val
	Ret   Expr
}

func (*Binds) exprNode() {}
func (b *Binds) String() string {
	parts := make([]string, len(b.Binds))
	for i, v := range b.Binds {
		parts[i] = v.String()
	}
	return fmt.Sprintf("let %s in %s end", strings.Join(parts, "; "), b.Ret)
}

// Capture is one free variable a Fun closes over, in the order the
// Closure value at its use site must supply them.
type Capture struct {
	Sym symbol.Symbol
	Ty  Ty
}

// Fun is a lambda-lifted function definition: a single parameter, a body,
// and the ordered list of free variables it captures from its defining
// scope (spec §4.5). Fun values never appear inline at a use site — see
// Closure.
type Fun struct {
	Param    symbol.Symbol
	ParamTy  Ty
	Body     Expr
	Captures []Capture
}

func (*Fun) exprNode() {}
func (f *Fun) String() string {
	caps := make([]string, len(f.Captures))
	for i, c := range f.Captures {
		caps[i] = c.Sym.String()
	}
	return fmt.Sprintf("fun(%s) %s => %s", strings.Join(caps, ", "), f.Param, f.Body)
}

// Closure builds a function value from a lambda-lifted Fun's name and the
// current values of the captures it declared, in the same order.
type Closure struct {
	FName symbol.Symbol
	Envs  []symbol.Symbol
}

func (*Closure) exprNode() {}
func (c *Closure) String() string {
	envs := make([]string, len(c.Envs))
	for i, e := range c.Envs {
		envs[i] = e.String()
	}
	return fmt.Sprintf("<closure %s (%s)>", c.FName, strings.Join(envs, ", "))
}

type App struct{ Fun, Arg Expr }

func (*App) exprNode()       {}
func (a *App) String() string { return fmt.Sprintf("(%s) %s", a.Fun, a.Arg) }

// CaseArm pairs one flat (non-nested) pattern with its continuation,
// exactly the shape the decision tree compiler's Switch nodes produce.
type CaseArm struct {
	Pattern Pattern
	Body    Expr
}

type Case struct {
	Scrutinee Expr
	Arms      []CaseArm
}

func (*Case) exprNode() {}
func (c *Case) String() string {
	parts := make([]string, len(c.Arms))
	for i, a := range c.Arms {
		parts[i] = fmt.Sprintf("%s => %s", a.Pattern, a.Body)
	}
	return fmt.Sprintf("case %s of %s", c.Scrutinee, strings.Join(parts, " | "))
}

type Tuple struct{ Elems []Expr }

func (*Tuple) exprNode() {}
func (t *Tuple) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

type Proj struct {
	Index int
	Tuple Expr
}

func (*Proj) exprNode()       {}
func (p *Proj) String() string { return fmt.Sprintf("#%d %s", p.Index, p.Tuple) }

type BuiltinCall struct {
	Op   coreast.BuiltinOp
	Args []Expr
}

func (*BuiltinCall) exprNode() {}
func (b *BuiltinCall) String() string { return fmt.Sprintf("%s%v", b.Op, b.Args) }

type ExternCall struct {
	Module, Fun string
	Args        []Expr
}

func (*ExternCall) exprNode() {}
func (e *ExternCall) String() string { return fmt.Sprintf("%q.%q(%v)", e.Module, e.Fun, e.Args) }

// Constructor builds a datatype value. Discriminant is the dense tag
// assigned at desugar time (spec invariant 5); Arg is nil for a nullary
// constructor.
type Constructor struct {
	Discriminant int
	Name         string
	Arg          Expr
}

func (*Constructor) exprNode() {}
func (c *Constructor) String() string {
	if c.Arg == nil {
		return c.Name
	}
	return fmt.Sprintf("%s %s", c.Name, c.Arg)
}

type Sym struct{ Name symbol.Symbol }

func (*Sym) exprNode()       {}
func (s *Sym) String() string { return s.Name.String() }

type Lit struct{ Value coreast.Lit }

func (*Lit) exprNode()       {}
func (l *Lit) String() string { return l.Value.String() }

// Pattern is a flat (single-level) pattern, the shape every decision-tree
// Switch arm reduces to once mid-tree Bind/Decompose steps have already
// materialized any deeper structure as ordinary Binds.
type Pattern interface {
	patternNode()
	String() string
}

type ConstantPattern struct{ Value int64 }

func (*ConstantPattern) patternNode()  {}
func (p *ConstantPattern) String() string { return fmt.Sprintf("%d", p.Value) }

type CharPattern struct{ Value rune }

func (*CharPattern) patternNode()  {}
func (p *CharPattern) String() string { return fmt.Sprintf("#%q", p.Value) }

// PatternBinding names the variable a matched constructor's argument is
// bound to, and its type.
type PatternBinding struct {
	Ty  Ty
	Sym symbol.Symbol
}

type ConstructorPattern struct {
	Discriminant int
	Name         string
	Arg          *PatternBinding // nil for a nullary constructor
}

func (*ConstructorPattern) patternNode() {}
func (p *ConstructorPattern) String() string {
	if p.Arg == nil {
		return p.Name
	}
	return fmt.Sprintf("%s(%s)", p.Name, p.Arg.Sym)
}

type TuplePattern struct{ Elems []Pattern }

func (*TuplePattern) patternNode() {}
func (p *TuplePattern) String() string {
	parts := make([]string, len(p.Elems))
	for i, e := range p.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// VarPattern always matches, binding the value to Sym — used both for a
// source-level variable pattern and as the catch-all arm the decision
// tree's Default subtree lowers to.
type VarPattern struct{ Sym symbol.Symbol }

func (*VarPattern) patternNode()  {}
func (p *VarPattern) String() string { return p.Sym.String() }
