package main

import (
	"github.com/ailang-mir/mlc/internal/pipeline"
	"github.com/ailang-mir/mlc/internal/rawast"
)

// example is one canned program the CLI/REPL can run through the
// pipeline without a parser (spec §6's external-parser boundary; the
// teacher's cmd/typecheck/demo_ast.go builds trees by hand for the same
// reason). Each corresponds to one of the concrete scenarios the
// pipeline's testable properties are checked against.
type example struct {
	name        string
	description string
	build       func() *rawast.Program
}

func pos() rawast.Pos { return rawast.Pos{File: "<example>", Line: 1, Column: 1} }

func litInt(n int64) *rawast.LitExpr {
	return &rawast.LitExpr{Lit: rawast.Lit{Kind: rawast.IntLit, Int: n}, Pos: pos()}
}

var examples = []example{
	{
		name:        "literal",
		description: `val x = 1`,
		build: func() *rawast.Program {
			return &rawast.Program{Decls: []rawast.Decl{
				&rawast.ValDecl{Pattern: &rawast.VarPattern{Name: "x", Pos: pos()}, Expr: litInt(1), Pos: pos()},
			}}
		},
	},
	{
		name:        "add",
		description: `val x = 1 + 2`,
		build: func() *rawast.Program {
			return &rawast.Program{Decls: []rawast.Decl{
				&rawast.ValDecl{
					Pattern: &rawast.VarPattern{Name: "x", Pos: pos()},
					Expr:    &rawast.InfixExpr{Op: "+", Left: litInt(1), Right: litInt(2), Pos: pos()},
					Pos:     pos(),
				},
			}}
		},
	},
	{
		name:        "precedence",
		description: `val x = 1 + 2 * 3`,
		build: func() *rawast.Program {
			// Handed to the desugarer as a flat left-leaning tree; fixity
			// resolution (the default `*` > `+` priority table) reorders
			// it to 1 + (2 * 3) regardless of the raw tree's own shape.
			sum := &rawast.InfixExpr{Op: "+", Left: litInt(1), Right: litInt(2), Pos: pos()}
			full := &rawast.InfixExpr{Op: "*", Left: sum, Right: litInt(3), Pos: pos()}
			return &rawast.Program{Decls: []rawast.Decl{
				&rawast.ValDecl{Pattern: &rawast.VarPattern{Name: "x", Pos: pos()}, Expr: full, Pos: pos()},
			}}
		},
	},
	{
		name:        "nonexhaustive-fun",
		description: `fun f Nil _ = Nil | f _ Nil = Nil (missing the (Cons,Cons) case)`,
		build: func() *rawast.Program {
			listDecl := &rawast.DatatypeDecl{
				Name: "list",
				Ctors: []rawast.CtorDecl{
					{Name: "Nil"},
					{Name: "Cons", Arg: rawast.NamedTypeExpr{Name: "list"}},
				},
				Pos: pos(),
			}
			nilExpr := &rawast.IdentExpr{Name: "Nil", Pos: pos()}
			fDecl := &rawast.FunDecl{
				Clauses: []rawast.FunClause{
					{
						Name:   "f",
						Params: []rawast.Pattern{&rawast.CtorPattern{Name: "Nil", Pos: pos()}, &rawast.WildcardPattern{Pos: pos()}},
						Body:   nilExpr,
						Pos:    pos(),
					},
					{
						Name:   "f",
						Params: []rawast.Pattern{&rawast.WildcardPattern{Pos: pos()}, &rawast.CtorPattern{Name: "Nil", Pos: pos()}},
						Body:   nilExpr,
						Pos:    pos(),
					},
				},
				Pos: pos(),
			}
			return &rawast.Program{Decls: []rawast.Decl{listDecl, fDecl}}
		},
	},
	{
		name:        "tuple-decompose",
		description: `val x = case (1,2,3) of (x,y,z) => z`,
		build: func() *rawast.Program {
			scrut := &rawast.TupleExpr{Elems: []rawast.Expr{litInt(1), litInt(2), litInt(3)}, Pos: pos()}
			caseExpr := &rawast.CaseExpr{
				Scrutinee: scrut,
				Arms: []rawast.CaseArm{{
					Pattern: &rawast.TuplePattern{Elems: []rawast.Pattern{
						&rawast.VarPattern{Name: "x", Pos: pos()},
						&rawast.VarPattern{Name: "y", Pos: pos()},
						&rawast.VarPattern{Name: "z", Pos: pos()},
					}, Pos: pos()},
					Body: &rawast.IdentExpr{Name: "z", Pos: pos()},
				}},
				Pos: pos(),
			}
			return &rawast.Program{Decls: []rawast.Decl{
				&rawast.ValDecl{Pattern: &rawast.VarPattern{Name: "x", Pos: pos()}, Expr: caseExpr, Pos: pos()},
			}}
		},
	},
	{
		name:        "order-nonexhaustive",
		description: `datatype order = GREATER | EQUAL | LESS; case on it omitting LESS`,
		build: func() *rawast.Program {
			orderDecl := &rawast.DatatypeDecl{
				Name: "order",
				Ctors: []rawast.CtorDecl{
					{Name: "GREATER"}, {Name: "EQUAL"}, {Name: "LESS"},
				},
				Pos: pos(),
			}
			caseExpr := &rawast.CaseExpr{
				Scrutinee: &rawast.IdentExpr{Name: "GREATER", Pos: pos()},
				Arms: []rawast.CaseArm{
					{Pattern: &rawast.CtorPattern{Name: "GREATER", Pos: pos()}, Body: litInt(1)},
					{Pattern: &rawast.CtorPattern{Name: "EQUAL", Pos: pos()}, Body: litInt(0)},
				},
				Pos: pos(),
			}
			return &rawast.Program{Decls: []rawast.Decl{
				orderDecl,
				&rawast.ValDecl{Pattern: &rawast.VarPattern{Name: "x", Pos: pos()}, Expr: caseExpr, Pos: pos()},
			}}
		},
	},
}

func findExample(name string) (example, bool) {
	for _, ex := range examples {
		if ex.name == name {
			return ex, true
		}
	}
	return example{}, false
}

func runExample(ex example, cfg pipeline.Config) (pipeline.Result, error) {
	return pipeline.Run(cfg, pipeline.Source{Name: ex.name, Program: ex.build()})
}
