package hir

import (
	"fmt"
	"strings"
)

// Pretty renders a sequence of top-level Vals as indented text, grounded
// directly on original_source/src/hir/pp.rs's recursive indent-threading
// printer: each nested construct (let-bindings, a Fun's body, a Case arm)
// is printed four columns deeper than its parent.
func Pretty(vals []*Val) string {
	var b strings.Builder
	for _, v := range vals {
		prettyVal(&b, v, 0)
		b.WriteByte('\n')
	}
	return b.String()
}

func nspaces(n int) string { return strings.Repeat(" ", n) }

func prettyVal(b *strings.Builder, v *Val, indent int) {
	rec := ""
	if v.Rec {
		rec = "rec "
	}
	fmt.Fprintf(b, "%sval %s%s : %s = ", nspaces(indent), rec, v.Name, tyString(v.Ty))
	prettyExpr(b, v.Expr, indent+4)
}

func tyString(t Ty) string {
	if t == nil {
		return "?"
	}
	return t.String()
}

func prettyExpr(b *strings.Builder, e Expr, indent int) {
	switch e := e.(type) {
	case *Binds:
		ind := nspaces(indent)
		nextind := nspaces(indent + 4)
		b.WriteString("let\n")
		for _, val := range e.Binds {
			prettyVal(b, val, indent+4)
			b.WriteByte('\n')
		}
		fmt.Fprintf(b, "%sin\n%s", ind, nextind)
		prettyExpr(b, e.Ret, indent+4)
		fmt.Fprintf(b, "\n%send", ind)

	case *Fun:
		b.WriteString("fun(")
		for i, c := range e.Captures {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(c.Sym.String())
		}
		b.WriteString(") ")
		b.WriteString(e.Param.String())
		b.WriteString(" => ")
		prettyExpr(b, e.Body, indent+4)

	case *Closure:
		fmt.Fprintf(b, "<closure %s (", e.FName)
		for i, s := range e.Envs {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(s.String())
		}
		b.WriteString(")>")

	case *App:
		b.WriteString("(")
		prettyExpr(b, e.Fun, indent)
		b.WriteString(") ")
		prettyExpr(b, e.Arg, indent+4)

	case *Case:
		ind := nspaces(indent)
		b.WriteString("case ")
		prettyExpr(b, e.Scrutinee, indent+4)
		b.WriteString(" of")
		for _, arm := range e.Arms {
			fmt.Fprintf(b, "\n%s", ind)
			prettyPattern(b, arm.Pattern)
			b.WriteString(" => ")
			prettyExpr(b, arm.Body, indent+4)
		}

	case *Tuple:
		b.WriteString("(")
		for i, el := range e.Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			prettyExpr(b, el, indent)
		}
		b.WriteString(")")

	case *Proj:
		fmt.Fprintf(b, "#%d ", e.Index)
		prettyExpr(b, e.Tuple, indent+4)

	case *BuiltinCall:
		b.WriteString(e.Op.String())
		b.WriteString("(")
		for i, a := range e.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			prettyExpr(b, a, indent)
		}
		b.WriteString(")")

	case *ExternCall:
		fmt.Fprintf(b, "%q.%q(", e.Module, e.Fun)
		for i, a := range e.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			prettyExpr(b, a, indent)
		}
		b.WriteString(")")

	case *Constructor:
		if e.Arg == nil {
			fmt.Fprintf(b, "%d", e.Discriminant)
			return
		}
		fmt.Fprintf(b, "%d ", e.Discriminant)
		prettyExpr(b, e.Arg, indent)

	case *Sym:
		b.WriteString(e.Name.String())

	case *Lit:
		b.WriteString(e.Value.String())

	default:
		fmt.Fprintf(b, "<?%T>", e)
	}
}

func prettyPattern(b *strings.Builder, p Pattern) {
	switch p := p.(type) {
	case *ConstantPattern:
		fmt.Fprintf(b, "%d", p.Value)
	case *CharPattern:
		fmt.Fprintf(b, "#%q", p.Value)
	case *ConstructorPattern:
		if p.Arg == nil {
			fmt.Fprintf(b, "%d", p.Discriminant)
			return
		}
		fmt.Fprintf(b, "%d(%s)", p.Discriminant, p.Arg.Sym)
	case *TuplePattern:
		b.WriteString("(")
		for i, el := range p.Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			prettyPattern(b, el)
		}
		b.WriteString(")")
	case *VarPattern:
		b.WriteString(p.Sym.String())
	default:
		fmt.Fprintf(b, "<?%T>", p)
	}
}
