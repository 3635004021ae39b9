package formula

import (
	"strings"
)

// Print renders the tree back into canonical formula text, reinserting
// parentheses only where operator precedence requires them. For every
// syntactically valid input s, Parse(Print(Parse(s))) is structurally
// equal to Parse(s). Coercion nodes print transparently; the parser
// reinserts them deterministically on the way back.
func Print(e Expr) string {
	var b strings.Builder
	printExpr(&b, e, 0)
	return b.String()
}

// operator precedence levels, loosest first
const (
	precCompare = 1
	precConcat  = 2
	precAdd     = 3
	precMul     = 4
	precUnary   = 5
	precAtom    = 6
)

func exprPrec(e Expr) int {
	switch n := e.(type) {
	case *Compare:
		return precCompare
	case *Concat:
		return precConcat
	case *Arith:
		if n.Op == OpAdd || n.Op == OpSub {
			return precAdd
		}
		return precMul
	case *Neg:
		return precUnary
	case *ToNum:
		return exprPrec(n.E)
	case *ToBool:
		return exprPrec(n.E)
	case *ToText:
		return exprPrec(n.E)
	case *ToDate:
		return exprPrec(n.E)
	case *ToValue:
		return exprPrec(n.E)
	}
	return precAtom
}

// printExpr writes e, parenthesizing when its precedence is looser than
// the position requires. Right operands of binary operators pass their
// own precedence plus one so structure like a-(b-c) keeps its parens.
func printExpr(b *strings.Builder, e Expr, minPrec int) {
	if p := exprPrec(e); p < minPrec {
		b.WriteByte('(')
		printBare(b, e)
		b.WriteByte(')')
		return
	}
	printBare(b, e)
}

func printBare(b *strings.Builder, e Expr) {
	switch n := e.(type) {
	case *Number:
		b.WriteString(n.Value.String())

	case *Text:
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(n.Value, `"`, `""`))
		b.WriteByte('"')

	case *Bool:
		if n.Value {
			b.WriteString("TRUE")
		} else {
			b.WriteString("FALSE")
		}

	case *CellRef:
		if n.Sheet != "" {
			b.WriteString(quoteSheetName(n.Sheet))
			b.WriteByte('!')
		}
		b.WriteString(n.Ref.String())

	case *RangeRef:
		b.WriteString(n.Loc.String())

	case *Arith:
		p := exprPrec(n)
		printExpr(b, n.Left, p)
		b.WriteString(arithOpText(n.Op))
		printExpr(b, n.Right, p+1)

	case *Neg:
		b.WriteByte('-')
		printExpr(b, n.Operand, precUnary)

	case *Compare:
		printExpr(b, n.Left, precCompare)
		b.WriteString(cmpOpText(n.Op))
		printExpr(b, n.Right, precCompare+1)

	case *Concat:
		printExpr(b, n.Left, precConcat)
		b.WriteByte('&')
		printExpr(b, n.Right, precConcat+1)

	case *Logic:
		if n.Op == OpAnd {
			b.WriteString("AND(")
		} else {
			b.WriteString("OR(")
		}
		printExpr(b, n.Left, 0)
		b.WriteByte(',')
		printExpr(b, n.Right, 0)
		b.WriteByte(')')

	case *Not:
		b.WriteString("NOT(")
		printExpr(b, n.Operand, 0)
		b.WriteByte(')')

	case *If:
		b.WriteString("IF(")
		printExpr(b, n.Cond, 0)
		b.WriteByte(',')
		printExpr(b, n.Then, 0)
		b.WriteByte(',')
		printExpr(b, n.Else, 0)
		b.WriteByte(')')

	case *Agg:
		b.WriteString(n.Name)
		b.WriteByte('(')
		b.WriteString(n.Loc.String())
		b.WriteByte(')')

	case *Call:
		b.WriteString(n.Name)
		b.WriteByte('(')
		for i, arg := range n.Args {
			if i > 0 {
				b.WriteByte(',')
			}
			printExpr(b, arg, 0)
		}
		b.WriteByte(')')

	case *ToNum:
		printBare(b, n.E)
	case *ToBool:
		printBare(b, n.E)
	case *ToText:
		printBare(b, n.E)
	case *ToDate:
		printBare(b, n.E)
	case *ToValue:
		printBare(b, n.E)
	}
}

func arithOpText(op ArithOp) string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	}
	return "/"
}

func cmpOpText(op CmpOp) string {
	switch op {
	case OpEq:
		return "="
	case OpNe:
		return "<>"
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	}
	return ">="
}
