package formula

import (
	"github.com/shopspring/decimal"
)

// Expr is a node of the parsed formula tree. The node set is sealed: the
// unexported marker keeps the evaluator's type switch exhaustive. Nodes
// are immutable and may be evaluated any number of times against any
// number of contexts.
//
// Each node carries its evaluated result kind in its static type through
// the marker interfaces below: an Arith node can only be built over
// NumExpr operands, so arithmetic over a bare boolean does not compile.
// Heterogeneous sites (cell references, function calls, IF) are
// ValueExpr and must be wrapped in an explicit coercion node before they
// can feed a typed operation.
type Expr interface {
	isExpr()
}

// NumExpr evaluates to a decimal number.
type NumExpr interface {
	Expr
	numExpr()
}

// BoolExpr evaluates to a boolean.
type BoolExpr interface {
	Expr
	boolExpr()
}

// TextExpr evaluates to text.
type TextExpr interface {
	Expr
	textExpr()
}

// DateExpr evaluates to a calendar date.
type DateExpr interface {
	Expr
	dateExpr()
}

// ValueExpr evaluates to a scalar of a kind only known at evaluation
// time.
type ValueExpr interface {
	Expr
	valueExpr()
}

// Number is an exact decimal literal. Scientific notation parses through
// decimal with no intermediate float64.
type Number struct {
	Value decimal.Decimal
}

// Text is a quoted string literal.
type Text struct {
	Value string
}

// Bool is a TRUE/FALSE literal.
type Bool struct {
	Value bool
}

// CellRef references a single cell; an empty Sheet targets the current
// sheet, a non-empty Sheet requires a workbook at evaluation.
type CellRef struct {
	Sheet string
	Ref   Ref
}

// RangeRef references a rectangle of cells through a RangeLoc.
type RangeRef struct {
	Loc RangeLoc
}

// ArithOp enumerates the arithmetic operators.
type ArithOp uint8

const (
	OpAdd ArithOp = iota
	OpSub
	OpMul
	OpDiv
)

// Arith applies an arithmetic operator over two numeric operands.
type Arith struct {
	Op    ArithOp
	Left  NumExpr
	Right NumExpr
}

// Neg is unary minus.
type Neg struct {
	Operand NumExpr
}

// CmpOp enumerates the comparison operators.
type CmpOp uint8

const (
	OpEq CmpOp = iota
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

// Compare orders or equates two operands of any kind, producing a
// boolean.
type Compare struct {
	Op    CmpOp
	Left  Expr
	Right Expr
}

// LogicOp enumerates the binary logical operators.
type LogicOp uint8

const (
	OpAnd LogicOp = iota
	OpOr
)

// Logic is short-circuit AND/OR: the right operand is only evaluated
// when the left does not determine the result.
type Logic struct {
	Op    LogicOp
	Left  BoolExpr
	Right BoolExpr
}

// Not negates a boolean operand.
type Not struct {
	Operand BoolExpr
}

// Concat joins two text operands (the & operator).
type Concat struct {
	Left  TextExpr
	Right TextExpr
}

// If evaluates the condition and then exactly one branch; the unselected
// branch is never forced. The branches may produce any kind, so the node
// is a ValueExpr; wrap it in a coercion where a typed result is needed.
type If struct {
	Cond BoolExpr
	Then Expr
	Else Expr
}

// Agg applies a named aggregator to a range location. The parser emits
// it when a registered aggregate function is called on a single range.
type Agg struct {
	Name string
	Loc  RangeLoc
}

// Call invokes a registered function over a flat argument list. The
// function's ArgSpec validated the shape at parse time and re-parses the
// list into structured arguments at evaluation.
type Call struct {
	Name string
	Args []Expr
}

// Coercion wrappers: each performs a checked, recorded conversion at
// evaluation and prints transparently.

// ToNum coerces to a number (booleans 1/0, empty 0, numeric text).
type ToNum struct {
	E Expr
}

// ToBool coerces to a boolean (non-zero numbers true, empty false).
type ToBool struct {
	E Expr
}

// ToText coerces to display text.
type ToText struct {
	E Expr
}

// ToDate coerces to a calendar date (ISO text accepted).
type ToDate struct {
	E Expr
}

// ToValue lifts any expression into a heterogeneous site.
type ToValue struct {
	E Expr
}

func (*Number) isExpr()   {}
func (*Text) isExpr()     {}
func (*Bool) isExpr()     {}
func (*CellRef) isExpr()  {}
func (*RangeRef) isExpr() {}
func (*Arith) isExpr()    {}
func (*Neg) isExpr()      {}
func (*Compare) isExpr()  {}
func (*Logic) isExpr()    {}
func (*Not) isExpr()      {}
func (*Concat) isExpr()   {}
func (*If) isExpr()       {}
func (*Agg) isExpr()      {}
func (*Call) isExpr()     {}
func (*ToNum) isExpr()    {}
func (*ToBool) isExpr()   {}
func (*ToText) isExpr()   {}
func (*ToDate) isExpr()   {}
func (*ToValue) isExpr()  {}

func (*Number) numExpr() {}
func (*Arith) numExpr()  {}
func (*Neg) numExpr()    {}
func (*Agg) numExpr()    {}
func (*ToNum) numExpr()  {}

func (*Bool) boolExpr()    {}
func (*Compare) boolExpr() {}
func (*Logic) boolExpr()   {}
func (*Not) boolExpr()     {}
func (*ToBool) boolExpr()  {}

func (*Text) textExpr()   {}
func (*Concat) textExpr() {}
func (*ToText) textExpr() {}

func (*ToDate) dateExpr() {}

func (*CellRef) valueExpr()  {}
func (*RangeRef) valueExpr() {}
func (*If) valueExpr()       {}
func (*Call) valueExpr()     {}
func (*ToValue) valueExpr()  {}

// numOperand adapts an expression into a numeric operand, inserting the
// explicit coercion when the expression is not already numeric.
func numOperand(e Expr) NumExpr {
	if n, ok := e.(NumExpr); ok {
		return n
	}
	return &ToNum{E: e}
}

// boolOperand adapts an expression into a boolean operand.
func boolOperand(e Expr) BoolExpr {
	if b, ok := e.(BoolExpr); ok {
		return b
	}
	return &ToBool{E: e}
}

// textOperand adapts an expression into a text operand.
func textOperand(e Expr) TextExpr {
	if t, ok := e.(TextExpr); ok {
		return t
	}
	return &ToText{E: e}
}

// describeExpr names an expression's syntactic shape for error messages.
func describeExpr(e Expr) string {
	switch n := e.(type) {
	case *Number:
		return "number"
	case *Text:
		return "text"
	case *Bool:
		return "boolean"
	case *CellRef:
		return "cell reference"
	case *RangeRef:
		return "range"
	case *Arith, *Neg:
		return "numeric expression"
	case *Compare, *Logic, *Not:
		return "boolean expression"
	case *Concat:
		return "text expression"
	case *If:
		return "conditional"
	case *Agg, *Call:
		return "function call"
	case *ToNum:
		return describeExpr(n.E)
	case *ToBool:
		return describeExpr(n.E)
	case *ToText:
		return describeExpr(n.E)
	case *ToDate:
		return describeExpr(n.E)
	case *ToValue:
		return describeExpr(n.E)
	}
	return "expression"
}
