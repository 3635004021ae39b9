package formula

import "fmt"

// Arg is a structured argument produced by an ArgSpec from the flat
// argument list of a function call.
type Arg interface {
	isArg()
}

// ScalarArg holds a single expression, already wrapped in the coercion
// the spec asked for.
type ScalarArg struct {
	E Expr
}

// LazyArg holds a raw expression the function evaluates itself, or not
// at all (IF branches, IFERROR fallback, logical operands).
type LazyArg struct {
	E Expr
}

// RangeArg holds a range location still to be resolved against the
// evaluation context.
type RangeArg struct {
	Loc RangeLoc
}

// RefArg holds the syntactic cell-or-range reference node itself, for
// functions that operate on the shape of the reference rather than its
// evaluated value.
type RefArg struct {
	E Expr
}

// OptionalArg marks a trailing argument that may be absent.
type OptionalArg struct {
	Present bool
	A       Arg
}

// ListArg holds a variadic run.
type ListArg struct {
	Items []Arg
}

// PairArg is a fixed heterogeneous sequence built by composing two
// specs.
type PairArg struct {
	First  Arg
	Second Arg
}

// NumOrRangeArg is the mixed aggregate element: exactly one of Loc
// (a range) or E (a numeric or array-producing expression) is set.
type NumOrRangeArg struct {
	Loc *RangeLoc
	E   Expr
}

func (ScalarArg) isArg()     {}
func (LazyArg) isArg()       {}
func (RangeArg) isArg()      {}
func (RefArg) isArg()        {}
func (OptionalArg) isArg()   {}
func (ListArg) isArg()       {}
func (PairArg) isArg()       {}
func (NumOrRangeArg) isArg() {}

// ArgSpec describes the shape of a function's parameter list. parse
// consumes a strict prefix of the remaining flat argument list and
// returns the unconsumed remainder, so composed shapes thread correctly;
// render reconstructs the textual form of a parsed argument; mapRanges
// rewrites every embedded range location, which is how bounds narrowing
// reaches arguments of any shape.
type ArgSpec interface {
	parse(fn string, pos int, args []Expr) (Arg, []Expr, error)
	render(a Arg) []string
	mapRanges(a Arg, f func(RangeLoc) RangeLoc) Arg
	describe() string
}

// argScalar matches one expression coerced to the given kind.
// KindEmpty stands for "any scalar" and inserts no coercion beyond
// lifting into a heterogeneous site.
func argScalar(kind ValueKind) ArgSpec {
	return scalarSpec{kind: kind}
}

// argLazy matches one expression passed through unevaluated.
func argLazy(desc string) ArgSpec {
	return lazySpec{desc: desc}
}

// argRange matches a range reference.
func argRange() ArgSpec {
	return rangeSpec{}
}

// argRef matches a cell or range reference syntactically.
func argRef() ArgSpec {
	return refSpec{}
}

// argOpt wraps a spec as an optional trailing argument.
func argOpt(inner ArgSpec) ArgSpec {
	return optionalSpec{inner: inner}
}

// argMany matches one or more repetitions of the inner spec.
func argMany(inner ArgSpec) ArgSpec {
	return variadicSpec{inner: inner}
}

// argSeq composes specs into a fixed heterogeneous sequence,
// right-nested.
func argSeq(specs ...ArgSpec) ArgSpec {
	s := specs[len(specs)-1]
	for i := len(specs) - 2; i >= 0; i-- {
		s = seqSpec{head: specs[i], tail: s}
	}
	return s
}

// argNumOrRange matches the spreadsheet-style mixed aggregate element:
// a number, a range, or an array-producing expression.
func argNumOrRange() ArgSpec {
	return numOrRangeSpec{}
}

// argNone matches an empty argument list.
func argNone() ArgSpec {
	return noneSpec{}
}

type noneSpec struct{}

func (noneSpec) describe() string {
	return "no arguments"
}

func (noneSpec) parse(fn string, pos int, args []Expr) (Arg, []Expr, error) {
	return ListArg{}, args, nil
}

func (noneSpec) render(Arg) []string {
	return nil
}

func (noneSpec) mapRanges(a Arg, _ func(RangeLoc) RangeLoc) Arg {
	return a
}

type scalarSpec struct {
	kind ValueKind
}

func (s scalarSpec) describe() string {
	if s.kind == KindEmpty {
		return "value"
	}
	return s.kind.String()
}

func (s scalarSpec) parse(fn string, pos int, args []Expr) (Arg, []Expr, error) {
	if len(args) == 0 {
		return nil, nil, errInvalidArgs(fn, pos, s.describe(), "end of arguments")
	}
	e := args[0]
	if _, isRange := e.(*RangeRef); isRange {
		return nil, nil, errInvalidArgs(fn, pos, s.describe(), "range")
	}
	switch s.kind {
	case KindNumber:
		e = numOperand(e)
	case KindBool:
		e = boolOperand(e)
	case KindText:
		e = textOperand(e)
	case KindDate:
		if _, ok := e.(DateExpr); !ok {
			e = &ToDate{E: e}
		}
	default:
		if _, ok := e.(ValueExpr); !ok {
			e = &ToValue{E: e}
		}
	}
	return ScalarArg{E: e}, args[1:], nil
}

func (s scalarSpec) render(a Arg) []string {
	return []string{Print(a.(ScalarArg).E)}
}

func (s scalarSpec) mapRanges(a Arg, f func(RangeLoc) RangeLoc) Arg {
	return ScalarArg{E: mapExprRanges(a.(ScalarArg).E, f)}
}

type lazySpec struct {
	desc string
}

func (s lazySpec) describe() string {
	if s.desc != "" {
		return s.desc
	}
	return "expression"
}

func (s lazySpec) parse(fn string, pos int, args []Expr) (Arg, []Expr, error) {
	if len(args) == 0 {
		return nil, nil, errInvalidArgs(fn, pos, s.describe(), "end of arguments")
	}
	return LazyArg{E: args[0]}, args[1:], nil
}

func (s lazySpec) render(a Arg) []string {
	return []string{Print(a.(LazyArg).E)}
}

func (s lazySpec) mapRanges(a Arg, f func(RangeLoc) RangeLoc) Arg {
	return LazyArg{E: mapExprRanges(a.(LazyArg).E, f)}
}

type rangeSpec struct{}

func (rangeSpec) describe() string {
	return "range"
}

func (rangeSpec) parse(fn string, pos int, args []Expr) (Arg, []Expr, error) {
	if len(args) == 0 {
		return nil, nil, errInvalidArgs(fn, pos, "range", "end of arguments")
	}
	rr, ok := args[0].(*RangeRef)
	if !ok {
		return nil, nil, errInvalidArgs(fn, pos, "range", describeExpr(args[0]))
	}
	return RangeArg{Loc: rr.Loc}, args[1:], nil
}

func (rangeSpec) render(a Arg) []string {
	return []string{a.(RangeArg).Loc.String()}
}

func (rangeSpec) mapRanges(a Arg, f func(RangeLoc) RangeLoc) Arg {
	return RangeArg{Loc: f(a.(RangeArg).Loc)}
}

type refSpec struct{}

func (refSpec) describe() string {
	return "cell or range reference"
}

func (refSpec) parse(fn string, pos int, args []Expr) (Arg, []Expr, error) {
	if len(args) == 0 {
		return nil, nil, errInvalidArgs(fn, pos, "cell or range reference", "end of arguments")
	}
	switch args[0].(type) {
	case *CellRef, *RangeRef:
		return RefArg{E: args[0]}, args[1:], nil
	}
	return nil, nil, errInvalidArgs(fn, pos, "cell or range reference", describeExpr(args[0]))
}

func (refSpec) render(a Arg) []string {
	return []string{Print(a.(RefArg).E)}
}

func (refSpec) mapRanges(a Arg, f func(RangeLoc) RangeLoc) Arg {
	return RefArg{E: mapExprRanges(a.(RefArg).E, f)}
}

type optionalSpec struct {
	inner ArgSpec
}

func (s optionalSpec) describe() string {
	return "optional " + s.inner.describe()
}

func (s optionalSpec) parse(fn string, pos int, args []Expr) (Arg, []Expr, error) {
	if len(args) == 0 {
		return OptionalArg{}, args, nil
	}
	inner, rest, err := s.inner.parse(fn, pos, args)
	if err != nil {
		return nil, nil, err
	}
	return OptionalArg{Present: true, A: inner}, rest, nil
}

func (s optionalSpec) render(a Arg) []string {
	opt := a.(OptionalArg)
	if !opt.Present {
		return nil
	}
	return s.inner.render(opt.A)
}

func (s optionalSpec) mapRanges(a Arg, f func(RangeLoc) RangeLoc) Arg {
	opt := a.(OptionalArg)
	if !opt.Present {
		return opt
	}
	return OptionalArg{Present: true, A: s.inner.mapRanges(opt.A, f)}
}

type variadicSpec struct {
	inner ArgSpec
}

func (s variadicSpec) describe() string {
	return "one or more of " + s.inner.describe()
}

func (s variadicSpec) parse(fn string, pos int, args []Expr) (Arg, []Expr, error) {
	if len(args) == 0 {
		return nil, nil, errInvalidArgs(fn, pos, s.inner.describe(), "end of arguments")
	}
	var items []Arg
	rest := args
	for len(rest) > 0 {
		item, remaining, err := s.inner.parse(fn, pos+len(args)-len(rest), rest)
		if err != nil {
			return nil, nil, err
		}
		items = append(items, item)
		rest = remaining
	}
	return ListArg{Items: items}, rest, nil
}

func (s variadicSpec) render(a Arg) []string {
	var out []string
	for _, item := range a.(ListArg).Items {
		out = append(out, s.inner.render(item)...)
	}
	return out
}

func (s variadicSpec) mapRanges(a Arg, f func(RangeLoc) RangeLoc) Arg {
	list := a.(ListArg)
	items := make([]Arg, len(list.Items))
	for i, item := range list.Items {
		items[i] = s.inner.mapRanges(item, f)
	}
	return ListArg{Items: items}
}

type seqSpec struct {
	head ArgSpec
	tail ArgSpec
}

func (s seqSpec) describe() string {
	return s.head.describe() + ", " + s.tail.describe()
}

func (s seqSpec) parse(fn string, pos int, args []Expr) (Arg, []Expr, error) {
	first, rest, err := s.head.parse(fn, pos, args)
	if err != nil {
		return nil, nil, err
	}
	second, rest, err := s.tail.parse(fn, pos+len(args)-len(rest), rest)
	if err != nil {
		return nil, nil, err
	}
	return PairArg{First: first, Second: second}, rest, nil
}

func (s seqSpec) render(a Arg) []string {
	pair := a.(PairArg)
	return append(s.head.render(pair.First), s.tail.render(pair.Second)...)
}

func (s seqSpec) mapRanges(a Arg, f func(RangeLoc) RangeLoc) Arg {
	pair := a.(PairArg)
	return PairArg{
		First:  s.head.mapRanges(pair.First, f),
		Second: s.tail.mapRanges(pair.Second, f),
	}
}

type numOrRangeSpec struct{}

func (numOrRangeSpec) describe() string {
	return "number or range"
}

func (numOrRangeSpec) parse(fn string, pos int, args []Expr) (Arg, []Expr, error) {
	if len(args) == 0 {
		return nil, nil, errInvalidArgs(fn, pos, "number or range", "end of arguments")
	}
	if rr, ok := args[0].(*RangeRef); ok {
		loc := rr.Loc
		return NumOrRangeArg{Loc: &loc}, args[1:], nil
	}
	return NumOrRangeArg{E: args[0]}, args[1:], nil
}

func (numOrRangeSpec) render(a Arg) []string {
	nr := a.(NumOrRangeArg)
	if nr.Loc != nil {
		return []string{nr.Loc.String()}
	}
	return []string{Print(nr.E)}
}

func (numOrRangeSpec) mapRanges(a Arg, f func(RangeLoc) RangeLoc) Arg {
	nr := a.(NumOrRangeArg)
	if nr.Loc != nil {
		loc := f(*nr.Loc)
		return NumOrRangeArg{Loc: &loc}
	}
	return NumOrRangeArg{E: mapExprRanges(nr.E, f)}
}

// mapExprRanges rebuilds an expression with every embedded range location
// rewritten through f. Nodes without ranges are shared, not copied.
func mapExprRanges(e Expr, f func(RangeLoc) RangeLoc) Expr {
	switch n := e.(type) {
	case *RangeRef:
		return &RangeRef{Loc: f(n.Loc)}
	case *Agg:
		return &Agg{Name: n.Name, Loc: f(n.Loc)}
	case *Arith:
		return &Arith{Op: n.Op, Left: numOperand(mapExprRanges(n.Left, f)), Right: numOperand(mapExprRanges(n.Right, f))}
	case *Neg:
		return &Neg{Operand: numOperand(mapExprRanges(n.Operand, f))}
	case *Compare:
		return &Compare{Op: n.Op, Left: mapExprRanges(n.Left, f), Right: mapExprRanges(n.Right, f)}
	case *Logic:
		return &Logic{Op: n.Op, Left: boolOperand(mapExprRanges(n.Left, f)), Right: boolOperand(mapExprRanges(n.Right, f))}
	case *Not:
		return &Not{Operand: boolOperand(mapExprRanges(n.Operand, f))}
	case *Concat:
		return &Concat{Left: textOperand(mapExprRanges(n.Left, f)), Right: textOperand(mapExprRanges(n.Right, f))}
	case *If:
		return &If{Cond: boolOperand(mapExprRanges(n.Cond, f)), Then: mapExprRanges(n.Then, f), Else: mapExprRanges(n.Else, f)}
	case *Call:
		args := make([]Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = mapExprRanges(a, f)
		}
		return &Call{Name: n.Name, Args: args}
	case *ToNum:
		return &ToNum{E: mapExprRanges(n.E, f)}
	case *ToBool:
		return &ToBool{E: mapExprRanges(n.E, f)}
	case *ToText:
		return &ToText{E: mapExprRanges(n.E, f)}
	case *ToDate:
		return &ToDate{E: mapExprRanges(n.E, f)}
	case *ToValue:
		return &ToValue{E: mapExprRanges(n.E, f)}
	}
	return e
}

// Arity is a function's accepted argument-count contract.
type Arity struct {
	Min int
	Max int // negative means unbounded
}

func Exactly(n int) Arity {
	return Arity{Min: n, Max: n}
}

func AtLeast(n int) Arity {
	return Arity{Min: n, Max: -1}
}

func Between(min, max int) Arity {
	return Arity{Min: min, Max: max}
}

func (a Arity) check(fn string, n int) error {
	if n >= a.Min && (a.Max < 0 || n <= a.Max) {
		return nil
	}
	var expected string
	switch {
	case a.Max < 0:
		expected = fmt.Sprintf("at least %d argument(s)", a.Min)
	case a.Min == a.Max:
		expected = fmt.Sprintf("exactly %d argument(s)", a.Min)
	default:
		expected = fmt.Sprintf("between %d and %d arguments", a.Min, a.Max)
	}
	return errInvalidArgs(fn, n, expected, fmt.Sprintf("%d argument(s)", n))
}
