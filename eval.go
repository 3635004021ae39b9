package formula

import (
	"github.com/shopspring/decimal"
)

// evalValue reduces an expression tree to a scalar against the given
// context. Evaluation is total: every failure mode is an explicit
// EvalError and nothing panics. Logical operators short-circuit, IF
// forces only the selected branch, and errors propagate outward from
// the first strict operand that produced one.
func evalValue(e Expr, ctx *Context) (Value, error) {
	switch n := e.(type) {
	case *Number:
		return NumberValue(n.Value), nil

	case *Text:
		return TextValue(n.Value), nil

	case *Bool:
		return BoolValue(n.Value), nil

	case *CellRef:
		sheet, err := resolveSheet(n.Sheet, ctx)
		if err != nil {
			return Value{}, err
		}
		return liftCell(sheet, n.Ref, ctx)

	case *RangeRef:
		// a bare range in scalar position collapses only when it covers a
		// single cell
		sheet, rng, err := resolveLoc(n.Loc, ctx)
		if err != nil {
			return Value{}, err
		}
		if rng.Height() == 1 && rng.Width() == 1 {
			return liftCell(sheet, rng.Start, ctx)
		}
		return Value{}, errEval("range %s used as a scalar value", n.Loc)

	case *Arith:
		left, err := evalValue(n.Left, ctx)
		if err != nil {
			return Value{}, err
		}
		right, err := evalValue(n.Right, ctx)
		if err != nil {
			return Value{}, err
		}
		return applyArith(n.Op, left.Num, right.Num)

	case *Neg:
		v, err := evalValue(n.Operand, ctx)
		if err != nil {
			return Value{}, err
		}
		return NumberValue(v.Num.Neg()), nil

	case *Compare:
		left, err := evalValue(n.Left, ctx)
		if err != nil {
			return Value{}, err
		}
		right, err := evalValue(n.Right, ctx)
		if err != nil {
			return Value{}, err
		}
		switch n.Op {
		case OpEq:
			return BoolValue(equalValues(left, right)), nil
		case OpNe:
			return BoolValue(!equalValues(left, right)), nil
		}
		cmp, err := compareValues(left, right)
		if err != nil {
			return Value{}, err
		}
		switch n.Op {
		case OpLt:
			return BoolValue(cmp < 0), nil
		case OpLe:
			return BoolValue(cmp <= 0), nil
		case OpGt:
			return BoolValue(cmp > 0), nil
		}
		return BoolValue(cmp >= 0), nil

	case *Logic:
		left, err := evalValue(n.Left, ctx)
		if err != nil {
			return Value{}, err
		}
		if n.Op == OpAnd && !left.Bool {
			return BoolValue(false), nil
		}
		if n.Op == OpOr && left.Bool {
			return BoolValue(true), nil
		}
		right, err := evalValue(n.Right, ctx)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(right.Bool), nil

	case *Not:
		v, err := evalValue(n.Operand, ctx)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(!v.Bool), nil

	case *Concat:
		left, err := evalValue(n.Left, ctx)
		if err != nil {
			return Value{}, err
		}
		right, err := evalValue(n.Right, ctx)
		if err != nil {
			return Value{}, err
		}
		return TextValue(left.Str + right.Str), nil

	case *If:
		cond, err := evalValue(n.Cond, ctx)
		if err != nil {
			return Value{}, err
		}
		if cond.Bool {
			return evalValue(n.Then, ctx)
		}
		return evalValue(n.Else, ctx)

	case *Agg:
		return evalAggregate(n.Name, n.Loc, ctx)

	case *Call:
		return evalCall(n, ctx)

	case *ToNum:
		v, err := evalValue(n.E, ctx)
		if err != nil {
			return Value{}, err
		}
		d, err := v.AsNumber("coercion")
		if err != nil {
			return Value{}, err
		}
		return NumberValue(d), nil

	case *ToBool:
		v, err := evalValue(n.E, ctx)
		if err != nil {
			return Value{}, err
		}
		b, err := v.AsBool("coercion")
		if err != nil {
			return Value{}, err
		}
		return BoolValue(b), nil

	case *ToText:
		v, err := evalValue(n.E, ctx)
		if err != nil {
			return Value{}, err
		}
		return TextValue(v.AsText()), nil

	case *ToDate:
		v, err := evalValue(n.E, ctx)
		if err != nil {
			return Value{}, err
		}
		t, err := v.AsDate("coercion")
		if err != nil {
			return Value{}, err
		}
		return DateValue(t), nil

	case *ToValue:
		return evalValue(n.E, ctx)
	}
	return Value{}, errEval("unhandled expression node %T", e)
}

func applyArith(op ArithOp, l, r decimal.Decimal) (Value, error) {
	switch op {
	case OpAdd:
		return NumberValue(l.Add(r)), nil
	case OpSub:
		return NumberValue(l.Sub(r)), nil
	case OpMul:
		return NumberValue(l.Mul(r)), nil
	}
	if r.IsZero() {
		return Value{}, errDivZero()
	}
	return NumberValue(l.Div(r)), nil
}

// evalCall re-parses the flat argument list through the function's
// ArgSpec, narrows any unbounded ranges in the structured result, and
// hands it to the function body.
func evalCall(n *Call, ctx *Context) (Value, error) {
	spec, ok := LookupFunction(n.Name)
	if !ok {
		return Value{}, errEval("unknown function: %s", n.Name)
	}
	a, _, err := spec.Args.parse(spec.Name, 0, n.Args)
	if err != nil {
		return Value{}, errEval("%s: %v", spec.Name, err)
	}
	a = narrowArgRanges(spec.Args, a, ctx)
	return spec.Eval(a, ctx)
}

// narrowArgRanges clamps the unbounded dimensions of every range in the
// argument to the union of the used extents of all sheets the call's
// ranges touch. Clamping against the union keeps paired ranges the same
// height even when they sit on sheets of different sizes. Bounded
// dimensions are left exactly as written.
func narrowArgRanges(spec ArgSpec, a Arg, ctx *Context) Arg {
	rows, cols := 0, 0
	unbounded := false
	seen := make(map[string]bool)
	spec.mapRanges(a, func(loc RangeLoc) RangeLoc {
		if loc.Range.End.Row == MaxRow || loc.Range.End.Col == MaxCol {
			unbounded = true
		}
		if !seen[loc.SheetName] {
			seen[loc.SheetName] = true
			if sheet, err := resolveSheet(loc.SheetName, ctx); err == nil {
				r, c := sheet.UsedExtent()
				rows, cols = max(rows, r), max(cols, c)
			}
		}
		return loc
	})
	if !unbounded {
		return a
	}
	return spec.mapRanges(a, func(loc RangeLoc) RangeLoc {
		loc.Range = loc.Range.clampUnbounded(rows, cols)
		return loc
	})
}

// resolveSheet maps a sheet name from a reference to the sheet itself.
// The empty name is the context's own sheet; any other name requires a
// workbook.
func resolveSheet(name string, ctx *Context) (Sheet, error) {
	if name == "" {
		return ctx.Sheet, nil
	}
	if ctx.Sheet != nil && name == ctx.Sheet.Name() {
		return ctx.Sheet, nil
	}
	if ctx.Book == nil {
		return nil, errNoWorkbook(name)
	}
	sheet, ok := ctx.Book.SheetByName(name)
	if !ok {
		return nil, errSheetNotFound(name)
	}
	return sheet, nil
}

// resolveLoc resolves a range location to its sheet and its concrete
// rectangle, narrowing unbounded dimensions to the sheet's used extent.
func resolveLoc(loc RangeLoc, ctx *Context) (Sheet, Range, error) {
	sheet, err := resolveSheet(loc.SheetName, ctx)
	if err != nil {
		return nil, Range{}, err
	}
	rows, cols := sheet.UsedExtent()
	return sheet, loc.Range.clampUnbounded(rows, cols), nil
}

// liftCell reads a cell and lifts it to a scalar, descending into
// formula cells. A formula cell with a cached result uses the cache;
// otherwise its source is parsed and evaluated in a child context one
// level deeper, against the depth limit.
func liftCell(sheet Sheet, r Ref, ctx *Context) (Value, error) {
	cell := sheet.CellAt(r)
	if cell.Kind != CellFormula {
		return fromCellValue(cell)
	}
	if cell.Cached != nil {
		return fromCellValue(*cell.Cached)
	}
	if ctx.Depth+1 > MaxDepth {
		return Value{}, errMaxDepth()
	}
	expr, err := Parse(cell.Formula)
	if err != nil {
		return Value{}, &EvalError{
			Kind:    EvalFailure,
			Message: err.Error(),
			Formula: cell.Formula,
		}
	}
	v, err := evalValue(expr, ctx.child(sheet, r))
	if err != nil {
		if ee, ok := err.(*EvalError); ok && ee.Formula == "" {
			tagged := *ee
			tagged.Formula = cell.Formula
			return Value{}, &tagged
		}
		return Value{}, err
	}
	return v, nil
}

// liftCellIntercept is liftCell for range sweeps that count or skip
// error cells rather than aborting on them: the error becomes a
// KindError value and the sweep continues.
func liftCellIntercept(sheet Sheet, r Ref, ctx *Context) (Value, error) {
	cell := sheet.CellAt(r)
	if cell.Kind == CellError {
		return errorValue(cell.ErrMsg), nil
	}
	v, err := liftCell(sheet, r, ctx)
	if err != nil {
		if _, ok := err.(*EvalError); ok {
			return errorValue(err.Error()), nil
		}
		return Value{}, err
	}
	return v, nil
}

// sweepRange visits every cell of a range in row-major order. With
// intercept set, error cells arrive as KindError values; otherwise the
// first error aborts the sweep.
func sweepRange(loc RangeLoc, ctx *Context, intercept bool, visit func(v Value) error) error {
	sheet, rng, err := resolveLoc(loc, ctx)
	if err != nil {
		return err
	}
	for r := range rng.Cells() {
		var v Value
		if intercept {
			v, err = liftCellIntercept(sheet, r, ctx)
		} else {
			v, err = liftCell(sheet, r, ctx)
		}
		if err != nil {
			return err
		}
		if err := visit(v); err != nil {
			return err
		}
	}
	return nil
}

// rangeValues materializes a range as a row-major matrix of scalars,
// propagating the first cell error encountered.
func rangeValues(loc RangeLoc, ctx *Context) ([][]Value, error) {
	sheet, rng, err := resolveLoc(loc, ctx)
	if err != nil {
		return nil, err
	}
	if rng.Height() <= 0 || rng.Width() <= 0 {
		return nil, nil
	}
	out := make([][]Value, rng.Height())
	for i := range out {
		out[i] = make([]Value, rng.Width())
		for j := range out[i] {
			v, err := liftCell(sheet, Ref{Row: rng.Start.Row + i, Col: rng.Start.Col + j}, ctx)
			if err != nil {
				return nil, err
			}
			out[i][j] = v
		}
	}
	return out, nil
}

// alignedRanges resolves a set of zipped ranges (criteria pairs, a sum
// range against its criteria range) and checks that they all share one
// shape, naming both shapes in the error when they do not.
func alignedRanges(fn string, ctx *Context, locs ...RangeLoc) ([]Sheet, []Range, error) {
	sheets := make([]Sheet, len(locs))
	ranges := make([]Range, len(locs))
	for i, loc := range locs {
		sheet, rng, err := resolveLoc(loc, ctx)
		if err != nil {
			return nil, nil, err
		}
		sheets[i] = sheet
		ranges[i] = rng
	}
	for i := 1; i < len(ranges); i++ {
		if !ranges[i].SameShape(ranges[0]) {
			h0, w0 := ranges[0].Shape()
			hi, wi := ranges[i].Shape()
			return nil, nil, errEval("%s: range dimensions differ: %dx%d vs %dx%d", fn, h0, w0, hi, wi)
		}
	}
	return sheets, ranges, nil
}
