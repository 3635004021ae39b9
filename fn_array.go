package formula

import (
	"github.com/shopspring/decimal"
)

// Array functions. SUMPRODUCT broadcasts scalar expressions over the
// embedded ranges element by element, which is what makes masked sums
// like SUMPRODUCT((A1:A4>2)*1,B1:B4) work.

var arrayFuncs = []FuncSpec{
	{
		Name:  "SUMPRODUCT",
		Arity: AtLeast(1),
		Args:  argMany(argNumOrRange()),
		Eval:  evalSumProduct,
	},
	{
		Name:  "TRANSPOSE",
		Arity: Exactly(1),
		Args:  argRange(),
		Eval:  evalTranspose,
	},
}

func evalSumProduct(a Arg, ctx *Context) (Value, error) {
	items := a.(ListArg).Items
	mats := make([][][]Value, len(items))
	for i, item := range items {
		nr := item.(NumOrRangeArg)
		var err error
		if nr.Loc != nil {
			mats[i], err = rangeValues(*nr.Loc, ctx)
		} else {
			mats[i], err = broadcastValues(nr.E, ctx)
		}
		if err != nil {
			return Value{}, err
		}
	}
	for i := 1; i < len(mats); i++ {
		if len(mats[i]) != len(mats[0]) || len(mats[i]) > 0 && len(mats[i][0]) != len(mats[0][0]) {
			return Value{}, errEval("SUMPRODUCT: array dimensions differ: %dx%d vs %dx%d",
				matRows(mats[0]), matCols(mats[0]), matRows(mats[i]), matCols(mats[i]))
		}
	}
	total := decimal.Decimal{}
	for i := range mats[0] {
		for j := range mats[0][i] {
			term := decimal.NewFromInt(1)
			numeric := true
			for _, m := range mats {
				v := m[i][j]
				if v.Kind != KindNumber {
					// non-numeric elements contribute nothing
					numeric = false
					break
				}
				term = term.Mul(v.Num)
			}
			if numeric {
				total = total.Add(term)
			}
		}
	}
	return NumberValue(total), nil
}

func matRows(m [][]Value) int {
	return len(m)
}

func matCols(m [][]Value) int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// broadcastValues evaluates an expression once per element of the
// ranges it embeds, substituting the matching cell of every range. A
// pure scalar expression yields a 1x1 matrix. All embedded ranges must
// share one shape.
func broadcastValues(e Expr, ctx *Context) ([][]Value, error) {
	var locs []RangeLoc
	mapExprRanges(e, func(loc RangeLoc) RangeLoc {
		locs = append(locs, loc)
		return loc
	})
	if len(locs) == 0 {
		v, err := evalValue(e, ctx)
		if err != nil {
			return nil, err
		}
		return [][]Value{{v}}, nil
	}
	_, ranges, err := alignedRanges("SUMPRODUCT", ctx, locs...)
	if err != nil {
		return nil, err
	}
	h, w := ranges[0].Shape()
	out := make([][]Value, h)
	for i := 0; i < h; i++ {
		out[i] = make([]Value, w)
		for j := 0; j < w; j++ {
			v, err := evalValue(offsetCellExpr(e, i, j), ctx)
			if err != nil {
				return nil, err
			}
			out[i][j] = v
		}
	}
	return out, nil
}

// offsetCellExpr replaces every range reference in the expression with
// the single cell offset (dr,dc) from the range's top-left corner.
func offsetCellExpr(e Expr, dr, dc int) Expr {
	switch n := e.(type) {
	case *RangeRef:
		return &CellRef{
			Sheet: n.Loc.SheetName,
			Ref:   Ref{Row: n.Loc.Range.Start.Row + dr, Col: n.Loc.Range.Start.Col + dc},
		}
	case *Arith:
		return &Arith{Op: n.Op, Left: numOperand(offsetCellExpr(n.Left, dr, dc)), Right: numOperand(offsetCellExpr(n.Right, dr, dc))}
	case *Neg:
		return &Neg{Operand: numOperand(offsetCellExpr(n.Operand, dr, dc))}
	case *Compare:
		return &Compare{Op: n.Op, Left: offsetCellExpr(n.Left, dr, dc), Right: offsetCellExpr(n.Right, dr, dc)}
	case *Logic:
		return &Logic{Op: n.Op, Left: boolOperand(offsetCellExpr(n.Left, dr, dc)), Right: boolOperand(offsetCellExpr(n.Right, dr, dc))}
	case *Not:
		return &Not{Operand: boolOperand(offsetCellExpr(n.Operand, dr, dc))}
	case *Concat:
		return &Concat{Left: textOperand(offsetCellExpr(n.Left, dr, dc)), Right: textOperand(offsetCellExpr(n.Right, dr, dc))}
	case *If:
		return &If{Cond: boolOperand(offsetCellExpr(n.Cond, dr, dc)), Then: offsetCellExpr(n.Then, dr, dc), Else: offsetCellExpr(n.Else, dr, dc)}
	case *ToNum:
		return &ToNum{E: offsetCellExpr(n.E, dr, dc)}
	case *ToBool:
		return &ToBool{E: offsetCellExpr(n.E, dr, dc)}
	case *ToText:
		return &ToText{E: offsetCellExpr(n.E, dr, dc)}
	case *ToDate:
		return &ToDate{E: offsetCellExpr(n.E, dr, dc)}
	case *ToValue:
		return &ToValue{E: offsetCellExpr(n.E, dr, dc)}
	}
	return e
}

func evalTranspose(a Arg, ctx *Context) (Value, error) {
	vals, err := rangeValues(a.(RangeArg).Loc, ctx)
	if err != nil {
		return Value{}, err
	}
	if len(vals) == 0 {
		return MatrixValue(nil), nil
	}
	h, w := len(vals), len(vals[0])
	out := make([][]CellValue, w)
	for j := 0; j < w; j++ {
		out[j] = make([]CellValue, h)
		for i := 0; i < h; i++ {
			out[j][i] = vals[i][j].ToCellValue()
		}
	}
	return MatrixValue(out), nil
}
