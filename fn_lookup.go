package formula

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Reference functions work on the syntax of references, not on cell
// contents. ROW and COLUMN with no argument report the address of the
// cell the formula is evaluating for, which the context carries.

var referenceFuncs = []FuncSpec{
	{
		Name:  "ROW",
		Arity: Between(0, 1),
		Args:  argOpt(argRef()),
		Eval:  makeAxisProbe("ROW", func(r Ref) int { return r.Row }),
	},
	{
		Name:  "COLUMN",
		Arity: Between(0, 1),
		Args:  argOpt(argRef()),
		Eval:  makeAxisProbe("COLUMN", func(r Ref) int { return r.Col }),
	},
	{
		Name:  "ROWS",
		Arity: Exactly(1),
		Args:  argRange(),
		Eval: func(a Arg, ctx *Context) (Value, error) {
			_, rng, err := resolveLoc(a.(RangeArg).Loc, ctx)
			if err != nil {
				return Value{}, err
			}
			return NumberValue(decimal.NewFromInt(int64(rng.Height()))), nil
		},
	},
	{
		Name:  "COLUMNS",
		Arity: Exactly(1),
		Args:  argRange(),
		Eval: func(a Arg, ctx *Context) (Value, error) {
			_, rng, err := resolveLoc(a.(RangeArg).Loc, ctx)
			if err != nil {
				return Value{}, err
			}
			return NumberValue(decimal.NewFromInt(int64(rng.Width()))), nil
		},
	},
	{
		Name:  "ADDRESS",
		Arity: Between(2, 4),
		Args: argSeq(
			argScalar(KindNumber),
			argScalar(KindNumber),
			argOpt(argSeq(argScalar(KindNumber), argOpt(argScalar(KindText)))),
		),
		Eval: evalAddress,
	},
}

// makeAxisProbe builds ROW or COLUMN: with a reference argument it
// reports the top-left coordinate of the reference, one-based; without
// one it reports the coordinate of the current cell.
func makeAxisProbe(name string, axis func(r Ref) int) func(a Arg, ctx *Context) (Value, error) {
	return func(a Arg, ctx *Context) (Value, error) {
		opt := a.(OptionalArg)
		if !opt.Present {
			if ctx.Cell == nil {
				return Value{}, errEval("%s: no argument and no current cell", name)
			}
			return NumberValue(decimal.NewFromInt(int64(axis(*ctx.Cell) + 1))), nil
		}
		var top Ref
		switch ref := opt.A.(RefArg).E.(type) {
		case *CellRef:
			top = ref.Ref
		case *RangeRef:
			top = ref.Loc.Range.Start
		}
		return NumberValue(decimal.NewFromInt(int64(axis(top) + 1))), nil
	}
}

// evalAddress renders an A1-style address from one-based row and column
// numbers. The absolute mode is 1 (both absolute, the default), 2 (row
// absolute), 3 (column absolute) or 4 (relative); an optional sheet
// name prefixes the address.
func evalAddress(a Arg, ctx *Context) (Value, error) {
	pair := a.(PairArg)
	rest := pair.Second.(PairArg)

	row, err := addressIndex("ADDRESS", ctx, pair.First, "row")
	if err != nil {
		return Value{}, err
	}
	col, err := addressIndex("ADDRESS", ctx, rest.First, "column")
	if err != nil {
		return Value{}, err
	}

	mode := 1
	sheet := ""
	if opt := rest.Second.(OptionalArg); opt.Present {
		tail := opt.A.(PairArg)
		m, err := addressIndex("ADDRESS", ctx, tail.First, "abs mode")
		if err != nil {
			return Value{}, err
		}
		if m < 1 || m > 4 {
			return Value{}, errEval("ADDRESS: abs mode must be 1 through 4, got %d", m)
		}
		mode = m
		if sheetOpt := tail.Second.(OptionalArg); sheetOpt.Present {
			v, err := ctx.Value(sheetOpt.A.(ScalarArg).E)
			if err != nil {
				return Value{}, err
			}
			sheet = v.AsText()
		}
	}

	var b strings.Builder
	if sheet != "" {
		b.WriteString(quoteSheetName(sheet))
		b.WriteByte('!')
	}
	if mode == 1 || mode == 3 {
		b.WriteByte('$')
	}
	b.WriteString(ColumnName(col - 1))
	if mode == 1 || mode == 2 {
		b.WriteByte('$')
	}
	b.WriteString(strconv.Itoa(row))
	return TextValue(b.String()), nil
}

func addressIndex(fn string, ctx *Context, a Arg, what string) (int, error) {
	v, err := ctx.Value(a.(ScalarArg).E)
	if err != nil {
		return 0, err
	}
	d, err := v.AsNumber(fn)
	if err != nil {
		return 0, err
	}
	n := int(d.IntPart())
	if (what == "row" || what == "column") && n < 1 {
		return 0, errEval("%s: %s must be at least 1, got %s", fn, what, d)
	}
	return n, nil
}
