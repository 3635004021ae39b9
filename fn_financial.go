package formula

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Financial functions. Discounting and root finding run on float64
// internally since rates are irrational in general; only the final
// result converts back to a decimal. IRR and XIRR solve for the rate by
// Newton-Raphson from an optional starting guess.

const (
	solverIterations = 100
	solverTolerance  = 1e-9
	solverGuess      = 0.1
	daysPerYear      = 365.0
)

var financialFuncs = []FuncSpec{
	{
		Name:  "NPV",
		Arity: AtLeast(2),
		Args:  argSeq(argScalar(KindNumber), argMany(argNumOrRange())),
		Eval:  evalNPV,
	},
	{
		Name:  "IRR",
		Arity: Between(1, 2),
		Args:  argSeq(argRange(), argOpt(argScalar(KindNumber))),
		Eval:  evalIRR,
	},
	{
		Name:  "XNPV",
		Arity: Exactly(3),
		Args:  argSeq(argScalar(KindNumber), argRange(), argRange()),
		Eval:  evalXNPV,
	},
	{
		Name:  "XIRR",
		Arity: Between(2, 3),
		Args:  argSeq(argRange(), argRange(), argOpt(argScalar(KindNumber))),
		Eval:  evalXIRR,
	},
}

func evalNPV(a Arg, ctx *Context) (Value, error) {
	pair := a.(PairArg)
	rate, err := scalarFloat("NPV", ctx, pair.First)
	if err != nil {
		return Value{}, err
	}
	if rate <= -1 {
		return Value{}, errEval("NPV: rate must be greater than -1")
	}
	var flows []float64
	for _, item := range pair.Second.(ListArg).Items {
		nr := item.(NumOrRangeArg)
		if nr.Loc != nil {
			fs, err := rangeFloats("NPV", ctx, *nr.Loc)
			if err != nil {
				return Value{}, err
			}
			flows = append(flows, fs...)
			continue
		}
		f, err := exprFloat("NPV", ctx, nr.E)
		if err != nil {
			return Value{}, err
		}
		flows = append(flows, f)
	}
	// the first flow is discounted one full period
	total := 0.0
	for i, cf := range flows {
		total += cf / math.Pow(1+rate, float64(i+1))
	}
	return NumberValue(decimal.NewFromFloat(total)), nil
}

func evalIRR(a Arg, ctx *Context) (Value, error) {
	pair := a.(PairArg)
	flows, err := rangeFloats("IRR", ctx, pair.First.(RangeArg).Loc)
	if err != nil {
		return Value{}, err
	}
	if err := checkFlowSigns("IRR", flows); err != nil {
		return Value{}, err
	}
	guess := solverGuess
	if opt := pair.Second.(OptionalArg); opt.Present {
		if guess, err = scalarFloat("IRR", ctx, opt.A); err != nil {
			return Value{}, err
		}
	}
	// the first flow sits at period zero, undiscounted
	rate, err := newtonSolve("IRR",
		func(r float64) float64 {
			y := 0.0
			for i, cf := range flows {
				y += cf / math.Pow(1+r, float64(i))
			}
			return y
		},
		func(r float64) float64 {
			d := 0.0
			for i, cf := range flows {
				d -= float64(i) * cf / math.Pow(1+r, float64(i+1))
			}
			return d
		},
		guess)
	if err != nil {
		return Value{}, err
	}
	return NumberValue(decimal.NewFromFloat(rate)), nil
}

func evalXNPV(a Arg, ctx *Context) (Value, error) {
	pair := a.(PairArg)
	rest := pair.Second.(PairArg)
	rate, err := scalarFloat("XNPV", ctx, pair.First)
	if err != nil {
		return Value{}, err
	}
	if rate <= -1 {
		return Value{}, errEval("XNPV: rate must be greater than -1")
	}
	flows, years, err := datedFlows("XNPV", ctx,
		rest.First.(RangeArg).Loc, rest.Second.(RangeArg).Loc)
	if err != nil {
		return Value{}, err
	}
	total := 0.0
	for i, cf := range flows {
		total += cf / math.Pow(1+rate, years[i])
	}
	return NumberValue(decimal.NewFromFloat(total)), nil
}

func evalXIRR(a Arg, ctx *Context) (Value, error) {
	pair := a.(PairArg)
	rest := pair.Second.(PairArg)
	flows, years, err := datedFlows("XIRR", ctx,
		pair.First.(RangeArg).Loc, rest.First.(RangeArg).Loc)
	if err != nil {
		return Value{}, err
	}
	if err := checkFlowSigns("XIRR", flows); err != nil {
		return Value{}, err
	}
	guess := solverGuess
	if opt := rest.Second.(OptionalArg); opt.Present {
		if guess, err = scalarFloat("XIRR", ctx, opt.A); err != nil {
			return Value{}, err
		}
	}
	rate, err := newtonSolve("XIRR",
		func(r float64) float64 {
			y := 0.0
			for i, cf := range flows {
				y += cf / math.Pow(1+r, years[i])
			}
			return y
		},
		func(r float64) float64 {
			d := 0.0
			for i, cf := range flows {
				d -= years[i] * cf / math.Pow(1+r, years[i]+1)
			}
			return d
		},
		guess)
	if err != nil {
		return Value{}, err
	}
	return NumberValue(decimal.NewFromFloat(rate)), nil
}

// newtonSolve iterates r <- r - f(r)/f'(r) until the residual is within
// tolerance. A vanished derivative, a rate at or below -1, or running
// out of iterations all fail explicitly.
func newtonSolve(fn string, f, df func(r float64) float64, guess float64) (float64, error) {
	r := guess
	for i := 0; i < solverIterations; i++ {
		if r <= -1 {
			return 0, errEval("%s: iteration produced a rate at or below -100%%", fn)
		}
		y := f(r)
		if math.Abs(y) < solverTolerance {
			return r, nil
		}
		d := df(r)
		if d == 0 || math.IsNaN(d) || math.IsInf(d, 0) {
			return 0, errEval("%s: derivative vanished, cannot continue iteration", fn)
		}
		r -= y / d
	}
	return 0, errEval("%s: no convergence after %d iterations", fn, solverIterations)
}

// checkFlowSigns rejects cash flows that cannot cross zero: a rate only
// exists when at least one inflow and one outflow are present.
func checkFlowSigns(fn string, flows []float64) error {
	hasPos, hasNeg := false, false
	for _, cf := range flows {
		if cf > 0 {
			hasPos = true
		}
		if cf < 0 {
			hasNeg = true
		}
	}
	if !hasPos || !hasNeg {
		return errEval("%s: cash flows need at least one positive and one negative value", fn)
	}
	return nil
}

func scalarFloat(fn string, ctx *Context, a Arg) (float64, error) {
	return exprFloat(fn, ctx, a.(ScalarArg).E)
}

func exprFloat(fn string, ctx *Context, e Expr) (float64, error) {
	v, err := ctx.Value(e)
	if err != nil {
		return 0, err
	}
	d, err := v.AsNumber(fn)
	if err != nil {
		return 0, err
	}
	f, _ := d.Float64()
	return f, nil
}

// rangeFloats reads a cash-flow range strictly: every cell must be
// numeric, in order, with empties skipped.
func rangeFloats(fn string, ctx *Context, loc RangeLoc) ([]float64, error) {
	var out []float64
	err := sweepRange(loc, ctx, false, func(v Value) error {
		if v.Kind == KindEmpty {
			return nil
		}
		d, err := v.AsNumber(fn)
		if err != nil {
			return err
		}
		f, _ := d.Float64()
		out = append(out, f)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// datedFlows zips a value range with a date range and converts the
// dates to year offsets from the first date on an actual/365 basis.
func datedFlows(fn string, ctx *Context, valueLoc, dateLoc RangeLoc) (flows, years []float64, err error) {
	sheets, ranges, err := alignedRanges(fn, ctx, valueLoc, dateLoc)
	if err != nil {
		return nil, nil, err
	}
	h, w := ranges[0].Shape()
	var dates []time.Time
	for i := 0; i < h; i++ {
		for j := 0; j < w; j++ {
			vv, err := liftCell(sheets[0], Ref{Row: ranges[0].Start.Row + i, Col: ranges[0].Start.Col + j}, ctx)
			if err != nil {
				return nil, nil, err
			}
			dv, err := liftCell(sheets[1], Ref{Row: ranges[1].Start.Row + i, Col: ranges[1].Start.Col + j}, ctx)
			if err != nil {
				return nil, nil, err
			}
			if vv.Kind == KindEmpty && dv.Kind == KindEmpty {
				continue
			}
			d, err := vv.AsNumber(fn)
			if err != nil {
				return nil, nil, err
			}
			t, err := dv.AsDate(fn)
			if err != nil {
				return nil, nil, err
			}
			f, _ := d.Float64()
			flows = append(flows, f)
			dates = append(dates, t)
		}
	}
	if len(flows) == 0 {
		return nil, nil, errEval("%s: no cash flows", fn)
	}
	years = make([]float64, len(dates))
	for i, t := range dates {
		years[i] = t.Sub(dates[0]).Hours() / 24 / daysPerYear
	}
	return flows, years, nil
}
