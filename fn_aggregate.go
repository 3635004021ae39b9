package formula

import (
	"math"
	"slices"

	"github.com/shopspring/decimal"
)

// Aggregates share one accumulator protocol: a state receives every
// swept value and produces the result when the sweep is done. Numeric
// aggregates skip non-numeric cells inside ranges (matching how sheets
// treat stray text in a summed column) but reject non-numeric direct
// arguments; the counting family inspects raw kinds instead, and
// intercepts error cells so COUNTA can count them.

type aggState interface {
	add(v Value) error
	finalize(fn string) (Value, error)
}

type aggDef struct {
	// intercept delivers error cells to the state as KindError values
	// instead of aborting the sweep.
	intercept bool
	// coerceScalar forces direct (non-range) arguments through the
	// numeric conversion before they reach the state.
	coerceScalar bool
	newState     func() aggState
}

var aggDefs = map[string]aggDef{
	"SUM":        {coerceScalar: true, newState: func() aggState { return &sumState{} }},
	"AVERAGE":    {coerceScalar: true, newState: func() aggState { return &averageState{} }},
	"MIN":        {coerceScalar: true, newState: func() aggState { return &extremeState{want: -1} }},
	"MAX":        {coerceScalar: true, newState: func() aggState { return &extremeState{want: 1} }},
	"MEDIAN":     {coerceScalar: true, newState: func() aggState { return &medianState{} }},
	"STDEV":      {coerceScalar: true, newState: func() aggState { return &spreadState{sample: true, sqrt: true} }},
	"STDEVP":     {coerceScalar: true, newState: func() aggState { return &spreadState{sqrt: true} }},
	"VAR":        {coerceScalar: true, newState: func() aggState { return &spreadState{sample: true} }},
	"VARP":       {coerceScalar: true, newState: func() aggState { return &spreadState{} }},
	"COUNT":      {intercept: true, newState: func() aggState { return &countState{mode: countNumbers} }},
	"COUNTA":     {intercept: true, newState: func() aggState { return &countState{mode: countFilled} }},
	"COUNTBLANK": {intercept: true, newState: func() aggState { return &countState{mode: countBlank} }},
}

var aggregateFuncs = buildAggregateFuncs()

func buildAggregateFuncs() []FuncSpec {
	names := []string{
		"SUM", "COUNT", "COUNTA", "COUNTBLANK", "AVERAGE",
		"MIN", "MAX", "MEDIAN", "STDEV", "STDEVP", "VAR", "VARP",
	}
	specs := make([]FuncSpec, 0, len(names))
	for _, name := range names {
		specs = append(specs, FuncSpec{
			Name:  name,
			Arity: AtLeast(1),
			Args:  argMany(argNumOrRange()),
			Eval:  makeAggEval(name, aggDefs[name]),
		})
	}
	return specs
}

func makeAggEval(name string, def aggDef) func(a Arg, ctx *Context) (Value, error) {
	return func(a Arg, ctx *Context) (Value, error) {
		st := def.newState()
		for _, item := range a.(ListArg).Items {
			nr := item.(NumOrRangeArg)
			if nr.Loc != nil {
				if err := sweepRange(*nr.Loc, ctx, def.intercept, st.add); err != nil {
					return Value{}, err
				}
				continue
			}
			v, err := ctx.Value(nr.E)
			if err != nil {
				return Value{}, err
			}
			if def.coerceScalar {
				d, err := v.AsNumber(name)
				if err != nil {
					return Value{}, err
				}
				v = NumberValue(d)
			}
			if err := st.add(v); err != nil {
				return Value{}, err
			}
		}
		return st.finalize(name)
	}
}

// evalAggregate is the path for the dedicated range-aggregate node.
func evalAggregate(name string, loc RangeLoc, ctx *Context) (Value, error) {
	def, ok := aggDefs[name]
	if !ok {
		return Value{}, errEval("unknown aggregate: %s", name)
	}
	st := def.newState()
	if err := sweepRange(loc, ctx, def.intercept, st.add); err != nil {
		return Value{}, err
	}
	return st.finalize(name)
}

type sumState struct {
	total decimal.Decimal
}

func (s *sumState) add(v Value) error {
	if v.Kind == KindNumber {
		s.total = s.total.Add(v.Num)
	}
	return nil
}

func (s *sumState) finalize(string) (Value, error) {
	return NumberValue(s.total), nil
}

type averageState struct {
	total decimal.Decimal
	n     int64
}

func (s *averageState) add(v Value) error {
	if v.Kind == KindNumber {
		s.total = s.total.Add(v.Num)
		s.n++
	}
	return nil
}

func (s *averageState) finalize(string) (Value, error) {
	if s.n == 0 {
		return Value{}, errDivZero()
	}
	return NumberValue(s.total.Div(decimal.NewFromInt(s.n))), nil
}

// extremeState tracks MIN (want=-1) or MAX (want=1). No numeric values
// at all yields zero, the way sheets report an extreme over blanks.
type extremeState struct {
	want int
	best *decimal.Decimal
}

func (s *extremeState) add(v Value) error {
	if v.Kind != KindNumber {
		return nil
	}
	if s.best == nil || v.Num.Cmp(*s.best) == s.want {
		d := v.Num
		s.best = &d
	}
	return nil
}

func (s *extremeState) finalize(string) (Value, error) {
	if s.best == nil {
		return NumberValue(decimal.Decimal{}), nil
	}
	return NumberValue(*s.best), nil
}

type medianState struct {
	vals []decimal.Decimal
}

func (s *medianState) add(v Value) error {
	if v.Kind == KindNumber {
		s.vals = append(s.vals, v.Num)
	}
	return nil
}

func (s *medianState) finalize(fn string) (Value, error) {
	if len(s.vals) == 0 {
		return Value{}, errEval("%s: no numeric values", fn)
	}
	slices.SortFunc(s.vals, func(a, b decimal.Decimal) int { return a.Cmp(b) })
	mid := len(s.vals) / 2
	if len(s.vals)%2 == 1 {
		return NumberValue(s.vals[mid]), nil
	}
	two := decimal.NewFromInt(2)
	return NumberValue(s.vals[mid-1].Add(s.vals[mid]).Div(two)), nil
}

// spreadState computes variance and standard deviation. Moments use
// float64 internally since the result is irrational in general.
type spreadState struct {
	sample bool
	sqrt   bool
	vals   []float64
}

func (s *spreadState) add(v Value) error {
	if v.Kind == KindNumber {
		f, _ := v.Num.Float64()
		s.vals = append(s.vals, f)
	}
	return nil
}

func (s *spreadState) finalize(fn string) (Value, error) {
	n := len(s.vals)
	need := 1
	if s.sample {
		need = 2
	}
	if n < need {
		return Value{}, errEval("%s: needs at least %d numeric value(s), got %d", fn, need, n)
	}
	mean := 0.0
	for _, f := range s.vals {
		mean += f
	}
	mean /= float64(n)
	ss := 0.0
	for _, f := range s.vals {
		d := f - mean
		ss += d * d
	}
	div := float64(n)
	if s.sample {
		div = float64(n - 1)
	}
	out := ss / div
	if s.sqrt {
		out = math.Sqrt(out)
	}
	return NumberValue(decimal.NewFromFloat(out)), nil
}

type countMode uint8

const (
	countNumbers countMode = iota // numbers and dates
	countFilled                   // anything non-empty, error cells included
	countBlank
)

type countState struct {
	mode countMode
	n    int64
}

func (s *countState) add(v Value) error {
	switch s.mode {
	case countNumbers:
		if v.Kind == KindNumber || v.Kind == KindDate || v.Kind == KindDateTime {
			s.n++
		}
	case countFilled:
		if v.Kind != KindEmpty {
			s.n++
		}
	case countBlank:
		if v.Kind == KindEmpty {
			s.n++
		}
	}
	return nil
}

func (s *countState) finalize(string) (Value, error) {
	return NumberValue(decimal.NewFromInt(s.n)), nil
}
