package formula

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Conditional aggregates parse their criterion once, then sweep their
// zipped ranges in lockstep. A criterion is either a comparison written
// as text (">=10", "<>done"), a wildcard pattern (* and ?), or a plain
// value matched for equality.

var conditionalFuncs = []FuncSpec{
	{
		Name:  "SUMIF",
		Arity: Between(2, 3),
		Args:  argSeq(argRange(), argScalar(KindEmpty), argOpt(argRange())),
		Eval:  evalSumIf,
	},
	{
		Name:  "SUMIFS",
		Arity: AtLeast(3),
		Args:  argSeq(argRange(), argMany(argSeq(argRange(), argScalar(KindEmpty)))),
		Eval:  evalSumIfs,
	},
	{
		Name:  "COUNTIF",
		Arity: Exactly(2),
		Args:  argSeq(argRange(), argScalar(KindEmpty)),
		Eval:  evalCountIf,
	},
	{
		Name:  "COUNTIFS",
		Arity: AtLeast(2),
		Args:  argMany(argSeq(argRange(), argScalar(KindEmpty))),
		Eval:  evalCountIfs,
	},
	{
		Name:  "AVERAGEIF",
		Arity: Between(2, 3),
		Args:  argSeq(argRange(), argScalar(KindEmpty), argOpt(argRange())),
		Eval:  evalAverageIf,
	},
	{
		Name:  "AVERAGEIFS",
		Arity: AtLeast(3),
		Args:  argSeq(argRange(), argMany(argSeq(argRange(), argScalar(KindEmpty)))),
		Eval:  evalAverageIfs,
	},
}

type criterion struct {
	op      CmpOp
	val     Value
	pattern string // wildcard equality when non-empty
}

// parseCriterion interprets a criterion value. Text starting with a
// comparison operator compares against the literal after it; text
// containing * or ? matches as a wildcard; everything else is equality.
func parseCriterion(v Value) criterion {
	if v.Kind != KindText {
		return criterion{op: OpEq, val: v}
	}
	s := v.Str
	for _, p := range []struct {
		prefix string
		op     CmpOp
	}{
		{">=", OpGe}, {"<=", OpLe}, {"<>", OpNe},
		{">", OpGt}, {"<", OpLt}, {"=", OpEq},
	} {
		if strings.HasPrefix(s, p.prefix) {
			return criterion{op: p.op, val: criterionLiteral(s[len(p.prefix):])}
		}
	}
	if strings.ContainsAny(s, "*?") {
		return criterion{op: OpEq, pattern: s}
	}
	return criterion{op: OpEq, val: v}
}

// criterionLiteral types the text after a comparison operator: numbers
// and booleans take their natural kind, anything else stays text.
func criterionLiteral(s string) Value {
	if d, err := decimal.NewFromString(strings.TrimSpace(s)); err == nil {
		return NumberValue(d)
	}
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRUE":
		return BoolValue(true)
	case "FALSE":
		return BoolValue(false)
	case "":
		return EmptyValue()
	}
	return TextValue(s)
}

func (c criterion) matches(v Value) bool {
	if v.Kind == KindError {
		return false
	}
	if c.pattern != "" {
		return v.Kind == KindText && wildcardMatch(c.pattern, v.Str)
	}
	switch c.op {
	case OpEq:
		return equalValues(v, c.val)
	case OpNe:
		return !equalValues(v, c.val)
	}
	cmp, err := compareValues(v, c.val)
	if err != nil {
		return false
	}
	switch c.op {
	case OpLt:
		return cmp < 0
	case OpLe:
		return cmp <= 0
	case OpGt:
		return cmp > 0
	}
	return cmp >= 0
}

// wildcardMatch matches s against pattern case-insensitively, with *
// for any run and ? for a single character.
func wildcardMatch(pattern, s string) bool {
	p := strings.ToLower(pattern)
	t := strings.ToLower(s)
	pi, ti := 0, 0
	star, starTi := -1, 0
	for ti < len(t) {
		switch {
		case pi < len(p) && (p[pi] == '?' || p[pi] == t[ti]):
			pi++
			ti++
		case pi < len(p) && p[pi] == '*':
			star, starTi = pi, ti
			pi++
		case star >= 0:
			starTi++
			pi, ti = star+1, starTi
		default:
			return false
		}
	}
	for pi < len(p) && p[pi] == '*' {
		pi++
	}
	return pi == len(p)
}

type critPair struct {
	loc  RangeLoc
	crit criterion
}

// sweepCriteria visits the action-range cell for every position where
// all criteria match. With a nil action range it visits an empty value
// per match, which is all counting needs. All ranges must share one
// shape.
func sweepCriteria(fn string, ctx *Context, pairs []critPair, action *RangeLoc, visit func(v Value) error) error {
	locs := make([]RangeLoc, 0, len(pairs)+1)
	for _, p := range pairs {
		locs = append(locs, p.loc)
	}
	if action != nil {
		locs = append(locs, *action)
	}
	sheets, ranges, err := alignedRanges(fn, ctx, locs...)
	if err != nil {
		return err
	}
	h, w := ranges[0].Shape()
	for i := 0; i < h; i++ {
		for j := 0; j < w; j++ {
			matched := true
			for k := range pairs {
				at := Ref{Row: ranges[k].Start.Row + i, Col: ranges[k].Start.Col + j}
				cv, err := liftCellIntercept(sheets[k], at, ctx)
				if err != nil {
					return err
				}
				if !pairs[k].crit.matches(cv) {
					matched = false
					break
				}
			}
			if !matched {
				continue
			}
			if action == nil {
				if err := visit(EmptyValue()); err != nil {
					return err
				}
				continue
			}
			k := len(pairs)
			at := Ref{Row: ranges[k].Start.Row + i, Col: ranges[k].Start.Col + j}
			av, err := liftCell(sheets[k], at, ctx)
			if err != nil {
				return err
			}
			if err := visit(av); err != nil {
				return err
			}
		}
	}
	return nil
}

func singleCriterion(ctx *Context, loc RangeLoc, critArg Arg) ([]critPair, error) {
	cv, err := ctx.Value(critArg.(ScalarArg).E)
	if err != nil {
		return nil, err
	}
	return []critPair{{loc: loc, crit: parseCriterion(cv)}}, nil
}

func pairedCriteria(ctx *Context, list ListArg) ([]critPair, error) {
	pairs := make([]critPair, 0, len(list.Items))
	for _, item := range list.Items {
		pr := item.(PairArg)
		cv, err := ctx.Value(pr.Second.(ScalarArg).E)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, critPair{loc: pr.First.(RangeArg).Loc, crit: parseCriterion(cv)})
	}
	return pairs, nil
}

func evalSumIf(a Arg, ctx *Context) (Value, error) {
	pair := a.(PairArg)
	testLoc := pair.First.(RangeArg).Loc
	rest := pair.Second.(PairArg)
	pairs, err := singleCriterion(ctx, testLoc, rest.First)
	if err != nil {
		return Value{}, err
	}
	sumLoc := testLoc
	if opt := rest.Second.(OptionalArg); opt.Present {
		sumLoc = opt.A.(RangeArg).Loc
	}
	return sumMatches("SUMIF", ctx, pairs, sumLoc)
}

func evalSumIfs(a Arg, ctx *Context) (Value, error) {
	pair := a.(PairArg)
	sumLoc := pair.First.(RangeArg).Loc
	pairs, err := pairedCriteria(ctx, pair.Second.(ListArg))
	if err != nil {
		return Value{}, err
	}
	return sumMatches("SUMIFS", ctx, pairs, sumLoc)
}

func sumMatches(fn string, ctx *Context, pairs []critPair, sumLoc RangeLoc) (Value, error) {
	total := decimal.Decimal{}
	err := sweepCriteria(fn, ctx, pairs, &sumLoc, func(v Value) error {
		if v.Kind == KindNumber {
			total = total.Add(v.Num)
		}
		return nil
	})
	if err != nil {
		return Value{}, err
	}
	return NumberValue(total), nil
}

func evalCountIf(a Arg, ctx *Context) (Value, error) {
	pair := a.(PairArg)
	pairs, err := singleCriterion(ctx, pair.First.(RangeArg).Loc, pair.Second)
	if err != nil {
		return Value{}, err
	}
	return countMatches("COUNTIF", ctx, pairs)
}

func evalCountIfs(a Arg, ctx *Context) (Value, error) {
	pairs, err := pairedCriteria(ctx, a.(ListArg))
	if err != nil {
		return Value{}, err
	}
	return countMatches("COUNTIFS", ctx, pairs)
}

func countMatches(fn string, ctx *Context, pairs []critPair) (Value, error) {
	var n int64
	err := sweepCriteria(fn, ctx, pairs, nil, func(Value) error {
		n++
		return nil
	})
	if err != nil {
		return Value{}, err
	}
	return NumberValue(decimal.NewFromInt(n)), nil
}

func evalAverageIf(a Arg, ctx *Context) (Value, error) {
	pair := a.(PairArg)
	testLoc := pair.First.(RangeArg).Loc
	rest := pair.Second.(PairArg)
	pairs, err := singleCriterion(ctx, testLoc, rest.First)
	if err != nil {
		return Value{}, err
	}
	avgLoc := testLoc
	if opt := rest.Second.(OptionalArg); opt.Present {
		avgLoc = opt.A.(RangeArg).Loc
	}
	return averageMatches("AVERAGEIF", ctx, pairs, avgLoc)
}

func evalAverageIfs(a Arg, ctx *Context) (Value, error) {
	pair := a.(PairArg)
	avgLoc := pair.First.(RangeArg).Loc
	pairs, err := pairedCriteria(ctx, pair.Second.(ListArg))
	if err != nil {
		return Value{}, err
	}
	return averageMatches("AVERAGEIFS", ctx, pairs, avgLoc)
}

func averageMatches(fn string, ctx *Context, pairs []critPair, avgLoc RangeLoc) (Value, error) {
	total := decimal.Decimal{}
	var n int64
	err := sweepCriteria(fn, ctx, pairs, &avgLoc, func(v Value) error {
		if v.Kind == KindNumber {
			total = total.Add(v.Num)
			n++
		}
		return nil
	})
	if err != nil {
		return Value{}, err
	}
	if n == 0 {
		return Value{}, errDivZero()
	}
	return NumberValue(total.Div(decimal.NewFromInt(n))), nil
}
