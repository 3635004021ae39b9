package formula

import (
	"time"

	"github.com/shopspring/decimal"
)

// Date and time functions. NOW and TODAY read the context's clock, so
// hosts and tests can pin time. DATE normalizes out-of-range components
// the way time.Date does: month 13 rolls into the next year.

var dateTimeFuncs = []FuncSpec{
	{
		Name:       "NOW",
		Arity:      Exactly(0),
		Args:       argNone(),
		DateResult: true,
		Eval: func(_ Arg, ctx *Context) (Value, error) {
			return DateTimeValue(ctx.Clock.Now()), nil
		},
	},
	{
		Name:       "TODAY",
		Arity:      Exactly(0),
		Args:       argNone(),
		DateResult: true,
		Eval: func(_ Arg, ctx *Context) (Value, error) {
			return DateValue(ctx.Clock.Now()), nil
		},
	},
	{
		Name:       "DATE",
		Arity:      Exactly(3),
		Args:       argSeq(argScalar(KindNumber), argScalar(KindNumber), argScalar(KindNumber)),
		DateResult: true,
		Eval:       evalDate,
	},
	{
		Name:  "YEAR",
		Arity: Exactly(1),
		Args:  argScalar(KindDate),
		Eval:  makeDatePart(func(t time.Time) int { return t.Year() }),
	},
	{
		Name:  "MONTH",
		Arity: Exactly(1),
		Args:  argScalar(KindDate),
		Eval:  makeDatePart(func(t time.Time) int { return int(t.Month()) }),
	},
	{
		Name:  "DAY",
		Arity: Exactly(1),
		Args:  argScalar(KindDate),
		Eval:  makeDatePart(func(t time.Time) int { return t.Day() }),
	},
}

func evalDate(a Arg, ctx *Context) (Value, error) {
	pair := a.(PairArg)
	rest := pair.Second.(PairArg)
	year, err := dateComponent("DATE", ctx, pair.First)
	if err != nil {
		return Value{}, err
	}
	month, err := dateComponent("DATE", ctx, rest.First)
	if err != nil {
		return Value{}, err
	}
	day, err := dateComponent("DATE", ctx, rest.Second)
	if err != nil {
		return Value{}, err
	}
	return DateValue(time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)), nil
}

func dateComponent(fn string, ctx *Context, a Arg) (int, error) {
	v, err := ctx.Value(a.(ScalarArg).E)
	if err != nil {
		return 0, err
	}
	d, err := v.AsNumber(fn)
	if err != nil {
		return 0, err
	}
	return int(d.IntPart()), nil
}

func makeDatePart(part func(t time.Time) int) func(a Arg, ctx *Context) (Value, error) {
	return func(a Arg, ctx *Context) (Value, error) {
		v, err := ctx.Value(a.(ScalarArg).E)
		if err != nil {
			return Value{}, err
		}
		return NumberValue(decimal.NewFromInt(int64(part(v.Time)))), nil
	}
}
