package formula

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Text functions operate on runes, not bytes, so multibyte content
// counts and slices the way a sheet user expects.

var textFuncs = []FuncSpec{
	{
		Name:  "CONCATENATE",
		Arity: AtLeast(1),
		Args:  argMany(argScalar(KindText)),
		Eval: func(a Arg, ctx *Context) (Value, error) {
			var b strings.Builder
			for _, item := range a.(ListArg).Items {
				s, err := ctx.Text(item.(ScalarArg).E)
				if err != nil {
					return Value{}, err
				}
				b.WriteString(s)
			}
			return TextValue(b.String()), nil
		},
	},
	{
		Name:  "LEN",
		Arity: Exactly(1),
		Args:  argScalar(KindText),
		Eval: func(a Arg, ctx *Context) (Value, error) {
			s, err := ctx.Text(a.(ScalarArg).E)
			if err != nil {
				return Value{}, err
			}
			return NumberValue(decimal.NewFromInt(int64(len([]rune(s))))), nil
		},
	},
	{
		Name:  "UPPER",
		Arity: Exactly(1),
		Args:  argScalar(KindText),
		Eval:  makeTextMap(strings.ToUpper),
	},
	{
		Name:  "LOWER",
		Arity: Exactly(1),
		Args:  argScalar(KindText),
		Eval:  makeTextMap(strings.ToLower),
	},
	{
		Name:  "TRIM",
		Arity: Exactly(1),
		Args:  argScalar(KindText),
		// collapses interior runs of spaces as well as the edges
		Eval: makeTextMap(func(s string) string {
			return strings.Join(strings.Fields(s), " ")
		}),
	},
	{
		Name:  "LEFT",
		Arity: Between(1, 2),
		Args:  argSeq(argScalar(KindText), argOpt(argScalar(KindNumber))),
		Eval:  makeTextSlice("LEFT", func(runes []rune, n int) []rune { return runes[:n] }),
	},
	{
		Name:  "RIGHT",
		Arity: Between(1, 2),
		Args:  argSeq(argScalar(KindText), argOpt(argScalar(KindNumber))),
		Eval:  makeTextSlice("RIGHT", func(runes []rune, n int) []rune { return runes[len(runes)-n:] }),
	},
	{
		Name:  "MID",
		Arity: Exactly(3),
		Args:  argSeq(argScalar(KindText), argScalar(KindNumber), argScalar(KindNumber)),
		Eval:  evalMid,
	},
}

func makeTextMap(f func(string) string) func(a Arg, ctx *Context) (Value, error) {
	return func(a Arg, ctx *Context) (Value, error) {
		s, err := ctx.Text(a.(ScalarArg).E)
		if err != nil {
			return Value{}, err
		}
		return TextValue(f(s)), nil
	}
}

// makeTextSlice builds LEFT and RIGHT: the count defaults to 1, must
// not be negative, and is clamped to the text length.
func makeTextSlice(name string, slice func(runes []rune, n int) []rune) func(a Arg, ctx *Context) (Value, error) {
	return func(a Arg, ctx *Context) (Value, error) {
		pair := a.(PairArg)
		s, err := ctx.Text(pair.First.(ScalarArg).E)
		if err != nil {
			return Value{}, err
		}
		n := 1
		if opt := pair.Second.(OptionalArg); opt.Present {
			if n, err = textCount(name, ctx, opt.A); err != nil {
				return Value{}, err
			}
		}
		runes := []rune(s)
		if n > len(runes) {
			n = len(runes)
		}
		return TextValue(string(slice(runes, n))), nil
	}
}

func evalMid(a Arg, ctx *Context) (Value, error) {
	pair := a.(PairArg)
	rest := pair.Second.(PairArg)
	s, err := ctx.Text(pair.First.(ScalarArg).E)
	if err != nil {
		return Value{}, err
	}
	start, err := textCount("MID", ctx, rest.First)
	if err != nil {
		return Value{}, err
	}
	if start < 1 {
		return Value{}, errEval("MID: start position must be at least 1, got %d", start)
	}
	count, err := textCount("MID", ctx, rest.Second)
	if err != nil {
		return Value{}, err
	}
	runes := []rune(s)
	if start > len(runes) {
		return TextValue(""), nil
	}
	end := start - 1 + count
	if end > len(runes) {
		end = len(runes)
	}
	return TextValue(string(runes[start-1 : end])), nil
}

func textCount(fn string, ctx *Context, a Arg) (int, error) {
	v, err := ctx.Value(a.(ScalarArg).E)
	if err != nil {
		return 0, err
	}
	d, err := v.AsNumber(fn)
	if err != nil {
		return 0, err
	}
	n := int(d.IntPart())
	if n < 0 {
		return 0, errEval("%s: count must not be negative, got %d", fn, n)
	}
	return n, nil
}
