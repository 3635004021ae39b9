package formula

// Type predicates and the error guard. The whole family intercepts
// evaluation errors instead of propagating them; only IFERROR
// substitutes a fallback, and it evaluates the fallback only after the
// first argument actually failed.

var typecheckFuncs = []FuncSpec{
	{
		Name:  "IFERROR",
		Arity: Exactly(2),
		Args:  argSeq(argLazy("value"), argLazy("fallback")),
		Eval: func(a Arg, ctx *Context) (Value, error) {
			pair := a.(PairArg)
			v, err := ctx.Value(pair.First.(LazyArg).E)
			if err == nil {
				return v, nil
			}
			if _, ok := err.(*EvalError); !ok {
				return Value{}, err
			}
			return ctx.Value(pair.Second.(LazyArg).E)
		},
	},
	{
		Name:  "ISERROR",
		Arity: Exactly(1),
		Args:  argLazy("value"),
		Eval:  makeErrorProbe(),
	},
	{
		Name:  "ISERR",
		Arity: Exactly(1),
		Args:  argLazy("value"),
		Eval:  makeErrorProbe(),
	},
	{
		Name:  "ISNUMBER",
		Arity: Exactly(1),
		Args:  argLazy("value"),
		Eval:  makeKindProbe(func(v Value) bool { return v.Kind == KindNumber }),
	},
	{
		Name:  "ISTEXT",
		Arity: Exactly(1),
		Args:  argLazy("value"),
		Eval:  makeKindProbe(func(v Value) bool { return v.Kind == KindText }),
	},
	{
		Name:  "ISBLANK",
		Arity: Exactly(1),
		Args:  argLazy("value"),
		Eval:  makeKindProbe(func(v Value) bool { return v.Kind == KindEmpty }),
	},
}

func makeErrorProbe() func(a Arg, ctx *Context) (Value, error) {
	return func(a Arg, ctx *Context) (Value, error) {
		_, err := ctx.Value(a.(LazyArg).E)
		if err == nil {
			return BoolValue(false), nil
		}
		if _, ok := err.(*EvalError); !ok {
			return Value{}, err
		}
		return BoolValue(true), nil
	}
}

// makeKindProbe builds the type predicates. Like the error probes they
// intercept evaluation errors: a failing argument is not a number, not
// text and not blank, so the predicate answers FALSE rather than
// propagating.
func makeKindProbe(test func(v Value) bool) func(a Arg, ctx *Context) (Value, error) {
	return func(a Arg, ctx *Context) (Value, error) {
		v, err := ctx.Value(a.(LazyArg).E)
		if err != nil {
			if _, ok := err.(*EvalError); !ok {
				return Value{}, err
			}
			return BoolValue(false), nil
		}
		return BoolValue(test(v)), nil
	}
}
