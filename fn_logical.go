package formula

// Logical functions take their operands lazily: AND stops at the first
// false operand and OR at the first true one, so later operands that
// would fail are never evaluated. The binary &&/|| tree node covers the
// two-operand case the parser builds for hosts; these cover the n-ary
// call form.

var logicalFuncs = []FuncSpec{
	{
		Name:  "AND",
		Arity: AtLeast(1),
		Args:  argMany(argLazy("condition")),
		Eval:  makeJunction("AND", false),
	},
	{
		Name:  "OR",
		Arity: AtLeast(1),
		Args:  argMany(argLazy("condition")),
		Eval:  makeJunction("OR", true),
	},
	{
		Name:  "NOT",
		Arity: Exactly(1),
		Args:  argScalar(KindBool),
		Eval: func(a Arg, ctx *Context) (Value, error) {
			v, err := ctx.Value(a.(ScalarArg).E)
			if err != nil {
				return Value{}, err
			}
			return BoolValue(!v.Bool), nil
		},
	},
	{
		Name:  "TRUE",
		Arity: Exactly(0),
		Args:  argNone(),
		Eval: func(Arg, *Context) (Value, error) {
			return BoolValue(true), nil
		},
	},
	{
		Name:  "FALSE",
		Arity: Exactly(0),
		Args:  argNone(),
		Eval: func(Arg, *Context) (Value, error) {
			return BoolValue(false), nil
		},
	},
	{
		Name:  "IF",
		Arity: Between(2, 3),
		Args:  argSeq(argLazy("condition"), argLazy("value if true"), argOpt(argLazy("value if false"))),
		Eval:  evalIfCall,
	},
}

// makeJunction builds AND (stop=false) or OR (stop=true).
func makeJunction(name string, stop bool) func(a Arg, ctx *Context) (Value, error) {
	return func(a Arg, ctx *Context) (Value, error) {
		for _, item := range a.(ListArg).Items {
			b, err := ctx.Boolean(name, item.(LazyArg).E)
			if err != nil {
				return Value{}, err
			}
			if b == stop {
				return BoolValue(stop), nil
			}
		}
		return BoolValue(!stop), nil
	}
}

// evalIfCall backs the registry entry for IF. The parser normally folds
// IF into the conditional tree node, so this path only runs for calls
// built programmatically; it keeps the same laziness.
func evalIfCall(a Arg, ctx *Context) (Value, error) {
	pair := a.(PairArg)
	cond, err := ctx.Boolean("IF", pair.First.(LazyArg).E)
	if err != nil {
		return Value{}, err
	}
	rest := pair.Second.(PairArg)
	if cond {
		return ctx.Value(rest.First.(LazyArg).E)
	}
	if opt := rest.Second.(OptionalArg); opt.Present {
		return ctx.Value(opt.A.(LazyArg).E)
	}
	return BoolValue(false), nil
}
