package formula

// FuncSpec is a registered function: its canonical name, accepted
// argument counts, argument shape, and evaluation behavior. The parser
// consults Arity and Args when validating a call; the evaluator re-runs
// Args over the call's argument list and hands the structured result to
// Eval.
type FuncSpec struct {
	Name  string
	Arity Arity
	Args  ArgSpec
	Eval  func(a Arg, ctx *Context) (Value, error)

	// DateResult marks functions whose numeric-looking result is a date,
	// so hosts can format the cell accordingly.
	DateResult bool
}
