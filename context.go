package formula

// MaxDepth bounds formula-cell recursion. A reference chain (or cycle)
// deeper than this fails with an EvalMaxDepth error instead of
// exhausting the stack.
const MaxDepth = 64

// Context carries everything evaluation needs: the sheet the formula
// lives on, the workbook for cross-sheet references, the clock for
// NOW/TODAY, the current recursion depth, and optionally the address of
// the cell holding the formula (ROW/COLUMN with no argument). Contexts
// are copied by value when descending into referenced formula cells, so
// a child's depth increment never leaks back to its parent.
type Context struct {
	Sheet Sheet
	Book  Workbook
	Clock Clock
	Depth int
	Cell  *Ref
}

// NewContext builds an evaluation context over a single sheet, reading
// the wall clock.
func NewContext(sheet Sheet) *Context {
	return &Context{Sheet: sheet, Clock: WallClock{}}
}

// WithBook returns a copy of the context that resolves cross-sheet
// references through book.
func (ctx *Context) WithBook(book Workbook) *Context {
	c := *ctx
	c.Book = book
	return &c
}

// WithClock returns a copy of the context reading the given clock.
func (ctx *Context) WithClock(clock Clock) *Context {
	c := *ctx
	c.Clock = clock
	return &c
}

// WithCell returns a copy of the context evaluating on behalf of the
// cell at r.
func (ctx *Context) WithCell(r Ref) *Context {
	c := *ctx
	c.Cell = &r
	return &c
}

// child derives the context used for a referenced formula cell on
// sheet, one level deeper.
func (ctx *Context) child(sheet Sheet, at Ref) *Context {
	c := *ctx
	c.Sheet = sheet
	c.Depth = ctx.Depth + 1
	c.Cell = &at
	return &c
}

// Value evaluates an expression to a scalar. Function implementations
// receive the context as their evaluation capability; forcing a lazy
// argument goes through here.
func (ctx *Context) Value(e Expr) (Value, error) {
	return evalValue(e, ctx)
}

// Number evaluates an expression and coerces the result to a number.
func (ctx *Context) Number(fn string, e Expr) (Value, error) {
	v, err := evalValue(e, ctx)
	if err != nil {
		return Value{}, err
	}
	d, err := v.AsNumber(fn)
	if err != nil {
		return Value{}, err
	}
	return NumberValue(d), nil
}

// Boolean evaluates an expression and coerces the result to a boolean.
func (ctx *Context) Boolean(fn string, e Expr) (bool, error) {
	v, err := evalValue(e, ctx)
	if err != nil {
		return false, err
	}
	return v.AsBool(fn)
}

// Text evaluates an expression and renders the result as text.
func (ctx *Context) Text(e Expr) (string, error) {
	v, err := evalValue(e, ctx)
	if err != nil {
		return "", err
	}
	return v.AsText(), nil
}
