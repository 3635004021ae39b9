package formula

import "fmt"

// ParseErrKind classifies errors produced while turning formula text into
// an expression tree. Parse errors never occur during evaluation.
type ParseErrKind uint8

const (
	ParseInvalidArgs ParseErrKind = iota // argument list does not fit the function's shape
	ParseUnexpectedToken
	ParseUnknownFunction
	ParseUnbalancedParens
)

// ParseError is the single error type returned by Parse and by argument
// shape validation. For ParseInvalidArgs the Func, Pos, Expected and
// Actual fields identify the offending function, the zero-based argument
// position, and both argument-shape descriptions.
type ParseError struct {
	Kind     ParseErrKind
	Func     string
	Pos      int
	Expected string
	Actual   string
	Token    string
	Message  string
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case ParseInvalidArgs:
		return fmt.Sprintf("%s: argument %d: expected %s, got %s", e.Func, e.Pos, e.Expected, e.Actual)
	case ParseUnexpectedToken:
		return fmt.Sprintf("unexpected token: %s", e.Token)
	case ParseUnknownFunction:
		return fmt.Sprintf("unknown function: %s", e.Func)
	case ParseUnbalancedParens:
		return e.Message
	}
	return e.Message
}

func errInvalidArgs(fn string, pos int, expected, actual string) *ParseError {
	return &ParseError{Kind: ParseInvalidArgs, Func: fn, Pos: pos, Expected: expected, Actual: actual}
}

func errUnexpectedToken(tok string) *ParseError {
	return &ParseError{Kind: ParseUnexpectedToken, Token: tok}
}

func errUnknownFunction(name string) *ParseError {
	return &ParseError{Kind: ParseUnknownFunction, Func: name}
}

func errUnbalanced(msg string) *ParseError {
	return &ParseError{Kind: ParseUnbalancedParens, Message: msg}
}

// EvalErrKind classifies errors produced while evaluating an expression
// tree. Evaluation errors never occur at parse time.
type EvalErrKind uint8

const (
	EvalDivZero EvalErrKind = iota
	EvalTypeMismatch // function, expected kind, actual kind
	EvalFailure      // generic failure, may wrap a domain cell error
	EvalSheetNotFound
	EvalMaxDepth
)

// EvalError is the single error type produced during evaluation. All
// evaluation entry points return it as an explicit value; nothing panics.
// Formula optionally carries the text of the formula being evaluated when
// the failure happened inside a recursively evaluated cell.
type EvalError struct {
	Kind     EvalErrKind
	Func     string
	Expected string
	Actual   string
	Sheet    string
	Message  string
	Formula  string
}

func (e *EvalError) Error() string {
	switch e.Kind {
	case EvalDivZero:
		return "division by zero"
	case EvalTypeMismatch:
		return fmt.Sprintf("%s: expected %s, got %s", e.Func, e.Expected, e.Actual)
	case EvalSheetNotFound:
		if e.Message != "" {
			return e.Message
		}
		return fmt.Sprintf("sheet not found: %s", e.Sheet)
	case EvalMaxDepth:
		return fmt.Sprintf("maximum formula recursion depth (%d) exceeded", MaxDepth)
	}
	if e.Formula != "" {
		return fmt.Sprintf("%s (in formula %q)", e.Message, e.Formula)
	}
	return e.Message
}

func errDivZero() *EvalError {
	return &EvalError{Kind: EvalDivZero}
}

func errTypeMismatch(fn, expected, actual string) *EvalError {
	return &EvalError{Kind: EvalTypeMismatch, Func: fn, Expected: expected, Actual: actual}
}

func errEval(format string, args ...any) *EvalError {
	return &EvalError{Kind: EvalFailure, Message: fmt.Sprintf(format, args...)}
}

func errSheetNotFound(name string) *EvalError {
	return &EvalError{Kind: EvalSheetNotFound, Sheet: name}
}

func errNoWorkbook(name string) *EvalError {
	return &EvalError{
		Kind:    EvalSheetNotFound,
		Sheet:   name,
		Message: fmt.Sprintf("cross-sheet reference to %q requires a workbook", name),
	}
}

func errMaxDepth() *EvalError {
	return &EvalError{Kind: EvalMaxDepth}
}
