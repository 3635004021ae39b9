package formula

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ValueKind tags the evaluated scalar union.
type ValueKind uint8

const (
	KindEmpty ValueKind = iota
	KindNumber
	KindText
	KindBool
	KindDate     // calendar date, time-of-day irrelevant
	KindDateTime // full timestamp
	KindMatrix   // 2-D result the host may spill (TRANSPOSE)
	KindError    // intercepted domain cell error, only seen inside range sweeps
)

func (k ValueKind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindBool:
		return "boolean"
	case KindDate:
		return "date"
	case KindDateTime:
		return "datetime"
	case KindMatrix:
		return "matrix"
	case KindError:
		return "error"
	}
	return "unknown"
}

// Value is the evaluated scalar produced by the evaluator, used wherever
// a function must accept or compare values of differing static type.
type Value struct {
	Kind ValueKind
	Num  decimal.Decimal
	Str  string
	Bool bool
	Time time.Time
	Mat  [][]CellValue
}

func EmptyValue() Value {
	return Value{Kind: KindEmpty}
}

func NumberValue(d decimal.Decimal) Value {
	return Value{Kind: KindNumber, Num: d}
}

func TextValue(s string) Value {
	return Value{Kind: KindText, Str: s}
}

func BoolValue(b bool) Value {
	return Value{Kind: KindBool, Bool: b}
}

func DateValue(t time.Time) Value {
	y, m, d := t.Date()
	return Value{Kind: KindDate, Time: time.Date(y, m, d, 0, 0, 0, 0, t.Location())}
}

func DateTimeValue(t time.Time) Value {
	return Value{Kind: KindDateTime, Time: t}
}

func MatrixValue(mat [][]CellValue) Value {
	return Value{Kind: KindMatrix, Mat: mat}
}

func errorValue(msg string) Value {
	return Value{Kind: KindError, Str: msg}
}

// fromCellValue lifts a domain cell value into an evaluated scalar. Error
// cells become evaluation errors; callers that intercept errors handle
// that before calling. Formula cells are resolved by the evaluator and
// never reach this function.
func fromCellValue(c CellValue) (Value, error) {
	switch c.Kind {
	case CellEmpty:
		return EmptyValue(), nil
	case CellNumber:
		return NumberValue(c.Num), nil
	case CellText:
		return TextValue(c.Text), nil
	case CellBool:
		return BoolValue(c.Bool), nil
	case CellDateTime:
		return DateTimeValue(c.Time), nil
	case CellError:
		return Value{}, errEval("cell error: %s", c.ErrMsg)
	}
	return Value{}, errEval("unexpected cell kind %d", c.Kind)
}

// ToCellValue converts the evaluated scalar back into the domain union.
// A matrix collapses to its top-left element; hosts that spill matrices
// work with the Value directly.
func (v Value) ToCellValue() CellValue {
	switch v.Kind {
	case KindNumber:
		return NumberCell(v.Num)
	case KindText:
		return TextCell(v.Str)
	case KindBool:
		return BoolCell(v.Bool)
	case KindDate, KindDateTime:
		return DateTimeCell(v.Time)
	case KindMatrix:
		if len(v.Mat) > 0 && len(v.Mat[0]) > 0 {
			return v.Mat[0][0]
		}
		return EmptyCell()
	case KindError:
		return ErrorCell(v.Str)
	}
	return EmptyCell()
}

func (v Value) IsNumeric() bool {
	return v.Kind == KindNumber
}

// AsNumber performs the checked numeric conversion: numbers pass through,
// booleans become 1/0, empty becomes 0, and numeric text is parsed
// exactly. Anything else is a type mismatch attributed to fn.
func (v Value) AsNumber(fn string) (decimal.Decimal, error) {
	switch v.Kind {
	case KindNumber:
		return v.Num, nil
	case KindBool:
		if v.Bool {
			return decimal.NewFromInt(1), nil
		}
		return decimal.Decimal{}, nil
	case KindEmpty:
		return decimal.Decimal{}, nil
	case KindText:
		d, err := decimal.NewFromString(strings.TrimSpace(v.Str))
		if err != nil {
			return decimal.Decimal{}, errTypeMismatch(fn, KindNumber.String(), KindText.String())
		}
		return d, nil
	}
	return decimal.Decimal{}, errTypeMismatch(fn, KindNumber.String(), v.Kind.String())
}

// AsBool performs the checked boolean conversion: booleans pass through,
// numbers are true when non-zero, empty is false.
func (v Value) AsBool(fn string) (bool, error) {
	switch v.Kind {
	case KindBool:
		return v.Bool, nil
	case KindNumber:
		return !v.Num.IsZero(), nil
	case KindEmpty:
		return false, nil
	}
	return false, errTypeMismatch(fn, KindBool.String(), v.Kind.String())
}

// AsText renders the value as text the way a cell would display it.
func (v Value) AsText() string {
	switch v.Kind {
	case KindNumber:
		return v.Num.String()
	case KindText:
		return v.Str
	case KindBool:
		if v.Bool {
			return "TRUE"
		}
		return "FALSE"
	case KindDate:
		return v.Time.Format("2006-01-02")
	case KindDateTime:
		return v.Time.Format("2006-01-02 15:04:05")
	}
	return ""
}

// AsDate performs the checked date conversion. Text parses as an ISO
// date; datetimes truncate to their calendar day.
func (v Value) AsDate(fn string) (time.Time, error) {
	switch v.Kind {
	case KindDate, KindDateTime:
		return v.Time, nil
	case KindText:
		t, err := time.Parse("2006-01-02", strings.TrimSpace(v.Str))
		if err != nil {
			return time.Time{}, errTypeMismatch(fn, KindDate.String(), KindText.String())
		}
		return t, nil
	}
	return time.Time{}, errTypeMismatch(fn, KindDate.String(), v.Kind.String())
}

// compareValues orders two scalars: numbers numerically, text
// case-insensitively, booleans false<true, dates chronologically, and
// empty equal to empty. Ordering across kinds is a type mismatch, except
// that empty compares as zero/blank against numbers and text.
func compareValues(a, b Value) (int, error) {
	if a.Kind == KindEmpty && b.Kind != KindEmpty {
		a = zeroOf(b.Kind)
	}
	if b.Kind == KindEmpty && a.Kind != KindEmpty {
		b = zeroOf(a.Kind)
	}
	switch {
	case a.Kind == KindEmpty && b.Kind == KindEmpty:
		return 0, nil
	case a.Kind == KindNumber && b.Kind == KindNumber:
		return a.Num.Cmp(b.Num), nil
	case a.Kind == KindText && b.Kind == KindText:
		return strings.Compare(strings.ToLower(a.Str), strings.ToLower(b.Str)), nil
	case a.Kind == KindBool && b.Kind == KindBool:
		switch {
		case a.Bool == b.Bool:
			return 0, nil
		case !a.Bool:
			return -1, nil
		}
		return 1, nil
	case (a.Kind == KindDate || a.Kind == KindDateTime) && (b.Kind == KindDate || b.Kind == KindDateTime):
		return a.Time.Compare(b.Time), nil
	}
	return 0, errTypeMismatch("compare", a.Kind.String(), b.Kind.String())
}

func zeroOf(k ValueKind) Value {
	switch k {
	case KindNumber:
		return NumberValue(decimal.Decimal{})
	case KindText:
		return TextValue("")
	case KindBool:
		return BoolValue(false)
	}
	return EmptyValue()
}

// equalValues is the loose equality used by comparisons and exact
// criteria: values of different kinds are simply unequal.
func equalValues(a, b Value) bool {
	cmp, err := compareValues(a, b)
	if err != nil {
		return false
	}
	return cmp == 0
}
