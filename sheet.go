package formula

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CellKind tags the domain cell-value union.
type CellKind uint8

const (
	CellEmpty CellKind = iota
	CellNumber
	CellText
	CellBool
	CellDateTime
	CellFormula
	CellError
)

// CellValue is the domain value a sheet holds at a cell. A formula cell
// carries its source text and, optionally, a cached result from a previous
// calculation; when the cache is absent the evaluator computes the formula
// in place.
type CellValue struct {
	Kind    CellKind
	Num     decimal.Decimal
	Text    string
	Bool    bool
	Time    time.Time
	Formula string
	Cached  *CellValue
	ErrMsg  string
}

func EmptyCell() CellValue {
	return CellValue{Kind: CellEmpty}
}

func NumberCell(d decimal.Decimal) CellValue {
	return CellValue{Kind: CellNumber, Num: d}
}

// NumberCellFromString parses the text as an exact decimal. It exists so
// tests and hosts can write cells without going through float64.
func NumberCellFromString(s string) CellValue {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return ErrorCell(fmt.Sprintf("invalid number: %s", s))
	}
	return NumberCell(d)
}

func TextCell(s string) CellValue {
	return CellValue{Kind: CellText, Text: s}
}

func BoolCell(b bool) CellValue {
	return CellValue{Kind: CellBool, Bool: b}
}

func DateTimeCell(t time.Time) CellValue {
	return CellValue{Kind: CellDateTime, Time: t}
}

func FormulaCell(src string, cached *CellValue) CellValue {
	return CellValue{Kind: CellFormula, Formula: src, Cached: cached}
}

func ErrorCell(msg string) CellValue {
	return CellValue{Kind: CellError, ErrMsg: msg}
}

func (c CellValue) IsEmpty() bool {
	return c.Kind == CellEmpty
}

func (c CellValue) IsError() bool {
	return c.Kind == CellError
}

// String renders the cell for debugging, not for display.
func (c CellValue) String() string {
	switch c.Kind {
	case CellEmpty:
		return ""
	case CellNumber:
		return c.Num.String()
	case CellText:
		return c.Text
	case CellBool:
		if c.Bool {
			return "TRUE"
		}
		return "FALSE"
	case CellDateTime:
		return c.Time.Format(time.RFC3339)
	case CellFormula:
		return "=" + c.Formula
	case CellError:
		return "error: " + c.ErrMsg
	}
	return ""
}

// Sheet is the narrow read interface the evaluator consumes. CellAt
// returns the empty cell for any reference the sheet has no data for.
// UsedExtent reports the exclusive row/column bounds of the populated
// region; unbounded range references are clamped to it before iteration.
type Sheet interface {
	Name() string
	CellAt(r Ref) CellValue
	UsedExtent() (rows, cols int)
}

// Workbook resolves sheet names for cross-sheet references.
type Workbook interface {
	SheetByName(name string) (Sheet, bool)
}

// Clock provides time for NOW and TODAY so evaluation stays testable.
type Clock interface {
	Now() time.Time
}

// WallClock is the default Clock using system time.
type WallClock struct{}

func (WallClock) Now() time.Time {
	return time.Now()
}

// GridSheet is a map-backed Sheet for tests and simple embedding hosts.
// It tracks its used extent as cells are set.
type GridSheet struct {
	name  string
	cells map[Ref]CellValue
	rows  int
	cols  int
}

func NewGridSheet(name string) *GridSheet {
	return &GridSheet{
		name:  name,
		cells: make(map[Ref]CellValue),
	}
}

func (g *GridSheet) Name() string {
	return g.name
}

// Set places a value at an A1-style address.
func (g *GridSheet) Set(addr string, v CellValue) error {
	r, err := ParseRef(addr)
	if err != nil {
		return err
	}
	g.SetAt(r, v)
	return nil
}

func (g *GridSheet) SetAt(r Ref, v CellValue) {
	if v.Kind == CellEmpty {
		delete(g.cells, r)
		return
	}
	g.cells[r] = v
	if r.Row+1 > g.rows {
		g.rows = r.Row + 1
	}
	if r.Col+1 > g.cols {
		g.cols = r.Col + 1
	}
}

func (g *GridSheet) CellAt(r Ref) CellValue {
	return g.cells[r]
}

func (g *GridSheet) UsedExtent() (rows, cols int) {
	return g.rows, g.cols
}

// MapWorkbook is a name-keyed Workbook over a set of sheets.
type MapWorkbook struct {
	sheets map[string]Sheet
}

func NewMapWorkbook(sheets ...Sheet) *MapWorkbook {
	wb := &MapWorkbook{sheets: make(map[string]Sheet)}
	for _, s := range sheets {
		wb.AddSheet(s)
	}
	return wb
}

func (wb *MapWorkbook) AddSheet(s Sheet) {
	wb.sheets[s.Name()] = s
}

func (wb *MapWorkbook) SheetByName(name string) (Sheet, bool) {
	s, ok := wb.sheets[name]
	return s, ok
}
