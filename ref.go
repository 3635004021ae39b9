package formula

import (
	"iter"
	"strconv"
	"strings"
)

// Sheet dimension limits, zero-based. A range whose end row or column sits
// at the limit is treated as unbounded in that dimension and is narrowed
// to the used extent before iteration.
const (
	MaxRow = 1<<20 - 1
	MaxCol = 1<<14 - 1
)

// Ref is a zero-based cell reference within a single sheet.
type Ref struct {
	Row int
	Col int
}

// ParseRef parses an A1-style address like "B12" into a zero-based Ref.
func ParseRef(s string) (Ref, error) {
	letterEnd := 0
	for i, ch := range s {
		if ch >= 'A' && ch <= 'Z' || ch >= 'a' && ch <= 'z' {
			letterEnd = i + 1
		} else {
			break
		}
	}
	if letterEnd == 0 || letterEnd == len(s) {
		return Ref{}, errEval("invalid cell reference: %s", s)
	}
	col, ok := columnIndex(s[:letterEnd])
	if !ok {
		return Ref{}, errEval("invalid cell reference: %s", s)
	}
	rowNum, err := strconv.Atoi(s[letterEnd:])
	if err != nil || rowNum < 1 {
		return Ref{}, errEval("invalid cell reference: %s", s)
	}
	return Ref{Row: rowNum - 1, Col: col}, nil
}

// String renders the reference in A1 notation.
func (r Ref) String() string {
	return ColumnName(r.Col) + strconv.Itoa(r.Row+1)
}

// ColumnName converts a zero-based column index to its letter form
// (0 -> A, 25 -> Z, 26 -> AA).
func ColumnName(col int) string {
	name := make([]byte, 0, 3)
	col++
	for col > 0 {
		col--
		name = append(name, byte('A'+col%26))
		col /= 26
	}
	for i, j := 0, len(name)-1; i < j; i, j = i+1, j-1 {
		name[i], name[j] = name[j], name[i]
	}
	return string(name)
}

// columnIndex converts column letters to a zero-based index
// (A=0, B=1, ..., Z=25, AA=26).
func columnIndex(letters string) (int, bool) {
	col := 0
	for _, ch := range strings.ToUpper(letters) {
		if ch < 'A' || ch > 'Z' {
			return 0, false
		}
		col = col*26 + int(ch-'A') + 1
	}
	return col - 1, true
}

// Range is a rectangle of cells. Construct through NewRange, which
// normalizes so Start is the top-left corner; a clamped range may end up
// with End before Start, which simply means it covers no cells.
type Range struct {
	Start Ref
	End   Ref
}

func NewRange(a, b Ref) Range {
	return Range{
		Start: Ref{Row: min(a.Row, b.Row), Col: min(a.Col, b.Col)},
		End:   Ref{Row: max(a.Row, b.Row), Col: max(a.Col, b.Col)},
	}
}

// ColumnRange builds an unbounded full-column range (e.g. A:B).
func ColumnRange(startCol, endCol int) Range {
	return Range{
		Start: Ref{Row: 0, Col: min(startCol, endCol)},
		End:   Ref{Row: MaxRow, Col: max(startCol, endCol)},
	}
}

func (r Range) Height() int {
	return r.End.Row - r.Start.Row + 1
}

func (r Range) Width() int {
	return r.End.Col - r.Start.Col + 1
}

// Shape reports height and width, the order used in dimension errors.
func (r Range) Shape() (h, w int) {
	return r.Height(), r.Width()
}

func (r Range) SameShape(o Range) bool {
	return r.Height() == o.Height() && r.Width() == o.Width()
}

func (r Range) Contains(ref Ref) bool {
	return ref.Row >= r.Start.Row && ref.Row <= r.End.Row &&
		ref.Col >= r.Start.Col && ref.Col <= r.End.Col
}

func (r Range) String() string {
	if r.Start.Row == 0 && r.End.Row == MaxRow {
		return ColumnName(r.Start.Col) + ":" + ColumnName(r.End.Col)
	}
	return r.Start.String() + ":" + r.End.String()
}

// Cells iterates the range lazily in row-major order.
func (r Range) Cells() iter.Seq[Ref] {
	return func(yield func(Ref) bool) {
		for row := r.Start.Row; row <= r.End.Row; row++ {
			for col := r.Start.Col; col <= r.End.Col; col++ {
				if !yield(Ref{Row: row, Col: col}) {
					return
				}
			}
		}
	}
}

// clampUnbounded narrows the unbounded dimensions of the range to the
// given extent. Bounded dimensions keep their written size so paired
// ranges keep their declared shapes.
func (r Range) clampUnbounded(rows, cols int) Range {
	if r.End.Row == MaxRow {
		r.End.Row = rows - 1
		if r.End.Row < r.Start.Row {
			r.End.Row = r.Start.Row - 1
		}
	}
	if r.End.Col == MaxCol {
		r.End.Col = cols - 1
		if r.End.Col < r.Start.Col {
			r.End.Col = r.Start.Col - 1
		}
	}
	return r
}

// RangeLoc tags a range with the sheet it targets. An empty SheetName
// means the current sheet of the evaluation context; a non-empty name
// must be resolved against a workbook before any cell is read.
type RangeLoc struct {
	SheetName string
	Range     Range
}

func (l RangeLoc) String() string {
	if l.SheetName == "" {
		return l.Range.String()
	}
	return quoteSheetName(l.SheetName) + "!" + l.Range.String()
}

// quoteSheetName wraps the name in single quotes when it would not lex as
// a bare identifier.
func quoteSheetName(name string) string {
	plain := name != ""
	for i, ch := range name {
		alpha := ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch == '_'
		digit := ch >= '0' && ch <= '9'
		if !alpha && !(digit && i > 0) {
			plain = false
			break
		}
	}
	if plain {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
