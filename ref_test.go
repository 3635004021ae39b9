package formula

import (
	"testing"
)

func TestParseRefAndString(t *testing.T) {
	tests := []struct {
		addr string
		row  int
		col  int
	}{
		{"A1", 0, 0},
		{"B12", 11, 1},
		{"Z1", 0, 25},
		{"AA1", 0, 26},
		{"AB10", 9, 27},
	}
	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			r, err := ParseRef(tt.addr)
			if err != nil {
				t.Fatalf("ParseRef(%q): %v", tt.addr, err)
			}
			if r.Row != tt.row || r.Col != tt.col {
				t.Errorf("ParseRef(%q) = %v, want row %d col %d", tt.addr, r, tt.row, tt.col)
			}
			if got := r.String(); got != tt.addr {
				t.Errorf("String() = %q, want %q", got, tt.addr)
			}
		})
	}

	for _, bad := range []string{"", "A", "1", "A0", "1A", "A-1"} {
		if _, err := ParseRef(bad); err == nil {
			t.Errorf("ParseRef(%q) succeeded, want error", bad)
		}
	}
}

func TestRangeGeometry(t *testing.T) {
	a, _ := ParseRef("B2")
	b, _ := ParseRef("D5")

	r := NewRange(b, a) // corners in either order
	if r.Start != a || r.End != b {
		t.Errorf("NewRange did not normalize: %v", r)
	}
	if r.Height() != 4 || r.Width() != 3 {
		t.Errorf("shape = %dx%d, want 4x3", r.Height(), r.Width())
	}
	if r.String() != "B2:D5" {
		t.Errorf("String() = %q, want B2:D5", r.String())
	}
	if !r.Contains(Ref{Row: 2, Col: 2}) || r.Contains(Ref{Row: 0, Col: 0}) {
		t.Error("Contains gave wrong answers")
	}

	var cells []string
	for ref := range r.Cells() {
		cells = append(cells, ref.String())
	}
	if len(cells) != 12 || cells[0] != "B2" || cells[11] != "D5" {
		t.Errorf("Cells() order wrong: %v", cells)
	}
}

func TestColumnRangeClamp(t *testing.T) {
	r := ColumnRange(0, 1)
	if r.String() != "A:B" {
		t.Errorf("String() = %q, want A:B", r.String())
	}
	clamped := r.clampUnbounded(10, 5)
	if clamped.End.Row != 9 || clamped.End.Col != 1 {
		t.Errorf("clamped = %v, want end row 9 col 1 (bounded column kept)", clamped)
	}

	// clamping an empty sheet yields a range covering nothing
	empty := ColumnRange(2, 2).clampUnbounded(0, 0)
	count := 0
	for range empty.Cells() {
		count++
	}
	if count != 0 {
		t.Errorf("empty clamp iterated %d cells, want 0", count)
	}
}

func TestQuoteSheetName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Rates", "Rates"},
		{"rates_2024", "rates_2024"},
		{"My Sheet", "'My Sheet'"},
		{"P&L", "'P&L'"},
		{"it's", "'it''s'"},
		{"1st", "'1st'"},
	}
	for _, tt := range tests {
		if got := quoteSheetName(tt.name); got != tt.want {
			t.Errorf("quoteSheetName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestColumnName(t *testing.T) {
	tests := []struct {
		col  int
		want string
	}{
		{0, "A"}, {25, "Z"}, {26, "AA"}, {51, "AZ"}, {52, "BA"}, {701, "ZZ"}, {702, "AAA"},
	}
	for _, tt := range tests {
		if got := ColumnName(tt.col); got != tt.want {
			t.Errorf("ColumnName(%d) = %q, want %q", tt.col, got, tt.want)
		}
		back, ok := columnIndex(tt.want)
		if !ok || back != tt.col {
			t.Errorf("columnIndex(%q) = %d/%v, want %d", tt.want, back, ok, tt.col)
		}
	}
}
