package formula

import (
	"testing"
	"time"
)

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time {
	return c.t
}

func TestNowAndToday(t *testing.T) {
	at := time.Date(2024, 3, 15, 10, 30, 45, 0, time.UTC)
	ctx := NewContext(NewGridSheet("Sheet1")).WithClock(fixedClock{t: at})

	v := mustEval(t, ctx, "NOW()")
	if v.Kind != KindDateTime || !v.Time.Equal(at) {
		t.Errorf("NOW() = %v %v, want datetime %v", v.Kind, v.Time, at)
	}

	v = mustEval(t, ctx, "TODAY()")
	wantDay := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	if v.Kind != KindDate || !v.Time.Equal(wantDay) {
		t.Errorf("TODAY() = %v %v, want date %v", v.Kind, v.Time, wantDay)
	}

	if got := mustEvalNum(t, ctx, "YEAR(TODAY())"); got != "2024" {
		t.Errorf("YEAR(TODAY()) = %s, want 2024", got)
	}
}

func TestDateConstruction(t *testing.T) {
	ctx := NewContext(NewGridSheet("Sheet1"))

	v := mustEval(t, ctx, "DATE(2024,1,31)")
	want := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	if v.Kind != KindDate || !v.Time.Equal(want) {
		t.Errorf("DATE(2024,1,31) = %v %v, want %v", v.Kind, v.Time, want)
	}

	// out-of-range components normalize forward
	v = mustEval(t, ctx, "DATE(2023,13,1)")
	want = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if !v.Time.Equal(want) {
		t.Errorf("DATE(2023,13,1) = %v, want %v", v.Time, want)
	}
}

func TestDateParts(t *testing.T) {
	sheet := sheetOf(t, "Sheet1", map[string]CellValue{
		"A1": DateTimeCell(time.Date(2023, 11, 7, 14, 0, 0, 0, time.UTC)),
		"A2": TextCell("2022-06-30"),
	})
	ctx := NewContext(sheet)

	tests := []struct {
		formula string
		want    string
	}{
		{"YEAR(A1)", "2023"},
		{"MONTH(A1)", "11"},
		{"DAY(A1)", "7"},
		{"YEAR(A2)", "2022"}, // ISO text coerces to a date
		{"MONTH(A2)", "6"},
		{"DAY(A2)", "30"},
	}
	for _, tt := range tests {
		t.Run(tt.formula, func(t *testing.T) {
			if got := mustEvalNum(t, ctx, tt.formula); got != tt.want {
				t.Errorf("Evaluate(%q) = %s, want %s", tt.formula, got, tt.want)
			}
		})
	}

	if kind := evalErrKind(t, ctx, "YEAR(1)"); kind != EvalTypeMismatch {
		t.Errorf("YEAR(1) error = %d, want EvalTypeMismatch", kind)
	}
}

func TestDateComparison(t *testing.T) {
	sheet := sheetOf(t, "Sheet1", map[string]CellValue{
		"A1": DateTimeCell(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)),
		"A2": DateTimeCell(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
	})
	ctx := NewContext(sheet)
	v := mustEval(t, ctx, "A1<A2")
	if !v.Bool {
		t.Error("earlier date not less than later date")
	}
}
