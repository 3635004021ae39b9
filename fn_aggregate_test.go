package formula

import (
	"math"
	"testing"
)

func TestAggregates(t *testing.T) {
	sheet := sheetOf(t, "Sheet1", map[string]CellValue{
		"A1": num("3"),
		"A2": num("4"),
		"B1": num("1"),
		"B2": num("5"),
		"B3": num("2"),
		"B4": num("4"),
		"C1": num("10"),
		"C2": TextCell("skip me"),
		"C3": BoolCell(true),
		"C4": num("20"),
	})
	ctx := NewContext(sheet)

	tests := []struct {
		formula string
		want    string
	}{
		{"SUM(1,2,A1:A2)", "10"},
		{"SUM(B1:B4)", "12"},
		{"SUM(C1:C4)", "30"}, // text and booleans in ranges are skipped
		{"AVERAGE(B1:B4)", "3"},
		{"MIN(B1:B4)", "1"},
		{"MAX(B1:B4)", "5"},
		{"MAX(D1:D3)", "0"}, // no numeric values
		{"MEDIAN(B1:B4)", "3"},
		{"MEDIAN(1,2,3,4,100)", "3"},
		{"COUNT(C1:C4)", "2"},
		{"COUNTA(C1:C4)", "4"},
		{"COUNTBLANK(C1:C5)", "1"},
		{"SUM(A1,A2,10)", "17"},
	}
	for _, tt := range tests {
		t.Run(tt.formula, func(t *testing.T) {
			if got := mustEvalNum(t, ctx, tt.formula); got != tt.want {
				t.Errorf("Evaluate(%q) = %s, want %s", tt.formula, got, tt.want)
			}
		})
	}
}

func TestAggregateSpread(t *testing.T) {
	ctx := NewContext(NewGridSheet("Sheet1"))

	tests := []struct {
		formula string
		want    float64
	}{
		{"STDEVP(2,4,4,4,5,5,7,9)", 2},
		{"VARP(2,4,4,4,5,5,7,9)", 4},
		{"VAR(1,2,3,4)", 5.0 / 3},
		{"STDEV(1,2,3,4)", math.Sqrt(5.0 / 3)},
	}
	for _, tt := range tests {
		t.Run(tt.formula, func(t *testing.T) {
			v := mustEval(t, ctx, tt.formula)
			got, _ := v.Num.Float64()
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.formula, got, tt.want)
			}
		})
	}

	// sample statistics need two values
	if _, err := ctx.Evaluate("STDEV(1)"); err == nil {
		t.Error("STDEV(1) succeeded, want error")
	}
}

func TestAggregateErrorHandling(t *testing.T) {
	sheet := sheetOf(t, "Sheet1", map[string]CellValue{
		"A1": num("1"),
		"A2": ErrorCell("boom"),
		"A3": TextCell("x"),
	})
	ctx := NewContext(sheet)

	// numeric aggregates propagate error cells
	if _, err := ctx.Evaluate("SUM(A1:A3)"); err == nil {
		t.Error("SUM over an error cell succeeded, want error")
	}
	// the counting family intercepts them instead
	if got := mustEvalNum(t, ctx, "COUNTA(A1:A3)"); got != "3" {
		t.Errorf("COUNTA(A1:A3) = %s, want 3 (error cells count as filled)", got)
	}
	if got := mustEvalNum(t, ctx, "COUNT(A1:A3)"); got != "1" {
		t.Errorf("COUNT(A1:A3) = %s, want 1", got)
	}

	// a non-numeric direct argument is rejected even though range text
	// is skipped
	if kind := evalErrKind(t, ctx, `SUM(1,"pear")`); kind != EvalTypeMismatch {
		t.Errorf(`SUM(1,"pear") error = %d, want EvalTypeMismatch`, kind)
	}
}

func TestAverageOfNothing(t *testing.T) {
	ctx := NewContext(NewGridSheet("Sheet1"))
	if kind := evalErrKind(t, ctx, "AVERAGE(A1:A5)"); kind != EvalDivZero {
		t.Errorf("AVERAGE over blanks error = %d, want EvalDivZero", kind)
	}
}
