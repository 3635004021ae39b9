package formula

import (
	"testing"
)

func TestIfError(t *testing.T) {
	sheet := sheetOf(t, "Sheet1", map[string]CellValue{
		"A1": num("10"),
		"A2": ErrorCell("bad"),
	})
	ctx := NewContext(sheet)

	if got := mustEvalNum(t, ctx, "IFERROR(1/0,42)"); got != "42" {
		t.Errorf("IFERROR(1/0,42) = %s, want 42", got)
	}
	if got := mustEvalNum(t, ctx, "IFERROR(A1*2,0)"); got != "20" {
		t.Errorf("IFERROR(A1*2,0) = %s, want 20", got)
	}
	if got := mustEvalNum(t, ctx, "IFERROR(A2,0)"); got != "0" {
		t.Errorf("IFERROR over an error cell = %s, want 0", got)
	}
	// the fallback is evaluated only on failure, so its own poison must
	// stay inert on the success path
	if got := mustEvalNum(t, ctx, "IFERROR(7,1/0)"); got != "7" {
		t.Errorf("IFERROR(7,1/0) = %s, want 7", got)
	}
	// but a failing fallback propagates
	if kind := evalErrKind(t, ctx, "IFERROR(1/0,2/0)"); kind != EvalDivZero {
		t.Errorf("IFERROR with failing fallback = %d, want EvalDivZero", kind)
	}
}

func TestTypePredicates(t *testing.T) {
	sheet := sheetOf(t, "Sheet1", map[string]CellValue{
		"A1": num("10"),
		"A2": TextCell("hi"),
		"A3": ErrorCell("boom"),
	})
	ctx := NewContext(sheet)

	tests := []struct {
		formula string
		want    bool
	}{
		{"ISERROR(1/0)", true},
		{"ISERROR(1)", false},
		{"ISERR(1/0)", true},
		{"ISNUMBER(A1)", true},
		{"ISNUMBER(A2)", false},
		{"ISNUMBER(1+1)", true},
		{`ISTEXT("x")`, true},
		{"ISTEXT(A1)", false},
		{"ISBLANK(A9)", true},
		{"ISBLANK(A1)", false},
		// a failing argument answers FALSE, it does not propagate
		{"ISNUMBER(1/0)", false},
		{"ISNUMBER(A3)", false},
		{"ISTEXT(1/0)", false},
		{"ISTEXT(A3)", false},
		{"ISBLANK(1/0)", false},
		{"ISBLANK(A3)", false},
	}
	for _, tt := range tests {
		t.Run(tt.formula, func(t *testing.T) {
			v := mustEval(t, ctx, tt.formula)
			if v.Kind != KindBool || v.Bool != tt.want {
				t.Errorf("Evaluate(%q) = %v/%v, want %v", tt.formula, v.Kind, v.Bool, tt.want)
			}
		})
	}
}
