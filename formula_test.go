package formula

import (
	"testing"
)

func TestEvaluateFormula(t *testing.T) {
	sheet := sheetOf(t, "Sheet1", map[string]CellValue{
		"A1": num("2"),
		"A2": num("3"),
	})

	got, err := EvaluateFormula(sheet, "=A1*A2+1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != CellNumber || got.Num.String() != "7" {
		t.Errorf("EvaluateFormula = %v %s, want number 7", got.Kind, got.Num)
	}

	got, err = EvaluateFormula(sheet, `IF(A1>1,"big","small")`)
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != CellText || got.Text != "big" {
		t.Errorf("EvaluateFormula = %v %q, want text big", got.Kind, got.Text)
	}

	if _, err = EvaluateFormula(sheet, "1+"); err == nil {
		t.Error("parse failure not reported")
	}
	if _, err = EvaluateFormula(sheet, "Rates!A1"); err == nil {
		t.Error("cross-sheet reference without workbook succeeded")
	}
}

func TestEvaluateFormulaInBook(t *testing.T) {
	orders := sheetOf(t, "Orders", map[string]CellValue{
		"A1": num("100"),
		"A2": num("250"),
	})
	rates := sheetOf(t, "Rates", map[string]CellValue{
		"B1": num("0.2"),
	})
	book := NewMapWorkbook(orders, rates)

	got, err := EvaluateFormulaInBook(book, "Orders", "SUM(A1:A2)*Rates!B1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Num.String() != "70" {
		t.Errorf("result = %s, want 70", got.Num.String())
	}

	if _, err = EvaluateFormulaInBook(book, "Missing", "1"); err == nil {
		t.Error("unknown evaluation sheet succeeded, want error")
	}

	// cross-sheet column ranges narrow against the target sheet
	got, err = EvaluateFormulaInBook(book, "Rates", "SUM(Orders!A:A)")
	if err != nil {
		t.Fatal(err)
	}
	if got.Num.String() != "350" {
		t.Errorf("SUM(Orders!A:A) = %s, want 350", got.Num.String())
	}
}

func TestGridSheetExtent(t *testing.T) {
	g := NewGridSheet("S")
	if rows, cols := g.UsedExtent(); rows != 0 || cols != 0 {
		t.Errorf("empty extent = %dx%d, want 0x0", rows, cols)
	}
	if err := g.Set("C7", num("1")); err != nil {
		t.Fatal(err)
	}
	rows, cols := g.UsedExtent()
	if rows != 7 || cols != 3 {
		t.Errorf("extent = %dx%d, want 7x3", rows, cols)
	}
	if got := g.CellAt(Ref{Row: 6, Col: 2}); got.Num.String() != "1" {
		t.Errorf("CellAt = %v, want the stored number", got)
	}
	if !g.CellAt(Ref{Row: 0, Col: 0}).IsEmpty() {
		t.Error("unset cell not empty")
	}
}

func TestLookupFunction(t *testing.T) {
	if _, ok := LookupFunction("sum"); !ok {
		t.Error("lowercase lookup failed")
	}
	if _, ok := LookupFunction("SUMIFS"); !ok {
		t.Error("SUMIFS not registered")
	}
	if _, ok := LookupFunction("NO_SUCH_FN"); ok {
		t.Error("unknown function reported as registered")
	}
	spec, _ := LookupFunction("now")
	if spec == nil || !spec.DateResult {
		t.Error("NOW should be flagged as a date result")
	}
}
