// Package formula parses, prints and evaluates spreadsheet formulas
// over a pluggable sheet model.
//
// Parse builds a typed expression tree where every operator knows the
// kind of its operands; Print renders a tree back to canonical text such
// that parsing the output reproduces the tree. Evaluation is total:
// every failure is an explicit error value, cell references recurse
// through formula cells under a depth limit, and unbounded column
// ranges narrow to the sheet's used extent before iteration.
package formula

// EvaluateFormula parses and evaluates a formula against a single
// sheet. Cross-sheet references fail; use EvaluateFormulaInBook when
// the formula may name other sheets.
func EvaluateFormula(sheet Sheet, text string) (CellValue, error) {
	return evaluateWith(NewContext(sheet), text)
}

// EvaluateFormulaInBook parses and evaluates a formula on the named
// sheet of a workbook, with cross-sheet references resolved through the
// workbook.
func EvaluateFormulaInBook(book Workbook, sheetName, text string) (CellValue, error) {
	sheet, ok := book.SheetByName(sheetName)
	if !ok {
		return CellValue{}, errSheetNotFound(sheetName)
	}
	return evaluateWith(NewContext(sheet).WithBook(book), text)
}

// Evaluate parses and evaluates a formula in this context, returning
// the raw scalar. Hosts that need matrix results (TRANSPOSE) use this
// instead of the CellValue entry points.
func (ctx *Context) Evaluate(text string) (Value, error) {
	expr, err := Parse(text)
	if err != nil {
		return Value{}, err
	}
	return evalValue(expr, ctx)
}

func evaluateWith(ctx *Context, text string) (CellValue, error) {
	v, err := ctx.Evaluate(text)
	if err != nil {
		return CellValue{}, err
	}
	return v.ToCellValue(), nil
}
