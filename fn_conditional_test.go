package formula

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func decimalFromString(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("decimal %q: %v", s, err)
	}
	return d
}

func conditionalSheet(t *testing.T) *GridSheet {
	t.Helper()
	return sheetOf(t, "Sheet1", map[string]CellValue{
		// fruit, region, amount
		"A1": TextCell("apple"), "B1": TextCell("north"), "C1": num("10"),
		"A2": TextCell("banana"), "B2": TextCell("south"), "C2": num("20"),
		"A3": TextCell("apricot"), "B3": TextCell("north"), "C3": num("30"),
		"A4": TextCell("apple"), "B4": TextCell("south"), "C4": num("40"),
	})
}

func TestSumIf(t *testing.T) {
	ctx := NewContext(conditionalSheet(t))

	tests := []struct {
		formula string
		want    string
	}{
		{`SUMIF(C1:C4,">15")`, "90"},
		{`SUMIF(A1:A4,"apple",C1:C4)`, "50"},
		{`SUMIF(A1:A4,"ap*",C1:C4)`, "80"},
		{`SUMIF(A1:A4,"<>apple",C1:C4)`, "50"},
		{`SUMIF(C1:C4,20)`, "20"},
		{`SUMIF(A1:A4,"Apple",C1:C4)`, "50"}, // criteria match case-insensitively
	}
	for _, tt := range tests {
		t.Run(tt.formula, func(t *testing.T) {
			if got := mustEvalNum(t, ctx, tt.formula); got != tt.want {
				t.Errorf("Evaluate(%q) = %s, want %s", tt.formula, got, tt.want)
			}
		})
	}
}

func TestCountIf(t *testing.T) {
	ctx := NewContext(conditionalSheet(t))

	tests := []struct {
		formula string
		want    string
	}{
		{`COUNTIF(A1:A4,"ap*")`, "3"},
		{`COUNTIF(A1:A4,"?????")`, "2"}, // the two apples
		{`COUNTIF(C1:C4,">=20")`, "3"},
		{`COUNTIF(C1:C4,"<15")`, "1"},
		{`COUNTIF(A1:A4,"pear")`, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.formula, func(t *testing.T) {
			if got := mustEvalNum(t, ctx, tt.formula); got != tt.want {
				t.Errorf("Evaluate(%q) = %s, want %s", tt.formula, got, tt.want)
			}
		})
	}
}

func TestMultiCriteria(t *testing.T) {
	ctx := NewContext(conditionalSheet(t))

	tests := []struct {
		formula string
		want    string
	}{
		{`SUMIFS(C1:C4,A1:A4,"apple",B1:B4,"south")`, "40"},
		{`SUMIFS(C1:C4,B1:B4,"north",C1:C4,">15")`, "30"},
		{`COUNTIFS(A1:A4,"ap*",B1:B4,"north")`, "2"},
		{`AVERAGEIFS(C1:C4,B1:B4,"south")`, "30"},
	}
	for _, tt := range tests {
		t.Run(tt.formula, func(t *testing.T) {
			if got := mustEvalNum(t, ctx, tt.formula); got != tt.want {
				t.Errorf("Evaluate(%q) = %s, want %s", tt.formula, got, tt.want)
			}
		})
	}
}

func TestAverageIf(t *testing.T) {
	ctx := NewContext(conditionalSheet(t))
	if got := mustEvalNum(t, ctx, `AVERAGEIF(A1:A4,"apple",C1:C4)`); got != "25" {
		t.Errorf(`AVERAGEIF = %s, want 25`, got)
	}
	if kind := evalErrKind(t, ctx, `AVERAGEIF(A1:A4,"pear",C1:C4)`); kind != EvalDivZero {
		t.Errorf("AVERAGEIF with no matches error = %d, want EvalDivZero", kind)
	}
}

// mismatched range shapes must be rejected with both shapes named
func TestConditionalDimensionMismatch(t *testing.T) {
	ctx := NewContext(conditionalSheet(t))
	_, err := ctx.Evaluate(`SUMIF(A1:A4,"apple",C1:C2)`)
	if err == nil {
		t.Fatal("SUMIF over mismatched ranges succeeded, want error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "4x1") || !strings.Contains(msg, "2x1") {
		t.Errorf("error %q does not name both shapes", msg)
	}
}

func TestCriterionParsing(t *testing.T) {
	tests := []struct {
		name  string
		crit  Value
		value Value
		want  bool
	}{
		{"plain number equality", NumberValue(decimalFromString(t, "5")), NumberValue(decimalFromString(t, "5")), true},
		{"greater than", TextValue(">3"), NumberValue(decimalFromString(t, "4")), true},
		{"greater than fails", TextValue(">3"), NumberValue(decimalFromString(t, "2")), false},
		{"not equal text", TextValue("<>done"), TextValue("open"), true},
		{"numeric text literal", TextValue(">=10"), NumberValue(decimalFromString(t, "10")), true},
		{"wildcard star", TextValue("ap*"), TextValue("APRICOT"), true},
		{"wildcard question", TextValue("a?c"), TextValue("abc"), true},
		{"wildcard question wrong length", TextValue("a?c"), TextValue("abcd"), false},
		{"wildcard never matches numbers", TextValue("1*"), NumberValue(decimalFromString(t, "12")), false},
		{"error cells never match", TextValue(">0"), errorValue("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := parseCriterion(tt.crit)
			if got := c.matches(tt.value); got != tt.want {
				t.Errorf("criterion %v against %v = %v, want %v", tt.crit, tt.value, got, tt.want)
			}
		})
	}
}
