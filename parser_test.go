package formula

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

var decimalComparer = cmp.Comparer(func(a, b decimal.Decimal) bool {
	return a.Equal(b)
})

func TestParseAndPrint(t *testing.T) {
	tests := []struct {
		name    string
		formula string
		want    string
	}{
		{"addition", "1+2", "1+2"},
		{"equals prefix", "=1+2", "1+2"},
		{"whitespace", "  1 +  2 ", "1+2"},
		{"precedence", "1+2*3", "1+2*3"},
		{"parens kept when needed", "(1+2)*3", "(1+2)*3"},
		{"parens dropped when redundant", "(1*2)+3", "1*2+3"},
		{"right-nested subtraction", "1-(2-3)", "1-(2-3)"},
		{"division", "10/4", "10/4"},
		{"unary minus", "-A1+3", "-A1+3"},
		{"unary plus is identity", "+5", "5"},
		{"decimal literal", "1.50", "1.5"},
		{"scientific notation", "1.5E10", "15000000000"},
		{"string literal", `"hello"`, `"hello"`},
		{"string with escaped quote", `"a""b"`, `"a""b"`},
		{"boolean", "true", "TRUE"},
		{"cell", "b12", "B12"},
		{"range", "A1:B2", "A1:B2"},
		{"range normalized", "B2:A1", "A1:B2"},
		{"column range", "A:C", "A:C"},
		{"sheet cell", "Sheet2!A1", "Sheet2!A1"},
		{"quoted sheet range", "'My Sheet'!A1:B2", "'My Sheet'!A1:B2"},
		{"sheet column range", "Sheet2!A:A", "Sheet2!A:A"},
		{"comparison", "1<=2", "1<=2"},
		{"not equal", "1<>2", "1<>2"},
		{"comparison chain", "1<2<3", "1<2<3"},
		{"concat", `"x"&"y"`, `"x"&"y"`},
		{"concat binds tighter than compare", `"a"&"b"="ab"`, `"a"&"b"="ab"`},
		{"function lowercased input", "sum(A1:A3)", "SUM(A1:A3)"},
		{"mixed aggregate args", "SUM(1,2,A1:A2)", "SUM(1,2,A1:A2)"},
		{"if without else", "IF(A1>2,1)", "IF(A1>2,1,FALSE)"},
		{"if with else", "IF(A1>2,1,2)", "IF(A1>2,1,2)"},
		{"and call", "AND(TRUE,FALSE)", "AND(TRUE,FALSE)"},
		{"not call", "NOT(TRUE)", "NOT(TRUE)"},
		{"nested calls", "SUM(A1:A2,MAX(B1:B2))", "SUM(A1:A2,MAX(B1:B2))"},
		{"zero arg function", "NOW()", "NOW()"},
		{"arith over cells", "A1*B1-C1", "A1*B1-C1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := Parse(tt.formula)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.formula, err)
			}
			if got := Print(expr); got != tt.want {
				t.Errorf("Print(Parse(%q)) = %q, want %q", tt.formula, got, tt.want)
			}
		})
	}
}

// Printing a tree and parsing the output must reproduce the tree
// exactly, including the coercion nodes the parser inserts.
func TestPrintParseRoundTrip(t *testing.T) {
	formulas := []string{
		"1+2*3",
		"(1+2)*3",
		"1-(2-3)",
		"-A1",
		"1.5E10",
		"1.0000000000000001",
		`"a""b"&"c"`,
		"A1=B1",
		"A1:B2",
		"A:C",
		"'P&L 2024'!A1:B10",
		"IF(A1>2,1)",
		"IF(AND(A1>0,A1<10),A1,0)",
		"SUM(A1:A3)",
		"SUM(1,A1,B1:B3)",
		"SUMIF(A1:A4,\">2\",B1:B4)",
		"SUMPRODUCT((A1:A4>2)*1,B1:B4)",
		"IFERROR(1/A1,0)",
		"CONCATENATE(A1,\" \",B1)",
		"NOT(ISBLANK(A1))",
		"ADDRESS(2,3,4)",
		"NPV(0.1,A1:A4)",
		"DATE(2024,1,31)",
	}

	for _, src := range formulas {
		t.Run(src, func(t *testing.T) {
			first, err := Parse(src)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", src, err)
			}
			printed := Print(first)
			second, err := Parse(printed)
			if err != nil {
				t.Fatalf("Parse(Print) error on %q: %v", printed, err)
			}
			if diff := cmp.Diff(first, second, decimalComparer); diff != "" {
				t.Errorf("round trip of %q changed the tree (-first +second):\n%s", src, diff)
			}
		})
	}
}

// Numeric literals must survive parsing exactly, with no float64 round
// trip in between.
func TestParseNumberExact(t *testing.T) {
	tests := []struct {
		formula string
		want    string
	}{
		{"1.0000000000000001", "1.0000000000000001"},
		{"0.1", "0.1"},
		{"1.5E10", "15000000000"},
		{"2E-7", "0.0000002"},
	}
	for _, tt := range tests {
		expr, err := Parse(tt.formula)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", tt.formula, err)
		}
		num, ok := expr.(*Number)
		if !ok {
			t.Fatalf("Parse(%q) = %T, want *Number", tt.formula, expr)
		}
		if got := num.Value.String(); got != tt.want {
			t.Errorf("Parse(%q) value = %s, want %s", tt.formula, got, tt.want)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		formula string
		kind    ParseErrKind
	}{
		{"dangling operator", "1+", ParseUnexpectedToken},
		{"adjacent values", "1 2", ParseUnexpectedToken},
		{"bare close paren", ")", ParseUnexpectedToken},
		{"missing close paren", "(1+2", ParseUnbalancedParens},
		{"unclosed call", "SUM(A1:A2", ParseUnbalancedParens},
		{"unclosed string", `"abc`, ParseUnexpectedToken},
		{"unknown function", "FROBNICATE(1)", ParseUnknownFunction},
		{"too few arguments", "SUM()", ParseInvalidArgs},
		{"too many arguments", "NOT(TRUE,FALSE)", ParseInvalidArgs},
		{"if arity", "IF(TRUE)", ParseInvalidArgs},
		{"sumif needs range", "SUMIF(1,2)", ParseInvalidArgs},
		{"sumifs dangling criteria range", "SUMIFS(A1:A2,B1:B2,1,C1:C2)", ParseInvalidArgs},
		{"scalar slot rejects range", "LEN(A1:A2)", ParseInvalidArgs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.formula)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want error", tt.formula)
			}
			pe, ok := err.(*ParseError)
			if !ok {
				t.Fatalf("Parse(%q) error = %T, want *ParseError", tt.formula, err)
			}
			if pe.Kind != tt.kind {
				t.Errorf("Parse(%q) error kind = %d (%v), want %d", tt.formula, pe.Kind, pe, tt.kind)
			}
		})
	}
}

func TestParseInvalidArgsDetail(t *testing.T) {
	_, err := Parse("SUMIF(1,2)")
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("error = %T, want *ParseError", err)
	}
	if pe.Func != "SUMIF" || pe.Pos != 0 {
		t.Errorf("got func %q pos %d, want SUMIF 0", pe.Func, pe.Pos)
	}
	if pe.Expected != "range" {
		t.Errorf("expected description = %q, want %q", pe.Expected, "range")
	}
}

func TestParseFoldsAggregates(t *testing.T) {
	expr, err := Parse("SUM(A1:A3)")
	if err != nil {
		t.Fatal(err)
	}
	agg, ok := expr.(*Agg)
	if !ok {
		t.Fatalf("Parse(SUM(A1:A3)) = %T, want *Agg", expr)
	}
	if agg.Name != "SUM" {
		t.Errorf("aggregate name = %q, want SUM", agg.Name)
	}

	// multiple arguments stay a plain call
	expr, err = Parse("SUM(A1:A3,B1)")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := expr.(*Call); !ok {
		t.Errorf("Parse(SUM(A1:A3,B1)) = %T, want *Call", expr)
	}
}

func TestParseInsertsCoercions(t *testing.T) {
	expr, err := Parse("A1+1")
	if err != nil {
		t.Fatal(err)
	}
	arith, ok := expr.(*Arith)
	if !ok {
		t.Fatalf("Parse(A1+1) = %T, want *Arith", expr)
	}
	if _, ok := arith.Left.(*ToNum); !ok {
		t.Errorf("left operand = %T, want *ToNum around the cell reference", arith.Left)
	}
	if _, ok := arith.Right.(*Number); !ok {
		t.Errorf("right operand = %T, want *Number untouched", arith.Right)
	}
}
