package formula

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustParseArgs(t *testing.T, formula string) []Expr {
	t.Helper()
	expr, err := Parse(formula)
	if err != nil {
		t.Fatalf("Parse(%q): %v", formula, err)
	}
	call, ok := expr.(*Call)
	if !ok {
		t.Fatalf("Parse(%q) = %T, want *Call", formula, expr)
	}
	return call.Args
}

func TestArgSpecPrefixThreading(t *testing.T) {
	// range, criterion, optional range: each spec consumes its prefix
	// and hands the remainder on
	spec := argSeq(argRange(), argScalar(KindEmpty), argOpt(argRange()))
	args := mustParseArgs(t, `SUMIF(A1:A4,">2",B1:B4)`)

	a, rest, err := spec.parse("SUMIF", 0, args)
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 0 {
		t.Fatalf("remainder = %d args, want 0", len(rest))
	}
	pair := a.(PairArg)
	if got := pair.First.(RangeArg).Loc.String(); got != "A1:A4" {
		t.Errorf("first range = %s, want A1:A4", got)
	}
	tail := pair.Second.(PairArg)
	opt := tail.Second.(OptionalArg)
	if !opt.Present {
		t.Fatal("optional range not consumed")
	}
	if got := opt.A.(RangeArg).Loc.String(); got != "B1:B4" {
		t.Errorf("optional range = %s, want B1:B4", got)
	}

	// absent optional
	a, rest, err = spec.parse("SUMIF", 0, args[:2])
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 0 {
		t.Fatalf("remainder = %d args, want 0", len(rest))
	}
	if a.(PairArg).Second.(PairArg).Second.(OptionalArg).Present {
		t.Error("optional reported present with two args")
	}
}

func TestArgSpecReportsPosition(t *testing.T) {
	spec := argMany(argSeq(argRange(), argScalar(KindEmpty)))
	// borrow SUM's flat list: a dangling criteria range with no criterion
	args := mustParseArgs(t, `SUM(A1:A2,1,B1:B2)`)

	_, _, err := spec.parse("COUNTIFS", 0, args)
	if err == nil {
		t.Fatal("odd criteria list parsed, want error")
	}
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("error = %T, want *ParseError", err)
	}
	if pe.Kind != ParseInvalidArgs || pe.Pos != 3 {
		t.Errorf("kind/pos = %d/%d, want ParseInvalidArgs at position 3", pe.Kind, pe.Pos)
	}
	if pe.Actual != "end of arguments" {
		t.Errorf("actual = %q, want %q", pe.Actual, "end of arguments")
	}
}

func TestArgSpecRender(t *testing.T) {
	spec := argSeq(argRange(), argScalar(KindEmpty), argOpt(argRange()))
	args := mustParseArgs(t, `SUMIF(A1:A4,">2",B1:B4)`)
	a, _, err := spec.parse("SUMIF", 0, args)
	if err != nil {
		t.Fatal(err)
	}
	got := spec.render(a)
	want := []string{"A1:A4", `">2"`, "B1:B4"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("render mismatch (-want +got):\n%s", diff)
	}
}

func TestArgSpecMapRanges(t *testing.T) {
	spec := argMany(argNumOrRange())
	args := mustParseArgs(t, "SUM(1,A1:A3,B:B)")
	a, _, err := spec.parse("SUM", 0, args)
	if err != nil {
		t.Fatal(err)
	}

	shifted := spec.mapRanges(a, func(loc RangeLoc) RangeLoc {
		loc.SheetName = "Other"
		return loc
	})
	got := spec.render(shifted)
	want := []string{"1", "Other!A1:A3", "Other!B:B"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mapRanges render mismatch (-want +got):\n%s", diff)
	}
}

// mapRanges must reach ranges buried inside scalar expressions, which
// is what bounds narrowing relies on
func TestMapExprRangesDeep(t *testing.T) {
	expr, err := Parse("IF(SUM(A:A)>0,1,0)+1")
	if err != nil {
		t.Fatal(err)
	}
	var seen []string
	mapExprRanges(expr, func(loc RangeLoc) RangeLoc {
		seen = append(seen, loc.String())
		return loc
	})
	if len(seen) != 1 || seen[0] != "A:A" {
		t.Errorf("visited ranges = %v, want [A:A]", seen)
	}
}

func TestArityCheck(t *testing.T) {
	tests := []struct {
		name  string
		arity Arity
		n     int
		ok    bool
	}{
		{"exact match", Exactly(2), 2, true},
		{"exact miss", Exactly(2), 3, false},
		{"at least met", AtLeast(1), 5, true},
		{"at least miss", AtLeast(1), 0, false},
		{"between inside", Between(2, 4), 3, true},
		{"between above", Between(2, 4), 5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.arity.check("F", tt.n)
			if (err == nil) != tt.ok {
				t.Errorf("check(%d) err = %v, want ok=%v", tt.n, err, tt.ok)
			}
		})
	}
}
