package formula

import "strings"

// registry maps upper-cased function names to their specs. It is built
// once at package init from the per-category tables in the fn_*.go
// files and never mutated afterwards, so lookups need no locking.
var registry map[string]*FuncSpec

func init() {
	registry = buildRegistry()
}

// aggregators names the functions the parser may fold into a dedicated
// range-aggregate node when called on exactly one range.
var aggregators = map[string]bool{
	"SUM":        true,
	"COUNT":      true,
	"COUNTA":     true,
	"COUNTBLANK": true,
	"AVERAGE":    true,
	"MIN":        true,
	"MAX":        true,
	"MEDIAN":     true,
	"STDEV":      true,
	"STDEVP":     true,
	"VAR":        true,
	"VARP":       true,
}

func buildRegistry() map[string]*FuncSpec {
	m := make(map[string]*FuncSpec)
	for _, table := range [][]FuncSpec{
		aggregateFuncs,
		conditionalFuncs,
		logicalFuncs,
		typecheckFuncs,
		financialFuncs,
		referenceFuncs,
		textFuncs,
		dateTimeFuncs,
		arrayFuncs,
	} {
		for i := range table {
			spec := &table[i]
			m[spec.Name] = spec
		}
	}
	return m
}

// LookupFunction finds a registered function by name,
// case-insensitively.
func LookupFunction(name string) (*FuncSpec, bool) {
	spec, ok := registry[strings.ToUpper(name)]
	return spec, ok
}

func isAggregator(name string) bool {
	return aggregators[strings.ToUpper(name)]
}
