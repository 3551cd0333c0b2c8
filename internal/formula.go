package internal

import (
	"math"
	"strconv"
	"strings"
)

// resolver looks up the value a formula should see for a referenced
// position: 0.0 for absent/Empty cells, the memoised double for a
// Formula cell, or the propagated *FormulaError for a failing one.
type resolver func(Position) (float64, error)

// Formula is the facade around a parsed expression tree: Parse/Evaluate/
// GetExpression/GetReferencedCells, even though, unlike a real external
// parser dependency, its grammar lives in this same module.
type Formula struct {
	ast  Expr
	refs []Position // sorted, deduplicated; computed once at parse time
}

// ParseFormula parses expr (already stripped of the leading '=') into a
// Formula, or returns a *FormulaException describing the syntax error.
func ParseFormula(expr string) (*Formula, error) {
	ast, err := parseFormula(expr)
	if err != nil {
		return nil, NewFormulaException("%s", err.Error())
	}
	return &Formula{ast: ast, refs: referencedCells(ast)}, nil
}

// Evaluate resolves every reference through resolve and computes the
// formula's value: a float64 on success, or a *FormulaError describing
// why evaluation failed.
func (f *Formula) Evaluate(resolve resolver) (any, *FormulaError) {
	v, err := f.ast.Execute(resolve)
	if err != nil {
		if fe, ok := err.(*FormulaError); ok {
			return nil, fe
		}
		return nil, NewFormulaError(ErrorKindValue)
	}
	return v, nil
}

// GetExpression returns the canonical re-printed form of the parsed AST:
// redundant parentheses removed, numeric literals normalised. This is
// not necessarily identical to the original input text.
func (f *Formula) GetExpression() string {
	var sb strings.Builder
	f.ast.Print(&sb, precAdd)
	return sb.String()
}

// GetReferencedCells returns the sorted, deduplicated positions this
// formula reads.
func (f *Formula) GetReferencedCells() []Position {
	return f.refs
}

// parseNumericOperand is the text-cell-as-number coercion rule used when
// a formula reads a Text cell as an operand: empty text is 0.0;
// otherwise a strict, locale-free, full-string decimal parse. Leading or
// trailing whitespace is rejected, and out-of-range magnitude is
// reported as FormulaError(Arithmetic) rather than FormulaError(Value).
func parseNumericOperand(text string) (float64, error) {
	if text == "" {
		return 0, nil
	}
	if !isStrictDecimal(text) {
		return 0, NewFormulaError(ErrorKindValue)
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
			return 0, NewFormulaError(ErrorKindArithmetic)
		}
		return 0, NewFormulaError(ErrorKindValue)
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, NewFormulaError(ErrorKindArithmetic)
	}
	return v, nil
}

// isStrictDecimal reports whether text is exactly an optionally-signed
// decimal literal ([+-]?[0-9]+(.[0-9]+)?), rejecting everything
// strconv.ParseFloat would otherwise also accept: hex floats, "NaN"/
// "Inf"/"Infinity", digit-group underscores, and leading/trailing
// whitespace. Mirrors the digit/dot-only scan tokenize already performs
// on numeric literals in formula_ast.go.
func isStrictDecimal(text string) bool {
	i := 0
	if text[i] == '+' || text[i] == '-' {
		i++
	}
	start := i
	for i < len(text) && text[i] >= '0' && text[i] <= '9' {
		i++
	}
	if i == start {
		return false
	}
	if i < len(text) && text[i] == '.' {
		i++
		fracStart := i
		for i < len(text) && text[i] >= '0' && text[i] <= '9' {
			i++
		}
		if i == fracStart {
			return false
		}
	}
	return i == len(text)
}

// formatNumber renders a float64 the way a cell's displayed value would
// be, used both by GetExpression's literal normalisation and by the
// sheet's PrintValues.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
