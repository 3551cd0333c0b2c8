package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_parseFormula(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Expr
		wantErr  bool
	}{
		{
			name:     "basic formula",
			input:    "1+1",
			expected: addE(numE(1), numE(1)),
		},
		{
			name:     "ignore whitespace",
			input:    "  12 + 14",
			expected: addE(numE(12), numE(14)),
		},
		{
			name:     "cell ref formula",
			input:    "A1*13",
			expected: mulE(refE(0, 0), numE(13)),
		},
		{
			name:  "mul before add",
			input: "A1*B2+C3*D4",
			expected: addE(
				mulE(refE(0, 0), refE(1, 1)),
				mulE(refE(2, 2), refE(3, 3)),
			),
		},
		{
			name:     "unary expr",
			input:    "-123",
			expected: numE(-123),
		},
		{
			name:     "multiply a negative",
			input:    "-123*-456",
			expected: mulE(numE(-123), numE(-456)),
		},
		{
			name:     "subtract from a negative",
			input:    "-123-456",
			expected: subE(numE(-123), numE(456)),
		},
		{
			name:     "division",
			input:    "A1/B2/C3/D4",
			expected: divE(divE(divE(refE(0, 0), refE(1, 1)), refE(2, 2)), refE(3, 3)),
		},
		{
			name:     "decimal literal",
			input:    "1.5*2",
			expected: mulE(numE(1.5), numE(2)),
		},
		{
			name:    "bad expr",
			input:   "A1*",
			wantErr: true,
		},
		{
			name:    "unbalanced parens",
			input:   "(1+2",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := parseFormula(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				assert.ErrorIs(t, err, ErrFormulaSyntax)
				return
			}
			assert.NoError(t, err)
			assert.EqualValues(t, tt.expected, parsed)
		})
	}
}

func Test_referencedCells(t *testing.T) {
	e := addE(mulE(refE(2, 0), refE(0, 0)), refE(0, 0))
	got := referencedCells(e)
	assert.Equal(t, []Position{{Row: 0, Col: 0}, {Row: 2, Col: 0}}, got)
}

func Test_canonicalPrint(t *testing.T) {
	tests := map[string]string{
		"1+2*3":     "1+2*3",
		"(1+2)*3":   "(1+2)*3",
		"1-(2-3)":   "1-(2-3)",
		"1-2-3":     "1-2-3",
		"1/(2/3)":   "1/(2/3)",
		"A1+B2":     "A1+B2",
		"1.50+2":    "1.5+2",
	}
	for input, want := range tests {
		f, err := ParseFormula(input)
		assert.NoError(t, err)
		assert.Equal(t, want, f.GetExpression())
	}
}

func subE(x, y Expr) Expr { return binaryExpr{op: '-', x: x, y: y} }
func addE(x, y Expr) Expr { return binaryExpr{op: '+', x: x, y: y} }
func mulE(x, y Expr) Expr { return binaryExpr{op: '*', x: x, y: y} }
func divE(x, y Expr) Expr { return binaryExpr{op: '/', x: x, y: y} }
func numE(v float64) Expr { return numberExpr{value: v} }
func refE(row, col int) Expr {
	return refExpr{pos: Position{Row: row, Col: col}}
}
