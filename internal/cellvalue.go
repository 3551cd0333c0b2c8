package internal

// behavior is the closed sum type backing a cell's current contents. The
// three variants below (emptyBehavior, textBehavior, formulaBehavior) are
// the only implementations; match arms over behavior are expected to be
// exhaustive.
type behavior interface {
	// GetValue returns the cell's value: float64, string, or
	// *FormulaError.
	GetValue(resolve resolver) any
	// GetText returns the verbatim text the cell was set to.
	GetText() string
	// GetReferencedCells returns the positions this behavior reads.
	GetReferencedCells() []Position
	// InvalidateCache discards any memoised evaluation result. A no-op
	// for variants that don't cache.
	InvalidateCache()
}

// emptyBehavior is the behavior of a cell with no content: value 0.0,
// text "", no references.
type emptyBehavior struct{}

func (emptyBehavior) GetValue(resolver) any          { return 0.0 }
func (emptyBehavior) GetText() string                { return "" }
func (emptyBehavior) GetReferencedCells() []Position { return nil }
func (emptyBehavior) InvalidateCache()               {}

// textBehavior is the behavior of a literal-text cell. If the text
// begins with the escape sign, the value strips it; otherwise value
// equals text verbatim.
type textBehavior struct {
	text string
}

func newTextBehavior(text string) textBehavior {
	return textBehavior{text: text}
}

func (t textBehavior) GetValue(resolver) any {
	if len(t.text) > 0 && t.text[0] == EscapeSign {
		return t.text[1:]
	}
	return t.text
}

func (t textBehavior) GetText() string                { return t.text }
func (t textBehavior) GetReferencedCells() []Position { return nil }
func (t textBehavior) InvalidateCache()               {}

// formulaBehavior is the behavior of a formula cell. It owns the only
// mutable observable state on an otherwise read-only behavior: the
// memoised evaluation result, lazily computed by GetValue and discarded
// by InvalidateCache.
type formulaBehavior struct {
	formula *Formula
	memo    *any // nil until GetValue is first called after invalidation
}

func newFormulaBehavior(f *Formula) *formulaBehavior {
	return &formulaBehavior{formula: f}
}

func (f *formulaBehavior) GetValue(resolve resolver) any {
	if f.memo != nil {
		return *f.memo
	}
	var result any
	if v, ferr := f.formula.Evaluate(resolve); ferr != nil {
		result = ferr
	} else {
		result = v
	}
	f.memo = &result
	return result
}

func (f *formulaBehavior) GetText() string {
	return "=" + f.formula.GetExpression()
}

func (f *formulaBehavior) GetReferencedCells() []Position {
	return f.formula.GetReferencedCells()
}

func (f *formulaBehavior) InvalidateCache() {
	f.memo = nil
}

// newBehavior computes the behavior a SetCell(text) call should install.
// It returns a *FormulaException if text parses as a formula with bad
// syntax.
func newBehavior(text string) (behavior, error) {
	switch {
	case text == "":
		return emptyBehavior{}, nil
	case text[0] == EscapeSign:
		return newTextBehavior(text), nil
	case text[0] == FormulaSign && len(text) > 1:
		f, err := ParseFormula(text[1:])
		if err != nil {
			return nil, err
		}
		return newFormulaBehavior(f), nil
	default:
		return newTextBehavior(text), nil
	}
}
