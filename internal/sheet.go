package internal

import (
	"fmt"
	"strings"
)

// Sheet owns every Cell in the grid. Storage is a dense, row-major,
// jagged rectangle that only ever grows: rows extend the outer slice,
// and any write resizes its own row to reach the written column. Unused
// slots hold nil ("absent").
type Sheet struct {
	rows [][]*Cell
}

// NewSheet returns an empty sheet.
func NewSheet() *Sheet {
	return &Sheet{}
}

// SetCell parses and installs text at pos, creating the cell (and any
// Empty placeholder cells the new formula references) as needed.
// CircularDependencyError and FormulaException propagate unchanged; any
// other failure is wrapped as a FormulaException.
func (s *Sheet) SetCell(pos Position, text string) error {
	if !pos.IsValid() {
		return &InvalidPositionError{Pos: pos}
	}
	cell, err := s.ensureCellAt(pos)
	if err != nil {
		return err
	}
	if err := cell.Set(text); err != nil {
		switch err.(type) {
		case *CircularDependencyError, *FormulaException:
			return err
		default:
			return NewFormulaException("unknown formula error: %v", err)
		}
	}
	return nil
}

// GetCell returns the cell at pos without growing storage, or nil if the
// slot is absent.
func (s *Sheet) GetCell(pos Position) (*Cell, error) {
	if !pos.IsValid() {
		return nil, &InvalidPositionError{Pos: pos}
	}
	cell, _ := s.cellAt(pos)
	return cell, nil
}

// ClearCell resets the cell at pos. A cell with no dependents is dropped
// entirely; a still-referenced cell is kept as an Empty placeholder so
// its back-edges stay attached.
func (s *Sheet) ClearCell(pos Position) error {
	if !pos.IsValid() {
		return &InvalidPositionError{Pos: pos}
	}
	cell, ok := s.cellAt(pos)
	if !ok {
		return nil
	}
	if err := cell.Clear(); err != nil {
		return err
	}
	if !cell.IsReferenced() {
		s.rows[pos.Row][pos.Col] = nil
	}
	return nil
}

// GetPrintableSize returns the tight bounding rectangle (maxRow+1,
// maxCol+1) over every cell whose GetText() is non-empty, or (0,0) if
// there are none.
func (s *Sheet) GetPrintableSize() (rows, cols int) {
	maxRow, maxCol := -1, -1
	for r, row := range s.rows {
		for c, cell := range row {
			if cell == nil || cell.GetText() == "" {
				continue
			}
			if r > maxRow {
				maxRow = r
			}
			if c > maxCol {
				maxCol = c
			}
		}
	}
	if maxRow < 0 {
		return 0, 0
	}
	return maxRow + 1, maxCol + 1
}

// PrintValues writes the printable rectangle's values to sb: tab between
// columns, newline between rows. Cells with empty text (including absent
// cells) print nothing.
func (s *Sheet) PrintValues(sb *strings.Builder) {
	s.printRect(sb, func(c *Cell) string {
		return formatValue(c.GetValue())
	})
}

// PrintTexts writes the printable rectangle's verbatim texts to sb, with
// the same tab/newline layout as PrintValues.
func (s *Sheet) PrintTexts(sb *strings.Builder) {
	s.printRect(sb, func(c *Cell) string {
		return c.GetText()
	})
}

func (s *Sheet) printRect(sb *strings.Builder, render func(*Cell) string) {
	rows, cols := s.GetPrintableSize()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if c > 0 {
				sb.WriteByte('\t')
			}
			if cell, ok := s.cellAt(Position{Row: r, Col: c}); ok && cell.GetText() != "" {
				sb.WriteString(render(cell))
			}
		}
		sb.WriteByte('\n')
	}
}

func formatValue(v any) string {
	switch v := v.(type) {
	case float64:
		return formatNumber(v)
	case string:
		return v
	case *FormulaError:
		return v.Sigil()
	default:
		return fmt.Sprint(v)
	}
}

// cellAt implements cellHost: look up an existing cell without growing
// storage.
func (s *Sheet) cellAt(pos Position) (*Cell, bool) {
	if pos.Row < 0 || pos.Row >= len(s.rows) {
		return nil, false
	}
	row := s.rows[pos.Row]
	if pos.Col < 0 || pos.Col >= len(row) {
		return nil, false
	}
	return row[pos.Col], row[pos.Col] != nil
}

// ensureCellAt implements cellHost: grow storage to include pos (rows,
// then that row's columns) and materialise an Empty cell if one isn't
// already there.
func (s *Sheet) ensureCellAt(pos Position) (*Cell, error) {
	if !pos.IsValid() {
		return nil, &InvalidPositionError{Pos: pos}
	}
	for len(s.rows) <= pos.Row {
		s.rows = append(s.rows, nil)
	}
	row := s.rows[pos.Row]
	for len(row) <= pos.Col {
		row = append(row, nil)
	}
	s.rows[pos.Row] = row

	if row[pos.Col] == nil {
		row[pos.Col] = newCell(pos, s)
	}
	return row[pos.Col], nil
}

// resolve implements cellHost: the rule formula evaluation uses to turn
// a referenced position into a float64.
func (s *Sheet) resolve(pos Position) (float64, error) {
	if !pos.IsValid() {
		return 0, NewFormulaError(ErrorKindRef)
	}
	cell, ok := s.cellAt(pos)
	if !ok {
		return 0, nil // absent cell reads as 0.0
	}
	switch v := cell.GetValue().(type) {
	case float64:
		return v, nil
	case *FormulaError:
		return 0, v
	case string:
		return parseNumericOperand(v)
	default:
		return 0, nil // no behavior yields another type; read it as 0.0
	}
}
