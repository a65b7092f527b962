package entity

import (
	"errors"
	"fmt"
	"math"
)

// Grid двумерный массив вещественных значений (z-score карта, поле энергии).
// Данные хранятся построчно.
type Grid struct {
	Rows int
	Cols int
	Data []float64
}

// NewGrid создаёт нулевую сетку заданного размера.
func NewGrid(rows, cols int) *Grid {
	return &Grid{
		Rows: rows,
		Cols: cols,
		Data: make([]float64, rows*cols),
	}
}

// GridFromRows собирает сетку из среза строк.
func GridFromRows(rows [][]float64) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errors.New("empty grid")
	}
	g := NewGrid(len(rows), len(rows[0]))
	for r, row := range rows {
		if len(row) != g.Cols {
			return nil, fmt.Errorf("ragged grid: row %d has %d values, want %d", r, len(row), g.Cols)
		}
		copy(g.Data[r*g.Cols:], row)
	}
	return g, nil
}

// At возвращает значение ячейки.
func (g *Grid) At(r, c int) float64 {
	return g.Data[r*g.Cols+c]
}

// Set записывает значение ячейки.
func (g *Grid) Set(r, c int, v float64) {
	g.Data[r*g.Cols+c] = v
}

// Inside проверяет, что индекс лежит внутри сетки.
func (g *Grid) Inside(r, c int) bool {
	return r >= 0 && r < g.Rows && c >= 0 && c < g.Cols
}

// Clone возвращает независимую копию.
func (g *Grid) Clone() *Grid {
	out := NewGrid(g.Rows, g.Cols)
	copy(out.Data, g.Data)
	return out
}

// Abs возвращает новую сетку из модулей значений.
func (g *Grid) Abs() *Grid {
	out := NewGrid(g.Rows, g.Cols)
	for i, v := range g.Data {
		out.Data[i] = math.Abs(v)
	}
	return out
}

// Validate проверяет размеры и конечность всех значений.
func (g *Grid) Validate() error {
	if g == nil || g.Rows <= 0 || g.Cols <= 0 {
		return errors.New("empty grid")
	}
	if len(g.Data) != g.Rows*g.Cols {
		return fmt.Errorf("grid data has %d values, want %d", len(g.Data), g.Rows*g.Cols)
	}
	for i, v := range g.Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("non-finite value at row %d col %d", i/g.Cols, i%g.Cols)
		}
	}
	return nil
}
