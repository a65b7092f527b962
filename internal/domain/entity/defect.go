package entity

import (
	"errors"
	"fmt"
)

// Box прямоугольник поиска дефекта. X соответствует столбцу, Y строке,
// правая и нижняя границы не включаются.
type Box struct {
	X1 int
	Y1 int
	X2 int
	Y2 int
}

// NewSearchBox строит квадрат с полушириной half вокруг точки клика и
// обрезает его по границам изображения rows x cols.
func NewSearchBox(seed Point, half, rows, cols int) Box {
	row, col := seed.Truncate()
	return Box{
		X1: clampInt(col-half, 0, cols),
		Y1: clampInt(row-half, 0, rows),
		X2: clampInt(col+half, 0, cols),
		Y2: clampInt(row+half, 0, rows),
	}
}

// Width ширина прямоугольника в пикселях.
func (b Box) Width() int { return b.X2 - b.X1 }

// Height высота прямоугольника в пикселях.
func (b Box) Height() int { return b.Y2 - b.Y1 }

// Area площадь прямоугольника.
func (b Box) Area() int { return b.Width() * b.Height() }

// Contains проверяет, что пиксель (row, col) лежит внутри прямоугольника.
func (b Box) Contains(row, col int) bool {
	return col >= b.X1 && col < b.X2 && row >= b.Y1 && row < b.Y2
}

// Center возвращает координаты центра прямоугольника
func (b Box) Center() (x, y int) {
	return b.X1 + b.Width()/2, b.Y1 + b.Height()/2
}

// Validate проверяет, что прямоугольник не вырожден и лежит внутри изображения.
func (b Box) Validate(rows, cols int) error {
	if b.Width() <= 0 || b.Height() <= 0 {
		return errors.New("degenerate search box")
	}
	if b.X1 < 0 || b.Y1 < 0 || b.X2 > cols || b.Y2 > rows {
		return fmt.Errorf("search box %v is outside %dx%d image", b, cols, rows)
	}
	return nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
