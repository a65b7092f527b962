// Package filter содержит свёртки и выборку значений для вещественных сеток.
package filter

import (
	"math"

	"defect-refiner/internal/domain/entity"
	"defect-refiner/internal/domain/port"
)

// Filter реализация port.EnergyFilter на чистом Go.
type Filter struct{}

// New создаёт фильтр.
func New() *Filter {
	return &Filter{}
}

// Gaussian см. пакетную функцию Gaussian.
func (Filter) Gaussian(g *entity.Grid, sigma float64) *entity.Grid {
	return Gaussian(g, sigma)
}

// Sobel см. пакетную функцию Sobel.
func (Filter) Sobel(g *entity.Grid) *entity.Grid {
	return Sobel(g)
}

var _ port.EnergyFilter = (*Filter)(nil)

// gaussianTruncate радиус ядра в сигмах.
const gaussianTruncate = 4.0

// Gaussian сглаживает сетку разделимым гауссовым ядром. Края продолжаются
// ближайшим значением. Исходная сетка не меняется.
func Gaussian(g *entity.Grid, sigma float64) *entity.Grid {
	if sigma <= 0 {
		return g.Clone()
	}
	kernel := gaussianKernel(sigma)
	radius := len(kernel) / 2

	tmp := entity.NewGrid(g.Rows, g.Cols)
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			var sum float64
			for k, w := range kernel {
				sum += w * g.At(r, clamp(c+k-radius, g.Cols))
			}
			tmp.Set(r, c, sum)
		}
	}

	out := entity.NewGrid(g.Rows, g.Cols)
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			var sum float64
			for k, w := range kernel {
				sum += w * tmp.At(clamp(r+k-radius, g.Rows), c)
			}
			out.Set(r, c, sum)
		}
	}
	return out
}

func gaussianKernel(sigma float64) []float64 {
	radius := int(gaussianTruncate*sigma + 0.5)
	kernel := make([]float64, 2*radius+1)
	var sum float64
	for i := range kernel {
		x := float64(i - radius)
		kernel[i] = math.Exp(-x * x / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// Sobel возвращает модуль градиента по Собелю, нормированный так, что
// единичная ступенька даёт значение порядка единицы.
func Sobel(g *entity.Grid) *entity.Grid {
	out := entity.NewGrid(g.Rows, g.Cols)
	at := func(r, c int) float64 {
		return g.At(clamp(r, g.Rows), clamp(c, g.Cols))
	}
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			h := (at(r-1, c-1) + 2*at(r-1, c) + at(r-1, c+1) -
				at(r+1, c-1) - 2*at(r+1, c) - at(r+1, c+1)) / 4
			v := (at(r-1, c-1) + 2*at(r, c-1) + at(r+1, c-1) -
				at(r-1, c+1) - 2*at(r, c+1) - at(r+1, c+1)) / 4
			out.Set(r, c, math.Sqrt((h*h+v*v)/2))
		}
	}
	return out
}

// Gradient возвращает частные производные по строкам и столбцам:
// центральные разности внутри, односторонние на краях.
func Gradient(g *entity.Grid) (dRow, dCol *entity.Grid) {
	dRow = entity.NewGrid(g.Rows, g.Cols)
	dCol = entity.NewGrid(g.Rows, g.Cols)
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			dRow.Set(r, c, diff(g.Rows, r, func(i int) float64 { return g.At(i, c) }))
			dCol.Set(r, c, diff(g.Cols, c, func(i int) float64 { return g.At(r, i) }))
		}
	}
	return dRow, dCol
}

func diff(n, i int, at func(int) float64) float64 {
	switch {
	case n < 2:
		return 0
	case i == 0:
		return at(1) - at(0)
	case i == n-1:
		return at(n-1) - at(n-2)
	default:
		return (at(i+1) - at(i-1)) / 2
	}
}

// Bilinear возвращает значение сетки в дробной точке. Координаты за
// пределами сетки прижимаются к краю.
func Bilinear(g *entity.Grid, row, col float64) float64 {
	row = math.Max(0, math.Min(row, float64(g.Rows-1)))
	col = math.Max(0, math.Min(col, float64(g.Cols-1)))

	r0, c0 := int(row), int(col)
	r1, c1 := min(r0+1, g.Rows-1), min(c0+1, g.Cols-1)
	fr, fc := row-float64(r0), col-float64(c0)

	top := g.At(r0, c0)*(1-fc) + g.At(r0, c1)*fc
	bottom := g.At(r1, c0)*(1-fc) + g.At(r1, c1)*fc
	return top*(1-fr) + bottom*fr
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
