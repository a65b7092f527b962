package entity

import "math"

// Point точка в координатах (строка, столбец). Используется для точки клика
// пользователя и для точек контура.
type Point struct {
	Row float64
	Col float64
}

// Truncate отбрасывает дробную часть координат.
func (p Point) Truncate() (row, col int) {
	return int(p.Row), int(p.Col)
}

// Circle строит n точек, равномерно распределённых по окружности радиуса
// radius с центром в p.
func Circle(p Point, radius float64, n int) []Point {
	pts := make([]Point, n)
	for i := range pts {
		t := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = Point{
			Row: p.Row + radius*math.Sin(t),
			Col: p.Col + radius*math.Cos(t),
		}
	}
	return pts
}
