package port

import (
	"image"

	"defect-refiner/internal/domain/entity"
)

// ContourSolver решатель активного контура
type ContourSolver interface {
	// Evolve деформирует замкнутый контур по полю энергии и возвращает
	// столько же точек, сколько получил
	Evolve(energy *entity.Grid, initial []entity.Point, params entity.SnakeParams) []entity.Point
}

// ConicFitter алгебраическое вписывание эллипса в набор точек
type ConicFitter interface {
	// FitConic возвращает ошибку, если точки не задают эллипс
	FitConic(points []entity.Point) (entity.Conic, error)
}

// ShapeAnalyzer операции над бинарной маской объекта
type ShapeAnalyzer interface {
	// LargestContour возвращает внешний контур наибольшей площади
	LargestContour(mask *entity.BinaryMask) []image.Point

	// FitEllipse вписывает эллипс в контур (не менее 5 точек)
	FitEllipse(contour []image.Point) (entity.RotatedEllipse, error)

	// MinEnclosingCircle возвращает минимальную описанную окружность в (X, Y)
	MinEnclosingCircle(contour []image.Point) (x, y, radius float64)
}
