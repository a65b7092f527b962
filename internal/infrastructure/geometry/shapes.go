package geometry

import (
	"fmt"
	"image"
	"math"

	"defect-refiner/internal/domain/entity"
	"defect-refiner/internal/domain/port"
)

// Shapes реализация ShapeAnalyzer без OpenCV.
type Shapes struct{}

// NewShapes создаёт анализатор.
func NewShapes() *Shapes {
	return &Shapes{}
}

// LargestContour возвращает внешний контур наибольшей площади.
func (s *Shapes) LargestContour(mask *entity.BinaryMask) []image.Point {
	return LargestContour(mask)
}

// FitEllipse вписывает эллипс в контур и возвращает его в конвенции OpenCV:
// Width вдоль большой оси, угол по часовой стрелке от оси X в [0, 180).
func (s *Shapes) FitEllipse(contour []image.Point) (entity.RotatedEllipse, error) {
	if len(contour) < MinEllipsePoints {
		return entity.RotatedEllipse{}, fmt.Errorf("%w: %d points", ErrDegenerate, len(contour))
	}
	xs := make([]float64, len(contour))
	ys := make([]float64, len(contour))
	for i, p := range contour {
		xs[i], ys[i] = float64(p.X), float64(p.Y)
	}
	c, err := FitConic(xs, ys)
	if err != nil {
		return entity.RotatedEllipse{}, err
	}
	return entity.RotatedEllipse{
		CenterX: c.CenterU,
		CenterY: c.CenterV,
		Width:   2 * c.SemiMajor,
		Height:  2 * c.SemiMinor,
		Angle:   entity.NormalizeDegrees(c.Theta * 180 / math.Pi),
	}, nil
}

// MinEnclosingCircle минимальная описанная окружность контура.
func (s *Shapes) MinEnclosingCircle(contour []image.Point) (x, y, radius float64) {
	return MinEnclosingCircle(contour)
}

var _ port.ShapeAnalyzer = (*Shapes)(nil)
