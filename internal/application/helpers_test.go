package app

import (
	"bytes"
	"image"
	"log"
	"math"

	"github.com/stretchr/testify/mock"

	"defect-refiner/internal/domain/entity"
)

// ellipseMap строит z-score карту с эллипсом значения value. Угол phi задаёт
// поворот большой полуоси a по часовой стрелке от оси столбцов (в градусах).
func ellipseMap(rows, cols int, center entity.Point, a, b, phi, value float64) *entity.Grid {
	g := entity.NewGrid(rows, cols)
	cp, sp := math.Cos(phi*math.Pi/180), math.Sin(phi*math.Pi/180)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			dx, dy := float64(c)-center.Col, float64(r)-center.Row
			u := (dx*cp + dy*sp) / a
			v := (-dx*sp + dy*cp) / b
			if u*u+v*v <= 1 {
				g.Set(r, c, value)
			}
		}
	}
	return g
}

// ellipseContour точки эллипса в координатах (строка, столбец); угол theta
// отсчитывается от оси строк к оси столбцов.
func ellipseContour(center entity.Point, a, b, theta float64, n int) []entity.Point {
	pts := make([]entity.Point, n)
	for i := range pts {
		t := 2 * math.Pi * float64(i) / float64(n)
		ca, sb := a*math.Cos(t), b*math.Sin(t)
		pts[i] = entity.Point{
			Row: center.Row + ca*math.Cos(theta) - sb*math.Sin(theta),
			Col: center.Col + ca*math.Sin(theta) + sb*math.Cos(theta),
		}
	}
	return pts
}

func bufferLogger() (*log.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return log.New(&buf, "", 0), &buf
}

type solverMock struct {
	mock.Mock
}

func (m *solverMock) Evolve(energy *entity.Grid, initial []entity.Point, params entity.SnakeParams) []entity.Point {
	args := m.Called(energy, initial, params)
	return args.Get(0).([]entity.Point)
}

type segmenterMock struct {
	mock.Mock
}

func (m *segmenterMock) Segment(img *entity.Image8, box entity.Box, iterations int) (*entity.Mask, error) {
	args := m.Called(img, box, iterations)
	mask, _ := args.Get(0).(*entity.Mask)
	return mask, args.Error(1)
}

type panickingSegmenter struct{}

func (panickingSegmenter) Segment(*entity.Image8, entity.Box, int) (*entity.Mask, error) {
	panic("grabcut: assertion failed")
}

type shapesMock struct {
	mock.Mock
}

func (m *shapesMock) LargestContour(mask *entity.BinaryMask) []image.Point {
	args := m.Called(mask)
	pts, _ := args.Get(0).([]image.Point)
	return pts
}

func (m *shapesMock) FitEllipse(contour []image.Point) (entity.RotatedEllipse, error) {
	args := m.Called(contour)
	return args.Get(0).(entity.RotatedEllipse), args.Error(1)
}

func (m *shapesMock) MinEnclosingCircle(contour []image.Point) (float64, float64, float64) {
	args := m.Called(contour)
	return args.Get(0).(float64), args.Get(1).(float64), args.Get(2).(float64)
}
