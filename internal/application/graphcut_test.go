package app

import (
	"errors"
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"defect-refiner/internal/domain/entity"
	"defect-refiner/internal/infrastructure/geometry"
	"defect-refiner/internal/infrastructure/segment"
)

func newGraphCutRefiner(t *testing.T) *GraphCutRefiner {
	t.Helper()
	logger, _ := bufferLogger()
	return NewGraphCutRefiner(segment.NewClusterSegmenter(), geometry.NewShapes(), GraphCutOptions{Logger: logger})
}

func TestNormalize(t *testing.T) {
	zmap, err := entity.GridFromRows([][]float64{{0, 3, -6, 12, -0.5}})
	require.NoError(t, err)

	img := Normalize(zmap, DefaultMaxSigma)
	require.Equal(t, uint8(0), img.Gray(0, 0))
	require.Equal(t, uint8(127), img.Gray(0, 1))
	require.Equal(t, uint8(255), img.Gray(0, 2))
	require.Equal(t, uint8(255), img.Gray(0, 3))
	require.Equal(t, uint8(21), img.Gray(0, 4))
	require.Equal(t, img.Pix[3], img.Pix[4])
	require.Equal(t, img.Pix[4], img.Pix[5])
}

func TestGraphCutRefiner_EllipticalBlob(t *testing.T) {
	seed := entity.Point{Row: 32, Col: 32}
	zmap := ellipseMap(64, 64, seed, 10, 5, 0, 5)

	res := newGraphCutRefiner(t).Refine(zmap, seed)
	require.Equal(t, entity.StatusOK, res.Status)

	e := res.Ellipse
	require.InDelta(t, 32.0, e.CenterRow, 1)
	require.InDelta(t, 32.0, e.CenterCol, 1)
	require.InDelta(t, 20.0, e.Major, 3)
	require.InDelta(t, 10.0, e.Minor, 3)
	require.Equal(t, entity.AngleClockwise, e.Convention)
	require.Less(t, math.Min(e.Angle, 180-e.Angle), 5.0)
}

func TestGraphCutRefiner_ZeroMapIsEmptyForeground(t *testing.T) {
	seed := entity.Point{Row: 20.5, Col: 11.25}
	logger, buf := bufferLogger()
	r := NewGraphCutRefiner(segment.NewClusterSegmenter(), geometry.NewShapes(), GraphCutOptions{Logger: logger})

	res := r.Refine(entity.NewGrid(48, 48), seed)
	require.Equal(t, entity.StatusEmptyForeground, res.Status)
	require.Equal(t, entity.FallbackEllipse(seed, entity.AngleClockwise), res.Ellipse)
	require.Contains(t, buf.String(), "empty_foreground")

	_, err := res.Strict()
	require.ErrorIs(t, err, entity.ErrEmptyForeground)
}

func TestGraphCutRefiner_SinglePixelUsesEnclosingCircle(t *testing.T) {
	mask := entity.NewMask(32, 32)
	mask.Set(10, 14, entity.LabelForeground)

	seg := new(segmenterMock)
	seg.On("Segment", mock.Anything, entity.Box{X1: 0, Y1: 0, X2: 30, Y2: 26}, DefaultIterations).Return(mask, nil)

	logger, _ := bufferLogger()
	r := NewGraphCutRefiner(seg, geometry.NewShapes(), GraphCutOptions{Logger: logger})
	res := r.Refine(entity.NewGrid(32, 32), entity.Point{Row: 6.9, Col: 10.2})
	seg.AssertExpectations(t)

	require.Equal(t, entity.StatusSparseContour, res.Status)
	require.Equal(t, res.Ellipse.Major, res.Ellipse.Minor)
	require.Zero(t, res.Ellipse.Angle)
	require.Equal(t, 10.0, res.Ellipse.CenterRow)
	require.Equal(t, 14.0, res.Ellipse.CenterCol)
}

func TestGraphCutRefiner_SparseContourCircleDiameter(t *testing.T) {
	contour := []image.Point{{X: 3, Y: 4}, {X: 5, Y: 4}}
	mask := entity.NewMask(8, 8)
	mask.Set(4, 3, entity.LabelProbableForeground)

	seg := new(segmenterMock)
	seg.On("Segment", mock.Anything, mock.Anything, DefaultIterations).Return(mask, nil)
	shapes := new(shapesMock)
	shapes.On("LargestContour", mock.Anything).Return(contour)
	shapes.On("MinEnclosingCircle", contour).Return(4.0, 4.0, 1.5)

	logger, _ := bufferLogger()
	res := NewGraphCutRefiner(seg, shapes, GraphCutOptions{Logger: logger}).Refine(entity.NewGrid(8, 8), entity.Point{Row: 4, Col: 4})
	shapes.AssertExpectations(t)
	shapes.AssertNotCalled(t, "FitEllipse", mock.Anything)

	require.Equal(t, entity.StatusSparseContour, res.Status)
	require.Equal(t, 3.0, res.Ellipse.Major)
	require.Equal(t, 3.0, res.Ellipse.Minor)
}

func TestGraphCutRefiner_SegmentationError(t *testing.T) {
	seed := entity.Point{Row: 5, Col: 5}
	seg := new(segmenterMock)
	seg.On("Segment", mock.Anything, mock.Anything, DefaultIterations).Return(nil, errors.New("bad rect"))

	logger, _ := bufferLogger()
	res := NewGraphCutRefiner(seg, geometry.NewShapes(), GraphCutOptions{Logger: logger}).Refine(entity.NewGrid(16, 16), seed)
	require.Equal(t, entity.StatusSegmentationFailure, res.Status)
	require.Equal(t, entity.FallbackEllipse(seed, entity.AngleClockwise), res.Ellipse)
	require.ErrorContains(t, res.Err, "bad rect")
}

func TestGraphCutRefiner_SegmenterPanicIsRecovered(t *testing.T) {
	seed := entity.Point{Row: 5, Col: 5}
	logger, _ := bufferLogger()
	res := NewGraphCutRefiner(panickingSegmenter{}, geometry.NewShapes(), GraphCutOptions{Logger: logger}).Refine(entity.NewGrid(16, 16), seed)
	require.Equal(t, entity.StatusSegmentationFailure, res.Status)
	require.Equal(t, entity.FallbackEllipse(seed, entity.AngleClockwise), res.Ellipse)
}

func TestGraphCutRefiner_DegenerateBox(t *testing.T) {
	// Точка клика вне изображения даёт пустой прямоугольник.
	seed := entity.Point{Row: 100, Col: 100}
	res := newGraphCutRefiner(t).Refine(entity.NewGrid(16, 16), seed)
	require.Equal(t, entity.StatusSegmentationFailure, res.Status)
	require.Equal(t, entity.FallbackEllipse(seed, entity.AngleClockwise), res.Ellipse)
}

func TestGraphCutRefiner_MinorAxisFirstRotatesAngle(t *testing.T) {
	mask := entity.NewMask(16, 16)
	mask.Set(8, 8, entity.LabelForeground)
	contour := []image.Point{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 3, Y: 2}, {X: 2, Y: 3}, {X: 1, Y: 3}}

	seg := new(segmenterMock)
	seg.On("Segment", mock.Anything, mock.Anything, DefaultIterations).Return(mask, nil)
	shapes := new(shapesMock)
	shapes.On("LargestContour", mock.Anything).Return(contour)
	shapes.On("FitEllipse", contour).Return(entity.RotatedEllipse{CenterX: 2, CenterY: 7, Width: 4, Height: 9, Angle: 120}, nil)

	logger, _ := bufferLogger()
	res := NewGraphCutRefiner(seg, shapes, GraphCutOptions{Logger: logger}).Refine(entity.NewGrid(16, 16), entity.Point{Row: 8, Col: 8})
	require.Equal(t, entity.StatusOK, res.Status)
	require.Equal(t, 9.0, res.Ellipse.Major)
	require.Equal(t, 4.0, res.Ellipse.Minor)
	require.InDelta(t, 30.0, res.Ellipse.Angle, 1e-9)
	require.Equal(t, 7.0, res.Ellipse.CenterRow)
	require.Equal(t, 2.0, res.Ellipse.CenterCol)
}

func TestGraphCutRefiner_Idempotent(t *testing.T) {
	seed := entity.Point{Row: 30, Col: 28}
	zmap := ellipseMap(64, 64, seed, 9, 6, 40, -4)
	r := newGraphCutRefiner(t)
	require.Equal(t, r.Refine(zmap, seed), r.Refine(zmap, seed))
}
