package entity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewEllipse_OrdersAxes(t *testing.T) {
	e := NewEllipse(Point{Row: 1, Col: 2}, 4, 9, 30, AngleClockwise)
	require.Equal(t, 9.0, e.Major)
	require.Equal(t, 4.0, e.Minor)
	require.Equal(t, 1.0, e.CenterRow)
	require.Equal(t, 2.0, e.CenterCol)
}

func TestFallbackEllipse(t *testing.T) {
	e := FallbackEllipse(Point{Row: 5.5, Col: 7.25}, AngleSnake)
	require.Equal(t, Ellipse{CenterRow: 5.5, CenterCol: 7.25, Major: 10, Minor: 10, Angle: 0, Convention: AngleSnake}, e)
}

func TestClockwiseAngle(t *testing.T) {
	snake := Ellipse{Angle: -30, Convention: AngleSnake}
	require.InDelta(t, 60.0, snake.ClockwiseAngle(), 1e-9)

	cw := Ellipse{Angle: 60, Convention: AngleClockwise}
	require.InDelta(t, 60.0, cw.ClockwiseAngle(), 1e-9)

	require.InDelta(t, 170.0, NormalizeDegrees(-10), 1e-9)
	require.InDelta(t, 0.0, NormalizeDegrees(180), 1e-9)
	require.InDelta(t, 45.0, NormalizeDegrees(405), 1e-9)
}

func TestRefinementStrict(t *testing.T) {
	ok := Refinement{Ellipse: Ellipse{Major: 3, Minor: 2}, Status: StatusOK}
	e, err := ok.Strict()
	require.NoError(t, err)
	require.Equal(t, 3.0, e.Major)
	require.False(t, ok.Degraded())

	sparse := Refinement{Status: StatusSparseContour}
	_, err = sparse.Strict()
	require.NoError(t, err)
	require.True(t, sparse.Degraded())

	cause := errors.New("boom")
	collapsed := Refinement{Status: StatusFitCollapse, Err: cause}
	_, err = collapsed.Strict()
	require.ErrorIs(t, err, ErrFitCollapse)

	_, err = Refinement{Status: StatusEmptyForeground}.Strict()
	require.ErrorIs(t, err, ErrEmptyForeground)

	_, err = Refinement{Status: StatusSegmentationFailure}.Strict()
	require.ErrorIs(t, err, ErrSegmentationFailure)
}
