package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBoxCenter(t *testing.T) {
	b := Box{X1: 10, Y1: 20, X2: 18, Y2: 26}
	x, y := b.Center()
	require.Equal(t, 14, x)
	require.Equal(t, 23, y)
	require.Equal(t, 48, b.Area())
}

func TestNewSearchBox_Interior(t *testing.T) {
	b := NewSearchBox(Point{Row: 32.7, Col: 30.2}, 20, 64, 64)
	require.Equal(t, Box{X1: 10, Y1: 12, X2: 50, Y2: 52}, b)
	require.NoError(t, b.Validate(64, 64))
}

func TestNewSearchBox_ClippedAtEdges(t *testing.T) {
	cases := []Point{
		{Row: 0, Col: 0},
		{Row: 3, Col: 60},
		{Row: 63, Col: 63},
		{Row: 50, Col: 2},
	}
	for _, seed := range cases {
		b := NewSearchBox(seed, 20, 64, 48)
		require.GreaterOrEqual(t, b.X1, 0)
		require.GreaterOrEqual(t, b.Y1, 0)
		require.LessOrEqual(t, b.X2, 48)
		require.LessOrEqual(t, b.Y2, 64)
	}
}

func TestBoxValidate_Degenerate(t *testing.T) {
	// Точка клика далеко за изображением даёт пустой прямоугольник.
	b := NewSearchBox(Point{Row: 500, Col: 500}, 20, 64, 64)
	require.Error(t, b.Validate(64, 64))
}
