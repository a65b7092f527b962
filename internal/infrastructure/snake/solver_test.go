package snake

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"defect-refiner/internal/domain/entity"
	"defect-refiner/internal/infrastructure/filter"
)

// diskEnergy строит сглаженное поле энергии с диском заданного радиуса.
func diskEnergy(size int, center entity.Point, radius, value float64) *entity.Grid {
	g := entity.NewGrid(size, size)
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			if math.Hypot(float64(r)-center.Row, float64(c)-center.Col) <= radius {
				g.Set(r, c, value)
			}
		}
	}
	return filter.Gaussian(g, 1)
}

func TestEvolve_PreservesLength(t *testing.T) {
	energy := diskEnergy(64, entity.Point{Row: 32, Col: 32}, 10, 5)
	initial := entity.Circle(entity.Point{Row: 32, Col: 32}, 15, 100)

	out := NewSolver().Evolve(energy, initial, entity.DefaultSnakeParams())
	require.Len(t, out, 100)
	require.Equal(t, entity.Point{Row: 32, Col: 32 + 15}, initial[0])
}

func TestEvolve_SnapsToDiskEdge(t *testing.T) {
	center := entity.Point{Row: 32, Col: 32}
	energy := diskEnergy(64, center, 10, 5)
	initial := entity.Circle(center, 15, 100)

	out := NewSolver().Evolve(energy, initial, entity.DefaultSnakeParams())

	var mean float64
	for _, p := range out {
		d := math.Hypot(p.Row-center.Row, p.Col-center.Col)
		require.InDelta(t, 10.5, d, 2.5)
		mean += d
	}
	mean /= float64(len(out))
	require.InDelta(t, 10.5, mean, 1.5)
}

func TestEvolve_CoincidentPointsStayCoincident(t *testing.T) {
	energy := diskEnergy(64, entity.Point{Row: 32, Col: 32}, 10, 5)
	initial := entity.Circle(entity.Point{Row: 25, Col: 30}, 0, 100)

	out := NewSolver().Evolve(energy, initial, entity.DefaultSnakeParams())
	for _, p := range out[1:] {
		require.InDelta(t, out[0].Row, p.Row, 1e-9)
		require.InDelta(t, out[0].Col, p.Col, 1e-9)
	}
}

func TestEvolve_Deterministic(t *testing.T) {
	energy := diskEnergy(48, entity.Point{Row: 20, Col: 24}, 8, 4)
	initial := entity.Circle(entity.Point{Row: 21, Col: 23}, 12, 100)
	params := entity.DefaultSnakeParams()

	a := NewSolver().Evolve(energy, initial, params)
	b := NewSolver().Evolve(energy, initial, params)
	require.Equal(t, a, b)
}

func TestSystemInverse_ConstantMode(t *testing.T) {
	params := entity.DefaultSnakeParams()
	inv, err := systemInverse(20, params)
	require.NoError(t, err)

	// Строки A суммируются в ноль, поэтому постоянный вектор делится на gamma.
	for i := 0; i < 20; i++ {
		var sum float64
		for j := 0; j < 20; j++ {
			sum += inv.At(i, j)
		}
		require.InDelta(t, 1/params.Gamma, sum, 1e-6)
	}
}
