// Package snake реализует активный контур (snake) с полунеявной схемой
// интегрирования: внутренние силы решаются через обратную матрицу системы,
// внешние берутся из градиента поля энергии.
package snake

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"defect-refiner/internal/domain/entity"
	"defect-refiner/internal/domain/port"
	"defect-refiner/internal/infrastructure/filter"
)

// convergenceOrder число сохраняемых предыдущих положений контура.
const convergenceOrder = 10

// Solver детерминированный решатель активного контура с периодическими
// граничными условиями.
type Solver struct {
	filter port.EnergyFilter
}

// NewSolver создаёт решатель с фильтрами на чистом Go.
func NewSolver() *Solver {
	return NewSolverWithFilter(filter.New())
}

// NewSolverWithFilter создаёт решатель, считающий край энергии через f.
func NewSolverWithFilter(f port.EnergyFilter) *Solver {
	if f == nil {
		f = filter.New()
	}
	return &Solver{filter: f}
}

// Evolve деформирует замкнутый контур. Внешняя энергия равна
// WLine*energy + WEdge*|grad energy|, контур движется к её максимумам.
func (s *Solver) Evolve(energy *entity.Grid, initial []entity.Point, params entity.SnakeParams) []entity.Point {
	n := len(initial)
	out := make([]entity.Point, n)
	copy(out, initial)
	if n < 3 || energy == nil || energy.Rows == 0 || energy.Cols == 0 {
		return out
	}

	external := externalEnergy(s.filter, energy, params)
	fRow, fCol := filter.Gradient(external)

	inv, err := systemInverse(n, params)
	if err != nil {
		return out
	}

	x := mat.NewVecDense(n, nil)
	y := mat.NewVecDense(n, nil)
	for i, p := range initial {
		x.SetVec(i, p.Row)
		y.SetVec(i, p.Col)
	}

	rhsX := mat.NewVecDense(n, nil)
	rhsY := mat.NewVecDense(n, nil)
	xn := mat.NewVecDense(n, nil)
	yn := mat.NewVecDense(n, nil)
	xSave := make([][]float64, convergenceOrder)
	ySave := make([][]float64, convergenceOrder)

	for iter := 0; iter < params.MaxIterations; iter++ {
		for i := 0; i < n; i++ {
			r, c := x.AtVec(i), y.AtVec(i)
			rhsX.SetVec(i, params.Gamma*r+filter.Bilinear(fRow, r, c))
			rhsY.SetVec(i, params.Gamma*c+filter.Bilinear(fCol, r, c))
		}
		xn.MulVec(inv, rhsX)
		yn.MulVec(inv, rhsY)

		for i := 0; i < n; i++ {
			x.SetVec(i, x.AtVec(i)+params.MaxPxMove*math.Tanh(xn.AtVec(i)-x.AtVec(i)))
			y.SetVec(i, y.AtVec(i)+params.MaxPxMove*math.Tanh(yn.AtVec(i)-y.AtVec(i)))
		}

		j := iter % (convergenceOrder + 1)
		if j < convergenceOrder {
			xSave[j] = mat.Col(nil, 0, x)
			ySave[j] = mat.Col(nil, 0, y)
			continue
		}
		if converged(xSave, ySave, x, y, params.Convergence) {
			break
		}
	}

	for i := range out {
		out[i] = entity.Point{Row: x.AtVec(i), Col: y.AtVec(i)}
	}
	return out
}

func externalEnergy(f port.EnergyFilter, energy *entity.Grid, params entity.SnakeParams) *entity.Grid {
	edge := f.Sobel(energy)
	out := entity.NewGrid(energy.Rows, energy.Cols)
	for i := range out.Data {
		out.Data[i] = params.WLine*energy.Data[i] + params.WEdge*edge.Data[i]
	}
	return out
}

// systemInverse возвращает (A + gamma*I)^-1, где A пентадиагональная
// циклическая матрица упругости и жёсткости контура.
func systemInverse(n int, params entity.SnakeParams) (*mat.Dense, error) {
	a := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		prev, next := (i-1+n)%n, (i+1)%n
		prev2, next2 := (i-2+n)%n, (i+2)%n

		a.Set(i, i, a.At(i, i)+2*params.Alpha+6*params.Beta+params.Gamma)
		a.Set(i, prev, a.At(i, prev)-params.Alpha-4*params.Beta)
		a.Set(i, next, a.At(i, next)-params.Alpha-4*params.Beta)
		a.Set(i, prev2, a.At(i, prev2)+params.Beta)
		a.Set(i, next2, a.At(i, next2)+params.Beta)
	}

	var inv mat.Dense
	if err := inv.Inverse(a); err != nil {
		return nil, err
	}
	return &inv, nil
}

// converged проверяет, что контур почти совпал с одним из недавних положений.
func converged(xSave, ySave [][]float64, x, y *mat.VecDense, tol float64) bool {
	best := math.Inf(1)
	for k := range xSave {
		if xSave[k] == nil {
			continue
		}
		var worst float64
		for i := 0; i < x.Len(); i++ {
			d := math.Abs(xSave[k][i]-x.AtVec(i)) + math.Abs(ySave[k][i]-y.AtVec(i))
			worst = math.Max(worst, d)
		}
		best = math.Min(best, worst)
	}
	return best < tol
}

var _ port.ContourSolver = (*Solver)(nil)
