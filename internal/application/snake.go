package app

import (
	"fmt"
	"log"
	"math"

	"defect-refiner/internal/domain/entity"
	"defect-refiner/internal/domain/port"
	"defect-refiner/internal/infrastructure/filter"
)

const (
	// ContourPoints число точек начального контура.
	ContourPoints = 100

	DefaultInitRadius  = 15.0
	DefaultEnergySigma = 1.0
)

// SnakeOptions настройки SnakeRefiner. Нулевые значения заменяются значениями
// по умолчанию.
type SnakeOptions struct {
	InitRadius float64
	Sigma      float64
	Params     entity.SnakeParams
	Filter     port.EnergyFilter // сглаживание поля; по умолчанию чистый Go
	Logger     *log.Logger
}

// SnakeRefiner уточняет дефект активным контуром: сглаженное поле |z|,
// окружность вокруг точки клика, деформация контура и вписывание эллипса.
type SnakeRefiner struct {
	solver     port.ContourSolver
	fitter     port.ConicFitter
	initRadius float64
	sigma      float64
	params     entity.SnakeParams
	filter     port.EnergyFilter
	logger     *log.Logger
}

// NewSnakeRefiner создаёт уточнитель на основе активного контура.
func NewSnakeRefiner(solver port.ContourSolver, fitter port.ConicFitter, opts SnakeOptions) *SnakeRefiner {
	r := &SnakeRefiner{
		solver:     solver,
		fitter:     fitter,
		initRadius: opts.InitRadius,
		sigma:      opts.Sigma,
		params:     opts.Params,
		filter:     opts.Filter,
		logger:     loggerOrDefault(opts.Logger),
	}
	if r.initRadius <= 0 {
		r.initRadius = DefaultInitRadius
	}
	if r.filter == nil {
		r.filter = filter.New()
	}
	if r.sigma <= 0 {
		r.sigma = DefaultEnergySigma
	}
	if r.params == (entity.SnakeParams{}) {
		r.params = entity.DefaultSnakeParams()
	}
	return r
}

// Refine уточняет дефект с радиусом начальной окружности по умолчанию.
func (r *SnakeRefiner) Refine(zmap *entity.Grid, seed entity.Point) entity.Refinement {
	return r.RefineWithRadius(zmap, seed, r.initRadius)
}

// RefineWithRadius уточняет дефект, начиная с окружности радиуса initRadius.
// Угол результата: градусы в системе (строка, столбец) с обратным знаком.
func (r *SnakeRefiner) RefineWithRadius(zmap *entity.Grid, seed entity.Point, initRadius float64) entity.Refinement {
	if err := zmap.Validate(); err != nil {
		return fallback(r.logger, seed, entity.AngleSnake, entity.StatusFitCollapse, fmt.Errorf("invalid z-score map: %w", err))
	}

	// Модуль учитывает и тёмные, и светлые дефекты, сглаживание убирает шум
	// градиента, на котором контур застревает.
	energy := r.filter.Gaussian(zmap.Abs(), r.sigma)

	initial := entity.Circle(seed, initRadius, ContourPoints)
	evolved := r.solver.Evolve(energy, initial, r.params)

	conic, err := r.fitter.FitConic(evolved)
	if err != nil {
		return fallback(r.logger, seed, entity.AngleSnake, entity.StatusFitCollapse, fmt.Errorf("fit ellipse to snake: %w", err))
	}

	center := entity.Point{Row: conic.CenterU, Col: conic.CenterV}
	angle := -conic.Theta * 180 / math.Pi
	return entity.Refinement{
		Ellipse: entity.NewEllipse(center, 2*conic.SemiMajor, 2*conic.SemiMinor, angle, entity.AngleSnake),
		Status:  entity.StatusOK,
	}
}

var _ port.Refiner = (*SnakeRefiner)(nil)
