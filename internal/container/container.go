package container

import (
	"errors"
	"log"

	"defect-refiner/config"
	app "defect-refiner/internal/application"
	"defect-refiner/internal/domain/entity"
	"defect-refiner/internal/domain/port"
	"defect-refiner/internal/infrastructure/filter"
	"defect-refiner/internal/infrastructure/geometry"
	"defect-refiner/internal/infrastructure/segment"
	"defect-refiner/internal/infrastructure/snake"
	"defect-refiner/internal/infrastructure/vision"
	"defect-refiner/internal/infrastructure/zscore"
)

type Container struct {
	UserService       *app.UserService
	RefinementService *app.RefinementService
	SnakeRefiner      *app.SnakeRefiner
	GraphCutRefiner   *app.GraphCutRefiner
}

// New собирает сервисы по конфигурации. describer может быть nil.
func New(cfg *config.Config, userRepo port.UserRepository, describer port.DefectDescriber) (*Container, error) {
	tuning := cfg.Tuning
	if tuning == nil {
		tuning = config.DefaultTuning()
	}

	segmenter, err := newSegmenter(cfg.Segmenter)
	if err != nil {
		return nil, err
	}
	shapes, err := newShapes(cfg.Shapes)
	if err != nil {
		return nil, err
	}

	energyFilter := newEnergyFilter()

	s := tuning.Snake
	snakeRefiner := app.NewSnakeRefiner(snake.NewSolverWithFilter(energyFilter), geometry.NewConicFitter(), app.SnakeOptions{
		InitRadius: s.InitRadius,
		Sigma:      s.Sigma,
		Params: entity.SnakeParams{
			Alpha:         s.Alpha,
			Beta:          s.Beta,
			WLine:         s.WLine,
			WEdge:         s.WEdge,
			Gamma:         s.Gamma,
			MaxPxMove:     s.MaxPxMove,
			MaxIterations: s.MaxIterations,
			Convergence:   s.Convergence,
		},
		Filter: energyFilter,
	})

	g := tuning.GraphCut
	graphCutRefiner := app.NewGraphCutRefiner(segmenter, shapes, app.GraphCutOptions{
		BoxSize:    g.BoxSize,
		Iterations: g.Iterations,
		MaxSigma:   g.MaxSigma,
	})

	var highlighter port.Highlighter
	if vision.Enabled {
		highlighter = vision.NewHighlighter()
	}

	userService := app.NewUserService(userRepo)
	refinementService := app.NewRefinementService(
		userService,
		zscore.NewProducer(tuning.ZScore.Window, tuning.ZScore.MaxSide),
		snakeRefiner,
		graphCutRefiner,
		highlighter,
		describer,
	)

	return &Container{
		UserService:       userService,
		RefinementService: refinementService,
		SnakeRefiner:      snakeRefiner,
		GraphCutRefiner:   graphCutRefiner,
	}, nil
}

// newEnergyFilter свёртки через OpenCV при сборке с gocv, иначе чистый Go.
func newEnergyFilter() port.EnergyFilter {
	if vision.Enabled {
		return vision.NewEnergyFilter()
	}
	return filter.New()
}

func newSegmenter(kind string) (port.Segmenter, error) {
	switch kind {
	case config.SegmenterCluster:
		return segment.NewClusterSegmenter(), nil
	case config.SegmenterGrabCut:
		if !vision.Enabled {
			return nil, errors.New("grabcut segmenter requires the gocv build tag")
		}
		return vision.NewGrabCutSegmenter(), nil
	case "":
		if vision.Enabled {
			return vision.NewGrabCutSegmenter(), nil
		}
		log.Println("OpenCV is not available, using cluster segmenter")
		return segment.NewClusterSegmenter(), nil
	default:
		return nil, errors.New("unknown segmenter " + kind)
	}
}

func newShapes(kind string) (port.ShapeAnalyzer, error) {
	switch kind {
	case "", config.ShapesGo:
		return geometry.NewShapes(), nil
	case config.ShapesGoCV:
		if !vision.Enabled {
			return nil, errors.New("gocv shapes require the gocv build tag")
		}
		return vision.NewGoCVShapes(), nil
	default:
		return nil, errors.New("unknown shapes " + kind)
	}
}
