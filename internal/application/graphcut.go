package app

import (
	"errors"
	"fmt"
	"log"
	"math"

	"defect-refiner/internal/domain/entity"
	"defect-refiner/internal/domain/port"
)

const (
	DefaultBoxSize    = 20
	DefaultIterations = 5
	// DefaultMaxSigma отклонение, которое отображается в яркость 255.
	DefaultMaxSigma = 6.0

	minEllipsePoints = 5
)

// GraphCutOptions настройки GraphCutRefiner. Нулевые значения заменяются
// значениями по умолчанию.
type GraphCutOptions struct {
	BoxSize    int
	Iterations int
	MaxSigma   float64
	Logger     *log.Logger
}

// GraphCutRefiner уточняет дефект сегментацией графовым разрезом внутри
// квадрата вокруг точки клика и вписыванием эллипса в крупнейший контур.
type GraphCutRefiner struct {
	segmenter  port.Segmenter
	shapes     port.ShapeAnalyzer
	boxSize    int
	iterations int
	maxSigma   float64
	logger     *log.Logger
}

// NewGraphCutRefiner создаёт уточнитель на основе сегментации.
func NewGraphCutRefiner(segmenter port.Segmenter, shapes port.ShapeAnalyzer, opts GraphCutOptions) *GraphCutRefiner {
	r := &GraphCutRefiner{
		segmenter:  segmenter,
		shapes:     shapes,
		boxSize:    opts.BoxSize,
		iterations: opts.Iterations,
		maxSigma:   opts.MaxSigma,
		logger:     loggerOrDefault(opts.Logger),
	}
	if r.boxSize <= 0 {
		r.boxSize = DefaultBoxSize
	}
	if r.iterations <= 0 {
		r.iterations = DefaultIterations
	}
	if r.maxSigma <= 0 {
		r.maxSigma = DefaultMaxSigma
	}
	return r
}

// Refine уточняет дефект с полушириной квадрата поиска по умолчанию.
func (r *GraphCutRefiner) Refine(zmap *entity.Grid, seed entity.Point) entity.Refinement {
	return r.RefineWithBox(zmap, seed, r.boxSize)
}

// RefineWithBox уточняет дефект внутри квадрата полушириной boxSize.
// Угол результата: градусы по часовой стрелке от оси столбцов. Угол вписанного
// эллипса не передаётся как есть: если анализатор вернул малую ось первой
// (так бывает у OpenCV fitEllipse), угол поворачивается на 90°, чтобы всегда
// описывать большую ось.
func (r *GraphCutRefiner) RefineWithBox(zmap *entity.Grid, seed entity.Point, boxSize int) entity.Refinement {
	if err := zmap.Validate(); err != nil {
		return fallback(r.logger, seed, entity.AngleClockwise, entity.StatusSegmentationFailure, fmt.Errorf("invalid z-score map: %w", err))
	}
	if boxSize <= 0 {
		return fallback(r.logger, seed, entity.AngleClockwise, entity.StatusSegmentationFailure, fmt.Errorf("invalid box size %d", boxSize))
	}

	img := Normalize(zmap, r.maxSigma)
	box := entity.NewSearchBox(seed, boxSize, zmap.Rows, zmap.Cols)

	mask, err := r.segment(img, box)
	if err != nil {
		return fallback(r.logger, seed, entity.AngleClockwise, entity.StatusSegmentationFailure, err)
	}

	fg := mask.Foreground()
	if fg.Empty() {
		return fallback(r.logger, seed, entity.AngleClockwise, entity.StatusEmptyForeground, errors.New("no foreground pixels"))
	}

	contour := r.shapes.LargestContour(fg)
	if len(contour) < minEllipsePoints {
		x, y, radius := r.shapes.MinEnclosingCircle(contour)
		r.logger.Printf("Warning: contour has %d points, using enclosing circle r=%.2f", len(contour), radius)
		return entity.Refinement{
			Ellipse: entity.NewEllipse(entity.Point{Row: y, Col: x}, 2*radius, 2*radius, 0, entity.AngleClockwise),
			Status:  entity.StatusSparseContour,
		}
	}

	fit, err := r.shapes.FitEllipse(contour)
	if err != nil {
		return fallback(r.logger, seed, entity.AngleClockwise, entity.StatusSegmentationFailure, fmt.Errorf("fit ellipse to contour: %w", err))
	}

	// Угол всегда относится к большой оси.
	angle := fit.Angle
	if fit.Width < fit.Height {
		angle = entity.NormalizeDegrees(angle + 90)
	}
	center := entity.Point{Row: fit.CenterY, Col: fit.CenterX}
	return entity.Refinement{
		Ellipse: entity.NewEllipse(center, fit.Width, fit.Height, angle, entity.AngleClockwise),
		Status:  entity.StatusOK,
	}
}

// segment вызывает сегментатор и превращает панику внешней библиотеки в ошибку.
func (r *GraphCutRefiner) segment(img *entity.Image8, box entity.Box) (mask *entity.Mask, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("segmenter panicked: %v", p)
		}
	}()
	mask, err = r.segmenter.Segment(img, box, r.iterations)
	if err != nil {
		return nil, fmt.Errorf("segment box %v: %w", box, err)
	}
	if mask == nil || mask.Rows != img.Rows || mask.Cols != img.Cols {
		return nil, errors.New("segmenter returned mask of wrong size")
	}
	return mask, nil
}

// Normalize переводит |z| в 8-битную яркость: диапазон [0, maxSigma]
// отображается в [0, 255] с обрезкой, значение копируется в три канала.
func Normalize(zmap *entity.Grid, maxSigma float64) *entity.Image8 {
	img := entity.NewImage8(zmap.Rows, zmap.Cols)
	for r := 0; r < zmap.Rows; r++ {
		for c := 0; c < zmap.Cols; c++ {
			v := math.Abs(zmap.At(r, c)) / maxSigma * 255
			img.SetGray(r, c, uint8(math.Max(0, math.Min(255, v))))
		}
	}
	return img
}

var _ port.Refiner = (*GraphCutRefiner)(nil)
