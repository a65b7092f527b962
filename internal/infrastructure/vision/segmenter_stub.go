//go:build !gocv
// +build !gocv

package vision

import (
	"errors"
	"image"

	"defect-refiner/internal/domain/entity"
	"defect-refiner/internal/domain/port"
	"defect-refiner/internal/infrastructure/filter"
)

// Enabled сообщает, что пакет собран без OpenCV.
const Enabled = false

var errNoGoCV = errors.New("gocv build tag is not enabled")

type GrabCutSegmenter struct{}

// NewGrabCutSegmenter создаёт сегментатор-заглушку (без OpenCV).
func NewGrabCutSegmenter() *GrabCutSegmenter {
	return &GrabCutSegmenter{}
}

// Segment возвращает ошибку, если сборка без тега gocv.
func (s *GrabCutSegmenter) Segment(img *entity.Image8, box entity.Box, iterations int) (*entity.Mask, error) {
	_ = img
	_ = box
	_ = iterations
	return nil, errNoGoCV
}

type GoCVShapes struct{}

// NewGoCVShapes создаёт анализатор-заглушку (без OpenCV).
func NewGoCVShapes() *GoCVShapes {
	return &GoCVShapes{}
}

// LargestContour без OpenCV контуров не находит.
func (s *GoCVShapes) LargestContour(mask *entity.BinaryMask) []image.Point {
	_ = mask
	return nil
}

// FitEllipse возвращает ошибку, если сборка без тега gocv.
func (s *GoCVShapes) FitEllipse(contour []image.Point) (entity.RotatedEllipse, error) {
	_ = contour
	return entity.RotatedEllipse{}, errNoGoCV
}

// MinEnclosingCircle без OpenCV возвращает нулевую окружность.
func (s *GoCVShapes) MinEnclosingCircle(contour []image.Point) (x, y, radius float64) {
	_ = contour
	return 0, 0, 0
}

type Highlighter struct {
	Thickness int
}

// NewHighlighter создаёт рисовальщик-заглушку (без OpenCV).
func NewHighlighter() *Highlighter {
	return &Highlighter{Thickness: 2}
}

// Highlight возвращает ошибку, если сборка без тега gocv.
func (h *Highlighter) Highlight(imageData []byte, report *entity.RefinementReport) ([]byte, error) {
	_ = imageData
	_ = report
	return nil, errNoGoCV
}

// EnergyFilter без OpenCV считает свёртки на чистом Go.
type EnergyFilter struct {
	filter.Filter
}

// NewEnergyFilter создаёт фильтр.
func NewEnergyFilter() *EnergyFilter {
	return &EnergyFilter{}
}

var (
	_ port.EnergyFilter  = (*EnergyFilter)(nil)
	_ port.Segmenter     = (*GrabCutSegmenter)(nil)
	_ port.ShapeAnalyzer = (*GoCVShapes)(nil)
	_ port.Highlighter   = (*Highlighter)(nil)
)
