// Package segment содержит сегментацию объект/фон без OpenCV.
package segment

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"defect-refiner/internal/domain/entity"
	"defect-refiner/internal/domain/port"
)

// ClusterSegmenter двухклассовая сегментация по яркости, инициализированная
// прямоугольником как в GrabCut: всё вне прямоугольника точно фон, внутри
// пиксели делятся на вероятный объект и вероятный фон. Модель фона
// строится по пикселям вне прямоугольника, модель объекта по пикселям внутри;
// на каждой итерации пиксели переназначаются ближайшему классу и средние
// пересчитываются.
type ClusterSegmenter struct{}

// NewClusterSegmenter создаёт сегментатор.
func NewClusterSegmenter() *ClusterSegmenter {
	return &ClusterSegmenter{}
}

// Segment выполняет сегментацию. Вырожденный прямоугольник даёт ошибку.
func (s *ClusterSegmenter) Segment(img *entity.Image8, box entity.Box, iterations int) (*entity.Mask, error) {
	if img == nil || img.Rows == 0 || img.Cols == 0 {
		return nil, errors.New("empty image")
	}
	if err := box.Validate(img.Rows, img.Cols); err != nil {
		return nil, err
	}
	if iterations <= 0 {
		return nil, fmt.Errorf("invalid iteration count %d", iterations)
	}

	outside := make([]float64, 0, img.Rows*img.Cols-box.Area())
	inside := make([]float64, 0, box.Area())
	for r := 0; r < img.Rows; r++ {
		for c := 0; c < img.Cols; c++ {
			v := float64(img.Gray(r, c))
			if box.Contains(r, c) {
				inside = append(inside, v)
			} else {
				outside = append(outside, v)
			}
		}
	}

	bgMean := borderMean(img, box)
	if len(outside) > 0 {
		bgMean = stat.Mean(outside, nil)
	}
	fgMean := stat.Mean(inside, nil)

	assigned := make([]bool, len(inside))
	for it := 0; it < iterations; it++ {
		var fg, bg []float64
		for i, v := range inside {
			// При равенстве расстояний пиксель остаётся фоном.
			assigned[i] = math.Abs(v-fgMean) < math.Abs(v-bgMean)
			if assigned[i] {
				fg = append(fg, v)
			} else {
				bg = append(bg, v)
			}
		}
		if len(fg) == 0 {
			break
		}
		fgMean = stat.Mean(fg, nil)
		if len(outside)+len(bg) > 0 {
			bgMean = stat.Mean(append(bg, outside...), nil)
		}
	}

	mask := entity.NewMask(img.Rows, img.Cols)
	i := 0
	for r := box.Y1; r < box.Y2; r++ {
		for c := box.X1; c < box.X2; c++ {
			if assigned[i] {
				mask.Set(r, c, entity.LabelProbableForeground)
			} else {
				mask.Set(r, c, entity.LabelProbableBackground)
			}
			i++
		}
	}
	return mask, nil
}

// borderMean средняя яркость рамки прямоугольника; нужна, когда прямоугольник
// покрывает всё изображение.
func borderMean(img *entity.Image8, box entity.Box) float64 {
	var vals []float64
	for r := box.Y1; r < box.Y2; r++ {
		for c := box.X1; c < box.X2; c++ {
			if r == box.Y1 || r == box.Y2-1 || c == box.X1 || c == box.X2-1 {
				vals = append(vals, float64(img.Gray(r, c)))
			}
		}
	}
	return stat.Mean(vals, nil)
}

var _ port.Segmenter = (*ClusterSegmenter)(nil)
