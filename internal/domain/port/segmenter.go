package port

import "defect-refiner/internal/domain/entity"

// Segmenter сегментация объект/фон внутри прямоугольника поиска
type Segmenter interface {
	// Segment выполняет iterations итераций и возвращает маску с четырьмя метками
	Segment(img *entity.Image8, box entity.Box, iterations int) (*entity.Mask, error)
}
