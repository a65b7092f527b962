package port

import "defect-refiner/internal/domain/entity"

// ZScoreProducer строит z-score карту по фото
type ZScoreProducer interface {
	// Compute декодирует изображение и возвращает карту отклонений и масштаб
	// карты относительно исходного изображения
	Compute(imageData []byte) (zmap *entity.Grid, scale float64, err error)
}
