package port

import (
	"context"

	"defect-refiner/internal/domain/entity"
)

// DefectDescriber интерфейс описателя дефектов
type DefectDescriber interface {
	// Describe генерирует текстовое описание уточнённого дефекта
	Describe(ctx context.Context, report *entity.RefinementReport, highlighted []byte) (*entity.AiDescription, error)
}

// Highlighter рисует найденные эллипсы поверх фото
type Highlighter interface {
	// Highlight возвращает JPEG с нанесёнными эллипсами
	Highlight(imageData []byte, report *entity.RefinementReport) ([]byte, error)
}
