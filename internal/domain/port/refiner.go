package port

import "defect-refiner/internal/domain/entity"

// Refiner уточняет грубую точку клика до эллипса дефекта
type Refiner interface {
	// Refine возвращает эллипс; при неудаче заполняет эллипс по умолчанию и статус
	Refine(zmap *entity.Grid, seed entity.Point) entity.Refinement
}
