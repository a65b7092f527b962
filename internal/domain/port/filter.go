package port

import "defect-refiner/internal/domain/entity"

// EnergyFilter свёртки вещественного поля энергии
type EnergyFilter interface {
	// Gaussian сглаживает поле, края продолжаются ближайшим значением
	Gaussian(g *entity.Grid, sigma float64) *entity.Grid

	// Sobel возвращает модуль градиента sqrt((h^2+v^2)/2) с ядрами, делёнными на 4
	Sobel(g *entity.Grid) *entity.Grid
}
