package entity

// SnakeParams веса и ограничения активного контура.
type SnakeParams struct {
	Alpha         float64 // упругость: штраф за растяжение контура
	Beta          float64 // жёсткость: штраф за изгиб
	WLine         float64 // притяжение к яркости
	WEdge         float64 // притяжение к градиенту
	Gamma         float64 // шаг по времени
	MaxPxMove     float64 // максимальное смещение точки за итерацию
	MaxIterations int
	Convergence   float64 // порог смещения для остановки
}

// DefaultSnakeParams параметры, при которых контур плавно сжимается от
// начальной окружности и останавливается на самом крутом перепаде энергии.
func DefaultSnakeParams() SnakeParams {
	return SnakeParams{
		Alpha:         0.015,
		Beta:          10,
		WLine:         0,
		WEdge:         1,
		Gamma:         0.01,
		MaxPxMove:     1.0,
		MaxIterations: 2500,
		Convergence:   0.1,
	}
}
