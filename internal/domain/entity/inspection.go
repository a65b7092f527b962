package entity

// RefinementReport хранит итог уточнения дефекта обоими алгоритмами.
type RefinementReport struct {
	ImageWidth  int        // ширина карты
	ImageHeight int        // высота карты
	Seed        Point      // точка клика в координатах карты
	Scale       float64    // масштаб карты относительно исходного фото
	Snake       Refinement // результат активного контура
	GraphCut    Refinement // результат сегментации графовым разрезом
}

// Refinements возвращает оба результата в фиксированном порядке.
func (r *RefinementReport) Refinements() []Refinement {
	return []Refinement{r.Snake, r.GraphCut}
}

// AiDescription — текстовое описание дефекта от ИИ.
type AiDescription struct {
	Text string
}
