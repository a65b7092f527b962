package entity

import "image"

// Label метка пикселя в маске сегментации. Значения совпадают с метками GrabCut.
type Label uint8

const (
	LabelBackground         Label = 0 // Точно фон
	LabelForeground         Label = 1 // Точно объект
	LabelProbableBackground Label = 2 // Вероятно фон
	LabelProbableForeground Label = 3 // Вероятно объект
)

// Mask маска сегментации с четырьмя метками.
type Mask struct {
	Rows   int
	Cols   int
	Labels []Label
}

// NewMask создаёт маску, заполненную меткой фона.
func NewMask(rows, cols int) *Mask {
	return &Mask{Rows: rows, Cols: cols, Labels: make([]Label, rows*cols)}
}

// At возвращает метку пикселя.
func (m *Mask) At(r, c int) Label {
	return m.Labels[r*m.Cols+c]
}

// Set записывает метку пикселя.
func (m *Mask) Set(r, c int, l Label) {
	m.Labels[r*m.Cols+c] = l
}

// Foreground сворачивает маску в бинарную: объектом считаются точные и
// вероятные пиксели объекта, остальное фон.
func (m *Mask) Foreground() *BinaryMask {
	out := NewBinaryMask(m.Rows, m.Cols)
	for i, l := range m.Labels {
		out.Data[i] = l == LabelForeground || l == LabelProbableForeground
	}
	return out
}

// BinaryMask бинарная маска объект/фон.
type BinaryMask struct {
	Rows int
	Cols int
	Data []bool
}

// NewBinaryMask создаёт пустую бинарную маску.
func NewBinaryMask(rows, cols int) *BinaryMask {
	return &BinaryMask{Rows: rows, Cols: cols, Data: make([]bool, rows*cols)}
}

// At сообщает, относится ли пиксель к объекту. Пиксели за границей считаются фоном.
func (m *BinaryMask) At(r, c int) bool {
	if r < 0 || r >= m.Rows || c < 0 || c >= m.Cols {
		return false
	}
	return m.Data[r*m.Cols+c]
}

// Set помечает пиксель.
func (m *BinaryMask) Set(r, c int, v bool) {
	m.Data[r*m.Cols+c] = v
}

// Count возвращает число пикселей объекта.
func (m *BinaryMask) Count() int {
	n := 0
	for _, v := range m.Data {
		if v {
			n++
		}
	}
	return n
}

// Empty сообщает, что в маске нет ни одного пикселя объекта.
func (m *BinaryMask) Empty() bool {
	for _, v := range m.Data {
		if v {
			return false
		}
	}
	return true
}

// Bytes возвращает маску в виде 8-битного изображения 0/255.
func (m *BinaryMask) Bytes() []byte {
	out := make([]byte, len(m.Data))
	for i, v := range m.Data {
		if v {
			out[i] = 255
		}
	}
	return out
}

// Image8 8-битное трёхканальное изображение, каналы упакованы подряд.
type Image8 struct {
	Rows int
	Cols int
	Pix  []uint8
}

// NewImage8 создаёт чёрное изображение.
func NewImage8(rows, cols int) *Image8 {
	return &Image8{Rows: rows, Cols: cols, Pix: make([]uint8, rows*cols*3)}
}

// Gray возвращает яркость пикселя (первый канал).
func (im *Image8) Gray(r, c int) uint8 {
	return im.Pix[(r*im.Cols+c)*3]
}

// SetGray записывает одно значение во все три канала.
func (im *Image8) SetGray(r, c int, v uint8) {
	i := (r*im.Cols + c) * 3
	im.Pix[i] = v
	im.Pix[i+1] = v
	im.Pix[i+2] = v
}

// Bounds возвращает границы изображения в терминах image.Rectangle.
func (im *Image8) Bounds() image.Rectangle {
	return image.Rect(0, 0, im.Cols, im.Rows)
}
