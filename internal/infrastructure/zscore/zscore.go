// Package zscore строит карту локальных z-оценок по фотографии:
// (яркость - локальное среднее) / локальное стандартное отклонение.
package zscore

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"defect-refiner/internal/domain/entity"
	"defect-refiner/internal/domain/port"
)

// minStd отклонение, ниже которого окно считается однородным.
const minStd = 1e-6

type Producer struct {
	Window  int // сторона квадратного окна, нечётная
	MaxSide int // фото больше этого размера уменьшаются
}

// NewProducer создаёт построитель карты.
func NewProducer(window, maxSide int) *Producer {
	if window%2 == 0 {
		window++
	}
	return &Producer{Window: window, MaxSide: maxSide}
}

// Compute декодирует фото, приводит его к MaxSide и возвращает карту и масштаб.
func (p *Producer) Compute(imageData []byte) (*entity.Grid, float64, error) {
	img, err := imaging.Decode(bytes.NewReader(imageData), imaging.AutoOrientation(true))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decode image: %w", err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, 0, errors.New("empty image")
	}

	scale := 1.0
	if p.MaxSide > 0 && (b.Dx() > p.MaxSide || b.Dy() > p.MaxSide) {
		img = imaging.Fit(img, p.MaxSide, p.MaxSide, imaging.Lanczos)
		scale = float64(img.Bounds().Dx()) / float64(b.Dx())
	}

	return FromGray(toGrid(imaging.Grayscale(img)), p.Window), scale, nil
}

func toGrid(img *image.NRGBA) *entity.Grid {
	b := img.Bounds()
	g := entity.NewGrid(b.Dy(), b.Dx())
	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < b.Dx(); x++ {
			g.Set(y, x, float64(row[x*4]))
		}
	}
	return g
}

// FromGray считает локальные z-оценки по окну window x window через
// интегральные изображения. Окно у краёв обрезается.
func FromGray(gray *entity.Grid, window int) *entity.Grid {
	rows, cols := gray.Rows, gray.Cols
	sum := make([]float64, (rows+1)*(cols+1))
	sq := make([]float64, (rows+1)*(cols+1))
	w := cols + 1
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := gray.At(r, c)
			i := (r+1)*w + c + 1
			sum[i] = v + sum[i-1] + sum[i-w] - sum[i-w-1]
			sq[i] = v*v + sq[i-1] + sq[i-w] - sq[i-w-1]
		}
	}

	half := window / 2
	out := entity.NewGrid(rows, cols)
	for r := 0; r < rows; r++ {
		r0, r1 := max(r-half, 0), min(r+half+1, rows)
		for c := 0; c < cols; c++ {
			c0, c1 := max(c-half, 0), min(c+half+1, cols)
			n := float64((r1 - r0) * (c1 - c0))
			s := sum[r1*w+c1] - sum[r0*w+c1] - sum[r1*w+c0] + sum[r0*w+c0]
			s2 := sq[r1*w+c1] - sq[r0*w+c1] - sq[r1*w+c0] + sq[r0*w+c0]
			mean := s / n
			std := math.Sqrt(math.Max(s2/n-mean*mean, 0))
			if std < minStd {
				continue
			}
			out.Set(r, c, (gray.At(r, c)-mean)/std)
		}
	}
	return out
}

var _ port.ZScoreProducer = (*Producer)(nil)
