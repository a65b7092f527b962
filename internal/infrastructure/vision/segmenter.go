//go:build gocv
// +build gocv

package vision

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"math"

	"gocv.io/x/gocv"

	"defect-refiner/internal/domain/entity"
	"defect-refiner/internal/domain/port"
)

// Enabled сообщает, что пакет собран с OpenCV.
const Enabled = true

// GrabCutSegmenter сегментация GrabCut из OpenCV, инициализированная прямоугольником.
type GrabCutSegmenter struct{}

// NewGrabCutSegmenter создаёт сегментатор.
func NewGrabCutSegmenter() *GrabCutSegmenter {
	return &GrabCutSegmenter{}
}

// Segment запускает GrabCut. OpenCV падает на прямоугольнике без пикселей
// фона вокруг, поэтому такая геометрия отклоняется заранее.
func (s *GrabCutSegmenter) Segment(img *entity.Image8, box entity.Box, iterations int) (*entity.Mask, error) {
	if err := box.Validate(img.Rows, img.Cols); err != nil {
		return nil, err
	}
	if box.Area() == img.Rows*img.Cols {
		return nil, errors.New("search box leaves no background samples")
	}

	src, err := gocv.NewMatFromBytes(img.Rows, img.Cols, gocv.MatTypeCV8UC3, img.Pix)
	if err != nil {
		return nil, fmt.Errorf("image to mat: %w", err)
	}
	defer src.Close()

	mask := gocv.NewMatWithSize(img.Rows, img.Cols, gocv.MatTypeCV8U)
	defer mask.Close()
	bgdModel := gocv.NewMat()
	defer bgdModel.Close()
	fgdModel := gocv.NewMat()
	defer fgdModel.Close()

	rect := image.Rect(box.X1, box.Y1, box.X2, box.Y2)
	gocv.GrabCut(src, &mask, rect, &bgdModel, &fgdModel, iterations, gocv.GCInitWithRect)

	labels, err := mask.DataPtrUint8()
	if err != nil {
		return nil, fmt.Errorf("read mask: %w", err)
	}
	out := entity.NewMask(img.Rows, img.Cols)
	for i, l := range labels {
		out.Labels[i] = entity.Label(l)
	}
	return out, nil
}

// GoCVShapes операции над контурами через OpenCV.
type GoCVShapes struct{}

// NewGoCVShapes создаёт анализатор.
func NewGoCVShapes() *GoCVShapes {
	return &GoCVShapes{}
}

// LargestContour возвращает внешний контур наибольшей площади.
func (s *GoCVShapes) LargestContour(mask *entity.BinaryMask) []image.Point {
	mat, err := gocv.NewMatFromBytes(mask.Rows, mask.Cols, gocv.MatTypeCV8UC1, mask.Bytes())
	if err != nil {
		return nil
	}
	defer mat.Close()

	contours := gocv.FindContours(mat, gocv.RetrievalExternal, gocv.ChainApproxNone)
	defer contours.Close()

	best := -1
	bestArea := -1.0
	for i := 0; i < contours.Size(); i++ {
		if area := gocv.ContourArea(contours.At(i)); area > bestArea {
			best, bestArea = i, area
		}
	}
	if best < 0 {
		return nil
	}
	return contours.At(best).ToPoints()
}

// FitEllipse вписывает эллипс функцией OpenCV fitEllipse.
func (s *GoCVShapes) FitEllipse(contour []image.Point) (entity.RotatedEllipse, error) {
	if len(contour) < 5 {
		return entity.RotatedEllipse{}, fmt.Errorf("fit ellipse: %d points, need 5", len(contour))
	}
	pv := gocv.NewPointVectorFromPoints(contour)
	defer pv.Close()

	rr := gocv.FitEllipse(pv)
	return entity.RotatedEllipse{
		CenterX: float64(rr.Center.X),
		CenterY: float64(rr.Center.Y),
		Width:   float64(rr.Width),
		Height:  float64(rr.Height),
		Angle:   rr.Angle,
	}, nil
}

// MinEnclosingCircle минимальная описанная окружность через OpenCV.
func (s *GoCVShapes) MinEnclosingCircle(contour []image.Point) (x, y, radius float64) {
	if len(contour) == 0 {
		return 0, 0, 0
	}
	pv := gocv.NewPointVectorFromPoints(contour)
	defer pv.Close()

	cx, cy, r := gocv.MinEnclosingCircle(pv)
	return float64(cx), float64(cy), float64(r)
}

// Highlighter рисует эллипсы уточнения поверх фото.
type Highlighter struct {
	Thickness int
}

// NewHighlighter создаёт рисовальщик.
func NewHighlighter() *Highlighter {
	return &Highlighter{Thickness: 2}
}

// Highlight приводит фото к размеру карты, рисует эллипс змейки зелёным,
// эллипс графового разреза красным и точку клика синим.
func (h *Highlighter) Highlight(imageData []byte, report *entity.RefinementReport) ([]byte, error) {
	mat, err := decodeToMat(imageData)
	if err != nil {
		return nil, err
	}
	// mat может быть заменён уменьшенной копией ниже.
	defer func() { mat.Close() }()

	if mat.Cols() != report.ImageWidth || mat.Rows() != report.ImageHeight {
		resized := gocv.NewMat()
		gocv.Resize(mat, &resized, image.Pt(report.ImageWidth, report.ImageHeight), 0, 0, gocv.InterpolationArea)
		mat.Close()
		mat = resized
	}

	green := color.RGBA{G: 255, A: 255}
	red := color.RGBA{R: 255, A: 255}
	blue := color.RGBA{B: 255, A: 255}

	h.drawEllipse(&mat, report.Snake.Ellipse, green)
	h.drawEllipse(&mat, report.GraphCut.Ellipse, red)
	gocv.Circle(&mat, image.Pt(int(report.Seed.Col), int(report.Seed.Row)), 2, blue, -1)

	img, err := mat.ToImage()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (h *Highlighter) drawEllipse(mat *gocv.Mat, e entity.Ellipse, c color.RGBA) {
	center := image.Pt(int(math.Round(e.CenterCol)), int(math.Round(e.CenterRow)))
	axes := image.Pt(int(math.Round(e.Major/2)), int(math.Round(e.Minor/2)))
	gocv.Ellipse(mat, center, axes, e.ClockwiseAngle(), 0, 360, c, h.Thickness)
}

// EnergyFilter свёртки поля энергии через OpenCV на 64-битных матрицах.
type EnergyFilter struct{}

// NewEnergyFilter создаёт фильтр.
func NewEnergyFilter() *EnergyFilter {
	return &EnergyFilter{}
}

// Gaussian сглаживает поле ядром радиуса 4 сигмы с повтором краевых значений.
func (f *EnergyFilter) Gaussian(g *entity.Grid, sigma float64) *entity.Grid {
	if sigma <= 0 {
		return g.Clone()
	}
	src := gridToMat(g)
	defer src.Close()
	dst := gocv.NewMat()
	defer dst.Close()

	k := 2*int(4*sigma+0.5) + 1
	gocv.GaussianBlur(src, &dst, image.Pt(k, k), sigma, sigma, gocv.BorderReplicate)
	return matToGrid(dst)
}

// Sobel возвращает sqrt((h^2+v^2)/2) при ядрах 3x3, делённых на 4.
func (f *EnergyFilter) Sobel(g *entity.Grid) *entity.Grid {
	src := gridToMat(g)
	defer src.Close()
	h := gocv.NewMat()
	defer h.Close()
	v := gocv.NewMat()
	defer v.Close()

	gocv.Sobel(src, &h, gocv.MatTypeCV64F, 1, 0, 3, 0.25, 0, gocv.BorderReplicate)
	gocv.Sobel(src, &v, gocv.MatTypeCV64F, 0, 1, 3, 0.25, 0, gocv.BorderReplicate)

	out := entity.NewGrid(g.Rows, g.Cols)
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			dh, dv := h.GetDoubleAt(r, c), v.GetDoubleAt(r, c)
			out.Set(r, c, math.Sqrt((dh*dh+dv*dv)/2))
		}
	}
	return out
}

func gridToMat(g *entity.Grid) gocv.Mat {
	m := gocv.NewMatWithSize(g.Rows, g.Cols, gocv.MatTypeCV64F)
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			m.SetDoubleAt(r, c, g.At(r, c))
		}
	}
	return m
}

func matToGrid(m gocv.Mat) *entity.Grid {
	g := entity.NewGrid(m.Rows(), m.Cols())
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			g.Set(r, c, m.GetDoubleAt(r, c))
		}
	}
	return g
}

// decodeToMat превращает байты изображения в gocv.Mat.
func decodeToMat(imageData []byte) (gocv.Mat, error) {
	mat, err := gocv.IMDecode(imageData, gocv.IMReadColor)
	if err == nil && !mat.Empty() {
		return mat, nil
	}
	if !mat.Empty() {
		mat.Close()
	}
	return gocv.NewMat(), errors.New("failed to decode image")
}

var (
	_ port.Segmenter     = (*GrabCutSegmenter)(nil)
	_ port.ShapeAnalyzer = (*GoCVShapes)(nil)
	_ port.Highlighter   = (*Highlighter)(nil)
	_ port.EnergyFilter  = (*EnergyFilter)(nil)
)
