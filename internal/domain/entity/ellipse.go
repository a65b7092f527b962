package entity

import (
	"errors"
	"fmt"
	"math"
)

// FallbackAxis диаметр осей эллипса по умолчанию.
const FallbackAxis = 10.0

// AngleConvention задаёт смысл угла поворота эллипса.
type AngleConvention int

const (
	// AngleSnake: угол большой оси в системе (строка, столбец), отсчитанный
	// от оси строк к оси столбцов, в градусах и с обратным знаком.
	AngleSnake AngleConvention = iota
	// AngleClockwise: угол большой оси по часовой стрелке от оси столбцов
	// (оси X изображения), в градусах.
	AngleClockwise
)

func (c AngleConvention) String() string {
	switch c {
	case AngleSnake:
		return "snake"
	case AngleClockwise:
		return "clockwise"
	default:
		return fmt.Sprintf("AngleConvention(%d)", int(c))
	}
}

// Ellipse итоговые параметры эллипса дефекта. Оси заданы диаметрами,
// Major >= Minor >= 0.
type Ellipse struct {
	CenterRow  float64
	CenterCol  float64
	Major      float64
	Minor      float64
	Angle      float64         // градусы, смысл задаёт Convention
	Convention AngleConvention // какой алгоритм дал угол
}

// NewEllipse собирает эллипс, упорядочивая оси так, чтобы большая шла первой.
func NewEllipse(center Point, a, b, angle float64, conv AngleConvention) Ellipse {
	major, minor := math.Max(a, b), math.Min(a, b)
	return Ellipse{
		CenterRow:  center.Row,
		CenterCol:  center.Col,
		Major:      math.Max(major, 0),
		Minor:      math.Max(minor, 0),
		Angle:      angle,
		Convention: conv,
	}
}

// FallbackEllipse эллипс по умолчанию: круг диаметра 10 в точке клика.
func FallbackEllipse(seed Point, conv AngleConvention) Ellipse {
	return NewEllipse(seed, FallbackAxis, FallbackAxis, 0, conv)
}

// Center возвращает центр эллипса.
func (e Ellipse) Center() Point {
	return Point{Row: e.CenterRow, Col: e.CenterCol}
}

// ClockwiseAngle приводит угол к единой внешней конвенции: градусы по часовой
// стрелке от оси столбцов, в диапазоне [0, 180). Для змейки это угол + 90.
func (e Ellipse) ClockwiseAngle() float64 {
	a := e.Angle
	if e.Convention == AngleSnake {
		a += 90
	}
	return NormalizeDegrees(a)
}

// NormalizeDegrees приводит угол оси эллипса к диапазону [0, 180).
func NormalizeDegrees(a float64) float64 {
	a = math.Mod(a, 180)
	if a < 0 {
		a += 180
	}
	if a >= 180 {
		a -= 180
	}
	return a
}

func (e Ellipse) String() string {
	return fmt.Sprintf("center=(%.2f, %.2f) axes=%.2fx%.2f angle=%.2f° (%s)",
		e.CenterRow, e.CenterCol, e.Major, e.Minor, e.Angle, e.Convention)
}

// Conic геометрические параметры эллипса, восстановленные по коническому
// сечению в координатах (u, v). Theta угол большой полуоси от оси u к оси v.
type Conic struct {
	CenterU   float64
	CenterV   float64
	SemiMajor float64
	SemiMinor float64
	Theta     float64 // радианы, (-pi/2, pi/2]
}

// RotatedEllipse эллипс в конвенции OpenCV: центр в (X, Y), полные длины осей,
// угол по часовой стрелке в градусах для оси Width.
type RotatedEllipse struct {
	CenterX float64
	CenterY float64
	Width   float64
	Height  float64
	Angle   float64
}

// FitStatus показывает, каким путём получен результат уточнения.
type FitStatus int

const (
	StatusOK                  FitStatus = iota // Эллипс вписан штатно
	StatusFitCollapse                          // Не удалось вписать эллипс в контур змейки
	StatusSegmentationFailure                  // Ошибка сегментации
	StatusEmptyForeground                      // Сегментация не нашла объект
	StatusSparseContour                        // Контур слишком короткий, использована описанная окружность
)

func (s FitStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusFitCollapse:
		return "fit_collapse"
	case StatusSegmentationFailure:
		return "segmentation_failure"
	case StatusEmptyForeground:
		return "empty_foreground"
	case StatusSparseContour:
		return "sparse_contour"
	default:
		return fmt.Sprintf("FitStatus(%d)", int(s))
	}
}

var (
	ErrFitCollapse         = errors.New("ellipse fit collapsed")
	ErrSegmentationFailure = errors.New("segmentation failed")
	ErrEmptyForeground     = errors.New("segmentation produced no foreground")
)

// Refinement результат уточнения: эллипс всегда заполнен, Status и Err
// описывают, был ли использован запасной вариант.
type Refinement struct {
	Ellipse Ellipse
	Status  FitStatus
	Err     error // причина отказа, nil для штатного пути
}

// Degraded сообщает, что результат получен не штатным вписыванием эллипса.
func (r Refinement) Degraded() bool {
	return r.Status != StatusOK
}

// Strict возвращает эллипс только если он получен из геометрии. Для
// эллипса по умолчанию возвращается типизированная ошибка.
func (r Refinement) Strict() (Ellipse, error) {
	var sentinel error
	switch r.Status {
	case StatusOK, StatusSparseContour:
		return r.Ellipse, nil
	case StatusFitCollapse:
		sentinel = ErrFitCollapse
	case StatusSegmentationFailure:
		sentinel = ErrSegmentationFailure
	case StatusEmptyForeground:
		sentinel = ErrEmptyForeground
	default:
		return r.Ellipse, fmt.Errorf("unknown refinement status %v", r.Status)
	}
	if r.Err != nil {
		return r.Ellipse, fmt.Errorf("%w: %v", sentinel, r.Err)
	}
	return r.Ellipse, sentinel
}
