// Package geometry вписывает эллипсы и окружности в наборы точек и
// извлекает контуры из бинарных масок.
package geometry

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"defect-refiner/internal/domain/entity"
	"defect-refiner/internal/domain/port"
)

// MinEllipsePoints минимальное число точек, задающих эллипс.
const MinEllipsePoints = 5

// ErrDegenerate точки не задают эллипс (совпадают, лежат на прямой и т.п.).
var ErrDegenerate = errors.New("degenerate point set")

// ConicFitter вписывает эллипс прямым методом наименьших квадратов
// (Halir–Flusser): минимизирует невязку общего уравнения коники при
// ограничении 4AC - B^2 = 1.
type ConicFitter struct{}

// NewConicFitter создаёт вписыватель.
func NewConicFitter() *ConicFitter {
	return &ConicFitter{}
}

// FitConic вписывает эллипс в точки контура в координатах (строка, столбец).
func (f *ConicFitter) FitConic(points []entity.Point) (entity.Conic, error) {
	us := make([]float64, len(points))
	vs := make([]float64, len(points))
	for i, p := range points {
		us[i], vs[i] = p.Row, p.Col
	}
	return FitConic(us, vs)
}

// FitConic вписывает эллипс в точки (u, v). Theta результата отсчитывается
// от оси u к оси v и относится к большой полуоси.
func FitConic(us, vs []float64) (entity.Conic, error) {
	n := len(us)
	if n != len(vs) {
		return entity.Conic{}, fmt.Errorf("mismatched coordinates: %d vs %d", n, len(vs))
	}
	if n < MinEllipsePoints {
		return entity.Conic{}, fmt.Errorf("%w: %d points, need %d", ErrDegenerate, n, MinEllipsePoints)
	}

	// Центрируем и масштабируем точки для устойчивости.
	mu, mv := floats.Sum(us)/float64(n), floats.Sum(vs)/float64(n)
	su := make([]float64, n)
	sv := make([]float64, n)
	copy(su, us)
	copy(sv, vs)
	floats.AddConst(-mu, su)
	floats.AddConst(-mv, sv)
	scale := math.Max(floats.Norm(su, math.Inf(1)), floats.Norm(sv, math.Inf(1)))
	if scale == 0 || math.IsNaN(scale) {
		return entity.Conic{}, fmt.Errorf("%w: all points coincide", ErrDegenerate)
	}
	floats.Scale(1/scale, su)
	floats.Scale(1/scale, sv)
	if collinear(su, sv) {
		return entity.Conic{}, fmt.Errorf("%w: points are collinear", ErrDegenerate)
	}

	coef, err := directFit(su, sv)
	if err != nil {
		return entity.Conic{}, err
	}

	c, err := conicToEllipse(coef)
	if err != nil {
		return entity.Conic{}, err
	}
	c.CenterU = c.CenterU*scale + mu
	c.CenterV = c.CenterV*scale + mv
	c.SemiMajor *= scale
	c.SemiMinor *= scale
	return c, nil
}

// directFit возвращает коэффициенты A..F уравнения
// A u^2 + B uv + C v^2 + D u + E v + F = 0.
func directFit(us, vs []float64) ([6]float64, error) {
	n := len(us)
	d1 := mat.NewDense(n, 3, nil)
	d2 := mat.NewDense(n, 3, nil)
	for i := 0; i < n; i++ {
		u, v := us[i], vs[i]
		d1.SetRow(i, []float64{u * u, u * v, v * v})
		d2.SetRow(i, []float64{u, v, 1})
	}

	var s1, s2, s3 mat.Dense
	s1.Mul(d1.T(), d1)
	s2.Mul(d1.T(), d2)
	s3.Mul(d2.T(), d2)

	var s3inv mat.Dense
	if err := s3inv.Inverse(&s3); err != nil {
		return [6]float64{}, fmt.Errorf("%w: %v", ErrDegenerate, err)
	}

	// T = -S3^-1 S2^T, M = S1 + S2 T.
	var t mat.Dense
	t.Mul(&s3inv, s2.T())
	t.Scale(-1, &t)

	var m mat.Dense
	m.Mul(&s2, &t)
	m.Add(&s1, &m)

	// Умножение на обратную матрицу ограничения C1.
	reduced := mat.NewDense(3, 3, nil)
	for j := 0; j < 3; j++ {
		reduced.Set(0, j, m.At(2, j)/2)
		reduced.Set(1, j, -m.At(1, j))
		reduced.Set(2, j, m.At(0, j)/2)
	}

	var eig mat.Eigen
	if ok := eig.Factorize(reduced, mat.EigenRight); !ok {
		return [6]float64{}, fmt.Errorf("%w: eigen decomposition failed", ErrDegenerate)
	}
	var vecs mat.CDense
	eig.VectorsTo(&vecs)

	best := -1
	bestCond := 0.0
	for k := 0; k < 3; k++ {
		a, b, c := vecs.At(0, k), vecs.At(1, k), vecs.At(2, k)
		if !isReal(a) || !isReal(b) || !isReal(c) {
			continue
		}
		cond := 4*real(a)*real(c) - real(b)*real(b)
		if cond > 0 && (best < 0 || cond > bestCond) {
			best, bestCond = k, cond
		}
	}
	if best < 0 {
		return [6]float64{}, fmt.Errorf("%w: no elliptic solution", ErrDegenerate)
	}

	a1 := mat.NewVecDense(3, []float64{
		real(vecs.At(0, best)),
		real(vecs.At(1, best)),
		real(vecs.At(2, best)),
	})
	var a2 mat.VecDense
	a2.MulVec(&t, a1)

	return [6]float64{
		a1.AtVec(0), a1.AtVec(1), a1.AtVec(2),
		a2.AtVec(0), a2.AtVec(1), a2.AtVec(2),
	}, nil
}

// collinear проверяет разброс центрированных точек: у прямой одно из
// собственных чисел ковариации нулевое.
func collinear(us, vs []float64) bool {
	suu, svv, suv := floats.Dot(us, us), floats.Dot(vs, vs), floats.Dot(us, vs)
	mean := (suu + svv) / 2
	radius := math.Hypot((suu-svv)/2, suv)
	return mean-radius <= 1e-10*(mean+radius)
}

func isReal(z complex128) bool {
	return math.Abs(imag(z)) <= 1e-9*math.Max(1, cmplx.Abs(z))
}

// conicToEllipse переводит коэффициенты коники в центр, полуоси и угол.
func conicToEllipse(coef [6]float64) (entity.Conic, error) {
	a, b, c, d, e, f := coef[0], coef[1]/2, coef[2], coef[3]/2, coef[4]/2, coef[5]
	// Собственный вектор возвращается с произвольным знаком; приводим форму
	// к положительно определённой, иначе оси меняются местами.
	if a+c < 0 {
		a, b, c, d, e, f = -a, -b, -c, -d, -e, -f
	}

	det := a*c - b*b
	if det <= 0 {
		return entity.Conic{}, fmt.Errorf("%w: conic is not an ellipse", ErrDegenerate)
	}
	u0 := (b*e - c*d) / det
	v0 := (b*d - a*e) / det
	f0 := f + d*u0 + e*v0

	// Собственные числа квадратичной формы [[a b] [b c]].
	mean := (a + c) / 2
	radius := math.Hypot((a-c)/2, b)
	lmax, lmin := mean+radius, mean-radius
	if lmin <= 0 || f0 >= 0 {
		return entity.Conic{}, fmt.Errorf("%w: imaginary ellipse", ErrDegenerate)
	}

	semiMajor := math.Sqrt(-f0 / lmin)
	semiMinor := math.Sqrt(-f0 / lmax)
	if math.IsNaN(semiMajor) || math.IsInf(semiMajor, 0) {
		return entity.Conic{}, fmt.Errorf("%w: unbounded axes", ErrDegenerate)
	}

	// Собственный вектор lmax задаёт малую ось, большая перпендикулярна ей.
	theta := 0.5*math.Atan2(2*b, a-c) + math.Pi/2
	if radius <= 1e-12*mean {
		theta = 0
	}

	return entity.Conic{
		CenterU:   u0,
		CenterV:   v0,
		SemiMajor: semiMajor,
		SemiMinor: semiMinor,
		Theta:     wrapHalfPi(theta),
	}, nil
}

// wrapHalfPi приводит угол оси к (-pi/2, pi/2].
func wrapHalfPi(t float64) float64 {
	for t > math.Pi/2 {
		t -= math.Pi
	}
	for t <= -math.Pi/2 {
		t += math.Pi
	}
	return t
}

var _ port.ConicFitter = (*ConicFitter)(nil)
