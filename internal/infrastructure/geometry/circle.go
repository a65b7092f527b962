package geometry

import (
	"image"
	"math"
)

type circle struct {
	x, y, r float64
}

func (c circle) contains(x, y float64) bool {
	return math.Hypot(x-c.x, y-c.y) <= c.r*(1+1e-12)+1e-9
}

// MinEnclosingCircle возвращает минимальную окружность, содержащую все точки.
// Для пустого набора возвращает нулевую окружность.
func MinEnclosingCircle(points []image.Point) (x, y, radius float64) {
	if len(points) == 0 {
		return 0, 0, 0
	}
	px := make([]float64, len(points))
	py := make([]float64, len(points))
	for i, p := range points {
		px[i], py[i] = float64(p.X), float64(p.Y)
	}

	c := circle{x: px[0], y: py[0]}
	for i := 1; i < len(points); i++ {
		if c.contains(px[i], py[i]) {
			continue
		}
		c = circle{x: px[i], y: py[i]}
		for j := 0; j < i; j++ {
			if c.contains(px[j], py[j]) {
				continue
			}
			c = diameterCircle(px[i], py[i], px[j], py[j])
			for k := 0; k < j; k++ {
				if c.contains(px[k], py[k]) {
					continue
				}
				c = circumcircle(px[i], py[i], px[j], py[j], px[k], py[k])
			}
		}
	}
	return c.x, c.y, c.r
}

func diameterCircle(ax, ay, bx, by float64) circle {
	return circle{
		x: (ax + bx) / 2,
		y: (ay + by) / 2,
		r: math.Hypot(ax-bx, ay-by) / 2,
	}
}

// circumcircle описанная окружность треугольника; для вырожденного
// треугольника берётся окружность на самой длинной стороне.
func circumcircle(ax, ay, bx, by, cx, cy float64) circle {
	d := 2 * (ax*(by-cy) + bx*(cy-ay) + cx*(ay-by))
	if math.Abs(d) < 1e-12 {
		best := diameterCircle(ax, ay, bx, by)
		for _, cand := range []circle{diameterCircle(ax, ay, cx, cy), diameterCircle(bx, by, cx, cy)} {
			if cand.r > best.r {
				best = cand
			}
		}
		return best
	}
	a2 := ax*ax + ay*ay
	b2 := bx*bx + by*by
	c2 := cx*cx + cy*cy
	ux := (a2*(by-cy) + b2*(cy-ay) + c2*(ay-by)) / d
	uy := (a2*(cx-bx) + b2*(ax-cx) + c2*(bx-ax)) / d
	return circle{x: ux, y: uy, r: math.Hypot(ax-ux, ay-uy)}
}
