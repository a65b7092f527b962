package geometry

import (
	"image"

	"defect-refiner/internal/domain/entity"
)

// moore соседи пикселя по часовой стрелке на экране (ось Y вниз), начиная с востока.
var moore = [8]image.Point{
	{X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: -1, Y: 1},
	{X: -1, Y: 0}, {X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
}

const west = 4

// ExternalContours возвращает внешние контуры всех 8-связных компонент маски.
// Каждый контур содержит все граничные пиксели в порядке обхода.
func ExternalContours(mask *entity.BinaryMask) [][]image.Point {
	visited := make([]bool, len(mask.Data))
	var contours [][]image.Point

	for y := 0; y < mask.Rows; y++ {
		for x := 0; x < mask.Cols; x++ {
			if !mask.At(y, x) || visited[y*mask.Cols+x] {
				continue
			}
			// Первый встреченный пиксель компоненты самый верхний-левый.
			size := markComponent(mask, visited, image.Pt(x, y))
			contours = append(contours, traceBoundary(mask, image.Pt(x, y), size))
		}
	}
	return contours
}

// markComponent помечает 8-связную компоненту и возвращает её размер.
func markComponent(mask *entity.BinaryMask, visited []bool, start image.Point) int {
	stack := []image.Point{start}
	visited[start.Y*mask.Cols+start.X] = true
	size := 0
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		size++
		for _, d := range moore {
			q := p.Add(d)
			if !mask.At(q.Y, q.X) || visited[q.Y*mask.Cols+q.X] {
				continue
			}
			visited[q.Y*mask.Cols+q.X] = true
			stack = append(stack, q)
		}
	}
	return size
}

// traceBoundary обходит границу компоненты методом соседей Мура.
// start должен быть самым верхним-левым пикселем компоненты.
func traceBoundary(mask *entity.BinaryMask, start image.Point, size int) []image.Point {
	inside := func(p image.Point) bool { return mask.At(p.Y, p.X) }

	contour := []image.Point{start}
	cur := start
	back := west
	limit := 4*size + 8

	for step := 0; step < limit; step++ {
		next, nextBack, ok := nextBoundary(inside, cur, back)
		if !ok {
			// Одиночный пиксель.
			return contour
		}
		if cur == start && len(contour) > 1 && next == contour[1] {
			break
		}
		contour = append(contour, next)
		cur, back = next, nextBack
	}

	if n := len(contour); n > 1 && contour[n-1] == start {
		contour = contour[:n-1]
	}
	return contour
}

// nextBoundary ищет следующий пиксель границы, перебирая соседей по часовой
// стрелке начиная после направления back. Возвращает также направление от
// найденного пикселя на последнего проверенного соседа фона.
func nextBoundary(inside func(image.Point) bool, cur image.Point, back int) (image.Point, int, bool) {
	for i := 1; i <= 8; i++ {
		d := (back + i) % 8
		next := cur.Add(moore[d])
		if !inside(next) {
			continue
		}
		prev := cur.Add(moore[(d+7)%8])
		return next, direction(prev.Sub(next)), true
	}
	return cur, back, false
}

func direction(d image.Point) int {
	for i, m := range moore {
		if m == d {
			return i
		}
	}
	return west
}

// ContourArea площадь многоугольника контура по формуле шнурования.
func ContourArea(contour []image.Point) float64 {
	n := len(contour)
	if n < 3 {
		return 0
	}
	var sum int
	for i := 0; i < n; i++ {
		p, q := contour[i], contour[(i+1)%n]
		sum += p.X*q.Y - q.X*p.Y
	}
	if sum < 0 {
		sum = -sum
	}
	return float64(sum) / 2
}

// LargestContour возвращает внешний контур с наибольшей площадью. При
// равных площадях побеждает первый найденный.
func LargestContour(mask *entity.BinaryMask) []image.Point {
	var best []image.Point
	bestArea := -1.0
	for _, c := range ExternalContours(mask) {
		if area := ContourArea(c); area > bestArea {
			best, bestArea = c, area
		}
	}
	return best
}
