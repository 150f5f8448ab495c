package vision

import "image"

// Contour внешняя граница связной области маски.
type Contour struct {
	Points []image.Point
	Bounds image.Rectangle
}

// Area площадь многоугольника по формуле Гаусса (как cv::contourArea).
// Для точки и отрезка площадь равна нулю.
func (c Contour) Area() float64 {
	n := len(c.Points)
	if n < 3 {
		return 0
	}
	var sum int
	for i := 0; i < n; i++ {
		p, q := c.Points[i], c.Points[(i+1)%n]
		sum += p.X*q.Y - q.X*p.Y
	}
	if sum < 0 {
		sum = -sum
	}
	return float64(sum) / 2
}

// соседи против часовой стрелки на экране (ось Y вниз), начиная с востока
var ring8 = [8]image.Point{
	{1, 0}, {1, -1}, {0, -1}, {-1, -1}, {-1, 0}, {-1, 1}, {0, 1}, {1, 1},
}

var ring4 = [4]image.Point{{1, 0}, {0, -1}, {-1, 0}, {0, 1}}

// FindExternalContours ищет внешние границы 8-связных областей маски.
// Области, лежащие внутри дыр других областей, не возвращаются.
// Порядок задаёт первый пиксель области в построчном обходе.
func FindExternalContours(mask *image.Gray) []Contour {
	b := mask.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	fg := func(x, y int) bool {
		if x < 0 || y < 0 || x >= w || y >= h {
			return false
		}
		return mask.Pix[mask.PixOffset(b.Min.X+x, b.Min.Y+y)] != 0
	}

	outside := floodOutside(fg, w, h)

	labels := make([]int32, w*h)
	var contours []Contour
	var next int32
	queue := make([]image.Point, 0, 64)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !fg(x, y) || labels[y*w+x] != 0 {
				continue
			}
			next++
			external := false
			queue = append(queue[:0], image.Pt(x, y))
			labels[y*w+x] = next
			for len(queue) > 0 {
				p := queue[len(queue)-1]
				queue = queue[:len(queue)-1]
				if !external && touchesOutside(p, outside, w, h) {
					external = true
				}
				for _, d := range ring8 {
					q := p.Add(d)
					if fg(q.X, q.Y) && labels[q.Y*w+q.X] == 0 {
						labels[q.Y*w+q.X] = next
						queue = append(queue, q)
					}
				}
			}
			if !external {
				continue
			}
			pts := traceOuter(fg, image.Pt(x, y), w*h)
			contours = append(contours, Contour{Points: pts, Bounds: pointsBounds(pts)})
		}
	}
	return contours
}

// floodOutside помечает фон, 4-связно достижимый от края изображения.
func floodOutside(fg func(x, y int) bool, w, h int) []bool {
	outside := make([]bool, w*h)
	var stack []image.Point
	push := func(x, y int) {
		if x < 0 || y < 0 || x >= w || y >= h || outside[y*w+x] || fg(x, y) {
			return
		}
		outside[y*w+x] = true
		stack = append(stack, image.Pt(x, y))
	}
	for x := 0; x < w; x++ {
		push(x, 0)
		push(x, h-1)
	}
	for y := 0; y < h; y++ {
		push(0, y)
		push(w-1, y)
	}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, d := range ring4 {
			push(p.X+d.X, p.Y+d.Y)
		}
	}
	return outside
}

func touchesOutside(p image.Point, outside []bool, w, h int) bool {
	for _, d := range ring4 {
		q := p.Add(d)
		if q.X < 0 || q.Y < 0 || q.X >= w || q.Y >= h {
			return true
		}
		if outside[q.Y*w+q.X] {
			return true
		}
	}
	return false
}

// traceOuter обход внешней границы по Suzuki–Abe начиная с верхнего левого пикселя области.
func traceOuter(fg func(x, y int) bool, start image.Point, limit int) []image.Point {
	first := -1
	for k := 0; k < 8; k++ {
		d := (4 - k + 8) % 8
		q := start.Add(ring8[d])
		if fg(q.X, q.Y) {
			first = d
			break
		}
	}
	if first < 0 {
		return []image.Point{start}
	}

	last := start.Add(ring8[first])
	cur, back := start, first
	pts := make([]image.Point, 0, 16)
	for len(pts) <= 4*limit+8 {
		pts = append(pts, cur)
		var nxt image.Point
		dir := back
		for k := 1; k <= 8; k++ {
			d := (back + k) % 8
			q := cur.Add(ring8[d])
			if fg(q.X, q.Y) {
				nxt, dir = q, d
				break
			}
		}
		if nxt == start && cur == last {
			break
		}
		back = (dir + 4) % 8
		cur = nxt
	}
	return pts
}

func pointsBounds(pts []image.Point) image.Rectangle {
	r := image.Rectangle{Min: pts[0], Max: pts[0].Add(image.Pt(1, 1))}
	for _, p := range pts[1:] {
		r = r.Union(image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))})
	}
	return r
}
