package vision

import (
	"image"
	"math"
)

// sobelKernels возвращает ядро первой производной и сглаживающее ядро
// заданного нечётного размера (коэффициенты как у cv::getDerivKernels).
func sobelKernels(ksize int) (deriv, smooth []float64) {
	if ksize <= 1 {
		return []float64{-1, 0, 1}, []float64{1}
	}
	smooth = binomial(ksize)
	base := binomial(ksize - 1)
	deriv = make([]float64, ksize)
	deriv[0] = -base[0]
	for j := 1; j < len(base); j++ {
		deriv[j] = base[j-1] - base[j]
	}
	deriv[ksize-1] = base[len(base)-1]
	return deriv, smooth
}

// binomial строка треугольника Паскаля длины n.
func binomial(n int) []float64 {
	row := make([]float64, n)
	row[0] = 1
	for i := 1; i < n; i++ {
		for j := i; j > 0; j-- {
			row[j] += row[j-1]
		}
	}
	return row
}

// reflect101 отражение индекса без повтора крайнего пикселя (gfedcb|abcdefgh|gfedcba).
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*n - 2 - i
		}
	}
	return i
}

// correlate применяет разделимое ядро: kx по строкам, ky по столбцам.
func correlate(src []float64, w, h int, kx, ky []float64) []float64 {
	tmp := make([]float64, w*h)
	rx := len(kx) / 2
	for y := 0; y < h; y++ {
		row := src[y*w : (y+1)*w]
		for x := 0; x < w; x++ {
			var acc float64
			for k, c := range kx {
				if c == 0 {
					continue
				}
				acc += c * row[reflect101(x+k-rx, w)]
			}
			tmp[y*w+x] = acc
		}
	}

	out := make([]float64, w*h)
	ry := len(ky) / 2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc float64
			for k, c := range ky {
				if c == 0 {
					continue
				}
				acc += c * tmp[reflect101(y+k-ry, h)*w+x]
			}
			out[y*w+x] = acc
		}
	}
	return out
}

// GradientMagnitude считает sqrt(gx²+gy²) оператором Собеля и обрезает результат до 0..255.
func GradientMagnitude(gray *image.Gray, ksize int) *image.Gray {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return out
	}

	src := make([]float64, w*h)
	for y := 0; y < h; y++ {
		off := gray.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < w; x++ {
			src[y*w+x] = float64(gray.Pix[off+x])
		}
	}

	deriv, smooth := sobelKernels(ksize)
	gx := correlate(src, w, h, deriv, smooth)
	gy := correlate(src, w, h, smooth, deriv)

	for i := range src {
		out.Pix[(i/w)*out.Stride+i%w] = clipUint8(math.Sqrt(gx[i]*gx[i] + gy[i]*gy[i]))
	}
	return out
}

// clipUint8 обрезает до 0..255 и отбрасывает дробную часть (50.6 → 50).
func clipUint8(v float64) uint8 {
	switch {
	case v >= 255:
		return 255
	case v <= 0 || math.IsNaN(v):
		return 0
	}
	return uint8(v)
}

// Binarize строит маску: 255 там, где значение строго больше порога.
func Binarize(src *image.Gray, threshold int) *image.Gray {
	b := src.Bounds()
	mask := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		off := src.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < b.Dx(); x++ {
			if int(src.Pix[off+x]) > threshold {
				mask.Pix[y*mask.Stride+x] = 255
			}
		}
	}
	return mask
}
