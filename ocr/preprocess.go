package ocr

import (
	"image"
	"image/color"
)

// Preprocessing defaults
const (
	DefaultThresholdBlock  = 11
	DefaultThresholdOffset = 2
)

// Grayscale converts img to an 8-bit gray image starting at the origin
func Grayscale(img image.Image) *image.Gray {
	b := img.Bounds()
	if g, ok := img.(*image.Gray); ok && b.Min == (image.Point{}) {
		return g
	}
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			gray.Set(x, y, color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)))
		}
	}
	return gray
}

// Blur applies a 3x3 Gaussian blur, repeating edge pixels
func Blur(src *image.Gray) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	weights := [3]int{1, 2, 1}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					sx, sy := clamp(x+dx, 0, w-1), clamp(y+dy, 0, h-1)
					sum += int(src.Pix[sy*src.Stride+sx]) * weights[dx+1] * weights[dy+1]
				}
			}
			dst.Pix[y*dst.Stride+x] = uint8((sum + 8) / 16)
		}
	}
	return dst
}

// AdaptiveThreshold turns src black and white by comparing each pixel to
// the mean of the block around it: pixels brighter than the mean less
// offset become white.
func AdaptiveThreshold(src *image.Gray, block, offset int) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return dst
	}

	// summed-area table with a zero row and column
	sum := make([]int, (w+1)*(h+1))
	for y := 0; y < h; y++ {
		row := 0
		for x := 0; x < w; x++ {
			row += int(src.Pix[y*src.Stride+x])
			sum[(y+1)*(w+1)+x+1] = sum[y*(w+1)+x+1] + row
		}
	}

	r := block / 2
	for y := 0; y < h; y++ {
		y0, y1 := clamp(y-r, 0, h-1), clamp(y+r, 0, h-1)+1
		for x := 0; x < w; x++ {
			x0, x1 := clamp(x-r, 0, w-1), clamp(x+r, 0, w-1)+1
			total := sum[y1*(w+1)+x1] - sum[y0*(w+1)+x1] - sum[y1*(w+1)+x0] + sum[y0*(w+1)+x0]
			mean := total / ((x1 - x0) * (y1 - y0))
			if int(src.Pix[y*src.Stride+x]) > mean-offset {
				dst.Pix[y*dst.Stride+x] = 255
			}
		}
	}
	return dst
}

// Preprocess prepares a page image for recognition: gray, lightly
// blurred, then thresholded against its neighbourhood
func Preprocess(img image.Image) *image.Gray {
	return AdaptiveThreshold(Blur(Grayscale(img)), DefaultThresholdBlock, DefaultThresholdOffset)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
