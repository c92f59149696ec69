package ocr

import (
	"image"
	"testing"
)

func grayFill(w, h int, v uint8) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for i := range g.Pix {
		g.Pix[i] = v
	}
	return g
}

// TestGrayscale tests conversion from color
func TestGrayscale(t *testing.T) {
	g := Grayscale(white(4, 3))
	if g.Bounds() != image.Rect(0, 0, 4, 3) {
		t.Fatalf("expected 4x3, got %v", g.Bounds())
	}
	for i, v := range g.Pix {
		if v != 255 {
			t.Fatalf("expected 255 at %d, got %d", i, v)
		}
	}
}

// TestBlur tests that a flat image is unchanged
func TestBlur(t *testing.T) {
	out := Blur(grayFill(6, 6, 100))
	for i, v := range out.Pix {
		if v != 100 {
			t.Fatalf("expected 100 at %d, got %d", i, v)
		}
	}
}

// TestAdaptiveThreshold tests dark ink on a light background
func TestAdaptiveThreshold(t *testing.T) {
	flat := AdaptiveThreshold(grayFill(20, 20, 120), DefaultThresholdBlock, DefaultThresholdOffset)
	for i, v := range flat.Pix {
		if v != 255 {
			t.Fatalf("expected flat image to go white at %d, got %d", i, v)
		}
	}

	g := grayFill(20, 20, 255)
	g.Pix[10*g.Stride+10] = 0
	out := AdaptiveThreshold(g, DefaultThresholdBlock, DefaultThresholdOffset)
	if out.GrayAt(10, 10).Y != 0 {
		t.Errorf("expected dot to stay black, got %d", out.GrayAt(10, 10).Y)
	}
	if out.GrayAt(11, 10).Y != 255 {
		t.Errorf("expected neighbour to be white, got %d", out.GrayAt(11, 10).Y)
	}

	if empty := AdaptiveThreshold(image.NewGray(image.Rectangle{}), 11, 2); !empty.Bounds().Empty() {
		t.Errorf("expected empty result, got %v", empty.Bounds())
	}
}

// TestPreprocess tests the full chain on a small black block
func TestPreprocess(t *testing.T) {
	img := white(30, 30)
	for y := 10; y < 13; y++ {
		for x := 10; x < 13; x++ {
			i := img.PixOffset(x, y)
			img.Pix[i], img.Pix[i+1], img.Pix[i+2] = 0, 0, 0
		}
	}
	out := Preprocess(img)
	if out.GrayAt(11, 11).Y != 0 {
		t.Errorf("expected block centre black, got %d", out.GrayAt(11, 11).Y)
	}
	if out.GrayAt(25, 25).Y != 255 {
		t.Errorf("expected background white, got %d", out.GrayAt(25, 25).Y)
	}
}
