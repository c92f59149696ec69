package reader

import (
	"image"
	"image/color"
	"testing"

	"github.com/ledongthuc/pdf"
)

// TestRawSamples_Gray tests every supported grey bit depth
func TestRawSamples_Gray(t *testing.T) {
	tests := []struct {
		name string
		bpc  int
		data []byte
		want []uint8
	}{
		{"8 bit", 8, []byte{0, 128, 64, 255}, []uint8{0, 128, 64, 255}},
		{"4 bit", 4, []byte{0x0F, 0x80}, []uint8{0, 255, 136, 0}},
		{"2 bit", 2, []byte{0x1B, 0x00}, []uint8{0, 85, 0, 0}},
		{"1 bit", 1, []byte{0x80, 0x40}, []uint8{255, 0, 0, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := rawSamples{Width: 2, Height: 2, Components: 1, BitsPerComponent: tt.bpc, Data: tt.data}
			img, err := s.Image()
			if err != nil {
				t.Fatalf("Image failed: %v", err)
			}
			g, ok := img.(*image.Gray)
			if !ok {
				t.Fatalf("expected *image.Gray, got %T", img)
			}
			got := []uint8{g.GrayAt(0, 0).Y, g.GrayAt(1, 0).Y, g.GrayAt(0, 1).Y, g.GrayAt(1, 1).Y}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("pixel %d: expected %d, got %d", i, tt.want[i], got[i])
				}
			}
		})
	}
}

// TestRawSamples_RGB tests 8 bit RGB data
func TestRawSamples_RGB(t *testing.T) {
	s := rawSamples{Width: 2, Height: 1, Components: 3, BitsPerComponent: 8,
		Data: []byte{255, 0, 0, 0, 0, 255}}

	img, err := s.Image()
	if err != nil {
		t.Fatalf("Image failed: %v", err)
	}
	if got := img.At(0, 0); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("expected red, got %v", got)
	}
	if got := img.At(1, 0); got != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("expected blue, got %v", got)
	}
}

// TestRawSamples_CMYK tests conversion of CMYK to RGB
func TestRawSamples_CMYK(t *testing.T) {
	s := rawSamples{Width: 2, Height: 1, Components: 4, BitsPerComponent: 8,
		Data: []byte{0, 0, 0, 0, 0, 0, 0, 255}}

	img, err := s.Image()
	if err != nil {
		t.Fatalf("Image failed: %v", err)
	}
	if got := img.At(0, 0); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("expected white, got %v", got)
	}
	if got := img.At(1, 0); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("expected black, got %v", got)
	}
}

// TestRawSamples_Errors tests rejection of bad sample data
func TestRawSamples_Errors(t *testing.T) {
	tests := []struct {
		name string
		s    rawSamples
	}{
		{"zero size", rawSamples{Width: 0, Height: 2, Components: 1, BitsPerComponent: 8}},
		{"short gray", rawSamples{Width: 2, Height: 2, Components: 1, BitsPerComponent: 8, Data: []byte{1, 2, 3}}},
		{"short rgb", rawSamples{Width: 2, Height: 1, Components: 3, BitsPerComponent: 8, Data: []byte{1, 2, 3}}},
		{"16 bit", rawSamples{Width: 1, Height: 1, Components: 1, BitsPerComponent: 16, Data: []byte{1, 2}}},
		{"4 bit rgb", rawSamples{Width: 1, Height: 1, Components: 3, BitsPerComponent: 4, Data: []byte{1, 2}}},
		{"two channels", rawSamples{Width: 1, Height: 1, Components: 2, BitsPerComponent: 8, Data: []byte{1, 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.s.Image(); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

// TestColorComponents_Default tests that a missing colour space means grey
func TestColorComponents_Default(t *testing.T) {
	n, err := colorComponents(pdf.Value{})
	if err != nil {
		t.Fatalf("colorComponents failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 component, got %d", n)
	}
}
