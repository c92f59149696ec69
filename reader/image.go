package reader

import (
	"bytes"
	"context"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	pdfcpumodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/tsawler/pagecrop/internal/diag"
)

// imageSource decodes image XObjects through pdfcpu, which understands
// every PDF image filter. It is built once per document and caches the
// pixels of each page it has visited.
type imageSource struct {
	ctx   *pdfcpumodel.Context
	pages map[int]map[string]image.Image
}

// imageSource returns the document's pdfcpu image source, or nil when
// pdfcpu cannot parse the file.
func (d *Document) imageSource() *imageSource {
	d.imagesOnce.Do(func() {
		defer func() {
			if r := recover(); r != nil {
				diag.Printf("image decoder unavailable: %v", r)
				d.images = nil
			}
		}()

		conf := pdfcpumodel.NewDefaultConfiguration()
		conf.ValidationMode = pdfcpumodel.ValidationRelaxed

		ctx, err := api.ReadValidateAndOptimize(d.readSeeker(), conf)
		if err != nil {
			diag.Printf("image decoder unavailable: %v", err)
			return
		}
		d.images = &imageSource{ctx: ctx, pages: map[int]map[string]image.Image{}}
	})
	return d.images
}

// page returns the decoded images of a page keyed by resource name
func (s *imageSource) page(pageNum int) map[string]image.Image {
	if imgs, ok := s.pages[pageNum]; ok {
		return imgs
	}
	imgs := map[string]image.Image{}
	s.pages[pageNum] = imgs

	extracted, err := safeExtract(s.ctx, pageNum)
	if err != nil {
		diag.Printf("page %d: image extraction: %v", pageNum, err)
		return imgs
	}
	for _, img := range extracted {
		if img.Name == "" {
			continue
		}
		decoded, _, err := image.Decode(img)
		if err != nil {
			diag.Printf("page %d: image %s (%s): %v", pageNum, img.Name, img.FileType, err)
			continue
		}
		if _, dup := imgs[img.Name]; !dup {
			imgs[img.Name] = decoded
		}
	}
	return imgs
}

func safeExtract(ctx *pdfcpumodel.Context, pageNum int) (imgs map[int]pdfcpumodel.Image, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("pdfcpu: %v", r)
		}
	}()
	return pdfcpu.ExtractPageImages(ctx, pageNum, false)
}

// decodeTimeout bounds a single fallback decode
const decodeTimeout = 10 * time.Second

// streamImage decodes an image XObject from its stream. It handles the
// filters the PDF parser itself can undo, plus JPEG data passed through.
func streamImage(ctx context.Context, xobj pdf.Value) (image.Image, error) {
	ctx, cancel := context.WithTimeout(ctx, decodeTimeout)
	defer cancel()

	type result struct {
		img image.Image
		err error
	}
	done := make(chan result, 1)
	go func() {
		img, err := decodeStream(xobj)
		done <- result{img, err}
	}()

	select {
	case r := <-done:
		return r.img, r.err
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "image decode")
	}
}

func decodeStream(xobj pdf.Value) (img image.Image, err error) {
	defer func() {
		if r := recover(); r != nil {
			img, err = nil, errors.Errorf("stream: %v", r)
		}
	}()

	rc := xobj.Reader()
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return nil, errors.Wrap(err, "read stream")
	}

	// some parsers pass DCT data through untouched
	if decoded, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		return decoded, nil
	}

	n, err := colorComponents(xobj.Key("ColorSpace"))
	if err != nil {
		return nil, err
	}
	samples := rawSamples{
		Width:            int(xobj.Key("Width").Int64()),
		Height:           int(xobj.Key("Height").Int64()),
		Components:       n,
		BitsPerComponent: int(xobj.Key("BitsPerComponent").Int64()),
		Data:             data,
	}
	return samples.Image()
}

// colorComponents returns the channel count of a colour space, resolving
// ICCBased profiles through /N
func colorComponents(cs pdf.Value) (int, error) {
	name := cs.Name()
	if cs.Kind() == pdf.Array && cs.Len() > 0 {
		name = cs.Index(0).Name()
		if name == "ICCBased" {
			n := int(cs.Index(1).Key("N").Int64())
			if n == 1 || n == 3 || n == 4 {
				return n, nil
			}
			return 0, errors.Errorf("ICC profile with %d components", n)
		}
	}
	switch name {
	case "", "DeviceGray", "CalGray", "G":
		return 1, nil
	case "DeviceRGB", "CalRGB", "RGB":
		return 3, nil
	case "DeviceCMYK", "CMYK":
		return 4, nil
	}
	return 0, errors.Errorf("unsupported colour space %s", name)
}

// rawSamples is uncompressed image sample data as laid out in a PDF image
// stream: rows padded to a byte boundary, components interleaved.
type rawSamples struct {
	Width            int
	Height           int
	Components       int
	BitsPerComponent int
	Data             []byte
}

// Image converts the samples to an image.Image
func (s rawSamples) Image() (image.Image, error) {
	if s.Width <= 0 || s.Height <= 0 {
		return nil, errors.Errorf("invalid image size %dx%d", s.Width, s.Height)
	}
	switch s.Components {
	case 1, 3, 4:
	default:
		return nil, errors.Errorf("unsupported component count %d", s.Components)
	}

	if s.Components == 1 {
		g, err := s.gray()
		if err != nil {
			return nil, err
		}
		return g, nil
	}
	rgba, err := s.color(s.Components)
	if err != nil {
		return nil, err
	}
	return rgba, nil
}

// gray handles 1, 2, 4 and 8 bit single channel data. 0 is black.
func (s rawSamples) gray() (*image.Gray, error) {
	bpc := s.BitsPerComponent
	if bpc != 1 && bpc != 2 && bpc != 4 && bpc != 8 {
		return nil, errors.Errorf("unsupported bits per component: %d", bpc)
	}

	stride := (s.Width*bpc + 7) / 8
	if len(s.Data) < stride*s.Height {
		return nil, errors.Errorf("insufficient data: got %d, expected %d", len(s.Data), stride*s.Height)
	}

	out := image.NewGray(image.Rect(0, 0, s.Width, s.Height))
	maxVal := (1 << bpc) - 1
	perByte := 8 / bpc
	for y := 0; y < s.Height; y++ {
		row := s.Data[y*stride : (y+1)*stride]
		for x := 0; x < s.Width; x++ {
			b := row[x/perByte]
			shift := uint(8 - bpc*(x%perByte+1))
			v := int(b>>shift) & maxVal
			out.Pix[y*out.Stride+x] = uint8(v * 255 / maxVal)
		}
	}
	return out, nil
}

// color handles 8 bit RGB and CMYK data
func (s rawSamples) color(n int) (*image.RGBA, error) {
	if s.BitsPerComponent != 8 {
		return nil, errors.Errorf("unsupported bits per component for %d channels: %d", n, s.BitsPerComponent)
	}
	if len(s.Data) < s.Width*s.Height*n {
		return nil, errors.Errorf("insufficient data: got %d, expected %d", len(s.Data), s.Width*s.Height*n)
	}

	out := image.NewRGBA(image.Rect(0, 0, s.Width, s.Height))
	for i := 0; i < s.Width*s.Height; i++ {
		src := s.Data[i*n : i*n+n]
		r, g, b := src[0], src[1], src[2]
		if n == 4 {
			r, g, b = color.CMYKToRGB(src[0], src[1], src[2], src[3])
		}
		out.Pix[i*4+0] = r
		out.Pix[i*4+1] = g
		out.Pix[i*4+2] = b
		out.Pix[i*4+3] = 255
	}
	return out, nil
}
