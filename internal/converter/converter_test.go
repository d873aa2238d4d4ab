package converter

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/gen2brain/avif"

	"github.com/BatmanBruc/handy-image-converter/internal/formats"
)

func writeTestPNG(t *testing.T, path string, w, h int, alpha uint8) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 40, B: 40, A: alpha})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
}

func near(a, b uint8, tolerance int) bool {
	d := int(a) - int(b)
	if d < 0 {
		d = -d
	}
	return d <= tolerance
}

func TestToRGBDropsAlpha(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 0})
	src.SetNRGBA(1, 0, color.NRGBA{R: 50, G: 60, B: 70, A: 128})

	out := ToRGB(src)
	if got := out.NRGBAAt(0, 0); got != (color.NRGBA{R: 10, G: 20, B: 30, A: 255}) {
		t.Errorf("pixel 0 = %+v", got)
	}
	if got := out.NRGBAAt(1, 0); got != (color.NRGBA{R: 50, G: 60, B: 70, A: 255}) {
		t.Errorf("pixel 1 = %+v", got)
	}
	if src.NRGBAAt(0, 0).A != 0 {
		t.Error("source image must not be modified")
	}
}

func TestToRGBConvertsYCbCr(t *testing.T) {
	ycc := image.NewYCbCr(image.Rect(0, 0, 4, 4), image.YCbCrSubsampleRatio420)
	for i := range ycc.Y {
		ycc.Y[i] = 128
	}
	for i := range ycc.Cb {
		ycc.Cb[i] = 128
		ycc.Cr[i] = 128
	}

	out := ToRGB(ycc)
	if out.Bounds() != ycc.Bounds() {
		t.Fatalf("bounds = %v", out.Bounds())
	}
	got := out.NRGBAAt(2, 2)
	if got.A != 255 || !near(got.R, 128, 2) || !near(got.G, 128, 2) || !near(got.B, 128, 2) {
		t.Fatalf("pixel = %+v, want opaque grey", got)
	}
}

func TestConvertTargets(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "source.png")
	writeTestPNG(t, src, 16, 12, 255)

	c := NewDefaultConverter(Config{})
	tests := []struct {
		target formats.Format
		decode func(path string) (image.Image, error)
	}{
		{formats.JPEG, func(p string) (image.Image, error) { return imaging.Open(p) }},
		{formats.PNG, func(p string) (image.Image, error) { return imaging.Open(p) }},
		{formats.WEBP, func(p string) (image.Image, error) {
			f, err := os.Open(p)
			if err != nil {
				return nil, err
			}
			defer f.Close()
			return webp.Decode(f)
		}},
		{formats.AVIF, func(p string) (image.Image, error) {
			f, err := os.Open(p)
			if err != nil {
				return nil, err
			}
			defer f.Close()
			return avif.Decode(f)
		}},
	}

	for _, tt := range tests {
		t.Run(string(tt.target), func(t *testing.T) {
			out := filepath.Join(dir, "result."+tt.target.Ext())
			if err := c.Convert(context.Background(), src, out, tt.target); err != nil {
				t.Fatalf("convert: %v", err)
			}
			img, err := tt.decode(out)
			if err != nil {
				t.Fatalf("decode result: %v", err)
			}
			if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 12 {
				t.Fatalf("bounds = %v, want 16x12", b)
			}
			r, g, b, _ := img.At(8, 6).RGBA()
			if !near(uint8(r>>8), 200, 24) || !near(uint8(g>>8), 40, 24) || !near(uint8(b>>8), 40, 24) {
				t.Fatalf("centre pixel = %d,%d,%d; want about 200,40,40", r>>8, g>>8, b>>8)
			}
		})
	}
}

// writeFixture encodes a solid 9x7 image as f.
func writeFixture(t *testing.T, path string, f formats.Format) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 9, 7))
	for y := 0; y < 7; y++ {
		for x := 0; x < 9; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 40, G: 160, B: 90, A: 255})
		}
	}

	out, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer out.Close()

	switch f {
	case formats.JPEG:
		err = imaging.Encode(out, img, imaging.JPEG, imaging.JPEGQuality(95))
	case formats.PNG:
		err = png.Encode(out, img)
	case formats.WEBP:
		err = webp.Encode(out, img, &webp.Options{Lossless: true})
	case formats.AVIF:
		err = avif.Encode(out, img, avif.Options{Quality: 90, QualityAlpha: 90, Speed: 10})
	default:
		t.Fatalf("no fixture encoder for %s", f)
	}
	if err != nil {
		t.Fatalf("encode %s fixture: %v", f, err)
	}
}

func decodeResult(t *testing.T, path string, f formats.Format) image.Image {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer file.Close()

	var img image.Image
	switch f {
	case formats.WEBP:
		img, err = webp.Decode(file)
	case formats.AVIF:
		img, err = avif.Decode(file)
	default:
		img, err = imaging.Decode(file)
	}
	if err != nil {
		t.Fatalf("decode %s: %v", f, err)
	}
	return img
}

func TestConvertEverySourceToEveryTarget(t *testing.T) {
	c := NewDefaultConverter(Config{})

	for _, from := range formats.All {
		for _, to := range formats.TargetsFor(from) {
			t.Run(from.String()+"_to_"+to.String(), func(t *testing.T) {
				dir := t.TempDir()
				src := filepath.Join(dir, "source."+from.Ext())
				writeFixture(t, src, from)

				out := filepath.Join(dir, "result."+to.Ext())
				if err := c.Convert(context.Background(), src, out, to); err != nil {
					t.Fatalf("convert: %v", err)
				}

				img := decodeResult(t, out, to)
				if b := img.Bounds(); b.Dx() != 9 || b.Dy() != 7 {
					t.Fatalf("bounds = %v, want 9x7", b)
				}
				r, g, b, _ := img.At(4, 3).RGBA()
				if !near(uint8(r>>8), 40, 32) || !near(uint8(g>>8), 160, 32) || !near(uint8(b>>8), 90, 32) {
					t.Fatalf("centre pixel = %d,%d,%d; want about 40,160,90", r>>8, g>>8, b>>8)
				}
			})
		}
	}
}

func TestConvertJPEGToPNGWritesEightBitColour(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "photo.jpeg")
	writeFixture(t, src, formats.JPEG)
	out := filepath.Join(dir, "photo.png")

	if err := NewDefaultConverter(Config{}).Convert(context.Background(), src, out, formats.PNG); err != nil {
		t.Fatalf("convert: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := img.(*image.RGBA); !ok {
		t.Fatalf("png decoded as %T, want 8-bit *image.RGBA", img)
	}
}

func TestConvertTransparentPNGToJPEG(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "transparent.png")
	writeTestPNG(t, src, 8, 8, 0)
	out := filepath.Join(dir, "transparent.jpeg")

	if err := NewDefaultConverter(Config{}).Convert(context.Background(), src, out, formats.JPEG); err != nil {
		t.Fatalf("convert: %v", err)
	}
	img, err := imaging.Open(out)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	r, g, b, _ := img.At(4, 4).RGBA()
	if !near(uint8(r>>8), 200, 24) || !near(uint8(g>>8), 40, 24) || !near(uint8(b>>8), 40, 24) {
		t.Fatalf("colour under transparent pixels must be kept, got %d,%d,%d", r>>8, g>>8, b>>8)
	}
}

func TestConvertCorruptInput(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "broken.png")
	if err := os.WriteFile(src, []byte("definitely not a png"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "broken.webp")

	if err := NewDefaultConverter(Config{}).Convert(context.Background(), src, out, formats.WEBP); err == nil {
		t.Fatal("expected decode error")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatal("no output file must be left behind")
	}
}

func TestConvertRejectsUnknownTarget(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.png")
	writeTestPNG(t, src, 2, 2, 255)
	if err := NewDefaultConverter(Config{}).Convert(context.Background(), src, filepath.Join(dir, "a.tiff"), formats.Format("tiff")); err == nil {
		t.Fatal("expected error for tiff")
	}
}
