package converter

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/gen2brain/avif"

	"github.com/BatmanBruc/handy-image-converter/internal/formats"
)

type Converter interface {
	// Convert decodes the image at inputPath and writes it to outputPath
	// encoded as target.
	Convert(ctx context.Context, inputPath, outputPath string, target formats.Format) error
}

type Config struct {
	JPEGQuality int
	WEBPQuality int
	AVIFQuality int
	AVIFSpeed   int
}

type DefaultConverter struct {
	cfg Config
}

func NewDefaultConverter(cfg Config) *DefaultConverter {
	if cfg.JPEGQuality <= 0 || cfg.JPEGQuality > 100 {
		cfg.JPEGQuality = 90
	}
	if cfg.WEBPQuality <= 0 || cfg.WEBPQuality > 100 {
		cfg.WEBPQuality = 90
	}
	if cfg.AVIFQuality <= 0 || cfg.AVIFQuality > 100 {
		cfg.AVIFQuality = 60
	}
	if cfg.AVIFSpeed <= 0 || cfg.AVIFSpeed > 10 {
		cfg.AVIFSpeed = 10
	}
	return &DefaultConverter{cfg: cfg}
}

func (c *DefaultConverter) Convert(ctx context.Context, inputPath, outputPath string, target formats.Format) error {
	if _, ok := formats.Parse(string(target)); !ok {
		return fmt.Errorf("unsupported target format: %q", target)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	img, err := imaging.Open(inputPath)
	if err != nil {
		return fmt.Errorf("decode %s: %w", inputPath, err)
	}
	// The JPEG encoder takes YCbCr directly; other encoders get 8-bit NRGBA.
	if _, ok := img.(*image.YCbCr); !ok || target != formats.JPEG {
		img = ToRGB(img)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	if err := c.encode(out, img, target); err != nil {
		_ = out.Close()
		_ = os.Remove(outputPath)
		return fmt.Errorf("encode %s: %w", target, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(outputPath)
		return err
	}
	return nil
}

func (c *DefaultConverter) encode(w io.Writer, img image.Image, target formats.Format) error {
	switch target {
	case formats.JPEG:
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(c.cfg.JPEGQuality))
	case formats.PNG:
		return imaging.Encode(w, img, imaging.PNG)
	case formats.WEBP:
		return webp.Encode(w, img, &webp.Options{Quality: float32(c.cfg.WEBPQuality)})
	case formats.AVIF:
		return avif.Encode(w, img, avif.Options{
			Quality:      c.cfg.AVIFQuality,
			QualityAlpha: c.cfg.AVIFQuality,
			Speed:        c.cfg.AVIFSpeed,
		})
	default:
		return fmt.Errorf("no encoder for %q", target)
	}
}

// ToRGB copies img into opaque 8-bit NRGBA. The alpha channel is dropped;
// colour values are kept as they are, not blended onto a background.
func ToRGB(img image.Image) *image.NRGBA {
	dst := imaging.Clone(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}
