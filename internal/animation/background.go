package animation

import (
	"errors"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// staticBlur fills the frame with the source image, heavily blurred. The
// layer does not depend on t, so the composer renders it once per job.
type staticBlur struct{}

func (staticBlur) Name() string     { return "static-blur" }
func (staticBlur) Generative() bool { return false }
func (staticBlur) Animated() bool   { return false }

func (staticBlur) Render(_ float64, ctx *Context) (image.Image, error) {
	if ctx.Background == nil {
		return nil, errors.New("static-blur background requires a source image")
	}
	filled := imaging.Fill(ctx.Background, ctx.Width, ctx.Height, imaging.Center, imaging.Lanczos)
	return imaging.Blur(filled, 12), nil
}

// gradientWave is a generative backdrop: a flowing RGB sine field computed
// at quarter resolution and upscaled, so it needs no source image. The
// field is a pure function of pixel position and t.
type gradientWave struct{}

const gradientWaveScale = 4

func (gradientWave) Name() string     { return "gradient-wave" }
func (gradientWave) Generative() bool { return true }
func (gradientWave) Animated() bool   { return true }

func (gradientWave) Render(t float64, ctx *Context) (image.Image, error) {
	lw := ctx.Width / gradientWaveScale
	lh := ctx.Height / gradientWaveScale
	if lw < 1 {
		lw = 1
	}
	if lh < 1 {
		lh = 1
	}

	const f = gradientWaveScale
	img := image.NewNRGBA(image.Rect(0, 0, lw, lh))
	for y := 0; y < lh; y++ {
		fy := float64(y)
		row := img.Pix[y*img.Stride : y*img.Stride+lw*4]
		for x := 0; x < lw; x++ {
			fx := float64(x)
			r := 128 + 64*math.Sin(fx/(150.0/f)+t*2) + 64*math.Cos(fy/(150.0/f)+t*2.5)
			g := 128 + 64*math.Sin(fx/(180.0/f)+t*1.5) + 64*math.Cos(fy/(120.0/f)+t*2)
			b := 128 + 64*math.Sin(fx/(120.0/f)+t*2.5) + 64*math.Cos(fy/(180.0/f)+t*1.5)
			o := x * 4
			row[o] = clamp8(r)
			row[o+1] = clamp8(g)
			row[o+2] = clamp8(b)
			row[o+3] = 0xff
		}
	}
	return imaging.Resize(img, ctx.Width, ctx.Height, imaging.Lanczos), nil
}

// waveBlur distorts the blurred source with a vertical sine displacement
// that drifts over time. Work happens at half resolution and is upscaled.
type waveBlur struct{}

const (
	waveBlurScale    = 2
	waveStrength     = 3.0 // displacement amplitude in full-res pixels
	waveDensity      = 50.0
	waveSpeed        = 2.0
	waveBlurSigma    = 10.0
)

func (waveBlur) Name() string     { return "wave-blur" }
func (waveBlur) Generative() bool { return false }
func (waveBlur) Animated() bool   { return true }

func (waveBlur) Render(t float64, ctx *Context) (image.Image, error) {
	if ctx.Background == nil {
		return nil, errors.New("wave-blur background requires a source image")
	}

	lw := ctx.Width / waveBlurScale
	lh := ctx.Height / waveBlurScale
	base := imaging.Blur(
		imaging.Fill(ctx.Background, lw, lh, imaging.Center, imaging.Lanczos),
		waveBlurSigma/waveBlurScale)

	strength := waveStrength / waveBlurScale
	density := waveDensity / waveBlurScale

	out := image.NewNRGBA(image.Rect(0, 0, lw, lh))
	for x := 0; x < lw; x++ {
		shift := int(math.Round(strength * math.Sin(float64(x)/density+t*waveSpeed)))
		for y := 0; y < lh; y++ {
			sy := y + shift
			if sy < 0 {
				sy = 0
			} else if sy >= lh {
				sy = lh - 1
			}
			so := sy*base.Stride + x*4
			do := y*out.Stride + x*4
			copy(out.Pix[do:do+4], base.Pix[so:so+4])
		}
	}
	return imaging.Resize(out, ctx.Width, ctx.Height, imaging.Lanczos), nil
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
