package animation

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
)

// staticCover shows the scaled cover with a soft reflection fading out
// below it. Time-independent, so the composer caches the layer.
type staticCover struct{}

const (
	coverSize      = 600
	reflectionFrac = 0.4
)

func (staticCover) Name() string   { return "static" }
func (staticCover) Animated() bool { return false }

func (staticCover) Render(_ float64, ctx *Context) (image.Image, error) {
	if ctx.Cover == nil {
		return nil, errors.New("cover animation requires cover artwork")
	}

	main := imaging.Fill(ctx.Cover, coverSize, coverSize, imaging.Center, imaging.Lanczos)

	reflH := int(coverSize * reflectionFrac)
	refl := imaging.Crop(imaging.FlipV(main), image.Rect(0, 0, coverSize, reflH))
	refl = imaging.Blur(refl, 1.5)
	// linear alpha ramp, opaque-ish at the top fading to nothing
	for y := 0; y < reflH; y++ {
		a := 128 * (1 - float64(y)/float64(reflH))
		row := refl.Pix[y*refl.Stride : y*refl.Stride+coverSize*4]
		for x := 0; x < coverSize; x++ {
			row[x*4+3] = uint8(float64(row[x*4+3]) * a / 255)
		}
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, coverSize, coverSize+reflH))
	draw.Draw(canvas, main.Bounds(), main, image.Point{}, draw.Src)
	draw.Draw(canvas, image.Rect(0, coverSize, coverSize, coverSize+reflH), refl, image.Point{}, draw.Over)
	return canvas, nil
}

// vinylCover renders the cover as the label of a spinning record. The
// rotation angle is a linear function of t (one turn every ten seconds),
// so any frame can be rendered independently.
type vinylCover struct{}

const (
	recordSize     = 640
	labelSize      = 400
	secondsPerTurn = 10.0
)

func (vinylCover) Name() string   { return "vinyl" }
func (vinylCover) Animated() bool { return true }

func (vinylCover) Render(t float64, ctx *Context) (image.Image, error) {
	if ctx.Cover == nil {
		return nil, errors.New("cover animation requires cover artwork")
	}

	label := imaging.Fill(ctx.Cover, labelSize, labelSize, imaging.Center, imaging.Lanczos)

	c := float64(recordSize) / 2
	discR := c - 2
	labelR := float64(labelSize) / 2

	dc := gg.NewContext(recordSize, recordSize)
	dc.RotateAbout(t*2*math.Pi/secondsPerTurn, c, c)

	// disc body
	dc.SetRGB(0.05, 0.05, 0.06)
	dc.DrawCircle(c, c, discR)
	dc.Fill()

	// groove rings across the playable area
	dc.SetLineWidth(1)
	for r := labelR + 8; r < discR-10; r += 7 {
		dc.SetRGBA(1, 1, 1, 0.05)
		dc.DrawCircle(c, c, r)
		dc.Stroke()
	}
	// lead-in grooves near the rim are coarser and brighter
	for r := discR - 10; r < discR-2; r += 3 {
		dc.SetRGBA(1, 1, 1, 0.12)
		dc.DrawCircle(c, c, r)
		dc.Stroke()
	}

	// label
	dc.DrawCircle(c, c, labelR)
	dc.Clip()
	dc.DrawImage(label, (recordSize-labelSize)/2, (recordSize-labelSize)/2)
	dc.ResetClip()

	// spindle hole
	dc.SetRGB(0.02, 0.02, 0.02)
	dc.DrawCircle(c, c, 7)
	dc.Fill()

	// light falling across the disc
	grad := gg.NewRadialGradient(c*0.6, c*0.6, 0, c*0.6, c*0.6, float64(recordSize)*0.7)
	grad.AddColorStop(0, color.NRGBA{R: 255, G: 255, B: 255, A: 46})
	grad.AddColorStop(1, color.NRGBA{})
	dc.SetFillStyle(grad)
	dc.DrawCircle(c, c, discR)
	dc.Fill()

	return dc.Image(), nil
}
