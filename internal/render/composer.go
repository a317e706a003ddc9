// Package render turns a point in time into a raster frame and drives
// frame production through the external encoder.
package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/lyricframe/api/internal/animation"
	"github.com/lyricframe/api/internal/lrc"
	"github.com/lyricframe/api/internal/model"
	"github.com/lyricframe/api/internal/palette"
)

// ComposerOptions carries everything a Composer needs for one job.
type ComposerOptions struct {
	Width    int
	Height   int
	FPS      int
	Duration float64

	Cover      image.Image
	Background image.Image // nil falls back to Cover

	Timeline []lrc.Event
	Style    model.StyleConfig
}

// Composer renders frames for a single job. ComposeFrame is deterministic
// and writes nothing to disk; static layers are rendered lazily once and
// reused across frames.
type Composer struct {
	ctx *animation.Context

	background animation.Background
	text       animation.Text
	cover      animation.Cover

	bgCache    image.Image
	coverCache image.Image
}

// NewComposer resolves animation variants, fonts and colors up front so
// that configuration problems surface before any frame is rendered.
func NewComposer(reg *animation.Registry, opts ComposerOptions) (*Composer, error) {
	bg, err := reg.Background(opts.Style.BackgroundAnim)
	if err != nil {
		return nil, err
	}
	text, err := reg.Text(opts.Style.TextAnim)
	if err != nil {
		return nil, err
	}
	cover, err := reg.Cover(opts.Style.CoverAnim)
	if err != nil {
		return nil, err
	}

	if opts.Cover == nil {
		return nil, fmt.Errorf("composer requires decoded cover artwork")
	}
	bgImage := opts.Background
	if bgImage == nil {
		bgImage = opts.Cover
	}

	fallback := palette.Default()
	primary, err := parseHex(opts.Style.ColorPrimary, fallback.Primary)
	if err != nil {
		return nil, err
	}
	secondary, err := parseHex(opts.Style.ColorSecondary, fallback.Secondary)
	if err != nil {
		return nil, err
	}
	outline, err := parseHex(opts.Style.OutlineColor, fallback.Outline)
	if err != nil {
		return nil, err
	}

	facePrimary, err := animation.LoadFace(opts.Style.FontPrimary, float64(opts.Style.FontSizePrimary))
	if err != nil {
		return nil, err
	}
	faceHighlight, err := animation.LoadFace(opts.Style.FontPrimary, float64(opts.Style.FontSizePrimary)*1.1)
	if err != nil {
		return nil, err
	}
	faceSecondary, err := animation.LoadFace(opts.Style.FontSecondary, float64(opts.Style.FontSizeSecondary))
	if err != nil {
		return nil, err
	}

	return &Composer{
		ctx: &animation.Context{
			Width:          opts.Width,
			Height:         opts.Height,
			FPS:            opts.FPS,
			Duration:       opts.Duration,
			Cover:          opts.Cover,
			Background:     bgImage,
			Timeline:       opts.Timeline,
			Style:          opts.Style,
			ColorPrimary:   primary,
			ColorSecondary: secondary,
			ColorOutline:   outline,
			FacePrimary:    facePrimary,
			FaceHighlight:  faceHighlight,
			FaceSecondary:  faceSecondary,
		},
		background: bg,
		text:       text,
		cover:      cover,
	}, nil
}

// ComposeFrame renders the frame for elapsed time t, compositing
// background, cover and lyric text back to front.
func (c *Composer) ComposeFrame(t float64) (*image.RGBA, error) {
	dc := gg.NewContext(c.ctx.Width, c.ctx.Height)

	bgLayer, err := c.backgroundLayer(t)
	if err != nil {
		return nil, fmt.Errorf("background layer: %w", err)
	}
	dc.DrawImage(bgLayer, 0, 0)

	coverLayer, err := c.coverLayer(t)
	if err != nil {
		return nil, fmt.Errorf("cover layer: %w", err)
	}
	b := coverLayer.Bounds()
	x := int((animation.CoverBlockWidth(c.ctx.Width) - float64(b.Dx())) / 2)
	y := (c.ctx.Height - b.Dy()) / 2
	dc.DrawImage(coverLayer, x, y)

	if err := c.text.Render(dc, t, c.ctx); err != nil {
		return nil, fmt.Errorf("text layer: %w", err)
	}

	return dc.Image().(*image.RGBA), nil
}

func (c *Composer) backgroundLayer(t float64) (image.Image, error) {
	if c.background.Animated() {
		return c.background.Render(t, c.ctx)
	}
	if c.bgCache == nil {
		img, err := c.background.Render(t, c.ctx)
		if err != nil {
			return nil, err
		}
		c.bgCache = img
	}
	return c.bgCache, nil
}

func (c *Composer) coverLayer(t float64) (image.Image, error) {
	if c.cover.Animated() {
		return c.cover.Render(t, c.ctx)
	}
	if c.coverCache == nil {
		img, err := c.cover.Render(t, c.ctx)
		if err != nil {
			return nil, err
		}
		c.coverCache = img
	}
	return c.coverCache, nil
}

func parseHex(hex, fallback string) (color.Color, error) {
	if hex == "" {
		hex = fallback
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, fmt.Errorf("malformed color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}
