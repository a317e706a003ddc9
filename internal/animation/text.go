package animation

import (
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/lyricframe/api/internal/lrc"
)

// fadeText shows the active line (and its translation) centered in the
// lyric column, sliding up and fading at the edges of its window.
type fadeText struct{}

const (
	fadeDuration  = 0.5
	slideDistance = 20.0
)

func (fadeText) Name() string { return "fade" }

func (fadeText) Render(dc *gg.Context, t float64, ctx *Context) error {
	idx := lrc.ActiveIndex(ctx.Timeline, t)
	if idx < 0 {
		return nil
	}
	ev := ctx.Timeline[idx]
	start, end := lrc.Window(ctx.Timeline, idx, ctx.Duration)

	alpha := 1.0
	if t < start+fadeDuration {
		alpha = (t - start) / fadeDuration
	} else if t > end-fadeDuration {
		alpha = (end - t) / fadeDuration
	}
	alpha = clamp01(alpha)

	slide := 0.0
	if t < start+fadeDuration {
		slide = (fadeDuration - (t - start)) / fadeDuration * slideDistance
	}

	h := float64(ctx.Height)
	szP := float64(ctx.Style.FontSizePrimary)
	szS := float64(ctx.Style.FontSizeSecondary)

	drawColumnLine(dc, ctx, ev.Text, ctx.FacePrimary, ctx.ColorPrimary,
		h/2-1.5*szP-slide+szP, ctx.Style.OutlineWidth, alpha)
	if ev.Secondary != "" {
		drawColumnLine(dc, ctx, ev.Secondary, ctx.FaceSecondary, ctx.ColorSecondary,
			h/2+0.5*szS-slide+szS, ctx.Style.OutlineWidth, alpha)
	}
	return nil
}

// scrollList renders the whole timeline as a vertically scrolling list,
// keeping the active line centered and highlighted, with an eased scroll
// on each line change and alpha falling off with distance from the
// highlight.
type scrollList struct{}

const scrollTransition = 0.35

func (scrollList) Name() string { return "scroll-list" }

func (scrollList) Render(dc *gg.Context, t float64, ctx *Context) error {
	if len(ctx.Timeline) == 0 {
		return nil
	}

	h := float64(ctx.Height)
	szP := float64(ctx.Style.FontSizePrimary)
	szS := float64(ctx.Style.FontSizeSecondary)
	lineHeight := szP + szS + 45
	fadeLines := (h * 6 / 8 / 2) / lineHeight * 1.5

	targetY := func(j int) float64 {
		if j < 0 {
			j = 0
		}
		return h/2 - lineHeight/2 - float64(j)*lineHeight
	}

	active := lrc.ActiveIndex(ctx.Timeline, t)
	highlight := active
	if highlight < 0 {
		highlight = 0
	}

	scrollY := targetY(highlight)
	if active >= 0 {
		if start := ctx.Timeline[active].Time; t < start+scrollTransition {
			p := easeInOut(clamp01((t - start) / scrollTransition))
			scrollY = targetY(active-1) + (targetY(active)-targetY(active-1))*p
		}
	}

	for i, ev := range ctx.Timeline {
		yTop := scrollY + float64(i)*lineHeight
		if yTop < -lineHeight || yTop > h {
			continue
		}
		fade := clamp01(1 - math.Abs(float64(i-highlight))/fadeLines)
		if fade <= 0 {
			continue
		}

		if i == highlight {
			drawColumnLine(dc, ctx, ev.Text, ctx.FaceHighlight, ctx.ColorPrimary,
				yTop+szP, 2, fade)
		} else {
			drawColumnLine(dc, ctx, ev.Text, ctx.FacePrimary, ctx.ColorSecondary,
				yTop+szP, 2, 0.7*fade)
		}
		if ev.Secondary != "" {
			a := 0.7
			if i == highlight {
				a = 0.9
			}
			drawColumnLine(dc, ctx, ev.Secondary, ctx.FaceSecondary, ctx.ColorSecondary,
				yTop+szP+szS, 1, a*fade)
		}
	}
	return nil
}

// drawColumnLine draws one outlined lyric line centered in the text
// column, with baseline at y.
func drawColumnLine(dc *gg.Context, ctx *Context, s string, face font.Face, fill color.Color, y float64, outlineWidth int, alpha float64) {
	if s == "" || alpha <= 0 {
		return
	}
	dc.SetFontFace(face)
	colX, colW := TextColumn(ctx.Width)
	tw, _ := dc.MeasureString(s)
	x := colX + (colW-tw)/2

	if outlineWidth > 0 {
		w := float64(outlineWidth)
		dc.SetColor(withAlpha(ctx.ColorOutline, alpha))
		for _, off := range [][2]float64{
			{-w, 0}, {w, 0}, {0, -w}, {0, w},
			{-w, -w}, {-w, w}, {w, -w}, {w, w},
		} {
			dc.DrawString(s, x+off[0], y+off[1])
		}
	}
	dc.SetColor(withAlpha(fill, alpha))
	dc.DrawString(s, x, y)
}

func withAlpha(c color.Color, alpha float64) color.NRGBA {
	r, g, b, a := c.RGBA()
	n := color.NRGBA{
		R: uint8(r >> 8),
		G: uint8(g >> 8),
		B: uint8(b >> 8),
		A: uint8(float64(a>>8) * alpha),
	}
	return n
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// easeInOut is the cosine ease used for scroll transitions.
func easeInOut(p float64) float64 {
	return (1 - math.Cos(p*math.Pi)) / 2
}
