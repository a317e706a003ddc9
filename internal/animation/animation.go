// Package animation holds the catalog of named animation variants for the
// three compositing layers: background, lyric text, and cover art. Every
// variant is a pure function of elapsed time and the render context, which
// keeps previews reproducible and frame rendering parallel-safe.
package animation

import (
	"fmt"
	"image"
	"image/color"
	"sort"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/lyricframe/api/internal/lrc"
	"github.com/lyricframe/api/internal/model"
)

// Context carries the per-job inputs a variant may draw from. It is built
// once by the composer and treated as read-only by variants.
type Context struct {
	Width    int
	Height   int
	FPS      int
	Duration float64

	Cover      image.Image
	Background image.Image

	Timeline []lrc.Event
	Style    model.StyleConfig

	ColorPrimary   color.Color
	ColorSecondary color.Color
	ColorOutline   color.Color

	FacePrimary   font.Face
	FaceHighlight font.Face
	FaceSecondary font.Face
}

// Background produces a full-frame backdrop layer.
type Background interface {
	Name() string
	// Generative backgrounds need no source image.
	Generative() bool
	// Animated reports whether output depends on t; static layers are
	// rendered once and reused by the composer.
	Animated() bool
	Render(t float64, ctx *Context) (image.Image, error)
}

// Cover produces the transformed cover-art layer. The composer centers the
// returned image inside the left golden-ratio block of the frame.
type Cover interface {
	Name() string
	Animated() bool
	Render(t float64, ctx *Context) (image.Image, error)
}

// Text draws the lyric layer for time t directly onto the frame.
type Text interface {
	Name() string
	Render(dc *gg.Context, t float64, ctx *Context) error
}

// Registry resolves variant names to implementations. Unknown names are
// rejected before any rendering work begins.
type Registry struct {
	backgrounds map[string]Background
	texts       map[string]Text
	covers      map[string]Cover
}

// NewRegistry returns a registry populated with the built-in variants.
func NewRegistry() *Registry {
	r := &Registry{
		backgrounds: map[string]Background{},
		texts:       map[string]Text{},
		covers:      map[string]Cover{},
	}
	r.RegisterBackground(staticBlur{})
	r.RegisterBackground(gradientWave{})
	r.RegisterBackground(waveBlur{})
	r.RegisterText(fadeText{})
	r.RegisterText(scrollList{})
	r.RegisterCover(staticCover{})
	r.RegisterCover(vinylCover{})
	return r
}

func (r *Registry) RegisterBackground(v Background) { r.backgrounds[v.Name()] = v }
func (r *Registry) RegisterText(v Text)             { r.texts[v.Name()] = v }
func (r *Registry) RegisterCover(v Cover)           { r.covers[v.Name()] = v }

func (r *Registry) Background(name string) (Background, error) {
	v, ok := r.backgrounds[name]
	if !ok {
		return nil, fmt.Errorf("unknown background animation %q (have %s)",
			name, strings.Join(r.BackgroundNames(), ", "))
	}
	return v, nil
}

func (r *Registry) Text(name string) (Text, error) {
	v, ok := r.texts[name]
	if !ok {
		return nil, fmt.Errorf("unknown text animation %q (have %s)",
			name, strings.Join(r.TextNames(), ", "))
	}
	return v, nil
}

func (r *Registry) Cover(name string) (Cover, error) {
	v, ok := r.covers[name]
	if !ok {
		return nil, fmt.Errorf("unknown cover animation %q (have %s)",
			name, strings.Join(r.CoverNames(), ", "))
	}
	return v, nil
}

// Validate resolves all three variant names in one pass so configuration
// errors surface at submission time, not mid-render.
func (r *Registry) Validate(style model.StyleConfig) error {
	if _, err := r.Background(style.BackgroundAnim); err != nil {
		return err
	}
	if _, err := r.Text(style.TextAnim); err != nil {
		return err
	}
	if _, err := r.Cover(style.CoverAnim); err != nil {
		return err
	}
	return nil
}

func (r *Registry) BackgroundNames() []string { return sortedKeys(r.backgrounds) }
func (r *Registry) TextNames() []string       { return sortedKeys(r.texts) }
func (r *Registry) CoverNames() []string      { return sortedKeys(r.covers) }

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Golden-ratio layout: the cover occupies the left block, lyric text the
// right column.
const goldenRatio = 2.618

// CoverBlockWidth is the width of the frame region reserved for cover art.
func CoverBlockWidth(frameW int) float64 { return float64(frameW) / goldenRatio }

// TextColumn returns the x origin and width of the lyric column.
func TextColumn(frameW int) (x, w float64) {
	x = float64(frameW) / goldenRatio
	return x, float64(frameW) - x
}
