package animation

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/lyricframe/api/internal/lrc"
	"github.com/lyricframe/api/internal/model"
)

func testContext(t *testing.T) *Context {
	t.Helper()

	cover := image.NewNRGBA(image.Rect(0, 0, 80, 80))
	for y := 0; y < 80; y++ {
		for x := 0; x < 80; x++ {
			cover.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 3), G: uint8(y * 3), B: 90, A: 255})
		}
	}

	style := model.StyleConfig{
		FontSizePrimary:   48,
		FontSizeSecondary: 30,
		OutlineWidth:      2,
		BackgroundAnim:    "static-blur",
		TextAnim:          "fade",
		CoverAnim:         "static",
	}

	facePrimary, err := LoadFace("", 48)
	if err != nil {
		t.Fatalf("LoadFace: %v", err)
	}
	faceHighlight, _ := LoadFace("", 52)
	faceSecondary, _ := LoadFace("", 30)

	return &Context{
		Width:          320,
		Height:         180,
		FPS:            30,
		Duration:       30,
		Cover:          cover,
		Background:     cover,
		Timeline:       []lrc.Event{{Time: 0, Text: "first"}, {Time: 5, Text: "second", Secondary: "translated"}},
		Style:          style,
		ColorPrimary:   color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		ColorSecondary: color.NRGBA{R: 220, G: 220, B: 220, A: 255},
		ColorOutline:   color.NRGBA{A: 255},
		FacePrimary:    facePrimary,
		FaceHighlight:  faceHighlight,
		FaceSecondary:  faceSecondary,
	}
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func TestRegistryKnownNames(t *testing.T) {
	r := NewRegistry()

	for _, name := range []string{"static-blur", "gradient-wave", "wave-blur"} {
		if _, err := r.Background(name); err != nil {
			t.Errorf("Background(%q): %v", name, err)
		}
	}
	for _, name := range []string{"fade", "scroll-list"} {
		if _, err := r.Text(name); err != nil {
			t.Errorf("Text(%q): %v", name, err)
		}
	}
	for _, name := range []string{"static", "vinyl"} {
		if _, err := r.Cover(name); err != nil {
			t.Errorf("Cover(%q): %v", name, err)
		}
	}
}

func TestRegistryUnknownNameFailsFast(t *testing.T) {
	r := NewRegistry()
	_, err := r.Background("sparkles")
	if err == nil {
		t.Fatal("expected error for unknown variant")
	}
	if !strings.Contains(err.Error(), "sparkles") {
		t.Errorf("error should name the bad variant: %v", err)
	}

	style := model.StyleConfig{BackgroundAnim: "static-blur", TextAnim: "nope", CoverAnim: "static"}
	if err := r.Validate(style); err == nil {
		t.Fatal("Validate should reject unknown text animation")
	}
}

func TestBackgroundVariantsDeterministic(t *testing.T) {
	ctx := testContext(t)
	r := NewRegistry()

	for _, name := range r.BackgroundNames() {
		v, _ := r.Background(name)
		a, err := v.Render(3.2, ctx)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		b, err := v.Render(3.2, ctx)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if !bytes.Equal(encodePNG(t, a), encodePNG(t, b)) {
			t.Errorf("%s not deterministic for identical inputs", name)
		}
		if got := a.Bounds().Dx(); got != ctx.Width {
			t.Errorf("%s: width %d, want %d", name, got, ctx.Width)
		}
	}
}

func TestGradientWaveChangesOverTime(t *testing.T) {
	ctx := testContext(t)
	v, _ := NewRegistry().Background("gradient-wave")

	a, _ := v.Render(0, ctx)
	b, _ := v.Render(2, ctx)
	if bytes.Equal(encodePNG(t, a), encodePNG(t, b)) {
		t.Error("gradient-wave should animate with t")
	}
}

func TestGenerativeFlags(t *testing.T) {
	r := NewRegistry()
	grad, _ := r.Background("gradient-wave")
	if !grad.Generative() {
		t.Error("gradient-wave should be generative")
	}
	blur, _ := r.Background("static-blur")
	if blur.Generative() {
		t.Error("static-blur needs a source image")
	}
	if blur.Animated() {
		t.Error("static-blur should be cacheable")
	}
}

func TestBackgroundRequiresSource(t *testing.T) {
	ctx := testContext(t)
	ctx.Background = nil

	for _, name := range []string{"static-blur", "wave-blur"} {
		v, _ := NewRegistry().Background(name)
		if _, err := v.Render(0, ctx); err == nil {
			t.Errorf("%s: expected error without source image", name)
		}
	}
}

func TestVinylRotates(t *testing.T) {
	ctx := testContext(t)
	v, _ := NewRegistry().Cover("vinyl")

	a, err := v.Render(0, ctx)
	if err != nil {
		t.Fatalf("vinyl: %v", err)
	}
	b, _ := v.Render(2.5, ctx)
	if bytes.Equal(encodePNG(t, a), encodePNG(t, b)) {
		t.Error("vinyl should rotate between frames")
	}

	c, _ := v.Render(0, ctx)
	if !bytes.Equal(encodePNG(t, a), encodePNG(t, c)) {
		t.Error("vinyl not deterministic for identical inputs")
	}
}

func TestStaticCoverHasReflection(t *testing.T) {
	ctx := testContext(t)
	v, _ := NewRegistry().Cover("static")

	img, err := v.Render(0, ctx)
	if err != nil {
		t.Fatalf("static cover: %v", err)
	}
	wantH := coverSize + int(coverSize*reflectionFrac)
	if got := img.Bounds().Dy(); got != wantH {
		t.Errorf("layer height %d, want %d (cover plus reflection)", got, wantH)
	}
}

func TestGoldenRatioLayout(t *testing.T) {
	block := CoverBlockWidth(1920)
	if block <= 733 || block >= 734 {
		t.Errorf("CoverBlockWidth(1920) = %v", block)
	}

	x, w := TextColumn(1920)
	if x != block {
		t.Errorf("text column must start where the cover block ends: x=%v block=%v", x, block)
	}
	if x+w != 1920 {
		t.Errorf("column must span the rest of the frame: x+w=%v", x+w)
	}
}
