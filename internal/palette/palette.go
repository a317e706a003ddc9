// Package palette derives display colors from cover artwork.
package palette

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/EdlinOrg/prominentcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/nfnt/resize"
)

// Palette holds the three colors used to style rendered lyrics: the main
// text color, the translation/secondary text color, and the stroke color
// that keeps text legible over the artwork.
type Palette struct {
	Primary   string `json:"colorPrimary"`
	Secondary string `json:"colorSecondary"`
	Outline   string `json:"outlineColor"`
}

const (
	clusterCount = 8
	thumbSize    = 150
)

// Default returns the fixed fallback palette used when clustering cannot
// produce a usable result (near-monochrome or undecodable artwork).
func Default() Palette {
	return Palette{Primary: "#FFFFFF", Secondary: "#DDDDDD", Outline: "#000000"}
}

// ExtractFile decodes the image at path and extracts a palette from it.
// Decoding failures are errors; degenerate image content is not.
func ExtractFile(path string) (Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return Palette{}, fmt.Errorf("open cover image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return Palette{}, fmt.Errorf("decode cover image: %w", err)
	}
	return Extract(img), nil
}

// Extract clusters the image's pixels and picks the highest-contrast pair
// of cluster centroids as primary/secondary (primary being the lighter of
// the two), then the remaining centroid with the most contrast against
// primary as the outline. It always returns a well-formed palette.
func Extract(img image.Image) Palette {
	if img == nil {
		return Default()
	}

	small := resize.Thumbnail(thumbSize, thumbSize, img, resize.Bilinear)

	items, err := prominentcolor.KmeansWithAll(clusterCount, small,
		prominentcolor.ArgumentNoCropping, prominentcolor.DefaultSize, nil)
	if err != nil || len(items) < 2 {
		return Default()
	}

	centroids := make([]colorful.Color, len(items))
	for i, it := range items {
		centroids[i] = colorful.Color{
			R: float64(it.Color.R) / 255,
			G: float64(it.Color.G) / 255,
			B: float64(it.Color.B) / 255,
		}
	}

	// Highest-contrast centroid pair becomes primary/secondary.
	var primary, secondary colorful.Color
	best := 0.0
	for i := 0; i < len(centroids); i++ {
		for j := i + 1; j < len(centroids); j++ {
			if c := contrastRatio(centroids[i], centroids[j]); c > best {
				best = c
				primary, secondary = centroids[i], centroids[j]
			}
		}
	}
	if luminance(primary) < luminance(secondary) {
		primary, secondary = secondary, primary
	}

	// Outline: remaining centroid with the most contrast against primary,
	// falling back to black or white when the clusters are too uniform.
	var outline colorful.Color
	found := false
	bestOutline := 0.0
	for _, c := range centroids {
		if c == primary || c == secondary {
			continue
		}
		if ratio := contrastRatio(primary, c); ratio > bestOutline {
			bestOutline = ratio
			outline = c
			found = true
		}
	}
	if !found || bestOutline < minOutlineContrast {
		if luminance(primary) > 0.5 {
			outline = colorful.Color{R: 0, G: 0, B: 0}
		} else {
			outline = colorful.Color{R: 1, G: 1, B: 1}
		}
	}

	return Palette{Primary: primary.Hex(), Secondary: secondary.Hex(), Outline: outline.Hex()}
}

// minOutlineContrast matches the WCAG large-text threshold.
const minOutlineContrast = 3.0

func luminance(c colorful.Color) float64 {
	r, g, b := c.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}

func contrastRatio(a, b colorful.Color) float64 {
	la, lb := luminance(a), luminance(b)
	if la < lb {
		la, lb = lb, la
	}
	return (la + 0.05) / (lb + 0.05)
}
