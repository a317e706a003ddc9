package animation

import (
	"fmt"
	"os"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// LoadFace parses the TTF at path and returns a face at the given point
// size. An empty path yields the bundled Go font so rendering always has a
// usable face; an unreadable or corrupt font file is an error.
func LoadFace(path string, points float64) (font.Face, error) {
	data := goregular.TTF
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read font %s: %w", path, err)
		}
		data = b
	}

	ft, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}
	return truetype.NewFace(ft, &truetype.Options{Size: points}), nil
}
