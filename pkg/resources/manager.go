package resources

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Manager owns the external resources used during evaluation: the font
// map, the shaper, and a cache of decoded images. Builtins receive it by
// unique reference, so there is at most one mutable accessor at a time.
type Manager struct {
	fonts  *FontMap
	shaper Shaper
	images map[string]*VectorImage
}

// NewManager creates a resource manager.
func NewManager(fonts *FontMap, shaper Shaper) *Manager {
	if fonts == nil {
		fonts = NewFontMap()
	}
	if shaper == nil {
		shaper = MetricsShaper{}
	}
	return &Manager{
		fonts:  fonts,
		shaper: shaper,
		images: make(map[string]*VectorImage),
	}
}

// Font resolves a family and style to a font handle.
func (m *Manager) Font(family, style string) (*Font, bool) {
	return m.fonts.Get(family, style)
}

// Shape shapes a line of text with the given font.
func (m *Manager) Shape(font *Font, line string) []ShapedGlyph {
	return m.shaper.Shape(font, line)
}

// Image loads a vector image, caching decoded results per path. Only
// vector image files are accepted.
func (m *Manager) Image(path string) (*VectorImage, error) {
	if img, ok := m.images[path]; ok {
		return img, nil
	}
	if !strings.EqualFold(filepath.Ext(path), ".svg") {
		return nil, fmt.Errorf("Cannot load '%s', only svg images are supported for now.", path)
	}
	img, err := LoadSVG(path)
	if err != nil {
		return nil, err
	}
	m.images[path] = img
	return img, nil
}
