// Package resources implements the external collaborators of the
// evaluator: font resolution and text shaping, and vector image loading.
// Fonts are described by a YAML manifest so the core never touches font
// files itself.
package resources

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/prislang/pris/pkg/types"
)

// Font is an opaque shapeable font handle resolved from the manifest.
// Metrics are in font units, 1000 to the em.
type Font struct {
	Family     string
	Style      string
	File       string
	UnitsPerEm float64
	// Advance is the default glyph advance width in font units; Advances
	// overrides it per rune.
	Advance  float64
	Advances map[string]float64
}

// ShapedGlyph is one glyph of a shaped line: a glyph id with its offsets
// and advances in font units.
type ShapedGlyph struct {
	ID       uint32
	XOffset  float64
	YOffset  float64
	XAdvance float64
	YAdvance float64
}

// Shaper turns a line of text into positioned glyphs for a font.
type Shaper interface {
	Shape(font *Font, line string) []ShapedGlyph
}

// fontManifest is the YAML shape of the font manifest file.
type fontManifest struct {
	Fonts []fontEntry `yaml:"fonts"`
}

type fontEntry struct {
	Family     string             `yaml:"family"`
	Style      string             `yaml:"style"`
	File       string             `yaml:"file"`
	UnitsPerEm float64            `yaml:"units_per_em"`
	Advance    float64            `yaml:"advance"`
	Advances   map[string]float64 `yaml:"advances"`
}

// FontMap resolves (family, style) pairs to font handles. Lookups are
// read-mostly and cheap to repeat.
type FontMap struct {
	fonts map[fontKey]*Font
}

type fontKey struct {
	family string
	style  string
}

// NewFontMap creates an empty font map.
func NewFontMap() *FontMap {
	return &FontMap{fonts: make(map[fontKey]*Font)}
}

// LoadFontMap reads a YAML font manifest from the given path.
func LoadFontMap(path string) (*FontMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.NewMissingFileError(path)
	}
	return ParseFontMap(data)
}

// ParseFontMap parses a YAML font manifest.
func ParseFontMap(data []byte) (*FontMap, error) {
	var manifest fontManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("invalid font manifest: %w", err)
	}

	fm := NewFontMap()
	for _, entry := range manifest.Fonts {
		if entry.Family == "" {
			return nil, fmt.Errorf("font manifest entry without a family name")
		}
		style := entry.Style
		if style == "" {
			style = "Regular"
		}
		unitsPerEm := entry.UnitsPerEm
		if unitsPerEm == 0 {
			unitsPerEm = 1000
		}
		advance := entry.Advance
		if advance == 0 {
			advance = 600
		}
		fm.Add(&Font{
			Family:     entry.Family,
			Style:      style,
			File:       entry.File,
			UnitsPerEm: unitsPerEm,
			Advance:    advance,
			Advances:   entry.Advances,
		})
	}
	return fm, nil
}

// Add registers a font, replacing any previous font with the same family
// and style.
func (fm *FontMap) Add(f *Font) {
	fm.fonts[fontKey{f.Family, f.Style}] = f
}

// Get resolves a family and style to a font handle.
func (fm *FontMap) Get(family, style string) (*Font, bool) {
	f, ok := fm.fonts[fontKey{family, style}]
	return f, ok
}

// MetricsShaper shapes text from the manifest's advance tables alone. It
// maps each rune to a glyph id directly and advances the pen by the
// rune's advance width; there is no kerning or ligature substitution.
type MetricsShaper struct{}

// Shape implements Shaper.
func (MetricsShaper) Shape(font *Font, line string) []ShapedGlyph {
	var glyphs []ShapedGlyph
	for _, r := range line {
		advance := font.Advance
		if a, ok := font.Advances[string(r)]; ok {
			advance = a
		}
		glyphs = append(glyphs, ShapedGlyph{
			ID:       uint32(r),
			XAdvance: advance,
		})
	}
	return glyphs
}
