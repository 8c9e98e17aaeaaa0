package resources

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/prislang/pris/pkg/types"
)

func TestParseFontMap(t *testing.T) {
	manifest := `
fonts:
  - family: Cantarell
    style: Bold
    file: cantarell-bold.otf
    units_per_em: 2048
    advance: 1100
    advances:
      i: 500
  - family: Sans
`
	fm, err := ParseFontMap([]byte(manifest))
	if err != nil {
		t.Fatal(err)
	}

	font, ok := fm.Get("Cantarell", "Bold")
	if !ok {
		t.Fatal("Cantarell Bold not found")
	}
	if font.UnitsPerEm != 2048 || font.Advance != 1100 || font.Advances["i"] != 500 {
		t.Errorf("metrics: got %+v", font)
	}

	// Style, units per em, and advance fall back to defaults.
	font, ok = fm.Get("Sans", "Regular")
	if !ok {
		t.Fatal("Sans Regular not found")
	}
	if font.UnitsPerEm != 1000 || font.Advance != 600 {
		t.Errorf("defaults: got %+v", font)
	}

	if _, ok := fm.Get("Cantarell", "Regular"); ok {
		t.Error("unknown style resolved")
	}
}

func TestParseFontMapRequiresFamily(t *testing.T) {
	_, err := ParseFontMap([]byte("fonts:\n  - style: Bold\n"))
	if err == nil {
		t.Error("entry without a family accepted")
	}
}

func TestParseFontMapRejectsInvalidYAML(t *testing.T) {
	_, err := ParseFontMap([]byte("fonts: ["))
	if err == nil {
		t.Error("invalid manifest accepted")
	}
}

func TestMetricsShaper(t *testing.T) {
	font := &Font{
		Family:     "Sans",
		Style:      "Regular",
		UnitsPerEm: 1000,
		Advance:    600,
		Advances:   map[string]float64{"i": 200},
	}

	got := MetricsShaper{}.Shape(font, "hi")
	want := []ShapedGlyph{
		{ID: 'h', XAdvance: 600},
		{ID: 'i', XAdvance: 200},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("shape mismatch (-want +got):\n%s", diff)
	}

	if got := (MetricsShaper{}).Shape(font, ""); len(got) != 0 {
		t.Errorf("empty line: got %d glyphs", len(got))
	}
}

func TestSVGSize(t *testing.T) {
	tests := []struct {
		name string
		svg  string
		w, h float64
	}{
		{
			"attributes",
			`<svg xmlns="http://www.w3.org/2000/svg" width="24" height="12"/>`,
			24, 12,
		},
		{
			"px suffix",
			`<svg width="24px" height="12px"/>`,
			24, 12,
		},
		{
			"viewBox fallback",
			`<svg viewBox="0 0 640 480"/>`,
			640, 480,
		},
		{
			"attributes win over viewBox",
			`<svg width="10" height="20" viewBox="0 0 640 480"/>`,
			10, 20,
		},
		{
			"percentage width falls back to viewBox",
			`<svg width="100%" height="100%" viewBox="0 0 640 480"/>`,
			640, 480,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, err := svgSize([]byte(tt.svg))
			if err != nil {
				t.Fatal(err)
			}
			if w != tt.w || h != tt.h {
				t.Errorf("got %vx%v, want %vx%v", w, h, tt.w, tt.h)
			}
		})
	}
}

func TestSVGSizeErrors(t *testing.T) {
	if _, _, err := svgSize([]byte(`<html/>`)); err == nil {
		t.Error("non-svg root accepted")
	}
	if _, _, err := svgSize([]byte(`<svg/>`)); err == nil {
		t.Error("svg without a size accepted")
	}
	if _, _, err := svgSize([]byte(``)); err == nil {
		t.Error("empty document accepted")
	}
}

func TestLoadSVGMissingFile(t *testing.T) {
	_, err := LoadSVG(filepath.Join(t.TempDir(), "nope.svg"))
	var fileErr *types.MissingFileError
	if !errors.As(err, &fileErr) {
		t.Fatalf("expected a missing file error, got %v", err)
	}
}

func TestManagerImageCaching(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logo.svg")
	if err := os.WriteFile(path, []byte(`<svg width="5" height="5"/>`), 0o644); err != nil {
		t.Fatal(err)
	}

	m := NewManager(nil, nil)
	first, err := m.Image(path)
	if err != nil {
		t.Fatal(err)
	}
	if first.Width != 5 || first.Height != 5 {
		t.Errorf("size: got %vx%v", first.Width, first.Height)
	}

	// A second load reuses the decoded image even if the file is gone.
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	second, err := m.Image(path)
	if err != nil {
		t.Fatal(err)
	}
	if second != first {
		t.Error("image was not cached")
	}
}

func TestManagerImageRejectsNonSVG(t *testing.T) {
	m := NewManager(nil, nil)
	_, err := m.Image("photo.jpeg")
	if err == nil || err.Error() != "Cannot load 'photo.jpeg', only svg images are supported for now." {
		t.Errorf("got %v", err)
	}
}
