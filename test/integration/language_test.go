package integration

import (
	"strings"
	"testing"
)

func TestTitleSlide(t *testing.T) {
	app, _ := newTestApp(t)

	scene := compileSource(t, app, `
font_family = "Cantarell"
font_style = "Bold"
font_size = 40pt
line_height = 48pt
text_align = "left"
color = #ffffff
put t("Hello")
`)

	elements := sceneElements(t, scene)
	if len(elements) != 1 {
		t.Fatalf("expected 1 element, got %d", len(elements))
	}
	text := elements[0]
	if text["type"] != "text" || text["fontFamily"] != "Cantarell" || text["fontStyle"] != "Bold" {
		t.Errorf("text element: got %v", text)
	}
	if text["fontSize"].(float64) != 40 {
		t.Errorf("font size: got %v", text["fontSize"])
	}

	// Five glyphs at the Bold advance of 650 units, 26pt per glyph.
	glyphs := text["glyphs"].([]interface{})
	if len(glyphs) != 5 {
		t.Fatalf("expected 5 glyphs, got %d", len(glyphs))
	}
	second := glyphs[1].(map[string]interface{})
	if second["x"].(float64) != 26 {
		t.Errorf("second glyph x: got %v", second["x"])
	}

	anchor := scene["anchor"].([]interface{})
	if anchor[0].(float64) != 130 || anchor[1].(float64) != 0 {
		t.Errorf("anchor: got %v", anchor)
	}
}

func TestLayoutComposition(t *testing.T) {
	app, _ := newTestApp(t)

	scene := compileSource(t, app, `
color = #336699
put fill_rectangle((100pt, 20pt))
put fill_rectangle((50pt, 10pt))
`)

	elements := sceneElements(t, scene)
	if len(elements) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(elements))
	}

	// The second rectangle continues from the first one's anchor.
	x, y := offsetOf(elements[1])
	if x != 100 || y != 20 {
		t.Errorf("second offset: got (%v, %v)", x, y)
	}

	anchor := scene["anchor"].([]interface{})
	if anchor[0].(float64) != 150 || anchor[1].(float64) != 30 {
		t.Errorf("anchor: got %v", anchor)
	}

	bb := scene["boundingBox"].(map[string]interface{})
	size := bb["size"].([]interface{})
	if size[0].(float64) != 150 || size[1].(float64) != 30 {
		t.Errorf("bounding box size: got %v", size)
	}
}

func TestFitScalesABlock(t *testing.T) {
	app, _ := newTestApp(t)

	scene := compileSource(t, app, `
color = #ffffff
logo = {
  put fill_rectangle((200pt, 100pt))
}
put fit(logo, (20pt, 20pt))
`)

	elements := sceneElements(t, scene)
	if len(elements) != 1 {
		t.Fatalf("expected 1 element, got %d", len(elements))
	}
	scaled := elements[0]
	if scaled["type"] != "scaled" {
		t.Fatalf("element type: got %v", scaled["type"])
	}
	if scaled["factor"].(float64) != 0.1 {
		t.Errorf("factor: got %v", scaled["factor"])
	}
	inner := scaled["elements"].([]interface{})
	if len(inner) != 1 || inner[0].(map[string]interface{})["type"] != "fillPolygon" {
		t.Errorf("inner elements: got %v", inner)
	}

	// The scaled frame's anchor carries through to the document.
	anchor := scene["anchor"].([]interface{})
	if anchor[0].(float64) != 20 || anchor[1].(float64) != 10 {
		t.Errorf("anchor: got %v", anchor)
	}
}

func TestUserFunctionsCompose(t *testing.T) {
	app, _ := newTestApp(t)

	scene := compileSource(t, app, `
color = #ff0000
function box(w) {
  put fill_rectangle((w, w / 2))
}
put box(100pt)
put box(50pt)
`)

	elements := sceneElements(t, scene)
	if len(elements) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(elements))
	}
	x, y := offsetOf(elements[1])
	if x != 100 || y != 50 {
		t.Errorf("second box offset: got (%v, %v)", x, y)
	}

	anchor := scene["anchor"].([]interface{})
	if anchor[0].(float64) != 150 || anchor[1].(float64) != 75 {
		t.Errorf("anchor: got %v", anchor)
	}
}

func TestCanvasFractionUnits(t *testing.T) {
	app, _ := newTestApp(t)

	scene := compileSource(t, app, `
color = #000000
put fill_rectangle((0.5w, 0.25h))
`)

	bb := scene["boundingBox"].(map[string]interface{})
	size := bb["size"].([]interface{})
	if size[0].(float64) != 960 || size[1].(float64) != 270 {
		t.Errorf("bounding box size: got %v", size)
	}
}

func TestImportChain(t *testing.T) {
	app, s := newTestApp(t)

	if _, err := s.CreateDocument("lib.base", "unit = 4pt\n", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateDocument("lib.theme",
		"import lib.base\naccent = #123456\nthickness = unit * 2\n", ""); err != nil {
		t.Fatal(err)
	}

	scene := compileSource(t, app, `
import lib.theme
color = accent
line_width = thickness
put line((10pt, 0pt))
`)

	elements := sceneElements(t, scene)
	stroke := elements[0]
	if stroke["type"] != "strokePolygon" {
		t.Fatalf("element type: got %v", stroke["type"])
	}
	if stroke["lineWidth"].(float64) != 8 {
		t.Errorf("line width: got %v", stroke["lineWidth"])
	}
}

func TestCompileErrors(t *testing.T) {
	app, _ := newTestApp(t)

	tests := []struct {
		name   string
		source string
		substr string
	}{
		{"rebinding", "x = 1\nx = 2\n", "already defined"},
		{"put non-frame", "put 42\n", "'put' needs a frame"},
		{"incomplete expression", "x = 1pt +\n", "expected an expression"},
		{"unknown variable", "return nope\n", "variable 'nope' does not exist"},
		{"dimension mismatch", "x = 1pt + 2\n", "cannot apply '+'"},
		{"unknown import", "import no.such.module\n", "could not be loaded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errObj := compileExpectError(t, app, tt.source)
			msg, _ := errObj["message"].(string)
			if !strings.Contains(msg, tt.substr) {
				t.Errorf("error %q does not contain %q", msg, tt.substr)
			}
		})
	}
}

func TestLexicalErrorHasExcerpt(t *testing.T) {
	app, _ := newTestApp(t)

	errObj := compileExpectError(t, app, "title = \"Hello\nrest = 1\n")
	if errObj["excerpt"] == nil {
		t.Fatal("expected a source excerpt")
	}
	excerpt := errObj["excerpt"].(string)
	if !strings.Contains(excerpt, "1 | ") || !strings.Contains(excerpt, "^") {
		t.Errorf("excerpt: got %q", excerpt)
	}
}
