package resources

import (
	"bytes"
	"encoding/xml"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/prislang/pris/pkg/types"
)

// VectorImage is a decoded vector image handle with its intrinsic size in
// canonical units.
type VectorImage struct {
	Path   string
	Width  float64
	Height float64
}

// LoadSVG opens an SVG file and extracts its intrinsic size from the root
// element's width/height attributes, falling back to the viewBox.
func LoadSVG(path string) (*VectorImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.NewMissingFileError(path)
	}
	w, h, err := svgSize(data)
	if err != nil {
		return nil, types.NewMissingFileError(path)
	}
	return &VectorImage{Path: path, Width: w, Height: h}, nil
}

// svgSize scans the XML for the root svg element and reads its size.
func svgSize(data []byte) (w, h float64, err error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, 0, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "svg" {
			return 0, 0, errNotSVG
		}

		var widthAttr, heightAttr, viewBox string
		for _, attr := range start.Attr {
			switch attr.Name.Local {
			case "width":
				widthAttr = attr.Value
			case "height":
				heightAttr = attr.Value
			case "viewBox":
				viewBox = attr.Value
			}
		}

		if widthAttr != "" && heightAttr != "" {
			w, werr := parseLength(widthAttr)
			h, herr := parseLength(heightAttr)
			if werr == nil && herr == nil {
				return w, h, nil
			}
		}
		if viewBox != "" {
			fields := strings.Fields(viewBox)
			if len(fields) == 4 {
				w, werr := strconv.ParseFloat(fields[2], 64)
				h, herr := strconv.ParseFloat(fields[3], 64)
				if werr == nil && herr == nil {
					return w, h, nil
				}
			}
		}
		return 0, 0, errNoSize
	}
	return 0, 0, errNotSVG
}

var (
	errNotSVG = xmlError("not an svg document")
	errNoSize = xmlError("svg document has no usable size")
)

type xmlError string

func (e xmlError) Error() string { return string(e) }

// parseLength parses an SVG length, stripping a px or pt suffix.
func parseLength(s string) (float64, error) {
	s = strings.TrimSuffix(strings.TrimSuffix(s, "px"), "pt")
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
