package stdlib

import (
	"github.com/prislang/pris/pkg/geom"
	"github.com/prislang/pris/pkg/resources"
	"github.com/prislang/pris/pkg/types"
)

// image loads a vector image and places it at its intrinsic size. The
// frame anchors at the top right so images can be adjoined side by side.
func image(res *resources.Manager, _ *types.Env, args []types.Value) (types.Value, error) {
	if err := validateArgs("image", []types.ValType{types.StrType}, args); err != nil {
		return types.Value{}, err
	}
	path := args[0].AsStr()

	img, err := res.Image(path)
	if err != nil {
		return types.Value{}, err
	}

	frame := geom.NewFrame()
	frame.PlaceElement(geom.Zero(), &geom.Image{
		Path:   img.Path,
		Width:  img.Width,
		Height: img.Height,
	})
	frame.UnionBoundingBox(geom.Sized(img.Width, img.Height))
	frame.SetAnchor(geom.Vec2{X: img.Width, Y: 0})

	return types.NewFrame(frame, nil), nil
}
