package texture

import (
	"context"
	"encoding/json"
	"image"
	"io"

	"github.com/juju/errors"
)

// sheetFile matches the TexturePacker/Pixi JSON layout. Frames may be a
// hash keyed by frame name or an array of entries carrying a filename.
type sheetFile struct {
	Frames json.RawMessage `json:"frames"`
	Meta   struct {
		Image string `json:"image"`
	} `json:"meta"`
}

type sheetFrame struct {
	Filename string `json:"filename"`
	Frame    struct {
		X int `json:"x"`
		Y int `json:"y"`
		W int `json:"w"`
		H int `json:"h"`
	} `json:"frame"`
}

func (f sheetFrame) rect() image.Rectangle {
	return image.Rect(f.Frame.X, f.Frame.Y, f.Frame.X+f.Frame.W, f.Frame.Y+f.Frame.H)
}

// parseSheet decodes a sheet descriptor into its image reference and
// frame rectangles.
func parseSheet(r io.Reader) (string, map[string]image.Rectangle, error) {
	var file sheetFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return "", nil, errors.Annotate(err, "texture: parse sheet")
	}
	if file.Meta.Image == "" {
		return "", nil, errors.NotValidf("texture: sheet without meta.image")
	}

	frames := make(map[string]image.Rectangle)
	if len(file.Frames) == 0 || string(file.Frames) == "null" {
		return file.Meta.Image, frames, nil
	}

	var byName map[string]sheetFrame
	if err := json.Unmarshal(file.Frames, &byName); err == nil {
		for name, f := range byName {
			frames[name] = f.rect()
		}
		return file.Meta.Image, frames, nil
	}

	var list []sheetFrame
	if err := json.Unmarshal(file.Frames, &list); err != nil {
		return "", nil, errors.Annotate(err, "texture: parse sheet frames")
	}
	for i, f := range list {
		if f.Filename == "" {
			return "", nil, errors.NotValidf("texture: frame %d without filename", i)
		}
		frames[f.Filename] = f.rect()
	}
	return file.Meta.Image, frames, nil
}

// loadSheet reads a descriptor, then the image it references, and checks
// every frame lies inside that image.
func (d *Decoder) loadSheet(ctx context.Context, alias, source, location string) (*Sheet, error) {
	rc, err := d.open(ctx, location)
	if err != nil {
		return nil, errors.Trace(err)
	}
	ref, frames, err := parseSheet(rc)
	rc.Close()
	if err != nil {
		return nil, errors.Annotatef(err, "texture: sheet %s", location)
	}

	imgLocation, err := relative(location, ref)
	if err != nil {
		return nil, errors.Trace(err)
	}
	img, err := d.loadImage(ctx, imgLocation)
	if err != nil {
		return nil, errors.Trace(err)
	}

	bounds := img.Bounds()
	for name, r := range frames {
		if r.Empty() || !r.In(bounds) {
			return nil, errors.NotValidf("texture: frame %q %v outside %v in %s", name, r, bounds, location)
		}
	}

	return &Sheet{
		Texture: Texture{Alias: alias, Source: source, Image: img},
		Frames:  frames,
	}, nil
}
