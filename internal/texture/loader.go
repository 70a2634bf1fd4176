package texture

import (
	"bufio"
	"context"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"time"

	"github.com/ftrvxmtrx/tga"
	"github.com/juju/errors"
	"github.com/juju/loggo"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/webp"

	"sprite-assets/internal/assets"
)

var logger = loggo.GetLogger("sprites.texture")

// decoders is keyed by extension rather than sniffed: tga registers an
// empty magic string with the image package and would shadow the rest.
var decoders = map[string]func(io.Reader) (image.Image, error){
	".png":  png.Decode,
	".jpg":  jpeg.Decode,
	".jpeg": jpeg.Decode,
	".gif":  gif.Decode,
	".bmp":  bmp.Decode,
	".webp": webp.Decode,
	".tga":  tga.Decode,
}

// Decoder fetches sources from disk or HTTP and decodes them into
// textures and sprite sheets.
type Decoder struct {
	root   string
	index  *Index
	client *http.Client
}

// NewDecoder creates a decoder resolving relative sources against root,
// falling back to index stem lookups. A zero timeout disables the HTTP
// timeout.
func NewDecoder(root string, index *Index, timeout time.Duration) *Decoder {
	return &Decoder{
		root:   root,
		index:  index,
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch loads source and returns a *Texture or, for .json sheet
// descriptors, a *Sheet.
func (d *Decoder) Fetch(ctx context.Context, alias, source string) (assets.Resource, error) {
	location, err := d.resolve(source)
	if err != nil {
		return nil, errors.Trace(err)
	}
	logger.Debugf("fetching %q from %s", alias, location)

	if _, ext := splitSource(locationPath(location)); ext == ".json" {
		return d.loadSheet(ctx, alias, source, location)
	}
	img, err := d.loadImage(ctx, location)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &Texture{Alias: alias, Source: source, Image: img}, nil
}

// loadImage reads and decodes the image at a resolved location.
func (d *Decoder) loadImage(ctx context.Context, location string) (*image.NRGBA, error) {
	_, ext := splitSource(locationPath(location))
	decode, ok := decoders[ext]
	if !ok {
		return nil, errors.NotSupportedf("texture: image format %q", ext)
	}

	rc, err := d.open(ctx, location)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	img, err := decode(bufio.NewReader(rc))
	if err != nil {
		return nil, errors.Annotatef(err, "texture: decode %s", location)
	}
	return toNRGBA(img), nil
}

// toNRGBA converts any image to NRGBA format with its origin at (0, 0).
func toNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	if n, ok := src.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
