package texture

import (
	"image"
	"sort"
)

// Texture is a single decoded image stored under an alias.
type Texture struct {
	Alias  string
	Source string
	Image  *image.NRGBA
}

// Bounds returns the image bounds.
func (t *Texture) Bounds() image.Rectangle {
	return t.Image.Bounds()
}

// Sheet is a texture cut into named frames.
type Sheet struct {
	Texture
	Frames map[string]image.Rectangle
}

// FrameNames returns the frame names, sorted.
func (s *Sheet) FrameNames() []string {
	names := make([]string, 0, len(s.Frames))
	for name := range s.Frames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Frame returns the named frame as a view into the sheet image.
func (s *Sheet) Frame(name string) (*image.NRGBA, bool) {
	r, ok := s.Frames[name]
	if !ok {
		return nil, false
	}
	return s.Image.SubImage(r).(*image.NRGBA), true
}
