package texture

import (
	"os"
	"path/filepath"
	"strings"
)

// extRank orders candidate files sharing a stem. Higher wins: a sheet
// descriptor beats the image it points at, and formats with alpha beat
// those without.
var extRank = map[string]int{
	".json": 6,
	".png":  5,
	".webp": 4,
	".tga":  3,
	".gif":  2,
	".bmp":  1,
	".jpg":  0,
	".jpeg": 0,
}

// Index maps lowercase source stems to filesystem paths under an asset root.
type Index struct {
	entries map[string]string // stem.lower() → full path
}

// BuildIndex walks root for decodable sources, including .lz4-compressed
// ones. A missing root yields an empty index.
func BuildIndex(root string) *Index {
	idx := &Index{entries: make(map[string]string)}
	if root == "" {
		return idx
	}

	filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		stem, ext := splitSource(path)
		if _, ok := extRank[ext]; !ok {
			return nil
		}
		existing, exists := idx.entries[stem]
		if !exists {
			idx.entries[stem] = path
			return nil
		}
		if _, prev := splitSource(existing); extRank[ext] > extRank[prev] {
			idx.entries[stem] = path
		}
		return nil
	})

	return idx
}

// ResolvePath returns the filesystem path for a source name, or ("", false).
// Directories and extensions in name are ignored.
func (idx *Index) ResolvePath(name string) (string, bool) {
	stem, _ := splitSource(strings.ReplaceAll(name, "\\", "/"))
	path, ok := idx.entries[stem]
	return path, ok
}

// Len returns the number of indexed sources.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// splitSource returns the lowercase stem and format extension of a path,
// looking through a trailing .lz4.
func splitSource(path string) (stem, ext string) {
	base := strings.ToLower(filepath.Base(filepath.FromSlash(path)))
	base = strings.TrimSuffix(base, lz4Ext)
	ext = filepath.Ext(base)
	return strings.TrimSuffix(base, ext), ext
}
