package manifest

import (
	"os"
	"path"
	"strings"

	"github.com/juju/collections/set"
	"github.com/juju/errors"
	"gopkg.in/yaml.v3"

	"sprite-assets/internal/assets"
)

// Parse reads a YAML manifest and returns its bundles in file order.
func Parse(manifestPath string) ([]assets.BundleDescriptor, error) {
	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, errors.Annotatef(err, "manifest: read %s", manifestPath)
	}
	bundles, err := Decode(raw)
	if err != nil {
		return nil, errors.Annotatef(err, "manifest: parse %s", manifestPath)
	}
	return bundles, nil
}

// Decode parses manifest YAML and validates it.
func Decode(raw []byte) ([]assets.BundleDescriptor, error) {
	var file File
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, errors.Trace(err)
	}

	names := set.NewStrings()
	for i := range file.Bundles {
		b := &file.Bundles[i]
		if b.Name == "" {
			return nil, errors.NotValidf("bundle %d without name", i)
		}
		if names.Contains(b.Name) {
			return nil, errors.NotValidf("duplicate bundle %q", b.Name)
		}
		names.Add(b.Name)

		aliases := set.NewStrings()
		for j := range b.Assets {
			a := &b.Assets[j]
			if a.Alias == "" || a.Source == "" {
				return nil, errors.NotValidf("bundle %q asset %d without alias or src", b.Name, j)
			}
			if aliases.Contains(a.Alias) {
				return nil, errors.NotValidf("bundle %q duplicate alias %q", b.Name, a.Alias)
			}
			aliases.Add(a.Alias)
			a.Source = withBase(file.BasePath, a.Source)
		}
	}
	return file.Bundles, nil
}

// Find returns the bundle called name.
func Find(bundles []assets.BundleDescriptor, name string) (assets.BundleDescriptor, error) {
	for _, b := range bundles {
		if b.Name == name {
			return b, nil
		}
	}
	return assets.BundleDescriptor{}, errors.NotFoundf("bundle %q", name)
}

func withBase(base, source string) string {
	if base == "" || strings.Contains(source, "://") || path.IsAbs(source) {
		return source
	}
	return path.Join(base, source)
}
