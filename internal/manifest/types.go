package manifest

import "sprite-assets/internal/assets"

// File is the on-disk layout of a bundle manifest.
type File struct {
	// BasePath is prefixed to relative sources that are not URLs.
	BasePath string                    `yaml:"base_path"`
	Bundles  []assets.BundleDescriptor `yaml:"bundles"`
}
