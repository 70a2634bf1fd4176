package assets

import "context"

// Resource is a decoded asset owned by the backend once loaded.
// The loader never inspects it beyond the Sheet check.
type Resource any

// Sheet is implemented by resources that hold named sub-regions (frames).
type Sheet interface {
	FrameNames() []string
}

// AssetDescriptor pairs an alias with the locator it is fetched from.
// Sources are opaque to the loader and passed to the backend unmodified.
type AssetDescriptor struct {
	Alias  string `yaml:"alias" json:"alias"`
	Source string `yaml:"src" json:"src"`
}

// BundleDescriptor is a named, ordered group of assets loaded and
// unloaded together.
type BundleDescriptor struct {
	Name   string            `yaml:"name" json:"name"`
	Assets []AssetDescriptor `yaml:"assets" json:"assets"`
}

// Aliases returns the member aliases in declaration order.
func (b BundleDescriptor) Aliases() []string {
	out := make([]string, len(b.Assets))
	for i, a := range b.Assets {
		out[i] = a.Alias
	}
	return out
}

// Backend is the raw resource store the loader sits on top of.
// Has, Get and Evict must not block; the loader may call them while
// holding its own lock.
type Backend interface {
	// FetchAndDecode fetches the source and stores the decoded resource
	// under alias.
	FetchAndDecode(ctx context.Context, alias, source string) (Resource, error)
	Has(alias string) bool
	// Get is only valid when Has reports true.
	Get(alias string) Resource
	Evict(alias string)

	// AddGroup registers assets under a group name, replacing any
	// previous registration.
	AddGroup(name string, assets []AssetDescriptor)
	// LoadGroup resolves every member of a registered group.
	LoadGroup(ctx context.Context, name string) error
	// EvictGroup releases every member of the group.
	EvictGroup(name string)
}
