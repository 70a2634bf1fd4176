package batch

import (
	"encoding/json"
	"os"

	"github.com/juju/errors"
)

// ManifestEntry represents one exported asset in the output manifest.
type ManifestEntry struct {
	Bundle string   `json:"bundle"`
	Alias  string   `json:"alias"`
	Kind   string   `json:"kind"`
	Images []string `json:"images"`
}

// WriteManifest writes the successful results as JSON to path.
func WriteManifest(path string, results []Result) error {
	entries := make([]ManifestEntry, 0, len(results))
	for _, r := range results {
		if !r.Success {
			continue
		}
		entries = append(entries, ManifestEntry{
			Bundle: r.Bundle,
			Alias:  r.Alias,
			Kind:   r.Kind,
			Images: r.Images,
		})
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(os.WriteFile(path, data, 0644))
}
