package texture

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/juju/errors"
	"github.com/pierrec/lz4"
)

const lz4Ext = ".lz4"

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// resolve turns a source locator into a URL or a filesystem path.
// Order: URL, absolute path, path under the root, index stem lookup.
func (d *Decoder) resolve(source string) (string, error) {
	if isURL(source) || filepath.IsAbs(source) {
		return source, nil
	}
	if d.root != "" {
		p := filepath.Join(d.root, filepath.FromSlash(source))
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	if d.index != nil {
		if p, ok := d.index.ResolvePath(source); ok {
			return p, nil
		}
	}
	return "", errors.NotFoundf("source %q", source)
}

// locationPath strips the query and fragment from URLs so the file
// extension can be read off the end.
func locationPath(location string) string {
	if !isURL(location) {
		return location
	}
	u, err := url.Parse(location)
	if err != nil {
		return location
	}
	return u.Path
}

// relative resolves ref against the location of a sheet descriptor.
func relative(base, ref string) (string, error) {
	if isURL(ref) || filepath.IsAbs(ref) {
		return ref, nil
	}
	if isURL(base) {
		u, err := url.Parse(base)
		if err != nil {
			return "", errors.Annotatef(err, "texture: parse %s", base)
		}
		r, err := url.Parse(ref)
		if err != nil {
			return "", errors.Annotatef(err, "texture: parse %s", ref)
		}
		return u.ResolveReference(r).String(), nil
	}
	return filepath.Join(filepath.Dir(base), filepath.FromSlash(ref)), nil
}

// open returns a reader for a resolved location, transparently
// decompressing .lz4 payloads.
func (d *Decoder) open(ctx context.Context, location string) (io.ReadCloser, error) {
	var rc io.ReadCloser
	if isURL(location) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
		if err != nil {
			return nil, errors.Annotatef(err, "texture: request %s", location)
		}
		resp, err := d.client.Do(req)
		if err != nil {
			return nil, errors.Annotatef(err, "texture: fetch %s", location)
		}
		if resp.StatusCode == http.StatusNotFound {
			resp.Body.Close()
			return nil, errors.NotFoundf("texture: fetch %s", location)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, errors.Errorf("texture: fetch %s: %s", location, resp.Status)
		}
		rc = resp.Body
	} else {
		f, err := os.Open(location)
		if os.IsNotExist(err) {
			return nil, errors.NotFoundf("texture: read %s", location)
		}
		if err != nil {
			return nil, errors.Annotatef(err, "texture: read %s", location)
		}
		rc = f
	}

	if !strings.HasSuffix(strings.ToLower(locationPath(location)), lz4Ext) {
		return rc, nil
	}
	return struct {
		io.Reader
		io.Closer
	}{lz4.NewReader(rc), rc}, nil
}
