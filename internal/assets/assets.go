// Package assets loads the scene images.
package assets

import (
	"context"
	"image"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/ayusman/heroswap/internal/errors"
	"github.com/ayusman/heroswap/internal/raster"
)

// Source opens named assets.
type Source interface {
	Open(name string) (io.ReadCloser, error)
}

// DirSource reads assets from a directory on disk.
type DirSource string

// Open opens name inside the directory.
func (d DirSource) Open(name string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(string(d), name))
}

// FSSource reads assets from an fs.FS, such as an embed.FS or fstest.MapFS.
type FSSource struct {
	FS fs.FS
}

// Open opens name in the file system.
func (s FSSource) Open(name string) (io.ReadCloser, error) {
	return s.FS.Open(name)
}

// Load decodes every named asset concurrently. The result is keyed by name.
// The first failure cancels the rest and is returned as an ASSET_LOAD_FAILURE
// naming the asset.
func Load(ctx context.Context, src Source, names ...string) (map[string]image.Image, error) {
	images := make([]image.Image, len(names))
	g, ctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := LoadOne(src, name)
			if err != nil {
				return err
			}
			images[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]image.Image, len(names))
	for i, name := range names {
		out[name] = images[i]
	}
	return out, nil
}

// LoadOne opens and decodes a single asset.
func LoadOne(src Source, name string) (image.Image, error) {
	rc, err := src.Open(name)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeAssetLoad, err, "Failed to load %s", name)
	}
	defer rc.Close()

	img, err := raster.Decode(rc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeAssetLoad, err, "Failed to load %s", name)
	}
	return img, nil
}
