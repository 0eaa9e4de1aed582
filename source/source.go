// Package source finds sprite files and decodes them.
package source

import (
	"context"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/maruel/natural"
	"golang.org/x/sync/errgroup"

	"spriteatlas/atlas"
	"spriteatlas/errors"
)

// Sprite is a sprite file and the name it gets in the atlas.
type Sprite struct {
	Path string
	Name string
}

// Walk returns every regular file below root, depth first, using an explicit
// stack of directories. Symlinked directories are not followed.
func Walk(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "folder %s", root)
		}
		return nil, errors.Wrap(errors.ErrCodeIO, err, "folder %s", root)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s is not a folder", root)
	}

	var files []string
	stack := []string{root}
	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeIO, err, "read folder %s", dir)
		}
		var dirs []string
		for _, e := range entries {
			p := filepath.Join(dir, e.Name())
			switch {
			case e.IsDir():
				dirs = append(dirs, p)
			case e.Type().IsRegular():
				files = append(files, p)
			case e.Type()&fs.ModeSymlink != 0:
				if st, err := os.Stat(p); err == nil && st.Mode().IsRegular() {
					files = append(files, p)
				}
			}
		}
		// Push in reverse so subfolders pop in name order
		for i := len(dirs) - 1; i >= 0; i-- {
			stack = append(stack, dirs[i])
		}
	}
	return files, nil
}

// IsPNG reports whether path has a .png extension, in any case.
func IsPNG(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".png")
}

// Name derives the atlas name of a sprite file: the path with forward
// slashes, without the extension unless showExtension is set.
func Name(path string, showExtension bool) string {
	if !showExtension {
		path = strings.TrimSuffix(path, filepath.Ext(path))
	}
	return filepath.ToSlash(path)
}

// Collect walks folders in order and keeps the PNG files. Within a folder the
// files are sorted naturally ("a2" before "a10"). Two files mapping to the
// same name is an error.
func Collect(folders []string, showExtension bool) ([]Sprite, error) {
	var sprites []Sprite
	seen := make(map[string]string)
	for _, folder := range folders {
		files, err := Walk(folder)
		if err != nil {
			return nil, err
		}
		var pngs []string
		for _, f := range files {
			if IsPNG(f) {
				pngs = append(pngs, f)
			}
		}
		sort.Sort(natural.StringSlice(pngs))
		for _, p := range pngs {
			name := Name(p, showExtension)
			if prev, ok := seen[name]; ok {
				return nil, errors.New(errors.ErrCodeDuplicateName, "%s and %s both map to sprite name %q", prev, p, name)
			}
			seen[name] = p
			sprites = append(sprites, Sprite{Path: p, Name: name})
		}
	}
	return sprites, nil
}

// Load decodes sprites with at most workers decodes in flight and returns
// them as atlas items in sprite order. Every image is converted to NRGBA.
// The first failure cancels the remaining decodes.
func Load(ctx context.Context, sprites []Sprite, workers int) ([]atlas.Item, error) {
	items := make([]atlas.Item, len(sprites))
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, s := range sprites {
		i, s := i, s
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := decode(s.Path)
			if err != nil {
				return err
			}
			items[i] = atlas.Item{Name: s.Name, Image: img}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

func decode(path string) (*image.NRGBA, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "open %s", path)
	}
	defer file.Close()
	img, err := imaging.Decode(file)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecode, err, "decode %s", path)
	}
	return imaging.Clone(img), nil
}
