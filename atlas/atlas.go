// Package atlas composites packed sprites into a single sheet and records
// where each one landed.
//
// A rotated sprite is stored turned 90 degrees clockwise; its frame reports
// the footprint inside the sheet. Extract reverses both steps.
package atlas

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"spriteatlas/errors"
	"spriteatlas/rectpack"
)

// Item is a sprite ready for packing: a unique name plus its pixels.
type Item struct {
	Name      string
	Image     *image.NRGBA
	Rotatable bool
}

// Size returns the packer view of the item. The ID is the item's index.
func (it *Item) Size(id int) rectpack.Size {
	b := it.Image.Bounds()
	size := rectpack.NewSizeID(id, b.Dx(), b.Dy())
	size.Rotatable = it.Rotatable
	return size
}

// Sizes converts items to packer input, in order.
func Sizes(items []Item) []rectpack.Size {
	sizes := make([]rectpack.Size, len(items))
	for i := range items {
		sizes[i] = items[i].Size(i)
	}
	return sizes
}

// Composite draws every item at its placement on a transparent width x height
// canvas. rects[i] must be the placement of items[i].
//
// Pixels are copied verbatim, so colour values under zero alpha survive.
func Composite(width, height int, rects []rectpack.Rect, items []Item) (*image.NRGBA, error) {
	if width < 1 || height < 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "canvas must be at least 1x1 (given %dx%d)", width, height)
	}
	if len(rects) != len(items) {
		return nil, errors.New(errors.ErrCodeGeometryViolation, "%d placements for %d items", len(rects), len(items))
	}
	canvas := imaging.New(width, height, color.NRGBA{})
	bounds := rectpack.NewRect(0, 0, width, height)
	for i, r := range rects {
		item := &items[i]
		if item.Image == nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "item %q has no image", item.Name)
		}
		if !bounds.ContainsRect(r) || r.IsEmpty() {
			return nil, errors.New(errors.ErrCodeGeometryViolation,
				"placement %s of %q is outside the %dx%d canvas", r.String(), item.Name, width, height)
		}
		src := item.Image
		if r.Rotated {
			if !item.Rotatable {
				return nil, errors.New(errors.ErrCodeGeometryViolation, "%q was rotated but is not rotatable", item.Name)
			}
			src = imaging.Rotate270(src)
		}
		if b := src.Bounds(); b.Dx() != r.Width || b.Dy() != r.Height {
			return nil, errors.New(errors.ErrCodeGeometryViolation,
				"placement %s of %q does not match its %dx%d footprint", r.String(), item.Name, b.Dx(), b.Dy())
		}
		blit(canvas, src, r.X, r.Y)
	}
	return canvas, nil
}

// blit copies src row by row into dst with its top-left corner at (x, y).
// The caller guarantees the destination area lies within dst.
func blit(dst, src *image.NRGBA, x, y int) {
	b := src.Bounds()
	n := b.Dx() * 4
	for j := 0; j < b.Dy(); j++ {
		si := src.PixOffset(b.Min.X, b.Min.Y+j)
		di := dst.PixOffset(x, y+j)
		copy(dst.Pix[di:di+n], src.Pix[si:si+n])
	}
}

// Extract cuts a frame out of a sheet and turns it back to the orientation
// it had before packing.
func Extract(sheet image.Image, f Frame) (*image.NRGBA, error) {
	r := image.Rect(f.X, f.Y, f.X+f.Width, f.Y+f.Height).Add(sheet.Bounds().Min)
	if f.Width < 1 || f.Height < 1 || !r.In(sheet.Bounds()) {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"frame [%d, %d, %d, %d] is outside the %dx%d sheet",
			f.X, f.Y, f.Width, f.Height, sheet.Bounds().Dx(), sheet.Bounds().Dy())
	}
	sprite := imaging.Crop(sheet, r)
	if f.Rotated {
		sprite = imaging.Rotate90(sprite)
	}
	return sprite, nil
}
