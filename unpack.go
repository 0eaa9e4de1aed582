package main

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"spriteatlas/atlas"
	"spriteatlas/errors"
	"spriteatlas/output"
	"spriteatlas/source"
)

func newUnpackCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "unpack <metadata>",
		Short: "Extract every frame of an atlas back into PNG files",
		Long: `Unpack reads atlas metadata (.json, .toml or .bin), opens the sheet it
refers to and writes each frame, turned back to its original orientation,
to <out>/<frame name>.png.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUnpack(cmd.Context(), cmd.OutOrStdout(), args[0], out)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output folder (default: metadata path without extension)")
	return cmd
}

func runUnpack(ctx context.Context, w io.Writer, metaPath, out string) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	data, err := os.ReadFile(metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrap(errors.ErrCodeFileNotFound, err, "metadata %s", metaPath)
		}
		return errors.Wrap(errors.ErrCodeIO, err, "read metadata %s", metaPath)
	}
	meta, err := output.Decode(data, filepath.Ext(metaPath))
	if err != nil {
		return fmt.Errorf("%s: %w", metaPath, err)
	}

	sheetPath := resolveSheet(metaPath, meta.SheetPath)
	sheet, err := openSheet(sheetPath)
	if err != nil {
		return err
	}
	logger.Info("opened sheet", "path", sheetPath, "size", fmt.Sprintf("%dx%d", sheet.Bounds().Dx(), sheet.Bounds().Dy()), "frames", meta.Len())

	if out == "" {
		out = strings.TrimSuffix(metaPath, filepath.Ext(metaPath))
	}
	for _, nf := range meta.Frames() {
		if err := ctx.Err(); err != nil {
			return err
		}
		img, err := atlas.Extract(sheet, nf.Frame)
		if err != nil {
			return fmt.Errorf("frame %q: %w", nf.Name, err)
		}
		dst := framePath(out, nf.Name)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "create folder for %s", dst)
		}
		if err := imaging.Save(img, dst); err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "write %s", dst)
		}
		logger.Debug("extracted frame", "name", nf.Name, "rotated", nf.Rotated, "path", dst)
	}
	prog.done(fmt.Sprintf("Unpacked %d frames", meta.Len()))

	printSuccess(w, "Unpacked %d frames from %s", meta.Len(), sheetPath)
	printFile(w, out)
	return nil
}

// resolveSheet returns the recorded sheet path if it exists, otherwise the
// sheet's file name next to the metadata file (the atlas was moved).
func resolveSheet(metaPath, recorded string) string {
	p := filepath.FromSlash(recorded)
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return filepath.Join(filepath.Dir(metaPath), path.Base(recorded))
}

func openSheet(p string) (image.Image, error) {
	f, err := os.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "sheet %s", p)
		}
		return nil, errors.Wrap(errors.ErrCodeIO, err, "open sheet %s", p)
	}
	defer f.Close()
	img, err := imaging.Decode(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecode, err, "decode sheet %s", p)
	}
	return img, nil
}

// framePath maps a frame name to a file below dir. The name is cleaned as a
// rooted slash path so it can never climb out of dir, volume colons are
// dropped, and ".png" is appended when the name has no PNG extension.
func framePath(dir, name string) string {
	rel := strings.TrimPrefix(path.Clean("/"+name), "/")
	rel = strings.ReplaceAll(rel, ":", "")
	if rel == "" {
		rel = "_"
	}
	if !source.IsPNG(rel) {
		rel += ".png"
	}
	return filepath.Join(dir, filepath.FromSlash(rel))
}
