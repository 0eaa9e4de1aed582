// Package pipeline builds an atlas from a config.
//
// Run executes the stages strictly in order:
//
//  1. Collect: find the PNG sprites in the configured folders
//  2. Load: decode them (in parallel)
//  3. Pack: choose the power-of-two canvas and the placements
//  4. Composite: draw the sheet
//  5. Metadata: record one frame per sprite
//  6. Encode: PNG bytes plus metadata bytes, both in memory
//  7. Write: sheet and metadata, each through a temp file and rename
//
// Nothing touches the output directory before stage 7. If the metadata
// cannot be written, the sheet written just before it is removed again.
//
//	res, err := pipeline.Run(ctx, cfg, logger)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.SheetPath, res.MetadataPath)
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	"spriteatlas/atlas"
	"spriteatlas/config"
	"spriteatlas/errors"
	"spriteatlas/output"
	"spriteatlas/rectpack"
	"spriteatlas/source"
)

// Result describes a finished build.
type Result struct {
	SheetPath    string
	MetadataPath string
	Width        int
	Height       int
	Sprites      int
	Rotated      int
	// Used is the fraction of the sheet covered by sprites.
	Used  float64
	Stats Stats
}

// Stats contains per-stage durations.
type Stats struct {
	CollectTime   time.Duration
	LoadTime      time.Duration
	PackTime      time.Duration
	CompositeTime time.Duration
	EncodeTime    time.Duration
	WriteTime     time.Duration
}

// Total is the sum of all stage durations.
func (s Stats) Total() time.Duration {
	return s.CollectTime + s.LoadTime + s.PackTime + s.CompositeTime + s.EncodeTime + s.WriteTime
}

// Run validates cfg and builds the atlas it describes. A nil logger
// discards all output.
func Run(ctx context.Context, cfg config.Config, logger *log.Logger) (*Result, error) {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	format, err := output.FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	heuristic, err := cfg.Heuristic()
	if err != nil {
		return nil, err
	}
	sorter, err := cfg.Sorter()
	if err != nil {
		return nil, err
	}
	res := &Result{}

	// Stage 1: Collect
	start := time.Now()
	sprites, err := source.Collect(cfg.Folders, cfg.Options.ShowExtension)
	if err != nil {
		return nil, stageError("collect", err)
	}
	res.Stats.CollectTime = time.Since(start)
	for _, s := range sprites {
		logger.Debug("found sprite", "name", s.Name, "path", s.Path)
	}
	if len(sprites) == 0 {
		logger.Warn("no png sprites found", "folders", cfg.Folders)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 2: Load
	start = time.Now()
	items, err := source.Load(ctx, sprites, cfg.Workers())
	if err != nil {
		return nil, stageError("load", err)
	}
	for i := range items {
		items[i].Rotatable = cfg.Options.Rotation
	}
	res.Stats.LoadTime = time.Since(start)
	logger.Info("loaded sprites", "count", len(items), "duration", res.Stats.LoadTime)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 3: Pack
	start = time.Now()
	packed, err := rectpack.Pack(atlas.Sizes(items), cfg.Options.MaxSize,
		rectpack.WithHeuristic(heuristic),
		rectpack.WithPadding(cfg.Options.Padding),
		rectpack.WithSorter(sorter))
	if err != nil {
		return nil, stageError("pack", err)
	}
	res.Stats.PackTime = time.Since(start)
	res.Width, res.Height, res.Sprites, res.Used = packed.Width, packed.Height, len(items), packed.Used()
	for _, r := range packed.Rects {
		if r.Rotated {
			res.Rotated++
		}
	}
	logger.Info("packed sprites",
		"size", fmt.Sprintf("%dx%d", packed.Width, packed.Height),
		"heuristic", heuristic,
		"rotated", res.Rotated,
		"duration", res.Stats.PackTime)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 4: Composite
	start = time.Now()
	sheet, err := composite(logger, packed, items)
	if err != nil {
		return nil, err
	}
	res.Stats.CompositeTime = time.Since(start)

	// Stage 5: Metadata
	meta, err := atlas.FromPlacements(cfg.SheetRef(), items, packed.Rects)
	if err != nil {
		return nil, stageError("metadata", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 6: Encode
	start = time.Now()
	var png bytes.Buffer
	if err := imaging.Encode(&png, sheet, imaging.PNG); err != nil {
		return nil, stageError("encode", errors.Wrap(errors.ErrCodeEncode, err, "encode png sheet"))
	}
	artifact, err := output.Encode(format, meta, cfg)
	if err != nil {
		return nil, stageError("encode", err)
	}
	res.Stats.EncodeTime = time.Since(start)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 7: Write
	start = time.Now()
	res.SheetPath = cfg.SheetPath()
	res.MetadataPath = cfg.MetadataBase() + artifact.Ext
	if err := writeOutputs(cfg.OutputPath, res.SheetPath, png.Bytes(), res.MetadataPath, artifact.Data); err != nil {
		return nil, stageError("write", err)
	}
	res.Stats.WriteTime = time.Since(start)

	logger.Debug("stage timings",
		"collect", res.Stats.CollectTime,
		"load", res.Stats.LoadTime,
		"pack", res.Stats.PackTime,
		"composite", res.Stats.CompositeTime,
		"encode", res.Stats.EncodeTime,
		"write", res.Stats.WriteTime)
	logger.Info("wrote atlas", "sheet", res.SheetPath, "metadata", res.MetadataPath, "format", format.Name())
	return res, nil
}

// composite draws the sheet. A geometry violation means the packer produced
// a bad layout, so it is logged as a defect before the run aborts.
func composite(logger *log.Logger, packed *rectpack.Result, items []atlas.Item) (*image.NRGBA, error) {
	sheet, err := atlas.Composite(packed.Width, packed.Height, packed.Rects, items)
	if err != nil {
		if errors.Fatal(err) {
			logger.Error("packer produced an invalid layout", "size", fmt.Sprintf("%dx%d", packed.Width, packed.Height), "err", err)
		}
		return nil, stageError("composite", err)
	}
	return sheet, nil
}

// stageError prefixes err with the stage name. The code stays reachable
// through errors.Is.
func stageError(stage string, err error) error {
	return fmt.Errorf("%s: %w", stage, err)
}
