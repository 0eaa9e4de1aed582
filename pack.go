package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"spriteatlas/config"
	"spriteatlas/pipeline"
)

// packOpts holds the pack flags. A flag only overrides the config file when
// it was set on the command line.
type packOpts struct {
	name          string   // atlas base name
	out           string   // output folder
	folders       []string // sprite folders, repeatable
	outputType    string   // json, toml, binary or template
	template      string   // template file for output type template
	maxSize       int      // largest sheet side
	rotate        bool     // allow 90° rotation
	padding       int      // gap between sprites
	algorithm     string   // MaxRects, Guillotine or Skyline
	variant       string   // heuristic variant
	sort          string   // processing order
	showExtension bool     // keep ".png" in frame names
	workers       int      // parallel decodes
}

func newPackCmd() *cobra.Command {
	var opts packOpts

	cmd := &cobra.Command{
		Use:   "pack [config]",
		Short: "Pack sprite folders into an atlas and its metadata",
		Long: `Pack collects the PNG files of every folder, packs them into the smallest
power-of-two sheet that fits and writes <out>/<name>.png plus the metadata.

The config file (JSON or TOML) is optional; flags override its values.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if len(args) == 1 {
				var err error
				if cfg, err = config.Load(args[0]); err != nil {
					return err
				}
			}
			opts.apply(cmd.Flags(), &cfg)
			return runPack(cmd.Context(), cmd.OutOrStdout(), cfg)
		},
	}

	d := config.Default()
	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "atlas base name")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output folder")
	cmd.Flags().StringArrayVarP(&opts.folders, "folder", "f", nil, "sprite folder (repeatable)")
	cmd.Flags().StringVarP(&opts.outputType, "output-type", "t", d.OutputType, "metadata format: json, toml, binary, template")
	cmd.Flags().StringVar(&opts.template, "template", "", "template file for --output-type template")
	cmd.Flags().IntVar(&opts.maxSize, "max-size", d.Options.MaxSize, "largest sheet side in pixels")
	cmd.Flags().BoolVar(&opts.rotate, "rotate", d.Options.Rotation, "allow 90° rotation")
	cmd.Flags().IntVar(&opts.padding, "padding", d.Options.Padding, "pixels between sprites")
	cmd.Flags().StringVar(&opts.algorithm, "algorithm", d.Options.Algorithm, "packing algorithm: MaxRects, Guillotine, Skyline")
	cmd.Flags().StringVar(&opts.variant, "variant", d.Options.Variant, "algorithm variant, e.g. BestAreaFit, BestShortSideFit, BottomLeft")
	cmd.Flags().StringVar(&opts.sort, "sort", d.Options.Sort, "processing order: area, perimeter, diff, minside, maxside, ratio")
	cmd.Flags().BoolVar(&opts.showExtension, "show-extension", d.Options.ShowExtension, "keep the file extension in frame names")
	cmd.Flags().IntVar(&opts.workers, "workers", d.Options.Workers, "parallel image decodes")

	return cmd
}

// apply copies every flag that was set onto cfg.
func (o *packOpts) apply(flags *pflag.FlagSet, cfg *config.Config) {
	set := flags.Changed
	if set("name") {
		cfg.Name = o.name
	}
	if set("out") {
		cfg.OutputPath = o.out
	}
	if set("folder") {
		cfg.Folders = o.folders
	}
	if set("output-type") {
		cfg.OutputType = o.outputType
	}
	if set("template") {
		cfg.TemplatePath = o.template
	}
	if set("max-size") {
		cfg.Options.MaxSize = o.maxSize
	}
	if set("rotate") {
		cfg.Options.Rotation = o.rotate
	}
	if set("padding") {
		cfg.Options.Padding = o.padding
	}
	if set("algorithm") {
		cfg.Options.Algorithm = o.algorithm
	}
	if set("variant") {
		cfg.Options.Variant = o.variant
	}
	if set("sort") {
		cfg.Options.Sort = o.sort
	}
	if set("show-extension") {
		cfg.Options.ShowExtension = o.showExtension
	}
	if set("workers") {
		cfg.Options.Workers = o.workers
	}
}

func runPack(ctx context.Context, w io.Writer, cfg config.Config) error {
	logger := loggerFromContext(ctx)
	logger.Infof("Packing %s from %d folder(s)", cfg.Name, len(cfg.Folders))
	prog := newProgress(logger)

	res, err := pipeline.Run(ctx, cfg, logger)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Packed %d sprites", res.Sprites))

	if res.Sprites == 0 {
		printWarning(w, "No PNG sprites found, wrote an empty 1x1 sheet")
	} else {
		printSuccess(w, "Packed %d sprites into %dx%d", res.Sprites, res.Width, res.Height)
	}
	printKeyValue(w, "Size", fmt.Sprintf("%dx%d", res.Width, res.Height))
	printKeyValue(w, "Utilization", fmt.Sprintf("%.2f%%", res.Used*100))
	printNumber(w, "Sprites", res.Sprites)
	printNumber(w, "Rotated", res.Rotated)
	printKeyValue(w, "Algorithm", cfg.Options.Algorithm+"/"+cfg.Options.Variant)
	printFile(w, res.SheetPath)
	printFile(w, res.MetadataPath)
	return nil
}
