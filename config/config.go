// Package config holds the settings of one atlas build.
//
// A Config is a plain value: Load returns one, the CLI overlays flags on a
// copy, and the pipeline receives it by value. Nothing in this package keeps
// mutable state.
//
//	cfg, err := config.Load("atlas.toml")
//	if err != nil {
//	    return err
//	}
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"spriteatlas/errors"
	"spriteatlas/rectpack"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultMaxSize is the largest canvas side unless configured otherwise.
	DefaultMaxSize = 1024

	// DefaultAlgorithm and DefaultVariant select MaxRects with best area fit.
	DefaultAlgorithm = "MaxRects"
	DefaultVariant   = "BestAreaFit"

	// DefaultSort processes sprites by descending area.
	DefaultSort = "area"

	// DefaultOutputType is the metadata format written next to the sheet.
	DefaultOutputType = OutputJSON
)

// Output types accepted in output_type.
const (
	OutputJSON     = "json"
	OutputTOML     = "toml"
	OutputBinary   = "binary"
	OutputTemplate = "template"
)

// ValidOutputTypes is the set of supported output types.
var ValidOutputTypes = map[string]bool{
	OutputJSON:     true,
	OutputTOML:     true,
	OutputBinary:   true,
	OutputTemplate: true,
}

// =============================================================================
// Config
// =============================================================================

// Config describes one atlas build.
type Config struct {
	// Name is the base name of the sheet and metadata files.
	Name string `json:"name" toml:"name"`
	// OutputPath is the directory the files are written to.
	OutputPath string `json:"output_path" toml:"output_path"`
	// OutputType is one of json, toml, binary, template.
	OutputType string `json:"output_type" toml:"output_type"`
	// Folders are searched recursively for PNG sprites.
	Folders []string `json:"folders" toml:"folders"`
	// TemplatePath is required when OutputType is template.
	TemplatePath string `json:"template_path,omitempty" toml:"template_path,omitempty"`

	Options Options `json:"options" toml:"options"`
}

// Options tunes packing and naming.
type Options struct {
	MaxSize       int    `json:"max_size" toml:"max_size"`
	ShowExtension bool   `json:"show_extension" toml:"show_extension"`
	Rotation      bool   `json:"rotation" toml:"rotation"`
	Padding       int    `json:"padding" toml:"padding"`
	Algorithm     string `json:"algorithm" toml:"algorithm"`
	Variant       string `json:"variant" toml:"variant"`
	Sort          string `json:"sort" toml:"sort"`
	Workers       int    `json:"workers" toml:"workers"`
}

// Default returns a Config with every optional field set.
func Default() Config {
	return Config{
		OutputType: DefaultOutputType,
		Options: Options{
			MaxSize:       DefaultMaxSize,
			ShowExtension: true,
			Algorithm:     DefaultAlgorithm,
			Variant:       DefaultVariant,
			Sort:          DefaultSort,
			Workers:       runtime.NumCPU(),
		},
	}
}

// Load reads a JSON or TOML config, chosen by file extension. Keys missing
// from the file keep their defaults; unknown keys are an error.
func Load(file string) (Config, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", file)
		}
		return Config{}, errors.Wrap(errors.ErrCodeIO, err, "read config %s", file)
	}
	switch ext := strings.ToLower(filepath.Ext(file)); ext {
	case ".json":
		return ParseJSON(data)
	case ".toml":
		return ParseTOML(data)
	default:
		return Config{}, errors.New(errors.ErrCodeUnsupported, "config %s: unsupported extension %q (want .json or .toml)", file, ext)
	}
}

// ParseJSON decodes a JSON config over Default.
func ParseJSON(data []byte) (Config, error) {
	cfg := Default()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode json config")
	}
	return cfg, nil
}

// ParseTOML decodes a TOML config over Default.
func ParseTOML(data []byte) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode toml config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	return cfg, nil
}

// =============================================================================
// Validation
// =============================================================================

// Validate checks required fields and ranges.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "name is required")
	}
	if strings.ContainsAny(c.Name, `/\`) {
		return errors.New(errors.ErrCodeInvalidConfig, "name %q must not contain path separators", c.Name)
	}
	if c.OutputPath == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "output_path is required")
	}
	if len(c.Folders) == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "at least one folder is required")
	}
	if slices.Contains(c.Folders, "") {
		return errors.New(errors.ErrCodeInvalidConfig, "folders must not contain empty paths")
	}
	if !ValidOutputTypes[c.OutputType] {
		return errors.New(errors.ErrCodeInvalidConfig,
			"invalid output_type: %q (must be one of: json, toml, binary, template)", c.OutputType)
	}
	if c.OutputType == OutputTemplate && c.TemplatePath == "" {
		return errors.New(errors.ErrCodeNoTemplate, "output_type template requires template_path")
	}
	o := c.Options
	if o.MaxSize < 1 || o.MaxSize > rectpack.MaxSizeLimit {
		return errors.New(errors.ErrCodeInvalidConfig, "max_size must be within 1..%d (given %d)", rectpack.MaxSizeLimit, o.MaxSize)
	}
	if o.Padding < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "padding must not be negative (given %d)", o.Padding)
	}
	if o.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "workers must not be negative (given %d)", o.Workers)
	}
	if _, err := c.Heuristic(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "options")
	}
	if _, err := c.Sorter(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "options")
	}
	return nil
}

// Heuristic resolves the configured algorithm and variant.
func (c Config) Heuristic() (rectpack.Heuristic, error) {
	return rectpack.ResolveAlgorithm(c.Options.Algorithm, c.Options.Variant)
}

// Sorter resolves the configured processing order.
func (c Config) Sorter() (rectpack.SortFunc, error) {
	return rectpack.ResolveSort(c.Options.Sort)
}

// EffectiveMaxSize is the power of two the packer actually uses.
func (c Config) EffectiveMaxSize() int {
	return rectpack.FloorPowerOfTwo(c.Options.MaxSize)
}

// MetadataBase is the metadata path without extension.
func (c Config) MetadataBase() string {
	return filepath.Join(c.OutputPath, c.Name)
}

// SheetPath is where the PNG sheet is written.
func (c Config) SheetPath() string {
	return c.MetadataBase() + ".png"
}

// SheetRef is the sheet path as recorded in metadata: slash separated.
func (c Config) SheetRef() string {
	return path.Clean(filepath.ToSlash(c.SheetPath()))
}

// Workers returns the decode concurrency, falling back to the CPU count.
func (c Config) Workers() int {
	if c.Options.Workers > 0 {
		return c.Options.Workers
	}
	return runtime.NumCPU()
}
