// Package output serializes atlas metadata.
//
// The set of formats is closed: JSON, TOML, Binary and Template. FromConfig
// picks one from a config, Encode turns metadata into an Artifact, and Decode
// reads the machine formats back.
package output

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"spriteatlas/atlas"
	"spriteatlas/config"
	"spriteatlas/errors"
)

// Format is one of JSON, TOML, Binary or Template.
type Format interface {
	isFormat()
	// Name is the output_type value that selects the format.
	Name() string
}

// JSON writes indented JSON with frames in insertion order.
type JSON struct{}

// TOML writes a sheet_path key followed by a [[frames]] array.
type TOML struct{}

// Binary writes the compact little-endian layout described in binary.go.
type Binary struct{}

// Template renders a user supplied text/template file.
type Template struct {
	Path string
}

func (JSON) isFormat()     {}
func (TOML) isFormat()     {}
func (Binary) isFormat()   {}
func (Template) isFormat() {}

func (JSON) Name() string     { return config.OutputJSON }
func (TOML) Name() string     { return config.OutputTOML }
func (Binary) Name() string   { return config.OutputBinary }
func (Template) Name() string { return config.OutputTemplate }

// FromConfig selects the format named by cfg.OutputType.
func FromConfig(cfg config.Config) (Format, error) {
	switch cfg.OutputType {
	case config.OutputJSON, "":
		return JSON{}, nil
	case config.OutputTOML:
		return TOML{}, nil
	case config.OutputBinary:
		return Binary{}, nil
	case config.OutputTemplate:
		if cfg.TemplatePath == "" {
			return nil, errors.New(errors.ErrCodeNoTemplate, "output_type template requires template_path")
		}
		return Template{Path: cfg.TemplatePath}, nil
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported output type %q", cfg.OutputType)
	}
}

// Artifact is encoded metadata plus the file extension it should be saved
// with, including the leading dot (empty for an extension-less template).
type Artifact struct {
	Ext  string
	Data []byte
}

// Encode serializes meta in format f. cfg is only consulted by Template,
// which exposes it to the template.
func Encode(f Format, meta *atlas.Metadata, cfg config.Config) (Artifact, error) {
	switch f := f.(type) {
	case JSON:
		data, err := json.MarshalIndent(meta, "", "  ")
		if err != nil {
			return Artifact{}, errors.Wrap(errors.ErrCodeEncode, err, "encode json metadata")
		}
		return Artifact{Ext: ".json", Data: append(data, '\n')}, nil
	case TOML:
		data, err := encodeTOML(meta)
		if err != nil {
			return Artifact{}, errors.Wrap(errors.ErrCodeEncode, err, "encode toml metadata")
		}
		return Artifact{Ext: ".toml", Data: data}, nil
	case Binary:
		data, err := encodeBinary(meta)
		if err != nil {
			return Artifact{}, errors.Wrap(errors.ErrCodeEncode, err, "encode binary metadata")
		}
		return Artifact{Ext: ".bin", Data: data}, nil
	case Template:
		data, err := renderTemplate(f.Path, meta, cfg)
		if err != nil {
			return Artifact{}, err
		}
		return Artifact{Ext: filepath.Ext(f.Path), Data: data}, nil
	default:
		return Artifact{}, errors.New(errors.ErrCodeUnsupported, "unsupported output format %T", f)
	}
}

// Decode reads metadata written by Encode. ext selects the format: .json,
// .toml or .bin.
func Decode(data []byte, ext string) (*atlas.Metadata, error) {
	switch strings.ToLower(ext) {
	case ".json":
		meta := atlas.NewMetadata("")
		if err := json.Unmarshal(data, meta); err != nil {
			if errors.Is(err, errors.ErrCodeDuplicateName) {
				return nil, err
			}
			return nil, errors.Wrap(errors.ErrCodeDecode, err, "decode json metadata")
		}
		return meta, nil
	case ".toml":
		return decodeTOML(data)
	case ".bin":
		return decodeBinary(data)
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "cannot decode metadata with extension %q", ext)
	}
}

// tomlDocument is the TOML layout. Frames are an array so order survives.
type tomlDocument struct {
	SheetPath string      `toml:"sheet_path"`
	Frames    []tomlFrame `toml:"frames"`
}

type tomlFrame struct {
	Name    string `toml:"name"`
	X       int    `toml:"x"`
	Y       int    `toml:"y"`
	Width   int    `toml:"width"`
	Height  int    `toml:"height"`
	Rotated bool   `toml:"rotated"`
}

func encodeTOML(meta *atlas.Metadata) ([]byte, error) {
	doc := tomlDocument{SheetPath: meta.SheetPath}
	for _, nf := range meta.Frames() {
		doc.Frames = append(doc.Frames, tomlFrame{
			Name: nf.Name, X: nf.X, Y: nf.Y, Width: nf.Width, Height: nf.Height, Rotated: nf.Rotated,
		})
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeTOML(data []byte) (*atlas.Metadata, error) {
	var doc tomlDocument
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecode, err, "decode toml metadata")
	}
	meta := atlas.NewMetadata(doc.SheetPath)
	for _, f := range doc.Frames {
		frame := atlas.Frame{X: f.X, Y: f.Y, Width: f.Width, Height: f.Height, Rotated: f.Rotated}
		if err := meta.Add(f.Name, frame); err != nil {
			return nil, err
		}
	}
	return meta, nil
}
