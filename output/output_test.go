package output

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"spriteatlas/atlas"
	"spriteatlas/config"
	"spriteatlas/errors"
)

func sample(t *testing.T) *atlas.Metadata {
	t.Helper()
	meta := atlas.NewMetadata("out/ui.png")
	frames := []struct {
		name string
		f    atlas.Frame
	}{
		{"zombie.png", atlas.Frame{X: 0, Y: 0, Width: 64, Height: 32, Rotated: true}},
		{"arrow.png", atlas.Frame{X: 64, Y: 0, Width: 16, Height: 16}},
		{"ui/button.png", atlas.Frame{X: 64, Y: 16, Width: 8, Height: 4}},
	}
	for _, fr := range frames {
		if err := meta.Add(fr.name, fr.f); err != nil {
			t.Fatal(err)
		}
	}
	return meta
}

func TestFromConfig(t *testing.T) {
	tests := []struct {
		outputType string
		template   string
		want       Format
		code       errors.Code
	}{
		{config.OutputJSON, "", JSON{}, ""},
		{config.OutputTOML, "", TOML{}, ""},
		{config.OutputBinary, "", Binary{}, ""},
		{config.OutputTemplate, "a.lua", Template{Path: "a.lua"}, ""},
		{config.OutputTemplate, "", nil, errors.ErrCodeNoTemplate},
		{"ron", "", nil, errors.ErrCodeUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.outputType, func(t *testing.T) {
			cfg := config.Default()
			cfg.OutputType = tt.outputType
			cfg.TemplatePath = tt.template
			got, err := FromConfig(cfg)
			if tt.code != "" {
				if !errors.Is(err, tt.code) {
					t.Fatalf("FromConfig() error = %v, want code %s", err, tt.code)
				}
				return
			}
			if err != nil {
				t.Fatalf("FromConfig() error = %v", err)
			}
			if got != tt.want || got.Name() != tt.outputType {
				t.Errorf("FromConfig() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestEncodeDecodeKeepsOrder(t *testing.T) {
	meta := sample(t)
	for _, f := range []Format{JSON{}, TOML{}, Binary{}} {
		t.Run(f.Name(), func(t *testing.T) {
			art, err := Encode(f, meta, config.Default())
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			got, err := Decode(art.Data, art.Ext)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if got.SheetPath != meta.SheetPath {
				t.Errorf("SheetPath = %q, want %q", got.SheetPath, meta.SheetPath)
			}
			if !reflect.DeepEqual(got.Frames(), meta.Frames()) {
				t.Errorf("Frames() = %+v, want %+v", got.Frames(), meta.Frames())
			}
		})
	}
}

func TestEncodeJSONLayout(t *testing.T) {
	art, err := Encode(JSON{}, sample(t), config.Default())
	if err != nil {
		t.Fatal(err)
	}
	if art.Ext != ".json" {
		t.Errorf("Ext = %q", art.Ext)
	}
	text := string(art.Data)
	z, a, b := strings.Index(text, "zombie.png"), strings.Index(text, "arrow.png"), strings.Index(text, "ui/button.png")
	if z < 0 || !(z < a && a < b) {
		t.Errorf("frames out of insertion order:\n%s", text)
	}
	if !strings.Contains(text, `"sheet_path": "out/ui.png"`) || !strings.Contains(text, `"rotated": true`) {
		t.Errorf("unexpected json layout:\n%s", text)
	}
}

func TestEncodeTOMLLayout(t *testing.T) {
	art, err := Encode(TOML{}, sample(t), config.Default())
	if err != nil {
		t.Fatal(err)
	}
	text := string(art.Data)
	if art.Ext != ".toml" || strings.Count(text, "[[frames]]") != 3 {
		t.Errorf("unexpected toml (%s):\n%s", art.Ext, text)
	}
	if !strings.HasPrefix(text, `sheet_path = "out/ui.png"`) {
		t.Errorf("toml must start with sheet_path:\n%s", text)
	}
}

func TestEncodeBinaryLayout(t *testing.T) {
	meta := atlas.NewMetadata("s.png")
	if err := meta.Add("a", atlas.Frame{X: 1, Y: 2, Width: 3, Height: 4, Rotated: true}); err != nil {
		t.Fatal(err)
	}
	art, err := Encode(Binary{}, meta, config.Default())
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{
		'S', 'A', 'T', 'L', 1, 0,
		5, 0, 0, 0, 's', '.', 'p', 'n', 'g',
		1, 0, 0, 0,
		1, 0, 0, 0, 'a',
		1, 0, 0, 0, 2, 0, 0, 0, 3, 0, 0, 0, 4, 0, 0, 0,
		1,
	}
	if art.Ext != ".bin" || !bytes.Equal(art.Data, want) {
		t.Errorf("Encode() = %v (%s), want %v", art.Data, art.Ext, want)
	}
}

func TestDecodeErrors(t *testing.T) {
	good, err := Encode(Binary{}, sample(t), config.Default())
	if err != nil {
		t.Fatal(err)
	}
	badVersion := bytes.Clone(good.Data)
	badVersion[4] = 9
	tests := []struct {
		name string
		data []byte
		ext  string
		code errors.Code
	}{
		{"bad magic", []byte("NOPE\x01\x00"), ".bin", errors.ErrCodeDecode},
		{"truncated", good.Data[:len(good.Data)-3], ".bin", errors.ErrCodeDecode},
		{"trailing", append(bytes.Clone(good.Data), 0), ".bin", errors.ErrCodeDecode},
		{"version", badVersion, ".bin", errors.ErrCodeUnsupported},
		{"broken json", []byte(`{"frames":`), ".json", errors.ErrCodeDecode},
		{"duplicate json", []byte(`{"sheet_path":"s","frames":{"a":{},"a":{}}}`), ".json", errors.ErrCodeDuplicateName},
		{"duplicate toml", []byte("sheet_path = \"s\"\n[[frames]]\nname = \"a\"\n[[frames]]\nname = \"a\"\n"), ".toml", errors.ErrCodeDuplicateName},
		{"unknown ext", []byte("x"), ".yaml", errors.ErrCodeUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.data, tt.ext); !errors.Is(err, tt.code) {
				t.Errorf("Decode() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestTemplate(t *testing.T) {
	dir := t.TempDir()
	tmplPath := filepath.Join(dir, "atlas.lua")
	src := `return { name = "{{.config.name}}", sheet = "{{.atlas.sheet_path}}",
{{range .atlas.names}}{{$f := index $.atlas.frames .}}  ["{{.}}"] = { {{$f.x}}, {{$f.y}}, {{$f.width}}, {{$f.height}}, {{$f.rotated}} },
{{end}}}
`
	if err := os.WriteFile(tmplPath, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.Name = "ui"
	meta := sample(t)
	meta.SheetPath = `out\ui.png`

	art, err := Encode(Template{Path: tmplPath}, meta, cfg)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	want := `return { name = "ui", sheet = "out/ui.png",
  ["zombie.png"] = { 0, 0, 64, 32, true },
  ["arrow.png"] = { 64, 0, 16, 16, false },
  ["ui/button.png"] = { 64, 16, 8, 4, false },
}
`
	if string(art.Data) != want {
		t.Errorf("rendered:\n%s\nwant:\n%s", art.Data, want)
	}
	if art.Ext != ".lua" {
		t.Errorf("Ext = %q, want .lua", art.Ext)
	}
}

func TestTemplateErrors(t *testing.T) {
	dir := t.TempDir()
	missingKey := filepath.Join(dir, "missing.txt")
	if err := os.WriteFile(missingKey, []byte("{{.atlas.nope}}"), 0o644); err != nil {
		t.Fatal(err)
	}
	broken := filepath.Join(dir, "broken.txt")
	if err := os.WriteFile(broken, []byte("{{range}}"), 0o644); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		path string
		code errors.Code
	}{
		{"missing key", missingKey, errors.ErrCodeEncode},
		{"parse error", broken, errors.ErrCodeInvalidInput},
		{"no file", filepath.Join(dir, "absent.txt"), errors.ErrCodeNoTemplate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(Template{Path: tt.path}, sample(t), config.Default())
			if !errors.Is(err, tt.code) {
				t.Errorf("Encode() error = %v, want code %s", err, tt.code)
			}
		})
	}
}
