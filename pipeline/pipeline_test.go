package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	"spriteatlas/atlas"
	"spriteatlas/config"
	"spriteatlas/errors"
	"spriteatlas/output"
	"spriteatlas/rectpack"
)

// gradient returns a w x h sprite whose pixels all differ.
func gradient(w, h int, seed uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 7), G: uint8(y * 5), B: seed, A: uint8(128 + x + y)})
		}
	}
	return img
}

type fixture struct {
	cfg     config.Config
	sprites map[string]*image.NRGBA
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	root := t.TempDir()
	folder := filepath.Join(root, "sprites")
	sprites := map[string]*image.NRGBA{
		"hero.png":      gradient(40, 20, 1),
		"tree.png":      gradient(12, 50, 2),
		"ui/button.png": gradient(16, 16, 3),
	}
	for name, img := range sprites {
		p := filepath.Join(folder, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := imaging.Save(img, p); err != nil {
			t.Fatal(err)
		}
	}
	cfg := config.Default()
	cfg.Name = "game"
	cfg.OutputPath = filepath.Join(root, "out")
	cfg.Folders = []string{folder}
	cfg.Options.MaxSize = 128
	cfg.Options.Rotation = true
	cfg.Options.Padding = 1
	return fixture{cfg: cfg, sprites: sprites}
}

func TestRun(t *testing.T) {
	for _, outputType := range []string{config.OutputJSON, config.OutputTOML, config.OutputBinary} {
		t.Run(outputType, func(t *testing.T) {
			fx := newFixture(t)
			fx.cfg.OutputType = outputType
			res, err := Run(context.Background(), fx.cfg, nil)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if res.Sprites != 3 || res.Used <= 0 || res.Stats.Total() <= 0 {
				t.Errorf("Run() = %+v", res)
			}

			data, err := os.ReadFile(res.MetadataPath)
			if err != nil {
				t.Fatal(err)
			}
			meta, err := output.Decode(data, filepath.Ext(res.MetadataPath))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if meta.SheetPath != filepath.ToSlash(res.SheetPath) || meta.Len() != 3 {
				t.Errorf("metadata sheet %q with %d frames", meta.SheetPath, meta.Len())
			}

			sheet, err := imaging.Open(res.SheetPath)
			if err != nil {
				t.Fatal(err)
			}
			if b := sheet.Bounds(); b.Dx() != res.Width || b.Dy() != res.Height {
				t.Errorf("sheet is %v, want %dx%d", b, res.Width, res.Height)
			}
			for rel, want := range fx.sprites {
				name := filepath.ToSlash(filepath.Join(fx.cfg.Folders[0], filepath.FromSlash(rel)))
				f, ok := meta.Frame(name)
				if !ok {
					t.Fatalf("frame %q missing from %v", name, meta.Names())
				}
				got, err := atlas.Extract(sheet, f)
				if err != nil {
					t.Fatal(err)
				}
				if !reflect.DeepEqual(got.Pix, want.Pix) {
					t.Errorf("%s differs after extraction (rotated=%v)", rel, f.Rotated)
				}
			}
		})
	}
}

func TestRunHidesExtension(t *testing.T) {
	fx := newFixture(t)
	fx.cfg.Options.ShowExtension = false
	res, err := Run(context.Background(), fx.cfg, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	data, err := os.ReadFile(res.MetadataPath)
	if err != nil {
		t.Fatal(err)
	}
	meta, err := output.Decode(data, ".json")
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.ToSlash(filepath.Join(fx.cfg.Folders[0], "hero"))
	if _, ok := meta.Frame(want); !ok {
		t.Errorf("frame %q missing from %v", want, meta.Names())
	}
}

func TestRunInfeasibleWritesNothing(t *testing.T) {
	fx := newFixture(t)
	fx.cfg.Options.MaxSize = 32
	_, err := Run(context.Background(), fx.cfg, nil)
	if !errors.Is(err, errors.ErrCodePackingInfeasible) {
		t.Fatalf("Run() error = %v, want PACKING_INFEASIBLE", err)
	}
	if _, err := os.Stat(fx.cfg.OutputPath); !os.IsNotExist(err) {
		t.Errorf("output folder exists after a failed run (stat error %v)", err)
	}
}

func TestRunMetadataFailureRemovesSheet(t *testing.T) {
	fx := newFixture(t)
	// A directory in place of the metadata file makes the rename fail.
	if err := os.MkdirAll(fx.cfg.MetadataBase()+".json", 0o755); err != nil {
		t.Fatal(err)
	}
	_, err := Run(context.Background(), fx.cfg, nil)
	if !errors.Is(err, errors.ErrCodeIO) {
		t.Fatalf("Run() error = %v, want IO", err)
	}
	if _, err := os.Stat(fx.cfg.SheetPath()); !os.IsNotExist(err) {
		t.Errorf("sheet left behind after metadata failure (stat error %v)", err)
	}
}

func TestRunErrors(t *testing.T) {
	fx := newFixture(t)
	bad := fx.cfg
	bad.OutputType = config.OutputTemplate
	if _, err := Run(context.Background(), bad, nil); !errors.Is(err, errors.ErrCodeNoTemplate) {
		t.Errorf("Run() without template error = %v, want NO_TEMPLATE", err)
	}

	missing := fx.cfg
	missing.Folders = []string{filepath.Join(t.TempDir(), "nope")}
	if _, err := Run(context.Background(), missing, nil); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Run() with missing folder error = %v, want FILE_NOT_FOUND", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, fx.cfg, nil); err == nil {
		t.Error("Run() with a cancelled context should fail")
	}
}

func TestRunEmptyFolder(t *testing.T) {
	fx := newFixture(t)
	fx.cfg.Folders = []string{t.TempDir()}
	res, err := Run(context.Background(), fx.cfg, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Width != 1 || res.Height != 1 || res.Sprites != 0 {
		t.Errorf("Run() = %dx%d with %d sprites, want 1x1 with none", res.Width, res.Height, res.Sprites)
	}
}

func TestCompositeLogsInvalidLayout(t *testing.T) {
	items := []atlas.Item{{Name: "hero", Image: gradient(8, 8, 1)}}
	tests := []struct {
		name   string
		packed *rectpack.Result
		items  []atlas.Item
		code   errors.Code
		logged bool
	}{
		{"outside canvas", &rectpack.Result{Width: 8, Height: 8, Rects: []rectpack.Rect{rectpack.NewRect(4, 0, 8, 8)}}, items, errors.ErrCodeGeometryViolation, true},
		{"count mismatch", &rectpack.Result{Width: 8, Height: 8}, items, errors.ErrCodeGeometryViolation, true},
		{"no image", &rectpack.Result{Width: 8, Height: 8, Rects: []rectpack.Rect{rectpack.NewRect(0, 0, 8, 8)}}, []atlas.Item{{Name: "hero"}}, errors.ErrCodeInvalidInput, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := log.NewWithOptions(&buf, log.Options{})
			sheet, err := composite(logger, tt.packed, tt.items)
			if sheet != nil || !errors.Is(err, tt.code) {
				t.Fatalf("composite() = %v, %v, want %s", sheet, err, tt.code)
			}
			if got := strings.Contains(buf.String(), "invalid layout"); got != tt.logged {
				t.Errorf("invalid layout logged = %v, want %v:\n%s", got, tt.logged, buf.String())
			}
		})
	}
}

func TestWriteOutputsKeepsEarlierAtlas(t *testing.T) {
	dir := t.TempDir()
	sheetPath := filepath.Join(dir, "game.png")
	if err := os.WriteFile(sheetPath, []byte("old sheet"), 0o644); err != nil {
		t.Fatal(err)
	}
	// The metadata folder does not exist, so staging the metadata fails
	// before anything is renamed.
	metaPath := filepath.Join(dir, "missing", "game.json")
	err := writeOutputs(dir, sheetPath, []byte("new sheet"), metaPath, []byte("{}"))
	if !errors.Is(err, errors.ErrCodeIO) {
		t.Fatalf("writeOutputs() error = %v, want IO", err)
	}
	data, err := os.ReadFile(sheetPath)
	if err != nil {
		t.Fatalf("earlier sheet is gone: %v", err)
	}
	if string(data) != "old sheet" {
		t.Errorf("earlier sheet = %q, want it untouched", data)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file %s left behind", e.Name())
		}
	}
}

func TestWriteOutputsReplacesBoth(t *testing.T) {
	dir := t.TempDir()
	sheetPath := filepath.Join(dir, "game.png")
	metaPath := filepath.Join(dir, "game.json")
	for _, p := range []string{sheetPath, metaPath} {
		if err := os.WriteFile(p, []byte("old"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := writeOutputs(dir, sheetPath, []byte("sheet"), metaPath, []byte("meta")); err != nil {
		t.Fatalf("writeOutputs() error = %v", err)
	}
	for p, want := range map[string]string{sheetPath: "sheet", metaPath: "meta"} {
		data, err := os.ReadFile(p)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != want {
			t.Errorf("%s = %q, want %q", filepath.Base(p), data, want)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("output folder holds %d entries, want 2", len(entries))
	}
}
