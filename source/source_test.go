package source

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/disintegration/imaging"

	"spriteatlas/errors"
)

func writePNG(t *testing.T, path string, w, h int, c color.NRGBA) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := imaging.FormatFromFilename(path); err != nil {
		// Non-image files only get placeholder bytes
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		return
	}
	if err := imaging.Save(imaging.New(w, h, c), path); err != nil {
		t.Fatal(err)
	}
}

func TestWalk(t *testing.T) {
	root := t.TempDir()
	for _, p := range []string{"b.png", "a/x.png", "a/deep/y.txt", "c/z.png"} {
		writePNG(t, filepath.Join(root, p), 1, 1, color.NRGBA{A: 255})
	}
	got, err := Walk(root)
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	want := []string{
		filepath.Join(root, "b.png"),
		filepath.Join(root, "a", "x.png"),
		filepath.Join(root, "a", "deep", "y.txt"),
		filepath.Join(root, "c", "z.png"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Walk() = %v, want %v", got, want)
	}

	if _, err := Walk(filepath.Join(root, "missing")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Walk(missing) error = %v, want FILE_NOT_FOUND", err)
	}
	if _, err := Walk(want[0]); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Walk(file) error = %v, want INVALID_INPUT", err)
	}
}

func TestName(t *testing.T) {
	p := filepath.Join("sprites", "ui", "button.png")
	if got := Name(p, true); got != "sprites/ui/button.png" {
		t.Errorf("Name(show) = %q", got)
	}
	if got := Name(p, false); got != "sprites/ui/button" {
		t.Errorf("Name(hide) = %q", got)
	}
}

func TestCollect(t *testing.T) {
	root := t.TempDir()
	first := filepath.Join(root, "first")
	second := filepath.Join(root, "second")
	for _, p := range []string{"img10.png", "img2.png", "img1.PNG", "notes.txt", "icon.jpg"} {
		writePNG(t, filepath.Join(first, p), 2, 2, color.NRGBA{R: 255, A: 255})
	}
	writePNG(t, filepath.Join(second, "a.png"), 2, 2, color.NRGBA{G: 255, A: 255})

	sprites, err := Collect([]string{second, first}, false)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	var names []string
	for _, s := range sprites {
		names = append(names, s.Name)
	}
	want := []string{
		filepath.ToSlash(filepath.Join(second, "a")),
		filepath.ToSlash(filepath.Join(first, "img1")),
		filepath.ToSlash(filepath.Join(first, "img2")),
		filepath.ToSlash(filepath.Join(first, "img10")),
	}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("Collect() names = %v, want %v", names, want)
	}
}

func TestCollectDuplicateNames(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "a.png"), 1, 1, color.NRGBA{A: 255})
	writePNG(t, filepath.Join(root, "a.PNG"), 1, 1, color.NRGBA{A: 255})
	if _, err := Collect([]string{root}, false); !errors.Is(err, errors.ErrCodeDuplicateName) {
		t.Errorf("Collect() error = %v, want DUPLICATE_NAME", err)
	}
	// With the extension kept the two names differ
	if sprites, err := Collect([]string{root}, true); err != nil || len(sprites) != 2 {
		t.Errorf("Collect(show) = %v, %v", sprites, err)
	}
	if _, err := Collect([]string{root, root}, true); !errors.Is(err, errors.ErrCodeDuplicateName) {
		t.Errorf("Collect() of a repeated folder error = %v, want DUPLICATE_NAME", err)
	}
}

func TestLoad(t *testing.T) {
	root := t.TempDir()
	var sprites []Sprite
	for i, c := range []color.NRGBA{{R: 255, A: 255}, {G: 10, B: 20, A: 128}, {}} {
		p := filepath.Join(root, string(rune('a'+i))+".png")
		writePNG(t, p, 3+i, 2, c)
		sprites = append(sprites, Sprite{Path: p, Name: filepath.Base(p)})
	}
	items, err := Load(context.Background(), sprites, 2)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	for i, item := range items {
		if item.Name != sprites[i].Name {
			t.Errorf("item %d name = %q, want %q", i, item.Name, sprites[i].Name)
		}
		if got := item.Image.Bounds(); got != image.Rect(0, 0, 3+i, 2) {
			t.Errorf("item %d bounds = %v", i, got)
		}
	}
	if got := items[1].Image.NRGBAAt(0, 0); got != (color.NRGBA{G: 10, B: 20, A: 128}) {
		t.Errorf("pixel = %v, want straight alpha preserved", got)
	}
}

func TestLoadErrors(t *testing.T) {
	root := t.TempDir()
	bogus := filepath.Join(root, "bogus.png")
	if err := os.WriteFile(bogus, []byte("not a png"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(context.Background(), []Sprite{{Path: bogus, Name: "bogus"}}, 1); !errors.Is(err, errors.ErrCodeDecode) {
		t.Errorf("Load(bogus) error = %v, want DECODE", err)
	}
	missing := Sprite{Path: filepath.Join(root, "gone.png"), Name: "gone"}
	if _, err := Load(context.Background(), []Sprite{missing}, 1); !errors.Is(err, errors.ErrCodeIO) {
		t.Errorf("Load(missing) error = %v, want IO", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Load(ctx, []Sprite{missing}, 1); err == nil {
		t.Error("Load() with a cancelled context should fail")
	}
}
