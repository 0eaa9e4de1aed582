package atlas

import (
	"bytes"
	"encoding/json"

	"spriteatlas/errors"
	"spriteatlas/rectpack"
)

// Frame is where a sprite sits in the sheet. Width and Height are the
// footprint in the sheet, so they are swapped relative to the source image
// when Rotated is set.
type Frame struct {
	X       int  `json:"x" toml:"x"`
	Y       int  `json:"y" toml:"y"`
	Width   int  `json:"width" toml:"width"`
	Height  int  `json:"height" toml:"height"`
	Rotated bool `json:"rotated" toml:"rotated"`
}

// FrameOf converts a placement.
func FrameOf(r rectpack.Rect) Frame {
	return Frame{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height, Rotated: r.Rotated}
}

// Metadata maps sprite names to frames, in the order they were added.
type Metadata struct {
	SheetPath string

	names  []string
	frames map[string]Frame
}

// NewMetadata returns an empty record for the given sheet.
func NewMetadata(sheetPath string) *Metadata {
	return &Metadata{SheetPath: sheetPath, frames: make(map[string]Frame)}
}

// FromPlacements records one frame per item, in item order.
func FromPlacements(sheetPath string, items []Item, rects []rectpack.Rect) (*Metadata, error) {
	if len(items) != len(rects) {
		return nil, errors.New(errors.ErrCodeGeometryViolation, "%d placements for %d items", len(rects), len(items))
	}
	meta := NewMetadata(sheetPath)
	for i := range items {
		if err := meta.Add(items[i].Name, FrameOf(rects[i])); err != nil {
			return nil, err
		}
	}
	return meta, nil
}

// Add appends a frame. Names are unique; a second Add with the same name
// fails and leaves the first frame in place.
func (m *Metadata) Add(name string, f Frame) error {
	if m.frames == nil {
		m.frames = make(map[string]Frame)
	}
	if _, ok := m.frames[name]; ok {
		return errors.New(errors.ErrCodeDuplicateName, "sprite %q is already in the atlas", name)
	}
	m.names = append(m.names, name)
	m.frames[name] = f
	return nil
}

// Len returns the number of frames.
func (m *Metadata) Len() int { return len(m.names) }

// Names returns the sprite names in insertion order.
func (m *Metadata) Names() []string {
	return append([]string(nil), m.names...)
}

// Frame looks up a sprite by name.
func (m *Metadata) Frame(name string) (Frame, bool) {
	f, ok := m.frames[name]
	return f, ok
}

// NamedFrame pairs a frame with its sprite name.
type NamedFrame struct {
	Name string `toml:"name"`
	Frame
}

// Frames returns a copy of all frames in insertion order.
func (m *Metadata) Frames() []NamedFrame {
	out := make([]NamedFrame, len(m.names))
	for i, name := range m.names {
		out[i] = NamedFrame{Name: name, Frame: m.frames[name]}
	}
	return out
}

// Range calls fn for each frame in insertion order until fn returns false.
func (m *Metadata) Range(fn func(name string, f Frame) bool) {
	for _, name := range m.names {
		if !fn(name, m.frames[name]) {
			return
		}
	}
}

// MarshalJSON writes {"sheet_path": ..., "frames": {...}} keeping frame order.
func (m *Metadata) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	sheet, err := json.Marshal(m.SheetPath)
	if err != nil {
		return nil, err
	}
	buf.WriteString(`{"sheet_path":`)
	buf.Write(sheet)
	buf.WriteString(`,"frames":{`)
	first := true
	m.Range(func(name string, f Frame) bool {
		var key, frame []byte
		if key, err = json.Marshal(name); err != nil {
			return false
		}
		if frame, err = json.Marshal(f); err != nil {
			return false
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(frame)
		return true
	})
	if err != nil {
		return nil, err
	}
	buf.WriteString("}}")
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the MarshalJSON layout, keeping the document's frame
// order. Repeated frame names are rejected.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	out := NewMetadata("")
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	for dec.More() {
		key, err := dec.Token()
		if err != nil {
			return err
		}
		switch key {
		case "sheet_path":
			if err := dec.Decode(&out.SheetPath); err != nil {
				return err
			}
		case "frames":
			if err := expectDelim(dec, '{'); err != nil {
				return err
			}
			for dec.More() {
				tok, err := dec.Token()
				if err != nil {
					return err
				}
				name, _ := tok.(string)
				var f Frame
				if err := dec.Decode(&f); err != nil {
					return err
				}
				if err := out.Add(name, f); err != nil {
					return err
				}
			}
			if err := expectDelim(dec, '}'); err != nil {
				return err
			}
		default:
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return err
			}
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return err
	}
	*m = *out
	return nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return errors.New(errors.ErrCodeDecode, "expected %q in atlas metadata, got %v", want, tok)
	}
	return nil
}
