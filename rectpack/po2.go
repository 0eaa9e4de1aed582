package rectpack

import (
	"cmp"
	"math/bits"
	"slices"

	"spriteatlas/errors"
)

// MaxSizeLimit 是 Pack 接受的最大边长上限。
const MaxSizeLimit = 1 << 16

// Result 是一次 2 的幂画布打包的结果。
type Result struct {
	// Width 和 Height 是选定的画布尺寸，均为 2 的幂。
	Width, Height int
	// Rects[i] 是第 i 个输入尺寸的放置结果，Rect.ID 即该尺寸的 ID。
	Rects []Rect
}

// Used 返回已放置矩形覆盖画布的比例。
func (r *Result) Used() float64 {
	var used int
	for _, rect := range r.Rects {
		used += rect.Area()
	}
	return float64(used) / float64(r.Width*r.Height)
}

// Option 用于配置 Pack。
type Option func(*options)

type options struct {
	heuristic Heuristic
	padding   int
	sortFunc  SortFunc
}

// WithHeuristic 选择包装算法（默认 MaxRectsBAF）。
func WithHeuristic(h Heuristic) Option {
	return func(o *options) { o.heuristic = h }
}

// WithPadding 在相邻矩形之间预留 n 个像素（默认 0）。
func WithPadding(n int) Option {
	return func(o *options) { o.padding = n }
}

// WithSorter 修改处理顺序（默认 SortArea）。
// 排序是稳定的：比较结果相等的尺寸保持输入顺序。
func WithSorter(fn SortFunc) Option {
	return func(o *options) { o.sortFunc = fn }
}

// Pack 寻找能无重叠容纳所有尺寸的最小 2 的幂画布，两个方向都不超过 maxSize。
//
// 画布可以不是正方形。候选画布依次按面积升序、长边升序、宽者优先尝试，
// 因此两者都可行时 256x128 优先于 128x256。不是 2 的幂的 maxSize 向下取整。
// 设置了 Rotatable 的尺寸可以旋转 90° 放置，此时 Rect 给出旋转后的占用尺寸且 Rotated 为 true。
//
// 空输入得到 1x1 画布。没有候选画布能容纳全部尺寸时返回 PACKING_INFEASIBLE 错误，
// 不会丢弃任何尺寸。
func Pack(sizes []Size, maxSize int, opts ...Option) (*Result, error) {
	o := options{heuristic: MaxRectsBAF, sortFunc: SortArea}
	for _, opt := range opts {
		opt(&o)
	}
	if maxSize < 1 || maxSize > MaxSizeLimit {
		return nil, errors.New(errors.ErrCodeInvalidInput, "max size must be within 1..%d (given %d)", MaxSizeLimit, maxSize)
	}
	if o.padding < 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "padding must not be negative (given %d)", o.padding)
	}
	if _, err := NewPacker(1, 1, o.heuristic); err != nil {
		return nil, err
	}
	limit := FloorPowerOfTwo(maxSize)
	if len(sizes) == 0 {
		return &Result{Width: 1, Height: 1}, nil
	}

	items := slices.Clone(sizes)
	var total int
	for i := range items {
		s := &items[i]
		if s.Width < 1 || s.Height < 1 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "size #%d has non-positive dimensions %dx%d", i, s.Width, s.Height)
		}
		if !s.FitsIn(limit, limit) {
			return nil, errors.New(errors.ErrCodePackingInfeasible,
				"size #%d (%dx%d) does not fit within %dx%d", i, s.Width, s.Height, limit, limit)
		}
		s.ID = i
		padded := *s
		padSize(&padded, o.padding)
		total += padded.Area()
	}

	for _, canvas := range candidates(limit) {
		if (canvas.Width+o.padding)*(canvas.Height+o.padding) < total || !allFit(items, canvas) {
			continue
		}
		rects, ok := packInto(items, canvas, o)
		if !ok {
			continue
		}
		for i := range rects {
			rects[i].ID = sizes[i].ID
		}
		return &Result{Width: canvas.Width, Height: canvas.Height, Rects: rects}, nil
	}
	return nil, errors.New(errors.ErrCodePackingInfeasible,
		"%d rectangles do not fit in any power-of-two canvas up to %dx%d", len(sizes), limit, limit)
}

// packInto 在固定尺寸的画布上尝试一次，按输入顺序返回放置结果。
func packInto(items []Size, canvas Size, o options) ([]Rect, bool) {
	packer, err := NewPacker(canvas.Width, canvas.Height, o.heuristic)
	if err != nil {
		return nil, false
	}
	packer.SetPadding(o.padding)
	packer.AllowRotate(true)
	packer.Sorter(o.sortFunc, false)
	packer.Insert(items...)
	if !packer.Pack() {
		return nil, false
	}
	rects := make([]Rect, len(items))
	for _, rect := range packer.Rects() {
		rects[rect.ID] = rect
	}
	return rects, true
}

// candidates 按 Pack 的尝试顺序列出不超过 limit x limit 的所有 2 的幂画布。
func candidates(limit int) []Size {
	var out []Size
	for w := 1; w <= limit; w <<= 1 {
		for h := 1; h <= limit; h <<= 1 {
			out = append(out, NewSize(w, h))
		}
	}
	slices.SortStableFunc(out, func(a, b Size) int {
		if c := cmp.Compare(a.Area(), b.Area()); c != 0 {
			return c
		}
		if c := cmp.Compare(a.MaxSide(), b.MaxSide()); c != 0 {
			return c
		}
		return cmp.Compare(b.Width, a.Width)
	})
	return out
}

func allFit(items []Size, canvas Size) bool {
	for i := range items {
		if !items[i].FitsIn(canvas.Width, canvas.Height) {
			return false
		}
	}
	return true
}

// IsPowerOfTwo 判断 n 是否为正的 2 的幂。
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// FloorPowerOfTwo 返回不大于 n 的最大 2 的幂，n < 1 时返回 0。
func FloorPowerOfTwo(n int) int {
	if n < 1 {
		return 0
	}
	return 1 << (bits.Len(uint(n)) - 1)
}
