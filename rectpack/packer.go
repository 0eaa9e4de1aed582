package rectpack

import (
	"slices"

	"spriteatlas/errors"
)

// DefaultSize 定义了矩形包装器的默认最大宽度/高度值
// 基于现代GPU的最大纹理尺寸。
const DefaultSize = 4096

// Packer 包含2D矩形包装器的状态
type Packer struct {
	// unpacked 包含尚未包装或无法包装的尺寸
	unpacked []Size

	// algo 是实现具体包装算法的实例
	algo packAlgorithm

	// sortFunc 定义在排序时用于比较尺寸大小的函数
	//
	// 默认值：SortArea
	sortFunc SortFunc

	// padding 定义矩形之间预留的空隙大小。值为0或负数
	// 表示矩形将被紧密排列
	//
	// 默认值：0
	padding int

	// sortRev 表示是否启用反向排序
	//
	// 默认值：false
	sortRev bool

	// maxWidth/maxHeight 是调用者看到的区域大小（不含间距补偿）
	maxWidth, maxHeight int

	// Online 表示矩形是否应该在插入时立即包装(在线模式)，
	// 或者只是收集起来等待后续打包(离线模式)
	//
	// 在线包装更快，但由于无法预先排序，结果通常较差。
	// 生成纹理图集时应使用离线模式(默认)。
	//
	// 默认值：false
	Online bool
}

// Size 计算当前包装区域的尺寸，返回包含所有已包装矩形所需的最小尺寸
func (p *Packer) Size() Size {
	var size Size
	for _, rect := range p.algo.Rects() {
		size.Width = max(size.Width, rect.Right())
		size.Height = max(size.Height, rect.Bottom())
	}
	return size
}

// Insert 向包装器中插入多个尺寸
// 在线模式下会立即尝试包装，离线模式下只是暂存尺寸
func (p *Packer) Insert(sizes ...Size) []Size {
	if p.Online {
		failed := p.algo.Insert(p.padding, sizes...)
		p.unpacked = append(p.unpacked, failed...)
		return failed
	}
	p.unpacked = append(p.unpacked, sizes...)
	return p.unpacked
}

// InsertSize 向包装器中插入指定ID和尺寸的矩形
// 返回是否插入/包装成功
func (p *Packer) InsertSize(id, width, height int) bool {
	result := p.Insert(NewSizeID(id, width, height))
	if p.Online && len(result) != 0 {
		return false
	}
	return true
}

// Sorter 设置用于packing的排序函数和排序顺序
//
//	compare - 用于比较两个尺寸大小的函数，nil 表示保持插入顺序
//	reverse - 是否启用反向排序
//
// 排序是稳定的：比较结果相等的尺寸保持插入顺序。
func (p *Packer) Sorter(compare SortFunc, reverse bool) {
	p.sortFunc = compare
	p.sortRev = reverse
}

// SetPadding 设置矩形之间的间距。
// 间距加在每个矩形的右侧和底部，包装区域也同步扩大，
// 因此放置结果仍然完全位于 maxWidth x maxHeight 之内。
func (p *Packer) SetPadding(padding int) {
	p.padding = max(padding, 0)
	p.Clear()
}

// Rects 获取所有已成功包装的矩形
//
// 返回的切片由内部管理，如需修改请复制
func (p *Packer) Rects() []Rect {
	return p.algo.Rects()
}

// Unpacked 获取所有暂存但未包装的矩形尺寸
//
// 返回的切片由内部管理，如需修改请复制
func (p *Packer) Unpacked() []Size {
	return p.unpacked
}

// Used 计算当前空间利用率
//
//	current - true:计算当前区域使用率 false:计算最大可能区域使用率
//
// 返回值在 0.0-1.0 之间
func (p *Packer) Used(current bool) float64 {
	var used int
	for _, rect := range p.algo.Rects() {
		used += rect.Area()
	}
	size := NewSize(p.maxWidth, p.maxHeight)
	if current {
		size = p.Size()
	}
	if size.Area() == 0 {
		return 0
	}
	return float64(used) / float64(size.Area())
}

// Map 创建矩形ID到矩形对象的映射
func (p *Packer) Map() map[int]Rect {
	rects := p.algo.Rects()
	mapping := make(map[int]Rect, len(rects))
	for _, rect := range rects {
		mapping[rect.ID] = rect
	}
	return mapping
}

// Clear 重置包装器状态(保留配置)
// 清除所有已包装和暂存的矩形
func (p *Packer) Clear() {
	p.algo.Reset(p.maxWidth+p.padding, p.maxHeight+p.padding)
	p.unpacked = p.unpacked[:0]
}

// Pack 尝试打包所有暂存的矩形
//
// 返回 true 表示全部打包成功；false 表示部分失败，可通过 Unpacked 获取失败的尺寸
func (p *Packer) Pack() bool {
	if len(p.unpacked) == 0 {
		return true
	}
	if p.sortFunc != nil {
		if p.sortRev {
			slices.SortStableFunc(p.unpacked, func(a, b Size) int {
				return p.sortFunc(b, a)
			})
		} else {
			slices.SortStableFunc(p.unpacked, p.sortFunc)
		}
	} else if p.sortRev {
		slices.Reverse(p.unpacked)
	}
	failed := p.algo.Insert(p.padding, p.unpacked...)
	if len(failed) == 0 {
		p.unpacked = p.unpacked[:0]
		return true
	}
	p.unpacked = failed
	return false
}

// AllowRotate 设置是否允许矩形旋转以优化布局
// 只有 Rotatable 为 true 的尺寸会被旋转
//
// 默认值: false
func (p *Packer) AllowRotate(enabled bool) {
	p.algo.AllowRotate(enabled)
}

// NewPacker 创建并初始化一个新的矩形包装器
//
//	maxWidth - 包装区域的最大宽度(必须大于0)
//	maxHeight - 包装区域的最大高度(必须大于0)
//	heuristic - 包装算法和方法组合
func NewPacker(maxWidth, maxHeight int, heuristic Heuristic) (*Packer, error) {
	if maxWidth <= 0 || maxHeight <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"width and height must be greater than 0 (given %vx%v)", maxWidth, maxHeight)
	}
	p := &Packer{
		sortFunc:  SortArea,
		maxWidth:  maxWidth,
		maxHeight: maxHeight,
	}
	switch heuristic.Algorithm() {
	case MaxRects:
		p.algo = newMaxRects(maxWidth, maxHeight, heuristic)
	case Skyline:
		p.algo = newSkyline(maxWidth, maxHeight, heuristic)
	case Guillotine:
		p.algo = newGuillotine(maxWidth, maxHeight, heuristic)
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "heuristic %#x specifies an invalid algorithm", uint16(heuristic))
	}
	return p, nil
}

// NewDefaultPacker 创建使用默认配置的包装器
//   - 最大尺寸: DefaultSize (4096x4096)
//   - 算法: MaxRectsBAF
func NewDefaultPacker() *Packer {
	packer, _ := NewPacker(DefaultSize, DefaultSize, MaxRectsBAF)
	return packer
}
