package rectpack

// packAlgorithm 是一个包装算法的接口
type packAlgorithm interface {
	// 重置包装器到初始状态，设置最大宽高。
	Reset(width, height int)

	// 按给定顺序逐个插入矩形，指定矩形间的间距。
	// 返回无法包装的尺寸（保持原顺序）。
	Insert(padding int, sizes ...Size) []Size

	// 返回已包装的矩形列表。
	Rects() []Rect

	// 设置是否允许旋转矩形以优化放置。
	// 只有 Size.Rotatable 为 true 的尺寸才会被旋转。
	// 默认：false
	AllowRotate(enabled bool)
}

// algorithmBase 是一个包装算法的基础实现
type algorithmBase struct {
	packed      []Rect // 已包装的矩形
	maxWidth    int    // 包装器的最大宽度
	maxHeight   int    // 包装器的最大高度
	allowRotate bool   // 是否允许旋转矩形
}

// Reset 重置包装器的状态，设置新的最大宽度和最大高度，清空已包装矩形。
//
//	width - 包装器的新最大宽度
//	height - 包装器的新最大高度
func (p *algorithmBase) Reset(width, height int) {
	p.maxWidth = width
	p.maxHeight = height
	p.packed = p.packed[:0]
}

// Rects 返回已包装的矩形列表。
func (p *algorithmBase) Rects() []Rect {
	return p.packed
}

// AllowRotate 设置是否允许旋转矩形以优化放置。
func (p *algorithmBase) AllowRotate(enabled bool) {
	p.allowRotate = enabled
}

// canRotate 判断某个尺寸在当前设置下是否可以旋转
func (p *algorithmBase) canRotate(size Size) bool {
	return p.allowRotate && size.Rotatable && size.Width != size.Height
}

// commit 记录一个已放置的矩形，移除间距后加入已包装列表
func (p *algorithmBase) commit(node Rect, padding int) {
	unpadRect(&node, padding)
	p.packed = append(p.packed, node)
}

// placeNode 根据是否旋转构造放置结果，保留尺寸的 ID 与可旋转标记
func placeNode(x, y int, size Size, rotated bool) Rect {
	node := Rect{Point: Point{X: x, Y: y}, Size: size}
	if rotated {
		node.Width, node.Height = size.Height, size.Width
		node.Rotated = true
	}
	return node
}
