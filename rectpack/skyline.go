package rectpack

import (
	"math"
	"slices"
)

// skyLine 是天际线上的一段水平线段
type skyLine struct {
	x, y, len int
}

// skylinePack 实现天际线（Skyline）算法：只记录已放置矩形的上轮廓，
// 新矩形总是放在轮廓之上，因此结果天然不会重叠。
type skylinePack struct {
	algorithmBase
	skyLines []skyLine
}

func newSkyline(width, height int, _ Heuristic) *skylinePack {
	var packer skylinePack
	packer.Reset(width, height)
	return &packer
}

func (p *skylinePack) Reset(width, height int) {
	p.algorithmBase.Reset(width, height)
	p.skyLines = p.skyLines[:0]
	p.skyLines = append(p.skyLines, skyLine{x: 0, y: 0, len: width})
}

func (p *skylinePack) Insert(padding int, sizes ...Size) []Size {
	var failed []Size
	for _, size := range sizes {
		padded := size
		padSize(&padded, padding)
		node, index, ok := p.findPosition(padded)
		if !ok {
			failed = append(failed, size)
			continue
		}
		p.addSkyLine(index, node)
		p.commit(node, padding)
	}
	return failed
}

// fits 返回矩形左边缘对齐第 index 段天际线时可放置的 y 坐标
func (p *skylinePack) fits(index, width, height int) (int, bool) {
	x := p.skyLines[index].x
	if x+width > p.maxWidth {
		return 0, false
	}
	widthLeft := width
	y := p.skyLines[index].y
	for i := index; widthLeft > 0; i++ {
		if i >= len(p.skyLines) {
			return 0, false
		}
		y = max(y, p.skyLines[i].y)
		if y+height > p.maxHeight {
			return 0, false
		}
		widthLeft -= p.skyLines[i].len
	}
	return y, true
}

// findPosition 采用左下角（Bottom-Left）规则：顶边最低者优先，
// 其次选择更窄的天际线段；旋转只有在严格更优时才会被采用。
func (p *skylinePack) findPosition(size Size) (Rect, int, bool) {
	var bestNode Rect
	bestHeight, bestWidth := math.MaxInt, math.MaxInt
	bestIndex := -1
	rotate := p.canRotate(size)
	for i, line := range p.skyLines {
		if y, ok := p.fits(i, size.Width, size.Height); ok {
			top := y + size.Height
			if top < bestHeight || (top == bestHeight && line.len < bestWidth) {
				bestNode = placeNode(line.x, y, size, false)
				bestHeight, bestWidth, bestIndex = top, line.len, i
			}
		}
		if !rotate {
			continue
		}
		if y, ok := p.fits(i, size.Height, size.Width); ok {
			top := y + size.Width
			if top < bestHeight || (top == bestHeight && line.len < bestWidth) {
				bestNode = placeNode(line.x, y, size, true)
				bestHeight, bestWidth, bestIndex = top, line.len, i
			}
		}
	}
	return bestNode, bestIndex, bestIndex >= 0
}

// addSkyLine 在 index 处插入新矩形的顶边，并裁剪被它覆盖的后续线段
func (p *skylinePack) addSkyLine(index int, node Rect) {
	p.skyLines = slices.Insert(p.skyLines, index, skyLine{x: node.X, y: node.Bottom(), len: node.Width})
	for i := index + 1; i < len(p.skyLines); i++ {
		prev := p.skyLines[i-1]
		if p.skyLines[i].x >= prev.x+prev.len {
			break
		}
		shrink := prev.x + prev.len - p.skyLines[i].x
		p.skyLines[i].x += shrink
		p.skyLines[i].len -= shrink
		if p.skyLines[i].len > 0 {
			break
		}
		p.skyLines = slices.Delete(p.skyLines, i, i+1)
		i--
	}
	p.mergeSkyLines()
}

// mergeSkyLines 合并高度相同的相邻线段
func (p *skylinePack) mergeSkyLines() {
	for i := 0; i < len(p.skyLines)-1; i++ {
		if p.skyLines[i].y == p.skyLines[i+1].y {
			p.skyLines[i].len += p.skyLines[i+1].len
			p.skyLines = slices.Delete(p.skyLines, i+1, i+2)
			i--
		}
	}
}
