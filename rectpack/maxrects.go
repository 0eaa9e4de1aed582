package rectpack

import (
	"math"
	"slices"
)

// maxRectsPack 实现 MaxRects 算法：维护所有（可能相互重叠的）最大空闲矩形，
// 每放入一个矩形就切分与之相交的空闲矩形，并剔除被其他空闲矩形包含的部分。
type maxRectsPack struct {
	algorithmBase
	method    Heuristic
	freeRects []Rect
	padding   int
}

func newMaxRects(width, height int, heuristic Heuristic) *maxRectsPack {
	var packer maxRectsPack
	packer.method = heuristic.Bin()
	packer.Reset(width, height)
	return &packer
}

func (p *maxRectsPack) Reset(width, height int) {
	p.algorithmBase.Reset(width, height)
	p.freeRects = p.freeRects[:0]
	p.freeRects = append(p.freeRects, NewRect(0, 0, width, height))
}

func (p *maxRectsPack) Insert(padding int, sizes ...Size) []Size {
	var failed []Size
	p.padding = max(padding, 0)
	for _, size := range sizes {
		padded := size
		padSize(&padded, padding)
		node, ok := p.findPosition(padded)
		if !ok {
			failed = append(failed, size)
			continue
		}
		p.placeRect(node)
		p.commit(node, padding)
	}
	return failed
}

// score 返回放置评分，两个值都是越小越好
func (p *maxRectsPack) score(x, y, width, height int, freeRect *Rect) (int, int) {
	leftoverHoriz := abs(freeRect.Width - width)
	leftoverVert := abs(freeRect.Height - height)
	shortSide := min(leftoverHoriz, leftoverVert)
	longSide := max(leftoverHoriz, leftoverVert)
	switch p.method {
	case BestShortSideFit:
		return shortSide, longSide
	case BestLongSideFit:
		return longSide, shortSide
	case BottomLeft:
		return y + height, x
	case ContactPoint:
		// 接触长度越大越好，取负值以适配"越小越好"的比较
		return -p.contactScore(x, y, width, height), y + height
	default:
		return freeRect.Width*freeRect.Height - width*height, shortSide
	}
}

// contactScore 计算候选位置与画布边界及已放置矩形的公共边长度之和
func (p *maxRectsPack) contactScore(x, y, width, height int) int {
	score := 0
	if x == 0 || x+width == p.maxWidth {
		score += height
	}
	if y == 0 || y+height == p.maxHeight {
		score += width
	}
	for _, r := range p.packed {
		// 已放置的矩形不含间距，比较前补回
		r.Width += p.padding
		r.Height += p.padding
		if r.X == x+width || r.Right() == x {
			score += commonInterval(r.Y, r.Bottom(), y, y+height)
		}
		if r.Y == y+height || r.Bottom() == y {
			score += commonInterval(r.X, r.Right(), x, x+width)
		}
	}
	return score
}

// commonInterval 返回区间 [i1, i2) 与 [j1, j2) 的重叠长度
func commonInterval(i1, i2, j1, j2 int) int {
	if i2 < j1 || j2 < i1 {
		return 0
	}
	return min(i2, j2) - max(i1, j1)
}

// findPosition 在所有空闲矩形中寻找评分最优的位置。
// 评分相同时保留最先找到的位置；旋转只有在评分严格更优时才会被采用。
func (p *maxRectsPack) findPosition(size Size) (Rect, bool) {
	var bestNode Rect
	bestScore1, bestScore2 := math.MaxInt, math.MaxInt
	found := false
	rotate := p.canRotate(size)
	for i := range p.freeRects {
		freeRect := &p.freeRects[i]
		if size.Width <= freeRect.Width && size.Height <= freeRect.Height {
			s1, s2 := p.score(freeRect.X, freeRect.Y, size.Width, size.Height, freeRect)
			if s1 < bestScore1 || (s1 == bestScore1 && s2 < bestScore2) {
				bestNode = placeNode(freeRect.X, freeRect.Y, size, false)
				bestScore1, bestScore2 = s1, s2
				found = true
			}
		}
		if rotate && size.Height <= freeRect.Width && size.Width <= freeRect.Height {
			s1, s2 := p.score(freeRect.X, freeRect.Y, size.Height, size.Width, freeRect)
			if s1 < bestScore1 || (s1 == bestScore1 && s2 < bestScore2) {
				bestNode = placeNode(freeRect.X, freeRect.Y, size, true)
				bestScore1, bestScore2 = s1, s2
				found = true
			}
		}
	}
	return bestNode, found
}

// placeRect 切分所有与新矩形相交的空闲矩形
func (p *maxRectsPack) placeRect(node Rect) {
	n := len(p.freeRects)
	for i := 0; i < n; {
		if p.splitFreeNode(p.freeRects[i], node) {
			p.freeRects = slices.Delete(p.freeRects, i, i+1)
			n--
			continue
		}
		i++
	}
	p.pruneFreeList()
}

// splitFreeNode 如果 used 与 freeNode 相交，则把 freeNode 剩余的部分
// （最多四个最大矩形）追加到空闲列表并返回 true
func (p *maxRectsPack) splitFreeNode(freeNode, used Rect) bool {
	if !freeNode.Intersects(used) {
		return false
	}
	if used.X < freeNode.Right() && used.Right() > freeNode.X {
		// 上方剩余
		if used.Y > freeNode.Y && used.Y < freeNode.Bottom() {
			top := freeNode
			top.Height = used.Y - top.Y
			p.freeRects = append(p.freeRects, top)
		}
		// 下方剩余
		if used.Bottom() < freeNode.Bottom() {
			bottom := freeNode
			bottom.Y = used.Bottom()
			bottom.Height = freeNode.Bottom() - used.Bottom()
			p.freeRects = append(p.freeRects, bottom)
		}
	}
	if used.Y < freeNode.Bottom() && used.Bottom() > freeNode.Y {
		// 左侧剩余
		if used.X > freeNode.X && used.X < freeNode.Right() {
			left := freeNode
			left.Width = used.X - left.X
			p.freeRects = append(p.freeRects, left)
		}
		// 右侧剩余
		if used.Right() < freeNode.Right() {
			right := freeNode
			right.X = used.Right()
			right.Width = freeNode.Right() - used.Right()
			p.freeRects = append(p.freeRects, right)
		}
	}
	return true
}

// pruneFreeList 删除被其他空闲矩形完全包含的空闲矩形
func (p *maxRectsPack) pruneFreeList() {
	for i := 0; i < len(p.freeRects); i++ {
		for j := i + 1; j < len(p.freeRects); j++ {
			if p.freeRects[j].ContainsRect(p.freeRects[i]) {
				p.freeRects = slices.Delete(p.freeRects, i, i+1)
				i--
				break
			}
			if p.freeRects[i].ContainsRect(p.freeRects[j]) {
				p.freeRects = slices.Delete(p.freeRects, j, j+1)
				j--
			}
		}
	}
}
