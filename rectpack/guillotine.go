package rectpack

import (
	"math"
	"slices"
)

type scoreFunc func(width, height int, freeRect *Rect) int

type guillotinePack struct {
	algorithmBase
	Merge       bool
	splitMethod Heuristic
	scoreRect   scoreFunc
	freeRects   []Rect
}

func newGuillotine(width, height int, heuristic Heuristic) *guillotinePack {
	var packer guillotinePack
	packer.Merge = true
	switch heuristic & fitMask {
	case BestShortSideFit:
		packer.scoreRect = scoreBestShort
	case BestLongSideFit:
		packer.scoreRect = scoreBestLong
	case WorstAreaFit:
		packer.scoreRect = func(w, h int, r *Rect) int { return -scoreBestArea(w, h, r) }
	case WorstShortSideFit:
		packer.scoreRect = func(w, h int, r *Rect) int { return -scoreBestShort(w, h, r) }
	case WorstLongSideFit:
		packer.scoreRect = func(w, h int, r *Rect) int { return -scoreBestLong(w, h, r) }
	default:
		packer.scoreRect = scoreBestArea
	}
	packer.splitMethod = heuristic.Split()
	packer.Reset(width, height)
	return &packer
}

func (p *guillotinePack) Reset(width, height int) {
	p.algorithmBase.Reset(width, height)
	p.freeRects = p.freeRects[:0]
	p.freeRects = append(p.freeRects, NewRect(0, 0, p.maxWidth, p.maxHeight))
}

func (p *guillotinePack) Insert(padding int, sizes ...Size) []Size {
	var failed []Size
	for _, size := range sizes {
		padded := size
		padSize(&padded, padding)
		newNode, index, ok := p.findPosition(padded)
		if !ok {
			failed = append(failed, size)
			continue
		}
		p.splitByHeuristic(&p.freeRects[index], &newNode)
		p.freeRects = slices.Delete(p.freeRects, index, index+1)
		if p.Merge {
			p.mergeFreeList()
		}
		p.commit(newNode, padding)
	}
	return failed
}

func scoreBestArea(width, height int, freeRect *Rect) int {
	return freeRect.Width*freeRect.Height - width*height
}

func scoreBestShort(width, height int, freeRect *Rect) int {
	leftoverHoriz := abs(freeRect.Width - width)
	leftoverVert := abs(freeRect.Height - height)
	return min(leftoverHoriz, leftoverVert)
}

func scoreBestLong(width, height int, freeRect *Rect) int {
	leftoverHoriz := abs(freeRect.Width - width)
	leftoverVert := abs(freeRect.Height - height)
	return max(leftoverHoriz, leftoverVert)
}

func (p *guillotinePack) splitAlongAxis(freeRect, placedRect *Rect, splitHorizontal bool) {
	var bottom Rect
	bottom.X = freeRect.X
	bottom.Y = freeRect.Y + placedRect.Height
	bottom.Height = freeRect.Height - placedRect.Height
	var right Rect
	right.X = freeRect.X + placedRect.Width
	right.Y = freeRect.Y
	right.Width = freeRect.Width - placedRect.Width
	if splitHorizontal {
		bottom.Width = freeRect.Width
		right.Height = placedRect.Height
	} else {
		bottom.Width = placedRect.Width
		right.Height = freeRect.Height
	}
	if bottom.Width > 0 && bottom.Height > 0 {
		p.freeRects = append(p.freeRects, bottom)
	}
	if right.Width > 0 && right.Height > 0 {
		p.freeRects = append(p.freeRects, right)
	}
}

// findPosition 返回最佳放置位置及其所在空闲矩形的下标。
// 完全贴合的空闲矩形会被立即采用。
func (p *guillotinePack) findPosition(size Size) (Rect, int, bool) {
	var bestNode Rect
	bestScore := math.MaxInt
	nodeIndex := -1
	rotate := p.canRotate(size)
	width, height := size.Width, size.Height
	for i := range p.freeRects {
		freeRect := &p.freeRects[i]
		if width == freeRect.Width && height == freeRect.Height {
			return placeNode(freeRect.X, freeRect.Y, size, false), i, true
		} else if rotate && height == freeRect.Width && width == freeRect.Height {
			return placeNode(freeRect.X, freeRect.Y, size, true), i, true
		}
		if width <= freeRect.Width && height <= freeRect.Height {
			score := p.scoreRect(width, height, freeRect)
			if score < bestScore {
				bestNode = placeNode(freeRect.X, freeRect.Y, size, false)
				bestScore = score
				nodeIndex = i
			}
		}
		if rotate && height <= freeRect.Width && width <= freeRect.Height {
			score := p.scoreRect(height, width, freeRect)
			if score < bestScore {
				bestNode = placeNode(freeRect.X, freeRect.Y, size, true)
				bestScore = score
				nodeIndex = i
			}
		}
	}
	return bestNode, nodeIndex, nodeIndex >= 0
}

func (p *guillotinePack) splitByHeuristic(freeRect, placedRect *Rect) {
	w := freeRect.Width - placedRect.Width
	h := freeRect.Height - placedRect.Height
	var splitHorizontal bool
	switch p.splitMethod {
	case SplitShorterLeftoverAxis:
		splitHorizontal = w <= h
	case SplitLongerLeftoverAxis:
		splitHorizontal = w > h
	case SplitMinimizeArea:
		splitHorizontal = placedRect.Width*h > w*placedRect.Height
	case SplitMaximizeArea:
		splitHorizontal = placedRect.Width*h <= w*placedRect.Height
	case SplitShorterAxis:
		splitHorizontal = freeRect.Width <= freeRect.Height
	case SplitLongerAxis:
		splitHorizontal = freeRect.Width > freeRect.Height
	default:
		splitHorizontal = true
	}

	p.splitAlongAxis(freeRect, placedRect, splitHorizontal)
}

// mergeFreeList 合并相邻且边长对齐的空闲矩形
func (p *guillotinePack) mergeFreeList() {
	for i := 0; i < len(p.freeRects); i++ {
		for j := i + 1; j < len(p.freeRects); j++ {
			a, b := &p.freeRects[i], &p.freeRects[j]
			if a.Width == b.Width && a.X == b.X {
				if a.Y == b.Bottom() {
					a.Y -= b.Height
					a.Height += b.Height
					p.freeRects = slices.Delete(p.freeRects, j, j+1)
					j--
				} else if a.Bottom() == b.Y {
					a.Height += b.Height
					p.freeRects = slices.Delete(p.freeRects, j, j+1)
					j--
				}
			} else if a.Height == b.Height && a.Y == b.Y {
				if a.X == b.Right() {
					a.X -= b.Width
					a.Width += b.Width
					p.freeRects = slices.Delete(p.freeRects, j, j+1)
					j--
				} else if a.Right() == b.X {
					a.Width += b.Width
					p.freeRects = slices.Delete(p.freeRects, j, j+1)
					j--
				}
			}
		}
	}
}
