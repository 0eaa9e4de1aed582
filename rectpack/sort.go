package rectpack

import (
	"cmp"
	"strings"

	"spriteatlas/errors"
)

// SortFunc 定义矩形尺寸比较函数的原型
// 返回值:
//
//	-1: a 排在 b 前面
//	 0: a 与 b 相等（保持输入顺序）
//	 1: a 排在 b 后面
type SortFunc func(a, b Size) int

// SortArea 按矩形面积降序排序(从大到小)
func SortArea(a, b Size) int {
	return cmp.Compare(b.Area(), a.Area())
}

// SortPerimeter 按矩形周长降序排序(从大到小)
func SortPerimeter(a, b Size) int {
	return cmp.Compare(b.Perimeter(), a.Perimeter())
}

// SortDiff 按矩形宽高差降序排序(从大到小)
func SortDiff(a, b Size) int {
	return cmp.Compare(abs(b.Width-b.Height), abs(a.Width-a.Height))
}

// SortMinSide 按矩形最短边降序排序(从大到小)
func SortMinSide(a, b Size) int {
	return cmp.Compare(b.MinSide(), a.MinSide())
}

// SortMaxSide 按矩形最长边降序排序(从大到小)
func SortMaxSide(a, b Size) int {
	return cmp.Compare(b.MaxSide(), a.MaxSide())
}

// SortRatio 按矩形宽高比降序排序(从大到小)
func SortRatio(a, b Size) int {
	return cmp.Compare(b.Ratio(), a.Ratio())
}

// sortFuncs 将配置中的排序名称映射到比较函数
var sortFuncs = map[string]SortFunc{
	"area":      SortArea,
	"perimeter": SortPerimeter,
	"diff":      SortDiff,
	"minside":   SortMinSide,
	"maxside":   SortMaxSide,
	"ratio":     SortRatio,
}

// ResolveSort 根据名称(不区分大小写)返回排序函数，空名称表示按面积排序
func ResolveSort(name string) (SortFunc, error) {
	if name == "" {
		return SortArea, nil
	}
	if fn, ok := sortFuncs[strings.ToLower(name)]; ok {
		return fn, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput,
		"unknown sort %q (must be one of: area, perimeter, diff, minside, maxside, ratio)", name)
}
