package rectpack

import (
	"strings"

	"spriteatlas/errors"
)

// Heuristic 是组合包装算法、空闲矩形选择方法以及（仅 Guillotine 使用的）切分规则的位掩码。
type Heuristic uint16

const (
	MaxRects   Heuristic = 0x0
	Skyline    Heuristic = 0x1
	Guillotine Heuristic = 0x2

	BestShortSideFit  Heuristic = 0x00
	BestLongSideFit   Heuristic = 0x10
	BestAreaFit       Heuristic = 0x20
	BottomLeft        Heuristic = 0x30
	ContactPoint      Heuristic = 0x40
	WorstAreaFit      Heuristic = 0x50
	WorstShortSideFit Heuristic = 0x60
	WorstLongSideFit  Heuristic = 0x70

	SplitShorterLeftoverAxis Heuristic = 0x0000
	SplitLongerLeftoverAxis  Heuristic = 0x0100
	SplitMinimizeArea        Heuristic = 0x0200
	SplitMaximizeArea        Heuristic = 0x0300
	SplitShorterAxis         Heuristic = 0x0400
	SplitLongerAxis          Heuristic = 0x0500

	typeMask  Heuristic = 0x000F
	fitMask   Heuristic = 0x00F0
	splitMask Heuristic = 0x0F00

	/**********************************************************************************************
	* 预设的有效组合
	**********************************************************************************************/
	MaxRectsBSSF   = MaxRects | BestShortSideFit
	MaxRectsBL     = MaxRects | BottomLeft
	MaxRectsCP     = MaxRects | ContactPoint
	MaxRectsBLSF   = MaxRects | BestLongSideFit
	MaxRectsBAF    = MaxRects | BestAreaFit
	SkylineBL      = Skyline | BottomLeft
	GuillotineBAF  = Guillotine | BestAreaFit | SplitMinimizeArea
	GuillotineBSSF = Guillotine | BestShortSideFit | SplitMinimizeArea
	GuillotineBLSF = Guillotine | BestLongSideFit | SplitMinimizeArea
	GuillotineWAF  = Guillotine | WorstAreaFit | SplitMinimizeArea
	GuillotineWSSF = Guillotine | WorstShortSideFit | SplitMinimizeArea
	GuillotineWLSF = Guillotine | WorstLongSideFit | SplitMinimizeArea
)

// Algorithm 返回位掩码中的算法部分。
func (e Heuristic) Algorithm() Heuristic {
	return e & typeMask
}

// Bin 返回位掩码中的空闲矩形选择方法部分。
func (e Heuristic) Bin() Heuristic {
	return e & fitMask
}

// Split 返回位掩码中的切分规则部分。
func (e Heuristic) Split() Heuristic {
	return e & splitMask
}

// String 返回算法与选择方法的名称，例如 "MaxRects/BestAreaFit"。
func (e Heuristic) String() string {
	var algo string
	switch e.Algorithm() {
	case MaxRects:
		algo = "MaxRects"
	case Skyline:
		algo = "Skyline"
	case Guillotine:
		algo = "Guillotine"
	default:
		return "Invalid"
	}
	for name, fit := range fitNames {
		if fit == e.Bin() {
			return algo + "/" + name
		}
	}
	return algo
}

var fitNames = map[string]Heuristic{
	"BestShortSideFit":  BestShortSideFit,
	"BestLongSideFit":   BestLongSideFit,
	"BestAreaFit":       BestAreaFit,
	"BottomLeft":        BottomLeft,
	"ContactPoint":      ContactPoint,
	"WorstAreaFit":      WorstAreaFit,
	"WorstShortSideFit": WorstShortSideFit,
	"WorstLongSideFit":  WorstLongSideFit,
}

// ResolveAlgorithm 将命令行和配置文件中的算法名与变体名映射为 Heuristic，
// 名称不区分大小写。
func ResolveAlgorithm(algo, variant string) (Heuristic, error) {
	switch strings.ToLower(algo) {
	case "maxrects":
		switch strings.ToLower(variant) {
		case "bestshortsidefit":
			return MaxRectsBSSF, nil
		case "bottomleft":
			return MaxRectsBL, nil
		case "contactpoint":
			return MaxRectsCP, nil
		case "bestlongsidefit":
			return MaxRectsBLSF, nil
		case "bestareafit", "":
			return MaxRectsBAF, nil
		}
	case "skyline":
		switch strings.ToLower(variant) {
		case "bottomleft", "":
			return SkylineBL, nil
		}
	case "guillotine":
		switch strings.ToLower(variant) {
		case "bestareafit", "":
			return GuillotineBAF, nil
		case "bestshortsidefit":
			return GuillotineBSSF, nil
		case "bestlongsidefit":
			return GuillotineBLSF, nil
		case "worstareafit":
			return GuillotineWAF, nil
		case "worstshortsidefit":
			return GuillotineWSSF, nil
		case "worstlongsidefit":
			return GuillotineWLSF, nil
		}
	default:
		return 0, errors.New(errors.ErrCodeInvalidInput, "unknown packing algorithm %q", algo)
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "variant %q is not valid for algorithm %q", variant, algo)
}
