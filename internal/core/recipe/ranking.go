package recipe

import "slices"

// Rank 依缺少食材數量穩定排序（少的在前），回傳新的切片
func Rank(in []Summary) []Summary {
	out := slices.Clone(in)
	slices.SortStableFunc(out, func(a, b Summary) int {
		return len(a.MissingIngredients) - len(b.MissingIngredients)
	})
	return out
}
