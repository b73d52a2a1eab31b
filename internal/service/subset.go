package service

// Subset 返回 [start, end) 区间，越界时截断而不是报错
func Subset[T any](items []T, start, end int) []T {
	if start < 0 {
		start = 0
	}
	if end > len(items) {
		end = len(items)
	}
	if start >= end {
		return []T{}
	}
	return items[start:end:end]
}
