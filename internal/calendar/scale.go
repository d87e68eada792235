package calendar

import "math"

// DefaultMinIntensity is the intensity of the faintest Counted cell.
const DefaultMinIntensity = 0.4

// MaxCount returns the largest Counted value in g, or 1 when there is none.
func MaxCount(g Grid) int {
	maxCount := 1
	for _, c := range g.cells {
		if c.Kind == Counted && c.Count > maxCount {
			maxCount = c.Count
		}
	}
	return maxCount
}

// Intensity maps a count onto [floor, 1] relative to maxCount.
// floor is clamped to [0, 1] and maxCount below 1 is treated as 1.
func Intensity(n, maxCount int, floor float64) float64 {
	floor = math.Max(0, math.Min(1, floor))
	if maxCount < 1 {
		maxCount = 1
	}
	return math.Min(1.0, floor+(float64(n)/float64(maxCount))*(1-floor))
}

// Scale returns the intensity of every Counted cell keyed by cell index.
// Future and Zero cells have no entry.
func Scale(g Grid, floor float64) map[int]float64 {
	maxCount := MaxCount(g)
	out := make(map[int]float64)
	for i, c := range g.cells {
		if c.Kind != Counted {
			continue
		}
		out[i] = Intensity(c.Count, maxCount, floor)
	}
	return out
}
