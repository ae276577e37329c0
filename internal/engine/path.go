package engine

import "github.com/boddenberg/treasury-stress-go/internal/domain"

// NormalizePath maps a balance series onto chart coordinates: x spans
// [0,100) left to right, y runs from 90 (minCash) up to 10 (maxCash). At
// most MaxPathPoints samples are kept, plus the last one.
func NormalizePath(balances []domain.Money, minCash, maxCash domain.Money) []domain.PathPoint {
	n := len(balances)
	if n == 0 {
		return []domain.PathPoint{}
	}

	span := float64(max(maxCash-minCash, MinPathRange))
	step := (n + MaxPathPoints - 1) / MaxPathPoints

	point := func(i int) domain.PathPoint {
		pct := float64(balances[i]-minCash) / span
		return domain.PathPoint{
			X: float64(i) / float64(n) * 100,
			Y: 90 - pct*80,
		}
	}

	path := make([]domain.PathPoint, 0, n/step+2)
	last := 0
	for i := 0; i < n; i += step {
		path = append(path, point(i))
		last = i
	}
	if last != n-1 {
		path = append(path, point(n-1))
	}
	return path
}
