package engine

import (
	"math"
	"time"

	"github.com/boddenberg/treasury-stress-go/internal/domain"
)

// Summarize derives the verdict and runway from a walk. A negative runway
// means the shortfall is already behind now.
func Summarize(w WalkResult, now time.Time) (domain.SimulationStatus, *int) {
	if w.MinCash >= 0 {
		return domain.StatusSustainable, nil
	}
	if w.InsolvencyDate == nil {
		// only reachable with a negative opening balance, which Simulate rejects
		return domain.StatusInsolvent, nil
	}
	days := int(math.Floor(w.InsolvencyDate.Sub(now).Hours() / 24))
	return domain.StatusInsolvent, &days
}
