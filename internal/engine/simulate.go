package engine

import (
	"time"

	"github.com/boddenberg/treasury-stress-go/internal/domain"

	"go.uber.org/zap"
)

// SimulationInput is an immutable snapshot for one run.
type SimulationInput struct {
	Records       []domain.ServiceRecord
	FixedExpenses []domain.FixedExpense
	Scenario      domain.ScenarioConfig
	StartCash     domain.Money
	Now           time.Time
}

// Simulate projects the cash balance for in and summarizes it. Invalid
// scenarios are rejected with *domain.ErrInvalidScenario before any work is
// done. An empty record set yields a flat SUSTAINABLE result at StartCash.
func Simulate(in SimulationInput, opts ...Option) (*domain.SimulationResult, error) {
	o := newOptions(opts)

	if err := in.Scenario.Validate(); err != nil {
		return nil, err
	}
	if in.StartCash < 0 {
		return nil, &domain.ErrInvalidScenario{Field: "startCash", Reason: "must not be negative"}
	}

	records, issues := sanitizeRecords(in.Records, o.logger)

	window := domain.SimulationWindow{From: in.Now, To: in.Now}
	var events []domain.CashEvent
	if len(records) > 0 {
		first, last := dateBounds(records)
		window = domain.SimulationWindow{
			From: first,
			To:   last.AddDate(0, 0, in.Scenario.CxcDays+o.bufferDays),
		}
		events = ProjectEvents(records, in.Scenario)
		events = append(events, ScheduleFixedCosts(in.FixedExpenses, window.From, window.To)...)
	}

	walk := Walk(BuildTimeline(events), in.StartCash, window.From)
	status, runway := Summarize(walk, in.Now)

	if walk.MaxCash-walk.MinCash < MinPathRange {
		o.logger.Debug("flat balance, path range floored",
			zap.Int64("min_cash", int64(walk.MinCash)),
			zap.Int64("max_cash", int64(walk.MaxCash)),
		)
	}

	return &domain.SimulationResult{
		Status:            status,
		StartCash:         in.StartCash,
		EndCash:           walk.EndCash,
		MinCash:           walk.MinCash,
		MaxCash:           walk.MaxCash,
		InsolvencyDate:    walk.InsolvencyDate,
		RunwayDays:        runway,
		BalancePath:       NormalizePath(walk.Balances(), walk.MinCash, walk.MaxCash),
		Series:            walk.Series,
		Window:            window,
		EventCount:        len(events),
		DataQualityIssues: issues,
	}, nil
}

// sanitizeRecords copies records, moving missing dates to Epoch. Nothing is
// dropped so totals stay reconcilable.
func sanitizeRecords(in []domain.ServiceRecord, logger *zap.Logger) ([]domain.ServiceRecord, int) {
	out := make([]domain.ServiceRecord, len(in))
	issues := 0
	for i, r := range in {
		if r.Date.IsZero() {
			logger.Warn("service record without a valid date, using epoch",
				zap.String("record_id", r.ID),
				zap.String("client", r.ClientName),
			)
			r.Date = Epoch
			issues++
		}
		out[i] = r
	}
	return out, issues
}

func dateBounds(records []domain.ServiceRecord) (first, last time.Time) {
	first, last = records[0].Date, records[0].Date
	for _, r := range records[1:] {
		if r.Date.Before(first) {
			first = r.Date
		}
		if r.Date.After(last) {
			last = r.Date
		}
	}
	return first, last
}
