// Package service orchestrates the treasury use cases: it loads inputs from
// the configured store, runs the stress engine and caches the runs.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/boddenberg/treasury-stress-go/internal/domain"
	"github.com/boddenberg/treasury-stress-go/internal/engine"
	"github.com/boddenberg/treasury-stress-go/internal/infra/observability"
	"github.com/boddenberg/treasury-stress-go/internal/infra/resilience"
	"github.com/boddenberg/treasury-stress-go/internal/port"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

var tracer = otel.Tracer("service/treasury")

// MaxCompareScenarios bounds a single comparison request.
const MaxCompareScenarios = 12

// TreasuryService runs stress simulations over the live record set.
type TreasuryService struct {
	store    port.TreasuryStore
	cache    port.Cache[*domain.SimulationRun]
	policy   domain.TreasuryPolicy
	bulkhead *resilience.Bulkhead
	metrics  *observability.Metrics
	logger   *zap.Logger

	now    func() time.Time
	flight singleflight.Group

	// baseline is read lock-free; writers hold baselineMu. Each refresh takes
	// a generation at trigger time and never publishes over a newer one.
	baseline     atomic.Pointer[domain.BaselineSnapshot]
	baselineMu   sync.Mutex
	triggeredGen uint64
	publishedGen uint64
}

// NewTreasuryService creates the service with all dependencies injected.
func NewTreasuryService(
	store port.TreasuryStore,
	cache port.Cache[*domain.SimulationRun],
	policy domain.TreasuryPolicy,
	bulkhead *resilience.Bulkhead,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *TreasuryService {
	svc := &TreasuryService{
		store:    store,
		cache:    cache,
		policy:   policy,
		bulkhead: bulkhead,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
	svc.baseline.Store(&domain.BaselineSnapshot{State: domain.BaselineStale})
	return svc
}

// WithClock replaces the wall clock, for tests and replays.
func (s *TreasuryService) WithClock(now func() time.Time) *TreasuryService {
	s.now = now
	return s
}

// Policy returns the active treasury policy.
func (s *TreasuryService) Policy() domain.TreasuryPolicy {
	return s.policy
}

// inputs is one consistent snapshot of the store.
type inputs struct {
	records      []domain.ServiceRecord
	transactions []domain.BankTransaction
	filter       domain.TimeFilter
	asOf         time.Time
}

// Simulate runs one scenario. Nil request fields fall back to the policy.
func (s *TreasuryService) Simulate(ctx context.Context, req domain.SimulationRequest) (*domain.SimulationRun, error) {
	ctx, span := tracer.Start(ctx, "Treasury.Simulate")
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("simulate", time.Since(start))
	}()

	scenario, startCash, err := s.resolve(req.Scenario, req.StartCash)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("scenario.cxc_days", scenario.CxcDays),
		attribute.Int("scenario.cxp_freq", scenario.CxpFreq),
		attribute.Float64("scenario.growth", scenario.Growth),
	)

	in, err := s.load(ctx, string(req.TimeFilter))
	if err != nil {
		return nil, err
	}
	return s.run(ctx, in, scenario, startCash)
}

// CompareScenarios runs several scenarios over the same snapshot,
// concurrently, bounded by the bulkhead. Results keep request order.
func (s *TreasuryService) CompareScenarios(ctx context.Context, req domain.CompareRequest) ([]*domain.SimulationRun, error) {
	ctx, span := tracer.Start(ctx, "Treasury.CompareScenarios")
	defer span.End()
	span.SetAttributes(attribute.Int("scenarios.count", len(req.Scenarios)))

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("compare", time.Since(start))
	}()

	if len(req.Scenarios) == 0 {
		return nil, &domain.ErrValidation{Field: "scenarios", Message: "at least one scenario is required"}
	}
	if len(req.Scenarios) > MaxCompareScenarios {
		return nil, &domain.ErrValidation{Field: "scenarios", Message: fmt.Sprintf("at most %d scenarios", MaxCompareScenarios)}
	}

	startCash := s.policy.StartCash
	if req.StartCash != nil {
		startCash = *req.StartCash
	}
	for i := range req.Scenarios {
		if _, _, err := s.resolve(&req.Scenarios[i], &startCash); err != nil {
			return nil, err
		}
	}

	in, err := s.load(ctx, string(req.TimeFilter))
	if err != nil {
		return nil, err
	}

	runs := make([]*domain.SimulationRun, len(req.Scenarios))
	g, gCtx := errgroup.WithContext(ctx)
	for i, scenario := range req.Scenarios {
		i, scenario := i, scenario
		g.Go(func() error {
			run, err := s.run(gCtx, in, scenario, startCash)
			if err != nil {
				return fmt.Errorf("scenario %d: %w", i, err)
			}
			runs[i] = run
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return runs, nil
}

// Aging builds the receivables aging table for the filtered records.
func (s *TreasuryService) Aging(ctx context.Context, filter string) ([]domain.ClientAgingProfile, error) {
	ctx, span := tracer.Start(ctx, "Treasury.Aging")
	defer span.End()

	in, err := s.load(ctx, filter)
	if err != nil {
		return nil, err
	}
	return engine.AggregateAging(in.records, in.transactions, s.policy.Classification, s.policy.RiskThreshold), nil
}

// Analytics computes the financial summary strip for the filtered records.
func (s *TreasuryService) Analytics(ctx context.Context, filter string) (*domain.FinancialAnalytics, error) {
	ctx, span := tracer.Start(ctx, "Treasury.Analytics")
	defer span.End()

	in, err := s.load(ctx, filter)
	if err != nil {
		return nil, err
	}
	a := engine.Analyze(in.records, in.transactions)
	return &a, nil
}

// StressReport assembles the resilience certificate for one scenario.
func (s *TreasuryService) StressReport(ctx context.Context, req domain.SimulationRequest) (*domain.StressReport, error) {
	ctx, span := tracer.Start(ctx, "Treasury.StressReport")
	defer span.End()

	scenario, startCash, err := s.resolve(req.Scenario, req.StartCash)
	if err != nil {
		return nil, err
	}
	in, err := s.load(ctx, string(req.TimeFilter))
	if err != nil {
		return nil, err
	}
	run, err := s.run(ctx, in, scenario, startCash)
	if err != nil {
		return nil, err
	}

	result := run.Result
	report := &domain.StressReport{
		ID:              uuid.NewString(),
		GeneratedAt:     s.now(),
		Scenario:        scenario,
		Status:          result.Status,
		RunwayLabel:     "∞",
		RunwayDays:      result.RunwayDays,
		MinCash:         result.MinCash,
		InsolvencyLabel: "N/A",
		InsolvencyDate:  result.InsolvencyDate,
		Analytics:       engine.Analyze(in.records, in.transactions),
		Run:             run,
	}
	if result.RunwayDays != nil {
		report.RunwayLabel = fmt.Sprintf("%d Days", *result.RunwayDays)
	}
	if result.InsolvencyDate != nil {
		report.InsolvencyLabel = result.InsolvencyDate.Format(time.DateOnly)
	}
	return report, nil
}

// RefreshBaseline re-runs the policy's default scenario over all records
// and publishes it. Called by the scheduler. A failed refresh keeps the
// previous run and marks it stale. When refreshes overlap the most recently
// triggered one wins; an older result finishing late is discarded.
func (s *TreasuryService) RefreshBaseline(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Treasury.RefreshBaseline")
	defer span.End()

	s.baselineMu.Lock()
	s.triggeredGen++
	gen := s.triggeredGen
	prev := s.baseline.Load()
	s.baseline.Store(&domain.BaselineSnapshot{
		State:       domain.BaselineRecomputing,
		RefreshedAt: prev.RefreshedAt,
		Run:         prev.Run,
	})
	s.baselineMu.Unlock()
	span.SetAttributes(attribute.Int64("baseline.generation", int64(gen)))

	run, err := s.Simulate(ctx, domain.SimulationRequest{TimeFilter: domain.FilterAll})

	s.baselineMu.Lock()
	defer s.baselineMu.Unlock()
	cur := s.baseline.Load()

	if err != nil {
		s.logger.Error("baseline refresh failed", zap.Uint64("generation", gen), zap.Error(err))
		if gen == s.triggeredGen {
			s.baseline.Store(&domain.BaselineSnapshot{
				State:       domain.BaselineStale,
				RefreshedAt: cur.RefreshedAt,
				Run:         cur.Run,
			})
		}
		return err
	}

	if gen < s.publishedGen {
		s.logger.Info("baseline refresh superseded",
			zap.Uint64("generation", gen),
			zap.Uint64("published", s.publishedGen),
		)
		return nil
	}
	s.publishedGen = gen

	state := domain.BaselineCurrent
	if gen < s.triggeredGen {
		state = domain.BaselineRecomputing
	}
	now := s.now()
	s.baseline.Store(&domain.BaselineSnapshot{
		State:       state,
		RefreshedAt: &now,
		Run:         run,
	})
	s.metrics.SetBaseline(run.Result)

	changed := cur.Run == nil || cur.Run.InputHash != run.InputHash
	evicted := 0
	if changed && cur.Run != nil {
		// The record set moved on; drop runs over the previous one.
		evicted = s.cache.Len()
		s.cache.Flush()
		s.cache.Set(run.InputHash, run)
	}
	s.logger.Info("baseline refreshed",
		zap.String("run_id", run.RunID),
		zap.Uint64("generation", gen),
		zap.String("status", string(run.Result.Status)),
		zap.Int64("min_cash", int64(run.Result.MinCash)),
		zap.Int("records", run.RecordCount),
		zap.Bool("changed", changed),
		zap.Int("cache_evicted", evicted),
	)
	return nil
}

// Baseline returns the last published baseline run.
func (s *TreasuryService) Baseline() (*domain.SimulationRun, bool) {
	run := s.baseline.Load().Run
	return run, run != nil
}

// BaselineSnapshot returns the baseline together with its refresh state.
func (s *TreasuryService) BaselineSnapshot() domain.BaselineSnapshot {
	return *s.baseline.Load()
}

// resolve applies policy defaults and validates before any I/O.
func (s *TreasuryService) resolve(scenario *domain.ScenarioConfig, startCash *domain.Money) (domain.ScenarioConfig, domain.Money, error) {
	sc := s.policy.DefaultScenario
	if scenario != nil {
		sc = *scenario
	}
	cash := s.policy.StartCash
	if startCash != nil {
		cash = *startCash
	}

	if err := sc.Validate(); err != nil {
		s.metrics.IncrRejected()
		return sc, cash, err
	}
	if cash < 0 {
		s.metrics.IncrRejected()
		return sc, cash, &domain.ErrInvalidScenario{Field: "startCash", Reason: "must not be negative"}
	}
	return sc, cash, nil
}

// load fetches records and transactions concurrently and applies the filter.
func (s *TreasuryService) load(ctx context.Context, filter string) (*inputs, error) {
	tf, err := domain.ParseTimeFilter(filter)
	if err != nil {
		return nil, err
	}

	var (
		records      []domain.ServiceRecord
		transactions []domain.BankTransaction
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		r, err := s.store.ListServiceRecords(gCtx)
		if err != nil {
			s.logger.Error("failed to fetch service records", zap.Error(err))
			s.metrics.IncrExternalError("records")
			return fmt.Errorf("records fetch: %w", err)
		}
		records = r
		return nil
	})

	g.Go(func() error {
		t, err := s.store.ListBankTransactions(gCtx)
		if err != nil {
			s.logger.Error("failed to fetch bank transactions", zap.Error(err))
			s.metrics.IncrExternalError("transactions")
			return fmt.Errorf("transactions fetch: %w", err)
		}
		transactions = t
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	asOf := startOfDay(s.now())
	return &inputs{
		records:      engine.FilterRecords(records, tf, asOf),
		transactions: engine.FilterTransactions(transactions, tf, asOf),
		filter:       tf,
		asOf:         asOf,
	}, nil
}

// run simulates one scenario over a snapshot. Identical inputs share one
// computation and are served from cache afterwards.
func (s *TreasuryService) run(ctx context.Context, in *inputs, scenario domain.ScenarioConfig, startCash domain.Money) (*domain.SimulationRun, error) {
	key, err := s.inputKey(in, scenario, startCash)
	if err != nil {
		return nil, err
	}

	if cached, ok := s.cache.Get(key); ok {
		s.metrics.IncrCacheHit("simulation")
		hit := *cached
		hit.Cached = true
		return &hit, nil
	}
	s.metrics.IncrCacheMiss("simulation")

	v, err, _ := s.flight.Do(key, func() (any, error) {
		if err := s.bulkhead.Acquire(ctx); err != nil {
			return nil, &domain.ErrTimeout{Operation: "simulate"}
		}
		defer s.bulkhead.Release()

		result, err := engine.Simulate(engine.SimulationInput{
			Records:       in.records,
			FixedExpenses: s.policy.FixedExpenses,
			Scenario:      scenario,
			StartCash:     startCash,
			Now:           in.asOf,
		},
			engine.WithLogger(s.logger),
			engine.WithProjectionBuffer(s.policy.ProjectionBufferDays),
		)
		if err != nil {
			s.metrics.IncrRejected()
			return nil, err
		}
		s.metrics.RecordSimulation(result.Status, result.DataQualityIssues)

		run := &domain.SimulationRun{
			RunID:       uuid.NewString(),
			InputHash:   key,
			Scenario:    scenario,
			TimeFilter:  in.filter,
			AsOf:        in.asOf,
			RecordCount: len(in.records),
			Result:      result,
		}
		s.cache.Set(key, run)

		s.logger.Debug("simulation finished",
			zap.String("run_id", run.RunID),
			zap.String("status", string(result.Status)),
			zap.Int("events", result.EventCount),
			zap.Int("data_quality_issues", result.DataQualityIssues),
		)
		return run, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.SimulationRun), nil
}

// inputKey hashes everything a run depends on.
func (s *TreasuryService) inputKey(in *inputs, scenario domain.ScenarioConfig, startCash domain.Money) (string, error) {
	d := xxhash.New()
	err := json.NewEncoder(d).Encode(struct {
		Records   []domain.ServiceRecord `json:"records"`
		Expenses  []domain.FixedExpense  `json:"expenses"`
		Scenario  domain.ScenarioConfig  `json:"scenario"`
		StartCash domain.Money           `json:"startCash"`
		AsOf      time.Time              `json:"asOf"`
		Buffer    int                    `json:"buffer"`
	}{in.records, s.policy.FixedExpenses, scenario, startCash, in.asOf, s.policy.ProjectionBufferDays})
	if err != nil {
		return "", fmt.Errorf("hash inputs: %w", err)
	}
	return fmt.Sprintf("%016x", d.Sum64()), nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
