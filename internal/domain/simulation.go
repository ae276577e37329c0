package domain

import "time"

// ============================================================
// Cash events
// ============================================================

// EventKind tags where a cash event came from.
type EventKind string

const (
	EventInflow    EventKind = "INFLOW"
	EventOutflow   EventKind = "OUTFLOW"
	EventFixedCost EventKind = "FIXED_COST"
)

// CashEvent is a projected movement: positive inflow, negative outflow.
// Events are values and are never mutated after projection.
type CashEvent struct {
	Date   time.Time `json:"date"`
	Amount Money     `json:"amount"`
	Kind   EventKind `json:"kind"`
}

// ============================================================
// Simulation result
// ============================================================

// SimulationStatus is the verdict of one run.
type SimulationStatus string

const (
	StatusSustainable SimulationStatus = "SUSTAINABLE"
	StatusInsolvent   SimulationStatus = "INSOLVENT"
)

// PathPoint is a chart coordinate in [0,100]x[0,100]. Display only.
type PathPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BalancePoint is the running balance right after an event. Index 0 of a
// series is the opening balance.
type BalancePoint struct {
	Date    time.Time `json:"date"`
	Balance Money     `json:"balance"`
}

// SimulationWindow is the projected date range.
type SimulationWindow struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// SimulationResult is a pure function of (records, fixed expenses,
// scenario, start cash, now).
//
// Status == INSOLVENT iff MinCash < 0 iff InsolvencyDate != nil.
type SimulationResult struct {
	Status            SimulationStatus `json:"status"`
	StartCash         Money            `json:"startCash"`
	EndCash           Money            `json:"endCash"`
	MinCash           Money            `json:"minCash"`
	MaxCash           Money            `json:"maxCash"`
	InsolvencyDate    *time.Time       `json:"insolvencyDate"`
	RunwayDays        *int             `json:"runwayDays"`
	BalancePath       []PathPoint      `json:"balancePath"`
	Series            []BalancePoint   `json:"series,omitempty"`
	Window            SimulationWindow `json:"window"`
	EventCount        int              `json:"eventCount"`
	DataQualityIssues int              `json:"dataQualityIssues"`
}

// ============================================================
// Service-level run envelope
// ============================================================

// SimulationRequest is the body of POST /v1/treasury/simulate. Nil fields
// fall back to the configured policy.
type SimulationRequest struct {
	Scenario   *ScenarioConfig `json:"scenario,omitempty"`
	TimeFilter TimeFilter      `json:"timeFilter,omitempty"`
	StartCash  *Money          `json:"startCash,omitempty"`
}

// CompareRequest runs several scenarios over the same input snapshot.
type CompareRequest struct {
	Scenarios  []ScenarioConfig `json:"scenarios"`
	TimeFilter TimeFilter       `json:"timeFilter,omitempty"`
	StartCash  *Money           `json:"startCash,omitempty"`
}

// SimulationRun wraps a result with the inputs that produced it.
type SimulationRun struct {
	RunID       string            `json:"runId"`
	InputHash   string            `json:"inputHash"`
	Scenario    ScenarioConfig    `json:"scenario"`
	TimeFilter  TimeFilter        `json:"timeFilter"`
	AsOf        time.Time         `json:"asOf"`
	RecordCount int               `json:"recordCount"`
	Cached      bool              `json:"cached"`
	Result      *SimulationResult `json:"result"`
}

// ============================================================
// Baseline
// ============================================================

// BaselineState tracks the scheduled baseline run.
type BaselineState string

const (
	BaselineStale       BaselineState = "STALE"
	BaselineRecomputing BaselineState = "RECOMPUTING"
	BaselineCurrent     BaselineState = "CURRENT"
)

// BaselineSnapshot is the body of GET /v1/treasury/baseline. Run keeps the
// last good result while a refresh is running or after one failed.
type BaselineSnapshot struct {
	State       BaselineState  `json:"state"`
	RefreshedAt *time.Time     `json:"refreshedAt,omitempty"`
	Run         *SimulationRun `json:"run"`
}
