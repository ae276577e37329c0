package domain

// ============================================================
// Health & Metrics API Responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual dependency.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	LastChecked string `json:"lastChecked"`
}

// TreasuryMetrics is returned by GET /v1/metrics/treasury.
type TreasuryMetrics struct {
	SustainableRuns   int64   `json:"sustainableRuns"`
	InsolventRuns     int64   `json:"insolventRuns"`
	RejectedRuns      int64   `json:"rejectedRuns"`
	CacheHitRate      float64 `json:"cacheHitRate"`
	DataQualityIssues int64   `json:"dataQualityIssues"`
	BaselineMinCash   float64 `json:"baselineMinCash"`
	Period            string  `json:"period"`
}
