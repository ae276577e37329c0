package domain

import "time"

// FinancialAnalytics is the summary strip of the financial panel.
type FinancialAnalytics struct {
	TotalRevenue   Money   `json:"totalRevenue"`
	TotalCost      Money   `json:"totalCost"`
	Margin         Money   `json:"margin"`
	MarginPercent  float64 `json:"marginPercent"`
	CxcGenerated   Money   `json:"cxcGenerated"`
	CxcPending     Money   `json:"cxcPending"`
	CxpGenerated   Money   `json:"cxpGenerated"`
	CxpPending     Money   `json:"cxpPending"`
	TotalTrips     int     `json:"totalTrips"`
	CompletedTrips int     `json:"completedTrips"`
	CancelledTrips int     `json:"cancelledTrips"`
}

// StressReport is the payload of the one-page resilience certificate. The
// PDF renderer only formats these fields.
type StressReport struct {
	ID              string             `json:"id"`
	GeneratedAt     time.Time          `json:"generatedAt"`
	Scenario        ScenarioConfig     `json:"scenario"`
	Status          SimulationStatus   `json:"status"`
	RunwayLabel     string             `json:"runwayLabel"` // "∞" when there is no insolvency
	RunwayDays      *int               `json:"runwayDays"`
	MinCash         Money              `json:"minCash"`
	InsolvencyLabel string             `json:"insolvencyLabel"` // date or "N/A"
	InsolvencyDate  *time.Time         `json:"insolvencyDate"`
	Analytics       FinancialAnalytics `json:"analytics"`
	Run             *SimulationRun     `json:"run"`
}
