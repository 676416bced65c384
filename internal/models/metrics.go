package models

// FatigueRecord holds the touches a contact received in the trailing fatigue window.
type FatigueRecord struct {
	ContactID   string `json:"contact_id"`
	Touches     int    `json:"touches"`
	FatigueFlag bool   `json:"fatigue_flag"`
}

// EngagementRecord holds a contact's engagement score. The score is never negative
// but has no upper bound.
type EngagementRecord struct {
	ContactID       string  `json:"contact_id"`
	EngagementScore float64 `json:"engagement_score"`
}

// Insight is the outer join of fatigue and engagement for a single contact.
type Insight struct {
	ContactID       string  `json:"contact_id"`
	Touches         int     `json:"touches"`
	FatigueFlag     bool    `json:"fatigue_flag"`
	EngagementScore float64 `json:"engagement_score"`
}

// KPISnapshot is the aggregate campaign performance of an event table.
// A nil field means the value is undefined (no events).
type KPISnapshot struct {
	Sends     *int64   `json:"sends"`
	OpenRate  *float64 `json:"open_rate"`
	CTR       *float64 `json:"ctr"`
	CTOR      *float64 `json:"ctor"`
	UnsubRate *float64 `json:"unsub_rate"`
}

// DashboardResponse is returned by GET /kpis.
// Display carries uplifted open/click rates when AI is on, raw sends and unsub rate always.
type DashboardResponse struct {
	AIEnabled bool        `json:"ai_enabled"`
	Raw       KPISnapshot `json:"raw"`
	Display   KPISnapshot `json:"display"`
}

// InsightsResponse is returned by GET /insights.
type InsightsResponse struct {
	Fatigued       int       `json:"fatigued"`
	HighEngagement int       `json:"high_engagement"`
	Total          int       `json:"total"`
	Insights       []Insight `json:"insights"`
}

// SubjectLinesResponse is returned by GET /subject-lines.
type SubjectLinesResponse struct {
	Persona     string   `json:"persona"`
	Seed        int64    `json:"seed"`
	Suggestions []string `json:"suggestions"`
}
