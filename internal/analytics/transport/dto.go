package transport

import "time"

// AnalyticsQuery carries the window and scope of an analytics request.
type AnalyticsQuery struct {
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
	BrokerID  string `form:"brokerId" validate:"omitempty,max=50"`
	Limit     int    `form:"limit" validate:"omitempty,min=1,max=100"`
}

// ExportQuery adds the output format to an analytics request.
type ExportQuery struct {
	AnalyticsQuery
	Format string `form:"format" validate:"omitempty,oneof=json csv"`
}

// Period echoes the resolved window back to the caller.
type Period struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

// OverviewResponse is the system overview.
type OverviewResponse struct {
	TotalFeedback     int     `json:"totalFeedback"`
	TotalLeads        int     `json:"totalLeads"`
	ActiveBrokers     int     `json:"activeBrokers"`
	AverageRating     float64 `json:"averageRating"`
	AvgCompletionTime float64 `json:"avgCompletionTime"`
	Period            Period  `json:"period"`
}

// IssueCount is one issue tag and its number of occurrences.
type IssueCount struct {
	Issue string `json:"issue"`
	Count int    `json:"count"`
}

// StatusCount is one status and its number of feedback rows.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// ScoreBucket is the feedback volume and mean rating for one lead-score range.
type ScoreBucket struct {
	Range         string  `json:"range"`
	Min           int     `json:"min"`
	Max           int     `json:"max"`
	Count         int     `json:"count"`
	AverageRating float64 `json:"averageRating"`
}

// ResponseTimeStats summarises form completion times in seconds.
type ResponseTimeStats struct {
	AverageTime    float64 `json:"averageTime"`
	MinTime        int     `json:"minTime"`
	MaxTime        int     `json:"maxTime"`
	TotalResponses int     `json:"totalResponses"`
}

// DashboardResponse combines every analytics view for one window.
type DashboardResponse struct {
	Overview      OverviewResponse  `json:"overview"`
	Ratings       map[int]int       `json:"ratings"`
	TopIssues     []IssueCount      `json:"topIssues"`
	Statuses      []StatusCount     `json:"statuses"`
	LeadScores    []ScoreBucket     `json:"leadScores"`
	ResponseTimes ResponseTimeStats `json:"responseTimes"`
	GeneratedAt   time.Time         `json:"generatedAt"`
}

// FeedbackSummary is the headline of the feedback analytics view.
type FeedbackSummary struct {
	TotalFeedback int     `json:"totalFeedback"`
	AverageRating float64 `json:"averageRating"`
	Period        Period  `json:"period"`
}

// FeedbackAnalyticsResponse is the feedback analytics view.
type FeedbackAnalyticsResponse struct {
	Summary            FeedbackSummary `json:"summary"`
	RatingDistribution map[int]int     `json:"ratingDistribution"`
	StatusDistribution []StatusCount   `json:"statusDistribution"`
	CommonIssues       []IssueCount    `json:"commonIssues"`
}

// ExportDocument is the structured export payload.
type ExportDocument struct {
	Overview   OverviewResponse `json:"overview"`
	Ratings    map[int]int      `json:"ratings"`
	Issues     []IssueCount     `json:"issues"`
	Status     []StatusCount    `json:"status"`
	ExportedAt time.Time        `json:"exportedAt"`
}
